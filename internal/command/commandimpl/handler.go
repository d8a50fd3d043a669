package commandimpl

import (
	"context"
	"fmt"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/scrapbook-daily-bot/internal/auth"
	"github.com/orgball2608/scrapbook-daily-bot/internal/telegram/telegramimpl"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/errors"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/scrappath"
)

const helpMessage = `Welcome to the Scrapbook Daily Bot!

DAILY ENTRIES:
/daily <YYYY-MM-DD> [YYYY-MM-DD] [nonote] [nophotos] [preface...] - Create scrapbook entries for a day or a date range.
/reset - Abandon the current creation flow.
/history - Show the most recently created entries.

GOOGLE PHOTOS:
/auth - Connect your Google Photos account.
/clearauth - Forget the stored Google Photos tokens.

MIGRATION:
/convert - Migrate old date-titled journal notes into the scrapbook layout.

Type /help at any time to see this guide.`

func (c *CommandImpl) HandleCommand(ctx context.Context) error {
	updates := c.Telegram.UpdatesChannel()
	c.Logger.Info("Command handler started, listening for updates.")

	go c.watchAuthEvents(ctx)

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Command handler shutting down.")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				c.Logger.Warn("Telegram updates channel closed unexpectedly.")
				return errors.New("telegram updates channel closed")
			}

			if update.CallbackQuery != nil {
				go c.handleCallback(ctx, update.CallbackQuery)
				continue
			}

			go func(u tgbotapi.Update) {
				defer func() {
					if r := recover(); r != nil {
						c.Logger.Error("Panic recovered while processing an update", "panic", r, "stack", string(debug.Stack()))
					}
				}()

				if u.Message == nil || !u.Message.IsCommand() {
					return
				}

				c.Logger.Info("Command received", "command", u.Message.Command(), "chat_id", u.Message.Chat.ID)
				if err := c.processCommand(ctx, u); err != nil {
					c.Logger.Error("Error processing command", "command", u.Message.Command(), "error", err)
				}
			}(update)
		}
	}
}

// watchAuthEvents turns authentication state changes into user notices. The
// interactive browser flow completes out of band, so this is the only place
// the user learns it worked.
func (c *CommandImpl) watchAuthEvents(ctx context.Context) {
	events := c.Auth.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev {
			case auth.EventAuthenticated:
				c.Telegram.SendMessageToUser("Google Photos connected. You can now pull images into your scrapbook.")
			case auth.EventCleared:
				c.Telegram.SendMessageToUser("Google Photos tokens cleared.")
			}
		}
	}
}

func (c *CommandImpl) processCommand(ctx context.Context, update tgbotapi.Update) error {
	cmd := update.Message.Command()
	args := update.Message.CommandArguments()
	chatID := update.Message.Chat.ID

	if !c.Limiter.Allow(chatID) {
		c.Telegram.SendMessage(chatID, "Too many requests, give it a moment.")
		return nil
	}

	switch cmd {
	case "start", "help":
		c.Telegram.SendMessage(chatID, helpMessage)
		return nil
	case "daily":
		return c.handleDaily(ctx, chatID, args)
	case "reset":
		c.Flow.Reset()
		c.Telegram.SendMessage(chatID, "Flow reset. Start again with /daily.")
		return nil
	case "auth":
		return c.handleAuth(ctx, chatID)
	case "clearauth":
		return c.Auth.ClearAuth(ctx)
	case "history":
		return c.handleHistory(ctx, chatID)
	case "convert":
		return c.handleConvert(ctx, chatID)
	default:
		c.Telegram.SendMessage(chatID, "Unknown command. Type /help to see the list of available commands.")
		return nil
	}
}

func (c *CommandImpl) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	c.Telegram.AnswerCallback(cb.ID)
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	switch cb.Data {
	case telegramimpl.CallbackPickerDone:
		if err := c.Flow.ConfirmPicking(ctx); err != nil {
			c.Telegram.SendMessage(chatID, errors.GetMessage(err))
			return
		}
		c.Telegram.SendMessage(chatID, "Scrapbook entries created.")
	case telegramimpl.CallbackPickerCancel:
		if err := c.Flow.CancelPicking(ctx); err != nil {
			c.Telegram.SendMessage(chatID, errors.GetMessage(err))
			return
		}
		c.Telegram.SendMessage(chatID, "Picking cancelled, nothing was created.")
	}
}

func (c *CommandImpl) handleAuth(ctx context.Context, chatID int64) error {
	if c.Auth.Authenticate(ctx) {
		c.Telegram.SendMessage(chatID, "Google Photos is already connected.")
		return nil
	}
	c.Telegram.SendMessage(chatID, "Open this link in your browser to connect Google Photos:\n"+c.Auth.AuthURL())
	return nil
}

func (c *CommandImpl) handleHistory(ctx context.Context, chatID int64) error {
	records, err := c.ScrapDayRepo.ListRecent(ctx, 10)
	if err != nil {
		c.Telegram.SendMessage(chatID, "Could not load the entry history.")
		return err
	}
	if len(records) == 0 {
		c.Telegram.SendMessage(chatID, "No scrapbook entries created yet.")
		return nil
	}

	text := "Recent scrapbook entries:\n"
	for _, rec := range records {
		text += fmt.Sprintf("%s - %d media", scrappath.DateProperty(rec.Day), rec.MediaCount)
		if rec.NoteCreated {
			text += ", note"
		}
		text += "\n"
	}
	c.Telegram.SendMessage(chatID, text)
	return nil
}

func (c *CommandImpl) handleConvert(ctx context.Context, chatID int64) error {
	c.Telegram.SendMessage(chatID, "Migrating old journal entries, this can take a while...")
	migrated, err := c.Convert.ConvertLegacyJournal(ctx)
	if err != nil {
		c.Telegram.SendMessage(chatID, fmt.Sprintf("Migration finished with errors after %d notes: %s", migrated, errors.GetMessage(err)))
		return err
	}
	c.Telegram.SendMessage(chatID, fmt.Sprintf("Migrated %d journal notes into the scrapbook.", migrated))
	return nil
}
