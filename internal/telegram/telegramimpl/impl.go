package telegramimpl

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/scrapbook-daily-bot/internal/telegram"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/config"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/logger"
	"go.uber.org/fx"
)

// Callback payloads for the picker inline keyboard.
const (
	CallbackPickerDone   = "picker_done"
	CallbackPickerCancel = "picker_cancel"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type TelegramImpl struct {
	TgBot  *tgbotapi.BotAPI
	Logger logger.Logger
	Config *config.Config
}

func New(opts Opts) (*TelegramImpl, error) {
	tgBot, err := tgbotapi.NewBotAPI(opts.Config.Telegram.BotToken)
	if err != nil {
		opts.Logger.Error("Error creating bot", "Error", err)
		return nil, err
	}

	return &TelegramImpl{
		TgBot:  tgBot,
		Logger: opts.Logger.WithComponent("Telegram"),
		Config: opts.Config,
	}, nil
}

var _ telegram.Client = (*TelegramImpl)(nil)

func (tg *TelegramImpl) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := tg.TgBot.Send(msg); err != nil {
		tg.Logger.Error("Error sending message", "chatID", chatID, "error", err)
		return
	}
	tg.Logger.Debug("Message sent", "chatID", chatID)
}

func (tg *TelegramImpl) SendMessageToUser(text string) {
	tg.SendMessage(tg.Config.Telegram.User, text)
}

func (tg *TelegramImpl) SendPickerLink(chatID int64, pickerURI string) {
	msg := tgbotapi.NewMessage(chatID,
		"Pick your photos in Google Photos, then press Done picking.\n"+pickerURI)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Done picking", CallbackPickerDone),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", CallbackPickerCancel),
		),
	)

	if _, err := tg.TgBot.Send(msg); err != nil {
		tg.Logger.Error("Error sending picker link", "chatID", chatID, "error", err)
	}
}

func (tg *TelegramImpl) UpdatesChannel() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	return tg.TgBot.GetUpdatesChan(u)
}

func (tg *TelegramImpl) AnswerCallback(callbackID string) {
	callback := tgbotapi.NewCallback(callbackID, "")
	if _, err := tg.TgBot.Request(callback); err != nil {
		tg.Logger.Error("Error answering callback", "error", err)
	}
}
