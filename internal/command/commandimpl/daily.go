package commandimpl

import (
	"context"
	"strings"
	"time"

	"github.com/orgball2608/scrapbook-daily-bot/internal/domain"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/errors"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/scrappath"
)

const dailyUsage = "Usage: /daily <YYYY-MM-DD> [YYYY-MM-DD] [nonote] [nophotos] [preface...]"

const dateLayout = "2006-01-02"

func (c *CommandImpl) handleDaily(ctx context.Context, chatID int64, args string) error {
	if strings.TrimSpace(args) == "" {
		if err := c.Flow.Begin(ctx, chatID); err != nil {
			c.Telegram.SendMessage(chatID, errors.GetMessage(err))
			return nil
		}
		c.Telegram.SendMessage(chatID, dailyUsage)
		return nil
	}

	req, err := parseDailyArgs(args, chatID)
	if err != nil {
		c.Telegram.SendMessage(chatID, errors.GetMessage(err)+"\n"+dailyUsage)
		return nil
	}

	err = c.Flow.SubmitRequest(ctx, req)
	switch {
	case err == nil:
		if !req.PullImages {
			c.Telegram.SendMessage(chatID, "Scrapbook entries created for "+describeRange(req.Range)+".")
		}
		return nil
	case errors.IsAuth(err):
		// Kick off the interactive flow so the redirect listener is up by
		// the time the user opens the link.
		c.Auth.Authenticate(ctx)
		c.Telegram.SendMessage(chatID, "Connect Google Photos first, then resend the command:\n"+c.Auth.AuthURL())
		return nil
	default:
		c.Telegram.SendMessage(chatID, errors.GetMessage(err))
		return nil
	}
}

// parseDailyArgs reads "<start> [end] [flags] [preface words]". The first
// non-date, non-flag token starts the preface.
func parseDailyArgs(args string, chatID int64) (domain.CreationRequest, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return domain.CreationRequest{}, errors.Wrap(errors.ErrValidation, "a start date is required")
	}

	start, err := time.Parse(dateLayout, fields[0])
	if err != nil {
		return domain.CreationRequest{}, errors.Wrap(errors.ErrValidation, "the first argument must be a YYYY-MM-DD date")
	}

	req := domain.CreationRequest{
		Range:      domain.DateRange{Start: start},
		CreateNote: true,
		PullImages: true,
		ChatID:     chatID,
	}

	rest := fields[1:]
	if len(rest) > 0 {
		if end, err := time.Parse(dateLayout, rest[0]); err == nil {
			req.Range.End = end
			req.Range.IsRange = true
			rest = rest[1:]
		}
	}

	for len(rest) > 0 {
		switch rest[0] {
		case "nonote":
			req.CreateNote = false
		case "nophotos":
			req.PullImages = false
		default:
			req.Preface = strings.Join(rest, " ")
			rest = nil
			continue
		}
		rest = rest[1:]
	}

	return req, nil
}

func describeRange(r domain.DateRange) string {
	if !r.IsRange {
		return scrappath.DateProperty(r.Start)
	}
	return scrappath.DateProperty(r.Start) + " to " + scrappath.DateProperty(r.End)
}
