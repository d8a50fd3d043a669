package flowimpl

import (
	"context"
	"sync"
	"time"

	"github.com/orgball2608/scrapbook-daily-bot/internal/auth"
	"github.com/orgball2608/scrapbook-daily-bot/internal/domain"
	"github.com/orgball2608/scrapbook-daily-bot/internal/flow"
	"github.com/orgball2608/scrapbook-daily-bot/internal/materializer"
	"github.com/orgball2608/scrapbook-daily-bot/internal/picker"
	"github.com/orgball2608/scrapbook-daily-bot/internal/repositories/scrapday"
	"github.com/orgball2608/scrapbook-daily-bot/internal/telegram"
	"github.com/orgball2608/scrapbook-daily-bot/internal/vault"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/config"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/errors"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/logger"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/scrappath"
	"go.uber.org/fx"
	"golang.org/x/time/rate"
)

type Opts struct {
	fx.In

	Auth         auth.Manager
	Picker       picker.Client
	Materializer materializer.Client
	Vault        vault.Vault
	Telegram     telegram.Client
	ScrapDayRepo scrapday.Repository
	Logger       logger.Logger
	Config       *config.Config
}

type FlowImpl struct {
	Auth         auth.Manager
	Picker       picker.Client
	Materializer materializer.Client
	Vault        vault.Vault
	Telegram     telegram.Client
	ScrapDayRepo scrapday.Repository
	Logger       logger.Logger
	Config       *config.Config

	// mu serializes trigger methods. The bot serves a single primary user,
	// so holding it across a materialization run is acceptable and keeps
	// the state transitions trivially race-free.
	mu              sync.Mutex
	state           flow.State
	req             domain.CreationRequest
	chatID          int64
	sessionFailures int

	limiter *rate.Limiter
	now     func() time.Time
}

func New(opts Opts) *FlowImpl {
	return &FlowImpl{
		Auth:         opts.Auth,
		Picker:       opts.Picker,
		Materializer: opts.Materializer,
		Vault:        opts.Vault,
		Telegram:     opts.Telegram,
		ScrapDayRepo: opts.ScrapDayRepo,
		Logger:       opts.Logger.WithComponent("flow"),
		Config:       opts.Config,
		state:        flow.Uninitialized,
		limiter: rate.NewLimiter(
			rate.Limit(opts.Config.Download.RatePerSecond),
			opts.Config.Download.BatchSize,
		),
		now: time.Now,
	}
}

var _ flow.Client = (*FlowImpl)(nil)

func (f *FlowImpl) State() flow.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *FlowImpl) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

func (f *FlowImpl) reset() {
	f.state = flow.Uninitialized
	f.req = domain.CreationRequest{}
	f.chatID = 0
	f.sessionFailures = 0
}

func (f *FlowImpl) Begin(ctx context.Context, chatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == flow.SettingsModal || f.state == flow.PhotosPicker {
		return errors.Wrap(errors.ErrValidation, "a creation flow is already in progress, finish or /reset it first")
	}

	f.reset()
	f.state = flow.SettingsModal
	f.chatID = chatID
	f.Logger.Info("Creation flow started", "chat_id", chatID)
	return nil
}

func (f *FlowImpl) SubmitRequest(ctx context.Context, req domain.CreationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	// A one-shot command carries its settings inline, so an idle flow is
	// accepted here as an implicit Begin.
	if f.state != flow.SettingsModal && f.state != flow.Uninitialized {
		return errors.Wrap(errors.ErrValidation, "the flow is not waiting for settings")
	}
	if err := flow.ValidateRequest(req); err != nil {
		return err
	}

	f.req = req
	f.chatID = req.ChatID

	if !req.PullImages {
		if err := f.materializeRange(ctx, req, nil); err != nil {
			f.state = flow.Error
			return err
		}
		f.state = flow.Done
		return nil
	}

	if err := f.Auth.AuthenticateIfNeeded(ctx); err != nil {
		// Recoverable: the user finishes the browser flow and resubmits.
		f.state = flow.SettingsModal
		return err
	}

	if !f.Picker.CreateNewSession(ctx) {
		f.sessionFailures++
		f.Logger.Warn("Picking session creation failed", "attempt", f.sessionFailures)
		if f.sessionFailures >= 2 {
			f.state = flow.Error
			return errors.Wrap(errors.ErrSession, "could not start a picking session")
		}
		f.state = flow.SettingsModal
		return errors.Wrap(errors.ErrSession, "could not start a picking session, try again")
	}
	f.sessionFailures = 0
	f.state = flow.PhotosPicker
	f.Telegram.SendPickerLink(req.ChatID, f.Picker.PickerURI())
	return nil
}

func (f *FlowImpl) ConfirmPicking(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != flow.PhotosPicker {
		return errors.Wrap(errors.ErrValidation, "no picking step in progress")
	}

	if !f.Picker.PollCurrentSession(ctx) {
		return errors.Wrap(errors.ErrSession, "could not check the picking session, try again")
	}
	if !f.Picker.FinishedPicking() {
		return errors.Wrap(errors.ErrSession, "picking is not finished yet, commit your picks first")
	}
	if !f.Picker.ListMediaItems(ctx) {
		return errors.Wrap(errors.ErrSession, "could not list the picked items, try again")
	}

	items := f.Picker.PickedItems()
	f.Logger.Info("Picking confirmed", "items", len(items))

	err := f.materializeRange(ctx, f.req, items)
	f.Picker.DeleteSession(ctx)
	if err != nil {
		f.state = flow.Error
		return err
	}
	f.state = flow.Done
	return nil
}

func (f *FlowImpl) CancelPicking(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != flow.PhotosPicker {
		return errors.Wrap(errors.ErrValidation, "no picking step in progress")
	}

	f.Picker.DeleteSession(ctx)
	f.state = flow.Done
	f.Logger.Info("Picking cancelled, nothing materialized")
	return nil
}

// CreateToday runs a note-only materialization for the current calendar day.
// It deliberately bypasses the interactive state machine.
func (f *FlowImpl) CreateToday(ctx context.Context) error {
	now := f.now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	req := domain.CreationRequest{
		Range:      domain.DateRange{Start: day},
		CreateNote: true,
		ChatID:     f.Config.Telegram.User,
	}
	f.Logger.Info("Auto-creating today's entry", "day", scrappath.DateProperty(day))
	return f.materializeRange(ctx, req, nil)
}

func (f *FlowImpl) style() scrappath.Style {
	if f.Config.Vault.DecoratedDayDirs {
		return scrappath.DecoratedDays
	}
	return scrappath.PlainDays
}

func (f *FlowImpl) notify(chatID int64, text string) {
	if chatID != 0 {
		f.Telegram.SendMessage(chatID, text)
		return
	}
	f.Telegram.SendMessageToUser(text)
}
