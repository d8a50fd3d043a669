package flow

import (
	"context"

	"github.com/orgball2608/scrapbook-daily-bot/internal/domain"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/errors"
)

// State of the daily-creation workflow.
type State int

const (
	Uninitialized State = iota
	SettingsModal
	PhotosPicker
	Done
	Error
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case SettingsModal:
		return "SettingsModal"
	case PhotosPicker:
		return "PhotosPicker"
	case Done:
		return "Done"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

//go:generate go run go.uber.org/mock/mockgen -source=flow.go -destination=mocks/mock.go

// Client is the daily-creation workflow state machine. It never blocks
// waiting for the user: each method is a transition trigger fed by the input
// boundary, and between triggers the flow is simply at rest in its current
// state.
type Client interface {
	// Begin opens the settings conversation for a chat:
	// Uninitialized -> SettingsModal.
	Begin(ctx context.Context, chatID int64) error

	// SubmitRequest feeds the validated creation request. Transitions to
	// PhotosPicker when the request pulls images, otherwise materializes
	// the range immediately and finishes: SettingsModal -> PhotosPicker|Done.
	SubmitRequest(ctx context.Context, req domain.CreationRequest) error

	// ConfirmPicking is the "done picking" trigger: polls the session,
	// lists the picked items and materializes the range. Poll/list failures
	// and unfinished picking are retryable; the flow stays in PhotosPicker.
	ConfirmPicking(ctx context.Context) error

	// CancelPicking cancels the remote session and finishes without
	// materializing anything: PhotosPicker -> Done.
	CancelPicking(ctx context.Context) error

	// CreateToday materializes a note-only entry for the current day,
	// outside the interactive state machine. Used by the auto-create
	// schedule.
	CreateToday(ctx context.Context) error

	// ScheduleAutoCreate installs the optional daily auto-create job.
	ScheduleAutoCreate(ctx context.Context) error

	// Reset returns the flow to Uninitialized so a new run can start.
	Reset()

	State() State
}

// ValidateRequest rejects malformed requests before the flow starts.
func ValidateRequest(req domain.CreationRequest) error {
	if req.Range.Start.IsZero() {
		return errors.Wrap(errors.ErrValidation, "start date is required")
	}
	if req.Range.IsRange {
		if req.Range.End.IsZero() {
			return errors.Wrap(errors.ErrValidation, "end date is required for a range")
		}
		if req.Range.Start.After(req.Range.End) {
			return errors.Wrap(errors.ErrValidation, "start date must be before end date")
		}
	}
	return nil
}
