package picker

import (
	"context"

	"github.com/orgball2608/scrapbook-daily-bot/internal/domain"
)

// State is the local view of the remote picking session lifecycle.
type State int

const (
	NoSession State = iota
	WaitingForPicker
	ItemsPicked
	ItemsListed
)

func (s State) String() string {
	switch s {
	case NoSession:
		return "NoSession"
	case WaitingForPicker:
		return "WaitingForPicker"
	case ItemsPicked:
		return "ItemsPicked"
	case ItemsListed:
		return "ItemsListed"
	default:
		return "Unknown"
	}
}

//go:generate go run go.uber.org/mock/mockgen -source=picker.go -destination=mocks/mock.go

// Client drives one remote "pick photos" session: create, poll until the
// user commits their picks, list, optionally delete. Remote failures are
// logged and reported as false, never panics or fatal errors; the flow
// surfaces them as retryable notices.
type Client interface {
	// CreateNewSession starts a remote session. Fails unless the current
	// state is NoSession.
	CreateNewSession(ctx context.Context) bool

	// PollCurrentSession re-fetches session status. Valid only while
	// WaitingForPicker; transitions to ItemsPicked once the remote reports
	// the user committed their picks.
	PollCurrentSession(ctx context.Context) bool

	// ListMediaItems fetches the committed item list. Valid only in
	// ItemsPicked.
	ListMediaItems(ctx context.Context) bool

	// DeleteSession best-effort cancels the remote session and resets to
	// NoSession. Valid from any non-NoSession state.
	DeleteSession(ctx context.Context) bool

	// LoadMedia fetches the original-quality asset. Returns an empty slice
	// on failure so the caller can skip the item.
	LoadMedia(ctx context.Context, item domain.PickedMediaItem) []byte

	PickerURI() string
	FinishedPicking() bool
	PickedItems() []domain.PickedMediaItem
	State() State
}
