package auth

import "context"

// Event notifies subscribers about authentication state changes.
type Event string

const (
	EventAuthenticated Event = "authenticated"
	EventCleared       Event = "cleared"
)

//go:generate go run go.uber.org/mock/mockgen -source=auth.go -destination=mocks/mock.go

// Manager owns the OAuth2 token lifecycle: refresh-token reuse,
// authorization-code exchange via the local redirect listener, and token
// persistence. It is the only writer of token state; everything else takes
// snapshot reads.
type Manager interface {
	// IsAuthenticated is true iff a non-empty access token exists and has
	// not expired.
	IsAuthenticated() bool

	// AuthenticateIfNeeded is a no-op when already authenticated and fails
	// with an auth error when authentication cannot complete synchronously.
	AuthenticateIfNeeded(ctx context.Context) error

	// Authenticate tries a refresh-token exchange first. On refresh failure
	// it wipes the stored refresh token and starts the interactive
	// browser-facing flow, returning false because that flow completes
	// asynchronously through the redirect listener.
	Authenticate(ctx context.Context) bool

	// ClearAuth wipes both tokens and notifies subscribers.
	ClearAuth(ctx context.Context) error

	// AccessToken returns a snapshot of the current access token, empty
	// when unauthenticated.
	AccessToken() string

	// AuthURL returns the browser-facing authorization URL for the
	// interactive flow.
	AuthURL() string

	// Subscribe returns a channel receiving auth state change events.
	Subscribe() <-chan Event
}
