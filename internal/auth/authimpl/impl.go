package authimpl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/scrapbook-daily-bot/internal/auth"
	"github.com/orgball2608/scrapbook-daily-bot/internal/domain"
	"github.com/orgball2608/scrapbook-daily-bot/internal/repositories/token"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/config"
	apperrors "github.com/orgball2608/scrapbook-daily-bot/pkg/errors"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/logger"
	"go.uber.org/fx"
	"golang.org/x/oauth2"
)

const photosScope = "https://www.googleapis.com/auth/photospicker.mediaitems.readonly"

type Opts struct {
	fx.In
	LC fx.Lifecycle

	Config    *config.Config
	Logger    logger.Logger
	TokenRepo token.Repository
}

type AuthImpl struct {
	OAuth     *oauth2.Config
	Logger    logger.Logger
	Config    *config.Config
	TokenRepo token.Repository

	mu          sync.Mutex
	token       domain.AuthToken
	state       string
	listener    *redirectListener
	subscribers []chan auth.Event
	now         func() time.Time
}

func New(opts Opts) *AuthImpl {
	cfg := opts.Config
	a := &AuthImpl{
		OAuth: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  fmt.Sprintf("http://localhost:%d%s", cfg.Google.RedirectPort, cfg.Google.RedirectPath),
			Scopes:       []string{photosScope},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.Google.AuthURL,
				TokenURL: cfg.Google.TokenURL,
			},
		},
		Logger:    opts.Logger.WithComponent("Auth"),
		Config:    cfg,
		TokenRepo: opts.TokenRepo,
		now:       time.Now,
	}

	if opts.LC != nil {
		opts.LC.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				a.loadPersistedToken(ctx)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				a.closeListener()
				return nil
			},
		})
	}

	return a
}

var _ auth.Manager = (*AuthImpl)(nil)

func (a *AuthImpl) loadPersistedToken(ctx context.Context) {
	stored, err := a.TokenRepo.Get(ctx)
	if err != nil {
		if !errors.Is(err, token.ErrNotFound) {
			a.Logger.Warn("Failed to load persisted token", "error", err)
		}
		return
	}

	a.mu.Lock()
	a.token = *stored
	a.mu.Unlock()
	a.Logger.Info("Loaded persisted oauth token", "expiry", stored.Expiry)
}

func (a *AuthImpl) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token.Valid(a.now())
}

func (a *AuthImpl) AccessToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token.AccessToken
}

func (a *AuthImpl) AuthURL() string {
	a.mu.Lock()
	if a.state == "" {
		a.state = uuid.NewString()
	}
	state := a.state
	a.mu.Unlock()

	return a.OAuth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (a *AuthImpl) validState(state string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state != "" && state == a.state
}

func (a *AuthImpl) AuthenticateIfNeeded(ctx context.Context) error {
	if a.IsAuthenticated() {
		return nil
	}
	if a.Authenticate(ctx) {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrAuth, "authorization pending, complete the browser flow and retry")
}

func (a *AuthImpl) Authenticate(ctx context.Context) bool {
	a.Logger.Info("Attempting to authenticate")

	a.mu.Lock()
	refreshToken := a.token.RefreshToken
	a.mu.Unlock()

	// Refresh token first: no user interaction needed when it still works.
	if refreshToken != "" {
		a.Logger.Info("Attempting refresh token exchange")
		if err := a.refresh(ctx, refreshToken); err == nil {
			return true
		} else {
			a.Logger.Warn("Refresh token no longer valid, clearing it", "error", err)
			a.mu.Lock()
			a.token.RefreshToken = ""
			persist := a.token
			a.mu.Unlock()
			if err := a.TokenRepo.Save(ctx, persist); err != nil {
				a.Logger.Error("Failed to persist token after refresh failure", "error", err)
			}
		}
	}

	// Fall back to the interactive flow. The redirect listener picks up the
	// authorization code out-of-band, so there is no auth yet at this point.
	a.requestPermissions(ctx)
	return false
}

func (a *AuthImpl) refresh(ctx context.Context, refreshToken string) error {
	src := a.OAuth.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       a.now().Add(-time.Hour), // force refresh
	})

	fresh, err := src.Token()
	if err != nil {
		return fmt.Errorf("refresh token exchange failed: %w", err)
	}

	a.storeToken(ctx, fresh)
	return nil
}

func (a *AuthImpl) requestPermissions(ctx context.Context) {
	if a.Config.Google.DisableListener {
		// Headless or embedded deployments cannot capture the redirect;
		// fail fast instead of hanging.
		a.Logger.Error("Interactive auth requires the local redirect listener; authenticate from a desktop deployment first")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.listener != nil {
		// Already awaiting the redirect; callers re-send the auth URL
		// rather than us opening a duplicate listener.
		a.Logger.Info("Redirect listener already running, re-triggering interactive auth")
		return
	}

	l, err := newRedirectListener(a, a.Config.Google.RedirectPort, a.Config.Google.RedirectPath)
	if err != nil {
		if apperrors.IsListenerBusy(err) {
			a.Logger.Error("Redirect port already in use, is another instance running?", "port", a.Config.Google.RedirectPort)
		} else {
			a.Logger.Error("Failed to start redirect listener", "error", err)
		}
		return
	}
	a.listener = l
}

// handleAuthCode exchanges a captured authorization code and persists the
// resulting token. Called by the redirect listener.
func (a *AuthImpl) handleAuthCode(ctx context.Context, code string) error {
	tok, err := a.OAuth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("authorization code exchange failed: %w", err)
	}

	a.storeToken(ctx, tok)
	a.Logger.Info("Interactive authorization completed")
	a.notify(auth.EventAuthenticated)
	return nil
}

// storeToken records and persists a token without emitting any event; silent
// refreshes go through here and must not look like a fresh connection.
func (a *AuthImpl) storeToken(ctx context.Context, tok *oauth2.Token) {
	a.mu.Lock()
	a.token.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		a.token.RefreshToken = tok.RefreshToken
	}
	a.token.Expiry = tok.Expiry
	persist := a.token
	a.mu.Unlock()

	if err := a.TokenRepo.Save(ctx, persist); err != nil {
		a.Logger.Error("Failed to persist oauth token", "error", err)
	}
}

func (a *AuthImpl) ClearAuth(ctx context.Context) error {
	a.mu.Lock()
	a.token = domain.AuthToken{}
	a.mu.Unlock()

	if err := a.TokenRepo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear persisted token: %w", err)
	}

	a.Logger.Info("Cleared oauth tokens")
	a.notify(auth.EventCleared)
	return nil
}

func (a *AuthImpl) Subscribe() <-chan auth.Event {
	ch := make(chan auth.Event, 4)
	a.mu.Lock()
	a.subscribers = append(a.subscribers, ch)
	a.mu.Unlock()
	return ch
}

func (a *AuthImpl) notify(ev auth.Event) {
	a.mu.Lock()
	subs := append([]chan auth.Event(nil), a.subscribers...)
	a.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			// slow subscriber, drop rather than block token handling
		}
	}
}

func (a *AuthImpl) closeListener() {
	a.mu.Lock()
	l := a.listener
	a.listener = nil
	a.mu.Unlock()

	if l != nil {
		l.Close()
	}
}
