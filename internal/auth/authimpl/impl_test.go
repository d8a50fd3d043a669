package authimpl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orgball2608/scrapbook-daily-bot/internal/auth"
	"github.com/orgball2608/scrapbook-daily-bot/internal/domain"
	"github.com/orgball2608/scrapbook-daily-bot/internal/repositories/token"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/config"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/logger"
)

func testConfig(tokenURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Google.ClientID = "test-client"
	cfg.Google.ClientSecret = "test-secret"
	cfg.Google.RedirectPort = 51894
	cfg.Google.RedirectPath = "/google-photos"
	cfg.Google.AuthURL = "https://accounts.example.com/auth"
	cfg.Google.TokenURL = tokenURL
	cfg.Google.DisableListener = true
	return cfg
}

func newTestAuth(tokenURL string, repo token.Repository) *AuthImpl {
	a := New(Opts{
		Config:    testConfig(tokenURL),
		Logger:    logger.New(logger.Opts{}),
		TokenRepo: repo,
	})
	a.loadPersistedToken(context.Background())
	return a
}

func tokenEndpoint(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("token endpoint got method %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestIsAuthenticated(t *testing.T) {
	repo := token.NewMemoryRepository()
	a := newTestAuth("http://unused", repo)

	if a.IsAuthenticated() {
		t.Error("authenticated with no token")
	}

	a.token = domain.AuthToken{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}
	if !a.IsAuthenticated() {
		t.Error("not authenticated with a fresh token")
	}

	a.token.Expiry = time.Now().Add(-time.Minute)
	if a.IsAuthenticated() {
		t.Error("authenticated with an expired token")
	}
}

func TestAuthenticate_RefreshTokenExchange(t *testing.T) {
	srv := tokenEndpoint(t, http.StatusOK,
		`{"access_token":"fresh-access","token_type":"Bearer","expires_in":3600}`)
	defer srv.Close()

	repo := token.NewMemoryRepository()
	_ = repo.Save(context.Background(), domain.AuthToken{
		AccessToken:  "stale",
		RefreshToken: "good-refresh",
		Expiry:       time.Now().Add(-time.Hour),
	})

	a := newTestAuth(srv.URL, repo)

	// Expired access token + valid refresh token: must succeed without any
	// interactive flow.
	if !a.Authenticate(context.Background()) {
		t.Fatal("Authenticate returned false with a valid refresh token")
	}
	if !a.IsAuthenticated() {
		t.Error("not authenticated after refresh exchange")
	}
	if got := a.AccessToken(); got != "fresh-access" {
		t.Errorf("AccessToken = %q, want %q", got, "fresh-access")
	}

	persisted, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("persisted token missing: %v", err)
	}
	if persisted.AccessToken != "fresh-access" {
		t.Errorf("persisted access token = %q", persisted.AccessToken)
	}
	if persisted.RefreshToken != "good-refresh" {
		t.Errorf("refresh token was not preserved: %q", persisted.RefreshToken)
	}
}

func TestAuthenticate_SilentRefreshEmitsNoEvent(t *testing.T) {
	srv := tokenEndpoint(t, http.StatusOK,
		`{"access_token":"fresh-access","token_type":"Bearer","expires_in":3600}`)
	defer srv.Close()

	repo := token.NewMemoryRepository()
	_ = repo.Save(context.Background(), domain.AuthToken{
		RefreshToken: "good-refresh",
		Expiry:       time.Now().Add(-time.Hour),
	})

	a := newTestAuth(srv.URL, repo)
	events := a.Subscribe()

	if !a.Authenticate(context.Background()) {
		t.Fatal("Authenticate failed")
	}

	select {
	case ev := <-events:
		t.Errorf("routine token refresh emitted %q", ev)
	default:
	}
}

func TestAuthenticate_DeadRefreshTokenIsCleared(t *testing.T) {
	srv := tokenEndpoint(t, http.StatusBadRequest, `{"error":"invalid_grant"}`)
	defer srv.Close()

	repo := token.NewMemoryRepository()
	_ = repo.Save(context.Background(), domain.AuthToken{
		RefreshToken: "dead-refresh",
		Expiry:       time.Now().Add(-time.Hour),
	})

	a := newTestAuth(srv.URL, repo)

	if a.Authenticate(context.Background()) {
		t.Fatal("Authenticate returned true with a dead refresh token")
	}

	persisted, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("persisted token missing: %v", err)
	}
	if persisted.RefreshToken != "" {
		t.Errorf("dead refresh token was not cleared: %q", persisted.RefreshToken)
	}
}

func TestAuthenticateIfNeeded(t *testing.T) {
	repo := token.NewMemoryRepository()
	a := newTestAuth("http://unused", repo)

	a.token = domain.AuthToken{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}
	if err := a.AuthenticateIfNeeded(context.Background()); err != nil {
		t.Errorf("expected no-op when authenticated, got %v", err)
	}

	a.token = domain.AuthToken{}
	if err := a.AuthenticateIfNeeded(context.Background()); err == nil {
		t.Error("expected auth error when authentication cannot complete synchronously")
	}
}

func TestValidState(t *testing.T) {
	repo := token.NewMemoryRepository()
	a := newTestAuth("http://unused", repo)

	if a.validState("anything") {
		t.Error("accepted a state before AuthURL issued one")
	}

	_ = a.AuthURL()
	if a.validState("not-the-one") {
		t.Error("accepted a mismatched state")
	}
	if !a.validState(a.state) {
		t.Error("rejected the issued state")
	}
}

func TestHandleAuthCode_StoresAndNotifies(t *testing.T) {
	srv := tokenEndpoint(t, http.StatusOK,
		`{"access_token":"code-access","refresh_token":"code-refresh","token_type":"Bearer","expires_in":3600}`)
	defer srv.Close()

	repo := token.NewMemoryRepository()
	a := newTestAuth(srv.URL, repo)
	events := a.Subscribe()

	if err := a.handleAuthCode(context.Background(), "the-code"); err != nil {
		t.Fatalf("handleAuthCode failed: %v", err)
	}

	select {
	case ev := <-events:
		if ev != auth.EventAuthenticated {
			t.Errorf("event = %q, want %q", ev, auth.EventAuthenticated)
		}
	default:
		t.Error("no authenticated event emitted")
	}

	persisted, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("persisted token missing: %v", err)
	}
	if persisted.RefreshToken != "code-refresh" {
		t.Errorf("refresh token not persisted: %q", persisted.RefreshToken)
	}
}

func TestClearAuth(t *testing.T) {
	repo := token.NewMemoryRepository()
	_ = repo.Save(context.Background(), domain.AuthToken{
		AccessToken:  "tok",
		RefreshToken: "ref",
		Expiry:       time.Now().Add(time.Hour),
	})

	a := newTestAuth("http://unused", repo)
	events := a.Subscribe()

	if err := a.ClearAuth(context.Background()); err != nil {
		t.Fatalf("ClearAuth failed: %v", err)
	}
	if a.IsAuthenticated() {
		t.Error("still authenticated after ClearAuth")
	}
	if _, err := repo.Get(context.Background()); err == nil {
		t.Error("persisted token survived ClearAuth")
	}

	select {
	case ev := <-events:
		if ev != auth.EventCleared {
			t.Errorf("event = %q, want %q", ev, auth.EventCleared)
		}
	default:
		t.Error("no cleared event emitted")
	}
}
