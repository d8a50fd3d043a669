package authimpl

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	apperrors "github.com/orgball2608/scrapbook-daily-bot/pkg/errors"
)

// redirectListener is the short-lived local HTTP server that captures the
// OAuth2 redirect carrying the authorization code. At most one exists per
// manager; it tears itself down after a successful capture.
type redirectListener struct {
	auth   *AuthImpl
	server *http.Server
	path   string
	addr   string
}

func newRedirectListener(a *AuthImpl, port int, path string) (*redirectListener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, apperrors.ErrListenerBusy
		}
		return nil, fmt.Errorf("failed to bind redirect listener: %w", err)
	}

	l := &redirectListener{auth: a, path: path, addr: ln.Addr().String()}
	mux := http.NewServeMux()
	mux.HandleFunc("/", l.handle)
	l.server = &http.Server{Handler: mux}

	go func() {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("Redirect listener stopped unexpectedly", "error", err)
		}
	}()

	a.Logger.Info("Redirect listener started", "addr", l.addr, "path", path)
	return l, nil
}

func (l *redirectListener) handle(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, l.path) {
		http.NotFound(w, r)
		return
	}

	if !l.auth.validState(r.URL.Query().Get("state")) {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code parameter", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := l.auth.handleAuthCode(ctx, code); err != nil {
		l.auth.Logger.Error("Failed to process authorization code", "error", err)
		http.Error(w, "Authentication failed, please try again.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("Authentication successful! You can return to your vault."))

	// Self-close once the code has been captured.
	go l.auth.closeListener()
}

func (l *redirectListener) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.server.Shutdown(ctx); err != nil {
		l.auth.Logger.Warn("Redirect listener shutdown error", "error", err)
	}
}
