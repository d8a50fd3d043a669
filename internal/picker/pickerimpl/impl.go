package pickerimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/orgball2608/scrapbook-daily-bot/internal/auth"
	"github.com/orgball2608/scrapbook-daily-bot/internal/domain"
	"github.com/orgball2608/scrapbook-daily-bot/internal/picker"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/config"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/logger"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/retry"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Auth   auth.Manager
	Config *config.Config
	Logger logger.Logger
}

type PickerImpl struct {
	Auth    auth.Manager
	Logger  logger.Logger
	BaseURL string

	httpClient *http.Client

	mu      sync.Mutex
	state   picker.State
	session domain.PickingSession
	items   []domain.PickedMediaItem
}

func New(opts Opts) *PickerImpl {
	return &PickerImpl{
		Auth:       opts.Auth,
		Logger:     opts.Logger.WithComponent("Picker"),
		BaseURL:    opts.Config.Google.PickerBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		state:      picker.NoSession,
	}
}

var _ picker.Client = (*PickerImpl)(nil)

func (p *PickerImpl) State() picker.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *PickerImpl) PickerURI() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.PickerURI
}

func (p *PickerImpl) FinishedPicking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == picker.ItemsPicked || p.state == picker.ItemsListed
}

func (p *PickerImpl) PickedItems() []domain.PickedMediaItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := make([]domain.PickedMediaItem, len(p.items))
	copy(items, p.items)
	return items
}

// request performs an authenticated JSON call against the Picker API and
// decodes the response into out. Client errors are permanent; server and
// network errors are retried with backoff.
func (p *PickerImpl) request(ctx context.Context, method, endpoint string, out any) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+endpoint, bytes.NewReader(nil))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+p.Auth.AccessToken())
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("picker api %s %s: status %d", method, endpoint, resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("picker api %s %s: status %d", method, endpoint, resp.StatusCode))
		}

		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode picker response: %w", err))
		}
		return nil
	}

	return retry.Do(ctx, p.Logger, method+" "+endpoint, operation, retry.DefaultConfig())
}

func (p *PickerImpl) CreateNewSession(ctx context.Context) bool {
	p.mu.Lock()
	if p.state != picker.NoSession {
		p.mu.Unlock()
		p.Logger.Warn("CreateNewSession called in wrong state", "state", p.state.String())
		return false
	}
	p.mu.Unlock()

	var session domain.PickingSession
	if err := p.request(ctx, http.MethodPost, "/v1/sessions", &session); err != nil {
		p.Logger.Error("Failed to create picking session", "error", err)
		return false
	}

	p.mu.Lock()
	p.session = session
	p.state = picker.WaitingForPicker
	p.mu.Unlock()

	p.Logger.Info("Created picking session", "session_id", session.ID)
	return true
}

func (p *PickerImpl) PollCurrentSession(ctx context.Context) bool {
	p.mu.Lock()
	if p.state != picker.WaitingForPicker {
		p.mu.Unlock()
		p.Logger.Warn("PollCurrentSession called in wrong state", "state", p.state.String())
		return false
	}
	sessionID := p.session.ID
	p.mu.Unlock()

	var session domain.PickingSession
	if err := p.request(ctx, http.MethodGet, "/v1/sessions/"+sessionID, &session); err != nil {
		p.Logger.Error("Failed to poll picking session", "session_id", sessionID, "error", err)
		return false
	}

	p.mu.Lock()
	p.session = session
	if session.MediaItemsSet {
		p.state = picker.ItemsPicked
	}
	p.mu.Unlock()

	p.Logger.Info("Polled picking session", "session_id", sessionID, "media_items_set", session.MediaItemsSet)
	return true
}

type mediaItemsListResponse struct {
	MediaItems    []domain.PickedMediaItem `json:"mediaItems"`
	NextPageToken string                   `json:"nextPageToken"`
}

func (p *PickerImpl) ListMediaItems(ctx context.Context) bool {
	p.mu.Lock()
	if p.state != picker.ItemsPicked {
		p.mu.Unlock()
		p.Logger.Warn("ListMediaItems called in wrong state", "state", p.state.String())
		return false
	}
	sessionID := p.session.ID
	p.mu.Unlock()

	var items []domain.PickedMediaItem
	pageToken := ""
	for {
		endpoint := "/v1/mediaItems?sessionId=" + url.QueryEscape(sessionID)
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var page mediaItemsListResponse
		if err := p.request(ctx, http.MethodGet, endpoint, &page); err != nil {
			p.Logger.Error("Failed to list media items", "session_id", sessionID, "error", err)
			return false
		}

		items = append(items, page.MediaItems...)
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	p.mu.Lock()
	p.items = items
	p.state = picker.ItemsListed
	p.mu.Unlock()

	p.Logger.Info("Listed picked media items", "session_id", sessionID, "count", len(items))
	return true
}

// DeleteSession releases the current session. The remote delete is
// best-effort: local state always resets to NoSession so a later run can
// create a fresh session even when the remote side already expired ours.
func (p *PickerImpl) DeleteSession(ctx context.Context) bool {
	p.mu.Lock()
	if p.state == picker.NoSession {
		p.mu.Unlock()
		return false
	}
	sessionID := p.session.ID
	p.state = picker.NoSession
	p.session = domain.PickingSession{}
	p.items = nil
	p.mu.Unlock()

	if err := p.request(ctx, http.MethodDelete, "/v1/sessions/"+sessionID, nil); err != nil {
		p.Logger.Error("Failed to delete picking session remotely", "session_id", sessionID, "error", err)
		return false
	}

	p.Logger.Info("Deleted picking session", "session_id", sessionID)
	return true
}

// LoadMedia fetches the original-quality bytes for one picked item. Videos
// get the download suffix, images the full-metadata suffix, per the media
// base-url contract. Failures return an empty buffer so the caller skips
// the item instead of aborting the batch.
func (p *PickerImpl) LoadMedia(ctx context.Context, item domain.PickedMediaItem) []byte {
	mediaURL := item.MediaFile.BaseURL
	switch item.Kind() {
	case "video":
		mediaURL += "=dv"
	case "image":
		mediaURL += "=d"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		p.Logger.Error("Failed to build media request", "item_id", item.ID, "error", err)
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+p.Auth.AccessToken())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.Logger.Error("Failed to fetch media item", "item_id", item.ID, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.Logger.Error("Media fetch returned non-200", "item_id", item.ID, "status", resp.StatusCode)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		p.Logger.Error("Failed to read media body", "item_id", item.ID, "error", err)
		return nil
	}

	return data
}
