package pickerimpl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orgball2608/scrapbook-daily-bot/internal/auth"
	"github.com/orgball2608/scrapbook-daily-bot/internal/domain"
	"github.com/orgball2608/scrapbook-daily-bot/internal/picker"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/logger"
)

type fakeAuth struct {
	token string
}

func (f *fakeAuth) IsAuthenticated() bool                        { return f.token != "" }
func (f *fakeAuth) AuthenticateIfNeeded(context.Context) error   { return nil }
func (f *fakeAuth) Authenticate(context.Context) bool            { return f.token != "" }
func (f *fakeAuth) ClearAuth(context.Context) error              { f.token = ""; return nil }
func (f *fakeAuth) AccessToken() string                          { return f.token }
func (f *fakeAuth) AuthURL() string                              { return "https://accounts.example.com/auth" }
func (f *fakeAuth) Subscribe() <-chan auth.Event                 { return make(chan auth.Event) }

var _ auth.Manager = (*fakeAuth)(nil)

func newTestPicker(baseURL string) *PickerImpl {
	return &PickerImpl{
		Auth:       &fakeAuth{token: "test-token"},
		Logger:     logger.New(logger.Opts{}),
		BaseURL:    baseURL,
		httpClient: http.DefaultClient,
		state:      picker.NoSession,
	}
}

func pickerServer(t *testing.T, mediaItemsSet bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("create: Authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{"id":"sess-1","pickerUri":"https://photos.example.com/pick/sess-1","mediaItemsSet":false}`))
	})
	mux.HandleFunc("GET /v1/sessions/sess-1", func(w http.ResponseWriter, r *http.Request) {
		body := `{"id":"sess-1","pickerUri":"https://photos.example.com/pick/sess-1","mediaItemsSet":false}`
		if mediaItemsSet {
			body = `{"id":"sess-1","pickerUri":"https://photos.example.com/pick/sess-1","mediaItemsSet":true}`
		}
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("GET /v1/mediaItems", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("sessionId"); got != "sess-1" {
			t.Errorf("list: sessionId = %q", got)
		}
		_, _ = w.Write([]byte(`{"mediaItems":[
			{"id":"m1","createTime":"2024-03-02T01:30:00Z","type":"PHOTO",
			 "mediaFile":{"baseUrl":"https://media.example.com/m1","mimeType":"image/jpeg","filename":"IMG_1.jpg"}},
			{"id":"m2","createTime":"2024-03-01T10:00:00Z","type":"VIDEO",
			 "mediaFile":{"baseUrl":"https://media.example.com/m2","mimeType":"video/mp4","filename":"clip.mp4"}}
		]}`))
	})
	mux.HandleFunc("DELETE /v1/sessions/sess-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	return httptest.NewServer(mux)
}

func TestSessionLifecycle(t *testing.T) {
	srv := pickerServer(t, true)
	defer srv.Close()

	p := newTestPicker(srv.URL)
	ctx := context.Background()

	if !p.CreateNewSession(ctx) {
		t.Fatal("CreateNewSession failed")
	}
	if p.State() != picker.WaitingForPicker {
		t.Fatalf("state = %v, want WaitingForPicker", p.State())
	}
	if p.PickerURI() == "" {
		t.Error("picker URI not recorded")
	}

	// A second create while a session exists must fail.
	if p.CreateNewSession(ctx) {
		t.Error("CreateNewSession succeeded in WaitingForPicker")
	}

	if !p.PollCurrentSession(ctx) {
		t.Fatal("PollCurrentSession failed")
	}
	if p.State() != picker.ItemsPicked {
		t.Fatalf("state = %v, want ItemsPicked", p.State())
	}
	if !p.FinishedPicking() {
		t.Error("FinishedPicking false after items picked")
	}

	if !p.ListMediaItems(ctx) {
		t.Fatal("ListMediaItems failed")
	}
	if p.State() != picker.ItemsListed {
		t.Fatalf("state = %v, want ItemsListed", p.State())
	}
	items := p.PickedItems()
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Kind() != "image" || items[1].Kind() != "video" {
		t.Errorf("unexpected kinds: %q, %q", items[0].Kind(), items[1].Kind())
	}

	if !p.DeleteSession(ctx) {
		t.Fatal("DeleteSession failed")
	}
	if p.State() != picker.NoSession {
		t.Fatalf("state = %v, want NoSession after delete", p.State())
	}
}

func TestPollNotFinished(t *testing.T) {
	srv := pickerServer(t, false)
	defer srv.Close()

	p := newTestPicker(srv.URL)
	ctx := context.Background()

	if !p.CreateNewSession(ctx) {
		t.Fatal("CreateNewSession failed")
	}
	if !p.PollCurrentSession(ctx) {
		t.Fatal("PollCurrentSession failed")
	}
	// Remote has not reported committed picks yet.
	if p.State() != picker.WaitingForPicker {
		t.Errorf("state = %v, want WaitingForPicker", p.State())
	}
	if p.FinishedPicking() {
		t.Error("FinishedPicking true before items picked")
	}
}

func TestStateGuards(t *testing.T) {
	p := newTestPicker("http://unused")
	ctx := context.Background()

	if p.PollCurrentSession(ctx) {
		t.Error("poll succeeded with no session")
	}
	if p.ListMediaItems(ctx) {
		t.Error("list succeeded with no session")
	}
	if p.DeleteSession(ctx) {
		t.Error("delete succeeded with no session")
	}
}

func TestDeleteSessionRemoteFailureStillResets(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"sess-1","pickerUri":"https://photos.example.com/pick/sess-1","mediaItemsSet":false}`))
	})
	mux.HandleFunc("DELETE /v1/sessions/sess-1", func(w http.ResponseWriter, r *http.Request) {
		// Session already expired server-side.
		http.Error(w, "not found", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := newTestPicker(srv.URL)
	ctx := context.Background()

	if !p.CreateNewSession(ctx) {
		t.Fatal("CreateNewSession failed")
	}
	if p.DeleteSession(ctx) {
		t.Error("DeleteSession reported success despite remote 404")
	}
	if p.State() != picker.NoSession {
		t.Fatalf("state = %v, want NoSession after failed remote delete", p.State())
	}
	// The singleton must be reusable for the next run.
	if !p.CreateNewSession(ctx) {
		t.Error("CreateNewSession failed after a failed remote delete")
	}
}

func TestCreateSessionRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	p := newTestPicker(srv.URL)
	if p.CreateNewSession(context.Background()) {
		t.Error("CreateNewSession succeeded against a failing remote")
	}
	if p.State() != picker.NoSession {
		t.Errorf("state = %v, want NoSession after failure", p.State())
	}
}

func TestLoadMedia(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("media: Authorization = %q", got)
		}
		_, _ = w.Write([]byte("media-bytes"))
	}))
	defer srv.Close()

	p := newTestPicker(srv.URL)
	item := domain.PickedMediaItem{
		ID: "m1",
		MediaFile: domain.MediaFile{
			BaseURL:  srv.URL + "/asset",
			MimeType: "video/mp4",
			Filename: "clip.mp4",
		},
	}

	data := p.LoadMedia(context.Background(), item)
	if string(data) != "media-bytes" {
		t.Errorf("LoadMedia = %q", data)
	}
	if gotPath != "/asset=dv" {
		t.Errorf("video download suffix missing: %q", gotPath)
	}
}

func TestLoadMediaFailureReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	p := newTestPicker(srv.URL)
	item := domain.PickedMediaItem{
		ID:        "m1",
		MediaFile: domain.MediaFile{BaseURL: srv.URL + "/asset", MimeType: "image/jpeg"},
	}

	if data := p.LoadMedia(context.Background(), item); len(data) != 0 {
		t.Errorf("expected empty buffer on failure, got %d bytes", len(data))
	}
}
