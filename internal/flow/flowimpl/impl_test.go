package flowimpl

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/scrapbook-daily-bot/internal/auth"
	"github.com/orgball2608/scrapbook-daily-bot/internal/domain"
	"github.com/orgball2608/scrapbook-daily-bot/internal/flow"
	"github.com/orgball2608/scrapbook-daily-bot/internal/materializer/materializerimpl"
	"github.com/orgball2608/scrapbook-daily-bot/internal/picker"
	"github.com/orgball2608/scrapbook-daily-bot/internal/repositories/scrapday"
	"github.com/orgball2608/scrapbook-daily-bot/internal/vault/vaultimpl"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/config"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/errors"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/logger"
	"golang.org/x/time/rate"
)

type fakeAuth struct {
	authed bool
}

func (a *fakeAuth) IsAuthenticated() bool { return a.authed }
func (a *fakeAuth) AuthenticateIfNeeded(context.Context) error {
	if a.authed {
		return nil
	}
	return errors.Wrap(errors.ErrAuth, "not authenticated")
}
func (a *fakeAuth) Authenticate(context.Context) bool  { return a.authed }
func (a *fakeAuth) ClearAuth(context.Context) error    { a.authed = false; return nil }
func (a *fakeAuth) AccessToken() string                { return "token" }
func (a *fakeAuth) AuthURL() string                    { return "https://accounts.example/auth" }
func (a *fakeAuth) Subscribe() <-chan auth.Event       { return make(chan auth.Event) }

type fakePicker struct {
	createOK    bool
	createCalls int
	pollOK      bool
	finished    bool
	listOK      bool
	items       []domain.PickedMediaItem
	media       map[string][]byte
	deleted     bool
}

func (p *fakePicker) CreateNewSession(context.Context) bool {
	p.createCalls++
	return p.createOK
}
func (p *fakePicker) PollCurrentSession(context.Context) bool { return p.pollOK }
func (p *fakePicker) ListMediaItems(context.Context) bool     { return p.listOK }
func (p *fakePicker) DeleteSession(context.Context) bool      { p.deleted = true; return true }
func (p *fakePicker) LoadMedia(_ context.Context, item domain.PickedMediaItem) []byte {
	return p.media[item.ID]
}
func (p *fakePicker) PickerURI() string                      { return "https://photos.example/picker/abc" }
func (p *fakePicker) FinishedPicking() bool                  { return p.finished }
func (p *fakePicker) PickedItems() []domain.PickedMediaItem  { return p.items }
func (p *fakePicker) State() picker.State                    { return picker.NoSession }

type fakeTelegram struct {
	messages    []string
	pickerLinks []string
}

func (t *fakeTelegram) SendMessage(_ int64, text string)       { t.messages = append(t.messages, text) }
func (t *fakeTelegram) SendMessageToUser(text string)          { t.messages = append(t.messages, text) }
func (t *fakeTelegram) SendPickerLink(_ int64, uri string)     { t.pickerLinks = append(t.pickerLinks, uri) }
func (t *fakeTelegram) UpdatesChannel() tgbotapi.UpdatesChannel { return nil }
func (t *fakeTelegram) AnswerCallback(string)                  {}

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestFlow(t *testing.T) (*FlowImpl, *fakePicker, *vaultimpl.MemoryVault, *fakeTelegram, *scrapday.MemoryRepository) {
	t.Helper()

	v := vaultimpl.NewMemory()
	log := logger.New(logger.Opts{})
	cfg := &config.Config{}
	cfg.Vault.NoteNamePrefix = "Scrap Page"
	cfg.Vault.DatePropertyName = "date"
	cfg.Vault.DateCreatedName = "date-created"
	cfg.Vault.PrefacePropName = "preface"
	cfg.Vault.TemplatePath = "templates/daily"
	cfg.Download.BatchSize = 2
	cfg.Download.RangeDayLimit = 1000
	cfg.Download.RatePerSecond = 1000

	if err := v.Create(context.Background(), "templates/daily.md",
		"---\ndate: \ndate-created: \npreface: \n---\n"); err != nil {
		t.Fatal(err)
	}

	pk := &fakePicker{createOK: true, pollOK: true, finished: true, listOK: true, media: map[string][]byte{}}
	tg := &fakeTelegram{}
	repo := scrapday.NewMemoryRepository()

	f := &FlowImpl{
		Auth:         &fakeAuth{authed: true},
		Picker:       pk,
		Materializer: materializerimpl.New(materializerimpl.Opts{Vault: v, Logger: log}),
		Vault:        v,
		Telegram:     tg,
		ScrapDayRepo: repo,
		Logger:       log,
		Config:       cfg,
		state:        flow.Uninitialized,
		limiter:      rate.NewLimiter(rate.Inf, 1),
		now:          func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) },
	}
	return f, pk, v, tg, repo
}

func noteOnlyRequest(start, end time.Time) domain.CreationRequest {
	return domain.CreationRequest{
		Range:      domain.DateRange{Start: start, End: end, IsRange: !end.IsZero() && !end.Equal(start)},
		CreateNote: true,
		ChatID:     7,
	}
}

func TestNoteOnlyRange_CreatesOneNotePerDay(t *testing.T) {
	f, _, v, _, repo := newTestFlow(t)
	ctx := context.Background()

	req := noteOnlyRequest(testDate(2024, 3, 1), testDate(2024, 3, 3))
	if err := f.SubmitRequest(ctx, req); err != nil {
		t.Fatalf("SubmitRequest failed: %v", err)
	}
	if f.State() != flow.Done {
		t.Fatalf("state = %v, want Done", f.State())
	}

	for day := 1; day <= 3; day++ {
		path := "Scrapbook/2024/3 March/" + string(rune('0'+day)) + "/Scrap Page -.md"
		content, err := v.Read(ctx, path)
		if err != nil {
			t.Fatalf("note for day %d missing: %v", day, err)
		}
		want := "date: 2024-03-0" + string(rune('0'+day)) + "\n"
		if !strings.Contains(content, want) {
			t.Errorf("day %d note lacks %q:\n%s", day, want, content)
		}
		if !strings.Contains(content, "date-created: 2024-03-10\n") {
			t.Errorf("day %d note lacks creation date:\n%s", day, content)
		}
	}

	// template + three notes, no media
	if v.FileCount() != 4 {
		t.Errorf("file count = %d, want 4", v.FileCount())
	}
	if len(repo.Records) != 3 {
		t.Errorf("history records = %d, want 3", len(repo.Records))
	}
}

func TestSubmitRequest_InvertedRangeRejected(t *testing.T) {
	f, _, v, _, _ := newTestFlow(t)

	req := noteOnlyRequest(testDate(2024, 3, 5), testDate(2024, 3, 1))
	err := f.SubmitRequest(context.Background(), req)
	if !errors.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if f.State() != flow.Uninitialized {
		t.Errorf("state = %v, want Uninitialized", f.State())
	}
	if v.FileCount() != 1 {
		t.Errorf("vault was written to: %d files", v.FileCount())
	}
}

func TestSubmitRequest_Unauthenticated(t *testing.T) {
	f, pk, _, _, _ := newTestFlow(t)
	f.Auth = &fakeAuth{authed: false}

	req := noteOnlyRequest(testDate(2024, 3, 1), time.Time{})
	req.PullImages = true
	err := f.SubmitRequest(context.Background(), req)
	if !errors.IsAuth(err) {
		t.Fatalf("err = %v, want auth error", err)
	}
	if f.State() != flow.SettingsModal {
		t.Errorf("state = %v, want SettingsModal", f.State())
	}
	if pk.createCalls != 0 {
		t.Error("session was created without auth")
	}
}

func TestSubmitRequest_SessionFailsTwiceMovesToError(t *testing.T) {
	f, pk, _, _, _ := newTestFlow(t)
	pk.createOK = false

	req := noteOnlyRequest(testDate(2024, 3, 1), time.Time{})
	req.PullImages = true
	ctx := context.Background()

	err := f.SubmitRequest(ctx, req)
	if !errors.IsSession(err) {
		t.Fatalf("first submit err = %v, want session error", err)
	}
	if f.State() != flow.SettingsModal {
		t.Fatalf("state after first failure = %v, want SettingsModal", f.State())
	}

	err = f.SubmitRequest(ctx, req)
	if !errors.IsSession(err) {
		t.Fatalf("second submit err = %v, want session error", err)
	}
	if f.State() != flow.Error {
		t.Fatalf("state after second failure = %v, want Error", f.State())
	}

	// Error is terminal until an explicit reset.
	if err := f.SubmitRequest(ctx, req); !errors.IsValidation(err) {
		t.Errorf("submit in Error state err = %v, want validation error", err)
	}
	f.Reset()
	if f.State() != flow.Uninitialized {
		t.Errorf("state after reset = %v", f.State())
	}
}

func TestPickerFlow_SendsLinkAndMaterializes(t *testing.T) {
	f, pk, v, tg, _ := newTestFlow(t)
	ctx := context.Background()

	pk.items = []domain.PickedMediaItem{{
		ID:         "a",
		CreateTime: time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC),
		MediaFile:  domain.MediaFile{BaseURL: "https://x/a", MimeType: "image/jpeg", Filename: "pic.jpg"},
	}}
	pk.media["a"] = []byte{1, 2, 3}

	req := noteOnlyRequest(testDate(2024, 3, 1), time.Time{})
	req.PullImages = true
	if err := f.SubmitRequest(ctx, req); err != nil {
		t.Fatalf("SubmitRequest failed: %v", err)
	}
	if f.State() != flow.PhotosPicker {
		t.Fatalf("state = %v, want PhotosPicker", f.State())
	}
	if len(tg.pickerLinks) != 1 {
		t.Fatalf("picker links sent = %d, want 1", len(tg.pickerLinks))
	}

	if err := f.ConfirmPicking(ctx); err != nil {
		t.Fatalf("ConfirmPicking failed: %v", err)
	}
	if f.State() != flow.Done {
		t.Fatalf("state = %v, want Done", f.State())
	}
	if !pk.deleted {
		t.Error("session was not deleted after materialization")
	}

	if ok, _ := v.FileExists(ctx, "Scrapbook/2024/3 March/1/0-scrap-image.jpg"); !ok {
		t.Error("media artifact missing")
	}
}

func TestConfirmPicking_NotFinishedIsRetryable(t *testing.T) {
	f, pk, _, _, _ := newTestFlow(t)
	ctx := context.Background()

	req := noteOnlyRequest(testDate(2024, 3, 1), time.Time{})
	req.PullImages = true
	if err := f.SubmitRequest(ctx, req); err != nil {
		t.Fatal(err)
	}

	pk.finished = false
	if err := f.ConfirmPicking(ctx); !errors.IsSession(err) {
		t.Fatalf("err = %v, want session error", err)
	}
	if f.State() != flow.PhotosPicker {
		t.Fatalf("state = %v, want PhotosPicker after retryable failure", f.State())
	}

	pk.finished = true
	if err := f.ConfirmPicking(ctx); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if f.State() != flow.Done {
		t.Errorf("state = %v, want Done", f.State())
	}
}

func TestCancelPicking_MaterializesNothing(t *testing.T) {
	f, pk, v, _, _ := newTestFlow(t)
	ctx := context.Background()

	req := noteOnlyRequest(testDate(2024, 3, 1), time.Time{})
	req.PullImages = true
	if err := f.SubmitRequest(ctx, req); err != nil {
		t.Fatal(err)
	}
	if err := f.CancelPicking(ctx); err != nil {
		t.Fatalf("CancelPicking failed: %v", err)
	}

	if f.State() != flow.Done {
		t.Errorf("state = %v, want Done", f.State())
	}
	if !pk.deleted {
		t.Error("session was not deleted")
	}
	if v.FileCount() != 1 {
		t.Errorf("vault was written to: %d files", v.FileCount())
	}
}

func TestBegin_RejectsConcurrentFlow(t *testing.T) {
	f, _, _, _, _ := newTestFlow(t)
	ctx := context.Background()

	if err := f.Begin(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if err := f.Begin(ctx, 7); !errors.IsValidation(err) {
		t.Errorf("second Begin err = %v, want validation error", err)
	}
}

func TestCreateToday_NoteOnly(t *testing.T) {
	f, _, v, _, repo := newTestFlow(t)
	ctx := context.Background()

	if err := f.CreateToday(ctx); err != nil {
		t.Fatalf("CreateToday failed: %v", err)
	}

	content, err := v.Read(ctx, "Scrapbook/2024/3 March/10/Scrap Page -.md")
	if err != nil {
		t.Fatalf("today's note missing: %v", err)
	}
	if !strings.Contains(content, "date: 2024-03-10\n") {
		t.Errorf("note content:\n%s", content)
	}
	if len(repo.Records) != 1 {
		t.Errorf("history records = %d, want 1", len(repo.Records))
	}
	if f.State() != flow.Uninitialized {
		t.Errorf("CreateToday touched flow state: %v", f.State())
	}
}
