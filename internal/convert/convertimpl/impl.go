package convertimpl

import (
	"context"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/orgball2608/scrapbook-daily-bot/internal/convert"
	"github.com/orgball2608/scrapbook-daily-bot/internal/materializer"
	"github.com/orgball2608/scrapbook-daily-bot/internal/vault"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/config"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/logger"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/scrappath"
	"go.uber.org/fx"
)

// datedBasename matches legacy journal note names like "2023-4-7 Trip to the
// coast". Year first so plain numbered notes are not picked up by accident.
var datedBasename = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})`)

var mediaExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"mp4":  true,
}

type Opts struct {
	fx.In

	Vault        vault.Vault
	Materializer materializer.Client
	Logger       logger.Logger
	Config       *config.Config
}

type ConvertImpl struct {
	Vault        vault.Vault
	Materializer materializer.Client
	Logger       logger.Logger
	Config       *config.Config
}

func New(opts Opts) *ConvertImpl {
	return &ConvertImpl{
		Vault:        opts.Vault,
		Materializer: opts.Materializer,
		Logger:       opts.Logger.WithComponent("convert"),
		Config:       opts.Config,
	}
}

var _ convert.Client = (*ConvertImpl)(nil)

func (c *ConvertImpl) ConvertLegacyJournal(ctx context.Context) (int, error) {
	files, err := c.Vault.ListFiles(ctx)
	if err != nil {
		return 0, err
	}

	var notes, media []string
	for _, f := range files {
		if strings.HasPrefix(f, "Scrapbook/") {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(f), "."))
		switch {
		case ext == "md":
			notes = append(notes, f)
		case mediaExtensions[ext]:
			media = append(media, f)
		}
	}

	style := c.style()
	migrated := 0
	var firstErr error
	for _, note := range notes {
		base := strings.TrimSuffix(path.Base(note), ".md")
		day, title, ok := parseLegacyName(base)
		if !ok {
			continue
		}

		if err := c.migrateNote(ctx, note, day, title, media, style); err != nil {
			c.Logger.Error("Failed to migrate journal note", "note", note, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		migrated++
	}

	c.Logger.Info("Legacy journal conversion finished", "migrated", migrated, "candidates", len(notes))
	return migrated, firstErr
}

func (c *ConvertImpl) migrateNote(ctx context.Context, note string, day time.Time, title string, media []string, style scrappath.Style) error {
	dir := scrappath.DirectoryFor(day, style)
	if err := c.Materializer.EnsureDirectory(ctx, dir); err != nil {
		return err
	}

	content, err := c.Vault.Read(ctx, note)
	if err != nil {
		return err
	}

	target := scrappath.TitledNotePathFor(c.Config.Vault.NoteNamePrefix, day, title, style)
	if _, err := c.Materializer.CreateNoteIfAbsent(ctx, target, content); err != nil {
		return err
	}

	for _, m := range media {
		mt, err := c.Vault.ModTime(ctx, m)
		if err != nil {
			c.Logger.Warn("Could not stat media file, skipping", "file", m, "error", err)
			continue
		}
		if !sameDay(mt, day) {
			continue
		}

		data, err := c.Vault.Read(ctx, m)
		if err != nil {
			c.Logger.Warn("Could not read media file, skipping", "file", m, "error", err)
			continue
		}
		if _, err := c.Materializer.CreateMediaIfAbsent(ctx, dir+"/"+path.Base(m), []byte(data)); err != nil {
			c.Logger.Warn("Could not copy media file", "file", m, "error", err)
		}
	}
	return nil
}

// parseLegacyName splits "2023-4-7 Trip" into the calendar day and the
// remaining title. The date is taken exactly as written.
func parseLegacyName(base string) (time.Time, string, bool) {
	match := datedBasename.FindStringSubmatch(base)
	if match == nil {
		return time.Time{}, "", false
	}

	year, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])
	dayNum, _ := strconv.Atoi(match[3])
	if month < 1 || month > 12 || dayNum < 1 || dayNum > 31 {
		return time.Time{}, "", false
	}

	day := time.Date(year, time.Month(month), dayNum, 0, 0, 0, 0, time.UTC)
	title := strings.TrimSpace(base[len(match[0]):])
	return day, title, true
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (c *ConvertImpl) style() scrappath.Style {
	if c.Config.Vault.DecoratedDayDirs {
		return scrappath.DecoratedDays
	}
	return scrappath.PlainDays
}
