package flowimpl

import (
	"context"
	"fmt"
	"path"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/orgball2608/scrapbook-daily-bot/internal/domain"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/noteprops"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/scrappath"
	"github.com/panjf2000/ants/v2"
)

// materializeRange walks the requested days in order and materializes each
// one. Items are sorted by capture time once up front so per-day artifact
// indexes are stable across re-runs. Day-level failures are reported and the
// walk continues; the first one is returned at the end.
func (f *FlowImpl) materializeRange(ctx context.Context, req domain.CreationRequest, items []domain.PickedMediaItem) error {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreateTime.Before(items[j].CreateTime)
	})

	template := f.loadTemplate(ctx)
	end := req.Range.EffectiveEnd()
	daysLeft := f.Config.Download.RangeDayLimit
	focusPending := true
	var firstErr error

	for day := req.Range.Start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if daysLeft <= 0 {
			f.Logger.Warn("Range day limit reached, stopping early",
				"limit", f.Config.Download.RangeDayLimit)
			f.notify(req.ChatID, fmt.Sprintf("Stopped after %d days, the rest of the range was skipped.", f.Config.Download.RangeDayLimit))
			break
		}
		daysLeft--

		noteCreated, err := f.materializeDay(ctx, req, day, assignItems(req, items, day), template, focusPending)
		if err != nil {
			f.Logger.Error("Failed to materialize day", "day", scrappath.DateProperty(day), "error", err)
			f.notify(req.ChatID, fmt.Sprintf("Failed on %s: %s", scrappath.DateProperty(day), err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if noteCreated {
			focusPending = false
		}
	}
	return firstErr
}

// assignItems selects the picked items belonging to one day. A single-day
// request takes everything the user picked regardless of capture time; a
// range request matches items to days by exact calendar date.
func assignItems(req domain.CreationRequest, items []domain.PickedMediaItem, day time.Time) []domain.PickedMediaItem {
	if !req.Range.IsRange {
		return items
	}
	var out []domain.PickedMediaItem
	for _, item := range items {
		if item.TakenOn(day) {
			out = append(out, item)
		}
	}
	return out
}

func (f *FlowImpl) materializeDay(ctx context.Context, req domain.CreationRequest, day time.Time, items []domain.PickedMediaItem, template string, focus bool) (bool, error) {
	style := f.style()
	dir := scrappath.DirectoryFor(day, style)

	if err := f.Materializer.EnsureDirectory(ctx, dir); err != nil {
		return false, err
	}

	noteCreated := false
	if req.CreateNote {
		notePath := scrappath.NotePathFor(f.Config.Vault.NoteNamePrefix, day, style)
		content := f.renderNote(template, day, req.Preface)
		created, err := f.Materializer.CreateNoteIfAbsent(ctx, notePath, content)
		if err != nil {
			return false, err
		}
		noteCreated = created
		if created && focus {
			f.notify(req.ChatID, "Created "+notePath)
		}
	}

	mediaCount := 0
	if req.PullImages && len(items) > 0 {
		mediaCount = f.downloadItems(ctx, dir, items)
		f.Logger.Info("Media materialized", "day", scrappath.DateProperty(day),
			"picked", len(items), "saved", mediaCount)
	}

	removed, err := f.Materializer.DeleteIfEmpty(ctx, dir)
	if err != nil {
		f.Logger.Warn("Could not clean up day directory", "dir", dir, "error", err)
	}
	if removed {
		f.Logger.Debug("Removed empty day directory", "dir", dir)
		return false, nil
	}

	if noteCreated || mediaCount > 0 {
		rec := domain.ScrapDayRecord{
			Day:         day,
			Directory:   dir,
			NoteCreated: noteCreated,
			MediaCount:  mediaCount,
		}
		if err := f.ScrapDayRepo.Create(ctx, rec); err != nil {
			f.Logger.Warn("Could not record scrap day history", "day", scrappath.DateProperty(day), "error", err)
		}
	}
	return noteCreated, nil
}

// loadTemplate reads the configured note template from the vault, falling
// back to a minimal built-in frontmatter block when it is missing.
func (f *FlowImpl) loadTemplate(ctx context.Context) string {
	text, err := f.Vault.Read(ctx, f.Config.Vault.TemplatePath+".md")
	if err != nil {
		f.Logger.Warn("Note template not readable, using built-in",
			"path", f.Config.Vault.TemplatePath+".md", "error", err)
		v := f.Config.Vault
		return fmt.Sprintf("---\n%s: \n%s: \n%s: \n---\n",
			v.DatePropertyName, v.DateCreatedName, v.PrefacePropName)
	}
	return text
}

func (f *FlowImpl) renderNote(template string, day time.Time, preface string) string {
	v := f.Config.Vault
	content := noteprops.SetProperty(template, v.DatePropertyName, scrappath.DateProperty(day))
	content = noteprops.SetProperty(content, v.DateCreatedName, scrappath.DateProperty(f.now()))
	content = noteprops.SetProperty(content, v.PrefacePropName, preface)
	return content
}

// downloadItems fetches the day's items in fixed-width batches, waiting for
// each batch to drain before starting the next. Items whose target file
// already exists are skipped without a fetch, and failed downloads are
// skipped without aborting the batch. Returns the number of files written.
func (f *FlowImpl) downloadItems(ctx context.Context, dir string, items []domain.PickedMediaItem) int {
	batch := f.Config.Download.BatchSize
	if batch <= 0 {
		batch = 1
	}

	pool, err := ants.NewPool(batch, ants.WithPreAlloc(true))
	if err != nil {
		f.Logger.Error("Failed to create download pool", "error", err)
		return 0
	}
	defer pool.Release()

	var saved int64
	for start := 0; start < len(items); start += batch {
		stop := min(start+batch, len(items))

		var wg sync.WaitGroup
		for i := start; i < stop; i++ {
			item := items[i]
			target := path.Join(dir, scrappath.MediaArtifactName(item.MediaFile.Filename, item.Kind(), i))

			if exists, err := f.Vault.FileExists(ctx, target); err == nil && exists {
				f.Logger.Debug("Media already present, skipping", "path", target)
				continue
			}

			wg.Add(1)
			if err := pool.Submit(func() {
				defer wg.Done()
				select {
				case <-ctx.Done():
					return
				default:
				}
				if err := f.limiter.Wait(ctx); err != nil {
					return
				}
				data := f.Picker.LoadMedia(ctx, item)
				if len(data) == 0 {
					f.Logger.Warn("Download failed, skipping item", "id", item.ID, "filename", item.MediaFile.Filename)
					return
				}
				created, err := f.Materializer.CreateMediaIfAbsent(ctx, target, data)
				if err != nil {
					f.Logger.Warn("Could not write media file", "path", target, "error", err)
					return
				}
				if created {
					atomic.AddInt64(&saved, 1)
				}
			}); err != nil {
				wg.Done()
				f.Logger.Error("Failed to submit download job", "path", target, "error", err)
			}
		}
		wg.Wait()
	}
	return int(saved)
}
