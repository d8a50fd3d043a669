// Package scrappath derives scrapbook vault paths from calendar dates.
// Every function here is pure: the same date always yields the same path,
// which is what makes re-running a day's creation idempotent.
package scrappath

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Style selects the day-directory naming form. Both forms are equivalent for
// the rest of the system; the decorated one embeds the ISO date and weekday.
type Style int

const (
	// PlainDays produces Scrapbook/<year>/<month#> <Month>/<day#>
	PlainDays Style = iota
	// DecoratedDays produces Scrapbook/<year>/<month#> <Month>/<YYYY-MM-DD> (<Dow>) Scrap Day
	DecoratedDays
)

const rootDir = "Scrapbook"

// DateProperty formats a date the way note properties expect: zero-padded
// YYYY-MM-DD.
func DateProperty(date time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", date.Year(), int(date.Month()), date.Day())
}

// DirectoryFor returns the vault-relative directory holding one scrapbook
// day's note and media.
func DirectoryFor(date time.Time, style Style) string {
	monthDir := fmt.Sprintf("%d %s", int(date.Month()), date.Month().String())

	var dayDir string
	switch style {
	case DecoratedDays:
		dayDir = fmt.Sprintf("%s (%s) Scrap Day", DateProperty(date), date.Weekday().String()[:3])
	default:
		dayDir = fmt.Sprintf("%d", date.Day())
	}

	return path.Join(rootDir, fmt.Sprintf("%d", date.Year()), monthDir, dayDir)
}

// NotePathFor returns the path of the day's markdown note.
func NotePathFor(prefix string, date time.Time, style Style) string {
	return TitledNotePathFor(prefix, date, "", style)
}

// TitledNotePathFor is NotePathFor with a title appended after the prefix
// separator. The converter uses it to preserve old journal entry titles.
func TitledNotePathFor(prefix string, date time.Time, title string, style Style) string {
	if title != "" {
		title = " " + title
	}
	return path.Join(DirectoryFor(date, style), prefix+" -"+title+".md")
}

// MediaArtifactName names a downloaded media file within a day directory.
// The zero-based sequence index keeps names unique even when several picked
// items share an original filename; kind is the first MIME segment
// ("image", "video").
func MediaArtifactName(originalName, kind string, index int) string {
	// Last dot-separated segment; a name with no dot is its own extension.
	ext := originalName
	if i := strings.LastIndex(originalName, "."); i >= 0 {
		ext = originalName[i+1:]
	}
	return fmt.Sprintf("%d-scrap-%s.%s", index, kind, ext)
}
