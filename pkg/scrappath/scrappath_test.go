package scrappath

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDirectoryFor_Deterministic(t *testing.T) {
	d := date(2024, time.March, 2)
	first := DirectoryFor(d, DecoratedDays)
	second := DirectoryFor(d, DecoratedDays)
	if first != second {
		t.Errorf("DirectoryFor is not deterministic: %q vs %q", first, second)
	}
}

func TestDirectoryFor_Plain(t *testing.T) {
	got := DirectoryFor(date(2024, time.March, 2), PlainDays)
	want := "Scrapbook/2024/3 March/2"
	if got != want {
		t.Errorf("DirectoryFor = %q, want %q", got, want)
	}
}

func TestDirectoryFor_Decorated(t *testing.T) {
	// 2024-03-02 was a Saturday
	got := DirectoryFor(date(2024, time.March, 2), DecoratedDays)
	want := "Scrapbook/2024/3 March/2024-03-02 (Sat) Scrap Day"
	if got != want {
		t.Errorf("DirectoryFor = %q, want %q", got, want)
	}
}

func TestDirectoryFor_NoCollisionAcrossDays(t *testing.T) {
	seen := map[string]time.Time{}
	d := date(2023, time.December, 25)
	for i := 0; i < 40; i++ {
		p := DirectoryFor(d, PlainDays)
		if prev, ok := seen[p]; ok {
			t.Fatalf("days %v and %v map to the same directory %q", prev, d, p)
		}
		seen[p] = d
		d = d.AddDate(0, 0, 1)
	}
}

func TestNotePathFor(t *testing.T) {
	got := NotePathFor("Scrap Page", date(2024, time.March, 2), PlainDays)
	want := "Scrapbook/2024/3 March/2/Scrap Page -.md"
	if got != want {
		t.Errorf("NotePathFor = %q, want %q", got, want)
	}
}

func TestTitledNotePathFor(t *testing.T) {
	got := TitledNotePathFor("Scrap Page", date(2024, time.March, 2), "Beach Trip", PlainDays)
	want := "Scrapbook/2024/3 March/2/Scrap Page - Beach Trip.md"
	if got != want {
		t.Errorf("TitledNotePathFor = %q, want %q", got, want)
	}

	if got, want := TitledNotePathFor("Scrap Page", date(2024, time.March, 2), "", PlainDays),
		NotePathFor("Scrap Page", date(2024, time.March, 2), PlainDays); got != want {
		t.Errorf("empty title diverged from NotePathFor: %q vs %q", got, want)
	}
}

func TestDateProperty_ZeroPadded(t *testing.T) {
	got := DateProperty(date(987, time.January, 5))
	if got != "0987-01-05" {
		t.Errorf("DateProperty = %q, want %q", got, "0987-01-05")
	}
}

func TestMediaArtifactName(t *testing.T) {
	tests := []struct {
		name     string
		original string
		kind     string
		index    int
		want     string
	}{
		{"image", "IMG_1234.jpg", "image", 0, "0-scrap-image.jpg"},
		{"video", "clip.mp4", "video", 3, "3-scrap-video.mp4"},
		{"no extension", "raw", "image", 1, "1-scrap-image.raw"},
		{"dotted name", "a.b.heic", "image", 2, "2-scrap-image.heic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MediaArtifactName(tt.original, tt.kind, tt.index)
			if got != tt.want {
				t.Errorf("MediaArtifactName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMediaArtifactName_CollidingOriginals(t *testing.T) {
	a := MediaArtifactName("IMG_0001.jpg", "image", 0)
	b := MediaArtifactName("IMG_0001.jpg", "image", 1)
	if a == b {
		t.Errorf("same original filename produced colliding artifacts: %q", a)
	}
}
