package domain

import (
	"strings"
	"time"
)

// MediaFileMetadata mirrors the Picker API MediaFile metadata we care about.
type MediaFileMetadata struct {
	Width       int    `json:"width,string"`
	Height      int    `json:"height,string"`
	CameraMake  string `json:"cameraMake"`
	CameraModel string `json:"cameraModel"`
}

// MediaFile is the downloadable asset behind a picked item.
type MediaFile struct {
	BaseURL  string            `json:"baseUrl"`
	MimeType string            `json:"mimeType"`
	Filename string            `json:"filename"`
	Metadata MediaFileMetadata `json:"mediaFileMetadata"`
}

// PickedMediaItem is an immutable snapshot of a remote media reference,
// held only for the duration of a download.
type PickedMediaItem struct {
	ID         string    `json:"id"`
	CreateTime time.Time `json:"createTime"`
	Type       string    `json:"type"`
	MediaFile  MediaFile `json:"mediaFile"`
}

// Kind returns the first MIME segment, e.g. "image" or "video".
func (m PickedMediaItem) Kind() string {
	if i := strings.Index(m.MediaFile.MimeType, "/"); i > 0 {
		return m.MediaFile.MimeType[:i]
	}
	return m.MediaFile.MimeType
}

// TakenOn reports whether the item's capture timestamp falls on the given
// calendar date (year, month, day-of-month compared exactly).
func (m PickedMediaItem) TakenOn(date time.Time) bool {
	y1, mo1, d1 := m.CreateTime.Date()
	y2, mo2, d2 := date.Date()
	return y1 == y2 && mo1 == mo2 && d1 == d2
}
