package domain

import "time"

// DateRange is a contiguous run of calendar days handled by one flow
// invocation. When IsRange is false End is ignored and treated as Start.
type DateRange struct {
	Start   time.Time
	End     time.Time
	IsRange bool
}

// EffectiveEnd returns End for a range request and Start otherwise.
func (r DateRange) EffectiveEnd() time.Time {
	if r.IsRange {
		return r.End
	}
	return r.Start
}

// CreationRequest is the validated input produced once by the input boundary.
// It is immutable for the duration of a flow run.
type CreationRequest struct {
	Range      DateRange
	Preface    string
	PullImages bool
	CreateNote bool
	ChatID     int64
}

// ScrapDay is the directory+note pair representing one calendar date's
// journal entry. It is derived from the date, never stored.
type ScrapDay struct {
	Date      time.Time
	Directory string
	NotePath  string
}

// ScrapDayRecord is the persisted history of a materialized day.
type ScrapDayRecord struct {
	ID          int
	Day         time.Time
	Directory   string
	NoteCreated bool
	MediaCount  int
	CreatedAt   time.Time
}
