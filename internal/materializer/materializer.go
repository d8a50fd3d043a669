package materializer

import "context"

//go:generate go run go.uber.org/mock/mockgen -source=materializer.go -destination=mocks/mock.go

// Client centralizes the no-clobber invariant for every vault write the
// creation flow performs. Re-running a full flow over an already-populated
// range must only fill gaps, never duplicate or overwrite.
type Client interface {
	// EnsureDirectory creates the directory if it is missing. No-op when
	// it already exists.
	EnsureDirectory(ctx context.Context, path string) error

	// CreateNoteIfAbsent writes a text note unless one already exists at
	// path. Returns true when a note was actually created.
	CreateNoteIfAbsent(ctx context.Context, path, content string) (bool, error)

	// CreateMediaIfAbsent writes a binary file unless one already exists at
	// path. Returns true when the file was actually written.
	CreateMediaIfAbsent(ctx context.Context, path string, data []byte) (bool, error)

	// DeleteIfEmpty trashes the directory when it has no children. Returns
	// true when the directory was removed.
	DeleteIfEmpty(ctx context.Context, path string) (bool, error)
}
