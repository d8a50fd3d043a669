package convert

import "context"

//go:generate go run go.uber.org/mock/mockgen -source=convert.go -destination=mocks/mock.go

// Client migrates a pre-scrapbook journal into the scrapbook layout.
type Client interface {
	// ConvertLegacyJournal finds date-titled notes anywhere in the vault,
	// copies each into its scrapbook day directory and pulls loose media
	// files whose timestamp falls on the same day next to it. Existing
	// scrapbook content is never overwritten. Returns the number of notes
	// migrated.
	ConvertLegacyJournal(ctx context.Context) (int, error)
}
