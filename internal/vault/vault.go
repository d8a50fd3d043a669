package vault

import (
	"context"
	"time"
)

//go:generate go run go.uber.org/mock/mockgen -source=vault.go -destination=mocks/mock.go

// Vault is the host knowledge-vault capability. Paths are vault-relative,
// forward-slash separated. Implementations must treat all operations as
// plain CRUD; idempotence policy lives in the materializer.
type Vault interface {
	FolderExists(ctx context.Context, path string) (bool, error)
	CreateFolder(ctx context.Context, path string) error
	FileExists(ctx context.Context, path string) (bool, error)
	Create(ctx context.Context, path, content string) error
	CreateBinary(ctx context.Context, path string, data []byte) error
	Read(ctx context.Context, path string) (string, error)
	Children(ctx context.Context, path string) ([]string, error)
	// Trash removes a file or folder. Recoverable deletion is the host's
	// concern; the filesystem implementation moves into a .trash directory.
	Trash(ctx context.Context, path string) error
	// ListFiles returns every file path under the vault root, used by the
	// legacy journal converter.
	ListFiles(ctx context.Context) ([]string, error)
	// ModTime returns the file's last modification time, the closest
	// portable stand-in for a creation timestamp. The converter uses it to
	// match loose media files to journal days.
	ModTime(ctx context.Context, path string) (time.Time, error)
}
