package vaultimpl

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/orgball2608/scrapbook-daily-bot/internal/vault"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/config"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/errors"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/logger"
	"go.uber.org/fx"
)

const trashDir = ".trash"

// FsVault implements vault.Vault over a root directory on disk.
type FsVault struct {
	Root   string
	Logger logger.Logger
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

func New(opts Opts) (*FsVault, error) {
	root, err := filepath.Abs(opts.Config.Vault.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault root: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create vault root: %w", err)
	}

	return &FsVault{
		Root:   root,
		Logger: opts.Logger.WithComponent("Vault"),
	}, nil
}

var _ vault.Vault = (*FsVault)(nil)

func (v *FsVault) abs(path string) string {
	return filepath.Join(v.Root, filepath.FromSlash(path))
}

func (v *FsVault) FolderExists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(v.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "failed to stat folder")
	}
	return info.IsDir(), nil
}

func (v *FsVault) CreateFolder(_ context.Context, path string) error {
	if err := os.MkdirAll(v.abs(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrIO, err.Error())
	}
	return nil
}

func (v *FsVault) FileExists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(v.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "failed to stat file")
	}
	return !info.IsDir(), nil
}

func (v *FsVault) Create(_ context.Context, path, content string) error {
	return v.writeFile(path, []byte(content))
}

func (v *FsVault) CreateBinary(_ context.Context, path string, data []byte) error {
	return v.writeFile(path, data)
}

func (v *FsVault) writeFile(path string, data []byte) error {
	full := v.abs(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.Wrap(errors.ErrIO, err.Error())
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrIO, err.Error())
	}
	return nil
}

func (v *FsVault) Read(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(v.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.ErrNotFound
		}
		return "", errors.Wrap(err, "failed to read file")
	}
	return string(data), nil
}

func (v *FsVault) Children(_ context.Context, path string) ([]string, error) {
	entries, err := os.ReadDir(v.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to list folder")
	}

	children := make([]string, 0, len(entries))
	for _, e := range entries {
		children = append(children, path+"/"+e.Name())
	}
	return children, nil
}

// Trash moves the target into the vault's .trash directory instead of
// deleting it outright, mirroring the host "move to trash" behaviour.
func (v *FsVault) Trash(_ context.Context, path string) error {
	full := v.abs(path)
	if _, err := os.Stat(full); os.IsNotExist(err) {
		return nil
	}

	dest := filepath.Join(v.Root, trashDir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(full)))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrap(errors.ErrIO, err.Error())
	}
	if err := os.Rename(full, dest); err != nil {
		return errors.Wrap(errors.ErrIO, err.Error())
	}

	v.Logger.Debug("Trashed vault entry", "path", path)
	return nil
}

func (v *FsVault) ModTime(_ context.Context, path string) (time.Time, error) {
	info, err := os.Stat(v.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, errors.ErrNotFound
		}
		return time.Time{}, errors.Wrap(err, "failed to stat file")
	}
	return info.ModTime(), nil
}

func (v *FsVault) ListFiles(_ context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(v.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == trashDir {
				return fs.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(v.Root, p)
		if err != nil {
			return err
		}
		files = append(files, strings.ReplaceAll(rel, string(filepath.Separator), "/"))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to walk vault")
	}
	return files, nil
}
