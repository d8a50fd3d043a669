package materializerimpl

import (
	"context"
	"fmt"

	"github.com/orgball2608/scrapbook-daily-bot/internal/materializer"
	"github.com/orgball2608/scrapbook-daily-bot/internal/vault"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Vault  vault.Vault
	Logger logger.Logger
}

type MaterializerImpl struct {
	Vault  vault.Vault
	Logger logger.Logger
}

func New(opts Opts) *MaterializerImpl {
	return &MaterializerImpl{
		Vault:  opts.Vault,
		Logger: opts.Logger.WithComponent("Materializer"),
	}
}

var _ materializer.Client = (*MaterializerImpl)(nil)

func (m *MaterializerImpl) EnsureDirectory(ctx context.Context, path string) error {
	exists, err := m.Vault.FolderExists(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to check directory %s: %w", path, err)
	}
	if exists {
		return nil
	}

	m.Logger.Info("Creating directory", "path", path)
	if err := m.Vault.CreateFolder(ctx, path); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

func (m *MaterializerImpl) CreateNoteIfAbsent(ctx context.Context, path, content string) (bool, error) {
	exists, err := m.Vault.FileExists(ctx, path)
	if err != nil {
		return false, fmt.Errorf("failed to check note %s: %w", path, err)
	}
	if exists {
		m.Logger.Debug("Note already exists, skipping", "path", path)
		return false, nil
	}

	if err := m.Vault.Create(ctx, path, content); err != nil {
		return false, fmt.Errorf("failed to create note %s: %w", path, err)
	}

	m.Logger.Info("Created note", "path", path)
	return true, nil
}

func (m *MaterializerImpl) CreateMediaIfAbsent(ctx context.Context, path string, data []byte) (bool, error) {
	exists, err := m.Vault.FileExists(ctx, path)
	if err != nil {
		return false, fmt.Errorf("failed to check media %s: %w", path, err)
	}
	if exists {
		m.Logger.Debug("Media already exists, skipping", "path", path)
		return false, nil
	}

	if err := m.Vault.CreateBinary(ctx, path, data); err != nil {
		return false, fmt.Errorf("failed to write media %s: %w", path, err)
	}

	m.Logger.Info("Wrote media", "path", path, "bytes", len(data))
	return true, nil
}

func (m *MaterializerImpl) DeleteIfEmpty(ctx context.Context, path string) (bool, error) {
	exists, err := m.Vault.FolderExists(ctx, path)
	if err != nil {
		return false, fmt.Errorf("failed to check directory %s: %w", path, err)
	}
	if !exists {
		return false, nil
	}

	children, err := m.Vault.Children(ctx, path)
	if err != nil {
		return false, fmt.Errorf("failed to list directory %s: %w", path, err)
	}
	if len(children) > 0 {
		return false, nil
	}

	m.Logger.Info("Deleting empty directory", "path", path)
	if err := m.Vault.Trash(ctx, path); err != nil {
		return false, fmt.Errorf("failed to trash directory %s: %w", path, err)
	}
	return true, nil
}
