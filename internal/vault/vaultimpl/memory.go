package vaultimpl

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/orgball2608/scrapbook-daily-bot/internal/vault"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/errors"
)

// MemoryVault is an in-memory vault.Vault used by tests.
type MemoryVault struct {
	mu       sync.RWMutex
	files    map[string][]byte
	folders  map[string]bool
	modTimes map[string]time.Time
	Trashed  []string
}

func NewMemory() *MemoryVault {
	return &MemoryVault{
		files:    make(map[string][]byte),
		folders:  make(map[string]bool),
		modTimes: make(map[string]time.Time),
	}
}

var _ vault.Vault = (*MemoryVault)(nil)

func (v *MemoryVault) FolderExists(_ context.Context, path string) (bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.folders[path], nil
}

func (v *MemoryVault) CreateFolder(_ context.Context, path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	// create parents like MkdirAll
	parts := strings.Split(path, "/")
	for i := range parts {
		v.folders[strings.Join(parts[:i+1], "/")] = true
	}
	return nil
}

func (v *MemoryVault) FileExists(_ context.Context, path string) (bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.files[path]
	return ok, nil
}

func (v *MemoryVault) Create(_ context.Context, path, content string) error {
	return v.CreateBinary(context.Background(), path, []byte(content))
}

func (v *MemoryVault) CreateBinary(_ context.Context, path string, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.files[path] = append([]byte(nil), data...)
	if dir := parentOf(path); dir != "" {
		v.folders[dir] = true
	}
	return nil
}

func (v *MemoryVault) Read(_ context.Context, path string) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	data, ok := v.files[path]
	if !ok {
		return "", errors.ErrNotFound
	}
	return string(data), nil
}

func (v *MemoryVault) Children(_ context.Context, path string) ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.folders[path] {
		return nil, errors.ErrNotFound
	}

	seen := map[string]bool{}
	var children []string
	prefix := path + "/"
	add := func(p string) {
		rest := strings.TrimPrefix(p, prefix)
		name := rest
		if i := strings.Index(rest, "/"); i >= 0 {
			name = rest[:i]
		}
		child := prefix + name
		if !seen[child] {
			seen[child] = true
			children = append(children, child)
		}
	}
	for p := range v.files {
		if strings.HasPrefix(p, prefix) {
			add(p)
		}
	}
	for p := range v.folders {
		if strings.HasPrefix(p, prefix) {
			add(p)
		}
	}
	sort.Strings(children)
	return children, nil
}

func (v *MemoryVault) Trash(_ context.Context, path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.files, path)
	delete(v.folders, path)
	prefix := path + "/"
	for p := range v.files {
		if strings.HasPrefix(p, prefix) {
			delete(v.files, p)
		}
	}
	for p := range v.folders {
		if strings.HasPrefix(p, prefix) {
			delete(v.folders, p)
		}
	}
	v.Trashed = append(v.Trashed, path)
	return nil
}

func (v *MemoryVault) ListFiles(_ context.Context) ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	files := make([]string, 0, len(v.files))
	for p := range v.files {
		files = append(files, p)
	}
	sort.Strings(files)
	return files, nil
}

func (v *MemoryVault) ModTime(_ context.Context, path string) (time.Time, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if _, ok := v.files[path]; !ok {
		return time.Time{}, errors.ErrNotFound
	}
	return v.modTimes[path], nil
}

// SetModTime backdates a file for test scenarios built around file ages.
func (v *MemoryVault) SetModTime(path string, t time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.modTimes[path] = t
}

// FileCount reports how many files exist, for test assertions.
func (v *MemoryVault) FileCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.files)
}

func parentOf(path string) string {
	if i := strings.LastIndex(path, "/"); i > 0 {
		return path[:i]
	}
	return ""
}
