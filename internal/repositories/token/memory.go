package token

import (
	"context"
	"sync"

	"github.com/orgball2608/scrapbook-daily-bot/internal/domain"
)

// MemoryRepository backs tests that need token persistence without postgres.
type MemoryRepository struct {
	mu    sync.Mutex
	token *domain.AuthToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) Get(_ context.Context) (*domain.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.token == nil {
		return nil, ErrNotFound
	}
	t := *r.token
	return &t, nil
}

func (r *MemoryRepository) Save(_ context.Context, token domain.AuthToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = &token
	return nil
}

func (r *MemoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = nil
	return nil
}
