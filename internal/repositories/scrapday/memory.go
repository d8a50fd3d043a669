package scrapday

import (
	"context"
	"sync"
	"time"

	"github.com/orgball2608/scrapbook-daily-bot/internal/domain"
)

// MemoryRepository backs tests without postgres.
type MemoryRepository struct {
	mu      sync.Mutex
	nextID  int
	Records []domain.ScrapDayRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1}
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) Create(_ context.Context, rec domain.ScrapDayRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = r.nextID
	r.nextID++
	rec.CreatedAt = time.Now()
	r.Records = append(r.Records, rec)
	return nil
}

func (r *MemoryRepository) ListRecent(_ context.Context, limit int) ([]*domain.ScrapDayRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ScrapDayRecord
	for i := len(r.Records) - 1; i >= 0 && len(out) < limit; i-- {
		rec := r.Records[i]
		out = append(out, &rec)
	}
	return out, nil
}
