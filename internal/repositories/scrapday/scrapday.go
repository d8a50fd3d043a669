package scrapday

import (
	"context"
	"errors"

	"github.com/orgball2608/scrapbook-daily-bot/internal/domain"
)

var ErrCannotCreate = errors.New("error create scrap day record")

//go:generate go run go.uber.org/mock/mockgen -source=scrapday.go -destination=mocks/mock.go

// Repository records which days a flow run materialized, for /history
// reporting.
type Repository interface {
	Create(ctx context.Context, rec domain.ScrapDayRecord) error
	ListRecent(ctx context.Context, limit int) ([]*domain.ScrapDayRecord, error)
}
