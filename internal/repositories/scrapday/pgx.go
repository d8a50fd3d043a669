package scrapday

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/scrapbook-daily-bot/internal/domain"
	"github.com/orgball2608/scrapbook-daily-bot/internal/repositories"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/logger"
)

type PgxRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPgxRepository(pool *pgxpool.Pool, logger logger.Logger) *PgxRepository {
	return &PgxRepository{
		pool:   pool,
		logger: logger.WithComponent("ScrapDayRepo"),
	}
}

var _ Repository = (*PgxRepository)(nil)

func (r *PgxRepository) Create(ctx context.Context, rec domain.ScrapDayRecord) error {
	query, args, err := repositories.SqBuilder.
		Insert("scrap_days").
		Columns("day", "directory", "note_created", "media_count").
		Values(rec.Day, rec.Directory, rec.NoteCreated, rec.MediaCount).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return errors.Join(err, ErrCannotCreate)
	}

	return nil
}

func (r *PgxRepository) ListRecent(ctx context.Context, limit int) ([]*domain.ScrapDayRecord, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "day", "directory", "note_created", "media_count", "created_at").
		From("scrap_days").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.ScrapDayRecord
	for rows.Next() {
		rec := domain.ScrapDayRecord{}
		if err := rows.Scan(&rec.ID, &rec.Day, &rec.Directory, &rec.NoteCreated, &rec.MediaCount, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}
