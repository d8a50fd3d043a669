package token

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/scrapbook-daily-bot/internal/domain"
	"github.com/orgball2608/scrapbook-daily-bot/internal/repositories"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/logger"
)

// A single row keyed by id=1 holds the token triple.
const tokenRowID = 1

type PgxRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPgxRepository(pool *pgxpool.Pool, logger logger.Logger) *PgxRepository {
	return &PgxRepository{
		pool:   pool,
		logger: logger.WithComponent("TokenRepo"),
	}
}

var _ Repository = (*PgxRepository)(nil)

func (r *PgxRepository) Get(ctx context.Context) (*domain.AuthToken, error) {
	query, args, err := repositories.SqBuilder.
		Select("access_token", "refresh_token", "expiry").
		From("oauth_tokens").
		Where(sq.Eq{"id": tokenRowID}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var token domain.AuthToken
	err = r.pool.QueryRow(ctx, query, args...).Scan(&token.AccessToken, &token.RefreshToken, &token.Expiry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &token, nil
}

func (r *PgxRepository) Save(ctx context.Context, token domain.AuthToken) error {
	query, args, err := repositories.SqBuilder.
		Insert("oauth_tokens").
		Columns("id", "access_token", "refresh_token", "expiry").
		Values(tokenRowID, token.AccessToken, token.RefreshToken, token.Expiry).
		Suffix("ON CONFLICT (id) DO UPDATE SET access_token = EXCLUDED.access_token, refresh_token = EXCLUDED.refresh_token, expiry = EXCLUDED.expiry").
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return err
	}

	r.logger.Debug("Persisted oauth token", "expiry", token.Expiry)
	return nil
}

func (r *PgxRepository) Clear(ctx context.Context) error {
	query, args, err := repositories.SqBuilder.
		Delete("oauth_tokens").
		Where(sq.Eq{"id": tokenRowID}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return err
	}
	return nil
}
