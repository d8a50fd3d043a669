package db

import (
	"database/sql"

	_ "github.com/lib/pq"
	_ "github.com/orgball2608/scrapbook-daily-bot/internal/migrations"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/config"
	"github.com/pressly/goose/v3"
)

// Postgres wraps the database/sql connection goose migrates over. The
// repositories themselves run on the pgx pool; this connection exists only
// for schema management.
type Postgres struct {
	db *sql.DB
}

func NewConnect(cfg *config.Config) (*Postgres, error) {
	connect, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, err
	}

	if err = connect.Ping(); err != nil {
		return nil, err
	}

	return &Postgres{db: connect}, nil
}

// MigrationInit applies every registered Go migration. The migrations
// package is imported for its side effects above.
func (pg *Postgres) MigrationInit() error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(pg.db, ".")
}

func (pg *Postgres) Close() error {
	return pg.db.Close()
}
