package migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upInit, downInit)
}

func upInit(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE oauth_tokens (
		id INT PRIMARY KEY,
		access_token TEXT NOT NULL DEFAULT '',
		refresh_token TEXT NOT NULL DEFAULT '',
		expiry TIMESTAMPTZ NOT NULL DEFAULT 'epoch'
	);
	CREATE TABLE scrap_days (
		id SERIAL PRIMARY KEY,
		day DATE NOT NULL,
		directory TEXT NOT NULL,
		note_created BOOLEAN NOT NULL DEFAULT FALSE,
		media_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX idx_scrap_days_day ON scrap_days (day);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downInit(tx *sql.Tx) error {
	_, err := tx.Exec(`
	DROP TABLE scrap_days;
	DROP TABLE oauth_tokens;
	`)
	if err != nil {
		return err
	}
	return nil
}
