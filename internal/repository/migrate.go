package repository

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id           TEXT PRIMARY KEY,
		source_path  TEXT NOT NULL,
		filename     TEXT NOT NULL,
		file_ext     TEXT NOT NULL,
		file_size    BIGINT NOT NULL DEFAULT 0,
		content_hash TEXT NOT NULL UNIQUE,
		text         TEXT NOT NULL DEFAULT '',
		record_json  TEXT,
		method       TEXT NOT NULL DEFAULT '',
		signal       REAL NOT NULL DEFAULT 0,
		needs_review BOOLEAN NOT NULL DEFAULT FALSE,
		uploaded_at  TEXT NOT NULL,
		extracted_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS extract_jobs (
		id            TEXT PRIMARY KEY,
		document_id   TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		format        TEXT NOT NULL,
		status        TEXT NOT NULL,
		method        TEXT,
		started_at    TEXT NOT NULL,
		finished_at   TEXT,
		error_message TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS extract_jobs_document_idx ON extract_jobs (document_id, started_at)`,
	`CREATE INDEX IF NOT EXISTS documents_uploaded_idx ON documents (uploaded_at)`,
}

// Migrate creates the tables if they do not exist. It is safe to run repeatedly.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.sql.ExecContext(ctx, stmt); err != nil {
			db.logger.Error("repository.migrate.failed", "step", i, "error", err)
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	db.logger.Info("repository.migrate.ok", "dialect", db.dialect)
	return nil
}
