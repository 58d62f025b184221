// Package db provides PostgreSQL storage for resume drafts and exported PDFs.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// schema is applied by Migrate. Every statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS drafts (
	id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	title           TEXT NOT NULL DEFAULT '',
	template_id     TEXT NOT NULL,
	record          JSONB NOT NULL,
	passphrase_hash TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS exports (
	id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	draft_id         UUID REFERENCES drafts(id) ON DELETE CASCADE,
	template_id      TEXT NOT NULL,
	filename         TEXT NOT NULL,
	content_type     TEXT NOT NULL,
	engine           TEXT NOT NULL,
	page_width       DOUBLE PRECISION NOT NULL,
	page_height      DOUBLE PRECISION NOT NULL,
	estimated_height DOUBLE PRECISION NOT NULL,
	data             BYTEA NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_exports_draft_id ON exports(draft_id, created_at DESC);
`

// Migrate creates the tables this package uses if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
