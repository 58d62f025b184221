package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrDraftNotFound is returned by writes that target a missing draft.
var ErrDraftNotFound = errors.New("draft not found")

const draftColumns = `id, title, template_id, record, COALESCE(passphrase_hash, ''), created_at, updated_at`

func scanDraft(row pgx.Row) (*Draft, error) {
	var d Draft
	var record []byte
	if err := row.Scan(&d.ID, &d.Title, &d.TemplateID, &record, &d.PassphraseHash, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Record = record
	d.Locked = d.PassphraseHash != ""
	return &d, nil
}

// CreateDraft stores a new draft and returns it
func (db *DB) CreateDraft(ctx context.Context, in DraftInput) (*Draft, error) {
	var hash *string
	if in.PassphraseHash != "" {
		hash = &in.PassphraseHash
	}

	d, err := scanDraft(db.pool.QueryRow(ctx,
		`INSERT INTO drafts (title, template_id, record, passphrase_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+draftColumns,
		in.Title, in.TemplateID, []byte(in.Record), hash,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	return d, nil
}

// GetDraft retrieves a draft by its UUID. Returns nil, nil if it does not exist.
func (db *DB) GetDraft(ctx context.Context, id uuid.UUID) (*Draft, error) {
	d, err := scanDraft(db.pool.QueryRow(ctx,
		`SELECT `+draftColumns+` FROM drafts WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return d, nil
}

// UpdateDraft replaces a draft's title, template and record.
func (db *DB) UpdateDraft(ctx context.Context, id uuid.UUID, in DraftInput) (*Draft, error) {
	d, err := scanDraft(db.pool.QueryRow(ctx,
		`UPDATE drafts SET title = $2, template_id = $3, record = $4, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+draftColumns,
		id, in.Title, in.TemplateID, []byte(in.Record),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to update draft: %w", err)
	}
	return d, nil
}

// DeleteDraft deletes a draft and all its exports (via cascade)
func (db *DB) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM drafts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrDraftNotFound
	}
	return nil
}

// ListDrafts retrieves drafts with optional filters, most recently updated first
func (db *DB) ListDrafts(ctx context.Context, filters DraftFilters) ([]DraftSummary, error) {
	query, args := draftListQuery(filters)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []DraftSummary
	for rows.Next() {
		var d DraftSummary
		if err := rows.Scan(&d.ID, &d.Title, &d.TemplateID, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, nil
}

func draftListQuery(filters DraftFilters) (string, []any) {
	if filters.Limit <= 0 {
		filters.Limit = DefaultListLimit
	}

	query := `SELECT id, title, template_id, updated_at FROM drafts WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.TemplateID != "" {
		query += fmt.Sprintf(" AND template_id = $%d", argNum)
		args = append(args, filters.TemplateID)
		argNum++
	}
	if filters.Title != "" {
		query += fmt.Sprintf(" AND title ILIKE $%d", argNum)
		args = append(args, "%"+filters.Title+"%")
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY updated_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)
	return query, args
}
