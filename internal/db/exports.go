package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-builder/internal/export"
)

// SaveExport stores a finished artifact. draftID may be nil for one-off exports.
func (db *DB) SaveExport(ctx context.Context, draftID *uuid.UUID, art *export.Artifact) (*Export, error) {
	if art == nil {
		return nil, fmt.Errorf("failed to save export: artifact is nil")
	}

	e := Export{
		DraftID:         draftID,
		TemplateID:      art.TemplateID,
		Filename:        art.Filename,
		ContentType:     art.ContentType,
		Engine:          art.Engine,
		PageWidth:       art.Page.Width,
		PageHeight:      art.Page.Height,
		EstimatedHeight: art.Estimate.Height,
		Data:            art.Data,
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO exports (draft_id, template_id, filename, content_type, engine,
		                      page_width, page_height, estimated_height, data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		e.DraftID, e.TemplateID, e.Filename, e.ContentType, e.Engine,
		e.PageWidth, e.PageHeight, e.EstimatedHeight, e.Data,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save export: %w", err)
	}
	return &e, nil
}

// GetExport retrieves an export, payload included. Returns nil, nil if it does not exist.
func (db *DB) GetExport(ctx context.Context, id uuid.UUID) (*Export, error) {
	var e Export
	err := db.pool.QueryRow(ctx,
		`SELECT id, draft_id, template_id, filename, content_type, engine,
		        page_width, page_height, estimated_height, data, created_at
		 FROM exports WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.DraftID, &e.TemplateID, &e.Filename, &e.ContentType, &e.Engine,
		&e.PageWidth, &e.PageHeight, &e.EstimatedHeight, &e.Data, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get export: %w", err)
	}
	return &e, nil
}

// ListExports retrieves the exports of a draft, newest first
func (db *DB) ListExports(ctx context.Context, draftID uuid.UUID, limit int) ([]ExportSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, template_id, filename, octet_length(data), created_at
		 FROM exports WHERE draft_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		draftID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	var exports []ExportSummary
	for rows.Next() {
		var e ExportSummary
		if err := rows.Scan(&e.ID, &e.TemplateID, &e.Filename, &e.Size, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		exports = append(exports, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return exports, nil
}

// ExportStore is the subset of DB used by Saver.
type ExportStore interface {
	SaveExport(ctx context.Context, draftID *uuid.UUID, art *export.Artifact) (*Export, error)
}

// Saver persists artifacts as export rows. Location is set to "exports/<id>".
type Saver struct {
	Store   ExportStore
	DraftID *uuid.UUID

	// LastID is the id of the most recently saved export.
	LastID uuid.UUID
}

// Save implements export.Saver.
func (s *Saver) Save(ctx context.Context, art *export.Artifact) error {
	if s.Store == nil {
		return fmt.Errorf("export store is not configured")
	}
	e, err := s.Store.SaveExport(ctx, s.DraftID, art)
	if err != nil {
		return err
	}
	s.LastID = e.ID
	art.Location = "exports/" + e.ID.String()
	return nil
}
