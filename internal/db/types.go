package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit caps list queries that do not set a limit.
const DefaultListLimit = 50

// Draft is a saved, possibly incomplete, resume record.
type Draft struct {
	ID         uuid.UUID       `json:"id"`
	Title      string          `json:"title"`
	TemplateID string          `json:"template"`
	Record     json.RawMessage `json:"record"`
	Locked     bool            `json:"locked"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	// PassphraseHash is empty for unlocked drafts and never serialized.
	PassphraseHash string `json:"-"`
}

// DraftInput holds the writable fields of a draft.
type DraftInput struct {
	Title      string
	TemplateID string
	Record     json.RawMessage
	// PassphraseHash locks the draft when set. UpdateDraft leaves the stored hash alone.
	PassphraseHash string
}

// DraftSummary is a lightweight view of a draft for listing
type DraftSummary struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	TemplateID string    `json:"template"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DraftFilters holds optional filters for listing drafts
type DraftFilters struct {
	TemplateID string
	Title      string
	Limit      int
}

// Export is a stored PDF produced from a draft or a one-off request.
type Export struct {
	ID              uuid.UUID  `json:"id"`
	DraftID         *uuid.UUID `json:"draft_id,omitempty"`
	TemplateID      string     `json:"template"`
	Filename        string     `json:"filename"`
	ContentType     string     `json:"content_type"`
	Engine          string     `json:"engine"`
	PageWidth       float64    `json:"page_width"`
	PageHeight      float64    `json:"page_height"`
	EstimatedHeight float64    `json:"estimated_height"`
	Data            []byte     `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ExportSummary is an export without its payload
type ExportSummary struct {
	ID         uuid.UUID `json:"id"`
	TemplateID string    `json:"template"`
	Filename   string    `json:"filename"`
	Size       int       `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}
