package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/record"
	"github.com/jonathan/resume-builder/internal/server/middleware"
)

// maxTitleLength caps draft titles.
const maxTitleLength = 200

// DraftRequest is the body of draft create and update requests. Passphrase is only read on
// create.
type DraftRequest struct {
	Title      string          `json:"title"`
	Template   string          `json:"template,omitempty"`
	Record     json.RawMessage `json:"record"`
	Passphrase string          `json:"passphrase,omitempty"`
}

// DraftResponse carries a draft and, when one was issued, its access token.
type DraftResponse struct {
	Draft     *db.Draft  `json:"draft"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// TokenRequest is the body of /drafts/{id}/token
type TokenRequest struct {
	Passphrase string `json:"passphrase"`
}

// handleCreateDraft stores a new draft and returns it with an access token
func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	if s.store == nil || s.tokens == nil {
		s.writeError(w, ErrStorageDisabled)
		return
	}

	in, err := s.decodeDraft(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if in.passphrase != "" {
		hash, err := s.passphrases.Hash(in.passphrase)
		if errors.Is(err, config.ErrPassphraseTooShort) {
			s.writeError(w, &ErrValidation{Field: "passphrase", Message: "must be at least 8 characters"})
			return
		}
		if err != nil {
			s.writeError(w, err)
			return
		}
		in.PassphraseHash = hash
	}

	draft, err := s.store.CreateDraft(r.Context(), in.DraftInput)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp, err := s.withToken(draft)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, resp)
}

// handleGetDraft returns a draft
func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	draftID, _ := middleware.GetDraftID(r)
	draft, err := s.store.GetDraft(r.Context(), draftID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if draft == nil {
		s.writeError(w, &ErrNotFound{Kind: "draft", ID: draftID.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, DraftResponse{Draft: draft})
}

// handleUpdateDraft replaces a draft's title, template and record
func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	draftID, _ := middleware.GetDraftID(r)
	in, err := s.decodeDraft(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	draft, err := s.store.UpdateDraft(r.Context(), draftID, in.DraftInput)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, DraftResponse{Draft: draft})
}

// handleDeleteDraft deletes a draft and its exports
func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	draftID, _ := middleware.GetDraftID(r)
	if err := s.store.DeleteDraft(r.Context(), draftID); err != nil {
		s.writeError(w, err)
		return
	}
	s.forgetExporter(draftID)
	w.WriteHeader(http.StatusNoContent)
}

// handleDraftToken issues a new token for a passphrase-locked draft
func (s *Server) handleDraftToken(w http.ResponseWriter, r *http.Request) {
	if s.store == nil || s.tokens == nil {
		s.writeError(w, ErrStorageDisabled)
		return
	}

	draftID, err := pathUUID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req TokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		s.writeError(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	draft, err := s.store.GetDraft(r.Context(), draftID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if draft == nil {
		s.writeError(w, &ErrNotFound{Kind: "draft", ID: draftID.String()})
		return
	}
	if !draft.Locked {
		s.writeError(w, &ErrDraftUnlocked{})
		return
	}
	if !s.passphrases.Verify(req.Passphrase, draft.PassphraseHash) {
		s.writeError(w, &ErrInvalidPassphrase{})
		return
	}

	resp, err := s.withToken(draft)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleExportDraft exports a stored draft, keeps the PDF and returns it. The template
// defaults to the draft's own; ?template= and ?measured_height= override.
func (s *Server) handleExportDraft(w http.ResponseWriter, r *http.Request) {
	draftID, _ := middleware.GetDraftID(r)

	draft, err := s.store.GetDraft(r.Context(), draftID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if draft == nil {
		s.writeError(w, &ErrNotFound{Kind: "draft", ID: draftID.String()})
		return
	}

	rec, err := record.Unmarshal(draft.Record)
	if err != nil {
		s.writeError(w, err)
		return
	}

	req := export.Request{Record: rec, TemplateID: draft.TemplateID}
	q := r.URL.Query()
	if t := q.Get("template"); t != "" {
		req.TemplateID = t
	}
	if m := q.Get("measured_height"); m != "" {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil || v < 0 {
			s.writeError(w, &ErrValidation{Field: "measured_height", Message: "must be a non-negative number"})
			return
		}
		req.MeasuredHeight = v
	}

	exp, release := s.acquireExporter(draftID)
	defer release()
	art, err := exp.Export(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if art.Location != "" {
		w.Header().Set("Location", "/"+art.Location)
	}
	s.writePDF(w, art.Filename, art.ContentType, art.Page, art.Data)
}

// handleListDraftExports lists a draft's stored exports, newest first
func (s *Server) handleListDraftExports(w http.ResponseWriter, r *http.Request) {
	draftID, _ := middleware.GetDraftID(r)

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v < 1 {
			s.writeError(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = v
	}

	exports, err := s.store.ListExports(r.Context(), draftID, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if exports == nil {
		exports = []db.ExportSummary{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"exports": exports})
}

// handleGetExport downloads a stored export. Exports of a draft need that draft's token.
func (s *Server) handleGetExport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil || s.tokens == nil {
		s.writeError(w, ErrStorageDisabled)
		return
	}

	id, err := pathUUID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	e, err := s.store.GetExport(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if e == nil {
		s.writeError(w, &ErrNotFound{Kind: "export", ID: id.String()})
		return
	}

	if e.DraftID != nil {
		token, ok := middleware.BearerToken(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		claims, err := s.tokens.ValidateToken(token)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if claims.DraftID != *e.DraftID {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	s.writePDF(w, e.Filename, e.ContentType, layout.PageSize{Width: e.PageWidth, Height: e.PageHeight}, e.Data)
}

type draftInput struct {
	db.DraftInput
	passphrase string
}

// decodeDraft reads a draft body. The record is schema-checked and stored normalized but
// not field-validated, so incomplete drafts can be saved.
func (s *Server) decodeDraft(w http.ResponseWriter, r *http.Request) (draftInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return draftInput{}, &ErrValidation{Field: "body", Message: err.Error()}
	}

	title := strings.TrimSpace(req.Title)
	if len(title) > maxTitleLength {
		return draftInput{}, &ErrValidation{Field: "title", Message: "must be at most 200 characters"}
	}

	rec, err := decodeRecord(req.Record)
	if err != nil {
		return draftInput{}, err
	}
	normalized, err := json.Marshal(rec)
	if err != nil {
		return draftInput{}, err
	}

	// Unknown templates are stored as the template they resolve to.
	template := s.profiles.Resolve(req.Template).Name

	return draftInput{
		DraftInput: db.DraftInput{Title: title, TemplateID: template, Record: normalized},
		passphrase: req.Passphrase,
	}, nil
}

func (s *Server) withToken(draft *db.Draft) (DraftResponse, error) {
	token, expiresAt, err := s.tokens.GenerateToken(draft.ID)
	if err != nil {
		return DraftResponse{}, err
	}
	return DraftResponse{Draft: draft, Token: token, ExpiresAt: &expiresAt}, nil
}

func pathUUID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}
