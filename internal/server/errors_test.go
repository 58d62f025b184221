package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/record"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"export in progress", export.ErrExportInProgress, http.StatusConflict},
		{"wrapped in progress", fmt.Errorf("draft: %w", export.ErrExportInProgress), http.StatusConflict},
		{"storage disabled", ErrStorageDisabled, http.StatusServiceUnavailable},
		{"not found", &ErrNotFound{Kind: "draft", ID: "x"}, http.StatusNotFound},
		{"db not found", db.ErrDraftNotFound, http.StatusNotFound},
		{"validation", &ErrValidation{Field: "title", Message: "too long"}, http.StatusBadRequest},
		{"invalid record", &record.InvalidRecordError{Cause: errors.New("bad")}, http.StatusBadRequest},
		{"load error", &record.LoadError{Message: "malformed"}, http.StatusBadRequest},
		{"validate step", &export.ExportError{Step: export.StepValidate, Cause: &record.InvalidRecordError{Cause: errors.New("bad")}}, http.StatusBadRequest},
		{"passphrase", &ErrInvalidPassphrase{}, http.StatusUnauthorized},
		{"unlocked", &ErrDraftUnlocked{}, http.StatusForbidden},
		{"engine step", &export.ExportError{Step: export.StepEngine, Cause: errors.New("crash")}, http.StatusBadGateway},
		{"save step", &export.ExportError{Step: export.StepSave, Cause: errors.New("disk")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorBody(t *testing.T) {
	t.Run("internal errors are not echoed", func(t *testing.T) {
		body := errorBody(errors.New("pq: password authentication failed"), http.StatusInternalServerError)
		assert.Equal(t, ErrorResponse{Error: "internal server error"}, body)
	})

	t.Run("engine failures get a retry message", func(t *testing.T) {
		err := &export.ExportError{Step: export.StepEngine, Cause: errors.New("chrome: exec not found")}
		body := errorBody(err, http.StatusBadGateway)
		assert.Equal(t, "PDF generation failed, please try again", body.Error)
	})

	t.Run("field errors are listed", func(t *testing.T) {
		err := &export.ExportError{Step: export.StepValidate, Cause: &record.InvalidRecordError{
			Cause: &types.ValidationError{Errors: []types.FieldError{{Field: "personal.email", Message: "must be a valid email"}}},
		}}
		body := errorBody(err, HTTPStatus(err))
		assert.Equal(t, "invalid resume record", body.Error)
		assert.Equal(t, []types.FieldError{{Field: "personal.email", Message: "must be a valid email"}}, body.Fields)
	})

	t.Run("schema errors are listed", func(t *testing.T) {
		err := &record.InvalidRecordError{Cause: &schemas.ValidationError{
			Errors: []schemas.FieldError{{Field: "skills", Message: "skills is required"}},
		}}
		body := errorBody(err, http.StatusBadRequest)
		assert.Equal(t, "invalid resume record", body.Error)
		assert.Equal(t, "skills", body.Fields[0].Field)
	})

	t.Run("client errors keep their message", func(t *testing.T) {
		err := &ErrValidation{Field: "limit", Message: "must be a positive integer"}
		assert.Equal(t, ErrorResponse{Error: err.Error()}, errorBody(err, http.StatusBadRequest))
	})
}
