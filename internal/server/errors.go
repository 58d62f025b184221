package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/record"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// ErrStorageDisabled is returned by draft endpoints when the server runs without a database.
var ErrStorageDisabled = errors.New("draft storage is not configured")

// ErrNotFound indicates a draft or export does not exist
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ErrInvalidPassphrase indicates a draft passphrase did not match
type ErrInvalidPassphrase struct{}

func (e *ErrInvalidPassphrase) Error() string {
	return "invalid passphrase"
}

// ErrDraftUnlocked indicates a token was requested for a draft without a passphrase
type ErrDraftUnlocked struct{}

func (e *ErrDraftUnlocked) Error() string {
	return "draft has no passphrase; tokens are only issued at creation"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound   *ErrNotFound
		validation *ErrValidation
		invalid    *record.InvalidRecordError
		loadErr    *record.LoadError
		exportErr  *export.ExportError
		passphrase *ErrInvalidPassphrase
		unlocked   *ErrDraftUnlocked
	)
	switch {
	case errors.Is(err, export.ErrExportInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrStorageDisabled):
		return http.StatusServiceUnavailable
	case errors.As(err, &notFound), errors.Is(err, db.ErrDraftNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &invalid), errors.As(err, &loadErr):
		return http.StatusBadRequest
	case errors.As(err, &passphrase):
		return http.StatusUnauthorized
	case errors.As(err, &unlocked):
		return http.StatusForbidden
	case errors.As(err, &exportErr):
		if exportErr.Step == export.StepEngine {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error  string             `json:"error"`
	Fields []types.FieldError `json:"fields,omitempty"`
}

// errorBody builds the response for err. Field-level failures from schema or struct
// validation are listed individually; server faults are not echoed back.
func errorBody(err error, status int) ErrorResponse {
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway && status != http.StatusServiceUnavailable {
		return ErrorResponse{Error: "internal server error"}
	}

	var exportErr *export.ExportError
	if status == http.StatusBadGateway && errors.As(err, &exportErr) {
		return ErrorResponse{Error: "PDF generation failed, please try again"}
	}

	resp := ErrorResponse{Error: err.Error()}
	var fieldErrs *types.ValidationError
	var schemaErrs *schemas.ValidationError
	switch {
	case errors.As(err, &fieldErrs):
		resp.Error = "invalid resume record"
		resp.Fields = fieldErrs.Errors
	case errors.As(err, &schemaErrs):
		resp.Error = "invalid resume record"
		for _, fe := range schemaErrs.Errors {
			resp.Fields = append(resp.Fields, types.FieldError{Field: fe.Field, Message: fe.Message})
		}
	}
	return resp
}
