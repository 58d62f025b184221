package record

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

// maxRecordBytes caps the size of a decoded record.
const maxRecordBytes = 1 << 20

// LoadRecord reads, schema-checks, decodes and validates a resume record from a JSON file.
func LoadRecord(path string) (*types.ResumeRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("failed to read file %s", path),
			Cause:   err,
		}
	}
	return Parse(content)
}

// Decode reads a record from r, see Parse.
func Decode(r io.Reader) (*types.ResumeRecord, error) {
	content, err := io.ReadAll(io.LimitReader(r, maxRecordBytes+1))
	if err != nil {
		return nil, &LoadError{Message: "failed to read record", Cause: err}
	}
	if len(content) > maxRecordBytes {
		return nil, &LoadError{Message: fmt.Sprintf("record exceeds %d bytes", maxRecordBytes)}
	}
	return Parse(content)
}

// Parse schema-checks raw JSON, decodes it, normalizes list fields and validates the result.
func Parse(content []byte) (*types.ResumeRecord, error) {
	rec, err := Unmarshal(content)
	if err != nil {
		return nil, err
	}
	if err := Prepare(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Unmarshal schema-checks and decodes raw JSON without field validation. Used for drafts,
// which may be stored while still incomplete.
func Unmarshal(content []byte) (*types.ResumeRecord, error) {
	if !json.Valid(content) {
		return nil, &LoadError{Message: "failed to unmarshal JSON: malformed document"}
	}
	if err := schemas.ValidateRecordJSON(content); err != nil {
		return nil, &InvalidRecordError{Cause: err}
	}

	var rec types.ResumeRecord
	if err := json.Unmarshal(content, &rec); err != nil {
		return nil, &LoadError{
			Message: "failed to unmarshal JSON",
			Cause:   err,
		}
	}
	rec.Normalize()
	return &rec, nil
}

// Prepare normalizes and validates a record already in memory.
func Prepare(rec *types.ResumeRecord) error {
	if rec == nil {
		return &InvalidRecordError{Cause: fmt.Errorf("record is nil")}
	}
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		return &InvalidRecordError{Cause: err}
	}
	return nil
}
