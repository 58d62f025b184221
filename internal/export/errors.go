package export

import (
	"errors"
	"fmt"
)

// ErrExportInProgress is returned when an export is requested on an Exporter that is
// still working on a previous one.
var ErrExportInProgress = errors.New("export already in progress")

// ExportError is the single failure reported for an export attempt.
type ExportError struct {
	Template string
	Step     Step
	Cause    error
}

func (e *ExportError) Error() string {
	if e.Template != "" {
		return fmt.Sprintf("export %s failed at %s: %v", e.Template, e.Step, e.Cause)
	}
	return fmt.Sprintf("export failed at %s: %v", e.Step, e.Cause)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}
