// Package record loads resume records from files and request bodies and prepares them for
// rendering.
package record

import "fmt"

// LoadError represents an error during file I/O or JSON parsing
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("load error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// InvalidRecordError wraps schema or field validation failures. Records that produce this
// error never reach the estimator or a renderer.
type InvalidRecordError struct {
	Cause error
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid record: %v", e.Cause)
}

func (e *InvalidRecordError) Unwrap() error {
	return e.Cause
}
