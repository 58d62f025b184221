package engine

import (
	"errors"
	"fmt"
)

// ErrUnknownEngine is returned by New for an unrecognized engine name.
var ErrUnknownEngine = errors.New("unknown rendering engine")

// RenderError represents a failure inside a rendering engine
type RenderError struct {
	Engine  string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s engine: %s: %v", e.Engine, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s engine: %s", e.Engine, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
