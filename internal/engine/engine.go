// Package engine converts a rendered document into PDF bytes on a page of an exact size.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/rendering"
)

// ContentType is the media type of every engine's output.
const ContentType = "application/pdf"

// Engine names accepted by New.
const (
	KindChrome = "chrome"
	KindNative = "native"
)

// DefaultTimeout bounds a single render when Options.Timeout is zero.
const DefaultTimeout = 60 * time.Second

// Engine draws a document onto a single page of the given size and returns the encoded
// PDF. Implementations must not split the document across pages.
type Engine interface {
	Name() string
	Render(ctx context.Context, doc *rendering.Document, page layout.PageSize) ([]byte, error)
}

// Options configures engine construction.
type Options struct {
	// ChromePath overrides the browser executable. Empty lets chromedp search the PATH.
	ChromePath string
	Timeout    time.Duration
	Verbose    bool
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultTimeout
}

// New returns the engine registered under kind. An empty kind selects the native engine.
func New(kind string, opts Options) (Engine, error) {
	switch kind {
	case KindChrome:
		return NewChromeEngine(opts), nil
	case KindNative, "":
		return NewNativeEngine(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, kind)
	}
}

// Kinds lists the accepted engine names.
func Kinds() []string {
	return []string{KindChrome, KindNative}
}

func checkInput(engine string, doc *rendering.Document, page layout.PageSize) error {
	if doc == nil {
		return &RenderError{Engine: engine, Message: "no document"}
	}
	if page.Width <= 0 || page.Height <= 0 {
		return &RenderError{Engine: engine, Message: fmt.Sprintf("invalid page size %.2fx%.2f", page.Width, page.Height)}
	}
	return nil
}
