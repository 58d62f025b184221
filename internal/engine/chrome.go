package engine

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/rendering"
)

// pointsPerInch converts layout points to the inches PrintToPDF expects.
const pointsPerInch = 72.0

// ChromeEngine prints the HTML rendering of a document with headless Chrome.
// Requires Chrome/Chromium to be installed on the system.
type ChromeEngine struct {
	opts Options
}

// NewChromeEngine creates a Chrome-backed engine.
func NewChromeEngine(opts Options) *ChromeEngine {
	return &ChromeEngine{opts: opts}
}

// Name implements Engine.
func (e *ChromeEngine) Name() string { return KindChrome }

// Render implements Engine.
func (e *ChromeEngine) Render(ctx context.Context, doc *rendering.Document, pg layout.PageSize) ([]byte, error) {
	if err := checkInput(KindChrome, doc, pg); err != nil {
		return nil, err
	}

	html, err := rendering.RenderHTML(doc, pg)
	if err != nil {
		return nil, &RenderError{Engine: KindChrome, Message: "failed to build HTML", Cause: err}
	}

	dir, err := os.MkdirTemp("", "resume-builder-")
	if err != nil {
		return nil, &RenderError{Engine: KindChrome, Message: "failed to create temp dir", Cause: err}
	}
	defer os.RemoveAll(dir)

	htmlPath := filepath.Join(dir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o600); err != nil {
		return nil, &RenderError{Engine: KindChrome, Message: "failed to write HTML", Cause: err}
	}

	if e.opts.Verbose {
		log.Printf("[CHROME] Printing %s on %.2fx%.2fpt page", doc.Template, pg.Width, pg.Height)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if e.opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(e.opts.ChromePath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, e.opts.timeout())
	defer cancel()

	var buf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPaperWidth(pg.Width / pointsPerInch).
				WithPaperHeight(pg.Height / pointsPerInch).
				WithMarginTop(0).
				WithMarginRight(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithPageRanges("1").
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &RenderError{Engine: KindChrome, Message: "print to PDF failed", Cause: err}
	}

	if e.opts.Verbose {
		log.Printf("[CHROME] Rendered PDF: %d bytes", len(buf))
	}
	return buf, nil
}
