// Package export orchestrates turning a resume record into a saved PDF: validation,
// height estimation, page sizing, rendering and hand-off to an engine and a saver.
package export

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-builder/internal/engine"
	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/record"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

// DefaultFilename is the name given to a single exported resume.
const DefaultFilename = "resume.pdf"

// BatchFilename names one template's artifact in a multi-template export.
func BatchFilename(template string) string {
	return "resume-" + template + ".pdf"
}

// Step names a stage of an export.
type Step string

// Export stages in execution order.
const (
	StepValidate Step = "validate"
	StepEstimate Step = "estimate"
	StepRender   Step = "render"
	StepEngine   Step = "engine"
	StepSave     Step = "save"
)

// ProgressEvent reports that an export stage finished.
type ProgressEvent struct {
	Step     Step   `json:"step"`
	Template string `json:"template"`
	Message  string `json:"message"`
}

// ProgressCallback is called when export progress occurs
type ProgressCallback func(event ProgressEvent)

// Request describes one export.
type Request struct {
	Record *types.ResumeRecord
	// TemplateID selects the template. Unknown or empty identifiers use the default.
	TemplateID string
	// MeasuredHeight is the preview's content height for templates sized from it.
	MeasuredHeight float64
	// Filename overrides DefaultFilename.
	Filename string
}

// Artifact is a finished export.
type Artifact struct {
	Filename    string          `json:"filename"`
	ContentType string          `json:"content_type"`
	Data        []byte          `json:"-"`
	Page        layout.PageSize `json:"page"`
	TemplateID  string          `json:"template"`
	Engine      string          `json:"engine"`
	Estimate    layout.Estimate `json:"estimate"`
	// Location is set by savers that persist the artifact somewhere addressable.
	Location string `json:"location,omitempty"`
}

// Preview is the HTML rendering of a record on its resolved page.
type Preview struct {
	TemplateID string          `json:"template"`
	Page       layout.PageSize `json:"page"`
	Estimate   layout.Estimate `json:"estimate"`
	HTML       string          `json:"-"`
}

// Exporter runs exports against one engine and one saver. Only one export runs at a
// time per Exporter; overlapping calls get ErrExportInProgress.
type Exporter struct {
	engine   engine.Engine
	saver    Saver
	profiles *layout.Registry

	// OnProgress, if set, receives an event after each completed stage. ExportAll may
	// call it from several goroutines.
	OnProgress ProgressCallback
	Verbose    bool

	busy atomic.Bool
}

// New creates an Exporter. A nil saver discards artifacts and a nil registry uses the
// built-in profiles.
func New(eng engine.Engine, saver Saver, profiles *layout.Registry) *Exporter {
	if saver == nil {
		saver = DiscardSaver{}
	}
	if profiles == nil {
		profiles = layout.Builtin()
	}
	return &Exporter{engine: eng, saver: saver, profiles: profiles}
}

// Profiles returns the registry the exporter resolves templates against.
func (e *Exporter) Profiles() *layout.Registry {
	return e.profiles
}

// Busy reports whether an export is in flight.
func (e *Exporter) Busy() bool {
	return e.busy.Load()
}

// Export validates the record, sizes the page, renders it and saves the result. Any
// failure is returned as a single *ExportError and nothing is saved.
func (e *Exporter) Export(ctx context.Context, req Request) (*Artifact, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrExportInProgress
	}
	defer e.busy.Store(false)

	art, err := e.build(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := e.save(ctx, art); err != nil {
		return nil, err
	}
	return art, nil
}

// BatchRequest describes a multi-template export of one record.
type BatchRequest struct {
	Record    *types.ResumeRecord
	Templates []string
	// MeasuredHeight is passed to every template; only those sized from the preview use it.
	MeasuredHeight float64
}

// ExportAll renders the record with each template concurrently and saves every artifact
// once all renders succeed. Artifacts are returned in the order of templates. If a save
// fails, artifacts already saved are rolled back so the batch is all or nothing.
func (e *Exporter) ExportAll(ctx context.Context, req BatchRequest) ([]*Artifact, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrExportInProgress
	}
	defer e.busy.Store(false)

	prepared, err := prepare(req.Record)
	if err != nil {
		return nil, err
	}

	arts := make([]*Artifact, len(req.Templates))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	for i, id := range req.Templates {
		g.Go(func() error {
			art, err := e.buildPrepared(gCtx, prepared, Request{
				TemplateID:     id,
				MeasuredHeight: req.MeasuredHeight,
				Filename:       BatchFilename(id),
			})
			if err != nil {
				return err
			}
			mu.Lock()
			arts[i] = art
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := e.saveAll(ctx, arts); err != nil {
		return nil, err
	}
	return arts, nil
}

// Preview validates the record and renders it to HTML on the page it would be exported
// on. It does not take the export guard and never calls the engine.
func (e *Exporter) Preview(req Request) (*Preview, error) {
	rec, err := prepare(req.Record)
	if err != nil {
		return nil, err
	}
	profile := e.profiles.Resolve(req.TemplateID)
	est := layout.Breakdown(rec, profile)
	page := layout.ResolvePage(rec, profile, req.MeasuredHeight)

	doc, err := rendering.ForTemplate(profile.Name).Render(rec)
	if err != nil {
		return nil, &ExportError{Template: profile.Name, Step: StepRender, Cause: err}
	}
	html, err := rendering.RenderHTML(doc, page)
	if err != nil {
		return nil, &ExportError{Template: profile.Name, Step: StepRender, Cause: err}
	}
	return &Preview{TemplateID: profile.Name, Page: page, Estimate: est, HTML: html}, nil
}

func (e *Exporter) build(ctx context.Context, req Request) (*Artifact, error) {
	rec, err := prepare(req.Record)
	if err != nil {
		return nil, err
	}
	return e.buildPrepared(ctx, rec, req)
}

func (e *Exporter) buildPrepared(ctx context.Context, rec *types.ResumeRecord, req Request) (*Artifact, error) {
	profile := e.profiles.Resolve(req.TemplateID)
	e.emit(StepValidate, profile.Name, "record is valid")

	// The page must be sized before the document is drawn.
	est := layout.Breakdown(rec, profile)
	page := layout.ResolvePage(rec, profile, req.MeasuredHeight)
	e.emit(StepEstimate, profile.Name, "page sized")
	if e.Verbose {
		log.Printf("[EXPORT] %s: estimated %.0fpt, page %.2fx%.2fpt", profile.Name, est.Height, page.Width, page.Height)
	}

	doc, err := rendering.ForTemplate(profile.Name).Render(rec)
	if err != nil {
		return nil, &ExportError{Template: profile.Name, Step: StepRender, Cause: err}
	}
	e.emit(StepRender, profile.Name, "document rendered")

	data, err := e.engine.Render(ctx, doc, page)
	if err != nil {
		return nil, &ExportError{Template: profile.Name, Step: StepEngine, Cause: err}
	}
	e.emit(StepEngine, profile.Name, "PDF generated")

	filename := req.Filename
	if filename == "" {
		filename = DefaultFilename
	}
	return &Artifact{
		Filename:    filename,
		ContentType: engine.ContentType,
		Data:        data,
		Page:        page,
		TemplateID:  profile.Name,
		Engine:      e.engine.Name(),
		Estimate:    est,
	}, nil
}

func (e *Exporter) save(ctx context.Context, art *Artifact) error {
	if err := e.saver.Save(ctx, art); err != nil {
		return &ExportError{Template: art.TemplateID, Step: StepSave, Cause: err}
	}
	e.emit(StepSave, art.TemplateID, "saved "+art.Filename)
	if e.Verbose {
		log.Printf("[EXPORT] %s: saved %s (%d bytes)", art.TemplateID, art.Filename, len(art.Data))
	}
	return nil
}

// saveAll delivers a batch. A BatchSaver stores it in one call; otherwise artifacts are
// saved in order and the saved ones are removed again when a later save fails.
func (e *Exporter) saveAll(ctx context.Context, arts []*Artifact) error {
	if bs, ok := e.saver.(BatchSaver); ok {
		if err := bs.SaveAll(ctx, arts); err != nil {
			return &ExportError{Step: StepSave, Cause: err}
		}
		for _, art := range arts {
			e.emit(StepSave, art.TemplateID, "saved "+art.Filename)
		}
		return nil
	}
	for i, art := range arts {
		if err := e.save(ctx, art); err != nil {
			e.rollback(ctx, arts[:i])
			return err
		}
	}
	return nil
}

func (e *Exporter) rollback(ctx context.Context, saved []*Artifact) {
	if len(saved) == 0 {
		return
	}
	r, ok := e.saver.(Remover)
	if !ok {
		log.Printf("[EXPORT] saver cannot remove artifacts, %d saved file(s) kept after a failed batch", len(saved))
		return
	}
	for _, art := range saved {
		if err := r.Remove(ctx, art); err != nil {
			log.Printf("[EXPORT] failed to roll back %s: %v", art.Filename, err)
		}
	}
}

func (e *Exporter) emit(step Step, template, message string) {
	if e.OnProgress != nil {
		e.OnProgress(ProgressEvent{Step: step, Template: template, Message: message})
	}
}

// prepare validates a normalized copy of rec so the caller's record is left untouched.
func prepare(rec *types.ResumeRecord) (*types.ResumeRecord, error) {
	if rec == nil {
		return nil, &ExportError{Step: StepValidate, Cause: record.Prepare(nil)}
	}
	cp := normalized(rec)
	if err := record.Prepare(cp); err != nil {
		return nil, &ExportError{Step: StepValidate, Cause: err}
	}
	return cp, nil
}

// normalized returns a normalized shallow copy of rec. Normalize rewrites project
// elements in place, so that slice is copied too.
func normalized(rec *types.ResumeRecord) *types.ResumeRecord {
	cp := *rec
	if rec.Projects != nil {
		cp.Projects = append([]types.Project(nil), rec.Projects...)
	}
	cp.Normalize()
	return &cp
}
