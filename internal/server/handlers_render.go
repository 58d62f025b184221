package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/record"
	"github.com/jonathan/resume-builder/internal/types"
)

// maxBodyBytes caps request bodies. Records themselves are capped lower by the record package.
const maxBodyBytes = 2 << 20

// RenderRequest is the body of the estimate, preview and export endpoints.
type RenderRequest struct {
	Record         json.RawMessage `json:"record"`
	Template       string          `json:"template,omitempty"`
	MeasuredHeight float64         `json:"measured_height,omitempty"`
}

// ExportAllRequest is the body of /export/all. An empty template list exports every template.
type ExportAllRequest struct {
	Record         json.RawMessage `json:"record"`
	Templates      []string        `json:"templates,omitempty"`
	MeasuredHeight float64         `json:"measured_height,omitempty"`
}

// TemplateInfo describes one template for the picker.
type TemplateInfo struct {
	ID            string            `json:"id"`
	Default       bool              `json:"default"`
	Mode          layout.HeightMode `json:"mode"`
	Width         float64           `json:"width"`
	FixedHeight   float64           `json:"fixed_height,omitempty"`
	MinimumHeight float64           `json:"minimum_height"`
}

// EstimateResponse is the result of /estimate.
type EstimateResponse struct {
	Template string          `json:"template"`
	Estimate layout.Estimate `json:"estimate"`
	Page     layout.PageSize `json:"page"`
}

// ArtifactResponse describes an export. Data is base64-encoded in JSON.
type ArtifactResponse struct {
	ID              string          `json:"id,omitempty"`
	Filename        string          `json:"filename"`
	ContentType     string          `json:"content_type"`
	Template        string          `json:"template"`
	Engine          string          `json:"engine"`
	Page            layout.PageSize `json:"page"`
	EstimatedHeight float64         `json:"estimated_height"`
	Data            []byte          `json:"data,omitempty"`
}

func newArtifactResponse(art *export.Artifact) ArtifactResponse {
	return ArtifactResponse{
		Filename:        art.Filename,
		ContentType:     art.ContentType,
		Template:        art.TemplateID,
		Engine:          art.Engine,
		Page:            art.Page,
		EstimatedHeight: art.Estimate.Height,
		Data:            art.Data,
	}
}

// handleTemplates lists the templates with their page geometry
func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	def := s.profiles.Default().Name
	ids := s.profiles.Templates()
	out := make([]TemplateInfo, 0, len(ids))
	for _, id := range ids {
		p, _ := s.profiles.Lookup(id)
		out = append(out, TemplateInfo{
			ID:            id,
			Default:       id == def,
			Mode:          p.Geometry.Mode,
			Width:         p.Geometry.Width,
			FixedHeight:   p.Geometry.FixedHeight,
			MinimumHeight: p.MinimumHeight,
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"templates": out})
}

// handleEstimate returns the itemized height estimate and the resolved page
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	req, rec, err := s.decodeRenderRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := record.Prepare(rec); err != nil {
		s.writeError(w, err)
		return
	}

	profile := s.profiles.Resolve(req.Template)
	s.jsonResponse(w, http.StatusOK, EstimateResponse{
		Template: profile.Name,
		Estimate: layout.Breakdown(rec, profile),
		Page:     layout.ResolvePage(rec, profile, req.MeasuredHeight),
	})
}

// handlePreview returns the HTML rendering of a record on its export page
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	req, rec, err := s.decodeRenderRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	p, err := export.New(s.engine, nil, s.profiles).Preview(export.Request{
		Record:         rec,
		TemplateID:     req.Template,
		MeasuredHeight: req.MeasuredHeight,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	setPageHeaders(w, p.Page)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(p.HTML))
}

// handleExport validates, renders and returns a PDF in the response body
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	req, rec, err := s.decodeRenderRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	exp := export.New(s.engine, nil, s.profiles)
	exp.Verbose = s.verbose
	art, err := exp.Export(r.Context(), export.Request{
		Record:         rec,
		TemplateID:     req.Template,
		MeasuredHeight: req.MeasuredHeight,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writePDF(w, art.Filename, art.ContentType, art.Page, art.Data)
}

// handleExportStream runs an export and reports each stage as a Server-Sent Event. The
// final "complete" event carries the PDF.
func (s *Server) handleExportStream(w http.ResponseWriter, r *http.Request) {
	req, rec, err := s.decodeRenderRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.writeError(w, err)
		return
	}

	exp := export.New(s.engine, nil, s.profiles)
	exp.Verbose = s.verbose
	exp.OnProgress = func(ev export.ProgressEvent) {
		sse.WriteEvent("progress", ev) //nolint:errcheck
	}

	art, err := exp.Export(r.Context(), export.Request{
		Record:         rec,
		TemplateID:     req.Template,
		MeasuredHeight: req.MeasuredHeight,
	})
	if err != nil {
		status := HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			log.Printf("[server] export stream failed (%d): %v", status, err)
		}
		sse.WriteError(errorBody(err, status))
		return
	}
	sse.WriteComplete(newArtifactResponse(art))
}

// handleExportAll renders the record with several templates and returns every PDF
func (s *Server) handleExportAll(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req ExportAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}
	if req.MeasuredHeight < 0 {
		s.writeError(w, &ErrValidation{Field: "measured_height", Message: "must be non-negative"})
		return
	}
	rec, err := decodeRecord(req.Record)
	if err != nil {
		s.writeError(w, err)
		return
	}

	templates := req.Templates
	if len(templates) == 0 {
		templates = s.profiles.Templates()
	}
	for _, id := range templates {
		if _, ok := s.profiles.Lookup(id); !ok {
			s.writeError(w, &ErrValidation{Field: "templates", Message: fmt.Sprintf("unknown template %q", id)})
			return
		}
	}

	exp := export.New(s.engine, nil, s.profiles)
	exp.Verbose = s.verbose
	arts, err := exp.ExportAll(r.Context(), export.BatchRequest{
		Record:         rec,
		Templates:      templates,
		MeasuredHeight: req.MeasuredHeight,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]ArtifactResponse, 0, len(arts))
	for _, art := range arts {
		out = append(out, newArtifactResponse(art))
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"artifacts": out})
}

// decodeRenderRequest reads the body and decodes its record. Field validation happens in
// the handler or the exporter, so export failures can still be streamed as events.
func (s *Server) decodeRenderRequest(w http.ResponseWriter, r *http.Request) (RenderRequest, *types.ResumeRecord, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, nil, &ErrValidation{Field: "body", Message: err.Error()}
	}
	if req.MeasuredHeight < 0 {
		return req, nil, &ErrValidation{Field: "measured_height", Message: "must be non-negative"}
	}
	rec, err := decodeRecord(req.Record)
	return req, rec, err
}

func decodeRecord(raw json.RawMessage) (*types.ResumeRecord, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, &ErrValidation{Field: "record", Message: "is required"}
	}
	return record.Unmarshal(raw)
}

// writePDF writes a PDF as a download.
func (s *Server) writePDF(w http.ResponseWriter, filename, contentType string, page layout.PageSize, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	setPageHeaders(w, page)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func setPageHeaders(w http.ResponseWriter, page layout.PageSize) {
	w.Header().Set("X-Page-Width", strconv.FormatFloat(page.Width, 'f', -1, 64))
	w.Header().Set("X-Page-Height", strconv.FormatFloat(page.Height, 'f', -1, 64))
}
