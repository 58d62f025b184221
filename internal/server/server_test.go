package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
)

// referenceRecord has a summary, skills, three jobs and two degrees.
const referenceRecord = `{
	"personal": {"name": "Ada Lovelace", "email": "ada@example.com"},
	"summary": "Analyst of engines.",
	"experience": [
		{"title": "Analyst", "company": "Babbage", "startDate": "1842-01"},
		{"title": "Translator", "company": "Taylor", "startDate": "1843-01"},
		{"title": "Writer", "company": "Self", "startDate": "1844-01"}
	],
	"education": [
		{"degree": "Tutoring", "institution": "Home", "startDate": "1828"},
		{"degree": "Mathematics", "institution": "De Morgan", "startDate": "1840"}
	],
	"skills": {"programmingLanguages": "Go, Python, SQL"}
}`

const skillsOnlyRecord = `{
	"personal": {"name": "Ada Lovelace", "email": "ada@example.com"},
	"skills": {"programmingLanguages": "Go"}
}`

const noLanguagesRecord = `{
	"personal": {"name": "Ada Lovelace", "email": "ada@example.com"},
	"skills": {"programmingLanguages": ""}
}`

type fakeEngine struct {
	mu      sync.Mutex
	calls   int
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Render(_ context.Context, doc *rendering.Document, _ layout.PageSize) ([]byte, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-fake " + doc.Template), nil
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// memStore is an in-memory Store.
type memStore struct {
	mu      sync.Mutex
	drafts  map[uuid.UUID]*db.Draft
	exports map[uuid.UUID]*db.Export
	order   []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{drafts: map[uuid.UUID]*db.Draft{}, exports: map[uuid.UUID]*db.Export{}}
}

func (m *memStore) CreateDraft(_ context.Context, in db.DraftInput) (*db.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	d := &db.Draft{
		ID: uuid.New(), Title: in.Title, TemplateID: in.TemplateID, Record: in.Record,
		PassphraseHash: in.PassphraseHash, Locked: in.PassphraseHash != "",
		CreatedAt: now, UpdatedAt: now,
	}
	m.drafts[d.ID] = d
	cp := *d
	return &cp, nil
}

func (m *memStore) GetDraft(_ context.Context, id uuid.UUID) (*db.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) UpdateDraft(_ context.Context, id uuid.UUID, in db.DraftInput) (*db.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return nil, db.ErrDraftNotFound
	}
	d.Title, d.TemplateID, d.Record, d.UpdatedAt = in.Title, in.TemplateID, in.Record, time.Now()
	cp := *d
	return &cp, nil
}

func (m *memStore) DeleteDraft(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drafts[id]; !ok {
		return db.ErrDraftNotFound
	}
	delete(m.drafts, id)
	for eid, e := range m.exports {
		if e.DraftID != nil && *e.DraftID == id {
			delete(m.exports, eid)
		}
	}
	return nil
}

func (m *memStore) SaveExport(_ context.Context, draftID *uuid.UUID, art *export.Artifact) (*db.Export, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &db.Export{
		ID: uuid.New(), DraftID: draftID, TemplateID: art.TemplateID, Filename: art.Filename,
		ContentType: art.ContentType, Engine: art.Engine, PageWidth: art.Page.Width,
		PageHeight: art.Page.Height, EstimatedHeight: art.Estimate.Height, Data: art.Data,
		CreatedAt: time.Now(),
	}
	m.exports[e.ID] = e
	m.order = append(m.order, e.ID)
	return e, nil
}

func (m *memStore) GetExport(_ context.Context, id uuid.UUID) (*db.Export, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exports[id]
	if !ok {
		return nil, nil
	}
	return e, nil
}

func (m *memStore) ListExports(_ context.Context, draftID uuid.UUID, _ int) ([]db.ExportSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.ExportSummary
	for _, id := range m.order {
		e, ok := m.exports[id]
		if ok && e.DraftID != nil && *e.DraftID == draftID {
			out = append(out, db.ExportSummary{ID: e.ID, TemplateID: e.TemplateID, Filename: e.Filename, Size: len(e.Data), CreatedAt: e.CreatedAt})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) Close() {}

type testServer struct {
	*Server
	engine *fakeEngine
	store  *memStore
}

func newTestServer(t *testing.T, withStore bool) *testServer {
	t.Helper()
	eng := &fakeEngine{}
	d := deps{engine: eng}
	ts := &testServer{engine: eng}
	if withStore {
		ts.store = newMemStore()
		d.store = ts.store
		d.tokens = NewTokenService(&config.TokenConfig{Secret: "test-secret-key-for-draft-tokens", TTLHours: 1})
		d.passphrases = &config.PassphraseConfig{BcryptCost: 4}
	}
	ts.Server = newServer(d)
	return ts
}

func (ts *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func (ts *testServer) exporterCount() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.exporters)
}

func renderBody(record, template string) string {
	return `{"record": ` + record + `, "template": "` + template + `"}`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.do(http.MethodGet, "/health", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string]any](t, w)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "fake", resp["engine"])
	assert.Equal(t, false, resp["storage"])
}

func TestTemplatesEndpoint(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.do(http.MethodGet, "/templates", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string][]TemplateInfo](t, w)
	byID := map[string]TemplateInfo{}
	for _, tpl := range resp["templates"] {
		byID[tpl.ID] = tpl
	}
	require.Len(t, byID, 4)
	assert.True(t, byID[layout.TemplateClassic].Default)
	assert.Equal(t, layout.HeightFixed, byID[layout.TemplateMinimal].Mode)
	assert.Equal(t, 792.0, byID[layout.TemplateMinimal].FixedHeight)
	assert.Equal(t, 595.27, byID[layout.TemplateModern].Width)
	assert.Equal(t, layout.HeightMeasured, byID[layout.TemplateCreative].Mode)
}

func TestEstimateEndpoint(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(http.MethodPost, "/estimate", renderBody(referenceRecord, "classic"), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[EstimateResponse](t, w)
	assert.Equal(t, layout.TemplateClassic, resp.Template)
	assert.Equal(t, 950.0, resp.Estimate.Height)
	assert.Equal(t, layout.PageSize{Width: 612, Height: 950}, resp.Page)

	w = ts.do(http.MethodPost, "/estimate", renderBody(referenceRecord, "modern"), "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[EstimateResponse](t, w)
	assert.Equal(t, 940.0-250, resp.Page.Height)

	w = ts.do(http.MethodPost, "/estimate", renderBody(skillsOnlyRecord, "unknown"), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp = decode[EstimateResponse](t, w)
	assert.Equal(t, layout.TemplateClassic, resp.Template)
	assert.Equal(t, 400.0, resp.Estimate.Height)
}

func TestRenderEndpoints_RejectEmptyLanguages(t *testing.T) {
	ts := newTestServer(t, false)

	for _, path := range []string{"/estimate", "/preview"} {
		t.Run(path, func(t *testing.T) {
			w := ts.do(http.MethodPost, path, renderBody(noLanguagesRecord, "classic"), "")
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			resp := decode[ErrorResponse](t, w)
			require.NotEmpty(t, resp.Fields)
			assert.Equal(t, "skills.programmingLanguages", resp.Fields[0].Field)
		})
	}
	assert.Zero(t, ts.engine.callCount())
}

func TestEstimateEndpoint_BadRequests(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		name string
		body string
	}{
		{"malformed body", `{`},
		{"missing record", `{"template": "classic"}`},
		{"null record", `{"record": null}`},
		{"negative measured height", `{"record": ` + referenceRecord + `, "measured_height": -1}`},
		{"schema violation", `{"record": {"personal": {"name": "Ada"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodPost, "/estimate", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decode[ErrorResponse](t, w)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestPreviewEndpoint(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.do(http.MethodPost, "/preview", renderBody(referenceRecord, "classic"), "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "612", w.Header().Get("X-Page-Width"))
	assert.Equal(t, "950", w.Header().Get("X-Page-Height"))
	assert.Contains(t, w.Body.String(), "Ada Lovelace")
	assert.Zero(t, ts.engine.callCount())
}

func TestExportEndpoint(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.do(http.MethodPost, "/export", renderBody(referenceRecord, "classic"), "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="resume.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "950", w.Header().Get("X-Page-Height"))
	assert.Equal(t, "%PDF-fake classic", w.Body.String())
}

func TestExportEndpoint_InvalidRecordNeverReachesEngine(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.do(http.MethodPost, "/export", renderBody(noLanguagesRecord, "classic"), "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, "invalid resume record", resp.Error)
	require.NotEmpty(t, resp.Fields)
	assert.Equal(t, "skills.programmingLanguages", resp.Fields[0].Field)
	assert.Zero(t, ts.engine.callCount())
}

func TestExportEndpoint_EngineFailure(t *testing.T) {
	ts := newTestServer(t, false)
	ts.engine.err = errors.New("chrome crashed at 0x0")

	w := ts.do(http.MethodPost, "/export", renderBody(referenceRecord, "classic"), "")
	require.Equal(t, http.StatusBadGateway, w.Code)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, "PDF generation failed, please try again", resp.Error)
	assert.NotContains(t, w.Body.String(), "0x0")
}

func TestExportStreamEndpoint(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.do(http.MethodPost, "/export/stream", renderBody(referenceRecord, "modern"), "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Equal(t, 5, strings.Count(body, "event: progress\n"))
	assert.Contains(t, body, `"step":"validate"`)
	assert.Contains(t, body, `"step":"save"`)
	require.Contains(t, body, "event: complete\n")

	var art ArtifactResponse
	line := body[strings.LastIndex(body, "data: ")+len("data: "):]
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(line)), &art))
	assert.Equal(t, "%PDF-fake modern", string(art.Data))
	assert.Equal(t, layout.TemplateModern, art.Template)
}

func TestExportStreamEndpoint_Failure(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.do(http.MethodPost, "/export/stream", renderBody(noLanguagesRecord, "classic"), "")

	body := w.Body.String()
	assert.Contains(t, body, "event: error\n")
	assert.Contains(t, body, "skills.programmingLanguages")
	assert.NotContains(t, body, "event: complete")
}

func TestExportAllEndpoint(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(http.MethodPost, "/export/all", `{"record": `+referenceRecord+`}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[map[string][]ArtifactResponse](t, w)
	require.Len(t, resp["artifacts"], 4)
	for _, art := range resp["artifacts"] {
		assert.Equal(t, export.BatchFilename(art.Template), art.Filename)
	}

	w = ts.do(http.MethodPost, "/export/all", `{"record": `+referenceRecord+`, "templates": ["classic", "brutalist"]}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/export/all", `{"record": `+referenceRecord+`, "measured_height": -1}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportAllEndpoint_MeasuredHeight(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(http.MethodPost, "/export/all", `{"record": `+referenceRecord+`, "templates": ["creative"], "measured_height": 1499.2}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[map[string][]ArtifactResponse](t, w)
	require.Len(t, resp["artifacts"], 1)
	assert.Equal(t, 950.0, resp["artifacts"][0].Page.Height)
}

func TestDraftEndpoints_StorageDisabled(t *testing.T) {
	ts := newTestServer(t, false)

	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/drafts"},
		{http.MethodGet, "/drafts/" + uuid.NewString()},
		{http.MethodPost, "/drafts/" + uuid.NewString() + "/export"},
		{http.MethodGet, "/exports/" + uuid.NewString()},
	} {
		w := ts.do(r.method, r.path, `{}`, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, r.method+" "+r.path)
	}
}

func createDraft(t *testing.T, ts *testServer, body string) DraftResponse {
	t.Helper()
	w := ts.do(http.MethodPost, "/drafts", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[DraftResponse](t, w)
}

func TestDraftLifecycle(t *testing.T) {
	ts := newTestServer(t, true)

	created := createDraft(t, ts, `{"title": " Backend roles ", "template": "modern", "record": `+referenceRecord+`}`)
	require.NotEmpty(t, created.Token)
	require.NotNil(t, created.ExpiresAt)
	assert.Equal(t, "Backend roles", created.Draft.Title)
	assert.Equal(t, layout.TemplateModern, created.Draft.TemplateID)
	assert.False(t, created.Draft.Locked)
	id := created.Draft.ID.String()
	token := created.Token

	w := ts.do(http.MethodGet, "/drafts/"+id, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodGet, "/drafts/"+id, "", token)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[DraftResponse](t, w)
	assert.Contains(t, string(got.Draft.Record), `"programmingLanguages":["Go","Python","SQL"]`, "stored normalized")

	w = ts.do(http.MethodPut, "/drafts/"+id, `{"title": "Renamed", "template": "nope", "record": `+noLanguagesRecord+`}`, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[DraftResponse](t, w)
	assert.Equal(t, layout.TemplateClassic, updated.Draft.TemplateID, "unknown templates resolve to the default")

	w = ts.do(http.MethodPost, "/drafts/"+id+"/export", "", token)
	assert.Equal(t, http.StatusBadRequest, w.Code, "incomplete drafts are saved but not exported")
	assert.Zero(t, ts.engine.callCount())

	w = ts.do(http.MethodPut, "/drafts/"+id, `{"title": "Renamed", "record": `+referenceRecord+`}`, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodPost, "/drafts/"+id+"/export?template=minimal", "", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "%PDF-fake minimal", w.Body.String())
	assert.Equal(t, "792", w.Header().Get("X-Page-Height"))
	location := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/exports/"), location)

	w = ts.do(http.MethodGet, "/drafts/"+id+"/exports", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[map[string][]db.ExportSummary](t, w)
	require.Len(t, list["exports"], 1)
	assert.Equal(t, "/exports/"+list["exports"][0].ID.String(), location)

	w = ts.do(http.MethodGet, location, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = ts.do(http.MethodGet, location, "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-fake minimal", w.Body.String())

	other := createDraft(t, ts, `{"title": "Other", "record": `+referenceRecord+`}`)
	w = ts.do(http.MethodGet, location, "", other.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.do(http.MethodGet, "/drafts/"+id, "", other.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodDelete, "/drafts/"+id, "", token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(http.MethodGet, "/drafts/"+id, "", token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(http.MethodGet, location, "", token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateDraft_Validation(t *testing.T) {
	ts := newTestServer(t, true)

	tests := []struct {
		name string
		body string
	}{
		{"missing record", `{"title": "x"}`},
		{"schema violation", `{"record": {"skills": {}}}`},
		{"short passphrase", `{"record": ` + referenceRecord + `, "passphrase": "short"}`},
		{"long title", `{"title": "` + strings.Repeat("x", 201) + `", "record": ` + referenceRecord + `}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodPost, "/drafts", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
	assert.Empty(t, ts.store.drafts)
}

func TestDraftToken(t *testing.T) {
	ts := newTestServer(t, true)

	locked := createDraft(t, ts, `{"title": "Locked", "record": `+referenceRecord+`, "passphrase": "correct horse"}`)
	assert.True(t, locked.Draft.Locked)
	assert.NotContains(t, string(mustJSON(t, locked)), "$2a$")
	path := "/drafts/" + locked.Draft.ID.String() + "/token"

	w := ts.do(http.MethodPost, path, `{"passphrase": "wrong horse"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodPost, path, `{"passphrase": "correct horse"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[DraftResponse](t, w)
	require.NotEmpty(t, resp.Token)

	w = ts.do(http.MethodGet, "/drafts/"+locked.Draft.ID.String(), "", resp.Token)
	assert.Equal(t, http.StatusOK, w.Code)

	unlocked := createDraft(t, ts, `{"title": "Open", "record": `+referenceRecord+`}`)
	w = ts.do(http.MethodPost, "/drafts/"+unlocked.Draft.ID.String()+"/token", `{"passphrase": "anything at all"}`, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodPost, "/drafts/"+uuid.NewString()+"/token", `{"passphrase": "correct horse"}`, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPost, "/drafts/not-a-uuid/token", `{"passphrase": "correct horse"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportDraft_InProgress(t *testing.T) {
	ts := newTestServer(t, true)
	created := createDraft(t, ts, `{"record": `+referenceRecord+`}`)
	path := "/drafts/" + created.Draft.ID.String() + "/export"

	ts.engine.block = make(chan struct{})
	ts.engine.entered = make(chan struct{}, 1)

	first := make(chan int, 1)
	go func() {
		first <- ts.do(http.MethodPost, path, "", created.Token).Code
	}()
	<-ts.engine.entered

	w := ts.do(http.MethodPost, path, "", created.Token)
	assert.Equal(t, http.StatusConflict, w.Code)

	close(ts.engine.block)
	assert.Equal(t, http.StatusOK, <-first)
	assert.Zero(t, ts.exporterCount(), "idle exporters are dropped")
}

func TestExportDraft_ReleasesExporter(t *testing.T) {
	ts := newTestServer(t, true)
	for i := 0; i < 3; i++ {
		created := createDraft(t, ts, `{"record": `+referenceRecord+`}`)
		w := ts.do(http.MethodPost, "/drafts/"+created.Draft.ID.String()+"/export", "", created.Token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	assert.Zero(t, ts.exporterCount())
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, false)
	ts.rateLimiter = ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{{Path: "/export", Method: "POST", Limit: 1, Window: time.Hour}},
	})
	defer ts.rateLimiter.Stop()

	w := ts.do(http.MethodPost, "/export", renderBody(referenceRecord, "classic"), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = ts.do(http.MethodPost, "/export", renderBody(referenceRecord, "classic"), "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, 1, ts.engine.callCount())

	w = ts.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.do(http.MethodOptions, "/export", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
