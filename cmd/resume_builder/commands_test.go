package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/engine"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/layout"
)

func defaultConfig() config.Config {
	var cfg config.Config
	return cfg.MergeWithDefaults(config.Config{})
}

func TestEstimateRecord_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, estimateRecord(&out, defaultConfig(), validRecordPath, 0, true))

	var got estimateOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 950.0, got.Estimate.Height)
	assert.Equal(t, layout.PageSize{Width: 612, Height: 950}, got.Page)
}

func TestEstimateRecord_Templates(t *testing.T) {
	tests := []struct {
		template string
		measured float64
		want     float64
	}{
		{layout.TemplateModern, 0, 940 - 250},
		{layout.TemplateMinimal, 0, 792},
		{layout.TemplateCreative, 0, 400},
		{layout.TemplateCreative, 1500, 950},
		{"brutalist", 0, 950},
	}
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Template = tt.template

			var out bytes.Buffer
			require.NoError(t, estimateRecord(&out, cfg, validRecordPath, tt.measured, true))
			var got estimateOutput
			require.NoError(t, json.Unmarshal(out.Bytes(), &got))
			assert.Equal(t, tt.want, got.Page.Height)
		})
	}
}

func TestEstimateRecord_RaisedToMinimum(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, estimateRecord(&out, defaultConfig(), skillsOnlyRecordPath, 0, false))
	assert.Contains(t, out.String(), "LAYOUT ESTIMATE")
	assert.Contains(t, out.String(), "raised to the template minimum")
}

func TestEstimateRecord_RejectsEmptyLanguages(t *testing.T) {
	var out bytes.Buffer
	err := estimateRecord(&out, defaultConfig(), emptyLanguagesRecordPath, 0, false)
	assert.ErrorIs(t, err, errInvalidRecord)
	assert.Contains(t, out.String(), "skills.programmingLanguages")
	assert.NotContains(t, out.String(), "LAYOUT ESTIMATE")
}

func TestEstimateRecord_Errors(t *testing.T) {
	assert.Error(t, estimateRecord(&bytes.Buffer{}, defaultConfig(), validRecordPath, -1, false))
	assert.Error(t, estimateRecord(&bytes.Buffer{}, defaultConfig(), "does-not-exist.json", 0, false))
	assert.Error(t, estimateRecord(&bytes.Buffer{}, defaultConfig(), missingSkillsRecordPath, 0, false))
}

func TestValidateRecord(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, validateRecord(&out, validRecordPath))
	assert.Contains(t, out.String(), "RECORD IS VALID")

	out.Reset()
	err := validateRecord(&out, emptyLanguagesRecordPath)
	assert.ErrorIs(t, err, errInvalidRecord)
	assert.Contains(t, out.String(), "skills.programmingLanguages")

	out.Reset()
	err = validateRecord(&out, missingSkillsRecordPath)
	assert.ErrorIs(t, err, errInvalidRecord)
	assert.Contains(t, out.String(), "VALIDATION ERRORS")

	err = validateRecord(&bytes.Buffer{}, "does-not-exist.json")
	require.Error(t, err)
	assert.False(t, errors.Is(err, errInvalidRecord))
}

func TestExportRecord_Native(t *testing.T) {
	cfg := defaultConfig()
	cfg.OutputDir = t.TempDir()

	var out bytes.Buffer
	arts, err := exportRecord(context.Background(), &out, engine.NewNativeEngine(engine.Options{}), cfg, exportOptions{recordPath: validRecordPath})
	require.NoError(t, err)
	require.Len(t, arts, 1)

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, export.DefaultFilename))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Equal(t, 950.0, arts[0].Page.Height)
	assert.Contains(t, out.String(), "EXPORTED")
}

func TestExportRecord_All(t *testing.T) {
	cfg := defaultConfig()
	cfg.OutputDir = t.TempDir()

	arts, err := exportRecord(context.Background(), &bytes.Buffer{}, engine.NewNativeEngine(engine.Options{}), cfg, exportOptions{recordPath: validRecordPath, all: true})
	require.NoError(t, err)
	require.Len(t, arts, 4)

	for _, id := range layout.Builtin().Templates() {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, export.BatchFilename(id)))
		assert.NoError(t, err, id)
	}
}

func TestExportRecord_AllUsesMeasuredHeight(t *testing.T) {
	cfg := defaultConfig()
	cfg.OutputDir = t.TempDir()

	arts, err := exportRecord(context.Background(), &bytes.Buffer{}, engine.NewNativeEngine(engine.Options{}), cfg, exportOptions{recordPath: validRecordPath, all: true, measured: 1499.2})
	require.NoError(t, err)

	pages := map[string]float64{}
	for _, art := range arts {
		pages[art.TemplateID] = art.Page.Height
	}
	assert.Equal(t, 950.0, pages[layout.TemplateCreative])
	assert.Equal(t, 950.0, pages[layout.TemplateClassic])
}

func TestRenderFlags_HelpListsChoices(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	var f renderFlags
	f.register(cmd)

	assert.Equal(t, "PDF engine (chrome, native)", cmd.Flags().Lookup("engine").Usage)
	assert.Equal(t, "Template id (classic, creative, minimal, modern)", cmd.Flags().Lookup("template").Usage)
}

func TestExportRecord_InvalidRecordWritesNothing(t *testing.T) {
	cfg := defaultConfig()
	cfg.OutputDir = t.TempDir()

	var out bytes.Buffer
	_, err := exportRecord(context.Background(), &out, engine.NewNativeEngine(engine.Options{}), cfg, exportOptions{recordPath: emptyLanguagesRecordPath})
	assert.ErrorIs(t, err, errInvalidRecord)
	assert.Contains(t, out.String(), "skills.programmingLanguages")

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportRecord_FlagConflicts(t *testing.T) {
	eng := engine.NewNativeEngine(engine.Options{})
	_, err := exportRecord(context.Background(), &bytes.Buffer{}, eng, defaultConfig(), exportOptions{recordPath: validRecordPath, measured: -5})
	assert.Error(t, err)
	_, err = exportRecord(context.Background(), &bytes.Buffer{}, eng, defaultConfig(), exportOptions{recordPath: validRecordPath, all: true, filename: "x.pdf"})
	assert.Error(t, err)
}

func TestPreviewRecord(t *testing.T) {
	cfg := defaultConfig()
	cfg.Template = layout.TemplateMinimal

	var out bytes.Buffer
	require.NoError(t, previewRecord(&out, &bytes.Buffer{}, cfg, validRecordPath, 0))
	assert.Contains(t, out.String(), "Ada Lovelace")
	assert.Contains(t, out.String(), "size: 612pt 792pt")
}

func TestPreviewRecord_RejectsEmptyLanguages(t *testing.T) {
	var out, errOut bytes.Buffer
	err := previewRecord(&out, &errOut, defaultConfig(), emptyLanguagesRecordPath, 0)
	assert.ErrorIs(t, err, errInvalidRecord)
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "skills.programmingLanguages")
}

func TestListTemplates(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, listTemplates(&out, layout.Builtin()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, out.String(), "classic (default)")
	assert.Contains(t, out.String(), "792")
}

type fakeLister struct {
	got    db.DraftFilters
	drafts []db.DraftSummary
	err    error
}

func (f *fakeLister) ListDrafts(_ context.Context, filters db.DraftFilters) ([]db.DraftSummary, error) {
	f.got = filters
	return f.drafts, f.err
}

func TestListDrafts(t *testing.T) {
	id := uuid.New()
	lister := &fakeLister{drafts: []db.DraftSummary{{ID: id, Title: "Backend roles", TemplateID: "modern", UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}}}

	var out bytes.Buffer
	require.NoError(t, listDrafts(context.Background(), &out, lister, db.DraftFilters{TemplateID: "modern", Limit: 10}))
	assert.Equal(t, "modern", lister.got.TemplateID)
	assert.Contains(t, out.String(), id.String())
	assert.Contains(t, out.String(), "2026-01-02T03:04:05Z")

	out.Reset()
	require.NoError(t, listDrafts(context.Background(), &out, &fakeLister{}, db.DraftFilters{}))
	assert.Equal(t, "No drafts found\n", out.String())

	assert.Error(t, listDrafts(context.Background(), &bytes.Buffer{}, &fakeLister{err: errors.New("down")}, db.DraftFilters{}))
}

func TestExportCommand_MissingRecordFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "export", "--out", t.TempDir())
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required flag(s) \"record\" not set")
}

func TestExportCommand_UnknownEngine(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "export", "--record", validRecordPath, "--engine", "latex", "--out", t.TempDir())
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "unknown rendering engine")
}

func TestValidateAgainstSchema(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "house.schema.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`{
		"type": "object",
		"required": ["summary"],
		"properties": {"summary": {"type": "string", "minLength": 1}}
	}`), 0o644))

	require.NoError(t, validateAgainstSchema(&bytes.Buffer{}, schemaPath, validRecordPath))

	var out bytes.Buffer
	err := validateAgainstSchema(&out, schemaPath, emptyLanguagesRecordPath)
	assert.ErrorIs(t, err, errInvalidRecord)
	assert.Contains(t, out.String(), "summary")

	err = validateAgainstSchema(&bytes.Buffer{}, filepath.Join(dir, "missing.json"), validRecordPath)
	require.Error(t, err)
	assert.NotErrorIs(t, err, errInvalidRecord)
}
