package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintRecord(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	rec := &types.ResumeRecord{
		Personal: types.Personal{Name: "Ada Lovelace", Email: "ada@example.com", Headline: "Analyst"},
		Skills:   types.Skills{ProgrammingLanguages: types.StringList{"Go", "Python", "SQL", "C", "Rust", "Zig", "OCaml"}},
		Experience: []types.Experience{
			{Title: "Analyst", Company: "Babbage", StartDate: "1842"},
		},
	}

	p.PrintRecord(rec)
	output := buf.String()

	assert.Contains(t, output, "RESUME RECORD")
	assert.Contains(t, output, "Ada Lovelace")
	assert.Contains(t, output, "Go, Python, SQL, C, Rust (+2)")
	assert.Contains(t, output, "Experience: 1")
}

func TestPrintRecord_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRecord(nil)

	assert.Empty(t, buf.String())
}

func TestPrintEstimate(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	rec := &types.ResumeRecord{
		Summary:    "x",
		Experience: []types.Experience{{}, {}, {}},
		Education:  []types.Education{{}, {}},
		Skills:     types.Skills{ProgrammingLanguages: types.StringList{"Go"}},
	}
	profile := layout.ClassicProfile()

	p.PrintEstimate(layout.Breakdown(rec, profile), layout.ResolvePage(rec, profile, 0))
	output := buf.String()

	assert.Contains(t, output, "LAYOUT ESTIMATE")
	assert.Contains(t, output, "experience")
	assert.Contains(t, output, "x3")
	assert.Contains(t, output, "430")
	assert.Contains(t, output, "Estimated height: 950")
	assert.Contains(t, output, "Page: 612 x 950")
	assert.NotContains(t, output, "template minimum")
}

func TestPrintEstimate_RaisedToMinimum(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	profile := layout.ClassicProfile()
	p.PrintEstimate(layout.Breakdown(nil, profile), layout.PageSize{Width: 612, Height: 400})

	assert.Contains(t, buf.String(), "Estimated height: 400")
	assert.Contains(t, buf.String(), "template minimum")
}

func TestPrintValidationErrors_WithErrors(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintValidationErrors([]types.FieldError{
		{Field: "skills.programmingLanguages", Message: "must have at least 1 entry"},
	})
	output := buf.String()

	assert.Contains(t, output, "VALIDATION ERRORS")
	assert.Contains(t, output, "skills.programmingLanguages")
	assert.Contains(t, output, "must have at least 1 entry")
}

func TestPrintValidationErrors_None(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintValidationErrors(nil)

	assert.Contains(t, buf.String(), "RECORD IS VALID")
}

func TestPrintArtifacts(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintArtifacts([]*export.Artifact{{
		Filename:   "resume-modern.pdf",
		Location:   "out/resume-modern.pdf",
		TemplateID: layout.TemplateModern,
		Engine:     "native",
		Page:       layout.PageSize{Width: 595.27, Height: 690},
		Data:       []byte("%PDF"),
	}})
	output := buf.String()

	assert.Contains(t, output, "EXPORTED")
	assert.Contains(t, output, "out/resume-modern.pdf (modern)")
	assert.Contains(t, output, "595.27 x 690 pt, 4 bytes via native")
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRecord(&types.ResumeRecord{
		Personal: types.Personal{
			Name:  "A Very Long Candidate Name That Should Be Truncated To Fit The Box",
			Email: "someone@example.com",
		},
	})
	output := buf.String()

	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	assert.True(t, strings.Contains(output, "..."))
}
