// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		// Truncate long lines
		if r := []rune(line); len(r) > boxWidth-4 {
			line = string(r[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRecord outputs a short summary of a loaded resume record.
func (p *Printer) PrintRecord(rec *types.ResumeRecord) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", rec.Personal.Name))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", rec.Personal.Email))
	if rec.Personal.Headline != "" {
		sb.WriteString(fmt.Sprintf("Headline: %s\n", rec.Personal.Headline))
	}
	sb.WriteString("\n")

	langs := rec.Skills.ProgrammingLanguages
	if len(langs) > 0 {
		shown := langs
		if len(shown) > maxItemsToShow {
			shown = shown[:maxItemsToShow]
		}
		sb.WriteString(fmt.Sprintf("Languages: %s", strings.Join(shown, ", ")))
		if len(langs) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf(" (+%d)", len(langs)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("Experience: %d  Education: %d  Projects: %d\n",
		len(rec.Experience), len(rec.Education), len(rec.Projects)))

	p.printBox("RESUME RECORD", sb.String())
}

// PrintEstimate outputs the itemized height estimate and the resolved page.
func (p *Printer) PrintEstimate(est layout.Estimate, page layout.PageSize) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Template: %s\n\n", est.Profile))
	sb.WriteString(fmt.Sprintf("  %-16s %5s %8s\n", "base header", "", points(est.Base)))
	for _, s := range est.Sections {
		sb.WriteString(fmt.Sprintf("  %-16s %5s %8s\n", s.Section, fmt.Sprintf("x%d", s.Items), points(s.Height)))
	}
	sb.WriteString(fmt.Sprintf("  %-16s %5s %8s\n", "content", "", points(est.Content)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Estimated height: %s\n", points(est.Height)))
	if est.Height > est.Content {
		sb.WriteString("  (raised to the template minimum)\n")
	}
	sb.WriteString(fmt.Sprintf("Page: %s x %s\n", points(page.Width), points(page.Height)))

	p.printBox("LAYOUT ESTIMATE", sb.String())
}

// PrintValidationErrors outputs the fields a record failed on.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintValidationErrors(errs []types.FieldError) {
	if len(errs) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ RECORD IS VALID")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d problems:\n\n", len(errs)))

	for i, e := range errs {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", e.Field))
		sb.WriteString(fmt.Sprintf("  %s\n", e.Message))
		if i < len(errs)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("VALIDATION ERRORS", sb.String())
}

// PrintArtifacts outputs where each exported file went.
func (p *Printer) PrintArtifacts(arts []*export.Artifact) {
	if len(arts) == 0 {
		return
	}

	var sb strings.Builder
	for _, a := range arts {
		where := a.Location
		if where == "" {
			where = a.Filename
		}
		sb.WriteString(fmt.Sprintf("%s (%s)\n", where, a.TemplateID))
		sb.WriteString(fmt.Sprintf("  %s x %s pt, %d bytes via %s\n",
			points(a.Page.Width), points(a.Page.Height), len(a.Data), a.Engine))
	}

	p.printBox("EXPORTED", sb.String())
}

func points(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
