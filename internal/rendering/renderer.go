// Package rendering turns a resume record into a styled box tree for one of the
// built-in templates. It is pure presentation and knows nothing about page geometry.
package rendering

import (
	"sort"
	"strings"

	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/types"
)

// Renderer draws a record in one template's visual style.
type Renderer interface {
	Template() string
	Render(rec *types.ResumeRecord) (*Document, error)
}

// themedRenderer builds every template from the same section skeleton, varying only
// the Theme.
type themedRenderer struct {
	theme Theme
}

// Lookup returns the renderer for a template identifier.
func Lookup(template string) (Renderer, bool) {
	t, ok := themes[template]
	if !ok {
		return nil, false
	}
	return themedRenderer{theme: t}, true
}

// ForTemplate returns the renderer for a template identifier, falling back to the
// default template for unknown or empty identifiers.
func ForTemplate(template string) Renderer {
	if r, ok := Lookup(template); ok {
		return r
	}
	r, _ := Lookup(layout.DefaultTemplate)
	return r
}

// Templates lists the built-in template identifiers in sorted order.
func Templates() []string {
	out := make([]string, 0, len(themes))
	for name := range themes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r themedRenderer) Template() string {
	return r.theme.Template
}

func (r themedRenderer) Render(rec *types.ResumeRecord) (*Document, error) {
	if rec == nil {
		return nil, &RenderError{Message: "no record to render"}
	}

	t := r.theme
	doc := &Document{
		Template: t.Template,
		Title:    rec.Personal.Name,
		Page:     t.Page,
		Blocks:   []Block{header(t, rec)},
	}

	for _, st := range t.Sections {
		if !layout.Present(rec, st.Section) {
			continue
		}
		section := Block{
			Kind:     KindSection,
			Section:  string(st.Section),
			Style:    Style{MarginBottom: 14},
			Children: []Block{heading(t, st.Title)},
		}
		section.Children = append(section.Children, sectionBody(t, rec, st.Section)...)
		doc.Blocks = append(doc.Blocks, section)
	}

	return doc, nil
}

func header(t Theme, rec *types.ResumeRecord) Block {
	p := rec.Personal
	h := Block{Kind: KindHeader, Style: t.Header}
	h.Children = append(h.Children, text(p.Name, t.Name))
	if p.Headline != "" {
		h.Children = append(h.Children, text(p.Headline, t.Headline))
	}

	contact := Block{Kind: KindRow, Style: Style{Align: t.Header.Align, MarginTop: 6}}
	if p.Email != "" {
		contact.Children = append(contact.Children, link(p.Email, "mailto:"+p.Email, t.Contact))
	}
	if p.Website.Link != "" {
		label := p.Website.Name
		if label == "" {
			label = p.Website.Link
		}
		contact.Children = append(contact.Children, link(label, p.Website.Link, t.Link))
	}
	if p.Location != "" {
		contact.Children = append(contact.Children, text(p.Location, t.Contact))
	}
	if len(contact.Children) > 0 {
		h.Children = append(h.Children, contact)
	}

	socials := Block{Kind: KindRow, Style: Style{Align: t.Header.Align, MarginTop: 4}}
	for _, s := range []struct{ label, href string }{
		{"LinkedIn", rec.Socials.LinkedIn},
		{"GitHub", rec.Socials.GitHub},
		{"Twitter", rec.Socials.Twitter},
	} {
		if s.href != "" {
			socials.Children = append(socials.Children, link(s.label, s.href, t.Link))
		}
	}
	if len(socials.Children) > 0 {
		h.Children = append(h.Children, socials)
	}
	return h
}

func sectionBody(t Theme, rec *types.ResumeRecord, s layout.Section) []Block {
	switch s {
	case layout.SectionSummary:
		return []Block{text(rec.Summary, t.Body)}
	case layout.SectionExperience:
		out := make([]Block, 0, len(rec.Experience))
		for _, e := range rec.Experience {
			out = append(out, entry(
				dated(t, e.Title, e.StartDate, e.EndDate),
				text(e.Company, t.EntrySubtitle),
				optional(e.Description, t.Body),
			))
		}
		return out
	case layout.SectionEducation:
		out := make([]Block, 0, len(rec.Education))
		for _, e := range rec.Education {
			out = append(out, entry(
				dated(t, e.Degree, e.StartDate, e.EndDate),
				text(e.Institution, t.EntrySubtitle),
			))
		}
		return out
	case layout.SectionSkills:
		var out []Block
		if len(rec.Skills.ProgrammingLanguages) > 0 {
			out = append(out, text("Programming Languages", t.Category), badges(rec.Skills.ProgrammingLanguages, t.Badge))
		}
		if len(rec.Skills.Keywords) > 0 {
			out = append(out, text(t.KeywordsLabel, t.Category), badges(rec.Skills.Keywords, t.Badge))
		}
		return out
	case layout.SectionProjects:
		out := make([]Block, 0, len(rec.Projects))
		for _, p := range rec.Projects {
			var tech Block
			if len(p.Technologies) > 0 {
				tech = badges(p.Technologies, t.Badge)
			}
			out = append(out, entry(
				text(p.Title, t.EntryTitle),
				optional(p.Description, t.Body),
				tech,
			))
		}
		return out
	case layout.SectionLanguages:
		return []Block{badges(rec.Languages, t.Badge)}
	case layout.SectionCertifications:
		out := make([]Block, 0, len(rec.Certifications))
		for _, c := range rec.Certifications {
			out = append(out, entry(
				text(c.Name, t.Category),
				text(joinDot(c.IssuingOrganization, c.Date), t.Body),
			))
		}
		return out
	case layout.SectionAwards:
		out := make([]Block, 0, len(rec.Awards))
		for _, a := range rec.Awards {
			out = append(out, entry(
				text(joinDot(a.Title, a.Date), t.Category),
				optional(a.Description, t.Body),
			))
		}
		return out
	case layout.SectionInterests:
		return []Block{badges(rec.Interests, t.Badge)}
	case layout.SectionReferences:
		out := make([]Block, 0, len(rec.References))
		for _, ref := range rec.References {
			out = append(out, entry(
				text(ref.Name, t.Category),
				text(ref.Title+" at "+ref.Company, t.Body),
				text(joinDot(ref.Email, ref.Phone), t.Body),
			))
		}
		return out
	}
	return nil
}

func heading(t Theme, title string) Block {
	if t.SectionTitle.Uppercase {
		title = strings.ToUpper(title)
	}
	return Block{Kind: KindHeading, Text: title, Style: t.SectionTitle}
}

func text(s string, st Style) Block {
	return Block{Kind: KindText, Text: s, Style: st}
}

// optional is text that is dropped by entry when empty.
func optional(s string, st Style) Block {
	if s == "" {
		return Block{}
	}
	return text(s, st)
}

func link(label, href string, st Style) Block {
	return Block{Kind: KindLink, Text: label, Href: href, Style: st}
}

func badges(items []string, st Style) Block {
	return Block{Kind: KindBadges, Items: append([]string(nil), items...), Style: st}
}

// dated is an entry title on the left with its date range on the right.
func dated(t Theme, title, start, end string) Block {
	right := t.EntryDate
	right.Align = AlignRight
	return Block{
		Kind: KindRow,
		Children: []Block{
			text(title, t.EntryTitle),
			text(DateRange(start, end), right),
		},
	}
}

// entry groups children into one item, skipping zero-value blocks.
func entry(children ...Block) Block {
	e := Block{Kind: KindEntry, Style: Style{MarginBottom: 10}}
	for _, c := range children {
		if c.Kind != "" {
			e.Children = append(e.Children, c)
		}
	}
	return e
}

func joinDot(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " • ")
}
