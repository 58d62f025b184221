package rendering

import (
	"github.com/jonathan/resume-builder/internal/layout"
)

// Theme is the palette, type scale and section selection of one template.
type Theme struct {
	Template string
	Page     Style
	Header   Style
	Name     Style
	Headline Style
	Contact  Style
	Link     Style

	SectionTitle  Style
	EntryTitle    Style
	EntryDate     Style
	EntrySubtitle Style
	Body          Style
	Category      Style
	Badge         Style

	// KeywordsLabel captions the free keyword list in the skills section.
	KeywordsLabel string
	// Sections lists the sections the template draws, in order, with their titles.
	Sections []SectionTitle
}

// SectionTitle pairs a section with its heading text.
type SectionTitle struct {
	Section layout.Section
	Title   string
}

func classicTheme() Theme {
	return Theme{
		Template:      layout.TemplateClassic,
		Page:          Style{Font: FontMono, Color: "#1F2937", Background: "#FFFFFF", Padding: 30},
		Header:        Style{Align: AlignCenter, MarginBottom: 20},
		Name:          Style{FontSize: 28, Bold: true, Color: "#1F2937", Align: AlignCenter},
		Headline:      Style{FontSize: 15, Color: "#4B5563", Align: AlignCenter, MarginTop: 4},
		Contact:       Style{FontSize: 12, Color: "#4B5563"},
		Link:          Style{FontSize: 12, Color: "#2563EB"},
		SectionTitle:  Style{FontSize: 15, Bold: true, Color: "#1F2937", BorderColor: "#1F2937", MarginBottom: 8},
		EntryTitle:    Style{FontSize: 13, Bold: true, Color: "#1F2937"},
		EntryDate:     Style{FontSize: 11, Color: "#1F2937", Background: "#F3F4F6", Padding: 2},
		EntrySubtitle: Style{FontSize: 13, Color: "#374151"},
		Body:          Style{FontSize: 12, Color: "#4B5563"},
		Category:      Style{FontSize: 12, Bold: true, Color: "#1F2937"},
		Badge:         Style{FontSize: 11, Color: "#1F2937", Background: "#F3F4F6", Padding: 3},
		KeywordsLabel: "Technologies & Frameworks",
		Sections: []SectionTitle{
			{layout.SectionSummary, "Professional Summary"},
			{layout.SectionExperience, "Professional Experience"},
			{layout.SectionEducation, "Education"},
			{layout.SectionSkills, "Skills"},
			{layout.SectionProjects, "Projects"},
			{layout.SectionLanguages, "Languages"},
			{layout.SectionCertifications, "Certifications"},
			{layout.SectionAwards, "Awards & Recognition"},
			{layout.SectionInterests, "Interests & Pursuits"},
			{layout.SectionReferences, "References"},
		},
	}
}

func modernTheme() Theme {
	return Theme{
		Template:      layout.TemplateModern,
		Page:          Style{Font: FontSans, Color: "#1F2937", Background: "#FFFFFF"},
		Header:        Style{Background: "#3B82F6", Color: "#FFFFFF", Padding: 20, MarginBottom: 16},
		Name:          Style{FontSize: 20, Bold: true, Color: "#FFFFFF"},
		Headline:      Style{FontSize: 14, Color: "#FFFFFF", MarginTop: 4},
		Contact:       Style{FontSize: 11, Color: "#FFFFFF"},
		Link:          Style{FontSize: 11, Color: "#FFFFFF"},
		SectionTitle:  Style{FontSize: 12, Bold: true, Uppercase: true, Color: "#3B82F6", MarginBottom: 6},
		EntryTitle:    Style{FontSize: 11, Bold: true, Color: "#1F2937"},
		EntryDate:     Style{FontSize: 10, Color: "#6B7280"},
		EntrySubtitle: Style{FontSize: 11, Color: "#374151"},
		Body:          Style{FontSize: 10.5, Color: "#4B5563"},
		Category:      Style{FontSize: 11, Bold: true, Color: "#1F2937"},
		Badge:         Style{FontSize: 10, Color: "#3B82F6", Background: "#EFF6FF", Padding: 3},
		KeywordsLabel: "Technologies",
		Sections: []SectionTitle{
			{layout.SectionSummary, "About Me"},
			{layout.SectionExperience, "Work Experience"},
			{layout.SectionEducation, "Education"},
			{layout.SectionSkills, "Skills"},
			{layout.SectionProjects, "Projects"},
			{layout.SectionLanguages, "Languages"},
			{layout.SectionCertifications, "Certifications"},
			{layout.SectionAwards, "Awards"},
			{layout.SectionInterests, "Interests"},
		},
	}
}

func minimalTheme() Theme {
	return Theme{
		Template:      layout.TemplateMinimal,
		Page:          Style{Font: FontSans, Color: "#333333", Background: "#FFFFFF", Padding: 40},
		Header:        Style{MarginBottom: 20},
		Name:          Style{FontSize: 24, Bold: true, Color: "#333333"},
		Headline:      Style{FontSize: 12, Color: "#666666", MarginTop: 4},
		Contact:       Style{FontSize: 10, Color: "#666666"},
		Link:          Style{FontSize: 10, Color: "#666666"},
		SectionTitle:  Style{FontSize: 11, Bold: true, Uppercase: true, Color: "#333333", BorderColor: "#999999", MarginBottom: 6},
		EntryTitle:    Style{FontSize: 11, Bold: true, Color: "#333333"},
		EntryDate:     Style{FontSize: 9, Color: "#666666"},
		EntrySubtitle: Style{FontSize: 10, Color: "#444444"},
		Body:          Style{FontSize: 10, Color: "#444444"},
		Category:      Style{FontSize: 10, Bold: true, Color: "#444444"},
		Badge:         Style{FontSize: 9, Color: "#555555"},
		KeywordsLabel: "Technologies",
		Sections: []SectionTitle{
			{layout.SectionSummary, "Summary"},
			{layout.SectionSkills, "Skills"},
			{layout.SectionEducation, "Education"},
			{layout.SectionLanguages, "Languages"},
			{layout.SectionInterests, "Interests"},
		},
	}
}

func creativeTheme() Theme {
	return Theme{
		Template:      layout.TemplateCreative,
		Page:          Style{Font: FontSans, Color: "#4c1d95", Background: "#faf5ff", Padding: 30},
		Header:        Style{Align: AlignCenter, MarginBottom: 16},
		Name:          Style{FontSize: 28, Bold: true, Color: "#9333ea", Align: AlignCenter},
		Headline:      Style{FontSize: 14, Color: "#6b7280", Align: AlignCenter, MarginTop: 4},
		Contact:       Style{FontSize: 11, Color: "#7c3aed", Background: "#FFFFFF", Padding: 4},
		Link:          Style{FontSize: 11, Color: "#7c3aed"},
		SectionTitle:  Style{FontSize: 14, Bold: true, Color: "#a21caf", MarginBottom: 6},
		EntryTitle:    Style{FontSize: 12, Bold: true, Color: "#4c1d95"},
		EntryDate:     Style{FontSize: 10, Color: "#6d28d9"},
		EntrySubtitle: Style{FontSize: 11, Color: "#7c3aed"},
		Body:          Style{FontSize: 10, Color: "#6b7280"},
		Category:      Style{FontSize: 11, Bold: true, Color: "#7c3aed"},
		Badge:         Style{FontSize: 10, Color: "#7c3aed", Background: "#ede9fe", Padding: 3},
		KeywordsLabel: "Technologies",
		Sections: []SectionTitle{
			{layout.SectionSummary, "About Me"},
			{layout.SectionSkills, "Skills"},
			{layout.SectionExperience, "Experience"},
			{layout.SectionEducation, "Education"},
			{layout.SectionInterests, "Interests"},
		},
	}
}

// themes holds the closed set of built-in templates.
var themes = map[string]Theme{
	layout.TemplateClassic:  classicTheme(),
	layout.TemplateModern:   modernTheme(),
	layout.TemplateMinimal:  minimalTheme(),
	layout.TemplateCreative: creativeTheme(),
}
