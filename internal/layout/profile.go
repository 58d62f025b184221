// Package layout predicts the page height a rendered resume needs, so a single continuous
// page can be declared before the document is drawn.
package layout

import (
	"fmt"
)

// Section identifies an optional resume section that contributes to page height.
type Section string

// Sections in rendering order.
const (
	SectionSummary        Section = "summary"
	SectionExperience     Section = "experience"
	SectionEducation      Section = "education"
	SectionSkills         Section = "skills"
	SectionProjects       Section = "projects"
	SectionLanguages      Section = "languages"
	SectionCertifications Section = "certifications"
	SectionAwards         Section = "awards"
	SectionInterests      Section = "interests"
	SectionReferences     Section = "references"
)

// AllSections lists every section in the order costs are accumulated.
var AllSections = []Section{
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionProjects,
	SectionLanguages,
	SectionCertifications,
	SectionAwards,
	SectionInterests,
	SectionReferences,
}

// SectionCost is the vertical budget of one section, in points. A present section costs
// FlatCost + TitleCost + PerItemCost*items; an absent section costs nothing.
type SectionCost struct {
	TitleCost   float64 `json:"title_cost,omitempty"`
	PerItemCost float64 `json:"per_item_cost,omitempty"`
	FlatCost    float64 `json:"flat_cost,omitempty"`
}

// HeightMode selects how a profile's page height is determined.
type HeightMode string

const (
	// HeightDynamic sizes the page from the estimator.
	HeightDynamic HeightMode = "dynamic"
	// HeightFixed uses a standard page and accepts that very long records may overflow.
	HeightFixed HeightMode = "fixed"
	// HeightMeasured sizes the page from a height measured on the live preview.
	HeightMeasured HeightMode = "measured"
)

// Geometry describes how a profile turns an estimate into a page size.
type Geometry struct {
	Mode  HeightMode `json:"mode"`
	Width float64    `json:"width"`
	// FixedHeight is the page height for HeightFixed.
	FixedHeight float64 `json:"fixed_height,omitempty"`
	// HeightOffset is added to the estimated or measured height.
	HeightOffset float64 `json:"height_offset,omitempty"`
	// MeasuredPadding is added to a measured preview height.
	MeasuredPadding float64 `json:"measured_padding,omitempty"`
	// DefaultContentHeight stands in when no preview measurement is available.
	DefaultContentHeight float64 `json:"default_content_height,omitempty"`
	// MinPageHeight is the floor applied to the final page height.
	MinPageHeight float64 `json:"min_page_height,omitempty"`
}

// Profile is the named bundle of layout constants for one template.
type Profile struct {
	Name             string                  `json:"name"`
	BaseHeaderHeight float64                 `json:"base_header_height"`
	MinimumHeight    float64                 `json:"minimum_height"`
	Costs            map[Section]SectionCost `json:"costs"`
	Geometry         Geometry                `json:"geometry"`
}

// PageSize is a page's dimensions in points (1/72 inch).
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Common page sizes in points.
var (
	PageLetter = PageSize{Width: 612, Height: 792}
	PageA4     = PageSize{Width: 595.27, Height: 841.89}
)

// Cost returns the configured cost for a section, zero if unset.
func (p Profile) Cost(s Section) SectionCost {
	return p.Costs[s]
}

// Validate reports constants that cannot describe a real page.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name is empty")
	}
	if p.BaseHeaderHeight < 0 || p.MinimumHeight < 0 {
		return fmt.Errorf("profile %s: base and minimum heights must be non-negative", p.Name)
	}
	for s, c := range p.Costs {
		if !isKnownSection(s) {
			return fmt.Errorf("profile %s: unknown section %q", p.Name, s)
		}
		if c.TitleCost < 0 || c.PerItemCost < 0 || c.FlatCost < 0 {
			return fmt.Errorf("profile %s: section %s has a negative cost", p.Name, s)
		}
	}

	g := p.Geometry
	if g.Width <= 0 {
		return fmt.Errorf("profile %s: page width must be positive", p.Name)
	}
	if g.MinPageHeight < 0 || g.MeasuredPadding < 0 || g.DefaultContentHeight < 0 {
		return fmt.Errorf("profile %s: page geometry must be non-negative", p.Name)
	}
	switch g.Mode {
	case HeightDynamic, HeightMeasured:
	case HeightFixed:
		if g.FixedHeight <= 0 {
			return fmt.Errorf("profile %s: fixed page height must be positive", p.Name)
		}
	default:
		return fmt.Errorf("profile %s: unknown height mode %q", p.Name, g.Mode)
	}
	return nil
}

// Dynamic reports whether the page height depends on the record.
func (p Profile) Dynamic() bool {
	return p.Geometry.Mode == HeightDynamic
}

func isKnownSection(s Section) bool {
	for _, known := range AllSections {
		if known == s {
			return true
		}
	}
	return false
}
