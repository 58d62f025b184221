package layout

import (
	"math"

	"github.com/jonathan/resume-builder/internal/types"
)

// SectionEstimate is one section's contribution to an estimate.
type SectionEstimate struct {
	Section Section `json:"section"`
	Items   int     `json:"items"`
	Height  float64 `json:"height"`
}

// Estimate is an itemized height prediction.
type Estimate struct {
	Profile  string            `json:"profile"`
	Base     float64           `json:"base"`
	Sections []SectionEstimate `json:"sections"`
	// Content is the base plus every section cost, before the minimum is applied.
	Content float64 `json:"content"`
	Height  float64 `json:"height"`
}

// EstimateHeight predicts the height, in points, that the record occupies when rendered with
// the profile's template. It never returns less than the profile's MinimumHeight.
func EstimateHeight(rec *types.ResumeRecord, p Profile) float64 {
	return Breakdown(rec, p).Height
}

// Breakdown is EstimateHeight with every present section itemized.
func Breakdown(rec *types.ResumeRecord, p Profile) Estimate {
	est := Estimate{
		Profile:  p.Name,
		Base:     p.BaseHeaderHeight,
		Sections: []SectionEstimate{},
		Content:  p.BaseHeaderHeight,
	}

	if rec != nil {
		for _, s := range AllSections {
			items, present := sectionItems(rec, s)
			if !present {
				continue
			}
			c := p.Cost(s)
			h := c.FlatCost + c.TitleCost + c.PerItemCost*float64(items)
			est.Sections = append(est.Sections, SectionEstimate{Section: s, Items: items, Height: h})
			est.Content += h
		}
	}

	est.Height = math.Max(est.Content, p.MinimumHeight)
	return est
}

// sectionItems returns the item count of a section and whether it is present. Scalar
// sections report one item when present.
func sectionItems(rec *types.ResumeRecord, s Section) (int, bool) {
	var n int
	switch s {
	case SectionSummary:
		if rec.Summary != "" {
			n = 1
		}
	case SectionExperience:
		n = len(rec.Experience)
	case SectionEducation:
		n = len(rec.Education)
	case SectionSkills:
		if rec.HasSkills() {
			n = 1
		}
	case SectionProjects:
		n = len(rec.Projects)
	case SectionLanguages:
		n = len(rec.Languages)
	case SectionCertifications:
		n = len(rec.Certifications)
	case SectionAwards:
		n = len(rec.Awards)
	case SectionInterests:
		n = len(rec.Interests)
	case SectionReferences:
		n = len(rec.References)
	}
	return n, n > 0
}

// ResolvePage turns a profile's geometry into a concrete page size. measured is the
// preview-measured content height for HeightMeasured profiles; zero or negative means
// unavailable. Estimation always happens before the page is sized.
func ResolvePage(rec *types.ResumeRecord, p Profile, measured float64) PageSize {
	g := p.Geometry

	var height float64
	switch g.Mode {
	case HeightFixed:
		height = g.FixedHeight
	case HeightMeasured:
		content := g.DefaultContentHeight
		if measured > 0 {
			content = math.Ceil(measured) + g.MeasuredPadding
		}
		height = content + g.HeightOffset
	default:
		height = EstimateHeight(rec, p) + g.HeightOffset
	}

	return PageSize{Width: g.Width, Height: math.Max(height, g.MinPageHeight)}
}

// Present reports whether a section has content. Renderers use it so that a section is
// drawn exactly when the estimator charges for it.
func Present(rec *types.ResumeRecord, s Section) bool {
	if rec == nil {
		return false
	}
	_, ok := sectionItems(rec, s)
	return ok
}
