package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Template identifiers.
const (
	TemplateClassic  = "classic"
	TemplateModern   = "modern"
	TemplateMinimal  = "minimal"
	TemplateCreative = "creative"

	// DefaultTemplate is used when a template identifier is not recognized.
	DefaultTemplate = TemplateClassic
)

// standardCosts is the reference cost table shared by the built-in profiles.
func standardCosts() map[Section]SectionCost {
	return map[Section]SectionCost{
		SectionSummary:        {FlatCost: 90},
		SectionExperience:     {TitleCost: 40, PerItemCost: 130},
		SectionEducation:      {TitleCost: 40, PerItemCost: 100},
		SectionSkills:         {FlatCost: 90},
		SectionProjects:       {TitleCost: 40, PerItemCost: 100},
		SectionLanguages:      {TitleCost: 40},
		SectionCertifications: {TitleCost: 40, PerItemCost: 50},
		SectionAwards:         {TitleCost: 40, PerItemCost: 50},
		SectionInterests:      {FlatCost: 60},
		SectionReferences:     {TitleCost: 40, PerItemCost: 80},
	}
}

// ClassicProfile is the reference profile: single column, US Letter width, dynamic height.
func ClassicProfile() Profile {
	return Profile{
		Name:             TemplateClassic,
		BaseHeaderHeight: 100,
		MinimumHeight:    400,
		Costs:            standardCosts(),
		Geometry: Geometry{
			Mode:  HeightDynamic,
			Width: PageLetter.Width,
		},
	}
}

// ModernProfile has a two-column body, so entries are shorter but the summary and skills
// blocks are taller. Its page trims the estimate by 250 points.
func ModernProfile() Profile {
	costs := standardCosts()
	costs[SectionSummary] = SectionCost{FlatCost: 100}
	costs[SectionExperience] = SectionCost{TitleCost: 40, PerItemCost: 120}
	costs[SectionSkills] = SectionCost{FlatCost: 100}
	costs[SectionProjects] = SectionCost{TitleCost: 40, PerItemCost: 120}

	return Profile{
		Name:             TemplateModern,
		BaseHeaderHeight: 100,
		MinimumHeight:    400,
		Costs:            costs,
		Geometry: Geometry{
			Mode:         HeightDynamic,
			Width:        PageA4.Width,
			HeightOffset: -250,
		},
	}
}

// MinimalProfile prints on a fixed US Letter page. Very long records may overflow.
func MinimalProfile() Profile {
	return Profile{
		Name:             TemplateMinimal,
		BaseHeaderHeight: 100,
		MinimumHeight:    400,
		Costs:            standardCosts(),
		Geometry: Geometry{
			Mode:        HeightFixed,
			Width:       PageLetter.Width,
			FixedHeight: PageLetter.Height,
		},
	}
}

// CreativeProfile sizes its page from the live preview's measured height.
func CreativeProfile() Profile {
	return Profile{
		Name:             TemplateCreative,
		BaseHeaderHeight: 100,
		MinimumHeight:    400,
		Costs:            standardCosts(),
		Geometry: Geometry{
			Mode:                 HeightMeasured,
			Width:                PageLetter.Width,
			MeasuredPadding:      50,
			DefaultContentHeight: 1000,
			HeightOffset:         -600,
			MinPageHeight:        400,
		},
	}
}

// Registry maps template identifiers to profiles. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	profiles   map[string]Profile
	defaultKey string
}

// NewRegistry builds a registry from profiles. The first profile is the default unless one
// is named DefaultTemplate. It panics on an invalid profile: profiles are program constants.
func NewRegistry(profiles ...Profile) *Registry {
	r := &Registry{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		r.MustRegister(p)
	}
	if _, ok := r.profiles[DefaultTemplate]; ok {
		r.defaultKey = DefaultTemplate
	} else if len(profiles) > 0 {
		r.defaultKey = profiles[0].Name
	}
	return r
}

// Builtin returns a registry holding the four built-in profiles.
func Builtin() *Registry {
	return NewRegistry(ClassicProfile(), ModernProfile(), MinimalProfile(), CreativeProfile())
}

// Register adds or replaces a profile.
func (r *Registry) Register(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.Name] = p
	if r.defaultKey == "" {
		r.defaultKey = p.Name
	}
	return nil
}

// MustRegister is Register that panics on an invalid profile.
func (r *Registry) MustRegister(p Profile) {
	if err := r.Register(p); err != nil {
		panic(fmt.Sprintf("layout: %v", err))
	}
}

// Lookup returns the profile for templateID.
func (r *Registry) Lookup(templateID string) (Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[templateID]
	return p, ok
}

// Resolve returns the profile for templateID, or the default profile when the identifier is
// not recognized.
func (r *Registry) Resolve(templateID string) Profile {
	if p, ok := r.Lookup(templateID); ok {
		return p
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profiles[r.defaultKey]
}

// Default returns the fallback profile.
func (r *Registry) Default() Profile {
	return r.Resolve(r.defaultKey)
}

// Templates lists registered identifiers in sorted order.
func (r *Registry) Templates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadProfiles reads a JSON array of profiles and registers each one, replacing built-in
// profiles of the same name.
func (r *Registry) LoadProfiles(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read profiles file %s: %w", path, err)
	}

	var profiles []Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return fmt.Errorf("failed to parse profiles JSON: %w", err)
	}

	for _, p := range profiles {
		if err := r.Register(p); err != nil {
			return fmt.Errorf("invalid profile in %s: %w", path, err)
		}
	}
	return nil
}
