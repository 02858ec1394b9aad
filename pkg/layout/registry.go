// registry.go — Lookup tables for layouts and themes.
package layout

import (
	"fmt"
	"strings"
	"sync"
)

// Registry maps identifiers to layouts and themes. Entries are validated
// on insert and never mutated afterwards; lookups return copies.
type Registry struct {
	mu          sync.RWMutex
	layouts     map[string]Spec
	themes      map[string]Theme
	layoutOrder []string
	themeOrder  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		layouts: make(map[string]Spec),
		themes:  make(map[string]Theme),
	}
}

// AddLayout validates and registers a layout. Slot indices are assigned
// from slot order.
func (r *Registry) AddLayout(spec Spec) error {
	spec = spec.clone()
	for i := range spec.Slots {
		spec.Slots[i].Index = i
	}
	if spec.Family == "" {
		spec.Family = inferFamily(spec)
	}
	if err := Validate(spec); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.layouts[spec.ID]; dup {
		return fmt.Errorf("layout %q already registered", spec.ID)
	}
	r.layouts[spec.ID] = spec
	r.layoutOrder = append(r.layoutOrder, spec.ID)
	return nil
}

// AddTheme registers a theme. Its layout must already be registered.
func (r *Registry) AddTheme(t Theme) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	spec, ok := r.layouts[t.LayoutID]
	if !ok {
		return fmt.Errorf("theme %q: %w", t.ID, &NotFoundError{Kind: "layout", ID: t.LayoutID})
	}
	if t.Caption != nil {
		c := *t.Caption
		applyCaptionDefaults(&c)
		t.Caption = &c
	}
	if err := validateTheme(t, spec); err != nil {
		return err
	}
	if _, dup := r.themes[t.ID]; dup {
		return fmt.Errorf("theme %q already registered", t.ID)
	}
	r.themes[t.ID] = t
	r.themeOrder = append(r.themeOrder, t.ID)
	return nil
}

// Layout returns the layout registered under id.
func (r *Registry) Layout(id string) (Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.layouts[id]
	if !ok {
		return Spec{}, &NotFoundError{Kind: "layout", ID: id}
	}
	return spec.clone(), nil
}

// Theme returns the theme registered under id.
func (r *Registry) Theme(id string) (Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.themes[id]
	if !ok {
		return Theme{}, &NotFoundError{Kind: "theme", ID: id}
	}
	return t, nil
}

// ThemeLayout returns a theme together with the layout it binds to.
func (r *Registry) ThemeLayout(themeID string) (Theme, Spec, error) {
	t, err := r.Theme(themeID)
	if err != nil {
		return Theme{}, Spec{}, err
	}
	spec, err := r.Layout(t.LayoutID)
	if err != nil {
		return Theme{}, Spec{}, err
	}
	return t, spec, nil
}

// Layouts returns every layout in registration order.
func (r *Registry) Layouts() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Spec, 0, len(r.layoutOrder))
	for _, id := range r.layoutOrder {
		out = append(out, r.layouts[id].clone())
	}
	return out
}

// Themes returns every theme in registration order.
func (r *Registry) Themes() []Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Theme, 0, len(r.themeOrder))
	for _, id := range r.themeOrder {
		out = append(out, r.themes[id])
	}
	return out
}

// ThemesFor returns the themes bound to a layout, in registration order.
func (r *Registry) ThemesFor(layoutID string) []Theme {
	var out []Theme
	for _, t := range r.Themes() {
		if t.LayoutID == layoutID {
			out = append(out, t)
		}
	}
	return out
}

// FormatSummary returns a human-readable listing of the registry.
func FormatSummary(r *Registry, policy ScalePolicy) string {
	var b strings.Builder
	for _, spec := range r.Layouts() {
		scale := policy.Resolve(spec)
		preview := spec.Scaled(scale)
		fmt.Fprintf(&b, "[%s] %s (%s)\n", spec.ID, spec.Name, spec.Family)
		fmt.Fprintf(&b, "    size:    %d × %d\n", spec.Width, spec.Height)
		fmt.Fprintf(&b, "    slots:   %d\n", len(spec.Slots))
		fmt.Fprintf(&b, "    preview: %d × %d (scale %.2f)\n", preview.Width, preview.Height, scale)
		for _, t := range r.ThemesFor(spec.ID) {
			fmt.Fprintf(&b, "    - %-20s %s\n", t.ID, t.DisplayName())
		}
	}
	return b.String()
}

// inferFamily guesses a family from the canvas aspect.
func inferFamily(spec Spec) Family {
	switch {
	case spec.Width > spec.Height:
		return FamilyLandscape
	case spec.Height >= 3*spec.Width:
		return FamilyStrip
	default:
		return FamilyPostcard
	}
}
