// scale.go — Preview scale resolution.
package layout

// ScalePolicy picks the on-screen scale of a layout's preview. It never
// affects export dimensions.
//
// Rules, first match wins:
//   - landscape canvas (Width > Height): Landscape
//   - Height > TallHeight: Tall
//   - Families[spec.Family] when present, otherwise Default
type ScalePolicy struct {
	Landscape  float64
	Tall       float64
	TallHeight int
	Families   map[Family]float64
	Default    float64
}

// DefaultScalePolicy reproduces the editor's preview sizing. Strips and
// postcards that are neither landscape nor tall use 0.4 and 0.5.
var DefaultScalePolicy = ScalePolicy{
	Landscape:  0.25,
	Tall:       0.35,
	TallHeight: 1500,
	Families: map[Family]float64{
		FamilyStrip:    0.4,
		FamilyPostcard: 0.5,
	},
	Default: 0.4,
}

// ResolveScale resolves spec with DefaultScalePolicy.
func ResolveScale(spec Spec) float64 {
	return DefaultScalePolicy.Resolve(spec)
}

type scaleRule struct {
	match func(p ScalePolicy, s Spec) bool
	scale func(p ScalePolicy, s Spec) float64
}

var scaleRules = []scaleRule{
	{
		match: func(_ ScalePolicy, s Spec) bool { return s.Width > s.Height },
		scale: func(p ScalePolicy, _ Spec) float64 { return p.Landscape },
	},
	{
		match: func(p ScalePolicy, s Spec) bool { return s.Height > p.TallHeight },
		scale: func(p ScalePolicy, _ Spec) float64 { return p.Tall },
	},
	{
		match: func(ScalePolicy, Spec) bool { return true },
		scale: func(p ScalePolicy, s Spec) float64 {
			if v, ok := p.Families[s.Family]; ok {
				return v
			}
			return p.Default
		},
	},
}

// Resolve returns the preview scale for spec, clamped into (0, 1].
func (p ScalePolicy) Resolve(spec Spec) float64 {
	for _, r := range scaleRules {
		if r.match(p, spec) {
			return clampScale(r.scale(p, spec))
		}
	}
	return clampScale(p.Default)
}

// WithFamily returns a copy of the policy with one family default replaced.
func (p ScalePolicy) WithFamily(f Family, scale float64) ScalePolicy {
	families := make(map[Family]float64, len(p.Families)+1)
	for k, v := range p.Families {
		families[k] = v
	}
	families[f] = scale
	p.Families = families
	return p
}

func clampScale(v float64) float64 {
	if v <= 0 || v > 1 {
		return 1
	}
	return v
}
