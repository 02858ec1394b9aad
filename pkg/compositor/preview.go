// preview.go — Scaled-down interactive preview: frame geometry for hit
// testing and a low-resolution raster of the current scene.
package compositor

import (
	"context"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/xob0t/GoBooth/pkg/layout"
)

// PreviewSlot is a slot in preview coordinates. Empty slots are upload
// placeholders.
type PreviewSlot struct {
	Index  int             `json:"index"`
	Rect   image.Rectangle `json:"rect"`
	Filled bool            `json:"filled"`
}

// PreviewFrame is the on-screen geometry of a layout at a preview scale.
// The overlay covers the whole frame, sits above every slot and never
// receives pointer input.
type PreviewFrame struct {
	LayoutID string          `json:"layoutId"`
	Scale    float64         `json:"scale"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Slots    []PreviewSlot   `json:"slots"`
	Overlay  image.Rectangle `json:"overlay"`
}

// NewPreviewFrame scales spec's canvas and slots by scale, rounding each
// coordinate to the nearest pixel. filled marks slots holding a photo.
func NewPreviewFrame(spec layout.Spec, scale float64, filled map[int]bool) PreviewFrame {
	scaled := spec.Scaled(scale)
	f := PreviewFrame{
		LayoutID: spec.ID,
		Scale:    scale,
		Width:    scaled.Width,
		Height:   scaled.Height,
		Slots:    make([]PreviewSlot, len(scaled.Slots)),
		Overlay:  image.Rect(0, 0, scaled.Width, scaled.Height),
	}
	for i, s := range scaled.Slots {
		f.Slots[i] = PreviewSlot{Index: s.Index, Rect: s.Rect(), Filled: filled[s.Index]}
	}
	return f
}

// SlotAt returns the slot under the preview point (x, y). Where slots
// overlap the later one wins, matching paint order. The overlay is never
// hit.
func (f PreviewFrame) SlotAt(x, y int) (int, bool) {
	pt := image.Pt(x, y)
	for i := len(f.Slots) - 1; i >= 0; i-- {
		if pt.In(f.Slots[i].Rect) {
			return f.Slots[i].Index, true
		}
	}
	return 0, false
}

// Placeholders returns the slots still waiting for a photo.
func (f PreviewFrame) Placeholders() []PreviewSlot {
	var out []PreviewSlot
	for _, s := range f.Slots {
		if !s.Filled {
			out = append(out, s)
		}
	}
	return out
}

// RenderPreview draws scene at scale. Photos are always placed with cover,
// empty slots show a dashed placeholder, and the overlay is drawn on top.
func (c *Compositor) RenderPreview(ctx context.Context, scene Scene, scale float64) (*image.RGBA, error) {
	scaled := scaleScene(scene, scale)
	return c.render(ctx, scaled, buildLayers(scaled, true), pass{fit: FitCover, scale: scale})
}

// scaleScene maps every native coordinate of scene into preview space.
func scaleScene(s Scene, scale float64) Scene {
	out := s
	out.Layout = s.Layout.Scaled(scale)

	out.Stickers = make([]Sticker, len(s.Stickers))
	for i, st := range s.Stickers {
		st.X = scalePx(st.X, scale)
		st.Y = scalePx(st.Y, scale)
		st.Width = scalePx(st.Width, scale)
		st.Height = scalePx(st.Height, scale)
		out.Stickers[i] = st
	}

	if s.CaptionBox != nil {
		b := *s.CaptionBox
		b.X = scalePx(b.X, scale)
		b.Y = scalePx(b.Y, scale)
		b.Width = scalePx(b.Width, scale)
		b.Height = scalePx(b.Height, scale)
		b.FontSize *= scale
		out.CaptionBox = &b
	}
	return out
}

func scalePx(v int, scale float64) int {
	return int(math.Round(float64(v) * scale))
}

// ── Placeholder ──

var (
	placeholderFill   = color.NRGBA{R: 255, G: 255, B: 255, A: 0x40}
	placeholderBorder = color.NRGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
)

const (
	dashOn     = 6
	dashOff    = 4
	dashStroke = 2
)

// drawPlaceholder fills r translucently and strokes a dashed border
// inside it.
func drawPlaceholder(dst *image.RGBA, r image.Rectangle) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, image.NewUniform(placeholderFill), image.Point{}, draw.Over)

	border := image.NewUniform(placeholderBorder)
	for x := r.Min.X; x < r.Max.X; x += dashOn + dashOff {
		x1 := min(x+dashOn, r.Max.X)
		draw.Draw(dst, image.Rect(x, r.Min.Y, x1, r.Min.Y+dashStroke).Intersect(r), border, image.Point{}, draw.Src)
		draw.Draw(dst, image.Rect(x, r.Max.Y-dashStroke, x1, r.Max.Y).Intersect(r), border, image.Point{}, draw.Src)
	}
	for y := r.Min.Y; y < r.Max.Y; y += dashOn + dashOff {
		y1 := min(y+dashOn, r.Max.Y)
		draw.Draw(dst, image.Rect(r.Min.X, y, r.Min.X+dashStroke, y1).Intersect(r), border, image.Point{}, draw.Src)
		draw.Draw(dst, image.Rect(r.Max.X-dashStroke, y, r.Max.X, y1).Intersect(r), border, image.Point{}, draw.Src)
	}
}
