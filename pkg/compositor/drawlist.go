// drawlist.go — Scene description and the ordered list of layers drawn
// onto the canvas.
package compositor

import (
	"github.com/xob0t/GoBooth/pkg/layout"
	"github.com/xob0t/GoBooth/pkg/raster"
)

// Sticker is a decorative image placed freely on the canvas. A zero
// Width or Height means the image's natural size.
type Sticker struct {
	ID      string
	Payload raster.Payload
	X, Y    int
	Width   int
	Height  int
}

// Scene is an immutable snapshot of everything an export needs.
type Scene struct {
	Layout     layout.Spec
	ThemeID    string
	Overlay    string // asset reference; empty for no overlay
	Slots      map[int]raster.Payload
	Stickers   []Sticker
	Caption    string
	CaptionBox *layout.CaptionBox
	Fit        FitMode
}

// Name identifies the scene in artifact names: the theme, else the layout.
func (s Scene) Name() string {
	if s.ThemeID != "" {
		return s.ThemeID
	}
	return s.Layout.ID
}

// ── Draw list ──

// LayerKind identifies what a Layer draws.
type LayerKind int

const (
	LayerSlot LayerKind = iota
	LayerPlaceholder
	LayerSticker
	LayerCaption
	LayerOverlay
)

func (k LayerKind) String() string {
	switch k {
	case LayerSlot:
		return "slot"
	case LayerPlaceholder:
		return "placeholder"
	case LayerSticker:
		return "sticker"
	case LayerCaption:
		return "caption"
	case LayerOverlay:
		return "overlay"
	}
	return "unknown"
}

// Layer is one entry of the draw list. Only the fields for its Kind are set.
type Layer struct {
	Kind    LayerKind
	Slot    layout.SlotRect // LayerSlot, LayerPlaceholder
	Payload raster.Payload  // LayerSlot, LayerSticker
	Sticker Sticker         // LayerSticker
	Text    string          // LayerCaption
	Box     layout.CaptionBox
	Ref     string // LayerOverlay
}

// BuildDrawList returns the layers of a full-resolution export in paint
// order: filled slots by ascending index, stickers in insertion order,
// the caption, and the overlay last.
func BuildDrawList(s Scene) []Layer {
	return buildLayers(s, false)
}

func buildLayers(s Scene, placeholders bool) []Layer {
	layers := make([]Layer, 0, len(s.Layout.Slots)+len(s.Stickers)+2)

	for _, slot := range s.Layout.Slots {
		p, ok := s.Slots[slot.Index]
		switch {
		case ok && !p.Empty():
			layers = append(layers, Layer{Kind: LayerSlot, Slot: slot, Payload: p})
		case placeholders:
			layers = append(layers, Layer{Kind: LayerPlaceholder, Slot: slot})
		}
	}

	for _, st := range s.Stickers {
		layers = append(layers, Layer{Kind: LayerSticker, Sticker: st, Payload: st.Payload})
	}

	if s.Caption != "" && s.CaptionBox != nil {
		layers = append(layers, Layer{Kind: LayerCaption, Text: s.Caption, Box: *s.CaptionBox})
	}

	if s.Overlay != "" {
		layers = append(layers, Layer{Kind: LayerOverlay, Ref: s.Overlay})
	}
	return layers
}
