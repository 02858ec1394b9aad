// Package layout describes photo-booth canvases: the native pixel size of a
// printable product, the slot rectangles photos are placed into, and the
// themes that bind an overlay to exactly one layout.
package layout

import (
	"image"
	"math"
)

// ── Layout types ──

// Family groups layouts that share a preview scale.
type Family string

const (
	FamilyStrip     Family = "strip"
	FamilyPostcard  Family = "postcard"
	FamilyLandscape Family = "landscape"
)

// SlotRect is a photo slot in native canvas pixels.
// Index is the 0-based position of the slot within its layout.
type SlotRect struct {
	Index  int `json:"-" yaml:"-"`
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Rect returns the slot as an image.Rectangle.
func (s SlotRect) Rect() image.Rectangle {
	return image.Rect(s.X, s.Y, s.X+s.Width, s.Y+s.Height)
}

// Spec is a layout: canvas dimensions plus an ordered slot list.
// Specs are constant once registered.
type Spec struct {
	ID     string     `json:"id" yaml:"id"`
	Name   string     `json:"name,omitempty" yaml:"name,omitempty"`
	Family Family     `json:"family,omitempty" yaml:"family,omitempty"`
	Width  int        `json:"width" yaml:"width"`
	Height int        `json:"height" yaml:"height"`
	Slots  []SlotRect `json:"slots" yaml:"slots"`
}

// Bounds returns the canvas rectangle.
func (s Spec) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// Slot returns the slot with the given index.
func (s Spec) Slot(index int) (SlotRect, bool) {
	if index < 0 || index >= len(s.Slots) {
		return SlotRect{}, false
	}
	return s.Slots[index], true
}

// HasSlot reports whether index addresses a slot of this layout.
func (s Spec) HasSlot(index int) bool {
	_, ok := s.Slot(index)
	return ok
}

// Scaled returns a copy of the layout with every coordinate multiplied by
// scale and rounded to the nearest pixel. Used for previews only.
func (s Spec) Scaled(scale float64) Spec {
	out := s
	out.Width = scalePx(s.Width, scale)
	out.Height = scalePx(s.Height, scale)
	out.Slots = make([]SlotRect, len(s.Slots))
	for i, slot := range s.Slots {
		out.Slots[i] = SlotRect{
			Index:  slot.Index,
			X:      scalePx(slot.X, scale),
			Y:      scalePx(slot.Y, scale),
			Width:  scalePx(slot.Width, scale),
			Height: scalePx(slot.Height, scale),
		}
	}
	return out
}

// clone deep-copies the slot slice so registry callers cannot mutate it.
func (s Spec) clone() Spec {
	out := s
	out.Slots = append([]SlotRect(nil), s.Slots...)
	return out
}

func scalePx(v int, scale float64) int {
	return int(math.Round(float64(v) * scale))
}

// ── Theme types ──

// Theme binds an overlay image to one layout.
type Theme struct {
	ID          string      `json:"themeId" yaml:"themeId"`
	Name        string      `json:"name,omitempty" yaml:"name,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Overlay     string      `json:"overlay" yaml:"overlay"` // opaque ref, resolved by a raster.Resolver
	LayoutID    string      `json:"layout" yaml:"layout"`
	Caption     *CaptionBox `json:"caption,omitempty" yaml:"caption,omitempty"`
}

// DisplayName returns Name, or the ID when no name was configured.
func (t Theme) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// CaptionBox is the region of a theme where caption text is drawn.
type CaptionBox struct {
	X        int     `json:"x" yaml:"x"`
	Y        int     `json:"y" yaml:"y"`
	Width    int     `json:"width" yaml:"width"`
	Height   int     `json:"height" yaml:"height"`
	FontSize float64 `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	Color    string  `json:"color,omitempty" yaml:"color,omitempty"` // "#rrggbb"
	Align    string  `json:"align,omitempty" yaml:"align,omitempty"` // "left", "center", "right"
	Font     string  `json:"font,omitempty" yaml:"font,omitempty"`   // asset ref of a TTF/OTF
}

// Rect returns the caption box as an image.Rectangle.
func (c CaptionBox) Rect() image.Rectangle {
	return image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
}

// applyCaptionDefaults sets sane fallbacks for caption style fields.
func applyCaptionDefaults(c *CaptionBox) {
	if c.FontSize <= 0 {
		c.FontSize = 48
	}
	if c.Color == "" {
		c.Color = "#ffffff"
	}
	if c.Align == "" {
		c.Align = "center"
	}
}
