package compositor

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/xob0t/GoBooth/pkg/layout"
	"github.com/xob0t/GoBooth/pkg/raster"
)

func stripSpec(t *testing.T) layout.Spec {
	t.Helper()
	spec, err := layout.Default().Layout("2x6")
	if err != nil {
		t.Fatal(err)
	}
	return spec
}

func TestNewPreviewFrame(t *testing.T) {
	spec := stripSpec(t)
	scale := layout.ResolveScale(spec)
	f := NewPreviewFrame(spec, scale, map[int]bool{0: true})

	if f.Width != 210 || f.Height != 630 {
		t.Fatalf("frame = %dx%d, want 210x630", f.Width, f.Height)
	}
	wantRects := []image.Rectangle{
		image.Rect(0, 0, 210, 210),
		image.Rect(0, 210, 210, 420),
		image.Rect(0, 420, 210, 630),
	}
	for i, s := range f.Slots {
		if s.Rect != wantRects[i] {
			t.Errorf("slot %d rect = %v, want %v", i, s.Rect, wantRects[i])
		}
	}
	if f.Overlay != image.Rect(0, 0, 210, 630) {
		t.Errorf("overlay = %v", f.Overlay)
	}

	ph := f.Placeholders()
	if len(ph) != 2 || ph[0].Index != 1 || ph[1].Index != 2 {
		t.Errorf("placeholders = %+v", ph)
	}
}

func TestPreviewSlotAt(t *testing.T) {
	f := NewPreviewFrame(stripSpec(t), 0.35, nil)
	tests := []struct {
		x, y  int
		index int
		ok    bool
	}{
		{5, 5, 0, true},
		{100, 300, 1, true},
		{209, 629, 2, true},
		{210, 10, 0, false},
		{-1, 10, 0, false},
	}
	for _, tt := range tests {
		idx, ok := f.SlotAt(tt.x, tt.y)
		if ok != tt.ok || (ok && idx != tt.index) {
			t.Errorf("SlotAt(%d,%d) = %d,%v want %d,%v", tt.x, tt.y, idx, ok, tt.index, tt.ok)
		}
	}
}

func TestPreviewSlotAtOverlapPrefersLaterSlot(t *testing.T) {
	spec := layout.Spec{ID: "o", Width: 100, Height: 100, Slots: []layout.SlotRect{
		{Index: 0, Width: 80, Height: 80},
		{Index: 1, X: 40, Y: 40, Width: 60, Height: 60},
	}}
	f := NewPreviewFrame(spec, 1, nil)
	if idx, _ := f.SlotAt(50, 50); idx != 1 {
		t.Errorf("overlap hit = %d, want 1", idx)
	}
	if idx, _ := f.SlotAt(10, 10); idx != 0 {
		t.Errorf("hit = %d, want 0", idx)
	}
}

func TestRenderPreview(t *testing.T) {
	c, _ := newTestCompositor(nil)
	scene := Scene{
		Layout: stripSpec(t),
		Slots:  map[int]raster.Payload{0: photo(t, 600, 600, red, red)},
		Fit:    FitFill,
	}

	img, err := c.RenderPreview(context.Background(), scene, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 900 {
		t.Fatalf("preview = %v, want 300x900", b)
	}
	assertPixel(t, img, 150, 150, red)

	// Slot 1 is empty: dashed border on its top edge, translucent fill inside.
	if got := img.RGBAAt(1, 301); got != rgbaOf(placeholderBorder) {
		t.Errorf("border pixel = %v", got)
	}
	if got := img.RGBAAt(150, 450); got.A != placeholderFill.A {
		t.Errorf("fill alpha = %d, want %d", got.A, placeholderFill.A)
	}
	// A gap in the dash pattern.
	if got := img.RGBAAt(7, 301); got == rgbaOf(placeholderBorder) {
		t.Errorf("expected dash gap at x=7")
	}
}

func TestRenderPreviewScalesStickers(t *testing.T) {
	c, _ := newTestCompositor(nil)
	scene := Scene{
		Layout:   stripSpec(t),
		Slots:    map[int]raster.Payload{0: photo(t, 10, 10, red, red), 1: photo(t, 10, 10, red, red), 2: photo(t, 10, 10, red, red)},
		Stickers: []Sticker{{ID: "s", Payload: photo(t, 100, 100, blue, blue), X: 100, Y: 100}},
	}
	img, err := c.RenderPreview(context.Background(), scene, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	assertPixel(t, img, 50, 50, blue)
	assertPixel(t, img, 99, 99, blue)
	assertPixel(t, img, 100, 100, red)
}

func rgbaOf(c color.NRGBA) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
