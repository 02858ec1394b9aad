package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/xob0t/GoBooth/pkg/camera"
	"github.com/xob0t/GoBooth/pkg/compositor"
	"github.com/xob0t/GoBooth/pkg/layout"
	"github.com/xob0t/GoBooth/pkg/raster"
)

func pngPayload(t *testing.T, w, h int) raster.Payload {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return raster.FromBytes(buf.Bytes(), "photo.png")
}

func newSession(t *testing.T, themeID string) *Session {
	t.Helper()
	logger, _ := test.NewNullLogger()
	s, err := New(layout.Default(), themeID, WithLogger(logrus.NewEntry(logger)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewDefaultsAndErrors(t *testing.T) {
	s := newSession(t, "")
	if s.Theme().ID != layout.DefaultThemeID {
		t.Errorf("theme = %s", s.Theme().ID)
	}
	if s.FitMode() != compositor.FitCover {
		t.Errorf("fit = %s", s.FitMode())
	}
	if _, err := New(layout.Default(), "nope"); !errors.Is(err, layout.ErrNotFound) {
		t.Errorf("unknown theme: %v", err)
	}
}

func TestSetSlot(t *testing.T) {
	s := newSession(t, "zootopia-strip")
	p := pngPayload(t, 4, 4)

	tests := []struct {
		name  string
		index int
		p     raster.Payload
		want  bool
	}{
		{"valid", 0, p, true},
		{"last slot", 2, p, true},
		{"index beyond layout", 3, p, false},
		{"negative index", -1, p, false},
		{"not an image", 1, raster.FromBytes([]byte("%%%"), "x.txt"), false},
		{"empty payload", 1, raster.Payload{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.SetSlot(tt.index, tt.p); got != tt.want {
				t.Errorf("SetSlot = %v, want %v", got, tt.want)
			}
			_, ok := s.Slot(tt.index)
			if ok != tt.want {
				t.Errorf("Slot present = %v", ok)
			}
		})
	}
}

func TestSetSlotReplaces(t *testing.T) {
	s := newSession(t, "zootopia-strip")
	a, b := pngPayload(t, 4, 4), pngPayload(t, 8, 8)
	s.SetSlot(0, a)
	s.SetSlot(0, b)
	got, _ := s.Slot(0)
	if !bytes.Equal(got.Data, b.Data) {
		t.Error("second SetSlot did not replace the first")
	}
}

func TestSessionReset(t *testing.T) {
	s := newSession(t, "zootopia-strip")
	for i := 0; i < 3; i++ {
		s.SetSlot(i, pngPayload(t, 4, 4))
	}
	s.SetCaption("old caption")
	if _, err := s.AddSticker(pngPayload(t, 40, 40)); err != nil {
		t.Fatal(err)
	}

	if err := s.SelectTheme("black-card-1"); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Filled()); n != 0 {
		t.Fatalf("%d slots survived a theme change", n)
	}
	if s.Layout().ID != "4x6" {
		t.Errorf("layout = %s", s.Layout().ID)
	}
	if len(s.Stickers()) != 0 || s.Caption() != "" {
		t.Errorf("stickers %d, caption %q survived a theme change", len(s.Stickers()), s.Caption())
	}

	s.SetSlot(3, pngPayload(t, 4, 4))
	if err := s.SelectLayout("2x6"); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Filled()); n != 0 {
		t.Fatalf("%d slots survived a layout change", n)
	}
	if s.Theme().ID != "zootopia-strip" {
		t.Errorf("SelectLayout picked %s, want the first 2x6 theme", s.Theme().ID)
	}

	if err := s.SelectTheme("missing"); !errors.Is(err, layout.ErrNotFound) {
		t.Errorf("unknown theme: %v", err)
	}
	if err := s.SelectLayout("missing"); !errors.Is(err, layout.ErrNotFound) {
		t.Errorf("unknown layout: %v", err)
	}
}

// opaquePixels counts pixels with any alpha.
func opaquePixels(img *image.RGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			n++
		}
	}
	return n
}

func TestExportAfterSwitchIsBlank(t *testing.T) {
	logger, _ := test.NewNullLogger()
	c := compositor.New(nil, compositor.WithLogger(logrus.NewEntry(logger)))

	tests := []struct {
		name   string
		start  string
		change func(*Session) error
	}{
		{"strip to card", "zootopia-strip", func(s *Session) error { return s.SelectTheme("zootopia-card") }},
		{"card to strip", "zootopia-card", func(s *Session) error { return s.SelectLayout("2x6") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t, tt.start)
			for i := range s.Layout().Slots {
				s.SetSlot(i, pngPayload(t, 4, 4))
			}
			id, err := s.AddSticker(pngPayload(t, 40, 40))
			if err != nil {
				t.Fatal(err)
			}
			s.MoveSticker(id, 100, 100)
			s.SetCaption("hello")

			if err := tt.change(s); err != nil {
				t.Fatal(err)
			}
			// The new overlay is not resolvable here, so a clean reset
			// leaves a fully transparent canvas.
			img, err := c.Render(context.Background(), s.Snapshot())
			if err != nil {
				t.Fatal(err)
			}
			if n := opaquePixels(img); n != 0 {
				t.Errorf("%d non-transparent pixels after the switch", n)
			}
		})
	}
}

func TestSelectLayoutWithoutTheme(t *testing.T) {
	reg := layout.NewRegistry()
	if err := reg.AddLayout(layout.Spec{ID: "bare", Width: 10, Height: 10, Slots: []layout.SlotRect{{Width: 10, Height: 10}}}); err != nil {
		t.Fatal(err)
	}
	if err := reg.AddLayout(layout.Spec{ID: "other", Width: 10, Height: 10, Slots: []layout.SlotRect{{Width: 10, Height: 10}}}); err != nil {
		t.Fatal(err)
	}
	if err := reg.AddTheme(layout.Theme{ID: "t", LayoutID: "other", Overlay: "o.png"}); err != nil {
		t.Fatal(err)
	}
	s, err := New(reg, "t")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SelectLayout("bare"); err != nil {
		t.Fatal(err)
	}
	scene := s.Snapshot()
	if scene.Overlay != "" || scene.ThemeID != "" || scene.Name() != "bare" {
		t.Errorf("scene = %+v", scene)
	}
}

func TestClearAll(t *testing.T) {
	s := newSession(t, "zootopia-strip")
	s.SetSlot(0, pngPayload(t, 4, 4))
	s.SetSlot(1, pngPayload(t, 4, 4))
	s.ClearSlot(0)
	if _, ok := s.Slot(0); ok {
		t.Error("ClearSlot left the photo")
	}
	s.ClearAll()
	if len(s.Filled()) != 0 {
		t.Error("ClearAll left photos")
	}
}

func TestSnapshotIsImmutable(t *testing.T) {
	s := newSession(t, "blacktheme1")
	s.SetSlot(0, pngPayload(t, 4, 4))
	s.SetCaption("before")
	id, err := s.AddSticker(pngPayload(t, 2, 2))
	if err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()

	s.SetSlot(1, pngPayload(t, 4, 4))
	s.ClearSlot(0)
	s.SetCaption("after")
	s.MoveSticker(id, 500, 500)
	s.SetFitMode(compositor.FitFill)

	if _, ok := snap.Slots[0]; !ok || len(snap.Slots) != 1 {
		t.Errorf("snapshot slots changed: %v", snap.Slots)
	}
	if snap.Caption != "before" || snap.Fit != compositor.FitCover {
		t.Errorf("snapshot = %q %s", snap.Caption, snap.Fit)
	}
	if snap.Stickers[0].X != DefaultStickerPos.X {
		t.Error("snapshot sticker moved")
	}
	if snap.CaptionBox == nil || snap.Overlay != "blacktheme1.png" || snap.ThemeID != "blacktheme1" {
		t.Errorf("snapshot theme data = %+v", snap)
	}

	snap.Layout.Slots[0].X = 999
	if s.Layout().Slots[0].X == 999 {
		t.Error("snapshot shares layout slots with the session")
	}
}

type stubDevice struct {
	frame raster.Payload
	err   error
}

func (d stubDevice) Open(context.Context) (camera.Stream, error) {
	if d.err != nil {
		return nil, d.err
	}
	return stubStream{d.frame}, nil
}

type stubStream struct{ frame raster.Payload }

func (s stubStream) Frame(context.Context) (raster.Payload, error) { return s.frame, nil }
func (stubStream) Close() error                                     { return nil }

func TestCaptureSlot(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, "zootopia-strip")

	if err := s.CaptureSlot(ctx, stubDevice{frame: pngPayload(t, 4, 4)}, 1); err != nil {
		t.Fatalf("CaptureSlot: %v", err)
	}
	if p, ok := s.Slot(1); !ok || p.Source != "photo.png" {
		t.Errorf("slot 1 = %+v, %v", p.Source, ok)
	}

	err := s.CaptureSlot(ctx, stubDevice{err: errors.New("permission denied")}, 0)
	if !errors.Is(err, camera.ErrDeviceAccess) {
		t.Errorf("device failure: %v", err)
	}
	if _, ok := s.Slot(0); ok {
		t.Error("failed capture filled a slot")
	}

	if err := s.CaptureSlot(ctx, stubDevice{frame: raster.FromBytes([]byte("x"), "camera")}, 0); !errors.Is(err, raster.ErrDecode) {
		t.Errorf("bad frame: %v", err)
	}
	if err := s.CaptureSlot(ctx, stubDevice{frame: pngPayload(t, 4, 4)}, 9); !errors.Is(err, ErrNoSlot) {
		t.Errorf("unknown slot: %v", err)
	}
}
