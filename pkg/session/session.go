// Package session owns the editing state of one photo-booth user: the
// active theme and layout, the photos placed into slots, stickers, the
// caption and the fit mode. Every method is safe for concurrent use;
// exports work from an immutable Snapshot.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/xob0t/GoBooth/pkg/camera"
	"github.com/xob0t/GoBooth/pkg/compositor"
	"github.com/xob0t/GoBooth/pkg/layout"
	"github.com/xob0t/GoBooth/pkg/raster"
)

// ErrNoSlot is returned for slot indices the active layout does not have.
var ErrNoSlot = errors.New("no such slot")

// DefaultStickerPos is where a new sticker lands.
var DefaultStickerPos = image.Pt(50, 50)

// Session is the editing state.
type Session struct {
	mu       sync.Mutex
	reg      *layout.Registry
	theme    layout.Theme
	spec     layout.Spec
	slots    map[int]raster.Payload
	stickers []compositor.Sticker
	caption  string
	fit      compositor.FitMode
	drag     *dragState
	log      *logrus.Entry
}

// dragState is the transient pointer grab of one sticker.
type dragState struct {
	id     string
	offset image.Point
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session's log entry.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithFitMode sets the initial fit mode.
func WithFitMode(m compositor.FitMode) Option {
	return func(s *Session) { s.fit = m }
}

// New starts a session on themeID, or on layout.DefaultThemeID when
// themeID is empty.
func New(reg *layout.Registry, themeID string, opts ...Option) (*Session, error) {
	if themeID == "" {
		themeID = layout.DefaultThemeID
	}
	theme, spec, err := reg.ThemeLayout(themeID)
	if err != nil {
		return nil, err
	}
	s := &Session{
		reg:   reg,
		theme: theme,
		spec:  spec,
		slots: make(map[int]raster.Payload),
		fit:   compositor.FitCover,
		log:   logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ── Theme and layout ──

// SelectTheme switches to a theme and its layout and clears the canvas:
// slots, stickers and the caption.
func (s *Session) SelectTheme(id string) error {
	theme, spec, err := s.reg.ThemeLayout(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme, s.spec = theme, spec
	s.resetCanvas()
	s.log.WithFields(logrus.Fields{"theme": theme.ID, "layout": spec.ID}).Debug("theme selected")
	return nil
}

// SelectLayout switches to a layout using its first theme, or no overlay
// when no theme binds to it, and clears the canvas like SelectTheme.
func (s *Session) SelectLayout(id string) error {
	spec, err := s.reg.Layout(id)
	if err != nil {
		return err
	}
	theme := layout.Theme{LayoutID: spec.ID}
	if themes := s.reg.ThemesFor(id); len(themes) > 0 {
		theme = themes[0]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme, s.spec = theme, spec
	s.resetCanvas()
	s.log.WithFields(logrus.Fields{"theme": theme.ID, "layout": spec.ID}).Debug("layout selected")
	return nil
}

// resetCanvas drops everything positioned on the previous canvas, so an
// export right after a switch shows only the new overlay. It must be
// called with mu held.
func (s *Session) resetCanvas() {
	s.slots = make(map[int]raster.Payload)
	s.stickers = nil
	s.caption = ""
	s.drag = nil
}

// Theme returns the active theme. Its ID is empty when a layout was
// selected that no theme binds to.
func (s *Session) Theme() layout.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Layout returns the active layout.
func (s *Session) Layout() layout.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	spec := s.spec
	spec.Slots = append([]layout.SlotRect(nil), s.spec.Slots...)
	return spec
}

// ── Slots ──

// SetSlot places p into slot index. It reports false, leaving the state
// unchanged, when the active layout has no such slot or p is not a
// decodable image.
func (s *Session) SetSlot(index int, p raster.Payload) bool {
	if _, _, err := raster.Probe(p); err != nil {
		s.log.WithFields(logrus.Fields{"slot": index, "source": p.Source}).WithError(err).Debug("ignoring slot input")
		return false
	}
	p.Data = bytes.Clone(p.Data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.spec.HasSlot(index) {
		s.log.WithFields(logrus.Fields{"slot": index, "layout": s.spec.ID}).Debug("ignoring input for unknown slot")
		return false
	}
	s.slots[index] = p
	return true
}

// Slot returns the photo in slot index.
func (s *Session) Slot(index int) (raster.Payload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.slots[index]
	return p, ok
}

// ClearSlot empties one slot.
func (s *Session) ClearSlot(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, index)
}

// ClearAll empties every slot.
func (s *Session) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = make(map[int]raster.Payload)
}

// Filled reports which slots hold a photo.
func (s *Session) Filled() map[int]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]bool, len(s.slots))
	for i := range s.slots {
		out[i] = true
	}
	return out
}

// CaptureSlot takes one frame from dev and places it into slot index.
// A device failure leaves the session untouched.
func (s *Session) CaptureSlot(ctx context.Context, dev camera.Device, index int) error {
	if !s.Layout().HasSlot(index) {
		return fmt.Errorf("slot %d: %w", index, ErrNoSlot)
	}
	p, err := camera.Capture(ctx, dev)
	if err != nil {
		s.log.WithField("slot", index).WithError(err).Warn("camera capture failed")
		return err
	}
	if !s.SetSlot(index, p) {
		return fmt.Errorf("slot %d: %w", index, raster.ErrDecode)
	}
	return nil
}

// ── Caption and fit ──

// SetCaption sets the caption text.
func (s *Session) SetCaption(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caption = text
}

// Caption returns the caption text.
func (s *Session) Caption() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caption
}

// SetFitMode sets the fit mode used by exports.
func (s *Session) SetFitMode(m compositor.FitMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fit = m
}

// FitMode returns the export fit mode.
func (s *Session) FitMode() compositor.FitMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fit
}

// ── Snapshot ──

// Snapshot copies the state an export needs. Later edits do not affect
// the returned scene.
func (s *Session) Snapshot() compositor.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots := make(map[int]raster.Payload, len(s.slots))
	for i, p := range s.slots {
		slots[i] = p
	}
	var box *layout.CaptionBox
	if s.theme.Caption != nil {
		b := *s.theme.Caption
		box = &b
	}
	spec := s.spec
	spec.Slots = append([]layout.SlotRect(nil), s.spec.Slots...)
	return compositor.Scene{
		Layout:     spec,
		ThemeID:    s.theme.ID,
		Overlay:    s.theme.Overlay,
		Slots:      slots,
		Stickers:   append([]compositor.Sticker(nil), s.stickers...),
		Caption:    s.caption,
		CaptionBox: box,
		Fit:        s.fit,
	}
}
