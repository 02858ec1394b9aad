// stickers.go — Sticker placement and pointer dragging.
package session

import (
	"bytes"
	"fmt"
	"image"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xob0t/GoBooth/pkg/compositor"
	"github.com/xob0t/GoBooth/pkg/raster"
)

// AddSticker adds p at DefaultStickerPos at its natural size and returns
// the new sticker's ID.
func (s *Session) AddSticker(p raster.Payload) (string, error) {
	if _, _, err := raster.Probe(p); err != nil {
		return "", fmt.Errorf("sticker: %w", err)
	}
	st := compositor.Sticker{
		ID:      uuid.NewString(),
		Payload: raster.Payload{Data: bytes.Clone(p.Data), Source: p.Source},
		X:       DefaultStickerPos.X,
		Y:       DefaultStickerPos.Y,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stickers = append(s.stickers, st)
	s.log.WithFields(logrus.Fields{"sticker": st.ID, "source": p.Source}).Debug("sticker added")
	return st.ID, nil
}

// RemoveSticker deletes a sticker, cancelling a drag on it.
func (s *Session) RemoveSticker(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.stickerIndex(id)
	if i < 0 {
		return false
	}
	s.stickers = append(s.stickers[:i:i], s.stickers[i+1:]...)
	if s.drag != nil && s.drag.id == id {
		s.drag = nil
	}
	return true
}

// MoveSticker sets a sticker's top-left corner in canvas pixels.
func (s *Session) MoveSticker(id string, x, y int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.stickerIndex(id)
	if i < 0 {
		return false
	}
	s.stickers[i].X, s.stickers[i].Y = x, y
	return true
}

// ResizeSticker sets a sticker's drawn size. Zero restores the natural size.
func (s *Session) ResizeSticker(id string, w, h int) bool {
	if w < 0 || h < 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.stickerIndex(id)
	if i < 0 {
		return false
	}
	s.stickers[i].Width, s.stickers[i].Height = w, h
	return true
}

// Stickers returns the stickers in draw order.
func (s *Session) Stickers() []compositor.Sticker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]compositor.Sticker(nil), s.stickers...)
}

// ClearStickers removes every sticker.
func (s *Session) ClearStickers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stickers = nil
	s.drag = nil
}

// stickerIndex must be called with mu held.
func (s *Session) stickerIndex(id string) int {
	for i, st := range s.stickers {
		if st.ID == id {
			return i
		}
	}
	return -1
}

// ── Dragging ──

// BeginDrag grabs a sticker at canvas point (x, y). The grab offset is
// kept so the sticker does not jump under the pointer.
func (s *Session) BeginDrag(id string, x, y int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.stickerIndex(id)
	if i < 0 {
		return false
	}
	st := s.stickers[i]
	s.drag = &dragState{id: id, offset: image.Pt(x-st.X, y-st.Y)}
	return true
}

// DragTo moves the grabbed sticker so the grab point follows (x, y). It
// reports false when nothing is being dragged.
func (s *Session) DragTo(x, y int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return false
	}
	i := s.stickerIndex(s.drag.id)
	if i < 0 {
		s.drag = nil
		return false
	}
	s.stickers[i].X = x - s.drag.offset.X
	s.stickers[i].Y = y - s.drag.offset.Y
	return true
}

// EndDrag releases the grab.
func (s *Session) EndDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag = nil
}

// Dragging returns the ID of the sticker being dragged.
func (s *Session) Dragging() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return "", false
	}
	return s.drag.id, true
}
