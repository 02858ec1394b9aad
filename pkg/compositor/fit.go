// fit.go — Placement of a photo inside a slot.
package compositor

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/xob0t/GoBooth/pkg/layout"
)

// FitMode selects how a photo is placed in its slot.
type FitMode string

const (
	// FitCover scales to cover the slot, centred, cropping the overflow.
	FitCover FitMode = "cover"
	// FitContain scales to fit inside the slot, centred, leaving the rest transparent.
	FitContain FitMode = "contain"
	// FitFill stretches to exactly the slot, ignoring aspect ratio.
	FitFill FitMode = "fill"
)

// ParseFitMode parses a fit mode name. The empty string means cover.
func ParseFitMode(s string) (FitMode, error) {
	switch m := FitMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return FitCover, nil
	case FitCover, FitContain, FitFill:
		return m, nil
	default:
		return "", fmt.Errorf("unknown fit mode %q (want cover, contain or fill)", s)
	}
}

// Placement is the destination rectangle of a photo in canvas pixels. It
// may extend beyond the slot (cover); drawing always clips to the slot.
type Placement struct {
	X, Y          float64
	Width, Height float64
}

// Rect rounds the placement to whole pixels.
func (p Placement) Rect() image.Rectangle {
	x0 := int(math.Round(p.X))
	y0 := int(math.Round(p.Y))
	return image.Rect(x0, y0, x0+int(math.Round(p.Width)), y0+int(math.Round(p.Height)))
}

// Place computes where an imgW × imgH photo is drawn for slot under mode.
// Unknown modes behave like cover.
func Place(imgW, imgH int, slot layout.SlotRect, mode FitMode) Placement {
	sx, sy := float64(slot.X), float64(slot.Y)
	sw, sh := float64(slot.Width), float64(slot.Height)

	if mode == FitFill || imgW <= 0 || imgH <= 0 {
		return Placement{X: sx, Y: sy, Width: sw, Height: sh}
	}

	iw, ih := float64(imgW), float64(imgH)
	imgRatio := iw / ih
	slotRatio := sw / sh

	if mode == FitContain {
		if imgRatio > slotRatio {
			dh := ih * sw / iw
			return Placement{X: sx, Y: sy + (sh-dh)/2, Width: sw, Height: dh}
		}
		dw := iw * sh / ih
		return Placement{X: sx + (sw-dw)/2, Y: sy, Width: dw, Height: sh}
	}

	if imgRatio > slotRatio {
		dw := iw * sh / ih
		return Placement{X: sx - (dw-sw)/2, Y: sy, Width: dw, Height: sh}
	}
	dh := ih * sw / iw
	return Placement{X: sx, Y: sy - (dh-sh)/2, Width: sw, Height: dh}
}
