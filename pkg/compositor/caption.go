// caption.go - Caption text rendering inside a theme's caption box.
// Text is word-wrapped to the box width, centred vertically and aligned
// horizontally per the box style. Glyphs never leave the box.
package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/xob0t/GoBooth/pkg/layout"
)

// lineSpacing is the caption line height relative to the font size.
const lineSpacing = 1.25

var defaultCaptionColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// drawCaption renders text into box on dst using fm.
func drawCaption(dst *image.RGBA, text string, box layout.CaptionBox, fm *FontManager) error {
	size := box.FontSize
	if size <= 0 {
		size = 48
	}
	face, err := fm.Face(size)
	if err != nil {
		return err
	}
	defer face.Close()

	clip, ok := dst.SubImage(box.Rect()).(*image.RGBA)
	if !ok || clip.Bounds().Empty() {
		return nil
	}
	col := parseColorOr(box.Color, defaultCaptionColor)

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, wrapText(para, box.Width, face)...)
	}
	if len(lines) == 0 {
		return nil
	}

	lineHeight := int(size * lineSpacing)
	ascent := face.Metrics().Ascent.Ceil()
	descent := face.Metrics().Descent.Ceil()
	block := lineHeight*(len(lines)-1) + ascent + descent
	y := box.Y + ascent
	if block < box.Height {
		y += (box.Height - block) / 2
	}

	for _, line := range lines {
		adv := font.MeasureString(face, line).Ceil()
		x := box.X
		switch box.Align {
		case "right":
			x = box.X + box.Width - adv
		case "left":
		default:
			x = box.X + (box.Width-adv)/2
		}
		drawString(clip, line, x, y, col, face)
		y += lineHeight
	}
	return nil
}

// wrapText breaks a single string of text into multiple lines that each fit
// within maxWidth pixels, using the metrics of the provided font face.
func wrapText(text string, maxWidth int, face font.Face) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if maxWidth <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	currentLine := words[0]
	for _, word := range words[1:] {
		testLine := currentLine + " " + word
		if font.MeasureString(face, testLine).Ceil() > maxWidth {
			lines = append(lines, currentLine)
			currentLine = word
		} else {
			currentLine = testLine
		}
	}
	return append(lines, currentLine)
}

// drawString draws text with its baseline at (x, y).
func drawString(dst draw.Image, text string, x, y int, col color.Color, face font.Face) {
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}
