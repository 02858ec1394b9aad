// fonts.go - Caption font management with an embedded fallback font.
// Uses golang.org/x/image/font for OpenType rendering. Defaults to Go Regular
// when a theme names no font or its font cannot be parsed.
package compositor

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontManager parses a font once and hands out faces per size.
type FontManager struct {
	parsed *opentype.Font
}

// NewFontManager parses fontData, or the embedded Go font when fontData
// is empty.
func NewFontManager(fontData []byte) (*FontManager, error) {
	if len(fontData) == 0 {
		fontData = goregular.TTF
	}
	parsed, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &FontManager{parsed: parsed}, nil
}

// defaultFonts is shared by every compositor; goregular always parses.
var defaultFonts = sync.OnceValue(func() *FontManager {
	fm, err := NewFontManager(nil)
	if err != nil {
		panic(err)
	}
	return fm
})

// Face returns a new face at size pixels. A face is not safe for
// concurrent use.
func (fm *FontManager) Face(size float64) (font.Face, error) {
	face, err := opentype.NewFace(fm.parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}
