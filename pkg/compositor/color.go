// color.go — Hex color parsing for caption and placeholder styling.
package compositor

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: expected #rrggbb or #rrggbbaa", s)
	}

	var ch [4]uint8
	ch[3] = 0xff
	for i := 0; i < len(hex)/2; i++ {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		ch[i] = uint8(v)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

// parseColorOr returns fallback when s does not parse.
func parseColorOr(s string, fallback color.NRGBA) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		return fallback
	}
	return c
}
