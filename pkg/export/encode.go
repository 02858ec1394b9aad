// encode.go — Lossless raster encoders.
package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/tiff"
)

// Format is an output encoding. Both formats are lossless and keep alpha.
type Format string

const (
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
)

// ParseFormat accepts a format name or file extension, with or without
// the leading dot. Empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "", "png":
		return FormatPNG, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use png or tiff", s)
	}
}

// Ext returns the file extension without a dot.
func (f Format) Ext() string {
	if f == FormatTIFF {
		return "tiff"
	}
	return "png"
}

// ContentType returns the MIME type of the encoding.
func (f Format) ContentType() string {
	if f == FormatTIFF {
		return "image/tiff"
	}
	return "image/png"
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG, "":
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encode PNG: %w", err)
		}
	case FormatTIFF:
		if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
			return fmt.Errorf("encode TIFF: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q", f)
	}
	return nil
}
