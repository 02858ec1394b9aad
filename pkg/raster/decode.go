// decode.go — Lenient image decoding with EXIF orientation.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode is wrapped by every decoding failure.
var ErrDecode = errors.New("cannot decode image")

// MaxPixels bounds the pixel count of an image Probe and Decode accept,
// checked from the header before any pixel memory is allocated.
const MaxPixels = 100 << 20

// Decode decodes a payload into an image, rotating JPEGs according to
// their EXIF orientation tag so camera photos land upright.
func Decode(p Payload) (image.Image, error) {
	if _, _, err := Probe(p); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(p.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, p.Source, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %s: zero-size image", ErrDecode, p.Source)
	}
	return img, nil
}

// Probe reads only the header of a payload and reports its dimensions and
// format name. It is used to reject non-image input before it enters
// session state.
func Probe(p Payload) (image.Config, string, error) {
	if p.Empty() {
		return image.Config{}, "", fmt.Errorf("%w: empty payload", ErrDecode)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(p.Data))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: %s: %v", ErrDecode, p.Source, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return image.Config{}, "", fmt.Errorf("%w: %s: zero-size image", ErrDecode, p.Source)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return image.Config{}, "", fmt.Errorf("%w: %s: %d×%d exceeds %d pixels", ErrDecode, p.Source, cfg.Width, cfg.Height, MaxPixels)
	}
	return cfg, format, nil
}
