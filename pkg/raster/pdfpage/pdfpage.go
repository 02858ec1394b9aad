// Package pdfpage registers a "pdf" image format whose decoder rasterises
// the first page of a PDF document. Import it for side effects to accept
// print-shop overlays delivered as PDF:
//
//	import _ "github.com/xob0t/GoBooth/pkg/raster/pdfpage"
//
// The decoder links MuPDF through cgo and is kept out of the wasm client.
package pdfpage

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/gen2brain/go-fitz"
)

// DPI is the render resolution. Layout coordinates are 300 DPI print pixels.
var DPI = 300.0

// pointsPerInch is the PDF user-space unit.
const pointsPerInch = 72.0

func init() {
	image.RegisterFormat("pdf", "%PDF", Decode, DecodeConfig)
}

// Decode renders page 0 of the PDF read from r.
func Decode(r io.Reader) (image.Image, error) {
	doc, err := open(r)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	img, err := doc.ImageDPI(0, DPI)
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return img, nil
}

// DecodeConfig reports the pixel size page 0 would render at.
func DecodeConfig(r io.Reader) (image.Config, error) {
	doc, err := open(r)
	if err != nil {
		return image.Config{}, err
	}
	defer doc.Close()

	rect, err := doc.Bound(0)
	if err != nil {
		return image.Config{}, fmt.Errorf("page bounds: %w", err)
	}
	scale := DPI / pointsPerInch
	return image.Config{
		ColorModel: color.RGBAModel,
		Width:      int(math.Round(float64(rect.Dx()) * scale)),
		Height:     int(math.Round(float64(rect.Dy()) * scale)),
	}, nil
}

func open(r io.Reader) (*fitz.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	if doc.NumPage() < 1 {
		doc.Close()
		return nil, fmt.Errorf("pdf has no pages")
	}
	return doc, nil
}
