// Package compositor flattens a layout, the photos placed into its slots,
// stickers, a caption and the theme overlay into one raster at the
// layout's native pixel size.
//
// Rendering is layered: an explicit draw list (slots -> stickers ->
// caption -> overlay) is decoded in parallel and painted sequentially, so
// the result never depends on decode scheduling.
package compositor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/xob0t/GoBooth/pkg/layout"
	"github.com/xob0t/GoBooth/pkg/raster"
)

// MaxDimension bounds either side of an output surface.
const MaxDimension = 16384

// ErrSurfaceAllocation is returned when the output surface cannot be
// created. It is the only error that aborts a render besides
// cancellation.
var ErrSurfaceAllocation = errors.New("cannot allocate output surface")

// SurfaceGuard approves surface allocations before they happen.
type SurfaceGuard interface {
	Reserve(bytes uint64) error
}

// Compositor renders scenes. It is safe for concurrent use.
type Compositor struct {
	resolver raster.Resolver
	scaler   draw.Interpolator
	guard    SurfaceGuard
	workers  int
	maxDim   int
	log      *logrus.Entry

	fontMu sync.Mutex
	fonts  map[string]*FontManager
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithInterpolator sets the resampling kernel used to scale photos,
// stickers and the overlay.
func WithInterpolator(i draw.Interpolator) Option {
	return func(c *Compositor) { c.scaler = i }
}

// WithGuard installs an allocation guard.
func WithGuard(g SurfaceGuard) Option {
	return func(c *Compositor) { c.guard = g }
}

// WithWorkers bounds the number of concurrent decodes.
func WithWorkers(n int) Option {
	return func(c *Compositor) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithMaxDimension overrides MaxDimension.
func WithMaxDimension(n int) Option {
	return func(c *Compositor) {
		if n > 0 {
			c.maxDim = n
		}
	}
}

// WithLogger sets the log entry decode and overlay failures are reported to.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Compositor) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a compositor that resolves overlays and caption fonts
// through resolver. A nil resolver only supports data URI references.
func New(resolver raster.Resolver, opts ...Option) *Compositor {
	c := &Compositor{
		resolver: resolver,
		scaler:   draw.BiLinear,
		workers:  runtime.NumCPU(),
		maxDim:   MaxDimension,
		log:      logrus.NewEntry(logrus.StandardLogger()),
		fonts:    make(map[string]*FontManager),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseInterpolator maps a kernel name to an x/image/draw interpolator.
func ParseInterpolator(name string) (draw.Interpolator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "nearest", "nearest-neighbor":
		return draw.NearestNeighbor, nil
	case "approx-bilinear", "fast":
		return draw.ApproxBiLinear, nil
	case "", "bilinear":
		return draw.BiLinear, nil
	case "catmull-rom", "catmullrom", "bicubic":
		return draw.CatmullRom, nil
	default:
		return nil, fmt.Errorf("unknown interpolation %q", name)
	}
}

// Export renders spec with the given slot photos and overlay at native
// size. Slots whose index does not exist in spec are ignored.
func (c *Compositor) Export(ctx context.Context, spec layout.Spec, slots map[int]raster.Payload, overlayRef string, fit FitMode) (*image.RGBA, error) {
	return c.Render(ctx, Scene{Layout: spec, Slots: slots, Overlay: overlayRef, Fit: fit})
}

// Render flattens a full scene at the layout's native size. The returned
// image is exactly Layout.Width × Layout.Height. Undecodable photos and a
// missing overlay are logged and skipped; cancellation returns ctx.Err()
// and no image.
func (c *Compositor) Render(ctx context.Context, scene Scene) (*image.RGBA, error) {
	return c.render(ctx, scene, BuildDrawList(scene), pass{fit: scene.Fit, scale: 1})
}

// ── Rendering ──

// pass holds the per-render settings that differ between export and preview.
type pass struct {
	fit   FitMode
	scale float64 // applied to natural-size stickers
}

// decoded is the outcome of decoding one layer.
type decoded struct {
	img image.Image
	err error
}

func (c *Compositor) render(ctx context.Context, scene Scene, layers []Layer, p pass) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	canvas, err := c.allocate(scene.Layout.Width, scene.Layout.Height)
	if err != nil {
		return nil, err
	}

	images, err := c.decodeLayers(ctx, layers)
	if err != nil {
		return nil, err
	}

	log := c.log.WithField("scene", scene.Name())
	for i, l := range layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d := images[i]

		switch l.Kind {
		case LayerSlot:
			if d.err != nil {
				log.WithFields(logrus.Fields{"slot": l.Slot.Index, "source": l.Payload.Source}).
					WithError(d.err).Warn("skipping slot photo")
				continue
			}
			c.drawSlot(canvas, l.Slot, d.img, p.fit)

		case LayerPlaceholder:
			drawPlaceholder(canvas, l.Slot.Rect())

		case LayerSticker:
			if d.err != nil {
				log.WithField("sticker", l.Sticker.ID).WithError(d.err).Warn("skipping sticker")
				continue
			}
			c.drawSticker(canvas, l.Sticker, d.img, p.scale)

		case LayerCaption:
			fm := c.fontFor(ctx, l.Box.Font)
			if err := drawCaption(canvas, l.Text, l.Box, fm); err != nil {
				log.WithError(err).Warn("skipping caption")
			}

		case LayerOverlay:
			if d.err != nil {
				log.WithField("overlay", l.Ref).WithError(d.err).Warn("overlay unavailable, exporting without it")
				continue
			}
			c.scaler.Scale(canvas, canvas.Bounds(), d.img, d.img.Bounds(), draw.Over, nil)
		}
	}
	return canvas, nil
}

// allocate creates the transparent output surface.
func (c *Compositor) allocate(w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 || w > c.maxDim || h > c.maxDim {
		return nil, fmt.Errorf("%w: %d×%d outside 1..%d", ErrSurfaceAllocation, w, h, c.maxDim)
	}
	if c.guard != nil {
		if err := c.guard.Reserve(uint64(w) * uint64(h) * 4); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSurfaceAllocation, err)
		}
	}
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

// decodeLayers decodes every image layer with at most c.workers running
// at once. Per-layer failures are recorded, not returned.
func (c *Compositor) decodeLayers(ctx context.Context, layers []Layer) ([]decoded, error) {
	out := make([]decoded, len(layers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, l := range layers {
		switch l.Kind {
		case LayerSlot, LayerSticker, LayerOverlay:
		default:
			continue
		}
		i, l := i, l
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := c.decodeLayer(gctx, l)
			out[i] = decoded{img: img, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Compositor) decodeLayer(ctx context.Context, l Layer) (image.Image, error) {
	if l.Kind != LayerOverlay {
		return raster.Decode(l.Payload)
	}
	data, err := raster.Fetch(ctx, c.resolver, l.Ref)
	if err != nil {
		return nil, err
	}
	return raster.Decode(raster.FromBytes(data, l.Ref))
}

// drawSlot scales img into its placement, clipped to the slot.
func (c *Compositor) drawSlot(canvas *image.RGBA, slot layout.SlotRect, img image.Image, fit FitMode) {
	b := img.Bounds()
	pl := Place(b.Dx(), b.Dy(), slot, fit)
	clip, ok := canvas.SubImage(slot.Rect()).(*image.RGBA)
	if !ok || clip.Bounds().Empty() {
		return
	}
	c.scaler.Scale(clip, pl.Rect(), img, b, draw.Over, nil)
}

// drawSticker draws a sticker at its position, at natural size times
// scale unless a size was set.
func (c *Compositor) drawSticker(canvas *image.RGBA, st Sticker, img image.Image, scale float64) {
	b := img.Bounds()
	w, h := st.Width, st.Height
	if w <= 0 || h <= 0 {
		w = max(1, int(math.Round(float64(b.Dx())*scale)))
		h = max(1, int(math.Round(float64(b.Dy())*scale)))
	}
	c.scaler.Scale(canvas, image.Rect(st.X, st.Y, st.X+w, st.Y+h), img, b, draw.Over, nil)
}

// fontFor returns the font for a caption font reference, falling back to
// the embedded font when the reference is empty or unusable.
func (c *Compositor) fontFor(ctx context.Context, ref string) *FontManager {
	if ref == "" {
		return defaultFonts()
	}

	c.fontMu.Lock()
	fm, ok := c.fonts[ref]
	c.fontMu.Unlock()
	if ok {
		return fm
	}

	data, err := raster.Fetch(ctx, c.resolver, ref)
	if err == nil {
		fm, err = NewFontManager(data)
	}
	if err != nil {
		c.log.WithField("font", ref).WithError(err).Warn("using default caption font")
		if ctx.Err() != nil {
			return defaultFonts()
		}
		fm = defaultFonts()
	}

	c.fontMu.Lock()
	c.fonts[ref] = fm
	c.fontMu.Unlock()
	return fm
}
