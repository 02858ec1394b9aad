// Package export turns a composed scene into a named, encoded artifact
// and delivers it to a sink.
//
// The pipeline mirrors every output path: render the image.Image first,
// encode it into memory, then hand the complete bytes to a Sink. A sink
// never sees a partially encoded artifact.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/xob0t/GoBooth/pkg/compositor"
)

// Artifact is one encoded export.
type Artifact struct {
	ID        string
	Name      string // file name, e.g. "blacktheme1-1700000000000.png"
	Format    Format
	Width     int
	Height    int
	Data      []byte
	CreatedAt time.Time
	Location  string // where the sink stored it; empty before delivery
}

// ContentType returns the artifact's MIME type.
func (a *Artifact) ContentType() string { return a.Format.ContentType() }

// Renderer produces the flattened raster of a scene.
type Renderer interface {
	Render(ctx context.Context, scene compositor.Scene) (*image.RGBA, error)
}

// Sink stores a finished artifact and returns its location.
type Sink interface {
	Put(ctx context.Context, a *Artifact) (string, error)
}

// Exporter renders, encodes and delivers scenes.
type Exporter struct {
	renderer Renderer
	sink     Sink
	format   Format
	now      func() time.Time
	log      *logrus.Entry
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithFormat sets the output encoding. PNG is the default.
func WithFormat(f Format) Option {
	return func(e *Exporter) {
		if f != "" {
			e.format = f
		}
	}
}

// WithSink sets where artifacts are delivered. Without a sink Export
// only encodes.
func WithSink(s Sink) Option {
	return func(e *Exporter) { e.sink = s }
}

// WithClock overrides time.Now for artifact timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the exporter's log entry.
func WithLogger(l *logrus.Entry) Option {
	return func(e *Exporter) {
		if l != nil {
			e.log = l
		}
	}
}

// New returns an Exporter rendering with r.
func New(r Renderer, opts ...Option) *Exporter {
	e := &Exporter{
		renderer: r,
		format:   FormatPNG,
		now:      time.Now,
		log:      logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Format returns the configured output encoding.
func (e *Exporter) Format() Format { return e.format }

// Export renders scene at native resolution, encodes it and, when a sink
// is configured, delivers it. On any error no artifact is returned.
func (e *Exporter) Export(ctx context.Context, scene compositor.Scene) (*Artifact, error) {
	img, err := e.renderer.Render(ctx, scene)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", scene.Name(), err)
	}
	a, err := e.Encode(img, scene.Name())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := e.log.WithFields(logrus.Fields{
		"artifact": a.ID,
		"name":     a.Name,
		"width":    a.Width,
		"height":   a.Height,
	})
	if e.sink != nil {
		loc, err := e.sink.Put(ctx, a)
		if err != nil {
			log.WithError(err).Error("artifact delivery failed")
			return nil, fmt.Errorf("deliver %s: %w", a.Name, err)
		}
		a.Location = loc
		log = log.WithField("location", loc)
	}
	log.Info("export complete")
	return a, nil
}

// Encode wraps an already rendered image as an artifact named after name.
func (e *Exporter) Encode(img image.Image, name string) (*Artifact, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, e.format); err != nil {
		return nil, err
	}
	now := e.now()
	b := img.Bounds()
	return &Artifact{
		ID:        ulid.Make().String(),
		Name:      FileName(name, now, e.format),
		Format:    e.format,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Data:      buf.Bytes(),
		CreatedAt: now,
	}, nil
}
