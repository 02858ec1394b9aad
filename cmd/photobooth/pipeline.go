// pipeline.go — Wiring from configuration to session, compositor and sink.
package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/xob0t/GoBooth/internal/config"
	"github.com/xob0t/GoBooth/internal/system"
	"github.com/xob0t/GoBooth/pkg/camera"
	"github.com/xob0t/GoBooth/pkg/compositor"
	"github.com/xob0t/GoBooth/pkg/export"
	"github.com/xob0t/GoBooth/pkg/export/s3sink"
	"github.com/xob0t/GoBooth/pkg/layout"
	"github.com/xob0t/GoBooth/pkg/raster"
	"github.com/xob0t/GoBooth/pkg/session"
)

type environment struct {
	cfg config.Config
	log *logrus.Entry
}

// setup loads .env and the environment and configures logging. A
// non-empty level overrides LOG_LEVEL.
func setup(level string) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if level != "" {
		cfg.LogLevel = level
	}
	if err := config.SetupLogging(cfg.LogLevel); err != nil {
		return nil, err
	}
	return &environment{cfg: cfg, log: logrus.NewEntry(logrus.StandardLogger())}, nil
}

// loadRegistry loads path, or the built-in catalog when path is empty.
func loadRegistry(path string) (*layout.Bundle, error) {
	if path == "" {
		return &layout.Bundle{Registry: layout.Default(), Assets: map[string][]byte{}}, nil
	}
	b, err := layout.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load themes: %w", err)
	}
	return b, nil
}

// resolver looks up overlays in the bundle first, then in assetsDir.
func resolver(b *layout.Bundle, assetsDir string) raster.Resolver {
	var chain raster.ChainResolver
	if len(b.Assets) > 0 {
		chain = append(chain, raster.MapResolver(b.Assets))
	}
	if assetsDir != "" {
		chain = append(chain, raster.DirResolver{Root: assetsDir})
	}
	return chain
}

func newCompositor(env *environment, r raster.Resolver) (*compositor.Compositor, error) {
	interp, err := compositor.ParseInterpolator(env.cfg.Interpolation)
	if err != nil {
		return nil, err
	}
	return compositor.New(r,
		compositor.WithInterpolator(interp),
		compositor.WithWorkers(env.cfg.DecodeWorkers),
		compositor.WithGuard(system.NewMemoryGuard(env.cfg.MemoryShare)),
		compositor.WithLogger(env.log),
	), nil
}

func newSink(ctx context.Context, cfg config.Config) (export.Sink, error) {
	switch cfg.Sink {
	case config.SinkS3:
		return s3sink.New(ctx, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return export.NewFileSink(cfg.OutputDir)
	}
}

// sessionInput is everything the user asked to put on the canvas.
type sessionInput struct {
	theme, layoutID string
	photos          photoFlag
	cameraSlots     intList
	cameraDevice    string
	stickers        stickerList
	caption         string
}

// buildSession applies in to a new session. Photos that cannot be read or
// decoded and camera captures that fail are reported and skipped; sticker
// failures are fatal.
func buildSession(ctx context.Context, env *environment, reg *layout.Registry, in sessionInput) (*session.Session, error) {
	sess, err := session.New(reg, in.theme,
		session.WithLogger(env.log),
		session.WithFitMode(env.cfg.Fit),
	)
	if err != nil {
		return nil, err
	}
	if in.layoutID != "" {
		if err := sess.SelectLayout(in.layoutID); err != nil {
			return nil, err
		}
	}

	for i, path := range in.photos {
		p, err := raster.FromFile(path)
		if err != nil {
			env.log.WithField("slot", i).WithError(err).Warn("skipping photo")
			continue
		}
		if !sess.SetSlot(i, p) {
			env.log.WithFields(logrus.Fields{"slot": i, "source": path}).Warn("photo rejected: no such slot or not an image")
		}
	}

	if len(in.cameraSlots) > 0 {
		dev := camera.NewFFmpegDevice(in.cameraDevice)
		for _, i := range in.cameraSlots {
			fmt.Printf("Capturing slot %d...\n", i)
			if err := sess.CaptureSlot(ctx, dev, i); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				env.log.WithField("slot", i).WithError(err).Warn("skipping camera slot")
				continue
			}
		}
	}

	for _, st := range in.stickers {
		p, err := raster.FromFile(st.Path)
		if err != nil {
			return nil, fmt.Errorf("sticker: %w", err)
		}
		id, err := sess.AddSticker(p)
		if err != nil {
			return nil, err
		}
		if st.Placed {
			sess.MoveSticker(id, st.X, st.Y)
			sess.ResizeSticker(id, st.Width, st.Height)
		}
	}

	sess.SetCaption(in.caption)
	return sess, nil
}
