// export.go — The export and preview commands.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/xob0t/GoBooth/internal/config"
	"github.com/xob0t/GoBooth/pkg/compositor"
	"github.com/xob0t/GoBooth/pkg/export"
)

// commonFlags are shared by export and preview.
type commonFlags struct {
	configPath string
	assetsDir  string
	logLevel   string
	fit        string
	interp     string
	in         sessionInput
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	c.in.photos = photoFlag{}
	fs.StringVar(&c.configPath, "config", "", "Theme config (.yaml, .json) or bundle (.zip)")
	fs.StringVar(&c.assetsDir, "assets", "", "Overlay asset directory")
	fs.StringVar(&c.logLevel, "loglevel", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&c.fit, "fit", "", "Fit mode: cover, contain or fill")
	fs.StringVar(&c.interp, "interp", "", "Interpolation kernel")
	fs.StringVar(&c.in.theme, "theme", "", "Theme ID")
	fs.StringVar(&c.in.layoutID, "layout", "", "Layout ID (uses its first theme)")
	fs.Var(c.in.photos, "photo", "Slot photo as N=path (repeatable)")
	fs.Var(&c.in.cameraSlots, "camera-slot", "Capture this slot from the camera (repeatable)")
	fs.StringVar(&c.in.cameraDevice, "camera-device", "", "Camera input device")
	fs.Var(&c.in.stickers, "sticker", "Sticker as file[@x,y[,w,h]] (repeatable)")
	fs.StringVar(&c.in.caption, "caption", "", "Caption text")
}

// apply merges the flags over the environment configuration.
func (c *commonFlags) apply(env *environment) error {
	if c.configPath != "" {
		env.cfg.ThemesPath = c.configPath
	}
	if c.assetsDir != "" {
		env.cfg.AssetsDir = c.assetsDir
	}
	if c.interp != "" {
		env.cfg.Interpolation = c.interp
	}
	if c.fit != "" {
		fit, err := compositor.ParseFitMode(c.fit)
		if err != nil {
			return err
		}
		env.cfg.Fit = fit
	}
	return nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("photobooth", flag.ExitOnError)
	var (
		common commonFlags
		output string
		format string
	)
	common.register(fs)
	fs.StringVar(&output, "o", "", "Output directory")
	fs.StringVar(&output, "output", "", "Output directory")
	fs.StringVar(&format, "format", "", "Output format: png or tiff")
	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := setup(common.logLevel)
	if err != nil {
		return err
	}
	if err := common.apply(env); err != nil {
		return err
	}
	if output != "" {
		env.cfg.OutputDir = output
		env.cfg.Sink = config.SinkFilesystem
	}
	if format != "" {
		if env.cfg.Format, err = export.ParseFormat(format); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := exportScene(ctx, env, common.in)
	if err != nil {
		return err
	}
	fmt.Printf("Done: %s (%d × %d)\n", a.Location, a.Width, a.Height)
	return nil
}

// exportScene runs the full pipeline and returns the delivered artifact.
func exportScene(ctx context.Context, env *environment, in sessionInput) (*export.Artifact, error) {
	b, err := loadRegistry(env.cfg.ThemesPath)
	if err != nil {
		return nil, err
	}
	sess, err := buildSession(ctx, env, b.Registry, in)
	if err != nil {
		return nil, err
	}
	comp, err := newCompositor(env, resolver(b, env.cfg.AssetsDir))
	if err != nil {
		return nil, err
	}
	sink, err := newSink(ctx, env.cfg)
	if err != nil {
		return nil, err
	}

	scene := sess.Snapshot()
	fmt.Printf("Exporting: %s (%d of %d slots filled)\n", scene.Name(), len(scene.Slots), len(scene.Layout.Slots))
	ex := export.New(comp,
		export.WithFormat(env.cfg.Format),
		export.WithSink(sink),
		export.WithLogger(env.log),
	)
	return ex.Export(ctx, scene)
}

func runPreview(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	var (
		common commonFlags
		output string
		scale  float64
	)
	common.register(fs)
	fs.StringVar(&output, "o", "preview.png", "Output PNG path")
	fs.Float64Var(&scale, "scale", 0, "Preview scale (default: resolved from the layout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := setup(common.logLevel)
	if err != nil {
		return err
	}
	if err := common.apply(env); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	frame, err := previewScene(ctx, env, common.in, scale, output)
	if err != nil {
		return err
	}
	fmt.Printf("Preview: %s (%d × %d, scale %.2f)\n", output, frame.Width, frame.Height, frame.Scale)
	for _, s := range frame.Placeholders() {
		fmt.Printf("    slot %d empty at %v\n", s.Index, s.Rect)
	}
	return nil
}

// previewScene renders the preview raster to output and returns its frame.
func previewScene(ctx context.Context, env *environment, in sessionInput, scale float64, output string) (compositor.PreviewFrame, error) {
	b, err := loadRegistry(env.cfg.ThemesPath)
	if err != nil {
		return compositor.PreviewFrame{}, err
	}
	sess, err := buildSession(ctx, env, b.Registry, in)
	if err != nil {
		return compositor.PreviewFrame{}, err
	}
	comp, err := newCompositor(env, resolver(b, env.cfg.AssetsDir))
	if err != nil {
		return compositor.PreviewFrame{}, err
	}

	scene := sess.Snapshot()
	if scale <= 0 || scale > 1 {
		scale = env.cfg.ScalePolicy().Resolve(scene.Layout)
	}
	img, err := comp.RenderPreview(ctx, scene, scale)
	if err != nil {
		return compositor.PreviewFrame{}, err
	}

	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return compositor.PreviewFrame{}, err
		}
	}
	f, err := os.Create(output)
	if err != nil {
		return compositor.PreviewFrame{}, fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()
	if err := export.Encode(f, img, export.FormatPNG); err != nil {
		return compositor.PreviewFrame{}, err
	}
	return compositor.NewPreviewFrame(scene.Layout, scale, sess.Filled()), f.Close()
}
