// GoBooth — Photo-booth slot compositor.
//
// Usage:
//
//	photobooth [export] --theme <id> --photo 0=<file> [--photo 1=<file> ...] [options]
//	photobooth preview --theme <id> [--photo N=<file> ...] -o preview.png
//	photobooth themes [--config <path>]
//	photobooth validate --config <path>
//	photobooth init [-o themes.yaml]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/xob0t/GoBooth/pkg/layout"
	_ "github.com/xob0t/GoBooth/pkg/raster/pdfpage"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		if err := runInit(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "themes":
		if err := runThemes(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "validate":
		if err := runValidate(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "preview":
		if err := runPreview(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "export":
		if err := runExport(os.Args[2:]); err != nil {
			fatal(err)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		// Default: export mode (all flags on root).
		if err := runExport(os.Args[1:]); err != nil {
			fatal(err)
		}
	}
}

func runThemes(args []string) error {
	fs := flag.NewFlagSet("themes", flag.ExitOnError)
	var configPath, logLevel string
	fs.StringVar(&configPath, "config", "", "Theme config (.yaml, .json) or bundle (.zip); default: built-in catalog")
	fs.StringVar(&logLevel, "loglevel", "", "Log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := setup(logLevel)
	if err != nil {
		return err
	}
	if configPath != "" {
		env.cfg.ThemesPath = configPath
	}
	b, err := loadRegistry(env.cfg.ThemesPath)
	if err != nil {
		return err
	}
	fmt.Print(layout.FormatSummary(b.Registry, env.cfg.ScalePolicy()))
	return nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var configPath string
	fs.StringVar(&configPath, "config", "", "Theme config (.yaml, .json) or bundle (.zip)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if configPath == "" && fs.NArg() > 0 {
		configPath = fs.Arg(0)
	}
	if configPath == "" {
		return fmt.Errorf("--config is required for validate command")
	}

	b, err := layout.Load(configPath)
	if err != nil {
		return err
	}
	missing := 0
	for _, t := range b.Registry.Themes() {
		if len(b.Assets) > 0 && t.Overlay != "" {
			if _, ok := b.Assets[t.Overlay]; !ok {
				fmt.Fprintf(os.Stderr, "Warning: theme %s: overlay %s not in bundle\n", t.ID, t.Overlay)
				missing++
			}
		}
	}
	fmt.Printf("OK: %d layouts, %d themes", len(b.Registry.Layouts()), len(b.Registry.Themes()))
	if missing > 0 {
		fmt.Printf(", %d missing overlays", missing)
	}
	fmt.Println()
	return nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var out string
	fs.StringVar(&out, "o", "themes.yaml", "Output path for sample theme config")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := os.WriteFile(out, []byte(layout.SampleYAML()), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Created: %s\n", out)
	fmt.Printf("Run: photobooth --config %s --theme classic-strip --photo 0=me.jpg\n", out)
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`GoBooth — Photo-booth slot compositor (Pure Go)

USAGE:
    photobooth [export] --theme <id> --photo N=<file> [options]
    photobooth preview --theme <id> [--photo N=<file>] [-o preview.png]
    photobooth themes [--config <path>]
    photobooth validate --config <path>
    photobooth init [-o themes.yaml]

EXPORT:
    --theme <id>           Theme to export (default: blacktheme1)
    --layout <id>          Use a layout directly; picks its first theme
    --photo N=<file>       Photo for slot N (0-based, repeatable)
    --camera-slot N        Capture slot N from the camera (repeatable)
    --camera-device <dev>  Camera input (default: OS default device)
    --sticker <spec>       file[@x,y[,w,h]] sticker (repeatable)
    --caption <text>       Caption text (themes with a caption box)
    --fit <mode>           cover | contain | fill (default: cover)
    --format <fmt>         png | tiff (default: png)
    --interp <kernel>      nearest | approx-bilinear | bilinear | catmull-rom
    -o, --output <dir>     Output directory (default: $OUTPUT_DIR or ./output)

COMMON:
    --config <path>        Theme config or .zip bundle (default: built-in catalog)
    --assets <dir>         Overlay directory (default: $ASSETS_DIR or ./assets)
    --loglevel <level>     debug | info | warn | error

ENVIRONMENT (.env is read when present):
    THEMES_PATH ASSETS_DIR OUTPUT_DIR SINK S3_BUCKET S3_PREFIX EXPORT_FORMAT
    FIT_MODE INTERPOLATION DECODE_WORKERS MEMORY_SHARE LOG_LEVEL
    PREVIEW_SCALE_<FAMILY>

EXAMPLES:
    photobooth init
    photobooth themes
    photobooth --theme zootopia-strip --photo 0=a.jpg --photo 1=b.jpg --photo 2=c.jpg
    photobooth --layout 4x6 --photo 0=a.jpg --fit contain --format tiff
    photobooth --theme blacktheme1 --camera-slot 0 --caption "Happy birthday"
    photobooth preview --theme zootopia-strip --photo 0=a.jpg -o preview.png
    photobooth validate --config party.zip
`)
}
