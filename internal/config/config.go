// Package config reads runtime settings from the environment, after an
// optional .env file, and sets up logging.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/xob0t/GoBooth/pkg/compositor"
	"github.com/xob0t/GoBooth/pkg/export"
	"github.com/xob0t/GoBooth/pkg/layout"
)

// Sink names.
const (
	SinkFilesystem = "filesystem"
	SinkS3         = "s3"
)

const scalePrefix = "PREVIEW_SCALE_"

type Config struct {
	ThemesPath    string // THEMES_PATH: config file or bundle; empty uses the built-in catalog
	AssetsDir     string // ASSETS_DIR: overlay and font directory
	OutputDir     string // OUTPUT_DIR
	Sink          string // SINK: filesystem | s3
	S3Bucket      string // S3_BUCKET
	S3Prefix      string // S3_PREFIX
	Format        export.Format
	Fit           compositor.FitMode
	Interpolation string // INTERPOLATION
	DecodeWorkers int    // DECODE_WORKERS; 0 means one per CPU
	MemoryShare   float64
	LogLevel      string
	PreviewScales map[string]float64 // PREVIEW_SCALE_<FAMILY>, keyed by lower-case family
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		AssetsDir:     "assets",
		OutputDir:     "output",
		Sink:          SinkFilesystem,
		Format:        export.FormatPNG,
		Fit:           compositor.FitCover,
		Interpolation: "bilinear",
		LogLevel:      "info",
		PreviewScales: map[string]float64{},
	}
}

// Load reads files (".env" when none are given) into the environment
// without overriding variables already set, then builds a Config. Missing
// env files are not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if os.IsNotExist(err) {
				logrus.WithField("file", f).Debug("No env file found")
				continue
			}
			return Config{}, fmt.Errorf("read %s: %w", f, err)
		}
	}
	return FromEnv(os.Environ())
}

// FromEnv builds a Config from KEY=VALUE pairs.
func FromEnv(environ []string) (Config, error) {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	cfg := Default()
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(env[key]); v != "" {
			*dst = v
		}
	}
	str("THEMES_PATH", &cfg.ThemesPath)
	str("ASSETS_DIR", &cfg.AssetsDir)
	str("OUTPUT_DIR", &cfg.OutputDir)
	str("SINK", &cfg.Sink)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_PREFIX", &cfg.S3Prefix)
	str("INTERPOLATION", &cfg.Interpolation)
	str("LOG_LEVEL", &cfg.LogLevel)

	var err error
	if v := env["EXPORT_FORMAT"]; v != "" {
		if cfg.Format, err = export.ParseFormat(v); err != nil {
			return Config{}, fmt.Errorf("EXPORT_FORMAT: %w", err)
		}
	}
	if v := env["FIT_MODE"]; v != "" {
		if cfg.Fit, err = compositor.ParseFitMode(v); err != nil {
			return Config{}, fmt.Errorf("FIT_MODE: %w", err)
		}
	}
	if v := env["DECODE_WORKERS"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("DECODE_WORKERS: invalid value %q", v)
		}
		cfg.DecodeWorkers = n
	}
	if v := env["MEMORY_SHARE"]; v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 1 {
			return Config{}, fmt.Errorf("MEMORY_SHARE: want a fraction in (0, 1], got %q", v)
		}
		cfg.MemoryShare = f
	}
	for k, v := range env {
		if !strings.HasPrefix(k, scalePrefix) || len(k) == len(scalePrefix) {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 1 {
			return Config{}, fmt.Errorf("%s: want a scale in (0, 1], got %q", k, v)
		}
		cfg.PreviewScales[strings.ToLower(strings.TrimPrefix(k, scalePrefix))] = f
	}

	return cfg, cfg.Validate()
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Sink {
	case SinkFilesystem:
	case SinkS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET must be set for the s3 sink")
		}
	default:
		return fmt.Errorf("SINK: unknown sink %q", c.Sink)
	}
	if _, err := compositor.ParseInterpolator(c.Interpolation); err != nil {
		return fmt.Errorf("INTERPOLATION: %w", err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// ScalePolicy applies the PREVIEW_SCALE_* overrides to
// layout.DefaultScalePolicy. The keys "landscape", "tall" and "default"
// set the rule values of the same name; any other key is a family.
func (c Config) ScalePolicy() layout.ScalePolicy {
	p := layout.DefaultScalePolicy
	for name, v := range c.PreviewScales {
		switch name {
		case "landscape":
			p.Landscape = v
		case "tall":
			p.Tall = v
		case "default":
			p.Default = v
		default:
			p = p.WithFamily(layout.Family(name), v)
		}
	}
	return p
}

// SetupLogging configures the standard logrus logger.
func SetupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return nil
}
