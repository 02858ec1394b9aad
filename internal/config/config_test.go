package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/xob0t/GoBooth/pkg/compositor"
	"github.com/xob0t/GoBooth/pkg/export"
	"github.com/xob0t/GoBooth/pkg/layout"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sink != SinkFilesystem || cfg.Format != export.FormatPNG || cfg.Fit != compositor.FitCover {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.ScalePolicy().Resolve(layout.Spec{Width: 600, Height: 1200, Family: layout.FamilyPostcard}) != 0.5 {
		t.Error("default policy changed")
	}
}

func TestFromEnv(t *testing.T) {
	cfg, err := FromEnv([]string{
		"THEMES_PATH=themes.zip",
		"OUTPUT_DIR=/tmp/out",
		"SINK=s3",
		"S3_BUCKET=booth",
		"S3_PREFIX=prints",
		"EXPORT_FORMAT=tiff",
		"FIT_MODE=contain",
		"INTERPOLATION=catmull-rom",
		"DECODE_WORKERS=3",
		"MEMORY_SHARE=0.25",
		"LOG_LEVEL=debug",
		"PREVIEW_SCALE_STRIP=0.5",
		"PREVIEW_SCALE_LANDSCAPE=0.3",
		"UNRELATED=x",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ThemesPath != "themes.zip" || cfg.OutputDir != "/tmp/out" || cfg.S3Prefix != "prints" {
		t.Errorf("paths = %+v", cfg)
	}
	if cfg.Format != export.FormatTIFF || cfg.Fit != compositor.FitContain || cfg.DecodeWorkers != 3 || cfg.MemoryShare != 0.25 {
		t.Errorf("values = %+v", cfg)
	}

	p := cfg.ScalePolicy()
	if got := p.Resolve(layout.Spec{Width: 600, Height: 1200, Family: layout.FamilyStrip}); got != 0.5 {
		t.Errorf("strip scale = %v", got)
	}
	if got := p.Resolve(layout.Spec{Width: 1800, Height: 1200}); got != 0.3 {
		t.Errorf("landscape scale = %v", got)
	}
	if layout.DefaultScalePolicy.Families[layout.FamilyStrip] != 0.4 {
		t.Error("override leaked into DefaultScalePolicy")
	}
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  []string
	}{
		{"bad format", []string{"EXPORT_FORMAT=gif"}},
		{"bad fit", []string{"FIT_MODE=stretch"}},
		{"bad workers", []string{"DECODE_WORKERS=-1"}},
		{"bad share", []string{"MEMORY_SHARE=2"}},
		{"bad scale", []string{"PREVIEW_SCALE_STRIP=0"}},
		{"s3 without bucket", []string{"SINK=s3"}},
		{"unknown sink", []string{"SINK=ftp"}},
		{"bad interpolation", []string{"INTERPOLATION=lanczos"}},
		{"bad log level", []string{"LOG_LEVEL=loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromEnv(tt.env); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "booth.env")
	if err := os.WriteFile(path, []byte("OUTPUT_DIR=from-file\nFIT_MODE=fill\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OUTPUT_DIR", "from-env")
	t.Setenv("FIT_MODE", "")
	os.Unsetenv("FIT_MODE")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OutputDir != "from-env" {
		t.Errorf("env file overrode the environment: %s", cfg.OutputDir)
	}
	if cfg.Fit != compositor.FitFill {
		t.Errorf("fit = %s", cfg.Fit)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing env file: %v", err)
	}
}

func TestSetupLogging(t *testing.T) {
	defer logrus.SetLevel(logrus.GetLevel())
	if err := SetupLogging("warn"); err != nil {
		t.Fatal(err)
	}
	if logrus.GetLevel() != logrus.WarnLevel {
		t.Errorf("level = %s", logrus.GetLevel())
	}
	if err := SetupLogging("chatty"); err == nil {
		t.Error("expected error")
	}
}
