package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/xob0t/GoBooth/internal/config"
	"github.com/xob0t/GoBooth/pkg/layout"
)

func testEnv(t *testing.T) *environment {
	t.Helper()
	logger, _ := test.NewNullLogger()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.AssetsDir = t.TempDir()
	return &environment{cfg: cfg, log: logrus.NewEntry(logger)}
}

func writePNG(t *testing.T, dir, name string, w, h int, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestExportScene(t *testing.T) {
	env := testEnv(t)
	dir := t.TempDir()
	red := writePNG(t, dir, "red.png", 40, 30, color.NRGBA{R: 255, A: 255})
	star := writePNG(t, dir, "star.png", 8, 8, color.NRGBA{B: 255, A: 255})

	in := sessionInput{
		theme:    "zootopia-strip",
		photos:   photoFlag{0: red, 7: red, 1: filepath.Join(dir, "missing.png")},
		stickers: stickerList{{Path: star, X: 300, Y: 1700, Placed: true}},
	}
	a, err := exportScene(context.Background(), env, in)
	if err != nil {
		t.Fatal(err)
	}
	if a.Width != 600 || a.Height != 1800 {
		t.Errorf("size = %d×%d", a.Width, a.Height)
	}
	if filepath.Dir(a.Location) != env.cfg.OutputDir {
		t.Errorf("location = %s", a.Location)
	}

	data, err := os.ReadFile(a.Location)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _, _ := img.At(300, 300).RGBA(); r>>8 != 255 {
		t.Error("slot 0 not filled")
	}
	if _, _, _, alpha := img.At(300, 900).RGBA(); alpha != 0 {
		t.Error("slot 1 should stay transparent")
	}
	if _, _, b, _ := img.At(304, 1704).RGBA(); b>>8 != 255 {
		t.Error("sticker missing")
	}
}

func TestExportSceneSurvivesCameraFailure(t *testing.T) {
	env := testEnv(t)
	logger, hook := test.NewNullLogger()
	env.log = logrus.NewEntry(logger)
	red := writePNG(t, t.TempDir(), "red.png", 10, 10, color.NRGBA{R: 255, A: 255})

	a, err := exportScene(context.Background(), env, sessionInput{
		theme:        "zootopia-strip",
		photos:       photoFlag{0: red},
		cameraSlots:  intList{1},
		cameraDevice: "/dev/does-not-exist",
	})
	if err != nil {
		t.Fatalf("camera failure aborted the export: %v", err)
	}
	if _, err := os.Stat(a.Location); err != nil {
		t.Fatalf("artifact not delivered: %v", err)
	}

	warned := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["slot"] == 1 {
			warned = true
		}
	}
	if !warned {
		t.Error("camera failure not logged for slot 1")
	}
}

func TestExportSceneFromConfig(t *testing.T) {
	env := testEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "themes.yaml")
	if err := os.WriteFile(cfgPath, []byte(layout.SampleYAML()), 0o644); err != nil {
		t.Fatal(err)
	}
	env.cfg.ThemesPath = cfgPath

	a, err := exportScene(context.Background(), env, sessionInput{theme: "wide-trio", photos: photoFlag{}})
	if err != nil {
		t.Fatal(err)
	}
	if a.Width != 1800 || a.Height != 1200 {
		t.Errorf("size = %d×%d", a.Width, a.Height)
	}

	if _, err := exportScene(context.Background(), env, sessionInput{theme: "nope", photos: photoFlag{}}); err == nil {
		t.Error("unknown theme exported")
	}
}

func TestPreviewScene(t *testing.T) {
	env := testEnv(t)
	out := filepath.Join(t.TempDir(), "sub", "preview.png")
	red := writePNG(t, t.TempDir(), "red.png", 10, 10, color.NRGBA{R: 255, A: 255})

	frame, err := previewScene(context.Background(), env, sessionInput{
		layoutID: "2x6",
		photos:   photoFlag{1: red},
	}, 0, out)
	if err != nil {
		t.Fatal(err)
	}
	if frame.Scale != 0.35 || frame.Width != 210 || frame.Height != 630 {
		t.Errorf("frame = %+v", frame)
	}
	if n := len(frame.Placeholders()); n != 2 {
		t.Errorf("%d placeholders, want 2", n)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 210 || cfg.Height != 630 {
		t.Errorf("preview file = %d×%d", cfg.Width, cfg.Height)
	}
}

func TestResolverOrder(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "o.png"), []byte("disk"), 0o644); err != nil {
		t.Fatal(err)
	}
	b := &layout.Bundle{Registry: layout.Default(), Assets: map[string][]byte{"o.png": []byte("bundle")}}
	got, err := resolver(b, dir).Resolve(context.Background(), "o.png")
	if err != nil || string(got) != "bundle" {
		t.Errorf("bundle asset = %q, %v", got, err)
	}
	got, err = resolver(&layout.Bundle{}, dir).Resolve(context.Background(), "o.png")
	if err != nil || string(got) != "disk" {
		t.Errorf("disk asset = %q, %v", got, err)
	}
}
