// loader.go — Load theme/layout configuration from YAML, JSON or a zip
// bundle that carries the configuration together with its overlay assets.
package layout

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// configNames are looked up, in order, at the root of a bundle.
var configNames = []string{"themes.yaml", "themes.yml", "themes.json"}

// maxAssetSize bounds a single bundle entry.
const maxAssetSize = 64 << 20

// ── Document types ──

type document struct {
	Layouts []layoutDoc `json:"layouts" yaml:"layouts"`
	Themes  []themeDoc  `json:"themes" yaml:"themes"`
}

type canvasDoc struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

type layoutDoc struct {
	ID     string     `json:"id" yaml:"id"`
	Name   string     `json:"name" yaml:"name"`
	Family Family     `json:"family" yaml:"family"`
	Canvas canvasDoc  `json:"canvas" yaml:"canvas"`
	Slots  []SlotRect `json:"slots" yaml:"slots"`
}

// themeDoc either references a shared layout or carries its own canvas
// and slots. themeName is accepted as an alias of themeId.
type themeDoc struct {
	ThemeID     string      `json:"themeId" yaml:"themeId"`
	ThemeName   string      `json:"themeName" yaml:"themeName"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Overlay     string      `json:"overlay" yaml:"overlay"`
	Layout      string      `json:"layout" yaml:"layout"`
	Family      Family      `json:"family" yaml:"family"`
	Canvas      *canvasDoc  `json:"canvas" yaml:"canvas"`
	Slots       []SlotRect  `json:"slots" yaml:"slots"`
	Caption     *CaptionBox `json:"caption" yaml:"caption"`
}

// Bundle is a loaded configuration. Assets holds overlay and font bytes
// keyed by their slash-separated path inside the bundle; it is empty for
// plain configuration files.
type Bundle struct {
	Registry *Registry
	Assets   map[string][]byte
}

// Load reads a configuration file. ".zip" and ".booth" files are read as
// bundles, everything else as a YAML or JSON document.
func Load(p string) (*Bundle, error) {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".zip", ".booth":
		return LoadBundle(p)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	return &Bundle{Registry: reg, Assets: map[string][]byte{}}, nil
}

// LoadBundle opens a zip bundle and keeps its assets in memory.
func LoadBundle(p string) (*Bundle, error) {
	r, err := zip.OpenReader(p)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	defer r.Close()

	b, err := readBundle(&r.Reader)
	if err != nil {
		return nil, fmt.Errorf("bundle %s: %w", p, err)
	}
	return b, nil
}

// ParseBundle reads a zip bundle from memory.
func ParseBundle(data []byte) (*Bundle, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("invalid ZIP: %w", err)
	}
	return readBundle(zr)
}

func readBundle(zr *zip.Reader) (*Bundle, error) {
	assets := make(map[string][]byte)

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name, err := cleanEntryName(f.Name)
		if err != nil {
			return nil, err
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		assets[name] = data
	}

	for _, name := range configNames {
		cfg, ok := assets[name]
		if !ok {
			continue
		}
		delete(assets, name)
		reg, err := Parse(cfg)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		return &Bundle{Registry: reg, Assets: assets}, nil
	}
	return nil, fmt.Errorf("no %s found in archive", strings.Join(configNames, ", "))
}

// cleanEntryName rejects entries that would escape the bundle root.
func cleanEntryName(name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("illegal path in zip: %s", name)
	}
	return clean, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > maxAssetSize {
		return nil, fmt.Errorf("entry larger than %d bytes", maxAssetSize)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxAssetSize))
}

// Parse reads a YAML or JSON configuration document into a new registry.
// A top-level array is read as a list of themes with inline layouts.
func Parse(data []byte) (*Registry, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}

	reg := NewRegistry()
	for _, l := range doc.Layouts {
		spec := Spec{
			ID:     l.ID,
			Name:   l.Name,
			Family: l.Family,
			Width:  l.Canvas.Width,
			Height: l.Canvas.Height,
			Slots:  l.Slots,
		}
		if err := reg.AddLayout(spec); err != nil {
			return nil, err
		}
	}

	for _, td := range doc.Themes {
		t := Theme{
			ID:          firstNonEmpty(td.ThemeID, td.ThemeName),
			Name:        firstNonEmpty(td.Name, td.ThemeName),
			Description: td.Description,
			Overlay:     td.Overlay,
			LayoutID:    td.Layout,
			Caption:     td.Caption,
		}
		if t.Overlay == "" && t.ID != "" {
			t.Overlay = t.ID + ".png"
		}

		if td.Canvas != nil {
			if t.LayoutID == "" {
				t.LayoutID = t.ID
			}
			spec := Spec{
				ID:     t.LayoutID,
				Name:   t.Name,
				Family: td.Family,
				Width:  td.Canvas.Width,
				Height: td.Canvas.Height,
				Slots:  td.Slots,
			}
			if err := reg.AddLayout(spec); err != nil {
				return nil, err
			}
		}

		if err := reg.AddTheme(t); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

func decodeDocument(data []byte) (document, error) {
	var doc document
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return doc, fmt.Errorf("empty configuration")
	}

	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &doc.Themes); err != nil {
			return doc, fmt.Errorf("parse theme list: %w", err)
		}
	case '{':
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return doc, fmt.Errorf("parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(trimmed, &doc); err != nil {
			return doc, fmt.Errorf("parse YAML: %w", err)
		}
	}
	return doc, nil
}

// Marshal renders a registry back into the YAML document form.
func Marshal(reg *Registry) ([]byte, error) {
	var doc document
	for _, spec := range reg.Layouts() {
		doc.Layouts = append(doc.Layouts, layoutDoc{
			ID:     spec.ID,
			Name:   spec.Name,
			Family: spec.Family,
			Canvas: canvasDoc{Width: spec.Width, Height: spec.Height},
			Slots:  spec.Slots,
		})
	}
	for _, t := range reg.Themes() {
		doc.Themes = append(doc.Themes, themeDoc{
			ThemeID:     t.ID,
			Name:        t.Name,
			Description: t.Description,
			Overlay:     t.Overlay,
			Layout:      t.LayoutID,
			Caption:     t.Caption,
		})
	}
	return yaml.Marshal(&doc)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
