// resolver.go — Overlay and font asset lookup.
package raster

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Resolver turns an asset reference (an overlay or font path from a theme)
// into bytes.
type Resolver interface {
	Resolve(ctx context.Context, ref string) ([]byte, error)
}

// Fetch resolves ref through r. Data URIs are decoded inline and never
// reach the resolver.
func Fetch(ctx context.Context, r Resolver, ref string) ([]byte, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty asset reference")
	}
	if IsDataURI(ref) {
		return decodeDataURI(ref)
	}
	if r == nil {
		return nil, fmt.Errorf("asset %q: %w", ref, fs.ErrNotExist)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.Resolve(ctx, ref)
}

// ── Directory ──

// DirResolver reads assets below Root. References may start with "/" (web
// style) and are never allowed to escape Root.
type DirResolver struct {
	Root string
}

func (d DirResolver) Resolve(_ context.Context, ref string) ([]byte, error) {
	rel, err := cleanRef(ref)
	if err != nil {
		return nil, err
	}
	full := filepath.Join(d.Root, filepath.FromSlash(rel))
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("asset %q: %w", ref, err)
	}
	return data, nil
}

// ── In-memory ──

// MapResolver serves assets from memory, e.g. the contents of a theme
// bundle or assets registered by the browser. Lookups fall back to the
// base name so "/overlays/a.png" and "a.png" both find "overlays/a.png"
// when the name is unique.
type MapResolver map[string][]byte

func (m MapResolver) Resolve(_ context.Context, ref string) ([]byte, error) {
	rel, err := cleanRef(ref)
	if err != nil {
		return nil, err
	}
	if data, ok := m[rel]; ok {
		return data, nil
	}

	base := path.Base(rel)
	var found []byte
	matches := 0
	for k, v := range m {
		if path.Base(k) == base {
			found = v
			matches++
		}
	}
	if matches == 1 {
		return found, nil
	}
	return nil, fmt.Errorf("asset %q: %w", ref, fs.ErrNotExist)
}

// ── Chain ──

// ChainResolver tries each resolver in order and returns the first hit.
type ChainResolver []Resolver

func (c ChainResolver) Resolve(ctx context.Context, ref string) ([]byte, error) {
	var lastErr error = fmt.Errorf("asset %q: %w", ref, fs.ErrNotExist)
	for _, r := range c {
		data, err := r.Resolve(ctx, ref)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// cleanRef normalises a reference to a relative slash path and rejects
// anything that climbs out of the asset root.
func cleanRef(ref string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(ref, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("asset %q: empty path", ref)
	}
	return clean, nil
}
