// sinks.go — Filesystem and in-memory artifact sinks.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// FileSink writes artifacts into a directory. Each file is written under
// a temporary name and renamed into place, so readers never observe a
// partial export.
type FileSink struct {
	Dir string
}

// NewFileSink creates dir if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &FileSink{Dir: dir}, nil
}

// Put implements Sink.
func (s *FileSink) Put(ctx context.Context, a *Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if filepath.Base(a.Name) != a.Name || a.Name == "." || a.Name == ".." {
		return "", fmt.Errorf("invalid artifact name %q", a.Name)
	}
	dst := filepath.Join(s.Dir, a.Name)
	log := logrus.WithFields(logrus.Fields{"artifact": a.ID, "file_path": dst})

	tmp, err := os.CreateTemp(s.Dir, "."+a.Name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", dst, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("rename to %s: %w", dst, err)
	}
	committed = true
	log.Debug("artifact written")
	return dst, nil
}

// ErrNoArtifact is returned by MemorySink.Get for unknown names.
var ErrNoArtifact = errors.New("artifact not found")

// MemorySink keeps artifacts in memory, keyed by name.
type MemorySink struct {
	mu        sync.Mutex
	artifacts map[string]*Artifact
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{artifacts: make(map[string]*Artifact)}
}

// Put implements Sink.
func (s *MemorySink) Put(ctx context.Context, a *Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cp := *a
	cp.Data = append([]byte(nil), a.Data...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[a.Name] = &cp
	return "mem://" + a.Name, nil
}

// Get returns a stored artifact.
func (s *MemorySink) Get(name string) (*Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.artifacts[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNoArtifact)
	}
	return a, nil
}

// Names lists stored artifact names in sorted order.
func (s *MemorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.artifacts))
	for n := range s.artifacts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
