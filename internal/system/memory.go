// Package system holds host-level helpers for the export pipeline.
package system

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

// DefaultMemoryShare is the fraction of available memory one surface
// may take.
const DefaultMemoryShare = 0.5

// MemoryGuard refuses surfaces larger than a share of the host's
// available memory. It implements compositor.SurfaceGuard.
type MemoryGuard struct {
	Share float64
	stat  func() (*mem.VirtualMemoryStat, error)
}

// NewMemoryGuard returns a guard using share of available memory, or
// DefaultMemoryShare when share is not in (0, 1].
func NewMemoryGuard(share float64) *MemoryGuard {
	if share <= 0 || share > 1 {
		share = DefaultMemoryShare
	}
	return &MemoryGuard{Share: share, stat: mem.VirtualMemory}
}

// Reserve reports whether a surface of n bytes fits. When memory
// statistics are unavailable the allocation is allowed.
func (g *MemoryGuard) Reserve(n uint64) error {
	vm, err := g.stat()
	if err != nil {
		logrus.WithError(err).Warn("memory statistics unavailable, skipping surface check")
		return nil
	}
	limit := uint64(float64(vm.Available) * g.Share)
	if n > limit {
		return fmt.Errorf("surface needs %d MiB, %d MiB allowed", n>>20, limit>>20)
	}
	return nil
}
