package system

import (
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/mem"
)

func TestMemoryGuard(t *testing.T) {
	g := NewMemoryGuard(0.5)
	g.stat = func() (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Available: 1000}, nil
	}
	tests := []struct {
		n       uint64
		wantErr bool
	}{
		{0, false},
		{500, false},
		{501, true},
	}
	for _, tt := range tests {
		if err := g.Reserve(tt.n); (err != nil) != tt.wantErr {
			t.Errorf("Reserve(%d) = %v", tt.n, err)
		}
	}
}

func TestMemoryGuardStatFailure(t *testing.T) {
	g := NewMemoryGuard(0)
	if g.Share != DefaultMemoryShare {
		t.Errorf("share = %v", g.Share)
	}
	g.stat = func() (*mem.VirtualMemoryStat, error) { return nil, errors.New("no /proc") }
	if err := g.Reserve(1 << 40); err != nil {
		t.Errorf("Reserve = %v", err)
	}
}

func TestMemoryGuardLiveHost(t *testing.T) {
	if err := NewMemoryGuard(1).Reserve(4); err != nil {
		t.Errorf("4-byte surface refused: %v", err)
	}
}
