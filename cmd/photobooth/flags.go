// flags.go — Repeatable command-line values.
package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// photoFlag collects "--photo N=path" values.
type photoFlag map[int]string

func (p photoFlag) String() string {
	idx := make([]int, 0, len(p))
	for i := range p {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	parts := make([]string, len(idx))
	for k, i := range idx {
		parts[k] = fmt.Sprintf("%d=%s", i, p[i])
	}
	return strings.Join(parts, ",")
}

func (p photoFlag) Set(v string) error {
	n, path, ok := strings.Cut(v, "=")
	if !ok || path == "" {
		return fmt.Errorf("want N=path, got %q", v)
	}
	i, err := strconv.Atoi(strings.TrimSpace(n))
	if err != nil || i < 0 {
		return fmt.Errorf("invalid slot index %q", n)
	}
	p[i] = path
	return nil
}

// intList collects repeated integer flags.
type intList []int

func (l *intList) String() string { return fmt.Sprint([]int(*l)) }

func (l *intList) Set(v string) error {
	i, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*l = append(*l, i)
	return nil
}

// stickerSpec is a parsed "--sticker file[@x,y[,w,h]]" value.
type stickerSpec struct {
	Path          string
	X, Y          int
	Width, Height int
	Placed        bool
}

// stickerList collects --sticker values.
type stickerList []stickerSpec

func (l *stickerList) String() string {
	names := make([]string, len(*l))
	for i, s := range *l {
		names[i] = s.Path
	}
	return strings.Join(names, ",")
}

func (l *stickerList) Set(v string) error {
	s, err := parseSticker(v)
	if err != nil {
		return err
	}
	*l = append(*l, s)
	return nil
}

func parseSticker(v string) (stickerSpec, error) {
	path, geom, hasGeom := strings.Cut(v, "@")
	if path == "" {
		return stickerSpec{}, fmt.Errorf("sticker %q: missing file", v)
	}
	s := stickerSpec{Path: path}
	if !hasGeom {
		return s, nil
	}
	fields := strings.Split(geom, ",")
	if len(fields) != 2 && len(fields) != 4 {
		return stickerSpec{}, fmt.Errorf("sticker %q: want @x,y or @x,y,w,h", v)
	}
	nums := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return stickerSpec{}, fmt.Errorf("sticker %q: %w", v, err)
		}
		nums[i] = n
	}
	s.X, s.Y, s.Placed = nums[0], nums[1], true
	if len(nums) == 4 {
		if nums[2] < 0 || nums[3] < 0 {
			return stickerSpec{}, fmt.Errorf("sticker %q: negative size", v)
		}
		s.Width, s.Height = nums[2], nums[3]
	}
	return s, nil
}
