package main

import (
	"flag"
	"io"
	"testing"
)

func TestPhotoFlag(t *testing.T) {
	p := photoFlag{}
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(p, "photo", "")
	if err := fs.Parse([]string{"--photo", "0=a.jpg", "--photo", "2=c=d.jpg", "--photo", "0=b.jpg"}); err != nil {
		t.Fatal(err)
	}
	if p[0] != "b.jpg" || p[2] != "c=d.jpg" || len(p) != 2 {
		t.Errorf("photos = %v", p)
	}
	if p.String() != "0=b.jpg,2=c=d.jpg" {
		t.Errorf("String = %s", p.String())
	}

	for _, bad := range []string{"a.jpg", "x=a.jpg", "-1=a.jpg", "1="} {
		if err := p.Set(bad); err == nil {
			t.Errorf("Set(%q) accepted", bad)
		}
	}
}

func TestParseSticker(t *testing.T) {
	tests := []struct {
		in      string
		want    stickerSpec
		wantErr bool
	}{
		{"star.png", stickerSpec{Path: "star.png"}, false},
		{"star.png@10,20", stickerSpec{Path: "star.png", X: 10, Y: 20, Placed: true}, false},
		{"star.png@10,20,64,32", stickerSpec{Path: "star.png", X: 10, Y: 20, Width: 64, Height: 32, Placed: true}, false},
		{"star.png@10", stickerSpec{}, true},
		{"star.png@a,b", stickerSpec{}, true},
		{"star.png@1,2,-3,4", stickerSpec{}, true},
		{"@1,2", stickerSpec{}, true},
	}
	for _, tt := range tests {
		got, err := parseSticker(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSticker(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSticker(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestIntList(t *testing.T) {
	var l intList
	if err := l.Set("2"); err != nil {
		t.Fatal(err)
	}
	if err := l.Set("x"); err == nil {
		t.Error("non-integer accepted")
	}
	if len(l) != 1 || l[0] != 2 {
		t.Errorf("list = %v", l)
	}
}
