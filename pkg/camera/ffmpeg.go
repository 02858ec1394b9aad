//go:build !js

// ffmpeg.go — Capture device backed by the ffmpeg binary.
package camera

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/xob0t/GoBooth/pkg/raster"
)

// FFmpegDevice captures stills through ffmpeg's capture demuxers
// (v4l2 on Linux, avfoundation on macOS, dshow on Windows).
type FFmpegDevice struct {
	Binary string // defaults to "ffmpeg"
	Format string // input demuxer, defaults per OS
	Input  string // device name, e.g. "/dev/video0"
	Size   string // optional "WxH"
}

// NewFFmpegDevice returns a device for input with OS defaults.
func NewFFmpegDevice(input string) *FFmpegDevice {
	d := &FFmpegDevice{Binary: "ffmpeg", Input: input}
	switch runtime.GOOS {
	case "darwin":
		d.Format = "avfoundation"
	case "windows":
		d.Format = "dshow"
	default:
		d.Format = "v4l2"
	}
	if d.Input == "" {
		d.Input = defaultInput(d.Format)
	}
	return d
}

func defaultInput(format string) string {
	switch format {
	case "avfoundation":
		return "0"
	case "dshow":
		return "video=Integrated Camera"
	}
	return "/dev/video0"
}

// Open checks that ffmpeg and the device are present.
func (d *FFmpegDevice) Open(ctx context.Context) (Stream, error) {
	bin := d.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	if d.Format == "v4l2" {
		if _, err := os.Stat(d.Input); err != nil {
			return nil, err
		}
	}
	return &ffmpegStream{bin: path, dev: d}, nil
}

type ffmpegStream struct {
	bin string
	dev *FFmpegDevice

	mu     sync.Mutex
	cmd    *exec.Cmd
	closed bool
}

func (s *ffmpegStream) args() []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-f", s.dev.Format}
	if s.dev.Size != "" {
		args = append(args, "-video_size", s.dev.Size)
	}
	return append(args, "-i", s.dev.Input, "-frames:v", "1", "-f", "image2pipe", "-vcodec", "png", "-")
}

func (s *ffmpegStream) Frame(ctx context.Context) (raster.Payload, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.bin, s.args()...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return raster.Payload{}, fmt.Errorf("stream closed")
	}
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return raster.Payload{}, fmt.Errorf("ffmpeg start error: %w", err)
	}
	s.cmd = cmd
	s.mu.Unlock()

	err := cmd.Wait()

	s.mu.Lock()
	s.cmd = nil
	s.mu.Unlock()

	if ctx.Err() != nil {
		return raster.Payload{}, ctx.Err()
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		// No bytes written means ffmpeg never got a frame off the device:
		// busy, permission denied or unsupported input.
		if stdout.Len() == 0 {
			return raster.Payload{}, fmt.Errorf("%w: ffmpeg: %w: %s", ErrDeviceAccess, err, msg)
		}
		return raster.Payload{}, fmt.Errorf("ffmpeg: %w: %s", err, msg)
	}
	return raster.FromBytes(stdout.Bytes(), "camera"), nil
}

// Close kills a capture still in flight.
func (s *ffmpegStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	return nil
}
