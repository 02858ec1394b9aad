package camera

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xob0t/GoBooth/pkg/raster"
)

type fakeDevice struct {
	openErr  error
	frameErr error
	closeErr error
	frame    raster.Payload
	block    bool

	opened, closed int
}

func (d *fakeDevice) Open(context.Context) (Stream, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	d.opened++
	return &fakeStream{d: d}, nil
}

type fakeStream struct{ d *fakeDevice }

func (s *fakeStream) Frame(ctx context.Context) (raster.Payload, error) {
	if s.d.block {
		<-ctx.Done()
		return raster.Payload{}, ctx.Err()
	}
	return s.d.frame, s.d.frameErr
}

func (s *fakeStream) Close() error {
	s.d.closed++
	return s.d.closeErr
}

func TestCaptureReleasesDevice(t *testing.T) {
	frame := raster.FromBytes([]byte("png"), "")

	t.Run("success", func(t *testing.T) {
		d := &fakeDevice{frame: frame}
		p, err := Capture(context.Background(), d)
		if err != nil {
			t.Fatal(err)
		}
		if p.Source != "camera" || string(p.Data) != "png" {
			t.Errorf("payload = %+v", p)
		}
		if d.opened != 1 || d.closed != 1 {
			t.Errorf("opened %d closed %d", d.opened, d.closed)
		}
	})

	t.Run("frame error", func(t *testing.T) {
		d := &fakeDevice{frameErr: errors.New("no signal")}
		if _, err := Capture(context.Background(), d); err == nil {
			t.Fatal("expected error")
		}
		if d.closed != 1 {
			t.Errorf("closed %d times", d.closed)
		}
	})

	t.Run("cancelled mid-capture", func(t *testing.T) {
		d := &fakeDevice{block: true}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := Capture(ctx, d)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("got %v", err)
		}
		if d.opened != 1 || d.closed != 1 {
			t.Errorf("opened %d closed %d", d.opened, d.closed)
		}
	})

	t.Run("cancelled before open", func(t *testing.T) {
		d := &fakeDevice{frame: frame}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := Capture(ctx, d); !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v", err)
		}
		if d.opened != 0 {
			t.Error("device opened after cancellation")
		}
	})

	t.Run("close error", func(t *testing.T) {
		d := &fakeDevice{frame: frame, closeErr: errors.New("busy")}
		p, err := Capture(context.Background(), d)
		if err == nil || !p.Empty() {
			t.Fatalf("got %+v, %v", p, err)
		}
	})
}

func TestCaptureDeviceAccess(t *testing.T) {
	d := &fakeDevice{openErr: errors.New("permission denied")}
	_, err := Capture(context.Background(), d)
	if !errors.Is(err, ErrDeviceAccess) {
		t.Fatalf("got %v, want ErrDeviceAccess", err)
	}
	if d.closed != 0 {
		t.Error("closed a stream that never opened")
	}
}
