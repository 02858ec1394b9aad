// Package camera grabs single frames from a capture device. A device is
// acquired only for the duration of one capture and is always released,
// whether the capture succeeds, fails or is cancelled.
package camera

import (
	"context"
	"errors"
	"fmt"

	"github.com/xob0t/GoBooth/pkg/raster"
)

// ErrDeviceAccess wraps failures to open a capture device (missing
// device, permission denied, busy).
var ErrDeviceAccess = errors.New("camera unavailable")

// Device opens capture streams.
type Device interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is an acquired device.
type Stream interface {
	// Frame returns one still image from the stream.
	Frame(ctx context.Context) (raster.Payload, error)
	// Close releases the device.
	Close() error
}

// Capture opens dev, takes exactly one frame and releases the device.
func Capture(ctx context.Context, dev Device) (p raster.Payload, err error) {
	if err := ctx.Err(); err != nil {
		return raster.Payload{}, err
	}

	stream, err := dev.Open(ctx)
	if err != nil {
		return raster.Payload{}, fmt.Errorf("%w: %w", ErrDeviceAccess, err)
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("release camera: %w", cerr)
			p = raster.Payload{}
		}
	}()

	frame, err := stream.Frame(ctx)
	if err != nil {
		return raster.Payload{}, fmt.Errorf("capture frame: %w", err)
	}
	if frame.Source == "" {
		frame.Source = "camera"
	}
	return frame, nil
}
