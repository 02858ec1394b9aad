//go:build js && wasm

// camera.go — Capture device backed by a page-supplied frame grabber.
package main

import (
	"context"
	"errors"
	"fmt"
	"syscall/js"

	"github.com/xob0t/GoBooth/pkg/camera"
	"github.com/xob0t/GoBooth/pkg/raster"
)

// jsDevice calls grab, a JS function returning a Promise of a data URI.
// Permission prompts and getUserMedia live on the page. release, when a
// function, is called on Close so the page can stop its MediaStream tracks.
type jsDevice struct {
	grab    js.Value
	release js.Value
}

func (d jsDevice) Open(ctx context.Context) (camera.Stream, error) {
	if d.grab.Type() != js.TypeFunction {
		return nil, errors.New("no frame grabber")
	}
	return jsStream{grab: d.grab, release: d.release}, nil
}

type jsStream struct {
	grab    js.Value
	release js.Value
}

type settled struct {
	uri string
	err error
}

func (s jsStream) Frame(ctx context.Context) (raster.Payload, error) {
	done := make(chan settled, 1)
	onResolve := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 || args[0].Type() != js.TypeString {
			done <- settled{err: errors.New("frame grabber returned no data URI")}
			return nil
		}
		done <- settled{uri: args[0].String()}
		return nil
	})
	defer onResolve.Release()
	onReject := js.FuncOf(func(this js.Value, args []js.Value) any {
		msg := "frame grabber failed"
		if len(args) > 0 {
			msg = args[0].Call("toString").String()
		}
		done <- settled{err: errors.New(msg)}
		return nil
	})
	defer onReject.Release()

	s.grab.Invoke().Call("then", onResolve, onReject)

	select {
	case <-ctx.Done():
		return raster.Payload{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return raster.Payload{}, r.err
		}
		p, err := raster.FromDataURI(r.uri)
		if err != nil {
			return raster.Payload{}, err
		}
		p.Source = "camera"
		return p, nil
	}
}

func (s jsStream) Close() (err error) {
	if s.release.Type() != js.TypeFunction {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("release camera: %v", r)
		}
	}()
	s.release.Invoke()
	return nil
}
