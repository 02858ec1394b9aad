//go:build js && wasm

// GoBooth WASM — In-browser editor bridge.
// Compiled with: GOOS=js GOARCH=wasm go build -o gobooth.wasm ./clients/wasm/
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"syscall/js"

	"github.com/sirupsen/logrus"

	"github.com/xob0t/GoBooth/pkg/compositor"
	"github.com/xob0t/GoBooth/pkg/export"
	"github.com/xob0t/GoBooth/pkg/layout"
	"github.com/xob0t/GoBooth/pkg/raster"
	"github.com/xob0t/GoBooth/pkg/session"
)

// Editor state. The session is itself safe for concurrent use; mu guards
// swapping it out when a bundle is loaded.
var (
	mu     sync.RWMutex
	reg    *layout.Registry
	assets = &assetStore{m: raster.MapResolver{}}
	sess   *session.Session
	comp   *compositor.Compositor
	log    = logrus.WithField("client", "wasm")
)

// assetStore is the in-memory overlay and font store. Renders read it
// from decode goroutines while the page registers assets.
type assetStore struct {
	mu sync.RWMutex
	m  raster.MapResolver
}

func (a *assetStore) Resolve(ctx context.Context, ref string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.m.Resolve(ctx, ref)
}

func (a *assetStore) set(id string, data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.m[id] = data
}

func (a *assetStore) remove(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.m, id)
}

func (a *assetStore) replace(m raster.MapResolver) {
	if m == nil {
		m = raster.MapResolver{}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.m = m
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	if err := reset(layout.Default(), raster.MapResolver{}); err != nil {
		fmt.Println("GoBooth WASM failed:", err)
		return
	}
	fmt.Println("GoBooth WASM loaded")

	// Register JS-callable functions.
	funcs := map[string]func(js.Value, []js.Value) any{
		"goThemes":        themes,
		"goLoadBundle":    loadBundle,
		"goRegisterAsset": registerAsset,
		"goRemoveAsset":   removeAsset,
		"goSelectTheme":   selectTheme,
		"goSelectLayout":  selectLayout,
		"goSetSlot":       setSlot,
		"goClearSlot":     clearSlot,
		"goClearAll":      clearAll,
		"goCaptureSlot":   captureSlot,
		"goAddSticker":    addSticker,
		"goRemoveSticker": removeSticker,
		"goDragStart":     dragStart,
		"goDragMove":      dragMove,
		"goDragEnd":       dragEnd,
		"goSetCaption":    setCaption,
		"goSetFitMode":    setFitMode,
		"goPreviewFrame":  previewFrame,
		"goSlotAt":        slotAt,
		"goRenderPreview": renderPreview,
		"goExport":        exportImage,
	}
	for name, fn := range funcs {
		js.Global().Set(name, js.FuncOf(fn))
	}
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

// reset replaces the registry and assets and starts a fresh session on the
// default theme, or the first theme when the default is absent. A new
// compositor drops fonts cached from the previous assets.
func reset(r *layout.Registry, a raster.MapResolver) error {
	themeID := layout.DefaultThemeID
	if _, err := r.Theme(themeID); err != nil {
		all := r.Themes()
		if len(all) == 0 {
			return fmt.Errorf("no themes configured")
		}
		themeID = all[0].ID
	}
	s, err := session.New(r, themeID, session.WithLogger(log))
	if err != nil {
		return err
	}
	assets.replace(a)
	mu.Lock()
	defer mu.Unlock()
	reg, sess = r, s
	comp = compositor.New(assets, compositor.WithLogger(log))
	return nil
}

func current() (*session.Session, *compositor.Compositor, *layout.Registry) {
	mu.RLock()
	defer mu.RUnlock()
	return sess, comp, reg
}

func errorf(format string, args ...any) js.Value {
	return js.ValueOf("error: " + fmt.Sprintf(format, args...))
}

var jsOK = js.ValueOf("ok")

// previewScale is the scale the UI draws the active layout at.
func previewScale(s *session.Session) float64 {
	return layout.ResolveScale(s.Layout())
}

// toCanvas converts a preview point to native canvas pixels.
func toCanvas(s *session.Session, x, y int) (int, int) {
	scale := previewScale(s)
	return int(float64(x) / scale), int(float64(y) / scale)
}

// ── Catalog ──

type themeJSON struct {
	ID          string                  `json:"themeId"`
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Overlay     string                  `json:"overlay"`
	Layout      layout.Spec             `json:"layout"`
	Caption     *layout.CaptionBox      `json:"caption,omitempty"`
	Preview     compositor.PreviewFrame `json:"preview"`
}

// goThemes() — JSON list of themes with their layouts and preview frames.
func themes(this js.Value, args []js.Value) any {
	_, _, r := current()
	var out []themeJSON
	for _, t := range r.Themes() {
		spec, err := r.Layout(t.LayoutID)
		if err != nil {
			continue
		}
		out = append(out, themeJSON{
			ID:          t.ID,
			Name:        t.DisplayName(),
			Description: t.Description,
			Overlay:     t.Overlay,
			Layout:      spec,
			Caption:     t.Caption,
			Preview:     compositor.NewPreviewFrame(spec, layout.ResolveScale(spec), nil),
		})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return errorf("%v", err)
	}
	return js.ValueOf(string(data))
}

// goLoadBundle(base64Zip) — replace the catalog with a theme bundle.
func loadBundle(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorf("need base64Zip")
	}
	data, err := base64.StdEncoding.DecodeString(args[0].String())
	if err != nil {
		return errorf("invalid base64: %v", err)
	}
	b, err := layout.ParseBundle(data)
	if err != nil {
		return errorf("%v", err)
	}
	if err := reset(b.Registry, raster.MapResolver(b.Assets)); err != nil {
		return errorf("%v", err)
	}
	return jsOK
}

// goRegisterAsset(id, base64Data) — store an overlay or font in Go memory.
func registerAsset(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorf("need id, base64Data")
	}
	data, err := base64.StdEncoding.DecodeString(args[1].String())
	if err != nil {
		return errorf("invalid base64: %v", err)
	}
	assets.set(args[0].String(), data)
	return jsOK
}

// goRemoveAsset(id) — remove an asset from Go memory.
func removeAsset(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorf("need id")
	}
	assets.remove(args[0].String())
	return jsOK
}

// ── Theme and slots ──

// goSelectTheme(id) — switch theme; clears every slot.
func selectTheme(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorf("need themeId")
	}
	s, _, _ := current()
	if err := s.SelectTheme(args[0].String()); err != nil {
		return errorf("%v", err)
	}
	return jsOK
}

// goSelectLayout(id) — switch layout; clears every slot.
func selectLayout(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorf("need layoutId")
	}
	s, _, _ := current()
	if err := s.SelectLayout(args[0].String()); err != nil {
		return errorf("%v", err)
	}
	return jsOK
}

// goSetSlot(index, dataURI) — true when the photo was accepted.
func setSlot(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorf("need index, dataURI")
	}
	p, err := raster.FromDataURI(args[1].String())
	if err != nil {
		return js.ValueOf(false)
	}
	s, _, _ := current()
	return js.ValueOf(s.SetSlot(args[0].Int(), p))
}

// goClearSlot(index)
func clearSlot(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorf("need index")
	}
	s, _, _ := current()
	s.ClearSlot(args[0].Int())
	return jsOK
}

// goClearAll()
func clearAll(this js.Value, args []js.Value) any {
	s, _, _ := current()
	s.ClearAll()
	return jsOK
}

// goCaptureSlot(index, grabFrame, release?) — Promise. grabFrame is a JS
// function returning a Promise of a data URI (e.g. a getUserMedia video frame
// drawn to a canvas). The optional release function runs once the frame is
// taken or the capture fails, and should stop the camera tracks.
func captureSlot(this js.Value, args []js.Value) any {
	if len(args) < 2 || args[1].Type() != js.TypeFunction {
		return errorf("need index, grabFrame")
	}
	index, dev := args[0].Int(), jsDevice{grab: args[1], release: js.Undefined()}
	if len(args) > 2 {
		dev.release = args[2]
	}
	return promise(func() (any, error) {
		s, _, _ := current()
		if err := s.CaptureSlot(context.Background(), dev, index); err != nil {
			return nil, err
		}
		return true, nil
	})
}

// ── Stickers ──

// goAddSticker(dataURI) — returns the sticker ID.
func addSticker(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorf("need dataURI")
	}
	p, err := raster.FromDataURI(args[0].String())
	if err != nil {
		return errorf("%v", err)
	}
	s, _, _ := current()
	id, err := s.AddSticker(p)
	if err != nil {
		return errorf("%v", err)
	}
	return js.ValueOf(id)
}

// goRemoveSticker(id)
func removeSticker(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorf("need id")
	}
	s, _, _ := current()
	return js.ValueOf(s.RemoveSticker(args[0].String()))
}

// goDragStart(id, previewX, previewY)
func dragStart(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return errorf("need id, x, y")
	}
	s, _, _ := current()
	x, y := toCanvas(s, args[1].Int(), args[2].Int())
	return js.ValueOf(s.BeginDrag(args[0].String(), x, y))
}

// goDragMove(previewX, previewY)
func dragMove(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorf("need x, y")
	}
	s, _, _ := current()
	x, y := toCanvas(s, args[0].Int(), args[1].Int())
	return js.ValueOf(s.DragTo(x, y))
}

// goDragEnd()
func dragEnd(this js.Value, args []js.Value) any {
	s, _, _ := current()
	s.EndDrag()
	return jsOK
}

// ── Caption and fit ──

// goSetCaption(text)
func setCaption(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorf("need text")
	}
	s, _, _ := current()
	s.SetCaption(args[0].String())
	return jsOK
}

// goSetFitMode(mode)
func setFitMode(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorf("need mode")
	}
	m, err := compositor.ParseFitMode(args[0].String())
	if err != nil {
		return errorf("%v", err)
	}
	s, _, _ := current()
	s.SetFitMode(m)
	return jsOK
}

// ── Preview and export ──

// goPreviewFrame() — JSON preview geometry for the active layout.
func previewFrame(this js.Value, args []js.Value) any {
	s, _, _ := current()
	f := compositor.NewPreviewFrame(s.Layout(), previewScale(s), s.Filled())
	data, err := json.Marshal(f)
	if err != nil {
		return errorf("%v", err)
	}
	return js.ValueOf(string(data))
}

// goSlotAt(previewX, previewY) — slot index under the point, or -1.
func slotAt(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorf("need x, y")
	}
	s, _, _ := current()
	f := compositor.NewPreviewFrame(s.Layout(), previewScale(s), s.Filled())
	if i, hit := f.SlotAt(args[0].Int(), args[1].Int()); hit {
		return js.ValueOf(i)
	}
	return js.ValueOf(-1)
}

// goRenderPreview() — render the preview and return a PNG data URI.
func renderPreview(this js.Value, args []js.Value) any {
	s, c, _ := current()
	img, err := c.RenderPreview(context.Background(), s.Snapshot(), previewScale(s))
	if err != nil {
		return errorf("render: %v", err)
	}
	a, err := export.New(c, export.WithLogger(log)).Encode(img, "preview")
	if err != nil {
		return errorf("encode: %v", err)
	}
	return js.ValueOf(raster.FromBytes(a.Data, a.Name).DataURI())
}

// goExport(format) — Promise of {name, width, height, dataURI}.
func exportImage(this js.Value, args []js.Value) any {
	format := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		format = args[0].String()
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return errorf("%v", err)
	}
	s, c, _ := current()
	scene := s.Snapshot()
	return promise(func() (any, error) {
		a, err := export.New(c, export.WithFormat(f), export.WithLogger(log)).Export(context.Background(), scene)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"name":    a.Name,
			"width":   a.Width,
			"height":  a.Height,
			"dataURI": "data:" + a.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(a.Data),
			"id":      a.ID,
			"created": strconv.FormatInt(a.CreatedAt.UnixMilli(), 10),
		}, nil
	})
}

// promise runs fn off the event loop and settles a JS Promise with it.
func promise(fn func() (any, error)) js.Value {
	executor := js.FuncOf(func(this js.Value, args []js.Value) any {
		resolve, reject := args[0], args[1]
		go func() {
			v, err := fn()
			if err != nil {
				reject.Invoke(js.Global().Get("Error").New(err.Error()))
				return
			}
			resolve.Invoke(v)
		}()
		return nil
	})
	defer executor.Release()
	return js.Global().Get("Promise").New(executor)
}
