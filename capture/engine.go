// Package capture implements the public capture engine: screen and window
// BMP capture backed by GDI, per spec.md §3/§4.
package capture

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/google/uuid"

	"github.com/soocke/wincapture/bmp"
	"github.com/soocke/wincapture/config"
	"github.com/soocke/wincapture/cursor"
	"github.com/soocke/wincapture/logging"
	"github.com/soocke/wincapture/winapi"
	"github.com/soocke/wincapture/window"
)

// templateCacheCapacity bounds the number of distinct (width, height,
// bitDepth, paletteType) header templates an Engine keeps warm. Most
// callers capture a fixed screen or window size repeatedly, so a handful of
// entries absorbs essentially all repeat work.
const templateCacheCapacity = 16

// Engine owns a loaded set of native bindings and the resources derived
// from them (the window enumerator, the BMP template cache) for its entire
// lifetime. Capture calls are serialized internally: the underlying GDI
// calls are not safe to issue concurrently against the same bindings, per
// spec.md §5.
//
// Grounded on domain/capture/capture_windows.go's per-step defer-release
// chain and domain/capture/capture_service.go's atomic-counter/*slog.Logger
// shape in the teacher repo, generalized from its fixed game-window target
// to the arbitrary screen/window capture spec.md §4 describes.
type Engine struct {
	mu sync.Mutex

	bindings  *winapi.Bindings
	win       *window.Window
	templates *bmp.TemplateCache
	opts      config.CaptureOptions
	logger    *slog.Logger
	stats     counters
	closed    atomic.Bool
}

// New loads the native bindings and constructs an Engine ready to capture.
// opts is validated and normalized before use.
func New(opts config.CaptureOptions) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, newError("New", KindLibLoadFailed, err)
	}

	bindings, err := winapi.Load()
	if err != nil {
		return nil, newError("New", KindLibLoadFailed, err)
	}

	templates, err := bmp.NewTemplateCache(templateCacheCapacity)
	if err != nil {
		bindings.Close()
		return nil, newError("New", KindLibLoadFailed, err)
	}

	return &Engine{
		bindings:  bindings,
		win:       window.New(bindings),
		templates: templates,
		opts:      opts,
		logger:    logging.New(slog.LevelInfo),
	}, nil
}

// Close releases the native bindings and clears the template cache.
// Idempotent: a second call is a no-op. Every capture call made after
// Close fails with a KindClosed error.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates.Clear()
	if err := e.bindings.Close(); err != nil {
		return newError("Close", KindOSFailure, err)
	}
	return nil
}

// Stats returns a snapshot of this Engine's lifetime capture counters.
func (e *Engine) Stats() Stats { return e.stats.snapshot() }

// GetScreenRect returns the primary screen's device-pixel rectangle.
func (e *Engine) GetScreenRect() (window.Rect, error) {
	if e.closed.Load() {
		return window.Rect{}, newError("GetScreenRect", KindClosed, nil)
	}
	rect, err := e.win.ScreenRect()
	if err != nil {
		return window.Rect{}, newError("GetScreenRect", KindOSFailure, err)
	}
	return rect, nil
}

// GetWindowRect resolves id and returns its DPI-scaled device-pixel
// rectangle.
func (e *Engine) GetWindowRect(id window.Identifier) (window.Rect, error) {
	if e.closed.Load() {
		return window.Rect{}, newError("GetWindowRect", KindClosed, nil)
	}
	rect, err := e.win.WindowRect(id)
	if err != nil {
		return window.Rect{}, translateWindowErr("GetWindowRect", err)
	}
	return rect, nil
}

// GetWindowList enumerates visible top-level windows.
func (e *Engine) GetWindowList() ([]window.Info, error) {
	if e.closed.Load() {
		return nil, newError("GetWindowList", KindClosed, nil)
	}
	infos, err := e.win.Enumerate()
	if err != nil {
		return nil, newError("GetWindowList", KindEnumFailed, err)
	}
	return infos, nil
}

// CaptureScreen captures the primary screen, or region if non-nil, and
// returns a complete BMP byte stream per spec.md §3/§4.A-B.
func (e *Engine) CaptureScreen(region *window.Rect) ([]byte, error) {
	if e.closed.Load() {
		return nil, newError("CaptureScreen", KindClosed, nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	correlationID := uuid.NewString()
	log := e.logger.With("op", "CaptureScreen", "correlation_id", correlationID)

	rect := window.Rect{}
	if region != nil {
		rect = *region
	} else {
		screenRect, err := e.win.ScreenRect()
		if err != nil {
			e.stats.recordFailure()
			return nil, newError("CaptureScreen", KindOSFailure, err)
		}
		rect = screenRect
	}
	if err := rect.Validate(); err != nil {
		e.stats.recordFailure()
		return nil, newError("CaptureScreen", KindInvalidRegion, err)
	}

	out, err := e.captureRegion(rect)
	if err != nil {
		e.stats.recordFailure()
		log.Error("capture failed", "err", err)
		return nil, err
	}

	e.stats.recordSuccess(len(out))
	log.Info("capture succeeded", "bytes", len(out), "width", rect.Width(), "height", rect.Height())
	return out, nil
}

// CaptureWindow resolves id and captures that window's client+non-client
// content via PrintWindow, per spec.md §4.C.
func (e *Engine) CaptureWindow(id window.Identifier) ([]byte, error) {
	if e.closed.Load() {
		return nil, newError("CaptureWindow", KindClosed, nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	correlationID := uuid.NewString()
	log := e.logger.With("op", "CaptureWindow", "correlation_id", correlationID)

	handle, err := e.win.Resolve(id)
	if err != nil {
		e.stats.recordFailure()
		return nil, translateWindowErr("CaptureWindow", err)
	}

	rect, err := e.win.WindowRect(window.ByHandleID(handle))
	if err != nil {
		e.stats.recordFailure()
		return nil, translateWindowErr("CaptureWindow", err)
	}
	if err := rect.Validate(); err != nil {
		e.stats.recordFailure()
		return nil, newError("CaptureWindow", KindInvalidRegion, err)
	}

	out, err := e.captureWindowHandle(handle, rect)
	if err != nil {
		e.stats.recordFailure()
		log.Error("capture failed", "err", err)
		return nil, err
	}

	e.stats.recordSuccess(len(out))
	log.Info("capture succeeded", "bytes", len(out), "width", rect.Width(), "height", rect.Height())
	return out, nil
}

// captureRegion captures a raw screen rectangle via the DIB-section path:
// GetDC(0) + CreateCompatibleDC + CreateDIBSection + BitBlt, copying the
// system-owned DIB bits into the BMP buffer once blitting completes.
func (e *Engine) captureRegion(rect window.Rect) ([]byte, error) {
	width, height := int(rect.Width()), int(rect.Height())

	structure, err := bmp.Build(width, height, e.opts.BitDepth, e.opts.PaletteType, e.templates)
	if err != nil {
		return nil, newError("captureRegion", KindInvalidRegion, err)
	}

	b := e.bindings

	hdcScreen := b.GetDC(0)
	if hdcScreen == 0 {
		return nil, newError("captureRegion", KindDCUnavailable, nil)
	}
	defer b.ReleaseDC(0, hdcScreen)

	hdcMem := b.CreateCompatibleDC(hdcScreen)
	if hdcMem == 0 {
		return nil, newError("captureRegion", KindDCUnavailable, nil)
	}
	defer b.DeleteDC(hdcMem)

	var bits unsafe.Pointer
	hbitmap := b.CreateDIBSection(hdcMem, unsafe.Pointer(&structure.InfoHeaderBytes()[0]), winapi.DIBRGBColors, &bits, 0, 0)
	if hbitmap == 0 || bits == nil {
		return nil, newError("captureRegion", KindDCUnavailable, nil)
	}
	defer b.DeleteObject(hbitmap)

	prev := b.SelectObject(hdcMem, hbitmap)
	defer b.SelectObject(hdcMem, prev)

	if b.BitBlt(hdcMem, 0, 0, int32(width), int32(height), hdcScreen, rect.Left, rect.Top, winapi.SRCCopy|winapi.CaptureBLT) == 0 {
		return nil, newError("captureRegion", KindBlitFailed, nil)
	}

	if e.opts.IncludeCursor {
		if err := cursor.Compose(b, hdcMem, rect.Left, rect.Top); err != nil {
			return nil, newError("captureRegion", KindCursorUnavailable, err)
		}
	}

	pixelData := structure.PixelData()
	dibBytes := unsafe.Slice((*byte)(bits), len(pixelData))
	copy(pixelData, dibBytes)

	return structure.Bytes(), nil
}

// captureWindowHandle captures the named window via PrintWindow: a
// compatible bitmap is created at the window's DPI-scaled pixel size (rect
// as returned by WindowRect),
// selected into a compatible DC, and rendered into by PrintWindow before
// GetDIBits reads the pixels out in the requested bit depth.
func (e *Engine) captureWindowHandle(handle window.Handle, rect window.Rect) ([]byte, error) {
	width, height := int(rect.Width()), int(rect.Height())

	structure, err := bmp.Build(width, height, e.opts.BitDepth, e.opts.PaletteType, e.templates)
	if err != nil {
		return nil, newError("captureWindowHandle", KindInvalidRegion, err)
	}

	b := e.bindings

	hdcWindow := b.GetDCEx(uintptr(handle), 0, winapi.DCXWindow|winapi.DCXCache)
	if hdcWindow == 0 {
		return nil, newError("captureWindowHandle", KindDCUnavailable, nil)
	}
	defer b.ReleaseDC(uintptr(handle), hdcWindow)

	hdcMem := b.CreateCompatibleDC(hdcWindow)
	if hdcMem == 0 {
		return nil, newError("captureWindowHandle", KindDCUnavailable, nil)
	}
	defer b.DeleteDC(hdcMem)

	hbitmap := b.CreateCompatibleBitmap(hdcWindow, int32(width), int32(height))
	if hbitmap == 0 {
		return nil, newError("captureWindowHandle", KindDCUnavailable, nil)
	}
	defer b.DeleteObject(hbitmap)

	prev := b.SelectObject(hdcMem, hbitmap)
	defer b.SelectObject(hdcMem, prev)

	if b.PrintWindow(uintptr(handle), hdcMem, winapi.PWRenderFullContent) == 0 {
		return nil, newError("captureWindowHandle", KindPrintFailed, nil)
	}

	if e.opts.IncludeCursor {
		if err := cursor.Compose(b, hdcMem, rect.Left, rect.Top); err != nil {
			return nil, newError("captureWindowHandle", KindCursorUnavailable, err)
		}
	}

	pixelData := structure.PixelData()
	got := b.GetDIBits(hdcMem, hbitmap, 0, uint32(height), unsafe.Pointer(&pixelData[0]), unsafe.Pointer(&structure.InfoHeaderBytes()[0]), winapi.DIBRGBColors)
	if got == 0 {
		return nil, newError("captureWindowHandle", KindGetBitsFailed, nil)
	}

	return structure.Bytes(), nil
}

// translateWindowErr maps a window-package sentinel to the matching
// capture Kind while preserving it as the wrapped cause.
func translateWindowErr(op string, err error) error {
	switch {
	case errors.Is(err, window.ErrWindowNotFound):
		return newError(op, KindWindowNotFound, err)
	case errors.Is(err, window.ErrDPIUnavailable):
		return newError(op, KindDPIUnavailable, err)
	case errors.Is(err, window.ErrClassNameUnavailable):
		return newError(op, KindClassNameUnavailable, err)
	case errors.Is(err, window.ErrProcessIDUnavailable):
		return newError(op, KindProcessIDUnavailable, err)
	case errors.Is(err, window.ErrStyleUnavailable):
		return newError(op, KindStyleUnavailable, err)
	case errors.Is(err, window.ErrInvalidRegion):
		return newError(op, KindInvalidRegion, err)
	default:
		return newError(op, KindOSFailure, err)
	}
}
