package capture

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"unsafe"

	"github.com/soocke/wincapture/bmp"
	"github.com/soocke/wincapture/config"
	"github.com/soocke/wincapture/winapi"
	"github.com/soocke/wincapture/window"
)

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBindings builds a *winapi.Bindings whose func fields are stand-ins
// for the real DLL entry points, following spec.md's promise that the
// native call sites in capture/window/cursor are exercised through an
// injectable winapi.Bindings seam rather than a live Windows host. Every
// test in this file constructs an Engine by hand instead of through New,
// since New calls winapi.Load, which loads the real system libraries.
func fakeBindings(dibBits []byte) *winapi.Bindings {
	b := &winapi.Bindings{}

	b.GetDC = func(hwnd uintptr) uintptr { return 1 }
	b.GetDCEx = func(hwnd, clip uintptr, flags uint32) uintptr { return 1 }
	b.ReleaseDC = func(hwnd, hdc uintptr) int32 { return 1 }
	b.GetDeviceCaps = func(hdc uintptr, index int32) int32 {
		switch index {
		case winapi.DesktopHorzRes:
			return 4
		case winapi.DesktopVertRes:
			return 3
		default:
			return 0
		}
	}
	b.CreateCompatibleDC = func(hdc uintptr) uintptr { return 2 }
	b.CreateCompatibleBitmap = func(hdc uintptr, cx, cy int32) uintptr { return 3 }
	b.CreateDIBSection = func(hdc uintptr, bmi unsafe.Pointer, usage uint32, bits *unsafe.Pointer, hSection uintptr, offset uint32) uintptr {
		*bits = unsafe.Pointer(&dibBits[0])
		return 4
	}
	b.SelectObject = func(hdc, obj uintptr) uintptr { return 0 }
	b.DeleteObject = func(obj uintptr) int32 { return 1 }
	b.DeleteDC = func(hdc uintptr) int32 { return 1 }
	b.BitBlt = func(dst uintptr, x, y, w, h int32, src uintptr, sx, sy int32, rop uint32) int32 { return 1 }
	b.GetCursorInfo = func(info unsafe.Pointer) int32 { return 0 }
	b.PrintWindow = func(hwnd, hdcBlt uintptr, flags uint32) int32 { return 1 }
	b.GetDIBits = func(hdc, hbmp uintptr, start, lines uint32, bits unsafe.Pointer, bmi unsafe.Pointer, usage uint32) int32 {
		return 1
	}
	b.GetWindowRect = func(hwnd uintptr, rect unsafe.Pointer) int32 {
		r := (*winapi.RECT)(rect)
		*r = winapi.RECT{Left: 0, Top: 0, Right: 4, Bottom: 3}
		return 1
	}
	b.GetDpiForWindow = func(hwnd uintptr) uint32 { return 96 }
	b.FindWindowExW = func(parent, childAfter uintptr, class, title *uint16) uintptr { return 0 }

	return b
}

func newTestEngine(t *testing.T, opts config.CaptureOptions, dibBits []byte) *Engine {
	t.Helper()
	bindings := fakeBindings(dibBits)
	templates, err := bmp.NewTemplateCache(templateCacheCapacity)
	if err != nil {
		t.Fatalf("NewTemplateCache: %v", err)
	}
	return &Engine{
		bindings:  bindings,
		win:       window.New(bindings),
		templates: templates,
		opts:      opts,
		logger:    noopLogger(),
	}
}

func TestEngineCaptureScreenProducesDecodeableBMP(t *testing.T) {
	opts := config.DefaultOptions()
	opts.IncludeCursor = false

	dibBits := make([]byte, bmp.Stride(4, bmp.Depth24)*3)
	for i := range dibBits {
		dibBits[i] = byte(i % 250)
	}

	e := newTestEngine(t, opts, dibBits)
	defer e.Close()

	out, err := e.CaptureScreen(nil)
	if err != nil {
		t.Fatalf("CaptureScreen: %v", err)
	}

	img, err := bmp.Decode(out)
	if err != nil {
		t.Fatalf("decode produced BMP: %v", err)
	}
	if img.Width != 4 || img.Height != 3 {
		t.Fatalf("decoded size = %dx%d, want 4x3", img.Width, img.Height)
	}

	stats := e.Stats()
	if stats.SuccessfulCaptures != 1 || stats.FailedCaptures != 0 {
		t.Fatalf("stats after success = %+v", stats)
	}
	if stats.BytesProduced != uint64(len(out)) {
		t.Fatalf("BytesProduced = %d, want %d", stats.BytesProduced, len(out))
	}
}

func TestEngineCaptureScreenRejectsInvalidRegion(t *testing.T) {
	e := newTestEngine(t, config.DefaultOptions(), nil)
	defer e.Close()

	bad := window.Rect{Left: 10, Top: 10, Right: 10, Bottom: 20}
	_, err := e.CaptureScreen(&bad)
	if err == nil {
		t.Fatal("expected an error for a zero-width region")
	}
	var ce *Error
	if !errors.As(err, &ce) || ce.Kind != KindInvalidRegion {
		t.Fatalf("err = %v, want KindInvalidRegion", err)
	}

	stats := e.Stats()
	if stats.FailedCaptures != 1 {
		t.Fatalf("FailedCaptures = %d, want 1", stats.FailedCaptures)
	}
}

func TestEngineCaptureWindowNotFound(t *testing.T) {
	e := newTestEngine(t, config.DefaultOptions(), nil)
	defer e.Close()

	_, err := e.CaptureWindow(window.ByTitleID("does not exist"))
	if err == nil {
		t.Fatal("expected an error")
	}
	var ce *Error
	if !errors.As(err, &ce) || ce.Kind != KindWindowNotFound {
		t.Fatalf("err = %v, want KindWindowNotFound", err)
	}
}

func TestEngineCloseIsIdempotent(t *testing.T) {
	e := newTestEngine(t, config.DefaultOptions(), nil)
	if err := e.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if _, err := e.GetScreenRect(); err == nil {
		t.Fatal("expected a KindClosed error after Close")
	}
}

func TestEngineGetScreenRect(t *testing.T) {
	e := newTestEngine(t, config.DefaultOptions(), nil)
	defer e.Close()

	rect, err := e.GetScreenRect()
	if err != nil {
		t.Fatalf("GetScreenRect: %v", err)
	}
	if rect.Width() != 4 || rect.Height() != 3 {
		t.Fatalf("rect = %+v, want 4x3", rect)
	}
}
