package winapi

import (
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Bindings owns the two loaded libraries (user32.dll, gdi32.dll) and the
// ~20 typed entry points the capture engine, window enumerator and cursor
// compositor drive. Load and Close bracket the library handles' lifetime;
// Close is idempotent and safe to call from multiple goroutines, though the
// engine itself never does so concurrently (see spec §5).
type Bindings struct {
	user32 uintptr
	gdi32  uintptr

	closeOnce sync.Once

	// user32.dll
	GetWindowRect            func(hwnd uintptr, rect unsafe.Pointer) int32
	GetDC                    func(hwnd uintptr) uintptr
	GetDCEx                  func(hwnd, clip uintptr, flags uint32) uintptr
	ReleaseDC                func(hwnd, hdc uintptr) int32
	FindWindowExW            func(parent, childAfter uintptr, class, title *uint16) uintptr
	GetWindowTextW           func(hwnd uintptr, buf *uint16, maxCount int32) int32
	GetClassNameW            func(hwnd uintptr, buf *uint16, maxCount int32) int32
	IsWindowVisible          func(hwnd uintptr) int32
	GetWindowThreadProcessId func(hwnd uintptr, pid unsafe.Pointer) uint32
	GetWindowLongW           func(hwnd uintptr, index int32) int32
	GetDpiForWindow          func(hwnd uintptr) uint32
	PrintWindow              func(hwnd, hdcBlt uintptr, flags uint32) int32
	GetCursorInfo            func(info unsafe.Pointer) int32
	GetIconInfo              func(hIcon uintptr, info unsafe.Pointer) int32
	DrawIconEx               func(hdc uintptr, x, y int32, hIcon uintptr, cx, cy int32, step uint32, hbr uintptr, flags uint32) int32
	GetDpiForSystem          func() uint32
	SetProcessDPIAware       func() int32

	// gdi32.dll
	CreateCompatibleDC     func(hdc uintptr) uintptr
	CreateCompatibleBitmap func(hdc uintptr, cx, cy int32) uintptr
	CreateDIBSection       func(hdc uintptr, bmi unsafe.Pointer, usage uint32, bits *unsafe.Pointer, hSection uintptr, offset uint32) uintptr
	SelectObject           func(hdc, obj uintptr) uintptr
	BitBlt                 func(dst uintptr, x, y, w, h int32, src uintptr, sx, sy int32, rop uint32) int32
	DeleteObject           func(obj uintptr) int32
	DeleteDC               func(hdc uintptr) int32
	GetDIBits              func(hdc, hbmp uintptr, start, lines uint32, bits unsafe.Pointer, bmi unsafe.Pointer, usage uint32) int32
	GetDeviceCaps          func(hdc uintptr, index int32) int32
}

// Load opens user32.dll and gdi32.dll and registers every entry point. The
// returned Bindings must be released with Close exactly once the engine is
// done — calling any capture operation after Close fails with a KindClosed
// error at the capture-engine layer, not here.
func Load() (*Bindings, error) {
	user32Handle, err := syscall.LoadLibrary("user32.dll")
	if err != nil {
		return nil, fmt.Errorf("winapi: load user32.dll: %w", err)
	}
	user32 := uintptr(user32Handle)
	gdi32Handle, err := syscall.LoadLibrary("gdi32.dll")
	if err != nil {
		syscall.FreeLibrary(user32Handle)
		return nil, fmt.Errorf("winapi: load gdi32.dll: %w", err)
	}
	gdi32 := uintptr(gdi32Handle)

	b := &Bindings{user32: user32, gdi32: gdi32}
	reg := func(fptr interface{}, lib uintptr, name string) {
		purego.RegisterLibFunc(fptr, lib, name)
	}

	reg(&b.GetWindowRect, user32, "GetWindowRect")
	reg(&b.GetDC, user32, "GetDC")
	reg(&b.GetDCEx, user32, "GetDCEx")
	reg(&b.ReleaseDC, user32, "ReleaseDC")
	reg(&b.FindWindowExW, user32, "FindWindowExW")
	reg(&b.GetWindowTextW, user32, "GetWindowTextW")
	reg(&b.GetClassNameW, user32, "GetClassNameW")
	reg(&b.IsWindowVisible, user32, "IsWindowVisible")
	reg(&b.GetWindowThreadProcessId, user32, "GetWindowThreadProcessId")
	reg(&b.GetWindowLongW, user32, "GetWindowLongW")
	reg(&b.GetDpiForWindow, user32, "GetDpiForWindow")
	reg(&b.PrintWindow, user32, "PrintWindow")
	reg(&b.GetCursorInfo, user32, "GetCursorInfo")
	reg(&b.GetIconInfo, user32, "GetIconInfo")
	reg(&b.DrawIconEx, user32, "DrawIconEx")
	reg(&b.GetDpiForSystem, user32, "GetDpiForSystem")
	reg(&b.SetProcessDPIAware, user32, "SetProcessDPIAware")

	reg(&b.CreateCompatibleDC, gdi32, "CreateCompatibleDC")
	reg(&b.CreateCompatibleBitmap, gdi32, "CreateCompatibleBitmap")
	reg(&b.CreateDIBSection, gdi32, "CreateDIBSection")
	reg(&b.SelectObject, gdi32, "SelectObject")
	reg(&b.BitBlt, gdi32, "BitBlt")
	reg(&b.DeleteObject, gdi32, "DeleteObject")
	reg(&b.DeleteDC, gdi32, "DeleteDC")
	reg(&b.GetDIBits, gdi32, "GetDIBits")
	reg(&b.GetDeviceCaps, gdi32, "GetDeviceCaps")

	return b, nil
}

// Close releases both loaded libraries. Idempotent: a second call is a
// no-op, matching spec.md §5's "double-close is idempotent" requirement.
func (b *Bindings) Close() error {
	var err error
	b.closeOnce.Do(func() {
		if b.gdi32 != 0 {
			if e := syscall.FreeLibrary(syscall.Handle(b.gdi32)); e != nil {
				err = e
			}
		}
		if b.user32 != 0 {
			if e := syscall.FreeLibrary(syscall.Handle(b.user32)); e != nil && err == nil {
				err = e
			}
		}
	})
	return err
}
