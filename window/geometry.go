package window

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/soocke/wincapture/winapi"
)

// Window enumerates top-level windows and answers geometry queries about
// them. It borrows *winapi.Bindings for the lifetime of every call; it does
// not own or close them — the capture engine that constructs a Window also
// owns the Bindings and closes them exactly once.
type Window struct {
	bindings *winapi.Bindings
}

// New wraps bindings for window enumeration and geometry queries.
func New(bindings *winapi.Bindings) *Window {
	return &Window{bindings: bindings}
}

// ScreenRect returns {0, 0, DESKTOP_HORZRES, DESKTOP_VERTRES} read from the
// primary screen DC, per spec.md §4.D. The screen DC is acquired and
// released within this call.
func (w *Window) ScreenRect() (Rect, error) {
	hdc := w.bindings.GetDC(0)
	if hdc == 0 {
		return Rect{}, fmt.Errorf("window: GetDC(0): %w", ErrOSFailure)
	}
	defer w.bindings.ReleaseDC(0, hdc)

	horz := w.bindings.GetDeviceCaps(hdc, winapi.DesktopHorzRes)
	vert := w.bindings.GetDeviceCaps(hdc, winapi.DesktopVertRes)
	if horz <= 0 || vert <= 0 {
		return Rect{}, fmt.Errorf("window: GetDeviceCaps: %w", ErrOSFailure)
	}
	return Rect{Left: 0, Top: 0, Right: horz, Bottom: vert}, nil
}

// WindowRect resolves id to a handle, reads its raw OS rectangle, and
// returns it scaled by (dpi/96) with ceiling rounding applied independently
// to each edge, per spec.md §3/§4.D.
func (w *Window) WindowRect(id Identifier) (Rect, error) {
	handle, err := w.Resolve(id)
	if err != nil {
		return Rect{}, err
	}
	return w.windowRectForHandle(handle)
}

func (w *Window) windowRectForHandle(handle Handle) (Rect, error) {
	var raw winapi.RECT
	ok := w.bindings.GetWindowRect(uintptr(handle), unsafe.Pointer(&raw))
	if ok == 0 {
		return Rect{}, fmt.Errorf("window: GetWindowRect: %w", ErrOSFailure)
	}

	dpi := w.bindings.GetDpiForWindow(uintptr(handle))
	if dpi == 0 {
		return Rect{}, ErrDPIUnavailable
	}
	scale := float64(dpi) / 96.0

	return Rect{
		Left:   ceilScale(raw.Left, scale),
		Top:    ceilScale(raw.Top, scale),
		Right:  ceilScale(raw.Right, scale),
		Bottom: ceilScale(raw.Bottom, scale),
	}, nil
}

// ceilScale multiplies edge by scale and rounds up, independently of any
// other edge — spec.md §9 notes this does not guarantee (right-left) equals
// ceil(rawWidth*scale), and preserves that behavior deliberately.
func ceilScale(edge int32, scale float64) int32 {
	return int32(math.Ceil(float64(edge) * scale))
}
