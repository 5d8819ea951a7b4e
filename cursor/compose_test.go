package cursor

import (
	"testing"
	"unsafe"

	"github.com/soocke/wincapture/winapi"
)

func TestComposeSkipsWhenNotShowing(t *testing.T) {
	b := &winapi.Bindings{}
	var drew bool
	b.GetCursorInfo = func(info unsafe.Pointer) int32 {
		ci := (*winapi.CursorInfo)(info)
		*ci = winapi.CursorInfo{Flags: 0} // neither bit set
		return 1
	}
	b.DrawIconEx = func(hdc uintptr, x, y int32, hIcon uintptr, cx, cy int32, step uint32, hbr uintptr, flags uint32) int32 {
		drew = true
		return 1
	}

	if err := Compose(b, 1, 0, 0); err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if drew {
		t.Fatal("DrawIconEx should not have been called")
	}
}

func TestComposeDrawsWhenShowing(t *testing.T) {
	b := &winapi.Bindings{}
	var drawnX, drawnY int32
	var drew bool

	b.GetCursorInfo = func(info unsafe.Pointer) int32 {
		ci := (*winapi.CursorInfo)(info)
		*ci = winapi.CursorInfo{
			Flags:   winapi.CursorShowing | winapi.CursorSuppressed,
			HCursor: 99,
			PtX:     110,
			PtY:     60,
		}
		return 1
	}
	b.GetIconInfo = func(hIcon uintptr, info unsafe.Pointer) int32 {
		ii := (*winapi.IconInfo)(info)
		*ii = winapi.IconInfo{XHotspot: 5, YHotspot: 5}
		return 1
	}
	b.DeleteObject = func(obj uintptr) int32 { return 1 }
	b.SetProcessDPIAware = func() int32 { return 1 }
	b.GetDpiForSystem = func() uint32 { return 96 }
	b.DrawIconEx = func(hdc uintptr, x, y int32, hIcon uintptr, cx, cy int32, step uint32, hbr uintptr, flags uint32) int32 {
		drew = true
		drawnX, drawnY = x, y
		return 1
	}

	if err := Compose(b, 1, 10, 10); err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !drew {
		t.Fatal("DrawIconEx should have been called")
	}
	if drawnX != 95 || drawnY != 45 {
		t.Fatalf("drawn at (%d,%d), want (95,45)", drawnX, drawnY)
	}
}

func TestComposeFailsWhenCursorInfoUnavailable(t *testing.T) {
	b := &winapi.Bindings{}
	b.GetCursorInfo = func(info unsafe.Pointer) int32 { return 0 }

	if err := Compose(b, 1, 0, 0); err != ErrCursorUnavailable {
		t.Fatalf("err = %v, want ErrCursorUnavailable", err)
	}
}
