// Package winapi declares the Win32 entry points and structure layouts the
// capture engine drives directly: window geometry, device-context and GDI
// object lifecycle, cursor/icon introspection, and DPI queries.
package winapi

import "golang.org/x/sys/windows"

// Handle is a borrowed, OS-owned identifier. The package never allocates or
// frees the values it carries in this type — only HDC, HBITMAP, HICON and
// similar wrapped handles are ours to release.
type Handle = windows.Handle

// HWND identifies a top-level or child window.
type HWND windows.HWND

// HDC identifies a GDI device context.
type HDC uintptr

// HBITMAP identifies a GDI bitmap object, compatible or DIB-section backed.
type HBITMAP uintptr

// HGDIOBJ is the common handle type SelectObject/DeleteObject operate on.
type HGDIOBJ uintptr

// HICON identifies a cursor or icon resource.
type HICON uintptr

// RECT mirrors the Win32 RECT: four signed 32-bit edges, little-endian in
// memory, exactly as returned by GetWindowRect.
type RECT struct {
	Left, Top, Right, Bottom int32
}

// Dx and Dy report the raw (unscaled) width and height of r.
func (r RECT) Dx() int32 { return r.Right - r.Left }
func (r RECT) Dy() int32 { return r.Bottom - r.Top }

// POINT mirrors the Win32 POINT.
type POINT struct {
	X, Y int32
}

// RGBQuad is a single BGRA palette entry as Windows stores it: blue, green,
// red, reserved(alpha, always 0 for a DIB palette).
type RGBQuad struct {
	Blue, Green, Red, Reserved byte
}

// BitmapFileHeader is the 14-byte BMP file header.
type BitmapFileHeader struct {
	Type      [2]byte
	Size      uint32
	Reserved1 uint16
	Reserved2 uint16
	OffBits   uint32
}

// BitmapInfoHeader is the 40-byte BITMAPINFOHEADER.
type BitmapInfoHeader struct {
	Size            uint32
	Width           int32
	Height          int32
	Planes          uint16
	BitCount        uint16
	Compression     uint32
	SizeImage       uint32
	XPelsPerMeter   int32
	YPelsPerMeter   int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

// CursorInfo mirrors CURSORINFO: 24 bytes, {size, flags, hCursor, pt}.
type CursorInfo struct {
	Size    uint32
	Flags   uint32
	HCursor HICON
	PtX     int32
	PtY     int32
}

// CursorShowing and CursorSuppressed are CURSORINFO.flags bits. Per
// spec.md's Open Question, this package's caller (package cursor) tests
// both bits before drawing, preserving the source's stricter behavior.
const (
	CursorShowing    = 0x00000001
	CursorSuppressed = 0x00000002
)

// IconInfo mirrors ICONINFO: {fIcon, xHotspot, yHotspot, hbmMask, hbmColor}.
type IconInfo struct {
	FIcon    int32
	XHotspot uint32
	YHotspot uint32
	HbmMask  HBITMAP
	HbmColor HBITMAP
}

// Win32 constants the engine, window enumerator and cursor compositor need.
const (
	// GetDCEx flags.
	DCXWindow = 0x00000001
	DCXCache  = 0x00000002

	// BitBlt raster operations.
	SRCCopy    = 0x00CC0020
	CaptureBLT = 0x40000000

	// GetWindowLong offsets.
	GWLStyle = -16

	// PrintWindow flags.
	PWClientOnly        = 0x00000001
	PWRenderFullContent = 0x00000002

	// DrawIconEx flags.
	DINormal = 0x0003

	// GetDeviceCaps indices.
	DesktopHorzRes = 118
	DesktopVertRes = 117

	// GetDIBits / CreateDIBSection color table usage.
	DIBRGBColors = 0

	// BITMAPINFOHEADER.biCompression values.
	BIRGB       = 0
	BIRLE8      = 1
	BIRLE4      = 2
	BIBitFields = 3
)
