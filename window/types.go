// Package window enumerates top-level windows, resolves a polymorphic
// window identifier to a handle, and answers DPI-scaled geometry queries.
package window

import "fmt"

// Handle is a borrowed, OS-owned window handle. The package never allocates
// or frees one; it only reads from windows identified by one.
type Handle uintptr

// Rect is a device-pixel rectangle. For a valid capture region, Right >
// Left and Bottom > Top.
type Rect struct {
	Left, Top, Right, Bottom int32
}

// Width and Height report Rect's dimensions; negative or zero values
// indicate an invalid region (see Validate).
func (r Rect) Width() int32  { return r.Right - r.Left }
func (r Rect) Height() int32 { return r.Bottom - r.Top }

// Validate returns ErrInvalidRegion unless Right > Left and Bottom > Top.
func (r Rect) Validate() error {
	if r.Right <= r.Left || r.Bottom <= r.Top {
		return fmt.Errorf("window: invalid region %+v: %w", r, ErrInvalidRegion)
	}
	return nil
}

// IdentifierKind tags which field of Identifier is populated.
type IdentifierKind int

const (
	ByTitle IdentifierKind = iota
	ByClassName
	ByProcessID
	ByHandle
)

// Identifier is a tagged union of exactly one of: title, className,
// processID, handle. Matching is case-sensitive exact equality for title
// and className, numeric equality for processID, identity for handle.
type Identifier struct {
	Kind      IdentifierKind
	Title     string
	ClassName string
	ProcessID uint32
	Handle    Handle
}

// ByTitleID, ByClassNameID, ByProcessIDID and ByHandleID build an
// Identifier of the named kind.
func ByTitleID(title string) Identifier     { return Identifier{Kind: ByTitle, Title: title} }
func ByClassNameID(class string) Identifier { return Identifier{Kind: ByClassName, ClassName: class} }
func ByProcessIDID(pid uint32) Identifier   { return Identifier{Kind: ByProcessID, ProcessID: pid} }
func ByHandleID(h Handle) Identifier        { return Identifier{Kind: ByHandle, Handle: h} }

// Style holds the booleans derivable from a window's style bits.
type Style struct {
	IsMinimized bool
	IsMaximized bool
	IsDisabled  bool
}

// Info is a point-in-time snapshot produced by Enumerate. The handle may
// outlive or be invalidated independently of the snapshot; this package
// does not observe such invalidation and surfaces the resulting native
// failure as an error on next use.
type Info struct {
	Handle    Handle
	Title     string
	ClassName string
	ProcessID uint32
	Position  Rect
	Style     Style
}

// Win32 style bits read from GWL_STYLE (offset -16), used to derive Style.
const (
	wsMinimize = 0x20000000
	wsMaximize = 0x01000000
	wsDisabled = 0x08000000
)

func styleFromBits(bits int32) Style {
	b := uint32(bits)
	return Style{
		IsMinimized: b&wsMinimize != 0,
		IsMaximized: b&wsMaximize != 0,
		IsDisabled:  b&wsDisabled != 0,
	}
}
