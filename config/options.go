// Package config holds the validated options the capture engine is
// constructed with. It does no file or environment I/O: spec.md §6 rules
// out filesystem access and persisted state for this module.
package config

import "github.com/soocke/wincapture/bmp"

// CaptureOptions configures a capture.Engine, per spec.md §3.
type CaptureOptions struct {
	BitDepth      bmp.BitDepth
	PaletteType   bmp.PaletteType
	IncludeCursor bool
}

// DefaultOptions returns {BitDepth: 24, PaletteType: Halftone,
// IncludeCursor: true}, the defaults spec.md §3 names.
func DefaultOptions() CaptureOptions {
	return CaptureOptions{
		BitDepth:      bmp.Depth24,
		PaletteType:   bmp.Halftone,
		IncludeCursor: true,
	}
}

// Validate normalizes a zero BitDepth to 24 and rejects an unsupported bit
// depth; PaletteType and IncludeCursor are left as given. Grounded on config.Config.Validate's
// clamp-to-default shape in the teacher repo, minus its JSON Load/Save
// (this module persists nothing).
func (o *CaptureOptions) Validate() error {
	switch o.BitDepth {
	case bmp.Depth1, bmp.Depth4, bmp.Depth8, bmp.Depth16, bmp.Depth24, bmp.Depth32:
	case 0:
		o.BitDepth = bmp.Depth24
	default:
		return &UnsupportedBitDepthError{BitDepth: o.BitDepth}
	}
	return nil
}

// UnsupportedBitDepthError reports a bit depth outside {1,4,8,16,24,32}.
type UnsupportedBitDepthError struct {
	BitDepth bmp.BitDepth
}

func (e *UnsupportedBitDepthError) Error() string {
	return "config: unsupported bit depth"
}
