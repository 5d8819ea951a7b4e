package config

import (
	"testing"

	"github.com/soocke/wincapture/bmp"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if o.BitDepth != bmp.Depth24 || o.PaletteType != bmp.Halftone || !o.IncludeCursor {
		t.Fatalf("DefaultOptions = %+v", o)
	}
}

func TestValidateNormalizesZeroBitDepth(t *testing.T) {
	o := CaptureOptions{}
	if err := o.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if o.BitDepth != bmp.Depth24 {
		t.Fatalf("BitDepth = %d, want %d", o.BitDepth, bmp.Depth24)
	}
}

func TestValidateAcceptsEverySupportedDepth(t *testing.T) {
	for _, d := range []bmp.BitDepth{bmp.Depth1, bmp.Depth4, bmp.Depth8, bmp.Depth16, bmp.Depth24, bmp.Depth32} {
		o := CaptureOptions{BitDepth: d}
		if err := o.Validate(); err != nil {
			t.Fatalf("Validate(%d): %v", d, err)
		}
	}
}

func TestValidateRejectsUnsupportedDepth(t *testing.T) {
	o := CaptureOptions{BitDepth: 7}
	err := o.Validate()
	if err == nil {
		t.Fatal("expected an error for bit depth 7")
	}
	if _, ok := err.(*UnsupportedBitDepthError); !ok {
		t.Fatalf("err = %T, want *UnsupportedBitDepthError", err)
	}
}
