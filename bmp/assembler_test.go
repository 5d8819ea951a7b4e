package bmp

import (
	"encoding/binary"
	"testing"
)

func TestBuildProducesWellFormedHeaders(t *testing.T) {
	s, err := Build(4, 3, Depth24, Halftone, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	buf := s.Bytes()
	if buf[0] != 'B' || buf[1] != 'M' {
		t.Fatalf("signature = %q", buf[0:2])
	}

	offBits := binary.LittleEndian.Uint32(buf[10:14])
	infoSize := binary.LittleEndian.Uint32(buf[14:18])
	width := int32(binary.LittleEndian.Uint32(buf[18:22]))
	height := int32(binary.LittleEndian.Uint32(buf[22:26]))
	bitCount := binary.LittleEndian.Uint16(buf[28:30])

	if infoSize != 40 {
		t.Fatalf("infoSize = %d, want 40", infoSize)
	}
	if width != 4 || height != 3 {
		t.Fatalf("dims = %dx%d, want 4x3", width, height)
	}
	if bitCount != 24 {
		t.Fatalf("bitCount = %d, want 24", bitCount)
	}
	if offBits != uint32(14+40) { // no palette at 24-bit
		t.Fatalf("offBits = %d, want %d", offBits, 14+40)
	}
	if s.Stride != Stride(4, Depth24) {
		t.Fatalf("Stride = %d, want %d", s.Stride, Stride(4, Depth24))
	}
	if len(s.PixelData()) != s.Stride*3 {
		t.Fatalf("PixelData len = %d, want %d", len(s.PixelData()), s.Stride*3)
	}
}

func TestBuild8BitIncludesPalette(t *testing.T) {
	s, err := Build(2, 2, Depth8, Grayscale, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	buf := s.Bytes()
	offBits := binary.LittleEndian.Uint32(buf[10:14])
	if offBits != uint32(14+40+256*4) {
		t.Fatalf("offBits = %d, want %d", offBits, 14+40+256*4)
	}

	// Palette entry 128 should be mid-gray: (128, 128, 128) in BGRA order.
	paletteOff := 14 + 40 + 128*4
	if buf[paletteOff] != 128 || buf[paletteOff+1] != 128 || buf[paletteOff+2] != 128 {
		t.Fatalf("palette[128] = %v, want [128 128 128 0]", buf[paletteOff:paletteOff+4])
	}
}

func TestBuildRejectsNonPositiveDimensions(t *testing.T) {
	if _, err := Build(0, 5, Depth24, Halftone, nil); err == nil {
		t.Fatal("expected an error for width 0")
	}
	if _, err := Build(5, -1, Depth24, Halftone, nil); err == nil {
		t.Fatal("expected an error for negative height")
	}
}

func TestBuildReusesCachedTemplate(t *testing.T) {
	cache, err := NewTemplateCache(4)
	if err != nil {
		t.Fatalf("NewTemplateCache: %v", err)
	}

	first, err := Build(8, 6, Depth24, Halftone, cache)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := Build(8, 6, Depth24, Halftone, cache)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Every Build call must own its own buffer, even when the header
	// template was served from cache.
	first.PixelData()[0] = 0xFF
	if second.PixelData()[0] == 0xFF {
		t.Fatal("second Structure shares a buffer with the first")
	}

	if string(first.InfoHeaderBytes()) != string(second.InfoHeaderBytes()) {
		t.Fatal("cached template produced different header bytes across calls")
	}
}

func TestBuildRoundTripsThroughDecode(t *testing.T) {
	s, err := Build(3, 2, Depth24, Halftone, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	pixels := s.PixelData()
	for i := range pixels {
		pixels[i] = byte(i + 1)
	}

	img, err := Decode(s.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != 3 || img.Height != 2 {
		t.Fatalf("decoded size = %dx%d, want 3x2", img.Width, img.Height)
	}
}
