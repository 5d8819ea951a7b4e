package bmp

import (
	"encoding/binary"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Structure is an owned, contiguous BMP byte buffer: file header + info
// header + optional palette + zero-filled pixel region, laid out exactly as
// spec.md §3 describes. InfoHeaderBytes and PixelData expose addressable
// subslices a native caller fills in place; neither slice is ever
// reallocated for the lifetime of Structure.
type Structure struct {
	buf      []byte
	pixelOff int
	infoOff  int
	bmiLen   int // info header + palette, the size GetDIBits/CreateDIBSection expect
	Width    int
	Height   int
	BitDepth BitDepth
	Stride   int
}

// Bytes returns the full BMP file: header, info header, palette, pixels.
func (s *Structure) Bytes() []byte { return s.buf }

// InfoHeaderBytes returns the BITMAPINFO-compatible prefix (info header +
// palette) used as the format descriptor for CreateDIBSection/GetDIBits.
func (s *Structure) InfoHeaderBytes() []byte { return s.buf[s.infoOff : s.infoOff+s.bmiLen] }

// PixelData returns the zero-filled pixel region a native call fills.
func (s *Structure) PixelData() []byte { return s.buf[s.pixelOff:] }

// template is the cached, immutable (file header + info header + palette)
// prefix for a given (width, height, bitDepth, paletteType). Build
// copies it into a fresh buffer on every call rather than handing the
// cached bytes out directly, so every capture still owns its own BMP
// buffer as spec.md §3 requires.
type template struct {
	prefix  []byte
	infoOff int
	bmiLen  int
	stride  int
}

type templateKey struct {
	width, height int
	bitDepth      BitDepth
	paletteType   PaletteType
}

// TemplateCache is the capacity-bounded cache spec.md §9 permits for BMP
// header templates, keyed by (width, height, bitDepth, paletteType) exactly
// as that section specifies. It holds only header+palette bytes, never
// native handles or pixel data, so eviction needs no release step.
type TemplateCache struct {
	mu    sync.Mutex
	cache *lru.Cache[templateKey, *template]
}

// NewTemplateCache creates a cache holding up to capacity templates.
func NewTemplateCache(capacity int) (*TemplateCache, error) {
	c, err := lru.New[templateKey, *template](capacity)
	if err != nil {
		return nil, fmt.Errorf("bmp: new template cache: %w", err)
	}
	return &TemplateCache{cache: c}, nil
}

// Clear empties the cache. Called by the capture engine's Close.
func (t *TemplateCache) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache.Purge()
}

func (t *TemplateCache) get(key templateKey) (*template, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cache.Get(key)
}

func (t *TemplateCache) put(key templateKey, tpl *template) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache.Add(key, tpl)
}

// Build assembles headers, palette and a zero-filled pixel region for the
// given geometry, exactly as spec.md §4.B specifies. cache may be nil, in
// which case every call re-derives the template; passing a shared
// *TemplateCache lets repeated same-geometry captures skip that work.
func Build(width, height int, bitDepth BitDepth, paletteType PaletteType, cache *TemplateCache) (*Structure, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("bmp: invalid dimensions %dx%d", width, height)
	}

	key := templateKey{width, height, bitDepth, paletteType}
	var tpl *template
	if cache != nil {
		if cached, ok := cache.get(key); ok {
			tpl = cached
		}
	}
	if tpl == nil {
		built, err := buildTemplate(width, height, bitDepth, paletteType)
		if err != nil {
			return nil, err
		}
		tpl = built
		if cache != nil {
			cache.put(key, tpl)
		}
	}

	stride := tpl.stride
	pixelLen := stride * height
	buf := make([]byte, len(tpl.prefix)+pixelLen)
	copy(buf, tpl.prefix)

	return &Structure{
		buf:      buf,
		pixelOff: len(tpl.prefix),
		infoOff:  tpl.infoOff,
		bmiLen:   tpl.bmiLen,
		Width:    width,
		Height:   height,
		BitDepth: bitDepth,
		Stride:   stride,
	}, nil
}

func buildTemplate(width, height int, bitDepth BitDepth, paletteType PaletteType) (*template, error) {
	colors := numColors(bitDepth)
	paletteBytes := colors * 4
	stride := Stride(width, bitDepth)
	pixelOffset := fileHeaderSize + infoHeaderSize + paletteBytes
	fileSize := pixelOffset + stride*height

	prefix := make([]byte, pixelOffset)

	fh := FileHeader{
		Type:    [2]byte{'B', 'M'},
		Size:    uint32(fileSize),
		OffBits: uint32(pixelOffset),
	}
	writeFileHeader(prefix[0:fileHeaderSize], fh)

	ih := InfoHeader{
		Size:            infoHeaderSize,
		Width:           int32(width),
		Height:          int32(height), // positive: bottom-up storage
		Planes:          1,
		BitCount:        uint16(bitDepth),
		Compression:     CompressionRGB,
		SizeImage:       uint32(stride * height),
		ColorsUsed:      uint32(colors),
		ColorsImportant: uint32(colors),
	}
	infoOff := fileHeaderSize
	writeInfoHeader(prefix[infoOff:infoOff+infoHeaderSize], ih)

	palette := Palette(bitDepth, paletteType)
	paletteOff := infoOff + infoHeaderSize
	for i, c := range palette {
		enc := c.Encode()
		copy(prefix[paletteOff+i*4:paletteOff+i*4+4], enc[:])
	}

	return &template{
		prefix:  prefix,
		infoOff: infoOff,
		bmiLen:  infoHeaderSize + paletteBytes,
		stride:  stride,
	}, nil
}

func writeFileHeader(dst []byte, h FileHeader) {
	dst[0], dst[1] = h.Type[0], h.Type[1]
	binary.LittleEndian.PutUint32(dst[2:6], h.Size)
	binary.LittleEndian.PutUint16(dst[6:8], h.Reserved1)
	binary.LittleEndian.PutUint16(dst[8:10], h.Reserved2)
	binary.LittleEndian.PutUint32(dst[10:14], h.OffBits)
}

func writeInfoHeader(dst []byte, h InfoHeader) {
	binary.LittleEndian.PutUint32(dst[0:4], h.Size)
	binary.LittleEndian.PutUint32(dst[4:8], uint32(h.Width))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(h.Height))
	binary.LittleEndian.PutUint16(dst[12:14], h.Planes)
	binary.LittleEndian.PutUint16(dst[14:16], h.BitCount)
	binary.LittleEndian.PutUint32(dst[16:20], h.Compression)
	binary.LittleEndian.PutUint32(dst[20:24], h.SizeImage)
	binary.LittleEndian.PutUint32(dst[24:28], uint32(h.XPelsPerMeter))
	binary.LittleEndian.PutUint32(dst[28:32], uint32(h.YPelsPerMeter))
	binary.LittleEndian.PutUint32(dst[32:36], h.ColorsUsed)
	binary.LittleEndian.PutUint32(dst[36:40], h.ColorsImportant)
}
