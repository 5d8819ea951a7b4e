package bmp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// RGBImage is the decoder's output: a packed, top-down (row 0 = visual top)
// pixel buffer regardless of the source BMP's orientation. Channels is 3
// (RGB) unless the source bit depth was 32, in which case it is 4 (RGBA).
type RGBImage struct {
	Width    int
	Height   int
	Channels int
	Data     []byte
}

// Decode errors, named after the logical step that failed, per spec.md §7.
var (
	ErrInvalidBMP             = errors.New("bmp: invalid BMP signature")
	ErrUnsupportedCompression = errors.New("bmp: unsupported compression")
	ErrMalformedRLE           = errors.New("bmp: malformed RLE stream")
)

const (
	offPixelDataOffset = 10
	offInfoHeaderSize  = 14
	offWidth           = 18
	offHeight          = 22
	offBitCount        = 28
	offCompression     = 30
	offColorsUsed      = 46
	paletteBaseOffset  = 14 + 40
)

// Decode parses a BMP byte stream into an RGBImage, handling uncompressed,
// RLE4, RLE8 and BITFIELDS encodings at bit depths 1/4/8/16/24/32, per
// spec.md §4.G.
func Decode(data []byte) (*RGBImage, error) {
	if len(data) < 54 || data[0] != 'B' || data[1] != 'M' {
		return nil, ErrInvalidBMP
	}

	pixelOffset := int(binary.LittleEndian.Uint32(data[offPixelDataOffset:]))
	infoHeaderSize := int(binary.LittleEndian.Uint32(data[offInfoHeaderSize:]))
	width := int(int32(binary.LittleEndian.Uint32(data[offWidth:])))
	signedHeight := int(int32(binary.LittleEndian.Uint32(data[offHeight:])))
	bitDepth := BitDepth(binary.LittleEndian.Uint16(data[offBitCount:]))
	compression := binary.LittleEndian.Uint32(data[offCompression:])
	colorsUsed := int(binary.LittleEndian.Uint32(data[offColorsUsed:]))

	isTopDown := signedHeight < 0
	height := signedHeight
	if isTopDown {
		height = -height
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("bmp: invalid dimensions %dx%d", width, height)
	}

	if colorsUsed == 0 && bitDepth <= 8 {
		colorsUsed = 1 << uint(bitDepth)
	}

	channels := 3
	if bitDepth == Depth32 {
		channels = 4
	}
	out := &RGBImage{Width: width, Height: height, Channels: channels, Data: make([]byte, width*height*channels)}

	switch compression {
	case CompressionRGB:
		if err := decodeRGBInto(out, data, pixelOffset, width, height, bitDepth, isTopDown, colorsUsed); err != nil {
			return nil, err
		}
	case CompressionRLE8:
		if bitDepth != Depth8 {
			return nil, ErrUnsupportedCompression
		}
		idx, err := decodeRLE8(data, pixelOffset, width, height)
		if err != nil {
			return nil, err
		}
		expandIndexed(out, idx, width, height, isTopDown, paletteAt(data, colorsUsed))
	case CompressionRLE4:
		if bitDepth != Depth4 {
			return nil, ErrUnsupportedCompression
		}
		idx, err := decodeRLE4(data, pixelOffset, width, height)
		if err != nil {
			return nil, err
		}
		expandIndexed(out, idx, width, height, isTopDown, paletteAt(data, colorsUsed))
	case CompressionBitFields:
		if bitDepth != Depth16 && bitDepth != Depth32 {
			return nil, ErrUnsupportedCompression
		}
		if err := decodeBitFieldsInto(out, data, pixelOffset, infoHeaderSize, width, height, bitDepth, isTopDown); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnsupportedCompression
	}

	return out, nil
}

// paletteAt returns the colorsUsed BGRA palette entries immediately
// following the (always 40-byte) info header.
func paletteAt(data []byte, colorsUsed int) []byte {
	end := paletteBaseOffset + colorsUsed*4
	if end > len(data) {
		end = len(data)
	}
	return data[paletteBaseOffset:end]
}

func paletteLookup(palette []byte, index int) (r, g, b byte) {
	off := index * 4
	if off+2 >= len(palette) {
		return 0, 0, 0
	}
	return palette[off+2], palette[off+1], palette[off]
}

func storedRow(y, height int, isTopDown bool) int {
	if isTopDown {
		return y
	}
	return height - 1 - y
}

func decodeRGBInto(out *RGBImage, data []byte, pixelOffset, width, height int, bitDepth BitDepth, isTopDown bool, colorsUsed int) error {
	stride := Stride(width, bitDepth)
	var palette []byte
	if bitDepth <= Depth8 {
		palette = paletteAt(data, colorsUsed)
	}

	for y := 0; y < height; y++ {
		srcY := storedRow(y, height, isTopDown)
		rowStart := pixelOffset + srcY*stride
		rowEnd := rowStart + stride
		if rowEnd > len(data) {
			return fmt.Errorf("bmp: row %d out of bounds", srcY)
		}
		row := data[rowStart:rowEnd]

		for x := 0; x < width; x++ {
			off := (y*width + x) * out.Channels
			switch bitDepth {
			case Depth1:
				b := row[x/8]
				index := int((b >> (7 - uint(x%8))) & 1)
				r, g, bl := paletteLookup(palette, index)
				out.Data[off], out.Data[off+1], out.Data[off+2] = r, g, bl
			case Depth4:
				b := row[x/2]
				var nibble byte
				if x%2 == 0 {
					nibble = b >> 4
				} else {
					nibble = b & 0xF
				}
				r, g, bl := paletteLookup(palette, int(nibble))
				out.Data[off], out.Data[off+1], out.Data[off+2] = r, g, bl
			case Depth8:
				r, g, bl := paletteLookup(palette, int(row[x]))
				out.Data[off], out.Data[off+1], out.Data[off+2] = r, g, bl
			case Depth16:
				p := binary.LittleEndian.Uint16(row[x*2 : x*2+2])
				r := byte((uint32(p>>10) & 31) * 255 / 31)
				g := byte((uint32(p>>5) & 31) * 255 / 31)
				b := byte((uint32(p) & 31) * 255 / 31)
				out.Data[off], out.Data[off+1], out.Data[off+2] = r, g, b
			case Depth24:
				bl, g, r := row[x*3], row[x*3+1], row[x*3+2]
				out.Data[off], out.Data[off+1], out.Data[off+2] = r, g, bl
			case Depth32:
				bl, g, r, a := row[x*4], row[x*4+1], row[x*4+2], row[x*4+3]
				out.Data[off], out.Data[off+1], out.Data[off+2], out.Data[off+3] = r, g, bl, a
			}
		}
	}
	return nil
}

// expandIndexed palette-expands a stored-order index buffer (row 0 = first
// scanline in the byte stream) into out, applying the top-down/bottom-up
// flip the same way decodeRGBInto does.
func expandIndexed(out *RGBImage, idx []byte, width, height int, isTopDown bool, palette []byte) {
	for y := 0; y < height; y++ {
		srcY := storedRow(y, height, isTopDown)
		for x := 0; x < width; x++ {
			r, g, b := paletteLookup(palette, int(idx[srcY*width+x]))
			off := (y*width + x) * out.Channels
			out.Data[off], out.Data[off+1], out.Data[off+2] = r, g, b
		}
	}
}

// decodeRLE8 decodes a BI_RLE8 stream into a stored-order index buffer.
// Out-of-bounds writes are silently dropped; the read pointer still
// advances, per spec.md §4.G.
func decodeRLE8(data []byte, pixelOffset, width, height int) ([]byte, error) {
	idx := make([]byte, width*height)
	x, y := 0, 0
	p := pixelOffset
	n := len(data)

	put := func(xx, yy int, v byte) {
		if xx >= 0 && xx < width && yy >= 0 && yy < height {
			idx[yy*width+xx] = v
		}
	}

	for {
		if p+1 >= n {
			return nil, ErrMalformedRLE
		}
		count := data[p]
		value := data[p+1]
		p += 2

		if count > 0 {
			for i := 0; i < int(count); i++ {
				put(x+i, y, value)
			}
			x += int(count)
			continue
		}

		switch value {
		case 0: // end of line
			x = 0
			y++
		case 1: // end of bitmap
			return idx, nil
		case 2: // delta
			if p+1 >= n {
				return nil, ErrMalformedRLE
			}
			x += int(data[p])
			y += int(data[p+1])
			p += 2
		default: // absolute: N literal indices, word-padded
			lit := int(value)
			if p+lit > n {
				return nil, ErrMalformedRLE
			}
			for i := 0; i < lit; i++ {
				put(x+i, y, data[p+i])
			}
			p += lit
			x += lit
			if lit%2 == 1 {
				p++
			}
		}
	}
}

// decodeRLE4 decodes a BI_RLE4 stream into a stored-order index buffer.
func decodeRLE4(data []byte, pixelOffset, width, height int) ([]byte, error) {
	idx := make([]byte, width*height)
	x, y := 0, 0
	p := pixelOffset
	n := len(data)

	put := func(xx, yy int, v byte) {
		if xx >= 0 && xx < width && yy >= 0 && yy < height {
			idx[yy*width+xx] = v
		}
	}

	for {
		if p+1 >= n {
			return nil, ErrMalformedRLE
		}
		count := data[p]
		value := data[p+1]
		p += 2

		if count > 0 {
			hi := value >> 4
			lo := value & 0xF
			for j := 0; j < int(count); j++ {
				v := hi
				if j%2 == 1 {
					v = lo
				}
				put(x+j, y, v)
			}
			x += int(count)
			continue
		}

		switch value {
		case 0:
			x = 0
			y++
		case 1:
			return idx, nil
		case 2:
			if p+1 >= n {
				return nil, ErrMalformedRLE
			}
			x += int(data[p])
			y += int(data[p+1])
			p += 2
		default:
			lit := int(value)
			nbytes := (lit + 1) / 2
			if p+nbytes > n {
				return nil, ErrMalformedRLE
			}
			for j := 0; j < lit; j++ {
				b := data[p+j/2]
				v := b >> 4
				if j%2 == 1 {
					v = b & 0xF
				}
				put(x+j, y, v)
			}
			p += nbytes
			x += lit
			if nbytes%2 == 1 {
				p++
			}
		}
	}
}

// channelMask describes one BITFIELDS color channel: the bit mask, the
// shift to its lowest set bit, and the scale factor to stretch its value
// range to [0,255].
type channelMask struct {
	mask  uint32
	shift uint
	bits  uint
	scale float64
}

func newChannelMask(mask uint32) channelMask {
	if mask == 0 {
		return channelMask{}
	}
	shift := uint(0)
	for (mask>>shift)&1 == 0 {
		shift++
	}
	bits := uint(0)
	for m := mask >> shift; m != 0; m >>= 1 {
		if m&1 == 1 {
			bits++
		}
	}
	maxVal := (uint32(1) << bits) - 1
	return channelMask{mask: mask, shift: shift, bits: bits, scale: 255 / float64(maxVal)}
}

func (c channelMask) extract(pixel uint32) byte {
	if c.mask == 0 {
		return 0
	}
	raw := (pixel & c.mask) >> c.shift
	v := math.Ceil(float64(raw) * c.scale)
	if v > 255 {
		v = 255
	}
	return byte(v)
}

func decodeBitFieldsInto(out *RGBImage, data []byte, pixelOffset, infoHeaderSize, width, height int, bitDepth BitDepth, isTopDown bool) error {
	rMaskOff, gMaskOff, bMaskOff, aMaskOff := 54, 58, 62, 66
	if rMaskOff+4 > len(data) || gMaskOff+4 > len(data) || bMaskOff+4 > len(data) {
		return fmt.Errorf("bmp: BITFIELDS masks out of bounds")
	}
	rMask := binary.LittleEndian.Uint32(data[rMaskOff:])
	gMask := binary.LittleEndian.Uint32(data[gMaskOff:])
	bMask := binary.LittleEndian.Uint32(data[bMaskOff:])

	var aMask uint32
	haveAlphaMask := infoHeaderSize >= 56 || (bitDepth == Depth32 && aMaskOff+4 <= pixelOffset)
	if haveAlphaMask && aMaskOff+4 <= len(data) {
		aMask = binary.LittleEndian.Uint32(data[aMaskOff:])
	}

	if rMask == 0 && gMask == 0 && bMask == 0 {
		if bitDepth == Depth16 {
			rMask, gMask, bMask = 0x7C00, 0x03E0, 0x001F
		} else {
			bMask, gMask, rMask, aMask = 0xFF, 0xFF00, 0xFF0000, 0xFF000000
		}
	}

	rc, gc, bc, ac := newChannelMask(rMask), newChannelMask(gMask), newChannelMask(bMask), newChannelMask(aMask)

	stride := Stride(width, bitDepth)
	bytesPerPixel := int(bitDepth) / 8

	for y := 0; y < height; y++ {
		srcY := storedRow(y, height, isTopDown)
		rowStart := pixelOffset + srcY*stride
		rowEnd := rowStart + stride
		if rowEnd > len(data) {
			return fmt.Errorf("bmp: row %d out of bounds", srcY)
		}
		row := data[rowStart:rowEnd]

		for x := 0; x < width; x++ {
			var pixel uint32
			if bitDepth == Depth16 {
				pixel = uint32(binary.LittleEndian.Uint16(row[x*2 : x*2+2]))
			} else {
				pixel = binary.LittleEndian.Uint32(row[x*bytesPerPixel : x*bytesPerPixel+4])
			}

			off := (y*width + x) * out.Channels
			out.Data[off] = rc.extract(pixel)
			out.Data[off+1] = gc.extract(pixel)
			out.Data[off+2] = bc.extract(pixel)
			if out.Channels == 4 {
				if aMask == 0 {
					out.Data[off+3] = 255
				} else {
					out.Data[off+3] = ac.extract(pixel)
				}
			}
		}
	}
	return nil
}
