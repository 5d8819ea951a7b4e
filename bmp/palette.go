package bmp

// RGB is a palette color in natural (non-BGRA) component order. Encode
// converts it to the 4-byte BGRA-with-zero-alpha layout every BMP palette
// entry uses on disk.
type RGB struct {
	R, G, B byte
}

// Encode returns the BGRA-with-zero-reserved byte encoding of c, the layout
// spec.md §4.C requires for every palette entry this package emits.
func (c RGB) Encode() [4]byte {
	return [4]byte{c.B, c.G, c.R, 0}
}

// monoPalette is the 1-bit palette: black, white.
var monoPalette = []RGB{
	{0, 0, 0},
	{255, 255, 255},
}

// vga16Palette is the standard 16-color VGA palette in the exact order
// spec.md §4.C lists: black, dark-red, dark-green, dark-yellow, dark-blue,
// dark-magenta, dark-cyan, light-gray, dark-gray, red, green, yellow, blue,
// magenta, cyan, white.
var vga16Palette = []RGB{
	{0, 0, 0},
	{128, 0, 0},
	{0, 128, 0},
	{128, 128, 0},
	{0, 0, 128},
	{128, 0, 128},
	{0, 128, 128},
	{192, 192, 192},
	{128, 128, 128},
	{255, 0, 0},
	{0, 255, 0},
	{255, 255, 0},
	{0, 0, 255},
	{255, 0, 255},
	{0, 255, 255},
	{255, 255, 255},
}

// grayscalePalette returns the 256-entry 8-bit grayscale ramp: i -> (i,i,i).
func grayscalePalette() []RGB {
	p := make([]RGB, 256)
	for i := 0; i < 256; i++ {
		p[i] = RGB{byte(i), byte(i), byte(i)}
	}
	return p
}

// halftoneStandardColors are the first 20 entries of the Windows halftone
// palette: the system/standard colors preceding the 6x6x6 color cube.
var halftoneStandardColors = []RGB{
	{0, 0, 0}, {128, 0, 0}, {0, 128, 0}, {128, 128, 0},
	{0, 0, 128}, {128, 0, 128}, {0, 128, 128}, {192, 192, 192},
	{192, 220, 192}, {166, 202, 240}, {255, 251, 240}, {160, 160, 164},
	{128, 128, 128}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
	{0, 0, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
}

// cubeComponents are the six component values the 6x6x6 halftone color cube
// iterates over.
var cubeComponents = [6]byte{0, 51, 102, 153, 204, 255}

// halftonePalette returns the 256-entry Windows "halftone" palette: 20
// standard colors, then a 6x6x6 color cube (r outermost, g, b innermost),
// then a 20-entry grayscale ramp at indices 236..255 with
// value = round(i*255/19).
func halftonePalette() []RGB {
	p := make([]RGB, 256)
	copy(p, halftoneStandardColors)

	idx := 20
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p[idx] = RGB{cubeComponents[r], cubeComponents[g], cubeComponents[b]}
				idx++
			}
		}
	}

	for i := 0; i < 20; i++ {
		v := byte((i*255 + 19/2) / 19)
		p[236+i] = RGB{v, v, v}
	}
	return p
}

// grayscaleTable and halftoneTable are the 8-bit palettes, built once at
// package initialization.
var (
	grayscaleTable = grayscalePalette()
	halftoneTable  = halftonePalette()
)

// Palette returns the palette table for the given bit depth and, for
// bitDepth = 8, the given paletteType. Depths without a palette (16/24/32)
// return nil.
func Palette(bitDepth BitDepth, paletteType PaletteType) []RGB {
	switch bitDepth {
	case Depth1:
		return monoPalette
	case Depth4:
		return vga16Palette
	case Depth8:
		if paletteType == Grayscale {
			return grayscaleTable
		}
		return halftoneTable
	default:
		return nil
	}
}
