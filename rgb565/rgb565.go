/*
Package rgb565 implements the 16-bit packed color encoding used by LVGL
true color images.

Each color is stored as RRRRRGGGGGGBBBBB, 5 bits of red, 6 bits of green and
5 bits of blue, taken from the top bits of each 8-bit channel with no
rounding. Packed values are serialized in little-endian byte order.
*/
package rgb565

import (
	"encoding/binary"
	"image/color"
)

// Size is the number of bytes used by one packed color.
const Size = 2

const (
	mask5 = 0x1f
	mask6 = 0x3f
)

// Pack converts an 8-bit RGB triple to its packed 5-6-5 form.
func Pack(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// Unpack expands a packed color back to 8-bit channels. The low bits lost
// by Pack are filled by replicating the high bits so that full intensity
// maps back to 0xff.
func Unpack(c uint16) (r, g, b uint8) {
	r5 := uint8(c>>11) & mask5
	g6 := uint8(c>>5) & mask6
	b5 := uint8(c) & mask5
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// Put writes the packed color c into b, which must be at least Size bytes.
func Put(b []byte, c uint16) {
	binary.LittleEndian.PutUint16(b, c)
}

// Get reads a packed color from the first Size bytes of b.
func Get(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

// Color is a packed 5-6-5 color. It implements the color.Color interface.
type Color uint16

// RGBA implements color.Color. Colors are always fully opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := Unpack(uint16(c))
	r = uint32(r8)
	r |= r << 8
	g = uint32(g8)
	g |= g << 8
	b = uint32(b8)
	b |= b << 8
	return r, g, b, 0xffff
}

// Model converts any color to a packed Color, ignoring alpha.
var Model = color.ModelFunc(func(c color.Color) color.Color {
	if _, ok := c.(Color); ok {
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color(Pack(n.R, n.G, n.B))
})
