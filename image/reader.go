package image

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"io/ioutil"

	"github.com/bodgit/lvimg/rgb565"
)

// Descriptor is a decoded record. Data is the raw RGB565 payload and
// normally aliases the buffer that was parsed, so the buffer must not be
// modified while the descriptor is in use.
//
// Descriptor implements image.Image.
type Descriptor struct {
	Width  int
	Height int
	Format uint8
	Stride int
	Data   []byte
}

// Len returns the payload length in bytes.
func (d *Descriptor) Len() int {
	return len(d.Data)
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (d *Descriptor) PixOffset(x, y int) int {
	return y*d.Stride + x*bytesPerPixel
}

// Pixel returns the packed color at (x, y).
func (d *Descriptor) Pixel(x, y int) uint16 {
	return rgb565.Get(d.Data[d.PixOffset(x, y):])
}

// Bounds implements image.Image.
func (d *Descriptor) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.Width, d.Height)
}

// ColorModel implements image.Image.
func (d *Descriptor) ColorModel() color.Model {
	return rgb565.Model
}

// At implements image.Image.
func (d *Descriptor) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(d.Bounds())) {
		return rgb565.Color(0)
	}
	return rgb565.Color(d.Pixel(x, y))
}

func parseHeader(b []byte) (Header, error) {
	var h Header
	if err := h.UnmarshalBinary(b); err != nil {
		return h, fmt.Errorf("%w: %d bytes", err, len(b))
	}

	if h.Magic != Magic {
		return h, fmt.Errorf("%w: %#02x", ErrBadMagic, h.Magic)
	}

	if h.ColorFormat != ColorFormatRGB565 {
		return h, fmt.Errorf("%w: %#02x", ErrUnsupportedFormat, h.ColorFormat)
	}

	if h.Width == 0 || h.Height == 0 {
		return h, fmt.Errorf("%w: %dx%d", ErrSizeMismatch, h.Width, h.Height)
	}

	if int(h.Stride) != int(h.Width)*bytesPerPixel {
		return h, fmt.Errorf("%w: stride %d for width %d", ErrSizeMismatch, h.Stride, h.Width)
	}

	return h, nil
}

// Parse validates the record in b and returns a descriptor referencing its
// payload. No copy is made.
func Parse(b []byte) (*Descriptor, error) {
	h, err := parseHeader(b)
	if err != nil {
		return nil, err
	}

	if got := len(b) - HeaderSize; got != h.PayloadSize() {
		return nil, fmt.Errorf("%w: expected %d payload bytes, got %d", ErrSizeMismatch, h.PayloadSize(), got)
	}

	return &Descriptor{
		Width:  int(h.Width),
		Height: int(h.Height),
		Format: h.ColorFormat,
		Stride: int(h.Stride),
		Data:   b[HeaderSize:],
	}, nil
}

// Decode reads an LVGL binary image from r and returns it as an
// image.Image. The underlying type is *Descriptor.
func Decode(r io.Reader) (image.Image, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}

	d, err := Parse(b)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DecodeConfig returns the color model and dimensions of an LVGL binary
// image without reading the payload.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var tmp [HeaderSize]byte
	n, err := io.ReadFull(r, tmp[:])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return image.Config{}, err
	}

	h, err := parseHeader(tmp[:n])
	if err != nil {
		return image.Config{}, err
	}

	return image.Config{
		ColorModel: rgb565.Model,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}
