/*
Package image implements an LVGL binary image decoder and encoder.

The format is a fixed 12 byte header followed by the uncompressed pixel
payload. Every pixel is a 16-bit RGB565 value stored little-endian, rows are
written top to bottom with no padding so the stride is always twice the
width.

	offset  size  field
	0       1     magic (0x19)
	1       1     color format (0x04, RGB565)
	2       2     flags (0)
	4       2     width
	6       2     height
	8       2     stride (width * 2)
	10      2     reserved (0)

All multi-byte fields are little-endian. A record is only valid when the
payload length is exactly stride * height bytes.
*/
package image

import (
	"encoding/binary"
	"errors"
)

const (
	// Magic is the first byte of every record.
	Magic = 0x19

	// ColorFormatRGB565 is the only supported color format.
	ColorFormatRGB565 = 0x04

	// HeaderSize is the size in bytes of the fixed header.
	HeaderSize = 12

	bytesPerPixel = 2
	maxWidth      = 0xffff / bytesPerPixel
	maxHeight     = 0xffff
)

var (
	// ErrInvalidInput is returned when the source image is empty or too
	// large to describe in the header.
	ErrInvalidInput = errors.New("image: invalid input image")
	// ErrWrite is returned when the encoded record cannot be written.
	ErrWrite = errors.New("image: write failed")
	// ErrTruncated is returned when there are fewer bytes than a header.
	ErrTruncated = errors.New("image: truncated header")
	// ErrBadMagic is returned when the magic byte does not match.
	ErrBadMagic = errors.New("image: bad magic")
	// ErrUnsupportedFormat is returned for any color format except RGB565.
	ErrUnsupportedFormat = errors.New("image: unsupported color format")
	// ErrSizeMismatch is returned when the stride or payload length
	// disagree with the dimensions.
	ErrSizeMismatch = errors.New("image: size mismatch")
)

// Header is the fixed record header. It implements the
// encoding.BinaryMarshaler and encoding.BinaryUnmarshaler interfaces.
type Header struct {
	Magic       uint8
	ColorFormat uint8
	Flags       uint16
	Width       uint16
	Height      uint16
	Stride      uint16
	Reserved    uint16
}

func newHeader(width, height int) Header {
	return Header{
		Magic:       Magic,
		ColorFormat: ColorFormatRGB565,
		Width:       uint16(width),
		Height:      uint16(height),
		Stride:      uint16(width * bytesPerPixel),
	}
}

// PayloadSize returns the number of payload bytes the header describes.
func (h Header) PayloadSize() int {
	return int(h.Stride) * int(h.Height)
}

func (h Header) put(b []byte) {
	b[0] = h.Magic
	b[1] = h.ColorFormat
	binary.LittleEndian.PutUint16(b[2:], h.Flags)
	binary.LittleEndian.PutUint16(b[4:], h.Width)
	binary.LittleEndian.PutUint16(b[6:], h.Height)
	binary.LittleEndian.PutUint16(b[8:], h.Stride)
	binary.LittleEndian.PutUint16(b[10:], h.Reserved)
}

// MarshalBinary encodes the header into its 12 byte form
func (h Header) MarshalBinary() ([]byte, error) {
	b := make([]byte, HeaderSize)
	h.put(b)
	return b, nil
}

// UnmarshalBinary decodes the header from the first HeaderSize bytes of b.
// Only the length is checked, field validation is left to Parse.
func (h *Header) UnmarshalBinary(b []byte) error {
	if len(b) < HeaderSize {
		return ErrTruncated
	}
	h.Magic = b[0]
	h.ColorFormat = b[1]
	h.Flags = binary.LittleEndian.Uint16(b[2:])
	h.Width = binary.LittleEndian.Uint16(b[4:])
	h.Height = binary.LittleEndian.Uint16(b[6:])
	h.Stride = binary.LittleEndian.Uint16(b[8:])
	h.Reserved = binary.LittleEndian.Uint16(b[10:])
	return nil
}
