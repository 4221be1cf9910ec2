package image

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/bodgit/lvimg/rgb565"
)

// BlackToWhite maps pure black to pure white and leaves every other color
// alone. Encode applies it to every pixel so that black icon artwork stays
// visible on displays that render black as blank.
func BlackToWhite(r, g, b uint8) (uint8, uint8, uint8) {
	if r == 0 && g == 0 && b == 0 {
		return 0xff, 0xff, 0xff
	}
	return r, g, b
}

type encoder struct {
	w io.Writer
}

func (e *encoder) encode(m image.Image) error {
	bounds := m.Bounds()
	h := newHeader(bounds.Dx(), bounds.Dy())

	buf := make([]byte, HeaderSize+h.PayloadSize())
	h.put(buf)

	i := HeaderSize
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// Stored color channels, alpha is dropped rather than premultiplied
			c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
			rgb565.Put(buf[i:], rgb565.Pack(BlackToWhite(c.R, c.G, c.B)))
			i += rgb565.Size
		}
	}

	n, err := e.w.Write(buf)
	if err == nil && n != len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	return nil
}

// Encode writes the Image m to w in LVGL binary image format. The whole
// record is built in memory and handed to w in a single Write.
func Encode(w io.Writer, m image.Image) error {
	if m == nil {
		return fmt.Errorf("%w: no image", ErrInvalidInput)
	}

	b := m.Bounds()
	if b.Empty() {
		return fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	if b.Dx() > maxWidth || b.Dy() > maxHeight {
		return fmt.Errorf("%w: image is %dx%d, limit is %dx%d", ErrInvalidInput, b.Dx(), b.Dy(), maxWidth, maxHeight)
	}

	e := encoder{w: w}

	return e.encode(m)
}
