/*
Package lvimg is a library for converting icons into LVGL binary images for
small RGB565 displays.

Source images in any format registered with the image package are reduced
to a fixed header and a payload of packed 16-bit pixels, one .bin file per
icon, ready to be copied to the device and loaded with the cache package.
*/
package lvimg

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bodgit/lvimg/cache"
	lvimage "github.com/bodgit/lvimg/image"
	"github.com/disintegration/imaging"
	"github.com/ericpauley/go-quantize/quantize"
)

var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

const defaultWorkers = 4

// Options configures a Converter.
type Options struct {
	// Size resizes every icon before encoding. A zero dimension keeps
	// the aspect ratio, a zero Size leaves the icon alone.
	Size image.Point
	// Colors reduces every icon to at most this many colors. Zero
	// disables it.
	Colors int
	// Workers is the number of icons converted in parallel.
	Workers int
	// Force converts icons even if the catalog says they're unchanged.
	Force bool
}

type Converter struct {
	catalog *Catalog
	logger  *log.Logger
	opts    Options
}

// New returns a Converter. The catalog is optional.
func New(catalog *Catalog, logger *log.Logger, opts *Options) *Converter {
	c := &Converter{
		catalog: catalog,
		logger:  logger,
	}
	if opts != nil {
		c.opts = *opts
	}
	if c.opts.Workers < 1 {
		c.opts.Workers = defaultWorkers
	}
	return c
}

func supported(file string) bool {
	ext := strings.ToLower(filepath.Ext(file))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func Code(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (c *Converter) fingerprint(b []byte) string {
	h := sha1.New()
	h.Write(b)
	fmt.Fprintf(h, "%dx%d/%d", c.opts.Size.X, c.opts.Size.Y, c.opts.Colors)
	return fmt.Sprintf("%X", h.Sum(nil))
}

func (c *Converter) unchanged(code, sha, dst string) (bool, error) {
	if c.catalog == nil || c.opts.Force {
		return false, nil
	}

	e, err := c.catalog.Find(code)
	if err != nil || e == nil || e.SHA1 != sha {
		return false, err
	}

	if _, err := os.Stat(dst); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (c *Converter) prepare(m image.Image) image.Image {
	if c.opts.Size != (image.Point{}) {
		m = imaging.Resize(m, c.opts.Size.X, c.opts.Size.Y, imaging.Lanczos)
	}

	if c.opts.Colors > 0 {
		b := m.Bounds()
		q := quantize.MedianCutQuantizer{}
		pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, c.opts.Colors), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
		m = pm
	}

	return m
}

func writeIcon(file string, m image.Image) (int, error) {
	b := new(bytes.Buffer)
	if err := lvimage.Encode(b, m); err != nil {
		return 0, err
	}

	if err := ioutil.WriteFile(file, b.Bytes(), 0644); err != nil {
		os.Remove(file)
		return 0, fmt.Errorf("%w: %v", lvimage.ErrWrite, err)
	}

	return b.Len(), nil
}

// ConvertFile converts the source image src and writes the result to dst.
// If the catalog shows the same source was already converted to dst with
// the same options, nothing is written and the returned bool is true.
func (c *Converter) ConvertFile(src, dst string) (*Entry, bool, error) {
	b, err := ioutil.ReadFile(src)
	if err != nil {
		return nil, false, err
	}

	code := Code(src)
	sha := c.fingerprint(b)

	skip, err := c.unchanged(code, sha, dst)
	if err != nil {
		return nil, false, err
	}
	if skip {
		return nil, true, nil
	}

	m, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, false, err
	}

	m = c.prepare(m)

	size, err := writeIcon(dst, m)
	if err != nil {
		return nil, false, err
	}

	return &Entry{
		Code:      code,
		Class:     Classify(code),
		Source:    filepath.Base(src),
		SHA1:      sha,
		Width:     m.Bounds().Dx(),
		Height:    m.Bounds().Dy(),
		Size:      size,
		Converted: time.Now(),
	}, false, nil
}

func missingWeatherIcons(dir string) []string {
	var missing []string
	for _, code := range WeatherCodes() {
		if _, err := os.Stat(filepath.Join(dir, code+cache.Ext)); os.IsNotExist(err) {
			missing = append(missing, code)
		}
	}
	return missing
}
