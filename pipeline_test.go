package lvimg

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"

	lvimage "github.com/bodgit/lvimg/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, file string, w, h int, c color.Color) {
	t.Helper()

	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, c)
		}
	}

	f, err := os.Create(file)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, m))
}

func readIcon(t *testing.T, file string) *lvimage.Descriptor {
	t.Helper()

	b, err := ioutil.ReadFile(file)
	require.NoError(t, err)

	d, err := lvimage.Parse(b)
	require.NoError(t, err)

	return d
}

func discard() *log.Logger {
	return log.New(ioutil.Discard, "", 0)
}

func TestConvertBatch(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "icons")

	writePNG(t, filepath.Join(in, "01d.png"), 2, 2, color.RGBA{0xff, 0, 0, 0xff})
	writePNG(t, filepath.Join(in, "10n.png"), 4, 3, color.RGBA{0, 0, 0xff, 0xff})
	writePNG(t, filepath.Join(in, "wifi_on.PNG"), 1, 1, color.Black)
	require.NoError(t, ioutil.WriteFile(filepath.Join(in, "broken.png"), []byte("not an image"), 0644))

	// Ignored, not a source image, hidden or not at the top level
	require.NoError(t, ioutil.WriteFile(filepath.Join(in, "README.txt"), []byte("hello"), 0644))
	writePNG(t, filepath.Join(in, ".hidden.png"), 1, 1, color.White)
	require.NoError(t, os.Mkdir(filepath.Join(in, "sub"), 0755))
	writePNG(t, filepath.Join(in, "sub", "02d.png"), 1, 1, color.White)

	c := New(nil, discard(), &Options{Workers: 2})
	report, err := c.Convert(context.Background(), in, out)
	require.NoError(t, err)

	assert.Equal(t, []string{"01d.png", "10n.png", "wifi_on.PNG"}, report.Converted)
	assert.Empty(t, report.Skipped)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "broken.png", report.Failed[0].File)
	assert.Error(t, report.Failed[0].Err)
	assert.Equal(t, 4, report.Total())
	assert.False(t, report.Empty())

	files, err := ioutil.ReadDir(out)
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"01d.bin", "10n.bin", "wifi_on.bin"}, names)

	d := readIcon(t, filepath.Join(out, "01d.bin"))
	assert.Equal(t, 2, d.Width)
	assert.Equal(t, 2, d.Height)
	assert.Equal(t, uint16(0xf800), d.Pixel(0, 0))

	d = readIcon(t, filepath.Join(out, "wifi_on.bin"))
	assert.Equal(t, uint16(0xffff), d.Pixel(0, 0))

	assert.NotContains(t, report.Missing, "01d")
	assert.NotContains(t, report.Missing, "10n")
	assert.Contains(t, report.Missing, "01n")
	assert.Len(t, report.Missing, len(WeatherCodes())-2)
}

func TestConvertEmpty(t *testing.T) {
	in := t.TempDir()
	require.NoError(t, ioutil.WriteFile(filepath.Join(in, "notes.txt"), []byte("hello"), 0644))

	c := New(nil, discard(), nil)
	report, err := c.Convert(context.Background(), in, filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.Empty(t, report.Failed)
}

func TestConvertMissingInput(t *testing.T) {
	c := New(nil, discard(), nil)

	_, err := c.Convert(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir())
	assert.True(t, errors.Is(err, os.ErrNotExist))

	file := filepath.Join(t.TempDir(), "file.png")
	writePNG(t, file, 1, 1, color.White)
	_, err = c.Convert(context.Background(), file, t.TempDir())
	assert.Error(t, err)
}

func TestConvertDuplicateCode(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	writePNG(t, filepath.Join(in, "01d.gif"), 1, 1, color.White)
	writePNG(t, filepath.Join(in, "01d.png"), 1, 1, color.White)

	c := New(nil, discard(), nil)
	report, err := c.Convert(context.Background(), in, out)
	require.NoError(t, err)

	assert.Equal(t, []string{"01d.gif"}, report.Converted)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "01d.png", report.Failed[0].File)
	assert.ErrorIs(t, report.Failed[0].Err, errDuplicate)
}

func TestConvertCancelled(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "01d.png"), 1, 1, color.White)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(nil, discard(), nil)
	_, err := c.Convert(ctx, in, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvertOptions(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	m := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			m.Set(x, y, color.NRGBA{uint8(x * 32), uint8(y * 32), 0x80, 0xff})
		}
	}
	f, err := os.Create(filepath.Join(in, "13d.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, m))
	require.NoError(t, f.Close())

	c := New(nil, discard(), &Options{Size: image.Pt(4, 0), Colors: 4})
	entry, skipped, err := c.ConvertFile(filepath.Join(in, "13d.png"), filepath.Join(out, "13d.bin"))
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Equal(t, "13d", entry.Code)
	assert.Equal(t, ClassWeather, entry.Class)
	assert.Equal(t, 4, entry.Width)
	assert.Equal(t, 4, entry.Height)
	assert.Equal(t, lvimage.HeaderSize+4*4*2, entry.Size)

	d := readIcon(t, filepath.Join(out, "13d.bin"))
	colors := make(map[uint16]struct{})
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			colors[d.Pixel(x, y)] = struct{}{}
		}
	}
	assert.LessOrEqual(t, len(colors), 4)
}

func TestConvertWriteError(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "01d.png"), 1, 1, color.White)

	c := New(nil, discard(), nil)
	_, _, err := c.ConvertFile(filepath.Join(in, "01d.png"), filepath.Join(t.TempDir(), "missing", "01d.bin"))
	assert.ErrorIs(t, err, lvimage.ErrWrite)
}

func TestConvertFileTransparent(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	m := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	m.SetNRGBA(0, 0, color.NRGBA{200, 100, 50, 0x80})
	m.SetNRGBA(1, 0, color.NRGBA{0, 128, 255, 0})
	m.SetNRGBA(2, 0, color.NRGBA{0, 0, 0, 0})
	f, err := os.Create(filepath.Join(in, "50n.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, m))
	require.NoError(t, f.Close())

	c := New(nil, discard(), nil)
	_, _, err = c.ConvertFile(filepath.Join(in, "50n.png"), filepath.Join(out, "50n.bin"))
	require.NoError(t, err)

	d := readIcon(t, filepath.Join(out, "50n.bin"))
	assert.Equal(t, uint16(0xcb26), d.Pixel(0, 0))
	assert.Equal(t, uint16(0x041f), d.Pixel(1, 0))
	// Transparent black is still black and gets turned white
	assert.Equal(t, uint16(0xffff), d.Pixel(2, 0))
}
