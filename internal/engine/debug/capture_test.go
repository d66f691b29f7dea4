package debug

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/prism/internal/engine/framebuffer"
	"github.com/Faultbox/prism/internal/engine/gpu"
	"github.com/Faultbox/prism/internal/engine/gpu/gputest"
	"github.com/Faultbox/prism/internal/engine/render"
)

func fixedClock() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }

func decode(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestFromPixelsFlips(t *testing.T) {
	dir := t.TempDir()
	c := NewCapture(dir, "shot", 1)
	c.now = fixedClock

	// 1x2 image: bottom row red, top row blue (GL order: bottom first).
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	path, err := c.FromPixels(pixels, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shot_2024-05-01_12-30-00.000.png"), path)

	img := decode(t, path)
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, color.RGBAModel.Convert(img.At(0, 0)))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, color.RGBAModel.Convert(img.At(0, 1)))
}

func TestFromPixelsSizeMismatch(t *testing.T) {
	c := NewCapture(t.TempDir(), "shot", 1)
	_, err := c.FromPixels(make([]byte, 7), 1, 2)
	assert.ErrorContains(t, err, "size mismatch")
}

func TestScaledCapture(t *testing.T) {
	c := NewCapture(t.TempDir(), "half", 0.5)
	path, err := c.FromPixels(make([]byte, 64*32*4), 64, 32)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 16), decode(t, path).Bounds())

	assert.Equal(t, image.Rect(0, 0, 1, 1), Scale(image.NewRGBA(image.Rect(0, 0, 2, 2)), 0.01).Bounds())
}

func TestCaptureTarget(t *testing.T) {
	dev := gputest.New()
	fb, err := framebuffer.New(dev, gpu.ShapeFlat, 8, 4)
	require.NoError(t, err)
	_, err = fb.AddLayer(gpu.LayerColor, gpu.ReadWrite, gpu.FilterLinear)
	require.NoError(t, err)
	tgt := render.NewTarget("off", 0, fb)
	tgt.SetCamera("main")
	tgt.SetTags("x")
	require.NoError(t, tgt.Init())

	c := NewCapture(t.TempDir(), "off", 1)
	path, err := c.Target(tgt)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), decode(t, path).Bounds())
	assert.Len(t, dev.Filter(gputest.OpReadPixels), 1)
}
