// Package debug provides debug capture utilities.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Faultbox/prism/internal/engine/render"
	"github.com/Faultbox/prism/internal/logger"
)

// Capture writes render target readbacks to PNG files.
type Capture struct {
	outputDir string
	prefix    string
	scale     float64
	now       func() time.Time
}

// NewCapture creates a capture handler. scale resizes the image before
// saving; values <= 0 or 1 keep the native size.
func NewCapture(outputDir, prefix string, scale float64) *Capture {
	return &Capture{
		outputDir: outputDir,
		prefix:    prefix,
		scale:     scale,
		now:       time.Now,
	}
}

// SetOutputDir sets the output directory for captures.
func (c *Capture) SetOutputDir(dir string) {
	c.outputDir = dir
}

// Target reads back t's color plane and saves it.
func (c *Capture) Target(t *render.Target) (string, error) {
	pixels, err := t.FrameBuffer().ReadPixels()
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", t.Name(), err)
	}
	w, h := t.FrameBuffer().Size()
	path, err := c.FromPixels(pixels, int(w), int(h))
	if err != nil {
		return "", err
	}
	logger.Info("capture saved", zap.String("target", t.Name()), zap.String("path", path))
	return path, nil
}

// FromPixels saves raw RGBA pixel data with width*height*4 bytes.
// The image is flipped vertically since OpenGL has origin at bottom-left.
func (c *Capture) FromPixels(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		srcOffset := (height - 1 - y) * rowSize
		dstOffset := y * img.Stride
		copy(img.Pix[dstOffset:dstOffset+rowSize], pixels[srcOffset:srcOffset+rowSize])
	}

	return c.FromImage(img)
}

// FromImage saves img, scaled if configured.
func (c *Capture) FromImage(img image.Image) (string, error) {
	if c.scale > 0 && c.scale != 1 {
		img = Scale(img, c.scale)
	}

	if c.outputDir != "" {
		if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := c.Filename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}

// Scale resizes img by factor with bilinear filtering. The result is at
// least 1x1.
func Scale(img image.Image, factor float64) *image.RGBA {
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*factor))
	h := max(1, int(float64(b.Dy())*factor))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Filename generates a capture filename without saving.
func (c *Capture) Filename() string {
	timestamp := c.now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s.png", c.prefix, timestamp)
	if c.outputDir != "" {
		filename = filepath.Join(c.outputDir, filename)
	}
	return filename
}
