// Package framebuffer manages render destinations: the window's default
// framebuffer, off-screen 2D targets and 6-face cube targets, each with its
// own color and depth layers.
package framebuffer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/engine/gpu"
	"github.com/Faultbox/prism/internal/logger"
)

var (
	ErrInvalidSize        = errors.New("framebuffer: invalid size")
	ErrScreenLayer        = errors.New("framebuffer: screen framebuffer cannot own layers")
	ErrDuplicateDepth     = errors.New("framebuffer: depth layer already present")
	ErrAlreadyInitialized = errors.New("framebuffer: already initialized")
	ErrNotInitialized     = errors.New("framebuffer: not initialized")
	ErrIncomplete         = errors.New("framebuffer: incomplete")
	ErrNotSamplable       = errors.New("framebuffer: write-only layer is not samplable")
	ErrLayerNotFound      = errors.New("framebuffer: layer not found")
	ErrLayerReleased      = errors.New("framebuffer: layer released")
	ErrNotCube            = errors.New("framebuffer: not a cube framebuffer")
	ErrReleased           = errors.New("framebuffer: released")
)

// FrameBuffer owns zero or more color layers and at most one depth layer.
type FrameBuffer struct {
	dev    gpu.Device
	shape  gpu.Shape
	width  int32
	height int32

	handle gpu.Handle
	colors []*Layer
	depth  *Layer

	clearColor  bool
	clearDepth  bool
	clearRGBA   [4]float32
	initialized bool
	released    bool
	boundFace   gpu.CubeFace
	faceBound   bool
}

// New creates an unallocated framebuffer. Off-screen shapes need a positive
// size; cube shapes need square faces.
func New(dev gpu.Device, shape gpu.Shape, width, height int32) (*FrameBuffer, error) {
	if shape != gpu.ShapeScreen && (width <= 0 || height <= 0) {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if shape == gpu.ShapeCube && width != height {
		return nil, fmt.Errorf("%w: cube faces must be square, got %dx%d", ErrInvalidSize, width, height)
	}
	return &FrameBuffer{
		dev:        dev,
		shape:      shape,
		width:      width,
		height:     height,
		clearColor: true,
		clearDepth: true,
		clearRGBA:  [4]float32{0, 0, 0, 1},
	}, nil
}

// Shape returns the framebuffer shape.
func (fb *FrameBuffer) Shape() gpu.Shape { return fb.shape }

// Size returns the framebuffer size in pixels.
func (fb *FrameBuffer) Size() (width, height int32) { return fb.width, fb.height }

// Initialized reports whether Init succeeded.
func (fb *FrameBuffer) Initialized() bool { return fb.initialized }

// ColorLayers returns the number of color layers.
func (fb *FrameBuffer) ColorLayers() int { return len(fb.colors) }

// HasDepth reports whether a depth layer is registered.
func (fb *FrameBuffer) HasDepth() bool { return fb.depth != nil }

// AddLayer registers a layer and returns its index among layers of the
// same kind. Layers are allocated by Init.
func (fb *FrameBuffer) AddLayer(kind gpu.LayerKind, perm gpu.Permission, filter gpu.Filter) (int, error) {
	switch {
	case fb.released:
		return 0, ErrReleased
	case fb.shape == gpu.ShapeScreen:
		return 0, ErrScreenLayer
	case fb.initialized:
		return 0, ErrAlreadyInitialized
	}

	l := newLayer(fb.dev, gpu.LayerDesc{
		Kind:       kind,
		Permission: perm,
		Filter:     filter,
		Shape:      fb.shape,
		Width:      fb.width,
		Height:     fb.height,
	})

	if kind == gpu.LayerDepth {
		if fb.depth != nil {
			return 0, ErrDuplicateDepth
		}
		fb.depth = l
		return 0, nil
	}
	fb.colors = append(fb.colors, l)
	return len(fb.colors) - 1, nil
}

// SetClearColor enables or disables clearing color on bind.
func (fb *FrameBuffer) SetClearColor(enabled bool, rgba [4]float32) {
	fb.clearColor = enabled
	fb.clearRGBA = rgba
}

// SetClearDepth enables or disables clearing depth on bind.
func (fb *FrameBuffer) SetClearDepth(enabled bool) {
	fb.clearDepth = enabled
}

// Init allocates every layer, attaches them and checks completeness.
// On failure everything allocated so far is freed and Init may be retried.
func (fb *FrameBuffer) Init() error {
	switch {
	case fb.released:
		return ErrReleased
	case fb.initialized:
		return ErrAlreadyInitialized
	}

	if fb.shape == gpu.ShapeScreen {
		fb.initialized = true
		return nil
	}

	h, err := fb.dev.CreateFramebuffer()
	if err != nil {
		return fmt.Errorf("creating framebuffer: %w", err)
	}
	fb.handle = h

	for _, l := range fb.layers() {
		if err := l.Init(); err != nil {
			fb.freeStorage()
			return err
		}
	}
	fb.attachAll(gpu.FacePositiveX)
	fb.dev.SetDrawBuffers(fb.handle, len(fb.colors))

	if err := fb.dev.CheckFramebuffer(fb.handle); err != nil {
		fb.freeStorage()
		return fmt.Errorf("%w: %v", ErrIncomplete, err)
	}

	fb.initialized = true
	logger.Debug("framebuffer initialized",
		zap.Stringer("shape", fb.shape),
		zap.Int32("width", fb.width),
		zap.Int32("height", fb.height),
		zap.Int("colorLayers", len(fb.colors)),
		zap.Bool("depth", fb.depth != nil),
	)
	return nil
}

func (fb *FrameBuffer) layers() []*Layer {
	out := make([]*Layer, 0, len(fb.colors)+1)
	out = append(out, fb.colors...)
	if fb.depth != nil {
		out = append(out, fb.depth)
	}
	return out
}

func (fb *FrameBuffer) attachAll(face gpu.CubeFace) {
	for i, l := range fb.colors {
		fb.dev.AttachLayer(fb.handle, l.handle, l.desc, i, face)
	}
	if fb.depth != nil {
		fb.dev.AttachLayer(fb.handle, fb.depth.handle, fb.depth.desc, 0, face)
	}
}

// attachFace re-points the cube textures at face. Write-only layers are
// 2D renderbuffers shared by every face and stay attached.
func (fb *FrameBuffer) attachFace(face gpu.CubeFace) {
	for i, l := range fb.colors {
		if l.desc.Permission == gpu.ReadWrite {
			fb.dev.AttachLayer(fb.handle, l.handle, l.desc, i, face)
		}
	}
	if fb.depth != nil && fb.depth.desc.Permission == gpu.ReadWrite {
		fb.dev.AttachLayer(fb.handle, fb.depth.handle, fb.depth.desc, 0, face)
	}
}

func (fb *FrameBuffer) clear() {
	var flags gpu.ClearFlags
	if fb.clearColor {
		flags |= gpu.ClearColor
	}
	if fb.clearDepth {
		flags |= gpu.ClearDepth
	}
	if flags != 0 {
		fb.dev.Clear(flags, fb.clearRGBA)
	}
}

// Bind activates the framebuffer. Flat and screen framebuffers clear here;
// cube framebuffers clear per face in BindCubemapFace.
func (fb *FrameBuffer) Bind() error {
	if !fb.initialized {
		return ErrNotInitialized
	}
	fb.dev.BindFramebuffer(fb.handle, fb.width, fb.height)
	if fb.shape != gpu.ShapeCube {
		fb.clear()
	}
	return nil
}

// BindCubemapFace points the cube layers at face and clears it.
func (fb *FrameBuffer) BindCubemapFace(face gpu.CubeFace) error {
	if fb.shape != gpu.ShapeCube {
		return ErrNotCube
	}
	if !fb.initialized {
		return ErrNotInitialized
	}
	fb.attachFace(face)
	fb.boundFace = face
	fb.faceBound = true
	fb.clear()
	return nil
}

// UnbindCubemapFace ends rendering into face.
func (fb *FrameBuffer) UnbindCubemapFace(face gpu.CubeFace) error {
	if fb.shape != gpu.ShapeCube {
		return ErrNotCube
	}
	if fb.faceBound && fb.boundFace == face {
		fb.faceBound = false
	}
	return nil
}

// Unbind restores the window's default framebuffer.
func (fb *FrameBuffer) Unbind() {
	if fb.handle != 0 {
		fb.dev.BindFramebuffer(0, fb.width, fb.height)
	}
}

// GetLayerAsTexture returns a non-owning view of a read-write layer.
func (fb *FrameBuffer) GetLayerAsTexture(index int, kind gpu.LayerKind) (*LayerTexture, error) {
	var l *Layer
	if kind == gpu.LayerDepth {
		if index == 0 {
			l = fb.depth
		}
	} else if index >= 0 && index < len(fb.colors) {
		l = fb.colors[index]
	}
	if l == nil {
		return nil, fmt.Errorf("%w: %s layer %d", ErrLayerNotFound, kind, index)
	}
	if l.desc.Permission != gpu.ReadWrite {
		return nil, fmt.Errorf("%w: %s layer %d", ErrNotSamplable, kind, index)
	}
	return &LayerTexture{layer: l}, nil
}

// Resize changes the framebuffer size. Off-screen storage is reallocated
// in place, so texture views stay valid.
func (fb *FrameBuffer) Resize(width, height int32) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if fb.shape == gpu.ShapeCube && width != height {
		return fmt.Errorf("%w: cube faces must be square, got %dx%d", ErrInvalidSize, width, height)
	}
	if width == fb.width && height == fb.height {
		return nil
	}
	fb.width, fb.height = width, height
	if fb.shape == gpu.ShapeScreen || !fb.initialized {
		for _, l := range fb.layers() {
			l.desc.Width, l.desc.Height = width, height
		}
		return nil
	}

	for _, l := range fb.layers() {
		if err := l.realloc(width, height); err != nil {
			return err
		}
	}
	fb.attachAll(gpu.FacePositiveX)
	if err := fb.dev.CheckFramebuffer(fb.handle); err != nil {
		return fmt.Errorf("%w: %v", ErrIncomplete, err)
	}
	return nil
}

// ReadPixels reads color attachment 0 as RGBA rows, bottom row first.
func (fb *FrameBuffer) ReadPixels() ([]byte, error) {
	if !fb.initialized {
		return nil, ErrNotInitialized
	}
	return fb.dev.ReadPixels(fb.handle, fb.width, fb.height), nil
}

// Release frees every layer and the framebuffer object. Safe to call twice.
func (fb *FrameBuffer) Release() {
	if fb.released {
		return
	}
	fb.releaseStorage()
	fb.released = true
	fb.initialized = false
}

func (fb *FrameBuffer) releaseStorage() {
	for _, l := range fb.layers() {
		l.Release()
	}
	fb.deleteHandle()
}

func (fb *FrameBuffer) freeStorage() {
	for _, l := range fb.layers() {
		l.free()
	}
	fb.deleteHandle()
}

func (fb *FrameBuffer) deleteHandle() {
	if fb.handle != 0 {
		fb.dev.DeleteFramebuffer(fb.handle)
		fb.handle = 0
	}
}
