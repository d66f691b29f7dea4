package framebuffer

import (
	"fmt"

	"github.com/Faultbox/prism/internal/engine/gpu"
)

// Layer is one color or depth plane of a FrameBuffer.
type Layer struct {
	dev      gpu.Device
	desc     gpu.LayerDesc
	handle   gpu.Handle
	ready    bool
	released bool
}

func newLayer(dev gpu.Device, desc gpu.LayerDesc) *Layer {
	return &Layer{dev: dev, desc: desc}
}

// Desc returns the layer description.
func (l *Layer) Desc() gpu.LayerDesc { return l.desc }

// Init allocates the layer storage. It may only be called once.
func (l *Layer) Init() error {
	switch {
	case l.released:
		return ErrLayerReleased
	case l.ready:
		return ErrAlreadyInitialized
	}
	h, err := l.dev.CreateLayer(l.desc)
	if err != nil {
		return fmt.Errorf("creating %s layer: %w", l.desc.Kind, err)
	}
	l.handle = h
	l.ready = true
	return nil
}

func (l *Layer) realloc(width, height int32) error {
	if l.ready {
		l.dev.DeleteLayer(l.handle, l.desc)
	}
	l.desc.Width, l.desc.Height = width, height
	h, err := l.dev.CreateLayer(l.desc)
	if err != nil {
		l.ready = false
		l.handle = 0
		return fmt.Errorf("reallocating %s layer: %w", l.desc.Kind, err)
	}
	l.handle = h
	l.ready = true
	return nil
}

// Release frees the layer storage. Safe to call twice.
func (l *Layer) Release() {
	l.free()
	l.released = true
}

// free deletes the storage but leaves the layer initializable.
func (l *Layer) free() {
	if l.ready {
		l.dev.DeleteLayer(l.handle, l.desc)
	}
	l.ready = false
	l.handle = 0
}

// LayerTexture is a non-owning sampler view of a read-write layer.
type LayerTexture struct {
	layer *Layer
}

// Texture returns the current texture of the layer.
func (t *LayerTexture) Texture() (gpu.Texture, error) {
	switch {
	case t.layer.released:
		return gpu.Texture{}, ErrLayerReleased
	case !t.layer.ready:
		return gpu.Texture{}, ErrNotInitialized
	}
	return gpu.Texture{Handle: t.layer.handle, Shape: t.layer.desc.Shape}, nil
}

// Shape returns the shape of the viewed layer.
func (t *LayerTexture) Shape() gpu.Shape { return t.layer.desc.Shape }
