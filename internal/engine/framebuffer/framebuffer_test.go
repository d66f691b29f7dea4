package framebuffer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/prism/internal/engine/gpu"
	"github.com/Faultbox/prism/internal/engine/gpu/gputest"
)

func TestNewValidatesSize(t *testing.T) {
	dev := gputest.New()

	tests := []struct {
		name   string
		shape  gpu.Shape
		w, h   int32
		wantOK bool
	}{
		{"screen any size", gpu.ShapeScreen, 0, 0, true},
		{"flat positive", gpu.ShapeFlat, 256, 128, true},
		{"flat zero width", gpu.ShapeFlat, 0, 128, false},
		{"flat negative height", gpu.ShapeFlat, 64, -1, false},
		{"cube square", gpu.ShapeCube, 128, 128, true},
		{"cube not square", gpu.ShapeCube, 128, 64, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(dev, tt.shape, tt.w, tt.h)
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidSize)
			}
		})
	}
}

func TestScreenRejectsLayers(t *testing.T) {
	fb, err := New(gputest.New(), gpu.ShapeScreen, 800, 600)
	require.NoError(t, err)

	_, err = fb.AddLayer(gpu.LayerColor, gpu.ReadWrite, gpu.FilterLinear)
	assert.ErrorIs(t, err, ErrScreenLayer)
	_, err = fb.AddLayer(gpu.LayerDepth, gpu.WriteOnly, gpu.FilterLinear)
	assert.ErrorIs(t, err, ErrScreenLayer)
}

func TestSingleDepthLayer(t *testing.T) {
	fb, err := New(gputest.New(), gpu.ShapeFlat, 64, 64)
	require.NoError(t, err)

	_, err = fb.AddLayer(gpu.LayerDepth, gpu.WriteOnly, gpu.FilterLinear)
	require.NoError(t, err)
	_, err = fb.AddLayer(gpu.LayerDepth, gpu.ReadWrite, gpu.FilterLinear)
	assert.ErrorIs(t, err, ErrDuplicateDepth)

	for want := 0; want < 3; want++ {
		idx, err := fb.AddLayer(gpu.LayerColor, gpu.ReadWrite, gpu.FilterLinear)
		require.NoError(t, err)
		assert.Equal(t, want, idx)
	}
}

func TestInitAllocatesAndChecks(t *testing.T) {
	dev := gputest.New()
	fb, err := New(dev, gpu.ShapeFlat, 64, 32)
	require.NoError(t, err)
	_, err = fb.AddLayer(gpu.LayerColor, gpu.ReadWrite, gpu.FilterLinear)
	require.NoError(t, err)
	_, err = fb.AddLayer(gpu.LayerDepth, gpu.WriteOnly, gpu.FilterLinear)
	require.NoError(t, err)

	require.NoError(t, fb.Init())

	assert.Equal(t, 1, dev.Live("framebuffer"))
	assert.Equal(t, 2, dev.Live("layer"))
	assert.Equal(t, []string{
		gputest.OpCreateFramebuffer,
		gputest.OpCreateLayer,
		gputest.OpCreateLayer,
		gputest.OpAttachLayer,
		gputest.OpAttachLayer,
		gputest.OpDrawBuffers,
		gputest.OpCheckFramebuffer,
	}, dev.Ops())

	assert.ErrorIs(t, fb.Init(), ErrAlreadyInitialized)
	_, err = fb.AddLayer(gpu.LayerColor, gpu.ReadWrite, gpu.FilterLinear)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestInitIncompleteReleases(t *testing.T) {
	dev := gputest.New()
	dev.CheckErr = errors.New("status 0x8cd6")

	fb, err := New(dev, gpu.ShapeFlat, 64, 64)
	require.NoError(t, err)
	_, err = fb.AddLayer(gpu.LayerColor, gpu.WriteOnly, gpu.FilterLinear)
	require.NoError(t, err)

	err = fb.Init()
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.False(t, fb.Initialized())
	assert.Zero(t, dev.Live("framebuffer"))
	assert.Zero(t, dev.Live("layer"))
}

func TestInitRetryAfterIncomplete(t *testing.T) {
	dev := gputest.New()
	dev.CheckErr = errors.New("status 0x8cd6")

	fb, err := New(dev, gpu.ShapeFlat, 64, 64)
	require.NoError(t, err)
	_, err = fb.AddLayer(gpu.LayerColor, gpu.ReadWrite, gpu.FilterLinear)
	require.NoError(t, err)
	_, err = fb.AddLayer(gpu.LayerDepth, gpu.WriteOnly, gpu.FilterNearest)
	require.NoError(t, err)

	require.ErrorIs(t, fb.Init(), ErrIncomplete)
	err = fb.Init()
	assert.ErrorIs(t, err, ErrIncomplete, "retry reports the device status again")
	assert.NotErrorIs(t, err, ErrLayerReleased)

	dev.CheckErr = nil
	require.NoError(t, fb.Init())
	assert.True(t, fb.Initialized())
	assert.Equal(t, 1, dev.Live("framebuffer"))
	assert.Equal(t, 2, dev.Live("layer"))

	tex, err := fb.GetLayerAsTexture(0, gpu.LayerColor)
	require.NoError(t, err)
	_, err = tex.Texture()
	assert.NoError(t, err)
}

func TestBindBeforeInit(t *testing.T) {
	fb, err := New(gputest.New(), gpu.ShapeFlat, 16, 16)
	require.NoError(t, err)
	assert.ErrorIs(t, fb.Bind(), ErrNotInitialized)
}

func TestFlatBindClears(t *testing.T) {
	dev := gputest.New()
	fb, err := New(dev, gpu.ShapeFlat, 16, 16)
	require.NoError(t, err)
	_, err = fb.AddLayer(gpu.LayerColor, gpu.ReadWrite, gpu.FilterLinear)
	require.NoError(t, err)
	require.NoError(t, fb.Init())
	dev.Reset()

	require.NoError(t, fb.Bind())
	clears := dev.Filter(gputest.OpClear)
	require.Len(t, clears, 1)
	assert.Equal(t, gpu.ClearColor|gpu.ClearDepth, clears[0].Flags)

	dev.Reset()
	fb.SetClearColor(false, [4]float32{})
	require.NoError(t, fb.Bind())
	clears = dev.Filter(gputest.OpClear)
	require.Len(t, clears, 1)
	assert.Equal(t, gpu.ClearDepth, clears[0].Flags)

	dev.Reset()
	fb.SetClearDepth(false)
	require.NoError(t, fb.Bind())
	assert.Empty(t, dev.Filter(gputest.OpClear))
}

func TestCubeFaceBinding(t *testing.T) {
	dev := gputest.New()
	fb, err := New(dev, gpu.ShapeCube, 32, 32)
	require.NoError(t, err)
	_, err = fb.AddLayer(gpu.LayerColor, gpu.ReadWrite, gpu.FilterLinear)
	require.NoError(t, err)
	_, err = fb.AddLayer(gpu.LayerDepth, gpu.WriteOnly, gpu.FilterLinear)
	require.NoError(t, err)
	require.NoError(t, fb.Init())
	dev.Reset()

	require.NoError(t, fb.Bind())
	assert.Empty(t, dev.Filter(gputest.OpClear), "cube Bind must not clear")

	for _, face := range gpu.CubeFaces {
		dev.Reset()
		require.NoError(t, fb.BindCubemapFace(face))
		require.NoError(t, fb.UnbindCubemapFace(face))

		// Only the cube color texture is re-attached; the depth
		// renderbuffer is shared by every face.
		attaches := dev.Filter(gputest.OpAttachLayer)
		require.Len(t, attaches, 1)
		assert.Equal(t, face, attaches[0].Face)
		assert.Equal(t, gpu.LayerColor, attaches[0].Desc.Kind)
		assert.Equal(t, []string{gputest.OpAttachLayer, gputest.OpClear}, dev.Ops())
	}
}

func TestBindCubemapFaceOnFlat(t *testing.T) {
	fb, err := New(gputest.New(), gpu.ShapeFlat, 16, 16)
	require.NoError(t, err)
	require.NoError(t, fb.Init())
	assert.ErrorIs(t, fb.BindCubemapFace(gpu.FacePositiveX), ErrNotCube)
}

func TestGetLayerAsTexture(t *testing.T) {
	dev := gputest.New()
	fb, err := New(dev, gpu.ShapeFlat, 16, 16)
	require.NoError(t, err)
	_, err = fb.AddLayer(gpu.LayerColor, gpu.ReadWrite, gpu.FilterNearest)
	require.NoError(t, err)
	_, err = fb.AddLayer(gpu.LayerColor, gpu.WriteOnly, gpu.FilterLinear)
	require.NoError(t, err)
	_, err = fb.AddLayer(gpu.LayerDepth, gpu.ReadWrite, gpu.FilterLinear)
	require.NoError(t, err)

	_, err = fb.GetLayerAsTexture(1, gpu.LayerColor)
	assert.ErrorIs(t, err, ErrNotSamplable)
	_, err = fb.GetLayerAsTexture(5, gpu.LayerColor)
	assert.ErrorIs(t, err, ErrLayerNotFound)
	_, err = fb.GetLayerAsTexture(1, gpu.LayerDepth)
	assert.ErrorIs(t, err, ErrLayerNotFound)

	view, err := fb.GetLayerAsTexture(0, gpu.LayerColor)
	require.NoError(t, err)

	_, err = view.Texture()
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, fb.Init())
	tex, err := view.Texture()
	require.NoError(t, err)
	assert.NotZero(t, tex.Handle)
	assert.Equal(t, gpu.ShapeFlat, tex.Shape)

	depth, err := fb.GetLayerAsTexture(0, gpu.LayerDepth)
	require.NoError(t, err)
	dtex, err := depth.Texture()
	require.NoError(t, err)
	assert.NotEqual(t, tex.Handle, dtex.Handle)

	fb.Release()
	_, err = view.Texture()
	assert.ErrorIs(t, err, ErrLayerReleased)
}

func TestResizeKeepsViews(t *testing.T) {
	dev := gputest.New()
	fb, err := New(dev, gpu.ShapeFlat, 16, 16)
	require.NoError(t, err)
	_, err = fb.AddLayer(gpu.LayerColor, gpu.ReadWrite, gpu.FilterLinear)
	require.NoError(t, err)
	require.NoError(t, fb.Init())

	view, err := fb.GetLayerAsTexture(0, gpu.LayerColor)
	require.NoError(t, err)
	before, err := view.Texture()
	require.NoError(t, err)

	require.NoError(t, fb.Resize(32, 8))
	w, h := fb.Size()
	assert.Equal(t, int32(32), w)
	assert.Equal(t, int32(8), h)

	after, err := view.Texture()
	require.NoError(t, err)
	assert.NotEqual(t, before.Handle, after.Handle)
	assert.Equal(t, 1, dev.Live("layer"))

	created := dev.Filter(gputest.OpCreateLayer)
	assert.Equal(t, int32(32), created[len(created)-1].Desc.Width)
}

func TestReleaseIsIdempotent(t *testing.T) {
	dev := gputest.New()
	fb, err := New(dev, gpu.ShapeCube, 8, 8)
	require.NoError(t, err)
	_, err = fb.AddLayer(gpu.LayerColor, gpu.ReadWrite, gpu.FilterLinear)
	require.NoError(t, err)
	_, err = fb.AddLayer(gpu.LayerDepth, gpu.WriteOnly, gpu.FilterLinear)
	require.NoError(t, err)
	require.NoError(t, fb.Init())

	fb.Release()
	fb.Release() // Recorder panics on double free

	assert.Zero(t, dev.Live("framebuffer"))
	assert.Zero(t, dev.Live("layer"))
	assert.ErrorIs(t, fb.Bind(), ErrNotInitialized)
	assert.ErrorIs(t, fb.Init(), ErrReleased)
}

func TestScreenBindsDefaultFramebuffer(t *testing.T) {
	dev := gputest.New()
	fb, err := New(dev, gpu.ShapeScreen, 800, 600)
	require.NoError(t, err)
	require.NoError(t, fb.Init())
	assert.Zero(t, dev.Live("framebuffer"))

	require.NoError(t, fb.Bind())
	binds := dev.Filter(gputest.OpBindFramebuffer)
	require.Len(t, binds, 1)
	assert.Equal(t, gpu.Handle(0), binds[0].Handle)
	assert.Equal(t, [2]int32{800, 600}, binds[0].Value)

	px, err := fb.ReadPixels()
	require.NoError(t, err)
	assert.Len(t, px, 800*600*4)
}
