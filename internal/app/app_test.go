package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/multierr"

	"github.com/Faultbox/prism/internal/config"
	"github.com/Faultbox/prism/internal/engine/actor"
	"github.com/Faultbox/prism/internal/engine/camera"
	"github.com/Faultbox/prism/internal/engine/framebuffer"
	"github.com/Faultbox/prism/internal/engine/gpu"
	"github.com/Faultbox/prism/internal/engine/gpu/gputest"
	"github.com/Faultbox/prism/internal/engine/input"
	"github.com/Faultbox/prism/internal/engine/material"
	"github.com/Faultbox/prism/internal/engine/mesh"
	"github.com/Faultbox/prism/internal/engine/scene"
)

func newTestApp(t *testing.T) (*App, *scene.Scene, *gputest.Recorder) {
	t.Helper()
	cfg := config.Default()
	cfg.Capture.OutputDir = t.TempDir()

	dev := gputest.New()
	s := scene.New("test", dev)
	_, err := s.NewCamera("main")
	require.NoError(t, err)
	_, err = s.NewCamera("mirror-view")
	require.NoError(t, err)
	_, err = s.NewCamera("sun-view")
	require.NoError(t, err)

	targets, err := BuildTargets(dev, cfg.Targets, 800, 600)
	require.NoError(t, err)
	for _, tgt := range targets {
		require.NoError(t, s.AddTarget(tgt))
	}
	require.NoError(t, s.Init())

	a, err := New(&Context{Device: dev}, cfg, s)
	require.NoError(t, err)
	return a, s, dev
}

func addDrawable(t *testing.T, s *scene.Scene, name, tag string) *actor.Actor {
	t.Helper()
	m := material.New(s.Device(), name)
	_, err := m.AddPass(material.PassConfig{Name: "main", Tags: []string{tag}, State: gpu.DefaultRenderState()})
	require.NoError(t, err)

	a, err := s.NewActor(name)
	require.NoError(t, err)
	a.MustAddAction(material.NewRenderer(m))
	msh, err := mesh.Cube(s.Device(), 1)
	require.NoError(t, err)
	a.MustAddAction(mesh.NewFilter(msh))
	return a
}

func TestBuildTargets(t *testing.T) {
	dev := gputest.New()
	targets, err := BuildTargets(dev, config.Default().Targets, 800, 600)
	require.NoError(t, err)
	require.Len(t, targets, 3)

	shadow, refl, screen := targets[0], targets[1], targets[2]
	assert.Equal(t, "shadow", shadow.Name())
	assert.Equal(t, gpu.ShapeFlat, shadow.FrameBuffer().Shape())
	assert.Zero(t, shadow.FrameBuffer().ColorLayers())
	assert.True(t, shadow.FrameBuffer().HasDepth())
	assert.Equal(t, "sun-view", shadow.CameraName())


	assert.Equal(t, "reflection", refl.Name())
	assert.Equal(t, gpu.ShapeCube, refl.FrameBuffer().Shape())
	assert.Equal(t, 1, refl.FrameBuffer().ColorLayers())
	assert.True(t, refl.FrameBuffer().HasDepth())
	assert.Equal(t, "mirror-view", refl.CameraName())
	assert.True(t, refl.Tags().Has("reflect"))
	w, h := refl.FrameBuffer().Size()
	assert.Equal(t, [2]int32{256, 256}, [2]int32{w, h})

	assert.Equal(t, gpu.ShapeScreen, screen.FrameBuffer().Shape())
	w, h = screen.FrameBuffer().Size()
	assert.Equal(t, [2]int32{800, 600}, [2]int32{w, h}, "screen takes the drawable size")
	assert.True(t, screen.Tags().Has("mirror"))

	assert.Empty(t, dev.Calls, "building does not touch the GPU")
}

func TestBuildTargetsAggregatesErrors(t *testing.T) {
	cfgs := []config.TargetConfig{
		{Name: "a", Shape: "sphere", Camera: "c", Tags: []string{"x"}},
		{Name: "b", Priority: 1, Shape: "flat", Width: 4, Height: 4, Camera: "c", Tags: []string{"x"},
			Layers: []config.LayerConfig{{Kind: "stencil", Permission: "read_write"}}},
		{Name: "c", Priority: 2, Shape: "screen", Camera: "c", Tags: []string{"x"},
			Layers: []config.LayerConfig{{Kind: "color", Permission: "read_write"}}},
	}

	targets, err := BuildTargets(gputest.New(), cfgs, 10, 10)
	require.Error(t, err)
	assert.Nil(t, targets)
	assert.Len(t, multierr.Errors(err), 3)
	assert.True(t, errors.Is(err, framebuffer.ErrScreenLayer))
}

func TestStepDrawsEveryTarget(t *testing.T) {
	a, s, dev := newTestApp(t)
	addDrawable(t, s, "mirror", "mirror")
	addDrawable(t, s, "crate", "reflect")

	dev.Reset()
	require.NoError(t, a.step(0.016))

	draws := dev.Filter(gputest.OpDrawMesh)
	require.Len(t, draws, 7, "six cube faces then the screen")
	for _, d := range draws[:6] {
		assert.NotEqual(t, gpu.Handle(0), d.Framebuffer)
	}
	assert.Equal(t, gpu.Handle(0), draws[6].Framebuffer)
}

func TestStepPurgesKilledActors(t *testing.T) {
	a, s, _ := newTestApp(t)
	crate := addDrawable(t, s, "crate", "opaque")
	crate.Kill()

	require.NoError(t, a.step(0.016))
	_, ok := s.Actor("crate")
	assert.False(t, ok)
	assert.Empty(t, s.Actors())
}

func TestStepFailsWithoutCamera(t *testing.T) {
	dev := gputest.New()
	s := scene.New("test", dev)
	screen, ok := config.Default().Target("screen")
	require.True(t, ok)
	targets, err := BuildTargets(dev, []config.TargetConfig{screen}, 8, 8)
	require.NoError(t, err)
	require.NoError(t, s.AddTarget(targets[0]))
	require.NoError(t, s.Init())

	a, err := New(&Context{Device: dev}, config.Default(), s)
	require.NoError(t, err)
	assert.Error(t, a.step(0.016))
}

func TestHandleResize(t *testing.T) {
	a, s, _ := newTestApp(t)
	require.NoError(t, a.handle(input.Event{Type: input.EventWindowResize, Width: 1024, Height: 512}))

	screen, ok := s.Target("screen")
	require.True(t, ok)
	w, h := screen.FrameBuffer().Size()
	assert.Equal(t, [2]int32{1024, 512}, [2]int32{w, h})

	refl, _ := s.Target("reflection")
	w, h = refl.FrameBuffer().Size()
	assert.Equal(t, [2]int32{256, 256}, [2]int32{w, h}, "off-screen targets keep their size")

	viewer, _ := s.Camera("main")
	assert.InDelta(t, 2.0, viewer.Aspect(), 1e-6)
}

func TestHandleOrbitInput(t *testing.T) {
	a, _, _ := newTestApp(t)
	orbit := camera.NewOrbitController()
	a.SetOrbit(orbit)
	yaw, dist := orbit.Yaw, orbit.Distance

	require.NoError(t, a.handle(input.Event{Type: input.EventMouseMove, DeltaX: 100}))
	assert.Equal(t, yaw, orbit.Yaw, "no drag without the left button")

	require.NoError(t, a.handle(input.Event{Type: input.EventMouseDown, Button: sdl.BUTTON_LEFT}))
	require.NoError(t, a.handle(input.Event{Type: input.EventMouseMove, DeltaX: 100}))
	assert.NotEqual(t, yaw, orbit.Yaw)

	require.NoError(t, a.handle(input.Event{Type: input.EventMouseUp, Button: sdl.BUTTON_LEFT}))
	yaw = orbit.Yaw
	require.NoError(t, a.handle(input.Event{Type: input.EventMouseMove, DeltaX: 100}))
	assert.Equal(t, yaw, orbit.Yaw)

	require.NoError(t, a.handle(input.Event{Type: input.EventMouseWheel, DeltaY: 1}))
	assert.Less(t, orbit.Distance, dist, "wheel up zooms in")
}

func TestHandleKeys(t *testing.T) {
	a, _, dev := newTestApp(t)
	a.running = true

	dev.Reset()
	require.NoError(t, a.handle(input.Event{Type: input.EventKeyDown, Key: keyCapture}))
	assert.Empty(t, dev.Filter(gputest.OpReadPixels), "capture waits for the frame")
	assert.True(t, a.captureRequested)

	require.NoError(t, a.step(0.016))
	assert.Len(t, dev.Filter(gputest.OpReadPixels), 1)
	assert.False(t, a.captureRequested)

	entries, err := os.ReadDir(a.cfg.Capture.OutputDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "prism_"))
	assert.Equal(t, ".png", filepath.Ext(entries[0].Name()))

	require.NoError(t, a.handle(input.Event{Type: input.EventKeyDown, Key: keyQuit}))
	assert.False(t, a.running)
}

func TestCaptureReadsFinishedFrame(t *testing.T) {
	a, s, dev := newTestApp(t)
	addDrawable(t, s, "crate", "opaque")
	addDrawable(t, s, "mirror", "mirror")

	require.NoError(t, a.handle(input.Event{Type: input.EventKeyDown, Key: keyCapture}))
	dev.Reset()
	require.NoError(t, a.step(0.016))

	ops := dev.Ops(gputest.OpDrawMesh, gputest.OpReadPixels)
	require.NotEmpty(t, ops)
	assert.Equal(t, gputest.OpReadPixels, ops[len(ops)-1], "read back after the last draw: %v", ops)
	assert.Equal(t, 2, len(ops)-1, "both screen draws precede the read back")

	dev.Reset()
	require.NoError(t, a.step(0.016))
	assert.Empty(t, dev.Filter(gputest.OpReadPixels), "one capture per key press")
}

func TestTrackWithoutHotReload(t *testing.T) {
	a, s, _ := newTestApp(t)
	m := material.New(s.Device(), "m")
	p, err := m.AddPass(material.PassConfig{Name: "main", Tags: []string{"x"}})
	require.NoError(t, err)

	assert.Nil(t, a.watcher)
	assert.NoError(t, a.Track(p))
}

func TestClose(t *testing.T) {
	a, s, dev := newTestApp(t)
	addDrawable(t, s, "crate", "opaque")

	require.NoError(t, a.Close())
	assert.Zero(t, dev.Live("framebuffer"))
	assert.Zero(t, dev.Live("mesh"))
}
