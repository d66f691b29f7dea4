package render

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/engine/actor"
	"github.com/Faultbox/prism/internal/engine/camera"
	"github.com/Faultbox/prism/internal/engine/framebuffer"
	"github.com/Faultbox/prism/internal/engine/gpu"
	"github.com/Faultbox/prism/internal/engine/lighting"
	"github.com/Faultbox/prism/internal/engine/material"
	"github.com/Faultbox/prism/internal/engine/mesh"
	"github.com/Faultbox/prism/internal/logger"
	"github.com/Faultbox/prism/pkg/math"
)

var (
	ErrNoCamera       = errors.New("render: target has no camera")
	ErrNoTags         = errors.New("render: target has no tags")
	ErrCameraNotFound = errors.New("render: camera not found")
	ErrNotReady       = errors.New("render: target not initialized")
	ErrAlreadyReady   = errors.New("render: target already initialized")
)

// SceneView is what a target reads from the scene while drawing.
type SceneView interface {
	Camera(name string) (*camera.Camera, bool)
	Lights() []*lighting.Light
}

// State is the configuration state of a Target.
type State int

const (
	Unconfigured State = iota
	Configured
	Ready
)

func (s State) String() string {
	switch s {
	case Configured:
		return "configured"
	case Ready:
		return "ready"
	}
	return "unconfigured"
}

// cubeFaceEuler orients a -Z forward camera onto each cube face, in
// gpu.CubeFaces order, with the up vectors cube map sampling expects.
var cubeFaceEuler = [6]math.Vec3{
	{X: 0, Y: -math32.Pi / 2, Z: math32.Pi}, // +X
	{X: 0, Y: math32.Pi / 2, Z: math32.Pi},  // -X
	{X: math32.Pi / 2, Y: 0, Z: 0},          // +Y
	{X: -math32.Pi / 2, Y: 0, Z: 0},         // -Y
	{X: 0, Y: math32.Pi, Z: math32.Pi},      // +Z
	{X: 0, Y: 0, Z: math32.Pi},              // -Z
}

// Target is one render destination: a framebuffer, a camera, a tag filter
// and a priority. Targets draw in ascending priority so later targets can
// sample earlier ones.
type Target struct {
	name     string
	priority int
	fb       *framebuffer.FrameBuffer
	camera   string
	tags     material.Tags
	queue    *Queue
	state    State
}

// NewTarget creates an unconfigured target drawing into fb.
func NewTarget(name string, priority int, fb *framebuffer.FrameBuffer) *Target {
	return &Target{
		name:     name,
		priority: priority,
		fb:       fb,
		tags:     material.NewTags(),
		queue:    NewQueue(),
	}
}

func (t *Target) Name() string                          { return t.name }
func (t *Target) Priority() int                         { return t.priority }
func (t *Target) FrameBuffer() *framebuffer.FrameBuffer { return t.fb }
func (t *Target) CameraName() string                    { return t.camera }
func (t *Target) Tags() material.Tags                   { return t.tags }
func (t *Target) Queue() *Queue                         { return t.queue }
func (t *Target) State() State                          { return t.state }

func (t *Target) configured() {
	if t.state == Unconfigured {
		t.state = Configured
	}
}

// SetCamera selects the scene camera, by name, the target draws with.
func (t *Target) SetCamera(name string) {
	t.camera = name
	t.configured()
}

// SetTags replaces the tag filter.
func (t *Target) SetTags(tags ...string) {
	t.tags = material.NewTags(tags...)
	t.configured()
}

// AddLayer adds a layer to the framebuffer.
func (t *Target) AddLayer(kind gpu.LayerKind, perm gpu.Permission, filter gpu.Filter) (int, error) {
	idx, err := t.fb.AddLayer(kind, perm, filter)
	if err != nil {
		return 0, fmt.Errorf("target %q: %w", t.name, err)
	}
	t.configured()
	return idx, nil
}

// Init validates the configuration and allocates the framebuffer.
func (t *Target) Init() error {
	if t.state == Ready {
		return ErrAlreadyReady
	}

	var err error
	if t.camera == "" {
		err = multierr.Append(err, ErrNoCamera)
	}
	if len(t.tags) == 0 {
		err = multierr.Append(err, ErrNoTags)
	}
	if err != nil {
		return fmt.Errorf("target %q: %w", t.name, err)
	}

	if !t.fb.Initialized() {
		if err := t.fb.Init(); err != nil {
			return fmt.Errorf("target %q: %w", t.name, err)
		}
	}
	t.state = Ready

	logger.Info("render target ready",
		zap.String("target", t.name),
		zap.Int("priority", t.priority),
		zap.Stringer("shape", t.fb.Shape()),
		zap.String("camera", t.camera),
		zap.Strings("tags", t.tags.Slice()),
	)
	return nil
}

// StartNewFrame discards the previous frame's queue.
func (t *Target) StartNewFrame() {
	t.queue.Reset()
}

// AddActor queues a for every pass whose tags intersect the target's.
// Actors without both a material renderer and a mesh filter are skipped.
// It returns the number of passes queued.
func (t *Target) AddActor(a *actor.Actor) int {
	r, ok := material.Of(a)
	if !ok {
		return 0
	}
	f, ok := mesh.Of(a)
	if !ok {
		return 0
	}

	n := 0
	for _, p := range r.Material().Passes() {
		if !p.Tags().Intersects(t.tags) {
			continue
		}
		// Add only fails on a material mismatch, which cannot happen for
		// passes taken from the actor's own material.
		if err := t.queue.Add(a, p, f); err == nil {
			n++
		}
	}
	return n
}

// Draw renders the queue through the target's camera. Cube targets draw
// once per face with the camera turned onto that face.
func (t *Target) Draw(view SceneView) error {
	if t.state != Ready {
		return fmt.Errorf("target %q: %w", t.name, ErrNotReady)
	}
	cam, ok := view.Camera(t.camera)
	if !ok {
		return fmt.Errorf("target %q: %w: %q", t.name, ErrCameraNotFound, t.camera)
	}

	if err := t.fb.Bind(); err != nil {
		return fmt.Errorf("target %q: %w", t.name, err)
	}
	defer t.fb.Unbind()

	if t.fb.Shape() != gpu.ShapeCube {
		return t.queue.Draw(Frame{
			View:           cam.ViewMatrix(),
			Projection:     cam.ProjectionMatrix(),
			CameraPosition: cam.Position(),
			Lights:         view.Lights(),
		})
	}
	return t.drawCube(cam, view.Lights())
}

func (t *Target) drawCube(cam *camera.Camera, lights []*lighting.Light) error {
	tr := cam.Transform()
	saved := tr.LocalEulerAngles()
	defer tr.SetLocalEulerAngles(saved)

	near, far := cam.ClipPlanes()
	proj := math.Perspective(math32.Pi/2, 1, near, far)

	for i, face := range gpu.CubeFaces {
		tr.SetLocalEulerAngles(cubeFaceEuler[i])
		if err := t.fb.BindCubemapFace(face); err != nil {
			return fmt.Errorf("target %q: %w", t.name, err)
		}
		err := t.queue.Draw(Frame{
			View:           cam.ViewMatrix(),
			Projection:     proj,
			CameraPosition: cam.Position(),
			Lights:         lights,
		})
		if err != nil {
			return fmt.Errorf("target %q face %d: %w", t.name, face, err)
		}
		if err := t.fb.UnbindCubemapFace(face); err != nil {
			return err
		}
	}
	return nil
}

// GetLayerAsTexture returns a view of a read-write framebuffer layer.
func (t *Target) GetLayerAsTexture(index int, kind gpu.LayerKind) (*framebuffer.LayerTexture, error) {
	return t.fb.GetLayerAsTexture(index, kind)
}
