// Package scene owns the actors, cameras, lights and render targets of one
// world and drives them through the frame: Update, then Draw.
package scene

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/engine/actor"
	"github.com/Faultbox/prism/internal/engine/camera"
	"github.com/Faultbox/prism/internal/engine/gpu"
	"github.com/Faultbox/prism/internal/engine/lighting"
	"github.com/Faultbox/prism/internal/engine/render"
	"github.com/Faultbox/prism/internal/engine/transform"
	"github.com/Faultbox/prism/internal/logger"
)

var (
	ErrDuplicateName     = errors.New("scene: duplicate name")
	ErrDuplicatePriority = errors.New("scene: duplicate target priority")
	ErrNotFound          = errors.New("scene: not found")
)

// Scene is a world of actors rendered through prioritized targets.
type Scene struct {
	name  string
	dev   gpu.Device
	arena *transform.Arena

	actors     map[string]*actor.Actor
	actorOrder []*actor.Actor

	cameras     map[string]*camera.Camera
	cameraOrder []*camera.Camera

	lights     map[string]*lighting.Light
	lightOrder []*lighting.Light

	targets map[int]*render.Target
	byName  map[string]*render.Target
	ordered []*render.Target

	// Set while Update or Draw iterate actorOrder.
	iterating bool
}

var _ render.SceneView = (*Scene)(nil)

// New creates an empty scene drawing through dev.
func New(name string, dev gpu.Device) *Scene {
	return &Scene{
		name:    name,
		dev:     dev,
		arena:   transform.NewArena(),
		actors:  make(map[string]*actor.Actor),
		cameras: make(map[string]*camera.Camera),
		lights:  make(map[string]*lighting.Light),
		targets: make(map[int]*render.Target),
		byName:  make(map[string]*render.Target),
	}
}

// Name returns the scene name.
func (s *Scene) Name() string { return s.name }

// Device returns the device the scene draws through.
func (s *Scene) Device() gpu.Device { return s.dev }

// Arena returns the transform arena of the scene.
func (s *Scene) Arena() *transform.Arena { return s.arena }

// NewActor creates an actor with a fresh transform.
func (s *Scene) NewActor(name string) (*actor.Actor, error) {
	if _, ok := s.actors[name]; ok {
		return nil, fmt.Errorf("%w: actor %q", ErrDuplicateName, name)
	}
	a := actor.New(name, s.arena.New())
	s.actors[name] = a
	s.actorOrder = append(s.actorOrder, a)
	return a, nil
}

// NewCamera creates a camera.
func (s *Scene) NewCamera(name string) (*camera.Camera, error) {
	if _, ok := s.cameras[name]; ok {
		return nil, fmt.Errorf("%w: camera %q", ErrDuplicateName, name)
	}
	c := camera.New(actor.New(name, s.arena.New()))
	s.cameras[name] = c
	s.cameraOrder = append(s.cameraOrder, c)
	return c, nil
}

// NewLight creates a directional light.
func (s *Scene) NewLight(name string) (*lighting.Light, error) {
	if _, ok := s.lights[name]; ok {
		return nil, fmt.Errorf("%w: light %q", ErrDuplicateName, name)
	}
	l := lighting.New(actor.New(name, s.arena.New()))
	s.lights[name] = l
	s.lightOrder = append(s.lightOrder, l)
	return l, nil
}

// Actor returns the actor with name.
func (s *Scene) Actor(name string) (*actor.Actor, bool) {
	a, ok := s.actors[name]
	return a, ok
}

// Actors returns the actors in insertion order.
func (s *Scene) Actors() []*actor.Actor { return s.actorOrder }

// Camera returns the camera with name.
func (s *Scene) Camera(name string) (*camera.Camera, bool) {
	c, ok := s.cameras[name]
	return c, ok
}

// Cameras returns the cameras in insertion order.
func (s *Scene) Cameras() []*camera.Camera { return s.cameraOrder }

// Light returns the light with name.
func (s *Scene) Light(name string) (*lighting.Light, bool) {
	l, ok := s.lights[name]
	return l, ok
}

// Lights returns the lights in insertion order.
func (s *Scene) Lights() []*lighting.Light { return s.lightOrder }

// RemoveActor destroys the actor with name. Called from an action hook
// during Update or Draw, it kills the actor instead and the next
// RemoveDeadActors destroys it.
func (s *Scene) RemoveActor(name string) error {
	a, ok := s.actors[name]
	if !ok {
		return fmt.Errorf("%w: actor %q", ErrNotFound, name)
	}
	if s.iterating {
		a.Kill()
		return nil
	}
	delete(s.actors, name)
	for i, o := range s.actorOrder {
		if o == a {
			s.actorOrder = append(s.actorOrder[:i], s.actorOrder[i+1:]...)
			break
		}
	}
	return a.Destroy()
}

// RemoveDeadActors destroys every killed actor and returns how many were
// removed. Killed actors keep drawing until this runs. It does nothing
// while Update or Draw is running.
func (s *Scene) RemoveDeadActors() int {
	if s.iterating {
		return 0
	}
	kept := s.actorOrder[:0]
	removed := 0
	for _, a := range s.actorOrder {
		if a.Alive() {
			kept = append(kept, a)
			continue
		}
		delete(s.actors, a.Name())
		if err := a.Destroy(); err != nil {
			logger.Warn("actor destroy failed", zap.String("actor", a.Name()), zap.Error(err))
		}
		removed++
	}
	for i := len(kept); i < len(s.actorOrder); i++ {
		s.actorOrder[i] = nil
	}
	s.actorOrder = kept
	return removed
}

// AddTarget registers t. Priorities and names must be unique.
func (s *Scene) AddTarget(t *render.Target) error {
	if other, ok := s.targets[t.Priority()]; ok {
		return fmt.Errorf("%w: %d used by %q", ErrDuplicatePriority, t.Priority(), other.Name())
	}
	if _, ok := s.byName[t.Name()]; ok {
		return fmt.Errorf("%w: target %q", ErrDuplicateName, t.Name())
	}
	s.targets[t.Priority()] = t
	s.byName[t.Name()] = t

	i := sort.Search(len(s.ordered), func(i int) bool { return s.ordered[i].Priority() > t.Priority() })
	s.ordered = append(s.ordered, nil)
	copy(s.ordered[i+1:], s.ordered[i:])
	s.ordered[i] = t
	return nil
}

// Target returns the target with name.
func (s *Scene) Target(name string) (*render.Target, bool) {
	t, ok := s.byName[name]
	return t, ok
}

// Targets returns the targets in ascending priority.
func (s *Scene) Targets() []*render.Target { return s.ordered }

// Init initializes every target that is not ready yet.
func (s *Scene) Init() error {
	var err error
	for _, t := range s.ordered {
		if t.State() != render.Ready {
			err = multierr.Append(err, t.Init())
		}
	}
	return err
}

// Resize resizes screen targets and updates camera aspect ratios.
func (s *Scene) Resize(width, height int32) error {
	var err error
	for _, t := range s.ordered {
		if t.FrameBuffer().Shape() == gpu.ShapeScreen {
			err = multierr.Append(err, t.FrameBuffer().Resize(width, height))
			if c, ok := s.cameras[t.CameraName()]; ok && height > 0 {
				c.SetAspect(float32(width) / float32(height))
			}
		}
	}
	return err
}

// Update advances cameras, then lights, then actors.
func (s *Scene) Update(dt float64) {
	s.iterating = true
	defer func() { s.iterating = false }()

	for _, c := range s.cameraOrder {
		c.Update(dt)
	}
	for _, l := range s.lightOrder {
		l.Update(dt)
	}
	for _, a := range s.actorOrder {
		a.Update(dt)
	}
}

// Draw renders every target in ascending priority. Each target rebuilds
// its queue from all actors, killed ones included until purged.
func (s *Scene) Draw() error {
	s.iterating = true
	defer func() { s.iterating = false }()

	for _, t := range s.ordered {
		t.StartNewFrame()
		for _, a := range s.actorOrder {
			t.AddActor(a)
		}
		if err := t.Draw(s); err != nil {
			return err
		}
	}
	return nil
}

// Close releases target framebuffers and destroys every actor, camera and
// light.
func (s *Scene) Close() error {
	var err error
	for _, t := range s.ordered {
		t.FrameBuffer().Release()
	}
	for _, a := range s.actorOrder {
		err = multierr.Append(err, a.Destroy())
	}
	for _, c := range s.cameraOrder {
		err = multierr.Append(err, c.Destroy())
	}
	for _, l := range s.lightOrder {
		err = multierr.Append(err, l.Destroy())
	}
	s.actorOrder, s.cameraOrder, s.lightOrder = nil, nil, nil
	clear(s.actors)
	clear(s.cameras)
	clear(s.lights)
	return err
}
