// Package actor implements scene entities and the actions attached to them.
//
// An Actor owns a transform and a set of actions keyed by Key. Actions opt
// into lifecycle hooks by implementing Starter, Updater, PreDrawer,
// PostDrawer or Destroyer. Adding and removing actions is safe at any time,
// including from inside another action's hook: removal is deferred to the
// next Update and new actions are started before their first Update.
package actor

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/engine/transform"
	"github.com/Faultbox/prism/internal/logger"
	"github.com/Faultbox/prism/pkg/math"
)

var (
	ErrDuplicateAction = errors.New("actor: action already attached")
	ErrActionNotFound  = errors.New("actor: action not found")
)

// Key identifies an action kind. An Actor holds at most one action per key.
type Key string

// Action is a unit of behavior attached to an Actor.
type Action interface {
	ActionKey() Key
}

// Starter is called once before the action's first Update.
type Starter interface {
	Start(a *Actor)
}

// Updater is called every frame.
type Updater interface {
	Update(a *Actor, dt float64)
}

// PreDrawer is called before each draw of the actor.
type PreDrawer interface {
	PreDraw(a *Actor, u Uniforms)
}

// PostDrawer is called after each draw of the actor.
type PostDrawer interface {
	PostDraw(a *Actor, u Uniforms)
}

// Destroyer releases resources owned by the action.
type Destroyer interface {
	Destroy() error
}

// Uniforms sets shader uniforms on the pass being drawn.
type Uniforms interface {
	SetInt(name string, v int32)
	SetFloat(name string, v float32)
	SetVec3(name string, v math.Vec3)
	SetVec4(name string, v [4]float32)
	SetMat4(name string, m math.Mat4)
}

type entry struct {
	action   Action
	started  bool
	removing bool
}

// Actor is a named scene entity.
type Actor struct {
	name      string
	transform transform.Transform

	actions  map[Key]*entry
	order    []*entry
	starts   []*entry
	removals []*entry

	alive     bool
	destroyed bool
}

// New creates an alive actor owning t.
func New(name string, t transform.Transform) *Actor {
	return &Actor{
		name:      name,
		transform: t,
		actions:   make(map[Key]*entry),
		alive:     true,
	}
}

// Name returns the actor name.
func (a *Actor) Name() string { return a.name }

// Transform returns the actor's transform.
func (a *Actor) Transform() transform.Transform { return a.transform }

// Alive reports whether the actor has not been killed.
func (a *Actor) Alive() bool { return a.alive }

// Kill flags the actor dead. The owner removes it at its next purge.
func (a *Actor) Kill() { a.alive = false }

// AddAction attaches an action. It is started before its first Update.
func (a *Actor) AddAction(act Action) error {
	key := act.ActionKey()
	if _, ok := a.actions[key]; ok {
		return fmt.Errorf("%w: %q on actor %q", ErrDuplicateAction, key, a.name)
	}
	e := &entry{action: act}
	a.actions[key] = e
	a.order = append(a.order, e)
	a.starts = append(a.starts, e)
	return nil
}

// MustAddAction is like AddAction but panics on error.
func (a *Actor) MustAddAction(act Action) {
	if err := a.AddAction(act); err != nil {
		panic(err)
	}
}

// RemoveAction detaches the action with key. It stops receiving hooks
// immediately and is destroyed at the start of the next Update.
func (a *Actor) RemoveAction(key Key) error {
	e, ok := a.actions[key]
	if !ok {
		return fmt.Errorf("%w: %q on actor %q", ErrActionNotFound, key, a.name)
	}
	delete(a.actions, key)
	e.removing = true
	a.removals = append(a.removals, e)
	return nil
}

// Action returns the live action with key, or nil.
func (a *Actor) Action(key Key) Action {
	if e, ok := a.actions[key]; ok {
		return e.action
	}
	return nil
}

// Has reports whether a live action with key is attached.
func (a *Actor) Has(key Key) bool {
	_, ok := a.actions[key]
	return ok
}

// Keys returns live action keys in insertion order.
func (a *Actor) Keys() []Key {
	keys := make([]Key, 0, len(a.actions))
	for _, e := range a.order {
		if !e.removing {
			keys = append(keys, e.action.ActionKey())
		}
	}
	return keys
}

// Find returns the first live action of type T.
func Find[T Action](a *Actor) (T, bool) {
	for _, e := range a.order {
		if e.removing {
			continue
		}
		if t, ok := e.action.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// Update destroys removed actions, starts pending ones, then updates every
// live action in insertion order.
func (a *Actor) Update(dt float64) {
	a.drainRemovals()
	a.drainStarts()

	// Index loop: actions added by hooks append to order and are picked up
	// in this same pass.
	for i := 0; i < len(a.order); i++ {
		e := a.order[i]
		if e.removing {
			continue
		}
		if !e.started {
			a.drainStarts()
		}
		if u, ok := e.action.(Updater); ok {
			u.Update(a, dt)
		}
	}
}

func (a *Actor) drainStarts() {
	for i := 0; i < len(a.starts); i++ {
		e := a.starts[i]
		if e.started || e.removing {
			continue
		}
		e.started = true
		if s, ok := e.action.(Starter); ok {
			s.Start(a)
		}
	}
	a.starts = a.starts[:0]
}

func (a *Actor) drainRemovals() {
	if len(a.removals) == 0 {
		return
	}
	removals := a.removals
	a.removals = nil

	kept := a.order[:0]
	for _, e := range a.order {
		if !e.removing {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(a.order); i++ {
		a.order[i] = nil
	}
	a.order = kept

	for _, e := range removals {
		if err := destroy(e.action); err != nil {
			logger.Warn("action destroy failed",
				zap.String("actor", a.name),
				zap.String("action", string(e.action.ActionKey())),
				zap.Error(err),
			)
		}
	}
}

func destroy(act Action) error {
	if d, ok := act.(Destroyer); ok {
		return d.Destroy()
	}
	return nil
}

// PreDraw runs PreDraw hooks of started actions in insertion order.
func (a *Actor) PreDraw(u Uniforms) {
	for _, e := range a.order {
		if e.started && !e.removing {
			if p, ok := e.action.(PreDrawer); ok {
				p.PreDraw(a, u)
			}
		}
	}
}

// PostDraw runs PostDraw hooks of started actions in reverse insertion
// order, unwinding PreDraw.
func (a *Actor) PostDraw(u Uniforms) {
	for i := len(a.order) - 1; i >= 0; i-- {
		e := a.order[i]
		if e.started && !e.removing {
			if p, ok := e.action.(PostDrawer); ok {
				p.PostDraw(a, u)
			}
		}
	}
}

// Destroy destroys every action, pending removals included, and releases
// the transform. It is safe to call twice.
func (a *Actor) Destroy() error {
	if a.destroyed {
		return nil
	}
	a.destroyed = true
	a.alive = false

	var err error
	for _, e := range a.removals {
		err = multierr.Append(err, destroy(e.action))
	}
	for _, e := range a.order {
		if !e.removing {
			err = multierr.Append(err, destroy(e.action))
		}
	}
	a.actions = make(map[Key]*entry)
	a.order, a.starts, a.removals = nil, nil, nil

	if a.transform.Valid() {
		a.transform.Release()
	}
	if err != nil {
		return fmt.Errorf("destroying actor %q: %w", a.name, err)
	}
	return nil
}
