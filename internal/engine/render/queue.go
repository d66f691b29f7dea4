// Package render decides, every frame, which actors draw into which target,
// in what order and with which pass.
package render

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Faultbox/prism/internal/engine/actor"
	"github.com/Faultbox/prism/internal/engine/lighting"
	"github.com/Faultbox/prism/internal/engine/material"
	"github.com/Faultbox/prism/internal/engine/mesh"
	"github.com/Faultbox/prism/pkg/math"
)

// Uniform names set for every draw.
const (
	UniformModel               = "uModel"
	UniformView                = "uView"
	UniformProjection          = "uProjection"
	UniformModelViewProjection = "uModelViewProjection"
	UniformCameraPosition      = "uCameraPosition"
)

var ErrMaterialMismatch = errors.New("render: actor material differs from pass material")

// Frame is the per-draw camera and lighting state.
type Frame struct {
	View           math.Mat4
	Projection     math.Mat4
	CameraPosition math.Vec3
	Lights         []*lighting.Light
}

type item struct {
	actor  *actor.Actor
	filter *mesh.Filter
}

// SubQueue holds the actors drawn with one pass. Every actor in it shares
// the pass's material.
type SubQueue struct {
	pass  *material.Pass
	items []item
}

// Pass returns the pass the sub-queue draws with.
func (s *SubQueue) Pass() *material.Pass { return s.pass }

// Len returns the number of queued actors.
func (s *SubQueue) Len() int { return len(s.items) }

type bucket struct {
	subs   []*SubQueue
	byPass map[*material.Pass]*SubQueue
}

// Queue orders draws by pass priority, then by first use of each pass.
type Queue struct {
	buckets    map[int]*bucket
	priorities []int
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{buckets: make(map[int]*bucket)}
}

// Add queues a to be drawn with pass using filter's mesh.
func (q *Queue) Add(a *actor.Actor, pass *material.Pass, filter *mesh.Filter) error {
	if r, ok := material.Of(a); !ok || r.Material() != pass.Material() {
		return fmt.Errorf("%w: actor %q, pass %q", ErrMaterialMismatch, a.Name(), pass.Name())
	}

	b, ok := q.buckets[pass.Priority()]
	if !ok {
		b = &bucket{byPass: make(map[*material.Pass]*SubQueue)}
		q.buckets[pass.Priority()] = b
		i := sort.SearchInts(q.priorities, pass.Priority())
		q.priorities = append(q.priorities, 0)
		copy(q.priorities[i+1:], q.priorities[i:])
		q.priorities[i] = pass.Priority()
	}

	s, ok := b.byPass[pass]
	if !ok {
		s = &SubQueue{pass: pass}
		b.byPass[pass] = s
		b.subs = append(b.subs, s)
	}
	s.items = append(s.items, item{actor: a, filter: filter})
	return nil
}

// Reset empties the queue.
func (q *Queue) Reset() {
	clear(q.buckets)
	q.priorities = q.priorities[:0]
}

// Len returns the number of queued draws.
func (q *Queue) Len() int {
	n := 0
	for _, b := range q.buckets {
		for _, s := range b.subs {
			n += len(s.items)
		}
	}
	return n
}

// SubQueues returns the sub-queues in draw order.
func (q *Queue) SubQueues() []*SubQueue {
	var out []*SubQueue
	for _, p := range q.priorities {
		out = append(out, q.buckets[p].subs...)
	}
	return out
}

// Passes returns the queued passes in draw order.
func (q *Queue) Passes() []*material.Pass {
	subs := q.SubQueues()
	out := make([]*material.Pass, len(subs))
	for i, s := range subs {
		out[i] = s.pass
	}
	return out
}

// Actors returns the queued actors in draw order. An actor appears once
// per pass it is drawn with.
func (q *Queue) Actors() []*actor.Actor {
	var out []*actor.Actor
	for _, s := range q.SubQueues() {
		for _, it := range s.items {
			out = append(out, it.actor)
		}
	}
	return out
}

// Draw binds each pass once and draws its actors.
func (q *Queue) Draw(f Frame) error {
	viewProj := f.Projection.Mul(f.View)
	for _, s := range q.SubQueues() {
		pass := s.pass
		mat := pass.Material()
		if err := mat.Bind(pass); err != nil {
			return err
		}
		if pass.Lit() {
			lighting.Upload(pass, f.Lights)
		}

		for _, it := range s.items {
			it.actor.PreDraw(pass)

			model := it.actor.Transform().Matrix()
			pass.SetMat4(UniformModel, model)
			pass.SetMat4(UniformView, f.View)
			pass.SetMat4(UniformProjection, f.Projection)
			pass.SetMat4(UniformModelViewProjection, viewProj.Mul(model))
			pass.SetVec3(UniformCameraPosition, f.CameraPosition)

			if err := it.filter.Mesh().Draw(); err != nil {
				mat.Unbind(pass)
				return fmt.Errorf("drawing actor %q: %w", it.actor.Name(), err)
			}
			it.actor.PostDraw(pass)
		}
		mat.Unbind(pass)
	}
	return nil
}
