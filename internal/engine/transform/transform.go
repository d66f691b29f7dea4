// Package transform implements hierarchical position/rotation/scale nodes.
//
// Nodes live in an Arena and are addressed by Transform handles. Parent and
// child links are plain handles, so the hierarchy never owns its members:
// releasing a parent leaves its children in place with local-only matrices.
//
// World matrices are cached. Writes mark a node dirty; reads recompose the
// chain top-down and recompute only nodes whose local data changed or whose
// parent was recomposed since they last looked.
package transform

import (
	"errors"
	"fmt"

	"github.com/Faultbox/prism/pkg/math"
)

// Hierarchy errors.
var (
	ErrForeignArena = errors.New("transform: parent and child belong to different arenas")
	ErrCycle        = errors.New("transform: parenting would create a cycle")
)

// none marks an absent parent.
const none = -1

type node struct {
	gen   uint32
	alive bool

	position math.Vec3
	euler    math.Vec3
	scale    math.Vec3

	local      math.Mat4
	world      math.Mat4
	localDirty bool

	// version increments every time world is recomposed; children compare
	// it against parentVersion to detect a stale parent.
	version       uint64
	parentVersion uint64

	parent   int32
	children []int32
}

// Arena stores transformation nodes in a slice with slot reuse.
type Arena struct {
	nodes []node
	free  []int32
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Len returns the number of live nodes.
func (a *Arena) Len() int {
	return len(a.nodes) - len(a.free)
}

// New allocates an identity node.
func (a *Arena) New() Transform {
	var idx int32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.nodes = append(a.nodes, node{})
		idx = int32(len(a.nodes) - 1)
	}

	n := &a.nodes[idx]
	gen := n.gen + 1
	*n = node{
		gen:        gen,
		alive:      true,
		scale:      math.One,
		local:      math.Identity(),
		world:      math.Identity(),
		localDirty: true,
		parent:     none,
	}
	return Transform{arena: a, index: idx, gen: gen}
}

func (a *Arena) get(t Transform) *node {
	if a == nil {
		panic("transform: use of zero Transform")
	}
	if t.arena != a || t.index < 0 || int(t.index) >= len(a.nodes) {
		panic(fmt.Sprintf("transform: handle %d does not belong to this arena", t.index))
	}
	n := &a.nodes[t.index]
	if !n.alive || n.gen != t.gen {
		panic(fmt.Sprintf("transform: stale handle %d (generation %d)", t.index, t.gen))
	}
	return n
}

func (a *Arena) handle(idx int32) Transform {
	return Transform{arena: a, index: idx, gen: a.nodes[idx].gen}
}

// worldOf recomposes the chain ending at idx and returns its world matrix.
func (a *Arena) worldOf(idx int32) math.Mat4 {
	n := &a.nodes[idx]
	if n.localDirty {
		n.local = math.TRS(n.position, n.euler, n.scale)
	}

	if n.parent == none {
		if n.localDirty {
			n.world = n.local
			n.version++
			n.localDirty = false
		}
		return n.world
	}

	parentWorld := a.worldOf(n.parent)
	pv := a.nodes[n.parent].version
	if n.localDirty || n.parentVersion != pv {
		n.world = parentWorld.Mul(n.local)
		n.parentVersion = pv
		n.version++
		n.localDirty = false
	}
	return n.world
}

// detach removes child from its parent's child list.
func (a *Arena) detach(child int32) {
	c := &a.nodes[child]
	if c.parent == none {
		return
	}
	p := &a.nodes[c.parent]
	for i, idx := range p.children {
		if idx == child {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	c.parent = none
	c.localDirty = true
}

// Transform is a handle to a node in an Arena. The zero value is "no
// transform" and is accepted by SetParent to clear a parent link.
type Transform struct {
	arena *Arena
	index int32
	gen   uint32
}

// IsZero reports whether t is the zero handle.
func (t Transform) IsZero() bool {
	return t.arena == nil
}

// Valid reports whether t refers to a live node.
func (t Transform) Valid() bool {
	if t.arena == nil || t.index < 0 || int(t.index) >= len(t.arena.nodes) {
		return false
	}
	n := &t.arena.nodes[t.index]
	return n.alive && n.gen == t.gen
}

// Release frees the node. Children are detached and keep their local data,
// so their world matrices fall back to local-only.
func (t Transform) Release() {
	a := t.arena
	n := a.get(t)
	a.detach(t.index)
	for _, c := range n.children {
		cn := &a.nodes[c]
		cn.parent = none
		cn.localDirty = true
	}
	n.children = nil
	n.alive = false
	a.free = append(a.free, t.index)
}

// LocalPosition returns the local position.
func (t Transform) LocalPosition() math.Vec3 { return t.arena.get(t).position }

// LocalEulerAngles returns the local rotation (radians, X=pitch Y=yaw Z=roll).
func (t Transform) LocalEulerAngles() math.Vec3 { return t.arena.get(t).euler }

// LocalScale returns the local scale.
func (t Transform) LocalScale() math.Vec3 { return t.arena.get(t).scale }

// SetLocalPosition sets the local position.
func (t Transform) SetLocalPosition(p math.Vec3) {
	n := t.arena.get(t)
	n.position = p
	n.localDirty = true
}

// SetLocalEulerAngles sets the local rotation in radians.
func (t Transform) SetLocalEulerAngles(e math.Vec3) {
	n := t.arena.get(t)
	n.euler = e
	n.localDirty = true
}

// SetLocalScale sets the local scale.
func (t Transform) SetLocalScale(s math.Vec3) {
	n := t.arena.get(t)
	n.scale = s
	n.localDirty = true
}

// Translate offsets the local position.
func (t Transform) Translate(delta math.Vec3) {
	n := t.arena.get(t)
	n.position = n.position.Add(delta)
	n.localDirty = true
}

// Rotate adds delta to the local Euler angles.
func (t Transform) Rotate(delta math.Vec3) {
	n := t.arena.get(t)
	n.euler = n.euler.Add(delta)
	n.localDirty = true
}

// Scale multiplies the local scale component-wise.
func (t Transform) Scale(factor math.Vec3) {
	n := t.arena.get(t)
	n.scale = n.scale.Mul(factor)
	n.localDirty = true
}

// LocalMatrix returns translation * rotation * scale of the local data.
func (t Transform) LocalMatrix() math.Mat4 {
	n := t.arena.get(t)
	if n.localDirty {
		return math.TRS(n.position, n.euler, n.scale)
	}
	return n.local
}

// Matrix returns the world matrix: parent's world matrix times LocalMatrix.
func (t Transform) Matrix() math.Mat4 {
	t.arena.get(t)
	return t.arena.worldOf(t.index)
}

// WorldPosition returns the translation of the world matrix.
func (t Transform) WorldPosition() math.Vec3 {
	return t.Matrix().Translation()
}

// Rotation returns the local rotation as a quaternion built Yaw-Pitch-Roll.
func (t Transform) Rotation() math.Quat {
	return math.QuatFromEuler(t.arena.get(t).euler)
}

// Forward returns the local forward (-Z) direction.
func (t Transform) Forward() math.Vec3 { return t.Rotation().Forward() }

// Up returns the local up (+Y) direction.
func (t Transform) Up() math.Vec3 { return t.Rotation().Up() }

// Right returns the local right (+X) direction.
func (t Transform) Right() math.Vec3 { return t.Rotation().Right() }

// WorldForward returns the forward direction in world space.
func (t Transform) WorldForward() math.Vec3 {
	return t.Matrix().TransformDirection(math.AxisForward).Normalize()
}

// Parent returns the parent handle, or the zero Transform.
func (t Transform) Parent() Transform {
	n := t.arena.get(t)
	if n.parent == none {
		return Transform{}
	}
	return t.arena.handle(n.parent)
}

// Children returns handles to the direct children.
func (t Transform) Children() []Transform {
	n := t.arena.get(t)
	out := make([]Transform, len(n.children))
	for i, c := range n.children {
		out[i] = t.arena.handle(c)
	}
	return out
}

// SetParent makes child a child of parent. A zero parent clears the link.
// The child is first detached from any previous parent.
func SetParent(parent, child Transform) error {
	a := child.arena
	a.get(child)

	if parent.IsZero() {
		a.detach(child.index)
		return nil
	}
	if parent.arena != a {
		return ErrForeignArena
	}
	a.get(parent)

	for p := parent.index; p != none; p = a.nodes[p].parent {
		if p == child.index {
			return ErrCycle
		}
	}

	a.detach(child.index)
	a.nodes[child.index].parent = parent.index
	a.nodes[child.index].localDirty = true
	a.nodes[parent.index].children = append(a.nodes[parent.index].children, child.index)
	return nil
}
