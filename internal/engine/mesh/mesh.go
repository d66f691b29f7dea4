// Package mesh owns device vertex buffers and attaches them to actors.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/prism/internal/engine/actor"
	"github.com/Faultbox/prism/internal/engine/gpu"
)

// FilterKey is the action key of Filter.
const FilterKey actor.Key = "mesh_filter"

// Vertex attribute locations shared by every shader.
const (
	AttribPosition uint32 = 0
	AttribNormal   uint32 = 1
	AttribTexCoord uint32 = 2
)

// Layout is position(3) normal(3) texcoord(2), interleaved.
var Layout = []gpu.VertexAttribute{
	{Location: AttribPosition, Size: 3},
	{Location: AttribNormal, Size: 3},
	{Location: AttribTexCoord, Size: 2},
}

var ErrReleased = errors.New("mesh: released")

// Mesh is an uploaded vertex buffer.
type Mesh struct {
	dev      gpu.Device
	handle   gpu.Handle
	vertices int32
	released bool
}

// New uploads data to the device.
func New(dev gpu.Device, data gpu.MeshData) (*Mesh, error) {
	h, err := dev.CreateMesh(data)
	if err != nil {
		return nil, fmt.Errorf("uploading mesh: %w", err)
	}
	return &Mesh{dev: dev, handle: h, vertices: data.VertexCount()}, nil
}

// Handle returns the device handle.
func (m *Mesh) Handle() gpu.Handle { return m.handle }

// VertexCount returns the number of uploaded vertices.
func (m *Mesh) VertexCount() int32 { return m.vertices }

// Draw issues the draw call with the current program.
func (m *Mesh) Draw() error {
	if m.released {
		return ErrReleased
	}
	m.dev.DrawMesh(m.handle)
	return nil
}

// Release frees the device buffers. Safe to call twice.
func (m *Mesh) Release() {
	if m.released {
		return
	}
	m.released = true
	m.dev.DeleteMesh(m.handle)
}

// Filter is the action that gives an actor its geometry. It owns the mesh.
type Filter struct {
	mesh *Mesh
}

// NewFilter wraps m in an action.
func NewFilter(m *Mesh) *Filter {
	return &Filter{mesh: m}
}

func (f *Filter) ActionKey() actor.Key { return FilterKey }

// Mesh returns the owned mesh.
func (f *Filter) Mesh() *Mesh { return f.mesh }

// Destroy releases the mesh.
func (f *Filter) Destroy() error {
	f.mesh.Release()
	return nil
}

// Of returns the actor's Filter, if any.
func Of(a *actor.Actor) (*Filter, bool) {
	f, ok := a.Action(FilterKey).(*Filter)
	return f, ok
}
