package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/prism/internal/engine/gpu"
)

type glMesh struct {
	vao, vbo, ebo uint32
	count         int32
	indexed       bool
}

// CreateMesh uploads interleaved vertex data and optional indices.
func (d *Device) CreateMesh(data gpu.MeshData) (gpu.Handle, error) {
	stride := data.Stride()
	if stride == 0 || len(data.Vertices) == 0 {
		return 0, fmt.Errorf("mesh has no vertex data")
	}

	m := &glMesh{}
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data.Vertices)*4, unsafe.Pointer(&data.Vertices[0]), gl.STATIC_DRAW)

	var offset uintptr
	for _, a := range data.Attributes {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointerWithOffset(a.Location, a.Size, gl.FLOAT, false, stride*4, offset)
		offset += uintptr(a.Size) * 4
	}

	if len(data.Indices) > 0 {
		gl.GenBuffers(1, &m.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, unsafe.Pointer(&data.Indices[0]), gl.STATIC_DRAW)
		m.count = int32(len(data.Indices))
		m.indexed = true
	} else {
		m.count = data.VertexCount()
	}

	gl.BindVertexArray(0)

	h := gpu.Handle(m.vao)
	d.meshes[h] = m
	return h, nil
}

// DrawMesh draws a mesh as triangles with the current program and state.
func (d *Device) DrawMesh(mesh gpu.Handle) {
	m, ok := d.meshes[mesh]
	if !ok {
		return
	}
	gl.BindVertexArray(m.vao)
	if m.indexed {
		gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, m.count)
	}
	gl.BindVertexArray(0)
}

// DeleteMesh frees a mesh's buffers.
func (d *Device) DeleteMesh(mesh gpu.Handle) {
	m, ok := d.meshes[mesh]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	delete(d.meshes, mesh)
}
