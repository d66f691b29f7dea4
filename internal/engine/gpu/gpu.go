// Package gpu defines the GPU capability the render core draws through.
//
// The core never calls a graphics API directly. Framebuffers, layers,
// programs, uniforms, meshes and fixed-function state all go through a
// Device, so the same orchestration runs on OpenGL (package opengl) and on
// the recording fake used in tests (package gputest).
package gpu

import (
	"fmt"

	"github.com/Faultbox/prism/pkg/math"
)

// Handle identifies a device object. Zero is "none"; framebuffer zero is the
// window's default framebuffer.
type Handle uint32

// Shape is the geometry of a framebuffer or layer.
type Shape int

const (
	ShapeScreen Shape = iota // the window's default framebuffer
	ShapeFlat                // 2D off-screen
	ShapeCube                // 6-face cube map
)

func (s Shape) String() string {
	switch s {
	case ShapeScreen:
		return "screen"
	case ShapeFlat:
		return "flat"
	case ShapeCube:
		return "cube"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ParseShape converts a config string to a Shape.
func ParseShape(s string) (Shape, error) {
	switch s {
	case "screen":
		return ShapeScreen, nil
	case "flat", "2d":
		return ShapeFlat, nil
	case "cube":
		return ShapeCube, nil
	}
	return 0, fmt.Errorf("unknown shape %q", s)
}

// LayerKind selects a color or depth plane.
type LayerKind int

const (
	LayerColor LayerKind = iota
	LayerDepth
)

func (k LayerKind) String() string {
	if k == LayerDepth {
		return "depth"
	}
	return "color"
}

// ParseLayerKind converts a config string to a LayerKind.
func ParseLayerKind(s string) (LayerKind, error) {
	switch s {
	case "color":
		return LayerColor, nil
	case "depth":
		return LayerDepth, nil
	}
	return 0, fmt.Errorf("unknown layer kind %q", s)
}

// Permission describes how a layer may be used after rendering.
type Permission int

const (
	// WriteOnly layers are fast render-only storage and cannot be sampled.
	WriteOnly Permission = iota
	// ReadWrite layers are textures that later passes can sample.
	ReadWrite
)

func (p Permission) String() string {
	if p == ReadWrite {
		return "read_write"
	}
	return "write_only"
}

// ParsePermission converts a config string to a Permission.
func ParsePermission(s string) (Permission, error) {
	switch s {
	case "write_only", "write":
		return WriteOnly, nil
	case "read_write", "rw":
		return ReadWrite, nil
	}
	return 0, fmt.Errorf("unknown permission %q", s)
}

// Filter is the sampling filter of a read-write layer.
type Filter int

const (
	FilterLinear Filter = iota
	FilterNearest
)

// ParseFilter converts a config string to a Filter. Empty means linear.
func ParseFilter(s string) (Filter, error) {
	switch s {
	case "", "linear":
		return FilterLinear, nil
	case "nearest":
		return FilterNearest, nil
	}
	return 0, fmt.Errorf("unknown filter %q", s)
}

// CubeFace indexes the six faces of a cube map in GL order.
type CubeFace int

const (
	FacePositiveX CubeFace = iota
	FaceNegativeX
	FacePositiveY
	FaceNegativeY
	FacePositiveZ
	FaceNegativeZ
)

// CubeFaces lists all faces in draw order.
var CubeFaces = [6]CubeFace{
	FacePositiveX, FaceNegativeX,
	FacePositiveY, FaceNegativeY,
	FacePositiveZ, FaceNegativeZ,
}

// LayerDesc describes the storage of one layer.
type LayerDesc struct {
	Kind       LayerKind
	Permission Permission
	Filter     Filter
	Shape      Shape
	Width      int32
	Height     int32
}

// ClearFlags selects which planes Clear touches.
type ClearFlags uint8

const (
	ClearColor ClearFlags = 1 << iota
	ClearDepth
)

// BlendMode selects fixed-function blending.
type BlendMode int

const (
	BlendOpaque BlendMode = iota
	BlendAlpha
	BlendAdditive
)

// CullMode selects face culling.
type CullMode int

const (
	CullBack CullMode = iota
	CullFront
	CullNone
)

// RenderState is the fixed-function state a pass draws with.
type RenderState struct {
	Blend      BlendMode
	Cull       CullMode
	DepthTest  bool
	DepthWrite bool
}

// DefaultRenderState is opaque, back-face culled, depth tested and written.
func DefaultRenderState() RenderState {
	return RenderState{Blend: BlendOpaque, Cull: CullBack, DepthTest: true, DepthWrite: true}
}

// Texture is a sampleable texture reference. It does not own the storage.
type Texture struct {
	Handle Handle
	Shape  Shape
}

// VertexAttribute describes one interleaved float attribute.
type VertexAttribute struct {
	Location uint32
	Size     int32
}

// MeshData is interleaved float vertex data with optional indices.
type MeshData struct {
	Vertices   []float32
	Indices    []uint32
	Attributes []VertexAttribute
}

// Stride returns the number of floats per vertex.
func (d MeshData) Stride() int32 {
	var n int32
	for _, a := range d.Attributes {
		n += a.Size
	}
	return n
}

// VertexCount returns the number of vertices in Vertices.
func (d MeshData) VertexCount() int32 {
	s := d.Stride()
	if s == 0 {
		return 0
	}
	return int32(len(d.Vertices)) / s
}

// Device is the GPU capability used by the render core.
type Device interface {
	CreateFramebuffer() (Handle, error)
	DeleteFramebuffer(fb Handle)
	CreateLayer(desc LayerDesc) (Handle, error)
	DeleteLayer(layer Handle, desc LayerDesc)
	// AttachLayer attaches a layer to fb. colorIndex is ignored for depth
	// layers; face is ignored unless desc.Shape is ShapeCube.
	AttachLayer(fb, layer Handle, desc LayerDesc, colorIndex int, face CubeFace)
	SetDrawBuffers(fb Handle, colorCount int)
	CheckFramebuffer(fb Handle) error
	BindFramebuffer(fb Handle, width, height int32)
	Clear(flags ClearFlags, color [4]float32)
	ReadPixels(fb Handle, width, height int32) []byte

	CompileProgram(vertexSrc, fragmentSrc string) (Handle, error)
	DeleteProgram(program Handle)
	UseProgram(program Handle)
	ApplyState(state RenderState)
	SetUniformInt(program Handle, name string, v int32)
	SetUniformFloat(program Handle, name string, v float32)
	SetUniformVec3(program Handle, name string, v math.Vec3)
	SetUniformVec4(program Handle, name string, v [4]float32)
	SetUniformMat4(program Handle, name string, m math.Mat4)
	BindTexture(unit uint32, tex Texture)

	CreateMesh(data MeshData) (Handle, error)
	DrawMesh(mesh Handle)
	DeleteMesh(mesh Handle)
}
