// Package gputest provides a recording gpu.Device for tests.
//
// Recorder performs no rendering. It hands out sequential handles, tracks
// the bound framebuffer and program, and appends every call to Calls so
// tests can assert ordering and binding contracts.
package gputest

import (
	"fmt"

	"github.com/Faultbox/prism/internal/engine/gpu"
	"github.com/Faultbox/prism/pkg/math"
)

// Op names recorded by Recorder.
const (
	OpCreateFramebuffer = "CreateFramebuffer"
	OpDeleteFramebuffer = "DeleteFramebuffer"
	OpCreateLayer       = "CreateLayer"
	OpDeleteLayer       = "DeleteLayer"
	OpAttachLayer       = "AttachLayer"
	OpDrawBuffers       = "SetDrawBuffers"
	OpCheckFramebuffer  = "CheckFramebuffer"
	OpBindFramebuffer   = "BindFramebuffer"
	OpClear             = "Clear"
	OpReadPixels        = "ReadPixels"
	OpCompileProgram    = "CompileProgram"
	OpDeleteProgram     = "DeleteProgram"
	OpUseProgram        = "UseProgram"
	OpApplyState        = "ApplyState"
	OpUniform           = "Uniform"
	OpBindTexture       = "BindTexture"
	OpCreateMesh        = "CreateMesh"
	OpDrawMesh          = "DrawMesh"
	OpDeleteMesh        = "DeleteMesh"
)

// Call is one recorded device call.
type Call struct {
	Op          string
	Handle      gpu.Handle // object the call acted on
	Framebuffer gpu.Handle // framebuffer bound when the call was made
	Program     gpu.Handle // program in use when the call was made
	Face        gpu.CubeFace
	Desc        gpu.LayerDesc
	Flags       gpu.ClearFlags
	Name        string // uniform name
	Value       any    // uniform value or texture
}

// Recorder is a gpu.Device that records calls.
type Recorder struct {
	Calls []Call

	// CheckErr, when set, is returned by CheckFramebuffer.
	CheckErr error
	// CompileErr, when set, is returned by CompileProgram. The failed
	// attempt is still recorded, with a zero Handle.
	CompileErr error

	next        gpu.Handle
	framebuffer gpu.Handle
	program     gpu.Handle
	live        map[gpu.Handle]string
	uniforms    map[gpu.Handle]map[string]any
}

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{
		live:     make(map[gpu.Handle]string),
		uniforms: make(map[gpu.Handle]map[string]any),
	}
}

var _ gpu.Device = (*Recorder)(nil)

func (r *Recorder) alloc(kind string) gpu.Handle {
	r.next++
	r.live[r.next] = kind
	return r.next
}

func (r *Recorder) free(h gpu.Handle, kind string) {
	if got, ok := r.live[h]; !ok || got != kind {
		panic(fmt.Sprintf("gputest: delete of %s %d which is not live (double free?)", kind, h))
	}
	delete(r.live, h)
}

func (r *Recorder) record(c Call) {
	c.Framebuffer = r.framebuffer
	c.Program = r.program
	r.Calls = append(r.Calls, c)
}

// Reset drops recorded calls but keeps live objects.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
}

// Live returns the number of live objects of the given kind
// ("framebuffer", "layer", "program", "mesh").
func (r *Recorder) Live(kind string) int {
	n := 0
	for _, k := range r.live {
		if k == kind {
			n++
		}
	}
	return n
}

// Ops returns the recorded op names, optionally filtered.
func (r *Recorder) Ops(filter ...string) []string {
	keep := make(map[string]bool, len(filter))
	for _, f := range filter {
		keep[f] = true
	}
	var out []string
	for _, c := range r.Calls {
		if len(keep) == 0 || keep[c.Op] {
			out = append(out, c.Op)
		}
	}
	return out
}

// Filter returns the recorded calls with the given op.
func (r *Recorder) Filter(op string) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Uniform returns the last value set for name on program.
func (r *Recorder) Uniform(program gpu.Handle, name string) (any, bool) {
	v, ok := r.uniforms[program][name]
	return v, ok
}

func (r *Recorder) CreateFramebuffer() (gpu.Handle, error) {
	h := r.alloc("framebuffer")
	r.record(Call{Op: OpCreateFramebuffer, Handle: h})
	return h, nil
}

func (r *Recorder) DeleteFramebuffer(fb gpu.Handle) {
	r.free(fb, "framebuffer")
	r.record(Call{Op: OpDeleteFramebuffer, Handle: fb})
}

func (r *Recorder) CreateLayer(desc gpu.LayerDesc) (gpu.Handle, error) {
	h := r.alloc("layer")
	r.record(Call{Op: OpCreateLayer, Handle: h, Desc: desc})
	return h, nil
}

func (r *Recorder) DeleteLayer(layer gpu.Handle, desc gpu.LayerDesc) {
	r.free(layer, "layer")
	r.record(Call{Op: OpDeleteLayer, Handle: layer, Desc: desc})
}

func (r *Recorder) AttachLayer(fb, layer gpu.Handle, desc gpu.LayerDesc, colorIndex int, face gpu.CubeFace) {
	r.record(Call{Op: OpAttachLayer, Handle: layer, Desc: desc, Face: face, Value: colorIndex})
}

func (r *Recorder) SetDrawBuffers(fb gpu.Handle, colorCount int) {
	r.record(Call{Op: OpDrawBuffers, Handle: fb, Value: colorCount})
}

func (r *Recorder) CheckFramebuffer(fb gpu.Handle) error {
	r.record(Call{Op: OpCheckFramebuffer, Handle: fb})
	return r.CheckErr
}

func (r *Recorder) BindFramebuffer(fb gpu.Handle, width, height int32) {
	r.framebuffer = fb
	r.record(Call{Op: OpBindFramebuffer, Handle: fb, Value: [2]int32{width, height}})
}

func (r *Recorder) Clear(flags gpu.ClearFlags, color [4]float32) {
	r.record(Call{Op: OpClear, Flags: flags, Value: color})
}

func (r *Recorder) ReadPixels(fb gpu.Handle, width, height int32) []byte {
	r.record(Call{Op: OpReadPixels, Handle: fb})
	return make([]byte, int(width)*int(height)*4)
}

func (r *Recorder) CompileProgram(vertexSrc, fragmentSrc string) (gpu.Handle, error) {
	if r.CompileErr != nil {
		r.record(Call{Op: OpCompileProgram, Value: [2]string{vertexSrc, fragmentSrc}})
		return 0, r.CompileErr
	}
	h := r.alloc("program")
	r.record(Call{Op: OpCompileProgram, Handle: h, Value: [2]string{vertexSrc, fragmentSrc}})
	return h, nil
}

func (r *Recorder) DeleteProgram(program gpu.Handle) {
	r.free(program, "program")
	delete(r.uniforms, program)
	r.record(Call{Op: OpDeleteProgram, Handle: program})
}

func (r *Recorder) UseProgram(program gpu.Handle) {
	r.program = program
	r.record(Call{Op: OpUseProgram, Handle: program})
}

func (r *Recorder) ApplyState(state gpu.RenderState) {
	r.record(Call{Op: OpApplyState, Value: state})
}

func (r *Recorder) setUniform(program gpu.Handle, name string, v any) {
	m := r.uniforms[program]
	if m == nil {
		m = make(map[string]any)
		r.uniforms[program] = m
	}
	m[name] = v
	r.record(Call{Op: OpUniform, Handle: program, Name: name, Value: v})
}

func (r *Recorder) SetUniformInt(program gpu.Handle, name string, v int32) {
	r.setUniform(program, name, v)
}

func (r *Recorder) SetUniformFloat(program gpu.Handle, name string, v float32) {
	r.setUniform(program, name, v)
}

func (r *Recorder) SetUniformVec3(program gpu.Handle, name string, v math.Vec3) {
	r.setUniform(program, name, v)
}

func (r *Recorder) SetUniformVec4(program gpu.Handle, name string, v [4]float32) {
	r.setUniform(program, name, v)
}

func (r *Recorder) SetUniformMat4(program gpu.Handle, name string, m math.Mat4) {
	r.setUniform(program, name, m)
}

func (r *Recorder) BindTexture(unit uint32, tex gpu.Texture) {
	r.record(Call{Op: OpBindTexture, Handle: tex.Handle, Value: unit})
}

func (r *Recorder) CreateMesh(data gpu.MeshData) (gpu.Handle, error) {
	h := r.alloc("mesh")
	r.record(Call{Op: OpCreateMesh, Handle: h, Value: data.VertexCount()})
	return h, nil
}

func (r *Recorder) DrawMesh(mesh gpu.Handle) {
	r.record(Call{Op: OpDrawMesh, Handle: mesh})
}

func (r *Recorder) DeleteMesh(mesh gpu.Handle) {
	r.free(mesh, "mesh")
	r.record(Call{Op: OpDeleteMesh, Handle: mesh})
}
