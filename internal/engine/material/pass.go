package material

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/engine/gpu"
	"github.com/Faultbox/prism/internal/logger"
	"github.com/Faultbox/prism/pkg/math"
)

// PassConfig describes one shading pass. Sources are taken from the files
// when VertexFile/FragmentFile are set.
type PassConfig struct {
	Name     string
	Priority int
	Tags     []string
	State    gpu.RenderState
	Lit      bool

	VertexSource   string
	FragmentSource string
	VertexFile     string
	FragmentFile   string
}

// Pass is one shading configuration of a Material. Lower priorities draw
// first.
type Pass struct {
	material *Material
	name     string
	priority int
	tags     Tags
	state    gpu.RenderState
	lit      bool
	program  gpu.Handle

	vertexFile, fragmentFile string
}

func (p *Pass) Material() *Material    { return p.material }
func (p *Pass) Name() string           { return p.name }
func (p *Pass) Priority() int          { return p.priority }
func (p *Pass) Tags() Tags             { return p.tags }
func (p *Pass) State() gpu.RenderState { return p.state }
func (p *Pass) Lit() bool              { return p.lit }
func (p *Pass) Program() gpu.Handle    { return p.program }

// Files returns the shader files backing the pass, if any.
func (p *Pass) Files() []string {
	var out []string
	if p.vertexFile != "" {
		out = append(out, p.vertexFile)
	}
	if p.fragmentFile != "" {
		out = append(out, p.fragmentFile)
	}
	return out
}

func loadSources(cfg PassConfig) (vertex, fragment string, err error) {
	vertex, fragment = cfg.VertexSource, cfg.FragmentSource
	if cfg.VertexFile != "" {
		b, err := os.ReadFile(cfg.VertexFile)
		if err != nil {
			return "", "", fmt.Errorf("reading vertex shader: %w", err)
		}
		vertex = string(b)
	}
	if cfg.FragmentFile != "" {
		b, err := os.ReadFile(cfg.FragmentFile)
		if err != nil {
			return "", "", fmt.Errorf("reading fragment shader: %w", err)
		}
		fragment = string(b)
	}
	return vertex, fragment, nil
}

// Reload re-reads the pass's shader files and swaps in the new program.
// On failure the previous program stays in use.
func (p *Pass) Reload() error {
	if len(p.Files()) == 0 {
		return nil
	}
	vs, fs, err := loadSources(PassConfig{VertexFile: p.vertexFile, FragmentFile: p.fragmentFile})
	if err != nil {
		return err
	}
	prog, err := p.material.dev.CompileProgram(vs, fs)
	if err != nil {
		return fmt.Errorf("recompiling pass %q of %q: %w", p.name, p.material.name, err)
	}
	old := p.program
	p.program = prog
	if old != 0 {
		p.material.dev.DeleteProgram(old)
	}
	logger.Info("shader reloaded",
		zap.String("material", p.material.name),
		zap.String("pass", p.name),
	)
	return nil
}

// SetInt uploads an int uniform to the pass program. Together with the
// other Set methods it makes Pass an actor.Uniforms.
func (p *Pass) SetInt(name string, v int32) {
	p.material.dev.SetUniformInt(p.program, name, v)
}

// SetFloat uploads a float uniform to the pass program.
func (p *Pass) SetFloat(name string, v float32) {
	p.material.dev.SetUniformFloat(p.program, name, v)
}

// SetVec3 uploads a vec3 uniform to the pass program.
func (p *Pass) SetVec3(name string, v math.Vec3) {
	p.material.dev.SetUniformVec3(p.program, name, v)
}

// SetVec4 uploads a vec4 uniform to the pass program.
func (p *Pass) SetVec4(name string, v [4]float32) {
	p.material.dev.SetUniformVec4(p.program, name, v)
}

// SetMat4 uploads a mat4 uniform to the pass program.
func (p *Pass) SetMat4(name string, m math.Mat4) {
	p.material.dev.SetUniformMat4(p.program, name, m)
}
