// Package material describes how actors are shaded: ordered passes, each
// with a priority, routing tags, fixed-function state and a program, plus
// textures shared by every pass.
package material

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/engine/actor"
	"github.com/Faultbox/prism/internal/engine/gpu"
	"github.com/Faultbox/prism/internal/logger"
)

// RendererKey is the action key of Renderer.
const RendererKey actor.Key = "material"

var (
	ErrNoTags      = errors.New("material: pass has no tags")
	ErrForeignPass = errors.New("material: pass belongs to another material")
)

// TextureSource yields a texture at bind time. Render-target layers
// implement it, so one target can sample what another drew.
type TextureSource interface {
	Texture() (gpu.Texture, error)
}

// StaticTexture is a TextureSource for a texture the caller owns.
type StaticTexture gpu.Texture

func (s StaticTexture) Texture() (gpu.Texture, error) { return gpu.Texture(s), nil }

type binding struct {
	uniform string
	source  TextureSource
}

// Material is a shared shading description.
type Material struct {
	dev      gpu.Device
	name     string
	passes   []*Pass
	textures []binding
}

// New creates an empty material.
func New(dev gpu.Device, name string) *Material {
	return &Material{dev: dev, name: name}
}

// Name returns the material name.
func (m *Material) Name() string { return m.name }

// Passes returns the passes in insertion order.
func (m *Material) Passes() []*Pass { return m.passes }

// AddPass compiles and appends a pass.
func (m *Material) AddPass(cfg PassConfig) (*Pass, error) {
	if len(cfg.Tags) == 0 {
		return nil, fmt.Errorf("%w: %q of %q", ErrNoTags, cfg.Name, m.name)
	}
	vs, fs, err := loadSources(cfg)
	if err != nil {
		return nil, err
	}
	prog, err := m.dev.CompileProgram(vs, fs)
	if err != nil {
		return nil, fmt.Errorf("compiling pass %q of %q: %w", cfg.Name, m.name, err)
	}

	p := &Pass{
		material:     m,
		name:         cfg.Name,
		priority:     cfg.Priority,
		tags:         NewTags(cfg.Tags...),
		state:        cfg.State,
		lit:          cfg.Lit,
		program:      prog,
		vertexFile:   cfg.VertexFile,
		fragmentFile: cfg.FragmentFile,
	}
	m.passes = append(m.passes, p)

	logger.Debug("pass added",
		zap.String("material", m.name),
		zap.String("pass", cfg.Name),
		zap.Int("priority", cfg.Priority),
		zap.Strings("tags", p.tags.Slice()),
	)
	return p, nil
}

// SetTexture binds src to a sampler uniform. Units are assigned in binding
// order.
func (m *Material) SetTexture(uniform string, src TextureSource) {
	for i := range m.textures {
		if m.textures[i].uniform == uniform {
			m.textures[i].source = src
			return
		}
	}
	m.textures = append(m.textures, binding{uniform: uniform, source: src})
}

// Bind installs p's program and state and binds the material textures.
func (m *Material) Bind(p *Pass) error {
	if p.material != m {
		return ErrForeignPass
	}
	m.dev.UseProgram(p.program)
	m.dev.ApplyState(p.state)
	for unit, b := range m.textures {
		tex, err := b.source.Texture()
		if err != nil {
			return fmt.Errorf("binding %q of %q: %w", b.uniform, m.name, err)
		}
		m.dev.BindTexture(uint32(unit), tex)
		p.SetInt(b.uniform, int32(unit))
	}
	return nil
}

// Unbind clears the texture units used by Bind.
func (m *Material) Unbind(p *Pass) {
	for unit := range m.textures {
		m.dev.BindTexture(uint32(unit), gpu.Texture{})
	}
}

// Release deletes every pass program.
func (m *Material) Release() {
	for _, p := range m.passes {
		if p.program != 0 {
			m.dev.DeleteProgram(p.program)
			p.program = 0
		}
	}
}

// Renderer is the action that gives an actor its material. The material is
// shared and not owned.
type Renderer struct {
	material *Material
}

// NewRenderer wraps m in an action.
func NewRenderer(m *Material) *Renderer {
	return &Renderer{material: m}
}

func (r *Renderer) ActionKey() actor.Key { return RendererKey }

// Material returns the referenced material.
func (r *Renderer) Material() *Material { return r.material }

// Of returns the actor's Renderer, if any.
func Of(a *actor.Actor) (*Renderer, bool) {
	r, ok := a.Action(RendererKey).(*Renderer)
	return r, ok
}
