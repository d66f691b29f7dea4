// Package lighting provides lights and the uniforms lit passes read.
package lighting

import (
	"github.com/Faultbox/prism/internal/engine/actor"
	"github.com/Faultbox/prism/pkg/math"
)

// Kind selects the light model.
type Kind int

const (
	Directional Kind = iota
	Point
)

func (k Kind) String() string {
	if k == Point {
		return "point"
	}
	return "directional"
}

// Light is an actor that emits light. A directional light shines along the
// transform's forward axis; a point light radiates from its position.
type Light struct {
	*actor.Actor

	Kind      Kind
	Color     math.Vec3 // RGB, 0-1
	Intensity float32
	Range     float32 // point light falloff distance

	// ShadowBounds is the world region a directional light's shadow map
	// covers. Empty bounds disable shadows.
	ShadowBounds AABB
}

// New wraps a with a white directional light.
func New(a *actor.Actor) *Light {
	return &Light{
		Actor:     a,
		Kind:      Directional,
		Color:     math.One,
		Intensity: 1,
		Range:     10,
	}
}

// Direction returns the direction the light travels, in world space.
func (l *Light) Direction() math.Vec3 {
	return l.Transform().WorldForward()
}

// CastsShadows reports whether the light renders a shadow map.
func (l *Light) CastsShadows() bool {
	return l.Kind == Directional && l.ShadowBounds.Radius() > 0
}

// ShadowMatrix returns the world to light clip space transform of the
// light's shadow map.
func (l *Light) ShadowMatrix() math.Mat4 {
	return ShadowMatrix(l.Direction(), l.ShadowBounds)
}

// Position returns the light position in world space.
func (l *Light) Position() math.Vec3 {
	return l.Transform().WorldPosition()
}

// PointLight returns the light in GPU buffer form.
func (l *Light) PointLight() PointLight {
	p := l.Position()
	return PointLight{
		Position:  [3]float32{p.X, p.Y, p.Z},
		Color:     clampColor(l.Color),
		Range:     l.Range,
		Intensity: l.Intensity,
	}
}

func clampColor(c math.Vec3) [3]float32 {
	out := [3]float32{c.X, c.Y, c.Z}
	for i := range out {
		if out[i] > 1 {
			out[i] = 1
		}
		if out[i] < 0 {
			out[i] = 0
		}
	}
	return out
}
