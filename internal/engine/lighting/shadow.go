package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/prism/internal/engine/actor"
	"github.com/Faultbox/prism/internal/engine/camera"
	"github.com/Faultbox/prism/pkg/math"
)

// Shadow uniforms read by lit shaders.
const (
	UniformLightSpaceMatrix = "uLightSpaceMatrix"
	UniformShadowsEnabled   = "uShadowsEnabled"
)

// ShadowCasterKey is the action key of ShadowCaster.
const ShadowCasterKey actor.Key = "shadow_caster"

const shadowNear = 0.1

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min, Max math.Vec3
}

// Center returns the center point of the AABB.
func (b AABB) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Radius returns the distance from center to corner (half-diagonal).
func (b AABB) Radius() float32 {
	return b.Max.Sub(b.Min).Scale(0.5).Length()
}

// shadowFrame is the orthographic volume a directional light renders its
// depth into.
type shadowFrame struct {
	eye, center, up math.Vec3
	halfSize, far   float32
}

func fitShadow(dir math.Vec3, bounds AABB) shadowFrame {
	toLight := dir.Negate().Normalize()
	center := bounds.Center()
	radius := bounds.Radius()

	// Position light far enough to encompass entire scene
	lightDistance := radius * 2.0

	// Avoid an up vector parallel to the light
	up := math.AxisUp
	if math32.Abs(toLight.Y) > 0.99 {
		up = math.Vec3{X: 0, Y: 0, Z: 1}
	}

	// Pad the ortho box to avoid edge artifacts
	padding := radius * 0.1
	return shadowFrame{
		eye:      center.Add(toLight.Scale(lightDistance)),
		center:   center,
		up:       up,
		halfSize: radius + padding,
		far:      lightDistance + radius + padding,
	}
}

// ShadowMatrix computes the view-projection of a directional light's
// shadow map covering bounds. dir is the direction the light travels.
func ShadowMatrix(dir math.Vec3, bounds AABB) math.Mat4 {
	f := fitShadow(dir, bounds)
	view := math.LookAt(f.eye, f.center, f.up)
	proj := math.Ortho(-f.halfSize, f.halfSize, -f.halfSize, f.halfSize, shadowNear, f.far)
	return proj.Mul(view)
}

// ShadowCaster keeps a camera aligned with Light's shadow volume so a depth
// target rendered through it matches ShadowMatrix. The camera must not have
// a parent transform.
type ShadowCaster struct {
	Camera *camera.Camera
	Light  *Light
}

func (s *ShadowCaster) ActionKey() actor.Key { return ShadowCasterKey }

func (s *ShadowCaster) Start(a *actor.Actor) { s.fit() }

func (s *ShadowCaster) Update(a *actor.Actor, dt float64) { s.fit() }

func (s *ShadowCaster) fit() {
	if s.Light == nil || !s.Light.CastsShadows() {
		return
	}
	dir := s.Light.Direction().Normalize()
	f := fitShadow(dir, s.Light.ShadowBounds)

	t := s.Camera.Transform()
	t.SetLocalPosition(f.eye)
	t.SetLocalEulerAngles(eulerFacing(dir))
	s.Camera.SetOrthographic(f.halfSize, 1, shadowNear, f.far)
}
