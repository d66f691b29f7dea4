// Package camera provides cameras and camera controllers for 3D rendering.
package camera

import (
	"github.com/Faultbox/prism/internal/engine/actor"
	"github.com/Faultbox/prism/pkg/math"
)

// Projection selects the projection model.
type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

// Camera is an actor that defines a view and a projection. The view looks
// down the transform's local -Z axis.
type Camera struct {
	*actor.Actor

	projection Projection
	fovY       float32 // radians
	halfHeight float32 // orthographic half extent
	aspect     float32
	near, far  float32
}

// New wraps a with a 60 degree perspective camera.
func New(a *actor.Actor) *Camera {
	return &Camera{
		Actor:      a,
		projection: Perspective,
		fovY:       math.Radians(60),
		halfHeight: 10,
		aspect:     1,
		near:       0.1,
		far:        1000,
	}
}

// SetPerspective switches to a perspective projection.
func (c *Camera) SetPerspective(fovY, aspect, near, far float32) {
	c.projection = Perspective
	c.fovY, c.aspect, c.near, c.far = fovY, aspect, near, far
}

// SetOrthographic switches to an orthographic projection spanning
// [-halfHeight, halfHeight] vertically.
func (c *Camera) SetOrthographic(halfHeight, aspect, near, far float32) {
	c.projection = Orthographic
	c.halfHeight, c.aspect, c.near, c.far = halfHeight, aspect, near, far
}

// SetAspect updates the aspect ratio, e.g. after a resize.
func (c *Camera) SetAspect(aspect float32) { c.aspect = aspect }

// SetFovY sets the vertical field of view in radians.
func (c *Camera) SetFovY(fovY float32) { c.fovY = fovY }

// Projection returns the projection model.
func (c *Camera) Projection() Projection { return c.projection }

// FovY returns the vertical field of view in radians.
func (c *Camera) FovY() float32 { return c.fovY }

// Aspect returns the aspect ratio.
func (c *Camera) Aspect() float32 { return c.aspect }

// ClipPlanes returns the near and far clip distances.
func (c *Camera) ClipPlanes() (near, far float32) { return c.near, c.far }

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math.Mat4 {
	if c.projection == Orthographic {
		w := c.halfHeight * c.aspect
		return math.Ortho(-w, w, -c.halfHeight, c.halfHeight, c.near, c.far)
	}
	return math.Perspective(c.fovY, c.aspect, c.near, c.far)
}

// ViewMatrix returns the inverse of the camera's world matrix.
func (c *Camera) ViewMatrix() math.Mat4 {
	return c.Transform().Matrix().Inverse()
}

// Position returns the camera position in world space.
func (c *Camera) Position() math.Vec3 {
	return c.Transform().WorldPosition()
}
