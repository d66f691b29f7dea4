package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/prism/internal/engine/actor"
	"github.com/Faultbox/prism/pkg/math"
)

// OrbitKey is the action key of OrbitController.
const OrbitKey actor.Key = "orbit"

// OrbitController is an action that orbits its actor around a center point.
// Input handlers accumulate into it; Update writes the transform.
type OrbitController struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from center
	Pitch    float32 // Elevation above the XZ plane (radians)
	Yaw      float32 // Rotation around Y (radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32

	// AutoRotate spins the orbit in radians per second.
	AutoRotate float32
}

// NewOrbitController creates an orbit controller with default settings.
func NewOrbitController() *OrbitController {
	return &OrbitController{
		Distance:        8,
		Pitch:           0.4,
		MinDistance:     1,
		MaxDistance:     500,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

func (c *OrbitController) ActionKey() actor.Key { return OrbitKey }

// Start snaps the actor onto the orbit.
func (c *OrbitController) Start(a *actor.Actor) {
	c.apply(a)
}

// Update advances auto-rotation and writes position and orientation.
func (c *OrbitController) Update(a *actor.Actor, dt float64) {
	if c.AutoRotate != 0 {
		c.Yaw += c.AutoRotate * float32(dt)
	}
	c.apply(a)
}

func (c *OrbitController) apply(a *actor.Actor) {
	t := a.Transform()
	t.SetLocalPosition(c.Position())
	// Looking from the orbit position at the center: forward is -offset,
	// which is pitch -Pitch and yaw Yaw in Yaw-Pitch-Roll order.
	t.SetLocalEulerAngles(math.Vec3{X: -c.Pitch, Y: c.Yaw})
}

// Position returns the orbit position in world space.
func (c *OrbitController) Position() math.Vec3 {
	sp, cp := math32.Sincos(c.Pitch)
	sy, cy := math32.Sincos(c.Yaw)
	return c.Center.Add(math.Vec3{
		X: c.Distance * cp * sy,
		Y: c.Distance * sp,
		Z: c.Distance * cp * cy,
	})
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitController) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity
	c.Pitch = clamp(c.Pitch, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitController) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center point on the XZ plane relative to the
// current yaw.
func (c *OrbitController) HandleMovement(forward, right, up float32) {
	// Speed scales with distance for consistent feel
	speed := c.Distance * 0.01
	sy, cy := math32.Sincos(c.Yaw)

	c.Center.X += (-sy*forward + cy*right) * speed
	c.Center.Z += (-cy*forward - sy*right) * speed
	c.Center.Y += up * speed
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
