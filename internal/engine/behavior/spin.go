// Package behavior holds reusable actions.
package behavior

import (
	"github.com/Faultbox/prism/internal/engine/actor"
	"github.com/Faultbox/prism/pkg/math"
)

// SpinKey is the action key of Spin.
const SpinKey actor.Key = "spin"

// Spin rotates its actor at a constant angular velocity.
type Spin struct {
	// Velocity in radians per second (X=pitch, Y=yaw, Z=roll).
	Velocity math.Vec3
}

func (s *Spin) ActionKey() actor.Key { return SpinKey }

func (s *Spin) Update(a *actor.Actor, dt float64) {
	a.Transform().Rotate(s.Velocity.Scale(float32(dt)))
}
