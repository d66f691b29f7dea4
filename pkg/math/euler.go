package math

import "github.com/chewxy/math32"

// Axis directions in local space. The renderer looks down -Z with +Y up.
var (
	AxisRight   = Vec3{1, 0, 0}
	AxisUp      = Vec3{0, 1, 0}
	AxisForward = Vec3{0, 0, -1}
)

// QuatFromEuler builds a rotation from Euler angles in radians stored as
// X=pitch, Y=yaw, Z=roll. The order is fixed Yaw-Pitch-Roll:
// q = qYaw * qPitch * qRoll, so roll is applied first in local space.
func QuatFromEuler(e Vec3) Quat {
	hp, hy, hr := e.X*0.5, e.Y*0.5, e.Z*0.5
	sp, cp := math32.Sincos(hp)
	sy, cy := math32.Sincos(hy)
	sr, cr := math32.Sincos(hr)

	return Quat{
		X: cy*sp*cr + sy*cp*sr,
		Y: sy*cp*cr - cy*sp*sr,
		Z: cy*cp*sr - sy*sp*cr,
		W: cy*cp*cr + sy*sp*sr,
	}
}

// EulerMatrix returns the rotation matrix for the given Euler angles.
// It is derived from QuatFromEuler so matrices and direction vectors agree.
func EulerMatrix(e Vec3) Mat4 {
	return QuatFromEuler(e).ToMat4()
}

// TRS composes translation * rotation * scale.
func TRS(position, euler, scale Vec3) Mat4 {
	m := EulerMatrix(euler)
	// Scale the rotation columns, then set translation.
	for i := 0; i < 3; i++ {
		m[i] *= scale.X
		m[4+i] *= scale.Y
		m[8+i] *= scale.Z
	}
	m[12], m[13], m[14] = position.X, position.Y, position.Z
	return m
}

// Forward returns the local forward axis rotated by q.
func (q Quat) Forward() Vec3 {
	return q.Rotate(AxisForward)
}

// Up returns the local up axis rotated by q.
func (q Quat) Up() Vec3 {
	return q.Rotate(AxisUp)
}

// Right returns the local right axis rotated by q.
func (q Quat) Right() Vec3 {
	return q.Rotate(AxisRight)
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * math32.Pi / 180
}
