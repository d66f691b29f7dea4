package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/prism/pkg/math"
)

// SunDirection converts longitude/latitude angles in degrees to a light
// direction vector. Longitude is rotation around Y (0-360), latitude is
// elevation from the horizon (0-90). Returns a normalized vector pointing
// towards the sun.
func SunDirection(longitude, latitude float32) math.Vec3 {
	sinLon, cosLon := math32.Sincos(math.Radians(longitude))
	sinLat, cosLat := math32.Sincos(math.Radians(latitude))

	return math.Vec3{
		X: cosLat * sinLon,
		Y: sinLat,
		Z: cosLat * cosLon,
	}
}

// SunEuler returns Euler angles (X=pitch, Y=yaw) that aim a directional
// light's forward axis away from the sun at longitude/latitude. Both are
// in degrees.
func SunEuler(longitude, latitude float32) math.Vec3 {
	return eulerFacing(SunDirection(longitude, latitude).Negate())
}

// eulerFacing returns the pitch and yaw that turn the -Z forward axis onto
// the unit vector dir.
func eulerFacing(dir math.Vec3) math.Vec3 {
	y := dir.Y
	if y > 1 {
		y = 1
	} else if y < -1 {
		y = -1
	}
	return math.Vec3{
		X: math32.Asin(y),
		Y: math32.Atan2(-dir.X, -dir.Z),
	}
}
