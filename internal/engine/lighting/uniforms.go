package lighting

import (
	"fmt"

	"github.com/Faultbox/prism/internal/engine/actor"
	"github.com/Faultbox/prism/pkg/math"
)

// Uniform names read by lit shaders.
const (
	UniformLightDirection  = "uLightDirection"
	UniformLightColor      = "uLightColor"
	UniformLightIntensity  = "uLightIntensity"
	UniformPointLightCount = "uPointLightCount"
)

// pointUniform names element i of a point light array uniform.
func pointUniform(field string, i int) string {
	return fmt.Sprintf("uPointLight%s[%d]", field, i)
}

// Upload sets light uniforms for a lit pass. The first alive directional
// light is the main light; alive point lights fill the point light arrays
// up to MaxPointLights. When the main light casts shadows its light space
// matrix is uploaded too.
func Upload(u actor.Uniforms, lights []*Light) {
	var sun *Light
	buf := NewPointLightBuffer()
	for _, l := range lights {
		if !l.Alive() {
			continue
		}
		switch l.Kind {
		case Directional:
			if sun == nil {
				sun = l
			}
		case Point:
			buf.AddLight(l.PointLight())
		}
	}

	if sun != nil {
		u.SetVec3(UniformLightDirection, sun.Direction())
		c := clampColor(sun.Color)
		u.SetVec3(UniformLightColor, math.Vec3{X: c[0], Y: c[1], Z: c[2]})
		u.SetFloat(UniformLightIntensity, sun.Intensity)
	} else {
		u.SetFloat(UniformLightIntensity, 0)
	}

	if sun != nil && sun.CastsShadows() {
		u.SetMat4(UniformLightSpaceMatrix, sun.ShadowMatrix())
		u.SetInt(UniformShadowsEnabled, 1)
	} else {
		u.SetInt(UniformShadowsEnabled, 0)
	}

	u.SetInt(UniformPointLightCount, int32(buf.Count()))
	for i, p := range buf.Lights {
		u.SetVec3(pointUniform("Positions", i), math.Vec3{X: p.Position[0], Y: p.Position[1], Z: p.Position[2]})
		u.SetVec3(pointUniform("Colors", i), math.Vec3{X: p.Color[0], Y: p.Color[1], Z: p.Color[2]})
		u.SetFloat(pointUniform("Ranges", i), p.Range)
		u.SetFloat(pointUniform("Intensities", i), p.Intensity)
	}
}
