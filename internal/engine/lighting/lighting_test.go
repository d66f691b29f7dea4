package lighting

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/prism/internal/engine/actor"
	"github.com/Faultbox/prism/internal/engine/camera"
	"github.com/Faultbox/prism/internal/engine/transform"
	"github.com/Faultbox/prism/pkg/math"
)

const eps = 1e-4

type recorded map[string]any

func (r recorded) SetInt(n string, v int32)       { r[n] = v }
func (r recorded) SetFloat(n string, v float32)   { r[n] = v }
func (r recorded) SetVec3(n string, v math.Vec3)  { r[n] = v }
func (r recorded) SetVec4(n string, v [4]float32) { r[n] = v }
func (r recorded) SetMat4(n string, m math.Mat4)  { r[n] = m }

func newLight(arena *transform.Arena, name string) *Light {
	return New(actor.New(name, arena.New()))
}

func TestSunDirection(t *testing.T) {
	tests := []struct {
		lon, lat float32
		want     math.Vec3
	}{
		{0, 0, math.Vec3{X: 0, Y: 0, Z: 1}},
		{90, 0, math.Vec3{X: 1, Y: 0, Z: 0}},
		{0, 90, math.Vec3{X: 0, Y: 1, Z: 0}},
	}
	for _, tt := range tests {
		got := SunDirection(tt.lon, tt.lat)
		assert.InDelta(t, tt.want.X, got.X, eps)
		assert.InDelta(t, tt.want.Y, got.Y, eps)
		assert.InDelta(t, tt.want.Z, got.Z, eps)
	}
}

func TestSunEulerPointsAwayFromSun(t *testing.T) {
	arena := transform.NewArena()
	l := newLight(arena, "sun")
	l.Transform().SetLocalEulerAngles(SunEuler(45, 60))

	dir := l.Direction()
	sun := SunDirection(45, 60)
	assert.InDelta(t, -1, dir.Dot(sun), eps)
}

func TestUploadPicksFirstDirectional(t *testing.T) {
	arena := transform.NewArena()
	dead := newLight(arena, "dead")
	dead.Kill()
	sun := newLight(arena, "sun")
	sun.Color = math.Vec3{X: 2, Y: 0.5, Z: -1}
	sun.Intensity = 0.8
	second := newLight(arena, "second")
	second.Intensity = 0.1

	u := recorded{}
	Upload(u, []*Light{dead, sun, second})

	assert.Equal(t, float32(0.8), u[UniformLightIntensity])
	assert.Equal(t, math.Vec3{X: 1, Y: 0.5, Z: 0}, u[UniformLightColor])
	assert.Equal(t, int32(0), u[UniformPointLightCount])
}

func TestUploadPointLights(t *testing.T) {
	arena := transform.NewArena()
	var lights []*Light
	for i := 0; i < MaxPointLights+4; i++ {
		l := newLight(arena, "p")
		l.Kind = Point
		l.Range = 5
		l.Transform().SetLocalPosition(math.Vec3{X: float32(i)})
		lights = append(lights, l)
	}

	u := recorded{}
	Upload(u, lights)

	assert.Equal(t, int32(MaxPointLights), u[UniformPointLightCount])
	assert.Equal(t, math.Vec3{X: 3}, u["uPointLightPositions[3]"])
	assert.Equal(t, float32(5), u["uPointLightRanges[31]"])
	assert.NotContains(t, u, "uPointLightPositions[32]")
	assert.Equal(t, float32(0), u[UniformLightIntensity], "no directional light")
}

func TestShadowMatrixCoversBounds(t *testing.T) {
	bounds := AABB{Min: math.Vec3{X: -10, Y: 0, Z: -10}, Max: math.Vec3{X: 10, Y: 5, Z: 10}}
	m := ShadowMatrix(SunDirection(30, 50).Negate(), bounds)

	corners := []math.Vec3{bounds.Min, bounds.Max, {X: -10, Y: 5, Z: 10}, {X: 10, Y: 0, Z: -10}}
	for _, c := range corners {
		p := mgl32.Mat4(m).Mul4x1(mgl32.Vec4{c.X, c.Y, c.Z, 1})
		for i := 0; i < 3; i++ {
			assert.LessOrEqual(t, p[i], float32(1), "corner %v axis %d", c, i)
			assert.GreaterOrEqual(t, p[i], float32(-1), "corner %v axis %d", c, i)
		}
	}
}

func TestSunEulerMatchesLatitudeAndLongitude(t *testing.T) {
	e := SunEuler(40, 50)
	assert.InDelta(t, -math.Radians(50), e.X, eps)
	assert.InDelta(t, math.Radians(40), e.Y, eps)
	assert.Zero(t, e.Z)
}

func TestUploadShadowUniforms(t *testing.T) {
	arena := transform.NewArena()
	sun := newLight(arena, "sun")
	sun.Transform().SetLocalEulerAngles(SunEuler(40, 50))

	u := recorded{}
	Upload(u, []*Light{sun})
	assert.Equal(t, int32(0), u[UniformShadowsEnabled])
	assert.NotContains(t, u, UniformLightSpaceMatrix)

	sun.ShadowBounds = AABB{Min: math.Vec3{X: -6, Y: -0.2, Z: -6}, Max: math.Vec3{X: 6, Y: 3, Z: 6}}
	require.True(t, sun.CastsShadows())
	u = recorded{}
	Upload(u, []*Light{sun})
	assert.Equal(t, int32(1), u[UniformShadowsEnabled])
	assert.Equal(t, ShadowMatrix(sun.Direction(), sun.ShadowBounds), u[UniformLightSpaceMatrix])

	sun.Kind = Point
	assert.False(t, sun.CastsShadows())
}

func TestShadowCasterMatchesShadowMatrix(t *testing.T) {
	arena := transform.NewArena()
	bounds := AABB{Min: math.Vec3{X: -10, Y: 0, Z: -10}, Max: math.Vec3{X: 10, Y: 5, Z: 10}}

	tests := []struct {
		name     string
		lon, lat float32
	}{
		{"morning", 40, 50},
		{"low", 200, 10},
		{"behind", -120, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sun := newLight(arena, "sun")
			sun.Transform().SetLocalEulerAngles(SunEuler(tt.lon, tt.lat))
			sun.ShadowBounds = bounds

			view := camera.New(actor.New("view", arena.New()))
			view.MustAddAction(&ShadowCaster{Camera: view, Light: sun})
			view.Update(0)

			assert.Equal(t, camera.Orthographic, view.Projection())
			got := view.ProjectionMatrix().Mul(view.ViewMatrix())
			want := sun.ShadowMatrix()
			assert.True(t, got.ApproxEqual(want, 1e-3), "camera %v, want %v", got, want)
		})
	}
}

func TestShadowCasterIdleWithoutBounds(t *testing.T) {
	arena := transform.NewArena()
	sun := newLight(arena, "sun")
	view := camera.New(actor.New("view", arena.New()))
	view.MustAddAction(&ShadowCaster{Camera: view, Light: sun})
	view.Update(0)

	assert.Equal(t, camera.Perspective, view.Projection())
	assert.Equal(t, math.Vec3{}, view.Position())
}
