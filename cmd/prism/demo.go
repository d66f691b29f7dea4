package main

import (
	"fmt"
	"path/filepath"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/prism/cmd/prism/shaders"
	"github.com/Faultbox/prism/internal/app"
	"github.com/Faultbox/prism/internal/config"
	"github.com/Faultbox/prism/internal/engine/actor"
	"github.com/Faultbox/prism/internal/engine/behavior"
	"github.com/Faultbox/prism/internal/engine/camera"
	"github.com/Faultbox/prism/internal/engine/gpu"
	"github.com/Faultbox/prism/internal/engine/lighting"
	"github.com/Faultbox/prism/internal/engine/material"
	"github.com/Faultbox/prism/internal/engine/mesh"
	"github.com/Faultbox/prism/internal/engine/scene"
	"github.com/Faultbox/prism/internal/logger"
	"github.com/Faultbox/prism/pkg/math"
)

// Demo tag vocabulary. Crates draw on screen and into the reflection cube;
// the mirror only draws on screen so it never samples itself. Lit actors
// also draw depth into the shadow map.
const (
	tagOpaque  = "opaque"
	tagReflect = "reflect"
	tagMirror  = "mirror"
	tagShadow  = "shadow"

	reflectionTarget = "reflection"
	shadowTarget     = "shadow"
)

// Sun position in degrees.
const (
	sunLongitude = 40
	sunLatitude  = 50
)

var (
	mirrorPosition = math.Vec3{X: 0, Y: 1.5, Z: -4}

	// The floor and everything standing on it.
	shadowBounds = lighting.AABB{
		Min: math.Vec3{X: -6, Y: -0.2, Z: -6},
		Max: math.Vec3{X: 6, Y: 3, Z: 6},
	}
)

// demo is the scene built by buildDemo.
type demo struct {
	scene  *scene.Scene
	orbit  *camera.OrbitController
	sun    *lighting.Light
	passes []*material.Pass
}

// buildDemo creates the targets from cfg and fills the scene: a ring of
// spinning crates, a floor, a shadow casting sun, a lamp and a mirror quad
// showing the reflection cube. Targets are initialized before materials
// sample them.
func buildDemo(dev gpu.Device, cfg *config.Config, width, height int32) (*demo, error) {
	s := scene.New("demo", dev)
	d := &demo{scene: s}

	targets, err := app.BuildTargets(dev, cfg.Targets, width, height)
	if err != nil {
		return nil, err
	}
	for _, t := range targets {
		if err := s.AddTarget(t); err != nil {
			return nil, err
		}
	}

	if err := d.addCameras(float32(width) / float32(max(height, 1))); err != nil {
		return nil, err
	}
	if err := d.addLights(); err != nil {
		return nil, err
	}
	if err := d.addShadowCaster(); err != nil {
		return nil, err
	}

	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("initializing targets: %w", err)
	}

	lit := material.New(dev, "lit")
	p, err := lit.AddPass(passConfig(cfg, "main", "lit.frag", shaders.LitFragmentShader, true,
		gpu.DefaultRenderState(), tagOpaque, tagReflect))
	if err != nil {
		return nil, err
	}
	d.passes = append(d.passes, p)
	if err := d.addShadowPass(cfg, lit); err != nil {
		return nil, err
	}

	if err := d.addFloor(lit); err != nil {
		return nil, err
	}
	if err := d.addCrates(lit, 5, 2.5); err != nil {
		return nil, err
	}
	if err := d.addMirror(cfg); err != nil {
		return nil, err
	}

	logger.Info("demo scene ready",
		zap.Int("actors", len(s.Actors())),
		zap.Int("targets", len(s.Targets())),
	)
	return d, nil
}

func (d *demo) addCameras(aspect float32) error {
	viewer, err := d.scene.NewCamera("main")
	if err != nil {
		return err
	}
	viewer.SetPerspective(math.Radians(60), aspect, 0.1, 100)
	d.orbit = camera.NewOrbitController()
	d.orbit.Center = math.Vec3{Y: 0.5}
	d.orbit.Distance = 9
	d.orbit.Pitch = 0.35
	viewer.MustAddAction(d.orbit)

	// The mirror view sits at the mirror; cube targets orient it per face.
	mirrorView, err := d.scene.NewCamera("mirror-view")
	if err != nil {
		return err
	}
	mirrorView.SetPerspective(math.Radians(90), 1, 0.1, 50)
	mirrorView.Transform().SetLocalPosition(mirrorPosition)
	return nil
}

func (d *demo) addLights() error {
	sun, err := d.scene.NewLight("sun")
	if err != nil {
		return err
	}
	sun.Transform().SetLocalEulerAngles(lighting.SunEuler(sunLongitude, sunLatitude))
	sun.Color = math.Vec3{X: 1, Y: 0.95, Z: 0.85}
	sun.Intensity = 0.9
	d.sun = sun

	lamp, err := d.scene.NewLight("lamp")
	if err != nil {
		return err
	}
	lamp.Kind = lighting.Point
	lamp.Color = math.Vec3{X: 1, Y: 0.6, Z: 0.3}
	lamp.Intensity = 1.5
	lamp.Range = 8
	lamp.Transform().SetLocalPosition(math.Vec3{Y: 3})
	return nil
}

// addShadowCaster points the shadow target's camera along the sun. Without
// a shadow target the sun casts no shadows.
func (d *demo) addShadowCaster() error {
	t, ok := d.scene.Target(shadowTarget)
	if !ok {
		logger.Warn("no shadow target configured, shadows disabled")
		return nil
	}
	view, err := d.scene.NewCamera(t.CameraName())
	if err != nil {
		return err
	}
	d.sun.ShadowBounds = shadowBounds
	view.MustAddAction(&lighting.ShadowCaster{Camera: view, Light: d.sun})
	return nil
}

// addShadowPass adds the depth pass of m and lets its lit pass sample the
// shadow map.
func (d *demo) addShadowPass(cfg *config.Config, m *material.Material) error {
	t, ok := d.scene.Target(shadowTarget)
	if !ok {
		return nil
	}
	tex, err := t.GetLayerAsTexture(0, gpu.LayerDepth)
	if err != nil {
		return fmt.Errorf("shadow map: %w", err)
	}
	p, err := m.AddPass(passConfig(cfg, "shadow", "shadow.frag", shaders.ShadowFragmentShader, false,
		gpu.DefaultRenderState(), tagShadow))
	if err != nil {
		return err
	}
	d.passes = append(d.passes, p)
	m.SetTexture("uShadowMap", tex)
	return nil
}

func (d *demo) addDrawable(name string, m *material.Material, msh *mesh.Mesh) (*actor.Actor, error) {
	a, err := d.scene.NewActor(name)
	if err != nil {
		msh.Release()
		return nil, err
	}
	a.MustAddAction(material.NewRenderer(m))
	a.MustAddAction(mesh.NewFilter(msh))
	return a, nil
}

func (d *demo) addFloor(m *material.Material) error {
	msh, err := mesh.Cube(d.scene.Device(), 1)
	if err != nil {
		return err
	}
	floor, err := d.addDrawable("floor", m, msh)
	if err != nil {
		return err
	}
	floor.Transform().SetLocalPosition(math.Vec3{Y: -0.1})
	floor.Transform().SetLocalScale(math.Vec3{X: 12, Y: 0.2, Z: 12})
	floor.MustAddAction(&behavior.Tint{Color: [4]float32{0.55, 0.55, 0.6, 1}})
	return nil
}

func (d *demo) addCrates(m *material.Material, count int, radius float32) error {
	colors := [][4]float32{
		{0.9, 0.3, 0.3, 1},
		{0.3, 0.8, 0.4, 1},
		{0.3, 0.5, 0.9, 1},
		{0.9, 0.8, 0.3, 1},
		{0.8, 0.4, 0.9, 1},
	}
	for i := 0; i < count; i++ {
		msh, err := mesh.Cube(d.scene.Device(), 1)
		if err != nil {
			return err
		}
		crate, err := d.addDrawable(fmt.Sprintf("crate-%d", i), m, msh)
		if err != nil {
			return err
		}
		sin, cos := math32.Sincos(2 * math32.Pi * float32(i) / float32(count))
		crate.Transform().SetLocalPosition(math.Vec3{X: radius * sin, Y: 0.5, Z: radius * cos})
		crate.MustAddAction(&behavior.Spin{Velocity: math.Vec3{Y: 0.5 + 0.2*float32(i)}})
		crate.MustAddAction(&behavior.Tint{Color: colors[i%len(colors)]})
	}
	return nil
}

// addMirror adds the mirror quad when the config has a reflection target.
func (d *demo) addMirror(cfg *config.Config) error {
	t, ok := d.scene.Target(reflectionTarget)
	if !ok {
		logger.Warn("no reflection target configured, skipping mirror")
		return nil
	}
	tex, err := t.GetLayerAsTexture(0, gpu.LayerColor)
	if err != nil {
		return fmt.Errorf("mirror texture: %w", err)
	}

	m := material.New(d.scene.Device(), "mirror")
	state := gpu.DefaultRenderState()
	state.Cull = gpu.CullNone
	p, err := m.AddPass(passConfig(cfg, "main", "mirror.frag", shaders.MirrorFragmentShader, false, state, tagMirror))
	if err != nil {
		return err
	}
	d.passes = append(d.passes, p)
	m.SetTexture("uReflection", tex)

	msh, err := mesh.Quad(d.scene.Device(), 4, 3)
	if err != nil {
		return err
	}
	mirror, err := d.addDrawable("mirror", m, msh)
	if err != nil {
		return err
	}
	mirror.Transform().SetLocalPosition(mirrorPosition)
	return nil
}

// passConfig uses shader files from the configured directory, or the
// embedded sources when none is set.
func passConfig(cfg *config.Config, name, fragFile, fragSrc string, lit bool, state gpu.RenderState, tags ...string) material.PassConfig {
	pc := material.PassConfig{
		Name:  name,
		Tags:  tags,
		State: state,
		Lit:   lit,
	}
	if dir := cfg.Render.ShaderDir; dir != "" {
		pc.VertexFile = filepath.Join(dir, "lit.vert")
		pc.FragmentFile = filepath.Join(dir, fragFile)
		return pc
	}
	pc.VertexSource = shaders.LitVertexShader
	pc.FragmentSource = fragSrc
	return pc
}
