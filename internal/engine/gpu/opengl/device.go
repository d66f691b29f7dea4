// Package opengl implements gpu.Device on OpenGL 4.1 core.
//
// All methods must be called from the thread that owns the GL context.
package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/prism/internal/engine/gpu"
	"github.com/Faultbox/prism/internal/logger"
)

// Device is an OpenGL gpu.Device.
type Device struct {
	locations map[gpu.Handle]map[string]int32
	meshes    map[gpu.Handle]*glMesh
}

var _ gpu.Device = (*Device)(nil)

// New loads GL function pointers and sets the default state.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)

	return &Device{
		locations: make(map[gpu.Handle]map[string]int32),
		meshes:    make(map[gpu.Handle]*glMesh),
	}, nil
}

// ApplyState sets blending, culling and depth state.
func (d *Device) ApplyState(s gpu.RenderState) {
	switch s.Blend {
	case gpu.BlendOpaque:
		gl.Disable(gl.BLEND)
	case gpu.BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	case gpu.BlendAdditive:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	}

	switch s.Cull {
	case gpu.CullNone:
		gl.Disable(gl.CULL_FACE)
	case gpu.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}

	if s.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LEQUAL)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(s.DepthWrite)
}

// Clear clears the selected planes of the bound framebuffer.
func (d *Device) Clear(flags gpu.ClearFlags, color [4]float32) {
	var mask uint32
	if flags&gpu.ClearColor != 0 {
		gl.ClearColor(color[0], color[1], color[2], color[3])
		mask |= gl.COLOR_BUFFER_BIT
	}
	if flags&gpu.ClearDepth != 0 {
		// Depth writes may have been masked off by the last pass.
		gl.DepthMask(true)
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}
