package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/prism/internal/engine/gpu"
	"github.com/Faultbox/prism/pkg/math"
)

// CompileProgram compiles vertex and fragment shaders and links them into a program.
func (d *Device) CompileProgram(vertexSrc, fragmentSrc string) (gpu.Handle, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", gl.GoStr(&log[0]))
	}

	h := gpu.Handle(program)
	d.locations[h] = make(map[string]int32)
	return h, nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, gl.GoStr(&log[0]))
	}

	return shader, nil
}

// DeleteProgram deletes a linked program.
func (d *Device) DeleteProgram(program gpu.Handle) {
	delete(d.locations, program)
	gl.DeleteProgram(uint32(program))
}

// UseProgram installs a program for subsequent draws.
func (d *Device) UseProgram(program gpu.Handle) {
	gl.UseProgram(uint32(program))
}

// location returns the cached uniform location, -1 when the program has no
// such active uniform. GL ignores uploads to -1.
func (d *Device) location(program gpu.Handle, name string) int32 {
	cache := d.locations[program]
	if cache == nil {
		cache = make(map[string]int32)
		d.locations[program] = cache
	}
	if loc, ok := cache[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00"))
	cache[name] = loc
	return loc
}

func (d *Device) SetUniformInt(program gpu.Handle, name string, v int32) {
	gl.Uniform1i(d.location(program, name), v)
}

func (d *Device) SetUniformFloat(program gpu.Handle, name string, v float32) {
	gl.Uniform1f(d.location(program, name), v)
}

func (d *Device) SetUniformVec3(program gpu.Handle, name string, v math.Vec3) {
	gl.Uniform3f(d.location(program, name), v.X, v.Y, v.Z)
}

func (d *Device) SetUniformVec4(program gpu.Handle, name string, v [4]float32) {
	gl.Uniform4f(d.location(program, name), v[0], v[1], v[2], v[3])
}

func (d *Device) SetUniformMat4(program gpu.Handle, name string, m math.Mat4) {
	gl.UniformMatrix4fv(d.location(program, name), 1, false, &m[0])
}

// BindTexture binds tex to the given texture unit.
func (d *Device) BindTexture(unit uint32, tex gpu.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	if tex.Shape == gpu.ShapeCube {
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, uint32(tex.Handle))
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex.Handle))
}
