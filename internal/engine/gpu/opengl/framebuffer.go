package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/prism/internal/engine/gpu"
)

// CreateFramebuffer generates a framebuffer object.
func (d *Device) CreateFramebuffer() (gpu.Handle, error) {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	if fbo == 0 {
		return 0, fmt.Errorf("glGenFramebuffers returned 0")
	}
	return gpu.Handle(fbo), nil
}

// DeleteFramebuffer deletes a framebuffer object.
func (d *Device) DeleteFramebuffer(fb gpu.Handle) {
	fbo := uint32(fb)
	gl.DeleteFramebuffers(1, &fbo)
}

// CreateLayer allocates a renderbuffer for write-only layers and a texture
// (2D or cube map) for read-write layers.
func (d *Device) CreateLayer(desc gpu.LayerDesc) (gpu.Handle, error) {
	internal, format, xtype := layerFormats(desc.Kind)

	if desc.Permission == gpu.WriteOnly {
		var rbo uint32
		gl.GenRenderbuffers(1, &rbo)
		gl.BindRenderbuffer(gl.RENDERBUFFER, rbo)
		gl.RenderbufferStorage(gl.RENDERBUFFER, uint32(internal), desc.Width, desc.Height)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
		return gpu.Handle(rbo), nil
	}

	var tex uint32
	gl.GenTextures(1, &tex)

	minFilter, magFilter := int32(gl.LINEAR), int32(gl.LINEAR)
	if desc.Filter == gpu.FilterNearest {
		minFilter, magFilter = gl.NEAREST, gl.NEAREST
	}

	if desc.Shape == gpu.ShapeCube {
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, tex)
		for i := uint32(0); i < 6; i++ {
			gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+i, 0, internal, desc.Width, desc.Height, 0, format, xtype, nil)
		}
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, minFilter)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, magFilter)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
		return gpu.Handle(tex), nil
	}

	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, desc.Width, desc.Height, 0, format, xtype, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magFilter)
	if desc.Kind == gpu.LayerDepth {
		// Clamp to border with white (1.0) so samples outside the map are unshadowed.
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
		borderColor := []float32{1.0, 1.0, 1.0, 1.0}
		gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &borderColor[0])
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return gpu.Handle(tex), nil
}

func layerFormats(kind gpu.LayerKind) (internal int32, format, xtype uint32) {
	if kind == gpu.LayerDepth {
		return gl.DEPTH_COMPONENT24, gl.DEPTH_COMPONENT, gl.FLOAT
	}
	return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
}

// DeleteLayer releases a layer's renderbuffer or texture.
func (d *Device) DeleteLayer(layer gpu.Handle, desc gpu.LayerDesc) {
	id := uint32(layer)
	if desc.Permission == gpu.WriteOnly {
		gl.DeleteRenderbuffers(1, &id)
		return
	}
	gl.DeleteTextures(1, &id)
}

// AttachLayer attaches a layer to fb. Cube textures are attached one face
// at a time; renderbuffers are always 2D and shared by every face.
func (d *Device) AttachLayer(fb, layer gpu.Handle, desc gpu.LayerDesc, colorIndex int, face gpu.CubeFace) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))

	attachment := uint32(gl.COLOR_ATTACHMENT0 + colorIndex)
	if desc.Kind == gpu.LayerDepth {
		attachment = gl.DEPTH_ATTACHMENT
	}

	switch {
	case desc.Permission == gpu.WriteOnly:
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, attachment, gl.RENDERBUFFER, uint32(layer))
	case desc.Shape == gpu.ShapeCube:
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), uint32(layer), 0)
	default:
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, uint32(layer), 0)
	}
}

// SetDrawBuffers enables colorCount color attachments, or none for
// depth-only targets.
func (d *Device) SetDrawBuffers(fb gpu.Handle, colorCount int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
	if colorCount == 0 {
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
		return
	}
	bufs := make([]uint32, colorCount)
	for i := range bufs {
		bufs[i] = gl.COLOR_ATTACHMENT0 + uint32(i)
	}
	gl.DrawBuffers(int32(colorCount), &bufs[0])
}

// CheckFramebuffer reports an incomplete framebuffer.
func (d *Device) CheckFramebuffer(fb gpu.Handle) error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("framebuffer status 0x%x", status)
	}
	return nil
}

// BindFramebuffer makes fb the render target and sets the viewport.
func (d *Device) BindFramebuffer(fb gpu.Handle, width, height int32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
	gl.Viewport(0, 0, width, height)
}

// ReadPixels reads color attachment 0 of fb as RGBA, bottom row first.
func (d *Device) ReadPixels(fb gpu.Handle, width, height int32) []byte {
	pixels := make([]byte, width*height*4)

	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))

	gl.ReadPixels(0, 0, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
	return pixels
}
