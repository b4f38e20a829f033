package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"christmas-tree/core"
	"christmas-tree/scene"
)

// Vertex2D is an overlay vertex in window pixels, origin top-left.
type Vertex2D struct {
	X, Y  float32
	U, V  float32
	Color core.Color
}

const overlayVertSrc = `
#version 410 core
layout(location = 0) in vec2 inPos;
layout(location = 1) in vec2 inUV;
layout(location = 2) in vec4 inColor;

uniform vec2 screen;

out vec2 fragUV;
out vec4 fragColor;

void main() {
    vec2 ndc = vec2(inPos.x / screen.x * 2.0 - 1.0, 1.0 - inPos.y / screen.y * 2.0);
    gl_Position = vec4(ndc, 0.0, 1.0);
    fragUV      = inUV;
    fragColor   = inColor;
}
` + "\x00"

const overlayFragSrc = `
#version 410 core
in vec2 fragUV;
in vec4 fragColor;

out vec4 outColor;

uniform sampler2D tex;
uniform bool      hasTex;

void main() {
    vec4 c = fragColor;
    if (hasTex) {
        c *= texture(tex, fragUV);
    }
    outColor = c;
}
` + "\x00"

// overlayRenderer draws alpha-blended 2D triangles on top of the resolved
// frame: the snow canvas, the media viewer and text.
type overlayRenderer struct {
	prog      uint32
	vao       uint32
	vbo       uint32
	screenLoc int32
	hasTexLoc int32
	texLoc    int32
	cap       int
}

func newOverlayRenderer() (*overlayRenderer, error) {
	prog, err := newProgram(overlayVertSrc, overlayFragSrc)
	if err != nil {
		return nil, fmt.Errorf("overlay shader: %w", err)
	}

	o := &overlayRenderer{
		prog:      prog,
		screenLoc: gl.GetUniformLocation(prog, gl.Str("screen\x00")),
		hasTexLoc: gl.GetUniformLocation(prog, gl.Str("hasTex\x00")),
		texLoc:    gl.GetUniformLocation(prog, gl.Str("tex\x00")),
	}
	gl.GenVertexArrays(1, &o.vao)
	gl.GenBuffers(1, &o.vbo)

	var v Vertex2D
	stride := int32(unsafe.Sizeof(v))
	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.X))))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.U))))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 4, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Color))))
	gl.BindVertexArray(0)

	gl.UseProgram(prog)
	gl.Uniform1i(o.texLoc, 0)
	return o, nil
}

func (o *overlayRenderer) draw(verts []Vertex2D, tex *scene.Texture, w, h int32) {
	stride := int(unsafe.Sizeof(Vertex2D{}))
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	if len(verts) > o.cap {
		gl.BufferData(gl.ARRAY_BUFFER, len(verts)*stride, gl.Ptr(verts), gl.STREAM_DRAW)
		o.cap = len(verts)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(verts)*stride, gl.Ptr(verts))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	gl.UseProgram(o.prog)
	gl.Uniform2f(o.screenLoc, float32(w), float32(h))
	if tex != nil && tex.GLID != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
		gl.Uniform1i(o.hasTexLoc, 1)
	} else {
		gl.Uniform1i(o.hasTexLoc, 0)
	}

	gl.BindVertexArray(o.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(verts)))
	gl.BindVertexArray(0)

	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

func (o *overlayRenderer) destroy() {
	gl.DeleteVertexArrays(1, &o.vao)
	gl.DeleteBuffers(1, &o.vbo)
	gl.DeleteProgram(o.prog)
}

// DrawOverlay draws 2D triangles over the default framebuffer. Call after
// BlitPostProcess. tex is uploaded on first use; nil draws vertex colors.
func (r *Renderer) DrawOverlay(verts []Vertex2D, tex *scene.Texture) {
	if len(verts) == 0 {
		return
	}
	if tex != nil && tex.GLID == 0 {
		if err := r.UploadTexture(tex); err != nil {
			tex = nil
		}
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, r.viewportW, r.viewportH)
	r.overlay.draw(verts, tex, r.viewportW, r.viewportH)
}
