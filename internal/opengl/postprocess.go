package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// Glow pass defaults. Flashing frames and the star push well past 1.0, so a
// threshold just under white catches them without lifting the foliage.
const (
	GlowThreshold  = 0.9
	GlowBlurPasses = 4
)

// target is a float color texture and the framebuffer drawing into it.
type target struct {
	fbo, tex uint32
	depth    uint32 // renderbuffer, scene target only
	w, h     int32
}

func newTarget(w, h int32, withDepth bool) (target, error) {
	t := target{w: max(w, 1), h: max(h, 1)}

	gl.GenTextures(1, &t.tex)
	gl.BindTexture(gl.TEXTURE_2D, t.tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, t.w, t.h, 0, gl.RGBA, gl.HALF_FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.tex, 0)
	if withDepth {
		gl.GenRenderbuffers(1, &t.depth)
		gl.BindRenderbuffer(gl.RENDERBUFFER, t.depth)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, t.w, t.h)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.depth)
	}
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.free()
		return target{}, fmt.Errorf("framebuffer %dx%d incomplete (0x%X)", t.w, t.h, status)
	}
	return t, nil
}

func (t *target) free() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
	}
	if t.tex != 0 {
		gl.DeleteTextures(1, &t.tex)
	}
	if t.depth != 0 {
		gl.DeleteRenderbuffers(1, &t.depth)
	}
	*t = target{}
}

// ── Shaders ───────────────────────────────────────────────────────────────────

// Every pass draws one oversized triangle from gl_VertexID.
const fullscreenVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    vec2 pos = vec2((gl_VertexID << 1) & 2, gl_VertexID & 2) * 2.0 - 1.0;
    gl_Position = vec4(pos, 0.0, 1.0);
    fragUV = pos * 0.5 + 0.5;
}
` + "\x00"

const brightFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;
uniform sampler2D src;
uniform float threshold;
void main() {
    vec3 c = texture(src, fragUV).rgb;
    float luma = dot(c, vec3(0.2126, 0.7152, 0.0722));
    outColor = vec4(c * smoothstep(threshold, threshold + 0.25, luma), 1.0);
}
` + "\x00"

// texel is (1/w, 0) for the horizontal pass and (0, 1/h) for the vertical.
const blurFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;
uniform sampler2D src;
uniform vec2 texel;
void main() {
    const float k[5] = float[](0.0625, 0.25, 0.375, 0.25, 0.0625);
    vec3 sum = vec3(0.0);
    for (int i = 0; i < 5; i++) {
        sum += texture(src, fragUV + float(i - 2) * texel).rgb * k[i];
    }
    outColor = vec4(sum, 1.0);
}
` + "\x00"

const compositeFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;
uniform sampler2D scene;
uniform sampler2D glow;
uniform float strength;
void main() {
    vec3 c = texture(scene, fragUV).rgb + texture(glow, fragUV).rgb * strength;
    outColor = vec4(clamp(c, 0.0, 1.0), 1.0);
}
` + "\x00"

// ── Post pass ─────────────────────────────────────────────────────────────────

// PostProcess renders the scene into a float target and composites a
// blurred bright-pass on top: the glow around the star, the flashing frames
// and the halos. Strength zero skips the blur entirely.
type PostProcess struct {
	scene target
	glow  [2]target // half resolution ping-pong

	bright, blur, composite uint32
	threshLoc, texelLoc     int32
	strengthLoc             int32

	vao uint32

	Strength  float32
	Threshold float32
	Passes    int
}

// NewPostProcess compiles the three passes and allocates targets for a
// width x height framebuffer.
func NewPostProcess(width, height int) (*PostProcess, error) {
	pp := &PostProcess{Strength: 0.5, Threshold: GlowThreshold, Passes: GlowBlurPasses}

	var err error
	if pp.bright, err = newProgram(fullscreenVertSrc, brightFragSrc); err != nil {
		return nil, fmt.Errorf("bright-pass shader: %w", err)
	}
	if pp.blur, err = newProgram(fullscreenVertSrc, blurFragSrc); err != nil {
		pp.Destroy()
		return nil, fmt.Errorf("blur shader: %w", err)
	}
	if pp.composite, err = newProgram(fullscreenVertSrc, compositeFragSrc); err != nil {
		pp.Destroy()
		return nil, fmt.Errorf("composite shader: %w", err)
	}

	pp.threshLoc = uniform(pp.bright, "threshold")
	pp.texelLoc = uniform(pp.blur, "texel")
	pp.strengthLoc = uniform(pp.composite, "strength")
	gl.UseProgram(pp.bright)
	gl.Uniform1i(uniform(pp.bright, "src"), 0)
	gl.UseProgram(pp.blur)
	gl.Uniform1i(uniform(pp.blur, "src"), 0)
	gl.UseProgram(pp.composite)
	gl.Uniform1i(uniform(pp.composite, "scene"), 0)
	gl.Uniform1i(uniform(pp.composite, "glow"), 1)

	gl.GenVertexArrays(1, &pp.vao)

	if err := pp.alloc(width, height); err != nil {
		pp.Destroy()
		return nil, err
	}
	return pp, nil
}

func uniform(prog uint32, name string) int32 {
	return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
}

func (pp *PostProcess) alloc(width, height int) error {
	var err error
	if pp.scene, err = newTarget(int32(width), int32(height), true); err != nil {
		return fmt.Errorf("scene target: %w", err)
	}
	for i := range pp.glow {
		if pp.glow[i], err = newTarget(int32(width)/2, int32(height)/2, false); err != nil {
			return fmt.Errorf("glow target: %w", err)
		}
	}
	return nil
}

func (pp *PostProcess) freeTargets() {
	pp.scene.free()
	pp.glow[0].free()
	pp.glow[1].free()
}

// SceneFBO is the framebuffer the frame draws into.
func (pp *PostProcess) SceneFBO() uint32 { return pp.scene.fbo }

// Resize reallocates every target. A zero size (minimized window) is
// ignored.
func (pp *PostProcess) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	pp.freeTargets()
	return pp.alloc(width, height)
}

// Destroy frees all GPU resources owned by the pass.
func (pp *PostProcess) Destroy() {
	pp.freeTargets()
	for _, p := range []*uint32{&pp.bright, &pp.blur, &pp.composite} {
		if *p != 0 {
			gl.DeleteProgram(*p)
			*p = 0
		}
	}
	if pp.vao != 0 {
		gl.DeleteVertexArrays(1, &pp.vao)
		pp.vao = 0
	}
}

// Blit resolves the scene target to the default framebuffer.
func (pp *PostProcess) Blit() {
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)
	gl.BindVertexArray(pp.vao)
	gl.ActiveTexture(gl.TEXTURE0)

	glow := pp.Strength > 0
	if glow {
		half := pp.glow[0]
		gl.Viewport(0, 0, half.w, half.h)

		gl.BindFramebuffer(gl.FRAMEBUFFER, pp.glow[0].fbo)
		gl.UseProgram(pp.bright)
		gl.Uniform1f(pp.threshLoc, pp.Threshold)
		gl.BindTexture(gl.TEXTURE_2D, pp.scene.tex)
		gl.DrawArrays(gl.TRIANGLES, 0, 3)

		// Horizontal then vertical per pass; the result lands back in glow[0].
		gl.UseProgram(pp.blur)
		for i := 0; i < pp.Passes*2; i++ {
			src, dst := pp.glow[i%2], pp.glow[(i+1)%2]
			if i%2 == 0 {
				gl.Uniform2f(pp.texelLoc, 1/float32(half.w), 0)
			} else {
				gl.Uniform2f(pp.texelLoc, 0, 1/float32(half.h))
			}
			gl.BindFramebuffer(gl.FRAMEBUFFER, dst.fbo)
			gl.BindTexture(gl.TEXTURE_2D, src.tex)
			gl.DrawArrays(gl.TRIANGLES, 0, 3)
		}
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, pp.scene.w, pp.scene.h)
	gl.UseProgram(pp.composite)
	gl.Uniform1f(pp.strengthLoc, max(pp.Strength, 0))
	gl.BindTexture(gl.TEXTURE_2D, pp.scene.tex)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, pp.glow[0].tex)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)

	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}
