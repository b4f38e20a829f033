package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"christmas-tree/math"
	"christmas-tree/scene"
)

// ── Point sprite shaders ──────────────────────────────────────────────────────

// Shared sprite vertex layout: pos(3) color(3) size(1) phase(1).
const pointVertSrc = `
#version 410 core
layout(location = 0) in vec3  inPos;
layout(location = 1) in vec3  inColor;
layout(location = 2) in float inSize;
layout(location = 3) in float inPhase;

uniform mat4  mvp;
uniform mat4  modelView;
uniform float time;
uniform float twinkleSpeed;
uniform float twinkleSize;
uniform float pointScale;
uniform bool  animate;

out vec3  fragColor;
out float fragTwinkle;

void main() {
    vec4 mvPos = modelView * vec4(inPos, 1.0);
    float twinkle = 0.0;
    if (animate) {
        twinkle = sin(time * twinkleSpeed + inPhase * 10.0) * 0.5 + 0.5;
    }
    gl_Position  = mvp * vec4(inPos, 1.0);
    gl_PointSize = inSize * (pointScale / max(-mvPos.z, 0.001)) * (1.0 + twinkle * twinkleSize);
    fragColor    = inColor;
    fragTwinkle  = twinkle;
}
` + "\x00"

// foliageFragSrc draws a round light whose edge softens with blur.
const foliageFragSrc = `
#version 410 core
in vec3  fragColor;
in float fragTwinkle;

out vec4 outColor;

uniform float blur;
uniform float twinkleBlur;
uniform float brightness;

void main() {
    float dist = length(gl_PointCoord - vec2(0.5));
    if (dist > 0.5) discard;

    float b = clamp(blur + fragTwinkle * twinkleBlur, 0.0, 1.0);
    float alpha;
    if (b < 0.01) {
        alpha = dist < 0.4 ? 1.0 : 0.0;
    } else {
        alpha = 1.0 - smoothstep(0.4 * (1.0 - b), 0.5, dist);
    }
    float glow = exp(-dist * (5.0 - b * 3.0)) * b;
    vec3 color = fragColor * (1.0 + fragTwinkle * 0.3) + glow * 0.3;
    outColor = vec4(color * brightness, alpha);
}
` + "\x00"

const snowFragSrc = `
#version 410 core
in vec3  fragColor;
in float fragTwinkle;

out vec4 outColor;

void main() {
    float dist = length(gl_PointCoord - vec2(0.5));
    float alpha = (1.0 - smoothstep(0.0, 0.5, dist)) * 0.7;
    outColor = vec4(1.0, 1.0, 1.0, alpha);
}
` + "\x00"

// Pixels per scene unit at unit depth.
const (
	foliagePointScale = 100
	snowPointScale    = 60
)

// ── pointRenderer ─────────────────────────────────────────────────────────────

type pointProgram struct {
	prog         uint32
	mvpLoc       int32
	modelViewLoc int32
	timeLoc      int32
	speedLoc     int32
	sizeLoc      int32
	scaleLoc     int32
	animateLoc   int32
	blurLoc      int32
	twBlurLoc    int32
	brightLoc    int32
}

// gpuPoints is one cloud's dynamic vertex buffer. Capacity grows only
// when the cloud does.
type gpuPoints struct {
	vao uint32
	vbo uint32
	cap int
}

type pointRenderer struct {
	foliage pointProgram
	snow    pointProgram
	clouds  map[*scene.PointCloud]*gpuPoints
	scratch []float32
}

const floatsPerPoint = 8

func newPointProgram(fragSrc string) (pointProgram, error) {
	prog, err := newProgram(pointVertSrc, fragSrc)
	if err != nil {
		return pointProgram{}, err
	}
	loc := func(name string) int32 { return gl.GetUniformLocation(prog, gl.Str(name+"\x00")) }
	return pointProgram{
		prog:         prog,
		mvpLoc:       loc("mvp"),
		modelViewLoc: loc("modelView"),
		timeLoc:      loc("time"),
		speedLoc:     loc("twinkleSpeed"),
		sizeLoc:      loc("twinkleSize"),
		scaleLoc:     loc("pointScale"),
		animateLoc:   loc("animate"),
		blurLoc:      loc("blur"),
		twBlurLoc:    loc("twinkleBlur"),
		brightLoc:    loc("brightness"),
	}, nil
}

func newPointRenderer() (*pointRenderer, error) {
	foliage, err := newPointProgram(foliageFragSrc)
	if err != nil {
		return nil, fmt.Errorf("foliage shader: %w", err)
	}
	snow, err := newPointProgram(snowFragSrc)
	if err != nil {
		gl.DeleteProgram(foliage.prog)
		return nil, fmt.Errorf("snow shader: %w", err)
	}
	return &pointRenderer{
		foliage: foliage,
		snow:    snow,
		clouds:  make(map[*scene.PointCloud]*gpuPoints),
	}, nil
}

// upload writes the cloud's points when they changed since the last draw.
func (pr *pointRenderer) upload(cloud *scene.PointCloud) *gpuPoints {
	gpu, ok := pr.clouds[cloud]
	if !ok {
		gpu = &gpuPoints{}
		gl.GenVertexArrays(1, &gpu.vao)
		gl.GenBuffers(1, &gpu.vbo)

		gl.BindVertexArray(gpu.vao)
		gl.BindBuffer(gl.ARRAY_BUFFER, gpu.vbo)
		const stride = int32(floatsPerPoint * 4)
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(12))
		gl.EnableVertexAttribArray(2)
		gl.VertexAttribPointer(2, 1, gl.FLOAT, false, stride, gl.PtrOffset(24))
		gl.EnableVertexAttribArray(3)
		gl.VertexAttribPointer(3, 1, gl.FLOAT, false, stride, gl.PtrOffset(28))
		gl.BindVertexArray(0)

		pr.clouds[cloud] = gpu
		cloud.GPUData = gpu
		cloud.Dirty = true
	}
	if !cloud.Dirty {
		return gpu
	}

	n := len(cloud.Points)
	buf := pr.scratch[:0]
	for _, p := range cloud.Points {
		buf = append(buf,
			p.Position.X, p.Position.Y, p.Position.Z,
			p.Color.R, p.Color.G, p.Color.B,
			p.Size, p.Phase)
	}
	pr.scratch = buf

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.vbo)
	if n > gpu.cap {
		gl.BufferData(gl.ARRAY_BUFFER, len(buf)*4, gl.Ptr(buf), gl.DYNAMIC_DRAW)
		gpu.cap = n
	} else if n > 0 {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(buf)*4, gl.Ptr(buf))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	cloud.Dirty = false
	return gpu
}

// draw renders cloud as additive sprites that test but never write depth.
func (pr *pointRenderer) draw(cloud *scene.PointCloud, mvp, modelView math.Mat4) {
	if len(cloud.Points) == 0 {
		return
	}
	gpu := pr.upload(cloud)

	p := &pr.foliage
	scale := float32(foliagePointScale)
	animate := int32(1)
	if cloud.Style == scene.PointsSnow {
		p = &pr.snow
		scale = snowPointScale
		animate = 0
	}

	u := cloud.Uniforms
	gl.UseProgram(p.prog)
	gl.UniformMatrix4fv(p.mvpLoc, 1, false, (*float32)(unsafe.Pointer(&mvp[0][0])))
	gl.UniformMatrix4fv(p.modelViewLoc, 1, false, (*float32)(unsafe.Pointer(&modelView[0][0])))
	gl.Uniform1f(p.timeLoc, u.Time)
	gl.Uniform1f(p.speedLoc, u.TwinkleSpeed)
	gl.Uniform1f(p.sizeLoc, u.TwinkleSize)
	gl.Uniform1f(p.scaleLoc, scale)
	gl.Uniform1i(p.animateLoc, animate)
	gl.Uniform1f(p.blurLoc, u.Blur)
	gl.Uniform1f(p.twBlurLoc, u.TwinkleBlur)
	gl.Uniform1f(p.brightLoc, u.Brightness)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	gl.DepthMask(false)

	gl.BindVertexArray(gpu.vao)
	gl.DrawArrays(gl.POINTS, 0, int32(len(cloud.Points)))
	gl.BindVertexArray(0)

	restoreBlend()
}

func (pr *pointRenderer) release(cloud *scene.PointCloud) {
	gpu, ok := pr.clouds[cloud]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &gpu.vao)
	gl.DeleteBuffers(1, &gpu.vbo)
	delete(pr.clouds, cloud)
	cloud.GPUData = nil
}

func (pr *pointRenderer) destroy() {
	for cloud := range pr.clouds {
		pr.release(cloud)
	}
	gl.DeleteProgram(pr.foliage.prog)
	gl.DeleteProgram(pr.snow.prog)
}

// DrawPoints renders a point cloud with the sprite shader for its style.
func (r *Renderer) DrawPoints(cloud *scene.PointCloud, mvp, modelView math.Mat4) {
	r.points.draw(cloud, mvp, modelView)
}
