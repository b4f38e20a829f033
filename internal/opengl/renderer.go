package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"christmas-tree/core"
	"christmas-tree/math"
	"christmas-tree/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	HasIndices bool
}

// Renderer is the OpenGL rendering backend.
type Renderer struct {
	program uint32

	// Vertex transform uniforms
	mvpLoc       int32
	modelViewLoc int32

	// Surface uniforms, one program for every ShaderKind
	shadeLoc     int32
	albedoLoc    int32
	emissiveLoc  int32
	intensityLoc int32
	flashLoc     int32
	twinkleLoc   int32
	falloffLoc   int32
	gainLoc      int32

	albedoTexLoc  int32
	hasTextureLoc int32

	viewportW int32
	viewportH int32

	gpuMeshes map[*scene.Mesh]*GPUMesh
	textures  map[*scene.Texture]struct{}

	points      *pointRenderer
	overlay     *overlayRenderer
	postProcess *PostProcess
}

// ── Surface shader ────────────────────────────────────────────────────────────

const vertSrc = `
#version 410 core
layout(location = 0) in vec3 inPos;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
layout(location = 3) in vec4 inColor;

uniform mat4 mvp;
uniform mat4 modelView;

out vec3 fragNormal; // view space
out vec2 fragUV;
out vec4 fragColor;

void main() {
    gl_Position = mvp * vec4(inPos, 1.0);
    fragNormal  = normalize(mat3(modelView) * inNormal);
    fragUV      = inUV;
    fragColor   = inColor;
}
` + "\x00"

// shade: 0 lit, 1 frame, 2 glow, 3 star. Matches scene.ShaderKind.
const fragSrc = `
#version 410 core
in vec3 fragNormal;
in vec2 fragUV;
in vec4 fragColor;

out vec4 outColor;

uniform int       shade;
uniform vec3      matAlbedo;
uniform float     matEmissive;
uniform float     intensity;
uniform float     flash;
uniform float     twinkle;
uniform float     glowFalloff;
uniform float     glowGain;
uniform sampler2D albedoTex;
uniform bool      hasTexture;

const vec3 lightDir = normalize(vec3(0.5, 1.0, 1.0));

vec3 frameColor() {
    const float border = 0.12;
    vec2  uv = fragUV;
    float distFromEdge = min(min(uv.x, 1.0 - uv.x), min(uv.y, 1.0 - uv.y));

    if (distFromEdge < border) {
        vec3 goldBase   = vec3(1.0, 0.85, 0.3) * twinkle;
        vec3 goldBright = vec3(1.0, 0.95, 0.6);
        vec3 whiteHot   = vec3(1.0, 1.0, 0.95);
        vec3 c = mix(goldBase, whiteHot, flash * 0.4);
        c += goldBright * flash * 2.0;
        c += whiteHot * flash * 1.5;
        return c * (1.0 + flash * 1.5) * intensity;
    }

    vec2 photoUV = (uv - border) / (1.0 - 2.0 * border);
    vec3 photo = hasTexture ? texture(albedoTex, photoUV).rgb : matAlbedo;
    photo = mix(photo, vec3(1.0, 0.95, 0.7), flash * 0.5);
    photo += vec3(1.0, 0.9, 0.5) * flash * 0.8;

    float dc = length(uv - 0.5);
    photo += vec3(1.0, 0.92, 0.6) * exp(-dc * 3.0) * flash * 2.5;
    photo += vec3(1.0, 0.95, 0.7) * exp(-distFromEdge * 8.0) * flash * 1.5;
    return photo;
}

void main() {
    vec3 n = normalize(fragNormal);
    float diff = max(dot(n, lightDir), 0.0);

    if (shade == 1) {
        outColor = vec4(frameColor(), 1.0);
        return;
    }

    if (shade == 2) {
        float d = length(fragUV - 0.5);
        if (d > 0.5) discard;
        float glow = exp(-d * glowFalloff) * glowGain * twinkle * flash;
        glow *= 1.0 - smoothstep(0.3, 0.5, d);
        glow *= intensity;
        outColor = vec4(matAlbedo * glow, glow);
        return;
    }

    if (shade == 3) {
        float edge = 1.0 - abs(dot(n, vec3(0.0, 0.0, 1.0)));
        edge *= edge;
        vec3 c = matAlbedo * (0.5 + diff * 0.5) + matAlbedo * edge * 0.5;
        c *= twinkle * intensity;
        c += vec3(1.0) * pow(diff, 8.0) * 0.5 * twinkle;
        outColor = vec4(c, 1.0);
        return;
    }

    vec3 base = matAlbedo * fragColor.rgb;
    if (hasTexture) {
        base *= texture(albedoTex, fragUV).rgb;
    }
    vec3 c = base * (0.35 + diff * 0.65) * intensity;
    c += base * matEmissive;
    c += vec3(1.0, 0.9, 0.5) * flash * 0.25;
    outColor = vec4(c, 1.0);
}
` + "\x00"

// ── NewRenderer ───────────────────────────────────────────────────────────────

// NewRenderer initialises OpenGL.
// Must be called after the GLFW window context is made current.
func NewRenderer() (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	prog, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("surface shader compile: %w", err)
	}

	points, err := newPointRenderer()
	if err != nil {
		gl.DeleteProgram(prog)
		return nil, err
	}
	overlay, err := newOverlayRenderer()
	if err != nil {
		points.destroy()
		gl.DeleteProgram(prog)
		return nil, err
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	r := &Renderer{
		program: prog,

		mvpLoc:       gl.GetUniformLocation(prog, gl.Str("mvp\x00")),
		modelViewLoc: gl.GetUniformLocation(prog, gl.Str("modelView\x00")),

		shadeLoc:     gl.GetUniformLocation(prog, gl.Str("shade\x00")),
		albedoLoc:    gl.GetUniformLocation(prog, gl.Str("matAlbedo\x00")),
		emissiveLoc:  gl.GetUniformLocation(prog, gl.Str("matEmissive\x00")),
		intensityLoc: gl.GetUniformLocation(prog, gl.Str("intensity\x00")),
		flashLoc:     gl.GetUniformLocation(prog, gl.Str("flash\x00")),
		twinkleLoc:   gl.GetUniformLocation(prog, gl.Str("twinkle\x00")),
		falloffLoc:   gl.GetUniformLocation(prog, gl.Str("glowFalloff\x00")),
		gainLoc:      gl.GetUniformLocation(prog, gl.Str("glowGain\x00")),

		albedoTexLoc:  gl.GetUniformLocation(prog, gl.Str("albedoTex\x00")),
		hasTextureLoc: gl.GetUniformLocation(prog, gl.Str("hasTexture\x00")),

		gpuMeshes: make(map[*scene.Mesh]*GPUMesh),
		textures:  make(map[*scene.Texture]struct{}),

		points:  points,
		overlay: overlay,
	}

	gl.UseProgram(prog)
	gl.Uniform1i(r.albedoTexLoc, 0)

	return r, nil
}

// Version is the driver's GL version string.
func (r *Renderer) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// ── Viewport ──────────────────────────────────────────────────────────────────

// SetViewport resizes the OpenGL viewport.
func (r *Renderer) SetViewport(width, height int) {
	r.viewportW = int32(width)
	r.viewportH = int32(height)
	gl.Viewport(0, 0, int32(width), int32(height))
}

// ── Post-processing ───────────────────────────────────────────────────────────

// EnablePostProcess creates the HDR FBO with bloom at the current viewport size.
func (r *Renderer) EnablePostProcess() error {
	if r.postProcess != nil {
		return nil
	}
	pp, err := NewPostProcess(int(r.viewportW), int(r.viewportH))
	if err != nil {
		return err
	}
	r.postProcess = pp
	return nil
}

// HasPostProcess reports whether frames render into the HDR FBO.
func (r *Renderer) HasPostProcess() bool { return r.postProcess != nil }

// ResizePostProcess reallocates the HDR targets.
func (r *Renderer) ResizePostProcess(width, height int) {
	if r.postProcess != nil {
		if err := r.postProcess.Resize(width, height); err != nil {
			// Fall back to drawing straight to the window.
			r.postProcess.Destroy()
			r.postProcess = nil
		}
	}
}

// SetBloomStrength sets the additive bloom multiplier; zero skips the blur.
func (r *Renderer) SetBloomStrength(s float32) {
	if r.postProcess != nil {
		r.postProcess.Strength = s
	}
}

// BlitPostProcess resolves the HDR FBO to the default framebuffer.
func (r *Renderer) BlitPostProcess() {
	if r.postProcess != nil {
		r.postProcess.Blit()
	}
}

// ── Frame ─────────────────────────────────────────────────────────────────────

// BeginFrame binds the scene target and clears it to background.
func (r *Renderer) BeginFrame(background core.Color) {
	if r.postProcess != nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, r.postProcess.SceneFBO())
	} else {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}
	gl.Viewport(0, 0, r.viewportW, r.viewportH)
	gl.ClearColor(background.R, background.G, background.B, 1)
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// ── DrawMesh ──────────────────────────────────────────────────────────────────

// DrawMesh draws a mesh with mat. modelView carries normals into view space
// for the lit and star shading.
func (r *Renderer) DrawMesh(mesh *scene.Mesh, mat *scene.Material, mvp, modelView math.Mat4) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}
	if mat == nil {
		mat = scene.DefaultMaterial()
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.mvpLoc, 1, false, (*float32)(unsafe.Pointer(&mvp[0][0])))
	gl.UniformMatrix4fv(r.modelViewLoc, 1, false, (*float32)(unsafe.Pointer(&modelView[0][0])))
	r.applyMaterial(mat)

	primitive := uint32(gl.TRIANGLES)
	if mesh.DrawMode == scene.DrawPoints {
		primitive = gl.POINTS
	}

	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(primitive, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(primitive, 0, int32(len(mesh.Vertices)))
	}
	gl.BindVertexArray(0)

	restoreBlend()
}

// applyMaterial sets the surface uniforms, blend state and texture.
// Must be called while r.program is active.
func (r *Renderer) applyMaterial(mat *scene.Material) {
	gl.Uniform1i(r.shadeLoc, int32(mat.Shader))
	gl.Uniform3f(r.albedoLoc, mat.Albedo.R, mat.Albedo.G, mat.Albedo.B)
	gl.Uniform1f(r.emissiveLoc, mat.Emissive)
	gl.Uniform1f(r.intensityLoc, mat.Intensity)
	gl.Uniform1f(r.flashLoc, mat.Flash)
	gl.Uniform1f(r.twinkleLoc, mat.Twinkle)
	gl.Uniform1f(r.falloffLoc, mat.GlowFalloff)
	gl.Uniform1f(r.gainLoc, mat.GlowGain)

	setBlend(mat.Blend)
	gl.DepthMask(mat.DepthWrite)

	tex := mat.AlbedoTexture
	if tex != nil && tex.GLID == 0 {
		if err := r.UploadTexture(tex); err != nil {
			tex = nil
		}
	}
	if tex == nil {
		gl.Uniform1i(r.hasTextureLoc, 0)
		return
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
	gl.Uniform1i(r.hasTextureLoc, 1)
}

func setBlend(mode scene.BlendMode) {
	switch mode {
	case scene.BlendAdditive:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	case scene.BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	default:
		gl.Disable(gl.BLEND)
	}
}

func restoreBlend() {
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
}

// ── Release ───────────────────────────────────────────────────────────────────

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		gl.DeleteVertexArrays(1, &gpu.VAO)
		gl.DeleteBuffers(1, &gpu.VBO)
		if gpu.HasIndices {
			gl.DeleteBuffers(1, &gpu.EBO)
		}
		delete(r.gpuMeshes, mesh)
		mesh.GPUData = nil
	}
}

// ReleaseTexture frees a texture uploaded through this renderer.
func (r *Renderer) ReleaseTexture(tex *scene.Texture) {
	DeleteTexture(tex)
	delete(r.textures, tex)
}

// ReleasePoints frees the vertex buffer of a point cloud.
func (r *Renderer) ReleasePoints(cloud *scene.PointCloud) {
	r.points.release(cloud)
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	for tex := range r.textures {
		r.ReleaseTexture(tex)
	}
	if r.postProcess != nil {
		r.postProcess.Destroy()
	}
	r.points.destroy()
	r.overlay.destroy()
	gl.DeleteProgram(r.program)
}

// ── Internal helpers ──────────────────────────────────────────────────────────

// ensureUploaded uploads vertex/index data if not already done.
func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		return gpu
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))

	gpu := &GPUMesh{
		IndexCount: int32(len(mesh.Indices)),
		HasIndices: len(mesh.Indices) > 0,
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(mesh.Vertices)*int(stride),
		gl.Ptr(mesh.Vertices),
		gl.STATIC_DRAW)

	var v core.Vertex
	posOff := int(unsafe.Offsetof(v.Position))
	normOff := int(unsafe.Offsetof(v.Normal))
	uvOff := int(unsafe.Offsetof(v.UV))
	colorOff := int(unsafe.Offsetof(v.Color))

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(posOff))

	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(normOff))

	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(uvOff))

	gl.EnableVertexAttribArray(3)
	gl.VertexAttribPointer(3, 4, gl.FLOAT, false, stride, gl.PtrOffset(colorOff))

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER,
			len(mesh.Indices)*4,
			gl.Ptr(mesh.Indices),
			gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = gpu
	mesh.GPUData = gpu
	return gpu
}

// ── Shader helpers ────────────────────────────────────────────────────────────

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("link failed: %v", log)
	}

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
