// Package renderer draws a scene, the snow canvas and the media viewer with
// the OpenGL backend.
package renderer

import (
	"errors"
	"fmt"
	"sort"

	"christmas-tree/core"
	"christmas-tree/internal/opengl"
	"christmas-tree/scene"
	"christmas-tree/snowcanvas"
	"christmas-tree/tree"
)

// textCmd is a queued DrawText call, flushed in Present().
type textCmd struct {
	text  string
	x, y  float32
	scale float32
	color core.Color
}

// viewerCmd is the media viewer queued for Present().
type viewerCmd struct {
	tex        *scene.Texture
	fullscreen bool
}

// RenderEngine is the high-level renderer that drives the OpenGL backend.
type RenderEngine struct {
	gl     *opengl.Renderer
	window *core.Window
	Scene  *scene.Scene

	PostProcessEnabled bool

	// Per-frame stats (populated during Render)
	lastObjects int
	lastPoints  int

	overlay   Geometry
	canvas    *snowcanvas.Canvas
	viewer    *viewerCmd
	textQueue []textCmd
	texts     *textCache
	ordered   []*scene.Node
}

func NewRenderEngine(window *core.Window) (*RenderEngine, error) {
	glRenderer, err := opengl.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL renderer: %w", err)
	}

	fbW, fbH := window.GetFramebufferSize()
	glRenderer.SetViewport(fbW, fbH)

	return &RenderEngine{
		gl:     glRenderer,
		window: window,
		texts:  newTextCache(),
	}, nil
}

// Version reports the GL driver version.
func (re *RenderEngine) Version() string { return re.gl.Version() }

// EnablePostProcess creates the HDR post-processing FBO with bloom.
// Call once after NewRenderEngine, before the first Render.
func (re *RenderEngine) EnablePostProcess() error {
	if err := re.gl.EnablePostProcess(); err != nil {
		return fmt.Errorf("post-process: %w", err)
	}
	re.PostProcessEnabled = true
	return nil
}

// SetBloomStrength sets the additive bloom multiplier.
func (re *RenderEngine) SetBloomStrength(s float32) { re.gl.SetBloomStrength(s) }

func (re *RenderEngine) SetScene(s *scene.Scene) {
	re.Scene = s
}

// Releaser frees GPU resources of a retired generation.
func (re *RenderEngine) Releaser() tree.Releaser { return re.gl }

// Pass orders drawing: opaque surfaces first, then sprites, then blended
// surfaces, so nothing additive is hidden behind a later depth write.
func Pass(n *scene.Node) int {
	if n.Points != nil {
		return 1
	}
	if n.SurfaceMaterial().Blend == scene.BlendOpaque {
		return 0
	}
	return 2
}

// DrawOrder sorts nodes by Pass, keeping traversal order within a pass.
func DrawOrder(nodes []*scene.Node) []*scene.Node {
	sort.SliceStable(nodes, func(i, j int) bool { return Pass(nodes[i]) < Pass(nodes[j]) })
	return nodes
}

func (re *RenderEngine) Render() error {
	if re.Scene == nil || re.Scene.Camera == nil {
		return errors.New("no scene or camera")
	}

	re.gl.BeginFrame(re.Scene.Background)

	view := re.Scene.Camera.GetViewMatrix()
	proj := re.Scene.Camera.GetProjectionMatrix()

	re.ordered = DrawOrder(append(re.ordered[:0], re.Scene.GetVisibleNodes()...))
	objects, points := 0, 0
	for _, node := range re.ordered {
		modelView := node.GetWorldMatrix().Mul(view)
		mvp := modelView.Mul(proj)
		if node.Points != nil {
			re.gl.DrawPoints(node.Points, mvp, modelView)
			points += node.Points.Count()
			continue
		}
		re.gl.DrawMesh(node.Mesh, node.SurfaceMaterial(), mvp, modelView)
		objects++
	}

	re.lastObjects = objects
	re.lastPoints = points
	return nil
}

// Stats returns the mesh and sprite counts of the last Render.
func (re *RenderEngine) Stats() (objects, points int) {
	return re.lastObjects, re.lastPoints
}

// DrawSnowCanvas queues the snow canvas for the next Present().
func (re *RenderEngine) DrawSnowCanvas(c *snowcanvas.Canvas) {
	re.canvas = c
}

// DrawMediaViewer queues the media viewer showing tex for the next Present().
func (re *RenderEngine) DrawMediaViewer(tex *scene.Texture, fullscreen bool) {
	re.viewer = &viewerCmd{tex: tex, fullscreen: fullscreen}
}

// DrawText queues a text string to be drawn at window position (x, y) in
// the next Present() call. scale=1 draws 7x13 pixel glyphs.
func (re *RenderEngine) DrawText(text string, x, y int, scale float32, color core.Color) {
	if text == "" {
		return
	}
	re.textQueue = append(re.textQueue, textCmd{
		text:  text,
		x:     float32(x),
		y:     float32(y),
		scale: scale,
		color: color,
	})
}

// TextSize is the window-space size of text at scale.
func TextSize(text string, scale float32) (w, h float32) {
	n := len([]rune(text))
	return float32(n*textFace.Advance) * scale, float32(textFace.Metrics().Height.Ceil()) * scale
}

// Present resolves the HDR FBO, draws the overlays on top and swaps buffers.
// Overlays skip bloom so they stay crisp.
func (re *RenderEngine) Present() {
	re.gl.BlitPostProcess()

	scale := re.pixelScale()
	if re.canvas != nil {
		re.overlay.Reset(scale)
		re.overlay.SnowCanvas(re.canvas)
		re.gl.DrawOverlay(re.overlay.Verts, nil)
		re.canvas = nil
	}
	if re.viewer != nil {
		re.drawViewer(scale)
		re.viewer = nil
	}
	for _, cmd := range re.textQueue {
		tex := re.texts.get(cmd.text)
		re.overlay.Reset(scale)
		w := float32(tex.Width) * cmd.scale
		h := float32(tex.Height) * cmd.scale
		re.overlay.Rect(cmd.x, cmd.y, cmd.x+w, cmd.y+h, cmd.color)
		re.gl.DrawOverlay(re.overlay.Verts, tex)
	}
	re.textQueue = re.textQueue[:0]
	for _, tex := range re.texts.sweep() {
		re.gl.ReleaseTexture(tex)
	}

	re.window.SwapBuffers()
}

func (re *RenderEngine) drawViewer(scale float32) {
	winW, winH := re.window.Size()
	re.overlay.Reset(scale)
	re.overlay.Rect(0, 0, float32(winW), float32(winH), Backdrop)
	re.gl.DrawOverlay(re.overlay.Verts, nil)

	tex := re.viewer.tex
	if tex == nil {
		return
	}
	r := FitRect(float32(tex.Width), float32(tex.Height), float32(winW), float32(winH), re.viewer.fullscreen)
	re.overlay.Reset(scale)
	re.overlay.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height, core.ColorWhite)
	re.gl.DrawOverlay(re.overlay.Verts, tex)
}

// pixelScale is framebuffer pixels per window unit.
func (re *RenderEngine) pixelScale() float32 {
	winW, _ := re.window.Size()
	fbW, _ := re.window.GetFramebufferSize()
	if winW <= 0 {
		return 1
	}
	return float32(fbW) / float32(winW)
}

// Resize follows a framebuffer size change.
func (re *RenderEngine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	re.gl.SetViewport(width, height)
	if re.PostProcessEnabled {
		re.gl.ResizePostProcess(width, height)
	}
	if re.Scene != nil && re.Scene.Camera != nil {
		re.Scene.Camera.UpdateAspectRatio(float32(width), float32(height))
	}
}

// ReleaseTexture frees a texture the engine uploaded outside a generation,
// such as the media viewer's image.
func (re *RenderEngine) ReleaseTexture(tex *scene.Texture) {
	re.gl.ReleaseTexture(tex)
}

func (re *RenderEngine) Destroy() {
	re.gl.Destroy()
}
