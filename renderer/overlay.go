package renderer

import (
	"github.com/chewxy/math32"

	"christmas-tree/core"
	"christmas-tree/internal/opengl"
	"christmas-tree/math"
	"christmas-tree/snowcanvas"
)

// Geometry accumulates overlay triangles in framebuffer pixels. Input
// coordinates are window coordinates multiplied by Scale, which is the
// framebuffer-to-window ratio on HiDPI displays.
type Geometry struct {
	Scale float32
	Verts []opengl.Vertex2D
}

// Reset empties the buffer and keeps its capacity.
func (g *Geometry) Reset(scale float32) {
	g.Scale = scale
	g.Verts = g.Verts[:0]
}

func (g *Geometry) vert(x, y, u, v float32, c core.Color) {
	g.Verts = append(g.Verts, opengl.Vertex2D{X: x * g.Scale, Y: y * g.Scale, U: u, V: v, Color: c})
}

// Rect fills [x0,x1]x[y0,y1] with c.
func (g *Geometry) Rect(x0, y0, x1, y1 float32, c core.Color) {
	g.Gradient(x0, y0, x1, y1, c, c)
}

// Gradient fills a rect blending top to bottom.
func (g *Geometry) Gradient(x0, y0, x1, y1 float32, top, bottom core.Color) {
	g.vert(x0, y0, 0, 0, top)
	g.vert(x1, y0, 1, 0, top)
	g.vert(x1, y1, 1, 1, bottom)
	g.vert(x0, y0, 0, 0, top)
	g.vert(x1, y1, 1, 1, bottom)
	g.vert(x0, y1, 0, 1, bottom)
}

// Line draws a segment of the given width as a quad.
func (g *Geometry) Line(a, b math.Vec2, width float32, c core.Color) {
	d := b.Sub(a)
	l := d.Length()
	if l == 0 {
		g.Disc(a, width/2, c)
		return
	}
	n := math.Vec2{X: -d.Y / l, Y: d.X / l}.Mul(width / 2)
	p0, p1 := a.Add(n), a.Sub(n)
	p2, p3 := b.Sub(n), b.Add(n)
	g.vert(p0.X, p0.Y, 0, 0, c)
	g.vert(p1.X, p1.Y, 0, 1, c)
	g.vert(p2.X, p2.Y, 1, 1, c)
	g.vert(p0.X, p0.Y, 0, 0, c)
	g.vert(p2.X, p2.Y, 1, 1, c)
	g.vert(p3.X, p3.Y, 1, 0, c)
}

const discSegments = 8

// Disc draws a filled octagon.
func (g *Geometry) Disc(center math.Vec2, r float32, c core.Color) {
	for i := 0; i < discSegments; i++ {
		a0 := float32(i) / discSegments * 2 * math32.Pi
		a1 := float32(i+1) / discSegments * 2 * math32.Pi
		s0, c0 := math32.Sincos(a0)
		s1, c1 := math32.Sincos(a1)
		g.vert(center.X, center.Y, 0.5, 0.5, c)
		g.vert(center.X+c0*r, center.Y+s0*r, 0.5, 0.5, c)
		g.vert(center.X+c1*r, center.Y+s1*r, 0.5, 0.5, c)
	}
}

func withAlpha(c core.Color, a float32) core.Color {
	c.A = a
	return c
}

// SnowCanvas appends the pile, its surface line, the falling flakes and
// the carved strokes.
func (g *Geometry) SnowCanvas(c *snowcanvas.Canvas) {
	if !c.Enabled() {
		return
	}
	bottom := float32(c.Height)
	surface := c.SurfacePolyline()
	for x := range surface {
		if c.Heights[x] <= 0 {
			continue
		}
		top := surface[x].Y
		g.Gradient(float32(x), top, float32(x+1), bottom, snowcanvas.PileTop, snowcanvas.PileBottom)
	}
	for x := 1; x < len(surface); x++ {
		if c.Heights[x-1] <= 0 && c.Heights[x] <= 0 {
			continue
		}
		g.Line(surface[x-1], surface[x], 2, snowcanvas.SurfaceColor)
	}

	for _, f := range c.Flakes {
		g.Disc(math.Vec2{X: f.X, Y: f.Y}, f.Size/2, snowcanvas.FlakeColor)
	}

	segs := c.Segments()
	for _, pass := range snowcanvas.StrokePasses {
		for _, s := range segs {
			g.Line(s.A, s.B, pass.Width, withAlpha(pass.Color, pass.Color.A*s.Alpha))
		}
	}
}

// Backdrop dims the whole window behind the media viewer.
var Backdrop = core.Color{R: 0, G: 0, B: 0, A: 0.85}

// ViewerMargin is the fraction of the window the framed viewer leaves free.
const ViewerMargin = 0.1

// FitRect is the largest rect with the aspect of a w x h image centered in
// a winW x winH window, leaving ViewerMargin unless fullscreen.
func FitRect(w, h, winW, winH float32, fullscreen bool) core.Rect {
	availW, availH := winW, winH
	if !fullscreen {
		availW *= 1 - ViewerMargin
		availH *= 1 - ViewerMargin
	}
	if w <= 0 || h <= 0 {
		w, h = 1, 1
	}
	s := min(availW/w, availH/h)
	dw, dh := w*s, h*s
	return core.Rect{X: (winW - dw) / 2, Y: (winH - dh) / 2, Width: dw, Height: dh}
}
