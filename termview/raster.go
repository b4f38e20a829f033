package termview

import (
	"github.com/chewxy/math32"

	"christmas-tree/core"
	"christmas-tree/math"
	"christmas-tree/scene"
	"christmas-tree/shading"
	"christmas-tree/snowcanvas"
	"christmas-tree/tree"
)

// Raster is a small linear-light framebuffer. Each terminal cell shows two
// vertically stacked pixels, so a Raster for a cols x rows terminal is
// cols x 2*rows.
type Raster struct {
	W, H int
	Pix  []core.Color
}

// NewRaster allocates a w x h raster.
func NewRaster(w, h int) *Raster {
	r := &Raster{}
	r.Resize(w, h)
	return r
}

// Resize reallocates only when the pixel count grows.
func (r *Raster) Resize(w, h int) {
	r.W, r.H = max(w, 0), max(h, 0)
	n := r.W * r.H
	if cap(r.Pix) < n {
		r.Pix = make([]core.Color, n)
	}
	r.Pix = r.Pix[:n]
}

// Clear fills every pixel with c.
func (r *Raster) Clear(c core.Color) {
	for i := range r.Pix {
		r.Pix[i] = c
	}
}

// At returns the pixel at (x, y), black outside the raster.
func (r *Raster) At(x, y int) core.Color {
	if x < 0 || y < 0 || x >= r.W || y >= r.H {
		return core.ColorBlack
	}
	return r.Pix[y*r.W+x]
}

// Add accumulates c*gain at (x, y).
func (r *Raster) Add(x, y int, c core.Color, gain float32) {
	if x < 0 || y < 0 || x >= r.W || y >= r.H {
		return
	}
	p := &r.Pix[y*r.W+x]
	p.R += c.R * gain
	p.G += c.G * gain
	p.B += c.B * gain
}

// Blend composites c over (x, y) using c.A.
func (r *Raster) Blend(x, y int, c core.Color) {
	if x < 0 || y < 0 || x >= r.W || y >= r.H {
		return
	}
	p := &r.Pix[y*r.W+x]
	p.R += (c.R - p.R) * c.A
	p.G += (c.G - p.G) * c.A
	p.B += (c.B - p.B) * c.A
}

// Splat adds a soft disc of radius rad around (x, y), full gain at the
// center falling linearly to zero at the rim.
func (r *Raster) Splat(x, y, rad float32, c core.Color, gain float32) {
	if rad <= 0.5 {
		r.Add(int(x), int(y), c, gain)
		return
	}
	x0, x1 := int(math32.Floor(x-rad)), int(math32.Ceil(x+rad))
	y0, y1 := int(math32.Floor(y-rad)), int(math32.Ceil(y+rad))
	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			dx, dy := float32(px)+0.5-x, float32(py)+0.5-y
			d := math32.Sqrt(dx*dx + dy*dy)
			if d >= rad {
				continue
			}
			r.Add(px, py, c, gain*(1-d/rad))
		}
	}
}

// Line blends a segment of width w (pixels) with c.
func (r *Raster) Line(a, b math.Vec2, w float32, c core.Color) {
	d := b.Sub(a)
	steps := max(int(math32.Ceil(max(math32.Abs(d.X), math32.Abs(d.Y)))), 1)
	half := max(w/2, 0.5)
	for i := 0; i <= steps; i++ {
		p := a.Add(d.Mul(float32(i) / float32(steps)))
		for py := int(p.Y - half); py <= int(p.Y+half); py++ {
			for px := int(p.X - half); px <= int(p.X+half); px++ {
				r.Blend(px, py, c)
			}
		}
	}
}

// Project maps a world point to raster pixels. ok is false behind the
// camera or outside the view.
func (r *Raster) Project(viewProj math.Mat4, p math.Vec3) (x, y, w float32, ok bool) {
	clip := p.ToVec4(1).MulMat(viewProj)
	if clip.W <= 1e-4 {
		return 0, 0, 0, false
	}
	nx, ny := clip.X/clip.W, clip.Y/clip.W
	if nx < -1 || nx > 1 || ny < -1 || ny > 1 {
		return 0, 0, 0, false
	}
	return (nx*0.5 + 0.5) * float32(r.W), (0.5 - ny*0.5) * float32(r.H), clip.W, true
}

// pointScale turns a world size at clip depth w into pixels.
func (r *Raster) pointScale(proj math.Mat4, size, w float32) float32 {
	return size * proj[1][1] / w * float32(r.H) / 2
}

// DrawGeneration renders gen as the camera sees it. Sprite shading follows
// the same twinkle math as the GPU shaders; surfaces collapse to glowing
// dots, since a terminal cell is far coarser than an ornament.
func (r *Raster) DrawGeneration(gen *tree.Generation, cam *scene.Camera) {
	if gen == nil || gen.Released() {
		return
	}
	viewProj := cam.GetViewProjectionMatrix()
	proj := cam.GetProjectionMatrix()

	for _, obj := range gen.Objects {
		n := obj.SceneNode()
		world := n.GetWorldMatrix()
		switch o := obj.(type) {
		case *tree.Foliage:
			u := o.Cloud.Uniforms
			for _, p := range o.Cloud.Points {
				x, y, w, ok := r.Project(viewProj, world.MulVec3(p.Position))
				if !ok {
					continue
				}
				tw := shading.Twinkle(u.Time, u.TwinkleSpeed, p.Phase)
				rad := r.pointScale(proj, p.Size, w) * shading.TwinkleScale(tw, u.TwinkleSize) / 2
				gain := 0.5 * shading.FoliageBrightness(tw) * u.Brightness
				r.Splat(x, y, rad, p.Color, gain)
			}
		case *tree.Snow:
			for _, p := range o.Cloud.Points {
				x, y, _, ok := r.Project(viewProj, world.MulVec3(p.Position))
				if ok {
					r.Add(int(x), int(y), p.Color, 0.35)
				}
			}
		case *tree.StarGlow:
			x, y, w, ok := r.Project(viewProj, world.MulVec3(math.Vec3{}))
			if ok {
				m := o.Material
				r.Splat(x, y, r.pointScale(proj, 0.6, w), m.Albedo, m.Intensity*m.Twinkle*m.GlowGain*0.5)
			}
		case *tree.Star:
			x, y, w, ok := r.Project(viewProj, world.MulVec3(math.Vec3{}))
			if ok {
				m := o.Material
				r.Splat(x, y, max(r.pointScale(proj, 0.2, w), 1), m.Albedo, m.Intensity*(0.6+m.Twinkle))
			}
		case *tree.OrnamentGlow:
			x, y, w, ok := r.Project(viewProj, world.MulVec3(math.Vec3{}))
			if ok && o.Material.Flash > 0.05 {
				m := o.Material
				r.Splat(x, y, r.pointScale(proj, 0.25, w), m.Albedo, m.Flash*m.Intensity*0.15)
			}
		case *tree.Ornament:
			x, y, _, ok := r.Project(viewProj, world.MulVec3(math.Vec3{}))
			if ok {
				m := o.Material
				c := m.Albedo
				k := m.Intensity * (1 + m.Flash*0.25)
				r.Blend(int(x), int(y), core.Color{R: c.R * k, G: c.G * k, B: c.B * k, A: 1})
			}
		}
	}
}

// DrawCanvas composites the snow-drawing overlay. The canvas must have been
// sized to the raster.
func (r *Raster) DrawCanvas(c *snowcanvas.Canvas) {
	if !c.Enabled() {
		return
	}
	for x := 0; x < c.Width && x < r.W; x++ {
		if c.Heights[x] <= 0 {
			continue
		}
		top := c.WaveY(x)
		span := max(float32(c.Height)-top, 1)
		for y := max(int(top), 0); y < r.H; y++ {
			t := math.Clamp((float32(y)-top)/span, 0, 1)
			col := lerpColor(snowcanvas.PileTop, snowcanvas.PileBottom, t)
			if y == int(top) {
				col = snowcanvas.SurfaceColor
			}
			r.Blend(x, y, col)
		}
	}
	for _, f := range c.Flakes {
		r.Blend(int(f.X), int(f.Y), snowcanvas.FlakeColor)
	}
	segs := c.Segments()
	for _, pass := range snowcanvas.StrokePasses {
		for _, s := range segs {
			col := pass.Color
			col.A *= s.Alpha
			r.Line(s.A, s.B, pass.Width/4, col)
		}
	}
}

func lerpColor(a, b core.Color, t float32) core.Color {
	return core.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}
