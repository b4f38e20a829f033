package snowcanvas

import (
	"christmas-tree/core"
	"christmas-tree/math"
)

// Pass is one outline layer of a carved stroke.
type Pass struct {
	Color core.Color // alpha is the layer's opacity at full strength
	Width float32
}

// StrokePasses are drawn in order: dark groove, lighter inner line,
// bright highlight.
var StrokePasses = [...]Pass{
	{Color: rgba8(150, 170, 190, 0.8), Width: 8},
	{Color: rgba8(180, 200, 220, 0.6), Width: 4},
	{Color: rgba8(255, 255, 255, 0.4), Width: 2},
}

// Overlay colors for the flakes, pile body and surface line.
var (
	FlakeColor   = rgba8(255, 255, 255, 0.8)
	PileTop      = rgba8(240, 248, 255, 0.95)
	PileBottom   = rgba8(230, 240, 250, 1)
	SurfaceColor = rgba8(255, 255, 255, 0.9)
	HintColor    = rgba8(100, 130, 160, 0.5)
)

func rgba8(r, g, b uint8, a float32) core.Color {
	return core.Color{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255, A: a}
}

// Segment is a piece of a stroke between two consecutive points. Alpha
// follows the older of the two points.
type Segment struct {
	A, B  math.Vec2
	Alpha float32
}

// Segments returns the visible stroke segments at the canvas' current time.
// Points at or past FadeDuration are never included.
func (c *Canvas) Segments() []Segment {
	var out []Segment
	for _, s := range c.Strokes {
		for i := 1; i < len(s.Points); i++ {
			p, q := s.Points[i-1], s.Points[i]
			a := min(PointAlpha(c.now.Sub(p.Born)), PointAlpha(c.now.Sub(q.Born)))
			if a <= 0 {
				continue
			}
			out = append(out, Segment{
				A:     math.Vec2{X: p.X, Y: p.Y},
				B:     math.Vec2{X: q.X, Y: q.Y},
				Alpha: a,
			})
		}
	}
	return out
}

// SurfacePolyline returns the wavy pile outline, one vertex per column.
func (c *Canvas) SurfacePolyline() []math.Vec2 {
	out := make([]math.Vec2, len(c.Heights))
	for x := range c.Heights {
		out[x] = math.Vec2{X: float32(x), Y: c.WaveY(x)}
	}
	return out
}

// HintPosition is where the hint text is centered.
func (c *Canvas) HintPosition() math.Vec2 {
	return math.Vec2{X: float32(c.Width) / 2, Y: float32(c.Height) - MaxHeight/2}
}
