// Package snowcanvas simulates the drawable snow overlay: flakes fall and
// pile up into a per-column height field over a build phase, after which
// the pointer can carve fading strokes into the surface.
package snowcanvas

import (
	"math/rand"
	"time"

	"github.com/chewxy/math32"

	"christmas-tree/math"
)

const (
	BuildDuration = 3000 * time.Millisecond
	MaxHeight     = 150 // pixels
	FadeDuration  = 10000 * time.Millisecond
	FlakeCount    = 300

	// SurfaceTolerance is how far above the surface (pixels) a stroke may
	// still start or continue.
	SurfaceTolerance = 10
	// StrokeSpacing is the interpolation step between pointer samples.
	StrokeSpacing = 2

	deposit = 0.5

	HintText = "Draw on the snow..."
)

// Phase is the canvas lifecycle stage.
type Phase int

const (
	PhaseDisabled Phase = iota
	PhaseBuilding
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseDisabled:
		return "disabled"
	case PhaseBuilding:
		return "building"
	case PhaseReady:
		return "ready"
	}
	return "unknown"
}

// Flake is one falling snowflake in pixel space.
type Flake struct {
	X, Y        float32
	Size        float32
	Speed       float32
	Wobble      float32
	WobbleSpeed float32
}

// StrokePoint is a carved point and when it was made.
type StrokePoint struct {
	X, Y float32
	Born time.Time
}

// Stroke is one continuous carve.
type Stroke struct {
	Points []StrokePoint
}

// Canvas is the height field, its flakes and the carved strokes.
type Canvas struct {
	Width, Height int
	// Heights holds one accumulated snow height per pixel column.
	Heights []float32
	Flakes  []Flake
	Strokes []*Stroke

	phase   Phase
	started time.Time
	now     time.Time

	drawing bool
	active  *Stroke
	last    *math.Vec2

	rng *rand.Rand
}

// New returns a disabled canvas.
func New(rng *rand.Rand) *Canvas {
	return &Canvas{rng: rng}
}

// Phase reports the lifecycle stage.
func (c *Canvas) Phase() Phase { return c.phase }

// Enabled reports whether the canvas is running.
func (c *Canvas) Enabled() bool { return c.phase != PhaseDisabled }

// Enable starts the build phase on a width x height viewport.
func (c *Canvas) Enable(width, height int, now time.Time) {
	c.phase = PhaseBuilding
	c.started = now
	c.now = now
	c.Resize(width, height)
}

// Disable stops the canvas and drops all of its state.
func (c *Canvas) Disable() {
	c.phase = PhaseDisabled
	c.Heights = nil
	c.Flakes = nil
	c.Strokes = nil
	c.Width, c.Height = 0, 0
	c.endStroke()
}

// Resize reinitializes the height field, flakes and strokes for a new
// viewport. The build clock keeps running.
func (c *Canvas) Resize(width, height int) {
	if c.phase == PhaseDisabled {
		return
	}
	c.Width, c.Height = max(width, 0), max(height, 0)
	c.Heights = make([]float32, c.Width)
	c.Flakes = make([]Flake, FlakeCount)
	w, h := float32(c.Width), float32(c.Height)
	for i := range c.Flakes {
		c.Flakes[i] = Flake{
			X:           c.rng.Float32() * w,
			Y:           c.rng.Float32() * h,
			Size:        c.rng.Float32()*3 + 2,
			Speed:       c.rng.Float32()*2 + 1,
			Wobble:      c.rng.Float32() * 2 * math32.Pi,
			WobbleSpeed: c.rng.Float32()*0.02 + 0.01,
		}
	}
	c.Strokes = nil
	c.endStroke()
}

// Progress is the build fraction in [0,1].
func (c *Canvas) Progress() float32 {
	if c.phase == PhaseDisabled {
		return 0
	}
	return math.Clamp(float32(c.now.Sub(c.started))/float32(BuildDuration), 0, 1)
}

// TargetHeight is the most snow any column may hold right now.
func (c *Canvas) TargetHeight() float32 {
	return MaxHeight * c.Progress()
}

// Step advances one frame to now: flakes fall and deposit, the phase flips
// to ready once the build completes, and faded stroke points are dropped.
func (c *Canvas) Step(now time.Time) {
	if c.phase == PhaseDisabled {
		return
	}
	c.now = now
	target := c.TargetHeight()
	w, h := float32(c.Width), float32(c.Height)

	for i := range c.Flakes {
		f := &c.Flakes[i]
		f.Wobble += f.WobbleSpeed
		f.X += math32.Sin(f.Wobble) * 0.5
		f.Y += f.Speed

		col := int(math32.Floor(f.X))
		if col >= 0 && col < len(c.Heights) {
			cur := c.Heights[col]
			if f.Y >= h-cur && cur < target {
				c.land(col, cur, target)
				c.respawn(f)
			}
		}
		if f.Y > h || f.X < -10 || f.X > w+10 {
			c.respawn(f)
		}
	}

	if c.phase == PhaseBuilding && c.Progress() >= 1 {
		c.phase = PhaseReady
	}
	c.prune()
}

func (c *Canvas) land(col int, cur, target float32) {
	c.Heights[col] = min(target, cur+deposit)
	if col > 0 {
		c.Heights[col-1] = min(target, max(c.Heights[col-1], cur-1))
	}
	if col < len(c.Heights)-1 {
		c.Heights[col+1] = min(target, max(c.Heights[col+1], cur-1))
	}
}

func (c *Canvas) respawn(f *Flake) {
	f.Y = -10
	f.X = c.rng.Float32() * float32(c.Width)
}

// HeightAt is the pile height under pixel x; outside the field it is 0.
func (c *Canvas) HeightAt(x float32) float32 {
	col := int(math32.Floor(x))
	if col < 0 || col >= len(c.Heights) {
		return 0
	}
	return c.Heights[col]
}

// SurfaceY is the top of the pile at pixel x, ignoring the wave.
func (c *Canvas) SurfaceY(x float32) float32 {
	return float32(c.Height) - c.HeightAt(x)
}

// WaveY is the drawn surface at column x including the gentle wave.
func (c *Canvas) WaveY(x int) float32 {
	ms := float32(c.now.Sub(c.started).Milliseconds())
	return c.SurfaceY(float32(x)) + math32.Sin(float32(x)*0.02+ms*0.0005)*2
}

// PointerDown starts carving at (x, y). Ignored until the build is done.
func (c *Canvas) PointerDown(x, y float32, now time.Time) {
	if c.phase != PhaseReady {
		return
	}
	c.drawing = true
	c.active = nil
	c.last = nil
	c.addPoint(x, y, now)
}

// PointerMove extends the current carve.
func (c *Canvas) PointerMove(x, y float32, now time.Time) {
	if c.phase != PhaseReady || !c.drawing {
		return
	}
	c.addPoint(x, y, now)
}

// PointerUp ends the current carve. Pointer-leave does the same.
func (c *Canvas) PointerUp() {
	c.endStroke()
}

func (c *Canvas) endStroke() {
	c.drawing = false
	c.active = nil
	c.last = nil
}

// addPoint ignores points more than SurfaceTolerance above the surface.
// Consecutive samples are joined by points every StrokeSpacing pixels.
func (c *Canvas) addPoint(x, y float32, now time.Time) {
	if y < c.SurfaceY(x)-SurfaceTolerance {
		return
	}
	p := math.Vec2{X: x, Y: y}
	if c.active == nil {
		c.active = &Stroke{Points: []StrokePoint{{X: x, Y: y, Born: now}}}
		c.Strokes = append(c.Strokes, c.active)
	} else if c.last != nil {
		steps := max(1, int(math32.Floor(p.Distance(*c.last)/StrokeSpacing)))
		for i := 1; i <= steps; i++ {
			t := float32(i) / float32(steps)
			c.active.Points = append(c.active.Points, StrokePoint{
				X:    math.Lerp(c.last.X, x, t),
				Y:    math.Lerp(c.last.Y, y, t),
				Born: now,
			})
		}
	}
	c.last = &p
}

// PointAlpha is the opacity of a stroke point of the given age.
func PointAlpha(age time.Duration) float32 {
	if age >= FadeDuration {
		return 0
	}
	return 1 - float32(age)/float32(FadeDuration)
}

func (c *Canvas) prune() {
	kept := c.Strokes[:0]
	for _, s := range c.Strokes {
		pts := s.Points[:0]
		for _, p := range s.Points {
			if c.now.Sub(p.Born) < FadeDuration {
				pts = append(pts, p)
			}
		}
		s.Points = pts
		if len(s.Points) > 0 {
			kept = append(kept, s)
		} else if s == c.active {
			c.active = nil
		}
	}
	for i := len(kept); i < len(c.Strokes); i++ {
		c.Strokes[i] = nil
	}
	c.Strokes = kept
}

// ShowHint reports whether the "draw here" hint should be shown.
func (c *Canvas) ShowHint() bool {
	return c.phase == PhaseReady && len(c.Strokes) == 0
}
