package snowcanvas

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Unix(1700000000, 0)

func at(ms int) time.Time { return epoch.Add(time.Duration(ms) * time.Millisecond) }

func newCanvas(t *testing.T, w, h int) *Canvas {
	t.Helper()
	c := New(rand.New(rand.NewSource(11)))
	c.Enable(w, h, epoch)
	return c
}

// ready runs the build to completion.
func ready(t *testing.T, c *Canvas) {
	t.Helper()
	for ms := 16; ms <= int(BuildDuration/time.Millisecond)+16; ms += 16 {
		c.Step(at(ms))
	}
	require.Equal(t, PhaseReady, c.Phase())
}

func TestBuildPhaseGrowsAndHolds(t *testing.T) {
	c := newCanvas(t, 200, 300)
	require.Equal(t, PhaseBuilding, c.Phase())
	assert.Len(t, c.Heights, 200)
	assert.Len(t, c.Flakes, FlakeCount)

	for ms := 16; ms < 1500; ms += 16 {
		c.Step(at(ms))
		for _, h := range c.Heights {
			assert.LessOrEqual(t, h, c.TargetHeight()+1e-4)
		}
	}
	assert.Equal(t, PhaseBuilding, c.Phase())

	ready(t, c)
	for ms := 3100; ms < 20000; ms += 16 {
		c.Step(at(ms))
	}
	var total float32
	for _, h := range c.Heights {
		assert.LessOrEqual(t, h, float32(MaxHeight))
		assert.GreaterOrEqual(t, h, float32(0))
		total += h
	}
	assert.Positive(t, total)
}

func TestFlakeFields(t *testing.T) {
	c := newCanvas(t, 100, 100)
	for _, f := range c.Flakes {
		assert.GreaterOrEqual(t, f.Size, float32(2))
		assert.Less(t, f.Size, float32(5))
		assert.GreaterOrEqual(t, f.Speed, float32(1))
		assert.Less(t, f.Speed, float32(3))
		assert.GreaterOrEqual(t, f.WobbleSpeed, float32(0.01))
		assert.Less(t, f.WobbleSpeed, float32(0.03))
	}
}

func TestLandingDepositsAndSpreads(t *testing.T) {
	c := newCanvas(t, 10, 100)
	c.now = at(int(BuildDuration / time.Millisecond)) // full target
	c.Heights[5] = 20
	c.Heights[4] = 3
	c.Heights[6] = 40

	c.land(5, 20, c.TargetHeight())
	assert.Equal(t, float32(20.5), c.Heights[5])
	assert.Equal(t, float32(19), c.Heights[4])
	assert.Equal(t, float32(40), c.Heights[6])

	c.Heights[0] = 0
	c.land(0, 0, 0.2)
	assert.Equal(t, float32(0.2), c.Heights[0])
}

func TestStrokesOnlyWhenReady(t *testing.T) {
	c := newCanvas(t, 100, 300)
	c.PointerDown(50, 299, at(10))
	assert.Empty(t, c.Strokes)

	ready(t, c)
	c.PointerDown(50, 299, at(3100))
	assert.Len(t, c.Strokes, 1)
}

func TestStrokeToleranceAboveSurface(t *testing.T) {
	c := newCanvas(t, 100, 300)
	ready(t, c)
	for i := range c.Heights {
		c.Heights[i] = 100
	}
	surface := float32(200)

	c.PointerDown(10, surface-SurfaceTolerance-1, at(4000))
	assert.Empty(t, c.Strokes, "far above the pile is ignored")
	c.PointerUp()

	c.PointerDown(10, surface-SurfaceTolerance+1, at(4000))
	assert.Len(t, c.Strokes, 1)
	c.PointerUp()

	c.PointerDown(20, 290, at(4000))
	assert.Len(t, c.Strokes, 2, "inside the pile is carved")
}

func TestStrokeInterpolation(t *testing.T) {
	c := newCanvas(t, 100, 300)
	ready(t, c)

	c.PointerDown(10, 290, at(4000))
	c.PointerMove(20, 290, at(4010))
	require.Len(t, c.Strokes, 1)
	pts := c.Strokes[0].Points
	// one starting point plus floor(10/2) interpolated steps
	require.Len(t, pts, 6)
	assert.InDelta(t, 12, pts[1].X, 1e-5)
	assert.InDelta(t, 20, pts[5].X, 1e-5)

	c.PointerMove(20.5, 290, at(4020))
	assert.Len(t, c.Strokes[0].Points, 7, "short moves still add one point")
}

func TestMoveWithoutDownDoesNothing(t *testing.T) {
	c := newCanvas(t, 100, 300)
	ready(t, c)
	c.PointerMove(10, 290, at(4000))
	assert.Empty(t, c.Strokes)
}

func TestStrokeFadesAndDisappears(t *testing.T) {
	c := newCanvas(t, 100, 300)
	ready(t, c)

	t0 := 5000
	c.PointerDown(10, 290, at(t0))
	c.PointerMove(30, 290, at(t0))
	c.PointerUp()

	prev := float32(2)
	for ms := t0 + 500; ms < t0+10000; ms += 500 {
		c.Step(at(ms))
		segs := c.Segments()
		require.NotEmpty(t, segs)
		assert.Less(t, segs[0].Alpha, prev)
		prev = segs[0].Alpha
	}

	c.Step(at(t0 + 10000))
	assert.Empty(t, c.Segments())
	assert.Empty(t, c.Strokes)
	assert.True(t, c.ShowHint())
}

func TestSegmentTakesOlderEndAlpha(t *testing.T) {
	c := newCanvas(t, 100, 300)
	ready(t, c)

	c.PointerDown(10, 290, at(5000))
	c.PointerMove(11, 290, at(9000))
	c.PointerUp()

	c.Step(at(10000))
	segs := c.Segments()
	require.Len(t, segs, 1)
	assert.InDelta(t, PointAlpha(5000*time.Millisecond), segs[0].Alpha, 1e-6)
	assert.Less(t, segs[0].Alpha, PointAlpha(1000*time.Millisecond))
}

func TestPointAlpha(t *testing.T) {
	assert.Equal(t, float32(1), PointAlpha(0))
	assert.InDelta(t, 0.5, PointAlpha(FadeDuration/2), 1e-6)
	assert.Zero(t, PointAlpha(FadeDuration))
	assert.Zero(t, PointAlpha(2*FadeDuration))
}

func TestResizeReinitializes(t *testing.T) {
	c := newCanvas(t, 100, 300)
	ready(t, c)
	c.Heights[3] = 42
	c.PointerDown(10, 290, at(4000))
	require.NotEmpty(t, c.Strokes)

	c.Resize(250, 400)
	assert.Len(t, c.Heights, 250)
	assert.Zero(t, c.Heights[3])
	assert.Empty(t, c.Strokes)
	assert.Len(t, c.Flakes, FlakeCount)
	for _, f := range c.Flakes {
		assert.LessOrEqual(t, f.X, float32(250))
		assert.LessOrEqual(t, f.Y, float32(400))
	}
}

func TestDisableClears(t *testing.T) {
	c := newCanvas(t, 100, 300)
	ready(t, c)
	c.PointerDown(10, 290, at(4000))
	c.Disable()

	assert.False(t, c.Enabled())
	assert.Nil(t, c.Heights)
	assert.Nil(t, c.Flakes)
	assert.Nil(t, c.Strokes)
	assert.False(t, c.ShowHint())

	c.Step(at(9000))
	assert.Equal(t, PhaseDisabled, c.Phase())
}

func TestFlakesStayInBounds(t *testing.T) {
	c := newCanvas(t, 80, 120)
	for ms := 0; ms < 10000; ms += 16 {
		c.Step(at(ms))
		for _, f := range c.Flakes {
			assert.GreaterOrEqual(t, f.X, float32(-10.5))
			assert.LessOrEqual(t, f.X, float32(90.5))
			assert.LessOrEqual(t, f.Y, float32(120))
		}
	}
}

func TestSurfacePolylineFollowsHeights(t *testing.T) {
	c := newCanvas(t, 50, 300)
	c.Heights[10] = 30
	line := c.SurfacePolyline()
	require.Len(t, line, 50)
	assert.InDelta(t, 270, line[10].Y, 2.0001)
	assert.Equal(t, float32(25), c.HintPosition().X)
}
