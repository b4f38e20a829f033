package shading

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"christmas-tree/config"
	"christmas-tree/math"
	"christmas-tree/scene"
	"christmas-tree/tree"
)

func TestClockCapsDelta(t *testing.T) {
	var c Clock
	c.Advance(0.016)
	c.Advance(3)
	c.Advance(-1)
	assert.InDelta(t, 0.016+MaxFrameDelta, c.Elapsed(), 1e-6)
	c.Reset()
	assert.Zero(t, c.Elapsed())
}

func TestTwinkleRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		tw := Twinkle(float32(i)*0.37, 4, float32(i)*0.11)
		assert.GreaterOrEqual(t, tw, float32(0))
		assert.LessOrEqual(t, tw, float32(1))
	}
}

func TestFoliageAlpha(t *testing.T) {
	// Hard disc when there is no blur.
	assert.Equal(t, float32(1), FoliageAlpha(0.39, 0))
	assert.Equal(t, float32(0), FoliageAlpha(0.41, 0))
	assert.Equal(t, float32(0), FoliageAlpha(0.6, 0.5))

	// Soft edge: monotone falloff toward the rim.
	prev := float32(2)
	for d := float32(0); d <= 0.5; d += 0.05 {
		a := FoliageAlpha(d, 0.8)
		assert.LessOrEqual(t, a, prev)
		prev = a
	}
	assert.InDelta(t, 0, FoliageAlpha(0.5, 0.8), 1e-6)

	assert.Zero(t, FoliageGlow(0.1, 0))
	assert.Greater(t, FoliageGlow(0.1, 0.5), float32(0))
	assert.Equal(t, float32(1), CombinedBlur(0.9, 1, 0.5))
}

func TestFlashCircularSymmetry(t *testing.T) {
	const total = 10
	const flow = 2
	// cycle position 9.5 at t = 4.75
	tm := float32(4.75)
	assert.InDelta(t, 9.5, CyclePosition(tm, flow, total), 1e-5)
	assert.InDelta(t, Flash(tm, flow, 0, total), Flash(tm, flow, 9, total), 1e-5)

	assert.InDelta(t, 0.5, CircularDistance(0, 9.5, total), 1e-6)
	assert.InDelta(t, 0.5, CircularDistance(9, 9.5, total), 1e-6)
}

func TestFlashIntensityMonotone(t *testing.T) {
	assert.Equal(t, float32(MaxFlash), FlashIntensity(0))
	prev := FlashIntensity(0)
	for d := float32(0.25); d <= 5; d += 0.25 {
		f := FlashIntensity(d)
		assert.Less(t, f, prev)
		assert.GreaterOrEqual(t, f, float32(0))
		prev = f
	}
	assert.Zero(t, Flash(1, 2, 0, 0))
}

func TestFlashDependsOnlyOnCircularDistance(t *testing.T) {
	const total = 7
	for _, tm := range []float32{0, 0.3, 1.7, 12.25} {
		c := CyclePosition(tm, 3, total)
		for i := 0; i < total; i++ {
			want := FlashIntensity(CircularDistance(i, c, total))
			assert.Equal(t, want, Flash(tm, 3, i, total))
		}
	}
}

func TestEngineUpdateWritesUniforms(t *testing.T) {
	cfg := config.Default()
	cfg.OrnamentStyle = config.StyleShapes
	cfg.LetterSpinSpeed = 2
	gen := tree.Build(cfg, rand.New(rand.NewSource(5)), nil)
	e := NewEngine(rand.New(rand.NewSource(6)))

	e.Update(gen, gen.Config, 1.5)

	u := gen.Foliage.Cloud.Uniforms
	assert.Equal(t, float32(1.5), u.Time)
	assert.Equal(t, cfg.TwinkleSpeed, u.TwinkleSpeed)
	assert.Equal(t, StarTwinkle(1.5), gen.Star.Material.Twinkle)
	assert.Equal(t, StarGlowTwinkle(1.5), gen.StarGlow.Material.Twinkle)

	total := len(gen.Ornaments)
	for i, o := range gen.Ornaments {
		want := Flash(1.5, cfg.LetterFlowSpeed, o.Index, total)
		assert.Equal(t, want, o.Material.Flash)
		assert.Equal(t, want, gen.Glows[i].Material.Flash)
		assert.InDelta(t, o.Rotation.Y+1.5*2+o.SpinPhase, o.Node.Transform.Rotation.Y, 1e-5)
	}
}

func TestFrameOrnamentsDoNotSpin(t *testing.T) {
	gen := tree.Build(config.Default(), rand.New(rand.NewSource(5)), nil)
	NewEngine(rand.New(rand.NewSource(1))).Update(gen, gen.Config, 10)
	for _, o := range gen.Ornaments {
		assert.Equal(t, o.Rotation, o.Node.Transform.Rotation)
	}
}

func TestUpdateDoesNotReallocate(t *testing.T) {
	gen := tree.Build(config.Default(), rand.New(rand.NewSource(5)), nil)
	e := NewEngine(rand.New(rand.NewSource(1)))
	before := &gen.Snow.Cloud.Points[0]
	objects := len(gen.Objects)
	e.Update(gen, gen.Config, 0.1)
	assert.Same(t, before, &gen.Snow.Cloud.Points[0])
	assert.Len(t, gen.Objects, objects)
}

func TestFallSnowMovesAndRecycles(t *testing.T) {
	cfg := config.Default()
	cfg.SnowSpeed = 0.02
	cfg.WindDirection = 1
	cloud := scene.NewPointCloud("snow", scene.PointsSnow, 2)
	cloud.Points = append(cloud.Points,
		scene.Point{Position: math.Vec3{Y: 3}},
		scene.Point{Position: math.Vec3{Y: tree.SnowFloor + 0.001}},
	)
	cloud.Dirty = false

	FallSnow(cloud, cfg, 0, rand.New(rand.NewSource(1)))

	first := cloud.Points[0].Position
	assert.Less(t, first.Y, float32(3-0.02+1e-6))
	assert.Greater(t, first.Y, float32(3-0.023-1e-6))
	// wind pushes +x: sin(0)*0.002 + 0.005
	assert.InDelta(t, 0.005, first.X, 1e-6)
	assert.InDelta(t, 0.002, first.Z, 1e-6)

	second := cloud.Points[1].Position
	assert.Equal(t, float32(tree.SnowCeiling), second.Y)
	assert.LessOrEqual(t, second.X, float32(tree.SnowHalfExtent))
	assert.GreaterOrEqual(t, second.X, float32(-tree.SnowHalfExtent))
	assert.True(t, cloud.Dirty)
}

func TestFallSnowStepsPerTick(t *testing.T) {
	cfg := config.Default()
	cfg.SnowSpeed = 0.02
	cloud := scene.NewPointCloud("snow", scene.PointsSnow, 1)
	cloud.Points = append(cloud.Points, scene.Point{Position: math.Vec3{Y: 5}})
	rng := rand.New(rand.NewSource(3))

	// The step ignores how much time passed between ticks.
	for _, now := range []float32{0, 0.016, 2.5} {
		before := cloud.Points[0].Position.Y
		FallSnow(cloud, cfg, now, rng)
		drop := before - cloud.Points[0].Position.Y
		assert.GreaterOrEqual(t, drop, float32(0.02-1e-6))
		assert.LessOrEqual(t, drop, float32(0.023+1e-6))
	}
}

func TestSnowFrozenWhenDisabled(t *testing.T) {
	cfg := config.Default()
	gen := tree.Build(cfg, rand.New(rand.NewSource(5)), nil)
	require.NotNil(t, gen.Snow)
	before := gen.Snow.Cloud.Points[0].Position

	cfg.SnowEnabled = false
	NewEngine(rand.New(rand.NewSource(1))).Update(gen, cfg, 1)
	assert.Equal(t, before, gen.Snow.Cloud.Points[0].Position)
}

func TestBloomGainDefaultIsNeutral(t *testing.T) {
	assert.Equal(t, float32(1), BloomGain(config.Default().BloomIntensity))
	assert.Zero(t, BloomGain(-1))
	assert.Equal(t, float32(4), BloomGain(9))
}
