// Package shading holds the time-driven look of the scene: the functions
// the shaders evaluate, mirrored on the CPU, and the per-frame engine that
// writes them into a generation's materials and point clouds.
package shading

import (
	"github.com/chewxy/math32"

	"christmas-tree/math"
)

// MaxFrameDelta caps a single clock step so a stalled frame (window drag,
// breakpoint) does not jump the animation.
const MaxFrameDelta = 0.25

// Clock accumulates simulation time in seconds.
type Clock struct {
	elapsed float32
}

// Advance adds dt, clamped to [0, MaxFrameDelta], and returns the new time.
func (c *Clock) Advance(dt float32) float32 {
	c.elapsed += math.Clamp(dt, 0, MaxFrameDelta)
	return c.elapsed
}

// Elapsed returns the accumulated time.
func (c *Clock) Elapsed() float32 { return c.elapsed }

// Reset sets the clock back to zero.
func (c *Clock) Reset() { c.elapsed = 0 }

// Twinkle is the per-light oscillation in [0,1].
func Twinkle(t, speed, phase float32) float32 {
	return math32.Sin(t*speed+phase*10)*0.5 + 0.5
}

// TwinkleScale is the point-size multiplier for a twinkle value.
func TwinkleScale(twinkle, twinkleSize float32) float32 {
	return 1 + twinkle*twinkleSize
}

// CombinedBlur is the edge softness of a light: base blur plus the twinkle
// contribution, clamped to [0,1].
func CombinedBlur(blur, twinkle, twinkleBlur float32) float32 {
	return math.Clamp(blur+twinkle*twinkleBlur, 0, 1)
}

// FoliageAlpha is the sprite coverage at dist from the sprite center
// (0..0.5). A blur under 0.01 gives a hard disc.
func FoliageAlpha(dist, blur float32) float32 {
	if dist > 0.5 {
		return 0
	}
	if blur < 0.01 {
		if dist < 0.4 {
			return 1
		}
		return 0
	}
	inner := 0.4 * (1 - blur)
	return 1 - math.Smoothstep(inner, 0.5, dist)
}

// FoliageGlow is the soft halo added on blurred lights.
func FoliageGlow(dist, blur float32) float32 {
	if blur <= 0.01 {
		return 0
	}
	return math32.Exp(-dist*(5-blur*3)) * blur
}

// FoliageBrightness brightens a light as it twinkles.
func FoliageBrightness(twinkle float32) float32 {
	return 1 + twinkle*0.3
}

// StarTwinkle is the star body's brightness wobble.
func StarTwinkle(t float32) float32 {
	return (math32.Sin(t*4)*0.3 + 0.7) * (math32.Sin(t*7+1.5)*0.2 + 0.8)
}

// StarGlowTwinkle is the star halo's pulse.
func StarGlowTwinkle(t float32) float32 {
	return math32.Sin(t*5)*0.3 + 0.7
}

// FrameTwinkle is the gentle shimmer of ornament index i's frame border.
func FrameTwinkle(t float32, i int) float32 {
	return math32.Sin(t*3+float32(i))*0.15 + 0.85
}

// CyclePosition is where the sequential flash is at time t.
func CyclePosition(t, flowSpeed float32, total int) float32 {
	return math.Mod(t*flowSpeed, float32(total))
}

// CircularDistance is the shortest distance from index i to position c on
// a ring of total slots.
func CircularDistance(i int, c float32, total int) float32 {
	d := math32.Abs(float32(i) - c)
	return min(d, float32(total)-d)
}

// MaxFlash is the flash intensity at distance zero.
const MaxFlash = 4

// FlashIntensity maps a circular distance to a highlight in [0, MaxFlash].
func FlashIntensity(d float32) float32 {
	return math.Clamp(math32.Exp(-d*d*0.15)*MaxFlash, 0, MaxFlash)
}

// Flash is the highlight on ornament i of total at time t.
func Flash(t, flowSpeed float32, i, total int) float32 {
	if total <= 0 {
		return 0
	}
	return FlashIntensity(CircularDistance(i, CyclePosition(t, flowSpeed, total), total))
}

// BloomGain scales additive glows by the bloom setting; the default 0.5
// leaves them unchanged.
func BloomGain(bloom float32) float32 {
	return math.Clamp(bloom, 0, 2) * 2
}
