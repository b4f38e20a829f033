package shading

import (
	"math/rand"

	"github.com/chewxy/math32"

	"christmas-tree/config"
	"christmas-tree/math"
	"christmas-tree/scene"
	"christmas-tree/tree"
)

// Engine writes the per-frame state of a generation in place.
type Engine struct {
	rng *rand.Rand
}

// NewEngine returns an engine whose snow jitter and recycling draw from rng.
func NewEngine(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

// Update advances every object of gen to simulation time t under cfg.
// Nothing is allocated; snow points move in place and mark their cloud
// dirty.
func (e *Engine) Update(gen *tree.Generation, cfg config.Config, t float32) {
	if gen == nil {
		return
	}
	total := len(gen.Ornaments)
	bloom := BloomGain(cfg.BloomIntensity)

	for _, obj := range gen.Objects {
		switch o := obj.(type) {
		case *tree.Foliage:
			o.Cloud.Uniforms = scene.PointUniforms{
				Time:         t,
				TwinkleSpeed: cfg.TwinkleSpeed,
				TwinkleSize:  cfg.TwinkleSize,
				Blur:         cfg.Blur,
				TwinkleBlur:  cfg.TwinkleBlur,
				Brightness:   1,
			}
		case *tree.Star:
			o.Material.Intensity = cfg.StarBrightness
			o.Material.Twinkle = StarTwinkle(t)
		case *tree.StarGlow:
			o.Material.Intensity = cfg.StarBrightness * bloom
			o.Material.Twinkle = StarGlowTwinkle(t)
		case *tree.Ornament:
			o.Material.Intensity = cfg.LetterBrightness
			o.Material.Flash = Flash(t, cfg.LetterFlowSpeed, o.Index, total)
			o.Material.Twinkle = FrameTwinkle(t, o.Index)
			if o.Solid() {
				rot := o.Rotation
				rot.Y += t*cfg.LetterSpinSpeed + o.SpinPhase
				o.Node.SetRotation(rot)
			}
		case *tree.OrnamentGlow:
			o.Material.Intensity = cfg.LetterBrightness * bloom
			o.Material.Flash = Flash(t, cfg.LetterFlowSpeed, o.Index, total)
		case *tree.Snow:
			o.Cloud.Uniforms.Time = t
			if cfg.SnowEnabled {
				FallSnow(o.Cloud, cfg, t, e.rng)
			}
		}
	}
}

// FallSnow moves every flake one tick: down by snowSpeed plus jitter,
// sideways by a slow wobble and the wind. Flakes below the floor restart
// at the ceiling at a random horizontal spot.
func FallSnow(cloud *scene.PointCloud, cfg config.Config, t float32, rng *rand.Rand) {
	for i := range cloud.Points {
		p := &cloud.Points[i].Position
		fi := float32(i)
		p.Y -= cfg.SnowSpeed + rng.Float32()*0.003
		p.X += math32.Sin(t*0.3+fi*0.1)*0.002 + cfg.WindDirection*0.005
		p.Z += math32.Cos(t*0.2+fi*0.05) * 0.002

		if p.Y < tree.SnowFloor {
			*p = math.Vec3{
				X: (rng.Float32() - 0.5) * 2 * tree.SnowHalfExtent,
				Y: tree.SnowCeiling,
				Z: (rng.Float32() - 0.5) * 2 * tree.SnowHalfExtent,
			}
		}
	}
	cloud.Dirty = true
}
