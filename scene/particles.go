package scene

import (
	"christmas-tree/core"
	"christmas-tree/math"
)

// PointStyle selects the sprite shader for a point cloud.
type PointStyle int

const (
	PointsFoliage PointStyle = iota // twinkling round lights, additive
	PointsSnow                      // soft white flakes
)

// Point is a single sprite: world-space size in scene units.
type Point struct {
	Position math.Vec3
	Color    core.Color
	Size     float32
	Phase    float32 // random offset in [0, 2π) for twinkle
}

// PointUniforms are the per-frame values the sprite shader reads.
// They are written in place every frame; the point buffer itself is only
// re-uploaded when Dirty is set.
type PointUniforms struct {
	Time         float32
	TwinkleSpeed float32
	TwinkleSize  float32
	Blur         float32
	TwinkleBlur  float32
	Brightness   float32
}

// PointCloud is a CPU-side sprite set rendered as GL points.
type PointCloud struct {
	Name     string
	Style    PointStyle
	Points   []Point
	Uniforms PointUniforms

	// Dirty marks positions changed since the last upload (snow moves
	// every tick; foliage never does).
	Dirty bool

	// GPUData is set by the renderer backend.
	GPUData interface{}
}

// NewPointCloud allocates an empty cloud with capacity for n points.
func NewPointCloud(name string, style PointStyle, n int) *PointCloud {
	return &PointCloud{
		Name:     name,
		Style:    style,
		Points:   make([]Point, 0, n),
		Uniforms: PointUniforms{Brightness: 1},
		Dirty:    true,
	}
}

// Count returns the number of points.
func (c *PointCloud) Count() int { return len(c.Points) }

// Bounds returns the AABB of all points; ok is false for an empty cloud.
func (c *PointCloud) Bounds() (box AABB, ok bool) {
	if len(c.Points) == 0 {
		return AABB{}, false
	}
	box.Min, box.Max = c.Points[0].Position, c.Points[0].Position
	for _, p := range c.Points[1:] {
		box.Min = math.Vec3{X: min(box.Min.X, p.Position.X), Y: min(box.Min.Y, p.Position.Y), Z: min(box.Min.Z, p.Position.Z)}
		box.Max = math.Vec3{X: max(box.Max.X, p.Position.X), Y: max(box.Max.Y, p.Position.Y), Z: max(box.Max.Z, p.Position.Z)}
	}
	return box, true
}
