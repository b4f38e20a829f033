package core

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"

	"christmas-tree/math"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
	ColorGold  = Color{1, 0.84, 0, 1}
)

// ParseHexColor parses "#rrggbb" (or "#rgb") into an opaque Color.
func ParseHexColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: 1}, nil
}

// ColorFromHex unpacks a 0xRRGGBB literal.
func ColorFromHex(hex uint32) Color {
	return Color{
		R: float32((hex>>16)&0xff) / 255,
		G: float32((hex>>8)&0xff) / 255,
		B: float32(hex&0xff) / 255,
		A: 1,
	}
}

// RGBA8 returns the color as 8-bit channels.
func (c Color) RGBA8() (r, g, b, a uint8) {
	to8 := func(v float32) uint8 {
		return uint8(math.Clamp(v, 0, 1)*255 + 0.5)
	}
	return to8(c.R), to8(c.G), to8(c.B), to8(c.A)
}

type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
	Color    Color
}

// Transform holds an XYZ Euler rotation in radians.
type Transform struct {
	Position math.Vec3
	Rotation math.Vec3
	Scale    math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: math.Vec3Zero,
		Scale:    math.Vec3One,
	}
}

func (t Transform) GetMatrix() math.Mat4 {
	return math.Mat4TRS(t.Position, t.Rotation, t.Scale)
}

// GetForward returns the local +Z axis in parent space.
func (t Transform) GetForward() math.Vec3 {
	return math.Mat4Rotation(t.Rotation).MulDir(math.Vec3Front)
}

type Rect struct {
	X, Y, Width, Height float32
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}
