package scene

import "christmas-tree/core"

// BlendMode controls how a surface composites with what is already drawn.
type BlendMode int

const (
	BlendOpaque   BlendMode = iota
	BlendAlpha              // standard alpha blend
	BlendAdditive           // additive blend for glows and lights
)

// ShaderKind selects the program the backend draws a surface with.
type ShaderKind int

const (
	ShadeLit   ShaderKind = iota // diffuse + emissive solid
	ShadeFrame                   // textured photo inside a gold border
	ShadeGlow                    // radial falloff on a quad
	ShadeStar                    // gold with edge glow and specular sparkle
)

// Material describes surface appearance for a mesh.
type Material struct {
	Name   string
	Shader ShaderKind
	Albedo core.Color
	Blend  BlendMode
	// DepthWrite is false for glows so they never occlude.
	DepthWrite bool

	// Emissive is added on top of the lit color, scaled by Intensity.
	Emissive  float32
	Intensity float32
	// Flash is the sequential highlight in [0,4] for ornaments and halos.
	Flash float32
	// Twinkle multiplies the base color (star body, frame border, glow).
	Twinkle float32

	// Glow falloff: alpha = exp(-dist*GlowFalloff) * GlowGain.
	GlowFalloff float32
	GlowGain    float32

	// Optional albedo texture; uploaded lazily by the renderer.
	AlbedoTexture *Texture
}

// DefaultMaterial returns a plain opaque white material.
func DefaultMaterial() *Material {
	return NewMaterial("Default", core.ColorWhite)
}

// NewMaterial creates an opaque lit material with the given albedo color.
func NewMaterial(name string, albedo core.Color) *Material {
	return &Material{
		Name:       name,
		Shader:     ShadeLit,
		Albedo:     albedo,
		Blend:      BlendOpaque,
		DepthWrite: true,
		Intensity:  1,
		Twinkle:    1,
	}
}

// NewFrameMaterial creates a photo-frame material around tex.
func NewFrameMaterial(name string, tex *Texture) *Material {
	m := NewMaterial(name, core.ColorGold)
	m.Shader = ShadeFrame
	m.AlbedoTexture = tex
	return m
}

// NewGlowMaterial creates an additive glow that does not write depth.
func NewGlowMaterial(name string, albedo core.Color) *Material {
	return &Material{
		Name:        name,
		Shader:      ShadeGlow,
		Albedo:      albedo,
		Blend:       BlendAdditive,
		Intensity:   1,
		Twinkle:     1,
		Flash:       1,
		GlowFalloff: 4,
		GlowGain:    1,
	}
}
