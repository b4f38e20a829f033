// Package tree builds one generation of the scene from a configuration:
// the foliage cloud, the star and its glow, the ornaments with their halos
// and the snow layer.
package tree

import (
	"math/rand"

	"github.com/chewxy/math32"

	"christmas-tree/config"
	"christmas-tree/core"
	"christmas-tree/math"
	"christmas-tree/scene"
)

// Palette is the foliage light colors: gold, red, cyan, pink, orange,
// yellow, white.
var Palette = [...]core.Color{
	core.ColorFromHex(0xffd700),
	core.ColorFromHex(0xff6b6b),
	core.ColorFromHex(0x4ecdc4),
	core.ColorFromHex(0xff69b4),
	core.ColorFromHex(0xffa500),
	core.ColorFromHex(0xffff00),
	core.ColorFromHex(0xffffff),
}

var (
	starGold = core.Color{R: 1, G: 0.85, B: 0.2, A: 1}
	glowGold = core.Color{R: 1, G: 0.9, B: 0.4, A: 1}
)

// Snow volume.
const (
	SnowHalfExtent = 12.5
	SnowFloor      = -5
	SnowCeiling    = 15
)

// TextureLoader resolves a media URL to a texture. It must never return
// nil; failed loads come back as a placeholder.
type TextureLoader func(url string) *scene.Texture

// Build creates a generation for cfg. cfg is sanitized first, so any
// malformed value degrades to a clamped or empty set.
func Build(cfg config.Config, rng *rand.Rand, load TextureLoader) *Generation {
	cfg = cfg.Sanitize()
	if load == nil {
		load = func(url string) *scene.Texture { return scene.NewPlaceholderTexture(url) }
	}
	g := &Generation{
		Config:   cfg,
		textures: map[string]*scene.Texture{},
	}
	g.Foliage = g.buildFoliage(cfg, rng)
	g.Star, g.StarGlow = g.buildStar(cfg)
	g.buildOrnaments(cfg, rng, load)
	if cfg.SnowEnabled {
		g.Snow = g.buildSnow(cfg, rng)
	}

	g.Objects = append(g.Objects, g.Foliage, g.Star, g.StarGlow)
	for i := range g.Ornaments {
		g.Objects = append(g.Objects, g.Ornaments[i], g.Glows[i])
	}
	if g.Snow != nil {
		g.Objects = append(g.Objects, g.Snow)
	}
	return g
}

func (g *Generation) buildFoliage(cfg config.Config, rng *rand.Rand) *Foliage {
	scale := cfg.TreeScale
	cloud := scene.NewPointCloud("Foliage", scene.PointsFoliage, cfg.ParticleCount)
	for i := 0; i < cfg.ParticleCount; i++ {
		y := (rng.Float32()*4.5 - 2) * scale
		ny := (y/scale + 2) / 4.5
		radius := FoliageRadius(ny, scale)
		s, c := math32.Sincos(rng.Float32() * 2 * math32.Pi)
		r := rng.Float32() * radius
		cloud.Points = append(cloud.Points, scene.Point{
			Position: math.Vec3{X: c * r, Y: y, Z: s * r},
			Color:    Palette[rng.Intn(len(Palette))],
			Size:     rng.Float32()*cfg.ParticleSize + cfg.ParticleSize*0.5,
			Phase:    rng.Float32() * 2 * math32.Pi,
		})
	}
	node := scene.NewNode("Foliage")
	node.Points = cloud
	g.clouds = append(g.clouds, cloud)
	return &Foliage{Node: node, Cloud: cloud}
}

// FoliageRadius is the cone radius at normalized height ny in [0,1].
func FoliageRadius(ny, scale float32) float32 {
	return ((1-ny)*1.8 + 0.08) * scale
}

// StarHeight is the star's y in the tree group.
func StarHeight(scale float32) float32 { return 2.6 * scale }

func (g *Generation) buildStar(cfg config.Config) (*Star, *StarGlow) {
	unit := cfg.StarSize * cfg.TreeScale
	outer := 0.3 * unit

	mesh := scene.CreateStar(outer, 0.12*unit, 0.08*unit, 0.02*unit)
	mat := scene.NewMaterial("Star", starGold)
	mat.Shader = scene.ShadeStar
	mat.Intensity = cfg.StarBrightness
	g.meshes = append(g.meshes, mesh)

	node := scene.NewNode("Star")
	node.Mesh = mesh
	node.Material = mat
	node.SetPosition(math.Vec3{Y: StarHeight(cfg.TreeScale)})
	node.SetRotation(math.Vec3{X: 0.1})

	glowMesh := scene.CreateQuad(outer*3, outer*3)
	glowMat := scene.NewGlowMaterial("StarGlow", glowGold)
	glowMat.Intensity = cfg.StarBrightness
	glowMat.GlowGain = 0.6
	g.meshes = append(g.meshes, glowMesh)

	glowNode := scene.NewNode("StarGlow")
	glowNode.Mesh = glowMesh
	glowNode.Material = glowMat
	glowNode.SetPosition(math.Vec3{Y: StarHeight(cfg.TreeScale), Z: -0.05})

	return &Star{Node: node, Material: mat}, &StarGlow{Node: glowNode, Material: glowMat}
}

func (g *Generation) buildOrnaments(cfg config.Config, rng *rand.Rand, load TextureLoader) {
	scale := cfg.TreeScale
	frameSize := cfg.LetterSize * scale * 1.2
	positions := PlaceOrnaments(rng, cfg.LetterCount, scale, cfg.LetterSize*scale*SeparationFactor)
	if len(positions) == 0 {
		return
	}

	frameMesh := scene.CreateQuad(frameSize, frameSize)
	haloMesh := scene.CreateQuad(frameSize*3.5, frameSize*3.5)
	g.meshes = append(g.meshes, frameMesh, haloMesh)
	solids := map[Shape]*scene.Mesh{}

	for i, p := range positions {
		rot := math.Vec3{
			X: (rng.Float32() - 0.5) * 0.6,
			Y: math32.Atan2(p.Z, p.X) + math32.Pi,
			Z: (rng.Float32() - 0.5) * 0.4,
		}
		o := &Ornament{
			Index:    i,
			URL:      cfg.ImageFor(i),
			Shape:    ShapeFrame,
			Rotation: rot,
		}

		node := scene.NewNode("Ornament")
		node.SetPosition(p)
		node.SetRotation(rot)

		if cfg.OrnamentStyle == config.StyleShapes {
			o.Shape = solidShapes[i%len(solidShapes)]
			o.SpinPhase = rng.Float32() * 2 * math32.Pi
			mesh, ok := solids[o.Shape]
			if !ok {
				mesh = solidMesh(o.Shape, frameSize, cfg.LetterBevel)
				solids[o.Shape] = mesh
				g.meshes = append(g.meshes, mesh)
			}
			node.Mesh = mesh
			o.Material = scene.NewMaterial("Ornament", Palette[i%len(Palette)])
		} else {
			node.Mesh = frameMesh
			o.Material = scene.NewFrameMaterial("Ornament", g.texture(o.URL, load))
		}
		o.Material.Intensity = cfg.LetterBrightness
		node.Material = o.Material
		o.Node = node

		haloMat := scene.NewGlowMaterial("OrnamentGlow", glowGold)
		haloMat.Intensity = cfg.LetterBrightness
		haloMat.GlowFalloff = 5
		halo := scene.NewNode("OrnamentGlow")
		halo.Mesh = haloMesh
		halo.Material = haloMat
		halo.SetRotation(rot)
		back := halo.Transform.GetForward().Mul(-0.01)
		halo.SetPosition(p.Add(back))

		g.Ornaments = append(g.Ornaments, o)
		g.Glows = append(g.Glows, &OrnamentGlow{Node: halo, Material: haloMat, Index: i})
	}
}

// texture returns the shared texture for url, loading it at most once per
// generation. An empty url gets a placeholder.
func (g *Generation) texture(url string, load TextureLoader) *scene.Texture {
	if tex, ok := g.textures[url]; ok {
		return tex
	}
	var tex *scene.Texture
	if url == "" {
		tex = scene.NewPlaceholderTexture("empty")
	} else {
		tex = load(url)
	}
	g.textures[url] = tex
	return tex
}

func solidMesh(shape Shape, size, bevel float32) *scene.Mesh {
	switch shape {
	case ShapeSphere:
		return scene.CreateSphere(size*0.5, 24, 16)
	case ShapeRoundedBox:
		return scene.CreateRoundedBox(size, bevel, 24, 16)
	case ShapeCylinder:
		return scene.CreateCylinder(size*0.4, size, 20)
	case ShapeCone:
		return scene.CreateCone(size*0.45, size, 20)
	case ShapeOctahedron:
		return scene.CreateOctahedron(size * 0.6)
	case ShapeTorus:
		return scene.CreateTorus(size*0.35, size*0.12, 24, 12)
	default:
		return scene.CreateStar(size*0.6, size*0.25, size*0.2, size*0.04*bevel)
	}
}

func (g *Generation) buildSnow(cfg config.Config, rng *rand.Rand) *Snow {
	cloud := scene.NewPointCloud("Snow", scene.PointsSnow, cfg.SnowCount)
	for i := 0; i < cfg.SnowCount; i++ {
		cloud.Points = append(cloud.Points, scene.Point{
			Position: math.Vec3{
				X: (rng.Float32() - 0.5) * 2 * SnowHalfExtent,
				Y: rng.Float32()*(SnowCeiling-SnowFloor) + SnowFloor,
				Z: (rng.Float32() - 0.5) * 2 * SnowHalfExtent,
			},
			Color: core.ColorWhite,
			Size:  rng.Float32()*cfg.SnowSize + 0.3,
		})
	}
	node := scene.NewNode("Snow")
	node.Points = cloud
	g.clouds = append(g.clouds, cloud)
	return &Snow{Node: node, Cloud: cloud}
}
