package tree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"christmas-tree/config"
	"christmas-tree/scene"
)

type recordingReleaser struct {
	meshes   map[*scene.Mesh]int
	textures map[*scene.Texture]int
	clouds   map[*scene.PointCloud]int
}

func newRecordingReleaser() *recordingReleaser {
	return &recordingReleaser{
		meshes:   map[*scene.Mesh]int{},
		textures: map[*scene.Texture]int{},
		clouds:   map[*scene.PointCloud]int{},
	}
}

func (r *recordingReleaser) ReleaseMesh(m *scene.Mesh)         { r.meshes[m]++ }
func (r *recordingReleaser) ReleaseTexture(t *scene.Texture)   { r.textures[t]++ }
func (r *recordingReleaser) ReleasePoints(c *scene.PointCloud) { r.clouds[c]++ }

func build(t *testing.T, cfg config.Config) *Generation {
	t.Helper()
	return Build(cfg, rand.New(rand.NewSource(7)), nil)
}

func TestFoliageCountAndConeBound(t *testing.T) {
	for _, scale := range []float32{0.5, 1, 2} {
		cfg := config.Default()
		cfg.ParticleCount = 2500
		cfg.TreeScale = scale
		g := build(t, cfg)

		require.Len(t, g.Foliage.Cloud.Points, 2500)
		for _, p := range g.Foliage.Cloud.Points {
			ny := (p.Position.Y/scale + 2) / 4.5
			assert.GreaterOrEqual(t, ny, float32(0))
			assert.LessOrEqual(t, ny, float32(1))
			r := p.Position.X*p.Position.X + p.Position.Z*p.Position.Z
			bound := FoliageRadius(ny, scale)
			assert.LessOrEqual(t, r, bound*bound*1.0001)
			assert.GreaterOrEqual(t, p.Size, cfg.ParticleSize*0.5)
			assert.Less(t, p.Size, cfg.ParticleSize*1.5)
			assert.Contains(t, Palette[:], p.Color)
		}
	}
}

func TestPlaceOrnamentsKeepsSeparationWhenRoomy(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	minDist := float32(0.1 * 2.8)
	pos := PlaceOrnaments(rng, 15, 1, minDist)
	require.Len(t, pos, 15)
	for i := range pos {
		for j := i + 1; j < len(pos); j++ {
			assert.GreaterOrEqual(t, pos[i].Distance(pos[j]), minDist)
		}
	}
}

func TestPlaceOrnamentsNeverReturnsFewer(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	// Impossible separation: every ornament after the first exhausts its
	// attempts and keeps its last sample.
	pos := PlaceOrnaments(rng, 40, 1, 100)
	assert.Len(t, pos, 40)

	assert.Empty(t, PlaceOrnaments(rng, 0, 1, 0.1))
	assert.Empty(t, PlaceOrnaments(rng, -3, 1, 0.1))
}

func TestEndToEndGeneration(t *testing.T) {
	cfg := config.Default()
	cfg.ParticleCount = 3000
	cfg.LetterCount = 15
	cfg.SnowEnabled = true

	g := build(t, cfg)
	assert.Len(t, g.Foliage.Cloud.Points, 3000)
	assert.NotNil(t, g.Star)
	assert.NotNil(t, g.StarGlow)
	assert.Len(t, g.Ornaments, 15)
	assert.Len(t, g.Glows, 15)
	require.NotNil(t, g.Snow)
	assert.Len(t, g.Snow.Cloud.Points, cfg.SnowCount)

	cfg.SnowEnabled = false
	g2 := build(t, cfg)
	assert.Nil(t, g2.Snow)
	assert.Len(t, g2.Ornaments, 15)
	for _, obj := range g2.Objects {
		_, isSnow := obj.(*Snow)
		assert.False(t, isSnow)
	}
}

func TestOrnamentURLsCycleImages(t *testing.T) {
	cfg := config.Default()
	cfg.LetterCount = 12
	cfg.OrnamentImages = []string{"/a.jpg", "/b.jpg", "/c.mp4"}

	var loaded []string
	g := Build(cfg, rand.New(rand.NewSource(3)), func(url string) *scene.Texture {
		loaded = append(loaded, url)
		return scene.NewPlaceholderTexture(url)
	})
	for i, o := range g.Ornaments {
		assert.Equal(t, i, o.Index)
		assert.Equal(t, cfg.OrnamentImages[i%3], o.URL)
		assert.Equal(t, ShapeFrame, o.Shape)
		assert.Same(t, g.Textures()[o.URL], o.Material.AlbedoTexture)
	}
	assert.ElementsMatch(t, cfg.OrnamentImages, loaded, "each url is loaded once")
}

func TestNoImagesGivesEmptyURLs(t *testing.T) {
	cfg := config.Default()
	cfg.OrnamentImages = nil
	g := build(t, cfg)
	require.NotEmpty(t, g.Ornaments)
	for _, o := range g.Ornaments {
		assert.Empty(t, o.URL)
		assert.NotNil(t, o.Material.AlbedoTexture)
	}
}

func TestShapesStyleCyclesSolids(t *testing.T) {
	cfg := config.Default()
	cfg.OrnamentStyle = config.StyleShapes
	cfg.LetterCount = 14
	g := build(t, cfg)

	require.Len(t, g.Ornaments, 14)
	for i, o := range g.Ornaments {
		assert.Equal(t, solidShapes[i%7], o.Shape)
		assert.True(t, o.Solid())
		assert.NotNil(t, o.HitMesh())
	}
	assert.Same(t, g.Ornaments[0].Node.Mesh, g.Ornaments[7].Node.Mesh)
}

func TestMalformedConfigDegrades(t *testing.T) {
	cfg := config.Default()
	cfg.LetterCount = -4
	cfg.ParticleCount = 0
	cfg.TreeScale = 0

	var g *Generation
	require.NotPanics(t, func() { g = build(t, cfg) })
	assert.Empty(t, g.Ornaments)
	assert.Len(t, g.Foliage.Cloud.Points, 1000)
	assert.Equal(t, float32(0.5), g.Config.TreeScale)
}

func TestAttachPutsSnowOutsideGroup(t *testing.T) {
	s := scene.NewScene()
	g := build(t, config.Default())
	g.Attach(s)

	assert.Same(t, s.Root, g.Snow.Node.Parent)
	assert.Same(t, s.Group, g.Foliage.Node.Parent)
	assert.Same(t, s.Group, g.Ornaments[0].Node.Parent)

	g.Detach()
	assert.Empty(t, s.Group.Children)
	assert.Len(t, s.Root.Children, 1) // just the group
}

func TestReleaseFreesEverythingOnce(t *testing.T) {
	s := scene.NewScene()
	g := build(t, config.Default())
	g.Attach(s)

	meshes := g.Meshes()
	textures := len(g.Textures())
	r := newRecordingReleaser()
	g.Release(r)
	g.Release(r)

	assert.True(t, g.Released())
	assert.Len(t, r.meshes, len(meshes))
	for _, n := range r.meshes {
		assert.Equal(t, 1, n)
	}
	assert.Len(t, r.textures, textures)
	assert.Len(t, r.clouds, 2)
	assert.Empty(t, s.Group.Children)
}

func TestHaloSitsBehindOrnament(t *testing.T) {
	g := build(t, config.Default())
	for i, o := range g.Ornaments {
		halo := g.Glows[i]
		assert.Equal(t, o.Index, halo.Index)
		forward := o.Node.Transform.GetForward()
		offset := halo.Node.Transform.Position.Sub(o.Node.Transform.Position)
		assert.InDelta(t, -0.01, offset.Dot(forward), 1e-5)
	}
}

func TestOrnamentByNode(t *testing.T) {
	g := build(t, config.Default())
	o, ok := g.OrnamentByNode(g.Ornaments[3].Node)
	require.True(t, ok)
	assert.Equal(t, 3, o.Index)

	_, ok = g.OrnamentByNode(g.Glows[3].Node)
	assert.False(t, ok)
}
