package scene

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"christmas-tree/core"
	"christmas-tree/math"
)

const eps = 1e-4

func TestCreateStarCenteredWithOutwardNormals(t *testing.T) {
	m := CreateStar(0.3, 0.12, 0.08, 0.02)
	require.NotEmpty(t, m.Vertices)
	require.Zero(t, len(m.Indices)%3)

	c := m.LocalAABB.Center()
	assert.InDelta(t, 0, c.X, eps)
	assert.InDelta(t, 0, c.Y, eps)
	assert.InDelta(t, 0, c.Z, eps)

	// Total depth is the extrusion plus a bevel on each side.
	assert.InDelta(t, 0.12, m.LocalAABB.Max.Z-m.LocalAABB.Min.Z, eps)

	for i := 0; i < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]]
		b := m.Vertices[m.Indices[i+1]]
		d := m.Vertices[m.Indices[i+2]]
		face := b.Position.Sub(a.Position).Cross(d.Position.Sub(a.Position))
		if face.LengthSqr() < 1e-12 {
			continue
		}
		assert.GreaterOrEqual(t, face.Dot(a.Normal), float32(0), "triangle %d winds against its normal", i/3)
	}
}

func TestStarOutlineAlternatesRadius(t *testing.T) {
	pts := StarOutline(1, 0.4, 5)
	require.Len(t, pts, 10)
	for i, p := range pts {
		want := float32(1)
		if i%2 == 1 {
			want = 0.4
		}
		assert.InDelta(t, want, p.Length(), eps)
	}
	assert.InDelta(t, 0, pts[0].X, eps)
	assert.InDelta(t, -1, pts[0].Y, eps)
}

func TestPrimitivesProduceGeometry(t *testing.T) {
	meshes := []*Mesh{
		CreateQuad(1, 2),
		CreateSphere(0.5, 16, 8),
		CreateCylinder(0.5, 1, 12),
		CreateCone(0.5, 1, 12),
		CreateTorus(0.5, 0.1, 16, 8),
		CreateOctahedron(0.5),
		CreateRoundedBox(1, 0.5, 16, 8),
	}
	for _, m := range meshes {
		t.Run(m.Name, func(t *testing.T) {
			assert.NotEmpty(t, m.Vertices)
			assert.Positive(t, m.TriangleCount())
			for _, idx := range m.Indices {
				assert.Less(t, int(idx), len(m.Vertices))
			}
			for _, v := range m.Vertices {
				assert.InDelta(t, 1, v.Normal.Length(), 1e-3)
			}
		})
	}
}

func TestCreateQuadExtents(t *testing.T) {
	m := CreateQuad(2, 4)
	assert.Equal(t, math.Vec3{X: -1, Y: -2}, m.LocalAABB.Min)
	assert.Equal(t, math.Vec3{X: 1, Y: 2}, m.LocalAABB.Max)
	assert.Equal(t, 2, m.TriangleCount())
}

func TestNodeWorldMatrixFollowsParent(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	parent.AddChild(child)

	child.SetPosition(math.Vec3{X: 1})
	parent.SetRotation(math.Vec3{Y: float32(stdPi / 2)})

	p := child.GetWorldMatrix().MulVec3(math.Vec3Zero)
	assert.InDelta(t, 0, p.X, eps)
	assert.InDelta(t, -1, p.Z, eps)

	parent.SetPosition(math.Vec3{Y: 2})
	p = child.GetWorldMatrix().MulVec3(math.Vec3Zero)
	assert.InDelta(t, 2, p.Y, eps)
}

const stdPi = 3.141592653589793

func TestVisibleNodesSkipsHiddenSubtree(t *testing.T) {
	s := NewScene()
	shown := NewNode("shown")
	shown.Mesh = CreateQuad(1, 1)
	hidden := NewNode("hidden")
	hidden.Visible = false
	inner := NewNode("inner")
	inner.Points = NewPointCloud("snow", PointsSnow, 0)
	hidden.AddChild(inner)
	s.Group.AddChild(shown)
	s.Root.AddChild(hidden)

	nodes := s.GetVisibleNodes()
	require.Len(t, nodes, 1)
	assert.Same(t, shown, nodes[0])
}

func TestSurfaceMaterialOverride(t *testing.T) {
	n := NewNode("n")
	assert.Equal(t, "Default", n.SurfaceMaterial().Name)

	n.Mesh = CreateQuad(1, 1)
	n.Mesh.Material = NewMaterial("mesh", core.ColorWhite)
	assert.Equal(t, "mesh", n.SurfaceMaterial().Name)

	n.Material = NewGlowMaterial("node", core.ColorWhite)
	assert.Equal(t, "node", n.SurfaceMaterial().Name)
	assert.False(t, n.SurfaceMaterial().DepthWrite)
}

func TestCameraViewProjectionMapsTargetToCenter(t *testing.T) {
	c := NewCamera(1.0471976, 1, 0.1, 1000)
	c.LookAt(math.Vec3{Y: 0.3, Z: 6}, math.Vec3{Y: 0.3})

	clip := c.GetViewProjectionMatrix().MulVec(math.Vec3{Y: 0.3}.ToVec4(1))
	ndc := clip.ToVec3DivW()
	assert.InDelta(t, 0, ndc.X, eps)
	assert.InDelta(t, 0, ndc.Y, eps)
	assert.Greater(t, clip.W, float32(0))
}

func TestPointCloudBounds(t *testing.T) {
	c := NewPointCloud("p", PointsFoliage, 2)
	_, ok := c.Bounds()
	assert.False(t, ok)

	c.Points = append(c.Points,
		Point{Position: math.Vec3{X: -1, Y: 2, Z: 3}},
		Point{Position: math.Vec3{X: 4, Y: -5, Z: 0}},
	)
	box, ok := c.Bounds()
	require.True(t, ok)
	assert.Equal(t, math.Vec3{X: -1, Y: -5, Z: 0}, box.Min)
	assert.Equal(t, math.Vec3{X: 4, Y: 2, Z: 3}, box.Max)
}

func TestDecodeTexture(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	tex, err := DecodeTexture("t.png", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 3, tex.Width)
	assert.Equal(t, 2, tex.Height)
	i := (1*3 + 1) * 4
	assert.Equal(t, []byte{10, 20, 30, 255}, tex.Pixels[i:i+4])
}

func TestDecodeTextureRejectsVideo(t *testing.T) {
	// ftyp box header of an mp4 file
	mp4 := []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2', 0, 0, 0, 0, 'm', 'p', '4', '2', 'i', 's', 'o', 'm'}
	_, err := DecodeTexture("clip.mp4", mp4)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestPlaceholderTexture(t *testing.T) {
	tex := NewPlaceholderTexture("missing")
	assert.Equal(t, tex.Width*tex.Height*4, len(tex.Pixels))
}
