package scene

import (
	"github.com/chewxy/math32"

	"christmas-tree/core"
	"christmas-tree/math"
)

// builder accumulates vertices and indices for procedural meshes.
type builder struct {
	vertices []core.Vertex
	indices  []uint32
}

func (b *builder) vert(pos, normal math.Vec3, u, v float32) uint32 {
	b.vertices = append(b.vertices, core.Vertex{
		Position: pos,
		Normal:   normal,
		UV:       math.Vec2{X: u, Y: v},
		Color:    core.ColorWhite,
	})
	return uint32(len(b.vertices) - 1)
}

func (b *builder) tri(i0, i1, i2 uint32) {
	b.indices = append(b.indices, i0, i1, i2)
}

// flatQuad adds a flat-shaded quad a-b-c-d. The normal is oriented away
// from the origin, which must lie inside the closed shape being built.
func (b *builder) flatQuad(p0, p1, p2, p3 math.Vec3) {
	n := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
	if n.LengthSqr() == 0 {
		n = p2.Sub(p1).Cross(p3.Sub(p1)).Normalize()
	}
	flip := n.Dot(p0.Add(p2).Mul(0.5)) < 0
	if flip {
		n = n.Negate()
	}
	i0 := b.vert(p0, n, 0, 0)
	i1 := b.vert(p1, n, 1, 0)
	i2 := b.vert(p2, n, 1, 1)
	i3 := b.vert(p3, n, 0, 1)
	if flip {
		b.tri(i0, i2, i1)
		b.tri(i0, i3, i2)
	} else {
		b.tri(i0, i1, i2)
		b.tri(i0, i2, i3)
	}
}

func (b *builder) mesh(name string) *Mesh {
	return CreateMeshFromData(name, b.vertices, b.indices)
}

// CreateQuad generates a width x height quad in the XY plane facing +Z.
func CreateQuad(width, height float32) *Mesh {
	w, h := width/2, height/2
	var b builder
	b.vert(math.Vec3{X: -w, Y: -h}, math.Vec3Front, 0, 0)
	b.vert(math.Vec3{X: w, Y: -h}, math.Vec3Front, 1, 0)
	b.vert(math.Vec3{X: w, Y: h}, math.Vec3Front, 1, 1)
	b.vert(math.Vec3{X: -w, Y: h}, math.Vec3Front, 0, 1)
	b.tri(0, 1, 2)
	b.tri(2, 3, 0)
	return b.mesh("Quad")
}

// CreateSphere generates a UV-sphere mesh
func CreateSphere(radius float32, segments, rings int) *Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)

	var b builder
	for ring := 0; ring <= rings; ring++ {
		sinPhi, cosPhi := math32.Sincos(float32(ring) * math32.Pi / float32(rings))
		for seg := 0; seg <= segments; seg++ {
			sinTheta, cosTheta := math32.Sincos(float32(seg) * 2 * math32.Pi / float32(segments))
			normal := math.Vec3{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			b.vert(normal.Mul(radius), normal, float32(seg)/float32(segments), float32(ring)/float32(rings))
		}
	}
	gridIndices(&b, 0, rings, segments)
	return b.mesh("Sphere")
}

// gridIndices stitches a (rows+1) x (cols+1) vertex grid starting at base.
func gridIndices(b *builder, base uint32, rows, cols int) {
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			current := base + uint32(r*(cols+1)+c)
			next := current + uint32(cols+1)
			b.tri(current, next, current+1)
			b.tri(current+1, next, next+1)
		}
	}
}

// disk adds a triangle fan cap at height y facing dir (+1 up, -1 down).
func disk(b *builder, radius, y, dir float32, segments int) {
	normal := math.Vec3{Y: dir}
	center := b.vert(math.Vec3{Y: y}, normal, 0.5, 0.5)
	first := uint32(len(b.vertices))
	for i := 0; i <= segments; i++ {
		s, c := math32.Sincos(float32(i) * 2 * math32.Pi / float32(segments))
		b.vert(math.Vec3{X: c * radius, Y: y, Z: s * radius}, normal, c*0.5+0.5, s*0.5+0.5)
	}
	for i := 0; i < segments; i++ {
		if dir > 0 {
			b.tri(center, first+uint32(i+1), first+uint32(i))
		} else {
			b.tri(center, first+uint32(i), first+uint32(i+1))
		}
	}
}

// CreateCylinder generates a capped cylinder mesh
func CreateCylinder(radius, height float32, segments int) *Mesh {
	segments = max(segments, 3)
	half := height / 2

	var b builder
	for i := 0; i <= segments; i++ {
		s, c := math32.Sincos(float32(i) * 2 * math32.Pi / float32(segments))
		normal := math.Vec3{X: c, Z: s}
		u := float32(i) / float32(segments)
		b.vert(math.Vec3{X: c * radius, Y: -half, Z: s * radius}, normal, u, 0)
		b.vert(math.Vec3{X: c * radius, Y: half, Z: s * radius}, normal, u, 1)
	}
	for i := 0; i < segments; i++ {
		base := uint32(i * 2)
		b.tri(base, base+1, base+2)
		b.tri(base+2, base+1, base+3)
	}
	disk(&b, radius, half, 1, segments)
	disk(&b, radius, -half, -1, segments)
	return b.mesh("Cylinder")
}

// CreateCone generates a cone mesh with its apex on +Y
func CreateCone(radius, height float32, segments int) *Mesh {
	segments = max(segments, 3)
	half := height / 2
	slope := math32.Atan2(radius, height)
	nr, ny := math32.Sincos(slope)

	var b builder
	for i := 0; i <= segments; i++ {
		s, c := math32.Sincos(float32(i) * 2 * math32.Pi / float32(segments))
		normal := math.Vec3{X: c * nr, Y: ny, Z: s * nr}.Normalize()
		u := float32(i) / float32(segments)
		b.vert(math.Vec3{Y: half}, normal, u, 0)
		b.vert(math.Vec3{X: c * radius, Y: -half, Z: s * radius}, normal, u, 1)
	}
	for i := 0; i < segments; i++ {
		base := uint32(i * 2)
		b.tri(base, base+3, base+1)
	}
	disk(&b, radius, -half, -1, segments)
	return b.mesh("Cone")
}

// CreateTorus generates a torus lying in the XZ plane
func CreateTorus(majorRadius, minorRadius float32, majorSegments, minorSegments int) *Mesh {
	majorSegments = max(majorSegments, 3)
	minorSegments = max(minorSegments, 3)

	var b builder
	for i := 0; i <= majorSegments; i++ {
		sinTheta, cosTheta := math32.Sincos(float32(i) * 2 * math32.Pi / float32(majorSegments))
		for j := 0; j <= minorSegments; j++ {
			sinPhi, cosPhi := math32.Sincos(float32(j) * 2 * math32.Pi / float32(minorSegments))
			ring := majorRadius + minorRadius*cosPhi
			pos := math.Vec3{X: ring * cosTheta, Y: minorRadius * sinPhi, Z: ring * sinTheta}
			normal := math.Vec3{X: cosPhi * cosTheta, Y: sinPhi, Z: cosPhi * sinTheta}
			b.vert(pos, normal, float32(i)/float32(majorSegments), float32(j)/float32(minorSegments))
		}
	}
	gridIndices(&b, 0, majorSegments, minorSegments)
	return b.mesh("Torus")
}

// CreateOctahedron generates a flat-shaded octahedron with the given radius.
func CreateOctahedron(radius float32) *Mesh {
	r := radius
	top, bottom := math.Vec3{Y: r}, math.Vec3{Y: -r}
	ring := []math.Vec3{{X: r}, {Z: r}, {X: -r}, {Z: -r}}

	var b builder
	for i := range ring {
		a, c := ring[i], ring[(i+1)%len(ring)]
		for _, apex := range []math.Vec3{top, bottom} {
			n := c.Sub(a).Cross(apex.Sub(a)).Normalize()
			if n.Dot(apex) < 0 {
				n = n.Negate()
			}
			i0 := b.vert(a, n, 0, 0)
			i1 := b.vert(c, n, 1, 0)
			i2 := b.vert(apex, n, 0.5, 1)
			b.tri(i0, i1, i2)
		}
	}
	return b.mesh("Octahedron")
}

// CreateRoundedBox generates a superellipsoid whose corners soften as
// roundness goes from 0 (nearly a cube) to 1 (a sphere).
func CreateRoundedBox(size, roundness float32, segments, rings int) *Mesh {
	segments = max(segments, 4)
	rings = max(rings, 4)
	e := 0.15 + 0.85*math.Clamp(roundness, 0, 1)
	half := size / 2

	// sgnPow keeps the sign of base while raising its magnitude to exp.
	sgnPow := func(base, exp float32) float32 {
		if base == 0 {
			return 0
		}
		return math32.Copysign(math32.Pow(math32.Abs(base), exp), base)
	}

	var b builder
	for ring := 0; ring <= rings; ring++ {
		sinPhi, cosPhi := math32.Sincos(float32(ring) * math32.Pi / float32(rings))
		for seg := 0; seg <= segments; seg++ {
			sinTheta, cosTheta := math32.Sincos(float32(seg) * 2 * math32.Pi / float32(segments))
			pos := math.Vec3{
				X: half * sgnPow(sinPhi, e) * sgnPow(cosTheta, e),
				Y: half * sgnPow(cosPhi, e),
				Z: half * sgnPow(sinPhi, e) * sgnPow(sinTheta, e),
			}
			normal := math.Vec3{
				X: sgnPow(sinPhi, 2-e) * sgnPow(cosTheta, 2-e),
				Y: sgnPow(cosPhi, 2-e),
				Z: sgnPow(sinPhi, 2-e) * sgnPow(sinTheta, 2-e),
			}.Normalize()
			b.vert(pos, normal, float32(seg)/float32(segments), float32(ring)/float32(rings))
		}
	}
	gridIndices(&b, 0, rings, segments)
	return b.mesh("RoundedBox")
}

// StarOutline returns the 2*points vertices of a star polygon in the XY
// plane, alternating outer and inner radius, starting at -90 degrees.
func StarOutline(outer, inner float32, points int) []math.Vec2 {
	points = max(points, 2)
	out := make([]math.Vec2, 0, points*2)
	for i := 0; i < points*2; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		angle := float32(i)*math32.Pi/float32(points) - math32.Pi/2
		s, c := math32.Sincos(angle)
		out = append(out, math.Vec2{X: c * r, Y: s * r})
	}
	return out
}

// CreateStar extrudes a 5-point star along Z. The caps sit bevel beyond the
// side walls and the walls are pushed bevel outward, joined by a chamfer
// strip. The result is recentered on its bounding box.
func CreateStar(outer, inner, depth, bevel float32) *Mesh {
	outline := StarOutline(outer, inner, 5)
	n := len(outline)
	halfDepth := depth / 2
	capZ := halfDepth + bevel

	at := func(p math.Vec2, z, grow float32) math.Vec3 {
		l := p.Length()
		scale := float32(1)
		if l > 0 {
			scale = (l + grow) / l
		}
		return math.Vec3{X: p.X * scale, Y: p.Y * scale, Z: z}
	}

	var b builder
	for _, side := range []float32{1, -1} {
		normal := math.Vec3{Z: side}
		center := b.vert(math.Vec3{Z: capZ * side}, normal, 0.5, 0.5)
		first := uint32(len(b.vertices))
		for _, p := range outline {
			b.vert(at(p, capZ*side, 0), normal, p.X/(2*outer)+0.5, p.Y/(2*outer)+0.5)
		}
		for i := 0; i < n; i++ {
			i0 := first + uint32(i)
			i1 := first + uint32((i+1)%n)
			if side > 0 {
				b.tri(center, i0, i1)
			} else {
				b.tri(center, i1, i0)
			}
		}
	}

	for i := 0; i < n; i++ {
		p, q := outline[i], outline[(i+1)%n]
		// side wall
		b.flatQuad(at(p, -halfDepth, bevel), at(q, -halfDepth, bevel), at(q, halfDepth, bevel), at(p, halfDepth, bevel))
		if bevel > 0 {
			b.flatQuad(at(p, halfDepth, bevel), at(q, halfDepth, bevel), at(q, capZ, 0), at(p, capZ, 0))
			b.flatQuad(at(p, -capZ, 0), at(q, -capZ, 0), at(q, -halfDepth, bevel), at(p, -halfDepth, bevel))
		}
	}
	m := b.mesh("Star")
	m.Recenter()
	return m
}
