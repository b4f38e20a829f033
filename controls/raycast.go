package controls

import (
	"github.com/chewxy/math32"

	"christmas-tree/core"
	"christmas-tree/math"
	"christmas-tree/scene"
)

// Ray represents a ray in 3D space
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point t units along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// HitResult stores the result of a ray intersection test
type HitResult struct {
	Hit      bool
	Distance float32
	Point    math.Vec3
	Node     *scene.Node
	FaceIdx  int // triangle index in the mesh
}

// NDCToRay casts a world-space ray from the camera through normalized
// device coordinates (x right, y up, both in [-1,1]).
func NDCToRay(ndcX, ndcY float32, camera *scene.Camera) Ray {
	inv, ok := camera.GetViewProjectionMatrix().Inverse()
	if !ok {
		return Ray{Origin: camera.Position, Direction: camera.GetForward()}
	}
	near := inv.MulVec(math.Vec4{X: ndcX, Y: ndcY, Z: -1, W: 1}).ToVec3DivW()
	far := inv.MulVec(math.Vec4{X: ndcX, Y: ndcY, Z: 1, W: 1}).ToVec3DivW()
	return Ray{
		Origin:    camera.Position,
		Direction: far.Sub(near).Normalize(),
	}
}

// ScreenToRay converts a pixel position (origin top-left) to a world ray.
func ScreenToRay(mouseX, mouseY, screenWidth, screenHeight float32, camera *scene.Camera) Ray {
	ndcX, ndcY := ScreenToNDC(mouseX, mouseY, screenWidth, screenHeight)
	return NDCToRay(ndcX, ndcY, camera)
}

// ScreenToNDC maps pixels to normalized device coordinates, flipping Y.
func ScreenToNDC(x, y, width, height float32) (float32, float32) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return (2*x)/width - 1, 1 - (2*y)/height
}

// Raycast tests ray against the given nodes' meshes and returns the
// closest hit. Nodes without a mesh are skipped.
func Raycast(ray Ray, nodes []*scene.Node) HitResult {
	closestHit := HitResult{Distance: math32.MaxFloat32}

	for _, node := range nodes {
		if node == nil || node.Mesh == nil || !node.Visible {
			continue
		}

		worldMatrix := node.GetWorldMatrix()
		aabb := computeAABB(node.Mesh.Vertices, worldMatrix)

		// Broad phase: AABB test
		t, hit := rayAABBIntersect(ray, aabb)
		if !hit || t > closestHit.Distance {
			continue
		}

		// Narrow phase: triangle test
		result := rayMeshIntersect(ray, node)
		if result.Hit && result.Distance < closestHit.Distance {
			closestHit = result
		}
	}

	return closestHit
}

// computeAABB calculates the AABB for a set of vertices transformed by a world matrix
func computeAABB(vertices []core.Vertex, worldMatrix math.Mat4) scene.AABB {
	if len(vertices) == 0 {
		return scene.AABB{}
	}
	first := worldMatrix.MulVec3(vertices[0].Position)
	aabb := scene.AABB{Min: first, Max: first}
	for _, v := range vertices[1:] {
		p := worldMatrix.MulVec3(v.Position)
		aabb.Min = math.Vec3{X: min(aabb.Min.X, p.X), Y: min(aabb.Min.Y, p.Y), Z: min(aabb.Min.Z, p.Z)}
		aabb.Max = math.Vec3{X: max(aabb.Max.X, p.X), Y: max(aabb.Max.Y, p.Y), Z: max(aabb.Max.Z, p.Z)}
	}
	return aabb
}

// rayAABBIntersect tests ray-AABB intersection (slab method). A flat box
// still hits because the slabs are inclusive.
func rayAABBIntersect(ray Ray, aabb scene.AABB) (float32, bool) {
	invDir := math.Vec3{
		X: 1.0 / ray.Direction.X,
		Y: 1.0 / ray.Direction.Y,
		Z: 1.0 / ray.Direction.Z,
	}

	t1 := (aabb.Min.X - ray.Origin.X) * invDir.X
	t2 := (aabb.Max.X - ray.Origin.X) * invDir.X
	t3 := (aabb.Min.Y - ray.Origin.Y) * invDir.Y
	t4 := (aabb.Max.Y - ray.Origin.Y) * invDir.Y
	t5 := (aabb.Min.Z - ray.Origin.Z) * invDir.Z
	t6 := (aabb.Max.Z - ray.Origin.Z) * invDir.Z

	tmin := max(slabMin(t1, t2), slabMin(t3, t4), slabMin(t5, t6))
	tmax := min(slabMax(t1, t2), slabMax(t3, t4), slabMax(t5, t6))

	if tmax < 0 || tmin > tmax {
		return 0, false
	}

	return tmin, true
}

// slabMin and slabMax treat the NaN from 0*Inf (ray origin on a slab plane
// of a zero-thickness box) as an unbounded slab.
func slabMin(a, b float32) float32 {
	if math32.IsNaN(a) || math32.IsNaN(b) {
		return -math32.MaxFloat32
	}
	return min(a, b)
}

func slabMax(a, b float32) float32 {
	if math32.IsNaN(a) || math32.IsNaN(b) {
		return math32.MaxFloat32
	}
	return max(a, b)
}

// rayMeshIntersect performs per-triangle intersection using Möller–Trumbore algorithm
func rayMeshIntersect(ray Ray, node *scene.Node) HitResult {
	mesh := node.Mesh
	worldMatrix := node.GetWorldMatrix()
	closest := HitResult{Distance: math32.MaxFloat32}

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		i0, i1, i2 := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
		v0 := worldMatrix.MulVec3(mesh.Vertices[i0].Position)
		v1 := worldMatrix.MulVec3(mesh.Vertices[i1].Position)
		v2 := worldMatrix.MulVec3(mesh.Vertices[i2].Position)

		t, hit := mollerTrumbore(ray, v0, v1, v2)
		if hit && t < closest.Distance {
			closest.Hit = true
			closest.Distance = t
			closest.Point = ray.At(t)
			closest.Node = node
			closest.FaceIdx = i / 3
		}
	}

	return closest
}

// mollerTrumbore is two-sided: frames are visible from both faces.
func mollerTrumbore(ray Ray, v0, v1, v2 math.Vec3) (float32, bool) {
	const epsilon = 0.0000001

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	if a > -epsilon && a < epsilon {
		return 0, false // parallel
	}

	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)

	if u < 0.0 || u > 1.0 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)

	if v < 0.0 || u+v > 1.0 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	return t, t > epsilon
}
