package scene

import (
	"christmas-tree/math"
)

// Camera is a perspective camera looking from Position at Target.
type Camera struct {
	Position    math.Vec3
	Target      math.Vec3
	Up          math.Vec3
	FOV         float32 // vertical, radians
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	// Cached matrices
	viewMatrix       math.Mat4
	projectionMatrix math.Mat4
	viewProjMatrix   math.Mat4
	dirty            bool
}

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Position:    math.Vec3Front,
		Up:          math.Vec3Up,
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		dirty:       true,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 && width > 0 {
		c.AspectRatio = width / height
		c.dirty = true
	}
}

func (c *Camera) SetPosition(pos math.Vec3) {
	c.Position = pos
	c.dirty = true
}

// LookAt places the camera at eye facing target.
func (c *Camera) LookAt(eye, target math.Vec3) {
	c.Position = eye
	c.Target = target
	c.dirty = true
}

func (c *Camera) GetViewMatrix() math.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewMatrix
}

func (c *Camera) GetProjectionMatrix() math.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.projectionMatrix
}

// GetViewProjectionMatrix returns view * projection for row vectors.
func (c *Camera) GetViewProjectionMatrix() math.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewProjMatrix
}

func (c *Camera) GetForward() math.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

func (c *Camera) updateMatrices() {
	c.viewMatrix = math.Mat4LookAt(c.Position, c.Target, c.Up)
	c.projectionMatrix = math.Mat4Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
	c.viewProjMatrix = c.viewMatrix.Mul(c.projectionMatrix)
	c.dirty = false
}
