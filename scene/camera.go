package scene

import (
	"pbr-viewer/math"
)

const (
	DefaultFOV  = 0.785398 // 45 degrees
	DefaultNear = 0.1
	DefaultFar  = 100.0
)

// DefaultCameraPosition is where the demo camera sits, looking down -Z.
var DefaultCameraPosition = math.Vec3{X: 0, Y: 0, Z: 2}

// Camera represents a view camera
type Camera struct {
	Position    math.Vec3
	Target      math.Vec3
	Up          math.Vec3
	FOV         float32
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	viewProjMatrix math.Mat4
	dirty          bool
}

// NewCamera creates a camera at DefaultCameraPosition looking toward -Z.
func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	c := &Camera{
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		Up:          math.Vec3Up,
	}
	c.SetPosition(DefaultCameraPosition)
	return c
}

// SetParameters updates the aspect ratio; non-positive values are ignored.
func (c *Camera) SetParameters(aspectRatio float32) {
	if aspectRatio > 0 && aspectRatio != c.AspectRatio {
		c.AspectRatio = aspectRatio
		c.dirty = true
	}
}

// SetPosition moves the camera and keeps it looking down -Z.
func (c *Camera) SetPosition(pos math.Vec3) {
	c.Position = pos
	c.Target = pos.Add(math.Vec3Back)
	c.dirty = true
}

// Update recomputes the cached matrices if anything changed.
func (c *Camera) Update() {
	if c.dirty {
		c.updateMatrices()
	}
}

// GetViewProjectionMatrix maps world space to clip space.
func (c *Camera) GetViewProjectionMatrix() math.Mat4 {
	c.Update()
	return c.viewProjMatrix
}

func (c *Camera) updateMatrices() {
	view := math.Mat4LookAt(c.Position, c.Target, c.Up)
	projection := math.Mat4Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
	// Row vectors: world -> view -> clip.
	c.viewProjMatrix = view.Mul(projection)
	c.dirty = false
}
