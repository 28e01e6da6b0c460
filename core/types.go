package core

import (
	"pbr-viewer/math"
)

// Color is a linear RGBA colour with float components.
type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

// ColorFromBytes converts 0-255 components, as stored in the control panel, to 0-1.
func ColorFromBytes(rgb [3]uint8) Color {
	return Color{
		R: float32(rgb[0]) / 255,
		G: float32(rgb[1]) / 255,
		B: float32(rgb[2]) / 255,
		A: 1,
	}
}

// RGB drops the alpha channel.
func (c Color) RGB() math.Vec3 {
	return math.Vec3{X: c.R, Y: c.G, Z: c.B}
}

// Vertex is the interleaved layout uploaded to vertex buffers.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
}

// Transform places an object in the world.
type Transform struct {
	Position math.Vec3
	Rotation math.Quaternion
	Scale    math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: math.Vec3Zero,
		Rotation: math.QuaternionIdentity(),
		Scale:    math.Vec3One,
	}
}

// NewTransformAt returns an identity transform translated to pos.
func NewTransformAt(pos math.Vec3) Transform {
	t := NewTransform()
	t.Position = pos
	return t
}

// GetMatrix returns the local-to-world matrix: scale, then rotate, then translate.
func (t Transform) GetMatrix() math.Mat4 {
	scale := math.Mat4Scale(t.Scale)
	rotation := t.Rotation.ToMat4()
	translation := math.Mat4Translation(t.Position)
	return scale.Mul(rotation).Mul(translation)
}

