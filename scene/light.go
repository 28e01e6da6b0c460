package scene

import (
	"pbr-viewer/core"
	"pbr-viewer/math"
	"pbr-viewer/shading"
)

// LightCount is fixed by the shading program.
const LightCount = shading.LightCount

// PointLight emits from a single world-space position.
type PointLight struct {
	PositionWS math.Vec3
	Color      core.Color
	Intensity  float32
}

// NewPointLight creates a light; negative intensity is treated as zero.
func NewPointLight(pos math.Vec3, color core.Color, intensity float32) *PointLight {
	if intensity < 0 {
		intensity = 0
	}
	return &PointLight{PositionWS: pos, Color: color, Intensity: intensity}
}

// DefaultLights places four white lights on the corners of a square in the
// z = 0 plane, 2.5 units across.
func DefaultLights() [LightCount]*PointLight {
	var lights [LightCount]*PointLight
	for i := range lights {
		pos := math.Vec3{
			X: 2.5 * (float32(i%2) - 0.5),
			Y: 2.5 * (float32((i/2)%2) - 0.5),
			Z: 0,
		}
		lights[i] = NewPointLight(pos, core.ColorWhite, 0.25)
	}
	return lights
}

// ToShading converts the light to the evaluator's representation.
func (l *PointLight) ToShading() shading.Light {
	return shading.Light{
		Position:  l.PositionWS,
		Color:     l.Color.RGB(),
		Intensity: l.Intensity,
	}
}
