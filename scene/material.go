package scene

import "pbr-viewer/math"

const (
	DefaultRoughness = 0.5
	DefaultMetallic  = 0.5
)

// Material holds the per-object surface parameters. Albedo is global and
// comes from the control panel, so it is not stored here.
//
// Both values are kept in [0,1]; out-of-range input is clamped on the way in.
type Material struct {
	Name      string
	roughness float32
	metallic  float32
}

// NewMaterial creates a material with clamped roughness and metallic values.
func NewMaterial(name string, roughness, metallic float32) *Material {
	m := &Material{Name: name}
	m.SetRoughness(roughness)
	m.SetMetallic(metallic)
	return m
}

// DefaultMaterial returns a half-rough, half-metallic material.
func DefaultMaterial() *Material {
	return NewMaterial("Default", DefaultRoughness, DefaultMetallic)
}

func (m *Material) Roughness() float32 { return m.roughness }
func (m *Material) Metallic() float32  { return m.metallic }

func (m *Material) SetRoughness(r float32) {
	m.roughness = math.Clamp(r, 0, 1)
}

func (m *Material) SetMetallic(v float32) {
	m.metallic = math.Clamp(v, 0, 1)
}
