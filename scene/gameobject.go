package scene

import (
	"github.com/google/uuid"

	"pbr-viewer/core"
)

// GameObject is one drawable: shared geometry placed by its own transform
// and shaded with its own material.
type GameObject struct {
	ID        uuid.UUID
	Geometry  *Geometry
	Transform core.Transform
	Material  *Material
}

// NewGameObject builds a drawable. A nil material falls back to DefaultMaterial.
func NewGameObject(geometry *Geometry, transform core.Transform, material *Material) *GameObject {
	if material == nil {
		material = DefaultMaterial()
	}
	return &GameObject{
		ID:        uuid.New(),
		Geometry:  geometry,
		Transform: transform,
		Material:  material,
	}
}
