package scene

import (
	"fmt"

	"pbr-viewer/core"
	"pbr-viewer/math"
)

// Grid layout of one instance set.
type gridSpec struct {
	side    int
	radius  float32
	detail  int
	spacing float32 // distance between neighbours
	depth   float32
}

var (
	smallGrid = gridSpec{side: 5, radius: 0.2, detail: 32, spacing: 0.5, depth: -1.5}
	largeGrid = gridSpec{side: 10, radius: 0.1, detail: 16, spacing: 0.25, depth: -1.5}
)

// Scene holds the two sphere grids, the lights and the camera. Only one
// grid is drawn per frame.
type Scene struct {
	Camera *Camera
	Lights [LightCount]*PointLight

	// Geometries lists every shared geometry, for upload at init.
	Geometries []*Geometry

	grid    []*GameObject
	hundred []*GameObject
}

// NewDemoScene builds 25 spheres (radius 0.2) and 100 spheres (radius 0.1)
// whose roughness varies along X and metalness along Y.
func NewDemoScene(aspectRatio float32) *Scene {
	return NewSceneWithGeometry(aspectRatio, nil)
}

// NewSceneWithGeometry is NewDemoScene with an imported mesh in place of the
// spheres. The mesh should fit the unit sphere; each grid scales it to its
// own sphere radius. A nil geometry keeps the spheres.
func NewSceneWithGeometry(aspectRatio float32, mesh *Geometry) *Scene {
	s := &Scene{
		Camera: NewCamera(DefaultFOV, aspectRatio, DefaultNear, DefaultFar),
		Lights: DefaultLights(),
	}

	if mesh == nil {
		small := NewSphereGeometry(smallGrid.radius, smallGrid.detail, smallGrid.detail)
		large := NewSphereGeometry(largeGrid.radius, largeGrid.detail, largeGrid.detail)
		s.Geometries = []*Geometry{small, large}
		s.grid = buildGrid(smallGrid, small, 1)
		s.hundred = buildGrid(largeGrid, large, 1)
		return s
	}

	s.Geometries = []*Geometry{mesh}
	s.grid = buildGrid(smallGrid, mesh, smallGrid.radius)
	s.hundred = buildGrid(largeGrid, mesh, largeGrid.radius)
	return s
}

// LoadScene builds the demo scene, replacing the spheres with the mesh at
// meshPath (.obj, .gltf or .glb) when it is not empty.
func LoadScene(meshPath string, aspectRatio float32) (*Scene, error) {
	if meshPath == "" {
		return NewDemoScene(aspectRatio), nil
	}
	mesh, err := LoadMesh(meshPath, 1)
	if err != nil {
		return nil, err
	}
	return NewSceneWithGeometry(aspectRatio, mesh), nil
}

func buildGrid(spec gridSpec, geometry *Geometry, scale float32) []*GameObject {
	count := spec.side * spec.side
	half := float32(spec.side-1) / 2
	last := float32(spec.side - 1)

	objects := make([]*GameObject, 0, count)
	for i := 0; i < count; i++ {
		col := float32(i / spec.side)
		row := float32(i % spec.side)

		pos := math.Vec3{
			X: (col - half) * spec.spacing,
			Y: (row - half) * spec.spacing,
			Z: spec.depth,
		}
		mat := NewMaterial(fmt.Sprintf("sphere_%d", i),
			0.95*col/last+0.025,
			0.95*row/last+0.025)
		transform := core.NewTransformAt(pos)
		transform.Scale = math.Splat3(scale)
		objects = append(objects, NewGameObject(geometry, transform, mat))
	}
	return objects
}

// Objects returns the instance set selected by the hundred flag.
func (s *Scene) Objects(hundred bool) []*GameObject {
	if hundred {
		return s.hundred
	}
	return s.grid
}
