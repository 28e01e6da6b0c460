package scene

import (
	"github.com/chewxy/math32"
	"github.com/google/uuid"

	"pbr-viewer/core"
	"pbr-viewer/math"
)

// Geometry holds CPU-side vertex and index data. It is shared by every
// GameObject that draws it; backends key their GPU copies by ID.
type Geometry struct {
	ID       uuid.UUID
	Name     string
	Vertices []core.Vertex
	Indices  []uint32
}

// NewGeometry wraps vertex data. A nil index slice draws the vertices in order.
func NewGeometry(name string, vertices []core.Vertex, indices []uint32) *Geometry {
	if indices == nil {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	return &Geometry{
		ID:       uuid.New(),
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
}

func (g *Geometry) IndexCount() int {
	return len(g.Indices)
}

func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// Bounds returns the local-space AABB of the vertex positions.
func (g *Geometry) Bounds() (min, max math.Vec3) {
	if len(g.Vertices) == 0 {
		return math.Vec3Zero, math.Vec3Zero
	}
	min = g.Vertices[0].Position
	max = g.Vertices[0].Position
	for _, v := range g.Vertices[1:] {
		p := v.Position
		min = math.Vec3{X: math32.Min(min.X, p.X), Y: math32.Min(min.Y, p.Y), Z: math32.Min(min.Z, p.Z)}
		max = max.Max(p)
	}
	return min, max
}

// BoundingSphere returns the centre of the local bounds and the largest
// distance from it to a vertex.
func (g *Geometry) BoundingSphere() (centre math.Vec3, radius float32) {
	lo, hi := g.Bounds()
	centre = lo.Add(hi).Mul(0.5)
	for _, v := range g.Vertices {
		radius = math32.Max(radius, v.Position.Distance(centre))
	}
	return centre, radius
}
