package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"pbr-viewer/core"
	"pbr-viewer/math"
)

// ErrNoPrimitives is returned when a glTF file has no usable triangle data.
var ErrNoPrimitives = errors.New("gltf: no usable primitives")

// LoadGLTFGeometry reads every triangle primitive of a .glb / .gltf file
// and merges them into one Geometry. Node transforms are ignored. When
// radius is positive the result is centred and scaled to fit a sphere of
// that radius, so it can stand in for the demo spheres.
func LoadGLTFGeometry(path string, radius float32) (*Geometry, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}

	var vertices []core.Vertex
	var indices []uint32
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			verts, idx, err := loadGLTFPrimitive(doc, prim)
			if err != nil {
				slog.Warn("gltf: skipping primitive", "path", path, "mesh", mi, "primitive", pi, "err", err)
				continue
			}
			base := uint32(len(vertices))
			vertices = append(vertices, verts...)
			for _, i := range idx {
				indices = append(indices, base+i)
			}
		}
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("%q: %w", path, ErrNoPrimitives)
	}

	if radius > 0 {
		fitToRadius(vertices, radius)
	}

	name := filepath.Base(path)
	return NewGeometry(name, vertices, indices), nil
}

// loadGLTFPrimitive converts one glTF mesh primitive into vertices and
// indices. Non-indexed primitives get sequential indices.
func loadGLTFPrimitive(doc *gltf.Document, prim *gltf.Primitive) ([]core.Vertex, []uint32, error) {
	// Positions are required
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return nil, nil, fmt.Errorf("normals: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return nil, nil, fmt.Errorf("texture coordinates: %w", err)
		}
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   math.Vec3Up,
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
		if i < len(uvs) {
			v.UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(verts))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	return verts, indices, nil
}

func fitToRadius(vertices []core.Vertex, radius float32) {
	g := Geometry{Vertices: vertices}
	centre, extent := g.BoundingSphere()
	if extent == 0 {
		return
	}
	scale := radius / extent
	for i := range vertices {
		vertices[i].Position = vertices[i].Position.Sub(centre).Mul(scale)
	}
}
