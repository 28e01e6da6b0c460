package scene

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pbr-viewer/core"
	"pbr-viewer/math"
)

// ErrUnknownMeshFormat is returned by LoadMesh for unsupported extensions.
var ErrUnknownMeshFormat = errors.New("mesh: unknown format")

// objCorner references one face corner (0-based, -1 = absent).
type objCorner struct{ v, vt, vn int }

// LoadMesh imports a .obj, .gltf or .glb file as a single geometry, fitted
// to radius when radius is positive.
func LoadMesh(path string, radius float32) (*Geometry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJGeometry(path, radius)
	case ".gltf", ".glb":
		return LoadGLTFGeometry(path, radius)
	default:
		return nil, fmt.Errorf("%q: %w", path, ErrUnknownMeshFormat)
	}
}

// LoadOBJGeometry reads a Wavefront .obj file. All objects and groups are
// merged; materials and mtllib references are ignored.
func LoadOBJGeometry(path string, radius float32) (*Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	g, err := DecodeOBJ(filepath.Base(path), f)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	if radius > 0 {
		fitToRadius(g.Vertices, radius)
	}
	return g, nil
}

// DecodeOBJ parses OBJ text. Polygons are fan-triangulated and vertices
// sharing a position/uv/normal triple are merged. Normals are generated
// when the file has none.
func DecodeOBJ(name string, r io.Reader) (*Geometry, error) {
	var positions, normals []math.Vec3
	var uvs []math.Vec2
	var corners []objCorner

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v", "vn":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if fields[0] == "v" {
				positions = append(positions, v)
			} else {
				normals = append(normals, v)
			}

		case "vt":
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: vt needs 2 components", line)
			}
			u, err1 := strconv.ParseFloat(fields[1], 32)
			v, err2 := strconv.ParseFloat(fields[2], 32)
			if err := errors.Join(err1, err2); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			uvs = append(uvs, math.Vec2{X: float32(u), Y: float32(v)})

		case "f":
			if len(fields) < 4 {
				continue
			}
			face := make([]objCorner, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				face = append(face, parseFaceCorner(tok, len(positions), len(uvs), len(normals)))
			}
			for i := 1; i+1 < len(face); i++ {
				corners = append(corners, face[0], face[i], face[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj: %w", err)
	}
	if len(corners) == 0 {
		return nil, ErrNoPrimitives
	}

	vertices, indices, err := buildOBJVertices(corners, positions, normals, uvs)
	if err != nil {
		return nil, err
	}
	if len(normals) == 0 {
		generateNormals(vertices, indices)
	}
	return NewGeometry(name, vertices, indices), nil
}

func parseVec3(fields []string) (math.Vec3, error) {
	if len(fields) < 3 {
		return math.Vec3{}, fmt.Errorf("need 3 components, got %d", len(fields))
	}
	var c [3]float32
	for i := range c {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return math.Vec3{}, err
		}
		c[i] = float32(f)
	}
	return math.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}

// parseFaceCorner parses "v", "v/vt", "v//vn" or "v/vt/vn". Negative
// indices count back from the end of the lists read so far.
func parseFaceCorner(tok string, nv, nvt, nvn int) objCorner {
	parseIdx := func(s string, n int) int {
		if s == "" {
			return -1
		}
		i, err := strconv.Atoi(s)
		switch {
		case err != nil || i == 0:
			return -1
		case i < 0:
			return n + i
		default:
			return i - 1
		}
	}
	parts := strings.Split(tok, "/")
	c := objCorner{v: -1, vt: -1, vn: -1}
	c.v = parseIdx(parts[0], nv)
	if len(parts) > 1 {
		c.vt = parseIdx(parts[1], nvt)
	}
	if len(parts) > 2 {
		c.vn = parseIdx(parts[2], nvn)
	}
	return c
}

func buildOBJVertices(corners []objCorner, positions, normals []math.Vec3, uvs []math.Vec2) ([]core.Vertex, []uint32, error) {
	seen := map[objCorner]uint32{}
	var vertices []core.Vertex
	indices := make([]uint32, 0, len(corners))

	for _, c := range corners {
		if idx, ok := seen[c]; ok {
			indices = append(indices, idx)
			continue
		}
		if c.v < 0 || c.v >= len(positions) {
			return nil, nil, fmt.Errorf("face references missing vertex %d", c.v+1)
		}
		v := core.Vertex{Position: positions[c.v], Normal: math.Vec3Up}
		if c.vn >= 0 && c.vn < len(normals) {
			v.Normal = normals[c.vn]
		}
		if c.vt >= 0 && c.vt < len(uvs) {
			// OBJ puts v = 0 at the bottom.
			v.UV = math.Vec2{X: uvs[c.vt].X, Y: 1 - uvs[c.vt].Y}
		}
		idx := uint32(len(vertices))
		vertices = append(vertices, v)
		seen[c] = idx
		indices = append(indices, idx)
	}
	return vertices, indices, nil
}

// generateNormals writes area-weighted vertex normals.
func generateNormals(vertices []core.Vertex, indices []uint32) {
	accum := make([]math.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := vertices[i0].Position
		n := vertices[i1].Position.Sub(p0).Cross(vertices[i2].Position.Sub(p0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i := range vertices {
		if n := accum[i].Normalize(); n != math.Vec3Zero {
			vertices[i].Normal = n
		}
	}
}
