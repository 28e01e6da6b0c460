// Package softgl implements renderer.Context on the fauxgl software
// rasterizer. It runs the shading package's evaluator per pixel and needs
// no display, which makes it the backend for headless snapshots and tests.
package softgl

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/fogleman/fauxgl"

	"pbr-viewer/core"
	"pbr-viewer/math"
	"pbr-viewer/renderer"
	"pbr-viewer/scene"
	"pbr-viewer/shading"
)

// Context rasterizes into an in-memory colour buffer.
type Context struct {
	dc         *fauxgl.Context
	clearColor fauxgl.Color
	depthTest  bool
	log        *slog.Logger

	geometries map[*scene.Geometry][]*fauxgl.Triangle
	programs   map[*renderer.Program]bool
	textures   map[*scene.Texture]bool
}

var _ renderer.Context = (*Context)(nil)

// NewContext creates a width x height colour and depth buffer.
func NewContext(width, height int, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Context{
		clearColor: fauxgl.Black,
		depthTest:  true,
		log:        logger,
		geometries: map[*scene.Geometry][]*fauxgl.Triangle{},
		programs:   map[*renderer.Program]bool{},
		textures:   map[*scene.Texture]bool{},
	}
	c.Resize(width, height)
	return c
}

func (c *Context) UploadGeometry(g *scene.Geometry) error {
	if _, ok := c.geometries[g]; ok {
		return nil
	}
	if len(g.Indices)%3 != 0 {
		return fmt.Errorf("geometry %q: index count %d is not a multiple of 3", g.Name, len(g.Indices))
	}

	triangles := make([]*fauxgl.Triangle, 0, g.TriangleCount())
	for i := 0; i+2 < len(g.Indices); i += 3 {
		var vs [3]fauxgl.Vertex
		for k := range vs {
			idx := g.Indices[i+k]
			if int(idx) >= len(g.Vertices) {
				return fmt.Errorf("geometry %q: index %d out of range", g.Name, idx)
			}
			vs[k] = toVertex(g.Vertices[idx])
		}
		triangles = append(triangles, fauxgl.NewTriangle(vs[0], vs[1], vs[2]))
	}
	c.geometries[g] = triangles
	c.log.Debug("geometry uploaded", "name", g.Name, "triangles", len(triangles))
	return nil
}

// CompileProgram accepts any program whose light array fits the evaluator.
// The GLSL sources are not used; pixels are shaded by the shading package.
func (c *Context) CompileProgram(p *renderer.Program) error {
	if p.LightCount != shading.LightCount {
		return fmt.Errorf("program %s: %d lights, software shader supports %d", p.Name, p.LightCount, shading.LightCount)
	}
	c.programs[p] = true
	return nil
}

func (c *Context) UploadTexture(t *scene.Texture) error {
	if t == nil || len(t.Pixels) != t.Width*t.Height*4 || len(t.Pixels) == 0 {
		return fmt.Errorf("texture has no pixel data")
	}
	c.textures[t] = true
	return nil
}

func (c *Context) Clear() {
	c.dc.ClearColorBufferWith(c.clearColor)
	c.dc.ClearDepthBuffer()
}

func (c *Context) SetDepthTest(enabled bool) {
	c.depthTest = enabled
	c.dc.ReadDepth = enabled
	c.dc.WriteDepth = enabled
}

func (c *Context) SetClearColor(col core.Color) {
	c.clearColor = fauxgl.Color{R: float64(col.R), G: float64(col.G), B: float64(col.B), A: float64(col.A)}
}

// Resize reallocates the buffers; their previous contents are lost.
func (c *Context) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if c.dc != nil && c.dc.Width == width && c.dc.Height == height {
		return
	}
	c.dc = fauxgl.NewContext(width, height)
	c.dc.Cull = fauxgl.CullNone
	c.SetDepthTest(c.depthTest)
}

func (c *Context) Size() (int, int) { return c.dc.Width, c.dc.Height }

func (c *Context) DrawObject(obj *scene.GameObject, p *renderer.Program, u renderer.Uniforms) error {
	if !c.programs[p] {
		return renderer.ErrProgramNotCompiled
	}
	triangles, ok := c.geometries[obj.Geometry]
	if !ok {
		return renderer.ErrGeometryNotUploaded
	}

	params := u.ShadingParams(func(t *scene.Texture) bool { return c.textures[t] })
	c.dc.Shader = &pbrShader{uniforms: u, params: params}
	c.dc.DrawTriangles(triangles)
	return nil
}

// Image returns the colour buffer of the last frame.
func (c *Context) Image() image.Image {
	return c.dc.Image()
}

func toVertex(v core.Vertex) fauxgl.Vertex {
	return fauxgl.Vertex{
		Position: fauxgl.Vector{X: float64(v.Position.X), Y: float64(v.Position.Y), Z: float64(v.Position.Z)},
		Normal:   fauxgl.Vector{X: float64(v.Normal.X), Y: float64(v.Normal.Y), Z: float64(v.Normal.Z)},
		Texture:  fauxgl.Vector{X: float64(v.UV.X), Y: float64(v.UV.Y)},
	}
}

func toVec3(v fauxgl.Vector) math.Vec3 {
	return math.Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

func fromVec3(v math.Vec3) fauxgl.Vector {
	return fauxgl.Vector{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// pbrShader is shared by the rasterizer's workers and must stay read-only
// while a draw is in progress.
type pbrShader struct {
	uniforms renderer.Uniforms
	params   shading.Params
}

// Vertex outputs clip space and replaces position and normal with their
// world-space values for the fragment stage.
func (s *pbrShader) Vertex(v fauxgl.Vertex) fauxgl.Vertex {
	local := toVec3(v.Position).ToVec4(1)
	clip := local.MulMat(s.uniforms.LocalToProjection)
	world := local.MulMat(s.uniforms.Model)
	normal := s.uniforms.Model.MulDirection(toVec3(v.Normal))

	v.Output = fauxgl.VectorW{X: float64(clip.X), Y: float64(clip.Y), Z: float64(clip.Z), W: float64(clip.W)}
	v.Position = fromVec3(world.ToVec3())
	v.Normal = fromVec3(normal)
	return v
}

func (s *pbrShader) Fragment(v fauxgl.Vertex) fauxgl.Color {
	pos := toVec3(v.Position)
	frag := shading.Fragment{
		Position: pos,
		Normal:   toVec3(v.Normal),
		View:     s.uniforms.CameraPosition.Sub(pos),
	}
	rgb := shading.Evaluate(s.uniforms.Mode, frag, &s.params)
	return fauxgl.Color{R: float64(rgb.X), G: float64(rgb.Y), B: float64(rgb.Z), A: 1}
}
