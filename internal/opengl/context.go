// Package opengl implements renderer.Context on an OpenGL 4.1 core profile.
// Every call must happen on the goroutine that owns the GL context.
package opengl

import (
	"fmt"
	"log/slog"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"pbr-viewer/core"
	"pbr-viewer/math"
	"pbr-viewer/renderer"
	"pbr-viewer/scene"
)

// gpuGeometry holds the buffer objects of an uploaded geometry.
type gpuGeometry struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
}

// Context is the OpenGL rendering context.
type Context struct {
	width, height int
	log           *slog.Logger

	geometries map[*scene.Geometry]*gpuGeometry
	programs   map[*renderer.Program]*glProgram
	textures   map[*scene.Texture]uint32
}

var _ renderer.Context = (*Context)(nil)

// NewContext loads the GL entry points for the current context. A window
// must already be current on this goroutine.
func NewContext(width, height int, logger *slog.Logger) (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("opengl ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))

	c := &Context{
		log:        logger,
		geometries: map[*scene.Geometry]*gpuGeometry{},
		programs:   map[*renderer.Program]*glProgram{},
		textures:   map[*scene.Texture]uint32{},
	}
	gl.DepthFunc(gl.LESS)
	c.Resize(width, height)
	return c, nil
}

func (c *Context) UploadGeometry(g *scene.Geometry) error {
	if _, ok := c.geometries[g]; ok {
		return nil
	}
	if len(g.Vertices) == 0 {
		return fmt.Errorf("geometry %q has no vertices", g.Name)
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))
	gpu := &gpuGeometry{IndexCount: int32(len(g.Indices))}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(g.Vertices)*int(stride),
		gl.Ptr(g.Vertices),
		gl.STATIC_DRAW)

	var v core.Vertex
	posOff := int(unsafe.Offsetof(v.Position))
	normOff := int(unsafe.Offsetof(v.Normal))
	uvOff := int(unsafe.Offsetof(v.UV))

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(posOff))

	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(normOff))

	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(uvOff))

	gl.GenBuffers(1, &gpu.EBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER,
		len(g.Indices)*4,
		gl.Ptr(g.Indices),
		gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	c.geometries[g] = gpu
	c.log.Debug("geometry uploaded", "name", g.Name, "vertices", len(g.Vertices), "indices", len(g.Indices))
	return nil
}

func (c *Context) CompileProgram(p *renderer.Program) error {
	if _, ok := c.programs[p]; ok {
		return nil
	}
	prog, err := linkProgram(p)
	if err != nil {
		return fmt.Errorf("program %s: %w", p.Name, err)
	}
	c.programs[p] = prog
	return nil
}

func (c *Context) UploadTexture(t *scene.Texture) error {
	if _, ok := c.textures[t]; ok {
		return nil
	}
	id, err := uploadTexture(t)
	if err != nil {
		return err
	}
	c.textures[t] = id
	return nil
}

func (c *Context) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (c *Context) SetDepthTest(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
}

func (c *Context) SetClearColor(col core.Color) {
	gl.ClearColor(col.R, col.G, col.B, col.A)
}

func (c *Context) Resize(width, height int) {
	c.width, c.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (c *Context) Size() (int, int) { return c.width, c.height }

func (c *Context) DrawObject(obj *scene.GameObject, p *renderer.Program, u renderer.Uniforms) error {
	prog, ok := c.programs[p]
	if !ok {
		return renderer.ErrProgramNotCompiled
	}
	gpu, ok := c.geometries[obj.Geometry]
	if !ok {
		return renderer.ErrGeometryNotUploaded
	}

	gl.UseProgram(prog.id)

	// Row-vector matrices are already in GLSL's column-major layout.
	setMat4(prog.location(renderer.UniformLocalToProjection), u.LocalToProjection)
	setMat4(prog.location(renderer.UniformModel), u.Model)

	setVec3(prog.location(renderer.UniformAlbedo), u.Albedo)
	gl.Uniform1f(prog.location(renderer.UniformRoughness), u.Roughness)
	gl.Uniform1f(prog.location(renderer.UniformMetallic), u.Metallic)
	setVec3(prog.location(renderer.UniformCameraPosition), u.CameraPosition)

	ponctual := int32(0)
	if u.Ponctual() {
		ponctual = 1
	}
	gl.Uniform1i(prog.location(renderer.UniformPonctual), ponctual)

	for i := 0; i < p.LightCount && i < len(u.Lights); i++ {
		l := u.Lights[i]
		setVec3(prog.location(renderer.LightUniform(i, "positionWS")), l.Position)
		setVec3(prog.location(renderer.LightUniform(i, "color")), l.Color)
		gl.Uniform1f(prog.location(renderer.LightUniform(i, "intensity")), l.Intensity)
	}

	for i, s := range renderer.Slots() {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.BindTexture(gl.TEXTURE_2D, c.textures[u.Textures.Get(s)])
	}

	gl.BindVertexArray(gpu.VAO)
	gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
	return nil
}

// Destroy frees every GL object the context created.
func (c *Context) Destroy() {
	for g, gpu := range c.geometries {
		gl.DeleteVertexArrays(1, &gpu.VAO)
		gl.DeleteBuffers(1, &gpu.VBO)
		gl.DeleteBuffers(1, &gpu.EBO)
		delete(c.geometries, g)
	}
	for t, id := range c.textures {
		deleteTexture(id)
		delete(c.textures, t)
	}
	for p, prog := range c.programs {
		gl.DeleteProgram(prog.id)
		delete(c.programs, p)
	}
}

func setMat4(loc int32, m math.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0][0])
}

func setVec3(loc int32, v math.Vec3) {
	gl.Uniform3f(loc, v.X, v.Y, v.Z)
}
