package opengl

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"pbr-viewer/renderer"
)

// glProgram is a linked program with its uniform locations resolved once.
type glProgram struct {
	id        uint32
	locations map[string]int32
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", strings.TrimRight(log, "\x00"))
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

// uniformNames lists every uniform the PBR program declares.
func uniformNames(p *renderer.Program) []string {
	names := []string{
		renderer.UniformAlbedo,
		renderer.UniformRoughness,
		renderer.UniformMetallic,
		renderer.UniformLocalToProjection,
		renderer.UniformModel,
		renderer.UniformCameraPosition,
		renderer.UniformPonctual,
	}
	for i := 0; i < p.LightCount; i++ {
		names = append(names,
			renderer.LightUniform(i, "positionWS"),
			renderer.LightUniform(i, "color"),
			renderer.LightUniform(i, "intensity"))
	}
	for _, s := range renderer.Slots() {
		names = append(names, s.Uniform())
	}
	return names
}

func linkProgram(p *renderer.Program) (*glProgram, error) {
	id, err := newProgram(p.VertexSource, p.FragmentSource)
	if err != nil {
		return nil, err
	}
	prog := &glProgram{id: id, locations: map[string]int32{}}
	for _, name := range uniformNames(p) {
		prog.locations[name] = gl.GetUniformLocation(id, gl.Str(name+"\x00"))
	}

	// Sampler units never change: slot i reads texture unit i.
	gl.UseProgram(id)
	for i, s := range renderer.Slots() {
		gl.Uniform1i(prog.location(s.Uniform()), int32(i))
	}
	gl.UseProgram(0)
	return prog, nil
}

// location returns -1 for uniforms the compiler optimised out; GL ignores
// writes to -1.
func (p *glProgram) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	return -1
}
