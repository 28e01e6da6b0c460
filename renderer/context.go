// Package renderer drives a frame: it owns the rendering-context contract,
// the per-draw uniform set and the application loop.
package renderer

import (
	"errors"

	"pbr-viewer/core"
	"pbr-viewer/scene"
)

var (
	// ErrProgramNotCompiled is returned when drawing with a program that was
	// never passed to CompileProgram.
	ErrProgramNotCompiled = errors.New("renderer: program not compiled")
	// ErrGeometryNotUploaded is returned when drawing geometry that was never
	// passed to UploadGeometry.
	ErrGeometryNotUploaded = errors.New("renderer: geometry not uploaded")
)

// Context is the graphics backend. Implementations are not safe for
// concurrent use; every call happens on the frame-loop goroutine.
type Context interface {
	UploadGeometry(g *scene.Geometry) error
	// CompileProgram fails with the backend's diagnostic when the program
	// does not compile or link.
	CompileProgram(p *Program) error
	UploadTexture(t *scene.Texture) error

	Clear()
	SetDepthTest(enabled bool)
	SetClearColor(c core.Color)
	// Resize sets the drawing-buffer size in pixels.
	Resize(width, height int)
	Size() (width, height int)

	// DrawObject draws one game object with the program and the uniforms
	// captured for this draw.
	DrawObject(obj *scene.GameObject, p *Program, u Uniforms) error
}
