// Package shading evaluates the PBR lighting model for a single fragment.
//
// The same formulas are compiled into the GLSL program used by the GPU
// backend; the Go version drives the software backend and pins the maths
// down in tests.
package shading

import (
	"fmt"

	"pbr-viewer/math"
)

// LightCount is the number of point lights the evaluator (and the generated
// fragment program) is built for. Changing it requires recompiling the program.
const LightCount = 4

// Mode selects the lighting path for a whole draw.
type Mode int

const (
	// Direct lights the surface with the point lights only.
	Direct Mode = iota
	// ImageBased lights the surface from the prefiltered environment maps.
	ImageBased
)

func (m Mode) String() string {
	switch m {
	case Direct:
		return "direct"
	case ImageBased:
		return "image-based"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ModeFromPonctual maps the control panel's boolean onto a Mode.
func ModeFromPonctual(ponctual bool) Mode {
	if ponctual {
		return Direct
	}
	return ImageBased
}

// Material holds the per-draw surface parameters. Albedo is sRGB encoded in
// [0,1], exactly as it arrives from the control panel.
type Material struct {
	Albedo    math.Vec3
	Roughness float32
	Metallic  float32
}

// Light is a point light in world space. Color is linear RGB.
type Light struct {
	Position  math.Vec3
	Color     math.Vec3
	Intensity float32
}

// Sampler reads a filtered texel. Coordinates are in [0,1]; v = 0 addresses
// the first stored image row.
type Sampler interface {
	Sample(uv math.Vec2) math.Vec4
}

// Environment bundles the image-based lighting inputs. A nil sampler is an
// unset texture slot and reads as transparent black.
type Environment struct {
	Diffuse  Sampler // RGBM equirectangular irradiance
	Specular Sampler // RGBM prefiltered radiance, mip levels packed as bands
	BRDF     Sampler // split-sum scale (r) and bias (g), indexed by (N·V, roughness)
}

// Params is everything that is constant across the fragments of one draw.
type Params struct {
	Material Material
	Lights   [LightCount]Light
	Env      Environment
}

// Fragment is the interpolated, per-pixel input. Normal and View need not
// be normalised.
type Fragment struct {
	Position math.Vec3
	Normal   math.Vec3
	View     math.Vec3
}

// Evaluate shades one fragment and returns the display colour (sRGB, [0,1]).
// The two modes never blend.
func Evaluate(mode Mode, f Fragment, p *Params) math.Vec3 {
	if mode == Direct {
		return EvaluateDirect(f, p)
	}
	return EvaluateImageBased(f, p)
}

// EvaluateDirect shades with the point lights.
func EvaluateDirect(f Fragment, p *Params) math.Vec3 {
	albedo := SRGBToLinear(p.Material.Albedo)
	lo := DirectRadiance(f.Position, f.Normal.Normalize(), f.View.Normalize(),
		albedo, p.Material.Roughness, p.Material.Metallic, p.Lights[:])
	return Finish(lo)
}

// EvaluateImageBased shades with the environment maps.
func EvaluateImageBased(f Fragment, p *Params) math.Vec3 {
	albedo := SRGBToLinear(p.Material.Albedo)
	c := ImageBasedRadiance(f.Normal.Normalize(), f.View.Normalize(),
		albedo, p.Material.Roughness, p.Material.Metallic, p.Env)
	return Finish(c)
}

// Finish applies the Reinhard operator and encodes to sRGB. Both modes use it.
func Finish(linear math.Vec3) math.Vec3 {
	return LinearToSRGB(Reinhard(linear))
}
