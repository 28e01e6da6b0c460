package renderer

import (
	"pbr-viewer/math"
	"pbr-viewer/scene"
	"pbr-viewer/shading"
)

// TextureSlot names one sampler of the program.
type TextureSlot int

const (
	SlotBRDF TextureSlot = iota
	SlotDiffuse
	SlotSpecular

	slotCount
)

var slotUniforms = [slotCount]string{
	SlotBRDF:     "p_texture",
	SlotDiffuse:  "d_texture",
	SlotSpecular: "s_texture",
}

// Slots lists every texture slot in texture-unit order.
func Slots() []TextureSlot {
	return []TextureSlot{SlotBRDF, SlotDiffuse, SlotSpecular}
}

// Uniform returns the sampler name in the GLSL program.
func (s TextureSlot) Uniform() string {
	return slotUniforms[s]
}

func (s TextureSlot) String() string {
	switch s {
	case SlotBRDF:
		return "brdf"
	case SlotDiffuse:
		return "diffuse"
	case SlotSpecular:
		return "specular"
	default:
		return "unknown"
	}
}

// TextureSet binds textures to slots. A nil entry is an unset slot.
type TextureSet [slotCount]*scene.Texture

func (t TextureSet) Get(s TextureSlot) *scene.Texture { return t[s] }

// Frame holds the values shared by every draw of one frame.
type Frame struct {
	Albedo         math.Vec3 // sRGB, [0,1]
	Mode           shading.Mode
	CameraPosition math.Vec3
	ViewProjection math.Mat4
	Lights         [shading.LightCount]shading.Light
	Textures       TextureSet
}

// Uniforms is the complete input of one draw. It is passed by value so a
// draw never observes changes made after it was issued.
type Uniforms struct {
	Albedo            math.Vec3
	Roughness         float32
	Metallic          float32
	Lights            [shading.LightCount]shading.Light
	CameraPosition    math.Vec3
	Mode              shading.Mode
	LocalToProjection math.Mat4
	Model             math.Mat4
	Textures          TextureSet
}

// BuildUniforms combines the frame values with one object's material and
// transform.
func BuildUniforms(f Frame, obj *scene.GameObject) Uniforms {
	model := obj.Transform.GetMatrix()
	return Uniforms{
		Albedo:            f.Albedo,
		Roughness:         obj.Material.Roughness(),
		Metallic:          obj.Material.Metallic(),
		Lights:            f.Lights,
		CameraPosition:    f.CameraPosition,
		Mode:              f.Mode,
		LocalToProjection: model.Mul(f.ViewProjection),
		Model:             model,
		Textures:          f.Textures,
	}
}

// Ponctual reports whether the draw uses the direct-lighting path.
func (u Uniforms) Ponctual() bool {
	return u.Mode == shading.Direct
}

// ShadingParams converts the uniforms to the evaluator's input. Textures
// rejected by bound are left unset.
func (u Uniforms) ShadingParams(bound func(*scene.Texture) bool) shading.Params {
	sampler := func(s TextureSlot) shading.Sampler {
		t := u.Textures[s]
		if t == nil || (bound != nil && !bound(t)) {
			return nil
		}
		return t
	}
	return shading.Params{
		Material: shading.Material{
			Albedo:    u.Albedo,
			Roughness: u.Roughness,
			Metallic:  u.Metallic,
		},
		Lights: u.Lights,
		Env: shading.Environment{
			Diffuse:  sampler(SlotDiffuse),
			Specular: sampler(SlotSpecular),
			BRDF:     sampler(SlotBRDF),
		},
	}
}
