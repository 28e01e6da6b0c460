package shading

import (
	"github.com/chewxy/math32"

	"pbr-viewer/math"
)

const (
	reciprocalPi  = 0.31830988618
	reciprocalPi2 = 0.15915494

	// SpecularLevels is the number of prefiltered mip levels packed into the
	// specular environment map; roughness 1 selects the last one.
	SpecularLevels = 5

	// iblEpsilon floors roughness and metallic so the prefiltered lookups
	// never hit the degenerate mirror case.
	iblEpsilon = 0.001
)

// CartesianToPolar maps a unit direction to equirectangular coordinates.
func CartesianToPolar(n math.Vec3) math.Vec2 {
	return math.Vec2{
		X: math32.Atan2(n.Z, n.X)*reciprocalPi2 + 0.5,
		Y: math32.Asin(math.Clamp(n.Y, -1, 1))*reciprocalPi + 0.5,
	}
}

// SpecularBandUV addresses mip level within the packed specular map. Level 0
// fills the top half; each following level is half the size of the previous
// one and sits in the remaining space below it.
func SpecularBandUV(uv math.Vec2, level int) math.Vec2 {
	scale := 1 / float32(uint(1)<<uint(level))
	return math.Vec2{
		X: uv.X * scale,
		Y: (1 - scale) + uv.Y*scale*0.5,
	}
}

// SampleSpecular reads the prefiltered radiance for a roughness, blending the
// two nearest packed levels.
func SampleSpecular(s Sampler, uv math.Vec2, roughness float32) math.Vec3 {
	level := math.Clamp(roughness, 0, 1) * SpecularLevels
	lo := math32.Floor(level)
	hi := math32.Min(lo+1, SpecularLevels)
	t := level - lo

	a := DecodeRGBM(sample(s, SpecularBandUV(uv, int(lo))))
	b := DecodeRGBM(sample(s, SpecularBandUV(uv, int(hi))))
	return a.Lerp(b, t)
}

// ImageBasedRadiance applies the split-sum approximation with the diffuse,
// specular and BRDF maps in env. n and v must be unit length and albedo linear.
func ImageBasedRadiance(n, v, albedo math.Vec3, roughness, metallic float32, env Environment) math.Vec3 {
	roughness = math32.Max(roughness, iblEpsilon)
	metallic = math32.Max(metallic, iblEpsilon)

	nDotV := math32.Max(n.Dot(v), 0)
	f0 := BaseReflectance(albedo, metallic)
	f := FresnelSchlickRoughness(nDotV, f0, roughness)
	kd := DiffuseWeight(f, metallic, albedo)

	irradiance := DecodeRGBM(sample(env.Diffuse, CartesianToPolar(n)))
	diffuse := kd.MulVec(irradiance)

	r := v.Negate().Reflect(n)
	prefiltered := SampleSpecular(env.Specular, CartesianToPolar(r), roughness)
	brdf := sample(env.BRDF, math.Vec2{X: nDotV, Y: roughness})
	specular := prefiltered.MulVec(f.Mul(brdf.X).AddScalar(brdf.Y))

	return diffuse.Add(specular)
}

func sample(s Sampler, uv math.Vec2) math.Vec4 {
	if s == nil {
		return math.Vec4{}
	}
	return s.Sample(uv)
}
