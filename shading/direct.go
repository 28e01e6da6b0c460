package shading

import (
	"github.com/chewxy/math32"

	"pbr-viewer/math"
)

const (
	// specularEpsilon keeps the Cook-Torrance denominator away from zero.
	specularEpsilon = 1e-6

	// minRoughness is the lowest roughness for which float32 GGX stays
	// finite at N·H = 1 and the Smith k term stays non-zero. It equals the
	// smoothest sphere in the demo grids.
	minRoughness = 0.025
)

// DirectRadiance sums the Cook-Torrance contribution of every light at pos.
// n and v must be unit length and albedo linear. The result is unclamped HDR.
//
// Attenuation is a plain inverse square; a light sitting exactly on the
// surface produces a non-finite result.
func DirectRadiance(pos, n, v, albedo math.Vec3, roughness, metallic float32, lights []Light) math.Vec3 {
	roughness = math32.Max(roughness, minRoughness)
	f0 := BaseReflectance(albedo, metallic)
	nDotV := math32.Max(n.Dot(v), 0)

	lo := math.Vec3Zero
	for _, light := range lights {
		toLight := light.Position.Sub(pos)
		l := toLight.Normalize()
		h := l.Add(v).Normalize()

		distance := toLight.Length()
		attenuation := 1 / (distance * distance)
		radiance := light.Color.Mul(light.Intensity * attenuation)

		nDotL := math32.Max(n.Dot(l), 0)
		d := DistributionGGX(math32.Max(n.Dot(h), 0), roughness)
		g := GeometrySmith(nDotV, nDotL, roughness)
		f := FresnelSchlick(math32.Max(h.Dot(v), 0), f0)

		specular := f.Mul(d * g / (4*nDotV*nDotL + specularEpsilon))
		kd := DiffuseWeight(f, metallic, albedo)

		lo = lo.Add(kd.Add(f.MulVec(specular)).MulVec(radiance).Mul(nDotL))
	}
	return lo
}
