package shading

import (
	"github.com/chewxy/math32"

	"pbr-viewer/math"
)

// Pi matches the literal compiled into the fragment program.
const Pi = 3.14159265359

// dielectricF0 is the base reflectance used for every non-metal.
var dielectricF0 = math.Splat3(0.04)

// BaseReflectance blends the dielectric F0 toward the albedo by metalness.
func BaseReflectance(albedo math.Vec3, metallic float32) math.Vec3 {
	return dielectricF0.Lerp(albedo, metallic)
}

// DistributionGGX is the Trowbridge-Reitz normal distribution with
// alpha = roughness².
func DistributionGGX(nDotH, roughness float32) float32 {
	a := roughness * roughness
	a2 := a * a
	d := nDotH*nDotH*(a2-1) + 1
	return a2 / (Pi * d * d)
}

// GeometrySchlickGGX is the single-direction Smith term for a given k.
func GeometrySchlickGGX(nDotX, k float32) float32 {
	return nDotX / (nDotX*(1-k) + k)
}

// GeometrySmith combines view and light occlusion with k = roughness²/2.
func GeometrySmith(nDotV, nDotL, roughness float32) float32 {
	k := roughness * roughness / 2
	return GeometrySchlickGGX(nDotV, k) * GeometrySchlickGGX(nDotL, k)
}

func schlickWeight(cosTheta float32) float32 {
	return math32.Pow(math.Clamp(1-cosTheta, 0, 1), 5)
}

// FresnelSchlick returns the reflectance at the given half-vector angle.
func FresnelSchlick(cosTheta float32, f0 math.Vec3) math.Vec3 {
	return f0.Add(f0.OneMinus().Mul(schlickWeight(cosTheta)))
}

// FresnelSchlickRoughness damps the grazing-angle boost for rough surfaces.
func FresnelSchlickRoughness(cosTheta float32, f0 math.Vec3, roughness float32) math.Vec3 {
	peak := math.Splat3(1 - roughness).Max(f0)
	return f0.Add(peak.Sub(f0).Mul(schlickWeight(cosTheta)))
}

// DiffuseWeight is the energy left for diffuse: (1-F)(1-metallic)·albedo.
func DiffuseWeight(f math.Vec3, metallic float32, albedo math.Vec3) math.Vec3 {
	return f.OneMinus().Mul(1 - metallic).MulVec(albedo)
}
