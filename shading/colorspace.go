package shading

import (
	"github.com/chewxy/math32"

	"pbr-viewer/math"
)

// RGBMRange is the multiplier baked into the RGBM environment maps.
const RGBMRange = 6.0

// Coefficients follow three.js so the Go and GLSL paths agree bit for bit.
const (
	srgbDecodeBreak = 0.04045
	srgbEncodeBreak = 0.0031308
)

// SRGBToLinearComp removes the sRGB transfer curve from one component.
func SRGBToLinearComp(v float32) float32 {
	if v <= srgbDecodeBreak {
		return v * 0.0773993808
	}
	return math32.Pow(v*0.9478672986+0.0521327014, 2.4)
}

// LinearToSRGBComp applies the sRGB transfer curve to one component.
func LinearToSRGBComp(v float32) float32 {
	if v <= srgbEncodeBreak {
		return v * 12.92
	}
	return math32.Pow(v, 0.41666)*1.055 - 0.055
}

func SRGBToLinear(c math.Vec3) math.Vec3 {
	return math.Vec3{X: SRGBToLinearComp(c.X), Y: SRGBToLinearComp(c.Y), Z: SRGBToLinearComp(c.Z)}
}

func LinearToSRGB(c math.Vec3) math.Vec3 {
	return math.Vec3{X: LinearToSRGBComp(c.X), Y: LinearToSRGBComp(c.Y), Z: LinearToSRGBComp(c.Z)}
}

// DecodeRGBM expands a normalised RGBM texel to linear HDR colour.
func DecodeRGBM(texel math.Vec4) math.Vec3 {
	return math.Vec3{X: texel.X, Y: texel.Y, Z: texel.Z}.Mul(RGBMRange * texel.W)
}

// EncodeRGBM packs a linear colour in [0, RGBMRange] into 8-bit RGBM.
// The multiplier is rounded up so the colour channels never overflow.
func EncodeRGBM(c math.Vec3) [4]uint8 {
	c = c.Mul(1.0 / RGBMRange)
	m := math32.Max(math32.Max(c.X, c.Y), math32.Max(c.Z, 1e-6))
	m = math.Clamp(m, 0, 1)
	m = math32.Ceil(m*255) / 255
	rgb := c.Mul(1 / m).Clamp(0, 1)
	return [4]uint8{
		uint8(math32.Round(rgb.X * 255)),
		uint8(math32.Round(rgb.Y * 255)),
		uint8(math32.Round(rgb.Z * 255)),
		uint8(math32.Round(m * 255)),
	}
}

// Reinhard maps HDR radiance into [0,1): c / (c + 1).
func Reinhard(c math.Vec3) math.Vec3 {
	return c.DivVec(c.AddScalar(1))
}
