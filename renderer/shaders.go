package renderer

import (
	"fmt"
	"strings"
)

// Uniform names shared by the GLSL program and the backends.
const (
	UniformAlbedo            = "uMaterial.albedo"
	UniformRoughness         = "uMaterial.roughness"
	UniformMetallic          = "uMaterial.metallic"
	UniformLocalToProjection = "uModel.localToProjection"
	UniformModel             = "uModel.translation"
	UniformCameraPosition    = "cameraPosition"
	UniformPonctual          = "ponctual"
)

// LightUniform returns the name of one field of light[i]: positionWS,
// color or intensity.
func LightUniform(i int, field string) string {
	return fmt.Sprintf("light[%d].%s", i, field)
}

// Program is a vertex/fragment pair. Backends compile it in CompileProgram
// and refuse to draw with it before that.
type Program struct {
	Name           string
	LightCount     int
	VertexSource   string
	FragmentSource string
}

// NewProgram generates the PBR program for a fixed number of point lights.
func NewProgram(lightCount int) *Program {
	return &Program{
		Name:           "pbr",
		LightCount:     lightCount,
		VertexSource:   vertexSource,
		FragmentSource: strings.Replace(fragmentSource, "{{LIGHT_COUNT}}", fmt.Sprint(lightCount), 1),
	}
}

const vertexSource = `#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;

struct Model {
    mat4 localToProjection;
    mat4 translation;
};
uniform Model uModel;

out vec3 vNormalWS;
out vec3 vertexPosition;
out vec2 vUv;

void main() {
    vec4 positionWS = uModel.translation * vec4(inPosition, 1.0);
    vertexPosition = positionWS.xyz;
    vNormalWS = mat3(uModel.translation) * inNormal;
    vUv = inUV;
    gl_Position = uModel.localToProjection * vec4(inPosition, 1.0);
}
`

const fragmentSource = `#version 410 core
#define LIGHT_COUNT {{LIGHT_COUNT}}
#define PI 3.14159265359
#define RECIPROCAL_PI 0.31830988618
#define RECIPROCAL_PI2 0.15915494
#define RGBM_RANGE 6.0
#define SPECULAR_LEVELS 5.0
#define IBL_EPSILON 0.001
#define MIN_ROUGHNESS 0.025

struct Material {
    vec3 albedo;
    float roughness;
    float metallic;
};

struct PointLight {
    vec3 positionWS;
    vec3 color;
    float intensity;
};

uniform Material uMaterial;
uniform PointLight light[LIGHT_COUNT];
uniform vec3 cameraPosition;
uniform bool ponctual;

uniform sampler2D d_texture;
uniform sampler2D s_texture;
uniform sampler2D p_texture;

in vec3 vNormalWS;
in vec3 vertexPosition;
in vec2 vUv;

out vec4 outFragColor;

vec3 sRGBToLinear(vec3 v) {
    vec3 lo = v * 0.0773993808;
    vec3 hi = pow(v * 0.9478672986 + vec3(0.0521327014), vec3(2.4));
    return mix(hi, lo, vec3(lessThanEqual(v, vec3(0.04045))));
}

vec3 linearToSRGB(vec3 v) {
    vec3 lo = v * 12.92;
    vec3 hi = pow(v, vec3(0.41666)) * 1.055 - vec3(0.055);
    return mix(hi, lo, vec3(lessThanEqual(v, vec3(0.0031308))));
}

vec3 RGBMToLinear(vec4 value) {
    return RGBM_RANGE * value.rgb * value.a;
}

float DistributionGGX(float NdotH, float roughness) {
    float a = roughness * roughness;
    float a2 = a * a;
    float d = NdotH * NdotH * (a2 - 1.0) + 1.0;
    return a2 / (PI * d * d);
}

float GeometrySchlickGGX(float NdotX, float k) {
    return NdotX / (NdotX * (1.0 - k) + k);
}

float GeometrySmith(float NdotV, float NdotL, float roughness) {
    float k = roughness * roughness / 2.0;
    return GeometrySchlickGGX(NdotV, k) * GeometrySchlickGGX(NdotL, k);
}

vec3 FresnelSchlick(float cosTheta, vec3 F0) {
    return F0 + (1.0 - F0) * pow(clamp(1.0 - cosTheta, 0.0, 1.0), 5.0);
}

vec3 FresnelSchlickRoughness(float cosTheta, vec3 F0, float roughness) {
    return F0 + (max(vec3(1.0 - roughness), F0) - F0) * pow(clamp(1.0 - cosTheta, 0.0, 1.0), 5.0);
}

vec2 cartesianToPolar(vec3 n) {
    vec2 uv;
    uv.x = atan(n.z, n.x) * RECIPROCAL_PI2 + 0.5;
    uv.y = asin(clamp(n.y, -1.0, 1.0)) * RECIPROCAL_PI + 0.5;
    return uv;
}

vec2 specularBandUV(vec2 uv, float level) {
    float scale = exp2(-level);
    return vec2(uv.x * scale, (1.0 - scale) + uv.y * scale * 0.5);
}

vec3 sampleSpecular(vec2 uv, float roughness) {
    float level = clamp(roughness, 0.0, 1.0) * SPECULAR_LEVELS;
    float lo = floor(level);
    float hi = min(lo + 1.0, SPECULAR_LEVELS);
    vec3 a = RGBMToLinear(texture(s_texture, specularBandUV(uv, lo)));
    vec3 b = RGBMToLinear(texture(s_texture, specularBandUV(uv, hi)));
    return mix(a, b, level - lo);
}

vec3 directRadiance(vec3 albedo, float roughness, float metallic, vec3 normal, vec3 view) {
    roughness = max(roughness, MIN_ROUGHNESS);
    vec3 F0 = mix(vec3(0.04), albedo, metallic);
    float NdotV = max(dot(normal, view), 0.0);

    vec3 Lo = vec3(0.0);
    for (int i = 0; i < LIGHT_COUNT; ++i) {
        vec3 toLight = light[i].positionWS - vertexPosition;
        vec3 L = normalize(toLight);
        vec3 H = normalize(L + view);

        float dist = length(toLight);
        float attenuation = 1.0 / (dist * dist);
        vec3 radiance = light[i].color * light[i].intensity * attenuation;

        float NdotL = max(dot(normal, L), 0.0);
        float D = DistributionGGX(max(dot(normal, H), 0.0), roughness);
        float G = GeometrySmith(NdotV, NdotL, roughness);
        vec3 F = FresnelSchlick(max(dot(H, view), 0.0), F0);

        vec3 specular = D * F * G / (4.0 * NdotV * NdotL + 1e-6);
        vec3 kd = (1.0 - F) * (1.0 - metallic) * albedo;
        Lo += (kd + F * specular) * radiance * NdotL;
    }
    return Lo;
}

vec3 imageBasedRadiance(vec3 albedo, float roughness, float metallic, vec3 normal, vec3 view) {
    roughness = max(roughness, IBL_EPSILON);
    metallic = max(metallic, IBL_EPSILON);

    float NdotV = max(dot(normal, view), 0.0);
    vec3 F0 = mix(vec3(0.04), albedo, metallic);
    vec3 F = FresnelSchlickRoughness(NdotV, F0, roughness);
    vec3 kd = (1.0 - F) * (1.0 - metallic) * albedo;

    vec3 irradiance = RGBMToLinear(texture(d_texture, cartesianToPolar(normal)));
    vec3 diffuse = kd * irradiance;

    vec3 R = reflect(-view, normal);
    vec3 prefiltered = sampleSpecular(cartesianToPolar(R), roughness);
    vec2 brdf = texture(p_texture, vec2(NdotV, roughness)).rg;
    vec3 specular = prefiltered * (F * brdf.x + brdf.y);

    return diffuse + specular;
}

void main() {
    vec3 albedo = sRGBToLinear(uMaterial.albedo);
    vec3 normal = normalize(vNormalWS);
    vec3 view = normalize(cameraPosition - vertexPosition);

    vec3 color;
    if (ponctual) {
        color = directRadiance(albedo, uMaterial.roughness, uMaterial.metallic, normal, view);
    } else {
        color = imageBasedRadiance(albedo, uMaterial.roughness, uMaterial.metallic, normal, view);
    }

    color /= color + vec3(1.0);
    outFragColor = vec4(linearToSRGB(color), 1.0);
}
`
