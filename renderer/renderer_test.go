package renderer

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pbr-viewer/config"
	"pbr-viewer/core"
	"pbr-viewer/math"
	"pbr-viewer/scene"
	"pbr-viewer/shading"
	"pbr-viewer/textures"
)

type drawCall struct {
	obj      *scene.GameObject
	uniforms Uniforms
}

// fakeContext records every call and enforces the upload/compile contract.
type fakeContext struct {
	width, height int
	clearColor    core.Color
	depthTest     bool
	clears        int
	compileErr    error

	geometries map[*scene.Geometry]bool
	programs   map[*Program]bool
	textures   []*scene.Texture
	draws      []drawCall
	calls      []string
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		width:      800,
		height:     400,
		geometries: map[*scene.Geometry]bool{},
		programs:   map[*Program]bool{},
	}
}

func (f *fakeContext) UploadGeometry(g *scene.Geometry) error {
	f.calls = append(f.calls, "UploadGeometry")
	f.geometries[g] = true
	return nil
}

func (f *fakeContext) CompileProgram(p *Program) error {
	f.calls = append(f.calls, "CompileProgram")
	if f.compileErr != nil {
		return f.compileErr
	}
	f.programs[p] = true
	return nil
}

func (f *fakeContext) UploadTexture(t *scene.Texture) error {
	f.calls = append(f.calls, "UploadTexture")
	f.textures = append(f.textures, t)
	return nil
}

func (f *fakeContext) Clear() {
	f.calls = append(f.calls, "Clear")
	f.clears++
}

func (f *fakeContext) SetDepthTest(enabled bool) { f.depthTest = enabled }
func (f *fakeContext) SetClearColor(c core.Color) { f.clearColor = c }
func (f *fakeContext) Resize(w, h int)            { f.width, f.height = w, h }
func (f *fakeContext) Size() (int, int)           { return f.width, f.height }

func (f *fakeContext) DrawObject(obj *scene.GameObject, p *Program, u Uniforms) error {
	if !f.programs[p] {
		return ErrProgramNotCompiled
	}
	if !f.geometries[obj.Geometry] {
		return ErrGeometryNotUploaded
	}
	f.draws = append(f.draws, drawCall{obj: obj, uniforms: u})
	return nil
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, A: 20})
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func newTestApp(t *testing.T, gfx *fakeContext, assets config.AssetsConfig) (*Application, *config.Panel) {
	t.Helper()
	panel := config.NewPanel(config.DefaultPanel(), nil)
	app := NewApplication(gfx, scene.NewDemoScene(1), panel, textures.NewLoader(nil), assets, nil)
	return app, panel
}

func TestNewProgramSources(t *testing.T) {
	p := NewProgram(shading.LightCount)
	assert.Equal(t, 4, p.LightCount)
	assert.Contains(t, p.FragmentSource, "#define LIGHT_COUNT 4\n")
	assert.NotContains(t, p.FragmentSource, "{{")

	for _, name := range []string{"uMaterial", "cameraPosition", "ponctual", "d_texture", "s_texture", "p_texture", "positionWS", "intensity"} {
		assert.Contains(t, p.FragmentSource, name)
	}
	assert.Contains(t, p.VertexSource, "localToProjection")
	assert.Contains(t, p.VertexSource, "translation")

	assert.Contains(t, NewProgram(8).FragmentSource, "#define LIGHT_COUNT 8\n")
	assert.Equal(t, "light[2].positionWS", LightUniform(2, "positionWS"))
}

func TestTextureSlots(t *testing.T) {
	assert.Equal(t, "p_texture", SlotBRDF.Uniform())
	assert.Equal(t, "d_texture", SlotDiffuse.Uniform())
	assert.Equal(t, "s_texture", SlotSpecular.Uniform())
	assert.Equal(t, "specular", SlotSpecular.String())
	assert.Len(t, Slots(), 3)
}

func TestBuildUniforms(t *testing.T) {
	obj := scene.NewGameObject(scene.NewSphereGeometry(1, 3, 2),
		core.NewTransformAt(math.NewVec3(1, 2, 3)),
		scene.NewMaterial("m", 0.25, 0.75))

	frame := Frame{
		Albedo:         math.NewVec3(0.1, 0.2, 0.3),
		Mode:           shading.Direct,
		CameraPosition: math.NewVec3(0, 0, 2),
		ViewProjection: math.Mat4Identity(),
	}
	u := BuildUniforms(frame, obj)
	assert.Equal(t, float32(0.25), u.Roughness)
	assert.Equal(t, float32(0.75), u.Metallic)
	assert.Equal(t, frame.Albedo, u.Albedo)
	assert.True(t, u.Ponctual())
	assert.Equal(t, math.NewVec3(1, 2, 3), u.Model.MulPoint(math.Vec3Zero))
	assert.Equal(t, math.NewVec3(1, 2, 3), u.LocalToProjection.MulPoint(math.Vec3Zero))

	// Uniforms are values: later edits to the material do not leak in.
	obj.Material.SetRoughness(1)
	assert.Equal(t, float32(0.25), u.Roughness)
}

func TestShadingParamsLeavesUnboundSlotsUnset(t *testing.T) {
	tex := scene.NewSolidTexture("lut", 255, 255, 255, 255)
	u := Uniforms{Textures: TextureSet{SlotBRDF: tex, SlotDiffuse: tex}}

	params := u.ShadingParams(nil)
	assert.NotNil(t, params.Env.BRDF)
	assert.NotNil(t, params.Env.Diffuse)
	assert.Nil(t, params.Env.Specular)

	params = u.ShadingParams(func(*scene.Texture) bool { return false })
	assert.Nil(t, params.Env.BRDF)
	assert.Nil(t, params.Env.Diffuse)
}

func TestInitCompileFailureIsFatal(t *testing.T) {
	gfx := newFakeContext()
	gfx.compileErr = errors.New("0:12: syntax error")
	app, _ := newTestApp(t, gfx, config.AssetsConfig{})

	err := app.Init(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
}

func TestDrawBeforeCompileFails(t *testing.T) {
	gfx := newFakeContext()
	app, _ := newTestApp(t, gfx, config.AssetsConfig{})

	err := app.Render()
	assert.ErrorIs(t, err, ErrProgramNotCompiled)
}

func TestRenderFrame(t *testing.T) {
	gfx := newFakeContext()
	app, panel := newTestApp(t, gfx, config.AssetsConfig{})
	require.NoError(t, app.Init(context.Background()))

	// Both grids' geometry is uploaded before the program is compiled.
	assert.Equal(t, []string{"UploadGeometry", "UploadGeometry", "CompileProgram"}, gfx.calls)

	require.NoError(t, app.Render())
	assert.Equal(t, 1, gfx.clears)
	assert.True(t, gfx.depthTest)
	assert.Equal(t, core.ColorFromBytes([3]uint8{25, 25, 25}), gfx.clearColor)
	require.Len(t, gfx.draws, 25)

	first := gfx.draws[0].uniforms
	assert.Equal(t, shading.ImageBased, first.Mode)
	assert.Equal(t, scene.DefaultCameraPosition, first.CameraPosition)
	assert.InDelta(t, 50.0/255, first.Albedo.X, 1e-6)
	assert.InDelta(t, 0.025, first.Roughness, 1e-6)
	assert.Equal(t, float32(0.25), first.Lights[0].Intensity)
	assert.Equal(t, float32(2), app.Scene().Camera.AspectRatio)
	assert.Equal(t, TextureSet{}, first.Textures)

	stats := app.Stats()
	assert.Equal(t, 25, stats.Objects)
	assert.Zero(t, stats.Culled)
	assert.Equal(t, 25*32*32*2, stats.Triangles)

	panel.ToggleHundred()
	panel.TogglePonctual()
	gfx.draws = nil
	require.NoError(t, app.Render())
	require.Len(t, gfx.draws, 100)
	assert.Equal(t, shading.Direct, gfx.draws[99].uniforms.Mode)
	assert.InDelta(t, 0.975, gfx.draws[99].uniforms.Metallic, 1e-6)
}

func TestResizeUpdatesAspect(t *testing.T) {
	gfx := newFakeContext()
	app, _ := newTestApp(t, gfx, config.AssetsConfig{})
	require.NoError(t, app.Init(context.Background()))

	app.Resize(300, 600)
	require.NoError(t, app.Render())
	assert.Equal(t, float32(0.5), app.Scene().Camera.AspectRatio)

	// A zero-height buffer keeps the last aspect.
	app.Resize(300, 0)
	require.NoError(t, app.Render())
	assert.Equal(t, float32(0.5), app.Scene().Camera.AspectRatio)
}

func TestRenderCullsOffscreenObjects(t *testing.T) {
	gfx := newFakeContext()
	app, _ := newTestApp(t, gfx, config.AssetsConfig{})
	require.NoError(t, app.Init(context.Background()))

	// A very narrow view only sees the centre column of the 5x5 grid.
	app.Resize(50, 1000)
	require.NoError(t, app.Render())

	stats := app.Stats()
	assert.Equal(t, 5, stats.Objects)
	assert.Equal(t, 20, stats.Culled)
	for _, d := range gfx.draws {
		assert.Zero(t, d.obj.Transform.Position.X)
	}
}

func TestTexturesArriveAsynchronously(t *testing.T) {
	dir := t.TempDir()
	assets := config.AssetsConfig{
		BRDFLUT:     writePNG(t, dir, "lut.png"),
		DiffuseEnv:  filepath.Join(dir, "missing.png"),
		SpecularEnv: writePNG(t, dir, "spec.png"),
	}
	gfx := newFakeContext()
	app, _ := newTestApp(t, gfx, assets)
	require.NoError(t, app.Init(context.Background()))

	// Frames render while the loads are in flight.
	require.NoError(t, app.Render())

	assert.Eventually(t, func() bool {
		app.Update()
		return app.PollTextures() == 0
	}, 5*time.Second, 10*time.Millisecond)

	set := app.Textures()
	assert.NotNil(t, set.Get(SlotBRDF))
	assert.Nil(t, set.Get(SlotDiffuse), "a failed load leaves the slot unset")
	assert.NotNil(t, set.Get(SlotSpecular))
	assert.Len(t, gfx.textures, 2)

	gfx.draws = nil
	require.NoError(t, app.Render())
	assert.Same(t, set.Get(SlotBRDF), gfx.draws[0].uniforms.Textures.Get(SlotBRDF))
}

func TestWaitTextures(t *testing.T) {
	dir := t.TempDir()
	assets := config.AssetsConfig{BRDFLUT: writePNG(t, dir, "lut.png")}
	gfx := newFakeContext()
	app, _ := newTestApp(t, gfx, assets)
	require.NoError(t, app.Init(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.WaitTextures(ctx))
	assert.NotNil(t, app.Textures().Get(SlotBRDF))
	assert.Equal(t, 0, app.PollTextures())
}

func TestShaderUsesSameConstantsAsEvaluator(t *testing.T) {
	src := NewProgram(shading.LightCount).FragmentSource
	assert.True(t, strings.Contains(src, "0.0773993808") && strings.Contains(src, "0.41666"))
	assert.Contains(t, src, "1e-6")
	assert.Contains(t, src, "#define RGBM_RANGE 6.0")
	assert.Contains(t, src, "roughness = max(roughness, MIN_ROUGHNESS);")
}
