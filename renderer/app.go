package renderer

import (
	"context"
	"fmt"
	"log/slog"

	"pbr-viewer/config"
	"pbr-viewer/scene"
	"pbr-viewer/shading"
	"pbr-viewer/textures"
)

// FrameStats describes the last rendered frame.
type FrameStats struct {
	Objects   int // drawn
	Culled    int // outside the view frustum
	Triangles int
	Mode      shading.Mode
}

type pendingTexture struct {
	slot TextureSlot
	path string
	ch   <-chan textures.Result
}

// Application owns the scene and drives one frame at a time: Update, then
// Render. It is not safe for concurrent use apart from the panel, which is
// read once per frame.
type Application struct {
	gfx     Context
	scene   *scene.Scene
	program *Program
	panel   *config.Panel
	loader  *textures.Loader
	assets  config.AssetsConfig
	log     *slog.Logger

	textures TextureSet
	pending  []pendingTexture
	stats    FrameStats
}

func NewApplication(gfx Context, sc *scene.Scene, panel *config.Panel, loader *textures.Loader, assets config.AssetsConfig, logger *slog.Logger) *Application {
	if logger == nil {
		logger = slog.Default()
	}
	return &Application{
		gfx:     gfx,
		scene:   sc,
		program: NewProgram(shading.LightCount),
		panel:   panel,
		loader:  loader,
		assets:  assets,
		log:     logger,
	}
}

// Init uploads the geometry, compiles the program and starts the texture
// loads. A compile failure is returned and ends the session; texture loads
// complete later through PollTextures.
func (a *Application) Init(ctx context.Context) error {
	for _, g := range a.scene.Geometries {
		if err := a.gfx.UploadGeometry(g); err != nil {
			return fmt.Errorf("upload geometry %s: %w", g.Name, err)
		}
	}

	if err := a.gfx.CompileProgram(a.program); err != nil {
		a.log.Error("shader compilation failed", "program", a.program.Name, "err", err)
		return fmt.Errorf("compile program %s: %w", a.program.Name, err)
	}

	paths := map[TextureSlot]string{
		SlotBRDF:     a.assets.BRDFLUT,
		SlotDiffuse:  a.assets.DiffuseEnv,
		SlotSpecular: a.assets.SpecularEnv,
	}
	for _, slot := range Slots() {
		path := paths[slot]
		if path == "" {
			a.log.Info("texture slot left unset", "slot", slot)
			continue
		}
		a.pending = append(a.pending, pendingTexture{
			slot: slot,
			path: path,
			ch:   a.loader.Load(ctx, path),
		})
	}
	a.log.Info("application initialised",
		"geometries", len(a.scene.Geometries), "textures_pending", len(a.pending))
	return nil
}

// PollTextures uploads every texture whose load has finished, without
// blocking. Failed loads leave their slot unset. It returns the number of
// loads still outstanding.
func (a *Application) PollTextures() int {
	remaining := a.pending[:0]
	for _, p := range a.pending {
		select {
		case res, ok := <-p.ch:
			if !ok {
				continue
			}
			a.bindTexture(p, res)
		default:
			remaining = append(remaining, p)
		}
	}
	a.pending = remaining
	return len(a.pending)
}

// WaitTextures blocks until every pending load has finished or ctx is done.
func (a *Application) WaitTextures(ctx context.Context) error {
	for _, p := range a.pending {
		select {
		case res, ok := <-p.ch:
			if ok {
				a.bindTexture(p, res)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	a.pending = nil
	return nil
}

func (a *Application) bindTexture(p pendingTexture, res textures.Result) {
	if res.Err != nil {
		a.log.Warn("texture load failed", "slot", p.slot, "path", p.path, "err", res.Err)
		return
	}
	if err := a.gfx.UploadTexture(res.Texture); err != nil {
		a.log.Warn("texture upload failed", "slot", p.slot, "path", p.path, "err", err)
		return
	}
	a.textures[p.slot] = res.Texture
	a.log.Debug("texture bound", "slot", p.slot, "path", p.path)
}

// Update runs before Render each frame.
func (a *Application) Update() {
	a.PollTextures()
}

// Resize forwards the new drawing-buffer size to the context.
func (a *Application) Resize(width, height int) {
	a.gfx.Resize(width, height)
	a.log.Debug("resized", "width", width, "height", height)
}

// Render draws the grid selected by the panel. Objects whose bounding
// sphere is outside the view frustum are skipped.
func (a *Application) Render() error {
	state := a.panel.Snapshot()

	a.gfx.SetClearColor(state.SkyColor())
	a.gfx.SetDepthTest(true)
	a.gfx.Clear()

	cam := a.scene.Camera
	if w, h := a.gfx.Size(); h > 0 {
		cam.SetParameters(float32(w) / float32(h))
	}
	cam.SetPosition(scene.DefaultCameraPosition)
	cam.Update()

	frame := Frame{
		Albedo:         state.AlbedoColor().RGB(),
		Mode:           shading.ModeFromPonctual(state.Ponctual),
		CameraPosition: cam.Position,
		ViewProjection: cam.GetViewProjectionMatrix(),
		Textures:       a.textures,
	}
	for i, l := range a.scene.Lights {
		frame.Lights[i] = l.ToShading()
	}

	frustum := scene.FrustumFromViewProjection(frame.ViewProjection)
	stats := FrameStats{Mode: frame.Mode}
	for _, obj := range a.scene.Objects(state.Hundred) {
		if centre, radius := obj.BoundingSphere(); !frustum.IntersectsSphere(centre, radius) {
			stats.Culled++
			continue
		}
		if err := a.gfx.DrawObject(obj, a.program, BuildUniforms(frame, obj)); err != nil {
			return fmt.Errorf("draw %s: %w", obj.Material.Name, err)
		}
		stats.Objects++
		stats.Triangles += obj.Geometry.TriangleCount()
	}
	a.stats = stats
	return nil
}

func (a *Application) Stats() FrameStats    { return a.stats }
func (a *Application) Textures() TextureSet { return a.textures }
func (a *Application) Program() *Program    { return a.program }
func (a *Application) Scene() *scene.Scene  { return a.scene }
