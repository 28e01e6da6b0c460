package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pbr-viewer/core"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, [3]uint8{50, 220, 200}, cfg.Panel.Albedo)
	assert.Equal(t, [3]uint8{25, 25, 25}, cfg.Panel.Sky)
	assert.False(t, cfg.Panel.Ponctual)
	assert.False(t, cfg.Panel.Hundred)
	assert.Equal(t, "assets/ggx-brdf-integrated.png", cfg.Assets.BRDFLUT)
	assert.NoError(t, cfg.Validate())
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "viewer.toml", `
log_level = "debug"

[window]
width = 800
height = 600

[panel]
albedo = [255, 0, 0]
ponctual = true

[assets]
mesh = "models/bunny.glb"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, "PBR Viewer", cfg.Window.Title, "unset keys keep their defaults")
	assert.Equal(t, [3]uint8{255, 0, 0}, cfg.Panel.Albedo)
	assert.Equal(t, [3]uint8{25, 25, 25}, cfg.Panel.Sky)
	assert.True(t, cfg.Panel.Ponctual)
	assert.Equal(t, "models/bunny.glb", cfg.Assets.Mesh)
	assert.Equal(t, "assets/ggx-brdf-integrated.png", cfg.Assets.BRDFLUT)

	level, err := ParseLevel(cfg.LogLevel)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestResolve(t *testing.T) {
	cfg, log, err := Resolve("", "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.True(t, log.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, log.Enabled(context.Background(), slog.LevelDebug))

	path := writeFile(t, t.TempDir(), "viewer.yaml", "log_level: warn\n")
	cfg, log, err = Resolve(path, "debug")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "the flag wins over the file")
	assert.True(t, log.Enabled(context.Background(), slog.LevelDebug))

	_, _, err = Resolve("", "loud")
	assert.Error(t, err)
	_, _, err = Resolve(filepath.Join(t.TempDir(), "missing.toml"), "")
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "viewer.yml", `
panel:
  sky: [0, 0, 64]
  hundred: true
snapshot:
  width: 320
  height: 200
  scale: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, [3]uint8{0, 0, 64}, cfg.Panel.Sky)
	assert.True(t, cfg.Panel.Hundred)
	assert.Equal(t, 2, cfg.Snapshot.Scale)
	assert.Equal(t, 320, cfg.Snapshot.Width)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(writeFile(t, dir, "viewer.ini", "x=1"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, dir, "bad.toml", "[window\nwidth = "))
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "zero.toml", "[snapshot]\nscale = 0\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "level.toml", "log_level = \"loud\"\n"))
	assert.Error(t, err)

	// Colour channels are bytes.
	_, err = Load(writeFile(t, dir, "overflow.toml", "[panel]\nalbedo = [300, 0, 0]\n"))
	assert.Error(t, err)
}

func TestPanelColors(t *testing.T) {
	s := PanelState{Albedo: [3]uint8{255, 0, 51}, Sky: [3]uint8{0, 255, 0}}
	assert.Equal(t, core.Color{R: 1, G: 0, B: 0.2, A: 1}, s.AlbedoColor())
	assert.Equal(t, core.Color{R: 0, G: 1, B: 0, A: 1}, s.SkyColor())
}

func TestPanelToggles(t *testing.T) {
	p := NewPanel(DefaultPanel(), nil)

	assert.True(t, p.TogglePonctual())
	assert.True(t, p.Snapshot().Ponctual)
	assert.False(t, p.TogglePonctual())

	assert.True(t, p.ToggleHundred())
	snap := p.Snapshot()
	assert.True(t, snap.Hundred)

	// Snapshots are copies.
	snap.Albedo[0] = 1
	assert.Equal(t, uint8(50), p.Snapshot().Albedo[0])

	p.Set(PanelState{Sky: [3]uint8{1, 2, 3}})
	assert.Equal(t, [3]uint8{1, 2, 3}, p.Snapshot().Sky)
	assert.False(t, p.Snapshot().Hundred)
}

func TestPanelWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "viewer.toml", "[panel]\nponctual = false\n")

	p := NewPanel(DefaultPanel(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, p.Watch(ctx, path))

	writeFile(t, dir, "viewer.toml", "[panel]\nponctual = true\nalbedo = [1, 2, 3]\n")

	assert.Eventually(t, func() bool {
		s := p.Snapshot()
		return s.Ponctual && s.Albedo == [3]uint8{1, 2, 3}
	}, 5*time.Second, 20*time.Millisecond)

	// Other files in the directory are ignored.
	writeFile(t, dir, "other.toml", "[panel]\nponctual = false\n")
	time.Sleep(100 * time.Millisecond)
	assert.True(t, p.Snapshot().Ponctual)
}

func TestPanelWatchMissingDirectory(t *testing.T) {
	p := NewPanel(DefaultPanel(), nil)
	err := p.Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "viewer.toml"))
	assert.Error(t, err)
}
