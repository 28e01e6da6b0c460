package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"pbr-viewer/core"
)

// PanelState is the control panel record read at the start of every frame.
// Colours are 0-255 per channel; albedo is sRGB.
type PanelState struct {
	Albedo   [3]uint8 `toml:"albedo" yaml:"albedo"`
	Sky      [3]uint8 `toml:"sky" yaml:"sky"`
	Ponctual bool     `toml:"ponctual" yaml:"ponctual"`
	Hundred  bool     `toml:"hundred" yaml:"hundred"`
}

func DefaultPanel() PanelState {
	return PanelState{
		Albedo: [3]uint8{50, 220, 200},
		Sky:    [3]uint8{25, 25, 25},
	}
}

func (s PanelState) AlbedoColor() core.Color { return core.ColorFromBytes(s.Albedo) }
func (s PanelState) SkyColor() core.Color    { return core.ColorFromBytes(s.Sky) }

// Panel guards the state shared between input handlers, the file watcher
// and the frame loop.
type Panel struct {
	mu    sync.RWMutex
	state PanelState
	log   *slog.Logger
}

func NewPanel(initial PanelState, logger *slog.Logger) *Panel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Panel{state: initial, log: logger}
}

// Snapshot returns a copy of the current state.
func (p *Panel) Snapshot() PanelState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Panel) Set(s PanelState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// TogglePonctual flips between direct and image-based lighting and returns
// the new value.
func (p *Panel) TogglePonctual() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Ponctual = !p.state.Ponctual
	p.log.Info("panel", "ponctual", p.state.Ponctual)
	return p.state.Ponctual
}

// ToggleHundred flips between the 25 and 100 sphere grids.
func (p *Panel) ToggleHundred() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Hundred = !p.state.Hundred
	p.log.Info("panel", "hundred", p.state.Hundred)
	return p.state.Hundred
}

// Reload replaces the state with the [panel] section of a config file.
func (p *Panel) Reload(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	p.Set(cfg.Panel)
	p.log.Info("panel reloaded", "path", path,
		"albedo", cfg.Panel.Albedo, "sky", cfg.Panel.Sky,
		"ponctual", cfg.Panel.Ponctual, "hundred", cfg.Panel.Hundred)
	return nil
}

// Watch reloads the panel whenever the config file is written. It returns
// once the watcher is installed; watching stops when ctx is cancelled.
// The parent directory is watched so editors that replace the file by
// rename are picked up too.
func (p *Panel) Watch(ctx context.Context, path string) error {
	path = filepath.Clean(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %q: %w", path, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := p.Reload(path); err != nil {
					p.log.Warn("panel reload failed", "path", path, "err", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				p.log.Warn("config watcher", "err", err)
			}
		}
	}()
	return nil
}
