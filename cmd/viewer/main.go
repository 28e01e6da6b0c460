package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"pbr-viewer/config"
	"pbr-viewer/internal/opengl"
	"pbr-viewer/platform"
	"pbr-viewer/renderer"
	"pbr-viewer/scene"
	"pbr-viewer/textures"
)

func main() {
	configPath := flag.String("config", "", "config file (.toml, .yaml)")
	logLevel := flag.String("log-level", "", "override log level: debug, info, warn, error")
	flag.Parse()

	if err := run(*configPath, *logLevel); err != nil {
		fmt.Fprintln(os.Stderr, "viewer:", err)
		os.Exit(1)
	}
}

func run(configPath, logLevel string) error {
	cfg, log, err := config.Resolve(configPath, logLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	window, err := platform.NewWindow(platform.WindowConfig{
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Title:     cfg.Window.Title,
		Resizable: true,
		VSync:     cfg.Window.VSync,
	})
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()

	fbWidth, fbHeight := window.GetFramebufferSize()
	gfx, err := opengl.NewContext(fbWidth, fbHeight, log)
	if err != nil {
		return err
	}
	defer gfx.Destroy()

	sc, err := scene.LoadScene(cfg.Assets.Mesh, float32(fbWidth)/float32(max(fbHeight, 1)))
	if err != nil {
		return err
	}

	panel := config.NewPanel(cfg.Panel, log)
	if configPath != "" {
		if err := panel.Watch(ctx, configPath); err != nil {
			log.Warn("panel hot reload disabled", "err", err)
		}
	}

	app := renderer.NewApplication(gfx, sc, panel, textures.NewLoader(log), cfg.Assets, log)
	if err := app.Init(ctx); err != nil {
		return err
	}

	log.Info("controls", "P", "toggle point lights / image-based lighting",
		"H", "toggle 25 / 100 spheres", "R", "reload config", "Esc", "quit")

	keys := newKeyboard(window)
	hud := newHUD(cfg.Window.Title)
	last := time.Now()

	for !window.ShouldClose() && ctx.Err() == nil {
		window.PollEvents()

		if window.IsKeyPressed(platform.KeyEscape) {
			break
		}
		if keys.Pressed(platform.KeyP) {
			panel.TogglePonctual()
		}
		if keys.Pressed(platform.KeyH) {
			panel.ToggleHundred()
		}
		if keys.Pressed(platform.KeyR) && configPath != "" {
			if err := panel.Reload(configPath); err != nil {
				log.Warn("panel reload failed", "err", err)
			}
		}

		if window.TakeResize() {
			app.Resize(window.GetFramebufferSize())
		}

		app.Update()
		if err := app.Render(); err != nil {
			if errors.Is(err, renderer.ErrProgramNotCompiled) {
				return err
			}
			log.Error("render failed", "err", err)
		}
		window.SwapBuffers()

		now := time.Now()
		if title, ok := hud.Frame(now.Sub(last), app.Stats()); ok {
			window.SetTitle(title)
		}
		last = now
	}
	return nil
}
