// Command snapshot renders one frame of the viewer without a window and
// writes it as a PNG, optionally publishing it to S3.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nfnt/resize"

	"pbr-viewer/config"
	"pbr-viewer/internal/publish"
	"pbr-viewer/internal/softgl"
	"pbr-viewer/renderer"
	"pbr-viewer/scene"
	"pbr-viewer/textures"
)

type options struct {
	configPath string
	logLevel   string
	width      int
	height     int
	scale      int
	out        string
	ponctual   bool
	hundred    bool
	publish    bool
	envFile    string
	timeout    time.Duration

	// set holds the names of the flags given on the command line.
	set map[string]bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "snapshot:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "config file (.toml, .yaml)")
	fs.StringVar(&opts.logLevel, "log-level", "", "override log level: debug, info, warn, error")
	fs.IntVar(&opts.width, "width", 0, "output width (default from config)")
	fs.IntVar(&opts.height, "height", 0, "output height (default from config)")
	fs.IntVar(&opts.scale, "scale", 0, "supersampling factor (default from config)")
	fs.StringVar(&opts.out, "out", "", "output PNG path (default from config)")
	fs.BoolVar(&opts.ponctual, "ponctual", false, "use the point lights instead of image-based lighting")
	fs.BoolVar(&opts.hundred, "hundred", false, "render the 100-sphere grid")
	fs.BoolVar(&opts.publish, "publish", false, "upload the PNG to the configured S3 bucket")
	fs.StringVar(&opts.envFile, "env", ".env", "file with S3_* credentials")
	fs.DurationVar(&opts.timeout, "timeout", time.Minute, "limit for texture loading and upload")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// apply overrides the config with every flag that was set. The panel
// toggles follow the flag in both directions, so -ponctual=false turns off
// a mode the config file enabled.
func (o options) apply(cfg *config.Config) {
	if o.width > 0 {
		cfg.Snapshot.Width = o.width
	}
	if o.height > 0 {
		cfg.Snapshot.Height = o.height
	}
	if o.scale > 0 {
		cfg.Snapshot.Scale = o.scale
	}
	if o.out != "" {
		cfg.Snapshot.Out = o.out
	}
	if o.set["ponctual"] {
		cfg.Panel.Ponctual = o.ponctual
	}
	if o.set["hundred"] {
		cfg.Panel.Hundred = o.hundred
	}
}

func run(opts options) error {
	cfg, log, err := config.Resolve(opts.configPath, opts.logLevel)
	if err != nil {
		return err
	}
	opts.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	img, err := render(ctx, cfg, log)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	if err := os.WriteFile(cfg.Snapshot.Out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	log.Info("snapshot written", "path", cfg.Snapshot.Out,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	if !opts.publish {
		return nil
	}
	if err := publish.LoadEnv(opts.envFile); err != nil {
		return err
	}
	uploader, err := publish.NewUploader(cfg.Publish, log)
	if err != nil {
		return err
	}
	_, err = uploader.Upload(ctx, filepath.Base(cfg.Snapshot.Out), buf.Bytes())
	return err
}

// render draws one frame at Scale times the snapshot size and filters it
// down to the snapshot size.
func render(ctx context.Context, cfg config.Config, log *slog.Logger) (image.Image, error) {
	snap := cfg.Snapshot
	width, height := snap.Width*snap.Scale, snap.Height*snap.Scale

	sc, err := scene.LoadScene(cfg.Assets.Mesh, float32(width)/float32(height))
	if err != nil {
		return nil, err
	}

	gfx := softgl.NewContext(width, height, log)
	panel := config.NewPanel(cfg.Panel, log)
	app := renderer.NewApplication(gfx, sc, panel, textures.NewLoader(log), cfg.Assets, log)

	if err := app.Init(ctx); err != nil {
		return nil, err
	}
	if err := app.WaitTextures(ctx); err != nil {
		return nil, fmt.Errorf("wait for textures: %w", err)
	}
	if err := app.Render(); err != nil {
		return nil, err
	}

	stats := app.Stats()
	log.Debug("frame rendered", "mode", stats.Mode, "objects", stats.Objects, "triangles", stats.Triangles)

	img := gfx.Image()
	if snap.Scale > 1 {
		img = resize.Resize(uint(snap.Width), uint(snap.Height), img, resize.Bilinear)
	}
	return img, nil
}
