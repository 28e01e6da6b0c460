// Package textures loads and caches image files off the render thread.
package textures

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"pbr-viewer/scene"
)

// ErrEmptyPath is returned for a texture slot with no configured file.
var ErrEmptyPath = errors.New("textures: empty path")

// Result is delivered once per Load call.
type Result struct {
	Path    string
	Texture *scene.Texture
	Err     error
}

// Loader decodes textures and caches them by path.
type Loader struct {
	textures map[string]*scene.Texture
	mu       sync.RWMutex
	decode   func(path string) (*scene.Texture, error)
	log      *slog.Logger
}

// NewLoader creates a loader that reads files from disk.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		textures: make(map[string]*scene.Texture),
		decode:   scene.LoadTexture,
		log:      logger,
	}
}

// Get loads a texture synchronously, returning the cached version if available.
func (l *Loader) Get(path string) (*scene.Texture, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	l.mu.RLock()
	if tex, ok := l.textures[path]; ok {
		l.mu.RUnlock()
		return tex, nil
	}
	l.mu.RUnlock()

	tex, err := l.decode(path)
	if err != nil {
		return nil, fmt.Errorf("load texture: %w", err)
	}

	l.mu.Lock()
	if cached, ok := l.textures[path]; ok {
		tex = cached
	} else {
		l.textures[path] = tex
	}
	l.mu.Unlock()

	l.log.Debug("texture loaded", "path", path, "width", tex.Width, "height", tex.Height)
	return tex, nil
}

// Load starts decoding path in the background. The returned channel is
// buffered and receives exactly one Result, so callers may poll it without
// blocking and abandon it safely.
func (l *Loader) Load(ctx context.Context, path string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		if err := ctx.Err(); err != nil {
			out <- Result{Path: path, Err: err}
			return
		}
		tex, err := l.Get(path)
		out <- Result{Path: path, Texture: tex, Err: err}
	}()
	return out
}

// Len reports how many textures are cached.
func (l *Loader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.textures)
}

// Purge drops every cached texture.
func (l *Loader) Purge() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.textures = make(map[string]*scene.Texture)
}
