package main

import (
	"fmt"
	"time"

	"pbr-viewer/platform"
	"pbr-viewer/renderer"
)

const hudInterval = 500 * time.Millisecond

// HUD averages frame times and formats them with the frame stats into the
// window title.
type HUD struct {
	title   string
	elapsed time.Duration
	frames  int
}

func newHUD(title string) *HUD {
	return &HUD{title: title}
}

// Frame records one frame. It returns a new title every hudInterval.
func (h *HUD) Frame(dt time.Duration, stats renderer.FrameStats) (string, bool) {
	h.elapsed += dt
	h.frames++
	if h.elapsed < hudInterval {
		return "", false
	}
	fps := float64(h.frames) / h.elapsed.Seconds()
	h.elapsed, h.frames = 0, 0
	return fmt.Sprintf("%s | %.0f fps | %s | %d spheres, %d tris",
		h.title, fps, stats.Mode, stats.Objects, stats.Triangles), true
}

// keySource is the part of the window the keyboard reads.
type keySource interface {
	IsKeyPressed(key int) bool
}

// keyboard turns held keys into single presses.
type keyboard struct {
	src  keySource
	down map[int]bool
}

func newKeyboard(src keySource) *keyboard {
	return &keyboard{src: src, down: map[int]bool{}}
}

// Pressed reports true only on the frame the key goes down.
func (k *keyboard) Pressed(key int) bool {
	isDown := k.src.IsKeyPressed(key)
	wasDown := k.down[key]
	k.down[key] = isDown
	return isDown && !wasDown
}

var _ keySource = (*platform.Window)(nil)
