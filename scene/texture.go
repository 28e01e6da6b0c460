package scene

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/chewxy/math32"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"pbr-viewer/math"
)

// Texture holds CPU-side pixel data for a 2D texture.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels in non-premultiplied RGBA8 (4 bytes per pixel, row-major,
	// top-to-bottom). RGBM data lives in the alpha channel, so it must
	// never be premultiplied.
	Pixels []byte
}

// LoadTexture reads a PNG, JPEG, WebP or BMP file from disk.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	return DecodeTexture(path, f)
}

// DecodeTexture decodes an image stream into an RGBA8 texture.
func DecodeTexture(name string, r io.Reader) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", name, err)
	}
	return textureFromImage(name, img), nil
}

func textureFromImage(name string, img image.Image) *Texture {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	if src, ok := img.(*image.NRGBA); ok {
		// Copy rows verbatim; a generic draw would round-trip through
		// premultiplied colour and lose the low-alpha texels.
		for y := 0; y < h; y++ {
			row := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			copy(dst.Pix[y*dst.Stride:], row[:4*w])
		}
	} else {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	}

	return &Texture{
		Name:   name,
		Width:  w,
		Height: h,
		Pixels: dst.Pix,
	}
}

// NewSolidTexture creates a 1x1 texture with the given RGBA color values (0–255).
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	return &Texture{
		Name:   name,
		Width:  1,
		Height: 1,
		Pixels: []byte{r, g, b, a},
	}
}

// Texel returns the pixel at (x, y), clamped to the edges, in [0,1].
func (t *Texture) Texel(x, y int) math.Vec4 {
	x = clampInt(x, 0, t.Width-1)
	y = clampInt(y, 0, t.Height-1)
	i := (y*t.Width + x) * 4
	p := t.Pixels[i : i+4 : i+4]
	return math.Vec4{
		X: float32(p[0]) / 255,
		Y: float32(p[1]) / 255,
		Z: float32(p[2]) / 255,
		W: float32(p[3]) / 255,
	}
}

// Sample reads the texture with bilinear filtering and clamp-to-edge
// addressing. v = 0 is the first (top) row, as with an unflipped GL upload.
func (t *Texture) Sample(uv math.Vec2) math.Vec4 {
	if t == nil || t.Width == 0 || t.Height == 0 {
		return math.Vec4{}
	}
	x := uv.X*float32(t.Width) - 0.5
	y := uv.Y*float32(t.Height) - 0.5
	x0 := math32.Floor(x)
	y0 := math32.Floor(y)
	fx := x - x0
	fy := y - y0
	ix, iy := int(x0), int(y0)

	top := t.Texel(ix, iy).Lerp(t.Texel(ix+1, iy), fx)
	bottom := t.Texel(ix, iy+1).Lerp(t.Texel(ix+1, iy+1), fx)
	return top.Lerp(bottom, fy)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
