// Package renderer draws textures, particle buffers and orbit state with raylib.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/orrery/camera"
	"github.com/pthm-cable/orrery/raster"
)

// Texture is an uploaded raster with the sampling modes it was produced with.
type Texture struct {
	rl.Texture2D
	WrapS, WrapT raster.WrapMode
	Name         string
}

// TextureSink uploads rasters as GPU textures, one per file name. It must be
// used from the thread that created the raylib window.
type TextureSink struct {
	textures map[string]*Texture
	last     string
}

// NewTextureSink creates an empty sink.
func NewTextureSink() *TextureSink {
	return &TextureSink{textures: make(map[string]*Texture)}
}

// Upload implements raster.Sink. Re-uploading a raster of the same name and
// size updates the texture in place.
func (s *TextureSink) Upload(r *raster.Raster) error {
	name := raster.FileName(r)
	pixels := rgbaPixels(r)

	if t, ok := s.textures[name]; ok && int(t.Width) == r.Width && int(t.Height) == r.Height {
		rl.UpdateTexture(t.Texture2D, pixels)
		s.last = name
		return nil
	} else if ok {
		rl.UnloadTexture(t.Texture2D)
	}

	img := rl.GenImageColor(r.Width, r.Height, rl.Black)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.UpdateTexture(tex, pixels)
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	// raylib applies one wrap mode to both axes. Longitude must repeat; the
	// preview never samples past the poles, so repeat is safe vertically.
	rl.SetTextureWrap(tex, rl.WrapRepeat)

	s.textures[name] = &Texture{Texture2D: tex, WrapS: r.WrapS, WrapT: r.WrapT, Name: name}
	s.last = name
	return nil
}

// Last returns the most recently uploaded texture.
func (s *TextureSink) Last() (*Texture, bool) {
	t, ok := s.textures[s.last]
	return t, ok
}

// Unload frees every texture.
func (s *TextureSink) Unload() {
	for name, t := range s.textures {
		rl.UnloadTexture(t.Texture2D)
		delete(s.textures, name)
	}
	s.last = ""
}

func rgbaPixels(r *raster.Raster) []color.RGBA {
	pixels := make([]color.RGBA, r.Width*r.Height)
	for i := range pixels {
		p := r.Pix[4*i : 4*i+4]
		pixels[i] = color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
	}
	return pixels
}

// DrawEquirect draws the part of t that cam sees into dst. The camera's map
// size is in texture pixels; views across the u=0/u=1 seam sample the
// repeated texture.
func DrawEquirect(t *Texture, dst rl.Rectangle, cam *camera.Map) {
	sx := float32(t.Width) / cam.MapW
	sy := float32(t.Height) / cam.MapH
	x, y, w, h := cam.Source()
	rl.DrawTexturePro(
		t.Texture2D,
		rl.Rectangle{X: x * sx, Y: y * sy, Width: w * sx, Height: h * sy},
		dst,
		rl.Vector2{X: 0, Y: 0},
		0,
		rl.White,
	)
}
