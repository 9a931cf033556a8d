// Package raster synthesizes equirectangular RGBA8 surface textures for
// stars, planets and moons.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
)

// WrapMode tells the rendering host how to sample past a texture edge.
type WrapMode uint8

const (
	WrapRepeat WrapMode = iota
	WrapClampToEdge
)

// String returns the wrap mode name.
func (m WrapMode) String() string {
	switch m {
	case WrapRepeat:
		return "repeat"
	case WrapClampToEdge:
		return "clampToEdge"
	default:
		return "unknown"
	}
}

// Raster is a 2:1 equirectangular RGBA8 pixel buffer. Column u = x/Width is
// longitude and wraps; row v = y/Height is latitude and clamps.
//
// A Raster is mutated only during synthesis. Once returned it is treated as
// immutable; use Clone to obtain an independently mutable copy.
type Raster struct {
	Width, Height int
	Pix           []uint8 // RGBA, row-major, 4*Width bytes per row

	// Sampling modes the host must honor when wrapping this raster in a
	// texture object. Horizontal repeats, vertical never wraps.
	WrapS WrapMode
	WrapT WrapMode

	Kind       Kind
	Identity   string
	Resolution float64
}

// New allocates a black, opaque raster with sphere wrap modes.
func New(width, height int) *Raster {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("raster: invalid size %dx%d", width, height))
	}
	r := &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, 4*width*height),
		WrapS:  WrapRepeat,
		WrapT:  WrapClampToEdge,
	}
	for i := 3; i < len(r.Pix); i += 4 {
		r.Pix[i] = 255
	}
	return r
}

// Size returns the raster dimensions for a resolution multiplier applied to
// a base size. The result keeps the 2:1 aspect; multipliers <= 0 mean 1.0.
func Size(baseWidth, baseHeight int, resolution float64) (int, int) {
	if resolution <= 0 || math.IsNaN(resolution) {
		resolution = 1
	}
	if baseWidth <= 0 {
		baseWidth = DefaultBaseWidth
	}
	if baseHeight <= 0 {
		baseHeight = baseWidth / 2
	}
	h := int(math.Round(float64(baseHeight) * resolution))
	if h < 4 {
		h = 4
	}
	return 2 * h, h
}

// offset returns the Pix index of (x, y) with x wrapped and y clamped.
func (r *Raster) offset(x, y int) int {
	x %= r.Width
	if x < 0 {
		x += r.Width
	}
	if y < 0 {
		y = 0
	} else if y >= r.Height {
		y = r.Height - 1
	}
	return 4 * (y*r.Width + x)
}

// At returns the pixel at (x, y). Out-of-range x wraps, y clamps.
func (r *Raster) At(x, y int) color.RGBA {
	i := r.offset(x, y)
	return color.RGBA{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2], A: r.Pix[i+3]}
}

// Set writes the pixel at (x, y). Out-of-range x wraps, y clamps.
func (r *Raster) Set(x, y int, c color.RGBA) {
	i := r.offset(x, y)
	r.Pix[i] = c.R
	r.Pix[i+1] = c.G
	r.Pix[i+2] = c.B
	r.Pix[i+3] = c.A
}

// Clone returns a deep copy that shares no memory with r.
func (r *Raster) Clone() *Raster {
	c := *r
	c.Pix = make([]uint8, len(r.Pix))
	copy(c.Pix, r.Pix)
	return &c
}

// ToImage copies the raster into an *image.RGBA.
func (r *Raster) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	copy(img.Pix, r.Pix)
	return img
}

// EncodePNG writes the raster as a PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, r.ToImage()); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}
