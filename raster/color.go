package raster

import (
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette is the base color pair of a body. Single-color palettes use the
// same color for both entries.
type Palette struct {
	Primary   colorful.Color
	Secondary colorful.Color
}

// Gray is the neutral fallback palette.
var Gray = Palette{
	Primary:   colorful.Color{R: 0.6, G: 0.6, B: 0.6},
	Secondary: colorful.Color{R: 0.36, G: 0.36, B: 0.36},
}

// Solid returns a single-color palette.
func Solid(c colorful.Color) Palette {
	return Palette{Primary: c, Secondary: c}
}

// ParsePalette parses "#rrggbb" or "#rrggbb,#rrggbb".
func ParsePalette(s string) (Palette, error) {
	parts := strings.Split(s, ",")
	if len(parts) == 0 || len(parts) > 2 {
		return Palette{}, fmt.Errorf("palette %q: want one or two hex colors", s)
	}
	primary, err := colorful.Hex(strings.TrimSpace(parts[0]))
	if err != nil {
		return Palette{}, fmt.Errorf("palette %q: %w", s, err)
	}
	if len(parts) == 1 {
		return Solid(primary), nil
	}
	secondary, err := colorful.Hex(strings.TrimSpace(parts[1]))
	if err != nil {
		return Palette{}, fmt.Errorf("palette %q: %w", s, err)
	}
	return Palette{Primary: primary, Secondary: secondary}, nil
}

// Mix interpolates linearly from Primary (t=0) to Secondary (t=1).
func (p Palette) Mix(t float64) colorful.Color {
	return p.Primary.BlendRgb(p.Secondary, clamp01(t))
}

// String formats the palette as hex.
func (p Palette) String() string {
	return p.Primary.Hex() + "," + p.Secondary.Hex()
}

// toRGBA quantizes a float color to opaque RGBA8.
func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}
