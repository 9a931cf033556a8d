package raster

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	seaLevel     = 0.52
	polarCapLat  = 0.78 // Normalized |latitude| where caps begin
	oceanLakes   = 30
	cloudOpacity = 0.7
)

var (
	snow  = colorful.Color{R: 0.95, G: 0.96, B: 0.98}
	cloud = colorful.Color{R: 1, G: 1, B: 1}
)

// paintOcean splits the surface into continents and water, adds polar caps,
// inland lakes and a cloud layer. Primary is land, Secondary is water.
func paintOcean(c *canvas) {
	land := c.fractal(401, 5, 0.6)
	clouds := c.fractal(402, 4, 1.5)
	caps := c.fractal(403, 3, 3)
	deep := c.palette.Secondary.BlendRgb(colorful.Color{}, 0.45)

	elevation := make([]float32, c.w*c.h)
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			nx, ny := c.noiseXY(x, y)
			e := land.Seamless(nx, ny, c.period)
			elevation[y*c.w+x] = float32(e)
			if e < seaLevel {
				depth := smoothstep(seaLevel, seaLevel-0.2, e)
				c.set(x, y, c.palette.Secondary.BlendRgb(deep, depth))
				continue
			}
			// Beaches and lowlands stay close to the base, highlands brighten
			c.mix(x, y, c.palette.Primary.BlendRgb(snow, 0.2), smoothstep(seaLevel+0.15, seaLevel+0.35, e)*0.6)
		}
	}

	for i := 0; i < oceanLakes; i++ {
		s, ok := c.place(0.004 + 0.008*c.rng.Float64())
		if !ok {
			continue
		}
		cx, cy := int(s.x)%c.w, int(s.y)
		if cy >= c.h || elevation[cy*c.w+cx] < seaLevel+0.04 {
			continue
		}
		c.stamp(s, func(x, y int, d, _, _ float64) {
			c.mix(x, y, c.palette.Secondary, smoothstep(1, 0.6, d))
		})
	}

	for y := 0; y < c.h; y++ {
		absLat := math.Abs(0.5-c.v(y)) * 2
		for x := 0; x < c.w; x++ {
			nx, ny := c.noiseXY(x, y)
			edge := polarCapLat + (caps.Seamless(nx, ny, c.period)-0.5)*0.12
			c.mix(x, y, snow, smoothstep(edge, edge+0.04, absLat))

			cl := clouds.Seamless(nx, ny, c.period)
			c.mix(x, y, cloud, smoothstep(0.55, 0.75, cl)*cloudOpacity)
		}
	}
}
