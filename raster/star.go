package raster

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	starSunspots  = 14
	starFlares    = 24
	umbraFraction = 0.4
)

// paintStar layers granulation cells, radial flares and sunspots over the
// base layer.
func paintStar(c *canvas) {
	hot := colorful.Color{R: 1, G: 0.97, B: 0.85}
	cells := c.fractal(101, 4, 4)
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			nx, ny := c.noiseXY(x, y)
			t := cells.Turbulence(nx, ny, c.period)
			// Bright cell centers, darker intergranular lanes
			c.mix(x, y, c.palette.Secondary, smoothstep(0.35, 0.05, t)*0.5)
			c.mix(x, y, hot, smoothstep(0.55, 0.9, t)*0.35)
		}
	}

	for i := 0; i < starFlares; i++ {
		s, ok := c.place(0.02 + 0.04*c.rng.Float64())
		if !ok {
			continue
		}
		rays := 5 + c.rng.Intn(6)
		phase := c.rng.Float64() * 2 * math.Pi
		c.stamp(s, func(x, y int, d, dx, dy float64) {
			a := math.Atan2(dy, dx)
			ray := math.Pow(math.Abs(math.Cos(a*float64(rays)/2+phase)), 8)
			glow := (1 - d) * (1 - d)
			c.mix(x, y, hot, glow*(0.3+0.7*ray)*0.8)
		})
	}

	for i := 0; i < starSunspots; i++ {
		s, ok := c.place(0.008 + 0.02*c.rng.Float64())
		if !ok {
			continue
		}
		c.stamp(s, func(x, y int, d, _, _ float64) {
			if d < umbraFraction {
				// Umbra: uniformly dark core with a soft edge
				c.scaleBy(x, y, 0.25+0.15*smoothstep(0, umbraFraction, d))
				return
			}
			t := (d - umbraFraction) / (1 - umbraFraction)
			c.scaleBy(x, y, 0.55+0.45*smoothstep(0, 1, t))
		})
	}
}
