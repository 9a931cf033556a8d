package raster

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const iceCracks = 40

// paintIce adds soft mottling and long thin fracture lines.
func paintIce(c *canvas) {
	mottle := c.fractal(501, 4, 1.2)
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			nx, ny := c.noiseXY(x, y)
			c.mix(x, y, c.palette.Secondary, smoothstep(0.45, 0.75, mottle.Seamless(nx, ny, c.period))*0.5)
		}
	}

	crack := c.palette.Secondary.BlendRgb(colorful.Color{R: 0.2, G: 0.25, B: 0.35}, 0.5)
	for i := 0; i < iceCracks; i++ {
		s, ok := c.place(0.002)
		if !ok {
			continue
		}
		heading := c.rng.Float64() * 2 * math.Pi
		length := (0.05 + 0.2*c.rng.Float64()) * float64(c.h)
		width := math.Max(1, 0.0015*float64(c.h))
		// Walk the crack as a jittered polyline of small stamps
		for step := 0.0; step < length; step += width {
			heading += (c.rng.Float64() - 0.5) * 0.3
			s.x += math.Cos(heading) * width
			s.y += math.Sin(heading) * width
			if s.y < 0 || s.y >= float64(c.h) {
				break
			}
			v := s.y / float64(c.h)
			if PoleDistortion(v, c.opts.PoleBand) > maxPlacementDistortion {
				break
			}
			dot := spot{x: s.x, y: s.y, radius: width * PoleScale(v, c.opts.PoleBand), v: v}
			c.stamp(dot, func(x, y int, d, _, _ float64) {
				c.mix(x, y, crack, (1-d)*0.7)
			})
		}
	}
}
