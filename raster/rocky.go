package raster

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// crateredStyle tunes the shared rocky/moon feature set.
type crateredStyle struct {
	craters    int
	minSize    float64 // Crater radius range as a fraction of height
	maxSize    float64
	maria      float64 // Maria strength, 0 disables
	roughness  float64
	peakChance float64 // Probability a crater gets a central peak
}

var (
	rockyStyle = crateredStyle{craters: 60, minSize: 0.004, maxSize: 0.03, maria: 0, roughness: 0.18, peakChance: 0.2}
	moonStyle  = crateredStyle{craters: 140, minSize: 0.003, maxSize: 0.045, maria: 0.45, roughness: 0.1, peakChance: 0.35}
)

// paintRocky applies roughness, maria and craters.
func paintRocky(c *canvas, st crateredStyle) {
	rough := c.fractal(201, 3, 8)
	maria := c.fractal(202, 3, 0.5)
	for y := 0; y < c.h; y++ {
		fade := 1 - PoleDistortion(c.v(y), c.opts.PoleBand)
		for x := 0; x < c.w; x++ {
			nx, ny := c.noiseXY(x, y)
			r := rough.Seamless(nx, ny, c.period)
			c.scaleBy(x, y, 1+(r-0.5)*2*st.roughness)
			if st.maria > 0 {
				m := smoothstep(0.55, 0.7, maria.Seamless(nx, ny, c.period))
				c.mix(x, y, c.palette.Secondary, m*st.maria*fade)
			}
		}
	}

	rim := c.palette.Primary.BlendRgb(colorful.Color{R: 1, G: 1, B: 1}, 0.35)
	for i := 0; i < st.craters; i++ {
		// Small craters are far more common than large ones
		size := st.minSize + (st.maxSize-st.minSize)*math.Pow(c.rng.Float64(), 3)
		s, ok := c.place(size)
		if !ok {
			continue
		}
		peak := c.rng.Float64() < st.peakChance
		c.stamp(s, func(x, y int, d, dx, _ float64) {
			switch {
			case d < 0.8:
				// Bowl, lit from the west: the eastern inner wall is shadowed
				shade := 0.72 + 0.1*d
				if dx > 0 {
					shade -= 0.15 * dx
				}
				c.scaleBy(x, y, shade)
				if peak && d < 0.15 {
					c.mix(x, y, rim, (1-d/0.15)*0.6)
				}
			default:
				// Raised rim, brightest on the sunward side
				t := 1 - math.Abs(d-0.9)/0.1
				c.mix(x, y, rim, t*(0.35-0.2*dx))
			}
		})
	}
}
