package raster

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	gasBands       = 9
	gasStormAspect = 2.2 // Storm ovals are wider than tall
)

// paintGasGiant replaces the base layer with latitude bands warped by
// turbulence, then adds one large storm oval and a few small ones.
func paintGasGiant(c *canvas) {
	warp := c.fractal(301, 4, 2)
	fine := c.fractal(302, 3, 10)
	for y := 0; y < c.h; y++ {
		lat := (0.5 - c.v(y)) * math.Pi
		for x := 0; x < c.w; x++ {
			nx, ny := c.noiseXY(x, y)
			wv := warp.Seamless(nx, ny, c.period) - 0.5
			band := 0.5 + 0.5*math.Sin(lat*gasBands+wv*2.5)
			col := c.palette.Mix(band)
			f := 0.9 + 0.2*fine.Seamless(nx, ny, c.period)
			base := c.get(x, y)
			// Keep some base brightness variation under the bands
			b := (base.R + base.G + base.B) / (c.palette.Primary.R + c.palette.Primary.G + c.palette.Primary.B + 1e-6)
			k := f * (0.85 + 0.15*b)
			c.set(x, y, colorful.Color{R: col.R * k, G: col.G * k, B: col.B * k})
		}
	}

	storm := c.palette.Secondary.BlendRgb(colorful.Color{R: 0.8, G: 0.3, B: 0.2}, 0.5)
	paintStorm(c, 0.06, storm)
	for i := 0; i < 4; i++ {
		paintStorm(c, 0.01+0.015*c.rng.Float64(), c.palette.Primary.BlendRgb(colorful.Color{R: 1, G: 1, B: 1}, 0.4))
	}
}

func paintStorm(c *canvas, size float64, col colorful.Color) {
	s, ok := c.place(size)
	if !ok {
		return
	}
	// Stamp a circle scaled horizontally and measure an elliptical distance.
	wide := s
	wide.radius *= gasStormAspect
	swirl := c.rng.Float64() * 2 * math.Pi
	c.stamp(wide, func(x, y int, _, dx, dy float64) {
		ey := dy * gasStormAspect
		d := math.Sqrt(dx*dx + ey*ey)
		if d >= 1 {
			return
		}
		a := math.Atan2(ey, dx) + d*6 + swirl
		ring := 0.75 + 0.25*math.Cos(a*2)
		c.mix(x, y, col, smoothstep(1, 0.3, d)*ring*0.85)
	})
}
