package raster

import (
	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"
)

// BandStats summarizes the pixels of a latitude band.
type BandStats struct {
	Mean      colorful.Color
	LumaStdev float64 // Standard deviation of luma, 0-1
}

// Band returns statistics for rows [y0, y1). Rows are clamped to the raster.
func Band(r *Raster, y0, y1 int) BandStats {
	if y0 < 0 {
		y0 = 0
	}
	if y1 > r.Height {
		y1 = r.Height
	}
	if y1 <= y0 {
		return BandStats{}
	}

	n := (y1 - y0) * r.Width
	red := make([]float64, 0, n)
	green := make([]float64, 0, n)
	blue := make([]float64, 0, n)
	luma := make([]float64, 0, n)
	for i := 4 * y0 * r.Width; i < 4*y1*r.Width; i += 4 {
		cr := float64(r.Pix[i]) / 255
		cg := float64(r.Pix[i+1]) / 255
		cb := float64(r.Pix[i+2]) / 255
		red = append(red, cr)
		green = append(green, cg)
		blue = append(blue, cb)
		luma = append(luma, 0.2126*cr+0.7152*cg+0.0722*cb)
	}

	return BandStats{
		Mean:      colorful.Color{R: stat.Mean(red, nil), G: stat.Mean(green, nil), B: stat.Mean(blue, nil)},
		LumaStdev: stat.StdDev(luma, nil),
	}
}

// ColorDistance is the largest per-channel difference between two colors, 0-1.
func ColorDistance(a, b colorful.Color) float64 {
	d := abs(a.R - b.R)
	if g := abs(a.G - b.G); g > d {
		d = g
	}
	if bl := abs(a.B - b.B); bl > d {
		d = bl
	}
	return d
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
