package raster

import "math"

// DefaultFadeZone is the fraction of height feathered at each pole.
const DefaultFadeZone = 0.05

// FadeRows returns the number of feathered rows at each pole.
func FadeRows(height int, fadeZone float64) int {
	n := int(math.Round(float64(height) * fadeZone))
	if max := height/2 - 1; n > max {
		n = max
	}
	if n < 0 {
		n = 0
	}
	return n
}

// FeatherPoles blends rows inside the fade zone toward the mean color of the
// first row outside it, linearly by row/fadeRows, so each pole converges on a
// single color. Row 0 (and the last row) take the boundary color exactly.
// Poles never wrap into each other: the top and bottom zones are independent.
func FeatherPoles(r *Raster, fadeZone float64) {
	n := FadeRows(r.Height, fadeZone)
	if n < 1 {
		return
	}

	top := rowMean(r, n)
	for y := 0; y < n; y++ {
		blendRow(r, y, top, float64(y)/float64(n))
	}

	boundary := r.Height - 1 - n
	bottom := rowMean(r, boundary)
	for y := boundary + 1; y < r.Height; y++ {
		d := r.Height - 1 - y
		blendRow(r, y, bottom, float64(d)/float64(n))
	}
}

// rowMean returns the mean RGB of row y.
func rowMean(r *Raster, y int) [3]float64 {
	var sum [3]float64
	row := r.Pix[4*y*r.Width : 4*(y+1)*r.Width]
	for i := 0; i < len(row); i += 4 {
		sum[0] += float64(row[i])
		sum[1] += float64(row[i+1])
		sum[2] += float64(row[i+2])
	}
	w := float64(r.Width)
	return [3]float64{sum[0] / w, sum[1] / w, sum[2] / w}
}

// blendRow sets each pixel of row y to target*(1-keep) + pixel*keep.
func blendRow(r *Raster, y int, target [3]float64, keep float64) {
	row := r.Pix[4*y*r.Width : 4*(y+1)*r.Width]
	for i := 0; i < len(row); i += 4 {
		for c := 0; c < 3; c++ {
			v := target[c]*(1-keep) + float64(row[i+c])*keep
			row[i+c] = uint8(math.Round(clampByte(v)))
		}
	}
}

func clampByte(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
