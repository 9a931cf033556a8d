package raster

import "math"

// BlendSeam cross-fades the left and right edge columns so that u=0 meets
// u=1 without a visible discontinuity. Column i from each edge mixes toward
// its mirror with weight 0.5*(1-i/columns); the outermost pair ends equal.
func BlendSeam(r *Raster, columns int) {
	if max := r.Width / 4; columns > max {
		columns = max
	}
	if columns < 1 {
		return
	}

	for y := 0; y < r.Height; y++ {
		base := 4 * y * r.Width
		for i := 0; i < columns; i++ {
			w := 0.5 * (1 - float64(i)/float64(columns))
			li := base + 4*i
			ri := base + 4*(r.Width-1-i)
			for c := 0; c < 3; c++ {
				left := float64(r.Pix[li+c])
				right := float64(r.Pix[ri+c])
				r.Pix[li+c] = uint8(math.Round(left*(1-w) + right*w))
				r.Pix[ri+c] = uint8(math.Round(right*(1-w) + left*w))
			}
		}
	}
}

// SeamError returns the largest per-channel difference between the first and
// last column, a direct measure of the visible wrap discontinuity.
func SeamError(r *Raster) int {
	worst := 0
	for y := 0; y < r.Height; y++ {
		li := 4 * y * r.Width
		ri := li + 4*(r.Width-1)
		for c := 0; c < 3; c++ {
			d := int(r.Pix[li+c]) - int(r.Pix[ri+c])
			if d < 0 {
				d = -d
			}
			if d > worst {
				worst = d
			}
		}
	}
	return worst
}
