package raster

import "math"

// Features closer to a pole than this distortion are not placed at all.
const maxPlacementDistortion = 0.85

// PoleDistortion returns 0 outside the pole band and rises linearly to 1 at
// each pole. v is the normalized latitude coordinate, 0 at the north pole.
func PoleDistortion(v, band float64) float64 {
	if band <= 0 {
		return 0
	}
	d := math.Min(v, 1-v)
	if d >= band {
		return 0
	}
	if d < 0 {
		d = 0
	}
	return 1 - d/band
}

// PoleScale is the size multiplier for features at v: 1 away from the poles,
// shrinking to 0.5 at a pole to offset equirectangular stretching.
func PoleScale(v, band float64) float64 {
	return 1 - PoleDistortion(v, band)*0.5
}

// spot is a placed circular feature in pixel space.
type spot struct {
	x, y   float64
	radius float64
	v      float64
}

// place picks a sphere-uniform location for a feature whose nominal radius
// is sizeFrac of the raster height, shrunk near the poles. ok is false when
// the location is too close to a pole for the feature to read correctly.
func (c *canvas) place(sizeFrac float64) (s spot, ok bool) {
	u := c.rng.Float64()
	v := math.Acos(1-2*c.rng.Float64()) / math.Pi
	if PoleDistortion(v, c.opts.PoleBand) > maxPlacementDistortion {
		return spot{}, false
	}
	return spot{
		x:      u * float64(c.w),
		y:      v * float64(c.h),
		radius: sizeFrac * float64(c.h) * PoleScale(v, c.opts.PoleBand),
		v:      v,
	}, true
}

// stamp visits every pixel within s.radius of the spot center. fn receives
// the normalized distance d in [0, 1) and the offset from the center in
// radii. Columns wrap across the seam; rows outside the raster are skipped.
func (c *canvas) stamp(s spot, fn func(x, y int, d, dx, dy float64)) {
	if s.radius < 0.5 {
		return
	}
	y0 := int(math.Floor(s.y - s.radius))
	y1 := int(math.Ceil(s.y + s.radius))
	x0 := int(math.Floor(s.x - s.radius))
	x1 := int(math.Ceil(s.x + s.radius))
	if y0 < 0 {
		y0 = 0
	}
	if y1 > c.h-1 {
		y1 = c.h - 1
	}
	for y := y0; y <= y1; y++ {
		dy := (float64(y) + 0.5 - s.y) / s.radius
		for x := x0; x <= x1; x++ {
			dx := (float64(x) + 0.5 - s.x) / s.radius
			d := math.Sqrt(dx*dx + dy*dy)
			if d >= 1 {
				continue
			}
			fn(x, y, d, dx, dy)
		}
	}
}
