package noise

import "math"

// Fractal sums Octaves layers of a Source. Each layer doubles frequency and
// scales amplitude by Persistence; the sum is normalized by total amplitude
// so results stay in [0, 1] for any octave count.
type Fractal struct {
	Src         Source
	Octaves     int
	Persistence float64
	Scale       float64 // Base frequency applied to input coordinates
}

// At returns fractal noise at (x, y) in [0, 1].
func (f Fractal) At(x, y float64) float64 {
	var total, maxValue float64
	amplitude := 1.0
	frequency := 1.0
	persistence := math.Abs(f.Persistence)

	for i := 0; i < f.Octaves; i++ {
		s := f.Scale * frequency
		total += Normalize(f.Src.Eval2(x*s, y*s)) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	// Zero octaves or a degenerate series
	if maxValue == 0 {
		return 0
	}
	return clamp01(total / maxValue)
}

// At3 returns 3D fractal noise in [0, 1].
func (f Fractal) At3(x, y, z float64) float64 {
	var total, maxValue float64
	amplitude := 1.0
	frequency := 1.0
	persistence := math.Abs(f.Persistence)

	for i := 0; i < f.Octaves; i++ {
		s := f.Scale * frequency
		total += Normalize(f.Src.Eval3(x*s, y*s, z*s)) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	if maxValue == 0 {
		return 0
	}
	return clamp01(total / maxValue)
}

// Seamless returns fractal noise in [0, 1] that repeats every width units
// along x: Seamless(x, y, w) == Seamless(x+w, y, w).
//
// The x coordinate is wrapped per octave after frequency scaling. Wrapping
// once before the octave loop lets seams reappear at higher octaves.
func (f Fractal) Seamless(x, y, width float64) float64 {
	if width <= 0 {
		return f.At(x, y)
	}

	var total, maxValue float64
	amplitude := 1.0
	frequency := 1.0
	persistence := math.Abs(f.Persistence)

	for i := 0; i < f.Octaves; i++ {
		sx := Wrap(x*frequency, width)
		total += Normalize(f.Src.Eval2(sx*f.Scale, y*frequency*f.Scale)) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	if maxValue == 0 {
		return 0
	}
	return clamp01(total / maxValue)
}

// Turbulence is the seamless sum of absolute raw samples, in [0, 1].
// It produces the billowy cells used for stellar granulation.
func (f Fractal) Turbulence(x, y, width float64) float64 {
	var total, maxValue float64
	amplitude := 1.0
	frequency := 1.0
	persistence := math.Abs(f.Persistence)

	for i := 0; i < f.Octaves; i++ {
		sx := x * frequency
		if width > 0 {
			sx = Wrap(sx, width)
		}
		total += math.Abs(f.Src.Eval2(sx*f.Scale, y*frequency*f.Scale)) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	if maxValue == 0 {
		return 0
	}
	return clamp01(total / maxValue)
}

// Wrap returns ((v % width) + width) % width, always in [0, width).
func Wrap(v, width float64) float64 {
	r := math.Mod(math.Mod(v, width)+width, width)
	if r >= width {
		return 0
	}
	return r
}
