package particles

import (
	"math"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

// DustParams configures a thin dust lane disk.
type DustParams struct {
	Count         int
	Radius        float64
	Thickness     float64 // Vertical sigma
	Color         colorful.Color
	Size          float64
	RotationSpeed float64
	Seed          int64
}

// DefaultDustParams returns a dark brown lane matching the default galaxy.
func DefaultDustParams() DustParams {
	return DustParams{
		Count:         4000,
		Radius:        45,
		Thickness:     0.6,
		Color:         colorful.Color{R: 0.24, G: 0.16, B: 0.11},
		Size:          1.2,
		RotationSpeed: 0.04,
		Seed:          17,
	}
}

// WithDefaults fills zero or invalid fields.
func (p DustParams) WithDefaults() DustParams {
	d := DefaultDustParams()
	if p.Count < 0 {
		p.Count = 0
	}
	if p.Radius <= 0 {
		p.Radius = d.Radius
	}
	if p.Thickness <= 0 {
		p.Thickness = d.Thickness
	}
	if p.Color == (colorful.Color{}) {
		p.Color = d.Color
	}
	if p.Size <= 0 {
		p.Size = d.Size
	}
	return p
}

// Dust is a generated dust lane.
type Dust struct {
	*Buffer
	Radii  []float32
	Params DustParams
}

// GenerateDust places particles uniformly by area on a thin disk. Dust
// nearer the centre rotates faster, like the stars it sits among.
func GenerateDust(p DustParams) *Dust {
	p = p.WithDefaults()
	rng := rand.New(rand.NewSource(p.Seed))
	d := &Dust{Buffer: NewBuffer(p.Count), Radii: make([]float32, p.Count), Params: p}
	for i := 0; i < p.Count; i++ {
		r := math.Sqrt(rng.Float64()) * p.Radius
		theta := 2 * math.Pi * rng.Float64()
		d.SetPosition(i, r3.Vec{X: math.Cos(theta) * r, Y: rng.NormFloat64() * p.Thickness, Z: math.Sin(theta) * r})
		d.SetColor(i, scaleColor(p.Color, 0.6+0.4*rng.Float64()))
		d.Sizes[i] = float32(p.Size * (0.5 + rng.Float64()))
		d.Radii[i] = float32(r)
	}
	d.Validate()
	return d
}

// Update applies differential rotation for dt seconds.
func (d *Dust) Update(dt float64) {
	rotateY(d.Buffer, dt, func(i int) float64 {
		return d.Params.RotationSpeed * 1.1 / (0.1 + float64(d.Radii[i])/d.Params.Radius)
	})
}
