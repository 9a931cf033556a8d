package particles

import (
	"math"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

// BeltParams configures an asteroid belt annulus.
type BeltParams struct {
	Count       int
	InnerRadius float64
	OuterRadius float64
	Thickness   float64 // Full vertical extent
	BaseSpeed   float64 // Angular speed at radius 1, radians per second
	Color       colorful.Color
	Size        float64
	Seed        int64
}

// DefaultBeltParams returns a belt between the default rocky and gas orbits.
func DefaultBeltParams() BeltParams {
	return BeltParams{
		Count:       3000,
		InnerRadius: 42,
		OuterRadius: 50,
		Thickness:   1.5,
		BaseSpeed:   0.6,
		Color:       colorful.Color{R: 0.54, G: 0.48, B: 0.42},
		Size:        0.3,
		Seed:        9,
	}
}

// WithDefaults fills zero or invalid fields.
func (p BeltParams) WithDefaults() BeltParams {
	d := DefaultBeltParams()
	if p.Count < 0 {
		p.Count = 0
	}
	if p.InnerRadius <= 0 {
		p.InnerRadius = d.InnerRadius
	}
	if p.OuterRadius <= p.InnerRadius {
		p.OuterRadius = p.InnerRadius + (d.OuterRadius - d.InnerRadius)
	}
	if p.Thickness < 0 {
		p.Thickness = -p.Thickness
	}
	if p.BaseSpeed == 0 {
		p.BaseSpeed = d.BaseSpeed
	}
	if p.Color == (colorful.Color{}) {
		p.Color = d.Color
	}
	if p.Size <= 0 {
		p.Size = d.Size
	}
	return p
}

// AsteroidBelt is an annulus of orbiting rocks. Each rock keeps its own
// radius, height, angle and Kepler angular speed.
type AsteroidBelt struct {
	*Buffer
	Radii  []float32
	Height []float32
	Angle  []float64
	Speed  []float32
	Params BeltParams
}

// GenerateAsteroidBelt distributes rocks uniformly by area over the annulus.
func GenerateAsteroidBelt(p BeltParams) *AsteroidBelt {
	p = p.WithDefaults()
	rng := rand.New(rand.NewSource(p.Seed))
	b := &AsteroidBelt{
		Buffer: NewBuffer(p.Count),
		Radii:  make([]float32, p.Count),
		Height: make([]float32, p.Count),
		Angle:  make([]float64, p.Count),
		Speed:  make([]float32, p.Count),
		Params: p,
	}
	in2 := p.InnerRadius * p.InnerRadius
	out2 := p.OuterRadius * p.OuterRadius
	for i := 0; i < p.Count; i++ {
		r := math.Sqrt(lerp(in2, out2, rng.Float64()))
		b.Radii[i] = float32(r)
		b.Height[i] = float32((rng.Float64() - 0.5) * p.Thickness)
		b.Angle[i] = 2 * math.Pi * rng.Float64()
		b.Speed[i] = float32(p.BaseSpeed / math.Sqrt(r))
		b.SetColor(i, scaleColor(p.Color, 0.7+0.5*rng.Float64()))
		b.Sizes[i] = float32(p.Size * (0.4 + 1.2*rng.Float64()*rng.Float64()))
		b.place(i)
	}
	b.Validate()
	return b
}

func (b *AsteroidBelt) place(i int) {
	s, c := math.Sincos(b.Angle[i])
	r := float64(b.Radii[i])
	b.SetPosition(i, r3.Vec{X: c * r, Y: float64(b.Height[i]), Z: s * r})
}

// Update advances every rock along its orbit by dt seconds.
func (b *AsteroidBelt) Update(dt float64) {
	for i := range b.Angle {
		b.Angle[i] = math.Mod(b.Angle[i]+float64(b.Speed[i])*dt, 2*math.Pi)
		b.place(i)
	}
}
