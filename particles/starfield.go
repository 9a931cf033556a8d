package particles

import (
	"math"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

// MaxStarLayers is the number of depth bands (near, mid, far).
const MaxStarLayers = 3

// StarLayer is one depth band of background stars.
type StarLayer struct {
	Name           string
	Count          int
	InnerRadius    float64
	OuterRadius    float64
	MinBrightness  float64
	MaxBrightness  float64
	Size           float64
	TwinkleSpeedLo float64 // Radians per second
	TwinkleSpeedHi float64
}

// StarFieldParams configures a star field of 1-3 layers.
type StarFieldParams struct {
	Layers []StarLayer
	Seed   int64
}

// DefaultStarFieldParams returns near, mid and far layers.
func DefaultStarFieldParams() StarFieldParams {
	return StarFieldParams{
		Seed: 3,
		Layers: []StarLayer{
			{Name: "near", Count: 1500, InnerRadius: 300, OuterRadius: 400, MinBrightness: 0.7, MaxBrightness: 1, Size: 2, TwinkleSpeedLo: 1, TwinkleSpeedHi: 3},
			{Name: "mid", Count: 3000, InnerRadius: 400, OuterRadius: 600, MinBrightness: 0.45, MaxBrightness: 0.8, Size: 1.4, TwinkleSpeedLo: 0.5, TwinkleSpeedHi: 2},
			{Name: "far", Count: 5000, InnerRadius: 600, OuterRadius: 900, MinBrightness: 0.2, MaxBrightness: 0.5, Size: 1, TwinkleSpeedLo: 0.2, TwinkleSpeedHi: 1},
		},
	}
}

// Star tints, from hot to cool.
var starTints = []colorful.Color{
	{R: 0.67, G: 0.75, B: 1},
	{R: 0.92, G: 0.94, B: 1},
	{R: 1, G: 1, B: 1},
	{R: 1, G: 0.96, B: 0.84},
	{R: 1, G: 0.82, B: 0.63},
}

// StarField is a layered star field with per-star twinkle parameters.
type StarField struct {
	*Buffer
	Base    []float32 // Untwinkled colors, rgb triples
	Phase   []float32
	Speed   []float32
	Layer   []uint8
	Layers  []StarLayer
	elapsed float64
}

// GenerateStarField fills each layer's spherical shell uniformly by volume.
// Layers beyond MaxStarLayers are ignored; no layers selects the defaults.
func GenerateStarField(p StarFieldParams) *StarField {
	if len(p.Layers) == 0 {
		p.Layers = DefaultStarFieldParams().Layers
	}
	if len(p.Layers) > MaxStarLayers {
		p.Layers = p.Layers[:MaxStarLayers]
	}
	// Normalized below; the caller's slice stays as given.
	p.Layers = append([]StarLayer(nil), p.Layers...)

	total := 0
	for i := range p.Layers {
		l := &p.Layers[i]
		if l.Count < 0 {
			l.Count = 0
		}
		if l.OuterRadius < l.InnerRadius {
			l.InnerRadius, l.OuterRadius = l.OuterRadius, l.InnerRadius
		}
		if l.MaxBrightness < l.MinBrightness {
			l.MinBrightness, l.MaxBrightness = l.MaxBrightness, l.MinBrightness
		}
		total += l.Count
	}

	rng := rand.New(rand.NewSource(p.Seed))
	s := &StarField{
		Buffer: NewBuffer(total),
		Base:   make([]float32, 3*total),
		Phase:  make([]float32, total),
		Speed:  make([]float32, total),
		Layer:  make([]uint8, total),
		Layers: p.Layers,
	}

	i := 0
	for li, l := range p.Layers {
		in3 := l.InnerRadius * l.InnerRadius * l.InnerRadius
		out3 := l.OuterRadius * l.OuterRadius * l.OuterRadius
		for n := 0; n < l.Count; n++ {
			r := math.Cbrt(lerp(in3, out3, rng.Float64()))
			s.SetPosition(i, r3.Scale(r, unitSphere(rng)))

			tint := starTints[rng.Intn(len(starTints))]
			b := lerp(l.MinBrightness, l.MaxBrightness, rng.Float64())
			s.SetColor(i, scaleColor(tint, b))
			copy(s.Base[3*i:3*i+3], s.Colors[3*i:3*i+3])

			s.Sizes[i] = float32(l.Size * (0.5 + rng.Float64()))
			s.Phase[i] = float32(rng.Float64() * 2 * math.Pi)
			s.Speed[i] = float32(lerp(l.TwinkleSpeedLo, l.TwinkleSpeedHi, rng.Float64()))
			s.Layer[i] = uint8(li)
			i++
		}
	}

	s.Validate()
	return s
}

// TwinkleFactor is the brightness multiplier at elapsed seconds, in [0.4, 1].
func TwinkleFactor(elapsed, speed, phase float64) float64 {
	return math.Sin(elapsed*speed+phase)*0.3 + 0.7
}

// Twinkle sets every color to its base color times the twinkle factor at
// elapsed seconds. The result depends only on elapsed, not on call count.
func (s *StarField) Twinkle(elapsed float64) {
	s.elapsed = elapsed
	for i := 0; i < s.Len(); i++ {
		f := float32(TwinkleFactor(elapsed, float64(s.Speed[i]), float64(s.Phase[i])))
		s.Colors[3*i] = s.Base[3*i] * f
		s.Colors[3*i+1] = s.Base[3*i+1] * f
		s.Colors[3*i+2] = s.Base[3*i+2] * f
	}
}

// Elapsed returns the time of the last Twinkle.
func (s *StarField) Elapsed() float64 { return s.elapsed }

// Update advances the twinkle clock by dt seconds.
func (s *StarField) Update(dt float64) { s.Twinkle(s.elapsed + dt) }
