package particles

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

// GalaxyParams configures a density-wave spiral galaxy.
type GalaxyParams struct {
	Count           int
	Radius          float64
	Branches        int
	Spin            float64 // Arm twist in radians per unit radius
	Randomness      float64
	RandomnessPower float64
	WaveFrequency   float64 // Density wave frequency along the radius
	WaveAmplitude   float64
	InsideColor     colorful.Color
	OutsideColor    colorful.Color
	Size            float64
	RotationSpeed   float64 // Radians per second at the rim
	Seed            int64
}

// DefaultGalaxyParams returns a four-armed galaxy.
func DefaultGalaxyParams() GalaxyParams {
	return GalaxyParams{
		Count:           20000,
		Radius:          50,
		Branches:        4,
		Spin:            1,
		Randomness:      0.5,
		RandomnessPower: 3,
		WaveFrequency:   0.3,
		WaveAmplitude:   0.5,
		InsideColor:     colorful.Color{R: 1, G: 0.376, B: 0.188},
		OutsideColor:    colorful.Color{R: 0.106, G: 0.224, B: 0.518},
		Size:            0.6,
		RotationSpeed:   0.05,
		Seed:            7,
	}
}

// WithDefaults fills zero or invalid fields from DefaultGalaxyParams.
// Spin, Randomness and WaveAmplitude may legitimately be zero and are kept.
func (p GalaxyParams) WithDefaults() GalaxyParams {
	d := DefaultGalaxyParams()
	if p.Count < 0 {
		p.Count = 0
	}
	if p.Radius <= 0 {
		p.Radius = d.Radius
	}
	if p.Branches < 1 {
		p.Branches = d.Branches
	}
	if p.Randomness < 0 {
		p.Randomness = -p.Randomness
	}
	if p.RandomnessPower <= 0 {
		p.RandomnessPower = d.RandomnessPower
	}
	if p.WaveFrequency == 0 {
		p.WaveFrequency = d.WaveFrequency
	}
	if p.InsideColor == (colorful.Color{}) && p.OutsideColor == (colorful.Color{}) {
		p.InsideColor, p.OutsideColor = d.InsideColor, d.OutsideColor
	}
	if p.Size <= 0 {
		p.Size = d.Size
	}
	if p.RotationSpeed <= 0 {
		p.RotationSpeed = d.RotationSpeed
	}
	return p
}

// MaxRandomnessOffset bounds a particle's offset from its arm as a fraction
// of its radius: every particle lies within Radius*(1+MaxRandomnessOffset)
// of the origin.
func (p GalaxyParams) MaxRandomnessOffset() float64 {
	return math.Sqrt(3) * math.Abs(p.Randomness) * (1 + math.Abs(p.WaveAmplitude))
}

// Galaxy is a generated spiral with per-particle orbital radii for rotation.
type Galaxy struct {
	*Buffer
	Radii  []float32
	Params GalaxyParams
}

// GenerateGalaxy places particles on density-wave spiral arms. Radii follow
// pow(u, 2) so the core is denser; each particle belongs to arm i%branches
// and is twisted by radius*spin. Offsets from the arm scale with
// pow(u, randomnessPower) and with the density wave
// sin(radius*frequency + armAngle)*amplitude + 1.
func GenerateGalaxy(p GalaxyParams) *Galaxy {
	p = p.WithDefaults()
	rng := rand.New(rand.NewSource(p.Seed))
	g := &Galaxy{
		Buffer: NewBuffer(p.Count),
		Radii:  make([]float32, p.Count),
		Params: p,
	}

	maxOffset := p.MaxRandomnessOffset()
	for i := 0; i < p.Count; i++ {
		u := rng.Float64()
		radius := u * u * p.Radius
		arm := float64(i%p.Branches) / float64(p.Branches) * 2 * math.Pi
		angle := arm + radius*p.Spin

		wave := math.Sin(radius*p.WaveFrequency+arm)*p.WaveAmplitude + 1
		offset := func() float64 {
			sign := 1.0
			if rng.Float64() < 0.5 {
				sign = -1
			}
			return math.Pow(rng.Float64(), p.RandomnessPower) * sign * p.Randomness * radius * wave
		}
		off := r3.Vec{X: offset(), Y: offset() * 0.5, Z: offset()}

		pos := r3.Vec{X: math.Cos(angle)*radius + off.X, Y: off.Y, Z: math.Sin(angle)*radius + off.Z}
		g.SetPosition(i, pos)
		g.Radii[i] = float32(radius)

		// Particles hugging an arm crest read brighter
		density := 0.0
		if maxOffset > 0 && radius > 0 {
			density = 1 - math.Min(1, r3.Norm(off)/(maxOffset*radius))
		}
		if wave > 1 {
			density *= wave / (1 + math.Abs(p.WaveAmplitude))
		} else {
			density *= 0.5
		}
		col := p.InsideColor.BlendRgb(p.OutsideColor, radius/p.Radius)
		g.SetColor(i, scaleColor(col, 1+0.25*density))
		g.Sizes[i] = float32(p.Size * (0.6 + 0.8*rng.Float64()))
	}

	g.Validate()
	return g
}

// AngularSpeed returns the rotation rate at radius r. It falls with radius
// and equals RotationSpeed at the rim.
func (g *Galaxy) AngularSpeed(r float64) float64 {
	return g.Params.RotationSpeed * 1.1 / (0.1 + r/g.Params.Radius)
}

// Rotate advances differential rotation by dt seconds.
func (g *Galaxy) Rotate(dt float64) {
	rotateY(g.Buffer, dt, func(i int) float64 {
		return g.AngularSpeed(float64(g.Radii[i]))
	})
}

// Update implements Animator.
func (g *Galaxy) Update(dt float64) { g.Rotate(dt) }

// Layer bounds for GenerateLayeredGalaxy.
const (
	MinGalaxyLayers = 2
	MaxGalaxyLayers = 4
)

// GenerateLayeredGalaxy splits p.Count across 2-4 layers. Outer layers get
// fewer particles, a larger radius, less spin and a slower rotation, so
// inner structure always turns faster than outer structure. Layer counts
// sum to p.Count exactly.
//
// Spin scales down by a quarter per layer, so a zero Spin stays zero in
// every layer (straight arms); the inner-faster ordering then rests on
// RotationSpeed alone.
func GenerateLayeredGalaxy(p GalaxyParams, layers int) []*Galaxy {
	p = p.WithDefaults()
	if layers < MinGalaxyLayers {
		layers = MinGalaxyLayers
	}
	if layers > MaxGalaxyLayers {
		layers = MaxGalaxyLayers
	}

	weight := 0
	for i := 0; i < layers; i++ {
		weight += layers - i
	}
	counts := make([]int, layers)
	assigned := 0
	for i := range counts {
		counts[i] = p.Count * (layers - i) / weight
		assigned += counts[i]
	}
	counts[0] += p.Count - assigned

	out := make([]*Galaxy, layers)
	for i := 0; i < layers; i++ {
		lp := p
		t := float64(i) / float64(layers-1)
		lp.Count = counts[i]
		lp.Radius = p.Radius * lerp(0.6, 1, t)
		lp.Spin = p.Spin * (1 - 0.25*float64(i))
		lp.RotationSpeed = p.RotationSpeed * math.Pow(0.6, float64(i))
		lp.Seed = p.Seed + int64(i)*7919
		out[i] = GenerateGalaxy(lp)
	}
	return out
}

// GalaxyStrategy selects between the two galaxy models.
type GalaxyStrategy uint8

const (
	StrategyDensityWave GalaxyStrategy = iota
	StrategyDiskHalo
)

func (s GalaxyStrategy) String() string {
	if s == StrategyDiskHalo {
		return "disk_halo"
	}
	return "density_wave"
}

// ParseStrategy parses a strategy name. Empty selects the density wave.
func ParseStrategy(s string) (GalaxyStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "density_wave", "densitywave", "density-wave", "spiral":
		return StrategyDensityWave, nil
	case "disk_halo", "diskhalo", "disk-halo", "exponential":
		return StrategyDiskHalo, nil
	default:
		return StrategyDensityWave, fmt.Errorf("unknown galaxy strategy %q", s)
	}
}

// GenerateGalaxyStrategy runs the selected model. Each model reads only its
// own parameter record.
func GenerateGalaxyStrategy(s GalaxyStrategy, gp GalaxyParams, dp DiskHaloParams) Field {
	if s == StrategyDiskHalo {
		return GenerateDiskHalo(dp)
	}
	return GenerateGalaxy(gp)
}
