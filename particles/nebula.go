package particles

import (
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orrery/noise"
)

// NebulaParams configures an ellipsoidal gas cloud shaped by 3D noise.
type NebulaParams struct {
	Count         int
	Radii         r3.Vec  // Ellipsoid semi-axes
	NoiseScale    float64 // Noise frequency per unit distance
	Threshold     float64 // Minimum density, 0-1, for a sample to be kept
	InnerColor    colorful.Color
	OuterColor    colorful.Color
	Size          float64
	RotationSpeed float64
	Seed          int64
}

// DefaultNebulaParams returns a flattened pink-violet cloud.
func DefaultNebulaParams() NebulaParams {
	return NebulaParams{
		Count:         6000,
		Radii:         r3.Vec{X: 80, Y: 30, Z: 50},
		NoiseScale:    0.04,
		Threshold:     0.45,
		InnerColor:    colorful.Color{R: 1, G: 0.37, B: 0.64},
		OuterColor:    colorful.Color{R: 0.23, G: 0.16, B: 0.55},
		Size:          3,
		RotationSpeed: 0.01,
		Seed:          5,
	}
}

// WithDefaults fills zero or invalid fields.
func (p NebulaParams) WithDefaults() NebulaParams {
	d := DefaultNebulaParams()
	if p.Count < 0 {
		p.Count = 0
	}
	if p.Radii.X <= 0 || p.Radii.Y <= 0 || p.Radii.Z <= 0 {
		p.Radii = d.Radii
	}
	if p.NoiseScale <= 0 {
		p.NoiseScale = d.NoiseScale
	}
	if p.Threshold < 0 || p.Threshold >= 1 {
		p.Threshold = d.Threshold
	}
	if p.InnerColor == (colorful.Color{}) && p.OuterColor == (colorful.Color{}) {
		p.InnerColor, p.OuterColor = d.InnerColor, d.OuterColor
	}
	if p.Size <= 0 {
		p.Size = d.Size
	}
	return p
}

// Rejection attempts per requested particle before falling back to
// unconditioned samples.
const nebulaAttempts = 40

// Nebula is a generated gas cloud. Density holds each particle's noise value.
type Nebula struct {
	*Buffer
	Density []float32
	Params  NebulaParams
}

// GenerateNebula rejection-samples points inside the ellipsoid, keeping
// those where fractal simplex density exceeds the threshold. If the noise
// field is too sparse the remaining particles are placed without rejection
// so the buffer always holds Count particles.
func GenerateNebula(p NebulaParams) *Nebula {
	p = p.WithDefaults()
	rng := rand.New(rand.NewSource(p.Seed))
	field := noise.Fractal{
		Src:         noise.NewSource(noise.BasisSimplex, p.Seed),
		Octaves:     4,
		Persistence: 0.5,
		Scale:       p.NoiseScale,
	}
	n := &Nebula{Buffer: NewBuffer(p.Count), Density: make([]float32, p.Count), Params: p}

	budget := p.Count * nebulaAttempts
	for i := 0; i < p.Count; i++ {
		var pos r3.Vec
		var unit, density float64
		for {
			u := unitBall(rng)
			pos = r3.Vec{X: u.X * p.Radii.X, Y: u.Y * p.Radii.Y, Z: u.Z * p.Radii.Z}
			unit = r3.Norm(u)
			// Fade density toward the ellipsoid surface
			density = field.At3(pos.X, pos.Y, pos.Z) * (1 - 0.5*unit*unit)
			if density >= p.Threshold || budget <= 0 {
				break
			}
			budget--
		}
		n.SetPosition(i, pos)
		n.SetColor(i, scaleColor(p.InnerColor.BlendRgb(p.OuterColor, unit), 0.5+0.5*density))
		n.Sizes[i] = float32(p.Size * (0.5 + density))
		n.Density[i] = float32(density)
	}

	n.Validate()
	return n
}

// Update rotates the cloud as a rigid body.
func (n *Nebula) Update(dt float64) {
	rotateY(n.Buffer, dt, func(int) float64 { return n.Params.RotationSpeed })
}

// unitBall returns a uniformly distributed point inside the unit sphere.
func unitBall(rng *rand.Rand) r3.Vec {
	for {
		v := r3.Vec{X: 2*rng.Float64() - 1, Y: 2*rng.Float64() - 1, Z: 2*rng.Float64() - 1}
		if r3.Norm2(v) <= 1 {
			return v
		}
	}
}
