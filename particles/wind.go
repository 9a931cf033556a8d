package particles

import (
	"math"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

// WindParams configures radial stellar wind.
type WindParams struct {
	Count      int
	EmitRadius float64 // Particles spawn on this sphere
	MaxRadius  float64 // Particles beyond it respawn
	SpeedLo    float64 // Units per second
	SpeedHi    float64
	LifetimeLo float64 // Seconds
	LifetimeHi float64
	Color      colorful.Color
	Size       float64
	Seed       int64
}

// DefaultWindParams returns a warm wind for the default star.
func DefaultWindParams() WindParams {
	return WindParams{
		Count:      800,
		EmitRadius: 6,
		MaxRadius:  90,
		SpeedLo:    8,
		SpeedHi:    20,
		LifetimeLo: 2,
		LifetimeHi: 6,
		Color:      colorful.Color{R: 1, G: 0.9, B: 0.63},
		Size:       0.4,
		Seed:       13,
	}
}

// WithDefaults fills zero or invalid fields.
func (p WindParams) WithDefaults() WindParams {
	d := DefaultWindParams()
	if p.Count < 0 {
		p.Count = 0
	}
	if p.EmitRadius <= 0 {
		p.EmitRadius = d.EmitRadius
	}
	if p.MaxRadius <= p.EmitRadius {
		p.MaxRadius = p.EmitRadius * 15
	}
	if p.SpeedHi <= 0 {
		p.SpeedLo, p.SpeedHi = d.SpeedLo, d.SpeedHi
	}
	if p.SpeedLo <= 0 || p.SpeedLo > p.SpeedHi {
		p.SpeedLo = p.SpeedHi
	}
	if p.LifetimeHi <= 0 {
		p.LifetimeLo, p.LifetimeHi = d.LifetimeLo, d.LifetimeHi
	}
	if p.LifetimeLo <= 0 || p.LifetimeLo > p.LifetimeHi {
		p.LifetimeLo = p.LifetimeHi
	}
	if p.Color == (colorful.Color{}) {
		p.Color = d.Color
	}
	if p.Size <= 0 {
		p.Size = d.Size
	}
	return p
}

// lifetimes holds the countdown shared by wind and debris particles.
type lifetimes struct {
	Life    []float32
	MaxLife []float32

	// Respawns counts particles recycled since generation.
	Respawns int
}

func newLifetimes(n int) lifetimes {
	return lifetimes{Life: make([]float32, n), MaxLife: make([]float32, n)}
}

func (l *lifetimes) reset(i int, life float64) {
	l.Life[i] = float32(life)
	l.MaxLife[i] = float32(life)
}

// fade returns the remaining life fraction of particle i.
func (l *lifetimes) fade(i int) float64 {
	if l.MaxLife[i] <= 0 {
		return 0
	}
	return math.Max(0, float64(l.Life[i]/l.MaxLife[i]))
}

// SolarWind streams particles radially away from a star.
type SolarWind struct {
	*Buffer
	lifetimes
	Velocity []float32 // xyz triples, units per second
	Params   WindParams
	rng      *rand.Rand
}

// NewSolarWind spawns every particle. Initial lifetimes are staggered so the
// stream looks continuous from the first frame.
func NewSolarWind(p WindParams) *SolarWind {
	p = p.WithDefaults()
	w := &SolarWind{
		Buffer:    NewBuffer(p.Count),
		lifetimes: newLifetimes(p.Count),
		Velocity:  make([]float32, 3*p.Count),
		Params:    p,
		rng:       rand.New(rand.NewSource(p.Seed)),
	}
	for i := 0; i < p.Count; i++ {
		w.spawn(i)
		w.Life[i] *= float32(w.rng.Float64())
		w.Sizes[i] = float32(p.Size * (0.6 + 0.8*w.rng.Float64()))
	}
	w.Validate()
	return w
}

func (w *SolarWind) spawn(i int) {
	dir := unitSphere(w.rng)
	speed := lerp(w.Params.SpeedLo, w.Params.SpeedHi, w.rng.Float64())
	w.SetPosition(i, r3.Scale(w.Params.EmitRadius, dir))
	v := r3.Scale(speed, dir)
	w.Velocity[3*i] = float32(v.X)
	w.Velocity[3*i+1] = float32(v.Y)
	w.Velocity[3*i+2] = float32(v.Z)
	w.reset(i, lerp(w.Params.LifetimeLo, w.Params.LifetimeHi, w.rng.Float64()))
	w.SetColor(i, w.Params.Color)
}

// Update moves particles by dt seconds and respawns any that have left
// MaxRadius or run out of life.
func (w *SolarWind) Update(dt float64) {
	max2 := w.Params.MaxRadius * w.Params.MaxRadius
	for i := 0; i < w.Len(); i++ {
		w.Positions[3*i] += w.Velocity[3*i] * float32(dt)
		w.Positions[3*i+1] += w.Velocity[3*i+1] * float32(dt)
		w.Positions[3*i+2] += w.Velocity[3*i+2] * float32(dt)
		w.Life[i] -= float32(dt)

		if w.Life[i] <= 0 || r3.Norm2(w.Position(i)) > max2 {
			w.spawn(i)
			w.Respawns++
			continue
		}
		w.SetColor(i, scaleColor(w.Params.Color, w.fade(i)))
	}
}

// DebrisParams configures a ring of short-lived orbiting fragments.
type DebrisParams struct {
	Count      int
	Radius     float64
	Width      float64 // Radial spread around Radius
	Speed      float64 // Angular speed at Radius, radians per second
	Drift      float64 // Outward drift, units per second
	MaxRadius  float64
	LifetimeLo float64
	LifetimeHi float64
	Color      colorful.Color
	Size       float64
	Seed       int64
}

// DefaultDebrisParams returns a faint ring outside the default belt.
func DefaultDebrisParams() DebrisParams {
	return DebrisParams{
		Count:      600,
		Radius:     60,
		Width:      3,
		Speed:      0.08,
		Drift:      0.5,
		MaxRadius:  75,
		LifetimeLo: 4,
		LifetimeHi: 12,
		Color:      colorful.Color{R: 0.7, G: 0.65, B: 0.6},
		Size:       0.25,
		Seed:       19,
	}
}

// WithDefaults fills zero or invalid fields.
func (p DebrisParams) WithDefaults() DebrisParams {
	d := DefaultDebrisParams()
	if p.Count < 0 {
		p.Count = 0
	}
	if p.Radius <= 0 {
		p.Radius = d.Radius
	}
	if p.Width < 0 {
		p.Width = -p.Width
	}
	if p.MaxRadius <= p.Radius+p.Width {
		p.MaxRadius = p.Radius + p.Width + d.MaxRadius - d.Radius
	}
	if p.LifetimeHi <= 0 {
		p.LifetimeLo, p.LifetimeHi = d.LifetimeLo, d.LifetimeHi
	}
	if p.LifetimeLo <= 0 || p.LifetimeLo > p.LifetimeHi {
		p.LifetimeLo = p.LifetimeHi
	}
	if p.Color == (colorful.Color{}) {
		p.Color = d.Color
	}
	if p.Size <= 0 {
		p.Size = d.Size
	}
	return p
}

// DebrisRing is a ring of fragments that orbit, drift outward and fade,
// respawning back on the ring.
type DebrisRing struct {
	*Buffer
	lifetimes
	Radii  []float32
	Angle  []float64
	Params DebrisParams
	rng    *rand.Rand
}

// NewDebrisRing spawns every fragment with staggered lifetimes.
func NewDebrisRing(p DebrisParams) *DebrisRing {
	p = p.WithDefaults()
	d := &DebrisRing{
		Buffer:    NewBuffer(p.Count),
		lifetimes: newLifetimes(p.Count),
		Radii:     make([]float32, p.Count),
		Angle:     make([]float64, p.Count),
		Params:    p,
		rng:       rand.New(rand.NewSource(p.Seed)),
	}
	for i := 0; i < p.Count; i++ {
		d.spawn(i)
		d.Life[i] *= float32(d.rng.Float64())
		d.Sizes[i] = float32(p.Size * (0.5 + d.rng.Float64()))
	}
	d.Validate()
	return d
}

func (d *DebrisRing) spawn(i int) {
	d.Radii[i] = float32(d.Params.Radius + (d.rng.Float64()-0.5)*d.Params.Width)
	d.Angle[i] = 2 * math.Pi * d.rng.Float64()
	d.reset(i, lerp(d.Params.LifetimeLo, d.Params.LifetimeHi, d.rng.Float64()))
	d.place(i)
	d.SetColor(i, d.Params.Color)
}

func (d *DebrisRing) place(i int) {
	s, c := math.Sincos(d.Angle[i])
	r := float64(d.Radii[i])
	d.SetPosition(i, r3.Vec{X: c * r, Z: s * r})
}

// Update orbits, drifts and fades fragments by dt seconds, respawning those
// beyond MaxRadius or out of life.
func (d *DebrisRing) Update(dt float64) {
	for i := range d.Angle {
		r := float64(d.Radii[i])
		// Kepler falloff relative to the ring radius
		omega := d.Params.Speed * math.Sqrt(d.Params.Radius/math.Max(r, 1e-6))
		d.Angle[i] = math.Mod(d.Angle[i]+omega*dt, 2*math.Pi)
		d.Radii[i] = float32(r + d.Params.Drift*dt)
		d.Life[i] -= float32(dt)

		if d.Life[i] <= 0 || float64(d.Radii[i]) > d.Params.MaxRadius {
			d.spawn(i)
			d.Respawns++
			continue
		}
		d.place(i)
		d.SetColor(i, scaleColor(d.Params.Color, d.fade(i)))
	}
}
