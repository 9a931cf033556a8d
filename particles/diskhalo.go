package particles

import (
	"math"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

// DiskHaloParams configures an exponential disk with a spherical halo.
type DiskHaloParams struct {
	Count         int
	Radius        float64 // Disk truncation radius
	ScaleLength   float64 // Exponential scale length h of the disk
	HaloFraction  float64 // Share of Count placed in the halo, 0-1
	DiskThickness float64 // Vertical sigma as a fraction of ScaleLength
	HaloRadius    float64
	InsideColor   colorful.Color
	OutsideColor  colorful.Color
	HaloColor     colorful.Color
	Size          float64
	Seed          int64
}

// DefaultDiskHaloParams returns a disk-dominated galaxy.
func DefaultDiskHaloParams() DiskHaloParams {
	return DiskHaloParams{
		Count:         20000,
		Radius:        50,
		ScaleLength:   12,
		HaloFraction:  0.2,
		DiskThickness: 0.08,
		HaloRadius:    70,
		InsideColor:   colorful.Color{R: 1, G: 0.85, B: 0.63},
		OutsideColor:  colorful.Color{R: 0.42, G: 0.55, B: 1},
		HaloColor:     colorful.Color{R: 0.54, G: 0.54, B: 0.63},
		Size:          0.5,
		Seed:          11,
	}
}

// WithDefaults fills zero or invalid fields.
func (p DiskHaloParams) WithDefaults() DiskHaloParams {
	d := DefaultDiskHaloParams()
	if p.Count < 0 {
		p.Count = 0
	}
	if p.Radius <= 0 {
		p.Radius = d.Radius
	}
	if p.ScaleLength <= 0 {
		p.ScaleLength = d.ScaleLength
	}
	if p.HaloFraction < 0 {
		p.HaloFraction = 0
	}
	if p.HaloFraction > 1 {
		p.HaloFraction = 1
	}
	if p.DiskThickness <= 0 {
		p.DiskThickness = d.DiskThickness
	}
	if p.HaloRadius <= 0 {
		p.HaloRadius = p.Radius * 1.4
	}
	if p.InsideColor == (colorful.Color{}) && p.OutsideColor == (colorful.Color{}) {
		p.InsideColor, p.OutsideColor = d.InsideColor, d.OutsideColor
	}
	if p.HaloColor == (colorful.Color{}) {
		p.HaloColor = d.HaloColor
	}
	if p.Size <= 0 {
		p.Size = d.Size
	}
	return p
}

// Split returns the disk and halo populations; they sum to Count exactly.
func (p DiskHaloParams) Split() (disk, halo int) {
	halo = int(math.Round(float64(p.Count) * p.HaloFraction))
	if halo > p.Count {
		halo = p.Count
	}
	return p.Count - halo, halo
}

// DiskHalo is a generated disk+halo galaxy. Disk particles come first.
type DiskHalo struct {
	*Buffer
	DiskCount int
	HaloCount int
	Params    DiskHaloParams
}

// ExponentialRadius maps u in [0, 1) to a radius in [0, maxR] distributed
// as exp(-r/h), by inverting the truncated cumulative distribution.
func ExponentialRadius(u, h, maxR float64) float64 {
	return -h * math.Log(1-u*(1-math.Exp(-maxR/h)))
}

// GenerateDiskHalo builds the two populations. The halo is dimmer and more
// uniform than the disk.
func GenerateDiskHalo(p DiskHaloParams) *DiskHalo {
	p = p.WithDefaults()
	rng := rand.New(rand.NewSource(p.Seed))
	disk, halo := p.Split()
	g := &DiskHalo{Buffer: NewBuffer(p.Count), DiskCount: disk, HaloCount: halo, Params: p}

	sigma := p.DiskThickness * p.ScaleLength
	for i := 0; i < disk; i++ {
		r := ExponentialRadius(rng.Float64(), p.ScaleLength, p.Radius)
		theta := 2 * math.Pi * rng.Float64()
		// Thinner toward the edge
		y := rng.NormFloat64() * sigma * math.Exp(-r/(2*p.ScaleLength))
		g.SetPosition(i, r3.Vec{X: math.Cos(theta) * r, Y: y, Z: math.Sin(theta) * r})
		g.SetColor(i, p.InsideColor.BlendRgb(p.OutsideColor, r/p.Radius))
		g.Sizes[i] = float32(p.Size * (0.7 + 0.6*rng.Float64()))
	}

	for i := disk; i < p.Count; i++ {
		r := math.Pow(rng.Float64(), 0.5) * p.HaloRadius
		g.SetPosition(i, r3.Scale(r, unitSphere(rng)))
		g.SetColor(i, scaleColor(p.HaloColor, 0.4+0.2*rng.Float64()))
		g.Sizes[i] = float32(p.Size * 0.7)
	}

	g.Validate()
	return g
}
