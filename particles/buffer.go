// Package particles generates fixed-length particle attribute buffers for
// galaxies, star fields, nebulae, dust, asteroid belts and stellar wind.
package particles

import (
	"fmt"
	"math"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orrery/raster"
)

// ErrBackendUnavailable is returned when a buffer is uploaded without a sink.
var ErrBackendUnavailable = raster.ErrBackendUnavailable

// Buffer holds parallel per-particle attribute arrays. Its length is fixed
// at construction; animation mutates values in place.
type Buffer struct {
	Positions []float32 `json:"positions"` // xyz triples
	Colors    []float32 `json:"colors"`    // rgb triples, 0-1
	Sizes     []float32 `json:"sizes"`
}

// NewBuffer allocates a buffer for n particles.
func NewBuffer(n int) *Buffer {
	if n < 0 {
		n = 0
	}
	return &Buffer{
		Positions: make([]float32, 3*n),
		Colors:    make([]float32, 3*n),
		Sizes:     make([]float32, n),
	}
}

// Points returns the buffer itself so generator types embedding it can be
// handed to sinks uniformly.
func (b *Buffer) Points() *Buffer { return b }

// Len returns the particle count.
func (b *Buffer) Len() int { return len(b.Sizes) }

// Validate panics if the attribute arrays disagree in length. A mismatch is
// a programming error, never a runtime condition.
func (b *Buffer) Validate() {
	n := len(b.Sizes)
	if len(b.Positions) != 3*n || len(b.Colors) != 3*n {
		panic(fmt.Sprintf("particles: inconsistent buffer: %d positions, %d colors, %d sizes",
			len(b.Positions), len(b.Colors), n))
	}
}

// SetPosition writes particle i's position.
func (b *Buffer) SetPosition(i int, p r3.Vec) {
	b.Positions[3*i] = float32(p.X)
	b.Positions[3*i+1] = float32(p.Y)
	b.Positions[3*i+2] = float32(p.Z)
}

// Position reads particle i's position.
func (b *Buffer) Position(i int) r3.Vec {
	return r3.Vec{X: float64(b.Positions[3*i]), Y: float64(b.Positions[3*i+1]), Z: float64(b.Positions[3*i+2])}
}

// SetColor writes particle i's color, clamped to 0-1.
func (b *Buffer) SetColor(i int, c colorful.Color) {
	c = c.Clamped()
	b.Colors[3*i] = float32(c.R)
	b.Colors[3*i+1] = float32(c.G)
	b.Colors[3*i+2] = float32(c.B)
}

// Color reads particle i's color.
func (b *Buffer) Color(i int) colorful.Color {
	return colorful.Color{R: float64(b.Colors[3*i]), G: float64(b.Colors[3*i+1]), B: float64(b.Colors[3*i+2])}
}

// Extent returns the largest particle distance from the origin.
func (b *Buffer) Extent() float64 {
	if b.Len() == 0 {
		return 0
	}
	d := make([]float64, b.Len())
	for i := range d {
		d[i] = r3.Norm(b.Position(i))
	}
	return floats.Max(d)
}

// Field is anything backed by a particle buffer.
type Field interface {
	Points() *Buffer
}

// Animator is a field whose attributes advance with elapsed seconds.
type Animator interface {
	Field
	Update(dt float64)
}

// Sink receives finished particle buffers, typically wrapping them in a
// point-cloud geometry on the rendering host.
type Sink interface {
	UploadPoints(name string, b *Buffer) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(name string, b *Buffer) error

// UploadPoints calls f(name, b).
func (f SinkFunc) UploadPoints(name string, b *Buffer) error {
	return f(name, b)
}

// Upload validates f's buffer and hands it to sink.
func Upload(sink Sink, name string, f Field) error {
	if sink == nil {
		return ErrBackendUnavailable
	}
	b := f.Points()
	b.Validate()
	if err := sink.UploadPoints(name, b); err != nil {
		return fmt.Errorf("uploading %s particles: %w", name, err)
	}
	return nil
}

// rotateY rotates particle positions about the vertical axis, each by its
// own angle omega(i)*dt.
func rotateY(b *Buffer, dt float64, omega func(i int) float64) {
	for i := 0; i < b.Len(); i++ {
		a := omega(i) * dt
		if a == 0 {
			continue
		}
		s, c := math.Sincos(a)
		x := float64(b.Positions[3*i])
		z := float64(b.Positions[3*i+2])
		b.Positions[3*i] = float32(x*c - z*s)
		b.Positions[3*i+2] = float32(x*s + z*c)
	}
}

// unitSphere returns a uniformly distributed unit vector.
func unitSphere(rng *rand.Rand) r3.Vec {
	z := 2*rng.Float64() - 1
	phi := 2 * math.Pi * rng.Float64()
	s := math.Sqrt(1 - z*z)
	return r3.Vec{X: s * math.Cos(phi), Y: z, Z: s * math.Sin(phi)}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func scaleColor(c colorful.Color, f float64) colorful.Color {
	return colorful.Color{R: c.R * f, G: c.G * f, B: c.B * f}
}
