package kinematics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Body is the orbital state of a single body. Distance, Inclination and
// Size are fixed; speeds are derived on first use and cached.
type Body struct {
	Distance    float64
	Inclination float64 // radians
	Size        float64
	CentralMass float64

	Angle         float64
	RotationAngle float64

	engine        Engine
	derived       bool
	angularSpeed  float64
	rotationSpeed float64
}

// NewBody creates a body. Inclination is given in degrees.
func NewBody(e Engine, size, distance, inclinationDegrees float64) *Body {
	return &Body{
		Distance:    distance,
		Inclination: inclinationDegrees * math.Pi / 180,
		Size:        size,
		CentralMass: e.WithDefaults().CentralMass,
		engine:      e.WithDefaults(),
	}
}

func (b *Body) derive() {
	if b.derived {
		return
	}
	b.angularSpeed = b.engine.OrbitalAngularSpeed(b.Distance, b.CentralMass)
	b.rotationSpeed = b.engine.RotationSpeed(b.Size, b.Distance)
	b.derived = true
}

// AngularSpeed returns the cached orbital angular speed, radians per second.
func (b *Body) AngularSpeed() float64 {
	b.derive()
	return b.angularSpeed
}

// RotationSpeed returns the cached spin rate, radians per second.
func (b *Body) RotationSpeed() float64 {
	b.derive()
	return b.rotationSpeed
}

// Advance moves the body dt seconds along its orbit and spin. Negative or
// NaN deltas are ignored.
func (b *Body) Advance(dt float64) {
	if !(dt > 0) {
		return
	}
	b.derive()
	b.Angle = wrapAngle(b.Angle + b.angularSpeed*dt)
	b.RotationAngle = wrapAngle(b.RotationAngle + b.rotationSpeed*dt)
}

// Position returns the inclined position relative to the orbit centre.
func (b *Body) Position() r3.Vec {
	return OrbitPosition(b.Distance, b.Inclination, b.Angle)
}

// Lagrange returns the body's L4/L5 points around center, which must be
// the position of the orbit centre.
func (b *Body) Lagrange(center r3.Vec) LagrangePair {
	return LagrangePoints(center, r3.Add(center, b.Position()), b.Distance)
}

func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
