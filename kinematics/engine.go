// Package kinematics computes closed-form spin, orbit and Lagrange point
// values for visualizing a planetary system. Every rate is per second and
// is advanced by an explicit delta, so motion does not depend on frame rate.
package kinematics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	DefaultBaseRotationSpeed = 0.5 // radians per second
	DefaultBaseOrbitalSpeed  = 0.5 // radians per second at distance 1
	DefaultCentralMass       = 1.0

	// Sizes and distances are clamped to this before division.
	minMeasure = 1e-3
)

// Engine holds the base rates the speed formulas scale.
type Engine struct {
	BaseRotationSpeed float64
	BaseOrbitalSpeed  float64
	CentralMass       float64 // Mass of the system centre
}

// DefaultEngine returns an engine with the default rates.
func DefaultEngine() Engine {
	return Engine{
		BaseRotationSpeed: DefaultBaseRotationSpeed,
		BaseOrbitalSpeed:  DefaultBaseOrbitalSpeed,
		CentralMass:       DefaultCentralMass,
	}
}

// WithDefaults fills zero or negative rates.
func (e Engine) WithDefaults() Engine {
	if e.BaseRotationSpeed <= 0 {
		e.BaseRotationSpeed = DefaultBaseRotationSpeed
	}
	if e.BaseOrbitalSpeed <= 0 {
		e.BaseOrbitalSpeed = DefaultBaseOrbitalSpeed
	}
	if e.CentralMass <= 0 {
		e.CentralMass = DefaultCentralMass
	}
	return e
}

// RotationSpeed is (1/(2*size)) * (1/sqrt(distance)) * BaseRotationSpeed:
// smaller, closer bodies spin faster.
func (e Engine) RotationSpeed(size, distance float64) float64 {
	size = math.Max(size, minMeasure)
	distance = math.Max(distance, minMeasure)
	return 1 / (2 * size) * (1 / math.Sqrt(distance)) * e.BaseRotationSpeed
}

// OrbitalAngularSpeed is BaseOrbitalSpeed * (1/sqrt(distance)) *
// sqrt(centralMass). It is strictly decreasing in distance. A non-positive
// centralMass means DefaultCentralMass.
func (e Engine) OrbitalAngularSpeed(distance, centralMass float64) float64 {
	if centralMass <= 0 {
		centralMass = DefaultCentralMass
	}
	distance = math.Max(distance, minMeasure)
	return e.BaseOrbitalSpeed * (1 / math.Sqrt(distance)) * math.Sqrt(centralMass)
}

// RotationSpeed uses the default engine.
func RotationSpeed(size, distance float64) float64 {
	return DefaultEngine().RotationSpeed(size, distance)
}

// OrbitalAngularSpeed uses the default engine.
func OrbitalAngularSpeed(distance, centralMass float64) float64 {
	return DefaultEngine().OrbitalAngularSpeed(distance, centralMass)
}

// OrbitPosition converts an orbital angle to an inclined position relative
// to the orbit centre.
func OrbitPosition(distance, inclination, angle float64) r3.Vec {
	s, c := math.Sincos(angle)
	return r3.Vec{
		X: c * distance,
		Y: s * distance * math.Sin(inclination),
		Z: s * distance * math.Cos(inclination),
	}
}

// LagrangePair holds the leading (L4) and trailing (L5) Lagrange points.
type LagrangePair struct {
	L4 r3.Vec
	L5 r3.Vec
}

// LagrangePoints places L4 and L5 at ±60° from the body's current angle
// around center, at distance from center and at the body's height.
func LagrangePoints(center, body r3.Vec, distance float64) LagrangePair {
	angle := math.Atan2(body.Z-center.Z, body.X-center.X)
	at := func(a float64) r3.Vec {
		return r3.Vec{
			X: center.X + math.Cos(a)*distance,
			Y: body.Y,
			Z: center.Z + math.Sin(a)*distance,
		}
	}
	return LagrangePair{L4: at(angle + math.Pi/3), L5: at(angle - math.Pi/3)}
}
