// Package components defines ECS components for orbiting bodies.
package components

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"
)

// Orbit is a body's circular, inclined orbit around its parent (or the
// system centre). Distance and Inclination are fixed at creation.
type Orbit struct {
	Distance     float64
	Inclination  float64 // radians
	Angle        float64 // radians, advanced every tick
	AngularSpeed float64 // radians per second
}

// Spin is a body's axial rotation.
type Spin struct {
	Size          float64
	Angle         float64 // radians
	RotationSpeed float64 // radians per second
}

// Transform is the body's world-space position, rebuilt every tick.
type Transform struct {
	Position r3.Vec
	Local    r3.Vec // Offset from the parent
}

// Satellite links a moon to the body it orbits. Primaries have HasParent unset.
type Satellite struct {
	Parent    ecs.Entity
	HasParent bool
}

// Metadata names a body for hosts and texture lookup.
type Metadata struct {
	Name    string
	Kind    string // Texture kind name
	Palette string // Palette name
}
