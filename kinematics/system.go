package kinematics

import (
	"errors"
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orrery/components"
)

var (
	ErrUnknownBody = errors.New("unknown body")
	ErrNestedMoon  = errors.New("satellites cannot have satellites")
	ErrDuplicate   = errors.New("duplicate body name")
)

// System animates a set of bodies on an ECS world. Primaries orbit the
// system centre; satellites orbit a primary.
type System struct {
	world  *ecs.World
	engine Engine
	center r3.Vec

	mapper     *ecs.Map5[components.Orbit, components.Spin, components.Transform, components.Satellite, components.Metadata]
	filter     *ecs.Filter4[components.Orbit, components.Spin, components.Transform, components.Satellite]
	orbits     *ecs.Map[components.Orbit]
	spins      *ecs.Map[components.Spin]
	transforms *ecs.Map[components.Transform]
	satellites *ecs.Map[components.Satellite]
	meta       *ecs.Map[components.Metadata]

	names   map[string]ecs.Entity
	order   []ecs.Entity
	elapsed float64
}

// NewSystem creates an empty system centred on the origin.
func NewSystem(e Engine) *System {
	world := ecs.NewWorld()
	return &System{
		world:  world,
		engine: e.WithDefaults(),
		mapper: ecs.NewMap5[
			components.Orbit,
			components.Spin,
			components.Transform,
			components.Satellite,
			components.Metadata,
		](world),
		filter: ecs.NewFilter4[
			components.Orbit,
			components.Spin,
			components.Transform,
			components.Satellite,
		](world),
		orbits:     ecs.NewMap[components.Orbit](world),
		spins:      ecs.NewMap[components.Spin](world),
		transforms: ecs.NewMap[components.Transform](world),
		satellites: ecs.NewMap[components.Satellite](world),
		meta:       ecs.NewMap[components.Metadata](world),
		names:      make(map[string]ecs.Entity),
	}
}

// Engine returns the engine the system derives speeds with.
func (s *System) Engine() Engine { return s.engine }

// Len returns the number of bodies.
func (s *System) Len() int { return len(s.order) }

// Elapsed returns the simulated seconds since creation.
func (s *System) Elapsed() float64 { return s.elapsed }

// AddBody adds a primary orbiting the system centre.
func (s *System) AddBody(meta components.Metadata, size, distance, inclinationDegrees float64) (ecs.Entity, error) {
	return s.add(meta, size, distance, inclinationDegrees, s.engine.CentralMass, components.Satellite{})
}

// AddSatellite adds a moon orbiting parent. Satellites orbit with unit mass
// at the parent; nested satellites are rejected.
func (s *System) AddSatellite(parent ecs.Entity, meta components.Metadata, size, distance, inclinationDegrees float64) (ecs.Entity, error) {
	if !s.world.Alive(parent) || !s.satellites.Has(parent) {
		return ecs.Entity{}, fmt.Errorf("satellite %q: %w", meta.Name, ErrUnknownBody)
	}
	if s.satellites.Get(parent).HasParent {
		return ecs.Entity{}, fmt.Errorf("satellite %q: %w", meta.Name, ErrNestedMoon)
	}
	return s.add(meta, size, distance, inclinationDegrees, DefaultCentralMass, components.Satellite{Parent: parent, HasParent: true})
}

func (s *System) add(meta components.Metadata, size, distance, inclinationDegrees, mass float64, sat components.Satellite) (ecs.Entity, error) {
	if meta.Name != "" {
		if _, ok := s.names[meta.Name]; ok {
			return ecs.Entity{}, fmt.Errorf("%q: %w", meta.Name, ErrDuplicate)
		}
	}
	orbit := components.Orbit{
		Distance:     distance,
		Inclination:  inclinationDegrees * math.Pi / 180,
		AngularSpeed: s.engine.OrbitalAngularSpeed(distance, mass),
	}
	spin := components.Spin{Size: size, RotationSpeed: s.engine.RotationSpeed(size, distance)}
	local := OrbitPosition(orbit.Distance, orbit.Inclination, 0)
	tr := components.Transform{Local: local, Position: local}
	if sat.HasParent {
		tr.Position = r3.Add(s.transforms.Get(sat.Parent).Position, local)
	}

	e := s.mapper.NewEntity(&orbit, &spin, &tr, &sat, &meta)
	if meta.Name != "" {
		s.names[meta.Name] = e
	}
	s.order = append(s.order, e)
	return e, nil
}

// Lookup finds a body by name.
func (s *System) Lookup(name string) (ecs.Entity, bool) {
	e, ok := s.names[name]
	return e, ok
}

// Update advances every body by dt seconds: angles first, then world
// positions, so satellites follow their parent's new position. Negative or
// NaN deltas are ignored.
func (s *System) Update(dt float64) {
	if !(dt > 0) {
		return
	}
	s.elapsed += dt

	query := s.filter.Query()
	for query.Next() {
		orbit, spin, tr, sat := query.Get()
		orbit.Angle = wrapAngle(orbit.Angle + orbit.AngularSpeed*dt)
		spin.Angle = wrapAngle(spin.Angle + spin.RotationSpeed*dt)
		tr.Local = OrbitPosition(orbit.Distance, orbit.Inclination, orbit.Angle)
		if !sat.HasParent {
			tr.Position = r3.Add(s.center, tr.Local)
		}
	}

	query = s.filter.Query()
	for query.Next() {
		_, _, tr, sat := query.Get()
		if sat.HasParent {
			tr.Position = r3.Add(s.transforms.Get(sat.Parent).Position, tr.Local)
		}
	}
}

// BodyState is a read-only view of one body after the latest update.
type BodyState struct {
	Name          string  `json:"name"`
	Kind          string  `json:"kind"`
	Parent        string  `json:"parent,omitempty"`
	Position      r3.Vec  `json:"position"`
	Angle         float64 `json:"angle"`
	RotationAngle float64 `json:"rotationAngle"`
	Distance      float64 `json:"distance"`
	Inclination   float64 `json:"inclination"` // radians
	Size          float64 `json:"size"`
}

// Snapshot returns every body's state in insertion order.
func (s *System) Snapshot() []BodyState {
	out := make([]BodyState, 0, len(s.order))
	for _, e := range s.order {
		orbit := s.orbits.Get(e)
		spin := s.spins.Get(e)
		meta := s.meta.Get(e)
		st := BodyState{
			Name:          meta.Name,
			Kind:          meta.Kind,
			Position:      s.transforms.Get(e).Position,
			Angle:         orbit.Angle,
			RotationAngle: spin.Angle,
			Distance:      orbit.Distance,
			Inclination:   orbit.Inclination,
			Size:          spin.Size,
		}
		if sat := s.satellites.Get(e); sat.HasParent {
			st.Parent = s.meta.Get(sat.Parent).Name
		}
		out = append(out, st)
	}
	return out
}

// Lagrange recomputes L4/L5 for e around its orbit centre from the current
// positions. Nothing is cached between calls.
func (s *System) Lagrange(e ecs.Entity) (LagrangePair, error) {
	if !s.world.Alive(e) || !s.orbits.Has(e) {
		return LagrangePair{}, ErrUnknownBody
	}
	center := s.center
	if sat := s.satellites.Get(e); sat.HasParent {
		center = s.transforms.Get(sat.Parent).Position
	}
	return LagrangePoints(center, s.transforms.Get(e).Position, s.orbits.Get(e).Distance), nil
}
