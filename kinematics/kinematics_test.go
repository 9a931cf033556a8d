package kinematics

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orrery/components"
)

const tol = 1e-6

func near(a, b r3.Vec, eps float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= eps
}

func TestOrbitalSpeedMonotonic(t *testing.T) {
	e := DefaultEngine()
	for _, mass := range []float64{0.5, 1, 4} {
		prev := math.Inf(1)
		for d := 0.5; d < 200; d *= 1.3 {
			v := e.OrbitalAngularSpeed(d, mass)
			if v >= prev {
				t.Fatalf("mass %v: speed at %v = %v not below %v", mass, d, v, prev)
			}
			prev = v
		}
	}
}

func TestSpeedFormulas(t *testing.T) {
	e := Engine{BaseRotationSpeed: 2, BaseOrbitalSpeed: 3, CentralMass: 1}
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"rotation", e.RotationSpeed(0.5, 4), 1 / (2 * 0.5) * (1 / 2.0) * 2},
		{"orbital", e.OrbitalAngularSpeed(9, 4), 3 * (1 / 3.0) * 2},
		{"orbital default mass", e.OrbitalAngularSpeed(16, 0), 3 * 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if v := e.RotationSpeed(0, 0); math.IsInf(v, 0) || math.IsNaN(v) {
		t.Errorf("degenerate size/distance gave %v", v)
	}
	if RotationSpeed(1, 1) <= RotationSpeed(2, 1) {
		t.Error("smaller bodies should spin faster")
	}
	if RotationSpeed(1, 1) <= RotationSpeed(1, 4) {
		t.Error("closer bodies should spin faster")
	}
}

func TestLagrangePoints(t *testing.T) {
	center := r3.Vec{}
	body := r3.Vec{X: 30}
	lp := LagrangePoints(center, body, 30)

	s60 := math.Sin(math.Pi / 3)
	wantL4 := r3.Vec{X: 15, Z: 30 * s60}
	wantL5 := r3.Vec{X: 15, Z: -30 * s60}
	if !near(lp.L4, wantL4, tol) {
		t.Errorf("L4 = %v, want %v", lp.L4, wantL4)
	}
	if !near(lp.L5, wantL5, tol) {
		t.Errorf("L5 = %v, want %v", lp.L5, wantL5)
	}
	for _, p := range []r3.Vec{lp.L4, lp.L5} {
		if d := r3.Norm(r3.Sub(p, center)); math.Abs(d-30) > tol {
			t.Errorf("distance %v, want 30", d)
		}
	}
}

func TestLagrangeOffCenterKeepsHeight(t *testing.T) {
	center := r3.Vec{X: 5, Y: 1, Z: -2}
	body := r3.Vec{X: 5, Y: 3, Z: 8}
	lp := LagrangePoints(center, body, 10)
	if lp.L4.Y != 3 || lp.L5.Y != 3 {
		t.Errorf("heights %v/%v, want body height 3", lp.L4.Y, lp.L5.Y)
	}
	if d := math.Hypot(lp.L4.X-center.X, lp.L4.Z-center.Z); math.Abs(d-10) > tol {
		t.Errorf("L4 horizontal distance %v, want 10", d)
	}
}

func TestOrbitPositionInclination(t *testing.T) {
	inc := 30 * math.Pi / 180
	p := OrbitPosition(10, inc, math.Pi/2)
	want := r3.Vec{X: 0, Y: 10 * math.Sin(inc), Z: 10 * math.Cos(inc)}
	if !near(p, want, tol) {
		t.Errorf("position %v, want %v", p, want)
	}
	if d := r3.Norm(p); math.Abs(d-10) > tol {
		t.Errorf("radius %v, want 10", d)
	}
}

func TestBodyAdvanceFrameRateIndependent(t *testing.T) {
	a := NewBody(DefaultEngine(), 1, 20, 5)
	b := NewBody(DefaultEngine(), 1, 20, 5)
	for i := 0; i < 600; i++ {
		a.Advance(1.0 / 60)
	}
	for i := 0; i < 100; i++ {
		b.Advance(1.0 / 10)
	}
	if !near(a.Position(), b.Position(), 1e-6) {
		t.Errorf("60fps %v vs 10fps %v", a.Position(), b.Position())
	}
	if d := math.Abs(math.Remainder(a.RotationAngle-b.RotationAngle, 2*math.Pi)); d > 1e-6 {
		t.Errorf("rotation angles differ by %v", d)
	}

	want := wrapAngle(a.AngularSpeed() * 10)
	if d := math.Abs(math.Remainder(a.Angle-want, 2*math.Pi)); d > 1e-6 {
		t.Errorf("angle %v, want %v", a.Angle, want)
	}
}

func TestBodyIgnoresBadDelta(t *testing.T) {
	b := NewBody(DefaultEngine(), 1, 10, 0)
	b.Advance(-1)
	b.Advance(math.NaN())
	if b.Angle != 0 || b.RotationAngle != 0 {
		t.Errorf("angles moved: %v, %v", b.Angle, b.RotationAngle)
	}
}

func testSystem(t *testing.T) *System {
	t.Helper()
	s := NewSystem(DefaultEngine())
	earth, err := s.AddBody(components.Metadata{Name: "earth", Kind: "ocean"}, 1, 30, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddSatellite(earth, components.Metadata{Name: "luna", Kind: "moon"}, 0.27, 3, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddBody(components.Metadata{Name: "mars", Kind: "rocky"}, 0.53, 45, 1.8); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSystemSatelliteFollowsParent(t *testing.T) {
	s := testSystem(t)
	for i := 0; i < 250; i++ {
		s.Update(1.0 / 30)
	}
	snap := s.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot has %d bodies", len(snap))
	}
	earth, luna := snap[0], snap[1]
	if luna.Parent != "earth" {
		t.Errorf("luna parent = %q", luna.Parent)
	}
	if d := r3.Norm(r3.Sub(luna.Position, earth.Position)); math.Abs(d-3) > tol {
		t.Errorf("luna is %v from earth, want 3", d)
	}
	if d := r3.Norm(earth.Position); math.Abs(d-30) > tol {
		t.Errorf("earth is %v from centre, want 30", d)
	}
	if math.Abs(s.Elapsed()-250.0/30) > 1e-9 {
		t.Errorf("elapsed = %v", s.Elapsed())
	}
}

func TestSystemMatchesBody(t *testing.T) {
	s := NewSystem(DefaultEngine())
	e, err := s.AddBody(components.Metadata{Name: "venus"}, 0.95, 22, 3.4)
	if err != nil {
		t.Fatal(err)
	}
	b := NewBody(DefaultEngine(), 0.95, 22, 3.4)
	for i := 0; i < 90; i++ {
		s.Update(1.0 / 45)
		b.Advance(1.0 / 45)
	}
	got := s.Snapshot()[0]
	if !near(got.Position, b.Position(), 1e-9) {
		t.Errorf("system %v, body %v", got.Position, b.Position())
	}

	lp, err := s.Lagrange(e)
	if err != nil {
		t.Fatal(err)
	}
	want := b.Lagrange(r3.Vec{})
	if !near(lp.L4, want.L4, 1e-9) || !near(lp.L5, want.L5, 1e-9) {
		t.Errorf("lagrange %v, want %v", lp, want)
	}
}

func TestSystemErrors(t *testing.T) {
	s := testSystem(t)
	luna, ok := s.Lookup("luna")
	if !ok {
		t.Fatal("luna not found")
	}
	if _, err := s.AddSatellite(luna, components.Metadata{Name: "moonmoon"}, 0.1, 0.5, 0); !errors.Is(err, ErrNestedMoon) {
		t.Errorf("nested satellite err = %v", err)
	}
	if _, err := s.AddBody(components.Metadata{Name: "earth"}, 1, 10, 0); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate err = %v", err)
	}
	if _, ok := s.Lookup("pluto"); ok {
		t.Error("unexpected pluto")
	}
}
