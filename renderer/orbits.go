package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orrery/camera"
	"github.com/pthm-cable/orrery/kinematics"
)

// OrbitRenderer draws a kinematics snapshot: orbit paths, bodies and,
// optionally, L4/L5 markers.
type OrbitRenderer struct {
	Colors       map[string]colorful.Color // Body color by name
	ShowLagrange bool
	ShowLabels   bool
}

// NewOrbitRenderer creates a renderer with labels on.
func NewOrbitRenderer() *OrbitRenderer {
	return &OrbitRenderer{Colors: make(map[string]colorful.Color), ShowLabels: true}
}

const orbitSegments = 96

// Draw renders bodies from the latest update of sys.
func (o *OrbitRenderer) Draw(sys *kinematics.System, v camera.Orbit) {
	bodies := sys.Snapshot()
	pos := make(map[string]r3.Vec, len(bodies))
	for _, b := range bodies {
		pos[b.Name] = b.Position
	}

	for _, b := range bodies {
		center := r3.Vec{}
		if b.Parent != "" {
			center = pos[b.Parent]
		}
		o.drawPath(center, b, v)
	}

	rl.DrawCircleV(rl.Vector2{X: v.CenterX, Y: v.CenterY}, 6, rl.Yellow)
	for _, b := range bodies {
		p := project(v, b.Position)
		radius := float32(b.Size) * 2
		if radius < 2 {
			radius = 2
		}
		rl.DrawCircleV(p, radius, o.color(b.Name))
		if o.ShowLabels {
			rl.DrawText(b.Name, int32(p.X+radius+2), int32(p.Y-6), 12, rl.LightGray)
		}
	}

	if !o.ShowLagrange {
		return
	}
	for _, b := range bodies {
		e, ok := sys.Lookup(b.Name)
		if !ok || b.Parent != "" {
			continue
		}
		lp, err := sys.Lagrange(e)
		if err != nil {
			continue
		}
		for _, l := range []r3.Vec{lp.L4, lp.L5} {
			p := project(v, l)
			rl.DrawCircleLines(int32(p.X), int32(p.Y), 3, rl.Green)
		}
	}
}

func (o *OrbitRenderer) drawPath(center r3.Vec, b kinematics.BodyState, v camera.Orbit) {
	c := o.color(b.Name)
	c.A = 60
	prev := project(v, r3.Add(center, kinematics.OrbitPosition(b.Distance, b.Inclination, 0)))
	for i := 1; i <= orbitSegments; i++ {
		a := 2 * math.Pi * float64(i) / orbitSegments
		next := project(v, r3.Add(center, kinematics.OrbitPosition(b.Distance, b.Inclination, a)))
		rl.DrawLineV(prev, next, c)
		prev = next
	}
}

func project(v camera.Orbit, p r3.Vec) rl.Vector2 {
	x, y, _ := v.Project(p)
	return rl.Vector2{X: x, Y: y}
}

func (o *OrbitRenderer) color(name string) rl.Color {
	c, ok := o.Colors[name]
	if !ok {
		return rl.Gray
	}
	r, g, b := c.Clamped().RGB255()
	return rl.Color{R: r, G: g, B: b, A: 255}
}
