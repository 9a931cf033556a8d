package renderer

import (
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orrery/camera"
	"github.com/pthm-cable/orrery/particles"
)

// PointRenderer keeps uploaded particle buffers and draws them as additive
// discs. Buffers are shared, not copied: animation in place shows up on the
// next Draw.
type PointRenderer struct {
	buffers map[string]*particles.Buffer
	order   []string

	screen []projected // Scratch, reused between frames
}

type projected struct {
	pos   rl.Vector2
	depth float64
	size  float32
	color rl.Color
}

// NewPointRenderer creates an empty renderer.
func NewPointRenderer() *PointRenderer {
	return &PointRenderer{buffers: make(map[string]*particles.Buffer)}
}

// UploadPoints implements particles.Sink.
func (p *PointRenderer) UploadPoints(name string, b *particles.Buffer) error {
	if _, ok := p.buffers[name]; !ok {
		p.order = append(p.order, name)
	}
	p.buffers[name] = b
	return nil
}

// Clear drops every buffer.
func (p *PointRenderer) Clear() {
	p.buffers = make(map[string]*particles.Buffer)
	p.order = p.order[:0]
}

// Len returns the total number of particles held.
func (p *PointRenderer) Len() int {
	n := 0
	for _, b := range p.buffers {
		n += b.Len()
	}
	return n
}

// Draw projects every particle through v and draws far points first.
func (p *PointRenderer) Draw(v camera.Orbit) {
	p.screen = p.screen[:0]
	for _, name := range p.order {
		b := p.buffers[name]
		for i := 0; i < b.Len(); i++ {
			sx, sy, depth := v.Project(r3.Vec{
				X: float64(b.Positions[3*i]),
				Y: float64(b.Positions[3*i+1]),
				Z: float64(b.Positions[3*i+2]),
			})
			size := b.Sizes[i] * v.Scale * 0.5
			if size < 0.5 {
				size = 0.5
			}
			p.screen = append(p.screen, projected{
				pos:   rl.Vector2{X: sx, Y: sy},
				depth: depth,
				size:  size,
				color: rl.Color{
					R: unit8(b.Colors[3*i]),
					G: unit8(b.Colors[3*i+1]),
					B: unit8(b.Colors[3*i+2]),
					A: 200,
				},
			})
		}
	}
	sort.Slice(p.screen, func(i, j int) bool { return p.screen[i].depth > p.screen[j].depth })

	rl.BeginBlendMode(rl.BlendAdditive)
	for _, s := range p.screen {
		rl.DrawCircleV(s.pos, s.size, s.color)
	}
	rl.EndBlendMode()
}

func unit8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
