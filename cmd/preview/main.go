// Interactive preview of textures, particle fields and orbits.
//
// Usage: go run ./cmd/preview [-config orrery.yaml]
//
// Keys: 1 textures, 2 particles, 3 orbits, L lagrange points, mouse wheel
// zoom, arrows rotate (orbits) or pan (textures), R reset.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/orrery/camera"
	"github.com/pthm-cable/orrery/config"
	"github.com/pthm-cable/orrery/kinematics"
	"github.com/pthm-cable/orrery/logging"
	"github.com/pthm-cable/orrery/particles"
	"github.com/pthm-cable/orrery/raster"
	"github.com/pthm-cable/orrery/renderer"
	"github.com/pthm-cable/orrery/telemetry"
	"github.com/pthm-cable/orrery/texcache"
)

const (
	windowWidth  = 1280
	windowHeight = 720
	panelWidth   = 300
	viewWidth    = windowWidth - panelWidth
	mapHeight    = (viewWidth - 20) / 2
)

type mode int

const (
	modeTextures mode = iota
	modeParticles
	modeOrbits
)

// preview holds the viewer state between frames.
type preview struct {
	cfg    *config.Config
	cache  *texcache.Cache
	perf   *telemetry.PerfCollector
	logger *slog.Logger

	mode mode

	// Textures
	kindIndex int
	seed      int
	mapCam    *camera.Map
	textures  *renderer.TextureSink
	finals    chan *raster.Raster
	pending   int

	// Particles
	generator int
	points    *renderer.PointRenderer
	animators []particles.Animator

	// Orbits
	system    *kinematics.System
	orbits    *renderer.OrbitRenderer
	timeScale float32

	view camera.Orbit
}

var generatorNames = []string{"galaxy", "disk_halo", "star_field", "nebula", "dust", "belt", "wind", "debris"}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	logger := logging.Init(cfg.Logging, os.Stdout)

	sys, err := cfg.BuildSystem()
	if err != nil {
		logger.Error("failed to build system", "error", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Orrery Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	p := &preview{
		cfg:       cfg,
		cache:     texcache.New(raster.NewSynthesizer(cfg.SynthOptions()), logger),
		perf:      perf,
		logger:    logger,
		mapCam:    camera.NewMap(viewWidth-20, mapHeight, viewWidth-20, mapHeight),
		textures:  renderer.NewTextureSink(),
		finals:    make(chan *raster.Raster, 4),
		points:    renderer.NewPointRenderer(),
		system:    sys,
		orbits:    renderer.NewOrbitRenderer(),
		timeScale: 1,
		view: camera.Orbit{
			CenterX: viewWidth / 2,
			CenterY: windowHeight / 2,
			Scale:   4,
			Pitch:   0.5,
		},
	}
	defer p.textures.Unload()
	for _, b := range cfg.Bodies {
		p.orbits.Colors[b.Name] = cfg.Palette(b.Palette).Primary
	}

	p.requestTexture()
	p.loadParticles()

	for !rl.WindowShouldClose() {
		perf.RecordFrame()
		p.update(rl.GetFrameTime())

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		p.draw()
		p.drawPanel()
		rl.EndDrawing()
	}
}

func (p *preview) update(dt float32) {
	switch {
	case rl.IsKeyPressed(rl.KeyOne):
		p.mode = modeTextures
	case rl.IsKeyPressed(rl.KeyTwo):
		p.mode = modeParticles
	case rl.IsKeyPressed(rl.KeyThree):
		p.mode = modeOrbits
	case rl.IsKeyPressed(rl.KeyL):
		p.orbits.ShowLagrange = !p.orbits.ShowLagrange
	case rl.IsKeyPressed(rl.KeyR):
		p.mapCam.Reset()
		p.view.Yaw, p.view.Pitch, p.view.Scale = 0, 0.5, 4
	}

	var dx, dy float32
	if rl.IsKeyDown(rl.KeyLeft) {
		dx--
	}
	if rl.IsKeyDown(rl.KeyRight) {
		dx++
	}
	if rl.IsKeyDown(rl.KeyUp) {
		dy--
	}
	if rl.IsKeyDown(rl.KeyDown) {
		dy++
	}
	wheel := rl.GetMouseWheelMove()
	if p.mode == modeTextures {
		if wheel != 0 {
			p.mapCam.ZoomBy(1 + wheel*0.1)
		}
		p.mapCam.Pan(dx*dt*300, dy*dt*300)
	} else {
		if wheel != 0 {
			p.view.ZoomBy(1 + wheel*0.1)
		}
		p.view.Rotate(float64(dx*dt), float64(dy*dt))
	}

	// Final-quality textures replace the preview when they arrive.
	select {
	case r := <-p.finals:
		p.pending--
		if r.Kind == raster.Kinds[p.kindIndex] && r.Identity == p.identity() {
			p.upload(r)
		}
	default:
	}

	switch p.mode {
	case modeParticles:
		for _, a := range p.animators {
			a.Update(float64(dt))
		}
	case modeOrbits:
		p.system.Update(float64(dt * p.timeScale))
	}
}

func (p *preview) identity() string {
	return fmt.Sprintf("%s-%d", raster.Kinds[p.kindIndex], p.seed)
}

// requestTexture shows the preview resolution at once and synthesizes the
// final resolution in the background.
func (p *preview) requestTexture() {
	req := raster.Request{
		Kind:       raster.Kinds[p.kindIndex],
		Identity:   p.identity(),
		Resolution: p.cfg.Texture.PreviewResolution,
	}
	p.perf.StartTick()
	p.perf.StartPhase("preview")
	p.upload(p.cache.Lookup(req))
	p.perf.EndTick()

	req.Resolution = p.cfg.Texture.FinalResolution
	p.pending++
	go func() { p.finals <- p.cache.Lookup(req) }()
}

func (p *preview) upload(r *raster.Raster) {
	if err := p.textures.Upload(r); err != nil {
		p.logger.Error("texture upload failed", "error", err)
		return
	}
	p.logger.Info("texture", "generation", telemetry.NewGenerationRecord(r, 0, false))
}

func (p *preview) loadParticles() {
	p.points.Clear()
	p.animators = p.animators[:0]

	var fields []particles.Field
	switch generatorNames[p.generator] {
	case "galaxy":
		fields = p.cfg.GalaxyFields()
	case "disk_halo":
		fields = []particles.Field{particles.GenerateDiskHalo(p.cfg.DiskHaloParams())}
	case "star_field":
		fields = []particles.Field{particles.GenerateStarField(p.cfg.StarFieldParams())}
	case "nebula":
		fields = []particles.Field{particles.GenerateNebula(p.cfg.NebulaParams())}
	case "dust":
		fields = []particles.Field{particles.GenerateDust(p.cfg.DustParams())}
	case "belt":
		fields = []particles.Field{particles.GenerateAsteroidBelt(p.cfg.BeltParams())}
	case "wind":
		fields = []particles.Field{particles.NewSolarWind(p.cfg.WindParams())}
	case "debris":
		fields = []particles.Field{particles.NewDebrisRing(p.cfg.DebrisParams())}
	}
	for i, f := range fields {
		if err := particles.Upload(p.points, fmt.Sprintf("%s/%d", generatorNames[p.generator], i), f); err != nil {
			p.logger.Error("particle upload failed", "error", err)
		}
		if a, ok := f.(particles.Animator); ok {
			p.animators = append(p.animators, a)
		}
	}
}

func (p *preview) draw() {
	switch p.mode {
	case modeTextures:
		t, ok := p.textures.Last()
		if !ok {
			return
		}
		dst := rl.Rectangle{X: 10, Y: 10, Width: viewWidth - 20, Height: mapHeight}
		renderer.DrawEquirect(t, dst, p.mapCam)
		rl.DrawRectangleLinesEx(dst, 1, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("%s  %dx%d  wrap %s/%s", t.Name, t.Width, t.Height, t.WrapS, t.WrapT),
			10, int32(dst.Height)+20, 16, rl.LightGray)
	case modeParticles:
		p.points.Draw(p.view)
	case modeOrbits:
		p.orbits.Draw(p.system, p.view)
	}
}

func (p *preview) drawPanel() {
	panelX := float32(viewWidth + 10)
	panelY := float32(10)
	rl.DrawRectangle(viewWidth, 0, panelWidth, windowHeight, rl.Color{R: 24, G: 24, B: 28, A: 255})

	titles := []string{"1 Textures", "2 Particles", "3 Orbits"}
	rl.DrawText(titles[p.mode], int32(panelX), int32(panelY), 20, rl.RayWhite)
	panelY += 35

	switch p.mode {
	case modeTextures:
		rl.DrawText("Kind", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		kind := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: panelWidth - 90, Height: 20},
			"", "",
			float32(p.kindIndex), 0, float32(len(raster.Kinds)-1),
		)
		rl.DrawText(raster.Kinds[p.kindIndex].String(), int32(panelX+panelWidth-80), int32(panelY+2), 16, rl.LightGray)
		panelY += 35

		rl.DrawText("Identity seed", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		seed := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: panelWidth - 90, Height: 20},
			"", "",
			float32(p.seed), 0, 999,
		)
		rl.DrawText(fmt.Sprintf("%d", p.seed), int32(panelX+panelWidth-80), int32(panelY+2), 16, rl.LightGray)
		panelY += 45

		if int(kind+0.5) != p.kindIndex || int(seed) != p.seed {
			p.kindIndex, p.seed = int(kind+0.5), int(seed)
			p.requestTexture()
		}
		if p.pending > 0 {
			rl.DrawText("refining...", int32(panelX), int32(panelY), 14, rl.Yellow)
		}
		panelY += 25
		st := p.cache.Stats()
		rl.DrawText(fmt.Sprintf("cache: %d entries, %d hits", st.Entries, st.Hits), int32(panelX), int32(panelY), 14, rl.Gray)

	case modeParticles:
		for i, name := range generatorNames {
			if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 130, Height: 26}, name) && i != p.generator {
				p.generator = i
				p.loadParticles()
			}
			panelY += 32
		}
		rl.DrawText(fmt.Sprintf("%d particles", p.points.Len()), int32(panelX), int32(panelY), 14, rl.Gray)

	case modeOrbits:
		rl.DrawText("Time scale", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		p.timeScale = gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: panelWidth - 90, Height: 20},
			"", "",
			p.timeScale, 0, 20,
		)
		rl.DrawText(fmt.Sprintf("%.1fx", p.timeScale), int32(panelX+panelWidth-80), int32(panelY+2), 16, rl.LightGray)
		panelY += 45
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 130, Height: 30}, toggleText(p.orbits.ShowLagrange, "Hide L4/L5", "Show L4/L5")) {
			p.orbits.ShowLagrange = !p.orbits.ShowLagrange
		}
		panelY += 45
		rl.DrawText(fmt.Sprintf("elapsed %.1fs", p.system.Elapsed()), int32(panelX), int32(panelY), 14, rl.Gray)
	}

	stats := p.perf.Stats()
	rl.DrawText(fmt.Sprintf("FPS %.0f  synth avg %dms", stats.FPS, stats.AvgDuration.Milliseconds()),
		int32(panelX), windowHeight-30, 12, rl.LightGray)
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
