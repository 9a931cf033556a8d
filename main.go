package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/orrery/config"
	"github.com/pthm-cable/orrery/logging"
	"github.com/pthm-cable/orrery/particles"
	"github.com/pthm-cable/orrery/raster"
	"github.com/pthm-cable/orrery/telemetry"
	"github.com/pthm-cable/orrery/texcache"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	textureDir := flag.String("texture-dir", "textures", "Directory for generated PNG textures")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	resolution := flag.Float64("res", 0, "Texture resolution multiplier (0 = use config final resolution)")
	preview := flag.Bool("preview", false, "Also generate preview-resolution textures first")
	kinds := flag.Bool("kinds", false, "Generate one texture per kind instead of per configured body")
	withParticles := flag.Bool("particles", true, "Generate particle fields and log summaries")
	orbitSeconds := flag.Float64("orbit-seconds", 0, "Simulate the configured system for N seconds and log positions")
	logLevel := flag.String("log-level", "", "Log level override (debug, info, warn, error)")
	logJSON := flag.Bool("log-json", false, "Log as JSON")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logJSON {
		cfg.Logging.JSONFormat = true
	}
	logger := logging.Init(cfg.Logging, os.Stdout)

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		logger.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		logger.Error("failed to write config snapshot", "error", err)
	}

	res := *resolution
	if res <= 0 {
		res = cfg.Texture.FinalResolution
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	synth := raster.NewSynthesizer(cfg.SynthOptions())
	synth.SetTimer(perf)
	cache := texcache.New(synth, logger)
	sink := raster.PNGSink{Dir: *textureDir}

	var requests []raster.Request
	if *kinds {
		for _, k := range raster.Kinds {
			requests = append(requests, raster.Request{Kind: k, Identity: k.String(), Resolution: res})
		}
	} else {
		for _, b := range cfg.Bodies {
			if _, ok := raster.ParseKind(b.Kind); !ok {
				logger.Warn("unsupported texture kind, using generic", "body", b.Name, "kind", b.Kind)
			}
			requests = append(requests, cfg.TextureRequest(b, res))
		}
	}

	var records []telemetry.GenerationRecord
	generate := func(req raster.Request) {
		hit := cache.Contains(req)
		start := time.Now()
		r, err := cache.Get(sink, req)
		if err != nil {
			logger.Error("texture generation failed", "kind", req.Kind.String(), "identity", req.Identity, "error", err)
			return
		}
		rec := telemetry.NewGenerationRecord(r, time.Since(start), hit)
		records = append(records, rec)
		logger.Info("texture", "generation", rec)
		if err := out.WriteGeneration(rec); err != nil {
			logger.Error("failed to write generation record", "error", err)
		}
	}

	started := time.Now()
	for _, req := range requests {
		if *preview {
			p := req
			p.Resolution = cfg.Texture.PreviewResolution
			generate(p)
		}
		generate(req)
	}

	stats := perf.Stats()
	logger.Info("synthesis perf", "stats", stats)
	if err := out.WritePerf(stats, perf.Total()); err != nil {
		logger.Error("failed to write perf record", "error", err)
	}
	summary := telemetry.Summarize(records)
	logger.Info("textures complete",
		"count", summary.Count,
		"mean_ms", summary.MeanMS,
		"p50_ms", summary.P50MS,
		"p90_ms", summary.P90MS,
		"cache", cache.Stats(),
		"dir", *textureDir,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)

	if *withParticles {
		generateParticles(cfg, out, logger)
	}

	if *orbitSeconds > 0 {
		simulateOrbits(cfg, *orbitSeconds, logger)
	}
}

// generateParticles builds every configured particle field and logs its size.
func generateParticles(cfg *config.Config, out *telemetry.OutputManager, logger *slog.Logger) {
	type field struct {
		name  string
		build func() []particles.Field
	}
	single := func(f func() particles.Field) func() []particles.Field {
		return func() []particles.Field { return []particles.Field{f()} }
	}
	fields := []field{
		{"galaxy_" + cfg.Derived.Strategy.String(), cfg.GalaxyFields},
		{"star_field", single(func() particles.Field { return particles.GenerateStarField(cfg.StarFieldParams()) })},
		{"nebula", single(func() particles.Field { return particles.GenerateNebula(cfg.NebulaParams()) })},
		{"dust", single(func() particles.Field { return particles.GenerateDust(cfg.DustParams()) })},
		{"belt", single(func() particles.Field { return particles.GenerateAsteroidBelt(cfg.BeltParams()) })},
		{"wind", single(func() particles.Field { return particles.NewSolarWind(cfg.WindParams()) })},
		{"debris", single(func() particles.Field { return particles.NewDebrisRing(cfg.DebrisParams()) })},
	}

	for _, f := range fields {
		start := time.Now()
		built := f.build()
		d := time.Since(start)
		for i, pf := range built {
			name := f.name
			if len(built) > 1 {
				name = fmt.Sprintf("%s_layer%d", f.name, i)
			}
			rec := telemetry.NewParticleRecord(name, pf, d/time.Duration(len(built)))
			logger.Info("particles", "generator", rec.Generator, "count", rec.Count, "extent", rec.Extent, "duration_ms", rec.DurationMS)
			if err := out.WriteParticles(rec); err != nil {
				logger.Error("failed to write particle record", "error", err)
			}
		}
	}
}

// simulateOrbits steps the configured system at 60 Hz and logs final positions.
func simulateOrbits(cfg *config.Config, seconds float64, logger *slog.Logger) {
	sys, err := cfg.BuildSystem()
	if err != nil {
		logger.Error("failed to build system", "error", err)
		return
	}
	const dt = 1.0 / 60
	for t := 0.0; t < seconds; t += dt {
		sys.Update(dt)
	}
	for _, b := range sys.Snapshot() {
		logger.Info("body",
			"name", b.Name,
			"parent", b.Parent,
			"x", b.Position.X,
			"y", b.Position.Y,
			"z", b.Position.Z,
			"rotation", b.RotationAngle,
		)
	}
	logger.Info("orbits complete", "bodies", sys.Len(), "elapsed_s", sys.Elapsed())
}
