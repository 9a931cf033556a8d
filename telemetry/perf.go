package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/orrery/raster"
)

// Phases of the texture synthesis pipeline, in execution order.
var Phases = []string{
	raster.PhaseAlloc,
	raster.PhaseBase,
	raster.PhaseFeatures,
	raster.PhaseFeather,
	raster.PhaseSeam,
}

// PerfSample holds timing data for a single generation.
type PerfSample struct {
	Duration time.Duration
	Phases   map[string]time.Duration
}

// PerfCollector tracks synthesis timings over a rolling window. It
// implements raster.PhaseTimer. A collector is not safe for concurrent use;
// hosts that synthesize concurrently give each synthesizer its own.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	total         int
	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string

	// Frame timing (for the preview window)
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize generations.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 32
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartTick begins timing a generation.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick finishes the generation and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		Duration: now.Sub(p.tickStart),
		Phases:   p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.total++
}

// Last returns the most recent sample.
func (p *PerfCollector) Last() (PerfSample, bool) {
	if p.sampleCount == 0 {
		return PerfSample{}, false
	}
	i := (p.writeIndex - 1 + p.windowSize) % p.windowSize
	return p.samples[i], true
}

// Total returns the number of generations recorded since creation.
func (p *PerfCollector) Total() int { return p.total }

// RecordFrame records frame timing for the preview window.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated synthesis statistics.
type PerfStats struct {
	AvgDuration time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration

	// Phase breakdown (average durations and share of total)
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	Samples int

	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.frameDuration > 0 {
		fps = float64(time.Second) / float64(p.frameDuration)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:      make(map[string]time.Duration),
			PhasePct:      make(map[string]float64),
			FrameDuration: p.frameDuration,
			FPS:           fps,
		}
	}

	var total, minDur, maxDur time.Duration
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.Duration
		if i == 0 || s.Duration < minDur {
			minDur = s.Duration
		}
		if s.Duration > maxDur {
			maxDur = s.Duration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)
	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	return PerfStats{
		AvgDuration:   avg,
		MinDuration:   minDur,
		MaxDuration:   maxDur,
		PhaseAvg:      phaseAvg,
		PhasePct:      phasePct,
		Samples:       p.sampleCount,
		FrameDuration: p.frameDuration,
		FPS:           fps,
	}
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_ms", s.AvgDuration.Milliseconds()),
		slog.Int64("min_ms", s.MinDuration.Milliseconds()),
		slog.Int64("max_ms", s.MaxDuration.Milliseconds()),
		slog.Int("samples", s.Samples),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat record for perf.csv.
type PerfStatsCSV struct {
	Generation  int     `csv:"generation"`
	AvgMS       float64 `csv:"avg_ms"`
	MinMS       float64 `csv:"min_ms"`
	MaxMS       float64 `csv:"max_ms"`
	AllocPct    float64 `csv:"alloc_pct"`
	BasePct     float64 `csv:"base_pct"`
	FeaturesPct float64 `csv:"features_pct"`
	FeatherPct  float64 `csv:"feather_pct"`
	SeamPct     float64 `csv:"seam_pct"`
}

// ToCSV flattens the stats for export.
func (s PerfStats) ToCSV(generation int) PerfStatsCSV {
	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
	return PerfStatsCSV{
		Generation:  generation,
		AvgMS:       ms(s.AvgDuration),
		MinMS:       ms(s.MinDuration),
		MaxMS:       ms(s.MaxDuration),
		AllocPct:    s.PhasePct[raster.PhaseAlloc],
		BasePct:     s.PhasePct[raster.PhaseBase],
		FeaturesPct: s.PhasePct[raster.PhaseFeatures],
		FeatherPct:  s.PhasePct[raster.PhaseFeather],
		SeamPct:     s.PhasePct[raster.PhaseSeam],
	}
}
