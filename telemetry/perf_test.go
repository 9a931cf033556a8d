package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/orrery/raster"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(raster.PhaseBase)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(raster.PhaseFeatures)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgDuration <= 0 {
		t.Error("expected positive average duration")
	}
	if stats.Samples != 5 || pc.Total() != 5 {
		t.Errorf("samples = %d, total = %d, want 5", stats.Samples, pc.Total())
	}
	if _, ok := stats.PhaseAvg[raster.PhaseBase]; !ok {
		t.Error("expected base phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[raster.PhaseFeatures]; !ok {
		t.Error("expected features phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)
	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(raster.PhaseSeam)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.Samples != 5 {
		t.Errorf("samples = %d, want window size 5", stats.Samples)
	}
	if pc.Total() != 10 {
		t.Errorf("total = %d, want 10", pc.Total())
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.PhasePct["slow"] <= stats.PhasePct["fast"] {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", stats.PhasePct["slow"], stats.PhasePct["fast"])
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)
	stats := pc.Stats()
	if stats.AvgDuration != 0 {
		t.Error("expected zero avg duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
	if _, ok := pc.Last(); ok {
		t.Error("expected no last sample")
	}
}

func TestPerfCollector_SynthesizerPhases(t *testing.T) {
	pc := NewPerfCollector(4)
	opts := raster.DefaultOptions()
	opts.BaseWidth, opts.BaseHeight = 64, 32
	s := raster.NewSynthesizer(opts)
	s.SetTimer(pc)
	s.Synthesize(raster.Request{Kind: raster.KindMoon, Identity: "luna"})

	last, ok := pc.Last()
	if !ok {
		t.Fatal("expected a sample")
	}
	for _, phase := range Phases {
		if _, ok := last.Phases[phase]; !ok {
			t.Errorf("phase %q not recorded", phase)
		}
	}
	if last.Duration <= 0 {
		t.Error("expected positive duration")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}
	if stats.FPS <= 0 || stats.FPS > 80 {
		t.Errorf("FPS = %v, want (0, 80]", stats.FPS)
	}
}
