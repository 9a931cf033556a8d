package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/orrery/particles"
	"github.com/pthm-cable/orrery/raster"
)

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	if err := om.WriteGeneration(GenerationRecord{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManager_GenerationsCSV(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	r := raster.New(16, 8)
	r.Kind = raster.KindIce
	r.Identity = "europa"
	r.Resolution = 0.5
	for i := 0; i < 3; i++ {
		if err := om.WriteGeneration(NewGenerationRecord(r, time.Duration(i+1)*time.Millisecond, i > 0)); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "generations.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var got []GenerationRecord
	if err := gocsv.UnmarshalFile(f, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("read %d records, want 3 (header written once)", len(got))
	}
	if got[0].Kind != "ice" || got[0].Identity != "europa" || got[0].Width != 16 {
		t.Errorf("first record = %+v", got[0])
	}
	if got[0].CacheHit || !got[2].CacheHit {
		t.Error("cache_hit column not preserved")
	}
}

func TestOutputManager_ParticlesAndPerf(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	g := particles.GenerateGalaxy(particles.GalaxyParams{Count: 50})
	if err := om.WriteParticles(NewParticleRecord("galaxy", g, time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	pc := NewPerfCollector(2)
	pc.StartTick()
	pc.StartPhase(raster.PhaseBase)
	pc.EndTick()
	if err := om.WritePerf(pc.Stats(), 1); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "particles.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "generator,count") || !strings.HasPrefix(lines[1], "galaxy,50") {
		t.Errorf("particles.csv = %q", data)
	}

	data, err = os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "base_pct") {
		t.Errorf("perf.csv missing phase columns: %q", data)
	}
}

func TestSummarize(t *testing.T) {
	if s := Summarize(nil); s.Count != 0 {
		t.Errorf("empty summary = %+v", s)
	}
	var recs []GenerationRecord
	for _, ms := range []float64{5, 1, 4, 2, 3} {
		recs = append(recs, GenerationRecord{DurationMS: ms})
	}
	s := Summarize(recs)
	if s.Count != 5 || math.Abs(s.MeanMS-3) > 1e-9 || s.P50MS != 3 {
		t.Errorf("summary = %+v", s)
	}
	if s.P90MS < s.P50MS {
		t.Errorf("p90 %v < p50 %v", s.P90MS, s.P50MS)
	}
}
