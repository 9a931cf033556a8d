package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/orrery/particles"
	"github.com/pthm-cable/orrery/raster"
)

// GenerationRecord describes one produced texture, one row of generations.csv.
type GenerationRecord struct {
	Kind       string  `csv:"kind"`
	Identity   string  `csv:"identity"`
	Resolution float64 `csv:"resolution"`
	Width      int     `csv:"width"`
	Height     int     `csv:"height"`
	DurationMS float64 `csv:"duration_ms"`
	CacheHit   bool    `csv:"cache_hit"`

	// Quality checks
	SeamError      int     `csv:"seam_error"`       // Max channel difference across u=0/u=1
	PoleDistance   float64 `csv:"pole_distance"`    // Worst pole row vs equator mean, 0-1
	EquatorLumaStd float64 `csv:"equator_luma_std"` // Surface contrast
}

// NewGenerationRecord measures r.
func NewGenerationRecord(r *raster.Raster, d time.Duration, cacheHit bool) GenerationRecord {
	equator := raster.Band(r, r.Height*2/5, r.Height*3/5)
	north := raster.Band(r, 0, 1)
	south := raster.Band(r, r.Height-1, r.Height)
	pole := raster.ColorDistance(north.Mean, equator.Mean)
	if s := raster.ColorDistance(south.Mean, equator.Mean); s > pole {
		pole = s
	}
	return GenerationRecord{
		Kind:           r.Kind.String(),
		Identity:       r.Identity,
		Resolution:     r.Resolution,
		Width:          r.Width,
		Height:         r.Height,
		DurationMS:     float64(d) / float64(time.Millisecond),
		CacheHit:       cacheHit,
		SeamError:      raster.SeamError(r),
		PoleDistance:   pole,
		EquatorLumaStd: equator.LumaStdev,
	}
}

// LogValue implements slog.LogValuer.
func (g GenerationRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", g.Kind),
		slog.String("identity", g.Identity),
		slog.Float64("resolution", g.Resolution),
		slog.Int("width", g.Width),
		slog.Int("height", g.Height),
		slog.Float64("duration_ms", g.DurationMS),
		slog.Bool("cache_hit", g.CacheHit),
		slog.Int("seam_error", g.SeamError),
	)
}

// ParticleRecord describes one generated particle field, one row of particles.csv.
type ParticleRecord struct {
	Generator  string  `csv:"generator"`
	Count      int     `csv:"count"`
	Extent     float64 `csv:"extent"` // Largest distance from the origin
	DurationMS float64 `csv:"duration_ms"`
}

// NewParticleRecord measures f.
func NewParticleRecord(generator string, f particles.Field, d time.Duration) ParticleRecord {
	b := f.Points()
	return ParticleRecord{
		Generator:  generator,
		Count:      b.Len(),
		Extent:     b.Extent(),
		DurationMS: float64(d) / float64(time.Millisecond),
	}
}

// DurationSummary aggregates generation durations.
type DurationSummary struct {
	Count  int
	MeanMS float64
	P50MS  float64
	P90MS  float64
}

// Summarize computes duration statistics over records.
func Summarize(records []GenerationRecord) DurationSummary {
	if len(records) == 0 {
		return DurationSummary{}
	}
	d := make([]float64, len(records))
	for i, r := range records {
		d[i] = r.DurationMS
	}
	sort.Float64s(d)
	return DurationSummary{
		Count:  len(d),
		MeanMS: stat.Mean(d, nil),
		P50MS:  stat.Quantile(0.5, stat.Empirical, d, nil),
		P90MS:  stat.Quantile(0.9, stat.Empirical, d, nil),
	}
}
