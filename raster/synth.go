package raster

import (
	"fmt"
	"math/rand"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/orrery/noise"
)

// Default synthesis sizes and feature bands.
const (
	DefaultBaseWidth   = 2048
	DefaultBaseHeight  = 1024
	DefaultSeamColumns = 16
	DefaultPoleBand    = 0.15
)

// Pipeline phase names reported to a PhaseTimer.
const (
	PhaseAlloc    = "alloc"
	PhaseBase     = "base"
	PhaseFeatures = "features"
	PhaseFeather  = "feather"
	PhaseSeam     = "seam"
)

// Kind selects the procedural feature set applied over the base layer.
type Kind uint8

const (
	KindGeneric Kind = iota
	KindStar
	KindRocky
	KindGasGiant
	KindMoon
	KindOcean
	KindIce
)

// Kinds lists every kind with a dedicated feature set.
var Kinds = []Kind{KindStar, KindRocky, KindGasGiant, KindMoon, KindOcean, KindIce}

// String returns the kind name used in requests and file names.
func (k Kind) String() string {
	switch k {
	case KindStar:
		return "star"
	case KindRocky:
		return "rocky"
	case KindGasGiant:
		return "gasGiant"
	case KindMoon:
		return "moon"
	case KindOcean:
		return "ocean"
	case KindIce:
		return "ice"
	default:
		return "generic"
	}
}

// ParseKind maps a kind name (case-insensitive, common aliases accepted) to
// a Kind. Unrecognized names return KindGeneric and false; synthesis then
// renders the base layer only.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "star", "sun":
		return KindStar, true
	case "rocky", "rockyplanet", "planet", "terrestrial":
		return KindRocky, true
	case "gasgiant", "gas_giant", "gas-giant", "jovian":
		return KindGasGiant, true
	case "moon":
		return KindMoon, true
	case "ocean", "oceanworld", "earth", "earthlike":
		return KindOcean, true
	case "ice", "icegiant", "ice_giant":
		return KindIce, true
	case "generic", "":
		return KindGeneric, true
	default:
		return KindGeneric, false
	}
}

// DefaultPalette returns the palette used when a request leaves it empty.
func DefaultPalette(k Kind) Palette {
	switch k {
	case KindStar:
		return Palette{Primary: colorful.Color{R: 1, G: 0.8, B: 0.33}, Secondary: colorful.Color{R: 1, G: 0.42, B: 0.1}}
	case KindRocky:
		return Palette{Primary: colorful.Color{R: 0.63, G: 0.47, B: 0.35}, Secondary: colorful.Color{R: 0.35, G: 0.27, B: 0.21}}
	case KindGasGiant:
		return Palette{Primary: colorful.Color{R: 0.85, G: 0.71, B: 0.54}, Secondary: colorful.Color{R: 0.55, G: 0.35, B: 0.24}}
	case KindOcean:
		return Palette{Primary: colorful.Color{R: 0.18, G: 0.42, B: 0.31}, Secondary: colorful.Color{R: 0.1, G: 0.31, B: 0.55}}
	case KindIce:
		return Palette{Primary: colorful.Color{R: 0.86, G: 0.91, B: 0.96}, Secondary: colorful.Color{R: 0.56, G: 0.7, B: 0.81}}
	default:
		return Gray
	}
}

// Request describes one texture to synthesize.
type Request struct {
	Kind       Kind
	Identity   string  // Distinguishes bodies of the same kind; hashed into the seed
	Palette    Palette // Zero value selects DefaultPalette(Kind)
	Resolution float64 // Multiplier on the base size; 0.25 previews, 1.0 final
}

// Options configures a Synthesizer.
type Options struct {
	BaseWidth   int
	BaseHeight  int
	FadeZone    float64 // Fraction of height feathered at each pole
	SeamColumns int     // Edge columns blended at resolution 1.0
	PoleBand    float64 // Fraction of height near each pole where features shrink

	Basis       noise.Basis
	Octaves     int
	Persistence float64
	Scale       float64 // Base noise frequency per base-resolution pixel
	Seed        int64
}

// DefaultOptions returns the standard 2048x1024 configuration.
func DefaultOptions() Options {
	return Options{
		BaseWidth:   DefaultBaseWidth,
		BaseHeight:  DefaultBaseHeight,
		FadeZone:    DefaultFadeZone,
		SeamColumns: DefaultSeamColumns,
		PoleBand:    DefaultPoleBand,
		Basis:       noise.BasisPerlin,
		Octaves:     6,
		Persistence: 0.5,
		Scale:       0.004,
		Seed:        1,
	}
}

// PhaseTimer receives pipeline phase boundaries. telemetry.PerfCollector
// satisfies it.
type PhaseTimer interface {
	StartTick()
	StartPhase(phase string)
	EndTick()
}

type nopTimer struct{}

func (nopTimer) StartTick()        {}
func (nopTimer) StartPhase(string) {}
func (nopTimer) EndTick()          {}

// Synthesizer builds equirectangular rasters. It holds no per-call state;
// each Synthesize call allocates and returns a new raster.
type Synthesizer struct {
	opts  Options
	timer PhaseTimer
}

// NewSynthesizer creates a synthesizer. Zero-valued options take defaults.
func NewSynthesizer(opts Options) *Synthesizer {
	d := DefaultOptions()
	if opts.BaseWidth <= 0 {
		opts.BaseWidth = d.BaseWidth
	}
	if opts.BaseHeight <= 0 {
		opts.BaseHeight = opts.BaseWidth / 2
	}
	if opts.FadeZone <= 0 {
		opts.FadeZone = d.FadeZone
	}
	if opts.SeamColumns <= 0 {
		opts.SeamColumns = d.SeamColumns
	}
	if opts.PoleBand <= 0 {
		opts.PoleBand = d.PoleBand
	}
	if opts.Octaves <= 0 {
		opts.Octaves = d.Octaves
	}
	if opts.Scale <= 0 {
		opts.Scale = d.Scale
	}
	return &Synthesizer{opts: opts, timer: nopTimer{}}
}

// SetTimer installs a phase timer. nil removes it.
func (s *Synthesizer) SetTimer(t PhaseTimer) {
	if t == nil {
		t = nopTimer{}
	}
	s.timer = t
}

// Options returns the effective options.
func (s *Synthesizer) Options() Options {
	return s.opts
}

// Generate synthesizes req and uploads the result through sink. A nil sink
// returns ErrBackendUnavailable without synthesizing.
func (s *Synthesizer) Generate(sink Sink, req Request) (*Raster, error) {
	if sink == nil {
		return nil, ErrBackendUnavailable
	}
	r := s.Synthesize(req)
	if err := sink.Upload(r); err != nil {
		return nil, fmt.Errorf("uploading %s texture: %w", req.Kind, err)
	}
	return r, nil
}

// Synthesize runs the full pipeline: allocate, base layer, kind features,
// pole feathering, seam blending. Unknown kinds get the base layer only.
func (s *Synthesizer) Synthesize(req Request) *Raster {
	t := s.timer
	t.StartTick()
	defer t.EndTick()

	t.StartPhase(PhaseAlloc)
	if req.Resolution <= 0 {
		req.Resolution = 1
	}
	if req.Palette == (Palette{}) {
		req.Palette = DefaultPalette(req.Kind)
	}
	w, h := Size(s.opts.BaseWidth, s.opts.BaseHeight, req.Resolution)
	seed := noise.HashSeed(s.opts.Seed, req.Kind.String()+"/"+req.Identity)
	cv := newCanvas(w, h, s.opts, req.Palette, seed)

	t.StartPhase(PhaseBase)
	cv.fillBase()

	t.StartPhase(PhaseFeatures)
	switch req.Kind {
	case KindStar:
		paintStar(cv)
	case KindRocky:
		paintRocky(cv, rockyStyle)
	case KindMoon:
		paintRocky(cv, moonStyle)
	case KindGasGiant:
		paintGasGiant(cv)
	case KindOcean:
		paintOcean(cv)
	case KindIce:
		paintIce(cv)
	}
	r := cv.quantize()

	t.StartPhase(PhaseFeather)
	FeatherPoles(r, s.opts.FadeZone)

	t.StartPhase(PhaseSeam)
	cols := int(float64(s.opts.SeamColumns)*req.Resolution + 0.5)
	if cols < 2 {
		cols = 2
	}
	BlendSeam(r, cols)

	r.Kind = req.Kind
	r.Identity = req.Identity
	r.Resolution = req.Resolution
	return r
}

// canvas is the float working surface for one synthesis call.
type canvas struct {
	w, h    int
	pix     []float32 // RGB triples
	opts    Options
	palette Palette
	rng     *rand.Rand
	seed    int64

	// Noise space: base-resolution pixel units, periodic over period
	scale  float64
	period float64
	base   noise.Fractal
}

func newCanvas(w, h int, opts Options, p Palette, seed int64) *canvas {
	period := float64(2 * opts.BaseHeight)
	return &canvas{
		w:       w,
		h:       h,
		pix:     make([]float32, 3*w*h),
		opts:    opts,
		palette: p,
		rng:     rand.New(rand.NewSource(seed)),
		seed:    seed,
		scale:   period / float64(w),
		period:  period,
		base: noise.Fractal{
			Src:         noise.NewSource(opts.Basis, seed),
			Octaves:     opts.Octaves,
			Persistence: opts.Persistence,
			Scale:       opts.Scale,
		},
	}
}

// fractal returns a derived fractal with its own seed offset and frequency.
func (c *canvas) fractal(seedOffset int64, octaves int, freqMul float64) noise.Fractal {
	return noise.Fractal{
		Src:         noise.NewSource(c.opts.Basis, c.seed+seedOffset),
		Octaves:     octaves,
		Persistence: c.opts.Persistence,
		Scale:       c.opts.Scale * freqMul,
	}
}

// noiseXY maps a pixel to noise space so previews and finals sample the same field.
func (c *canvas) noiseXY(x, y int) (float64, float64) {
	return (float64(x) + 0.5) * c.scale, (float64(y) + 0.5) * c.scale
}

// v returns the normalized latitude coordinate of row y, 0 at the north pole.
func (c *canvas) v(y int) float64 {
	return (float64(y) + 0.5) / float64(c.h)
}

// fillBase modulates the primary color's brightness with seamless fractal noise.
func (c *canvas) fillBase() {
	p := c.palette.Primary
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			nx, ny := c.noiseXY(x, y)
			b := 0.7 + 0.6*c.base.Seamless(nx, ny, c.period)
			c.set(x, y, colorful.Color{R: p.R * b, G: p.G * b, B: p.B * b})
		}
	}
}

func (c *canvas) index(x, y int) int {
	x %= c.w
	if x < 0 {
		x += c.w
	}
	return 3 * (y*c.w + x)
}

func (c *canvas) get(x, y int) colorful.Color {
	i := c.index(x, y)
	return colorful.Color{R: float64(c.pix[i]), G: float64(c.pix[i+1]), B: float64(c.pix[i+2])}
}

func (c *canvas) set(x, y int, col colorful.Color) {
	i := c.index(x, y)
	c.pix[i] = float32(col.R)
	c.pix[i+1] = float32(col.G)
	c.pix[i+2] = float32(col.B)
}

// mix blends col over the pixel with weight a.
func (c *canvas) mix(x, y int, col colorful.Color, a float64) {
	if a <= 0 {
		return
	}
	if a > 1 {
		a = 1
	}
	c.set(x, y, c.get(x, y).BlendRgb(col, a))
}

// scaleBy multiplies the pixel brightness by f.
func (c *canvas) scaleBy(x, y int, f float64) {
	i := c.index(x, y)
	c.pix[i] *= float32(f)
	c.pix[i+1] *= float32(f)
	c.pix[i+2] *= float32(f)
}

func (c *canvas) quantize() *Raster {
	r := New(c.w, c.h)
	for i, j := 0, 0; i < len(c.pix); i, j = i+3, j+4 {
		r.Pix[j] = quantizeChannel(c.pix[i])
		r.Pix[j+1] = quantizeChannel(c.pix[i+1])
		r.Pix[j+2] = quantizeChannel(c.pix[i+2])
	}
	return r
}

func quantizeChannel(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
