// Package config provides configuration loading and access for the generators and hosts.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/orrery/kinematics"
	"github.com/pthm-cable/orrery/noise"
	"github.com/pthm-cable/orrery/particles"
	"github.com/pthm-cable/orrery/raster"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all generator and host configuration parameters.
type Config struct {
	Texture    TextureConfig     `yaml:"texture"`
	Noise      NoiseConfig       `yaml:"noise"`
	Palettes   map[string]string `yaml:"palettes"`
	Galaxy     GalaxyConfig      `yaml:"galaxy"`
	DiskHalo   DiskHaloConfig    `yaml:"disk_halo"`
	StarField  StarFieldConfig   `yaml:"star_field"`
	Nebula     NebulaConfig      `yaml:"nebula"`
	Belt       BeltConfig        `yaml:"belt"`
	Wind       WindConfig        `yaml:"wind"`
	Dust       DustConfig        `yaml:"dust"`
	Debris     DebrisConfig      `yaml:"debris"`
	Kinematics KinematicsConfig  `yaml:"kinematics"`
	Bodies     []BodyConfig      `yaml:"bodies"`
	Server     ServerConfig      `yaml:"server"`
	Logging    LoggingConfig     `yaml:"logging"`
	Telemetry  TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// TextureConfig holds equirectangular texture synthesis parameters.
type TextureConfig struct {
	BaseWidth         int     `yaml:"base_width"`         // Width at resolution 1.0
	BaseHeight        int     `yaml:"base_height"`        // Height at resolution 1.0
	FadeZone          float64 `yaml:"fade_zone"`          // Fraction of height feathered at each pole
	SeamColumns       int     `yaml:"seam_columns"`       // Edge columns blended across the u=0/u=1 seam (at 1.0)
	PoleBand          float64 `yaml:"pole_band"`          // Latitude band (fraction of height) where features shrink
	PreviewResolution float64 `yaml:"preview_resolution"` // Resolution multiplier for fast first activation
	FinalResolution   float64 `yaml:"final_resolution"`   // Resolution multiplier for final quality
}

// NoiseConfig holds the base layer noise parameters.
type NoiseConfig struct {
	Basis       string  `yaml:"basis"`       // perlin or simplex
	Octaves     int     `yaml:"octaves"`     // Fractal octaves
	Persistence float64 `yaml:"persistence"` // Amplitude multiplier per octave
	Scale       float64 `yaml:"scale"`       // Base frequency per pixel
	Seed        int64   `yaml:"seed"`        // Mixed with the identity hash
}

// GalaxyConfig holds density-wave galaxy parameters.
type GalaxyConfig struct {
	Strategy        string  `yaml:"strategy"` // density_wave or disk_halo
	Count           int     `yaml:"count"`
	Radius          float64 `yaml:"radius"`
	Branches        int     `yaml:"branches"`
	Spin            float64 `yaml:"spin"`
	Randomness      float64 `yaml:"randomness"`
	RandomnessPower float64 `yaml:"randomness_power"`
	WaveFrequency   float64 `yaml:"wave_frequency"`
	WaveAmplitude   float64 `yaml:"wave_amplitude"`
	InsideColor     string  `yaml:"inside_color"`
	OutsideColor    string  `yaml:"outside_color"`
	Size            float64 `yaml:"size"`
	RotationSpeed   float64 `yaml:"rotation_speed"` // Radians per second at the core
	Layers          int     `yaml:"layers"`         // 1 = single field, 2-4 = layered
	Seed            int64   `yaml:"seed"`
}

// DiskHaloConfig holds exponential disk plus halo parameters.
type DiskHaloConfig struct {
	Count         int     `yaml:"count"`
	Radius        float64 `yaml:"radius"`
	ScaleLength   float64 `yaml:"scale_length"`
	HaloFraction  float64 `yaml:"halo_fraction"`
	DiskThickness float64 `yaml:"disk_thickness"`
	HaloRadius    float64 `yaml:"halo_radius"`
	InsideColor   string  `yaml:"inside_color"`
	OutsideColor  string  `yaml:"outside_color"`
	HaloColor     string  `yaml:"halo_color"`
	Size          float64 `yaml:"size"`
	Seed          int64   `yaml:"seed"`
}

// StarLayerConfig holds one depth band of the star field.
type StarLayerConfig struct {
	Name           string  `yaml:"name"`
	Count          int     `yaml:"count"`
	InnerRadius    float64 `yaml:"inner_radius"`
	OuterRadius    float64 `yaml:"outer_radius"`
	MinBrightness  float64 `yaml:"min_brightness"`
	MaxBrightness  float64 `yaml:"max_brightness"`
	Size           float64 `yaml:"size"`
	TwinkleSpeedLo float64 `yaml:"twinkle_speed_lo"` // Radians per second
	TwinkleSpeedHi float64 `yaml:"twinkle_speed_hi"`
}

// StarFieldConfig holds multi-layer star field parameters.
type StarFieldConfig struct {
	Layers []StarLayerConfig `yaml:"layers"`
	Seed   int64             `yaml:"seed"`
}

// NebulaConfig holds nebula cloud parameters.
type NebulaConfig struct {
	Count         int       `yaml:"count"`
	Radii         []float64 `yaml:"radii"` // Ellipsoid semi-axes x, y, z
	NoiseScale    float64   `yaml:"noise_scale"`
	Threshold     float64   `yaml:"threshold"`
	InnerColor    string    `yaml:"inner_color"`
	OuterColor    string    `yaml:"outer_color"`
	Size          float64   `yaml:"size"`
	RotationSpeed float64   `yaml:"rotation_speed"`
	Seed          int64     `yaml:"seed"`
}

// BeltConfig holds asteroid belt parameters.
type BeltConfig struct {
	Count       int     `yaml:"count"`
	InnerRadius float64 `yaml:"inner_radius"`
	OuterRadius float64 `yaml:"outer_radius"`
	Thickness   float64 `yaml:"thickness"`
	BaseSpeed   float64 `yaml:"base_speed"` // Angular speed at radius 1, radians per second
	Color       string  `yaml:"color"`
	Size        float64 `yaml:"size"`
	Seed        int64   `yaml:"seed"`
}

// WindConfig holds solar wind parameters.
type WindConfig struct {
	Count      int     `yaml:"count"`
	EmitRadius float64 `yaml:"emit_radius"`
	MaxRadius  float64 `yaml:"max_radius"`
	SpeedLo    float64 `yaml:"speed_lo"` // Units per second
	SpeedHi    float64 `yaml:"speed_hi"`
	LifetimeLo float64 `yaml:"lifetime_lo"` // Seconds
	LifetimeHi float64 `yaml:"lifetime_hi"`
	Color      string  `yaml:"color"`
	Size       float64 `yaml:"size"`
	Seed       int64   `yaml:"seed"`
}

// DustConfig holds galactic dust lane parameters.
type DustConfig struct {
	Count         int     `yaml:"count"`
	Radius        float64 `yaml:"radius"`
	Thickness     float64 `yaml:"thickness"`
	Color         string  `yaml:"color"`
	Size          float64 `yaml:"size"`
	RotationSpeed float64 `yaml:"rotation_speed"`
	Seed          int64   `yaml:"seed"`
}

// DebrisConfig holds debris ring parameters.
type DebrisConfig struct {
	Count      int     `yaml:"count"`
	Radius     float64 `yaml:"radius"`
	Width      float64 `yaml:"width"`
	Speed      float64 `yaml:"speed"` // Radians per second at Radius
	Drift      float64 `yaml:"drift"` // Units per second outward
	MaxRadius  float64 `yaml:"max_radius"`
	LifetimeLo float64 `yaml:"lifetime_lo"`
	LifetimeHi float64 `yaml:"lifetime_hi"`
	Color      string  `yaml:"color"`
	Size       float64 `yaml:"size"`
	Seed       int64   `yaml:"seed"`
}

// KinematicsConfig holds per-second base rates.
type KinematicsConfig struct {
	BaseRotationSpeed float64 `yaml:"base_rotation_speed"` // Radians per second
	BaseOrbitalSpeed  float64 `yaml:"base_orbital_speed"`  // Radians per second at distance 1
	CentralMass       float64 `yaml:"central_mass"`
}

// BodyConfig describes a body in the default orrery scene.
type BodyConfig struct {
	Name               string  `yaml:"name"`
	Kind               string  `yaml:"kind"`
	Parent             string  `yaml:"parent"` // Empty for bodies orbiting the central star
	Size               float64 `yaml:"size"`
	Distance           float64 `yaml:"distance"`
	InclinationDegrees float64 `yaml:"inclination_degrees"`
	Palette            string  `yaml:"palette"` // Key into Palettes
}

// ServerConfig holds HTTP host settings.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RequestsPerSec float64  `yaml:"requests_per_sec"`
	Burst          int      `yaml:"burst"`
	RateLimit      bool     `yaml:"rate_limit"`
	TickHz         float64  `yaml:"tick_hz"`   // Websocket orbit stream rate
	MaxDelta       float64  `yaml:"max_delta"` // Clamp for pathological tick gaps, seconds

	// Accepted ?res values besides the preview and final resolutions
	Resolutions []float64 `yaml:"resolutions"`
	CacheMB     int       `yaml:"cache_mb"` // Texture cache cap, 0 = unbounded
}

// LoggingConfig holds slog handler settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	JSONFormat bool   `yaml:"json_format"`
}

// TelemetryConfig holds generation telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"` // Number of generations averaged
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Palettes    map[string]raster.Palette // Parsed Palettes
	NoiseBasis  noise.Basis
	Strategy    particles.GalaxyStrategy
	PreviewSize [2]int // Texture width, height at the preview resolution
	FinalSize   [2]int // Texture width, height at the final resolution
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	c.Derived.Palettes = make(map[string]raster.Palette, len(c.Palettes))
	for name, spec := range c.Palettes {
		p, err := raster.ParsePalette(spec)
		if err != nil {
			return fmt.Errorf("palette %q: %w", name, err)
		}
		c.Derived.Palettes[name] = p
	}

	if err := c.validateColors(); err != nil {
		return err
	}

	basis, err := noise.ParseBasis(c.Noise.Basis)
	if err != nil {
		return fmt.Errorf("noise: %w", err)
	}
	c.Derived.NoiseBasis = basis

	strategy, err := particles.ParseStrategy(c.Galaxy.Strategy)
	if err != nil {
		return fmt.Errorf("galaxy: %w", err)
	}
	c.Derived.Strategy = strategy

	w, h := raster.Size(c.Texture.BaseWidth, c.Texture.BaseHeight, c.Texture.PreviewResolution)
	c.Derived.PreviewSize = [2]int{w, h}
	w, h = raster.Size(c.Texture.BaseWidth, c.Texture.BaseHeight, c.Texture.FinalResolution)
	c.Derived.FinalSize = [2]int{w, h}
	return nil
}

// ApplyEnv overrides server and logging settings from ORRERY_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("ORRERY_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("ORRERY_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("ORRERY_RATE_LIMIT"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ORRERY_RATE_LIMIT: %w", err)
		}
		c.Server.RateLimit = enabled
	}
	if v := os.Getenv("ORRERY_REQUESTS_PER_SEC"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ORRERY_REQUESTS_PER_SEC: %w", err)
		}
		c.Server.RequestsPerSec = rps
	}
	if v := os.Getenv("ORRERY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ORRERY_LOG_JSON"); v != "" {
		jsonFormat, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ORRERY_LOG_JSON: %w", err)
		}
		c.Logging.JSONFormat = jsonFormat
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Palette returns the named palette, falling back to neutral gray.
func (c *Config) Palette(name string) raster.Palette {
	if p, ok := c.Derived.Palettes[name]; ok {
		return p
	}
	return raster.Gray
}

// SynthOptions converts the texture and noise sections into synthesizer options.
func (c *Config) SynthOptions() raster.Options {
	return raster.Options{
		BaseWidth:   c.Texture.BaseWidth,
		BaseHeight:  c.Texture.BaseHeight,
		FadeZone:    c.Texture.FadeZone,
		SeamColumns: c.Texture.SeamColumns,
		PoleBand:    c.Texture.PoleBand,
		Basis:       c.Derived.NoiseBasis,
		Octaves:     c.Noise.Octaves,
		Persistence: c.Noise.Persistence,
		Scale:       c.Noise.Scale,
		Seed:        c.Noise.Seed,
	}
}

// Engine returns a kinematics engine with the configured base rates.
func (c *Config) Engine() kinematics.Engine {
	return kinematics.Engine{
		BaseRotationSpeed: c.Kinematics.BaseRotationSpeed,
		BaseOrbitalSpeed:  c.Kinematics.BaseOrbitalSpeed,
		CentralMass:       c.Kinematics.CentralMass,
	}
}
