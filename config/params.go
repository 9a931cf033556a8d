package config

import (
	"fmt"
	"slices"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orrery/components"
	"github.com/pthm-cable/orrery/kinematics"
	"github.com/pthm-cable/orrery/particles"
	"github.com/pthm-cable/orrery/raster"
)

// hex parses a "#rrggbb" color. Empty or malformed values return the zero
// color, which the particle parameter defaults replace.
func hex(s string) colorful.Color {
	if s == "" {
		return colorful.Color{}
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}
	}
	return c
}

// colors lists every particle color field with its yaml path.
func (c *Config) colors() map[string]string {
	return map[string]string{
		"galaxy.inside_color":     c.Galaxy.InsideColor,
		"galaxy.outside_color":    c.Galaxy.OutsideColor,
		"disk_halo.inside_color":  c.DiskHalo.InsideColor,
		"disk_halo.outside_color": c.DiskHalo.OutsideColor,
		"disk_halo.halo_color":    c.DiskHalo.HaloColor,
		"nebula.inner_color":      c.Nebula.InnerColor,
		"nebula.outer_color":      c.Nebula.OuterColor,
		"belt.color":              c.Belt.Color,
		"wind.color":              c.Wind.Color,
		"dust.color":              c.Dust.Color,
		"debris.color":            c.Debris.Color,
	}
}

func (c *Config) validateColors() error {
	for field, v := range c.colors() {
		if v == "" {
			continue
		}
		if _, err := colorful.Hex(v); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	return nil
}

// GalaxyParams converts the galaxy section.
func (c *Config) GalaxyParams() particles.GalaxyParams {
	g := c.Galaxy
	return particles.GalaxyParams{
		Count:           g.Count,
		Radius:          g.Radius,
		Branches:        g.Branches,
		Spin:            g.Spin,
		Randomness:      g.Randomness,
		RandomnessPower: g.RandomnessPower,
		WaveFrequency:   g.WaveFrequency,
		WaveAmplitude:   g.WaveAmplitude,
		InsideColor:     hex(g.InsideColor),
		OutsideColor:    hex(g.OutsideColor),
		Size:            g.Size,
		RotationSpeed:   g.RotationSpeed,
		Seed:            g.Seed,
	}
}

// DiskHaloParams converts the disk_halo section.
func (c *Config) DiskHaloParams() particles.DiskHaloParams {
	d := c.DiskHalo
	return particles.DiskHaloParams{
		Count:         d.Count,
		Radius:        d.Radius,
		ScaleLength:   d.ScaleLength,
		HaloFraction:  d.HaloFraction,
		DiskThickness: d.DiskThickness,
		HaloRadius:    d.HaloRadius,
		InsideColor:   hex(d.InsideColor),
		OutsideColor:  hex(d.OutsideColor),
		HaloColor:     hex(d.HaloColor),
		Size:          d.Size,
		Seed:          d.Seed,
	}
}

// GalaxyFields generates the configured galaxy: the selected strategy, or
// a layered density-wave galaxy when Layers is above 1.
func (c *Config) GalaxyFields() []particles.Field {
	if c.Derived.Strategy == particles.StrategyDensityWave && c.Galaxy.Layers > 1 {
		layers := particles.GenerateLayeredGalaxy(c.GalaxyParams(), c.Galaxy.Layers)
		fields := make([]particles.Field, len(layers))
		for i, l := range layers {
			fields[i] = l
		}
		return fields
	}
	return []particles.Field{particles.GenerateGalaxyStrategy(c.Derived.Strategy, c.GalaxyParams(), c.DiskHaloParams())}
}

// StarFieldParams converts the star_field section.
func (c *Config) StarFieldParams() particles.StarFieldParams {
	p := particles.StarFieldParams{Seed: c.StarField.Seed}
	for _, l := range c.StarField.Layers {
		p.Layers = append(p.Layers, particles.StarLayer{
			Name:           l.Name,
			Count:          l.Count,
			InnerRadius:    l.InnerRadius,
			OuterRadius:    l.OuterRadius,
			MinBrightness:  l.MinBrightness,
			MaxBrightness:  l.MaxBrightness,
			Size:           l.Size,
			TwinkleSpeedLo: l.TwinkleSpeedLo,
			TwinkleSpeedHi: l.TwinkleSpeedHi,
		})
	}
	return p
}

// NebulaParams converts the nebula section. Radii other than three values
// leave the semi-axes to the defaults.
func (c *Config) NebulaParams() particles.NebulaParams {
	n := c.Nebula
	p := particles.NebulaParams{
		Count:         n.Count,
		NoiseScale:    n.NoiseScale,
		Threshold:     n.Threshold,
		InnerColor:    hex(n.InnerColor),
		OuterColor:    hex(n.OuterColor),
		Size:          n.Size,
		RotationSpeed: n.RotationSpeed,
		Seed:          n.Seed,
	}
	if len(n.Radii) == 3 {
		p.Radii = r3.Vec{X: n.Radii[0], Y: n.Radii[1], Z: n.Radii[2]}
	}
	return p
}

// BeltParams converts the belt section.
func (c *Config) BeltParams() particles.BeltParams {
	b := c.Belt
	return particles.BeltParams{
		Count:       b.Count,
		InnerRadius: b.InnerRadius,
		OuterRadius: b.OuterRadius,
		Thickness:   b.Thickness,
		BaseSpeed:   b.BaseSpeed,
		Color:       hex(b.Color),
		Size:        b.Size,
		Seed:        b.Seed,
	}
}

// WindParams converts the wind section.
func (c *Config) WindParams() particles.WindParams {
	w := c.Wind
	return particles.WindParams{
		Count:      w.Count,
		EmitRadius: w.EmitRadius,
		MaxRadius:  w.MaxRadius,
		SpeedLo:    w.SpeedLo,
		SpeedHi:    w.SpeedHi,
		LifetimeLo: w.LifetimeLo,
		LifetimeHi: w.LifetimeHi,
		Color:      hex(w.Color),
		Size:       w.Size,
		Seed:       w.Seed,
	}
}

// DustParams converts the dust section.
func (c *Config) DustParams() particles.DustParams {
	d := c.Dust
	return particles.DustParams{
		Count:         d.Count,
		Radius:        d.Radius,
		Thickness:     d.Thickness,
		Color:         hex(d.Color),
		Size:          d.Size,
		RotationSpeed: d.RotationSpeed,
		Seed:          d.Seed,
	}
}

// DebrisParams converts the debris section.
func (c *Config) DebrisParams() particles.DebrisParams {
	d := c.Debris
	return particles.DebrisParams{
		Count:      d.Count,
		Radius:     d.Radius,
		Width:      d.Width,
		Speed:      d.Speed,
		Drift:      d.Drift,
		MaxRadius:  d.MaxRadius,
		LifetimeLo: d.LifetimeLo,
		LifetimeHi: d.LifetimeHi,
		Color:      hex(d.Color),
		Size:       d.Size,
		Seed:       d.Seed,
	}
}

// BuildSystem creates the configured bodies on a new kinematics system.
// Primaries are added first, in file order, so satellites may name a parent
// declared after them.
func (c *Config) BuildSystem() (*kinematics.System, error) {
	sys := kinematics.NewSystem(c.Engine())
	for _, b := range c.Bodies {
		if b.Parent != "" {
			continue
		}
		if _, err := sys.AddBody(b.metadata(), b.Size, b.Distance, b.InclinationDegrees); err != nil {
			return nil, fmt.Errorf("body %q: %w", b.Name, err)
		}
	}
	for _, b := range c.Bodies {
		if b.Parent == "" {
			continue
		}
		parent, ok := sys.Lookup(b.Parent)
		if !ok {
			return nil, fmt.Errorf("body %q: parent %q: %w", b.Name, b.Parent, kinematics.ErrUnknownBody)
		}
		if _, err := sys.AddSatellite(parent, b.metadata(), b.Size, b.Distance, b.InclinationDegrees); err != nil {
			return nil, fmt.Errorf("body %q: %w", b.Name, err)
		}
	}
	return sys, nil
}

func (b BodyConfig) metadata() components.Metadata {
	return components.Metadata{Name: b.Name, Kind: b.Kind, Palette: b.Palette}
}

// TextureRequest builds the texture request for a configured body.
func (c *Config) TextureRequest(b BodyConfig, resolution float64) raster.Request {
	kind, _ := raster.ParseKind(b.Kind)
	req := raster.Request{Kind: kind, Identity: b.Name, Resolution: resolution}
	if p, ok := c.Derived.Palettes[b.Palette]; ok {
		req.Palette = p
	}
	return req
}

// Body returns the configured body with the given name.
func (c *Config) Body(name string) (BodyConfig, bool) {
	for _, b := range c.Bodies {
		if b.Name == name {
			return b, true
		}
	}
	return BodyConfig{}, false
}

// TextureResolutions returns the resolutions a host may generate, ascending:
// preview, final and any extra server resolutions.
func (c *Config) TextureResolutions() []float64 {
	res := append([]float64{c.Texture.PreviewResolution, c.Texture.FinalResolution}, c.Server.Resolutions...)
	slices.Sort(res)
	return slices.Compact(res)
}

// CacheBytes returns the texture cache cap in bytes.
func (c *Config) CacheBytes() int64 {
	return int64(c.Server.CacheMB) << 20
}
