package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/orrery/kinematics"
	"github.com/pthm-cable/orrery/noise"
	"github.com/pthm-cable/orrery/particles"
	"github.com/pthm-cable/orrery/raster"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Texture.BaseWidth != 2048 || cfg.Texture.BaseHeight != 1024 {
		t.Errorf("base size = %dx%d, want 2048x1024", cfg.Texture.BaseWidth, cfg.Texture.BaseHeight)
	}
	if cfg.Derived.FinalSize != [2]int{2048, 1024} {
		t.Errorf("final size = %v", cfg.Derived.FinalSize)
	}
	if cfg.Derived.PreviewSize != [2]int{512, 256} {
		t.Errorf("preview size = %v", cfg.Derived.PreviewSize)
	}
	if cfg.Derived.NoiseBasis != noise.BasisPerlin {
		t.Errorf("basis = %v, want perlin", cfg.Derived.NoiseBasis)
	}
	if cfg.Derived.Strategy != particles.StrategyDensityWave {
		t.Errorf("strategy = %v", cfg.Derived.Strategy)
	}
	if len(cfg.Derived.Palettes) != len(cfg.Palettes) {
		t.Errorf("parsed %d of %d palettes", len(cfg.Derived.Palettes), len(cfg.Palettes))
	}
}

func TestLoad_OverlayKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orrery.yaml")
	data := "texture:\n  base_width: 512\n  base_height: 256\ngalaxy:\n  strategy: disk_halo\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Derived.FinalSize != [2]int{512, 256} {
		t.Errorf("final size = %v", cfg.Derived.FinalSize)
	}
	if cfg.Texture.SeamColumns != 16 {
		t.Errorf("seam columns = %d, want default 16", cfg.Texture.SeamColumns)
	}
	if cfg.Derived.Strategy != particles.StrategyDiskHalo {
		t.Errorf("strategy = %v, want disk_halo", cfg.Derived.Strategy)
	}
	if fields := cfg.GalaxyFields(); len(fields) != 1 {
		t.Errorf("disk_halo produced %d fields, want 1", len(fields))
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad palette", "palettes:\n  broken: \"#zzzzzz\"\n"},
		{"bad basis", "noise:\n  basis: worley\n"},
		{"bad strategy", "galaxy:\n  strategy: bar\n"},
		{"bad color", "belt:\n  color: \"tan\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "orrery.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("ORRERY_ADDR", ":9999")
	t.Setenv("ORRERY_ALLOWED_ORIGINS", "http://a,http://b")
	t.Setenv("ORRERY_RATE_LIMIT", "false")
	t.Setenv("ORRERY_LOG_JSON", "true")
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9999" || len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.RateLimit || !cfg.Logging.JSONFormat {
		t.Errorf("server = %+v, logging = %+v", cfg.Server, cfg.Logging)
	}

	t.Setenv("ORRERY_REQUESTS_PER_SEC", "fast")
	if err := cfg.ApplyEnv(); err == nil {
		t.Error("expected error for non-numeric rate")
	}
}

func TestParams_Conversions(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	g := cfg.GalaxyParams()
	if g.Count != 20000 || g.Branches != 4 || g.InsideColor.Hex() != "#ff6030" {
		t.Errorf("galaxy params = %+v", g)
	}
	n := cfg.NebulaParams()
	if n.Radii.X != 80 || n.Radii.Y != 30 || n.Radii.Z != 50 {
		t.Errorf("nebula radii = %v", n.Radii)
	}
	if layers := cfg.StarFieldParams().Layers; len(layers) != 3 || layers[2].Name != "far" {
		t.Errorf("star layers = %+v", layers)
	}
	if fields := cfg.GalaxyFields(); len(fields) != 3 {
		t.Errorf("layered galaxy produced %d fields, want 3", len(fields))
	}
	if d := cfg.DebrisParams(); d.MaxRadius != 75 || d.Color.Hex() != "#b3a699" {
		t.Errorf("debris params = %+v", d)
	}
}

func TestBuildSystem(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	sys, err := cfg.BuildSystem()
	if err != nil {
		t.Fatal(err)
	}
	if sys.Len() != len(cfg.Bodies) {
		t.Fatalf("system has %d bodies, want %d", sys.Len(), len(cfg.Bodies))
	}
	var luna kinematics.BodyState
	for _, b := range sys.Snapshot() {
		if b.Name == "luna" {
			luna = b
		}
	}
	if luna.Parent != "earth" {
		t.Errorf("luna parent = %q, want earth", luna.Parent)
	}
}

func TestBuildSystem_UnknownParent(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Bodies = append(cfg.Bodies, BodyConfig{Name: "phobos", Kind: "moon", Parent: "deimos", Size: 0.1, Distance: 1})
	if _, err := cfg.BuildSystem(); !errors.Is(err, kinematics.ErrUnknownBody) {
		t.Errorf("err = %v, want ErrUnknownBody", err)
	}
}

func TestTextureRequest(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	req := cfg.TextureRequest(BodyConfig{Name: "jupiter", Kind: "gasGiant", Palette: "jovian"}, 0.5)
	if req.Kind != raster.KindGasGiant || req.Identity != "jupiter" || req.Resolution != 0.5 {
		t.Errorf("request = %+v", req)
	}
	if req.Palette != cfg.Palette("jovian") {
		t.Error("palette not resolved")
	}
	if req := cfg.TextureRequest(BodyConfig{Name: "x", Kind: "plasma"}, 1); req.Kind != raster.KindGeneric {
		t.Errorf("unknown kind = %v, want generic", req.Kind)
	}
}

func TestTextureResolutions(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	got := cfg.TextureResolutions()
	want := []float64{0.25, 0.5, 1}
	if len(got) != len(want) {
		t.Fatalf("resolutions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("resolutions = %v, want %v", got, want)
		}
	}

	cfg.Server.Resolutions = []float64{1, 2}
	if got := cfg.TextureResolutions(); len(got) != 3 || got[2] != 2 {
		t.Errorf("resolutions = %v, want [0.25 1 2]", got)
	}
	if cfg.CacheBytes() != 512<<20 {
		t.Errorf("cache bytes = %d", cfg.CacheBytes())
	}
}
