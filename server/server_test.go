package server

import (
	"encoding/json"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/orrery/config"
	"github.com/pthm-cable/orrery/raster"
	"github.com/pthm-cable/orrery/texcache"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Texture.BaseWidth, cfg.Texture.BaseHeight = 128, 64
	cfg.Server.RateLimit = false
	cfg.Server.TickHz = 100
	return cfg
}

func testServer(t *testing.T, cfg *config.Config) (*Server, *texcache.Cache) {
	t.Helper()
	opts := cfg.SynthOptions()
	opts.Octaves = 3
	cache := texcache.New(raster.NewSynthesizer(opts), nil)
	return New(cfg, cache, nil), cache
}

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t, testConfig(t))
	rec := get(t, s.Handler(), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestTexture_PNG(t *testing.T) {
	s, cache := testServer(t, testConfig(t))
	h := s.Handler()

	rec := get(t, h, "/textures/gasGiant/jupiter?res=0.5")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if wrap := rec.Header().Get("X-Texture-Wrap"); wrap != "repeat,clampToEdge" {
		t.Errorf("wrap header = %q", wrap)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("image = %dx%d, want 64x32", b.Dx(), b.Dy())
	}

	get(t, h, "/textures/gasGiant/jupiter?res=0.5")
	if st := cache.Stats(); st.Misses != 1 || st.Hits != 1 {
		t.Errorf("cache stats = %+v, want 1 miss 1 hit", st)
	}
}

func TestTexture_UnknownKindFallsBack(t *testing.T) {
	s, cache := testServer(t, testConfig(t))
	rec := get(t, s.Handler(), "/textures/plasma/x?res=0.25")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !cache.Contains(raster.Request{Kind: raster.KindGeneric, Identity: "x", Resolution: 0.25}) {
		t.Error("expected generic texture to be cached")
	}
}

func TestTexture_BadResolution(t *testing.T) {
	s, _ := testServer(t, testConfig(t))
	for _, res := range []string{"abc", "0", "-1", "9", "2", "0.2500001", "NaN"} {
		rec := get(t, s.Handler(), "/textures/moon/luna?res="+res)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("res=%s: status = %d, want 400", res, rec.Code)
		}
		var resp ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || resp.Code != http.StatusBadRequest {
			t.Errorf("res=%s: body = %+v, %v", res, resp, err)
		}
	}
}

func TestTexture_CacheBounded(t *testing.T) {
	s, cache := testServer(t, testConfig(t))
	cache.MaxBytes = 64 * 32 * 4 * 2 // two 0.5x rasters
	h := s.Handler()

	for _, id := range []string{"a", "b", "c", "d"} {
		if rec := get(t, h, "/textures/rocky/"+id+"?res=0.5"); rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", id, rec.Code)
		}
	}
	st := cache.Stats()
	if st.Entries != 2 || st.Dropped != 2 || st.Bytes > cache.MaxBytes {
		t.Errorf("stats = %+v, want 2 entries kept within %d bytes", st, cache.MaxBytes)
	}
}

func TestTexture_NoCache(t *testing.T) {
	s := New(testConfig(t), nil, nil)
	if rec := get(t, s.Handler(), "/textures/moon/luna"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestParticles(t *testing.T) {
	s, _ := testServer(t, testConfig(t))
	h := s.Handler()

	for _, name := range Generators() {
		t.Run(name, func(t *testing.T) {
			rec := get(t, h, "/particles/"+name+"?count=90")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body)
			}
			var resp ParticlesResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if len(resp.Buffers) == 0 {
				t.Fatal("no buffers")
			}
			total := 0
			for _, b := range resp.Buffers {
				if len(b.Positions) != 3*len(b.Sizes) || len(b.Colors) != 3*len(b.Sizes) {
					t.Errorf("mismatched buffer lengths %d/%d/%d", len(b.Positions), len(b.Colors), len(b.Sizes))
				}
				total += len(b.Sizes)
			}
			if total != resp.Count {
				t.Errorf("count = %d, buffers hold %d", resp.Count, total)
			}
		})
	}
}

func TestParticles_Errors(t *testing.T) {
	s, _ := testServer(t, testConfig(t))
	if rec := get(t, s.Handler(), "/particles/comet"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown generator status = %d, want 404", rec.Code)
	}
	if rec := get(t, s.Handler(), "/particles/belt?count=-3"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad count status = %d, want 400", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.RateLimit = true
	cfg.Server.RequestsPerSec = 0.001
	cfg.Server.Burst = 2
	s, _ := testServer(t, cfg)
	h := s.Handler()

	for i := 0; i < 2; i++ {
		if rec := get(t, h, "/healthz"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
	rec := get(t, h, "/healthz")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if s.limiter.Clients() != 1 {
		t.Errorf("clients = %d, want 1", s.limiter.Clients())
	}
}

func TestRateLimiter_Evict(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 1, Enabled: true}, discardLogger())
	rl.getLimiter("10.0.0.1").Allow()
	rl.evict(time.Now().Add(time.Minute))
	if rl.Clients() != 0 {
		t.Errorf("clients = %d after eviction", rl.Clients())
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.168.1.1:12345"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if ip := clientIP(r, false); ip != "192.168.1.1" {
		t.Errorf("untrusted ip = %q", ip)
	}
	if ip := clientIP(r, true); ip != "203.0.113.7" {
		t.Errorf("trusted ip = %q", ip)
	}
}

func TestOriginAllowed(t *testing.T) {
	origins := []string{"http://localhost:5173"}
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:5173", true},
		{"http://evil.example", false},
	}
	for _, tt := range tests {
		if got := originAllowed(origins, tt.origin); got != tt.want {
			t.Errorf("originAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
	if !originAllowed([]string{"*"}, "http://any") {
		t.Error("wildcard should allow any origin")
	}
}

func TestClampDelta(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.MaxDelta = 0.25
	s := New(cfg, nil, nil)
	if got := s.clampDelta(3); got != 0.25 {
		t.Errorf("clampDelta(3) = %v", got)
	}
	if got := s.clampDelta(0.01); got != 0.01 {
		t.Errorf("clampDelta(0.01) = %v", got)
	}
}

func TestOrbitStream(t *testing.T) {
	cfg := testConfig(t)
	s, _ := testServer(t, cfg)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/orbits?lagrange=earth"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first, later OrbitFrame
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatal(err)
	}
	if len(first.Bodies) != len(cfg.Bodies) {
		t.Fatalf("bodies = %d, want %d", len(first.Bodies), len(cfg.Bodies))
	}
	if _, ok := first.Lagrange["earth"]; !ok {
		t.Error("missing earth lagrange points")
	}
	for i := 0; i < 3; i++ {
		if err := conn.ReadJSON(&later); err != nil {
			t.Fatal(err)
		}
	}
	if later.Elapsed <= first.Elapsed {
		t.Errorf("elapsed did not advance: %v -> %v", first.Elapsed, later.Elapsed)
	}
}

func TestOrbitStream_UnknownLagrangeBody(t *testing.T) {
	s, _ := testServer(t, testConfig(t))
	if rec := get(t, s.Handler(), "/ws/orbits?lagrange=vulcan"); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
