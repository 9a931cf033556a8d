// Package server exposes textures, particle buffers and orbit state over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/orrery/config"
	"github.com/pthm-cable/orrery/raster"
	"github.com/pthm-cable/orrery/texcache"
)

// Server is the HTTP host. Textures come from a shared cache; every orbit
// stream runs its own kinematics system built from the configuration.
type Server struct {
	cfg      *config.Config
	cache    *texcache.Cache
	limiter  *RateLimiter
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// New creates a server. A nil cache makes texture requests fail with 503.
func New(cfg *config.Config, cache *texcache.Cache, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "server")
	sc := cfg.Server
	s := &Server{
		cfg:   cfg,
		cache: cache,
		limiter: NewRateLimiter(RateLimitConfig{
			RequestsPerSecond: sc.RequestsPerSec,
			BurstSize:         sc.Burst,
			Enabled:           sc.RateLimit,
		}, logger),
		logger: logger,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(sc.AllowedOrigins, r.Header.Get("Origin"))
		},
	}
	return s
}

// Handler returns the routed handler wrapped in CORS and rate limiting.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /textures/{kind}/{identity}", s.handleTexture)
	mux.HandleFunc("GET /particles/{generator}", s.handleParticles)
	mux.HandleFunc("GET /ws/orbits", s.handleOrbits)

	return newCORS(s.cfg.Server.AllowedOrigins, s.logger).Handler(s.limiter.Middleware(mux))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go s.limiter.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.logger.Info("stopped")
	return nil
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

var errBadRequest = errors.New("bad request")

// statusFor maps handler errors to HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, raster.ErrBackendUnavailable):
		return http.StatusServiceUnavailable, "backend_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// fail logs err and writes the mapped error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, kind := statusFor(err)
	logger := s.logger.With("method", r.Method, "path", r.URL.Path, "status_code", code)
	if code >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	} else {
		logger.Debug("request rejected", "error", err)
	}
	writeError(w, code, kind, err.Error())
}

func writeError(w http.ResponseWriter, code int, kind, message string) {
	writeJSON(w, code, ErrorResponse{Error: kind, Message: message, Code: code})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Cache     texcache.Stats `json:"cache"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "healthy", Timestamp: time.Now().UTC().Format(time.RFC3339)}
	if s.cache == nil {
		resp.Status = "degraded"
	} else {
		resp.Cache = s.cache.Stats()
	}
	writeJSON(w, http.StatusOK, resp)
}
