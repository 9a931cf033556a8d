// Orrery HTTP host: textures, particle buffers and a websocket orbit stream.
//
// Usage: go run ./cmd/orreryd -config orrery.yaml
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pthm-cable/orrery/config"
	"github.com/pthm-cable/orrery/logging"
	"github.com/pthm-cable/orrery/raster"
	"github.com/pthm-cable/orrery/server"
	"github.com/pthm-cable/orrery/texcache"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	envFile := flag.String("env", ".env", "Environment file with ORRERY_* overrides")
	warm := flag.Bool("warm", true, "Generate preview textures for configured bodies at startup")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		slog.Debug("no env file loaded, using process environment", "path", *envFile)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		slog.Error("invalid environment override", "error", err)
		os.Exit(1)
	}
	logger := logging.Init(cfg.Logging, os.Stdout)

	cache := texcache.New(raster.NewSynthesizer(cfg.SynthOptions()), logger)
	cache.MaxBytes = cfg.CacheBytes()
	if *warm {
		for _, b := range cfg.Bodies {
			cache.Lookup(cfg.TextureRequest(b, cfg.Texture.PreviewResolution))
		}
		logger.Info("texture cache warmed", "cache", cache.Stats())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, cache, logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
