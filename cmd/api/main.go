package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/dunamismax/pixelgate/internal/api"
	"github.com/dunamismax/pixelgate/internal/config"
	"github.com/dunamismax/pixelgate/internal/logging"
	"github.com/dunamismax/pixelgate/internal/pipeline"
	"github.com/dunamismax/pixelgate/internal/storage"
	"github.com/dunamismax/pixelgate/internal/telemetry"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(logging.Options{
		Service:     cfg.Service.Name,
		Environment: cfg.Service.Environment,
		Level:       cfg.Service.LogLevel,
		Format:      cfg.Service.LogFormat,
	})

	ctx := context.Background()
	tracing, err := telemetry.SetupTracing(ctx, cfg.TraceConfig(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("setup tracing")
	}
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown")
		}
	}()

	if err := pipeline.Startup(); err != nil {
		logger.Fatal().Err(err).Msg("start image codec")
	}
	defer pipeline.Shutdown()

	store, err := storage.Open(ctx, cfg.Storage.StoreConfig(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open source store")
	}
	processor, err := pipeline.NewProcessor(store, cfg.Transform.Limits(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build processor")
	}
	if err := processor.CheckDefaults(cfg.Transform.Defaults()); err != nil {
		logger.Fatal().Err(err).Msg("DEFAULT_FMT is not encodable by this build; build with -tags govips or set DEFAULT_FMT to jpeg or png")
	}

	handler := api.NewHandler(processor, cfg.Transform.Defaults(), logger)
	app := api.NewServer(handler, logger)

	httpServer := &http.Server{
		Addr:         cfg.API.Addr,
		Handler:      app.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.API.Addr).Str("backend", cfg.Storage.Backend).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info().Msg("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
