package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"

	"github.com/dunamismax/pixelgate/internal/api"
	"github.com/dunamismax/pixelgate/internal/config"
	"github.com/dunamismax/pixelgate/internal/logging"
	"github.com/dunamismax/pixelgate/internal/pipeline"
	"github.com/dunamismax/pixelgate/internal/storage"
	"github.com/dunamismax/pixelgate/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(logging.Options{
		Service:     cfg.Service.Name,
		Environment: cfg.Service.Environment,
		Level:       cfg.Service.LogLevel,
		Format:      "json",
	})

	ctx := context.Background()
	tracing, err := telemetry.SetupTracing(ctx, cfg.TraceConfig(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("setup tracing")
	}

	if err := pipeline.Startup(); err != nil {
		logger.Fatal().Err(err).Msg("start image codec")
	}

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
	lambda.Start(api.NewLambdaHandler(handler, tracing))
}
