package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"

	"github.com/dunamismax/pixelgate/internal/domain"
	"github.com/dunamismax/pixelgate/internal/format"
	"github.com/dunamismax/pixelgate/internal/storage"
	"github.com/dunamismax/pixelgate/internal/telemetry"
)

// Config is built once at process start and passed down explicitly.
type Config struct {
	Service   ServiceConfig
	API       APIConfig
	Storage   StorageConfig
	Transform TransformConfig
	Tracing   TracingConfig
}

type ServiceConfig struct {
	Name        string `env:"SERVICE_NAME" envDefault:"pixelgate" validate:"required"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`
}

type APIConfig struct {
	Addr string `env:"PIXELGATE_API_ADDR" envDefault:":8080"`
}

type StorageConfig struct {
	Backend      string `env:"STORAGE_BACKEND" envDefault:"s3" validate:"oneof=s3 minio local"`
	Bucket       string `env:"SOURCE_BUCKET" validate:"required_unless=Backend local"`
	Region       string `env:"AWS_REGION" envDefault:"ap-southeast-1"`
	Endpoint     string `env:"S3_ENDPOINT"`
	UsePathStyle bool   `env:"S3_USE_PATH_STYLE" envDefault:"false"`
	AccessKey    string `env:"S3_ACCESS_KEY"`
	SecretKey    string `env:"S3_SECRET_KEY"`

	MinIOEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY" envDefault:"minioadmin"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	LocalDir string `env:"LOCAL_SOURCE_DIR" envDefault:"./.pixelgate-source"`
}

// TransformConfig is read leniently: unset, malformed or out-of-range
// values fall back to their defaults instead of failing startup.
type TransformConfig struct {
	DefaultFormat  format.Format
	DefaultQuality int `validate:"min=1,max=100"`
	MaxWidth       int `validate:"gt=0"`
	MaxHeight      int `validate:"gt=0"`

	RawDefaultFormat  string `env:"DEFAULT_FMT"`
	RawDefaultQuality string `env:"DEFAULT_QUAL"`
	RawMaxWidth       string `env:"MAX_W"`
	RawMaxHeight      string `env:"MAX_H"`
}

type TracingConfig struct {
	Exporter     string `env:"TRACE_EXPORTER" envDefault:"none" validate:"oneof=none stdout otlp"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `env:"OTLP_INSECURE" envDefault:"false"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}

	cfg.Service.LogFormat = strings.ToLower(strings.TrimSpace(cfg.Service.LogFormat))
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	cfg.Storage.Bucket = strings.TrimSpace(cfg.Storage.Bucket)
	cfg.Tracing.Exporter = strings.ToLower(strings.TrimSpace(cfg.Tracing.Exporter))

	t := &cfg.Transform
	t.DefaultFormat = format.ResolveOutput(t.RawDefaultFormat, format.WebP)
	t.DefaultQuality = lenientInt(t.RawDefaultQuality, domain.DefaultQuality)
	if t.DefaultQuality < 1 || t.DefaultQuality > 100 {
		t.DefaultQuality = domain.DefaultQuality
	}
	t.MaxWidth = lenientInt(t.RawMaxWidth, domain.DefaultMaxDimension)
	t.MaxHeight = lenientInt(t.RawMaxHeight, domain.DefaultMaxDimension)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (t TransformConfig) Defaults() domain.Defaults {
	return domain.Defaults{Format: t.DefaultFormat, Quality: t.DefaultQuality}
}

func (t TransformConfig) Limits() domain.Limits {
	return domain.Limits{MaxWidth: t.MaxWidth, MaxHeight: t.MaxHeight}
}

func (s StorageConfig) StoreConfig() storage.Config {
	return storage.Config{
		Backend:        s.Backend,
		Bucket:         s.Bucket,
		Region:         s.Region,
		Endpoint:       s.Endpoint,
		UsePathStyle:   s.UsePathStyle,
		AccessKey:      s.AccessKey,
		SecretKey:      s.SecretKey,
		MinIOEndpoint:  s.MinIOEndpoint,
		MinIOAccessKey: s.MinIOAccessKey,
		MinIOSecretKey: s.MinIOSecretKey,
		MinIOUseSSL:    s.MinIOUseSSL,
		LocalDir:       s.LocalDir,
	}
}

func (c Config) TraceConfig() telemetry.TraceConfig {
	return telemetry.TraceConfig{
		ServiceName:  c.Service.Name,
		Exporter:     c.Tracing.Exporter,
		OTLPEndpoint: c.Tracing.OTLPEndpoint,
		OTLPInsecure: c.Tracing.OTLPInsecure,
	}
}

// lenientInt mirrors the old envInt helper: anything that is not a
// positive integer yields fallback.
func lenientInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
