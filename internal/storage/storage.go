package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const (
	BackendS3    = "s3"
	BackendMinIO = "minio"
	BackendLocal = "local"
)

var ErrNotFound = errors.New("object not found")

// Object is a fetched source object. ContentType is empty when the backend
// declares none.
type Object struct {
	Body        []byte
	ContentType string
}

type Store interface {
	Fetch(ctx context.Context, key string) (Object, error)
}

type Config struct {
	Backend string

	Bucket       string
	Region       string
	Endpoint     string
	UsePathStyle bool
	// Static keys for S3-compatible endpoints. Empty means the default
	// AWS credential chain.
	AccessKey string
	SecretKey string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool

	LocalDir string
}

// Open builds the store selected by cfg.Backend.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	logger = logger.With().Str("component", "storage").Str("backend", backend).Logger()

	switch backend {
	case BackendS3, "":
		return NewS3Store(ctx, cfg, logger)
	case BackendMinIO:
		return NewMinIOStore(cfg, logger)
	case BackendLocal:
		return NewLocalStore(cfg.LocalDir)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}
