package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// MinIOStore reads source objects from an S3-compatible MinIO deployment.
type MinIOStore struct {
	minio  *minio.Client
	bucket string
	log    zerolog.Logger
}

func NewMinIOStore(cfg Config, logger zerolog.Logger) (*MinIOStore, error) {
	mc, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	return &MinIOStore{
		minio:  mc,
		bucket: cfg.Bucket,
		log:    logger,
	}, nil
}

func (c *MinIOStore) Fetch(ctx context.Context, key string) (Object, error) {
	c.log.Debug().Str("bucket", c.bucket).Str("key", key).Msg("fetching object")

	obj, err := c.minio.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return Object{}, classifyFetchError(key, err)
	}
	defer obj.Close()

	// GetObject is lazy; a missing key only surfaces on the first call
	// that reaches the server.
	info, err := obj.Stat()
	if err != nil {
		return Object{}, classifyFetchError(key, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return Object{}, classifyFetchError(key, fmt.Errorf("read object: %w", err))
	}

	return Object{
		Body:        data,
		ContentType: info.ContentType,
	}, nil
}
