package storage

import (
	"context"
	"fmt"

	"github.com/rst/farmcontrol/internal/application/attachment"
	infraconfig "github.com/rst/farmcontrol/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Backend is an ObjectStorage that owns a client to be closed on shutdown
type Backend interface {
	attachment.ObjectStorage
	Close() error
}

// New returns the storage backend selected by cfg.Provider
func New(ctx context.Context, cfg infraconfig.StorageConfig, logger *zap.Logger) (Backend, error) {
	logger = logger.Named("storage")
	switch cfg.Provider {
	case infraconfig.StorageS3:
		s, err := NewS3ObjectStorage(ctx, &cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		logger.Info("Using S3 object storage", zap.String("bucket", cfg.Bucket), zap.String("endpoint", cfg.Endpoint))
		return s, nil
	case infraconfig.StorageGCS:
		s, err := NewGCSObjectStorage(ctx, &cfg, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Using GCS object storage", zap.String("bucket", cfg.Bucket))
		return s, nil
	case infraconfig.StorageStub, "":
		logger.Warn("Using in-memory stub object storage; uploads are not persisted")
		return NewStubObjectStorage(cfg.PlaceholderBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
