package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/rst/farmcontrol/internal/application/attachment"
	infraconfig "github.com/rst/farmcontrol/internal/infrastructure/config"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var _ attachment.ObjectStorage = (*GCSObjectStorage)(nil)

// GCSObjectStorage stores objects in a Google Cloud Storage bucket (including Firebase Storage buckets).
type GCSObjectStorage struct {
	client     *gcs.Client
	bucket     string
	publicBase string
	logger     *zap.Logger
}

// NewGCSObjectStorage creates a GCS client. Explicit credentials (JSON, then file) take
// precedence over Application Default Credentials.
func NewGCSObjectStorage(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger, extra ...option.ClientOption) (*GCSObjectStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, extra...)

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs client: %w", err)
	}

	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = "https://storage.googleapis.com/" + cfg.Bucket
	}
	return &GCSObjectStorage{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: base,
		logger:     logger,
	}, nil
}

// Upload writes the object as publicly readable and returns its public URL
func (s *GCSObjectStorage) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.PredefinedACL = "publicRead"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	s.logger.Debug("Object uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)
	return s.PublicURL(key), nil
}

// PublicURL returns the URL an uploaded object is served from
func (s *GCSObjectStorage) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

// Close releases the underlying client
func (s *GCSObjectStorage) Close() error {
	return s.client.Close()
}
