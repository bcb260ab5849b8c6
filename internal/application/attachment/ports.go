package attachment

import "context"

// ObjectStorage defines the object store invoice files are written to.
// Implemented by the infrastructure layer (S3-compatible, GCS, stub).
type ObjectStorage interface {
	// Upload stores data under key with public read access and returns its public URL
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}
