package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cabinetd/cabinet/internal/config"
)

// ErrNotFound is returned when no blob exists at a location.
var ErrNotFound = errors.New("storage: blob not found")

// Storage is the blob store boundary. Place writes bytes to a fresh,
// collision-free location under the configured root and returns the opaque
// location; concurrent calls never collide, even for identical content.
type Storage interface {
	Place(ctx context.Context, data []byte) (string, error)
	Read(ctx context.Context, location string) ([]byte, error)
	Delete(ctx context.Context, location string) error
	Ping(ctx context.Context) error
}

// New creates the blob storage backend selected by config.
// Local disk is the default; S3 works with AWS, MinIO, R2, etc.
func New(c *config.Config) (Storage, error) {
	switch c.StorageDriver {
	case "", "local":
		slog.Info("initializing local blob storage", "root", c.StorageRoot)
		return NewLocalStorage(c.StorageRoot), nil
	case "s3":
		slog.Info("initializing S3 blob storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}
