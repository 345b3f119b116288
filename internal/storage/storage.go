package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cfg "github.com/templui/folio/internal/config"
)

// Storage is the remote object store holding uploaded files.
type Storage interface {
	// Save stores a file under key
	Save(ctx context.Context, key string, file io.Reader, contentType string) error

	// Delete removes the object stored under key. Missing objects are not an error.
	Delete(ctx context.Context, key string) error

	// DeleteMany removes all keys, stopping at the first failure.
	DeleteMany(ctx context.Context, keys []string) error

	// URL returns the public URL for accessing the file
	URL(key string) string
}

// New creates the storage backend selected by STORAGE_DRIVER.
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case "memory":
		slog.Warn("using in-memory storage, uploads are lost on restart")
		return NewMemoryStorage(c.AppURL + "/files"), nil
	case "s3", "":
		slog.Info("initializing S3 storage",
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
			PublicURL: c.S3PublicURL,
		})
	}
	return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
}
