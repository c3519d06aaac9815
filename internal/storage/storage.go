package storage

import (
	"context"
	"io"
	"strings"
)

// ObjectStorage is the interface meme images are written through. Keys are
// relative paths like "memes/<uuid>.png".
type ObjectStorage interface {
	// Upload writes an object to storage.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download reads an object back from storage.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the public URL for an object.
	GetURL(key string) string

	// Delete removes an object from storage.
	Delete(ctx context.Context, key string) error

	// Exists checks whether an object exists.
	Exists(ctx context.Context, key string) (bool, error)

	// EnsureBucket prepares the backing bucket or directory.
	EnsureBucket(ctx context.Context) error
}

// Type selects the storage backend.
type Type string

const (
	TypeLocal        Type = "local"
	TypeMinIO        Type = "minio"
	TypeS3           Type = "s3"
	TypeR2           Type = "r2"
	TypeS3Compatible Type = "s3compatible"
)

// Config holds settings for all storage backends; each backend reads the
// subset it needs.
type Config struct {
	Type      Type
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
	PublicURL string
	LocalDir  string
}

// New creates an ObjectStorage for the configured backend.
// Parameters:
//   - cfg: storage configuration; an empty Type is auto-detected from the endpoint.
// Returns:
//   - ObjectStorage: initialized storage client.
//   - error: non-nil if the client cannot be created.
func New(cfg *Config) (ObjectStorage, error) {
	if cfg.Type == "" {
		cfg.Type = detectType(cfg.Endpoint)
	}

	switch cfg.Type {
	case TypeLocal:
		return NewLocalStorage(cfg.LocalDir, cfg.PublicURL)
	case TypeMinIO:
		return NewMinIOStorage(cfg)
	default:
		return NewS3Storage(cfg)
	}
}

func detectType(endpoint string) Type {
	endpoint = strings.ToLower(endpoint)

	switch {
	case endpoint == "":
		return TypeLocal
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return TypeR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return TypeS3
	default:
		return TypeS3Compatible
	}
}
