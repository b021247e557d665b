package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"portal_backend/internal/config"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidPath = errors.New("invalid storage path")
)

// Storage is implemented by the local filesystem and S3 backends.
type Storage interface {
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)

	// GetURL returns the public URL for path.
	GetURL(ctx context.Context, path string) (string, error)
	// GetSignedURL returns a temporary URL for private objects. Local storage
	// falls back to the public URL.
	GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
	GetSize(ctx context.Context, path string) (int64, error)

	Provider() string
}

func NewStorage(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// CleanPath normalises a storage key and rejects traversal outside the root.
func CleanPath(p string) (string, error) {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return "", ErrInvalidPath
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." || part == "." || part == "" {
			return "", ErrInvalidPath
		}
	}
	return p, nil
}

func joinURL(base, p string) string {
	return strings.TrimRight(base, "/") + "/" + p
}
