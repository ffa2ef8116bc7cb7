package storage

import (
	"context"
	"io"
)

// FileStore persists attachment content under opaque keys. Implementations
// must treat keys as the only handle; callers keep the key in the database
// row next to the original filename.
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
