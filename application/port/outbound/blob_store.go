package outbound

import (
	"context"
	"io"
)

// BlobStore receives exported files.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
}
