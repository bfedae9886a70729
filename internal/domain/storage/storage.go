package storage

import (
	"context"
	"io"
)

type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// BlobStore persists an uploaded object and returns a stable public URL.
// Implementations enforce their own content-type and size limits.
type BlobStore interface {
	Upload(ctx context.Context, up Upload) (string, error)
}
