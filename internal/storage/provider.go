// Package storage defines the blob store contract shared by the memory, local
// and GCS backends. Reports and timestamp dumps are written through it.
package storage

import (
	"context"
)

// BlobStore reads and writes whole objects by path. Implementations wrap
// fs.ErrNotExist when GetObject finds nothing at path.
type BlobStore interface {
	// PutObject stores data at path and returns a URI identifying the object.
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
	// GetObject returns the bytes stored at path.
	GetObject(ctx context.Context, path string) ([]byte, error)
}
