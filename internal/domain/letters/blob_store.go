package letters

import (
	"context"
	"time"
)

// BlobInfo describes a stored attachment blob.
type BlobInfo struct {
	Name         string
	Path         string
	Size         int64
	ContentType  string
	ViewURL      string
	LastModified time.Time
}

// BlobStore is the attachment storage port. Paths are slash-separated
// and rooted at the configured library root; implementations treat the
// last path segment as the file name and everything before it as the
// folder.
type BlobStore interface {
	// EnsureFolder makes sure the folder exists. Idempotent.
	EnsureFolder(ctx context.Context, folder string) error
	// Put stores a blob at the given path, overwriting any existing blob.
	Put(ctx context.Context, path string, data []byte, contentType string) (BlobInfo, error)
	// List returns the blobs directly under a folder.
	List(ctx context.Context, folder string) ([]BlobInfo, error)
	// ViewURL resolves a browser-openable URL for an existing blob.
	ViewURL(ctx context.Context, path string) (string, error)
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, path string) error
}
