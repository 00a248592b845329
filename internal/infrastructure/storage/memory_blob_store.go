package storage

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/letterdesk/backend/internal/domain/letters"
)

// MemoryBlobStore is an in-memory BlobStore for tests. View URLs are
// synthetic but stable per path.
type MemoryBlobStore struct {
	mu      sync.RWMutex
	folders map[string]struct{}
	blobs   map[string]letters.BlobInfo
	data    map[string][]byte

	// FailPut, when set, makes Put fail for stored names containing the
	// given substring. Lets tests exercise partial upload failure.
	FailPut string
	// FailDelete, when set, makes Delete fail for matching paths.
	FailDelete string
}

// Ensure MemoryBlobStore implements BlobStore
var _ letters.BlobStore = (*MemoryBlobStore)(nil)

// NewMemoryBlobStore returns an empty store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		folders: make(map[string]struct{}),
		blobs:   make(map[string]letters.BlobInfo),
		data:    make(map[string][]byte),
	}
}

// EnsureFolder registers a folder. Idempotent.
func (s *MemoryBlobStore) EnsureFolder(ctx context.Context, folder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders[strings.TrimSuffix(folder, "/")] = struct{}{}
	return nil
}

// Put stores a blob.
func (s *MemoryBlobStore) Put(ctx context.Context, blobPath string, data []byte, contentType string) (letters.BlobInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailPut != "" && strings.Contains(blobPath, s.FailPut) {
		return letters.BlobInfo{}, fmt.Errorf("simulated upload failure for %s", blobPath)
	}

	info := letters.BlobInfo{
		Name:         path.Base(blobPath),
		Path:         blobPath,
		Size:         int64(len(data)),
		ContentType:  contentType,
		ViewURL:      "memory://" + blobPath,
		LastModified: time.Now(),
	}
	s.blobs[blobPath] = info
	s.data[blobPath] = append([]byte(nil), data...)
	return info, nil
}

// List returns blobs directly under a folder.
func (s *MemoryBlobStore) List(ctx context.Context, folder string) ([]letters.BlobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := strings.TrimSuffix(folder, "/") + "/"
	var out []letters.BlobInfo
	for p, info := range s.blobs {
		if strings.HasPrefix(p, prefix) && !strings.Contains(strings.TrimPrefix(p, prefix), "/") {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// ViewURL returns the synthetic URL of a stored blob.
func (s *MemoryBlobStore) ViewURL(ctx context.Context, blobPath string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.blobs[blobPath]; !ok {
		return "", fmt.Errorf("blob %s not found", blobPath)
	}
	return "memory://" + blobPath, nil
}

// Delete removes a blob. Deleting a missing blob is not an error.
func (s *MemoryBlobStore) Delete(ctx context.Context, blobPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailDelete != "" && strings.Contains(blobPath, s.FailDelete) {
		return fmt.Errorf("simulated delete failure for %s", blobPath)
	}
	delete(s.blobs, blobPath)
	delete(s.data, blobPath)
	return nil
}

// Data returns the stored bytes of a blob, for tests.
func (s *MemoryBlobStore) Data(blobPath string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[blobPath]
	return b, ok
}
