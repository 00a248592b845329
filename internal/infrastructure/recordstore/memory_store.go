package recordstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/letterdesk/backend/internal/domain/letters"
)

// MemoryStore is an in-memory RecordStore for tests and single-process
// development. Semantics mirror GormStore, including the
// collection-not-found contract.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]letters.CollectionSchema
	records     map[string]map[string]letters.Record
}

// Ensure MemoryStore implements RecordStore
var _ letters.RecordStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store with no collections
// provisioned.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]letters.CollectionSchema),
		records:     make(map[string]map[string]letters.Record),
	}
}

// List returns all records of a collection, oldest first.
func (s *MemoryStore) List(ctx context.Context, collection string, opts letters.ListOptions) ([]letters.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.collections[collection]; !ok {
		return nil, fmt.Errorf("collection %q: %w", collection, letters.ErrCollectionNotFound)
	}

	out := make([]letters.Record, 0, len(s.records[collection]))
	for _, rec := range s.records[collection] {
		out = append(out, copyRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// Create inserts a record with a freshly minted ID.
func (s *MemoryStore) Create(ctx context.Context, collection string, fields map[string]any) (letters.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection]; !ok {
		return letters.Record{}, fmt.Errorf("collection %q: %w", collection, letters.ErrCollectionNotFound)
	}

	rec := letters.Record{
		ID:        uuid.NewString(),
		Fields:    copyFields(fields),
		CreatedAt: time.Now(),
	}
	if s.records[collection] == nil {
		s.records[collection] = make(map[string]letters.Record)
	}
	s.records[collection][rec.ID] = rec
	return copyRecord(rec), nil
}

// Update merges the given fields into an existing record.
func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) (letters.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection]; !ok {
		return letters.Record{}, fmt.Errorf("collection %q: %w", collection, letters.ErrCollectionNotFound)
	}
	rec, ok := s.records[collection][id]
	if !ok {
		return letters.Record{}, fmt.Errorf("record %s not found in %s", id, collection)
	}

	merged := copyFields(rec.Fields)
	for k, v := range fields {
		merged[k] = v
	}
	rec.Fields = merged
	s.records[collection][id] = rec
	return copyRecord(rec), nil
}

// Delete removes a record. Deleting a missing record is not an error.
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection]; !ok {
		return fmt.Errorf("collection %q: %w", collection, letters.ErrCollectionNotFound)
	}
	delete(s.records[collection], id)
	return nil
}

// EnsureCollection provisions a collection. Idempotent.
func (s *MemoryStore) EnsureCollection(ctx context.Context, schema letters.CollectionSchema) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[schema.Name]; !ok {
		s.collections[schema.Name] = schema
		s.records[schema.Name] = make(map[string]letters.Record)
	}
	return nil
}

// Schema returns the provisioned schema of a collection, for tests.
func (s *MemoryStore) Schema(name string) (letters.CollectionSchema, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schema, ok := s.collections[name]
	return schema, ok
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func copyRecord(rec letters.Record) letters.Record {
	rec.Fields = copyFields(rec.Fields)
	return rec
}
