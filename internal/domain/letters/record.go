// Package letters contains the core domain model for the letter
// reference-numbering service: companies, letters, user access entries,
// the reference codec and the sequence allocator.
package letters

import (
	"context"
	"errors"
	"time"
)

// ErrCollectionNotFound is reported by a RecordStore when the backing
// collection for an entity has not been provisioned yet. Loaders react
// by creating the collection and retrying once.
var ErrCollectionNotFound = errors.New("record collection not found")

// Record is a raw row from the record store. Fields are loosely typed;
// each entity has a decode function that applies defaults for absent
// or mistyped values.
type Record struct {
	ID        string
	Fields    map[string]any
	CreatedAt time.Time
}

// ColumnType enumerates the column types a collection schema can declare.
type ColumnType string

const (
	ColumnText     ColumnType = "text"
	ColumnNote     ColumnType = "note"
	ColumnNumber   ColumnType = "number"
	ColumnDateTime ColumnType = "dateTime"
	ColumnChoice   ColumnType = "choice"
)

// ColumnDef describes one column of a collection schema.
type ColumnDef struct {
	Name    string
	Type    ColumnType
	Choices []string
}

// CollectionSchema describes a record collection so a store can
// provision it on demand.
type CollectionSchema struct {
	Name        string
	Description string
	Columns     []ColumnDef
}

// ListOptions controls record listing.
type ListOptions struct {
	OrderBy    string
	Descending bool
	Limit      int
}

// RecordStore is the persistence port for companies, letters and user
// access entries. Implementations must return ErrCollectionNotFound
// (possibly wrapped) when the named collection does not exist.
type RecordStore interface {
	List(ctx context.Context, collection string, opts ListOptions) ([]Record, error)
	Create(ctx context.Context, collection string, fields map[string]any) (Record, error)
	Update(ctx context.Context, collection string, id string, fields map[string]any) (Record, error)
	Delete(ctx context.Context, collection string, id string) error
	EnsureCollection(ctx context.Context, schema CollectionSchema) error
}

// stringField reads a string field, returning "" when absent or not a string.
func stringField(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

// intField reads a numeric field. Stores round-trip numbers through JSON,
// so float64 is the common concrete type.
func intField(fields map[string]any, name string) int {
	switch v := fields[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// timeField reads a timestamp field stored either as time.Time or as an
// RFC 3339 / date-only string.
func timeField(fields map[string]any, name string) time.Time {
	switch v := fields[name].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t
		}
	}
	return time.Time{}
}
