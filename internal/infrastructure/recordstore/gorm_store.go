// Package recordstore provides RecordStore implementations: a
// SQL-backed store for production and an in-memory store for tests and
// single-process development.
package recordstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/letterdesk/backend/internal/domain/letters"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// collectionModel is one provisioned record collection.
type collectionModel struct {
	Name        string `gorm:"primaryKey;size:128"`
	Description string
	Columns     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (collectionModel) TableName() string { return "record_collections" }

// recordModel is one row of any collection. Fields are stored as a JSON
// document, matching the loosely typed record contract.
type recordModel struct {
	ID         string `gorm:"primaryKey;size:64"`
	Collection string `gorm:"size:128;index:idx_records_collection"`
	Fields     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (recordModel) TableName() string { return "records" }

// GormStore implements letters.RecordStore on a SQL database through
// GORM. Postgres is the production backend; the sqlite driver serves
// tests and local development.
type GormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Ensure GormStore implements RecordStore
var _ letters.RecordStore = (*GormStore)(nil)

// NewGormStore creates a store over an open database handle.
func NewGormStore(db *gorm.DB, logger *zap.Logger) *GormStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormStore{db: db, logger: logger}
}

// AutoMigrate creates the backing tables. Production deployments run
// the SQL migrations instead; this is for tests and dev databases.
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&collectionModel{}, &recordModel{})
}

// List returns all records of a collection, oldest first.
func (s *GormStore) List(ctx context.Context, collection string, opts letters.ListOptions) ([]letters.Record, error) {
	if err := s.requireCollection(ctx, collection); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("created_at ASC")
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var rows []recordModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	records := make([]letters.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := decodeRecord(row)
		if err != nil {
			s.logger.Warn("Skipping undecodable record",
				zap.String("collection", collection),
				zap.String("record_id", row.ID),
				zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Create inserts a record with a freshly minted ID.
func (s *GormStore) Create(ctx context.Context, collection string, fields map[string]any) (letters.Record, error) {
	if err := s.requireCollection(ctx, collection); err != nil {
		return letters.Record{}, err
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return letters.Record{}, fmt.Errorf("encode fields: %w", err)
	}

	row := recordModel{
		ID:         uuid.NewString(),
		Collection: collection,
		Fields:     string(payload),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return letters.Record{}, fmt.Errorf("create record in %s: %w", collection, err)
	}
	return decodeRecord(row)
}

// Update merges the given fields into an existing record.
func (s *GormStore) Update(ctx context.Context, collection, id string, fields map[string]any) (letters.Record, error) {
	if err := s.requireCollection(ctx, collection); err != nil {
		return letters.Record{}, err
	}

	var row recordModel
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return letters.Record{}, fmt.Errorf("record %s not found in %s", id, collection)
		}
		return letters.Record{}, fmt.Errorf("load record: %w", err)
	}

	current := map[string]any{}
	if row.Fields != "" {
		if err := json.Unmarshal([]byte(row.Fields), &current); err != nil {
			return letters.Record{}, fmt.Errorf("decode stored fields: %w", err)
		}
	}
	for k, v := range fields {
		current[k] = v
	}
	payload, err := json.Marshal(current)
	if err != nil {
		return letters.Record{}, fmt.Errorf("encode fields: %w", err)
	}

	row.Fields = string(payload)
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return letters.Record{}, fmt.Errorf("update record: %w", err)
	}
	return decodeRecord(row)
}

// Delete removes a record. Deleting a missing record is not an error.
func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	if err := s.requireCollection(ctx, collection); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&recordModel{}).Error
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// EnsureCollection provisions a collection row. Idempotent.
func (s *GormStore) EnsureCollection(ctx context.Context, schema letters.CollectionSchema) error {
	columns, err := json.Marshal(schema.Columns)
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	row := collectionModel{
		Name:        schema.Name,
		Description: schema.Description,
		Columns:     string(columns),
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("ensure collection %s: %w", schema.Name, err)
	}
	s.logger.Info("Collection ensured", zap.String("collection", schema.Name))
	return nil
}

// requireCollection maps an unprovisioned collection to
// letters.ErrCollectionNotFound so loaders can provision and retry.
func (s *GormStore) requireCollection(ctx context.Context, name string) error {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&collectionModel{}).
		Where("name = ?", name).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("check collection %s: %w", name, err)
	}
	if count == 0 {
		return fmt.Errorf("collection %q: %w", name, letters.ErrCollectionNotFound)
	}
	return nil
}

func decodeRecord(row recordModel) (letters.Record, error) {
	fields := map[string]any{}
	if row.Fields != "" {
		if err := json.Unmarshal([]byte(row.Fields), &fields); err != nil {
			return letters.Record{}, fmt.Errorf("decode record %s: %w", row.ID, err)
		}
	}
	return letters.Record{
		ID:        row.ID,
		Fields:    fields,
		CreatedAt: row.CreatedAt,
	}, nil
}
