package letters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/letterdesk/backend/internal/domain/letters"
	"go.uber.org/zap"
)

// Loader pulls companies, letters and access entries out of the record
// store into the state store. When a collection is missing it is
// provisioned with the fixed column schema and the load retried once.
type Loader struct {
	records     letters.RecordStore
	state       *StateStore
	collections Collections
	logger      *zap.Logger
	now         func() time.Time
}

// NewLoader creates a loader over the given record store and state store.
func NewLoader(records letters.RecordStore, state *StateStore, collections Collections, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		records:     records,
		state:       state,
		collections: collections,
		logger:      logger,
		now:         time.Now,
	}
}

// Refresh reloads everything. The access list load always settles the
// access-loaded flag, success or not, so scope resolution never stays
// pending after a refresh attempt.
func (l *Loader) Refresh(ctx context.Context) error {
	var errs []error
	if err := l.LoadCompanies(ctx); err != nil {
		errs = append(errs, fmt.Errorf("companies: %w", err))
	}
	if err := l.LoadLetters(ctx); err != nil {
		errs = append(errs, fmt.Errorf("letters: %w", err))
	}
	if err := l.LoadAccessEntries(ctx); err != nil {
		errs = append(errs, fmt.Errorf("access entries: %w", err))
	}
	return errors.Join(errs...)
}

// LoadCompanies replaces the company snapshot from the record store.
func (l *Loader) LoadCompanies(ctx context.Context) error {
	recs, err := l.listWithProvision(ctx, letters.CompanySchema(l.collections.Companies))
	if err != nil {
		return err
	}
	companies := make([]letters.Company, 0, len(recs))
	for _, rec := range recs {
		companies = append(companies, letters.CompanyFromRecord(rec))
	}
	l.state.SetCompanies(companies)
	l.logger.Debug("Companies loaded", zap.Int("count", len(companies)))
	return nil
}

// LoadLetters replaces the letter snapshot from the record store.
func (l *Loader) LoadLetters(ctx context.Context) error {
	recs, err := l.listWithProvision(ctx, letters.LetterSchema(l.collections.Letters))
	if err != nil {
		return err
	}
	now := l.now()
	list := make([]letters.Letter, 0, len(recs))
	for _, rec := range recs {
		list = append(list, letters.LetterFromRecord(rec, now))
	}
	l.state.SetLetters(list)
	l.logger.Debug("Letters loaded", zap.Int("count", len(list)))
	return nil
}

// LoadAccessEntries replaces the access entry snapshot. The loaded flag
// is set even when the list cannot be read: a principal with no
// resolvable entries becomes a deny-all viewer instead of waiting
// forever on an unready scope.
func (l *Loader) LoadAccessEntries(ctx context.Context) error {
	recs, err := l.listWithProvision(ctx, letters.AccessSchema(l.collections.Access))
	if err != nil {
		l.state.MarkAccessLoaded()
		return err
	}
	entries := make([]letters.AccessEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, letters.AccessEntryFromRecord(rec))
	}
	l.state.SetAccessEntries(entries, true)
	if len(entries) == 0 {
		l.logger.Warn("Access list is empty, setup mode is active",
			zap.String("collection", l.collections.Access))
	}
	l.logger.Debug("Access entries loaded", zap.Int("count", len(entries)))
	return nil
}

// listWithProvision lists a collection, creating it and retrying once
// when the store reports it missing.
func (l *Loader) listWithProvision(ctx context.Context, schema letters.CollectionSchema) ([]letters.Record, error) {
	recs, err := l.records.List(ctx, schema.Name, letters.ListOptions{})
	if err == nil {
		return recs, nil
	}
	if !errors.Is(err, letters.ErrCollectionNotFound) {
		return nil, err
	}

	l.logger.Info("Provisioning missing collection", zap.String("collection", schema.Name))
	if err := l.records.EnsureCollection(ctx, schema); err != nil {
		return nil, fmt.Errorf("provision %s: %w", schema.Name, err)
	}
	return l.records.List(ctx, schema.Name, letters.ListOptions{})
}
