package letters

import (
	"context"
	"strings"

	"github.com/letterdesk/backend/internal/domain/letters"
	"github.com/letterdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AccessService administers user access entries. All operations are
// admin only; non-admins listing entries get an empty result rather
// than an error, so the access surface stays invisible to them.
type AccessService struct {
	records     letters.RecordStore
	state       *StateStore
	collections Collections
	logger      *zap.Logger
}

// NewAccessService creates an access service.
func NewAccessService(records letters.RecordStore, state *StateStore, collections Collections, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{
		records:     records,
		state:       state,
		collections: collections,
		logger:      logger,
	}
}

// List returns all access entries for admins and nothing for everyone
// else.
func (s *AccessService) List(ctx context.Context, principal string) ([]letters.AccessEntry, error) {
	snap := s.state.Snapshot()
	scope := snap.ScopeFor(principal)
	if !scope.CanManageAccess() {
		return []letters.AccessEntry{}, nil
	}
	return snap.AccessEntries, nil
}

// Create grants a principal a role. Company names are denormalized from
// the current company snapshot for display.
func (s *AccessService) Create(ctx context.Context, principal string, input CreateAccessInput) (letters.AccessEntry, error) {
	snap := s.state.Snapshot()
	scope := snap.ScopeFor(principal)
	if !scope.Ready {
		return letters.AccessEntry{}, shared.ErrNotReady
	}
	if !scope.CanManageAccess() {
		return letters.AccessEntry{}, shared.NewPermissionError("only admins can manage access")
	}
	if scope.SetupMode {
		s.logger.Warn("Access entry created under setup mode",
			zap.String("principal", scope.Principal))
	}

	upn := strings.TrimSpace(input.UserPrincipalName)
	for _, e := range snap.AccessEntries {
		if strings.EqualFold(e.UserPrincipalName, upn) {
			return letters.AccessEntry{}, shared.NewDomainError("ALREADY_EXISTS", "an access entry already exists for this user")
		}
	}

	entry := letters.AccessEntry{
		UserPrincipalName: upn,
		Role:              letters.ParseRole(input.Role),
		CompanyIDs:        input.CompanyIDs,
		CompanyNames:      companyNames(snap, input.CompanyIDs),
	}
	if err := entry.Validate(); err != nil {
		return letters.AccessEntry{}, err
	}

	rec, err := s.records.Create(ctx, s.collections.Access, entry.Fields())
	if err != nil {
		s.logger.Error("Failed to create access record", zap.Error(err))
		return letters.AccessEntry{}, shared.NewStoreError("failed to create access entry")
	}

	created := letters.AccessEntryFromRecord(rec)
	s.state.UpsertAccessEntry(created)
	s.logger.Info("Access entry created",
		zap.String("entry_id", created.ID),
		zap.String("user", created.UserPrincipalName),
		zap.String("role", string(created.Role)))
	return created, nil
}

// Update applies a partial update to an access entry. The principal
// name of an entry never changes; delete and recreate instead.
func (s *AccessService) Update(ctx context.Context, principal, id string, input UpdateAccessInput) (letters.AccessEntry, error) {
	snap := s.state.Snapshot()
	scope := snap.ScopeFor(principal)
	if !scope.Ready {
		return letters.AccessEntry{}, shared.ErrNotReady
	}
	if !scope.CanManageAccess() {
		return letters.AccessEntry{}, shared.NewPermissionError("only admins can manage access")
	}

	var entry letters.AccessEntry
	found := false
	for _, e := range snap.AccessEntries {
		if e.ID == id {
			entry = e
			found = true
			break
		}
	}
	if !found {
		return letters.AccessEntry{}, shared.NewNotFoundError("access entry not found")
	}

	fields := make(map[string]any)
	if input.Role != nil {
		entry.Role = letters.ParseRole(*input.Role)
		fields[letters.FieldAccessRole] = string(entry.Role)
	}
	if input.CompanyIDs != nil {
		entry.CompanyIDs = *input.CompanyIDs
		entry.CompanyNames = companyNames(snap, entry.CompanyIDs)
		fields[letters.FieldAccessCompanyIDs] = strings.Join(entry.CompanyIDs, ",")
		fields[letters.FieldAccessCompanyNames] = strings.Join(entry.CompanyNames, ",")
	}
	if len(fields) == 0 {
		return entry, nil
	}

	rec, err := s.records.Update(ctx, s.collections.Access, id, fields)
	if err != nil {
		s.logger.Error("Failed to update access record",
			zap.String("entry_id", id), zap.Error(err))
		return letters.AccessEntry{}, shared.NewStoreError("failed to update access entry")
	}

	updated := letters.AccessEntryFromRecord(rec)
	s.state.UpsertAccessEntry(updated)
	s.logger.Info("Access entry updated", zap.String("entry_id", id))
	return updated, nil
}

// Delete revokes an access entry.
func (s *AccessService) Delete(ctx context.Context, principal, id string) error {
	snap := s.state.Snapshot()
	scope := snap.ScopeFor(principal)
	if !scope.Ready {
		return shared.ErrNotReady
	}
	if !scope.CanManageAccess() {
		return shared.NewPermissionError("only admins can manage access")
	}

	found := false
	for _, e := range snap.AccessEntries {
		if e.ID == id {
			found = true
			break
		}
	}
	if !found {
		return shared.NewNotFoundError("access entry not found")
	}

	if err := s.records.Delete(ctx, s.collections.Access, id); err != nil {
		s.logger.Error("Failed to delete access record",
			zap.String("entry_id", id), zap.Error(err))
		return shared.NewStoreError("failed to delete access entry")
	}

	s.state.RemoveAccessEntry(id)
	s.logger.Info("Access entry deleted", zap.String("entry_id", id))
	return nil
}

// companyNames maps company IDs to display names from the snapshot.
// Unknown IDs are skipped.
func companyNames(snap Snapshot, ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if c, ok := snap.CompanyByID(id); ok {
			names = append(names, c.Name)
		}
	}
	return names
}
