package letters

import (
	"context"
	"strings"

	"github.com/letterdesk/backend/internal/domain/letters"
	"github.com/letterdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CompanyService manages issuing companies. All mutations are admin
// only; reads are filtered through the caller's scope.
type CompanyService struct {
	records     letters.RecordStore
	state       *StateStore
	collections Collections
	logger      *zap.Logger
}

// NewCompanyService creates a company service.
func NewCompanyService(records letters.RecordStore, state *StateStore, collections Collections, logger *zap.Logger) *CompanyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyService{
		records:     records,
		state:       state,
		collections: collections,
		logger:      logger,
	}
}

// List returns the companies visible to the principal. An unready scope
// sees nothing.
func (s *CompanyService) List(ctx context.Context, principal string) ([]letters.Company, error) {
	snap := s.state.Snapshot()
	scope := snap.ScopeFor(principal)
	return scope.FilterCompanies(snap.Companies), nil
}

// Create registers a new company.
func (s *CompanyService) Create(ctx context.Context, principal string, input CreateCompanyInput) (letters.Company, error) {
	snap := s.state.Snapshot()
	scope := snap.ScopeFor(principal)
	if !scope.Ready {
		return letters.Company{}, shared.ErrNotReady
	}
	if !scope.CanManageCompanies() {
		return letters.Company{}, shared.NewPermissionError("only admins can manage companies")
	}
	if scope.SetupMode {
		s.logger.Warn("Company created under setup mode", zap.String("principal", scope.Principal))
	}

	company := letters.Company{
		Name:           strings.TrimSpace(input.Name),
		Abbreviation:   strings.TrimSpace(input.Abbreviation),
		StartingNumber: input.StartingNumber,
		Color:          input.Color,
	}
	if company.StartingNumber == 0 {
		company.StartingNumber = 1
	}
	if company.Color == "" {
		company.Color = letters.DefaultCompanyColor
	}
	if err := company.Validate(); err != nil {
		return letters.Company{}, err
	}

	rec, err := s.records.Create(ctx, s.collections.Companies, company.Fields())
	if err != nil {
		s.logger.Error("Failed to create company record", zap.Error(err))
		return letters.Company{}, shared.NewStoreError("failed to create company")
	}

	created := letters.CompanyFromRecord(rec)
	s.state.UpsertCompany(created)
	s.logger.Info("Company created",
		zap.String("company_id", created.ID),
		zap.String("abbreviation", created.Abbreviation))
	return created, nil
}

// Update applies a partial update to a company. Absent fields are left
// untouched.
func (s *CompanyService) Update(ctx context.Context, principal, id string, input UpdateCompanyInput) (letters.Company, error) {
	snap := s.state.Snapshot()
	scope := snap.ScopeFor(principal)
	if !scope.Ready {
		return letters.Company{}, shared.ErrNotReady
	}
	if !scope.CanManageCompanies() {
		return letters.Company{}, shared.NewPermissionError("only admins can manage companies")
	}

	company, ok := snap.CompanyByID(id)
	if !ok {
		return letters.Company{}, shared.NewNotFoundError("company not found")
	}

	fields := make(map[string]any)
	if input.Name != nil {
		company.Name = strings.TrimSpace(*input.Name)
		fields[letters.FieldCompanyName] = company.Name
	}
	if input.Abbreviation != nil {
		company.Abbreviation = strings.TrimSpace(*input.Abbreviation)
		fields[letters.FieldCompanyAbbreviation] = company.Abbreviation
	}
	if input.StartingNumber != nil {
		company.StartingNumber = *input.StartingNumber
		fields[letters.FieldCompanyStartingNumber] = company.StartingNumber
	}
	if input.Color != nil {
		company.Color = *input.Color
		fields[letters.FieldCompanyColor] = company.Color
	}
	if len(fields) == 0 {
		return company, nil
	}
	if err := company.Validate(); err != nil {
		return letters.Company{}, err
	}

	rec, err := s.records.Update(ctx, s.collections.Companies, id, fields)
	if err != nil {
		s.logger.Error("Failed to update company record",
			zap.String("company_id", id), zap.Error(err))
		return letters.Company{}, shared.NewStoreError("failed to update company")
	}

	updated := letters.CompanyFromRecord(rec)
	s.state.UpsertCompany(updated)
	s.logger.Info("Company updated", zap.String("company_id", id))
	return updated, nil
}

// Delete removes a company. Letters already numbered against it keep
// their reference and company fields.
func (s *CompanyService) Delete(ctx context.Context, principal, id string) error {
	snap := s.state.Snapshot()
	scope := snap.ScopeFor(principal)
	if !scope.Ready {
		return shared.ErrNotReady
	}
	if !scope.CanManageCompanies() {
		return shared.NewPermissionError("only admins can manage companies")
	}
	if _, ok := snap.CompanyByID(id); !ok {
		return shared.NewNotFoundError("company not found")
	}

	if err := s.records.Delete(ctx, s.collections.Companies, id); err != nil {
		s.logger.Error("Failed to delete company record",
			zap.String("company_id", id), zap.Error(err))
		return shared.NewStoreError("failed to delete company")
	}

	s.state.RemoveCompany(id)
	s.logger.Info("Company deleted", zap.String("company_id", id))
	return nil
}
