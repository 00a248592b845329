package letters

import (
	"strings"

	"github.com/letterdesk/backend/internal/domain/shared"
)

// Company record field names as persisted in the record store.
const (
	FieldCompanyName           = "Title"
	FieldCompanyAbbreviation   = "Abbreviation"
	FieldCompanyStartingNumber = "StartingNumber"
	FieldCompanyColor          = "Color"
)

// DefaultCompanyColor is the display color assigned when none is given.
const DefaultCompanyColor = "#2563eb"

// Company is an issuing entity. Each company numbers its letters
// independently per calendar year.
type Company struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Abbreviation   string `json:"abbreviation"`
	StartingNumber int    `json:"starting_number"`
	Color          string `json:"color"`
}

// CompanyFromRecord decodes a company from a raw record, applying
// defaults for absent fields.
func CompanyFromRecord(rec Record) Company {
	c := Company{
		ID:             rec.ID,
		Name:           stringField(rec.Fields, FieldCompanyName),
		Abbreviation:   stringField(rec.Fields, FieldCompanyAbbreviation),
		StartingNumber: intField(rec.Fields, FieldCompanyStartingNumber),
		Color:          stringField(rec.Fields, FieldCompanyColor),
	}
	if c.StartingNumber <= 0 {
		c.StartingNumber = 1
	}
	if c.Color == "" {
		c.Color = DefaultCompanyColor
	}
	return c
}

// Fields encodes the company into record store fields.
func (c Company) Fields() map[string]any {
	return map[string]any{
		FieldCompanyName:           c.Name,
		FieldCompanyAbbreviation:   c.Abbreviation,
		FieldCompanyStartingNumber: c.StartingNumber,
		FieldCompanyColor:          c.Color,
	}
}

// Validate checks the company for persistence.
func (c Company) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return shared.NewValidationError("company name is required")
	}
	if strings.TrimSpace(c.Abbreviation) == "" {
		return shared.NewValidationError("company abbreviation is required")
	}
	if strings.ContainsRune(c.Abbreviation, '/') {
		return shared.NewValidationError("company abbreviation must not contain '/'")
	}
	if c.StartingNumber <= 0 {
		return shared.NewValidationError("starting number must be positive")
	}
	return nil
}

// CompanySchema describes the companies collection for provisioning.
func CompanySchema(name string) CollectionSchema {
	return CollectionSchema{
		Name:        name,
		Description: "Issuing companies for letter numbering",
		Columns: []ColumnDef{
			{Name: FieldCompanyAbbreviation, Type: ColumnText},
			{Name: FieldCompanyStartingNumber, Type: ColumnNumber},
			{Name: FieldCompanyColor, Type: ColumnText},
		},
	}
}
