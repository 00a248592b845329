package letters

import (
	"strings"

	"github.com/letterdesk/backend/internal/domain/shared"
)

// User access record field names as persisted in the record store.
const (
	FieldAccessPrincipal    = "UserPrincipalName"
	FieldAccessRole         = "Role"
	FieldAccessCompanyIDs   = "CompanyIds"
	FieldAccessCompanyNames = "CompanyNames"
)

// Role is the access level granted to a principal.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleEditor Role = "Editor"
	RoleViewer Role = "Viewer"
)

// ParseRole normalizes a stored role value. Unknown or empty values
// degrade to Viewer.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "editor":
		return RoleEditor
	default:
		return RoleViewer
	}
}

// Valid reports whether the role is one of the three known levels.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleViewer
}

// AccessEntry grants a principal a role, optionally restricted to a set
// of companies. CompanyIDs and CompanyNames are persisted as
// comma-joined strings; CompanyNames is denormalized display data only.
type AccessEntry struct {
	ID                string   `json:"id"`
	UserPrincipalName string   `json:"user_principal_name"`
	Role              Role     `json:"role"`
	CompanyIDs        []string `json:"company_ids"`
	CompanyNames      []string `json:"company_names"`
}

// AccessEntryFromRecord decodes an access entry from a raw record.
func AccessEntryFromRecord(rec Record) AccessEntry {
	return AccessEntry{
		ID:                rec.ID,
		UserPrincipalName: stringField(rec.Fields, FieldAccessPrincipal),
		Role:              ParseRole(stringField(rec.Fields, FieldAccessRole)),
		CompanyIDs:        splitIDList(stringField(rec.Fields, FieldAccessCompanyIDs)),
		CompanyNames:      splitIDList(stringField(rec.Fields, FieldAccessCompanyNames)),
	}
}

// Fields encodes the access entry into record store fields.
func (e AccessEntry) Fields() map[string]any {
	return map[string]any{
		FieldAccessPrincipal:    e.UserPrincipalName,
		FieldAccessRole:         string(e.Role),
		FieldAccessCompanyIDs:   strings.Join(e.CompanyIDs, ","),
		FieldAccessCompanyNames: strings.Join(e.CompanyNames, ","),
	}
}

// Validate checks the entry for persistence.
func (e AccessEntry) Validate() error {
	if strings.TrimSpace(e.UserPrincipalName) == "" {
		return shared.NewValidationError("user principal name is required")
	}
	if !e.Role.Valid() {
		return shared.NewValidationError("role must be Admin, Editor or Viewer")
	}
	return nil
}

// AccessSchema describes the user access collection for provisioning.
func AccessSchema(name string) CollectionSchema {
	return CollectionSchema{
		Name:        name,
		Description: "Per-user roles and company allowlists",
		Columns: []ColumnDef{
			{Name: FieldAccessPrincipal, Type: ColumnText},
			{Name: FieldAccessRole, Type: ColumnChoice, Choices: []string{
				string(RoleAdmin), string(RoleEditor), string(RoleViewer),
			}},
			{Name: FieldAccessCompanyIDs, Type: ColumnNote},
			{Name: FieldAccessCompanyNames, Type: ColumnNote},
		},
	}
}

// splitIDList splits a comma-joined list, trimming whitespace and
// dropping empty segments.
func splitIDList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
