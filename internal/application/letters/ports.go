package letters

import "context"

// Collections names the record store collections backing each entity.
type Collections struct {
	Companies string
	Letters   string
	Access    string
}

// DefaultCollections returns the collection names used when none are
// configured.
func DefaultCollections() Collections {
	return Collections{
		Companies: "LetterCompanies",
		Letters:   "LetterNumbers",
		Access:    "LetterUserAccess",
	}
}

// SequenceGuard reserves (company, year, sequence) triples before a
// letter record is written, closing the allocation race between
// replicas. Reserve returns false when another writer already holds the
// triple; the caller then recomputes and retries.
//
// A nil guard is valid and means allocation stays best-effort.
type SequenceGuard interface {
	Reserve(ctx context.Context, companyID string, year, sequence int) (bool, error)
	// Release frees a reservation after a failed write so the sequence
	// can be allocated again.
	Release(ctx context.Context, companyID string, year, sequence int) error
}

// DirectoryUser is a user surfaced by the identity provider's
// directory, used when granting access.
type DirectoryUser struct {
	UserPrincipalName string `json:"user_principal_name"`
	DisplayName       string `json:"display_name"`
}

// UserDirectory searches the identity provider's directory by name or
// principal prefix.
type UserDirectory interface {
	Search(ctx context.Context, query string) ([]DirectoryUser, error)
}
