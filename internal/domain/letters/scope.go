package letters

import "strings"

// CompanyScope is the set of companies a principal may see. All takes
// precedence over IDs; a scope with All=false and an empty ID set denies
// everything.
type CompanyScope struct {
	All bool
	IDs map[string]struct{}
}

// Contains reports whether the scope covers the given company.
func (s CompanyScope) Contains(companyID string) bool {
	if s.All {
		return true
	}
	_, ok := s.IDs[companyID]
	return ok
}

// AccessScope is the resolved access level of one principal. Ready is
// false until the access entry list has been loaded at least once; an
// unready scope reads nothing and writes nothing. SetupMode marks the
// bootstrap grant handed out when the access list is empty.
type AccessScope struct {
	Principal string
	Role      Role
	Companies CompanyScope
	Ready     bool
	SetupMode bool
}

// UnresolvedScope is the scope used before the access list has loaded:
// a transient viewer that can see nothing.
func UnresolvedScope(principal string) AccessScope {
	return AccessScope{
		Principal: strings.ToLower(principal),
		Role:      RoleViewer,
	}
}

// ResolveScope derives a principal's scope from the loaded access entry
// list. Matching is case-insensitive on the principal name.
//
// An unmatched principal against a non-empty list gets a viewer scope
// that covers no companies. An unmatched principal against an EMPTY list
// gets full admin with SetupMode set, so a fresh deployment can be
// configured by its first user.
func ResolveScope(entries []AccessEntry, principal string) AccessScope {
	lower := strings.ToLower(principal)
	scope := AccessScope{Principal: lower, Ready: true}

	// The first matching entry wins; duplicate entries for the same
	// principal after it are ignored.
	var matched *AccessEntry
	for i := range entries {
		if strings.ToLower(entries[i].UserPrincipalName) == lower {
			matched = &entries[i]
			break
		}
	}

	if matched == nil {
		if len(entries) == 0 {
			scope.Role = RoleAdmin
			scope.Companies = CompanyScope{All: true}
			scope.SetupMode = true
			return scope
		}
		scope.Role = RoleViewer
		scope.Companies = CompanyScope{}
		return scope
	}

	scope.Role = matched.Role
	if matched.Role == RoleAdmin || len(matched.CompanyIDs) == 0 {
		// Admins are unrestricted. A non-admin entry with no allowlist is
		// likewise unrestricted, matching how existing grants were written.
		scope.Companies = CompanyScope{All: true}
		return scope
	}

	ids := make(map[string]struct{}, len(matched.CompanyIDs))
	for _, id := range matched.CompanyIDs {
		ids[id] = struct{}{}
	}
	scope.Companies = CompanyScope{IDs: ids}
	return scope
}

// IsAdmin reports whether the scope carries the admin role.
func (s AccessScope) IsAdmin() bool {
	return s.Ready && s.Role == RoleAdmin
}

// CanEditLetters reports whether the scope may create or update letters
// for at least some company.
func (s AccessScope) CanEditLetters() bool {
	return s.Ready && (s.Role == RoleAdmin || s.Role == RoleEditor)
}

// CanEditLettersFor reports whether the scope may create or update
// letters for the given company.
func (s AccessScope) CanEditLettersFor(companyID string) bool {
	return s.CanEditLetters() && s.Companies.Contains(companyID)
}

// CanManageCompanies reports whether the scope may create, update or
// delete companies.
func (s AccessScope) CanManageCompanies() bool {
	return s.IsAdmin()
}

// CanManageAccess reports whether the scope may administer access entries.
func (s AccessScope) CanManageAccess() bool {
	return s.IsAdmin()
}

// CanReadCompany reports whether the scope may see the given company and
// its letters.
func (s AccessScope) CanReadCompany(companyID string) bool {
	return s.Ready && s.Companies.Contains(companyID)
}

// FilterCompanies returns the companies visible to the scope.
func (s AccessScope) FilterCompanies(companies []Company) []Company {
	if !s.Ready {
		return nil
	}
	if s.Companies.All {
		return companies
	}
	out := make([]Company, 0, len(companies))
	for _, c := range companies {
		if s.Companies.Contains(c.ID) {
			out = append(out, c)
		}
	}
	return out
}

// FilterLetters returns the letters visible to the scope, keyed by the
// letter's company binding.
func (s AccessScope) FilterLetters(list []Letter) []Letter {
	if !s.Ready {
		return nil
	}
	if s.Companies.All {
		return list
	}
	out := make([]Letter, 0, len(list))
	for _, l := range list {
		if s.Companies.Contains(l.CompanyID) {
			out = append(out, l)
		}
	}
	return out
}
