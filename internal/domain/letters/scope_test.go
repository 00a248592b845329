package letters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnresolvedScope(t *testing.T) {
	scope := UnresolvedScope("Alice@Example.COM")

	assert.False(t, scope.Ready)
	assert.Equal(t, "alice@example.com", scope.Principal)
	assert.False(t, scope.CanEditLetters())
	assert.False(t, scope.CanManageCompanies())
	assert.False(t, scope.CanReadCompany("c1"))
	assert.Nil(t, scope.FilterCompanies([]Company{{ID: "c1"}}))
	assert.Nil(t, scope.FilterLetters([]Letter{{ID: "l1", CompanyID: "c1"}}))
}

func TestResolveScopeMatchedEntry(t *testing.T) {
	entries := []AccessEntry{
		{UserPrincipalName: "admin@example.com", Role: RoleAdmin},
		{UserPrincipalName: "editor@example.com", Role: RoleEditor, CompanyIDs: []string{"c1", "c2"}},
		{UserPrincipalName: "viewer@example.com", Role: RoleViewer, CompanyIDs: []string{"c1"}},
	}

	t.Run("admin is unrestricted", func(t *testing.T) {
		scope := ResolveScope(entries, "admin@example.com")
		assert.True(t, scope.Ready)
		assert.True(t, scope.IsAdmin())
		assert.True(t, scope.Companies.All)
		assert.True(t, scope.CanReadCompany("c999"))
		assert.True(t, scope.CanManageCompanies())
		assert.True(t, scope.CanManageAccess())
	})

	t.Run("editor limited to allowlist", func(t *testing.T) {
		scope := ResolveScope(entries, "editor@example.com")
		assert.Equal(t, RoleEditor, scope.Role)
		assert.True(t, scope.CanEditLettersFor("c1"))
		assert.True(t, scope.CanEditLettersFor("c2"))
		assert.False(t, scope.CanEditLettersFor("c3"))
		assert.False(t, scope.CanManageCompanies())
		assert.False(t, scope.CanManageAccess())
	})

	t.Run("viewer cannot edit inside allowlist", func(t *testing.T) {
		scope := ResolveScope(entries, "viewer@example.com")
		assert.True(t, scope.CanReadCompany("c1"))
		assert.False(t, scope.CanReadCompany("c2"))
		assert.False(t, scope.CanEditLetters())
	})

	t.Run("principal matching is case insensitive", func(t *testing.T) {
		scope := ResolveScope(entries, "Editor@Example.COM")
		assert.Equal(t, RoleEditor, scope.Role)
	})
}

func TestResolveScopeUnmatchedPrincipal(t *testing.T) {
	t.Run("non-empty list denies everything", func(t *testing.T) {
		entries := []AccessEntry{{UserPrincipalName: "someone@example.com", Role: RoleAdmin}}
		scope := ResolveScope(entries, "stranger@example.com")

		assert.True(t, scope.Ready)
		assert.Equal(t, RoleViewer, scope.Role)
		assert.False(t, scope.SetupMode)
		assert.False(t, scope.CanReadCompany("c1"))
		assert.Empty(t, scope.FilterCompanies([]Company{{ID: "c1"}, {ID: "c2"}}))
	})

	t.Run("empty list grants setup-mode admin", func(t *testing.T) {
		scope := ResolveScope(nil, "first@example.com")

		assert.True(t, scope.Ready)
		assert.True(t, scope.IsAdmin())
		assert.True(t, scope.SetupMode)
		assert.True(t, scope.Companies.All)
	})
}

func TestResolveScopeFirstDuplicateEntryWins(t *testing.T) {
	entries := []AccessEntry{
		{UserPrincipalName: "dup@example.com", Role: RoleViewer, CompanyIDs: []string{"c1"}},
		{UserPrincipalName: "dup@example.com", Role: RoleAdmin},
	}
	scope := ResolveScope(entries, "dup@example.com")

	assert.Equal(t, RoleViewer, scope.Role)
	assert.False(t, scope.IsAdmin())
	assert.True(t, scope.CanReadCompany("c1"))
	assert.False(t, scope.CanReadCompany("c2"))
}

func TestResolveScopeEmptyAllowlistIsUnrestricted(t *testing.T) {
	entries := []AccessEntry{
		{UserPrincipalName: "editor@example.com", Role: RoleEditor},
	}
	scope := ResolveScope(entries, "editor@example.com")

	assert.True(t, scope.Companies.All)
	assert.True(t, scope.CanEditLettersFor("any-company"))
	assert.False(t, scope.SetupMode)
}

func TestScopeFiltering(t *testing.T) {
	companies := []Company{{ID: "c1", Name: "One"}, {ID: "c2", Name: "Two"}, {ID: "c3", Name: "Three"}}
	lettersList := []Letter{
		{ID: "l1", CompanyID: "c1"},
		{ID: "l2", CompanyID: "c2"},
		{ID: "l3", CompanyID: "c1"},
	}
	entries := []AccessEntry{
		{UserPrincipalName: "viewer@example.com", Role: RoleViewer, CompanyIDs: []string{"c1"}},
	}
	scope := ResolveScope(entries, "viewer@example.com")

	filtered := scope.FilterCompanies(companies)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "c1", filtered[0].ID)

	visible := scope.FilterLetters(lettersList)
	assert.Len(t, visible, 2)
	for _, l := range visible {
		assert.Equal(t, "c1", l.CompanyID)
	}
}
