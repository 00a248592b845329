// Package directory provides the user directory consulted when
// granting access. Users come from static configuration merged with
// principals already present in the access list.
package directory

import (
	"context"
	"sort"
	"strings"
	"sync"

	app "github.com/letterdesk/backend/internal/application/letters"
	"github.com/letterdesk/backend/internal/infrastructure/config"
)

// StaticDirectory serves user lookups from an in-memory list.
type StaticDirectory struct {
	mu    sync.RWMutex
	users map[string]app.DirectoryUser
}

// Ensure StaticDirectory implements UserDirectory
var _ app.UserDirectory = (*StaticDirectory)(nil)

// NewStaticDirectory builds a directory from configuration entries.
func NewStaticDirectory(entries []config.DirectoryUserEntry) *StaticDirectory {
	d := &StaticDirectory{users: make(map[string]app.DirectoryUser)}
	for _, e := range entries {
		d.Add(app.DirectoryUser{
			UserPrincipalName: e.UserPrincipalName,
			DisplayName:       e.DisplayName,
		})
	}
	return d
}

// Add registers a user. Existing entries for the same principal are
// replaced, unless the new entry has no display name and the old one
// does.
func (d *StaticDirectory) Add(user app.DirectoryUser) {
	upn := strings.ToLower(strings.TrimSpace(user.UserPrincipalName))
	if upn == "" {
		return
	}
	user.UserPrincipalName = upn

	d.mu.Lock()
	defer d.mu.Unlock()
	if existing, ok := d.users[upn]; ok && user.DisplayName == "" {
		user.DisplayName = existing.DisplayName
	}
	d.users[upn] = user
}

// Search returns users whose principal name or display name contains
// the query, case-insensitive. An empty query returns everyone.
func (d *StaticDirectory) Search(ctx context.Context, query string) ([]app.DirectoryUser, error) {
	q := strings.ToLower(strings.TrimSpace(query))

	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]app.DirectoryUser, 0, len(d.users))
	for _, u := range d.users {
		if q == "" ||
			strings.Contains(u.UserPrincipalName, q) ||
			strings.Contains(strings.ToLower(u.DisplayName), q) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UserPrincipalName < out[j].UserPrincipalName
	})
	return out, nil
}
