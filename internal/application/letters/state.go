// Package letters contains the application services for the letter
// reference-numbering service: a versioned in-memory snapshot of record
// data plus company, letter and access-entry services on top of it.
package letters

import (
	"sort"
	"sync"

	"github.com/letterdesk/backend/internal/domain/letters"
)

// Snapshot is an immutable view of the loaded record data. Slices are
// copied on read, so holders can iterate without locking.
type Snapshot struct {
	Version       uint64
	Companies     []letters.Company
	Letters       []letters.Letter
	AccessEntries []letters.AccessEntry
	AccessLoaded  bool
}

// ScopeFor resolves the access scope of a principal against this
// snapshot. Before the access list has loaded the scope is a transient
// viewer that can see nothing.
func (s Snapshot) ScopeFor(principal string) letters.AccessScope {
	if !s.AccessLoaded {
		return letters.UnresolvedScope(principal)
	}
	return letters.ResolveScope(s.AccessEntries, principal)
}

// CompanyByID finds a company in the snapshot.
func (s Snapshot) CompanyByID(id string) (letters.Company, bool) {
	for _, c := range s.Companies {
		if c.ID == id {
			return c, true
		}
	}
	return letters.Company{}, false
}

// LetterByID finds a letter in the snapshot.
func (s Snapshot) LetterByID(id string) (letters.Letter, bool) {
	for _, l := range s.Letters {
		if l.ID == id {
			return l, true
		}
	}
	return letters.Letter{}, false
}

// StateStore holds the current snapshot behind a mutex. Every mutation
// goes through it and bumps the version, making it the single
// serialization point for cache updates.
type StateStore struct {
	mu    sync.RWMutex
	state Snapshot
}

// NewStateStore returns an empty state store.
func NewStateStore() *StateStore {
	return &StateStore{}
}

// Snapshot returns a copy of the current state.
func (s *StateStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Snapshot{
		Version:      s.state.Version,
		AccessLoaded: s.state.AccessLoaded,
	}
	out.Companies = append(out.Companies, s.state.Companies...)
	out.Letters = append(out.Letters, s.state.Letters...)
	out.AccessEntries = append(out.AccessEntries, s.state.AccessEntries...)
	return out
}

// Version returns the current state version.
func (s *StateStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Version
}

// SetCompanies replaces the company list.
func (s *StateStore) SetCompanies(companies []letters.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Companies = sortedCompanies(companies)
	s.state.Version++
}

// UpsertCompany inserts or replaces one company.
func (s *StateStore) UpsertCompany(c letters.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Companies = upsertCompany(s.state.Companies, c)
	s.state.Version++
}

// RemoveCompany drops a company from the snapshot.
func (s *StateStore) RemoveCompany(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state.Companies[:0]
	for _, c := range s.state.Companies {
		if c.ID != id {
			out = append(out, c)
		}
	}
	s.state.Companies = out
	s.state.Version++
}

// SetLetters replaces the letter list.
func (s *StateStore) SetLetters(list []letters.Letter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Letters = sortedLetters(list)
	s.state.Version++
}

// UpsertLetter inserts or replaces one letter, keeping date ordering.
func (s *StateStore) UpsertLetter(l letters.Letter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	replaced := false
	for i := range s.state.Letters {
		if s.state.Letters[i].ID == l.ID {
			s.state.Letters[i] = l
			replaced = true
			break
		}
	}
	if !replaced {
		s.state.Letters = append(s.state.Letters, l)
	}
	s.state.Letters = sortedLetters(s.state.Letters)
	s.state.Version++
}

// SetLetterAttachments records the lazily loaded attachment list of one
// letter.
func (s *StateStore) SetLetterAttachments(letterID string, attachments []letters.Attachment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Letters {
		if s.state.Letters[i].ID == letterID {
			s.state.Letters[i].Attachments = attachments
			s.state.Letters[i].AttachmentsLoaded = true
			break
		}
	}
	s.state.Version++
}

// SetAccessEntries replaces the access entry list and marks it loaded.
// The loaded flag is set even when the load failed and entries is nil;
// the caller decides by passing loaded explicitly.
func (s *StateStore) SetAccessEntries(entries []letters.AccessEntry, loaded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AccessEntries = entries
	s.state.AccessLoaded = loaded
	s.state.Version++
}

// MarkAccessLoaded flips the access-loaded flag without touching the
// entries. Used when a load attempt settles with an error: scope
// resolution must proceed rather than stay pending forever.
func (s *StateStore) MarkAccessLoaded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AccessLoaded = true
	s.state.Version++
}

// UpsertAccessEntry inserts or replaces one access entry.
func (s *StateStore) UpsertAccessEntry(e letters.AccessEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	replaced := false
	for i := range s.state.AccessEntries {
		if s.state.AccessEntries[i].ID == e.ID {
			s.state.AccessEntries[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		s.state.AccessEntries = append(s.state.AccessEntries, e)
	}
	s.state.Version++
}

// RemoveAccessEntry drops an access entry from the snapshot.
func (s *StateStore) RemoveAccessEntry(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state.AccessEntries[:0]
	for _, e := range s.state.AccessEntries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	s.state.AccessEntries = out
	s.state.Version++
}

// upsertCompany inserts or replaces one company by ID, keeping name
// ordering.
func upsertCompany(companies []letters.Company, c letters.Company) []letters.Company {
	replaced := false
	for i := range companies {
		if companies[i].ID == c.ID {
			companies[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		companies = append(companies, c)
	}
	return sortedCompanies(companies)
}

func sortedCompanies(companies []letters.Company) []letters.Company {
	out := append([]letters.Company(nil), companies...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// sortedLetters orders newest letter date first, ties broken by
// sequence descending so the latest allocation leads.
func sortedLetters(list []letters.Letter) []letters.Letter {
	out := append([]letters.Letter(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].LetterDate.Equal(out[j].LetterDate) {
			return out[i].LetterDate.After(out[j].LetterDate)
		}
		return out[i].SequenceNumber > out[j].SequenceNumber
	})
	return out
}
