package letters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letterdesk/backend/internal/domain/letters"
)

func TestStateStore_VersionBumpsOnWrite(t *testing.T) {
	s := NewStateStore()
	v0 := s.Version()

	s.SetCompanies([]letters.Company{{ID: "c1", Name: "Acme"}})
	v1 := s.Version()
	assert.Greater(t, v1, v0)

	s.UpsertLetter(letters.Letter{ID: "l1", CompanyID: "c1"})
	assert.Greater(t, s.Version(), v1)
}

func TestStateStore_SnapshotIsCopy(t *testing.T) {
	s := NewStateStore()
	s.SetCompanies([]letters.Company{{ID: "c1", Name: "Acme"}})

	snap := s.Snapshot()
	require.Len(t, snap.Companies, 1)
	snap.Companies[0].Name = "Mutated"

	again := s.Snapshot()
	assert.Equal(t, "Acme", again.Companies[0].Name, "mutating a snapshot must not leak into the store")
}

func TestStateStore_LettersSortedNewestFirst(t *testing.T) {
	s := NewStateStore()
	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }

	s.SetLetters([]letters.Letter{
		{ID: "old", LetterDate: day(1), SequenceNumber: 1},
		{ID: "new", LetterDate: day(9), SequenceNumber: 3},
		{ID: "mid", LetterDate: day(5), SequenceNumber: 2},
	})

	snap := s.Snapshot()
	require.Len(t, snap.Letters, 3)
	assert.Equal(t, "new", snap.Letters[0].ID)
	assert.Equal(t, "mid", snap.Letters[1].ID)
	assert.Equal(t, "old", snap.Letters[2].ID)

	// Same date, higher sequence wins.
	s.UpsertLetter(letters.Letter{ID: "tie", LetterDate: day(9), SequenceNumber: 4})
	snap = s.Snapshot()
	assert.Equal(t, "tie", snap.Letters[0].ID)
}

func TestStateStore_UpsertReplacesByID(t *testing.T) {
	s := NewStateStore()
	s.SetCompanies([]letters.Company{{ID: "c1", Name: "Acme"}})

	s.UpsertCompany(letters.Company{ID: "c1", Name: "Acme Renamed"})
	snap := s.Snapshot()
	require.Len(t, snap.Companies, 1)
	assert.Equal(t, "Acme Renamed", snap.Companies[0].Name)

	s.RemoveCompany("c1")
	assert.Empty(t, s.Snapshot().Companies)
}

func TestStateStore_ScopeForBeforeAccessLoad(t *testing.T) {
	s := NewStateStore()
	scope := s.Snapshot().ScopeFor("alice@example.com")
	assert.False(t, scope.Ready)
	assert.False(t, scope.CanEditLetters())

	s.SetAccessEntries(nil, true)
	scope = s.Snapshot().ScopeFor("alice@example.com")
	assert.True(t, scope.Ready)
	assert.True(t, scope.SetupMode)
	assert.True(t, scope.IsAdmin())
}

func TestStateStore_SetLetterAttachments(t *testing.T) {
	s := NewStateStore()
	s.SetLetters([]letters.Letter{{ID: "l1"}})

	s.SetLetterAttachments("l1", []letters.Attachment{{Name: "ACME-0001-26.pdf", Path: "Letters/ACME/ACME-0001-26.pdf"}})

	snap := s.Snapshot()
	letter, ok := snap.LetterByID("l1")
	require.True(t, ok)
	assert.True(t, letter.AttachmentsLoaded)
	require.Len(t, letter.Attachments, 1)
	assert.Equal(t, "ACME-0001-26.pdf", letter.Attachments[0].Name)
}
