package letters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLetterFromRecord(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("full record", func(t *testing.T) {
		rec := Record{
			ID: "l1",
			Fields: map[string]any{
				FieldLetterReferenceNumber:  "ACME/0042/26",
				FieldLetterCompanyID:        "c1",
				FieldLetterCompanyName:      "Acme Global",
				FieldLetterCompanyAbbr:      "ACME",
				FieldLetterSequenceNumber:   float64(42),
				FieldLetterYear:             float64(2026),
				FieldLetterDate:             "2026-02-10T00:00:00Z",
				FieldLetterRecipientCompany: "Globex",
				FieldLetterSubject:          "Quarterly statement",
				FieldLetterPreparedBy:       "alice@example.com",
				FieldLetterNotes:            "urgent",
			},
		}

		l := LetterFromRecord(rec, now)
		assert.Equal(t, "l1", l.ID)
		assert.Equal(t, "ACME/0042/26", l.ReferenceNumber)
		assert.Equal(t, 42, l.SequenceNumber)
		assert.Equal(t, 2026, l.Year)
		assert.Equal(t, 2026, l.LetterDate.Year())
		assert.Equal(t, "Globex", l.RecipientCompany)
	})

	t.Run("sequence and year fall back to reference", func(t *testing.T) {
		rec := Record{
			ID: "l2",
			Fields: map[string]any{
				FieldLetterReferenceNumber: "ACME/0007/25",
			},
		}

		l := LetterFromRecord(rec, now)
		assert.Equal(t, 7, l.SequenceNumber)
		assert.Equal(t, 2025, l.Year)
	})

	t.Run("subject falls back to title", func(t *testing.T) {
		rec := Record{
			ID: "l3",
			Fields: map[string]any{
				FieldLetterTitle: "ACME/0001/26",
			},
		}
		assert.Equal(t, "ACME/0001/26", LetterFromRecord(rec, now).Subject)
	})

	t.Run("malformed record degrades to zero values", func(t *testing.T) {
		l := LetterFromRecord(Record{ID: "l4", Fields: map[string]any{
			FieldLetterSequenceNumber: "not-a-number",
			FieldLetterDate:           "garbage",
		}}, now)
		assert.Equal(t, 0, l.SequenceNumber)
		assert.True(t, l.LetterDate.IsZero())
	})
}

func TestLetterFieldsTitleFallback(t *testing.T) {
	l := Letter{ReferenceNumber: "ACME/0042/26"}
	assert.Equal(t, "ACME/0042/26", l.Fields()[FieldLetterTitle])

	l.Subject = "Hello"
	assert.Equal(t, "Hello", l.Fields()[FieldLetterTitle])
}
