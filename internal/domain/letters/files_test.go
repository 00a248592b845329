package letters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSegment(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback string
		want     string
	}{
		{"plain value", "ACME", "X", "ACME"},
		{"spaces become dashes", "Acme Global Trading", "X", "Acme-Global-Trading"},
		{"unsafe characters stripped", `A<C>M:E"?*`, "X", "ACME"},
		{"slashes stripped", "A/C\\ME", "X", "ACME"},
		{"empty uses fallback", "", "Company", "Company"},
		{"only unsafe uses fallback", "///", "Company", "Company"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeSegment(tt.value, tt.fallback))
		})
	}
}

func TestLetterFolder(t *testing.T) {
	t.Run("abbreviation under root", func(t *testing.T) {
		c := Company{ID: "c1", Name: "Acme Global", Abbreviation: "ACME"}
		assert.Equal(t, "Letters/ACME", LetterFolder("Letters", c))
	})

	t.Run("falls back to company name", func(t *testing.T) {
		c := Company{ID: "c1", Name: "Acme Global"}
		assert.Equal(t, "Letters/Acme-Global", LetterFolder("Letters", c))
	})

	t.Run("no root", func(t *testing.T) {
		c := Company{ID: "c1", Abbreviation: "ACME"}
		assert.Equal(t, "ACME", LetterFolder("", c))
	})
}

func TestStoredFileName(t *testing.T) {
	tests := []struct {
		name     string
		ref      string
		original string
		want     string
	}{
		{"pdf attachment", "ACME/0042/26", "draft letter.pdf", "ACME-0042-26.pdf"},
		{"keeps docx extension", "ACME/0042/26", "final.docx", "ACME-0042-26.docx"},
		{"no extension", "ACME/0042/26", "scan", "ACME-0042-26"},
		{"empty reference", "", "a.pdf", "REF.pdf"},
		{"collapses dash runs", "A--B/0001/26", "x.txt", "A-B-0001-26.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StoredFileName(tt.ref, tt.original))
		})
	}
}

func TestAttachmentPrefix(t *testing.T) {
	assert.Equal(t, "acme-0042-26", AttachmentPrefix("ACME/0042/26"))
	assert.Equal(t, "ref", AttachmentPrefix(""))
}
