package letters

import "time"

// CreateCompanyInput carries the fields for a new company.
type CreateCompanyInput struct {
	Name           string
	Abbreviation   string
	StartingNumber int
	Color          string
}

// UpdateCompanyInput is a partial company update; nil fields are left
// untouched.
type UpdateCompanyInput struct {
	Name           *string
	Abbreviation   *string
	StartingNumber *int
	Color          *string
}

// AttachmentUpload is one file submitted with a letter.
type AttachmentUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// CreateLetterInput carries the fields for a new letter. A zero
// LetterDate means today. A zero Year derives the numbering year from
// the letter date; a non-zero Year numbers the letter into that year's
// series regardless of the date.
type CreateLetterInput struct {
	CompanyID        string
	LetterDate       time.Time
	Year             int
	RecipientCompany string
	Subject          string
	PreparedBy       string
	Notes            string
	Attachments      []AttachmentUpload
}

// UpdateLetterInput is a partial letter update; nil fields are left
// untouched. The reference number, sequence, year and company binding
// are immutable and cannot appear here. Removals are processed before
// additions.
type UpdateLetterInput struct {
	LetterDate        *time.Time
	RecipientCompany  *string
	Subject           *string
	PreparedBy        *string
	Notes             *string
	RemoveAttachments []string
	AddAttachments    []AttachmentUpload
}

// AttachmentFailure reports one attachment operation that failed while
// the rest of a create or update went through.
type AttachmentFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// CreateAccessInput carries the fields for a new access entry.
type CreateAccessInput struct {
	UserPrincipalName string
	Role              string
	CompanyIDs        []string
}

// UpdateAccessInput is a partial access entry update; nil fields are
// left untouched.
type UpdateAccessInput struct {
	Role       *string
	CompanyIDs *[]string
}
