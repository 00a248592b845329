package letters

import "time"

// Letter record field names as persisted in the record store.
const (
	FieldLetterTitle            = "Title"
	FieldLetterReferenceNumber  = "ReferenceNumber"
	FieldLetterCompanyID        = "CompanyItemId"
	FieldLetterCompanyName      = "CompanyName"
	FieldLetterCompanyAbbr      = "CompanyAbbreviation"
	FieldLetterSequenceNumber   = "SequenceNumber"
	FieldLetterYear             = "Year"
	FieldLetterDate             = "LetterDate"
	FieldLetterRecipientCompany = "RecipientCompany"
	FieldLetterSubject          = "Subject"
	FieldLetterPreparedBy       = "PreparedBy"
	FieldLetterNotes            = "Notes"
)

// Attachment is a file stored alongside a letter in the blob store.
type Attachment struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	ViewURL string `json:"view_url,omitempty"`
}

// Letter is a numbered outgoing letter. ReferenceNumber, SequenceNumber,
// Year and the company binding are immutable once assigned.
type Letter struct {
	ID                  string       `json:"id"`
	ReferenceNumber     string       `json:"reference_number"`
	CompanyID           string       `json:"company_id"`
	CompanyName         string       `json:"company_name"`
	CompanyAbbreviation string       `json:"company_abbreviation"`
	SequenceNumber      int          `json:"sequence_number"`
	Year                int          `json:"year"`
	LetterDate          time.Time    `json:"letter_date"`
	RecipientCompany    string       `json:"recipient_company"`
	Subject             string       `json:"subject"`
	PreparedBy          string       `json:"prepared_by"`
	Notes               string       `json:"notes"`
	Attachments         []Attachment `json:"attachments,omitempty"`
	AttachmentsLoaded   bool         `json:"-"`
	CreatedAt           time.Time    `json:"created_at"`
}

// LetterFromRecord decodes a letter from a raw record. Sequence and year
// fall back to values parsed out of the reference number when the
// dedicated columns are empty, which tolerates rows written before those
// columns existed. now anchors the century for the two-digit year.
func LetterFromRecord(rec Record, now time.Time) Letter {
	l := Letter{
		ID:                  rec.ID,
		ReferenceNumber:     stringField(rec.Fields, FieldLetterReferenceNumber),
		CompanyID:           stringField(rec.Fields, FieldLetterCompanyID),
		CompanyName:         stringField(rec.Fields, FieldLetterCompanyName),
		CompanyAbbreviation: stringField(rec.Fields, FieldLetterCompanyAbbr),
		SequenceNumber:      intField(rec.Fields, FieldLetterSequenceNumber),
		Year:                intField(rec.Fields, FieldLetterYear),
		LetterDate:          timeField(rec.Fields, FieldLetterDate),
		RecipientCompany:    stringField(rec.Fields, FieldLetterRecipientCompany),
		Subject:             stringField(rec.Fields, FieldLetterSubject),
		PreparedBy:          stringField(rec.Fields, FieldLetterPreparedBy),
		Notes:               stringField(rec.Fields, FieldLetterNotes),
		CreatedAt:           rec.CreatedAt,
	}
	if l.SequenceNumber == 0 {
		l.SequenceNumber = ParseSequence(l.ReferenceNumber)
	}
	if l.Year == 0 {
		l.Year = ParseYear(l.ReferenceNumber, now)
	}
	if l.Subject == "" {
		l.Subject = stringField(rec.Fields, FieldLetterTitle)
	}
	return l
}

// Fields encodes the letter into record store fields. The Title column
// carries the subject, falling back to the reference number so every
// row has a display title.
func (l Letter) Fields() map[string]any {
	title := l.Subject
	if title == "" {
		title = l.ReferenceNumber
	}
	return map[string]any{
		FieldLetterTitle:            title,
		FieldLetterReferenceNumber:  l.ReferenceNumber,
		FieldLetterCompanyID:        l.CompanyID,
		FieldLetterCompanyName:      l.CompanyName,
		FieldLetterCompanyAbbr:      l.CompanyAbbreviation,
		FieldLetterSequenceNumber:   l.SequenceNumber,
		FieldLetterYear:             l.Year,
		FieldLetterDate:             l.LetterDate.Format(time.RFC3339),
		FieldLetterRecipientCompany: l.RecipientCompany,
		FieldLetterSubject:          l.Subject,
		FieldLetterPreparedBy:       l.PreparedBy,
		FieldLetterNotes:            l.Notes,
	}
}

// LetterSchema describes the letters collection for provisioning.
func LetterSchema(name string) CollectionSchema {
	return CollectionSchema{
		Name:        name,
		Description: "Registered letters with allocated reference numbers",
		Columns: []ColumnDef{
			{Name: FieldLetterReferenceNumber, Type: ColumnText},
			{Name: FieldLetterCompanyID, Type: ColumnText},
			{Name: FieldLetterCompanyName, Type: ColumnText},
			{Name: FieldLetterCompanyAbbr, Type: ColumnText},
			{Name: FieldLetterSequenceNumber, Type: ColumnNumber},
			{Name: FieldLetterYear, Type: ColumnNumber},
			{Name: FieldLetterDate, Type: ColumnDateTime},
			{Name: FieldLetterRecipientCompany, Type: ColumnText},
			{Name: FieldLetterSubject, Type: ColumnText},
			{Name: FieldLetterPreparedBy, Type: ColumnText},
			{Name: FieldLetterNotes, Type: ColumnNote},
		},
	}
}
