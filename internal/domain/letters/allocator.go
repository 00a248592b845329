package letters

// NextSequence computes the next free sequence number for a company in
// a calendar year, given the full set of known letters. With no letters
// for that (company, year) pair it starts at the company's configured
// starting number; otherwise it is one past the highest allocated
// sequence, so gaps left by deletions are never reused.
//
// Returns 0 when the company or year is missing.
func NextSequence(existing []Letter, company Company, year int) int {
	if company.ID == "" || year <= 0 {
		return 0
	}
	max := 0
	found := false
	for _, l := range existing {
		if l.CompanyID != company.ID || l.Year != year {
			continue
		}
		found = true
		if l.SequenceNumber > max {
			max = l.SequenceNumber
		}
	}
	if !found {
		if company.StartingNumber > 0 {
			return company.StartingNumber
		}
		return 1
	}
	return max + 1
}

// PreviewReference renders the reference the next letter for the company
// and year would get. Advisory only; nothing is reserved.
func PreviewReference(existing []Letter, company Company, year int) string {
	seq := NextSequence(existing, company, year)
	if seq == 0 {
		return ""
	}
	return FormatReference(company.Abbreviation, seq, year)
}
