package letters

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Reference numbers follow the fixed wire format ABBR/SSSS/YY, e.g.
// "ACME/0042/26". The sequence is zero-padded to four digits, the year
// is carried as its last two digits.

var (
	refSequencePattern = regexp.MustCompile(`^[^/]+/(\d+)/\d{2}$`)
	refYearPattern     = regexp.MustCompile(`/(\d{2})$`)
)

// FormatReference renders a reference number from its parts. Any missing
// part yields the empty string rather than a partial reference.
func FormatReference(abbreviation string, sequence, year int) string {
	if abbreviation == "" || sequence <= 0 || year <= 0 {
		return ""
	}
	return fmt.Sprintf("%s/%04d/%02d", abbreviation, sequence, year%100)
}

// ParseSequence extracts the sequence number from a reference. Malformed
// references yield 0, never an error.
func ParseSequence(ref string) int {
	m := refSequencePattern.FindStringSubmatch(ref)
	if m == nil {
		return 0
	}
	seq, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return seq
}

// ParseYear extracts the four-digit year from a reference's trailing
// two-digit year. The century is taken from now; a result more than ten
// years in the future is pulled back a century, so "98" parsed in 2026
// resolves to 1998 while "30" resolves to 2030. Malformed references
// yield 0.
func ParseYear(ref string, now time.Time) int {
	m := refYearPattern.FindStringSubmatch(ref)
	if m == nil {
		return 0
	}
	twoDigit, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	century := now.Year() / 100 * 100
	year := century + twoDigit
	if year > now.Year()+10 {
		year -= 100
	}
	return year
}
