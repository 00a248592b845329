package letters

import (
	"regexp"
	"strings"
)

var (
	invalidSegmentChars = regexp.MustCompile(`[<>:"/\\|?*\r\n]+`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
	dashRun             = regexp.MustCompile(`-+`)
	fileExtension       = regexp.MustCompile(`(\.[^.\s]{1,10})$`)
)

// SanitizeSegment makes a value safe to use as a single folder or file
// name segment: unsafe characters are stripped and whitespace runs become
// dashes. An empty result falls back to the given default.
func SanitizeSegment(value, fallback string) string {
	cleaned := invalidSegmentChars.ReplaceAllString(strings.TrimSpace(value), "")
	cleaned = whitespaceRun.ReplaceAllString(cleaned, "-")
	if cleaned == "" {
		return fallback
	}
	return cleaned
}

// LetterFolder returns the per-company attachment folder under the
// library root. The abbreviation names the folder, falling back to the
// company name when the abbreviation is empty.
func LetterFolder(root string, company Company) string {
	segment := company.Abbreviation
	if strings.TrimSpace(segment) == "" {
		segment = company.Name
	}
	companySegment := SanitizeSegment(segment, "Company")
	if root == "" {
		return companySegment
	}
	return SanitizeSegment(root, "Letters") + "/" + companySegment
}

// StoredFileName derives the storage name for an attachment: the
// reference number with slashes flattened to dashes, keeping the
// uploaded file's extension. "ACME/0042/26" + "draft.pdf" becomes
// "ACME-0042-26.pdf".
func StoredFileName(referenceNumber, originalName string) string {
	ext := ""
	if m := fileExtension.FindStringSubmatch(originalName); m != nil {
		ext = m[1]
	}
	ref := referenceNumber
	if ref == "" {
		ref = "REF"
	}
	safe := SanitizeSegment(strings.NewReplacer("/", "-", `\`, "-").Replace(ref), "REF")
	return dashRun.ReplaceAllString(safe+ext, "-")
}

// AttachmentPrefix is the lower-cased stored-name prefix shared by a
// letter's attachments, used to find them when listing the company folder.
func AttachmentPrefix(referenceNumber string) string {
	ref := referenceNumber
	if ref == "" {
		ref = "REF"
	}
	safe := SanitizeSegment(strings.NewReplacer("/", "-", `\`, "-").Replace(ref), "REF")
	return strings.ToLower(safe)
}
