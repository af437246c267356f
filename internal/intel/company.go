package intel

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// CompanyNameFromDomain derives a display name from a bare domain: the first
// label with hyphens as spaces, title-cased. "acme-corp.com" becomes
// "Acme Corp". The result feeds news search and prompt text, so it favors
// readability over registry accuracy.
func CompanyNameFromDomain(domain string) string {
	label, _, _ := strings.Cut(domain, ".")
	return titleCaser.String(strings.ReplaceAll(label, "-", " "))
}
