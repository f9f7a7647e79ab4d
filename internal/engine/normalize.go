package engine

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeName converts user input to the dataset's casing: "the NETHERLANDS" -> "The Netherlands".
// Punctuated names ("cote d'ivoire", "guinea-bissau") get whatever the word breaker gives them.
func NormalizeName(name string) string {
	// Casers keep state, so one per call.
	return cases.Title(language.Und).String(strings.ToLower(name))
}
