package region

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

func fold(s string) string {
	return norm.NFKC.String(strings.ToLower(s))
}

// SearchToken folds free text into the comparison form used for address
// matching: lowercase, NFKC, letters/numbers/hyphens only, no whitespace.
func SearchToken(s string) string {
	var b strings.Builder
	for _, r := range fold(s) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CodeToken folds a code or id: lowercase, NFKC, trimmed, whitespace runs
// collapsed to a single hyphen, then letters/numbers/hyphens only.
func CodeToken(s string) string {
	folded := strings.TrimSpace(fold(s))
	var b strings.Builder
	inSpace := false
	for _, r := range folded {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteRune('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HasMeaningfulInput reports whether s survives search-token folding.
func HasMeaningfulInput(s string) bool {
	return SearchToken(s) != ""
}

//Personal.AI order the ending
