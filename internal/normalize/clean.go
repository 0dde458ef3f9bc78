package normalize

import (
	"regexp"
	"strings"

	"github.com/dsih-artpark/epipipeline-v2/internal/scalar"
)

var (
	reSeparators = regexp.MustCompile(`[.,\-()]`)
	reNonAlnum   = regexp.MustCompile(`[^a-zA-Z0-9\s]+`)
)

// CleanText standardises free-text string fields: punctuation is removed,
// whitespace collapsed and the result upper-cased. Values without a single
// ASCII letter are NA.
func CleanText(v any) (string, bool) {
	s, ok := scalar.Text(v)
	if !ok || !hasASCIILetter(s) {
		return "", false
	}
	s = reSeparators.ReplaceAllString(s, " ")
	s = reNonAlnum.ReplaceAllString(s, "")
	return strings.ToUpper(collapseSpaces(s)), true
}

func hasASCIILetter(s string) bool {
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}
