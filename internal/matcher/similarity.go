package matcher

import (
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/xrash/smetrics"
)

// Ratio returns the Levenshtein similarity of a and b on a 0-100 scale, with
// substitutions costing two edits.
func Ratio(a, b string) int {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	dist := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return int(math.Round(100 * float64(total-dist) / float64(total)))
}

// TokenSortRatio compares a and b ignoring case, punctuation and word order.
func TokenSortRatio(a, b string) int {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

func sortedTokens(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	slices.Sort(fields)
	return strings.Join(fields, " ")
}
