// Package addressparse pulls the village or ward locality out of a free-text
// patient address, for records whose village/ward column is empty.
package addressparse

import (
	"regexp"
	"strings"
	"unicode"
)

// Parser extracts a locality from an address.
type Parser interface {
	Locality(address string) (string, bool)
}

var reMobile = regexp.MustCompile(`(?:\+?91[\s-]?)?[6-9]\d{9}`)

// StripMobile removes mobile numbers written into the address and returns
// the first one found.
func StripMobile(address string) (rest, mobile string) {
	mobile = reMobile.FindString(address)
	rest = strings.TrimSpace(reMobile.ReplaceAllString(address, " "))
	return rest, mobile
}

var (
	reVillageMarker = regexp.MustCompile(`(?i)\b(village|vill|vlg|grama|gram)\b\.?`)
	reWardMarker    = regexp.MustCompile(`(?i)\bward\s*(no\.?)?\s*\d+`)
	reHigherUnit    = regexp.MustCompile(`(?i)\b(tq|taluk|taluka|tal|dist|district|state|karnataka|india|post|po|pin)\b`)
	reHouseNumber   = regexp.MustCompile(`(?i)^\s*(h\.?\s*no|#|door\s*no|d\.?\s*no)`)
)

// Heuristic is the rule-based Parser. It looks for an explicit village or
// ward segment, then for the segment just before the taluk or district, then
// falls back to the first segment that reads like a place name.
type Heuristic struct{}

// Locality implements Parser.
func (Heuristic) Locality(address string) (string, bool) {
	address, _ = StripMobile(address)
	segments := splitSegments(address)
	if len(segments) == 0 {
		return "", false
	}

	for _, s := range segments {
		if m := reWardMarker.FindString(s); m != "" {
			return tidy(m), true
		}
	}
	for _, s := range segments {
		if reVillageMarker.MatchString(s) {
			if name := tidy(reVillageMarker.ReplaceAllString(s, " ")); name != "" {
				return name, true
			}
		}
	}
	for i, s := range segments {
		if i > 0 && reHigherUnit.MatchString(s) && isPlaceName(segments[i-1]) {
			return tidy(segments[i-1]), true
		}
	}
	for _, s := range segments {
		if isPlaceName(s) && !reHigherUnit.MatchString(s) {
			return tidy(s), true
		}
	}
	return "", false
}

func splitSegments(address string) []string {
	parts := strings.FieldsFunc(address, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '|'
	})
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isPlaceName reports whether a segment is letters only and not a house or
// street line.
func isPlaceName(s string) bool {
	if reHouseNumber.MatchString(s) {
		return false
	}
	letters := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 3
}

func tidy(s string) string {
	s = strings.Trim(s, " .-:")
	return strings.Join(strings.Fields(s), " ")
}
