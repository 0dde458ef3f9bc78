package demographics

import (
	"regexp"
	"strings"

	"github.com/dsih-artpark/epipipeline-v2/internal/scalar"
)

var (
	reIPD     = regexp.MustCompile(`(?i)IPD?`)
	reOPD     = regexp.MustCompile(`(?i)OPD?`)
	rePrivate = regexp.MustCompile(`(?i)private|pvt`)
	rePublic  = regexp.MustCompile(`(?i)public|pub|govt|government`)
)

// OpdIpd returns "IPD" or "OPD".
func OpdIpd(v any) (string, bool) {
	s, ok := scalar.Text(v)
	if !ok {
		return "", false
	}
	switch {
	case reIPD.MatchString(s):
		return "IPD", true
	case reOPD.MatchString(s):
		return "OPD", true
	}
	return "", false
}

// PublicPrivate returns "PRIVATE" or "PUBLIC" for the facility type.
func PublicPrivate(v any) (string, bool) {
	s, ok := scalar.Text(v)
	if !ok {
		return "", false
	}
	switch {
	case rePrivate.MatchString(s):
		return "PRIVATE", true
	case rePublic.MatchString(s):
		return "PUBLIC", true
	}
	return "", false
}

// ActivePassive returns "ACTIVE" or "PASSIVE" for the surveillance type,
// read from the leading letter ("A", "Act", "Active", "P", "Pas", ...).
func ActivePassive(v any) (string, bool) {
	switch leadingLetter(v) {
	case 'A':
		return "ACTIVE", true
	case 'P':
		return "PASSIVE", true
	}
	return "", false
}

// RuralUrban returns "RURAL" or "URBAN", read from the leading letter.
func RuralUrban(v any) (string, bool) {
	switch leadingLetter(v) {
	case 'R':
		return "RURAL", true
	case 'U':
		return "URBAN", true
	}
	return "", false
}

func leadingLetter(v any) byte {
	s, ok := scalar.Text(v)
	if !ok {
		return 0
	}
	s = strings.ToUpper(strings.TrimLeft(s, " ([-."))
	if s == "" {
		return 0
	}
	return s[0]
}
