//go:build libpostal

package addressparse

import (
	postal "github.com/openvenues/gopostal/parser"
)

// localityLabels are the libpostal components that can carry a village or
// ward, most specific first.
var localityLabels = []string{"suburb", "city_district", "city", "island"}

// Libpostal parses addresses with libpostal, falling back to Heuristic when
// no locality component is found.
type Libpostal struct {
	fallback Heuristic
}

// Default returns the libpostal-backed parser.
func Default() Parser {
	return Libpostal{}
}

// Locality implements Parser.
func (p Libpostal) Locality(address string) (string, bool) {
	rest, _ := StripMobile(address)
	components := extractComponents(postal.ParseAddress(rest))
	for _, label := range localityLabels {
		if v := tidy(components[label]); v != "" {
			return v, true
		}
	}
	return p.fallback.Locality(address)
}

func extractComponents(components []postal.ParsedComponent) map[string]string {
	extracted := make(map[string]string, len(components))
	for _, comp := range components {
		if _, seen := extracted[comp.Label]; !seen {
			extracted[comp.Label] = comp.Value
		}
	}
	return extracted
}
