//go:build !libpostal

package addressparse

// Default returns the rule-based parser. Build with -tags libpostal to use
// libpostal instead.
func Default() Parser {
	return Heuristic{}
}
