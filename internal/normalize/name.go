package normalize

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
	"github.com/dsih-artpark/epipipeline-v2/internal/scalar"
)

// Alias rewrites a known misspelling or former name of an administrative
// unit. Patterns are case-insensitive RE2. An alias is skipped when Unless
// matches the name. Empty Levels means every level.
type Alias struct {
	Pattern     string          `yaml:"pattern" json:"pattern"`
	Replacement string          `yaml:"replacement" json:"replacement"`
	Unless      string          `yaml:"unless,omitempty" json:"unless,omitempty"`
	Levels      []regions.Level `yaml:"levels,omitempty" json:"levels,omitempty"`
}

// DefaultAliases are the Karnataka district renames.
var DefaultAliases = []Alias{
	{Pattern: `gulbarga`, Replacement: "Kalaburagi", Levels: []regions.Level{regions.LevelDistrict}},
	{Pattern: `bijapur`, Replacement: "Vijayapura", Levels: []regions.Level{regions.LevelDistrict}},
	{Pattern: `\bc[.\s]*h[.\s]*nagara*\b`, Replacement: "Chamarajanagara", Levels: []regions.Level{regions.LevelDistrict}},
	{Pattern: `\b(b[ae]ngal[ou]r[ue]|bbmp)(\s+urban)?\b`, Replacement: "Bengaluru Urban", Unless: `rural`, Levels: []regions.Level{regions.LevelDistrict}},
}

type aliasRule struct {
	re          *regexp.Regexp
	unless      *regexp.Regexp
	replacement string
	levels      []regions.Level
}

func (r aliasRule) appliesTo(level regions.Level) bool {
	return len(r.levels) == 0 || slices.Contains(r.levels, level)
}

// Suffix qualifiers: "Raichur (U)", "Raichur U" and the like.
var (
	reUrbanSuffix = regexp.MustCompile(`(?i)\s*\(\s*u\s*\)$|\s+u$`)
	reRuralSuffix = regexp.MustCompile(`(?i)\s*\(\s*r\s*\)$|\s+r$`)
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NameNormalizer canonicalises free-text administrative unit names before
// they are matched. It is safe for concurrent use.
type NameNormalizer struct {
	aliases []aliasRule
}

// NewNameNormalizer compiles aliases in order. Invalid patterns and unknown
// levels are configuration errors.
func NewNameNormalizer(aliases []Alias) (*NameNormalizer, error) {
	n := &NameNormalizer{aliases: make([]aliasRule, 0, len(aliases))}
	for i, a := range aliases {
		re, err := regexp.Compile("(?i)" + a.Pattern)
		if err != nil {
			return nil, fmt.Errorf("alias %d: %w", i, err)
		}
		rule := aliasRule{re: re, replacement: a.Replacement, levels: a.Levels}
		if a.Unless != "" {
			if rule.unless, err = regexp.Compile("(?i)" + a.Unless); err != nil {
				return nil, fmt.Errorf("alias %d: %w", i, err)
			}
		}
		for _, l := range a.Levels {
			if !l.IsValid() {
				return nil, fmt.Errorf("alias %d: unknown level %q", i, l)
			}
		}
		n.aliases = append(n.aliases, rule)
	}
	return n, nil
}

// DefaultNameNormalizer uses DefaultAliases.
func DefaultNameNormalizer() *NameNormalizer {
	n, err := NewNameNormalizer(DefaultAliases)
	if err != nil {
		panic(err)
	}
	return n
}

// Normalize returns the canonical form of a raw name at the given level.
// ok is false for NA values.
func (n *NameNormalizer) Normalize(raw any, level regions.Level) (string, bool) {
	s, ok := scalar.Text(raw)
	if !ok {
		return "", false
	}

	s, _, _ = transform.String(stripMarks, s)
	s = collapseSpaces(s)
	s = cases.Title(language.Und).String(s)

	s = reUrbanSuffix.ReplaceAllString(s, " Urban")
	s = reRuralSuffix.ReplaceAllString(s, " Rural")

	for _, a := range n.aliases {
		if !a.appliesTo(level) {
			continue
		}
		if a.unless != nil && a.unless.MatchString(s) {
			continue
		}
		s = a.re.ReplaceAllString(s, a.replacement)
	}

	s = collapseSpaces(s)
	if s == "" {
		return "", false
	}
	return s, true
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
