// Package regions holds the official administrative hierarchy that free-text
// place names are resolved against.
package regions

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidID is returned for region ids that are not "{level}_{code}".
var ErrInvalidID = errors.New("invalid region id")

// Level is the administrative tier encoded in a region id prefix.
type Level string

const (
	LevelAdmin       Level = "admin" // only used by Unresolved
	LevelCountry     Level = "country"
	LevelState       Level = "state"
	LevelDistrict    Level = "district"
	LevelSubdistrict Level = "subdistrict"
	LevelULB         Level = "ulb"
	LevelZone        Level = "zone"
	LevelWard        Level = "ward"
	LevelVillage     Level = "village"
)

// parentLevels lists the tiers a node of each level may hang under. Country
// and state may also be roots.
var parentLevels = map[Level][]Level{
	LevelCountry:     nil,
	LevelState:       {LevelCountry},
	LevelDistrict:    {LevelState},
	LevelSubdistrict: {LevelDistrict},
	LevelULB:         {LevelDistrict},
	LevelZone:        {LevelULB},
	LevelWard:        {LevelZone, LevelULB},
	LevelVillage:     {LevelSubdistrict},
}

var levelOrder = []Level{
	LevelCountry, LevelState, LevelDistrict, LevelSubdistrict,
	LevelULB, LevelZone, LevelWard, LevelVillage,
}

// IsValid reports whether l is a hierarchy level. The admin sentinel is not.
func (l Level) IsValid() bool {
	_, ok := parentLevels[l]
	return ok
}

// CanRoot reports whether nodes of l may have no parent.
func (l Level) CanRoot() bool {
	return l == LevelCountry || l == LevelState
}

// ParentLevels returns the levels a node of l may be a child of.
func (l Level) ParentLevels() []Level {
	return parentLevels[l]
}

// ChildLevels returns the levels that may hang directly under l, in
// hierarchy order.
func (l Level) ChildLevels() []Level {
	var out []Level
	for _, c := range levelOrder {
		if slices.Contains(parentLevels[c], l) {
			out = append(out, c)
		}
	}
	return out
}

func (l Level) String() string {
	return string(l)
}

// ID identifies a region, e.g. district_546. The zero value is not valid;
// use Unresolved for "no match".
type ID struct {
	Level Level
	Code  string
}

// Unresolved is admin_0, the id given to anything that could not be matched.
var Unresolved = ID{Level: LevelAdmin, Code: "0"}

// ParseID parses "{level}_{code}". admin_0 parses to Unresolved.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == Unresolved.String() {
		return Unresolved, nil
	}

	i := strings.LastIndexByte(s, '_')
	if i <= 0 || i == len(s)-1 {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	id := ID{Level: Level(strings.ToLower(s[:i])), Code: s[i+1:]}
	if !id.Level.IsValid() {
		return ID{}, fmt.Errorf("%w: unknown level in %q", ErrInvalidID, s)
	}
	for _, r := range id.Code {
		if !isCodeRune(r) {
			return ID{}, fmt.Errorf("%w: bad code in %q", ErrInvalidID, s)
		}
	}
	return id, nil
}

// ParseOrUnresolved is ParseID for data cells: malformed or empty ids become
// Unresolved.
func ParseOrUnresolved(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		return Unresolved
	}
	return id
}

// MustParseID panics on malformed input. For literals only.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func isCodeRune(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

// IsUnresolved reports whether id is admin_0 or the zero ID.
func (id ID) IsUnresolved() bool {
	return id == Unresolved || id == ID{}
}

func (id ID) String() string {
	if id == (ID{}) {
		return Unresolved.String()
	}
	return string(id.Level) + "_" + id.Code
}

// MarshalText renders the id in its wire form.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses the wire form. An empty value is Unresolved.
func (id *ID) UnmarshalText(b []byte) error {
	if len(strings.TrimSpace(string(b))) == 0 {
		*id = Unresolved
		return nil
	}
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
