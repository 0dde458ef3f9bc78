// Package matcher resolves free-text administrative unit names to region ids,
// searching only the children of an already resolved parent.
package matcher

import (
	"encoding/json"

	"github.com/dsih-artpark/epipipeline-v2/internal/normalize"
	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

// Result is the outcome of one match. Name is the canonical region name on a
// match and the normalized input otherwise; HasName is false only when the
// input was NA.
type Result struct {
	Name    string
	HasName bool
	ID      regions.ID
	Score   int
}

// Matched reports whether the name resolved to a region.
func (r Result) Matched() bool {
	return !r.ID.IsUnresolved()
}

// MarshalJSON renders a missing name as null.
func (r Result) MarshalJSON() ([]byte, error) {
	var name *string
	if r.HasName {
		name = &r.Name
	}
	return json.Marshal(struct {
		Name  *string    `json:"name"`
		ID    regions.ID `json:"id"`
		Score int        `json:"score"`
	}{name, r.ID, r.Score})
}

// ScopedMatcher matches names against the children of a parent region. It
// holds no mutable state.
type ScopedMatcher struct {
	index *regions.Index
	names *normalize.NameNormalizer
}

// NewScopedMatcher returns a matcher over index.
func NewScopedMatcher(index *regions.Index, names *normalize.NameNormalizer) *ScopedMatcher {
	return &ScopedMatcher{index: index, names: names}
}

// Match resolves raw under parent, optionally only among children of the
// given levels. The best candidate scoring at least threshold wins; on ties
// the first in table order is kept. An unresolved parent is never searched.
func (m *ScopedMatcher) Match(parent regions.ID, raw any, threshold int, levels ...regions.Level) Result {
	return m.match(parent, raw, threshold, levels, m.index.Children)
}

// MatchDescendants is Match over every node of the given levels below
// parent, including those under intermediate tiers such as zones.
func (m *ScopedMatcher) MatchDescendants(parent regions.ID, raw any, threshold int, levels ...regions.Level) Result {
	return m.match(parent, raw, threshold, levels, m.index.Descendants)
}

func (m *ScopedMatcher) match(parent regions.ID, raw any, threshold int, levels []regions.Level,
	candidates func(regions.ID, ...regions.Level) []regions.Node) Result {
	name, ok := m.names.Normalize(raw, aliasLevel(parent, levels))
	if !ok {
		return Result{ID: regions.Unresolved}
	}
	res := Result{Name: name, HasName: true, ID: regions.Unresolved}
	if parent.IsUnresolved() {
		return res
	}

	best := -1
	var bestNode regions.Node
	for _, n := range candidates(parent, levels...) {
		if score := TokenSortRatio(name, n.Name); score > best {
			best, bestNode = score, n
		}
	}
	if best < 0 || best < threshold {
		if best > 0 {
			res.Score = best
		}
		return res
	}
	return Result{Name: bestNode.Name, HasName: true, ID: bestNode.ID, Score: best}
}

// aliasLevel picks the level whose aliases apply to the name being matched.
func aliasLevel(parent regions.ID, levels []regions.Level) regions.Level {
	if len(levels) > 0 {
		return levels[0]
	}
	if children := parent.Level.ChildLevels(); len(children) > 0 {
		return children[0]
	}
	return parent.Level
}
