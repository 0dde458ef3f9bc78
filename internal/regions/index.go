package regions

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidHierarchy is returned by NewIndex for a malformed region table.
var ErrInvalidHierarchy = errors.New("invalid region hierarchy")

// Node is one row of the region table. A root has the zero Parent.
type Node struct {
	ID     ID
	Name   string
	Parent ID
}

// Index is the region table with its parent to children adjacency. It is
// built once and never mutated, so it is safe to share between goroutines.
type Index struct {
	nodes    map[ID]Node
	children map[ID][]Node
	order    []ID
	position map[ID]int
}

// NewIndex validates nodes and builds the adjacency. Children keep the order
// in which they appear in nodes. All defects are reported together.
func NewIndex(nodes []Node) (*Index, error) {
	idx := &Index{
		nodes:    make(map[ID]Node, len(nodes)),
		children: make(map[ID][]Node),
		order:    make([]ID, 0, len(nodes)),
		position: make(map[ID]int, len(nodes)),
	}

	var errs []error
	for _, n := range nodes {
		if !n.ID.Level.IsValid() || n.ID.Code == "" {
			errs = append(errs, fmt.Errorf("node %q: unknown level", n.ID))
			continue
		}
		if _, dup := idx.nodes[n.ID]; dup {
			errs = append(errs, fmt.Errorf("node %s: duplicate id", n.ID))
			continue
		}
		idx.nodes[n.ID] = n
		idx.position[n.ID] = len(idx.order)
		idx.order = append(idx.order, n.ID)
	}

	for _, id := range idx.order {
		n := idx.nodes[id]
		if n.Parent.IsUnresolved() {
			if !n.ID.Level.CanRoot() {
				errs = append(errs, fmt.Errorf("node %s: missing parent", n.ID))
			}
			continue
		}
		if !slices.Contains(n.ID.Level.ParentLevels(), n.Parent.Level) {
			errs = append(errs, fmt.Errorf("node %s: parent %s is not one level up", n.ID, n.Parent))
			continue
		}
		if _, ok := idx.nodes[n.Parent]; !ok {
			errs = append(errs, fmt.Errorf("node %s: parent %s not found", n.ID, n.Parent))
			continue
		}
		idx.children[n.Parent] = append(idx.children[n.Parent], n)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHierarchy, errors.Join(errs...))
	}
	return idx, nil
}

// Node returns the node with the given id.
func (idx *Index) Node(id ID) (Node, bool) {
	n, ok := idx.nodes[id]
	return n, ok
}

// Children returns the direct children of parent, restricted to the given
// levels when any are passed. The returned slice must not be modified.
func (idx *Index) Children(parent ID, levels ...Level) []Node {
	all := idx.children[parent]
	if len(levels) == 0 {
		return all
	}
	out := make([]Node, 0, len(all))
	for _, n := range all {
		if slices.Contains(levels, n.ID.Level) {
			out = append(out, n)
		}
	}
	return out
}

// Descendants returns the nodes of the given levels below parent, reaching
// through intermediate tiers that may hold them, such as the zones between a
// ULB and its wards. The result is in table order.
func (idx *Index) Descendants(parent ID, levels ...Level) []Node {
	var out []Node
	var walk func(ID)
	walk = func(id ID) {
		for _, n := range idx.children[id] {
			switch {
			case slices.Contains(levels, n.ID.Level):
				out = append(out, n)
			case holdsAny(n.ID.Level, levels):
				walk(n.ID)
			}
		}
	}
	walk(parent)
	slices.SortFunc(out, func(a, b Node) int {
		return idx.position[a.ID] - idx.position[b.ID]
	})
	return out
}

// holdsAny reports whether a node of level l may have a child of one of
// levels.
func holdsAny(l Level, levels []Level) bool {
	for _, c := range l.ChildLevels() {
		if slices.Contains(levels, c) {
			return true
		}
	}
	return false
}

// Roots returns the nodes without a parent, in table order.
func (idx *Index) Roots() []Node {
	var out []Node
	for _, id := range idx.order {
		if n := idx.nodes[id]; n.Parent.IsUnresolved() {
			out = append(out, n)
		}
	}
	return out
}

// Len returns the number of nodes.
func (idx *Index) Len() int {
	return len(idx.order)
}
