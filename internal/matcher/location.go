package matcher

import (
	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

// Place is the raw location of one record. DistrictID, when already known,
// skips matching of the district name.
type Place struct {
	StateID     regions.ID
	DistrictID  regions.ID
	District    any
	Subdistrict any // subdistrict or ULB
	Village     any // village or ward
}

// Location is a Place resolved against the hierarchy.
type Location struct {
	District    Result         `json:"district"`
	Subdistrict Result         `json:"subdistrict"`
	Village     Result         `json:"village"`
	Branch      regions.Branch `json:"hierarchy"`
	Coarseness  regions.Level  `json:"coarseness"`
}

// Resolver walks a Place down the hierarchy one level at a time. A level that
// fails to resolve leaves every level below it unresolved.
type Resolver struct {
	matcher    *ScopedMatcher
	index      *regions.Index
	thresholds Thresholds
}

// NewResolver returns a Resolver. Thresholds are validated here so that a bad
// configuration fails before any record is processed.
func NewResolver(m *ScopedMatcher, t Thresholds) (*Resolver, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Resolver{matcher: m, index: m.index, thresholds: t}, nil
}

// Resolve resolves district, subdistrict or ULB, then village or ward.
func (r *Resolver) Resolve(p Place) Location {
	var loc Location

	loc.District = r.district(p)
	loc.Subdistrict = r.subdistrict(loc.District.ID, p.Subdistrict)
	loc.Village = r.village(loc.Subdistrict.ID, p.Village)

	loc.Branch = regions.ClassifyBranch(loc.Subdistrict.ID)
	loc.Coarseness = regions.Coarseness(regions.Resolved{
		Village:     loc.Village.ID,
		Subdistrict: loc.Subdistrict.ID,
		District:    loc.District.ID,
		State:       p.StateID,
		Country:     r.parentOf(p.StateID),
	})
	return loc
}

func (r *Resolver) district(p Place) Result {
	if !p.DistrictID.IsUnresolved() {
		if n, ok := r.index.Node(p.DistrictID); ok {
			return Result{Name: n.Name, HasName: true, ID: n.ID, Score: 100}
		}
	}
	return r.matcher.Match(p.StateID, p.District, r.thresholds.District, regions.LevelDistrict)
}

// subdistrict searches revenue subdistricts and ULBs together, then applies
// the cut-off of whichever level won.
func (r *Resolver) subdistrict(district regions.ID, raw any) Result {
	res := r.matcher.Match(district, raw, 0, regions.LevelSubdistrict, regions.LevelULB)
	if res.Matched() && res.Score < r.thresholds.For(res.ID.Level) {
		name, _ := r.matcher.names.Normalize(raw, res.ID.Level)
		return Result{Name: name, HasName: true, ID: regions.Unresolved, Score: res.Score}
	}
	return res
}

// village searches the wards of a ULB, through its zones when it has any,
// or the villages of a subdistrict.
func (r *Resolver) village(parent regions.ID, raw any) Result {
	switch parent.Level {
	case regions.LevelULB:
		return r.matcher.MatchDescendants(parent, raw, r.thresholds.Ward, regions.LevelWard)
	case regions.LevelSubdistrict:
		return r.matcher.Match(parent, raw, r.thresholds.Village, regions.LevelVillage)
	}
	return r.matcher.Match(regions.Unresolved, raw, r.thresholds.Village)
}

func (r *Resolver) parentOf(id regions.ID) regions.ID {
	if n, ok := r.index.Node(id); ok {
		return n.Parent
	}
	return regions.Unresolved
}
