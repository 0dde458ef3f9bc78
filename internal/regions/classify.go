package regions

// Branch is the arm of the hierarchy a record's second-tier unit belongs to.
type Branch string

const (
	BranchULB        Branch = "ULB"
	BranchRevenue    Branch = "Revenue"
	BranchUnresolved Branch = "admin_0"
)

// ClassifyBranch reports whether id is an urban local body or a revenue
// subdistrict.
func ClassifyBranch(id ID) Branch {
	switch id.Level {
	case LevelULB:
		return BranchULB
	case LevelSubdistrict:
		return BranchRevenue
	}
	return BranchUnresolved
}

// Resolved holds the ids a record resolved to, finest tier first.
type Resolved struct {
	Village     ID // village or ward
	Subdistrict ID // subdistrict or ulb
	District    ID
	State       ID
	Country     ID
}

// Coarseness returns the level of the finest resolved id, or LevelAdmin when
// nothing resolved.
func Coarseness(r Resolved) Level {
	for _, id := range []ID{r.Village, r.Subdistrict, r.District, r.State, r.Country} {
		if !id.IsUnresolved() {
			return id.Level
		}
	}
	return LevelAdmin
}
