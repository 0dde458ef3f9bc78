package handlers

import (
	"net/http"

	"github.com/dsih-artpark/epipipeline-v2/internal/matcher"
	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

// GeoHandler resolves place names.
type GeoHandler struct {
	Resolver *matcher.Resolver
	StateID  regions.ID
}

// ResolveRequest is the body of POST /api/geo/resolve. StateID defaults to
// the configured state; DistrictID, when set, skips district matching.
type ResolveRequest struct {
	StateID     regions.ID `json:"state_id"`
	DistrictID  regions.ID `json:"district_id"`
	District    any        `json:"district"`
	Subdistrict any        `json:"subdistrict"`
	Village     any        `json:"village"`
}

// Resolve handles POST /api/geo/resolve.
func (h *GeoHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if !decode(w, r, &req) {
		return
	}
	if req.StateID.IsUnresolved() {
		req.StateID = h.StateID
	}

	loc := h.Resolver.Resolve(matcher.Place{
		StateID:     req.StateID,
		DistrictID:  req.DistrictID,
		District:    req.District,
		Subdistrict: req.Subdistrict,
		Village:     req.Village,
	})
	writeJSON(w, http.StatusOK, loc)
}
