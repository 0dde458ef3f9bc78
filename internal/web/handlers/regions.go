package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

// RegionsHandler browses the region hierarchy.
type RegionsHandler struct {
	Index *regions.Index
}

// RegionJSON is one region in a listing.
type RegionJSON struct {
	ID     regions.ID `json:"id"`
	Name   string     `json:"name"`
	Parent regions.ID `json:"parent"`
}

// Children handles GET /api/regions/{id}/children. Repeated ?level= query
// parameters restrict the listing to those levels.
func (h *RegionsHandler) Children(w http.ResponseWriter, r *http.Request) {
	id, err := regions.ParseID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if _, ok := h.Index.Node(id); !ok {
		writeError(w, http.StatusNotFound, "not_found", "unknown region "+id.String())
		return
	}

	var levels []regions.Level
	for _, l := range r.URL.Query()["level"] {
		level := regions.Level(l)
		if !level.IsValid() {
			writeError(w, http.StatusBadRequest, "bad_request", "unknown level "+l)
			return
		}
		levels = append(levels, level)
	}

	children := h.Index.Children(id, levels...)
	out := make([]RegionJSON, len(children))
	for i, n := range children {
		out[i] = RegionJSON{ID: n.ID, Name: n.Name, Parent: n.Parent}
	}
	writeJSON(w, http.StatusOK, map[string]any{"parent": id, "children": out})
}
