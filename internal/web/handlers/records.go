package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dsih-artpark/epipipeline-v2/internal/linelist"
	"github.com/dsih-artpark/epipipeline-v2/internal/standardise"
)

// RecordsHandler standardises batches of raw rows. Now supplies the date
// each request is standardised at; nil means time.Now.
type RecordsHandler struct {
	Standardiser *standardise.Standardiser
	MaxRecords   int
	Now          func() time.Time
}

// StandardiseRequest is the body of POST /api/records/standardise. Rows are
// keyed by standard column name.
type StandardiseRequest struct {
	Records []linelist.Row `json:"records"`
}

// StandardiseResponse returns the records in request order.
type StandardiseResponse struct {
	Records []linelist.Row `json:"records"`
	Summary SummaryJSON    `json:"summary"`
}

// SummaryJSON is the wire form of standardise.Summary.
type SummaryJSON struct {
	Total               int            `json:"total"`
	WithPrimaryDate     int            `json:"with_primary_date"`
	DistrictResolved    int            `json:"district_resolved"`
	SubdistrictResolved int            `json:"subdistrict_resolved"`
	VillageResolved     int            `json:"village_resolved"`
	AddressFallbacks    int            `json:"address_fallbacks"`
	DuplicatesDropped   int            `json:"duplicates_dropped"`
	SparseDropped       int            `json:"sparse_dropped"`
	ByCoarseness        map[string]int `json:"by_coarseness"`
	ProcessingTimeMS    int64          `json:"processing_time_ms"`
}

// Standardise handles POST /api/records/standardise.
func (h *RecordsHandler) Standardise(w http.ResponseWriter, r *http.Request) {
	var req StandardiseRequest
	if !decode(w, r, &req) {
		return
	}
	if h.MaxRecords > 0 && len(req.Records) > h.MaxRecords {
		writeError(w, http.StatusRequestEntityTooLarge, "request_too_large",
			fmt.Sprintf("at most %d records per request, got %d", h.MaxRecords, len(req.Records)))
		return
	}

	std, ok := standardiserAt(w, h.Standardiser, h.Now)
	if !ok {
		return
	}

	start := time.Now()
	records, err := std.Run(r.Context(), req.Records)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "cancelled", err.Error())
		return
	}
	records, removed := std.Cleanup(records)
	sum := standardise.Summarise(records)
	sum.Removed = removed
	sum.ProcessingTime = time.Since(start)

	resp := StandardiseResponse{
		Records: make([]linelist.Row, len(records)),
		Summary: summaryJSON(sum),
	}
	for i, rec := range records {
		resp.Records[i] = rec.Row()
	}
	writeJSON(w, http.StatusOK, resp)
}

func summaryJSON(s standardise.Summary) SummaryJSON {
	out := SummaryJSON{
		Total:               s.Total,
		WithPrimaryDate:     s.WithPrimaryDate,
		DistrictResolved:    s.DistrictResolved,
		SubdistrictResolved: s.SubdistrictResolved,
		VillageResolved:     s.VillageResolved,
		AddressFallbacks:    s.AddressFallbacks,
		DuplicatesDropped:   s.Removed.Duplicates,
		SparseDropped:       s.Removed.Sparse,
		ByCoarseness:        make(map[string]int, len(s.ByCoarseness)),
		ProcessingTimeMS:    s.ProcessingTime.Milliseconds(),
	}
	for level, n := range s.ByCoarseness {
		out.ByCoarseness[string(level)] = n
	}
	return out
}

// standardiserAt moves a floating date ceiling to the current date.
func standardiserAt(w http.ResponseWriter, std *standardise.Standardiser, now func() time.Time) (*standardise.Standardiser, bool) {
	if now == nil {
		now = time.Now
	}
	at, err := std.At(now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "invalid_bounds", err.Error())
		return nil, false
	}
	return at, true
}
