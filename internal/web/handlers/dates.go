package handlers

import (
	"net/http"
	"time"

	"github.com/dsih-artpark/epipipeline-v2/internal/dates"
	"github.com/dsih-artpark/epipipeline-v2/internal/standardise"
)

// DatesHandler parses and reconciles event dates with the date settings of
// Standardiser. Now is as for RecordsHandler.
type DatesHandler struct {
	Standardiser *standardise.Standardiser
	Now          func() time.Time
}

// ParseRequest is the body of POST /api/dates/parse. When TargetYear is set
// the parsed dates are also moved into that year.
type ParseRequest struct {
	Values     []any `json:"values"`
	TargetYear int   `json:"target_year,omitempty"`
	LimitYear  bool  `json:"limit_year,omitempty"`
}

// ParsedDate pairs an input with its parsed date, null when unparseable.
type ParsedDate struct {
	Input any        `json:"input"`
	Date  dates.Date `json:"date"`
}

// Parse handles POST /api/dates/parse.
func (h *DatesHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !decode(w, r, &req) {
		return
	}

	var yc *dates.YearCorrector
	if req.TargetYear != 0 {
		var err error
		if yc, err = dates.NewYearCorrector(req.TargetYear, req.LimitYear); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
	}

	out := make([]ParsedDate, len(req.Values))
	for i, v := range req.Values {
		d := dates.Parse(v)
		if yc != nil {
			d = yc.Correct(d)
		}
		out[i] = ParsedDate{Input: v, Date: d}
	}
	writeJSON(w, http.StatusOK, map[string]any{"dates": out})
}

// ReconcileRequest is the body of POST /api/dates/reconcile. Each value may
// be anything the date parser accepts.
type ReconcileRequest struct {
	Symptom any `json:"symptom"`
	Sample  any `json:"sample"`
	Result  any `json:"result"`
}

// ReconcileResponse holds the repaired dates and the repairs made. Dates
// outside the admissible window are null.
type ReconcileResponse struct {
	Symptom dates.Date   `json:"symptom"`
	Sample  dates.Date   `json:"sample"`
	Result  dates.Date   `json:"result"`
	Steps   []dates.Step `json:"steps"`
}

// Reconcile handles POST /api/dates/reconcile.
func (h *DatesHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if !decode(w, r, &req) {
		return
	}

	std, ok := standardiserAt(w, h.Standardiser, h.Now)
	if !ok {
		return
	}
	rc := std.Reconciler()
	c := rc.ReconcileChainExplain(dates.Parse(req.Symptom), dates.Parse(req.Sample), dates.Parse(req.Result))
	b := rc.Bounds()
	resp := ReconcileResponse{
		Symptom: b.Check(c.Symptom),
		Sample:  b.Check(c.Sample),
		Result:  b.Check(c.Result),
		Steps:   c.Steps,
	}
	if resp.Steps == nil {
		resp.Steps = []dates.Step{}
	}
	writeJSON(w, http.StatusOK, resp)
}
