// Package handlers implements the JSON endpoints of the standardisation API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 10 << 20

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, ErrorResponse{Error: code, Description: description})
}

// decode reads a JSON body into v, answering 400 or 413 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request_too_large", err.Error())
			return false
		}
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// APIHandler serves the health check.
type APIHandler struct {
	Index *regions.Index
}

// HealthResponse reports liveness and the size of the loaded region table.
type HealthResponse struct {
	Status  string `json:"status"`
	Regions int    `json:"regions"`
}

// Health handles GET /health.
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Regions: h.Index.Len()})
}
