package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/dsih-artpark/epipipeline-v2/internal/logging"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
}

func TestAPIKey(t *testing.T) {
	h := APIKey("secret", logging.Discard())(okHandler())

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong", "X-API-Key", "nope", http.StatusUnauthorized},
		{"header", "X-API-Key", "secret", http.StatusAccepted},
		{"bearer", "Authorization", "Bearer secret", http.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAPIKeyDisabled(t *testing.T) {
	h := APIKey("", logging.Discard())(okHandler())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestCORS(t *testing.T) {
	h := CORS("")(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/geo/resolve", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestRequestLoggingUsesRouteTemplate(t *testing.T) {
	var gotRoute string
	var gotStatus int

	r := mux.NewRouter()
	r.Handle("/api/regions/{id}/children", okHandler())
	r.Use(RequestLogging(logging.Discard(), func(route, method string, status int, start time.Time) {
		gotRoute, gotStatus = route, status
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/regions/district_546/children", nil))
	assert.Equal(t, "/api/regions/{id}/children", gotRoute)
	assert.Equal(t, http.StatusAccepted, gotStatus)
}
