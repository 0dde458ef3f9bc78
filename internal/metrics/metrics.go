// Package metrics exposes Prometheus counters for standardisation runs and
// the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

// Metrics implements standardise.Observer.
type Metrics struct {
	DatesRepaired   *prometheus.CounterVec
	DatesNullified  *prometheus.CounterVec
	Locations       *prometheus.CounterVec
	RecordDuration  prometheus.Histogram
	RequestDuration *prometheus.HistogramVec
}

// New registers all metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DatesRepaired: f.NewCounterVec(prometheus.CounterOpts{
			Name: "epi_dates_repaired_total",
			Help: "Day/month transpositions repaired, by date pair and strategy",
		}, []string{"pair", "strategy"}),
		DatesNullified: f.NewCounterVec(prometheus.CounterOpts{
			Name: "epi_dates_nullified_total",
			Help: "Dates dropped, by field and reason",
		}, []string{"field", "reason"}),
		Locations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "epi_locations_total",
			Help: "Location names looked up, by level and outcome",
		}, []string{"level", "outcome"}),
		RecordDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "epi_record_duration_seconds",
			Help:    "Time to standardise one record",
			Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "epi_http_request_duration_seconds",
			Help:    "HTTP request latency, by route, method and status",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
		}, []string{"route", "method", "status"}),
	}
}

// DateRepaired counts one applied transposition.
func (m *Metrics) DateRepaired(_ string, pair, strategy string) {
	m.DatesRepaired.WithLabelValues(pair, strategy).Inc()
}

// DateNullified counts one dropped date.
func (m *Metrics) DateNullified(_ string, field, reason string) {
	m.DatesNullified.WithLabelValues(field, reason).Inc()
}

// LocationResolved counts one name lookup.
func (m *Metrics) LocationResolved(_ string, level regions.Level, resolved bool) {
	outcome := "unresolved"
	if resolved {
		outcome = "resolved"
	}
	m.Locations.WithLabelValues(string(level), outcome).Inc()
}

// RecordStandardised observes the time spent on one record.
func (m *Metrics) RecordStandardised(_ string, elapsed time.Duration) {
	m.RecordDuration.Observe(elapsed.Seconds())
}

// ObserveRequest records the duration of an HTTP request.
// Call with time.Now() at the start of the request.
func (m *Metrics) ObserveRequest(route, method string, status int, start time.Time) {
	m.RequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}
