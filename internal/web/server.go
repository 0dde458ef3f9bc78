// Package web serves the standardisation engine over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dsih-artpark/epipipeline-v2/internal/config"
	"github.com/dsih-artpark/epipipeline-v2/internal/metrics"
	"github.com/dsih-artpark/epipipeline-v2/internal/standardise"
	"github.com/dsih-artpark/epipipeline-v2/internal/web/handlers"
	"github.com/dsih-artpark/epipipeline-v2/internal/web/middleware"
)

// MaxRecordsPerRequest bounds POST /api/records/standardise.
const MaxRecordsPerRequest = 10000

// Server represents the web server
type Server struct {
	settings   config.ServerSettings
	std        *standardise.Standardiser
	metrics    *metrics.Metrics
	gatherer   prometheus.Gatherer
	logger     *slog.Logger
	now        func() time.Time
	httpServer *http.Server
	router     *mux.Router
}

// NewServer wires the routes. m and g may be nil, in which case requests are
// not measured and /metrics is not served.
func NewServer(settings config.ServerSettings, std *standardise.Standardiser, m *metrics.Metrics, g prometheus.Gatherer, logger *slog.Logger) *Server {
	s := &Server{
		settings: settings,
		std:      std,
		metrics:  m,
		gatherer: g,
		logger:   logger,
		now:      time.Now,
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", settings.Host, settings.Port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	apiHandler := &handlers.APIHandler{Index: s.std.Index()}
	datesHandler := &handlers.DatesHandler{Standardiser: s.std, Now: s.clock}
	geoHandler := &handlers.GeoHandler{Resolver: s.std.Resolver(), StateID: s.std.Options().StateID}
	recordsHandler := &handlers.RecordsHandler{Standardiser: s.std, MaxRecords: MaxRecordsPerRequest, Now: s.clock}
	regionsHandler := &handlers.RegionsHandler{Index: s.std.Index()}

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/dates/parse", datesHandler.Parse).Methods(http.MethodPost)
	api.HandleFunc("/dates/reconcile", datesHandler.Reconcile).Methods(http.MethodPost)
	api.HandleFunc("/geo/resolve", geoHandler.Resolve).Methods(http.MethodPost)
	api.HandleFunc("/records/standardise", recordsHandler.Standardise).Methods(http.MethodPost)
	api.HandleFunc("/regions/{id}/children", regionsHandler.Children).Methods(http.MethodGet)

	s.router.HandleFunc("/health", apiHandler.Health).Methods(http.MethodGet)
	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	var observe middleware.ObserveFunc
	if s.metrics != nil {
		observe = s.metrics.ObserveRequest
	}
	s.router.Use(middleware.RequestLogging(s.logger, observe))
	api.Use(middleware.APIKey(s.settings.APIKey, s.logger))
}

// SetClock replaces the clock that dates requests when the ceiling floats.
func (s *Server) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Server) clock() time.Time {
	return s.now()
}

// Handler returns the root handler, CORS included.
func (s *Server) Handler() http.Handler {
	return middleware.CORS(s.settings.AllowedOrigin)(s.router)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
