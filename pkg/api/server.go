// Package api is the dnastore REST API
//
// Routes live under /api/v1 and are guarded by the X-API-Key header when
// a key is configured. /metrics is left open for scraping.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ssargent/dnastore/pkg/metrics"
)

// Server holds the API server state
type Server struct {
	config  ServerConfig
	codec   Codec
	ledger  RunLedger
	metrics *metrics.Metrics
	metricz http.Handler
	logger  *slog.Logger
}

// NewServer creates a new API server
func NewServer(config ServerConfig, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metricz := promhttp.Handler()
	if deps.Gatherer != nil {
		metricz = promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})
	}
	return &Server{
		config:  config,
		codec:   deps.Codec,
		ledger:  deps.Ledger,
		metrics: deps.Metrics,
		metricz: metricz,
		logger:  logger.With("component", "api"),
	}
}

// Handler returns the router with all routes configured
func (s *Server) Handler() http.Handler {
	m := s.metrics
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", s.metricz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(s.config.APIKey))

		r.Get("/health", m.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		// Codec
		r.Post("/encode", m.InstrumentHandler("POST", "/api/v1/encode", s.handleEncode))
		r.Post("/decode", m.InstrumentHandler("POST", "/api/v1/decode", s.handleDecode))
		r.Post("/decode/{chunk}", m.InstrumentHandler("POST", "/api/v1/decode/{chunk}", s.handleDecodeChunk))
		r.Post("/inspect", m.InstrumentHandler("POST", "/api/v1/inspect", s.handleInspect))

		// Run ledger
		r.Get("/runs", m.InstrumentHandler("GET", "/api/v1/runs", s.handleListRuns))
		r.Get("/runs/{id}", m.InstrumentHandler("GET", "/api/v1/runs/{id}", s.handleGetRun))
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Bind, s.config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting REST API server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down REST API server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
