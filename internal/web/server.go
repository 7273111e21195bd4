// Package web provides the HTTP API for the galamsay analysis service.
// It translates pipeline and store results into JSON responses; the core
// packages never produce protocol-shaped output themselves.
package web

import (
	"context"
	"net/http"

	"github.com/Jaytech9/galamsay-analysis/internal/analysis"
	"github.com/Jaytech9/galamsay-analysis/internal/config"
	"github.com/Jaytech9/galamsay-analysis/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Store is the persistence surface the web layer consumes.
// Implemented by *store.Store.
type Store interface {
	Save(ctx context.Context, batch *analysis.Batch) (string, error)
	GetLatest(ctx context.Context) (*analysis.Batch, error)
	GetByID(ctx context.Context, batchID string) (*analysis.Batch, error)
	ListLogs(ctx context.Context) ([]store.BatchLog, error)
	SitesByRegion(ctx context.Context, region string) ([]store.Site, error)
	AllSites(ctx context.Context, batchID string) ([]store.Site, error)
	InvalidRecords(ctx context.Context, batchID string) ([]store.InvalidRow, error)
	Stats(ctx context.Context) (store.Stats, error)
}

// Server is the HTTP server for the analysis API.
type Server struct {
	store    Store
	pipeline *analysis.Pipeline
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance.
func NewServer(st Store, pipeline *analysis.Pipeline, cfg *config.Config) *Server {
	s := &Server{
		store:    st,
		pipeline: pipeline,
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	// Built here rather than in Start so Shutdown can be called from
	// another goroutine at any point after construction.
	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Analysis runs and history
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/analysis/latest", s.handleLatestAnalysis)
		r.Get("/analysis/logs", s.handleAnalysisLogs)
		r.Get("/analysis/{batchID}", s.handleAnalysisByID)

		// Stored site records
		r.Get("/sites", s.handleSites)
		r.Get("/sites/region/{region}", s.handleSitesByRegion)
		r.Get("/invalid-records", s.handleInvalidRecords)

		// Statistics
		r.Get("/stats", s.handleStats)
		r.Get("/stats/total", s.handleStatsTotal)
		r.Get("/stats/highest-region", s.handleStatsHighestRegion)
		r.Get("/stats/cities-above-threshold", s.handleStatsCitiesAboveThreshold)
		r.Get("/stats/average-per-region", s.handleStatsAveragePerRegion)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for requests. Blocks until the server stops.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server. Safe to call whether or not Start
// has been reached.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
