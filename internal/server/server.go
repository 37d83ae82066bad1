package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/me/sheetsync/internal/config"
	"github.com/me/sheetsync/internal/scheduler"
	"github.com/me/sheetsync/pkg/model"
)

const (
	// Name is reported by the root endpoint and the MCP implementation.
	Name = "Google Sheets to DB Sync API"
	// Version is the API version.
	Version = "1.0.0"
)

// OneShot runs a single fetch-then-write cycle outside the scheduler.
type OneShot interface {
	RunOnce(ctx context.Context, spec model.SyncJobSpec) (int, error)
}

// Server is the sheetsync REST API server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time

	autoSync scheduler.AutoSync
	fetcher  scheduler.Fetcher
	oneShot  OneShot
	supports func(dbType string) bool // optional; nil accepts any db_type

	limiter  *ipRateLimiter
	registry *prometheus.Registry // optional; enables /metrics
	http     *httpMetrics
	mcp      http.Handler
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithDBTypes rejects requests whose db_type is not supported.
func WithDBTypes(supports func(dbType string) bool) Option {
	return func(s *Server) {
		s.supports = supports
	}
}

// WithRegistry exposes reg on /metrics and records HTTP metrics into it.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, autoSync scheduler.AutoSync, fetcher scheduler.Fetcher, oneShot OneShot, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		autoSync:  autoSync,
		fetcher:   fetcher,
		oneShot:   oneShot,
		limiter:   newIPRateLimiter(cfg.RateLimitPerMinute),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry != nil {
		s.http = newHTTPMetrics(s.registry)
	}
	s.mcp = newMCPHandler(s)

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(corsMiddleware(s.config.AllowedOrigins))
	if s.http != nil {
		r.Use(s.http.middleware)
	}

	// Public
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	// API routes (JSON), all behind X-API-Key
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(s.config.APIKey, s.logger))

		r.Get("/sync-status", s.handleSyncStatus)
		r.Get("/sync-history", s.handleSyncHistory)
		r.Post("/stop-auto-sync", s.handleStopAutoSync)

		// Endpoints that reach Google or a database are rate limited per client.
		r.Group(func(r chi.Router) {
			r.Use(rateLimitMiddleware(s.limiter))
			r.Post("/connect-gsheets", s.handleConnect)
			r.Post("/sync-db", s.handleSyncDB)
			r.Post("/start-auto-sync", s.handleStartAutoSync)
		})
	})

	// MCP control surface (streamable HTTP)
	r.With(apiKeyMiddleware(s.config.APIKey, s.logger)).Handle("/mcp", s.mcp)
}
