// Package server provides the HTTP server and routing for CaseLedger.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/config"
	"github.com/opencoaf/caseledger/internal/di"
	analyticshandlers "github.com/opencoaf/caseledger/internal/modules/analytics/handlers"
	caseshandlers "github.com/opencoaf/caseledger/internal/modules/cases/handlers"
	ledgerhandlers "github.com/opencoaf/caseledger/internal/modules/ledger/handlers"
	redflagshandlers "github.com/opencoaf/caseledger/internal/modules/redflags/handlers"
	reportshandlers "github.com/opencoaf/caseledger/internal/modules/reports/handlers"
	settingshandlers "github.com/opencoaf/caseledger/internal/modules/settings/handlers"
	uploadshandlers "github.com/opencoaf/caseledger/internal/modules/uploads/handlers"
	"github.com/opencoaf/caseledger/internal/scheduler"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container
	Port      int
	DevMode   bool
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	systemHandlers := NewSystemHandlers(
		cfg.Log,
		cfg.Config.DataDir,
		cfg.Container.CasesDB,
		cfg.Container.ConfigDB,
		cfg.Container.LedgerDB,
		cfg.Container.AnalysisDB,
		cfg.Container.CacheDB,
	)

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg.Config,
		container:      cfg.Container,
		systemHandlers: systemHandlers,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// SetCleanupJob registers the retention job for manual triggering via API
func (s *Server) SetCleanupJob(job scheduler.Job) {
	s.systemHandlers.SetCleanupJob(job)
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check (outside /api, for load balancers and process monitors)
	s.router.Get("/health", s.systemHandlers.HandleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// System monitoring and operations
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
			r.Post("/jobs/retention-cleanup", s.systemHandlers.HandleTriggerCleanup)
		})

		// Cases module
		casesHandler := caseshandlers.NewHandler(s.container.CaseRepo, s.log)
		casesHandler.RegisterRoutes(r)

		// Uploads module (ingestion pipeline)
		uploadsHandler := uploadshandlers.NewHandler(s.container.UploadService, s.log)
		uploadsHandler.RegisterRoutes(r)

		// Ledger module (normalized transaction listing)
		ledgerHandler := ledgerhandlers.NewHandler(s.container.LedgerRepo, s.log)
		ledgerHandler.RegisterRoutes(r)

		// Analytics module (case metrics)
		analyticsHandler := analyticshandlers.NewHandler(s.container.AnalyticsService, s.log)
		analyticsHandler.RegisterRoutes(r)

		// Red-flag analysis module
		redflagsHandler := redflagshandlers.NewHandler(s.container.RedFlagService, s.log)
		redflagsHandler.RegisterRoutes(r)

		// Reports module
		reportsHandler := reportshandlers.NewHandler(s.container.ReportService, s.log)
		reportsHandler.RegisterRoutes(r)

		// Settings module
		settingsHandler := settingshandlers.NewHandler(s.container.SettingsRepo, s.log)
		settingsHandler.RegisterRoutes(r)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router exposes the chi router (used by tests)
func (s *Server) Router() http.Handler {
	return s.router
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
