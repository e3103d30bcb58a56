// Package server provides the HTTP server and routing for pragmas.
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

	"github.com/aristath/pragmas/internal/auth"
	"github.com/aristath/pragmas/internal/config"
	"github.com/aristath/pragmas/internal/di"
	"github.com/aristath/pragmas/internal/domain"
	alertshandlers "github.com/aristath/pragmas/internal/modules/alerts/handlers"
	journalhandlers "github.com/aristath/pragmas/internal/modules/journal/handlers"
	portfoliohandlers "github.com/aristath/pragmas/internal/modules/portfolio/handlers"
	riskhandlers "github.com/aristath/pragmas/internal/modules/risk/handlers"
	tradeloghandlers "github.com/aristath/pragmas/internal/modules/tradelog/handlers"
)

// requestTimeout bounds every API request except the event stream
const requestTimeout = 60 * time.Second

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container // DI container with all services
}

// Server represents the HTTP server
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	cfg       *config.Config
	container *di.Container
	startedAt time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		container: cfg.Container,
		startedAt: time.Now(),
	}

	s.setupMiddleware(cfg.Config)
	s.setupRoutes()

	// No WriteTimeout: websocket connections outlive any fixed write deadline.
	// API handlers are bounded by the Timeout middleware instead.
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(cfg *config.Config) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	allowedOrigins := cfg.CORSOrigins
	switch {
	case len(allowedOrigins) > 0:
	case cfg.DevMode:
		allowedOrigins = []string{"*"}
	default:
		allowedOrigins = []string{"https://*", "http://*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Identity is resolved once here; handlers decide whether they need it
	s.router.Use(s.container.AuthMiddleware.Identify)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	systemHandlers := NewSystemHandlers(s.container.Databases(), s.startedAt, s.log)
	toolHandlers := NewToolHandlers(s.container.ToolExecutor, s.container.ExecutionLogRepo, s.log)
	eventsStream := NewEventsStreamHandler(s.container.EventBus, s.log)

	s.router.Route("/api", func(r chi.Router) {
		// The event stream is long-lived and sits outside the request timeout
		r.Get("/events/ws", eventsStream.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Get("/system/status", systemHandlers.HandleSystemStatus)

			toolHandlers.RegisterRoutes(r)
			r.With(auth.RequireRole(domain.RoleAdmin)).
				Get("/admin/tool-executions", toolHandlers.HandleListExecutions)

			portfoliohandlers.NewHandler(s.container.PortfolioService, s.log).RegisterRoutes(r)
			tradeloghandlers.NewHandler(s.container.TradeLogService, s.log).RegisterRoutes(r)
			riskhandlers.NewHandler(s.container.RiskService, s.log).RegisterRoutes(r)
			alertshandlers.NewHandler(s.container.AlertService, s.log).RegisterRoutes(r)
			journalhandlers.NewHandler(s.container.JournalService, s.log).RegisterRoutes(r)
		})
	})
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
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
