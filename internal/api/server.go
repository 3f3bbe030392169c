// Package api provides the HTTP API server and handlers for the timeline service.
package api

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/listenup-timeline/internal/config"
	"github.com/listenupapp/listenup-timeline/internal/logger"
	"github.com/listenupapp/listenup-timeline/internal/ratelimit"
	"github.com/listenupapp/listenup-timeline/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	timeline *service.TimelineService
	router   *chi.Mux
	api      huma.API
	logger   *logger.Logger
	limiter  *ratelimit.KeyedRateLimiter
	started  time.Time
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(timeline *service.TimelineService, cfg config.ServerConfig, log *logger.Logger) *Server {
	s := &Server{
		timeline: timeline,
		router:   chi.NewRouter(),
		logger:   log,
		started:  time.Now(),
	}
	if cfg.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.PerMinute(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	}

	s.setupMiddleware(cfg)

	humaConfig := huma.DefaultConfig("ListenUp Timeline API", "1.0.0")
	humaConfig.Info.Description = "Builds per-part and merged chapter timelines for multi-part audiobooks"
	// Bodies are enveloped, so the $schema link hooks are dropped.
	humaConfig.CreateHooks = nil
	humaConfig.Transformers = []huma.Transformer{EnvelopeTransformer}

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerTimelineRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// setupMiddleware configures the middleware stack. It must run before any
// route is registered on the router.
func (s *Server) setupMiddleware(cfg config.ServerConfig) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	if s.limiter != nil {
		s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
	}
}
