// Package api provides the HTTP API server and handlers for the Hydra
// catalog service.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hydrahub/hydra-server/internal/http/response"
	"github.com/hydrahub/hydra-server/internal/media"
	"github.com/hydrahub/hydra-server/internal/ratelimit"
	"github.com/hydrahub/hydra-server/internal/service"
	"github.com/hydrahub/hydra-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	catalog    *service.CatalogService
	engagement *service.EngagementService
	keys       store.Keys
	media      *media.Resolver

	suggestLimiter *ratelimit.KeyedRateLimiter

	router *chi.Mux
	api    huma.API
	logger *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	catalog *service.CatalogService,
	engagement *service.EngagementService,
	keys store.Keys,
	mediaResolver *media.Resolver,
	suggestLimiter *ratelimit.KeyedRateLimiter,
	logger *slog.Logger,
) *Server {
	s := &Server{
		catalog:        catalog,
		engagement:     engagement,
		keys:           keys,
		media:          mediaResolver,
		suggestLimiter: suggestLimiter,
		router:         chi.NewRouter(),
		logger:         logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Hydra API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"apiKey": {
			Type: "apiKey",
			In:   "header",
			Name: apiKeyHeader,
		},
	}
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", apiKeyHeader},
		MaxAge:         300,
	}))
	s.router.Use(s.requireAPIKey)
}

// setupRoutes configures all HTTP routes. Read endpoints are typed huma
// operations; the engagement writes are plain chi handlers.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.registerContentRoutes()

	s.router.Route("/api/v1/content", func(r chi.Router) {
		r.Post("/{slug}/view", s.handleTitleAction)
		r.Post("/{slug}/star", s.handleTitleAction)
		r.Post("/{slug}/bookmark", s.handleTitleAction)
		r.Post("/{slug}/{no}/view", s.handleEpisodeView)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
