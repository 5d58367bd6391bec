// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/agentdesk/internal/org"
	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/platform/config"
	"github.com/taibuivan/agentdesk/internal/platform/constants"
	"github.com/taibuivan/agentdesk/internal/platform/middleware"
	"github.com/taibuivan/agentdesk/internal/platform/respond"
	"github.com/taibuivan/agentdesk/internal/platform/sec"
	"github.com/taibuivan/agentdesk/internal/users/auth"
	"github.com/taibuivan/agentdesk/internal/workspace/activitylog"
	"github.com/taibuivan/agentdesk/internal/workspace/assistant"
	"github.com/taibuivan/agentdesk/internal/workspace/knowledge"
	"github.com/taibuivan/agentdesk/internal/workspace/tool"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. It returns 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Metrics exposes the Prometheus registry.
	Metrics http.Handler

	// Instrument records request counts and latencies.
	Instrument func(http.Handler) http.Handler

	// Guard gates every org-scoped route.
	Guard *middleware.Guard

	Auth          *auth.Handler
	Organizations *org.Handler
	Assistants    *assistant.Handler
	Knowledge     *knowledge.Handler
	Tools         *tool.Handler
	Logs          *activitylog.Handler

	// Pages serves the front end for every path no API route claims.
	Pages http.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	if h.Instrument != nil {
		r.Use(h.Instrument)
	}
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	limiter := middleware.NewRateLimiter(middleware.DefaultRatePolicy())
	go limiter.Run(context)
	r.Use(limiter.Handler)
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	// # Application API
	r.Route("/api", func(api chi.Router) {
		api.NotFound(apiNotFound)
		api.Mount("/auth", h.Auth.Routes())

		api.Route("/v1", func(v1 chi.Router) {
			v1.Mount("/orgs", h.Organizations.CollectionRoutes())
			v1.Mount("/organization", h.Organizations.OrganizationRoutes())
			v1.Mount("/assistants", h.Assistants.Routes())
			v1.Mount("/kb", h.Knowledge.Routes())
			v1.Mount("/tools", h.Tools.Routes())

			v1.Group(func(admin chi.Router) {
				admin.Use(h.Guard.OrgRole(sec.RoleAdmin))
				admin.Mount("/logs", h.Logs.Routes())
			})
		})
	})

	// # Pages
	// Navigation goes through the cookie pre-filter before the front end.
	if h.Pages != nil {
		filter := middleware.NewRouteFilter(middleware.RouteFilterConfig{
			PublicPrefixes: cfg.PublicRoutePrefixes,
			AuthPages:      cfg.AuthPages,
			LoginPath:      cfg.LoginPath,
			LandingPath:    cfg.LandingPath,
			CookieName:     cfg.SessionCookieName,
		})
		r.NotFound(filter.Middleware(h.Pages).ServeHTTP)
	}

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// apiNotFound keeps unknown API paths out of the page fallback.
func apiNotFound(writer http.ResponseWriter, request *http.Request) {
	respond.Error(writer, request, apperr.NotFound("Route"))
}

// Handler exposes the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
