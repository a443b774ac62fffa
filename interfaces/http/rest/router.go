// Package rest wires the HTTP routes of the evidence map API.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/application/commands/bus"
	"github.com/ShabiDHM/advocatus-sub001/application/ports"
	querybus "github.com/ShabiDHM/advocatus-sub001/application/queries/bus"
	"github.com/ShabiDHM/advocatus-sub001/interfaces/http/rest/handlers"
	"github.com/ShabiDHM/advocatus-sub001/interfaces/http/rest/middleware"
	"github.com/ShabiDHM/advocatus-sub001/pkg/auth"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
	"github.com/ShabiDHM/advocatus-sub001/pkg/observability"
)

const readyTimeout = 3 * time.Second

// Dependencies are what the router needs to build its handlers. Metrics and
// JWT may be nil.
type Dependencies struct {
	CommandBus  *bus.CommandBus
	QueryBus    *querybus.QueryBus
	Importer    handlers.Importer
	Health      ports.HealthChecker
	Metrics     *observability.Collector
	JWT         *auth.JWTValidator
	CORSOrigins []string
	Debug       bool
}

// Router creates and configures the HTTP router
type Router struct {
	deps   Dependencies
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(deps Dependencies, logger *zap.Logger) *Router {
	return &Router{
		deps:   deps,
		errors: pkgerrors.NewErrorHandler(logger, deps.Debug),
		logger: logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.deps.Metrics != nil {
		router.Use(middleware.Metrics(rt.deps.Metrics))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.deps.Metrics.Handler())
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.deps.JWT, rt.errors, rt.logger))

		h := handlers.NewEvidenceMapHandler(rt.deps.CommandBus, rt.deps.QueryBus, rt.deps.Importer, rt.errors, rt.logger)
		r.Route("/cases/{caseID}/evidence-map", func(r chi.Router) {
			r.Get("/", h.GetEvidenceMap)
			r.Put("/", h.SaveEvidenceMap)
			r.Get("/view", h.GetDisplayedView)
			r.Post("/report", h.GenerateReport)
			r.Post("/import", h.Import)
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	writeStatus(w, http.StatusOK, "healthy")
}

// readinessCheck pings the storage backend when it supports it
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if rt.deps.Health != nil {
		ctx, cancel := context.WithTimeout(req.Context(), readyTimeout)
		defer cancel()
		if err := rt.deps.Health.Ping(ctx); err != nil {
			rt.logger.Warn("Readiness check failed", zap.Error(err))
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
	}
	writeStatus(w, http.StatusOK, "ready")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
