package rest

import (
	"context"
	"net/http"
	"time"

	"string-analyzer/application/commands/bus"
	querybus "string-analyzer/application/queries/bus"
	"string-analyzer/infrastructure/di"
	"string-analyzer/interfaces/http/rest/handlers"
	"string-analyzer/interfaces/http/rest/middleware"
	"string-analyzer/pkg/auth"
	pkgerrors "string-analyzer/pkg/errors"
	"string-analyzer/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Pinger reports whether the storage backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the optional parts of the router. Zero values turn the
// corresponding feature off.
type Options struct {
	MaxBodyBytes       int64
	EnableCORS         bool
	Debug              bool
	Storage            Pinger
	Collector          *observability.Collector
	Authenticator      *auth.JWTValidator
	RateLimiter        auth.RateLimiter
	RateLimitPerMinute int
}

// OptionsFor derives router options from a wired container. Error
// responses carry debug details only in the development environment.
func OptionsFor(container *di.Container) Options {
	cfg := container.Config
	return Options{
		MaxBodyBytes:       cfg.MaxBodyBytes,
		EnableCORS:         cfg.EnableCORS,
		Debug:              cfg.IsDevelopment(),
		Storage:            container.Repository,
		Collector:          container.Collector,
		Authenticator:      container.JWT,
		RateLimiter:        container.RateLimiter,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
	opts       Options
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
	opts Options,
) *Router {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
		opts:       opts,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.opts.Debug)

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger(rt.logger))
	if rt.opts.Collector != nil {
		router.Use(middleware.Metrics(rt.opts.Collector))
	}
	router.Use(errorHandler.Middleware)

	if rt.opts.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleStatus(w, r, http.StatusNotFound, "Resource not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.opts.Collector != nil {
		router.Method(http.MethodGet, "/metrics", rt.opts.Collector.Handler())
	}

	stringHandler := handlers.NewStringHandler(rt.commandBus, rt.queryBus, errorHandler, rt.opts.MaxBodyBytes, rt.logger)

	router.Route("/strings", func(r chi.Router) {
		if rt.opts.RateLimiter != nil {
			r.Use(middleware.RateLimit(rt.opts.RateLimiter, rt.opts.RateLimitPerMinute, errorHandler, rt.logger))
		}

		r.Get("/", stringHandler.ListStrings)
		// Registered before /{value} so the literal segment wins.
		r.Get("/filter-by-natural-language", stringHandler.FilterByNaturalLanguage)
		r.Get("/{value}", stringHandler.GetString)

		r.Group(func(r chi.Router) {
			if rt.opts.Authenticator != nil {
				r.Use(middleware.Authenticate(rt.opts.Authenticator, errorHandler, rt.logger))
			}
			r.Post("/", stringHandler.CreateString)
			r.Delete("/{value}", stringHandler.DeleteString)
		})
	})

	return router
}

// healthCheck handles liveness requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports whether the storage backend answers
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if rt.opts.Storage != nil {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := rt.opts.Storage.Ping(ctx); err != nil {
			rt.logger.Warn("Readiness check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
