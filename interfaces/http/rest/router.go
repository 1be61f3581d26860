// Package rest assembles the HTTP router: middleware chain, routes,
// and the metrics endpoint.
package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"userhub-backend/interfaces/http/rest/handlers"
	"userhub-backend/internal/config"
	"userhub-backend/internal/middleware"
	"userhub-backend/internal/observability"
	"userhub-backend/internal/store"
	"userhub-backend/pkg/api"
)

// Router creates and configures the HTTP router.
type Router struct {
	cfg            config.Config
	logger         *zap.Logger
	store          *store.MemoryStore
	instruments    *observability.Instruments
	metricsHandler http.Handler
	startTime      time.Time
}

// NewRouter creates a new router instance.
func NewRouter(
	cfg config.Config,
	logger *zap.Logger,
	st *store.MemoryStore,
	instruments *observability.Instruments,
	metricsHandler http.Handler,
	startTime time.Time,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		store:          st,
		instruments:    instruments,
		metricsHandler: metricsHandler,
		startTime:      startTime,
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(rt.logger))

	// The instrumentation middleware sits outside recovery so its
	// deferred release observes the final status even on panics.
	router.Use(observability.Middleware(rt.instruments))
	router.Use(middleware.Recovery(rt.logger, rt.cfg.IsProduction()))

	healthHandler := handlers.NewHealthHandler(rt.startTime, rt.cfg.ServiceVersion, rt.cfg.Environment)
	router.Get("/health", healthHandler.Health)

	router.Method(http.MethodGet, "/metrics", rt.metricsHandler)

	userHandler := handlers.NewUserHandler(rt.store, rt.logger, rt.instruments, rt.cfg.Environment)
	router.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.ListUsers)
		r.Post("/", userHandler.CreateUser)
		r.Get("/{userID}", userHandler.GetUser)
		r.Put("/{userID}", userHandler.UpdateUser)
		r.Delete("/{userID}", userHandler.DeleteUser)
	})

	diagHandler := handlers.NewDiagnosticsHandler(rt.logger, rt.cfg.LoadTestMaxIterations)
	router.Get("/error", diagHandler.Error)
	router.Get("/load-test", diagHandler.LoadTest)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.NotFoundRoute(w, r.URL.Path)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return router
}
