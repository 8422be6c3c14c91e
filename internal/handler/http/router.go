package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nimson07/postFlow/internal/domain"
	"github.com/nimson07/postFlow/internal/service"
	"github.com/nimson07/postFlow/pkg/health"
	"github.com/nimson07/postFlow/pkg/middleware"
)

// ServiceName labels HTTP metrics and spans.
const ServiceName = "postflow"

// RouterConfig holds everything the router mounts.
type RouterConfig struct {
	AuthService *service.AuthService
	UserService *service.UserService
	PostService *service.PostService
	Authorizer  Authorizer
	Health      *health.Handler
	Logger      *slog.Logger
	CORS        middleware.CORSConfig

	// PprofAllowedCIDRs enables /debug/pprof for the listed networks. Empty
	// leaves pprof unmounted.
	PprofAllowedCIDRs []string
}

// NewRouter creates a chi router with all PostFlow routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	// Health check endpoints
	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.LivenessHandler())
		r.Get("/health/ready", cfg.Health.ReadinessHandler())
	}
	r.Handle("/metrics", promhttp.Handler())

	if len(cfg.PprofAllowedCIDRs) > 0 {
		middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)
	}

	authenticate := Authenticate(cfg.Authorizer, logger)

	authHandler := NewAuthHandler(cfg.AuthService, logger)
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.NoStore)

		r.Post("/check-email", authHandler.CheckEmail)
		r.Post("/login", authHandler.Login)
		r.Post("/set-password", authHandler.SetPassword)

		r.With(authenticate).Get("/verify", authHandler.Verify)
		r.With(authenticate).Get("/me", authHandler.Me)
	})

	postHandler := NewPostHandler(cfg.PostService, logger)
	r.Route("/api/posts", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authenticate)

		r.Get("/", postHandler.List)
		r.With(RequireRole(domain.RoleUser)).Post("/", postHandler.Create)
		r.With(RequireRole(domain.RoleAdmin)).Patch("/{id}/status", postHandler.UpdateStatus)
		r.Delete("/{id}", postHandler.Delete)
	})

	userHandler := NewUserHandler(cfg.UserService, logger)
	r.Route("/api/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authenticate)
		r.Use(RequireRole(domain.RoleAdmin))

		r.Get("/", userHandler.List)
		r.Post("/", userHandler.Create)
		r.Put("/{id}", userHandler.Update)
		r.Delete("/{id}", userHandler.Delete)
	})

	return r
}
