package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/gofunds/internal/adapter/http/handler"
	"github.com/iho/gofunds/internal/adapter/http/middleware"
	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/infrastructure/metrics"
	"github.com/iho/gofunds/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	CustomerHandler     *handler.CustomerHandler
	FundHandler         *handler.FundHandler
	SubscriptionHandler *handler.SubscriptionHandler
	LedgerHandler       *handler.LedgerHandler
	HealthHandler       *handler.HealthHandler

	// Optional collaborators. A nil value disables the corresponding middleware.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	TokenVerifier    middleware.TokenVerifier
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))
		}
		r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)

		// Idempotency runs after auth so keys are scoped per caller
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
		}

		adminOnly := middleware.RequireRole(domain.RoleAdmin)

		// Customers
		r.Route("/customers", func(r chi.Router) {
			r.Post("/", cfg.CustomerHandler.Create)
			r.With(adminOnly).Get("/", cfg.CustomerHandler.List)
			r.Get("/{id}", cfg.CustomerHandler.Get)
			r.Put("/{id}", cfg.CustomerHandler.UpdateProfile)
			r.Post("/{id}/deposit", cfg.CustomerHandler.Deposit)
			r.Post("/{id}/withdraw", cfg.CustomerHandler.Withdraw)
			r.Post("/{id}/login", cfg.CustomerHandler.Login)
			r.With(adminOnly).Post("/{id}/activate", cfg.CustomerHandler.Activate)
			r.With(adminOnly).Post("/{id}/deactivate", cfg.CustomerHandler.Deactivate)
			r.Get("/{id}/subscriptions", cfg.CustomerHandler.Subscriptions)
			r.Get("/{id}/transactions", cfg.CustomerHandler.History)
		})

		// Funds
		r.Route("/funds", func(r chi.Router) {
			r.Get("/", cfg.FundHandler.List)
			r.Get("/{id}", cfg.FundHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Post("/", cfg.FundHandler.Create)
				r.Put("/{id}", cfg.FundHandler.Update)
				r.Post("/{id}/activate", cfg.FundHandler.Activate)
				r.Post("/{id}/deactivate", cfg.FundHandler.Deactivate)
			})
		})

		// Subscriptions
		r.Route("/subscriptions", func(r chi.Router) {
			r.Post("/", cfg.SubscriptionHandler.Create)
			r.Get("/{id}", cfg.SubscriptionHandler.Get)
			r.Delete("/{id}", cfg.SubscriptionHandler.Cancel)
			r.Get("/{id}/transactions", cfg.SubscriptionHandler.Transactions)
		})

		// Ledger
		r.Get("/transactions/{id}", cfg.LedgerHandler.GetTransaction)
		r.With(adminOnly).Get("/ledger/reconciliation", cfg.LedgerHandler.Reconciliation)
	})

	return r
}
