// Package api provides the HTTP API for MommyShops.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ArielSanroj/mommyshops-sub003/internal/api/handler"
	"github.com/ArielSanroj/mommyshops-sub003/internal/api/middleware"
	"github.com/ArielSanroj/mommyshops-sub003/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version         string
	BuildTime       string
	Logger          zerolog.Logger
	ServiceName     string
	Metrics         *middleware.Metrics
	ResilientClient *resilience.Client
	Ingredients     handler.Analyzer
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "mommyshops-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ResilientClient)
	ingredientHandler := handler.NewIngredientHandler(cfg.Ingredients)

	// Expensive endpoints fan out to external providers, so they get a
	// tighter limit than ops endpoints.
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(standardRateLimit).Get("/resilience", opsHandler.ResilienceStatus)
		})

		// Ingredient analysis - fans out to FDA, PubChem and the LLM
		r.With(expensiveRateLimit).Get("/ingredients/{name}", ingredientHandler.Analyze)
	})

	return r
}
