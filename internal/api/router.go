// Package api provides the HTTP API for GearSwap.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/gearswap/gearswap/internal/api/handler"
	"github.com/gearswap/gearswap/internal/api/middleware"
	"github.com/gearswap/gearswap/internal/auth"
	"github.com/gearswap/gearswap/internal/distance"
	"github.com/gearswap/gearswap/internal/listing"
	"github.com/gearswap/gearswap/internal/provider/resilience"
	"github.com/gearswap/gearswap/internal/trade"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version         string
	BuildTime       string
	Logger          zerolog.Logger
	ServiceName     string
	Metrics         *middleware.Metrics
	Verifier        *auth.Verifier
	DistanceService *distance.Service
	MatchService    *trade.Service
	Drafts          listing.DraftRepository
	Registry        *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "gearswap-api"
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
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry)
	distanceHandler := handler.NewDistanceHandler(cfg.DistanceService)
	matchHandler := handler.NewMatchHandler(cfg.MatchService, cfg.Drafts)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.Verifier)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)  // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Distance endpoints (public) - downstream providers are the real
		// bottleneck, so both get strict rate limiting
		r.With(standardRateLimit).Post("/distance:calculate", distanceHandler.Calculate)
		r.With(expensiveRateLimit).Post("/distance:batch", distanceHandler.Batch)

		// Match computation (authenticated) - expensive, user-based limiting
		r.Route("/listings/{listingId}", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.ExpensiveRateLimit))
			r.Post("/matches:compute", matchHandler.ComputeMatches)
		})
	})

	return r
}
