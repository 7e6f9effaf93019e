// Package main provides the entrypoint for the GearSwap API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/gearswap/gearswap/internal/api"
	"github.com/gearswap/gearswap/internal/api/middleware"
	"github.com/gearswap/gearswap/internal/auth"
	"github.com/gearswap/gearswap/internal/database"
	"github.com/gearswap/gearswap/internal/distance"
	"github.com/gearswap/gearswap/internal/distance/googleroutes"
	"github.com/gearswap/gearswap/internal/geocode"
	"github.com/gearswap/gearswap/internal/geocode/nominatim"
	"github.com/gearswap/gearswap/internal/listing"
	"github.com/gearswap/gearswap/internal/provider/resilience"
	"github.com/gearswap/gearswap/internal/seller"
	"github.com/gearswap/gearswap/internal/telemetry"
	"github.com/gearswap/gearswap/internal/trade"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "gearswap-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting GearSwap API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize token verification (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	verifier := auth.NewVerifier(auth.VerifierConfig{
		SigningKey: jwtSigningKey,
		Issuer:     os.Getenv("JWT_ISSUER"),
		Audience:   os.Getenv("JWT_AUDIENCE"),
	})
	log.Info().Msg("token verifier initialized")

	// Provider health registry
	registry := resilience.NewRegistry()

	// Initialize geocoding (free tier)
	geocoder := geocode.NewService(geocode.ServiceConfig{
		Provider: nominatim.NewClient(nominatim.ClientConfig{
			BaseURL:   os.Getenv("NOMINATIM_BASE_URL"),
			UserAgent: os.Getenv("NOMINATIM_USER_AGENT"),
			Registry:  registry,
			Logger:    log,
		}),
		Logger: log,
	})
	log.Info().Msg("geocoding service initialized")

	// Initialize routing (paid tier, optional)
	var routes distance.RouteProvider
	if apiKey := os.Getenv("GOOGLE_ROUTES_API_KEY"); apiKey != "" {
		routes = googleroutes.NewClient(googleroutes.ClientConfig{
			APIKey:   apiKey,
			Registry: registry,
			Logger:   log,
		})
		log.Info().Msg("routes API client initialized")
	} else {
		log.Warn().Msg("GOOGLE_ROUTES_API_KEY not set - distance estimates use the free tier only")
	}

	// Initialize distance estimation
	distanceService := distance.NewService(distance.ServiceConfig{
		Routes:   routes,
		Geocoder: geocoder,
		Cache:    distance.NewCache(distance.DefaultCacheTTL),
		Logger:   log,
	})
	log.Info().Msg("distance service initialized")

	// Initialize listing and seller repositories
	listingRepo := listing.NewPostgresRepository(pool)
	sellerRepo := seller.NewPostgresRepository(pool)
	draftRepo := listing.NewInMemoryDraftRepository()

	// Initialize trade matching
	matchService := trade.NewService(trade.ServiceConfig{
		Listings: listingRepo,
		Drafts:   draftRepo,
		Sellers:  sellerRepo,
		Logger:   log,
	})
	log.Info().Msg("match service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		ServiceName:     serviceName,
		Metrics:         metrics,
		Verifier:        verifier,
		DistanceService: distanceService,
		MatchService:    matchService,
		Drafts:          draftRepo,
		Registry:        registry,
	})

	// Create HTTP server. The write timeout is generous because batch
	// distance requests wait out the free tier's politeness delays.
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
