// Package main provides the entrypoint for the GearSwap background worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/gearswap/gearswap/internal/database"
	"github.com/gearswap/gearswap/internal/distance"
	"github.com/gearswap/gearswap/internal/distance/googleroutes"
	"github.com/gearswap/gearswap/internal/geocode"
	"github.com/gearswap/gearswap/internal/geocode/nominatim"
	"github.com/gearswap/gearswap/internal/listing"
	"github.com/gearswap/gearswap/internal/provider/resilience"
	"github.com/gearswap/gearswap/internal/seller"
	"github.com/gearswap/gearswap/internal/trade"
	"github.com/gearswap/gearswap/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "gearswap-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting GearSwap worker")

	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	registry := resilience.NewRegistry()

	geocoder := geocode.NewService(geocode.ServiceConfig{
		Provider: nominatim.NewClient(nominatim.ClientConfig{
			BaseURL:   os.Getenv("NOMINATIM_BASE_URL"),
			UserAgent: os.Getenv("NOMINATIM_USER_AGENT"),
			Registry:  registry,
			Logger:    log,
		}),
		Logger: log,
	})

	var routes distance.RouteProvider
	if apiKey := os.Getenv("GOOGLE_ROUTES_API_KEY"); apiKey != "" {
		routes = googleroutes.NewClient(googleroutes.ClientConfig{
			APIKey:   apiKey,
			Registry: registry,
			Logger:   log,
		})
	}

	distanceService := distance.NewService(distance.ServiceConfig{
		Routes:   routes,
		Geocoder: geocoder,
		Cache:    distance.NewCache(distance.DefaultCacheTTL),
		Logger:   log,
	})

	listingRepo := listing.NewPostgresRepository(pool)
	matchService := trade.NewService(trade.ServiceConfig{
		Listings: listingRepo,
		Drafts:   listing.NewInMemoryDraftRepository(),
		Sellers:  seller.NewPostgresRepository(pool),
		Logger:   log,
	})

	// Match alerts are published when a topic is configured
	var alerts worker.AlertPublisher
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	if topicName := os.Getenv("PUBSUB_ALERT_TOPIC"); topicName != "" && projectID != "" {
		publisher, err := worker.NewTopicPublisher(ctx, worker.TopicPublisherConfig{
			ProjectID: projectID,
			TopicName: topicName,
			Logger:    log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create alert publisher")
		}
		defer publisher.Close()
		alerts = publisher
		log.Info().Str("topic", topicName).Msg("alert publisher initialized")
	} else {
		log.Warn().Msg("PUBSUB_ALERT_TOPIC not set - match alerts are disabled")
	}

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:    worker.DefaultRefreshConfig(),
		Logger:    log,
		Listings:  listingRepo,
		Matches:   matchService,
		Distances: distanceService,
		Alerts:    alerts,
	})

	// Health check server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Prefer Pub/Sub triggered runs; fall back to a local ticker when no
	// subscription is configured.
	subscriptionName := os.Getenv("PUBSUB_SUBSCRIPTION")
	if subscriptionName != "" && projectID != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscriptionName,
			RefreshJob:       refreshJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
				cancel()
			}
		}()
	} else {
		interval := 1 * time.Hour
		if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
			if parsed, err := time.ParseDuration(v); err == nil {
				interval = parsed
			}
		}

		go func() {
			log.Info().Dur("interval", interval).Msg("no pubsub subscription, running on a local schedule")
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					refreshJob.Run(ctx)
					if err := refreshJob.WarmDistanceCache(ctx); err != nil {
						log.Warn().Err(err).Msg("cache warming failed")
					}
				}
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
