package distance

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gearswap/gearswap/internal/geo"
	"github.com/gearswap/gearswap/internal/geocode"
)

// DefaultPolitenessDelay is the pause after a successful free-tier
// computation. This is etiquette toward the free geocoding service, a design
// constraint rather than incidental latency.
const DefaultPolitenessDelay = 300 * time.Millisecond

// ServiceConfig holds configuration for the distance estimator.
type ServiceConfig struct {
	// Routes is the paid routing provider. Nil when no API key is
	// configured; the estimator then runs free-tier only.
	Routes RouteProvider

	// Geocoder resolves addresses for the fallback tier.
	Geocoder *geocode.Service

	// Cache holds resolved pairs. Required.
	Cache *Cache

	// Logger for estimator operations.
	Logger zerolog.Logger

	// PolitenessDelay overrides the pause after free-tier computations
	// (default: 300ms).
	PolitenessDelay time.Duration

	// BatchPause overrides the rest between batch waves (default: 500ms).
	BatchPause time.Duration
}

// Service produces distance results with tiered fallback and caching.
type Service struct {
	routes          RouteProvider
	geocoder        *geocode.Service
	cache           *Cache
	logger          zerolog.Logger
	politenessDelay time.Duration
	batchPause      time.Duration
}

// NewService creates a new distance estimator.
func NewService(cfg ServiceConfig) *Service {
	politenessDelay := cfg.PolitenessDelay
	if politenessDelay == 0 {
		politenessDelay = DefaultPolitenessDelay
	}

	batchPause := cfg.BatchPause
	if batchPause == 0 {
		batchPause = DefaultBatchPause
	}

	return &Service{
		routes:          cfg.Routes,
		geocoder:        cfg.Geocoder,
		cache:           cfg.Cache,
		logger:          cfg.Logger,
		politenessDelay: politenessDelay,
		batchPause:      batchPause,
	}
}

// UsesPaidTier reports whether a routing provider is configured.
func (s *Service) UsesPaidTier() bool {
	return s.routes != nil
}

// Calculate resolves a distance result for one pair, cache-first.
//
// An invalid origin or destination is the one failure that returns an error;
// it indicates a caller bug, not a transient condition. Every other failure
// mode degrades into a Result tagged with the tier that failed.
func (s *Service) Calculate(ctx context.Context, origin, destination string) (*Result, error) {
	if err := geo.ValidateAddress(origin); err != nil {
		return nil, fmt.Errorf("origin: %w", err)
	}
	if err := geo.ValidateAddress(destination); err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}

	if cached, ok := s.cache.Get(origin, destination); ok {
		s.logger.Debug().
			Str("origin", origin).
			Str("destination", destination).
			Msg("distance cache hit")
		return cached, nil
	}

	result := s.compute(ctx, origin, destination)
	s.storeIfResolved(origin, destination, result)
	return &result, nil
}

// compute runs the tiered fallback chain for a pre-validated pair. It never
// returns an error; failures become degraded results.
func (s *Service) compute(ctx context.Context, origin, destination string) Result {
	if s.routes != nil {
		if result, ok := s.computeViaRoutes(ctx, origin, destination); ok {
			return result
		}
	}
	return s.computeViaEstimate(ctx, origin, destination)
}

// computeViaRoutes makes the single paid-tier attempt.
func (s *Service) computeViaRoutes(ctx context.Context, origin, destination string) (Result, bool) {
	estimate, err := s.routes.ComputeRoute(ctx, origin, destination)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("origin", origin).
			Str("destination", destination).
			Str("provider", s.routes.Name()).
			Msg("routing provider failed, falling back to estimate")
		return Result{}, false
	}

	miles := float64(estimate.DistanceMeters) / MetersPerMile
	return Result{
		Origin:      origin,
		Destination: destination,
		Distance:    newDistance(miles),
		Duration:    newDuration(estimate.DurationSeconds),
		Source:      SourceGoogle,
	}, true
}

// computeViaEstimate geocodes both sides in parallel and estimates road
// distance from great-circle math.
func (s *Service) computeViaEstimate(ctx context.Context, origin, destination string) Result {
	var (
		wg                     sync.WaitGroup
		originCoord, destCoord *geo.Coordinate
		originErr, destErr     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		originCoord, originErr = s.geocoder.Resolve(ctx, origin)
	}()
	go func() {
		defer wg.Done()
		destCoord, destErr = s.geocoder.Resolve(ctx, destination)
	}()
	wg.Wait()

	if originErr != nil || destErr != nil {
		return s.geocodingFailedResult(origin, destination, originErr != nil, destErr != nil)
	}

	straightLine := geo.Distance(*originCoord, *destCoord)
	roadMiles := math.Round(straightLine*RoadFactor*10) / 10
	durationSecs := int(math.Round(roadMiles / AverageSpeedMph * 3600))

	result := Result{
		Origin:      origin,
		Destination: destination,
		Distance:    newDistance(roadMiles),
		Duration:    newDuration(durationSecs),
		Source:      SourceEstimated,
	}

	// Be polite to the free geocoding service between computations.
	select {
	case <-time.After(s.politenessDelay):
	case <-ctx.Done():
	}

	return result
}

func (s *Service) geocodingFailedResult(origin, destination string, originFailed, destFailed bool) Result {
	var msg string
	switch {
	case originFailed && destFailed:
		msg = fmt.Sprintf("could not geocode origin %q or destination %q", origin, destination)
	case originFailed:
		msg = fmt.Sprintf("could not geocode origin %q", origin)
	default:
		msg = fmt.Sprintf("could not geocode destination %q", destination)
	}

	return Result{
		Origin:      origin,
		Destination: destination,
		Distance:    unavailableDistance(),
		Duration:    unavailableDuration(),
		Source:      SourceGeocodingFailed,
		Err:         msg,
	}
}

// storeIfResolved writes successfully computed results back to the cache.
// Failure results are not cached so a later request can try again.
func (s *Service) storeIfResolved(origin, destination string, result Result) {
	if result.Source == SourceGoogle || result.Source == SourceEstimated {
		s.cache.Set(origin, destination, result)
	}
}
