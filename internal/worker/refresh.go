package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/gearswap/gearswap/internal/distance"
	"github.com/gearswap/gearswap/internal/listing"
	"github.com/gearswap/gearswap/internal/trade"
)

// AlertPublisher delivers match alerts to sellers. Implementations must be
// safe for concurrent use.
type AlertPublisher interface {
	PublishMatchAlert(ctx context.Context, alert MatchAlert) error
}

// MatchAlert notifies a seller that strong trade candidates exist for one of
// their listings.
type MatchAlert struct {
	ListingID    string `json:"listing_id"`
	SellerID     string `json:"seller_id"`
	MatchCount   int    `json:"match_count"`
	TopScore     int    `json:"top_score"`
	TopListingID string `json:"top_listing_id"`
}

// RefreshJob recomputes trade matches for every trade-considered listing and
// optionally warms the distance cache for the hub cities.
type RefreshJob struct {
	config RefreshConfig
	logger zerolog.Logger

	listings listing.Repository
	matches  *trade.Service

	// Optional, nil if not configured
	distances *distance.Service
	alerts    AlertPublisher

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRuns         int64
	ListingsRefreshed int64
	ListingsFailed    int64
	MatchesFound      int64
	AlertsPublished   int64
	PairsWarmed       int64

	// Timings
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config    RefreshConfig
	Logger    zerolog.Logger
	Listings  listing.Repository
	Matches   *trade.Service
	Distances *distance.Service
	Alerts    AlertPublisher
}

// NewRefreshJob creates a new match refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	return &RefreshJob{
		config:    cfg.Config.withDefaults(),
		logger:    cfg.Logger,
		listings:  cfg.Listings,
		matches:   cfg.Matches,
		distances: cfg.Distances,
		alerts:    cfg.Alerts,
		metrics:   &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh run.
type RefreshResult struct {
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	TotalListings int
	Successful    int
	Failed        int
	Matches       int
	Alerts        int
	Errors        []RefreshError
}

// RefreshError represents an error during refresh.
type RefreshError struct {
	ListingID string
	Error     string
}

// Run recomputes matches for all trade-considered listings.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{StartTime: startTime}

	candidates, err := j.listings.ListTradeCandidates(ctx, "", "")
	if err != nil {
		j.logger.Error().Err(err).Msg("listing trade candidates failed")
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		result.Errors = append(result.Errors, RefreshError{Error: err.Error()})
		j.updateMetrics(result)
		return result
	}
	result.TotalListings = len(candidates)

	j.logger.Info().
		Int("total_listings", result.TotalListings).
		Int("concurrency", j.config.Concurrency).
		Msg("starting match refresh job")

	listingsChan := make(chan *listing.Listing, len(candidates))
	resultsChan := make(chan listingResult, len(candidates))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, listingsChan, resultsChan)
		}()
	}

	for _, l := range candidates {
		listingsChan <- l
	}
	close(listingsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for lr := range resultsChan {
		if lr.success {
			result.Successful++
		} else {
			result.Failed++
		}
		result.Matches += lr.matches
		result.Alerts += lr.alerts
		result.Errors = append(result.Errors, lr.errors...)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("matches", result.Matches).
		Int("alerts", result.Alerts).
		Msg("match refresh job completed")

	return result
}

type listingResult struct {
	success bool
	matches int
	alerts  int
	errors  []RefreshError
}

func (j *RefreshJob) refreshWorker(ctx context.Context, listings <-chan *listing.Listing, results chan<- listingResult) {
	for l := range listings {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.refreshListing(ctx, l)
		}
	}
}

func (j *RefreshJob) refreshListing(ctx context.Context, l *listing.Listing) listingResult {
	result := listingResult{success: true}

	listingCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	matches, err := j.matches.ComputeMatches(listingCtx, trade.MatchRequest{
		ListingID: l.ID,
		SellerID:  l.SellerID,
	})
	if err != nil {
		result.errors = append(result.errors, RefreshError{
			ListingID: l.ID,
			Error:     err.Error(),
		})
		result.success = false
		return result
	}

	result.matches = len(matches)
	atomic.AddInt64(&j.metrics.MatchesFound, int64(len(matches)))

	if len(matches) == 0 || j.alerts == nil {
		return result
	}

	// Matches are sorted best first.
	top := matches[0]
	if top.Score < j.config.MinAlertScore {
		return result
	}

	alert := MatchAlert{
		ListingID:    l.ID,
		SellerID:     l.SellerID,
		MatchCount:   len(matches),
		TopScore:     top.Score,
		TopListingID: top.Listing.ID,
	}
	if err := j.alerts.PublishMatchAlert(listingCtx, alert); err != nil {
		j.logger.Warn().Err(err).
			Str("listing_id", l.ID).
			Msg("publishing match alert failed")
		result.errors = append(result.errors, RefreshError{
			ListingID: l.ID,
			Error:     err.Error(),
		})
		return result
	}

	result.alerts = 1
	atomic.AddInt64(&j.metrics.AlertsPublished, 1)
	return result
}

// WarmDistanceCache pre-computes distances from each hub city to every
// trade-considered listing location. Failures degrade single pairs, never
// the run.
func (j *RefreshJob) WarmDistanceCache(ctx context.Context) error {
	if !j.config.WarmDistanceCache || j.distances == nil {
		return nil
	}

	candidates, err := j.listings.ListTradeCandidates(ctx, "", "")
	if err != nil {
		j.logger.Error().Err(err).Msg("listing trade candidates for cache warming failed")
		return err
	}

	items := make([]distance.BatchItem, 0, len(candidates))
	for _, l := range candidates {
		items = append(items, distance.BatchItem{
			ListingID: l.ID,
			Location:  l.Location,
		})
	}

	warmed := 0
	for _, hub := range j.config.HubCities {
		if ctx.Err() != nil {
			break
		}
		batch, err := j.distances.CalculateBatch(ctx, hub, items)
		if err != nil {
			j.logger.Warn().Err(err).
				Str("hub", hub).
				Msg("cache warming batch failed")
			continue
		}
		warmed += batch.Calculated
	}

	atomic.AddInt64(&j.metrics.PairsWarmed, int64(warmed))

	j.logger.Info().
		Int("hubs", len(j.config.HubCities)).
		Int("listings", len(items)).
		Int("pairs_warmed", warmed).
		Msg("distance cache warming completed")

	return nil
}

// Ping verifies the distance estimator end to end with a single hub pair.
func (j *RefreshJob) Ping(ctx context.Context) error {
	if j.distances == nil {
		return nil
	}
	_, err := j.distances.Calculate(ctx, "New York, NY", "Boston, MA")
	return err
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.ListingsRefreshed += int64(result.Successful)
	j.metrics.ListingsFailed += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRuns:         j.metrics.TotalRuns,
		ListingsRefreshed: j.metrics.ListingsRefreshed,
		ListingsFailed:    j.metrics.ListingsFailed,
		MatchesFound:      atomic.LoadInt64(&j.metrics.MatchesFound),
		AlertsPublished:   atomic.LoadInt64(&j.metrics.AlertsPublished),
		PairsWarmed:       atomic.LoadInt64(&j.metrics.PairsWarmed),
		LastRunAt:         j.metrics.LastRunAt,
		LastRunDuration:   j.metrics.LastRunDuration,
		TotalDuration:     j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":         m.TotalRuns,
		"listings_refreshed": m.ListingsRefreshed,
		"listings_failed":    m.ListingsFailed,
		"matches_found":      m.MatchesFound,
		"alerts_published":   m.AlertsPublished,
		"pairs_warmed":       m.PairsWarmed,
		"last_run_at":        m.LastRunAt,
		"last_run_duration":  m.LastRunDuration.String(),
		"total_duration":     m.TotalDuration.String(),
	}
}
