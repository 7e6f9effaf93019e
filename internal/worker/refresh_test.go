package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gearswap/gearswap/internal/distance"
	"github.com/gearswap/gearswap/internal/geocode"
	"github.com/gearswap/gearswap/internal/listing"
	"github.com/gearswap/gearswap/internal/seller"
	"github.com/gearswap/gearswap/internal/trade"
	"github.com/gearswap/gearswap/internal/worker"
)

type fakePublisher struct {
	mu     sync.Mutex
	alerts []worker.MatchAlert
	err    error
}

func (f *fakePublisher) PublishMatchAlert(_ context.Context, alert worker.MatchAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, alert)
	return nil
}

func (f *fakePublisher) published() []worker.MatchAlert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]worker.MatchAlert(nil), f.alerts...)
}

type jobFixture struct {
	listings  *listing.InMemoryRepository
	matches   *trade.Service
	distances *distance.Service
}

func newJobFixture(t *testing.T) *jobFixture {
	t.Helper()

	listings := listing.NewInMemoryRepository()
	matches := trade.NewService(trade.ServiceConfig{
		Listings: listings,
		Drafts:   listing.NewInMemoryDraftRepository(),
		Sellers:  seller.NewInMemoryRepository(),
		Logger:   zerolog.Nop(),
	})
	distances := distance.NewService(distance.ServiceConfig{
		Geocoder:        geocode.NewService(geocode.ServiceConfig{Logger: zerolog.Nop()}),
		Cache:           distance.NewCache(time.Hour),
		Logger:          zerolog.Nop(),
		PolitenessDelay: time.Millisecond,
		BatchPause:      time.Millisecond,
	})

	return &jobFixture{listings: listings, matches: matches, distances: distances}
}

func (f *jobFixture) newJob(cfg worker.RefreshConfig, alerts worker.AlertPublisher) *worker.RefreshJob {
	return worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:    cfg,
		Logger:    zerolog.Nop(),
		Listings:  f.listings,
		Matches:   f.matches,
		Distances: f.distances,
		Alerts:    alerts,
	})
}

func (f *jobFixture) seedCandidate(t *testing.T, id string) *listing.Listing {
	t.Helper()
	l := &listing.Listing{
		ID:              id,
		SellerID:        "slr-" + id,
		Title:           "2020 Toyota RAV4",
		BodyType:        "SUV",
		Make:            "Toyota",
		Model:           "RAV4",
		Year:            2020,
		Price:           25000,
		Mileage:         30000,
		Condition:       "Excellent",
		FuelType:        "Hybrid",
		Location:        "Boston, MA",
		TradeConsidered: true,
	}
	require.NoError(t, f.listings.Put(context.Background(), l))
	return l
}

// seedPreferences stores preferences for the listing's seller that score
// another candidate seeded by seedCandidate at 85.
func (f *jobFixture) seedPreferences(t *testing.T, sellerID string) {
	t.Helper()
	priceMin, priceMax := 20000.0, 30000.0
	yearMin, yearMax := 2018, 2024
	require.NoError(t, f.listings.SetTradePreferences(context.Background(), sellerID, &listing.TradePreferences{
		BodyTypes:  []string{"SUV"},
		PriceMin:   &priceMin,
		PriceMax:   &priceMax,
		YearMin:    &yearMin,
		YearMax:    &yearMax,
		Makes:      []string{"Toyota"},
		Conditions: []string{"Excellent"},
	}))
}

func TestDefaultRefreshConfig(t *testing.T) {
	cfg := worker.DefaultRefreshConfig()

	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 70, cfg.MinAlertScore)
	assert.True(t, cfg.WarmDistanceCache)
	assert.NotEmpty(t, cfg.HubCities)
}

func TestDefaultHubCities(t *testing.T) {
	hubs := worker.DefaultHubCities()

	assert.GreaterOrEqual(t, len(hubs), 5)
	assert.Contains(t, hubs, "New York, NY")
}

func TestRefreshJob_Run_NoCandidates(t *testing.T) {
	f := newJobFixture(t)
	job := f.newJob(worker.RefreshConfig{}, nil)

	result := job.Run(context.Background())

	require.NotNil(t, result)
	assert.Equal(t, 0, result.TotalListings)
	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 0, result.Failed)
}

func TestRefreshJob_Run_ComputesMatches(t *testing.T) {
	f := newJobFixture(t)
	a := f.seedCandidate(t, "lst-a")
	f.seedCandidate(t, "lst-b")
	f.seedPreferences(t, a.SellerID)

	job := f.newJob(worker.RefreshConfig{}, nil)
	result := job.Run(context.Background())

	assert.Equal(t, 2, result.TotalListings)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 0, result.Failed)
	// Seller A has preferences matching listing B; seller B stored none.
	assert.Equal(t, 1, result.Matches)
}

func TestRefreshJob_Run_PublishesAlerts(t *testing.T) {
	f := newJobFixture(t)
	a := f.seedCandidate(t, "lst-a")
	f.seedCandidate(t, "lst-b")
	f.seedPreferences(t, a.SellerID)

	pub := &fakePublisher{}
	job := f.newJob(worker.RefreshConfig{}, pub)
	result := job.Run(context.Background())

	assert.Equal(t, 1, result.Alerts)
	alerts := pub.published()
	require.Len(t, alerts, 1)
	assert.Equal(t, "lst-a", alerts[0].ListingID)
	assert.Equal(t, a.SellerID, alerts[0].SellerID)
	assert.Equal(t, "lst-b", alerts[0].TopListingID)
	assert.Equal(t, 85, alerts[0].TopScore)
	assert.Equal(t, 1, alerts[0].MatchCount)
}

func TestRefreshJob_Run_AlertBelowThreshold(t *testing.T) {
	f := newJobFixture(t)
	a := f.seedCandidate(t, "lst-a")
	f.seedCandidate(t, "lst-b")
	f.seedPreferences(t, a.SellerID)

	pub := &fakePublisher{}
	job := f.newJob(worker.RefreshConfig{MinAlertScore: 90}, pub)
	result := job.Run(context.Background())

	assert.Equal(t, 0, result.Alerts)
	assert.Empty(t, pub.published())
	assert.Equal(t, 1, result.Matches)
}

func TestRefreshJob_Run_PublishFailure(t *testing.T) {
	f := newJobFixture(t)
	a := f.seedCandidate(t, "lst-a")
	f.seedCandidate(t, "lst-b")
	f.seedPreferences(t, a.SellerID)

	pub := &fakePublisher{err: errors.New("topic unavailable")}
	job := f.newJob(worker.RefreshConfig{}, pub)
	result := job.Run(context.Background())

	// A failed publish degrades the alert, not the refresh.
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 0, result.Alerts)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "lst-a", result.Errors[0].ListingID)
}

func TestRefreshJob_Run_WithConcurrency(t *testing.T) {
	f := newJobFixture(t)
	for i := 0; i < 10; i++ {
		f.seedCandidate(t, fmt.Sprintf("lst-%02d", i))
	}

	job := f.newJob(worker.RefreshConfig{Concurrency: 3}, nil)
	result := job.Run(context.Background())

	assert.Equal(t, 10, result.TotalListings)
	assert.Equal(t, 10, result.Successful)
}

func TestRefreshJob_Run_ContextCancellation(t *testing.T) {
	f := newJobFixture(t)
	for i := 0; i < 50; i++ {
		f.seedCandidate(t, fmt.Sprintf("lst-%02d", i))
	}

	job := f.newJob(worker.RefreshConfig{Concurrency: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := job.Run(ctx)

	// Should complete even if not all listings were processed.
	assert.NotNil(t, result)
}

func TestRefreshJob_GetMetrics(t *testing.T) {
	f := newJobFixture(t)
	f.seedCandidate(t, "lst-a")

	job := f.newJob(worker.RefreshConfig{}, nil)
	_ = job.Run(context.Background())

	metrics := job.GetMetrics()
	assert.Equal(t, int64(1), metrics.TotalRuns)
	assert.Equal(t, int64(1), metrics.ListingsRefreshed)
	assert.NotZero(t, metrics.LastRunAt)
	assert.Greater(t, metrics.LastRunDuration, time.Duration(0))
}

func TestRefreshJob_MetricsSnapshot(t *testing.T) {
	f := newJobFixture(t)
	job := f.newJob(worker.RefreshConfig{}, nil)

	_ = job.Run(context.Background())

	snapshot := job.MetricsSnapshot()

	assert.Contains(t, snapshot, "total_runs")
	assert.Contains(t, snapshot, "listings_refreshed")
	assert.Contains(t, snapshot, "matches_found")
	assert.Contains(t, snapshot, "alerts_published")
	assert.Contains(t, snapshot, "pairs_warmed")
	assert.Contains(t, snapshot, "last_run_at")
	assert.Contains(t, snapshot, "last_run_duration")
}

func TestRefreshJob_WarmDistanceCache(t *testing.T) {
	f := newJobFixture(t)
	f.seedCandidate(t, "lst-a")

	cfg := worker.RefreshConfig{
		WarmDistanceCache: true,
		HubCities:         []string{"New York, NY"},
	}
	job := f.newJob(cfg, nil)

	require.NoError(t, job.WarmDistanceCache(context.Background()))

	metrics := job.GetMetrics()
	assert.Equal(t, int64(1), metrics.PairsWarmed)

	// A second pass finds everything cached.
	require.NoError(t, job.WarmDistanceCache(context.Background()))
	metrics = job.GetMetrics()
	assert.Equal(t, int64(1), metrics.PairsWarmed)
}

func TestRefreshJob_WarmDistanceCache_Disabled(t *testing.T) {
	f := newJobFixture(t)
	f.seedCandidate(t, "lst-a")

	job := f.newJob(worker.RefreshConfig{WarmDistanceCache: false}, nil)

	require.NoError(t, job.WarmDistanceCache(context.Background()))
	assert.Equal(t, int64(0), job.GetMetrics().PairsWarmed)
}

func TestRefreshJob_Ping(t *testing.T) {
	f := newJobFixture(t)
	job := f.newJob(worker.RefreshConfig{}, nil)

	assert.NoError(t, job.Ping(context.Background()))
}

func TestRefreshJob_Ping_NoDistanceService(t *testing.T) {
	f := newJobFixture(t)
	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Logger:   zerolog.Nop(),
		Listings: f.listings,
		Matches:  f.matches,
	})

	assert.NoError(t, job.Ping(context.Background()))
}
