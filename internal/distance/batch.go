package distance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gearswap/gearswap/internal/geo"
)

const (
	// DefaultBatchConcurrency caps how many pairs are computed at once.
	DefaultBatchConcurrency = 3

	// DefaultBatchPause is the rest between computation waves.
	DefaultBatchPause = 500 * time.Millisecond
)

// API tier labels reported in batch results.
const (
	APIGoogleWithFallback = "google_with_fallback"
	APIFreeOnly           = "free_only"
)

// BatchItem is one destination in a batch request, correlated by listing ID.
type BatchItem struct {
	ListingID string
	Location  string
}

// BatchItemResult pairs a computed result with the listing it belongs to.
type BatchItemResult struct {
	ListingID string `json:"listingId"`
	Result
}

// BatchResult is the outcome of a batch computation.
type BatchResult struct {
	UserLocation string            `json:"userLocation"`
	Results      []BatchItemResult `json:"results"`
	Cached       int               `json:"cached"`
	Calculated   int               `json:"calculated"`
	Invalid      int               `json:"invalid"`
	APIUsed      string            `json:"apiUsed"`
}

// CalculateBatch computes distances from one user location to many listing
// locations. Cache hits are served immediately; misses run in waves of at
// most three concurrent computations with a pause between waves.
//
// Results come back in the order items were given. An invalid user location
// is the only error; invalid item locations degrade to per-item results.
func (s *Service) CalculateBatch(ctx context.Context, userLocation string, items []BatchItem) (*BatchResult, error) {
	if err := geo.ValidateAddress(userLocation); err != nil {
		return nil, fmt.Errorf("user location: %w", err)
	}

	batch := &BatchResult{
		UserLocation: userLocation,
		Results:      make([]BatchItemResult, len(items)),
		APIUsed:      APIFreeOnly,
	}
	if s.routes != nil {
		batch.APIUsed = APIGoogleWithFallback
	}

	// First pass settles invalid items and cache hits, leaving only the
	// pairs that need real computation.
	var pending []int
	for i, item := range items {
		if !geo.IsValidAddress(item.Location) {
			batch.Invalid++
			batch.Results[i] = BatchItemResult{
				ListingID: item.ListingID,
				Result: Result{
					Origin:      userLocation,
					Destination: item.Location,
					Distance:    unavailableDistance(),
					Duration:    unavailableDuration(),
					Source:      SourceInvalid,
					Err:         "listing location is missing or invalid",
				},
			}
			continue
		}

		if cached, ok := s.cache.Get(userLocation, item.Location); ok {
			batch.Cached++
			batch.Results[i] = BatchItemResult{ListingID: item.ListingID, Result: *cached}
			continue
		}

		pending = append(pending, i)
	}

	for start := 0; start < len(pending); start += DefaultBatchConcurrency {
		end := start + DefaultBatchConcurrency
		if end > len(pending) {
			end = len(pending)
		}

		var wg sync.WaitGroup
		for _, idx := range pending[start:end] {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				item := items[idx]
				result := s.compute(ctx, userLocation, item.Location)
				s.storeIfResolved(userLocation, item.Location, result)
				batch.Results[idx] = BatchItemResult{ListingID: item.ListingID, Result: result}
			}(idx)
		}
		wg.Wait()

		batch.Calculated += end - start

		// Rest between waves, but not after the last one.
		if end < len(pending) {
			select {
			case <-time.After(s.batchPause):
			case <-ctx.Done():
			}
		}
	}

	s.logger.Info().
		Str("user_location", userLocation).
		Int("items", len(items)).
		Int("cached", batch.Cached).
		Int("calculated", batch.Calculated).
		Int("invalid", batch.Invalid).
		Str("api_used", batch.APIUsed).
		Msg("batch distance computation complete")

	return batch, nil
}
