// Package worker provides background job processing for GearSwap.
package worker

import (
	"time"
)

// RefreshConfig holds configuration for the match refresh job.
type RefreshConfig struct {
	// Concurrency is the number of listings scored concurrently.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for refreshing a single listing.
	// Default: 30 seconds
	Timeout time.Duration

	// MinAlertScore is the minimum top score that triggers a match alert
	// for the listing's seller.
	// Default: 70
	MinAlertScore int

	// WarmDistanceCache enables pre-computing distances between the hub
	// cities and active listing locations, so the first marketplace page
	// load in a major metro hits a warm cache.
	// Default: true
	WarmDistanceCache bool

	// HubCities are the metro areas used for distance cache warming.
	// If empty, uses DefaultHubCities.
	HubCities []string
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Concurrency:       3,
		Timeout:           30 * time.Second,
		MinAlertScore:     70,
		WarmDistanceCache: true,
		HubCities:         DefaultHubCities(),
	}
}

// DefaultHubCities returns the metro areas with the highest marketplace
// traffic. Each resolves from the static city table without a network
// call, so the warming pass never burns geocoder quota on the user side
// of the pair.
func DefaultHubCities() []string {
	return []string{
		"New York, NY",
		"Los Angeles, CA",
		"Chicago, IL",
		"Houston, TX",
		"Dallas, TX",
		"Miami, FL",
		"Seattle, WA",
		"Atlanta, GA",
	}
}

// withDefaults fills in zero-valued fields.
func (c RefreshConfig) withDefaults() RefreshConfig {
	def := DefaultRefreshConfig()
	if c.Concurrency == 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Timeout == 0 {
		c.Timeout = def.Timeout
	}
	if c.MinAlertScore == 0 {
		c.MinAlertScore = def.MinAlertScore
	}
	if len(c.HubCities) == 0 {
		c.HubCities = def.HubCities
	}
	return c
}
