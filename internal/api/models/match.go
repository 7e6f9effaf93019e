package models

import (
	"github.com/gearswap/gearswap/internal/listing"
	"github.com/gearswap/gearswap/internal/trade"
)

// MatchComputeRequest is the body for POST /v1/listings/{listingId}/matches:compute.
type MatchComputeRequest struct {
	// Preferences override the seller's stored trade preferences for this
	// computation. Optional.
	Preferences *listing.TradePreferences `json:"preferences,omitempty"`

	// Draft supplies the not-yet-persisted listing when the path uses the
	// preview sentinel instead of a real listing ID.
	Draft *listing.Listing `json:"draft,omitempty"`
}

// MatchComputeResponse is the scored match list, best first.
type MatchComputeResponse struct {
	Success bool           `json:"success"`
	Matches []*trade.Match `json:"matches"`
	Count   int            `json:"count"`
}
