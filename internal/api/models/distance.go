package models

import "github.com/gearswap/gearswap/internal/distance"

// DistanceRequest is the body for POST /v1/distance:calculate.
type DistanceRequest struct {
	Origin      string `json:"origin" validate:"required"`
	Destination string `json:"destination" validate:"required"`
}

// DistanceResponse wraps a single computed pair.
type DistanceResponse struct {
	Success bool            `json:"success"`
	Result  distance.Result `json:"result"`
}

// BatchListingRef identifies one listing location in a batch request.
type BatchListingRef struct {
	ListingID string `json:"listingId" validate:"required"`
	Location  string `json:"location"`
}

// BatchDistanceRequest is the body for POST /v1/distance:batch.
type BatchDistanceRequest struct {
	UserLocation string            `json:"userLocation" validate:"required"`
	Listings     []BatchListingRef `json:"listings" validate:"required"`
}

// BatchDistanceResponse is the batch computation outcome. Results correlate
// to the request by listing ID, not by position.
type BatchDistanceResponse struct {
	Success      bool                       `json:"success"`
	UserLocation string                     `json:"userLocation"`
	Results      []distance.BatchItemResult `json:"results"`
	Cached       int                        `json:"cached"`
	Calculated   int                        `json:"calculated"`
	Invalid      int                        `json:"invalid"`
	APIUsed      string                     `json:"apiUsed"`
}
