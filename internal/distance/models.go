// Package distance produces best-effort driving distance and duration
// estimates between free-text addresses, preferring an authoritative routing
// provider and degrading through a free geocoder with Haversine math.
package distance

import (
	"context"
	"fmt"
	"math"
)

// MetersPerMile converts between the two distance units in play.
const MetersPerMile = 1609.34

// RoadFactor approximates road distance from great-circle distance.
const RoadFactor = 1.3

// AverageSpeedMph is the flat speed assumption for estimated drive times.
const AverageSpeedMph = 35.0

// Source identifies which tier produced a result.
type Source string

const (
	// SourceGoogle means the paid routing provider answered.
	SourceGoogle Source = "google"
	// SourceEstimated means the free geocoder + Haversine estimate was used.
	SourceEstimated Source = "estimated"
	// SourceGeocodingFailed means one side of the pair could not be geocoded.
	SourceGeocodingFailed Source = "geocoding_failed"
	// SourceInvalid means the address failed validation before any lookup.
	SourceInvalid Source = "invalid"
	// SourceError means an unexpected failure was converted into a result.
	SourceError Source = "error"
)

// Distance is a resolved distance with a human-renderable text form.
type Distance struct {
	// Text is always renderable, even on failure paths.
	Text string `json:"text"`
	// Meters is the distance in meters, consistent with Miles.
	Meters int `json:"value"`
	// Miles is the distance in miles, rounded to one decimal.
	Miles float64 `json:"miles"`
}

// Duration is a resolved travel time with a human-renderable text form.
type Duration struct {
	Text    string `json:"text"`
	Seconds int    `json:"value"`
}

// Result represents one resolved origin -> destination computation.
type Result struct {
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Distance    Distance `json:"distance"`
	Duration    Duration `json:"duration"`
	Source      Source   `json:"source"`
	Err         string   `json:"error,omitempty"`
}

// RouteEstimate is what a routing provider returns for one pair.
type RouteEstimate struct {
	DistanceMeters  int
	DurationSeconds int
}

// RouteProvider is the paid routing tier. Implementations make a single
// attempt; any failure sends the orchestrator to the fallback tier.
type RouteProvider interface {
	ComputeRoute(ctx context.Context, origin, destination string) (*RouteEstimate, error)
	Name() string
}

// newDistance builds a Distance from a mile value, rounding miles to one
// decimal and keeping meters consistent with the rounded figure.
func newDistance(miles float64) Distance {
	rounded := math.Round(miles*10) / 10
	return Distance{
		Text:   FormatDistanceText(rounded),
		Meters: int(math.Round(rounded * MetersPerMile)),
		Miles:  rounded,
	}
}

// newDuration builds a Duration from a second count.
func newDuration(seconds int) Duration {
	return Duration{
		Text:    FormatDurationText(seconds),
		Seconds: seconds,
	}
}

// unavailableDistance and unavailableDuration keep failure results
// renderable without nil checks in the UI.
func unavailableDistance() Distance {
	return Distance{Text: "Distance unavailable"}
}

func unavailableDuration() Duration {
	return Duration{Text: "Time unavailable"}
}

// FormatDistanceText renders miles for display: "< 1 mile" below one mile,
// one decimal below ten miles, whole miles above.
func FormatDistanceText(miles float64) string {
	switch {
	case miles < 1:
		return "< 1 mile"
	case miles < 10:
		return fmt.Sprintf("%.1f miles", miles)
	default:
		return fmt.Sprintf("%.0f miles", miles)
	}
}

// FormatDurationText renders seconds as "Hh Mm", omitting the hour component
// when zero.
func FormatDurationText(seconds int) string {
	minutes := int(math.Round(float64(seconds) / 60))
	hours := minutes / 60
	minutes %= 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
