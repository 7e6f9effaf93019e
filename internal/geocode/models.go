// Package geocode resolves free-text addresses to coordinates with a static
// city table fast path and a pluggable provider behind it.
package geocode

import (
	"context"
	"errors"

	"github.com/gearswap/gearswap/internal/geo"
)

// Sentinel errors for geocoding operations.
var (
	// ErrNoResult indicates the provider returned no usable coordinates for
	// the address after all attempts. Callers treat this as "location
	// unknown", not as a failure of the request they are serving.
	ErrNoResult = errors.New("no geocoding result")

	// ErrProviderUnavailable indicates the geocoding provider is down or the
	// circuit breaker is open.
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
)

// Provider defines the interface for geocoding providers.
type Provider interface {
	// Geocode resolves a free-text address to coordinates.
	Geocode(ctx context.Context, address string) (geo.Coordinate, error)
	// Name returns the provider identifier for logging and health reporting.
	Name() string
}

// Error provides detailed error information from a geocoding provider.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
