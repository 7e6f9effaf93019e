package geocode

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/gearswap/gearswap/internal/geo"
)

// ServiceConfig holds configuration for the geocode resolver.
type ServiceConfig struct {
	// Provider is the network geocoding provider. May be nil, in which case
	// only the static city table can produce hits.
	Provider Provider

	// Logger for resolver operations.
	Logger zerolog.Logger
}

// Service resolves addresses, checking the placeholder blocklist and the
// static city table before touching the provider.
type Service struct {
	provider Provider
	logger   zerolog.Logger
}

// NewService creates a new geocode resolver.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Resolve returns coordinates for an address, or nil when the location is
// unknown. Placeholder addresses are rejected with geo.ErrInvalidAddress
// before any network call; provider failures are logged and collapsed into
// a nil result with ErrNoResult.
func (s *Service) Resolve(ctx context.Context, address string) (*geo.Coordinate, error) {
	if err := geo.ValidateAddress(address); err != nil {
		return nil, err
	}

	if c, ok := geo.LookupCity(address); ok {
		s.logger.Debug().
			Str("address", address).
			Msg("static city table hit")
		return &c, nil
	}

	if s.provider == nil {
		return nil, ErrNoResult
	}

	c, err := s.provider.Geocode(ctx, address)
	if err != nil {
		if !errors.Is(err, ErrNoResult) {
			s.logger.Warn().Err(err).
				Str("address", address).
				Str("provider", s.provider.Name()).
				Msg("geocoding failed")
		}
		return nil, ErrNoResult
	}

	return &c, nil
}
