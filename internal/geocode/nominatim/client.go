// Package nominatim provides a client for the Nominatim search API, the free
// geocoding tier behind the distance estimator.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/gearswap/gearswap/internal/geo"
	"github.com/gearswap/gearswap/internal/geocode"
	"github.com/gearswap/gearswap/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "nominatim"

	// DefaultBaseURL is the Nominatim API base URL.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultTimeout bounds each individual attempt.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxRetries is the retry budget after the initial attempt.
	DefaultMaxRetries = 3

	// DefaultBackoffStep is the linear backoff increment between attempts
	// (wait step, 2*step, 3*step...). Nominatim's usage policy asks for
	// spaced-out retries.
	DefaultBackoffStep = 2 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to the public API).
	BaseURL string

	// UserAgent identifies this application to Nominatim (required by its
	// usage policy; defaults to "gearswap").
	UserAgent string

	// HTTPClient is the HTTP client to use (optional). If nil, a resilient
	// client with a circuit breaker and no transport-level retries is used;
	// retries are driven at this layer so that out-of-bounds results also
	// count as failed attempts.
	HTTPClient HTTPDoer

	// Timeout bounds each attempt (optional, defaults to 15s).
	Timeout time.Duration

	// MaxRetries is the retry budget after the first attempt (optional,
	// defaults to 3).
	MaxRetries *uint64

	// BackoffStep is the linear backoff increment (optional, defaults to 2s).
	BackoffStep time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Nominatim geocoding client.
type Client struct {
	baseURL     string
	userAgent   string
	httpClient  HTTPDoer
	maxRetries  uint64
	backoffStep time.Duration
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewClient creates a new Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "gearswap"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	maxRetries := uint64(DefaultMaxRetries)
	if cfg.MaxRetries != nil {
		maxRetries = *cfg.MaxRetries
	}

	backoffStep := cfg.BackoffStep
	if backoffStep == 0 {
		backoffStep = DefaultBackoffStep
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:       ProviderName,
			Timeout:    timeout,
			MaxRetries: 0, // retries happen at the attempt level below
			Registry:   cfg.Registry,
		})
	}

	return &Client{
		baseURL:     baseURL,
		userAgent:   userAgent,
		httpClient:  httpClient,
		maxRetries:  maxRetries,
		backoffStep: backoffStep,
		timeout:     timeout,
		logger:      cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Geocode resolves a free-text address to coordinates. Each attempt is
// bounded by the per-attempt timeout; transient failures, empty results,
// and out-of-bounds coordinates are retried with linear backoff. Returns
// geocode.ErrNoResult once the attempt budget is exhausted.
func (c *Client) Geocode(ctx context.Context, address string) (geo.Coordinate, error) {
	var result geo.Coordinate

	attempt := 0
	err := resilience.Retry(ctx, resilience.RetryConfig{
		MaxRetries: c.maxRetries,
		BackOff:    &resilience.LinearBackOff{Step: c.backoffStep},
	}, func() error {
		attempt++
		coord, err := c.attempt(ctx, address)
		if err != nil {
			c.logger.Debug().Err(err).
				Str("address", address).
				Int("attempt", attempt).
				Msg("geocoding attempt failed")
			return err
		}
		result = coord
		return nil
	})
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %s", geocode.ErrNoResult, address)
	}

	return result, nil
}

// attempt performs one search request and validates the result.
func (c *Client) attempt(ctx context.Context, address string) (geo.Coordinate, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("countrycodes", "us")

	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return geo.Coordinate{}, resilience.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return geo.Coordinate{}, &geocode.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach geocoding provider",
			Err:      geocode.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geo.Coordinate{}, &geocode.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("geocoding provider returned status %d", resp.StatusCode),
			Err:      geocode.ErrProviderUnavailable,
		}
	}

	var places []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return geo.Coordinate{}, fmt.Errorf("decoding response: %w", err)
	}

	if len(places) == 0 {
		return geo.Coordinate{}, geocode.ErrNoResult
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("parsing latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("parsing longitude %q: %w", places[0].Lon, err)
	}

	coord := geo.Coordinate{Lat: lat, Lon: lon}
	if err := geo.ValidateBounds(coord); err != nil {
		// Out-of-bounds results count as a miss for this attempt.
		c.logger.Warn().
			Str("address", address).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("geocoding result outside continental-US bounds")
		return geo.Coordinate{}, geocode.ErrNoResult
	}

	return coord, nil
}

// searchResult is one element of the Nominatim search response. The API
// encodes coordinates as strings.
type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

var _ geocode.Provider = (*Client)(nil)
