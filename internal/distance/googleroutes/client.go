// Package googleroutes provides a client for the Google Routes API
// computeRoutes endpoint, the paid tier of the distance estimator.
package googleroutes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gearswap/gearswap/internal/distance"
	"github.com/gearswap/gearswap/internal/provider/resilience"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "google-routes"

	// DefaultBaseURL is the Routes API base URL.
	DefaultBaseURL = "https://routes.googleapis.com"

	// DefaultTimeout bounds the single routing attempt. The orchestrator
	// falls through to the free tier rather than retrying.
	DefaultTimeout = 10 * time.Second
)

// ErrNoRoutes indicates the API answered but returned no routes.
var ErrNoRoutes = errors.New("no routes returned")

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Routes API client.
type ClientConfig struct {
	// APIKey is the Routes API key (required).
	APIKey string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional). If nil, a resilient
	// client with a circuit breaker and no retries is used; the fallback
	// tier is the retry strategy for this provider.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Google Routes API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Routes API client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:       ProviderName,
			Timeout:    timeout,
			MaxRetries: 0, // single attempt; failures degrade to the free tier
			Registry:   cfg.Registry,
		})
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// ComputeRoute requests a driving route between two addresses. Any deviation
// from the expected response shape is treated as failure.
func (c *Client) ComputeRoute(ctx context.Context, origin, destination string) (*distance.RouteEstimate, error) {
	body, err := json.Marshal(computeRoutesRequest{
		Origin:            waypoint{Address: origin},
		Destination:       waypoint{Address: destination},
		TravelMode:        "DRIVE",
		RoutingPreference: "TRAFFIC_UNAWARE",
		Units:             "IMPERIAL",
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.baseURL + "/directions/v2:computeRoutes"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", "routes.distanceMeters,routes.duration")

	c.logger.Debug().
		Str("origin", origin).
		Str("destination", destination).
		Msg("requesting route from routes API")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routes API returned status %d", resp.StatusCode)
	}

	var routesResp computeRoutesResponse
	if err := json.Unmarshal(respBody, &routesResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(routesResp.Routes) == 0 {
		return nil, ErrNoRoutes
	}

	route := routesResp.Routes[0]
	durationSecs, err := parseDuration(route.Duration)
	if err != nil {
		return nil, fmt.Errorf("parsing duration %q: %w", route.Duration, err)
	}

	return &distance.RouteEstimate{
		DistanceMeters:  route.DistanceMeters,
		DurationSeconds: durationSecs,
	}, nil
}

// parseDuration parses the API's "<seconds>s" duration encoding.
func parseDuration(d string) (int, error) {
	trimmed := strings.TrimSuffix(d, "s")
	if trimmed == d {
		return 0, fmt.Errorf("missing trailing 's'")
	}
	secs, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, err
	}
	if secs < 0 {
		return 0, fmt.Errorf("negative duration")
	}
	return int(secs), nil
}

var _ distance.RouteProvider = (*Client)(nil)
