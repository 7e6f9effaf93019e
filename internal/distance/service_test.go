package distance

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gearswap/gearswap/internal/geo"
	"github.com/gearswap/gearswap/internal/geocode"
)

type mockRoutes struct {
	estimate *RouteEstimate
	err      error
	calls    atomic.Int32
}

func (m *mockRoutes) ComputeRoute(_ context.Context, _, _ string) (*RouteEstimate, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.estimate, nil
}

func (m *mockRoutes) Name() string { return "mock-routes" }

type mockGeocoder struct {
	coords map[string]geo.Coordinate
	calls  atomic.Int32
}

func (m *mockGeocoder) Geocode(_ context.Context, address string) (geo.Coordinate, error) {
	m.calls.Add(1)
	c, ok := m.coords[geo.NormalizeAddress(address)]
	if !ok {
		return geo.Coordinate{}, geocode.ErrNoResult
	}
	return c, nil
}

func (m *mockGeocoder) Name() string { return "mock-geocoder" }

func newTestService(routes RouteProvider, geocoder geocode.Provider) *Service {
	return NewService(ServiceConfig{
		Routes:          routes,
		Geocoder:        geocode.NewService(geocode.ServiceConfig{Provider: geocoder}),
		Cache:           NewCache(time.Minute),
		PolitenessDelay: time.Millisecond,
		BatchPause:      time.Millisecond,
	})
}

func TestService_Calculate_InvalidOrigin(t *testing.T) {
	svc := newTestService(nil, nil)

	_, err := svc.Calculate(context.Background(), "", "Miami, FL")
	if !errors.Is(err, geo.ErrInvalidAddress) {
		t.Fatalf("err = %v, want geo.ErrInvalidAddress", err)
	}
	if !strings.Contains(err.Error(), "origin") {
		t.Errorf("error %q does not name the origin", err)
	}
}

func TestService_Calculate_InvalidDestination(t *testing.T) {
	svc := newTestService(nil, nil)

	_, err := svc.Calculate(context.Background(), "Miami, FL", "n/a")
	if !errors.Is(err, geo.ErrInvalidAddress) {
		t.Fatalf("err = %v, want geo.ErrInvalidAddress", err)
	}
	if !strings.Contains(err.Error(), "destination") {
		t.Errorf("error %q does not name the destination", err)
	}
}

func TestService_Calculate_PaidTier(t *testing.T) {
	routes := &mockRoutes{estimate: &RouteEstimate{DistanceMeters: 37338, DurationSeconds: 1620}}
	svc := newTestService(routes, nil)

	result, err := svc.Calculate(context.Background(), "Miami, FL", "Fort Lauderdale, FL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Source != SourceGoogle {
		t.Errorf("Source = %q, want %q", result.Source, SourceGoogle)
	}
	if result.Distance.Miles != 23.2 {
		t.Errorf("Miles = %v, want 23.2", result.Distance.Miles)
	}
	if result.Distance.Text != "23 miles" {
		t.Errorf("Distance.Text = %q, want %q", result.Distance.Text, "23 miles")
	}
	if result.Duration.Text != "27m" {
		t.Errorf("Duration.Text = %q, want %q", result.Duration.Text, "27m")
	}
}

func TestService_Calculate_FallsBackToEstimateOnRoutesFailure(t *testing.T) {
	routes := &mockRoutes{err: errors.New("quota exceeded")}
	svc := newTestService(routes, nil)

	// Both sides resolve from the static city table.
	result, err := svc.Calculate(context.Background(), "New York, NY", "Los Angeles, CA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Source != SourceEstimated {
		t.Fatalf("Source = %q, want %q", result.Source, SourceEstimated)
	}
	if routes.calls.Load() != 1 {
		t.Errorf("routes calls = %d, want exactly 1 (no retry of the paid tier)", routes.calls.Load())
	}

	// Straight line NYC to LA is about 2445 miles; road factor 1.3 puts the
	// estimate near 3179.
	if result.Distance.Miles < 3100 || result.Distance.Miles > 3250 {
		t.Errorf("Miles = %v, want roughly 3179", result.Distance.Miles)
	}

	wantSecs := int(result.Distance.Miles / AverageSpeedMph * 3600)
	if diff := result.Duration.Seconds - wantSecs; diff < -1 || diff > 1 {
		t.Errorf("Seconds = %d, want about %d", result.Duration.Seconds, wantSecs)
	}
}

func TestService_Calculate_GeocodingFailedNamesSide(t *testing.T) {
	geocoder := &mockGeocoder{coords: map[string]geo.Coordinate{
		"miami, fl": {Lat: 25.7617, Lon: -80.1918},
	}}
	svc := newTestService(nil, geocoder)

	result, err := svc.Calculate(context.Background(), "Miami, FL", "Somewhere Obscure")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Source != SourceGeocodingFailed {
		t.Fatalf("Source = %q, want %q", result.Source, SourceGeocodingFailed)
	}
	if !strings.Contains(result.Err, "destination") {
		t.Errorf("Err = %q, does not name the failed side", result.Err)
	}
	if result.Distance.Miles != 0 || result.Duration.Seconds != 0 {
		t.Errorf("failure result carries nonzero values: %+v", result)
	}
	if result.Distance.Text == "" || result.Duration.Text == "" {
		t.Error("failure result has empty text")
	}
}

func TestService_Calculate_SecondCallServedFromCache(t *testing.T) {
	geocoder := &mockGeocoder{coords: map[string]geo.Coordinate{
		"miami, fl":    {Lat: 25.7617, Lon: -80.1918},
		"key west, fl": {Lat: 24.5551, Lon: -81.7800},
	}}
	svc := newTestService(nil, geocoder)

	first, err := svc.Calculate(context.Background(), "Miami, FL", "Key West, FL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	callsAfterFirst := geocoder.calls.Load()

	second, err := svc.Calculate(context.Background(), "MIAMI, FL", "key west, fl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if geocoder.calls.Load() != callsAfterFirst {
		t.Error("cache hit still reached the geocoder")
	}
	if second.Distance.Miles != first.Distance.Miles {
		t.Errorf("cached Miles = %v, want %v", second.Distance.Miles, first.Distance.Miles)
	}
}

func TestService_Calculate_FailureResultsNotCached(t *testing.T) {
	geocoder := &mockGeocoder{coords: map[string]geo.Coordinate{}}
	svc := newTestService(nil, geocoder)

	if _, err := svc.Calculate(context.Background(), "Somewhere Obscure", "Elsewhere Obscure"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if svc.cache.Len() != 0 {
		t.Errorf("cache Len = %d, want 0 after a failed computation", svc.cache.Len())
	}
}
