package googleroutes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ComputeRoute_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/directions/v2:computeRoutes", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Equal(t, "routes.distanceMeters,routes.duration", r.Header.Get("X-Goog-FieldMask"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "DRIVE", body["travelMode"])
		assert.Equal(t, "TRAFFIC_UNAWARE", body["routingPreference"])
		assert.Equal(t, "IMPERIAL", body["units"])

		_, _ = w.Write([]byte(`{"routes": [{"distanceMeters": 37338, "duration": "1620s"}]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: server.URL})

	estimate, err := client.ComputeRoute(context.Background(), "Miami, FL", "Fort Lauderdale, FL")
	require.NoError(t, err)
	assert.Equal(t, 37338, estimate.DistanceMeters)
	assert.Equal(t, 1620, estimate.DurationSeconds)
}

func TestClient_ComputeRoute_NoRoutes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"routes": []}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.ComputeRoute(context.Background(), "Miami, FL", "Orlando, FL")
	assert.ErrorIs(t, err, ErrNoRoutes)
}

func TestClient_ComputeRoute_SingleAttemptOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.ComputeRoute(context.Background(), "Miami, FL", "Orlando, FL")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ComputeRoute_MalformedDuration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"routes": [{"distanceMeters": 1000, "duration": "27 minutes"}]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.ComputeRoute(context.Background(), "Miami, FL", "Orlando, FL")
	require.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1620s", 1620, false},
		{"0s", 0, false},
		{"59.5s", 59, false},
		{"1620", 0, true},
		{"-5s", 0, true},
		{"abcs", 0, true},
	}

	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
