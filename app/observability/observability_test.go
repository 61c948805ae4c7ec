package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Black-And-White-Club/inhouse-bot/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithoutTracing(t *testing.T) {
	var buf bytes.Buffer
	obs, err := Init(context.Background(), config.ObservabilityConfig{ServiceName: "inhouse-test", LogLevel: "debug"}, &buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = obs.Shutdown(context.Background()) })

	require.NotNil(t, obs.Tracer)
	require.NotNil(t, obs.RatingMetrics)

	obs.Logger.Debug("hello")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "inhouse-test", line["service"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "WARN", parseLevel("warn").String())
	assert.Equal(t, "INFO", parseLevel("nonsense").String())
}

func TestOpsRouter(t *testing.T) {
	obs, err := Init(context.Background(), config.ObservabilityConfig{ServiceName: "inhouse-test"}, &bytes.Buffer{})
	require.NoError(t, err)
	obs.RatingMetrics.RecordMatchCreated(context.Background(), "s1")

	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "metrics",
			path:       "/metrics",
			wantStatus: http.StatusOK,
			wantBody:   "inhouse_rating_matches_created_total",
		},
		{
			name:       "healthy",
			checks:     map[string]HealthCheck{"postgres": func(context.Context) error { return nil }},
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   `"postgres":"ok"`,
		},
		{
			name: "unhealthy",
			checks: map[string]HealthCheck{
				"postgres": func(context.Context) error { return nil },
				"nats":     func(context.Context) error { return errors.New("disconnected") },
			},
			path:       "/healthz",
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `"nats":"disconnected"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewOpsRouter(obs.Registry, tt.checks).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
