package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/observability"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/schema"
)

func TestTelemetry_Prometheus(t *testing.T) {
	tel, err := setupTelemetry(context.Background(), telemetryConfig{
		ServiceName:    serviceName,
		TraceExporter:  "none",
		MetricExporter: "prometheus",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })
	require.NotNil(t, tel.MetricsHandler)

	cfg, err := schema.FromYAML([]byte(usersYAML))
	require.NoError(t, err)
	router := newRouter(&service{
		schema:         cfg,
		name:           "users",
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:        observability.NewMetricsRecorder(),
		spans:          observability.NoopSpanManager{},
		metricsHandler: tel.MetricsHandler,
	})

	w := do(router, http.MethodPost, "/v1/validate", `{"and":[{"field":"age","operator":"gt","value":1}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "filterbuilder_validations")
}

func TestTelemetry_Disabled(t *testing.T) {
	tel, err := setupTelemetry(context.Background(), telemetryConfig{
		TraceExporter:  "none",
		MetricExporter: "none",
	})
	require.NoError(t, err)
	assert.Nil(t, tel.MetricsHandler)
	assert.NoError(t, tel.Shutdown(context.Background()))

	w := do(setupTestRouter(t), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTelemetry_UnknownExporter(t *testing.T) {
	_, err := setupTelemetry(context.Background(), telemetryConfig{TraceExporter: "zipkin", MetricExporter: "none"})
	assert.ErrorIs(t, err, ErrUnknownExporter)

	_, err = setupTelemetry(context.Background(), telemetryConfig{TraceExporter: "none", MetricExporter: "statsd"})
	assert.ErrorIs(t, err, ErrUnknownExporter)
}
