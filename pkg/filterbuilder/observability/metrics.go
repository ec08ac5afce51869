package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records filter builder metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDispatch records an action with its latency and the number of
	// diagnostics it produced. An action with diagnostics was not applied.
	RecordDispatch(ctx context.Context, kind string, duration time.Duration, diagnostics int)

	// RecordValidation records a validation run.
	RecordValidation(ctx context.Context, valid bool, errors int)

	// RecordFilterSize records the number of conditions in the current tree.
	RecordFilterSize(ctx context.Context, conditions int)
}

type otelMetrics struct {
	actions       metric.Int64Counter
	actionLatency metric.Float64Histogram
	diagnostics   metric.Int64Counter
	validations   metric.Int64Counter
	invalidErrors metric.Int64Counter
	conditions    metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("filterbuilder")

	actions, err := meter.Int64Counter("filterbuilder.actions",
		metric.WithDescription("Number of dispatched filter actions"),
	)
	if err != nil {
		return nil, err
	}

	actionLatency, err := meter.Float64Histogram("filterbuilder.action.latency_ms",
		metric.WithDescription("Filter action latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	diagnostics, err := meter.Int64Counter("filterbuilder.diagnostics",
		metric.WithDescription("Number of diagnostics from ignored actions"),
	)
	if err != nil {
		return nil, err
	}

	validations, err := meter.Int64Counter("filterbuilder.validations",
		metric.WithDescription("Number of filter validations"),
	)
	if err != nil {
		return nil, err
	}

	invalidErrors, err := meter.Int64Counter("filterbuilder.validation.errors",
		metric.WithDescription("Number of validation errors reported"),
	)
	if err != nil {
		return nil, err
	}

	conditions, err := meter.Int64Histogram("filterbuilder.filter.conditions",
		metric.WithDescription("Conditions per filter tree"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		actions:       actions,
		actionLatency: actionLatency,
		diagnostics:   diagnostics,
		validations:   validations,
		invalidErrors: invalidErrors,
		conditions:    conditions,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordDispatch(ctx context.Context, kind string, duration time.Duration, diagnostics int) {
	attrs := metric.WithAttributes(
		attribute.String("action", kind),
		attribute.Bool("applied", diagnostics == 0),
	)
	m.actions.Add(ctx, 1, attrs)
	m.actionLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if diagnostics > 0 {
		m.diagnostics.Add(ctx, int64(diagnostics), metric.WithAttributes(attribute.String("action", kind)))
	}
}

func (m *otelMetrics) RecordValidation(ctx context.Context, valid bool, errors int) {
	m.validations.Add(ctx, 1, metric.WithAttributes(attribute.Bool("valid", valid)))
	if errors > 0 {
		m.invalidErrors.Add(ctx, int64(errors))
	}
}

func (m *otelMetrics) RecordFilterSize(ctx context.Context, conditions int) {
	m.conditions.Record(ctx, int64(conditions))
}
