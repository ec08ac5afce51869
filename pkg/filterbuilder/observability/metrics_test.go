package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupMetricsTest(t *testing.T) *sdkmetric.ManualReader {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	original := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	t.Cleanup(func() {
		otel.SetMeterProvider(original)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("shutdown meter provider: %v", err)
		}
	})
	return reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumByAttr(t *testing.T, m *metricdata.Metrics, key, value string) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64], got %T", m.Data)

	var total int64
	for _, dp := range sum.DataPoints {
		v, found := dp.Attributes.Value(attribute.Key(key))
		if key == "" || (found && v.Emit() == value) {
			total += dp.Value
		}
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	setupMetricsTest(t)

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)
	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop)
}

func TestRecordDispatch(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordDispatch(ctx, "add_condition", 2*time.Millisecond, 0)
	m.RecordDispatch(ctx, "add_condition", time.Millisecond, 0)
	m.RecordDispatch(ctx, "remove_group", time.Millisecond, 1)

	rm := collectMetrics(t, reader)

	actions := findMetric(rm, "filterbuilder.actions")
	assert.Equal(t, int64(2), sumByAttr(t, actions, "action", "add_condition"))
	assert.Equal(t, int64(1), sumByAttr(t, actions, "applied", "false"))

	diags := findMetric(rm, "filterbuilder.diagnostics")
	assert.Equal(t, int64(1), sumByAttr(t, diags, "action", "remove_group"))

	latency := findMetric(rm, "filterbuilder.action.latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

func TestRecordValidation(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordValidation(ctx, true, 0)
	m.RecordValidation(ctx, false, 3)

	rm := collectMetrics(t, reader)
	validations := findMetric(rm, "filterbuilder.validations")
	assert.Equal(t, int64(1), sumByAttr(t, validations, "valid", "true"))
	assert.Equal(t, int64(1), sumByAttr(t, validations, "valid", "false"))

	errs := findMetric(rm, "filterbuilder.validation.errors")
	assert.Equal(t, int64(3), sumByAttr(t, errs, "", ""))
}

func TestRecordFilterSize(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordFilterSize(context.Background(), 4)
	m.RecordFilterSize(context.Background(), 6)

	rm := collectMetrics(t, reader)
	size := findMetric(rm, "filterbuilder.filter.conditions")
	require.NotNil(t, size)
	hist, ok := size.Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, int64(10), hist.DataPoints[0].Sum)
}
