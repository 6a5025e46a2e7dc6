package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/straja-ai/rakshak/internal/detect"
	"github.com/straja-ai/rakshak/internal/safety"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestRecordScanEmitsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	p := NewProviderFrom(tracenoop.NewTracerProvider(), sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	rec := detect.ScanRecord{
		Kind:             detect.KindURL,
		Result:           detect.ResultPhishing,
		Tier:             safety.High,
		Duration:         2500 * time.Microsecond,
		Input:            "http://192.168.1.1/login",
		FailedEstimators: []string{"url-rf"},
	}
	p.RecordScan(context.Background(), rec)
	p.RecordScan(context.Background(), rec)

	metrics := collect(t, reader)

	scans, ok := metrics[MetricScans].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, scans.DataPoints, 1)
	dp := scans.DataPoints[0]
	assert.Equal(t, int64(2), dp.Value)
	tier, _ := dp.Attributes.Value(attribute.Key("tier"))
	assert.Equal(t, "HIGH", tier.AsString())
	result, _ := dp.Attributes.Value(attribute.Key("result"))
	assert.Equal(t, "phishing", result.AsString())
	for _, kv := range dp.Attributes.ToSlice() {
		assert.NotEqual(t, rec.Input, kv.Value.Emit(), "scanned input must not become a label")
	}

	dur, ok := metrics[MetricScanDuration].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Equal(t, 5.0, dur.DataPoints[0].Sum)

	failures, ok := metrics[MetricEstimatorFailures].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(2), failures.DataPoints[0].Value)
}

func TestDisabledProviderIsNoop(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{}, nil)
	require.NoError(t, err)
	assert.False(t, p.Enabled)
	p.RecordScan(context.Background(), detect.ScanRecord{Kind: detect.KindMessage})
	p.Shutdown(context.Background())

	var nilProvider *Provider
	nilProvider.RecordScan(context.Background(), detect.ScanRecord{})
	assert.NotNil(t, nilProvider.Tracer())
}

func TestUnknownProtocolFails(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, Endpoint: "localhost:4317", Protocol: "carrier-pigeon"}, nil)
	assert.ErrorContains(t, err, "unknown protocol")
}
