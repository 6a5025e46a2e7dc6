// Package telemetry exports scan traces and metrics over OTLP.
package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/straja-ai/rakshak/internal/detect"
	"github.com/straja-ai/rakshak/internal/logging"
)

// Instrument names.
const (
	MetricScans             = "rakshak_scans_total"
	MetricScanDuration      = "rakshak_scan_duration_ms"
	MetricEstimatorFailures = "rakshak_estimator_failures_total"

	instrumentationName = "rakshak"
)

// Config controls telemetry setup.
type Config struct {
	Enabled  bool
	Endpoint string
	Protocol string // grpc | http
	Service  string
	Version  string
}

// Provider wires tracer/meter providers and records scan metrics. It
// implements detect.Recorder.
type Provider struct {
	Enabled bool
	tracer  trace.Tracer
	meter   metric.Meter

	scansCounter          metric.Int64Counter
	scanDuration          metric.Float64Histogram
	estimatorFailures     metric.Int64Counter
	shutdownTraceProvider func(context.Context) error
	shutdownMeterProvider func(context.Context) error
}

// NewProvider configures OTLP exporters and providers. When disabled it
// returns no-op providers.
func NewProvider(ctx context.Context, cfg Config, logger logging.Logger) (*Provider, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if !cfg.Enabled {
		return NewProviderFrom(tracenoop.NewTracerProvider(), noop.NewMeterProvider()), nil
	}

	protocol := strings.ToLower(strings.TrimSpace(cfg.Protocol))
	logger.Info("telemetry enabled; upload warnings are expected while no collector listens",
		logging.String("protocol", protocol),
		logging.String("endpoint", cfg.Endpoint),
	)

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			attribute.String("service.name", cfg.Service),
			attribute.String("service.version", cfg.Version),
		),
	)
	if err != nil {
		return nil, err
	}

	var (
		traceExp  sdktrace.SpanExporter
		metricExp sdkmetric.Exporter
	)
	switch protocol {
	case "", "grpc":
		traceExp, err = otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(cfg.Endpoint), otlptracegrpc.WithInsecure())
		if err != nil {
			return nil, err
		}
		metricExp, err = otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpoint(cfg.Endpoint), otlpmetricgrpc.WithInsecure())
		if err != nil {
			return nil, err
		}
	case "http":
		traceExp, err = otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(cfg.Endpoint), otlptracehttp.WithInsecure())
		if err != nil {
			return nil, err
		}
		metricExp, err = otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpoint(cfg.Endpoint), otlpmetrichttp.WithInsecure())
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("telemetry: unknown protocol %q", cfg.Protocol)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)))
	otel.SetMeterProvider(mp)

	p := NewProviderFrom(tp, mp)
	p.Enabled = true
	p.shutdownTraceProvider = tp.Shutdown
	p.shutdownMeterProvider = mp.Shutdown
	return p, nil
}

// NewProviderFrom builds a provider over existing tracer and meter
// providers, e.g. an SDK meter provider with a manual reader.
func NewProviderFrom(tp trace.TracerProvider, mp metric.MeterProvider) *Provider {
	p := &Provider{
		tracer: tp.Tracer(instrumentationName),
		meter:  mp.Meter(instrumentationName),
	}
	p.initInstruments()
	return p
}

func (p *Provider) initInstruments() {
	if p == nil {
		return
	}
	// Instrument errors are ignored to keep telemetry best-effort.
	p.scansCounter, _ = p.meter.Int64Counter(MetricScans,
		metric.WithDescription("Completed scans by kind, result and risk tier."))
	p.scanDuration, _ = p.meter.Float64Histogram(MetricScanDuration,
		metric.WithDescription("Scan latency."), metric.WithUnit("ms"))
	p.estimatorFailures, _ = p.meter.Int64Counter(MetricEstimatorFailures,
		metric.WithDescription("Estimator failures absorbed by a scorer."))
}

// Tracer returns the tracer.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil {
		return tracenoop.NewTracerProvider().Tracer("")
	}
	return p.tracer
}

// Meter returns the meter.
func (p *Provider) Meter() metric.Meter {
	if p == nil {
		return noop.NewMeterProvider().Meter("")
	}
	return p.meter
}

// Shutdown flushes providers.
func (p *Provider) Shutdown(ctx context.Context) {
	if p == nil {
		return
	}
	if p.shutdownTraceProvider != nil {
		_ = p.shutdownTraceProvider(ctx)
	}
	if p.shutdownMeterProvider != nil {
		_ = p.shutdownMeterProvider(ctx)
	}
}

// RecordScan emits scan metrics with safe labels only.
func (p *Provider) RecordScan(ctx context.Context, rec detect.ScanRecord) {
	if p == nil {
		return
	}
	labels := metric.WithAttributes(SafeAttributes(map[string]any{
		"kind":   string(rec.Kind),
		"result": string(rec.Result),
		"tier":   rec.Tier,
	})...)
	p.scansCounter.Add(ctx, 1, labels)
	p.scanDuration.Record(ctx, float64(rec.Duration.Microseconds())/1000, labels)
	for _, role := range rec.FailedEstimators {
		p.estimatorFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("role", role)))
	}
}
