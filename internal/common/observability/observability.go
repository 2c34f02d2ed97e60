// internal/common/observability/observability.go
package observability

import (
	"context"
	"time"

	"getconnected/internal/common/logger"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the OpenTelemetry meter and tracer used by the
// analysis service. Metrics are exported through the prometheus registry
// passed to New.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	analysisCount  otelmetric.Int64Counter
	analysisTime   otelmetric.Float64Histogram
}

// Option customizes New.
type Option func(*options)

type options struct {
	registerer promclient.Registerer
	spanProc   sdktrace.SpanProcessor
}

// WithRegisterer exports metrics to reg instead of the default registry.
func WithRegisterer(reg promclient.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithSpanProcessor attaches a span processor, e.g. a recorder in tests.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) { o.spanProc = sp }
}

func New(serviceName string, log logger.Logger, opts ...Option) *Observability {
	o := options{registerer: promclient.DefaultRegisterer}
	for _, opt := range opts {
		opt(&o)
	}

	tpOpts := []sdktrace.TracerProviderOption{}
	if o.spanProc != nil {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(o.spanProc))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)
	obs := &Observability{
		tracerProvider: tp,
		tracer:         tp.Tracer(serviceName),
	}

	exporter, err := prometheus.New(prometheus.WithRegisterer(o.registerer))
	if err != nil {
		log.Warn("otel prometheus exporter unavailable, analysis metrics disabled", map[string]interface{}{
			"error": err.Error(),
		})
		meter := noop.NewMeterProvider().Meter(serviceName)
		obs.analysisCount, _ = meter.Int64Counter("analysis.runs")
		obs.analysisTime, _ = meter.Float64Histogram("analysis.duration")
		return obs
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	meter := provider.Meter(serviceName)
	obs.meterProvider = provider

	obs.analysisCount, _ = meter.Int64Counter(
		"analysis.runs",
		otelmetric.WithDescription("Number of group analyses run"),
	)
	obs.analysisTime, _ = meter.Float64Histogram(
		"analysis.duration",
		otelmetric.WithDescription("Group analysis duration"),
		otelmetric.WithUnit("ms"),
	)
	return obs
}

// StartSpan starts a span named name under ctx.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordAnalysis records one analysis run of the given kind.
func (o *Observability) RecordAnalysis(ctx context.Context, kind, outcome string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	)
	o.analysisCount.Add(ctx, 1, attrs)
	o.analysisTime.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

func (o *Observability) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := o.tracerProvider.Shutdown(ctx); err != nil {
		return err
	}
	if o.meterProvider != nil {
		return o.meterProvider.Shutdown(ctx)
	}
	return nil
}
