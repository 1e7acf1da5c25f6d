// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the OTel meter and tracer used by the workflows.
type Observability struct {
	meterProvider  *metric.MeterProvider
	meter          otelmetric.Meter
	stepCounter    otelmetric.Int64Counter
	stepDuration   otelmetric.Float64Histogram
	tracer         trace.Tracer
	tracerShutdown func(context.Context) error
}

// New wires the meter to the Prometheus exporter and, when jaegerEndpoint is set,
// the tracer to Jaeger. Failures degrade to no-op instruments.
func New(serviceName, jaegerEndpoint string) *Observability {
	o := &Observability{}

	tracer, shutdown, err := newTracer(serviceName, jaegerEndpoint)
	if err != nil {
		log.Printf("Failed to create Jaeger exporter: %v", err)
	}
	o.tracer = tracer
	o.tracerShutdown = shutdown

	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	o.meterProvider = provider
	o.meter = provider.Meter(serviceName)
	o.stepCounter, _ = o.meter.Int64Counter(
		"workflow.steps",
		otelmetric.WithDescription("Workflow steps executed"),
	)
	o.stepDuration, _ = o.meter.Float64Histogram(
		"workflow.step.duration",
		otelmetric.WithDescription("Workflow step duration"),
		otelmetric.WithUnit("ms"),
	)
	return o
}

// NewNoop returns instruments that record nothing.
func NewNoop() *Observability {
	return &Observability{}
}

// RecordStep counts one workflow step and its duration.
func (o *Observability) RecordStep(ctx context.Context, step string, duration time.Duration, status string) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	)
	if o.stepCounter != nil {
		o.stepCounter.Add(ctx, 1, attrs)
	}
	if o.stepDuration != nil {
		o.stepDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerShutdown != nil {
		_ = o.tracerShutdown(ctx)
	}
}
