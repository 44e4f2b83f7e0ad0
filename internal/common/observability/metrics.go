package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records per-customer run metrics through OpenTelemetry. The
// exporter registers with the default prometheus registry, so the values are
// served by the same /metrics handler as the promauto collectors.
type Observability struct {
	meterProvider   *metric.MeterProvider
	customerCounter otelmetric.Int64Counter
	customerTime    otelmetric.Float64Histogram
	batchTime       otelmetric.Float64Histogram
}

// New never fails; when the exporter cannot be built the returned value records nothing.
func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	customerCounter, _ := meter.Int64Counter(
		"intel.customers",
		otelmetric.WithDescription("Customer iterations by outcome"),
	)
	customerTime, _ := meter.Float64Histogram(
		"intel.customer.duration",
		otelmetric.WithDescription("Wall time of one customer iteration"),
		otelmetric.WithUnit("ms"),
	)
	batchTime, _ := meter.Float64Histogram(
		"intel.batch.duration",
		otelmetric.WithDescription("Wall time of a whole batch run"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:   provider,
		customerCounter: customerCounter,
		customerTime:    customerTime,
		batchTime:       batchTime,
	}
}

// NewNoop returns an Observability that records nothing.
func NewNoop() *Observability {
	return &Observability{}
}

func (o *Observability) RecordCustomer(ctx context.Context, outcome string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("outcome", outcome))
	if o.customerCounter != nil {
		o.customerCounter.Add(ctx, 1, attrs)
	}
	if o.customerTime != nil {
		o.customerTime.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) RecordBatch(ctx context.Context, customers int, duration time.Duration) {
	if o == nil || o.batchTime == nil {
		return
	}
	o.batchTime.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.Int("customers", customers),
	))
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
