package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName identifies cancelkit instruments to the MeterProvider.
const meterName = "github.com/vinayprograms/cancelkit"

// OTelMetrics records cancellation events as OpenTelemetry instruments.
type OTelMetrics struct {
	cancelsStarted   metric.Int64Counter
	cancelsCompleted metric.Int64Counter
	sweepDuration    metric.Float64Histogram
	callbacksFired   metric.Int64Counter
	callbacksFailed  metric.Int64Counter
	rejected         metric.Int64Counter
}

var _ Metrics = (*OTelMetrics)(nil)

// NewOTelMetrics creates metrics on the global MeterProvider.
func NewOTelMetrics() (*OTelMetrics, error) {
	return NewOTelMetricsWithMeter(otel.Meter(meterName))
}

// NewOTelMetricsWithMeter creates metrics on a specific meter.
func NewOTelMetricsWithMeter(meter metric.Meter) (*OTelMetrics, error) {
	m := &OTelMetrics{}
	var err error

	m.cancelsStarted, err = meter.Int64Counter("cancelkit.cancels.started",
		metric.WithDescription("Cancellation sweeps started"))
	if err != nil {
		return nil, fmt.Errorf("create cancels.started counter: %w", err)
	}

	m.cancelsCompleted, err = meter.Int64Counter("cancelkit.cancels.completed",
		metric.WithDescription("Cancellation sweeps completed"))
	if err != nil {
		return nil, fmt.Errorf("create cancels.completed counter: %w", err)
	}

	m.sweepDuration, err = meter.Float64Histogram("cancelkit.sweep.duration",
		metric.WithDescription("Cancellation sweep duration"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create sweep.duration histogram: %w", err)
	}

	m.callbacksFired, err = meter.Int64Counter("cancelkit.callbacks.fired",
		metric.WithDescription("Cancellation callbacks fired"))
	if err != nil {
		return nil, fmt.Errorf("create callbacks.fired counter: %w", err)
	}

	m.callbacksFailed, err = meter.Int64Counter("cancelkit.callbacks.failed",
		metric.WithDescription("Cancellation callbacks that returned an error or panicked"))
	if err != nil {
		return nil, fmt.Errorf("create callbacks.failed counter: %w", err)
	}

	m.rejected, err = meter.Int64Counter("cancelkit.registrations.rejected",
		metric.WithDescription("Callback registrations rejected"))
	if err != nil {
		return nil, fmt.Errorf("create registrations.rejected counter: %w", err)
	}

	return m, nil
}

// CancelStarted records the start of a sweep.
func (m *OTelMetrics) CancelStarted() {
	m.cancelsStarted.Add(context.Background(), 1)
}

// CancelCompleted records a finished sweep and its duration.
func (m *OTelMetrics) CancelCompleted(elapsed time.Duration) {
	ctx := context.Background()
	m.cancelsCompleted.Add(ctx, 1)
	m.sweepDuration.Record(ctx, elapsed.Seconds())
}

// CallbackFired records one callback invocation.
func (m *OTelMetrics) CallbackFired() {
	m.callbacksFired.Add(context.Background(), 1)
}

// CallbackFailed records a failed callback, labelled by diagnostic name.
func (m *OTelMetrics) CallbackFailed(name string) {
	m.callbacksFailed.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("callback", name)))
}

// RegistrationRejected records one rejected registration.
func (m *OTelMetrics) RegistrationRejected() {
	m.rejected.Add(context.Background(), 1)
}
