// Package telemetry provides metrics hooks for cancellation activity.
//
// The cancellation manager reports sweep and callback events through the
// Metrics interface. The default implementation is a no-op; OTelMetrics
// records the same events as OpenTelemetry counters and histograms.
//
// # Usage
//
//	metrics, err := telemetry.NewOTelMetrics()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m := cancellation.New(cancellation.WithMetrics(metrics))
//
// Instruments are created on the global otel MeterProvider; configure an SDK
// provider (exporters, views) before constructing OTelMetrics, or pass a
// specific meter with NewOTelMetricsWithMeter.
package telemetry
