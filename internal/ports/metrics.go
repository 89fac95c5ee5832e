package ports

import "time"

// MetricsCollector is the interface for operational metrics emitted by
// the engine. Implementations integrate with Prometheus or other
// observability backends. Implementations must never panic or return
// errors from recording; instrumentation can never fail the hot path.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric, e.g. degraded-mode
	// activations or cache hits.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a distribution, e.g. final
	// blended scores.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// NoopMetrics satisfies MetricsCollector with no-op recording. It is
// substituted whenever a real metrics backend is absent so call sites
// never branch on availability.
type NoopMetrics struct{}

// RecordLatency implements MetricsCollector.
func (NoopMetrics) RecordLatency(string, time.Duration, map[string]string) {}

// RecordCounter implements MetricsCollector.
func (NoopMetrics) RecordCounter(string, float64, map[string]string) {}

// RecordGauge implements MetricsCollector.
func (NoopMetrics) RecordGauge(string, float64, map[string]string) {}

// RecordHistogram implements MetricsCollector.
func (NoopMetrics) RecordHistogram(string, float64, map[string]string) {}

// Compile-time verification that NoopMetrics implements MetricsCollector.
var _ MetricsCollector = NoopMetrics{}
