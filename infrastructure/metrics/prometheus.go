// Package metrics provides the Prometheus-backed metrics collector for
// the matching engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jusmatch/matchengine/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It covers ranking-pass latency, degradation and cache
// counters, and the fair-score distribution.
type PrometheusMetrics struct {
	passLatency  *prometheus.HistogramVec
	passCounter  *prometheus.CounterVec
	cacheCounter *prometheus.CounterVec
	systemGauges *prometheus.GaugeVec
	fairScores   *prometheus.HistogramVec
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// all metrics in the global Prometheus registry. Construct it once per
// process; duplicate registration panics inside promauto.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		passLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "match_pass_duration_seconds",
				Help:    "Duration of ranking passes by operation and preset.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "preset"},
		),
		passCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "match_events_total",
				Help: "Ranking-pass events such as degraded mode, failed conflict checks, and learned-scorer fallbacks.",
			},
			[]string{"event", "preset"},
		),
		cacheCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "match_cache_events_total",
				Help: "Static-feature cache hits, misses, and store errors.",
			},
			[]string{"event", "op"},
		),
		systemGauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "match_system_state",
				Help: "Current engine state values such as candidate pool size.",
			},
			[]string{"metric"},
		),
		fairScores: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "match_score_distribution",
				Help:    "Distribution of computed scores by metric name.",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency records operation latency in the pass histogram.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	pm.passLatency.WithLabelValues(operation, labels["preset"]).Observe(duration.Seconds())
}

// RecordCounter increments the counter matching the metric name, routing
// cache events to their own family.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	switch metric {
	case "cache_hits_total", "cache_misses_total", "cache_store_errors_total":
		pm.cacheCounter.WithLabelValues(metric, labels["op"]).Add(value)
	default:
		pm.passCounter.WithLabelValues(metric, labels["preset"]).Add(value)
	}
}

// RecordGauge sets a system-state gauge.
func (pm *PrometheusMetrics) RecordGauge(metric string, value float64, _ map[string]string) {
	pm.systemGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram records a value in the score-distribution histogram.
// Scores live in the unit interval, so the buckets are linear.
func (pm *PrometheusMetrics) RecordHistogram(metric string, value float64, _ map[string]string) {
	pm.fairScores.WithLabelValues(metric).Observe(value)
}
