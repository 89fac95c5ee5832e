package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusmatch/matchengine/internal/ports"
)

// Shared instance: promauto registers in the global registry and panics
// on duplicates, so all tests in this package use one collector.
var testMetrics *PrometheusMetrics

func init() {
	testMetrics = NewPrometheusMetrics()
}

func TestNewPrometheusMetrics(t *testing.T) {
	pm := testMetrics
	require.NotNil(t, pm)
	assert.NotNil(t, pm.passLatency)
	assert.NotNil(t, pm.passCounter)
	assert.NotNil(t, pm.cacheCounter)
	assert.NotNil(t, pm.systemGauges)
	assert.NotNil(t, pm.fairScores)

	var _ ports.MetricsCollector = pm
}

func TestPrometheusMetrics_RecordLatency(t *testing.T) {
	pm := testMetrics

	tests := []struct {
		name      string
		operation string
		labels    map[string]string
	}{
		{"with preset label", "rank", map[string]string{"preset": "balanced"}},
		{"without preset label", "rank", nil},
		{"empty labels", "invalidate", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				pm.RecordLatency(tt.operation, 100*time.Millisecond, tt.labels)
			})
		})
	}
}

func TestPrometheusMetrics_RecordCounter(t *testing.T) {
	pm := testMetrics

	tests := []struct {
		name   string
		metric string
		labels map[string]string
	}{
		{"degraded pass", "match_degraded_total", nil},
		{"failed conflict check", "match_conflict_check_failed_total", nil},
		{"learned-scorer fallback", "match_ltr_failed_total", nil},
		{"cache hit", "cache_hits_total", nil},
		{"cache store error", "cache_store_errors_total", map[string]string{"op": "get"}},
		{"unknown preset", "weights_unknown_preset_total", map[string]string{"preset": "mystery"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				pm.RecordCounter(tt.metric, 1, tt.labels)
			})
		})
	}

	t.Run("negative value panics", func(t *testing.T) {
		// Prometheus counters reject negative increments.
		assert.Panics(t, func() {
			pm.RecordCounter("match_degraded_total", -1, nil)
		})
	})
}

func TestPrometheusMetrics_RecordGaugeAndHistogram(t *testing.T) {
	pm := testMetrics

	assert.NotPanics(t, func() {
		pm.RecordGauge("rank_candidates", 42, nil)
		pm.RecordHistogram("rank_fair_score", 0.73, nil)
		pm.RecordHistogram("rank_fair_score", 0, nil)
	})
}

func TestPrometheusMetrics_InterfaceCompliance(t *testing.T) {
	var collector ports.MetricsCollector = testMetrics
	require.NotNil(t, collector)

	assert.NotPanics(t, func() {
		collector.RecordLatency("rank", time.Millisecond, map[string]string{"preset": "fast"})
		collector.RecordCounter("match_degraded_total", 1, nil)
		collector.RecordGauge("rank_candidates", 7, nil)
		collector.RecordHistogram("rank_fair_score", 0.5, nil)
	})
}
