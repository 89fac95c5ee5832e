package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jusmatch/matchengine/internal/domain"
	"github.com/jusmatch/matchengine/internal/ports"
)

// DefaultTTL is how long static features stay fresh without an explicit
// invalidation.
const DefaultTTL = 15 * time.Minute

// keyPrefix namespaces feature entries in shared stores.
const keyPrefix = "match:static:"

// FeatureCache stores static per-lawyer feature values. Reads try the
// primary store first and fall through to the in-process fallback; writes
// go to both. A store error counts as a miss on read and is swallowed on
// write, so the ranking hot path only ever degrades to recomputation.
type FeatureCache struct {
	store    ports.CacheStore
	fallback *MemoryStore
	ttl      time.Duration
	metrics  ports.MetricsCollector
	logger   *slog.Logger
}

// NewFeatureCache creates a feature cache over the given store. A nil
// store leaves the in-process fallback as the only backend. A
// non-positive ttl selects DefaultTTL.
func NewFeatureCache(store ports.CacheStore, ttl time.Duration, metrics ports.MetricsCollector, logger *slog.Logger) *FeatureCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FeatureCache{
		store:    store,
		fallback: NewMemoryStore(),
		ttl:      ttl,
		metrics:  metrics,
		logger:   logger,
	}
}

// GetStatic returns the cached static features for a lawyer, or false
// when no fresh entry exists anywhere.
func (fc *FeatureCache) GetStatic(ctx context.Context, lawyerID string) (map[domain.FeatureCode]float64, bool) {
	key := keyPrefix + lawyerID

	if fc.store != nil {
		raw, ok, err := fc.store.Get(ctx, key)
		if err != nil {
			fc.logger.Debug("cache store get failed, trying fallback", "lawyer_id", lawyerID, "error", err)
			fc.metrics.RecordCounter("cache_store_errors_total", 1, map[string]string{"op": "get"})
		} else if ok {
			if features, decodeErr := decodeFeatures(raw); decodeErr == nil {
				fc.metrics.RecordCounter("cache_hits_total", 1, nil)
				return features, true
			}
			// A corrupt entry is unusable; drop it and recompute.
			_ = fc.store.Delete(ctx, key)
		}
	}

	raw, ok, _ := fc.fallback.Get(ctx, key)
	if !ok {
		fc.metrics.RecordCounter("cache_misses_total", 1, nil)
		return nil, false
	}
	features, err := decodeFeatures(raw)
	if err != nil {
		fc.metrics.RecordCounter("cache_misses_total", 1, nil)
		return nil, false
	}
	fc.metrics.RecordCounter("cache_hits_total", 1, nil)
	return features, true
}

// SetStatic stores static features for a lawyer under the configured TTL.
// Failures are logged and counted, never returned.
func (fc *FeatureCache) SetStatic(ctx context.Context, lawyerID string, features map[domain.FeatureCode]float64) {
	raw, err := encodeFeatures(features)
	if err != nil {
		fc.logger.Warn("failed to encode static features", "lawyer_id", lawyerID, "error", err)
		return
	}
	key := keyPrefix + lawyerID

	if fc.store != nil {
		if err := fc.store.Set(ctx, key, raw, fc.ttl); err != nil {
			fc.logger.Debug("cache store set failed", "lawyer_id", lawyerID, "error", err)
			fc.metrics.RecordCounter("cache_store_errors_total", 1, map[string]string{"op": "set"})
		}
	}
	_ = fc.fallback.Set(ctx, key, raw, fc.ttl)
}

// Invalidate removes a lawyer's static features from every backend. It is
// the hook called by profile-update workflows.
func (fc *FeatureCache) Invalidate(ctx context.Context, lawyerID string) error {
	key := keyPrefix + lawyerID

	var storeErr error
	if fc.store != nil {
		storeErr = fc.store.Delete(ctx, key)
		if storeErr != nil {
			fc.metrics.RecordCounter("cache_store_errors_total", 1, map[string]string{"op": "delete"})
		}
	}
	_ = fc.fallback.Delete(ctx, key)
	return storeErr
}

func encodeFeatures(features map[domain.FeatureCode]float64) ([]byte, error) {
	flat := make(map[string]float64, len(features))
	for code, v := range features {
		flat[string(code)] = v
	}
	return json.Marshal(flat)
}

func decodeFeatures(raw []byte) (map[domain.FeatureCode]float64, error) {
	var flat map[string]float64
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	out := make(map[domain.FeatureCode]float64, len(flat))
	for key, v := range flat {
		out[domain.FeatureCode(key)] = v
	}
	return out, nil
}
