package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusmatch/matchengine/internal/domain"
)

var sampleFeatures = map[domain.FeatureCode]float64{
	domain.FeatureQualification: 0.7,
	domain.FeatureSuccessRate:   0.62,
	domain.FeatureGeo:           0.9,
	domain.FeatureReviews:       0.84,
	domain.FeatureFirm:          0.3,
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("set then get round-trips", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))

		got, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("entries expire at ttl", func(t *testing.T) {
		now := time.Now()
		s := NewMemoryStore()
		s.now = func() time.Time { return now }

		require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))

		_, ok, _ := s.Get(ctx, "k")
		assert.True(t, ok)

		now = now.Add(61 * time.Second)
		_, ok, _ = s.Get(ctx, "k")
		assert.False(t, ok)
		assert.Zero(t, s.Len())
	})

	t.Run("last writer wins", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Set(ctx, "k", []byte("a"), 0))
		require.NoError(t, s.Set(ctx, "k", []byte("b"), 0))

		got, _, _ := s.Get(ctx, "k")
		assert.Equal(t, []byte("b"), got)
	})

	t.Run("delete removes the entry", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
		require.NoError(t, s.Delete(ctx, "k"))

		_, ok, _ := s.Get(ctx, "k")
		assert.False(t, ok)
	})

	t.Run("returned slices do not alias the store", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Set(ctx, "k", []byte("abc"), 0))

		got, _, _ := s.Get(ctx, "k")
		got[0] = 'x'

		again, _, _ := s.Get(ctx, "k")
		assert.Equal(t, []byte("abc"), again)
	})
}

// brokenStore fails every operation, standing in for an unreachable
// external store.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (brokenStore) Delete(context.Context, string) error {
	return errors.New("connection refused")
}

func TestFeatureCache(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips through the primary store", func(t *testing.T) {
		fc := NewFeatureCache(NewMemoryStore(), time.Minute, nil, nil)
		fc.SetStatic(ctx, "lw-1", sampleFeatures)

		got, ok := fc.GetStatic(ctx, "lw-1")
		require.True(t, ok)
		assert.InDeltaMapValues(t, toFloatMap(sampleFeatures), toFloatMap(got), 1e-12)
	})

	t.Run("miss on unknown lawyer", func(t *testing.T) {
		fc := NewFeatureCache(NewMemoryStore(), time.Minute, nil, nil)
		_, ok := fc.GetStatic(ctx, "nobody")
		assert.False(t, ok)
	})

	t.Run("broken store degrades to the in-process fallback", func(t *testing.T) {
		fc := NewFeatureCache(brokenStore{}, time.Minute, nil, nil)
		fc.SetStatic(ctx, "lw-1", sampleFeatures)

		got, ok := fc.GetStatic(ctx, "lw-1")
		require.True(t, ok)
		assert.InDeltaMapValues(t, toFloatMap(sampleFeatures), toFloatMap(got), 1e-12)
	})

	t.Run("nil store uses only the fallback", func(t *testing.T) {
		fc := NewFeatureCache(nil, time.Minute, nil, nil)
		fc.SetStatic(ctx, "lw-1", sampleFeatures)

		_, ok := fc.GetStatic(ctx, "lw-1")
		assert.True(t, ok)
	})

	t.Run("invalidate removes from every backend", func(t *testing.T) {
		primary := NewMemoryStore()
		fc := NewFeatureCache(primary, time.Minute, nil, nil)
		fc.SetStatic(ctx, "lw-1", sampleFeatures)

		require.NoError(t, fc.Invalidate(ctx, "lw-1"))
		_, ok := fc.GetStatic(ctx, "lw-1")
		assert.False(t, ok)
		assert.Zero(t, primary.Len())
	})

	t.Run("corrupt primary entry is dropped and treated as a miss", func(t *testing.T) {
		primary := NewMemoryStore()
		fc := NewFeatureCache(primary, time.Minute, nil, nil)
		require.NoError(t, primary.Set(ctx, "match:static:lw-1", []byte("not json"), 0))

		_, ok := fc.GetStatic(ctx, "lw-1")
		assert.False(t, ok)
	})
}

func toFloatMap(m map[domain.FeatureCode]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}
