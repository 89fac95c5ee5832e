package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jusmatch/matchengine/internal/domain"
	"github.com/jusmatch/matchengine/internal/ports"
)

// fakeAvailability counts calls and fails the first failUntil attempts.
type fakeAvailability struct {
	mu        sync.Mutex
	calls     int
	failUntil int
	delay     time.Duration
}

func (f *fakeAvailability) CheckAvailable(ctx context.Context, ids []string) (map[string]bool, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if n <= f.failUntil {
		return nil, errors.New("upstream unavailable")
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (f *fakeAvailability) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeScorer returns a fixed score, failing the first failUntil attempts.
type fakeScorer struct {
	calls     int
	failUntil int
	score     float64
}

func (f *fakeScorer) Score(_ context.Context, _ map[domain.FeatureCode]float64) (float64, error) {
	f.calls++
	if f.calls <= f.failUntil {
		return 0, errors.New("model offline")
	}
	return f.score, nil
}

// recordingCollector captures counter labels for assertions.
type recordingCollector struct {
	ports.NoopMetrics
	mu       sync.Mutex
	statuses []string
}

func (r *recordingCollector) RecordCounter(_ string, _ float64, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, labels["status"])
}

func TestAvailabilityTimeout(t *testing.T) {
	slow := &fakeAvailability{delay: time.Second}
	svc := ChainAvailability(slow, AvailabilityTimeout(10*time.Millisecond))

	start := time.Now()
	_, err := svc.CheckAvailable(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestAvailabilityRateLimit(t *testing.T) {
	t.Run("burst passes immediately", func(t *testing.T) {
		svc := ChainAvailability(&fakeAvailability{}, AvailabilityRateLimit(rate.Limit(1), 2))

		start := time.Now()
		for i := 0; i < 2; i++ {
			_, err := svc.CheckAvailable(context.Background(), []string{"a"})
			require.NoError(t, err)
		}
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("canceled context aborts the wait", func(t *testing.T) {
		svc := ChainAvailability(&fakeAvailability{}, AvailabilityRateLimit(rate.Limit(0.001), 1))

		_, err := svc.CheckAvailable(context.Background(), []string{"a"})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = svc.CheckAvailable(ctx, []string{"a"})
		require.Error(t, err)
	})
}

func TestAvailabilityRetry(t *testing.T) {
	t.Run("recovers from transient failures", func(t *testing.T) {
		flaky := &fakeAvailability{failUntil: 2}
		svc := ChainAvailability(flaky, AvailabilityRetry(3, time.Millisecond, 10*time.Millisecond))

		available, err := svc.CheckAvailable(context.Background(), []string{"a"})
		require.NoError(t, err)
		assert.True(t, available["a"])
		assert.Equal(t, 3, flaky.callCount())
	})

	t.Run("exhausts retries and wraps the last error", func(t *testing.T) {
		broken := &fakeAvailability{failUntil: 100}
		svc := ChainAvailability(broken, AvailabilityRetry(2, time.Millisecond, 10*time.Millisecond))

		_, err := svc.CheckAvailable(context.Background(), []string{"a"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 3 attempts")
		assert.Equal(t, 3, broken.callCount())
	})

	t.Run("canceled context stops retrying", func(t *testing.T) {
		broken := &fakeAvailability{failUntil: 100}
		svc := ChainAvailability(broken, AvailabilityRetry(5, 50*time.Millisecond, time.Second))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := svc.CheckAvailable(ctx, []string{"a"})
		require.Error(t, err)
		assert.Equal(t, 1, broken.callCount())
	})
}

func TestAvailabilityMetrics(t *testing.T) {
	collector := &recordingCollector{}
	svc := ChainAvailability(&fakeAvailability{failUntil: 1}, AvailabilityMetrics(collector))

	_, err := svc.CheckAvailable(context.Background(), []string{"a"})
	require.Error(t, err)
	_, err = svc.CheckAvailable(context.Background(), []string{"a"})
	require.NoError(t, err)

	assert.Equal(t, []string{"error", "success"}, collector.statuses)
}

func TestChainAvailabilityOrder(t *testing.T) {
	// The retry middleware must sit inside the timeout so one deadline
	// covers all attempts.
	flaky := &fakeAvailability{failUntil: 1}
	svc := ChainAvailability(flaky,
		AvailabilityTimeout(time.Second),
		AvailabilityRetry(2, time.Millisecond, 10*time.Millisecond),
	)

	_, err := svc.CheckAvailable(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, 2, flaky.callCount())
}

func TestScorerTimeout(t *testing.T) {
	blocked := scorerFunc(func(ctx context.Context) (float64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	scorer := ChainScorer(blocked, ScorerTimeout(10*time.Millisecond))

	_, err := scorer.Score(context.Background(), nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// scorerFunc adapts a closure to the RankScorer interface.
type scorerFunc func(ctx context.Context) (float64, error)

func (f scorerFunc) Score(ctx context.Context, _ map[domain.FeatureCode]float64) (float64, error) {
	return f(ctx)
}

func TestScorerRetry(t *testing.T) {
	flaky := &fakeScorer{failUntil: 1, score: 0.9}
	scorer := ChainScorer(flaky, ScorerRetry(2, time.Millisecond, 10*time.Millisecond))

	score, err := scorer.Score(context.Background(), nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, score, 1e-9)
	assert.Equal(t, 2, flaky.calls)
}

func TestScorerRateLimitAndMetrics(t *testing.T) {
	collector := &recordingCollector{}
	scorer := ChainScorer(&fakeScorer{score: 0.4},
		ScorerRateLimit(rate.Limit(100), 10),
		ScorerMetrics(collector),
	)

	score, err := scorer.Score(context.Background(), map[domain.FeatureCode]float64{domain.FeatureArea: 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.4, score, 1e-9)
	assert.Equal(t, []string{"success"}, collector.statuses)
}
