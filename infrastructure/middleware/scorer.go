package middleware

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/jusmatch/matchengine/internal/domain"
	"github.com/jusmatch/matchengine/internal/ports"
)

// ScorerMiddleware wraps a RankScorer with additional behavior.
type ScorerMiddleware func(ports.RankScorer) ports.RankScorer

// ChainScorer applies middlewares around a base scorer.
func ChainScorer(scorer ports.RankScorer, mws ...ScorerMiddleware) ports.RankScorer {
	for i := len(mws) - 1; i >= 0; i-- {
		scorer = mws[i](scorer)
	}
	return scorer
}

// timeoutScorer bounds each scoring call. On expiry the ranking pass
// falls back to the blended fair score for that candidate.
type timeoutScorer struct {
	next    ports.RankScorer
	timeout time.Duration
}

// ScorerTimeout creates middleware that enforces a per-call deadline.
func ScorerTimeout(timeout time.Duration) ScorerMiddleware {
	return func(next ports.RankScorer) ports.RankScorer {
		return &timeoutScorer{next: next, timeout: timeout}
	}
}

func (t *timeoutScorer) Score(ctx context.Context, features map[domain.FeatureCode]float64) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Score(ctx, features)
}

// rateLimitedScorer paces scoring calls with a token bucket. Model
// backends meter per request, and a ranking pass fans out one call per
// candidate.
type rateLimitedScorer struct {
	next    ports.RankScorer
	limiter *rate.Limiter
}

// ScorerRateLimit creates middleware that enforces a sustained scoring
// rate with headroom for bursts.
func ScorerRateLimit(limit rate.Limit, burst int) ScorerMiddleware {
	limiter := rate.NewLimiter(limit, burst)
	return func(next ports.RankScorer) ports.RankScorer {
		return &rateLimitedScorer{next: next, limiter: limiter}
	}
}

func (r *rateLimitedScorer) Score(ctx context.Context, features map[domain.FeatureCode]float64) (float64, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}
	return r.next.Score(ctx, features)
}

// retryScorer retries transient scoring failures with exponential
// backoff. Context cancellation stops the attempts immediately.
type retryScorer struct {
	next       ports.RankScorer
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// ScorerRetry creates middleware that retries failed scoring calls up to
// maxRetries times with exponential backoff between attempts.
func ScorerRetry(maxRetries int, baseDelay, maxDelay time.Duration) ScorerMiddleware {
	return func(next ports.RankScorer) ports.RankScorer {
		return &retryScorer{
			next:       next,
			maxRetries: maxRetries,
			baseDelay:  baseDelay,
			maxDelay:   maxDelay,
		}
	}
}

func (r *retryScorer) Score(ctx context.Context, features map[domain.FeatureCode]float64) (float64, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		score, err := r.next.Score(ctx, features)
		if err == nil {
			return score, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == r.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(backoffDelay(attempt, r.baseDelay, r.maxDelay)):
		}
	}
	return 0, fmt.Errorf("scoring failed after %d attempts: %w", r.maxRetries+1, lastErr)
}

// metricsScorer records scoring latency and outcome counters.
type metricsScorer struct {
	next      ports.RankScorer
	collector ports.MetricsCollector
}

// ScorerMetrics creates middleware that collects scoring metrics.
func ScorerMetrics(collector ports.MetricsCollector) ScorerMiddleware {
	return func(next ports.RankScorer) ports.RankScorer {
		return &metricsScorer{next: next, collector: collector}
	}
}

func (m *metricsScorer) Score(ctx context.Context, features map[domain.FeatureCode]float64) (float64, error) {
	start := time.Now()
	score, err := m.next.Score(ctx, features)

	if m.collector != nil {
		m.collector.RecordLatency("ltr_score", time.Since(start), nil)
		m.collector.RecordCounter("ltr_requests_total", 1, map[string]string{
			"status": callStatus(ctx, err),
		})
	}
	return score, err
}
