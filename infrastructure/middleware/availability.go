// Package middleware provides cross-cutting decorators for the engine's
// external collaborators: timeouts, rate limiting, retries, and metrics.
package middleware

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/jusmatch/matchengine/internal/ports"
)

// AvailabilityMiddleware wraps an AvailabilityService with additional
// behavior. Middlewares compose left to right: the first one listed in
// ChainAvailability sees the call first.
type AvailabilityMiddleware func(ports.AvailabilityService) ports.AvailabilityService

// ChainAvailability applies middlewares around a base service.
func ChainAvailability(svc ports.AvailabilityService, mws ...AvailabilityMiddleware) ports.AvailabilityService {
	for i := len(mws) - 1; i >= 0; i-- {
		svc = mws[i](svc)
	}
	return svc
}

// timeoutAvailability enforces a per-call deadline so a slow upstream
// cannot stall the ranking pass beyond its degraded-mode budget.
type timeoutAvailability struct {
	next    ports.AvailabilityService
	timeout time.Duration
}

// AvailabilityTimeout creates middleware that bounds each availability call.
func AvailabilityTimeout(timeout time.Duration) AvailabilityMiddleware {
	return func(next ports.AvailabilityService) ports.AvailabilityService {
		return &timeoutAvailability{next: next, timeout: timeout}
	}
}

func (t *timeoutAvailability) CheckAvailable(ctx context.Context, lawyerIDs []string) (map[string]bool, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.CheckAvailable(ctx, lawyerIDs)
}

// rateLimitedAvailability paces calls with a token bucket so bulk
// re-ranking jobs cannot overwhelm the agenda service.
type rateLimitedAvailability struct {
	next    ports.AvailabilityService
	limiter *rate.Limiter
}

// AvailabilityRateLimit creates middleware that enforces a sustained
// request rate with headroom for bursts.
func AvailabilityRateLimit(limit rate.Limit, burst int) AvailabilityMiddleware {
	limiter := rate.NewLimiter(limit, burst)
	return func(next ports.AvailabilityService) ports.AvailabilityService {
		return &rateLimitedAvailability{next: next, limiter: limiter}
	}
}

func (r *rateLimitedAvailability) CheckAvailable(ctx context.Context, lawyerIDs []string) (map[string]bool, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return r.next.CheckAvailable(ctx, lawyerIDs)
}

// retryAvailability retries transient failures with exponential backoff.
// Context cancellation stops the attempts immediately.
type retryAvailability struct {
	next       ports.AvailabilityService
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// AvailabilityRetry creates middleware that retries failed calls up to
// maxRetries times with exponential backoff between attempts.
func AvailabilityRetry(maxRetries int, baseDelay, maxDelay time.Duration) AvailabilityMiddleware {
	return func(next ports.AvailabilityService) ports.AvailabilityService {
		return &retryAvailability{
			next:       next,
			maxRetries: maxRetries,
			baseDelay:  baseDelay,
			maxDelay:   maxDelay,
		}
	}
}

func (r *retryAvailability) CheckAvailable(ctx context.Context, lawyerIDs []string) (map[string]bool, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		available, err := r.next.CheckAvailable(ctx, lawyerIDs)
		if err == nil {
			return available, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == r.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoffDelay(attempt, r.baseDelay, r.maxDelay)):
		}
	}
	return nil, fmt.Errorf("availability check failed after %d attempts: %w", r.maxRetries+1, lastErr)
}

// metricsAvailability records call latency and outcome counters.
type metricsAvailability struct {
	next      ports.AvailabilityService
	collector ports.MetricsCollector
}

// AvailabilityMetrics creates middleware that collects call metrics.
func AvailabilityMetrics(collector ports.MetricsCollector) AvailabilityMiddleware {
	return func(next ports.AvailabilityService) ports.AvailabilityService {
		return &metricsAvailability{next: next, collector: collector}
	}
}

func (m *metricsAvailability) CheckAvailable(ctx context.Context, lawyerIDs []string) (map[string]bool, error) {
	start := time.Now()
	available, err := m.next.CheckAvailable(ctx, lawyerIDs)

	if m.collector != nil {
		m.collector.RecordLatency("availability_check", time.Since(start), nil)
		m.collector.RecordCounter("availability_requests_total", 1, map[string]string{
			"status": callStatus(ctx, err),
		})
	}
	return available, err
}
