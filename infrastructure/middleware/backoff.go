package middleware

import (
	"context"
	"math/rand"
	"time"
)

// backoffDelay computes an exponential delay with +/-25% jitter, capped
// at maxDelay.
func backoffDelay(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}
	// #nosec G115 - attempt is bounded between 0 and 30
	delay := baseDelay * time.Duration(1<<uint(attempt))

	// #nosec G404 - Using weak RNG is acceptable for jitter calculation
	jitter := time.Duration(rand.Float64() * float64(delay) * 0.5)
	delay = delay + jitter - (delay / 4)

	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// callStatus maps a call outcome onto a metrics label value.
func callStatus(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return "success"
	case ctx.Err() == context.DeadlineExceeded:
		return "timeout"
	default:
		return "error"
	}
}
