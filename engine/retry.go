package engine

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	domain "github.com/chronolens/chronolens/engine/domain"
)

// RetryPolicy wraps fallible external calls with exponential backoff.
// Only rate_limit and network_error classifications are retried; anything
// else is fatal and returned immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	// JitterFrac perturbs each delay within ±frac to avoid correlated
	// retries across concurrent clients.
	JitterFrac float64

	// sleep and rnd are injectable for tests.
	sleep func(ctx context.Context, d time.Duration) error
	rnd   func() float64
}

// DefaultRetryPolicy matches the engine's upstream rate-limit guidance:
// 3 attempts, 1 s base, doubling, capped at 8 s, ±25% jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
		MaxDelay:    8 * time.Second,
		JitterFrac:  0.25,
	}
}

// Delay returns the un-jittered backoff before retry number attempt
// (0-based): min(base * multiplier^attempt, cap).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := time.Duration(float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt)))
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// jittered perturbs d within the jitter band, floored at zero.
func (p RetryPolicy) jittered(d time.Duration) time.Duration {
	if p.JitterFrac <= 0 {
		return d
	}
	rnd := p.rnd
	if rnd == nil {
		rnd = rand.Float64
	}
	// Uniform in [-frac, +frac].
	factor := 1 + p.JitterFrac*(2*rnd()-1)
	out := time.Duration(float64(d) * factor)
	if out < 0 {
		out = 0
	}
	return out
}

// Do runs op, retrying retryable failures with backoff. Exhausting the
// attempts returns the last classified error.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.jittered(p.Delay(attempt - 1))
			logrus.Debugf("[RETRY] Attempt %d after %v (last error: %v)", attempt+1, delay, lastErr)
			if err := p.wait(ctx, delay); err != nil {
				return err
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !domain.Retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func (p RetryPolicy) wait(ctx context.Context, d time.Duration) error {
	if p.sleep != nil {
		return p.sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
