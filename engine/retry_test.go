package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/chronolens/chronolens/engine/domain"
)

func TestRetryPolicy_Delay(t *testing.T) {
	p := DefaultRetryPolicy()

	assert.Equal(t, 1*time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
	assert.Equal(t, 8*time.Second, p.Delay(3))
	assert.Equal(t, 8*time.Second, p.Delay(10), "delay is capped at MaxDelay")
}

func TestRetryPolicy_JitterBand(t *testing.T) {
	p := DefaultRetryPolicy()

	p.rnd = func() float64 { return 0 }
	assert.Equal(t, 750*time.Millisecond, p.jittered(time.Second))

	p.rnd = func() float64 { return 1 }
	assert.Equal(t, 1250*time.Millisecond, p.jittered(time.Second))

	p.rnd = func() float64 { return 0.5 }
	assert.Equal(t, time.Second, p.jittered(time.Second))
}

func TestRetryPolicy_NoJitterPassthrough(t *testing.T) {
	p := RetryPolicy{JitterFrac: 0}
	assert.Equal(t, 3*time.Second, p.jittered(3*time.Second))
}

func TestRetryPolicy_RetriesTransientErrors(t *testing.T) {
	var slept []time.Duration
	p := RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
		MaxDelay:    8 * time.Second,
		JitterFrac:  0.25,
		sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
		rnd: func() float64 { return 0.5 },
	}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return domain.NewError(domain.ErrKindRateLimit, "generate", errors.New("429"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, slept)
}

func TestRetryPolicy_FailsFastOnNonRetryable(t *testing.T) {
	p := DefaultRetryPolicy()
	p.sleep = func(ctx context.Context, d time.Duration) error {
		t.Fatal("must not sleep for a fatal error")
		return nil
	}

	calls := 0
	fatal := domain.NewError(domain.ErrKindInvalidKey, "generate", errors.New("401"))
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return fatal
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, domain.ErrKindInvalidKey, domain.KindOf(err))
}

func TestRetryPolicy_ExhaustionReturnsLastError(t *testing.T) {
	p := DefaultRetryPolicy()
	p.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return domain.NewError(domain.ErrKindNetwork, "generate", errors.New("conn reset"))
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, domain.ErrKindNetwork, domain.KindOf(err))
}

func TestRetryPolicy_ContextCancelStopsWait(t *testing.T) {
	p := DefaultRetryPolicy()
	p.sleep = nil
	p.BaseDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := p.Do(ctx, func(ctx context.Context) error {
		calls++
		return domain.NewError(domain.ErrKindNetwork, "generate", errors.New("conn reset"))
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}
