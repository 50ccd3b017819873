package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_DispatchNonBlocking(t *testing.T) {
	pool := NewPool(2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	start := time.Now()
	pool.Dispatch(Job{
		Key: "37.77490_-122.41940_jurassic",
		Handler: func(ctx context.Context) error {
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	})
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 10*time.Millisecond, "Dispatch must not block the caller")
}

func TestPool_SameKeySequentialProcessing(t *testing.T) {
	pool := NewPool(4, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	var results []int
	var mu sync.Mutex

	key := "10.00000_20.00000_cretaceous"

	for i := 1; i <= 5; i++ {
		val := i
		pool.Dispatch(Job{
			Key: key,
			Handler: func(ctx context.Context) error {
				time.Sleep(10 * time.Millisecond)
				mu.Lock()
				results = append(results, val)
				mu.Unlock()
				return nil
			},
		})
	}

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	// Same key lands on the same worker, so order is preserved
	require.Equal(t, []int{1, 2, 3, 4, 5}, results)
}

func TestPool_DifferentKeysParallelProcessing(t *testing.T) {
	pool := NewPool(4, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	var activeCount int32

	keys := []string{
		"0.00000_0.00000_triassic",
		"1.00000_1.00000_jurassic",
		"2.00000_2.00000_cretaceous",
		"3.00000_3.00000_permian",
	}
	for _, key := range keys {
		pool.Dispatch(Job{
			Key: key,
			Handler: func(ctx context.Context) error {
				atomic.AddInt32(&activeCount, 1)
				time.Sleep(50 * time.Millisecond)
				atomic.AddInt32(&activeCount, -1)
				return nil
			},
		})
	}

	time.Sleep(10 * time.Millisecond)

	active := atomic.LoadInt32(&activeCount)
	assert.GreaterOrEqual(t, active, int32(2), "different keys should run in parallel")
}

func TestPool_TryDispatchDropsWhenFull(t *testing.T) {
	pool := NewPool(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	block := make(chan struct{})
	pool.Dispatch(Job{
		Key: "same",
		Handler: func(ctx context.Context) error {
			<-block
			return nil
		},
	})
	// Fill the single queue slot
	pool.Dispatch(Job{
		Key:     "same",
		Handler: func(ctx context.Context) error { return nil },
	})

	// Queue is full now, TryDispatch must report the drop
	time.Sleep(10 * time.Millisecond)
	ok := pool.TryDispatch(Job{
		Key:     "same",
		Handler: func(ctx context.Context) error { return nil },
	})
	assert.False(t, ok)

	close(block)
}

func TestPool_StatsCountProcessedJobs(t *testing.T) {
	pool := NewPool(2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)

	for i := 0; i < 6; i++ {
		pool.Dispatch(Job{
			Key:     "key",
			Handler: func(ctx context.Context) error { return nil },
		})
	}

	time.Sleep(100 * time.Millisecond)
	pool.Stop()

	stats := pool.GetStats()
	assert.Equal(t, int64(6), stats.TotalProcessed)
	assert.Equal(t, 2, stats.NumWorkers)
}
