package tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/av-sync/asyncobjects/queue"
)

// TestTaskQueue_BarrierOrdering is E5: three ordinary submissions sleeping
// T each, then a barrier submission sleeping 2T, then one more ordinary
// submission sleeping T. The barrier must run only once the first three
// complete, and the trailing submission only once the barrier completes.
func TestTaskQueue_BarrierOrdering(t *testing.T) {
	const unit = 30 * time.Millisecond
	q := queue.New[int](queue.WithConcurrency(4))

	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = q.Submit(context.Background(), func(context.Context) (int, error) {
				time.Sleep(unit)
				record("ordinary")
				return 0, nil
			}, queue.Flags{}, nil)
		}()
	}

	time.Sleep(unit / 3)

	wg.Add(1)
	var barrierElapsed time.Duration
	go func() {
		defer wg.Done()
		_, _ = q.Submit(context.Background(), func(context.Context) (int, error) {
			time.Sleep(2 * unit)
			barrierElapsed = time.Since(start)
			record("barrier")
			return 0, nil
		}, queue.Flags{Barrier: true}, nil)
	}()

	time.Sleep(unit / 3)

	wg.Add(1)
	var trailingElapsed time.Duration
	go func() {
		defer wg.Done()
		_, _ = q.Submit(context.Background(), func(context.Context) (int, error) {
			time.Sleep(unit)
			trailingElapsed = time.Since(start)
			record("trailing")
			return 0, nil
		}, queue.Flags{}, nil)
	}()

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 5)
	for _, s := range order[:3] {
		require.Equal(t, "ordinary", s)
	}
	require.Equal(t, "barrier", order[3])
	require.Equal(t, "trailing", order[4])

	// barrier starts only after the three ordinary tasks finish (~unit),
	// runs for 2*unit, so finishes around 3*unit; trailing starts only
	// after, finishing around 4*unit.
	require.InDelta(t, float64(3*unit), float64(barrierElapsed), float64(unit))
	require.InDelta(t, float64(4*unit), float64(trailingElapsed), float64(unit))
}
