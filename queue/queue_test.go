package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTaskQueue_AdmitsImmediatelyWhenEmpty(t *testing.T) {
	q := New[int]()
	v, err := q.Submit(context.Background(), func(context.Context) (int, error) {
		return 42, nil
	}, Flags{}, nil)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestTaskQueue_BlockHoldsQueueExclusive(t *testing.T) {
	q := New[int](WithConcurrency(4))

	release := make(chan struct{})
	first := make(chan struct{})
	go func() {
		_, _ = q.Submit(context.Background(), func(ctx context.Context) (int, error) {
			close(first)
			<-release
			return 1, nil
		}, Flags{Block: true}, nil)
	}()
	<-first

	require.Eventually(t, func() bool { return q.Running() == 1 }, time.Second, time.Millisecond)

	secondDone := make(chan struct{})
	go func() {
		_, _ = q.Submit(context.Background(), func(ctx context.Context) (int, error) {
			return 2, nil
		}, Flags{}, nil)
		close(secondDone)
	}()

	// an ordinary submission arriving while Block holds the queue must
	// queue rather than admit synchronously.
	require.Eventually(t, func() bool { return q.Len() == 1 }, time.Second, time.Millisecond)

	close(release)
	<-secondDone
	require.Equal(t, 0, q.Len())
}

func TestTaskQueue_BarrierWaitsForQuiescence(t *testing.T) {
	q := New[int](WithConcurrency(4))

	var order []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = q.Submit(context.Background(), func(context.Context) (int, error) {
				time.Sleep(50 * time.Millisecond)
				record("ordinary")
				return i, nil
			}, Flags{}, nil)
		}(i)
	}

	// give the three ordinary submissions a chance to admit before the
	// barrier arrives, so it genuinely has to wait for quiescence.
	time.Sleep(10 * time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = q.Submit(context.Background(), func(context.Context) (int, error) {
			record("barrier")
			return -1, nil
		}, Flags{Barrier: true}, nil)
	}()

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "barrier", order[len(order)-1], "barrier must run only after every ordinary submission completes")
}

func TestTaskQueue_SubmitWithAlreadyCancelledContextStillAdmitsWhenFree(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := q.Submit(ctx, func(context.Context) (int, error) {
		return 11, nil
	}, Flags{}, nil)
	require.NoError(t, err, "an empty, unblocked queue must admit synchronously even under a cancelled ctx")
	require.Equal(t, 11, v)
}

func TestTaskQueue_CancelledWhileQueuedReturnsCancellation(t *testing.T) {
	q := New[int](WithConcurrency(1))

	release := make(chan struct{})
	go func() {
		_, _ = q.Submit(context.Background(), func(context.Context) (int, error) {
			<-release
			return 0, nil
		}, Flags{Block: true}, nil)
	}()

	require.Eventually(t, func() bool { return q.Running() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := q.Submit(ctx, func(context.Context) (int, error) {
			return 0, nil
		}, Flags{}, nil)
		done <- err
	}()

	require.Eventually(t, func() bool { return q.Len() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("cancelled submission never returned")
	}
	require.Equal(t, 0, q.Len(), "cancelled submission must be evicted from the waiter table")

	close(release)
}

func TestTaskQueue_PriorityEnforceTakesMaxOfCandidates(t *testing.T) {
	q := New[int](WithQueueDefaultPriority(5))
	requested := Priority(1)

	got := q.selectPriority(context.Background(), Flags{Enforce: true}, &requested)
	require.Equal(t, Priority(5), got, "enforce must take the max candidate, here the queue default")

	ctx := WithPriority(context.Background(), 9)
	got = q.selectPriority(ctx, Flags{Enforce: true}, &requested)
	require.Equal(t, Priority(9), got)

	got = q.selectPriority(ctx, Flags{Enforce: true, Detached: true}, &requested)
	require.Equal(t, Priority(5), got, "detached excludes the calling context's priority")
}

func TestTaskQueue_PanicRecoveredAsError(t *testing.T) {
	q := New[int]()
	_, err := q.Submit(context.Background(), func(context.Context) (int, error) {
		panic("boom")
	}, Flags{}, nil)
	require.Error(t, err)
}
