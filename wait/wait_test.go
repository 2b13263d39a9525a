package wait

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	async "github.com/av-sync/asyncobjects"
	"github.com/av-sync/asyncobjects/operation"
	"github.com/av-sync/asyncobjects/queue"
)

func TestEvent_SignalReleasesWaiters(t *testing.T) {
	e := async.NewEvent()
	obj := Event(e)

	done := make(chan error, 1)
	go func() { done <- obj.Wait(context.Background()) }()

	time.Sleep(10 * time.Millisecond)
	obj.Signal()

	require.NoError(t, <-done)
}

func TestSemaphore_WaitForTimesOutWhenNoPermit(t *testing.T) {
	s := async.NewSemaphore(0, 1)
	obj := Semaphore(s)

	wr, err := obj.WaitFor(context.Background(), 10*time.Millisecond)
	require.ErrorIs(t, err, async.ErrTimeout)
	require.Equal(t, async.WaitTimedOut, wr)
}

func TestMutex_SignalUnlocksWaitLocks(t *testing.T) {
	m := async.NewMutex()
	obj := Mutex(m)

	require.NoError(t, obj.Wait(context.Background()))

	acquired := make(chan struct{})
	go func() {
		require.NoError(t, obj.Wait(context.Background()))
		close(acquired)
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-acquired:
		t.Fatal("second Lock must not acquire while the mutex is held")
	default:
	}

	obj.Signal()
	<-acquired
}

func TestBarrier_WaitReleasesAllPartiesAtOnce(t *testing.T) {
	b := async.NewBarrier(2)
	obj := Barrier(b)

	first := make(chan error, 1)
	go func() { first <- obj.Wait(context.Background()) }()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, obj.Wait(context.Background()))
	require.NoError(t, <-first)
}

func TestCountdown_SignalReleasesAtThreshold(t *testing.T) {
	c := async.NewCountdownEvent(0, 2)
	obj := Countdown(c, 1)

	done := make(chan error, 1)
	go func() { done <- obj.Wait(context.Background()) }()

	time.Sleep(10 * time.Millisecond)
	obj.Signal()
	select {
	case <-done:
		t.Fatal("countdown must not release before count reaches the limit")
	case <-time.After(10 * time.Millisecond):
	}

	obj.Signal()
	require.NoError(t, <-done)
}

func TestFuture_WaitObservesFulfilledValue(t *testing.T) {
	f := async.NewFuture[int]()
	obj := Future(f)

	done := make(chan error, 1)
	go func() { done <- obj.Wait(context.Background()) }()

	time.Sleep(10 * time.Millisecond)
	f.Fulfill(42, nil)
	require.NoError(t, <-done)
}

func TestFuture_WaitForSurfacesFulfilledError(t *testing.T) {
	f := async.NewFuture[int]()
	obj := Future(f)
	f.Fulfill(0, async.ErrCancelled)

	wr, err := obj.WaitFor(context.Background(), time.Second)
	require.Equal(t, async.WaitSuccess, wr)
	require.ErrorIs(t, err, async.ErrCancelled)
}

func TestQueue_WaitAdmitsASubmission(t *testing.T) {
	q := queue.New[int]()
	obj := Queue[int](q, queue.Flags{})
	require.NoError(t, obj.Wait(context.Background()))
}

func TestQueue_WaitForRespectsBlock(t *testing.T) {
	q := queue.New[int](queue.WithConcurrency(2))
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = q.Submit(context.Background(), func(context.Context) (int, error) {
			close(started)
			<-release
			return 0, nil
		}, queue.Flags{Block: true}, nil)
	}()
	<-started
	require.Eventually(t, func() bool { return q.Running() == 1 }, time.Second, time.Millisecond)

	obj := Queue[int](q, queue.Flags{})
	wr, err := obj.WaitFor(context.Background(), 10*time.Millisecond)
	require.Equal(t, async.WaitTimedOut, wr)
	require.Error(t, err)

	close(release)
}

func TestOperation_SignalStartsAndWaitObservesFinish(t *testing.T) {
	op := operation.New(func(context.Context) (int, error) { return 9, nil })
	obj := Operation[int](op)

	obj.Signal()
	require.NoError(t, obj.Wait(context.Background()))
	require.Equal(t, operation.StateFinished, op.State())
}

func TestQueue_WaitForZeroDurationAdmitsWhenFree(t *testing.T) {
	q := queue.New[int]()
	obj := Queue[int](q, queue.Flags{})

	wr, err := obj.WaitFor(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, async.WaitSuccess, wr)
}

func TestOperation_WaitForZeroDurationOnFinishedReturnsSuccess(t *testing.T) {
	op := operation.New(func(context.Context) (int, error) { return 9, nil })
	obj := Operation[int](op)
	obj.Signal()
	require.NoError(t, obj.Wait(context.Background()))

	wr, err := obj.WaitFor(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, async.WaitSuccess, wr)
}

func TestOperation_WaitForTimesOutWhenNeverStarted(t *testing.T) {
	op := operation.New(func(context.Context) (int, error) {
		select {}
	})
	obj := Operation[int](op)

	wr, err := obj.WaitFor(context.Background(), 10*time.Millisecond)
	require.Error(t, err)
	require.Equal(t, async.WaitTimedOut, wr)
}

func TestWaitForFunc_ZeroDurationRunsOnceImmediately(t *testing.T) {
	calls := 0
	fn := func(ctx context.Context) error {
		calls++
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return nil
	}

	wr, err := waitForFunc(context.Background(), 0, fn)
	require.Equal(t, async.WaitTimedOut, wr)
	require.Error(t, err)
	require.Equal(t, 1, calls)
}
