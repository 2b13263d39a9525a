package asyncobjects

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/av-sync/asyncobjects/internal/xlog"
)

// Future is a single-assignment async value (spec.md §4.2's Future row,
// §3's "single-assignment container"). It settles exactly once, with
// either a value or an error, and every Get - past, present, and future -
// observes the same outcome. Grounded on the teacher's task.go adapters
// (taskResult/taskError), generalized from "run one task and report its
// outcome" to "settle once, broadcast to arbitrarily many observers."
type Future[T any] struct {
	registry *Registry[uint64, T]
	settled  atomic.Bool
	value    T
	err      error
	nextKey  atomic.Uint64
	logger   *xlog.Logger
}

// NewFuture constructs an unsettled Future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{registry: NewRegistry[uint64, T](), logger: xlog.Default}
}

// Fulfill settles the Future with (v, err), releasing every waiter. It
// returns false if the Future was already settled, in which case v/err
// are discarded (spec.md §3: "later fulfill calls ... are no-ops").
func (f *Future[T]) Fulfill(v T, err error) bool {
	f.registry.Lock()
	if f.settled.Load() {
		f.registry.Unlock()
		return false
	}
	f.value, f.err = v, err
	f.settled.Store(true)
	n := f.registry.ResumeAllLocked(v, err)
	f.registry.Unlock()
	xlog.Debug(f.logger, xlog.Caller(1), "future fulfilled", map[string]any{"waiters_released": n})
	return true
}

// Get suspends until the Future settles or ctx is cancelled. A call
// issued after settlement returns the stored outcome immediately.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	if f.settled.Load() {
		f.registry.Lock()
		v, err := f.value, f.err
		f.registry.Unlock()
		return v, err
	}
	key := f.nextKey.Add(1)
	return SuspendCancellable(ctx, f.registry, key, func() (T, bool, error) {
		if f.settled.Load() {
			return f.value, true, f.err
		}
		f.registry.TableLocked(key)
		var zero T
		return zero, false, nil
	})
}

// GetFor is Get bounded by a duration, returning the settled value on
// success (the zero value otherwise). A Future settled with an error
// reports WaitSuccess together with that stored error.
func (f *Future[T]) GetFor(ctx context.Context, d time.Duration) (T, WaitResult, error) {
	type result struct {
		v       T
		err     error
		settled bool
	}
	var out result
	wr, err := waitFor(ctx, d, func(c context.Context) error {
		v, err := f.Get(c)
		if err != nil && f.settled.Load() {
			f.registry.Lock()
			out = result{v: f.value, err: f.err, settled: true}
			f.registry.Unlock()
			return nil
		}
		out.v = v
		return err
	})
	if out.settled {
		return out.v, WaitSuccess, out.err
	}
	return out.v, wr, err
}

// Close fails every currently-tabled Get with ErrClosed. It does not
// settle the Future: a subsequent Fulfill still succeeds, and new Get
// calls after Close observe that later settlement normally, matching the
// registry drain behavior used by every other primitive in this package.
func (f *Future[T]) Close() {
	f.registry.Lock()
	f.registry.DrainLocked(ErrClosed)
	f.registry.Unlock()
}
