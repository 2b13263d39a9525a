// Package wait provides the uniform AsyncObject façade of spec.md §6,
// implemented as thin adapters over every L2 primitive plus TaskQueue and
// TaskOperation — the latter two via an adapter since their "signal" is
// implicit in admission/completion rather than an explicit call.
package wait

import (
	"context"
	"time"

	async "github.com/av-sync/asyncobjects"
)

// AsyncObject is spec.md §6's language-neutral sketch, realized directly:
//
//	trait AsyncObject {
//	  signal()
//	  wait()                         throws
//	  wait(for: Duration) -> Result  throws
//	}
type AsyncObject interface {
	Signal()
	Wait(ctx context.Context) error
	WaitFor(ctx context.Context, d time.Duration) (async.WaitResult, error)
}

// funcObject implements AsyncObject from three closures, letting every
// adapter below be a one-line composition rather than a dedicated type
// per primitive.
type funcObject struct {
	signal  func()
	wait    func(context.Context) error
	waitFor func(context.Context, time.Duration) (async.WaitResult, error)
}

func (f funcObject) Signal() { f.signal() }

func (f funcObject) Wait(ctx context.Context) error { return f.wait(ctx) }

func (f funcObject) WaitFor(ctx context.Context, d time.Duration) (async.WaitResult, error) {
	return f.waitFor(ctx, d)
}

// Event adapts an *asyncobjects.Event to AsyncObject.
func Event(e *async.Event) AsyncObject {
	return funcObject{signal: e.Signal, wait: e.Wait, waitFor: e.WaitFor}
}

// Semaphore adapts an *asyncobjects.Semaphore to AsyncObject.
func Semaphore(s *async.Semaphore) AsyncObject {
	return funcObject{signal: s.Signal, wait: s.Wait, waitFor: s.WaitFor}
}

// Mutex adapts an *asyncobjects.Mutex to AsyncObject: Signal releases the
// lock (Unlock), Wait acquires it (Lock).
func Mutex(m *async.Mutex) AsyncObject {
	return funcObject{signal: m.Unlock, wait: m.Lock, waitFor: m.LockFor}
}

// Barrier adapts an *asyncobjects.Barrier to AsyncObject. Barrier has no
// external signal vocabulary of its own — arrival both mutates state and
// waits — so Signal is a no-op here; use Arrive directly for the
// type-specific operation.
func Barrier(b *async.Barrier) AsyncObject {
	return funcObject{signal: func() {}, wait: b.Arrive, waitFor: b.ArriveFor}
}

// Countdown adapts an *asyncobjects.CountdownEvent to AsyncObject, with
// Signal decrementing by step (CountdownEvent.Signal takes a count;
// AsyncObject.Signal takes none, so the step is fixed at adapter
// construction).
func Countdown(c *async.CountdownEvent, step int64) AsyncObject {
	return funcObject{
		signal:  func() { c.Signal(step) },
		wait:    c.Wait,
		waitFor: c.WaitFor,
	}
}

// Future adapts an *asyncobjects.Future[T] to AsyncObject. Signal is a
// no-op: a Future settles via Fulfill, which carries a value/error
// AsyncObject.Signal has no room for.
func Future[T any](f *async.Future[T]) AsyncObject {
	return funcObject{
		signal: func() {},
		wait:   func(ctx context.Context) error { _, err := f.Get(ctx); return err },
		waitFor: func(ctx context.Context, d time.Duration) (async.WaitResult, error) {
			_, wr, err := f.GetFor(ctx, d)
			return wr, err
		},
	}
}

// waitForFunc races fn against a duration timer, as asyncobjects'
// internal waitFor does for its own primitives (spec.md §5: "launch a
// race between the underlying wait and a timer"), for adapters (Queue,
// Operation) whose underlying type has no native WaitFor of its own to
// delegate to. Unlike waitFor it does not pass fn's errors through: for
// d > 0 any error is reported as ErrCancelled if ctx itself is done and
// as ErrTimeout otherwise; for d <= 0 any error is reported as ErrTimeout.
func waitForFunc(ctx context.Context, d time.Duration, fn func(context.Context) error) (async.WaitResult, error) {
	if d <= 0 {
		immediate, cancel := context.WithCancel(ctx)
		cancel()
		if err := fn(immediate); err == nil {
			return async.WaitSuccess, nil
		}
		return async.WaitTimedOut, async.ErrTimeout
	}

	timed, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	if err := fn(timed); err == nil {
		return async.WaitSuccess, nil
	}
	if ctx.Err() != nil {
		return async.WaitTimedOut, async.ErrCancelled
	}
	return async.WaitTimedOut, async.ErrTimeout
}
