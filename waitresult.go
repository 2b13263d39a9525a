package asyncobjects

import (
	"context"
	"time"
)

// WaitResult is the outcome of a bounded wait (spec.md §6:
// `wait(for: Duration) -> Result`).
type WaitResult int

const (
	// WaitSuccess indicates the condition was observed within the
	// requested duration.
	WaitSuccess WaitResult = iota
	// WaitTimedOut indicates the duration elapsed first.
	WaitTimedOut
)

func (r WaitResult) String() string {
	if r == WaitSuccess {
		return "success"
	}
	return "timedOut"
}

// waitFor races a cancellable wait function against a duration timer, per
// spec.md §5: "launch a race between the underlying wait and a timer; the
// first to settle wins and cancels the other." A zero duration is legal
// and returns immediately without parking (spec.md §5's last bullet):
// waitOnce is called with an already-cancelled context, and
// SuspendCancellable's terminal-state probe runs before it honors that
// cancellation, so an already-satisfied primitive still reports success
// here rather than a spurious timeout.
func waitFor(ctx context.Context, d time.Duration, waitOnce func(context.Context) error) (WaitResult, error) {
	if d <= 0 {
		// Zero/negative duration: try exactly once, synchronously, with
		// an already-expired deadline so any parking path short-circuits
		// immediately instead of blocking. If waitOnce's primitive was
		// already satisfied, it returns success despite the cancelled
		// context (see SuspendCancellable); otherwise it reports
		// ErrCancelled, which we translate to ErrTimeout below.
		immediate, cancel := context.WithCancel(ctx)
		cancel()
		err := waitOnce(immediate)
		switch err {
		case nil:
			return WaitSuccess, nil
		case ErrCancelled:
			if ctx.Err() != nil {
				return WaitTimedOut, ErrCancelled
			}
			return WaitTimedOut, ErrTimeout
		default:
			return WaitTimedOut, err
		}
	}

	timed, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	err := waitOnce(timed)
	switch err {
	case nil:
		return WaitSuccess, nil
	case ErrCancelled:
		if ctx.Err() != nil {
			return WaitTimedOut, ErrCancelled
		}
		return WaitTimedOut, ErrTimeout
	default:
		return WaitTimedOut, err
	}
}
