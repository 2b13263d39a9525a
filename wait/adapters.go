package wait

import (
	"context"
	"time"

	async "github.com/av-sync/asyncobjects"
	"github.com/av-sync/asyncobjects/operation"
	"github.com/av-sync/asyncobjects/queue"
)

// Queue adapts a *queue.TaskQueue[R] to AsyncObject: TaskQueue has no
// explicit external signal (spec.md §4.6: "their signal is implicit in
// completion, not an explicit call"), so Wait submits a trivial no-op
// submission under flags and suspends until it has been admitted and
// run — i.e. until the queue has drained to the point this caller's
// priority/flags would be admitted.
func Queue[R any](q *queue.TaskQueue[R], flags queue.Flags) AsyncObject {
	wait := func(ctx context.Context) error {
		_, err := q.Submit(ctx, func(context.Context) (R, error) {
			var zero R
			return zero, nil
		}, flags, nil)
		return err
	}
	return funcObject{
		signal: func() {},
		wait:   wait,
		waitFor: func(ctx context.Context, d time.Duration) (async.WaitResult, error) {
			return waitForFunc(ctx, d, wait)
		},
	}
}

// Operation adapts an *operation.TaskOperation[R] to AsyncObject: Signal
// starts the operation (background context — callers needing a specific
// context should call Start directly), Wait suspends until it finishes.
func Operation[R any](op *operation.TaskOperation[R]) AsyncObject {
	wait := func(ctx context.Context) error { return op.WaitUntilFinished(ctx) }
	return funcObject{
		signal: func() { op.Start(context.Background()) },
		wait:   wait,
		waitFor: func(ctx context.Context, d time.Duration) (async.WaitResult, error) {
			return waitForFunc(ctx, d, wait)
		},
	}
}
