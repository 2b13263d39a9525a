package asyncobjects

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Settled is one element of AllSettled's result, mirroring the
// fulfilled/rejected discrimination of eventloop/promise.go's
// JS.AllSettled (github.com/joeycumines/go-utilpkg/eventloop), adapted
// from a dynamically-typed map into a generic struct.
type Settled[T any] struct {
	Value T
	Err   error
}

// Fulfilled reports whether this slot settled without error.
func (s Settled[T]) Fulfilled() bool { return s.Err == nil }

// AggregateError collects every rejection reason when Any has no
// winner, grounded on eventloop/promise.go's AggregateError.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("asyncobjects: all %d futures rejected", len(e.Errors))
}

// All waits for every future to settle and returns their values in
// input order, or the first error observed, cancelling the wait on the
// remaining futures as soon as one rejects (spec.md's Future-combinator
// row, grounded on eventloop/promise.go's JS.All and the teacher's
// error_forwarder.go "cancel-first-then-forward-exactly-once" pattern -
// here realized via a derived, internally-cancelled context rather than
// a dedicated forwarder goroutine, since Futures have no native cancel).
func All[T any](ctx context.Context, futures []*Future[T]) ([]T, error) {
	if len(futures) == 0 {
		return nil, nil
	}
	sub, cancel := context.WithCancel(ctx)
	defer cancel()

	values := make([]T, len(futures))
	var firstErrOnce sync.Once
	var firstErr error
	var wg sync.WaitGroup
	wg.Add(len(futures))
	for i, fut := range futures {
		i, fut := i, fut
		go func() {
			defer wg.Done()
			v, err := fut.Get(sub)
			if err != nil {
				firstErrOnce.Do(func() { firstErr = err })
				cancel()
				return
			}
			values[i] = v
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, ErrCancelled
	}
	return values, nil
}

// AllSettled waits for every future to settle, never failing early: the
// result preserves input order and reports each slot's own outcome
// (spec.md's Future-combinator row, grounded on eventloop/promise.go's
// JS.AllSettled). It only returns early with a nil slice if ctx is
// cancelled before every future has settled.
func AllSettled[T any](ctx context.Context, futures []*Future[T]) ([]Settled[T], error) {
	if len(futures) == 0 {
		return nil, nil
	}
	results := make([]Settled[T], len(futures))
	var wg sync.WaitGroup
	wg.Add(len(futures))
	for i, fut := range futures {
		i, fut := i, fut
		go func() {
			defer wg.Done()
			v, err := fut.Get(ctx)
			results[i] = Settled[T]{Value: v, Err: err}
		}()
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		for _, r := range results {
			if r.Err == ErrCancelled {
				return nil, ErrCancelled
			}
		}
	}
	return results, nil
}

// Race returns the outcome of whichever future settles first - success
// or failure - ignoring the rest (spec.md's Future-combinator row,
// grounded on eventloop/promise.go's JS.Race: "first to settle wins",
// realized with the same single-winner CAS used there).
func Race[T any](ctx context.Context, futures []*Future[T]) (T, error) {
	var zero T
	if len(futures) == 0 {
		return zero, ErrCancelled
	}
	sub, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, len(futures))
	for _, fut := range futures {
		fut := fut
		go func() {
			v, err := fut.Get(sub)
			select {
			case done <- outcome{v, err}:
			default:
			}
		}()
	}
	select {
	case o := <-done:
		cancel()
		return o.v, o.err
	case <-ctx.Done():
		return zero, ErrCancelled
	}
}

// Any resolves with the first future to succeed, ignoring rejections
// unless every future rejects, in which case it returns an
// *AggregateError holding every rejection reason in input order (spec.md's
// Future-combinator row, grounded on eventloop/promise.go's JS.Any).
func Any[T any](ctx context.Context, futures []*Future[T]) (T, error) {
	var zero T
	if len(futures) == 0 {
		return zero, &AggregateError{}
	}
	sub, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make([]error, len(futures))
	var remaining atomic.Int64
	remaining.Store(int64(len(futures)))

	type outcome struct {
		v  T
		ok bool
	}
	won := make(chan outcome, 1)
	allDone := make(chan struct{})

	for i, fut := range futures {
		i, fut := i, fut
		go func() {
			// sub is derived from ctx, so an external cancellation of ctx
			// also cancels sub: every still-pending Get(sub) below returns
			// ErrCancelled rather than hanging, and remaining still reaches
			// zero even though none of these were cancelled via sub
			// directly (that path is reserved for the winning-future case).
			v, err := fut.Get(sub)
			if err == nil {
				select {
				case won <- outcome{v, true}:
				default:
				}
				return
			}
			errs[i] = err
			if remaining.Add(-1) == 0 {
				close(allDone)
			}
		}()
	}

	select {
	case o := <-won:
		cancel()
		return o.v, nil
	case <-allDone:
		return zero, &AggregateError{Errors: errs}
	case <-ctx.Done():
		return zero, ErrCancelled
	}
}
