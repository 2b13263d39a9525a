package queue

import (
	"context"
	"errors"
	"sync"
)

// Map fans out items through fn, each submitted independently to q under
// flags, collecting results in input order. Adapted from the teacher's
// map.go/run_all.go: there, RunAll owned a whole Workers[R] instance for
// the batch's lifetime; here, each item is a separate Submit against an
// already-running TaskQueue, so the queue's own admission/priority rules
// govern the batch the same way they would any other caller.
func Map[T, R any](ctx context.Context, q *TaskQueue[R], items []T, fn func(context.Context, T) (R, error), flags Flags) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}
	results := make([]R, len(items))
	errs := make([]error, len(items))
	var wg sync.WaitGroup
	wg.Add(len(items))
	for i, item := range items {
		i, item := i, item
		go func() {
			defer wg.Done()
			v, err := q.Submit(ctx, func(c context.Context) (R, error) { return fn(c, item) }, flags, nil)
			if err != nil {
				errs[i] = newTaskTaggedError(err, i)
				return
			}
			results[i] = v
		}()
	}
	wg.Wait()
	return results, errors.Join(errs...)
}

// ForEach applies fn to each item concurrently via q, returning the
// joined error from any failures (adapted from the teacher's foreach.go,
// built on Map the same way foreach.go delegated to RunAll).
func ForEach[T any](ctx context.Context, q *TaskQueue[struct{}], items []T, fn func(context.Context, T) error, flags Flags) error {
	_, err := Map(ctx, q, items, func(c context.Context, item T) (struct{}, error) {
		return struct{}{}, fn(c, item)
	}, flags)
	return err
}
