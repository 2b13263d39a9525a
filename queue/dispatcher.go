package queue

import (
	"context"
	"fmt"
)

// execSlot runs one admitted Func[R] and recovers from a panicking task,
// mirroring the teacher's worker.go (worker[R].execute): there, a
// *worker[R] pulled from pool.Pool ran a task[R] and converted a panic
// into an error rather than crashing the dispatcher goroutine. Here the
// same pool-recycled-slot shape runs a queue.Func[R] instead of the
// teacher's task[R] adapter, since TaskQueue has no SendResult/error-only
// distinction to preserve.
type execSlot[R any] struct{}

func (s *execSlot[R]) run(ctx context.Context, fn Func[R]) (result R, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("asyncobjects/queue: task panicked: %v", p)
		}
	}()
	return fn(ctx)
}
