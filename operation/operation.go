// Package operation bridges the library's L2 wait contract onto a
// host-platform imperative operation abstraction (spec.md §4.5): a
// NEW → EXECUTING → FINISHED state machine with start/cancel/result.
package operation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	async "github.com/av-sync/asyncobjects"
	"github.com/av-sync/asyncobjects/internal/xlog"
)

// State is one of TaskOperation's three lifecycle states.
type State int32

const (
	StateNew State = iota
	StateExecuting
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateExecuting:
		return "executing"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// HostQueue is the minimal host-operation-queue abstraction spec.md §4.5
// bridges against: Go has no NSOperationQueue/KVO to adapt, so the
// "platform imperative operation abstraction" is reduced to its one
// load-bearing capability — running a body somewhere. A TaskOperation
// with no HostQueue runs its body on its own goroutine instead (the
// nearest equivalent of the teacher's worker.go spawning bare goroutines).
type HostQueue interface {
	Enqueue(func())
}

type trackKey struct{}

// Track registers the calling goroutine as a child of the enclosing
// TaskOperation's child-task-tracking WaitGroup, if tracking was enabled
// via WithChildTaskTracking. It returns a no-op if ctx carries no
// tracking WaitGroup (tracking disabled, or ctx isn't a TaskOperation's
// own). Adapted from the teacher's dispatcher.go inflight *sync.WaitGroup
// idea, generalized from "the dispatcher's own spawned goroutines" to
// "unstructured children the operation's body itself spawns".
func Track(ctx context.Context) (done func()) {
	wg, ok := ctx.Value(trackKey{}).(*sync.WaitGroup)
	if !ok {
		return func() {}
	}
	wg.Add(1)
	return wg.Done
}

// TaskOperation adapts a func(context.Context) (R, error) onto the
// NEW/EXECUTING/FINISHED state machine of spec.md §4.5.
type TaskOperation[R any] struct {
	fn            func(context.Context) (R, error)
	host          HostQueue
	onStateChange func(State)
	trackChildren bool
	logger        *xlog.Logger

	stateMu  sync.Mutex
	state    State
	ctx      context.Context
	cancelFn context.CancelFunc

	finishOnce sync.Once
	done       chan struct{}
	result     R
	err        error
	children   sync.WaitGroup
}

// New constructs a fresh TaskOperation in state NEW, wrapping fn.
func New[R any](fn func(context.Context) (R, error), opts ...Option) *TaskOperation[R] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &TaskOperation[R]{
		fn:            fn,
		host:          o.host,
		onStateChange: o.onStateChange,
		trackChildren: o.trackChildren,
		logger:        o.logger,
		done:          make(chan struct{}),
	}
}

// Start transitions NEW → EXECUTING, spawning a child task that runs the
// body and finishes the operation on return. A call on any other state
// is a no-op, matching spec.md §4.5's "start/signal from FINISHED is a
// no-op" (and, by the same state-machine discipline, from EXECUTING too —
// an operation has exactly one body run).
func (op *TaskOperation[R]) Start(ctx context.Context) {
	op.stateMu.Lock()
	if op.state != StateNew {
		op.stateMu.Unlock()
		return
	}
	childCtx, cancel := context.WithCancel(ctx)
	if op.trackChildren {
		childCtx = context.WithValue(childCtx, trackKey{}, &op.children)
	}
	op.ctx = childCtx
	op.cancelFn = cancel
	op.state = StateExecuting
	op.stateMu.Unlock()
	op.notify(StateExecuting)

	run := func() {
		defer func() {
			if p := recover(); p != nil {
				op.finish(*new(R), fmt.Errorf("asyncobjects/operation: task panicked: %v", p))
			}
		}()
		v, err := op.fn(op.ctx)
		op.finish(v, err)
	}

	if op.host != nil {
		op.host.Enqueue(run)
	} else {
		go run()
	}
}

// Signal is Start under the AsyncObject vocabulary's name for "begin".
func (op *TaskOperation[R]) Signal(ctx context.Context) { op.Start(ctx) }

// Cancel requests cooperative cancellation on the child task and
// transitions the operation to FINISHED, per spec.md §4.5. If the body
// is still running when Cancel is called, its eventual completion is
// discarded (finish is idempotent) — Cancel's outcome wins, matching
// spec.md §9's framing of this corner of TaskOperation as an area where
// the source's own behavior is subtle rather than unambiguous; resumed,
// cancelled callers always observe ErrCancelled rather than a stale
// result racing in afterward.
func (op *TaskOperation[R]) Cancel() {
	op.stateMu.Lock()
	cancelFn := op.cancelFn
	st := op.state
	op.stateMu.Unlock()

	if cancelFn != nil {
		cancelFn()
	}
	if st == StateFinished {
		return
	}
	op.finish(*new(R), async.ErrCancelled)
}

// IsCancelled reports whether the operation's own context has been
// cancelled (via Cancel, or transitively through the ctx passed to
// Start).
func (op *TaskOperation[R]) IsCancelled() bool {
	op.stateMu.Lock()
	ctx := op.ctx
	op.stateMu.Unlock()
	return ctx != nil && ctx.Err() != nil
}

// State returns the operation's current lifecycle state.
func (op *TaskOperation[R]) State() State {
	op.stateMu.Lock()
	defer op.stateMu.Unlock()
	return op.state
}

// Result suspends until the operation finishes, returning its outcome.
// Reading Result before Start/Signal fails with ErrEarlyInvoke, per
// spec.md §4.5/§7.
func (op *TaskOperation[R]) Result(ctx context.Context) (R, error) {
	op.stateMu.Lock()
	st := op.state
	op.stateMu.Unlock()
	if st == StateNew {
		var zero R
		return zero, async.ErrEarlyInvoke
	}

	// A plain two-case select would pick randomly if op.done and ctx are
	// both already ready, so an already-finished operation read under an
	// already-cancelled ctx could spuriously report ErrCancelled instead
	// of its real outcome. Probe op.done non-blockingly first so the
	// terminal state always wins, matching SuspendCancellable's ordering.
	select {
	case <-op.done:
		op.stateMu.Lock()
		v, err := op.result, op.err
		op.stateMu.Unlock()
		return v, err
	default:
	}

	select {
	case <-op.done:
		op.stateMu.Lock()
		v, err := op.result, op.err
		op.stateMu.Unlock()
		return v, err
	case <-ctx.Done():
		var zero R
		return zero, async.ErrCancelled
	}
}

// WaitUntilFinished suspends until the operation reaches FINISHED. If
// child-task tracking is enabled (WithChildTaskTracking), it also waits
// for every outstanding Track'd child to complete (spec.md §4.5's last
// paragraph).
func (op *TaskOperation[R]) WaitUntilFinished(ctx context.Context) error {
	_, err := op.Result(ctx)
	if errors.Is(err, async.ErrEarlyInvoke) {
		return err
	}
	if op.trackChildren {
		op.children.Wait()
	}
	return err
}

func (op *TaskOperation[R]) finish(v R, err error) {
	op.finishOnce.Do(func() {
		op.stateMu.Lock()
		op.state = StateFinished
		op.result, op.err = v, err
		op.stateMu.Unlock()
		op.notify(StateFinished)
		close(op.done)
	})
}

func (op *TaskOperation[R]) notify(s State) {
	if op.onStateChange != nil {
		op.onStateChange(s)
	}
	xlog.Debug(op.logger, xlog.Caller(2), "operation state changed", map[string]any{"state": s.String()})
}
