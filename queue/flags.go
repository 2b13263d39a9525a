package queue

import "context"

// Priority is an opaque ordering value: higher values run first in the
// candidate-selection formula of spec.md §4.4. The zero value,
// DefaultPriority, is what a queue falls back to absent any other
// candidate.
type Priority int

// DefaultPriority is the priority used when nothing else applies.
const DefaultPriority Priority = 0

// Flags selects a submission's admission and priority behavior, per
// spec.md §4.4's table. A plain struct of named booleans, matching the
// teacher's own preference (config.go's Config) for named fields over a
// packed bitmask.
type Flags struct {
	// Enforce makes priority the max over every candidate (requested,
	// the queue's default, and the calling context's priority unless
	// Detached), rather than only consulting requested/default.
	Enforce bool
	// Detached excludes the calling context's priority from the
	// candidate set: the spawned work inherits no execution context.
	Detached bool
	// Block holds the queue exclusive (blocked) from admission until
	// this submission completes; it does not require a quiescent queue
	// to admit.
	Block bool
	// Barrier both requires currentRunning == 0 to admit and behaves
	// like Block once admitted. Barrier dominates Block where they
	// differ.
	Barrier bool
}

type priorityCtxKey struct{}

// WithPriority attaches p to ctx as the calling context's priority,
// consulted by the candidate-selection formula unless the submission is
// Detached.
func WithPriority(ctx context.Context, p Priority) context.Context {
	return context.WithValue(ctx, priorityCtxKey{}, p)
}

// PriorityFromContext retrieves a priority previously attached by
// WithPriority.
func PriorityFromContext(ctx context.Context) (Priority, bool) {
	p, ok := ctx.Value(priorityCtxKey{}).(Priority)
	return p, ok
}

// selectPriority implements spec.md §4.4's formula:
//
//	candidates = detached ? {requested, queueDefault} : {requested, queueDefault, currentContext}
//	candidates = candidates without null, sorted descending by priority value
//	result = enforce     ? candidates.first
//	       : requested   ≠ null ? requested
//	       :                      queueDefault
func (q *TaskQueue[R]) selectPriority(ctx context.Context, f Flags, requested *Priority) Priority {
	if !f.Enforce {
		if requested != nil {
			return *requested
		}
		return q.defaultPriority
	}

	best := q.defaultPriority
	if requested != nil && *requested > best {
		best = *requested
	}
	if !f.Detached {
		if cp, ok := PriorityFromContext(ctx); ok && cp > best {
			best = cp
		}
	}
	return best
}
