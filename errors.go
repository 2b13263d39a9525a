package asyncobjects

import "errors"

// Namespace prefixes every sentinel error string in this module, matching
// the teacher's convention of a single namespaced error block.
const Namespace = "asyncobjects"

var (
	// ErrCancelled is returned by a suspended wait when the caller's
	// context is cancelled before or during the wait. Never a sign of a
	// defect; see spec.md §7.
	ErrCancelled = errors.New(Namespace + ": wait cancelled")

	// ErrTimeout is returned by a bounded wait (WaitFor) that elapsed
	// before the underlying condition was satisfied.
	ErrTimeout = errors.New(Namespace + ": wait timed out")

	// ErrEarlyInvoke is returned by TaskOperation.Result when called
	// before the operation has been started.
	ErrEarlyInvoke = errors.New(Namespace + ": result requested before start")

	// ErrClosed is returned by operations attempted on a primitive after
	// Close has drained it.
	ErrClosed = errors.New(Namespace + ": primitive closed")
)
