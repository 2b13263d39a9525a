package operation

import "github.com/av-sync/asyncobjects/internal/xlog"

type options struct {
	host          HostQueue
	onStateChange func(State)
	trackChildren bool
	logger        *xlog.Logger
}

func defaultOptions() options {
	return options{logger: xlog.Default}
}

// Option configures a TaskOperation at construction time.
type Option func(*options)

// WithHostQueue admits the operation's body through hq instead of
// spawning a bare goroutine — the bridge's "interoperate with platform
// operation queues" leg (spec.md §1/§4.5). A *queue.TaskQueue satisfies
// HostQueue via a thin Enqueue adapter built by the caller, since
// TaskQueue's own Submit signature carries Flags/priority the bridge
// object has no opinion on.
func WithHostQueue(hq HostQueue) Option {
	return func(o *options) { o.host = hq }
}

// WithStateChangeCallback registers cb to be invoked around each state
// mutation — the nearest Go idiom to the host KVO-style
// willChange/didChange contract spec.md §4.5/§9 describes as optional
// integration surface.
func WithStateChangeCallback(cb func(State)) Option {
	return func(o *options) { o.onStateChange = cb }
}

// WithChildTaskTracking enables the optional mode that propagates
// cooperative cancellation/completion-waiting into unstructured tasks
// the body spawns via Track(ctx).
func WithChildTaskTracking() Option {
	return func(o *options) { o.trackChildren = true }
}

// WithLogger overrides the structured logger used for state-change events.
func WithLogger(l *xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
