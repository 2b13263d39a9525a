package queue

import (
	"github.com/av-sync/asyncobjects/internal/xlog"
	"github.com/av-sync/asyncobjects/metrics"
)

// options is the queue's internal options-builder state, generalized
// from the teacher's configOptions (options.go): a pool-selection knob
// (WithFixedPool/WithDynamicPool there, concurrency here) plus a handful
// of named setters, rather than a public struct of fields.
type options struct {
	concurrency     uint
	defaultPriority Priority
	metrics         metrics.Provider
	logger          *xlog.Logger
}

func defaultOptions() options {
	return options{
		concurrency:     0, // dynamic pool, same default as the teacher's MaxWorkers == 0
		defaultPriority: DefaultPriority,
		metrics:         metrics.NewNoopProvider(),
		logger:          xlog.Default,
	}
}

// Option configures a TaskQueue at construction time.
type Option func(*options)

// WithConcurrency selects a fixed-size execution pool capped at n
// concurrently-running admissions. n == 0 (the default) selects a
// dynamic pool, mirroring the teacher's WithDynamicPool default.
func WithConcurrency(n uint) Option {
	return func(o *options) { o.concurrency = n }
}

// WithQueueDefaultPriority sets the priority used when a submission
// supplies no explicit requested priority.
func WithQueueDefaultPriority(p Priority) Option {
	return func(o *options) { o.defaultPriority = p }
}

// WithMetrics wires a metrics.Provider for admission/queue instrumentation.
// The default is metrics.NewNoopProvider().
func WithMetrics(p metrics.Provider) Option {
	return func(o *options) {
		if p != nil {
			o.metrics = p
		}
	}
}

// WithLogger overrides the structured logger used for admission/drain/
// cancellation events. The default is xlog.Default.
func WithLogger(l *xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
