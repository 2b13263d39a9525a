package queue

import "github.com/av-sync/asyncobjects/metrics"

// queueMetrics wires the teacher's metrics.Provider (unchanged package)
// to the instrument names a TaskQueue needs: admission/queue/cancellation
// counters and a currentRunning gauge, per SPEC_FULL.md §4.4.
type queueMetrics struct {
	admitted  metrics.Counter
	queued    metrics.Counter
	cancelled metrics.Counter
	running   metrics.UpDownCounter
}

func newQueueMetrics(p metrics.Provider) *queueMetrics {
	return &queueMetrics{
		admitted:  p.Counter("asyncobjects_queue_admitted_total", metrics.WithUnit("1")),
		queued:    p.Counter("asyncobjects_queue_queued_total", metrics.WithUnit("1")),
		cancelled: p.Counter("asyncobjects_queue_cancelled_total", metrics.WithUnit("1")),
		running:   p.UpDownCounter("asyncobjects_queue_current_running", metrics.WithUnit("1")),
	}
}
