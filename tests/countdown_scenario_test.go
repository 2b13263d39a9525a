package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	async "github.com/av-sync/asyncobjects"
)

// TestCountdownEvent_ReleaseTiming is E1 (spec.md §8), scaled from seconds
// to milliseconds: a CountdownEvent created at (limit=3, initial=2), then
// incremented to 12, must release Wait at the tick where repeated
// signal(1) calls bring count down to the limit - not before, not after.
func TestCountdownEvent_ReleaseTiming(t *testing.T) {
	const tick = 20 * time.Millisecond
	c := async.NewCountdownEvent(3, 2)
	c.Increment(10)
	require.Equal(t, int64(12), c.Count())

	start := time.Now()
	done := make(chan time.Duration, 1)
	go func() {
		require.NoError(t, c.Wait(context.Background()))
		done <- time.Since(start)
	}()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for i := 0; i < 20; i++ {
		<-ticker.C
		c.Signal(1)
		if c.Count() <= 3 {
			break
		}
	}

	select {
	case elapsed := <-done:
		// count goes from 12 to 3 over 9 ticks.
		require.InDelta(t, float64(9*tick), float64(elapsed), float64(3*tick))
	case <-time.After(2 * time.Second):
		t.Fatal("Wait never released")
	}
}

// TestCountdownEvent_WaitForTimesOutWhileStillDecrementing is E2: a bounded
// wait issued well before the release point times out, while the event
// keeps decrementing independently of that wait call.
func TestCountdownEvent_WaitForTimesOutWhileStillDecrementing(t *testing.T) {
	c := async.NewCountdownEvent(3, 2)
	c.Increment(10)

	wr, err := c.WaitFor(context.Background(), 15*time.Millisecond)
	require.ErrorIs(t, err, async.ErrTimeout)
	require.Equal(t, async.WaitTimedOut, wr)

	c.Signal(1)
	require.Equal(t, int64(11), c.Count(), "the timed-out wait must not have perturbed the live count")
}
