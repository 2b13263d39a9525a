package asyncobjects

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFuture_GetParksUntilFulfilled(t *testing.T) {
	f := NewFuture[int]()
	done := make(chan struct {
		v   int
		err error
	}, 1)
	go func() {
		v, err := f.Get(context.Background())
		done <- struct {
			v   int
			err error
		}{v, err}
	}()

	time.Sleep(10 * time.Millisecond)
	require.True(t, f.Fulfill(42, nil))

	r := <-done
	require.NoError(t, r.err)
	require.Equal(t, 42, r.v)
}

func TestFuture_FulfillIsSingleAssignment(t *testing.T) {
	f := NewFuture[int]()
	require.True(t, f.Fulfill(1, nil))
	require.False(t, f.Fulfill(2, nil), "a second Fulfill must be a no-op")

	v, err := f.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestFuture_GetAfterSettlementReturnsImmediately(t *testing.T) {
	f := NewFuture[string]()
	f.Fulfill("", ErrCancelled)

	_, err := f.Get(context.Background())
	require.ErrorIs(t, err, ErrCancelled)
}

func TestFuture_GetForTimesOutBeforeFulfillment(t *testing.T) {
	f := NewFuture[int]()
	_, wr, err := f.GetFor(context.Background(), 10*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	require.Equal(t, WaitTimedOut, wr)
}

func TestFuture_CloseFailsParkedGetWithoutSettling(t *testing.T) {
	f := NewFuture[int]()
	done := make(chan error, 1)
	go func() {
		_, err := f.Get(context.Background())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	f.Close()
	require.ErrorIs(t, <-done, ErrClosed)

	require.True(t, f.Fulfill(7, nil), "Close must not itself settle the future")
	v, err := f.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestRace_FirstSettledWins(t *testing.T) {
	f1 := NewFuture[int]()
	f2 := NewFuture[int]()
	go func() { time.Sleep(5 * time.Millisecond); f1.Fulfill(1, nil) }()
	go func() { time.Sleep(30 * time.Millisecond); f2.Fulfill(2, nil) }()

	v, err := Race(context.Background(), []*Future[int]{f1, f2})
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestAllSettled_PreservesOrderAndPerSlotOutcome(t *testing.T) {
	f1 := NewFuture[int]()
	f2 := NewFuture[int]()
	f1.Fulfill(0, ErrCancelled)
	f2.Fulfill(9, nil)

	results, err := AllSettled(context.Background(), []*Future[int]{f1, f2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.False(t, results[0].Fulfilled())
	require.True(t, results[1].Fulfilled())
	require.Equal(t, 9, results[1].Value)
}

func TestAll_DistinctErrorTypesDoNotPanic(t *testing.T) {
	f1 := NewFuture[int]()
	f2 := NewFuture[int]()
	f1.Fulfill(0, ErrTimeout)
	f2.Fulfill(0, &AggregateError{Errors: []error{ErrCancelled}})

	require.NotPanics(t, func() {
		_, err := All(context.Background(), []*Future[int]{f1, f2})
		require.Error(t, err)
	})
}

func TestAny_AllRejectedReturnsAggregateError(t *testing.T) {
	f1 := NewFuture[int]()
	f2 := NewFuture[int]()
	f1.Fulfill(0, ErrCancelled)
	f2.Fulfill(0, ErrTimeout)

	_, err := Any(context.Background(), []*Future[int]{f1, f2})
	var agg *AggregateError
	require.ErrorAs(t, err, &agg)
	require.Len(t, agg.Errors, 2)
}
