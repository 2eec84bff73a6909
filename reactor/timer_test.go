package reactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_RescheduleFromReturnValue(t *testing.T) {
	r, _, clk := newTestReactor(t)

	fired := 0
	var firstFire time.Time
	id := r.CreateTimeEvent(0, func(r *Reactor, _ int64) int {
		fired++
		firstFire = clk.now()
		return 50
	}, nil)

	_, err := r.ProcessEvents(AllEvents, NoWait)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	next, ok := r.TimerDeadline(id)
	require.True(t, ok)
	assert.False(t, next.Before(firstFire.Add(50*time.Millisecond)))

	// Not due yet.
	clk.advance(49 * time.Millisecond)
	_, err = r.ProcessEvents(AllEvents, NoWait)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	clk.advance(time.Millisecond)
	_, err = r.ProcessEvents(AllEvents, NoWait)
	require.NoError(t, err)
	assert.Equal(t, 2, fired)
}

func TestTimer_NoMoreDeletes(t *testing.T) {
	r, _, clk := newTestReactor(t)

	finalized := false
	fired := 0
	id := r.CreateTimeEvent(10, func(*Reactor, int64) int {
		fired++
		return NoMore
	}, func(*Reactor) { finalized = true })

	_, err := r.ProcessEvents(TimeEvents, NoWait)
	require.NoError(t, err)
	assert.Equal(t, 0, fired)

	clk.advance(10 * time.Millisecond)
	_, err = r.ProcessEvents(TimeEvents, NoWait)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.True(t, finalized)

	assert.False(t, r.DeleteTimeEvent(id))
}

func TestTimer_NegativeDelayIsNotCancel(t *testing.T) {
	r, _, clk := newTestReactor(t)

	fired := 0
	id := r.CreateTimeEvent(0, func(*Reactor, int64) int {
		fired++
		return -5
	}, nil)

	_, err := r.ProcessEvents(TimeEvents, NoWait)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	next, ok := r.TimerDeadline(id)
	require.True(t, ok)
	assert.False(t, next.After(clk.now()), "due immediately")

	_, err = r.ProcessEvents(TimeEvents, NoWait)
	require.NoError(t, err)
	assert.Equal(t, 2, fired)
}

func TestTimer_DeleteTimeEvent(t *testing.T) {
	r, _, _ := newTestReactor(t)

	finalized := 0
	id := r.CreateTimeEvent(1000, func(*Reactor, int64) int { return 1000 }, func(*Reactor) { finalized++ })

	assert.True(t, r.DeleteTimeEvent(id))
	assert.Equal(t, 1, finalized)
	assert.False(t, r.DeleteTimeEvent(id))
	assert.Equal(t, 1, finalized)
}

func TestTimer_IDsIncrease(t *testing.T) {
	r, _, _ := newTestReactor(t)
	noop := func(*Reactor, int64) int { return NoMore }

	a := r.CreateTimeEvent(1, noop, nil)
	b := r.CreateTimeEvent(1, noop, nil)
	assert.Equal(t, a+1, b)
}

func TestTimer_CreatedDuringPassWaits(t *testing.T) {
	r, _, _ := newTestReactor(t)

	childFired := 0
	r.CreateTimeEvent(0, func(r *Reactor, _ int64) int {
		r.CreateTimeEvent(0, func(*Reactor, int64) int {
			childFired++
			return NoMore
		}, nil)
		return NoMore
	}, nil)

	_, err := r.ProcessEvents(TimeEvents, NoWait)
	require.NoError(t, err)
	assert.Equal(t, 0, childFired)

	_, err = r.ProcessEvents(TimeEvents, NoWait)
	require.NoError(t, err)
	assert.Equal(t, 1, childFired)
}

func TestTimer_ZeroDelayFiresOncePerPass(t *testing.T) {
	r, _, _ := newTestReactor(t)

	fired := 0
	r.CreateTimeEvent(0, func(*Reactor, int64) int {
		fired++
		return 0
	}, nil)

	for range 3 {
		_, err := r.ProcessEvents(TimeEvents, NoWait)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, fired)
}

func TestTimer_SelfDeleteIsNotRescheduled(t *testing.T) {
	r, _, _ := newTestReactor(t)

	var id int64
	id = r.CreateTimeEvent(0, func(r *Reactor, self int64) int {
		assert.Equal(t, id, self)
		r.DeleteTimeEvent(self)
		return 100
	}, nil)

	_, err := r.ProcessEvents(TimeEvents, NoWait)
	require.NoError(t, err)
	_, ok := r.TimerDeadline(id)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Stats().TimeEvents)
}

func TestTimer_PanicCancels(t *testing.T) {
	r, _, _ := newTestReactor(t)

	id := r.CreateTimeEvent(0, func(*Reactor, int64) int { panic("boom") }, nil)

	_, err := r.ProcessEvents(TimeEvents, NoWait)
	require.NoError(t, err)
	assert.False(t, r.DeleteTimeEvent(id))
}

func TestTimer_WaitBudgetSingleTimer(t *testing.T) {
	r, p, _ := newTestReactor(t)

	// The fake clock sits at .900s, so the deadline carries into the next second.
	r.CreateTimeEvent(250, func(*Reactor, int64) int { return NoMore }, nil)

	_, err := r.ProcessEvents(AllEvents, WaitNextTimer)
	require.NoError(t, err)
	require.Len(t, p.waits, 1)
	assert.Equal(t, 250*time.Millisecond, p.waits[0])
}

func TestTimer_WaitBudgetNearest(t *testing.T) {
	r, p, _ := newTestReactor(t)
	noop := func(*Reactor, int64) int { return NoMore }

	r.CreateTimeEvent(500, noop, nil)
	r.CreateTimeEvent(30, noop, nil)
	r.CreateTimeEvent(2000, noop, nil)

	_, err := r.ProcessEvents(AllEvents, WaitNextTimer)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Millisecond, p.waits[0])
}

func TestTimer_WaitBudgetOverdueIsZero(t *testing.T) {
	r, p, clk := newTestReactor(t)

	r.CreateTimeEvent(10, func(*Reactor, int64) int { return NoMore }, nil)
	clk.advance(time.Second)

	_, err := r.ProcessEvents(AllEvents, WaitNextTimer)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), p.waits[0])
}

func TestTimer_WaitPolicies(t *testing.T) {
	r, p, _ := newTestReactor(t)

	// No timers, nothing registered: block forever unless told not to wait.
	_, err := r.ProcessEvents(AllEvents, WaitNextTimer)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), p.waits[0])

	_, err = r.ProcessEvents(AllEvents, NoWait)
	require.NoError(t, err)
	assert.Len(t, p.waits, 1)

	_, err = r.CreateFileEvent(3, Readable, func(*Reactor, int, Mask) {}, nil)
	require.NoError(t, err)
	_, err = r.ProcessEvents(AllEvents, NoWait)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), p.waits[1])

	r.CreateTimeEvent(40, func(*Reactor, int64) int { return NoMore }, nil)
	_, err = r.ProcessEvents(AllEvents, WaitForever)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), p.waits[2])
}

func TestTimer_FiresAfterBlockingWait(t *testing.T) {
	r, p, clk := newTestReactor(t)

	fired := 0
	r.CreateTimeEvent(100, func(*Reactor, int64) int {
		fired++
		return NoMore
	}, nil)
	// Simulate the poller sleeping for the whole budget.
	p.onWait = func() { clk.advance(p.waits[len(p.waits)-1]) }

	n, err := r.ProcessEvents(AllEvents, WaitNextTimer)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, fired)
	assert.Equal(t, uint64(1), r.Stats().TimersFired)
}

func TestTimer_AddTimeEventTypedContext(t *testing.T) {
	r, _, _ := newTestReactor(t)

	type cron struct{ loops int }
	c := &cron{}
	AddTimeEvent(r, 0, func(_ *Reactor, _ int64, c *cron) int {
		c.loops++
		return 1000
	}, c, nil)

	_, err := r.ProcessEvents(TimeEvents, NoWait)
	require.NoError(t, err)
	assert.Equal(t, 1, c.loops)
}

func TestTimer_MillisecondCarry(t *testing.T) {
	r, _, _ := newTestReactor(t)

	sec, ms := r.addMillisecondsToNow(150)
	assert.Equal(t, int64(1_700_000_001), sec)
	assert.Equal(t, int64(50), ms)

	sec, ms = r.addMillisecondsToNow(2_050)
	assert.Equal(t, int64(1_700_000_002), sec)
	assert.Equal(t, int64(950), ms)
}
