// File: reactor/time_event.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import (
	"time"

	"go.uber.org/zap"
)

// TimeEvent is a registered soft timer. Its fire time is kept as a
// seconds/milliseconds pair.
type TimeEvent struct {
	id       int64
	whenSec  int64
	whenMs   int64
	proc     TimeProc
	finalize FinalizeProc
	next     *TimeEvent

	firedPass uint64
	deleted   bool
}

// ID returns the timer id.
func (te *TimeEvent) ID() int64 { return te.id }

// CreateTimeEvent registers proc to fire milliseconds from now and returns
// the timer id. Ids increase monotonically.
func (r *Reactor) CreateTimeEvent(milliseconds int64, proc TimeProc, finalize FinalizeProc) int64 {
	id := r.timeEventNextID
	r.timeEventNextID++

	te := &TimeEvent{
		id:       id,
		proc:     proc,
		finalize: finalize,
		next:     r.timeEvents,
	}
	te.whenSec, te.whenMs = r.addMillisecondsToNow(milliseconds)
	r.timeEvents = te
	return id
}

// DeleteTimeEvent removes the timer and runs its finalizer. It reports
// whether the timer was registered.
func (r *Reactor) DeleteTimeEvent(id int64) bool {
	var prev *TimeEvent
	for te := r.timeEvents; te != nil; te = te.next {
		if te.id != id {
			prev = te
			continue
		}
		if prev == nil {
			r.timeEvents = te.next
		} else {
			prev.next = te.next
		}
		te.deleted = true
		if te.finalize != nil {
			te.finalize(r)
		}
		return true
	}
	return false
}

// AddTimeEvent registers a timer bound to a typed context.
func AddTimeEvent[C any](
	r *Reactor,
	milliseconds int64,
	proc func(r *Reactor, id int64, ctx C) int,
	ctx C,
	finalize func(r *Reactor, ctx C),
) int64 {
	var fin FinalizeProc
	if finalize != nil {
		fin = func(r *Reactor) { finalize(r, ctx) }
	}
	return r.CreateTimeEvent(milliseconds, func(r *Reactor, id int64) int {
		return proc(r, id, ctx)
	}, fin)
}

// TimerDeadline returns the next fire time of timer id.
func (r *Reactor) TimerDeadline(id int64) (time.Time, bool) {
	for te := r.timeEvents; te != nil; te = te.next {
		if te.id == id {
			return time.Unix(te.whenSec, te.whenMs*int64(time.Millisecond)), true
		}
	}
	return time.Time{}, false
}

// searchNearestTimer returns the timer with the earliest fire time, or nil.
// The scan is seeded with the list head.
func (r *Reactor) searchNearestTimer() *TimeEvent {
	nearest := r.timeEvents
	if nearest == nil {
		return nil
	}
	for te := nearest.next; te != nil; te = te.next {
		if te.whenSec < nearest.whenSec ||
			(te.whenSec == nearest.whenSec && te.whenMs < nearest.whenMs) {
			nearest = te
		}
	}
	return nearest
}

// processTimeEvents fires due timers that existed when the pass started.
// The scan restarts from the head after each firing; a timer fires at most
// once per pass.
func (r *Reactor) processTimeEvents() {
	maxID := r.timeEventNextID - 1
	te := r.timeEvents
	for te != nil {
		if te.id > maxID || te.firedPass == r.pass {
			te = te.next
			continue
		}

		nowSec, nowMs := r.getTime()
		if nowSec < te.whenSec || (nowSec == te.whenSec && nowMs < te.whenMs) {
			te = te.next
			continue
		}

		te.firedPass = r.pass
		ret := r.callTime(te)
		r.stats.TimersFired++
		if !te.deleted {
			if ret == NoMore {
				r.DeleteTimeEvent(te.id)
			} else {
				te.whenSec, te.whenMs = r.addMillisecondsToNow(int64(max(ret, 0)))
			}
		}
		te = r.timeEvents
	}
}

// callTime runs the handler; a panicking handler cancels its timer.
func (r *Reactor) callTime(te *TimeEvent) (ret int) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("time event handler panicked",
				zap.Int64("id", te.id),
				zap.Any("panic", p))
			ret = NoMore
		}
	}()
	return te.proc(r, te.id)
}

func (r *Reactor) getTime() (sec, ms int64) {
	now := r.now()
	return now.Unix(), int64(now.Nanosecond()) / int64(time.Millisecond)
}

// addMillisecondsToNow returns now+milliseconds as a seconds/milliseconds
// pair, carrying millisecond overflow into seconds.
func (r *Reactor) addMillisecondsToNow(milliseconds int64) (sec, ms int64) {
	if milliseconds < 0 {
		milliseconds = 0
	}
	curSec, curMs := r.getTime()
	sec = curSec + milliseconds/1000
	ms = curMs + milliseconds%1000
	if ms >= 1000 {
		sec++
		ms -= 1000
	}
	return sec, ms
}
