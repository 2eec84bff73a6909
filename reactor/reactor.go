// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Single-threaded event reactor composing the file event and timer registries
// into one dispatch loop.

package reactor

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Reactor owns every registered file and time event. Apart from Stop, its
// methods must be called from the goroutine driving the loop, including from
// inside callbacks.
type Reactor struct {
	fileEvents      *FileEvent
	timeEvents      *TimeEvent
	timeEventNextID int64
	stop            atomic.Bool

	poller Poller
	logger *zap.Logger
	now    func() time.Time

	// set is the interest set handed to the poller, indexed by fd, and
	// holds the signaled subset once the wait returns.
	set   []Mask
	pass  uint64
	stats Stats
}

// Stats are cumulative loop counters.
type Stats struct {
	Iterations          uint64
	FileEventsProcessed uint64
	TimersFired         uint64
	FileEvents          int
	TimeEvents          int
}

// Option customizes reactor construction.
type Option func(*Reactor)

// WithPoller overrides the readiness backend.
func WithPoller(p Poller) Option {
	return func(r *Reactor) {
		r.poller = p
	}
}

// WithLogger sets the logger used to report handler panics and wait errors.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reactor) {
		r.logger = l
	}
}

// WithClock overrides the time source used for timers.
func WithClock(now func() time.Time) Option {
	return func(r *Reactor) {
		r.now = now
	}
}

// New creates a reactor. Unless WithPoller is given it uses the poll(2) backend.
func New(opts ...Option) (*Reactor, error) {
	r := &Reactor{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.poller == nil {
		p, err := NewPoller(PollerPoll)
		if err != nil {
			return nil, err
		}
		r.poller = p
	}
	return r, nil
}

// Stop makes Run return once the pass in progress completes.
func (r *Reactor) Stop() {
	r.stop.Store(true)
}

// Run processes events until Stop is called. Errors from the readiness
// wait are logged and the loop goes on.
func (r *Reactor) Run() {
	r.stop.Store(false)
	for !r.stop.Load() {
		if _, err := r.ProcessEvents(AllEvents, WaitNextTimer); err != nil {
			r.logger.Error("process events", zap.Error(err))
		}
	}
}

// ProcessEvents runs one pass of the loop: wait for readiness (bounded per
// policy), deliver file events, then fire due timers. It returns the number
// of file events processed.
func (r *Reactor) ProcessEvents(flags Flags, policy WaitPolicy) (int, error) {
	if flags&AllEvents == 0 {
		return 0, nil
	}
	r.pass++
	r.stats.Iterations++

	numfd := r.buildInterestSet(flags)

	processed := 0
	var err error
	if numfd > 0 || (flags&TimeEvents != 0 && policy != NoWait) {
		var n int
		n, err = r.poller.Wait(r.set, r.waitBudget(flags, policy))
		if err == nil && n > 0 {
			processed = r.processFileEvents()
		}
	}

	if flags&TimeEvents != 0 {
		r.processTimeEvents()
	}
	return processed, err
}

// buildInterestSet fills r.set from the file event registry and returns the
// number of registered events considered.
func (r *Reactor) buildInterestSet(flags Flags) int {
	r.set = r.set[:0]
	if flags&FileEvents == 0 {
		return 0
	}

	numfd, maxfd := 0, -1
	for fe := r.fileEvents; fe != nil; fe = fe.next {
		maxfd = max(maxfd, fe.fd)
		numfd++
	}
	if cap(r.set) < maxfd+1 {
		r.set = make([]Mask, maxfd+1)
	} else {
		r.set = r.set[:maxfd+1]
		clear(r.set)
	}
	for fe := r.fileEvents; fe != nil; fe = fe.next {
		r.set[fe.fd] |= fe.mask
	}
	return numfd
}

// waitBudget returns how long the poller may block; negative means forever.
func (r *Reactor) waitBudget(flags Flags, policy WaitPolicy) time.Duration {
	var nearest *TimeEvent
	if flags&TimeEvents != 0 && policy == WaitNextTimer {
		nearest = r.searchNearestTimer()
	}
	if nearest != nil {
		nowSec, nowMs := r.getTime()
		ms := (nearest.whenSec-nowSec)*1000 + (nearest.whenMs - nowMs)
		return time.Duration(max(ms, 0)) * time.Millisecond
	}
	if policy == NoWait {
		return 0
	}
	return -1
}

// Stats returns loop counters and registry sizes.
func (r *Reactor) Stats() Stats {
	s := r.stats
	for fe := r.fileEvents; fe != nil; fe = fe.next {
		s.FileEvents++
	}
	for te := r.timeEvents; te != nil; te = te.next {
		s.TimeEvents++
	}
	return s
}

// Close finalizes every remaining event and releases the poller.
func (r *Reactor) Close() error {
	for r.fileEvents != nil {
		fe := r.fileEvents
		r.DeleteFileEvent(fe.fd, fe.mask)
	}
	for r.timeEvents != nil {
		r.DeleteTimeEvent(r.timeEvents.id)
	}
	return r.poller.Close()
}
