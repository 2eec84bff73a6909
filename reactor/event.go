// File: reactor/event.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import "strings"

// Mask is a set of readiness conditions.
type Mask uint8

const (
	Readable Mask = 1 << iota
	Writable
	Exception

	allMask = Readable | Writable | Exception
)

func (m Mask) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	if m&Readable != 0 {
		parts = append(parts, "readable")
	}
	if m&Writable != 0 {
		parts = append(parts, "writable")
	}
	if m&Exception != 0 {
		parts = append(parts, "exception")
	}
	return strings.Join(parts, "|")
}

// Flags selects which event kinds ProcessEvents considers.
type Flags uint8

const (
	FileEvents Flags = 1 << iota
	TimeEvents

	AllEvents = FileEvents | TimeEvents
)

// WaitPolicy controls how long ProcessEvents may block for readiness.
type WaitPolicy uint8

const (
	// WaitNextTimer blocks until readiness or the nearest timer is due.
	// With no timers registered it blocks until readiness.
	WaitNextTimer WaitPolicy = iota
	// WaitForever blocks until readiness, ignoring timer deadlines.
	// Due timers are still processed once the wait returns.
	WaitForever
	// NoWait polls readiness and returns immediately.
	NoWait
)

// NoMore is returned by a TimeProc to cancel its timer.
const NoMore = -1

// FileProc is called with the signaled subset of the registered mask.
type FileProc func(r *Reactor, fd int, mask Mask)

// TimeProc returns the delay in milliseconds until its next firing, or NoMore.
// Other negative delays are treated as 0.
type TimeProc func(r *Reactor, id int64) int

// FinalizeProc is called once when an event is removed from the reactor.
type FinalizeProc func(r *Reactor)
