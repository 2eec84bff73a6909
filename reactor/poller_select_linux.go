//go:build linux
// +build linux

// File: reactor/poller_select_linux.go
// Author: momentics <momentics@gmail.com>
//
// select(2) readiness backend with separate read/write/exception sets.

package reactor

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// fdSetSize is the descriptor limit of a fixed-size fd_set.
const fdSetSize = 1024

type selectPoller struct {
	rfds, wfds, efds unix.FdSet
}

func newSelectPoller() (Poller, error) {
	return &selectPoller{}, nil
}

// MaxFD reports the first descriptor select cannot watch.
func (p *selectPoller) MaxFD() int { return fdSetSize }

func (p *selectPoller) Wait(set []Mask, timeout time.Duration) (int, error) {
	if len(set) > fdSetSize {
		return 0, fmt.Errorf("select: fd %d exceeds fd_set size %d", len(set)-1, fdSetSize)
	}
	p.rfds.Zero()
	p.wfds.Zero()
	p.efds.Zero()
	for fd, m := range set {
		if m&Readable != 0 {
			p.rfds.Set(fd)
		}
		if m&Writable != 0 {
			p.wfds.Set(fd)
		}
		if m&Exception != 0 {
			p.efds.Set(fd)
		}
	}

	var tvp *unix.Timeval
	if timeout >= 0 {
		tv := unix.NsecToTimeval(timeout.Nanoseconds())
		tvp = &tv
	}
	_, err := unix.Select(len(set), &p.rfds, &p.wfds, &p.efds, tvp)
	if err != nil {
		clear(set)
		if errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, fmt.Errorf("select: %w", err)
	}

	ready := 0
	for fd, want := range set {
		var m Mask
		if want&Readable != 0 && p.rfds.IsSet(fd) {
			m |= Readable
		}
		if want&Writable != 0 && p.wfds.IsSet(fd) {
			m |= Writable
		}
		if want&Exception != 0 && p.efds.IsSet(fd) {
			m |= Exception
		}
		set[fd] = m
		if m != 0 {
			ready++
		}
	}
	return ready, nil
}

func (p *selectPoller) Close() error { return nil }
