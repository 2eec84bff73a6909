//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

// File: reactor/poller_poll.go
// Author: momentics <momentics@gmail.com>
//
// poll(2) readiness backend and the standalone descriptor wait.

package reactor

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-kv/api"
)

// pollPoller rebuilds its pollfd array on every wait.
type pollPoller struct {
	fds []unix.PollFd
}

func newPollPoller() (Poller, error) {
	return &pollPoller{}, nil
}

func (p *pollPoller) Wait(set []Mask, timeout time.Duration) (int, error) {
	p.fds = p.fds[:0]
	for fd, m := range set {
		if m == 0 {
			continue
		}
		p.fds = append(p.fds, unix.PollFd{Fd: int32(fd), Events: pollEvents(m)})
	}

	_, err := unix.Poll(p.fds, timeoutMillis(timeout))
	clear(set)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, fmt.Errorf("poll: %w", err)
	}

	ready := 0
	for _, pfd := range p.fds {
		m := pollMask(pfd.Revents, pfd.Events)
		if m != 0 {
			set[pfd.Fd] = m
			ready++
		}
	}
	return ready, nil
}

func (p *pollPoller) Close() error {
	p.fds = nil
	return nil
}

func pollEvents(m Mask) int16 {
	var ev int16
	if m&Readable != 0 {
		ev |= unix.POLLIN
	}
	if m&Writable != 0 {
		ev |= unix.POLLOUT
	}
	if m&Exception != 0 {
		ev |= unix.POLLPRI
	}
	return ev
}

// pollMask maps revents back to a Mask restricted to the requested events.
// Error and hangup conditions are reported as readable/writable so the
// handler observes them on its next read or write.
func pollMask(revents, events int16) Mask {
	var m Mask
	if revents&unix.POLLIN != 0 {
		m |= Readable
	}
	if revents&unix.POLLOUT != 0 {
		m |= Writable
	}
	if revents&unix.POLLPRI != 0 {
		m |= Exception
	}
	if revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		m |= Readable | Writable
	}
	var want Mask
	if events&unix.POLLIN != 0 {
		want |= Readable
	}
	if events&unix.POLLOUT != 0 {
		want |= Writable
	}
	if events&unix.POLLPRI != 0 {
		want |= Exception
	}
	return m & want
}

// Wait blocks up to timeout for fd to become ready on mask, outside of any
// reactor. It returns the signaled subset of mask, or api.ErrOperationTimeout.
func Wait(fd int, mask Mask, timeout time.Duration) (Mask, error) {
	if fd < 0 || mask&allMask == 0 {
		return 0, api.ErrInvalidArgument.WithContext("fd", fd)
	}
	fds := []unix.PollFd{{Fd: int32(fd), Events: pollEvents(mask)}}
	n, err := unix.Poll(fds, timeoutMillis(timeout))
	if err != nil {
		return 0, fmt.Errorf("poll fd %d: %w", fd, err)
	}
	if n == 0 {
		return 0, api.ErrOperationTimeout.WithContext("fd", fd)
	}
	return pollMask(fds[0].Revents, fds[0].Events), nil
}
