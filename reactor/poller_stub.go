//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

// File: reactor/poller_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package reactor

import (
	"time"

	"github.com/momentics/hioload-kv/api"
)

func newPollPoller() (Poller, error) {
	return nil, api.ErrNotSupported.WithContext("poller", string(PollerPoll))
}

// Wait returns api.ErrNotSupported on this platform.
func Wait(fd int, mask Mask, timeout time.Duration) (Mask, error) {
	return 0, api.ErrNotSupported.WithContext("fd", fd)
}
