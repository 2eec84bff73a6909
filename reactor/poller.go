// File: reactor/poller.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral readiness backend interface.

package reactor

import (
	"time"

	"github.com/momentics/hioload-kv/api"
)

// Poller waits for readiness on a set of descriptors.
type Poller interface {
	// Wait blocks up to timeout (negative means forever) for readiness of the
	// descriptors in set, which is indexed by fd and holds the interest mask
	// of each. On return set holds the signaled subset of each interest mask
	// and n is the number of ready descriptors. An interrupted wait reports
	// zero ready descriptors and no error.
	Wait(set []Mask, timeout time.Duration) (n int, err error)

	// Close releases backend resources.
	Close() error
}

// PollerKind names a readiness backend.
type PollerKind string

const (
	PollerPoll   PollerKind = "poll"
	PollerSelect PollerKind = "select"
)

// NewPoller constructs the named backend for the current platform.
func NewPoller(kind PollerKind) (Poller, error) {
	switch kind {
	case PollerPoll, "":
		return newPollPoller()
	case PollerSelect:
		return newSelectPoller()
	default:
		return nil, api.ErrNotSupported.WithContext("poller", string(kind))
	}
}

// timeoutMillis converts a wait budget to poll(2) milliseconds, rounding up
// so a sub-millisecond budget does not spin.
func timeoutMillis(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	return int((timeout + time.Millisecond - 1) / time.Millisecond)
}
