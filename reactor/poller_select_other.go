//go:build !linux
// +build !linux

// File: reactor/poller_select_other.go
// Author: momentics <momentics@gmail.com>

package reactor

import "github.com/momentics/hioload-kv/api"

func newSelectPoller() (Poller, error) {
	return nil, api.ErrNotSupported.WithContext("poller", string(PollerSelect))
}
