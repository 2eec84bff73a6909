package server

import (
	"testing"
	"time"

	"github.com/momentics/hioload-kv/control"
	"github.com/momentics/hioload-kv/reactor"
	"github.com/stretchr/testify/require"
)

// stubPoller reports nothing ready.
type stubPoller struct{}

func (stubPoller) Wait(set []reactor.Mask, _ time.Duration) (int, error) {
	for i := range set {
		set[i] = 0
	}
	return 0, nil
}

func (stubPoller) Close() error { return nil }

type testClock struct{ t time.Time }

func newTestClock() *testClock { return &testClock{t: time.Unix(1_700_000_000, 0)} }

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type countingSnapshotter struct {
	calls int
	err   error
}

func (c *countingSnapshotter) Snapshot() error {
	c.calls++
	return c.err
}

func testConfig() control.Config {
	cfg := control.DefaultConfig()
	cfg.Bind = "127.0.0.1"
	cfg.Port = 0
	cfg.Databases = 4
	return cfg
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *testClock) {
	t.Helper()
	clock := newTestClock()
	opts = append([]Option{WithPoller(stubPoller{}), WithClock(clock.now)}, opts...)
	s, err := New(testConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })
	return s, clock
}
