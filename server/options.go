// File: server/options.go
// Package server defines functional options for the Server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"time"

	"github.com/momentics/hioload-kv/api"
	"github.com/momentics/hioload-kv/control"
	"github.com/momentics/hioload-kv/reactor"
	"go.uber.org/zap"
)

// Option customizes server initialization.
type Option func(*Server)

// WithLogger sets the server logger. The reactor logs through a named child.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithDispatcher sets the command dispatcher fed with client queries.
func WithDispatcher(d api.Dispatcher) Option {
	return func(s *Server) {
		s.dispatcher = d
	}
}

// WithSnapshotter sets the collaborator invoked at save points.
func WithSnapshotter(sn api.Snapshotter) Option {
	return func(s *Server) {
		s.snapshotter = sn
	}
}

// WithPoller overrides the readiness backend named in the config.
func WithPoller(p reactor.Poller) Option {
	return func(s *Server) {
		s.poller = p
	}
}

// WithClock overrides the time source shared by the server and its reactor.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithMetrics shares an existing metrics set.
func WithMetrics(m *control.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithConfigStore subscribes the server to config reloads.
func WithConfigStore(cs *control.ConfigStore) Option {
	return func(s *Server) {
		s.store = cs
	}
}

// WithMaxObjFreeList bounds the recycled object list.
func WithMaxObjFreeList(n int) Option {
	return func(s *Server) {
		s.maxObjFreeList = n
	}
}
