// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides a single-threaded readiness reactor: file events
// fired on descriptor readiness and soft timers, dispatched by one loop.
// The readiness primitive is a pluggable Poller with poll(2) and select(2)
// backends on unix platforms.
package reactor
