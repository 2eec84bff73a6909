// File: api/handler.go
// Package api defines the collaborator contracts consumed by the server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Conn is the per-connection view a Dispatcher works with.
type Conn interface {
	// FD returns the connection descriptor.
	FD() int
	// DB returns the index of the selected database.
	DB() int
	// Select switches the selected database.
	Select(db int) error
	// Reply queues bytes for delivery.
	Reply(b []byte)
	// CloseAfterReply closes the connection once pending replies are written.
	CloseAfterReply()
}

// Dispatcher turns raw query bytes into commands and executes them.
// It returns how many bytes of query were consumed; the rest stays
// buffered until more data arrives.
type Dispatcher interface {
	Dispatch(c Conn, query []byte) (consumed int, err error)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(c Conn, query []byte) (int, error)

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(c Conn, query []byte) (int, error) { return f(c, query) }

// Snapshotter persists the dataset when a save point is reached.
type Snapshotter interface {
	Snapshot() error
}
