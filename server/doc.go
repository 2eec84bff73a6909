// File: server/doc.go
// Package server
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// A single-threaded key-value server built on the reactor and dict
// packages. One goroutine accepts connections, reads queries, hands them
// to an api.Dispatcher and flushes queued replies; a recurring timer
// resizes sparse tables, evicts idle clients and triggers snapshots.
//
// Command parsing and persistence are collaborators: the server only
// frames bytes through api.Dispatcher and calls api.Snapshotter at save
// points.
package server
