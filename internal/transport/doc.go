// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thin TCP helpers over raw descriptors: listening sockets, accept,
// socket options, blocking and non-blocking connect, and full-buffer
// read/write loops. Unix only; other platforms get ErrNotSupported stubs.

package transport
