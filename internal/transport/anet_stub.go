// File: internal/transport/anet_stub.go
//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"time"

	"github.com/momentics/hioload-kv/api"
)

func Resolve(host string) (string, error)                { return "", api.ErrNotSupported }
func TCPServer(bind string, port int) (int, error)       { return -1, api.ErrNotSupported }
func Accept(fd int) (int, string, int, error)            { return -1, "", 0, api.ErrNotSupported }
func SockName(fd int) (string, int, error)               { return "", 0, api.ErrNotSupported }
func PeerName(fd int) (string, int, error)               { return "", 0, api.ErrNotSupported }
func NonBlock(fd int) error                              { return api.ErrNotSupported }
func TCPNoDelay(fd int) error                            { return api.ErrNotSupported }
func KeepAlive(fd int) error                             { return api.ErrNotSupported }
func SetSendBuffer(fd, size int) error                   { return api.ErrNotSupported }
func Connect(host string, port int) (int, error)         { return -1, api.ErrNotSupported }
func NonBlockConnect(host string, port int) (int, error) { return -1, api.ErrNotSupported }
func Read(fd int, buf []byte) (int, error)               { return 0, api.ErrNotSupported }
func Write(fd int, buf []byte) (int, error)              { return 0, api.ErrNotSupported }
func Close(fd int) error                                 { return api.ErrNotSupported }
func WouldBlock(err error) bool                          { return false }

func ConnectTimeout(host string, port int, timeout time.Duration) (int, error) {
	return -1, api.ErrNotSupported
}
