// File: internal/transport/anet.go
//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw TCP socket helpers over golang.org/x/sys/unix. Descriptors returned
// here are plain ints suitable for reactor file events.

package transport

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/momentics/hioload-kv/api"
	"github.com/momentics/hioload-kv/reactor"
	"golang.org/x/sys/unix"
)

const listenBacklog = 511

// Resolve returns the dotted IPv4 address of host.
func Resolve(host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil && ip.To4() != nil {
		return ip.To4().String(), nil
	}
	addrs, err := net.LookupIP(host)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", host, err)
	}
	for _, ip := range addrs {
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return "", fmt.Errorf("resolve %s: no IPv4 address", host)
}

func sockaddr(host string, port int) (*unix.SockaddrInet4, error) {
	sa := &unix.SockaddrInet4{Port: port}
	if host == "" {
		return sa, nil
	}
	ip, err := Resolve(host)
	if err != nil {
		return nil, err
	}
	copy(sa.Addr[:], net.ParseIP(ip).To4())
	return sa, nil
}

// TCPServer creates a listening socket bound to bind:port. An empty bind
// address listens on all interfaces; port 0 picks an ephemeral port.
func TCPServer(bind string, port int) (int, error) {
	sa, err := sockaddr(bind, port)
	if err != nil {
		return -1, err
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("setsockopt SO_REUSEADDR: %w", err)
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("bind: %w", err)
	}
	if err := unix.Listen(fd, listenBacklog); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("listen: %w", err)
	}
	return fd, nil
}

// Accept takes one pending connection. EINTR is retried; EAGAIN on a
// non-blocking listener is returned wrapped.
func Accept(fd int) (cfd int, ip string, port int, err error) {
	for {
		var sa unix.Sockaddr
		cfd, sa, err = unix.Accept(fd)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return -1, "", 0, fmt.Errorf("accept: %w", err)
		}
		ip, port = addrOf(sa)
		return cfd, ip, port, nil
	}
}

func addrOf(sa unix.Sockaddr) (string, int) {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.IP(a.Addr[:]).String(), a.Port
	case *unix.SockaddrInet6:
		return net.IP(a.Addr[:]).String(), a.Port
	}
	return "", 0
}

// SockName returns the local address of fd.
func SockName(fd int) (string, int, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return "", 0, fmt.Errorf("getsockname: %w", err)
	}
	ip, port := addrOf(sa)
	return ip, port, nil
}

// PeerName returns the remote address of fd.
func PeerName(fd int) (string, int, error) {
	sa, err := unix.Getpeername(fd)
	if err != nil {
		return "", 0, fmt.Errorf("getpeername: %w", err)
	}
	ip, port := addrOf(sa)
	return ip, port, nil
}

// NonBlock sets O_NONBLOCK on fd.
func NonBlock(fd int) error {
	if err := unix.SetNonblock(fd, true); err != nil {
		return fmt.Errorf("fcntl O_NONBLOCK: %w", err)
	}
	return nil
}

// TCPNoDelay disables Nagle's algorithm on fd.
func TCPNoDelay(fd int) error {
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
		return fmt.Errorf("setsockopt TCP_NODELAY: %w", err)
	}
	return nil
}

// KeepAlive enables SO_KEEPALIVE on fd.
func KeepAlive(fd int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1); err != nil {
		return fmt.Errorf("setsockopt SO_KEEPALIVE: %w", err)
	}
	return nil
}

// SetSendBuffer sets SO_SNDBUF on fd.
func SetSendBuffer(fd, size int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, size); err != nil {
		return fmt.Errorf("setsockopt SO_SNDBUF: %w", err)
	}
	return nil
}

func genericConnect(host string, port int, nonblock bool) (int, error) {
	sa, err := sockaddr(host, port)
	if err != nil {
		return -1, err
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("socket: %w", err)
	}
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	if nonblock {
		if err := NonBlock(fd); err != nil {
			unix.Close(fd)
			return -1, err
		}
	}
	if err := unix.Connect(fd, sa); err != nil {
		if nonblock && errors.Is(err, unix.EINPROGRESS) {
			return fd, nil
		}
		unix.Close(fd)
		return -1, fmt.Errorf("connect: %w", err)
	}
	return fd, nil
}

// Connect opens a blocking TCP connection to host:port.
func Connect(host string, port int) (int, error) {
	return genericConnect(host, port, false)
}

// NonBlockConnect starts a non-blocking connect. The returned fd becomes
// writable once the connection completes or fails.
func NonBlockConnect(host string, port int) (int, error) {
	return genericConnect(host, port, true)
}

// ConnectTimeout connects without blocking longer than timeout. The
// returned fd is left non-blocking.
func ConnectTimeout(host string, port int, timeout time.Duration) (int, error) {
	fd, err := NonBlockConnect(host, port)
	if err != nil {
		return -1, err
	}
	ready, err := reactor.Wait(fd, reactor.Writable, timeout)
	if err != nil {
		unix.Close(fd)
		if errors.Is(err, api.ErrOperationTimeout) {
			return -1, api.ErrOperationTimeout.WithContext("host", host).WithContext("port", port)
		}
		return -1, fmt.Errorf("connect: %w", err)
	}
	if ready&reactor.Writable == 0 {
		unix.Close(fd)
		return -1, fmt.Errorf("connect: unexpected readiness %s", ready)
	}
	soerr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err == nil && soerr != 0 {
		err = unix.Errno(soerr)
	}
	if err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("connect: %w", err)
	}
	return fd, nil
}

// Read fills buf from fd, returning early only on EOF. On a blocking fd
// it returns len(buf) unless the peer closed.
func Read(fd int, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := unix.Read(fd, buf[total:])
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return total, fmt.Errorf("read: %w", err)
		}
		if n == 0 {
			return total, nil
		}
		total += n
	}
	return total, nil
}

// Write sends all of buf to fd.
func Write(fd int, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := unix.Write(fd, buf[total:])
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return total, fmt.Errorf("write: %w", err)
		}
		if n == 0 {
			return total, nil
		}
		total += n
	}
	return total, nil
}

// Close closes fd.
func Close(fd int) error {
	return unix.Close(fd)
}

// WouldBlock reports whether err is EAGAIN/EWOULDBLOCK from a
// non-blocking descriptor.
func WouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}
