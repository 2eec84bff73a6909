// File: server/networking.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Accept, read, write and teardown handlers run by the reactor.

package server

import (
	"github.com/momentics/hioload-kv/api"
	"github.com/momentics/hioload-kv/internal/transport"
	"github.com/momentics/hioload-kv/reactor"
	"go.uber.org/zap"
)

func acceptHandler(r *reactor.Reactor, fd int, s *Server, _ reactor.Mask) {
	cfd, ip, port, err := transport.Accept(fd)
	if err != nil {
		if !transport.WouldBlock(err) {
			s.logger.Warn("accepting client connection", zap.Error(err))
		}
		return
	}
	s.logger.Debug("accepted", zap.String("addr", ip), zap.Int("port", port))

	if _, err := s.createClient(cfd, ip, port); err != nil {
		s.logger.Warn("allocating resources for the client", zap.Error(err))
		transport.Close(cfd)
		return
	}
	s.statNumConnections++
	s.metrics.ConnectionsTotal.Inc()
}

func (s *Server) createClient(fd int, ip string, port int) (*Client, error) {
	if err := transport.NonBlock(fd); err != nil {
		return nil, err
	}
	_ = transport.TCPNoDelay(fd)

	c := newClient(s, fd, ip, port)
	if _, err := reactor.AddFileEvent(s.reactor, fd, reactor.Readable, readQueryFromClient, c, nil); err != nil {
		return nil, err
	}
	if err := s.clients.Add(fd, c); err != nil {
		s.reactor.DeleteFileEvent(fd, reactor.Readable)
		return nil, err
	}
	s.metrics.ConnectedClients.Set(float64(s.clients.Len()))
	return c, nil
}

func readQueryFromClient(r *reactor.Reactor, fd int, c *Client, _ reactor.Mask) {
	s := c.srv
	n, err := transport.Read(fd, s.readBuf)
	if err != nil && !transport.WouldBlock(err) {
		s.logger.Debug("reading from client", zap.Int("fd", fd), zap.Error(err))
		s.freeClient(c)
		return
	}
	eof := err == nil && n < len(s.readBuf)
	if n > 0 {
		c.querybuf = append(c.querybuf, s.readBuf[:n]...)
		c.lastInteraction = s.now()
		s.processInput(c)
	}
	if eof {
		s.logger.Debug("client closed connection", zap.Int("fd", fd))
		s.freeClient(c)
	}
}

// processInput hands buffered bytes to the dispatcher until it stops
// consuming them.
func (s *Server) processInput(c *Client) {
	for len(c.querybuf) > 0 && !c.freed && !c.closeAfterReply {
		consumed, err := s.dispatcher.Dispatch(c, c.querybuf)
		if err != nil {
			s.logger.Debug("protocol error", zap.Int("fd", c.fd), zap.Error(err))
			s.freeClient(c)
			return
		}
		if consumed <= 0 {
			break
		}
		if consumed > len(c.querybuf) {
			err := api.ErrInternal.WithContext("consumed", consumed).WithContext("buffered", len(c.querybuf))
			s.logger.Error("dispatcher overran query buffer", zap.Int("fd", c.fd), zap.Error(err))
			s.freeClient(c)
			return
		}
		c.querybuf = c.querybuf[consumed:]
		s.statNumCommands++
		s.metrics.CommandsTotal.Inc()
	}
	if c.freed {
		return
	}
	if len(c.querybuf) > MaxQueryLen {
		s.logger.Warn("client query buffer too large", zap.Int("fd", c.fd), zap.Int("len", len(c.querybuf)))
		s.freeClient(c)
		return
	}
	if len(c.querybuf) == 0 {
		c.querybuf = nil
	}
}

func (s *Server) installWriteHandler(c *Client) {
	if c.writeInstalled || c.freed {
		return
	}
	if _, err := reactor.AddFileEvent(s.reactor, c.fd, reactor.Writable, sendReplyToClient, c, nil); err != nil {
		s.logger.Warn("installing write handler", zap.Int("fd", c.fd), zap.Error(err))
		s.freeClient(c)
		return
	}
	c.writeInstalled = true
}

func sendReplyToClient(r *reactor.Reactor, fd int, c *Client, _ reactor.Mask) {
	s := c.srv
	for c.reply.Length() > 0 {
		b := c.reply.Peek().([]byte)
		n, err := transport.Write(fd, b[c.sentlen:])
		c.sentlen += n
		if err != nil {
			if transport.WouldBlock(err) {
				break
			}
			s.logger.Debug("writing to client", zap.Int("fd", fd), zap.Error(err))
			s.freeClient(c)
			return
		}
		if c.sentlen < len(b) {
			break
		}
		c.sentlen = 0
		c.reply.Remove()
	}
	c.lastInteraction = s.now()

	if c.reply.Length() == 0 {
		r.DeleteFileEvent(fd, reactor.Writable)
		c.writeInstalled = false
		if c.closeAfterReply {
			s.freeClient(c)
		}
	}
}

// freeClient unregisters the client's events, closes its descriptor and
// drops it from the clients table. Safe to call while iterating the table.
func (s *Server) freeClient(c *Client) {
	if c.freed {
		return
	}
	c.freed = true
	s.reactor.DeleteFileEvent(c.fd, reactor.Readable)
	if c.writeInstalled {
		s.reactor.DeleteFileEvent(c.fd, reactor.Writable)
		c.writeInstalled = false
	}
	transport.Close(c.fd)
	_ = s.clients.Delete(c.fd)
	for c.reply.Length() > 0 {
		c.reply.Remove()
	}
	c.querybuf = nil
	s.metrics.ConnectedClients.Set(float64(s.clients.Len()))
}
