// File: server/client.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Per-connection state. Replies are queued and flushed by the writable
// handler; the writable event is registered only while the queue is
// non-empty.

package server

import (
	"time"

	"github.com/eapache/queue"
	"github.com/momentics/hioload-kv/api"
)

// Client is one connected peer.
type Client struct {
	srv *Server

	fd   int
	addr string
	port int

	db              *DB
	querybuf        []byte
	reply           *queue.Queue
	sentlen         int
	lastInteraction time.Time
	created         time.Time
	closeAfterReply bool
	writeInstalled  bool
	freed           bool
}

var _ api.Conn = (*Client)(nil)

func newClient(s *Server, fd int, addr string, port int) *Client {
	now := s.now()
	return &Client{
		srv:             s,
		fd:              fd,
		addr:            addr,
		port:            port,
		db:              s.dbs[0],
		reply:           queue.New(),
		lastInteraction: now,
		created:         now,
	}
}

// FD returns the connection descriptor.
func (c *Client) FD() int { return c.fd }

// Addr returns the peer address.
func (c *Client) Addr() (string, int) { return c.addr, c.port }

// DB returns the index of the selected database.
func (c *Client) DB() int { return c.db.id }

// Database returns the selected database.
func (c *Client) Database() *DB { return c.db }

// Server returns the owning server.
func (c *Client) Server() *Server { return c.srv }

// Select switches the selected database.
func (c *Client) Select(id int) error {
	db, err := c.srv.DB(id)
	if err != nil {
		return err
	}
	c.db = db
	return nil
}

// Reply queues b for delivery. b must not be modified afterwards.
func (c *Client) Reply(b []byte) {
	if c.freed || len(b) == 0 {
		return
	}
	c.reply.Add(b)
	c.srv.installWriteHandler(c)
}

// CloseAfterReply frees the client once every queued reply is written.
func (c *Client) CloseAfterReply() {
	c.closeAfterReply = true
	if c.reply.Length() == 0 {
		c.srv.installWriteHandler(c)
	}
}

// Pending returns the number of queued replies.
func (c *Client) Pending() int { return c.reply.Length() }

// IdleFor returns the time since the last read or write.
func (c *Client) IdleFor(now time.Time) time.Duration {
	return now.Sub(c.lastInteraction)
}
