// File: server/info.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"fmt"
	"strings"
	"time"
)

// DBInfo describes one non-empty database.
type DBInfo struct {
	ID      int
	Keys    int
	Buckets int
}

// Info is a point-in-time summary of the server.
type Info struct {
	Version              string
	RunID                string
	Uptime               time.Duration
	ConnectedClients     int
	TotalConnections     int64
	TotalCommands        int64
	ChangesSinceLastSave int64
	LastSave             time.Time
	CronLoops            int64
	Databases            []DBInfo
}

// Info collects the server summary.
func (s *Server) Info() Info {
	info := Info{
		Version:              Version,
		RunID:                s.runID.String(),
		Uptime:               s.now().Sub(s.startTime),
		ConnectedClients:     s.clients.Len(),
		TotalConnections:     s.statNumConnections,
		TotalCommands:        s.statNumCommands,
		ChangesSinceLastSave: s.dirty,
		LastSave:             s.lastSave,
		CronLoops:            s.cronLoops,
	}
	for _, db := range s.dbs {
		if n := db.dict.Len(); n > 0 {
			info.Databases = append(info.Databases, DBInfo{ID: db.id, Keys: n, Buckets: db.dict.Size()})
		}
	}
	return info
}

// String renders the summary as key:value lines.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "version:%s\r\n", i.Version)
	fmt.Fprintf(&b, "run_id:%s\r\n", i.RunID)
	fmt.Fprintf(&b, "uptime_in_seconds:%d\r\n", int64(i.Uptime/time.Second))
	fmt.Fprintf(&b, "uptime_in_days:%d\r\n", int64(i.Uptime/(24*time.Hour)))
	fmt.Fprintf(&b, "connected_clients:%d\r\n", i.ConnectedClients)
	fmt.Fprintf(&b, "changes_since_last_save:%d\r\n", i.ChangesSinceLastSave)
	fmt.Fprintf(&b, "last_save_time:%d\r\n", i.LastSave.Unix())
	fmt.Fprintf(&b, "total_connections_received:%d\r\n", i.TotalConnections)
	fmt.Fprintf(&b, "total_commands_processed:%d\r\n", i.TotalCommands)
	for _, db := range i.Databases {
		fmt.Fprintf(&b, "db%d:keys=%d,buckets=%d\r\n", db.ID, db.Keys, db.Buckets)
	}
	return b.String()
}
