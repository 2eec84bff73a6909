// File: server/cron.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Periodic maintenance timer.

package server

import (
	"time"

	"github.com/momentics/hioload-kv/api"
	"github.com/momentics/hioload-kv/reactor"
	"go.uber.org/zap"
)

func serverCron(r *reactor.Reactor, _ int64, s *Server) int {
	loops := s.cronLoops
	s.cronLoops++
	s.metrics.CronLoopsTotal.Inc()

	for _, db := range s.dbs {
		size, used := db.dict.Size(), db.dict.Len()
		if loops%statsLogEvery == 0 && used > 0 {
			s.logger.Debug("db stats",
				zap.Int("db", db.id), zap.Int("keys", used), zap.Int("slots", size))
		}
		if size > HTMinSlots && used*100/size < HTMinFill {
			if err := db.dict.ShrinkToFit(); err != nil {
				s.logger.Warn("resizing hash table", zap.Int("db", db.id), zap.Error(err))
			} else {
				s.logger.Info("hash table resized",
					zap.Int("db", db.id), zap.Int("from", size), zap.Int("to", db.dict.Size()))
			}
		}
		s.metrics.SetDB(db.id, db.dict.Len(), db.dict.Size())
	}

	if loops%statsLogEvery == 0 {
		s.logger.Debug("clients connected", zap.Int("clients", s.clients.Len()))
	}

	if s.maxIdle > 0 && loops%idleCheckEvery == 0 {
		s.closeTimedoutClients()
	}

	s.checkSavePoints()

	st := r.Stats()
	s.metrics.ConnectedClients.Set(float64(s.clients.Len()))
	s.metrics.FileEventsTotal.Set(float64(st.FileEventsProcessed))
	s.metrics.TimersFiredTotal.Set(float64(st.TimersFired))
	s.metrics.DirtyKeys.Set(float64(s.dirty))

	return s.cronInterval
}

func (s *Server) closeTimedoutClients() {
	now := s.now()
	it := s.clients.Iterator()
	for e := it.Next(); e != nil; e = it.Next() {
		c := e.Value()
		if c.IdleFor(now) > s.maxIdle {
			s.logger.Debug("closing idle client", zap.Int("fd", c.fd))
			s.freeClient(c)
		}
	}
}

func (s *Server) checkSavePoints() {
	if s.snapshotter == nil {
		return
	}
	now := s.now()
	elapsed := now.Sub(s.lastSave)
	for _, sp := range s.saveParams {
		if s.dirty < sp.Changes || elapsed <= sp.After {
			continue
		}
		s.logger.Info("save point reached",
			zap.Int64("changes", s.dirty), zap.Duration("after", sp.After))
		if err := s.snapshotter.Snapshot(); err != nil {
			s.logger.Warn("snapshot failed", zap.Error(err))
			return
		}
		s.dirty = 0
		s.lastSave = now
		s.metrics.LastSaveTimestamp.Set(float64(now.Unix()))
		return
	}
}

// SaveNow runs the snapshotter immediately.
func (s *Server) SaveNow() error {
	if s.snapshotter == nil {
		return api.ErrNotSupported.WithContext("snapshotter", "none")
	}
	if err := s.snapshotter.Snapshot(); err != nil {
		return err
	}
	s.dirty = 0
	s.lastSave = s.now()
	s.metrics.LastSaveTimestamp.Set(float64(s.lastSave.Unix()))
	return nil
}

// LastSave returns the time of the last successful snapshot.
func (s *Server) LastSave() time.Time { return s.lastSave }
