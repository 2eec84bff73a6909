// File: server/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Server owns the reactor, the numbered databases and the clients table,
// and drives them from a single goroutine.

package server

import (
	"fmt"
	"strconv"
	"time"

	"github.com/eapache/queue"
	"github.com/google/uuid"
	"github.com/momentics/hioload-kv/adapters"
	"github.com/momentics/hioload-kv/api"
	"github.com/momentics/hioload-kv/control"
	"github.com/momentics/hioload-kv/dict"
	"github.com/momentics/hioload-kv/internal/transport"
	"github.com/momentics/hioload-kv/reactor"
	"go.uber.org/zap"
)

// Server is the key-value server context. Apart from Stop, its methods must
// be called from the goroutine running the reactor.
type Server struct {
	cfg         control.Config
	logger      *zap.Logger
	reactor     *reactor.Reactor
	poller      reactor.Poller
	dispatcher  api.Dispatcher
	snapshotter api.Snapshotter
	metrics     *control.Metrics
	probes      *control.DebugProbes
	store       *control.ConfigStore
	control     api.Control
	now         func() time.Time

	dbs      []*DB
	clients  *dict.Dict[int, *Client, *Server]
	listenFD int
	cronID   int64

	objFreeList    *queue.Queue
	maxObjFreeList int
	readBuf        []byte

	maxIdle      time.Duration
	saveParams   []SavePoint
	cronInterval int

	runID     uuid.UUID
	startTime time.Time
	lastSave  time.Time
	dirty     int64
	cronLoops int64

	statNumCommands    int64
	statNumConnections int64

	closed bool
}

// New creates a server from cfg: databases, clients table, reactor and the
// maintenance timer. It does not open the listening socket.
func New(cfg control.Config, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		cfg:            cfg,
		listenFD:       -1,
		maxObjFreeList: MaxObjFreeList,
		objFreeList:    queue.New(),
		readBuf:        make([]byte, QueryBufLen),
		runID:          uuid.New(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.metrics == nil {
		s.metrics = control.NewMetrics()
	}
	if s.probes == nil {
		s.probes = control.NewDebugProbes()
	}
	if s.dispatcher == nil {
		s.dispatcher = api.DispatcherFunc(func(_ api.Conn, q []byte) (int, error) {
			return len(q), nil
		})
	}
	if s.poller == nil {
		p, err := reactor.NewPoller(reactor.PollerKind(cfg.Poller))
		if err != nil {
			return nil, fmt.Errorf("poller %q: %w", cfg.Poller, err)
		}
		s.poller = p
	}

	r, err := reactor.New(
		reactor.WithPoller(s.poller),
		reactor.WithLogger(s.logger.Named("reactor")),
		reactor.WithClock(s.now),
	)
	if err != nil {
		return nil, err
	}
	s.reactor = r

	s.dbs = make([]*DB, cfg.Databases)
	for i := range s.dbs {
		s.dbs[i] = &DB{id: i, srv: s, dict: dict.New(keySpaceType(), s)}
	}
	s.clients = dict.New(clientTableType(), s)

	s.startTime = s.now()
	s.lastSave = s.startTime
	s.applyConfig(cfg)

	s.cronID = reactor.AddTimeEvent(r, int64(s.cronInterval), serverCron, s, nil)
	s.registerProbes()

	if s.store == nil {
		s.store = control.NewConfigStore(cfg)
	}
	s.store.OnReload(s.applyConfig)
	s.control = adapters.NewControlAdapter(s.store, s.metrics, s.probes)

	s.logger.Info("server initialized",
		zap.String("run_id", s.runID.String()),
		zap.Int("databases", cfg.Databases),
		zap.String("poller", cfg.Poller),
	)
	return s, nil
}

// applyConfig installs the settings that may change at runtime.
func (s *Server) applyConfig(cfg control.Config) {
	s.cfg.MaxIdleTime = cfg.MaxIdleTime
	s.cfg.Save = cfg.Save
	s.cfg.CronIntervalMs = cfg.CronIntervalMs

	s.maxIdle = time.Duration(cfg.MaxIdleTime) * time.Second
	s.cronInterval = cfg.CronIntervalMs
	s.saveParams = s.saveParams[:0]
	for _, sp := range cfg.Save {
		s.saveParams = append(s.saveParams, SavePoint{
			After:   time.Duration(sp.Seconds) * time.Second,
			Changes: int64(sp.Changes),
		})
	}
}

func (s *Server) registerProbes() {
	for _, db := range s.dbs {
		s.probes.RegisterProbe("db."+strconv.Itoa(db.id), func() any {
			return db.dict.Stats()
		})
	}
	s.probes.RegisterProbe("server.info", func() any { return s.Info() })
	s.probes.RegisterProbe("reactor.stats", func() any { return s.reactor.Stats() })
	control.RegisterPlatformProbes(s.probes)
}

// DB returns database id.
func (s *Server) DB(id int) (*DB, error) {
	if id < 0 || id >= len(s.dbs) {
		return nil, api.ErrInvalidArgument.WithContext("db", id)
	}
	return s.dbs[id], nil
}

// Reactor exposes the event loop.
func (s *Server) Reactor() *reactor.Reactor { return s.reactor }

// Metrics exposes the metrics set.
func (s *Server) Metrics() *control.Metrics { return s.metrics }

// Control exposes metrics, probes and reload hooks through one surface.
func (s *Server) Control() api.Control { return s.control }

// ConfigStore returns the store the server follows for reloads.
func (s *Server) ConfigStore() *control.ConfigStore { return s.store }

// Probes exposes the debug probes.
func (s *Server) Probes() *control.DebugProbes { return s.probes }

// Logger returns the server logger.
func (s *Server) Logger() *zap.Logger { return s.logger }

// Dirty returns the number of writes since the last snapshot.
func (s *Server) Dirty() int64 { return s.dirty }

// NumClients returns the number of connected clients.
func (s *Server) NumClients() int { return s.clients.Len() }

// Client returns the client connected on fd.
func (s *Server) Client(fd int) (*Client, bool) {
	return s.clients.Fetch(fd)
}

// Listen opens the listening socket and registers it with the reactor.
func (s *Server) Listen() error {
	if s.listenFD >= 0 {
		return nil
	}
	fd, err := transport.TCPServer(s.cfg.Bind, s.cfg.Port)
	if err != nil {
		return fmt.Errorf("listen %s:%d: %w", s.cfg.Bind, s.cfg.Port, err)
	}
	if err := transport.NonBlock(fd); err != nil {
		transport.Close(fd)
		return err
	}
	if _, err := reactor.AddFileEvent(s.reactor, fd, reactor.Readable, acceptHandler, s, nil); err != nil {
		transport.Close(fd)
		return err
	}
	s.listenFD = fd
	ip, port, _ := transport.SockName(fd)
	s.logger.Info("accepting connections", zap.String("addr", ip), zap.Int("port", port))
	return nil
}

// Addr returns the bound listening address.
func (s *Server) Addr() (string, int, error) {
	if s.listenFD < 0 {
		return "", 0, api.ErrNotFound.WithContext("listener", "not listening")
	}
	return transport.SockName(s.listenFD)
}

// Run listens if needed and processes events until Stop.
func (s *Server) Run() error {
	if s.closed {
		return api.ErrNotSupported.WithContext("server", "closed")
	}
	if err := s.Listen(); err != nil {
		return err
	}
	s.logger.Info("server started", zap.String("version", Version))
	s.reactor.Run()
	return nil
}

// Stop makes Run return after the current pass. Safe from any goroutine.
func (s *Server) Stop() {
	s.reactor.Stop()
}

// Shutdown frees every client, closes the listener and releases the
// reactor. Repeated calls are no-ops.
func (s *Server) Shutdown() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.reactor.Stop()

	it := s.clients.Iterator()
	for e := it.Next(); e != nil; e = it.Next() {
		s.freeClient(e.Value())
	}
	if s.listenFD >= 0 {
		s.reactor.DeleteFileEvent(s.listenFD, reactor.Readable)
		transport.Close(s.listenFD)
		s.listenFD = -1
	}
	s.reactor.DeleteTimeEvent(s.cronID)
	err := s.reactor.Close()
	s.logger.Info("server shut down",
		zap.Int64("connections", s.statNumConnections),
		zap.Int64("commands", s.statNumCommands),
	)
	return err
}
