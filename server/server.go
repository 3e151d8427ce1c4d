package server

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"snake-arena/constants"
	"snake-arena/game"
	"snake-arena/logging"
	"snake-arena/models"
)

// ErrArenaFull is returned when every player slot is taken.
var ErrArenaFull = errors.New("arena full")

type Config struct {
	Addr    string // TCP listen address
	Players int    // player slot capacity
}

type inboundMsg struct {
	slot int
	msg  models.ClientMsg
}

// Server owns the authoritative world. Only the tick scheduler
// goroutine touches it; reader pumps communicate through the inbound
// channel and pruning goes through the leave channel, so the hot
// simulation path needs no locks.
type Server struct {
	cfg     Config
	world   *game.World
	metrics *Metrics

	inbound chan inboundMsg
	leave   chan int
	ready   chan struct{} // closed when every slot has been handed out
	stop    chan struct{}
	stopped sync.Once

	mu       sync.Mutex
	clients  map[int]*client
	accepted int

	lastState atomic.Value // []byte, latest marshaled snapshot
	ln        net.Listener
}

func New(cfg Config) *Server {
	if cfg.Players <= 0 {
		cfg.Players = constants.DEFAULT_PLAYERS
	}
	return &Server{
		cfg:     cfg,
		world:   game.NewWorld(cfg.Players),
		metrics: &Metrics{},
		inbound: make(chan inboundMsg, 256),
		leave:   make(chan int, 4*cfg.Players),
		ready:   make(chan struct{}),
		stop:    make(chan struct{}),
		clients: make(map[int]*client),
	}
}

// Run binds the TCP listener, fills the player slots in acceptance
// order, then drives the tick loop until every connection is gone.
// Only the bind failure is fatal.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.cfg.Addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	defer ln.Close()

	logging.Log.Infof("listening on %s, waiting for %d players", ln.Addr(), s.cfg.Players)
	go s.acceptLoop(ln)

	select {
	case <-s.ready:
	case <-s.stop:
		return nil
	}

	logging.Log.Infof("all %d slots filled, game on", s.cfg.Players)
	s.loop()
	logging.Log.Info("server shutting down")
	return nil
}

// Stop force-closes the listener and every client connection.
func (s *Server) Stop() {
	s.stopped.Do(func() {
		close(s.stop)
		s.mu.Lock()
		ln := s.ln
		s.mu.Unlock()
		if ln != nil {
			_ = ln.Close()
		}
	})
}

// Addr returns the bound listener address, or "" before Run binds it.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return // listener closed
		}
		tc := NewTCPConn(conn)
		if err := s.Register(tc); err != nil {
			logging.Log.Infof("rejecting %s: %v", tc.RemoteAddr(), err)
			_ = tc.Close()
		}
	}
}

// Register assigns the next free slot to conn and starts its pumps.
// Slots are handed out in acceptance order and never reassigned; both
// the TCP accept loop and the WebSocket gateway come through here.
func (s *Server) Register(conn Conn) error {
	s.mu.Lock()
	if s.accepted >= s.cfg.Players {
		s.mu.Unlock()
		return ErrArenaFull
	}
	slot := s.accepted
	s.accepted++
	c := &client{
		slot:    slot,
		session: uuid.NewString(),
		conn:    conn,
		send:    make(chan []byte, 16),
	}
	s.clients[slot] = c
	full := s.accepted == s.cfg.Players
	s.mu.Unlock()

	go s.writePump(c)
	go s.readPump(c)

	logging.Log.Infof("client %s connected as player %d (session %s)",
		conn.RemoteAddr(), slot+1, c.session)

	if full {
		close(s.ready)
	}
	return nil
}

func (s *Server) requestLeave(slot int) {
	select {
	case s.leave <- slot:
	default:
		// At most two leave requests per slot ever, so the buffered
		// channel cannot actually fill up.
	}
}

// removeClient runs on the scheduler goroutine and is idempotent: both
// pumps of one client may request the same leave.
func (s *Server) removeClient(slot int) {
	s.mu.Lock()
	c, ok := s.clients[slot]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.clients, slot)
	s.mu.Unlock()

	close(c.send)
	_ = c.conn.Close()
	logging.Log.Infof("player %d disconnected (session %s)", slot+1, c.session)
}

func (s *Server) clientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// LastState returns the most recently broadcast snapshot, serialized.
func (s *Server) LastState() []byte {
	if v, ok := s.lastState.Load().([]byte); ok {
		return v
	}
	return nil
}

// Metrics exposes the runtime counters.
func (s *Server) Metrics() *Metrics { return s.metrics }

// SessionInfo describes one occupied slot for the admin surface.
type SessionInfo struct {
	Slot    int    `json:"slot"`
	Session string `json:"session"`
	Remote  string `json:"remote"`
}

// Sessions lists the currently connected slots.
func (s *Server) Sessions() []SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SessionInfo, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, SessionInfo{Slot: c.slot + 1, Session: c.session, Remote: c.conn.RemoteAddr()})
	}
	return out
}
