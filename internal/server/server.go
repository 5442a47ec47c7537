package server

import (
	"log"
	"net"
	"sync"
	"time"

	"github.com/fight-club/lockstep/internal/config"
)

// Server owns the room registry and both listening endpoints. Constructing
// a Server opens no sockets and starts no goroutines; call Start to do so,
// so the registry and its rooms can be exercised in tests without binding
// a port.
type Server struct {
	cfg      config.ServerConfig
	registry *Registry

	kcpListener net.Listener
	tcpListener net.Listener

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New constructs a Server from the given configuration.
func New(cfg config.ServerConfig) *Server {
	tickInterval := time.Second / time.Duration(cfg.TickRateHz)
	return &Server{
		cfg:      cfg,
		registry: NewRegistry(cfg.MaxPlayersPerRoom, tickInterval),
		stopCh:   make(chan struct{}),
	}
}

// Start opens the KCP and TCP listeners, starts an accept loop for each,
// and starts the heartbeat/cleanup sweeper. It returns once both listeners
// are bound; connection handling continues in background goroutines.
func (s *Server) Start() error {
	kcpLn, err := listenKCP(s.cfg.KCPAddr)
	if err != nil {
		return err
	}
	s.kcpListener = kcpLn

	tcpLn, err := listenTCP(s.cfg.TCPAddr)
	if err != nil {
		kcpLn.Close()
		return err
	}
	s.tcpListener = tcpLn

	log.Printf("server: KCP listening on %s", s.cfg.KCPAddr)
	log.Printf("server: TCP listening on %s", s.cfg.TCPAddr)

	s.wg.Add(3)
	go s.acceptLoop(s.kcpListener)
	go s.acceptLoop(s.tcpListener)
	go func() {
		defer s.wg.Done()
		s.registry.runSweeper(time.Duration(s.cfg.HeartbeatTimeout)*time.Second, s.stopCh)
	}()

	return nil
}

// acceptLoop spawns one goroutine per accepted connection (§5: one accept
// task, one task per connection).
func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()
	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
				log.Printf("server: accept error on %s: %v", ln.Addr(), err)
				return
			}
		}
		go s.registry.serve(nc)
	}
}

// Stop cancels the accept loops and sweeper and closes both listeners.
// In-flight connection goroutines are not force-closed; they drain as
// their peers disconnect or their read deadlines expire (§5: shutting down
// cancels all tasks, partially-buffered frames in a room are discarded —
// we approximate this by simply no longer servicing new ticks once rooms
// empty out).
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.kcpListener != nil {
			s.kcpListener.Close()
		}
		if s.tcpListener != nil {
			s.tcpListener.Close()
		}
	})
}

// Registry exposes the room registry for metrics/admin endpoints.
func (s *Server) Registry() *Registry { return s.registry }

// TCPAddr returns the bound TCP listener address, useful in tests that
// start the server on an OS-assigned port (":0").
func (s *Server) TCPAddr() string {
	if s.tcpListener == nil {
		return ""
	}
	return s.tcpListener.Addr().String()
}
