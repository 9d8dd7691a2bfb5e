package exchange

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/yourusername/surge/pkg/surge/socket"
)

// Server accepts connections on a net.Listener and runs one ExchangeDriver
// per connection, tuning each socket before handing it to the driver loop.
//
// Grounded on shockwave/pkg/shockwave/server/server_shockwave.go's
// ShockwaveServer.Serve/handleConnection: kept the accept-loop shape
// (shutdown flag, per-connection goroutine, WaitGroup/atomic connection
// tracking; Close does not wait for in-flight connections),
// generalized the concrete http11.Handler func type into the
// RouteRegistry/ActionChain collaborators this package already defines, and
// added the socket.Apply tuning step the teacher's own handleConnection
// never calls (it sets only net.Conn deadlines).
type Server struct {
	Cfg        *Config
	Routes     RouteRegistry
	Actions    ActionChain
	SocketCfg  *socket.Config

	listener net.Listener
	wg       sync.WaitGroup
	shutdown atomic.Bool

	activeConns atomic.Int64
}

// NewServer wires a Server from its collaborators. cfg and socketCfg may be
// nil to take their package defaults.
func NewServer(routes RouteRegistry, actions ActionChain, cfg *Config, socketCfg *socket.Config) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if socketCfg == nil {
		socketCfg = socket.DefaultConfig()
	}
	return &Server{Cfg: cfg, Routes: routes, Actions: actions, SocketCfg: socketCfg}
}

// ListenAndServe listens on addr and serves until Close is called or Serve
// returns a fatal accept error.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("surge: listen on %s: %w", addr, err)
	}
	if terr := socket.ApplyListener(ln, s.SocketCfg); terr != nil {
		s.Cfg.logger().Warn("socket tuning failed on listener", "error", terr)
	}
	return s.Serve(ln)
}

// Serve accepts connections on l, tuning and dispatching each to its own
// ExchangeDriver goroutine.
func (s *Server) Serve(l net.Listener) error {
	s.listener = l
	defer l.Close()

	for {
		if s.shutdown.Load() {
			return nil
		}

		conn, err := l.Accept()
		if err != nil {
			if s.shutdown.Load() {
				return nil
			}
			s.Cfg.logger().Error("accept failed", "error", err)
			continue
		}

		if terr := socket.Apply(conn, s.SocketCfg); terr != nil {
			s.Cfg.logger().Warn("socket tuning failed on connection", "error", terr)
		}

		s.activeConns.Add(1)
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer s.activeConns.Add(-1)
	defer conn.Close()

	driver := NewExchangeDriver(conn, s.Cfg, s.Routes, s.Actions)
	if err := driver.Serve(); err != nil {
		s.Cfg.logger().Debug("exchange driver exited", "error", err, "requests", driver.RequestCount())
	}
}

// ActiveConnections reports the number of connections currently being
// served.
func (s *Server) ActiveConnections() int64 { return s.activeConns.Load() }

// Close stops accepting new connections. In-flight connections are left to
// finish their current exchange and close naturally (no forced shutdown,
// matching spec.md's scope: connection-level graceful drain is a caller
// concern layered on top of Serve, not a feature this package re-implements).
func (s *Server) Close() error {
	if !s.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}
