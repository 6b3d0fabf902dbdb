package p2p

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is how long a connection waits on a read or a write.
const DefaultTimeout = 5 * time.Second

// Handler processes a message received from a peer. A non nil message
// returned by the handler is written back to the peer.
type Handler func(ctx context.Context, msg Message) (*Message, error)

// ServerConfig represents the configuration for the p2p server.
type ServerConfig struct {
	Host      string
	Handler   Handler
	Timeout   time.Duration
	EvHandler func(v string, args ...any)
}

// Server accepts connections from peers. Every connection is handled on its
// own goroutine and carries a single message.
type Server struct {
	host      string
	handler   Handler
	timeout   time.Duration
	evHandler func(v string, args ...any)

	listener net.Listener
	wg       sync.WaitGroup
	shut     chan struct{}
	once     sync.Once
}

// NewServer constructs a server for the specified host.
func NewServer(cfg ServerConfig) *Server {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Server{
		host:      cfg.Host,
		handler:   cfg.Handler,
		timeout:   timeout,
		evHandler: ev,
		shut:      make(chan struct{}),
	}
}

// Start binds the listener and begins accepting connections.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.host)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.host, err)
	}
	s.listener = listener

	s.evHandler("p2p: Start: listening: host[%s]", listener.Addr())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptConnections()
	}()

	return nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.host
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting connections and waits for the connections in
// flight to complete or the context to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.evHandler("p2p: Shutdown: started")
	defer s.evHandler("p2p: Shutdown: completed")

	s.once.Do(func() {
		close(s.shut)
		if s.listener != nil {
			s.listener.Close()
		}
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================

func (s *Server) acceptConnections() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shut:
				return
			default:
			}

			if errors.Is(err, net.ErrClosed) {
				return
			}

			s.evHandler("p2p: accept: ERROR: %s", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection performs one read, dispatch and optional write before
// the connection is closed.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	traceID := uuid.NewString()
	remote := conn.RemoteAddr().String()

	conn.SetDeadline(time.Now().Add(s.timeout))

	msg, err := Decode(conn)
	if err != nil {
		s.evHandler("p2p: handle: traceid[%s]: remote[%s]: ERROR: %s", traceID, remote, err)
		return
	}

	s.evHandler("p2p: handle: traceid[%s]: remote[%s]: type[%s]", traceID, remote, msg.Type)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	resp, err := s.handler(ctx, msg)
	if err != nil {
		s.evHandler("p2p: handle: traceid[%s]: type[%s]: ERROR: %s", traceID, msg.Type, err)
		return
	}

	if resp == nil {
		return
	}

	conn.SetWriteDeadline(time.Now().Add(s.timeout))

	if err := Encode(conn, *resp); err != nil {
		s.evHandler("p2p: handle: traceid[%s]: reply[%s]: ERROR: %s", traceID, resp.Type, err)
		return
	}

	s.evHandler("p2p: handle: traceid[%s]: reply[%s]", traceID, resp.Type)
}
