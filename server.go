package httpmsg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
)

// ServerConfig holds configuration for the server.
type ServerConfig struct {
	// Workers is the maximum number of connections handled at once.
	// Zero means DefaultWorkers.
	Workers int

	// Gate is the admission gate factory.
	// If nil, uses NewChannelGate. NewPuddleGate and NewSemaphoreGate are
	// drop-in alternatives.
	Gate GateFactory

	// Handler answers requests.
	// If nil, serves files from the current directory.
	Handler Handler

	// Logger receives server events.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Server accepts connections and hands each one to its own goroutine,
// admitting at most Workers of them at once. Each worker reads one request,
// writes one response and closes the connection.
type Server struct {
	handler Handler
	gate    Gate
	logger  *slog.Logger
	stats   *serverStatsCollector

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
	closed   bool
}

// NewServer creates a server with the given configuration.
func NewServer(config ServerConfig) (*Server, error) {
	workers := config.Workers
	if workers == 0 {
		workers = DefaultWorkers
	}

	gateFactory := config.Gate
	if gateFactory == nil {
		gateFactory = NewChannelGate
	}

	gate, err := gateFactory(workers)
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handler := config.Handler
	if handler == nil {
		handler = &FileHandler{FS: os.DirFS("."), Logger: logger}
	}

	return &Server{
		handler: handler,
		gate:    gate,
		logger:  logger,
		stats:   newServerStatsCollector(),
	}, nil
}

// ListenAndServe listens on addr and serves until ctx is done or Close is
// called. A listen failure is returned as a SetupError.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return &SetupError{Op: "listen", Addr: addr, Err: err}
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done or Close is called.
// It always returns a non-nil error: ErrServerClosed after Close, the
// context error after cancellation.
//
// Accept failures are logged and do not stop the loop. Connections that
// are already being handled are not waited for.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.listener = ln
	s.cancel = cancel
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.stats.recordAcceptError()
			s.logger.Error("httpmsg: accept failed", "error", err)
			continue
		}
		s.stats.recordAccept()

		token, err := s.gate.Acquire(ctx)
		if err != nil {
			conn.Close()
			if s.isClosed() || errors.Is(err, ErrGateClosed) {
				return ErrServerClosed
			}
			return err
		}

		s.logger.Info("httpmsg: got connection", "remote", conn.RemoteAddr().String())
		go s.serveConn(ctx, token, conn)
	}
}

// serveConn handles a single connection. The token is released and the
// connection closed however the exchange ends.
func (s *Server) serveConn(ctx context.Context, token Token, netConn net.Conn) {
	conn := NewConnection(netConn)
	s.stats.recordWorkerStart()

	defer token.Release()
	defer s.stats.recordWorkerDone()
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			s.stats.recordFailure()
			s.logger.Error("httpmsg: worker panic", "remote", conn.RemoteAddr().String(), "panic", fmt.Sprint(r))
		}
	}()

	if err := s.exchange(ctx, conn); err != nil {
		s.stats.recordFailure()
		s.logger.Warn("httpmsg: connection dropped", "remote", conn.RemoteAddr().String(), "error", err)
	}
}

func (s *Server) exchange(ctx context.Context, conn *Connection) error {
	req, err := conn.ReceiveRequest(ctx)
	if err != nil {
		return fmt.Errorf("receiving request: %w", err)
	}
	s.logger.Info("httpmsg: got request", "request", req.StartLine)

	resp := s.handler.Handle(req.RequestLine())

	if _, err := conn.SendResponse(ctx, resp); err != nil {
		return fmt.Errorf("sending %d response: %w", resp.StatusCode, err)
	}
	s.stats.recordResponse(resp.StatusCode)
	return nil
}

// Addr returns the listener address, or nil before Serve is called.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stats returns a snapshot of server and gate statistics.
func (s *Server) Stats() ServerStats {
	stats := s.stats.snapshot()
	stats.Gate = s.gate.Stats()
	return stats
}

// Close stops the accept loop and closes the gate. Workers already running
// finish on their own; their connections are not interrupted.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.gate.Close()
	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			return err
		}
	}
	return nil
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
