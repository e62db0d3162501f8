// Package server exposes a roomcast Registry over plain or TLS TCP.
//
// A connection first sends one negotiation line, "pub <tag>" or "sub <tag>",
// and is then a publisher or a subscriber of that room until it disconnects.
// Lines that do not parse are ignored. "quit" while negotiating is answered
// with "QUIT\r\n" and the connection is closed.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/coregx/roomcast"
)

// acceptRetryDelay is how long the accept loop pauses after a failed Accept.
const acceptRetryDelay = 50 * time.Millisecond

// Server accepts connections and runs one session per connection against a
// shared Registry.
//
// Thread safety: Safe for concurrent use. Serve may be called once.
type Server struct {
	registry       *roomcast.Registry
	logger         roomcast.Logger
	idleTimeout    time.Duration
	readBufferSize int
	framing        Framing
	maxFrameSize   int
	tlsConfig      *tls.Config

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
}

// New creates a Server bound to registry.
//
// Example:
//
//	srv, err := server.New(registry,
//	    server.WithLogger(logger),
//	    server.WithIdleTimeout(30*time.Second),
//	)
//	err = srv.ListenAndServe(ctx, ":5555")
func New(registry *roomcast.Registry, opts ...Option) (*Server, error) {
	if registry == nil {
		return nil, roomcast.NewError(roomcast.ErrCodeConfiguration, "registry is required")
	}

	s := &Server{
		registry:       registry,
		logger:         &roomcast.NoopLogger{},
		readBufferSize: DefaultReadBufferSize,
		framing:        FramingRaw,
		maxFrameSize:   DefaultMaxFrameSize,
		conns:          make(map[net.Conn]struct{}),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, roomcast.NewErrorWithCause(roomcast.ErrCodeConfiguration, "failed to apply server option", err)
		}
	}

	return s, nil
}

// ListenAndServe listens on the TCP address addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled. On return the
// listener and every open connection are closed and all sessions have ended.
// A canceled ctx is a clean shutdown and yields a nil error.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.tlsConfig != nil {
		ln = tls.NewListener(ln, s.tlsConfig)
	}

	s.mu.Lock()
	if s.listener != nil {
		s.mu.Unlock()
		_ = ln.Close()
		return fmt.Errorf("server is already serving on %s", s.listener.Addr())
	}
	s.listener = ln
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})
	defer stop()
	defer s.shutdown()

	s.logger.Infof("Listening on %s (tls=%t, framing=%s)", ln.Addr(), s.tlsConfig != nil, s.framing)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Errorf("Accept error: %v", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(acceptRetryDelay):
			}
			continue
		}

		if !s.track(conn) {
			_ = conn.Close()
			return nil
		}
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handle(ctx, conn)
		}()
	}
}

// Addr returns the listener's address, or nil before Serve is called.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// track registers conn and reserves a slot in the session WaitGroup.
// It returns false once shutdown has started.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	if s.conns != nil {
		delete(s.conns, conn)
	}
	s.mu.Unlock()
	_ = conn.Close()
}

// shutdown closes the listener and every open connection, then waits for
// their sessions to finish.
func (s *Server) shutdown() {
	s.mu.Lock()
	_ = s.listener.Close()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()

	for conn := range conns {
		_ = conn.Close()
	}
	s.wg.Wait()

	s.logger.Infof("Server stopped (closed %d connections)", len(conns))
}

// handle runs one session and logs how it ended.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	sess := newSession(s, conn)
	s.logger.Debugf("Connection %s established from %s", sess.id, conn.RemoteAddr())

	err := sess.run(ctx)
	switch {
	case err == nil, isDisconnect(err):
		s.logger.Debugf("Connection %s closed", sess.id)
	case roomcast.IsClosed(err):
		s.logger.Debugf("Connection %s closed: %v", sess.id, err)
	default:
		s.logger.Warnf("Connection %s ended with error: %v", sess.id, err)
	}
}
