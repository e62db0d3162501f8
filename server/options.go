package server

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/coregx/roomcast"
)

// Framing selects how message boundaries are carried on the wire once a
// connection has negotiated its role.
type Framing string

const (
	// FramingRaw treats every transport read as one message and writes
	// messages back-to-back with nothing in between.
	FramingRaw Framing = "raw"

	// FramingLength prefixes every message with its length as a 4-byte
	// big-endian unsigned integer, in both directions.
	FramingLength Framing = "length"
)

// Defaults applied by New.
const (
	DefaultReadBufferSize = 1024
	DefaultMaxFrameSize   = 1 << 20
)

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets the logger for the server and its sessions.
func WithLogger(logger roomcast.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithIdleTimeout disconnects peers that stay silent for d: negotiating or
// publishing peers that send nothing, and subscribers that receive nothing.
// Zero disables the timeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) error {
		if d < 0 {
			return fmt.Errorf("idle timeout must be >= 0, got %s", d)
		}
		s.idleTimeout = d
		return nil
	}
}

// WithReadBufferSize sets the size of a single transport read. With raw
// framing it is also the largest message a publisher can send in one piece.
func WithReadBufferSize(size int) Option {
	return func(s *Server) error {
		if size <= 0 {
			return fmt.Errorf("read buffer size must be > 0, got %d", size)
		}
		s.readBufferSize = size
		return nil
	}
}

// WithFraming selects the wire framing used after negotiation.
func WithFraming(framing Framing) Option {
	return func(s *Server) error {
		switch framing {
		case FramingRaw, FramingLength:
			s.framing = framing
			return nil
		default:
			return fmt.Errorf("unknown framing %q", framing)
		}
	}
}

// WithMaxFrameSize bounds the payload of a length-prefixed frame.
func WithMaxFrameSize(size int) Option {
	return func(s *Server) error {
		if size <= 0 {
			return fmt.Errorf("max frame size must be > 0, got %d", size)
		}
		s.maxFrameSize = size
		return nil
	}
}

// WithTLSConfig wraps every accepted connection in TLS.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(s *Server) error {
		if cfg == nil {
			return fmt.Errorf("tls config cannot be nil")
		}
		s.tlsConfig = cfg
		return nil
	}
}
