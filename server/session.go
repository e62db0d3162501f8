package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/coregx/roomcast"
	"github.com/coregx/roomcast/model"
)

// quitReply is written before closing a connection that sent "quit".
const quitReply = "QUIT\r\n"

// minReaderSize is the smallest buffer bufio accepts.
const minReaderSize = 16

var errIdleTimeout = errors.New("idle timeout")

// session is the per-connection state machine:
// negotiating, then publishing or subscribing until the transport closes.
type session struct {
	id     string
	server *Server
	conn   net.Conn
	reader *bufio.Reader
}

func newSession(s *Server, conn net.Conn) *session {
	return &session{
		id:     uuid.NewString(),
		server: s,
		conn:   conn,
		reader: bufio.NewReaderSize(conn, max(s.readBufferSize, minReaderSize)),
	}
}

// run drives the session to completion.
func (s *session) run(ctx context.Context) error {
	cmd, err := s.negotiate()
	if err != nil {
		return err
	}

	if cmd.Role == model.RoleQuit {
		_, err := io.WriteString(s.conn, quitReply)
		return err
	}

	room, err := s.server.registry.GetOrCreate(cmd.Tag)
	if err != nil {
		return err
	}

	switch cmd.Role {
	case model.RolePublisher:
		return s.publish(ctx, room)
	case model.RoleSubscriber:
		return s.subscribe(ctx, room)
	default:
		return nil
	}
}

// negotiate reads lines until one parses as a command. Anything else,
// including lines longer than the read buffer, is ignored.
func (s *session) negotiate() (model.Command, error) {
	for {
		s.extendReadDeadline()

		line, err := s.reader.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			s.server.logger.Debugf("Connection %s: ignoring oversized negotiation line", s.id)
			if err := s.discardLine(); err != nil {
				return model.Command{}, err
			}
			continue
		}
		if err != nil {
			return model.Command{}, err
		}

		cmd, err := model.ParseCommand(string(line))
		if err != nil {
			s.server.logger.Debugf("Connection %s: ignoring negotiation line: %v", s.id, err)
			continue
		}
		return cmd, nil
	}
}

// discardLine skips input up to and including the next newline.
func (s *session) discardLine() error {
	for {
		_, err := s.reader.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return err
	}
}

// publish forwards every read (or frame) from the peer into the room.
// Publish blocks while the room's intake is full, which stops this loop from
// reading and pushes backpressure onto the peer.
func (s *session) publish(ctx context.Context, room *roomcast.Room) error {
	handle, err := room.JoinPublisher()
	if err != nil {
		return err
	}
	s.server.logger.Debugf("Connection %s publishing to room %s", s.id, room.Tag())

	if s.server.framing == FramingLength {
		return s.publishFrames(ctx, handle)
	}

	buf := make([]byte, s.server.readBufferSize)
	for {
		s.extendReadDeadline()

		n, err := s.reader.Read(buf)
		if n > 0 {
			if perr := handle.Publish(ctx, buf[:n]); perr != nil {
				return perr
			}
		}
		if err != nil {
			return err
		}
	}
}

// publishFrames is publish for length-prefixed framing. Empty frames are
// skipped.
func (s *session) publishFrames(ctx context.Context, handle *roomcast.PublishHandle) error {
	for {
		s.extendReadDeadline()

		payload, err := ReadFrame(s.reader, s.server.maxFrameSize)
		if err != nil {
			return err
		}
		if len(payload) == 0 {
			continue
		}
		if err := handle.Publish(ctx, payload); err != nil {
			return err
		}
	}
}

// subscribe writes every message of a new subscription to the peer until a
// write fails, the room closes or the idle timeout fires. Input from the peer
// is read and discarded so that a reset is noticed promptly. A clean EOF only
// means the peer half-closed its side; delivery carries on.
func (s *session) subscribe(ctx context.Context, room *roomcast.Room) error {
	sub, err := room.JoinSubscriber()
	if err != nil {
		return err
	}
	defer sub.Close()
	s.server.logger.Debugf("Connection %s subscribed to room %s as %s", s.id, room.Tag(), sub.ID())

	_ = s.conn.SetReadDeadline(time.Time{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := io.Copy(io.Discard, s.reader); err != nil {
			return err
		}
		s.server.logger.Debugf("Connection %s half-closed, still delivering", s.id)
		return nil
	})
	g.Go(func() error {
		// unblock the reader above once delivery stops
		defer s.conn.SetReadDeadline(time.Now()) //nolint:errcheck
		return s.deliver(gctx, sub)
	})

	return g.Wait()
}

// deliver pumps sub into the connection.
func (s *session) deliver(ctx context.Context, sub *roomcast.Subscription) error {
	var (
		idle  <-chan time.Time
		timer *time.Timer
	)
	if s.server.idleTimeout > 0 {
		timer = time.NewTimer(s.server.idleTimeout)
		defer timer.Stop()
		idle = timer.C
	}

	for {
		select {
		case m, ok := <-sub.Messages():
			if !ok {
				return roomcast.ErrRoomClosed
			}
			if err := s.write(m); err != nil {
				return err
			}
			if timer != nil {
				timer.Reset(s.server.idleTimeout)
			}
		case <-idle:
			return errIdleTimeout
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *session) write(m model.Message) error {
	if s.server.idleTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.server.idleTimeout))
	}
	if s.server.framing == FramingLength {
		return WriteFrame(s.conn, m.Payload())
	}
	_, err := s.conn.Write(m.Payload())
	return err
}

func (s *session) extendReadDeadline() {
	if s.server.idleTimeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.server.idleTimeout))
	}
}

// isDisconnect reports whether err is an ordinary end of a session.
func isDisconnect(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, errIdleTimeout) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
