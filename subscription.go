package roomcast

import (
	"context"
	"sync"

	"github.com/coregx/roomcast/model"
)

// Subscription is one subscriber's bounded, ordered inbox in a room.
// The broadcast engine pushes into it; the owner pulls with Next or Messages.
//
// The owner must Close the subscription when it stops reading. A subscription
// that is never closed and never read holds the room's engine once its
// buffer fills.
type Subscription struct {
	id        string
	room      *Room
	ch        chan model.Message
	done      chan struct{}
	closeOnce sync.Once
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Room returns the room the subscription belongs to.
func (s *Subscription) Room() *Room {
	return s.room
}

// Messages returns the delivery channel. It is closed when the room shuts
// down; it is not closed by Close, so readers should also watch Done.
func (s *Subscription) Messages() <-chan model.Message {
	return s.ch
}

// Done is closed once Close has been called.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Next blocks until the next message arrives. It returns ErrSubscriptionClosed
// after Close or once the room has shut down and the buffer is drained, and
// ctx.Err() if ctx ends first.
func (s *Subscription) Next(ctx context.Context) (model.Message, error) {
	select {
	case <-s.done:
		return model.Message{}, ErrSubscriptionClosed
	default:
	}

	select {
	case m, ok := <-s.ch:
		if !ok {
			return model.Message{}, ErrSubscriptionClosed
		}
		return m, nil
	case <-s.done:
		return model.Message{}, ErrSubscriptionClosed
	case <-ctx.Done():
		return model.Message{}, ctx.Err()
	}
}

// Close unregisters the subscription from its room. An engine blocked on
// this subscription's full buffer is released and moves on. Close is
// idempotent and always returns nil.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.room.unregister(s, LeaveReasonClosed)
	})
	return nil
}
