package roomcast

import (
	"context"

	"github.com/coregx/roomcast/model"
)

// PublishHandle feeds messages into a room's intake channel.
// Handles are cheap; each publishing connection holds its own.
//
// Thread safety: Safe for concurrent use.
type PublishHandle struct {
	room *Room
}

// Room returns the room the handle publishes to.
func (h *PublishHandle) Room() *Room {
	return h.room
}

// Publish copies data into a new message and enqueues it for broadcast.
//
// When the intake channel is full Publish blocks until the engine makes room,
// which propagates backpressure to the caller. It returns ErrRoomClosed if the
// room shuts down, or ctx.Err() if ctx ends first.
func (h *PublishHandle) Publish(ctx context.Context, data []byte) error {
	select {
	case <-h.room.ctx.Done():
		return ErrRoomClosed
	default:
	}

	msg := model.NewMessage(h.room.tag, data)

	select {
	case h.room.intake <- msg:
		return nil
	case <-h.room.ctx.Done():
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
