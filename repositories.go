package roomcast

import (
	"context"
	"time"

	"github.com/coregx/roomcast/model"
)

// RoomRepository defines the persistence interface for room audit records.
//
// Implementations must be safe for concurrent use.
type RoomRepository interface {
	// Save creates a new room record (if ID=0) or updates an existing one.
	// Returns the saved record with populated ID.
	Save(ctx context.Context, m model.RoomRecord) (model.RoomRecord, error)

	// GetByTag retrieves the record of a room by its tag.
	// Returns ErrNoData if not found.
	GetByTag(ctx context.Context, tag string) (model.RoomRecord, error)

	// List retrieves all room records ordered by creation time.
	// Returns ErrNoData if there are none.
	List(ctx context.Context) ([]model.RoomRecord, error)
}

// MessageRepository defines the persistence interface for archived messages.
// Archived messages form a write-mostly audit trail; they are never replayed.
type MessageRepository interface {
	// Save creates a new archived message (if ID=0) or updates an existing one.
	// Returns the saved message with populated ID.
	Save(ctx context.Context, m model.ArchivedMessage) (model.ArchivedMessage, error)

	// FindRecent retrieves up to limit archived messages of a room, newest first.
	// Returns ErrNoData if none found.
	FindRecent(ctx context.Context, roomTag string, limit int) ([]model.ArchivedMessage, error)

	// DeleteOlderThan removes archived messages created before cutoff and
	// returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
