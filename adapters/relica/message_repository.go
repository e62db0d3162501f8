package relica

import (
	"context"
	"database/sql"
	"time"

	"github.com/coregx/relica"

	"github.com/coregx/roomcast"
	"github.com/coregx/roomcast/model"
)

// MessageRepository implements roomcast.MessageRepository using Relica.
type MessageRepository struct {
	db          *relica.DB
	tablePrefix string
}

// NewMessageRepository creates a new MessageRepository with default table prefix.
func NewMessageRepository(sqlDB *sql.DB, driverName string) *MessageRepository {
	return &MessageRepository{db: relica.WrapDB(sqlDB, driverName), tablePrefix: model.DefaultTablePrefix}
}

// NewMessageRepositoryWithPrefix creates a new MessageRepository with custom table prefix.
func NewMessageRepositoryWithPrefix(sqlDB *sql.DB, driverName, prefix string) *MessageRepository {
	return &MessageRepository{db: relica.WrapDB(sqlDB, driverName), tablePrefix: prefix}
}

func (r *MessageRepository) tableName() string {
	return r.tablePrefix + "message"
}

// Save creates or updates an archived message.
func (r *MessageRepository) Save(ctx context.Context, m model.ArchivedMessage) (model.ArchivedMessage, error) {
	if m.ID == 0 {
		// m.ID is auto-populated by Model().Insert()
		err := r.db.WithContext(ctx).Model(&m).Table(r.tableName()).Insert()
		if err != nil {
			return m, roomcast.NewErrorWithCause(roomcast.ErrCodeDatabase, "failed to insert message", err)
		}
		return m, nil
	}

	err := r.db.WithContext(ctx).Model(&m).Table(r.tableName()).Update()
	if err != nil {
		return m, roomcast.NewErrorWithCause(roomcast.ErrCodeDatabase, "failed to update message", err)
	}
	return m, nil
}

// FindRecent retrieves up to limit archived messages of a room, newest first.
func (r *MessageRepository) FindRecent(ctx context.Context, roomTag string, limit int) ([]model.ArchivedMessage, error) {
	var messages []model.ArchivedMessage
	err := r.db.WithContext(ctx).Select("*").
		From(r.tableName()).
		Where("room_tag = ?", roomTag).
		OrderBy("sequence DESC").
		Limit(int64(limit)).
		All(&messages)
	if err != nil {
		return nil, roomcast.NewErrorWithCause(roomcast.ErrCodeDatabase, "failed to find recent messages", err)
	}
	if len(messages) == 0 {
		return nil, roomcast.ErrNoData
	}
	return messages, nil
}

// DeleteOlderThan removes archived messages created before cutoff in a single
// statement and returns the number of rows removed.
func (r *MessageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.db.WithContext(ctx).Delete(r.tableName()).
		Where("created_at < ?", cutoff).
		Execute()
	if err != nil {
		return 0, roomcast.NewErrorWithCause(roomcast.ErrCodeDatabase, "failed to delete outdated messages", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, roomcast.NewErrorWithCause(roomcast.ErrCodeDatabase, "failed to count deleted messages", err)
	}
	return int(deleted), nil
}
