// Package relica provides Relica ORM implementations for roomcast repositories.
//
//nolint:dupl // Repository pattern requires similar implementations for different types
package relica

import (
	"context"
	"database/sql"
	"errors"

	"github.com/coregx/relica"

	"github.com/coregx/roomcast"
	"github.com/coregx/roomcast/model"
)

// RoomRepository implements roomcast.RoomRepository using Relica ORM.
type RoomRepository struct {
	db          *relica.DB
	tablePrefix string
}

// NewRoomRepository creates a new RoomRepository with default table prefix.
func NewRoomRepository(sqlDB *sql.DB, driverName string) *RoomRepository {
	return &RoomRepository{db: relica.WrapDB(sqlDB, driverName), tablePrefix: model.DefaultTablePrefix}
}

// NewRoomRepositoryWithPrefix creates a new RoomRepository with custom table prefix.
func NewRoomRepositoryWithPrefix(sqlDB *sql.DB, driverName, prefix string) *RoomRepository {
	return &RoomRepository{db: relica.WrapDB(sqlDB, driverName), tablePrefix: prefix}
}

func (r *RoomRepository) tableName() string {
	return r.tablePrefix + "room"
}

// Save creates or updates a room record.
func (r *RoomRepository) Save(ctx context.Context, m model.RoomRecord) (model.RoomRecord, error) {
	if m.ID == 0 {
		err := r.db.WithContext(ctx).Model(&m).Table(r.tableName()).Insert()
		if err != nil {
			return m, roomcast.NewErrorWithCause(roomcast.ErrCodeDatabase, "failed to insert room", err)
		}
		return m, nil
	}

	err := r.db.WithContext(ctx).Model(&m).Table(r.tableName()).Update()
	if err != nil {
		return m, roomcast.NewErrorWithCause(roomcast.ErrCodeDatabase, "failed to update room", err)
	}
	return m, nil
}

// GetByTag retrieves a room record by its unique tag.
func (r *RoomRepository) GetByTag(ctx context.Context, tag string) (model.RoomRecord, error) {
	var room model.RoomRecord
	err := r.db.WithContext(ctx).Select("*").From(r.tableName()).Where("tag = ?", tag).One(&room)
	if errors.Is(err, sql.ErrNoRows) {
		return room, roomcast.ErrNoData
	}
	if err != nil {
		return room, roomcast.NewErrorWithCause(roomcast.ErrCodeDatabase, "failed to find room by tag", err)
	}
	return room, nil
}

// List retrieves all room records, oldest first.
func (r *RoomRepository) List(ctx context.Context) ([]model.RoomRecord, error) {
	var rooms []model.RoomRecord
	err := r.db.WithContext(ctx).Select("*").
		From(r.tableName()).
		OrderBy("created_at ASC").
		All(&rooms)
	if err != nil {
		return nil, roomcast.NewErrorWithCause(roomcast.ErrCodeDatabase, "failed to list rooms", err)
	}
	if len(rooms) == 0 {
		return nil, roomcast.ErrNoData
	}
	return rooms, nil
}
