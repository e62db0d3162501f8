package model

import "time"

// RoomRecord is the persisted audit form of a room.
// Rooms are created lazily on first reference; a record is written once per tag.
type RoomRecord struct {
	ID        int64     `json:"id" db:"id"`                // Unique record ID
	Tag       string    `json:"tag" db:"tag"`              // Room tag (unique)
	CreatedAt time.Time `json:"createdAt" db:"created_at"` // Time the room was first referenced
}

// TableName returns the database table name for RoomRecord.
func (r RoomRecord) TableName() string {
	return tablePrefix + "room"
}

// NewRoomRecord creates a record for a room created at createdAt.
func NewRoomRecord(tag string, createdAt time.Time) RoomRecord {
	return RoomRecord{
		ID:        0,
		Tag:       tag,
		CreatedAt: createdAt,
	}
}
