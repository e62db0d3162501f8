// Package model contains the domain models and value types of the roomcast broker.
package model

import "time"

// DefaultTablePrefix is the prefix applied to every archive table name.
const DefaultTablePrefix = "roomcast_"

var tablePrefix = DefaultTablePrefix

// ArchivedMessage is the persisted audit form of a broadcast Message.
// Archived messages are never replayed to subscribers.
type ArchivedMessage struct {
	ID          int64     `json:"id" db:"id"`
	RoomTag     string    `json:"roomTag" db:"room_tag"`         // Tag of the room the message was broadcast in
	Sequence    uint64    `json:"sequence" db:"sequence"`        // Per-room dequeue order
	Data        []byte    `json:"data" db:"data"`                // Raw payload
	Size        int       `json:"size" db:"size"`                // Payload length in bytes
	PublishedAt time.Time `json:"publishedAt" db:"published_at"` // Time the publisher handed it to the room
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`     // Time the archive row was written
}

// TableName returns the database table name for ArchivedMessage.
func (a ArchivedMessage) TableName() string {
	return tablePrefix + "message"
}

// NewArchivedMessage converts a broadcast message into its archive record.
func NewArchivedMessage(m Message) ArchivedMessage {
	return ArchivedMessage{
		ID:          0,
		RoomTag:     m.Room,
		Sequence:    m.Seq,
		Data:        m.Bytes(),
		Size:        m.Len(),
		PublishedAt: m.PublishedAt,
		CreatedAt:   time.Now(),
	}
}
