package model

import "time"

// Message is one opaque unit of publish/deliver.
// Messages are immutable once created: the payload is copied on construction
// and only copies are handed out by Bytes.
type Message struct {
	Seq         uint64    `json:"seq"`         // Per-room arrival order, stamped by the broadcast engine
	Room        string    `json:"room"`        // Tag of the room the message was published to
	PublishedAt time.Time `json:"publishedAt"` // Time the publisher enqueued it
	data        []byte
}

// NewMessage creates a message for room tag holding a private copy of data.
func NewMessage(room string, data []byte) Message {
	buf := make([]byte, len(data))
	copy(buf, data)
	return Message{
		Room:        room,
		PublishedAt: time.Now(),
		data:        buf,
	}
}

// WithSeq returns a copy of the message stamped with sequence number seq.
// The payload is shared, which is safe because it is never mutated.
func (m Message) WithSeq(seq uint64) Message {
	m.Seq = seq
	return m
}

// Bytes returns a copy of the payload.
func (m Message) Bytes() []byte {
	buf := make([]byte, len(m.data))
	copy(buf, m.data)
	return buf
}

// Payload returns the payload without copying. Callers must not modify it.
func (m Message) Payload() []byte {
	return m.data
}

// Len returns the payload size in bytes.
func (m Message) Len() int {
	return len(m.data)
}

// String returns the payload as a string.
func (m Message) String() string {
	return string(m.data)
}
