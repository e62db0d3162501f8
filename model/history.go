package model

import "sync"

// History is a bounded ring of the most recently broadcast messages of a room.
// Appending beyond capacity evicts the oldest entry.
//
// The broadcast engine is the only writer. Snapshot may be called from any
// goroutine.
type History struct {
	mu    sync.RWMutex
	buf   []Message
	start int // index of the oldest entry
	size  int
}

// NewHistory creates a history ring holding at most capacity messages.
// A capacity of zero (or less) yields a history that retains nothing.
func NewHistory(capacity int) *History {
	if capacity < 0 {
		capacity = 0
	}
	return &History{buf: make([]Message, capacity)}
}

// Append records m, evicting the oldest entry when the ring is full.
func (h *History) Append(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.buf) == 0 {
		return
	}
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = m
		h.size++
		return
	}
	h.buf[h.start] = m
	h.start = (h.start + 1) % len(h.buf)
}

// Snapshot returns the retained messages, oldest first.
func (h *History) Snapshot() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Message, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of retained messages.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Cap returns the ring capacity.
func (h *History) Cap() int {
	return len(h.buf)
}
