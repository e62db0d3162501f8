package model

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payloads(msgs []Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.String()
	}
	return out
}

func TestHistory_BelowCapacity(t *testing.T) {
	h := NewHistory(3)

	h.Append(NewMessage("r", []byte("a")))
	h.Append(NewMessage("r", []byte("b")))

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 3, h.Cap())
	assert.Equal(t, []string{"a", "b"}, payloads(h.Snapshot()))
}

func TestHistory_EvictsOldest(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		appends  int
	}{
		{name: "one over capacity", capacity: 3, appends: 4},
		{name: "wraps twice", capacity: 3, appends: 9},
		{name: "capacity one", capacity: 1, appends: 5},
		{name: "large overflow", capacity: 16, appends: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(tt.capacity)
			for i := 0; i < tt.appends; i++ {
				h.Append(NewMessage("r", []byte(fmt.Sprint(i))))
			}

			snap := h.Snapshot()
			require.Len(t, snap, tt.capacity)
			for i, m := range snap {
				assert.Equal(t, fmt.Sprint(tt.appends-tt.capacity+i), m.String())
			}
		})
	}
}

func TestHistory_ZeroCapacity(t *testing.T) {
	h := NewHistory(0)

	h.Append(NewMessage("r", []byte("a")))

	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Snapshot())
}

func TestHistory_NegativeCapacity(t *testing.T) {
	h := NewHistory(-5)

	h.Append(NewMessage("r", []byte("a")))

	assert.Equal(t, 0, h.Cap())
	assert.Empty(t, h.Snapshot())
}

func TestHistory_ConcurrentSnapshot(t *testing.T) {
	h := NewHistory(8)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			h.Append(NewMessage("r", []byte("x")))
		}
	}()

	for i := 0; i < 100; i++ {
		assert.LessOrEqual(t, len(h.Snapshot()), 8)
	}
	wg.Wait()

	assert.Equal(t, 8, h.Len())
}
