package roomcast

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	r, err := NewRegistry(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestNewRegistry_Defaults(t *testing.T) {
	r := newTestRegistry(t)

	assert.Equal(t, DefaultIntakeCapacity, r.cfg.intakeCapacity)
	assert.Equal(t, DefaultSubscriptionCapacity, r.cfg.subscriptionCapacity)
	assert.Equal(t, DefaultHistoryCapacity, r.cfg.historyCapacity)
	assert.Equal(t, 0, r.Len())
}

func TestNewRegistry_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{name: "nil logger", opt: WithLogger(nil)},
		{name: "zero intake", opt: WithIntakeCapacity(0)},
		{name: "zero subscription", opt: WithSubscriptionCapacity(0)},
		{name: "negative history", opt: WithHistoryCapacity(-1)},
		{name: "nil notifications", opt: WithNotifications(nil)},
		{name: "nil archive", opt: WithArchive(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.opt)
			require.Error(t, err)
			assert.True(t, hasCode(err, ErrCodeConfiguration))
		})
	}
}

func TestRegistry_GetOrCreate_ConcurrentSameTag(t *testing.T) {
	r := newTestRegistry(t)

	const callers = 64
	rooms := make([]*Room, callers)

	var start sync.WaitGroup
	start.Add(1)

	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			start.Wait()
			room, err := r.GetOrCreate("shared")
			rooms[i] = room
			return err
		})
	}
	start.Done()
	require.NoError(t, g.Wait())

	for _, room := range rooms {
		assert.Same(t, rooms[0], room)
	}
	assert.Equal(t, int64(1), r.engines.Load())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_GetOrCreate_DistinctTags(t *testing.T) {
	r := newTestRegistry(t)

	a, err := r.GetOrCreate("a")
	require.NoError(t, err)
	b, err := r.GetOrCreate("b")
	require.NoError(t, err)
	again, err := r.GetOrCreate("a")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Same(t, a, again)
	assert.Equal(t, int64(2), r.engines.Load())
	assert.Equal(t, []string{"a", "b"}, r.Tags())
}

func TestRegistry_GetOrCreate_InvalidTag(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name string
		tag  string
	}{
		{name: "empty", tag: ""},
		{name: "contains space", tag: "two words"},
		{name: "contains newline", tag: "line\n"},
		{name: "too long", tag: strings.Repeat("x", 256)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room, err := r.GetOrCreate(tt.tag)
			require.Error(t, err)
			assert.Nil(t, room)
			assert.True(t, IsValidation(err))
		})
	}
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_Lookup(t *testing.T) {
	r := newTestRegistry(t)

	_, ok := r.Lookup("missing")
	assert.False(t, ok)

	created, err := r.GetOrCreate("present")
	require.NoError(t, err)

	found, ok := r.Lookup("present")
	require.True(t, ok)
	assert.Same(t, created, found)
}

func TestRegistry_Close(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	room, err := r.GetOrCreate("room")
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	select {
	case <-room.Done():
	default:
		t.Fatal("room engine still running after registry close")
	}

	_, err = r.GetOrCreate("room")
	assert.ErrorIs(t, err, ErrRegistryClosed)
	assert.True(t, IsClosed(err))
}
