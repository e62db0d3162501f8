package roomcast

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/coregx/roomcast/model"
)

// Registry maps room tags to rooms and creates rooms lazily on first reference.
//
// Exactly one Room, and therefore one broadcast engine, ever exists per tag:
// lookup and construct-and-insert happen inside a single critical section.
// Rooms live until Close; the registry only grows.
//
// Thread safety: Safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	closed bool

	cfg      roomConfig
	logger   Logger
	notifier NotificationService
	archive  Archive

	engines atomic.Int64 // broadcast engines ever started
}

// roomConfig holds the capacities every new room is built with.
type roomConfig struct {
	intakeCapacity       int
	subscriptionCapacity int
	historyCapacity      int
}

// NewRegistry creates a new Registry with the provided options.
//
// All options are optional. Defaults: intake and subscription capacity 64,
// history capacity 128, NoopLogger, no notifications, no archive.
//
// Example:
//
//	registry, err := roomcast.NewRegistry(
//	    roomcast.WithLogger(logger),
//	    roomcast.WithSubscriptionCapacity(128),
//	)
//	defer registry.Close()
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{
		rooms: make(map[string]*Room),
		cfg: roomConfig{
			intakeCapacity:       DefaultIntakeCapacity,
			subscriptionCapacity: DefaultSubscriptionCapacity,
			historyCapacity:      DefaultHistoryCapacity,
		},
		logger:   &NoopLogger{},
		notifier: &NoOpNotificationService{},
		archive:  noopArchive{},
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, NewErrorWithCause(ErrCodeConfiguration, "failed to apply registry option", err)
		}
	}

	return r, nil
}

// GetOrCreate returns the room for tag, creating it and starting its broadcast
// engine if this is the first reference. Concurrent callers with the same tag
// all receive the same *Room.
//
// It fails only for an invalid tag or after Close.
func (r *Registry) GetOrCreate(tag string) (*Room, error) {
	if err := model.ValidateTag(tag); err != nil {
		return nil, NewErrorWithCause(ErrCodeValidation, fmt.Sprintf("invalid room tag %q", tag), err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRegistryClosed
	}
	if room, ok := r.rooms[tag]; ok {
		r.mu.Unlock()
		return room, nil
	}
	room := newRoom(tag, r.cfg, r.logger, r.notifier, r.archive)
	r.rooms[tag] = room
	room.start()
	r.engines.Add(1)
	r.mu.Unlock()

	r.logger.Debugf("Room %s created (rooms=%d)", tag, r.Len())
	r.archive.RecordRoom(tag, room.createdAt)
	if err := r.notifier.NotifyRoomCreated(context.Background(), tag); err != nil {
		r.logger.Warnf("Failed to send room created notification: %v", err)
	}

	return room, nil
}

// Lookup returns the room for tag without creating it.
func (r *Registry) Lookup(tag string) (*Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[tag]
	return room, ok
}

// Tags returns the tags of all rooms, sorted.
func (r *Registry) Tags() []string {
	r.mu.Lock()
	tags := make([]string, 0, len(r.rooms))
	for tag := range r.rooms {
		tags = append(tags, tag)
	}
	r.mu.Unlock()

	sort.Strings(tags)
	return tags
}

// Len returns the number of rooms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// Close stops every room's broadcast engine and closes their subscriptions.
// Subsequent GetOrCreate calls return ErrRegistryClosed. Close is idempotent.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.Unlock()

	var errs []error
	for _, room := range rooms {
		if err := room.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close room %s: %w", room.Tag(), err))
		}
	}

	r.logger.Infof("Registry closed (%d rooms)", len(rooms))
	return errors.Join(errs...)
}
