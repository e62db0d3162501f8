package roomcast

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/coregx/roomcast/model"
)

// Room is a named broadcast domain: a bounded publish-intake channel, the set
// of live subscriptions, a bounded history ring and the single broadcast engine
// that connects them.
//
// Rooms are created by Registry.GetOrCreate and live until closed.
//
// Thread safety: Safe for concurrent use.
type Room struct {
	tag       string
	createdAt time.Time
	intake    chan model.Message
	history   *model.History

	mu          sync.RWMutex
	subscribers map[string]*Subscription
	closed      bool

	subscriptionCapacity int
	logger               Logger
	notifier             NotificationService
	archive              Archive

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	published atomic.Uint64 // messages dequeued by the engine
	pending   atomic.Int64  // messages held while the room has no subscribers
}

// RoomStats is a point-in-time view of a room.
type RoomStats struct {
	Tag         string
	Subscribers int
	Pending     int
	Published   uint64
	HistoryLen  int
	CreatedAt   time.Time
}

func newRoom(tag string, cfg roomConfig, logger Logger, notifier NotificationService, archive Archive) *Room {
	ctx, cancel := context.WithCancel(context.Background())
	return &Room{
		tag:                  tag,
		createdAt:            time.Now(),
		intake:               make(chan model.Message, cfg.intakeCapacity),
		history:              model.NewHistory(cfg.historyCapacity),
		subscribers:          make(map[string]*Subscription),
		subscriptionCapacity: cfg.subscriptionCapacity,
		logger:               logger,
		notifier:             notifier,
		archive:              archive,
		ctx:                  ctx,
		cancel:               cancel,
		done:                 make(chan struct{}),
	}
}

// start launches the broadcast engine. Called exactly once, by the registry.
func (r *Room) start() {
	go r.run()
}

// Tag returns the room's tag.
func (r *Room) Tag() string {
	return r.tag
}

// JoinPublisher returns a handle feeding the room's intake channel.
// Any number of publishers may join the same room.
func (r *Room) JoinPublisher() (*PublishHandle, error) {
	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return nil, ErrRoomClosed
	}

	if err := r.notifier.NotifyPublisherJoined(r.ctx, r.tag); err != nil {
		r.logger.Warnf("Failed to send publisher joined notification: %v", err)
	}
	return &PublishHandle{room: r}, nil
}

// JoinSubscriber registers a new subscription. The subscription receives
// every message the engine dequeues after registration completes, plus the
// pending queue if it is among the first subscribers of an idle room.
// There is no history replay.
func (r *Room) JoinSubscriber() (*Subscription, error) {
	sub := &Subscription{
		id:   uuid.NewString(),
		room: r,
		ch:   make(chan model.Message, r.subscriptionCapacity),
		done: make(chan struct{}),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRoomClosed
	}
	r.subscribers[sub.id] = sub
	count := len(r.subscribers)
	r.mu.Unlock()

	r.logger.Debugf("Subscription %s joined room %s (subscribers=%d)", sub.id, r.tag, count)
	if err := r.notifier.NotifySubscriberJoined(r.ctx, r.tag, sub.id); err != nil {
		r.logger.Warnf("Failed to send subscriber joined notification: %v", err)
	}
	return sub, nil
}

// unregister removes sub from the live set. Only the first removal notifies.
func (r *Room) unregister(sub *Subscription, reason string) {
	r.mu.Lock()
	_, ok := r.subscribers[sub.id]
	delete(r.subscribers, sub.id)
	r.mu.Unlock()

	if !ok {
		return
	}
	if err := r.notifier.NotifySubscriberLeft(context.Background(), r.tag, sub.id, reason); err != nil {
		r.logger.Warnf("Failed to send subscriber left notification: %v", err)
	}
}

// snapshot copies the live subscriber set.
func (r *Room) snapshot() []*Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := make([]*Subscription, 0, len(r.subscribers))
	for _, sub := range r.subscribers {
		subs = append(subs, sub)
	}
	return subs
}

// History returns the retained recent messages, oldest first.
// History is an audit view; it is never replayed to subscribers.
func (r *Room) History() []model.Message {
	return r.history.Snapshot()
}

// Stats returns a point-in-time view of the room.
func (r *Room) Stats() RoomStats {
	r.mu.RLock()
	subscribers := len(r.subscribers)
	r.mu.RUnlock()

	return RoomStats{
		Tag:         r.tag,
		Subscribers: subscribers,
		Pending:     int(r.pending.Load()),
		Published:   r.published.Load(),
		HistoryLen:  r.history.Len(),
		CreatedAt:   r.createdAt,
	}
}

// Done is closed once the room's broadcast engine has stopped.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Close stops the broadcast engine, waits for it, and closes the delivery
// channel of every remaining subscription. Publishers and subscribers then
// observe ErrRoomClosed / ErrSubscriptionClosed. Close is idempotent.
func (r *Room) Close() error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()

		r.cancel()
		<-r.done

		r.mu.Lock()
		subs := r.subscribers
		r.subscribers = make(map[string]*Subscription)
		r.mu.Unlock()

		for _, sub := range subs {
			close(sub.ch)
		}
		r.logger.Debugf("Room %s closed (released %d subscriptions)", r.tag, len(subs))
	})
	return nil
}
