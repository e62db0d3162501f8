package roomcast

import (
	"fmt"
)

// Default capacities applied by NewRegistry.
const (
	DefaultIntakeCapacity       = 64
	DefaultSubscriptionCapacity = 64
	DefaultHistoryCapacity      = 128
)

// Option is a function that configures a Registry.
//
// Example:
//
//	registry, err := roomcast.NewRegistry(
//	    roomcast.WithLogger(logger),
//	    roomcast.WithIntakeCapacity(256),
//	    roomcast.WithHistoryCapacity(1000), // optional
//	)
type Option func(*Registry) error

// WithLogger sets the logger shared by the registry, its rooms and their engines.
func WithLogger(logger Logger) Option {
	return func(r *Registry) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		r.logger = logger
		return nil
	}
}

// WithIntakeCapacity sets the capacity of each room's publish-intake channel.
// Publishers block once this many messages are waiting for the engine.
func WithIntakeCapacity(capacity int) Option {
	return func(r *Registry) error {
		if capacity <= 0 {
			return fmt.Errorf("intake capacity must be > 0, got %d", capacity)
		}
		r.cfg.intakeCapacity = capacity
		return nil
	}
}

// WithSubscriptionCapacity sets the capacity of each subscription's delivery
// channel. The engine blocks on a subscriber whose channel is full.
func WithSubscriptionCapacity(capacity int) Option {
	return func(r *Registry) error {
		if capacity <= 0 {
			return fmt.Errorf("subscription capacity must be > 0, got %d", capacity)
		}
		r.cfg.subscriptionCapacity = capacity
		return nil
	}
}

// WithHistoryCapacity sets how many recent messages each room retains in its
// history ring. Zero disables history.
func WithHistoryCapacity(capacity int) Option {
	return func(r *Registry) error {
		if capacity < 0 {
			return fmt.Errorf("history capacity must be >= 0, got %d", capacity)
		}
		r.cfg.historyCapacity = capacity
		return nil
	}
}

// WithNotifications sets a notification service receiving room lifecycle events.
// Implementations must not block: they are called from the broadcast engine.
func WithNotifications(service NotificationService) Option {
	return func(r *Registry) error {
		if service == nil {
			return fmt.Errorf("notification service cannot be nil")
		}
		r.notifier = service
		return nil
	}
}

// WithArchive attaches an audit archive. Every room creation and every
// broadcast message is offered to it without blocking.
func WithArchive(archive Archive) Option {
	return func(r *Registry) error {
		if archive == nil {
			return fmt.Errorf("archive cannot be nil")
		}
		r.archive = archive
		return nil
	}
}
