package roomcast

import (
	"context"
)

// NotificationService defines an optional interface for observing room
// lifecycle events (room creation, joins, subscriber departures).
//
// Implementations might forward events to metrics, audit logs or alerting.
// They are invoked synchronously, some of them from the broadcast engine,
// so they must return quickly.
type NotificationService interface {
	// NotifyRoomCreated is called once per tag, when the room is first referenced.
	NotifyRoomCreated(ctx context.Context, tag string) error

	// NotifyPublisherJoined is called when a publisher attaches to a room.
	NotifyPublisherJoined(ctx context.Context, tag string) error

	// NotifySubscriberJoined is called after a subscription is registered.
	NotifySubscriberJoined(ctx context.Context, tag, subscriptionID string) error

	// NotifySubscriberLeft is called when a subscription leaves the live set,
	// either because its owner closed it or because the engine pruned it.
	NotifySubscriberLeft(ctx context.Context, tag, subscriptionID, reason string) error
}

// Reasons passed to NotifySubscriberLeft.
const (
	LeaveReasonClosed = "closed"
	LeaveReasonPruned = "pruned"
)

// NoOpNotificationService is a no-op implementation of NotificationService.
// Use this when notifications are not needed.
type NoOpNotificationService struct{}

// NotifyRoomCreated does nothing.
func (n *NoOpNotificationService) NotifyRoomCreated(_ context.Context, _ string) error {
	return nil
}

// NotifyPublisherJoined does nothing.
func (n *NoOpNotificationService) NotifyPublisherJoined(_ context.Context, _ string) error {
	return nil
}

// NotifySubscriberJoined does nothing.
func (n *NoOpNotificationService) NotifySubscriberJoined(_ context.Context, _, _ string) error {
	return nil
}

// NotifySubscriberLeft does nothing.
func (n *NoOpNotificationService) NotifySubscriberLeft(_ context.Context, _, _, _ string) error {
	return nil
}

// LoggingNotificationService is a simple implementation that logs notifications.
type LoggingNotificationService struct {
	logger Logger
}

// NewLoggingNotificationService creates a new LoggingNotificationService.
func NewLoggingNotificationService(logger Logger) *LoggingNotificationService {
	return &LoggingNotificationService{logger: logger}
}

// NotifyRoomCreated logs room creation.
func (n *LoggingNotificationService) NotifyRoomCreated(_ context.Context, tag string) error {
	n.logger.Infof("Room created: tag=%s", tag)
	return nil
}

// NotifyPublisherJoined logs a publisher join.
func (n *LoggingNotificationService) NotifyPublisherJoined(_ context.Context, tag string) error {
	n.logger.Infof("Publisher joined: tag=%s", tag)
	return nil
}

// NotifySubscriberJoined logs a subscriber join.
func (n *LoggingNotificationService) NotifySubscriberJoined(_ context.Context, tag, subscriptionID string) error {
	n.logger.Infof("Subscriber joined: tag=%s, subscription=%s", tag, subscriptionID)
	return nil
}

// NotifySubscriberLeft logs a subscriber departure.
func (n *LoggingNotificationService) NotifySubscriberLeft(_ context.Context, tag, subscriptionID, reason string) error {
	n.logger.Infof("Subscriber left: tag=%s, subscription=%s, reason=%s", tag, subscriptionID, reason)
	return nil
}
