// Package roomcast provides an in-process topic-based publish/subscribe room
// broker for Go, plus a standalone TCP/TLS server built on top of it.
//
// Publishers and subscribers meet in named rooms. Rooms are created lazily on
// first reference and live until the registry is closed. Every room runs a
// single broadcast engine that fans each published message out to all current
// subscribers, in the order the room received it.
//
// # Features
//
//   - Exactly one room, and one broadcast engine, per tag even under contention
//   - Per-room total order: every subscriber sees messages in intake order
//   - Bounded channels everywhere; full channels exert backpressure
//   - Messages published to an empty room are held and flushed to the first subscriber
//   - Bounded per-room history kept as an audit view (never replayed)
//   - Optional audit archive to MySQL, PostgreSQL or SQLite via Relica adapters
//   - Options Pattern configuration; bring your own Logger and NotificationService
//
// # Quick Start
//
// # Option 1: As Embedded Library
//
//	registry, err := roomcast.NewRegistry(
//	    roomcast.WithLogger(logger),
//	    roomcast.WithSubscriptionCapacity(128),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer registry.Close()
//
//	room, _ := registry.GetOrCreate("prices")
//
//	sub, _ := room.JoinSubscriber()
//	defer sub.Close()
//
//	pub, _ := room.JoinPublisher()
//	_ = pub.Publish(ctx, []byte("EURUSD 1.0842"))
//
//	msg, err := sub.Next(ctx)
//
// # Option 2: As Standalone Service
//
//	LISTEN_ADDR=:5555 go run ./cmd/roomcast-server
//
// A client sends one negotiation line and then streams raw bytes:
//
//	$ nc localhost 5555
//	sub prices
//
//	$ nc localhost 5555
//	pub prices
//	EURUSD 1.0842
//
// # Delivery Rules
//
//  1. PUBLISH
//     PublishHandle.Publish → room intake channel (blocks while full)
//
//  2. BROADCAST (one goroutine per room)
//     dequeue → snapshot subscribers
//     → none: hold in the pending queue
//     → some: deliver pending queue, then the message, to each subscriber
//     → append to history, offer to the archive
//
//  3. SUBSCRIBE
//     Subscription.Next / Subscription.Messages (bounded, FIFO)
//     A subscription that stops reading stalls its room until it is closed.
//
// # Database Schema
//
// The optional archive uses two tables (see MigrationFiles):
//
//	roomcast_room     - One row per room tag, written on first reference
//	roomcast_message  - Every broadcast message with its per-room sequence
//
// Table prefix can be customized (default: "roomcast_").
package roomcast
