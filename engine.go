package roomcast

import (
	"github.com/coregx/roomcast/model"
)

// run is the room's broadcast engine: the only reader of the intake channel
// and the only writer of subscription channels, the history ring and the
// pending queue. It runs until the room is closed.
//
// For every dequeued message:
//  1. Snapshot the subscriber set.
//  2. No subscribers: hold the message in the pending queue.
//  3. Otherwise: deliver the pending queue (oldest first) and then the message
//     to every subscriber in the snapshot, then clear the pending queue.
//  4. Append the message to history and offer it to the archive.
func (r *Room) run() {
	defer close(r.done)

	r.logger.Debugf("Broadcast engine started for room %s", r.tag)

	var (
		pending []model.Message
		seq     uint64
	)

	for {
		select {
		case <-r.ctx.Done():
			if len(pending) > 0 {
				r.logger.Warnf("Broadcast engine for room %s stopped with %d undelivered pending messages",
					r.tag, len(pending))
			}
			r.logger.Debugf("Broadcast engine stopped for room %s", r.tag)
			return
		case m := <-r.intake:
			seq++
			m = m.WithSeq(seq)

			pending = r.broadcast(pending, m)
			r.pending.Store(int64(len(pending)))
			r.published.Add(1)

			r.history.Append(m)
			r.archive.RecordMessage(m)
		}
	}
}

// broadcast delivers the pending queue followed by m to the current snapshot
// and returns what is still pending afterwards.
//
// If every subscriber of the snapshot is pruned part-way through, the message
// being delivered and everything after it stay pending for the next subscriber.
func (r *Room) broadcast(pending []model.Message, m model.Message) []model.Message {
	subs := r.snapshot()
	if len(subs) == 0 {
		return append(pending, m)
	}

	queue := append(pending, m)
	for i, msg := range queue {
		subs = r.fanOut(subs, msg)
		if r.ctx.Err() != nil || len(subs) == 0 {
			return append([]model.Message(nil), queue[i:]...)
		}
	}
	return nil
}

// fanOut delivers m to every subscription in subs and returns the ones that
// are still alive. Subscriptions whose owner has gone are pruned.
func (r *Room) fanOut(subs []*Subscription, m model.Message) []*Subscription {
	live := subs[:0]
	for _, sub := range subs {
		if r.deliver(sub, m) {
			live = append(live, sub)
			continue
		}
		if r.ctx.Err() != nil {
			// shutting down; the subscriber did nothing wrong
			live = append(live, sub)
			continue
		}
		r.logger.Debugf("Pruning subscription %s from room %s", sub.id, r.tag)
		r.unregister(sub, LeaveReasonPruned)
	}
	return live
}

// deliver blocks until sub accepts m, sub is closed, or the room shuts down.
// A full subscription therefore flow-controls the whole room.
func (r *Room) deliver(sub *Subscription, m model.Message) bool {
	select {
	case <-sub.done:
		return false
	default:
	}

	select {
	case sub.ch <- m:
		return true
	case <-sub.done:
		return false
	case <-r.ctx.Done():
		return false
	}
}
