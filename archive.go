package roomcast

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/coregx/roomcast/model"
	"github.com/coregx/roomcast/retry"
)

// Archive receives audit records from the registry and the broadcast engines.
// Both methods must return immediately; they report whether the record was
// accepted.
type Archive interface {
	RecordRoom(tag string, createdAt time.Time) bool
	RecordMessage(m model.Message) bool
}

type noopArchive struct{}

func (noopArchive) RecordRoom(string, time.Time) bool { return true }
func (noopArchive) RecordMessage(model.Message) bool  { return true }

// DefaultArchiveQueueSize is the number of records the archiver buffers
// before it starts dropping.
const DefaultArchiveQueueSize = 1024

// archiveJob carries exactly one of its fields.
type archiveJob struct {
	room    *model.RoomRecord
	message *model.ArchivedMessage
}

// Archiver writes room and message audit records to repositories in the
// background, retrying failed writes with exponential backoff.
//
// Records are queued without blocking. When the queue is full the record is
// dropped, counted and logged; broadcasting never waits on the database.
//
// Thread safety: Safe for concurrent use. Run must be called exactly once.
type Archiver struct {
	rooms        RoomRepository
	messages     MessageRepository
	strategy     retry.Strategy
	logger       Logger
	queue        chan archiveJob
	drainTimeout time.Duration

	written atomic.Int64
	dropped atomic.Int64
	failed  atomic.Int64
}

// ArchiveStats is a point-in-time view of archiver counters.
type ArchiveStats struct {
	Written int64 // Records persisted
	Dropped int64 // Records rejected because the queue was full
	Failed  int64 // Records abandoned after exhausting retries
	Queued  int   // Records waiting to be written
}

// ArchiverOption configures an Archiver.
type ArchiverOption func(*Archiver) error

// NewArchiver creates a new Archiver with the provided options.
//
// Required options:
//   - WithArchiveRepositories: room and message repositories
//   - WithArchiveLogger: logger instance
//
// Example:
//
//	archiver, err := roomcast.NewArchiver(
//	    roomcast.WithArchiveRepositories(repos.Room, repos.Message),
//	    roomcast.WithArchiveLogger(logger),
//	)
//	go archiver.Run(ctx)
func NewArchiver(opts ...ArchiverOption) (*Archiver, error) {
	a := &Archiver{
		strategy:     retry.DefaultStrategy(),
		drainTimeout: 5 * time.Second,
	}
	queueSize := DefaultArchiveQueueSize

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, NewErrorWithCause(ErrCodeConfiguration, "failed to apply archiver option", err)
		}
	}

	if a.rooms == nil {
		return nil, NewError(ErrCodeConfiguration, "RoomRepository is required (use WithArchiveRepositories)")
	}
	if a.messages == nil {
		return nil, NewError(ErrCodeConfiguration, "MessageRepository is required (use WithArchiveRepositories)")
	}
	if a.logger == nil {
		return nil, NewError(ErrCodeConfiguration, "Logger is required (use WithArchiveLogger)")
	}

	if a.queue == nil {
		a.queue = make(chan archiveJob, queueSize)
	}
	return a, nil
}

// WithArchiveRepositories sets the required repository dependencies.
func WithArchiveRepositories(rooms RoomRepository, messages MessageRepository) ArchiverOption {
	return func(a *Archiver) error {
		if rooms == nil {
			return fmt.Errorf("room repository cannot be nil")
		}
		if messages == nil {
			return fmt.Errorf("message repository cannot be nil")
		}
		a.rooms = rooms
		a.messages = messages
		return nil
	}
}

// WithArchiveLogger sets the logger instance.
func WithArchiveLogger(logger Logger) ArchiverOption {
	return func(a *Archiver) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		a.logger = logger
		return nil
	}
}

// WithArchiveRetryStrategy overrides retry.DefaultStrategy().
func WithArchiveRetryStrategy(strategy retry.Strategy) ArchiverOption {
	return func(a *Archiver) error {
		if strategy.MaxAttempts <= 0 {
			return fmt.Errorf("retry strategy needs at least one attempt, got %d", strategy.MaxAttempts)
		}
		a.strategy = strategy
		return nil
	}
}

// WithArchiveQueueSize sets how many records may wait for the writer.
func WithArchiveQueueSize(size int) ArchiverOption {
	return func(a *Archiver) error {
		if size <= 0 {
			return fmt.Errorf("archive queue size must be > 0, got %d", size)
		}
		a.queue = make(chan archiveJob, size)
		return nil
	}
}

// RecordRoom queues a room record. It never blocks.
func (a *Archiver) RecordRoom(tag string, createdAt time.Time) bool {
	rec := model.NewRoomRecord(tag, createdAt)
	return a.enqueue(archiveJob{room: &rec}, "room "+tag)
}

// RecordMessage queues an archive record for m. It never blocks.
func (a *Archiver) RecordMessage(m model.Message) bool {
	rec := model.NewArchivedMessage(m)
	return a.enqueue(archiveJob{message: &rec}, fmt.Sprintf("message %s#%d", m.Room, m.Seq))
}

func (a *Archiver) enqueue(job archiveJob, what string) bool {
	select {
	case a.queue <- job:
		return true
	default:
		dropped := a.dropped.Add(1)
		a.logger.Warnf("Archive queue full, dropping %s (dropped=%d)", what, dropped)
		return false
	}
}

// Run writes queued records until ctx is canceled, then drains what is left
// with a bounded grace period.
//
// This method blocks and should typically be run in a goroutine.
func (a *Archiver) Run(ctx context.Context) {
	a.logger.Info("Archiver started")
	a.logger.Debugf("Archive writes use %s", a.strategy.GetRetrySchedule())

	for {
		select {
		case <-ctx.Done():
			a.drain(ctx)
			a.logger.Info("Archiver stopped")
			return
		case job := <-a.queue:
			a.write(ctx, job)
		}
	}
}

func (a *Archiver) drain(ctx context.Context) {
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.drainTimeout)
	defer cancel()

	for {
		select {
		case job := <-a.queue:
			a.write(drainCtx, job)
		default:
			return
		}
		if drainCtx.Err() != nil {
			a.logger.Warnf("Archive drain timed out with %d records left", len(a.queue))
			return
		}
	}
}

func (a *Archiver) write(ctx context.Context, job archiveJob) {
	var (
		attempts int
		err      error
		what     string
	)

	switch {
	case job.room != nil:
		what = "room " + job.room.Tag
		attempts, err = a.strategy.Do(ctx, func(ctx context.Context) error {
			return a.saveRoom(ctx, *job.room)
		})
	case job.message != nil:
		what = fmt.Sprintf("message %s#%d", job.message.RoomTag, job.message.Sequence)
		attempts, err = a.strategy.Do(ctx, func(ctx context.Context) error {
			_, err := a.messages.Save(ctx, *job.message)
			return err
		})
	default:
		return
	}

	if err != nil {
		a.failed.Add(1)
		a.logger.Errorf("Failed to archive %s after %d attempts: %v", what, attempts, err)
		return
	}

	a.written.Add(1)
	if attempts > 1 {
		a.logger.Debugf("Archived %s after %d attempts", what, attempts)
	}
}

// saveRoom writes rec unless a record for the tag already exists.
func (a *Archiver) saveRoom(ctx context.Context, rec model.RoomRecord) error {
	_, err := a.rooms.GetByTag(ctx, rec.Tag)
	if err == nil {
		return nil
	}
	if !IsNoData(err) {
		return err
	}
	_, err = a.rooms.Save(ctx, rec)
	return err
}

// Stats returns the archiver counters.
func (a *Archiver) Stats() ArchiveStats {
	return ArchiveStats{
		Written: a.written.Load(),
		Dropped: a.dropped.Load(),
		Failed:  a.failed.Load(),
		Queued:  len(a.queue),
	}
}

// Dropped returns how many records were rejected because the queue was full.
func (a *Archiver) Dropped() int64 {
	return a.dropped.Load()
}
