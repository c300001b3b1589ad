package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/bft-labs/actionq/internal/domain"
	"github.com/bft-labs/actionq/internal/ports"
)

// FlushResult describes one flush attempt.
type FlushResult struct {
	// Skipped is true when the flush was a no-op: another flush was running,
	// the queue was empty, or the tracker was offline.
	Skipped bool

	// Synced is the number of actions replayed successfully.
	Synced int

	// Remaining is the number of actions still queued afterwards.
	Remaining int

	// Err is the replay failure that stopped the flush, if any.
	Err error
}

// Message is the user-facing outcome, empty for skipped flushes.
func (r FlushResult) Message() string {
	switch {
	case r.Skipped:
		return ""
	case r.Err != nil:
		return domain.SyncFailedMessage(r.Remaining)
	case r.Remaining == 0:
		return domain.SyncSucceededMessage
	default:
		return ""
	}
}

// SyncEventEmitter receives flush outcomes.
type SyncEventEmitter interface {
	OnSyncSucceeded(synced int)
	OnSyncFailed(remaining int, err error)
}

// Flusher drains the queue against the remote service in strict FIFO order,
// stopping at the first failure. At most one drain runs at a time.
type Flusher struct {
	queue    *Queue
	executor *Registry
	conn     *Connectivity
	logger   ports.Logger
	emitter  SyncEventEmitter

	flushing atomic.Bool
}

// NewFlusher creates a flush engine.
func NewFlusher(queue *Queue, executor *Registry, conn *Connectivity, logger ports.Logger, emitter SyncEventEmitter) *Flusher {
	return &Flusher{
		queue:    queue,
		executor: executor,
		conn:     conn,
		logger:   logger,
		emitter:  emitter,
	}
}

// Flushing reports whether a drain is in progress.
func (f *Flusher) Flushing() bool { return f.flushing.Load() }

// Flush replays queued actions until the queue is empty or one fails.
// There is no retry inside a flush; a failed action waits for the next
// reconnect or an explicit retry. A flush that finds another one running,
// an empty queue, or the tracker offline does nothing.
func (f *Flusher) Flush(ctx context.Context) FlushResult {
	total := FlushResult{Skipped: true}
	start := time.Now()
	for {
		if f.conn.IsOffline() || f.queue.IsEmpty() {
			break
		}
		if !f.flushing.CompareAndSwap(false, true) {
			f.logger.Debug("flush already in progress")
			break
		}
		res := f.drainOnce(ctx)

		total.Skipped = false
		total.Synced += res.Synced
		total.Err = res.Err
		if res.Err != nil {
			total.Remaining = res.Remaining
			return total
		}
		// Loop: an action enqueued after the drain saw an empty queue but
		// before the guard was released would otherwise wait for the next
		// reconnect.
	}

	total.Remaining = f.queue.Len()
	if total.Skipped {
		return total
	}
	f.logger.Info("pending actions synced",
		ports.Int("synced", total.Synced),
		ports.Duration("duration", time.Since(start)),
	)
	if f.emitter != nil {
		f.emitter.OnSyncSucceeded(total.Synced)
	}
	return total
}

func (f *Flusher) drainOnce(ctx context.Context) (res FlushResult) {
	defer f.flushing.Store(false)

	for {
		a, ok := f.queue.Front()
		if !ok {
			break
		}

		if err := f.executor.Execute(ctx, a); err != nil {
			f.queue.persist(ctx)
			res.Err = err
			res.Remaining = f.queue.Len()
			f.logger.Warn("flush stopped on replay failure",
				ports.String("action_id", a.ID),
				ports.String("kind", a.Kind.String()),
				ports.Int("synced", res.Synced),
				ports.Int("remaining", res.Remaining),
				ports.Err(err),
			)
			if f.emitter != nil {
				f.emitter.OnSyncFailed(res.Remaining, err)
			}
			return res
		}

		if !f.queue.dequeueIf(ctx, a.ID) {
			// Cleared underneath us; whatever is at the front now has not
			// been executed yet.
			f.logger.Info("queue changed during flush", ports.String("action_id", a.ID))
		}
		res.Synced++
		f.logger.Debug("replayed action",
			ports.String("action_id", a.ID),
			ports.String("kind", a.Kind.String()),
			ports.Time("created_at", a.CreatedAt),
		)
	}

	f.queue.persist(ctx)
	return res
}
