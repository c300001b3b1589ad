package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bft-labs/actionq/internal/domain"
	"github.com/bft-labs/actionq/internal/ports"
)

// SubmitResult reports what Submit did with an action.
type SubmitResult struct {
	// Action is the created action.
	Action domain.Action

	// Queued is true when the action was deferred instead of executed.
	Queued bool

	// Pending is the queue length after a deferred submit.
	Pending int
}

// QueueEventEmitter is notified when an action is deferred.
type QueueEventEmitter interface {
	OnActionQueued(action domain.Action, pending int)
}

// SyncerConfig holds the collaborators of a Syncer.
type SyncerConfig struct {
	Queue        *Queue
	Registry     *Registry
	Connectivity *Connectivity
	Flusher      *Flusher
	Monitor      ports.ConnectivityMonitor
	Lifecycle    *Lifecycle
	Logger       ports.Logger
	Emitter      QueueEventEmitter

	// Now defaults to time.Now.
	Now func() time.Time
}

// Syncer is the orchestration layer behind every user-facing operation:
// it decides between immediate execution and deferral, and starts a flush
// whenever connectivity comes back.
type Syncer struct {
	queue    *Queue
	registry *Registry
	conn     *Connectivity
	flusher  *Flusher
	monitor  ports.ConnectivityMonitor
	lc       *Lifecycle
	logger   ports.Logger
	emitter  QueueEventEmitter
	now      func() time.Time
}

// NewSyncer creates a syncer.
func NewSyncer(cfg SyncerConfig) *Syncer {
	s := &Syncer{
		queue:    cfg.Queue,
		registry: cfg.Registry,
		conn:     cfg.Connectivity,
		flusher:  cfg.Flusher,
		monitor:  cfg.Monitor,
		lc:       cfg.Lifecycle,
		logger:   cfg.Logger,
		emitter:  cfg.Emitter,
		now:      cfg.Now,
	}
	if s.lc == nil {
		s.lc = NewLifecycle(s.logger, nil)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Submit performs a user action. While offline, or while older actions are
// still pending, the action is queued so replay order matches intent order.
// Otherwise it executes immediately and a failure is returned to the caller
// without being queued.
func (s *Syncer) Submit(ctx context.Context, kind domain.Kind, payload json.RawMessage) (SubmitResult, error) {
	a, err := domain.NewAction(kind, payload, s.now())
	if err != nil {
		return SubmitResult{}, err
	}

	if s.conn.IsOffline() || !s.queue.IsEmpty() {
		n := s.queue.Enqueue(ctx, a)
		s.logger.Info("action queued",
			ports.String("action_id", a.ID),
			ports.String("kind", a.Kind.String()),
			ports.Int("pending", n),
		)
		if s.emitter != nil {
			s.emitter.OnActionQueued(a, n)
		}
		if !s.conn.IsOffline() {
			s.flushAsync(ctx)
		}
		return SubmitResult{Action: a, Queued: true, Pending: n}, nil
	}

	if err := s.registry.Execute(ctx, a); err != nil {
		s.logger.Warn("action failed",
			ports.String("action_id", a.ID),
			ports.String("kind", a.Kind.String()),
			ports.Err(err),
		)
		return SubmitResult{Action: a}, err
	}
	s.logger.Debug("action executed",
		ports.String("action_id", a.ID),
		ports.String("kind", a.Kind.String()),
	)
	return SubmitResult{Action: a}, nil
}

// Retry runs a flush and waits for its outcome. The drain is detached from
// ctx and tracked by the lifecycle, so a caller that gives up does not
// abort an action mid-replay.
func (s *Syncer) Retry(ctx context.Context) FlushResult {
	done := make(chan FlushResult, 1)
	fctx := context.WithoutCancel(ctx)
	s.lc.Go(func() {
		done <- s.flusher.Flush(fctx)
	})
	return <-done
}

// Clear drops all pending actions. Returns how many were dropped.
func (s *Syncer) Clear(ctx context.Context) int {
	n := s.queue.Clear(ctx)
	s.logger.Info("pending actions cleared", ports.Int("cleared", n))
	return n
}

// Pending returns the queued actions in replay order.
func (s *Syncer) Pending() []domain.Action { return s.queue.PeekAll() }

// IsOffline reports the tracked connectivity.
func (s *Syncer) IsOffline() bool { return s.conn.IsOffline() }

// Run restores the persisted queue (once per process), then feeds monitor observations to the
// tracker until ctx is done. Every offline-to-online transition starts a
// flush.
func (s *Syncer) Run(ctx context.Context) error {
	if s.monitor == nil {
		return domain.ErrInvalidConfig
	}

	s.conn.reset()
	// Offline again once stopped: Submit queues instead of executing.
	defer s.conn.reset()
	if n := s.queue.Restore(ctx); n > 0 {
		s.logger.Info("restored pending actions", ports.Int("pending", n))
	}

	unsubscribe := s.conn.Subscribe(func(c domain.Connectivity) {
		if c == domain.Online {
			s.flushAsync(ctx)
		}
	})
	defer unsubscribe()

	err := s.monitor.Run(ctx, s.conn.Report)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// flushAsync starts a tracked background flush. The flush outlives ctx so
// shutdown waits for it instead of abandoning an action mid-replay.
func (s *Syncer) flushAsync(ctx context.Context) {
	fctx := context.WithoutCancel(ctx)
	s.lc.Go(func() {
		s.flusher.Flush(fctx)
	})
}
