package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/actionq/internal/domain"
	"github.com/bft-labs/actionq/internal/ports"
)

// ShutdownTimeout bounds how long Drain waits for the monitor loop and an
// in-flight flush.
const ShutdownTimeout = 30 * time.Second

// State is the run state of a client.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

var stateNames = [...]string{"Stopped", "Starting", "Running", "Stopping", "Crashed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// idle reports whether no workers run in s, so it may be started again.
func (s State) idle() bool { return s == StateStopped || s == StateCrashed }

var transitions = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateRunning, StateStopping, StateCrashed},
	StateRunning:  {StateStopping, StateCrashed},
	StateStopping: {StateStopped, StateCrashed},
	StateCrashed:  {StateStarting},
}

func allowed(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StateEmitter is told about every state change.
type StateEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle guards a client's run state and owns the goroutines started on
// its behalf: the monitor loop and background flushes.
type Lifecycle struct {
	mu      sync.RWMutex
	state   State
	cancel  context.CancelFunc
	workers sync.WaitGroup
	logger  ports.Logger
	emitter StateEmitter
}

func NewLifecycle(logger ports.Logger, emitter StateEmitter) *Lifecycle {
	return &Lifecycle{state: StateStopped, logger: logger, emitter: emitter}
}

func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Begin moves an idle lifecycle to Starting and returns a context derived
// from parent that Halt cancels.
func (l *Lifecycle) Begin(parent context.Context, reason string) (context.Context, error) {
	l.mu.Lock()
	from := l.state
	if !from.idle() {
		l.mu.Unlock()
		return nil, domain.ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(parent)
	l.state = StateStarting
	l.cancel = cancel
	l.mu.Unlock()

	l.announce(from, StateStarting, reason)
	return ctx, nil
}

// Halt moves a Starting or Running lifecycle to Stopping and cancels the
// context handed out by Begin.
func (l *Lifecycle) Halt(reason string) error {
	l.mu.Lock()
	from := l.state
	if from != StateStarting && from != StateRunning {
		l.mu.Unlock()
		return domain.ErrNotRunning
	}
	l.state = StateStopping
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()

	l.announce(from, StateStopping, reason)
	if cancel != nil {
		cancel()
	}
	return nil
}

// Drain waits up to timeout for every worker started with Go. It settles in
// Stopped, or in Crashed with ErrShutdownTimeout when workers are still
// running.
func (l *Lifecycle) Drain(timeout time.Duration) error {
	if err := l.Wait(timeout); err != nil {
		_ = l.TransitionTo(StateCrashed, "shutdown timeout")
		return err
	}
	return l.TransitionTo(StateStopped, "graceful shutdown")
}

// TransitionTo moves to next if the transition table allows it. A rejected
// move out of Stopped or Crashed returns ErrNotRunning; any other rejected
// move returns ErrAlreadyRunning. Reaching an idle state releases the
// context from Begin.
func (l *Lifecycle) TransitionTo(next State, reason string) error {
	l.mu.Lock()
	from := l.state
	if !allowed(from, next) {
		l.mu.Unlock()
		if from.idle() {
			return domain.ErrNotRunning
		}
		return domain.ErrAlreadyRunning
	}
	l.state = next
	var cancel context.CancelFunc
	if next.idle() {
		cancel, l.cancel = l.cancel, nil
	}
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	l.announce(from, next, reason)
	return nil
}

func (l *Lifecycle) announce(from, to State, reason string) {
	if l.emitter != nil {
		l.emitter.OnStateChange(from, to, reason)
	}
	l.logger.Info("state transition",
		ports.String("from", from.String()),
		ports.String("to", to.String()),
		ports.String("reason", reason),
	)
}

// Go runs fn on a worker goroutine that Wait and Drain account for.
func (l *Lifecycle) Go(fn func()) {
	l.workers.Add(1)
	go func() {
		defer l.workers.Done()
		fn()
	}()
}

// Wait blocks until every worker has returned or timeout expires, in which
// case it returns ErrShutdownTimeout.
func (l *Lifecycle) Wait(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.workers.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		l.logger.Warn("workers still running after timeout", ports.Duration("timeout", timeout))
		return domain.ErrShutdownTimeout
	}
}
