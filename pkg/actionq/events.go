package actionq

import (
	"github.com/bft-labs/actionq/internal/app"
	"github.com/bft-labs/actionq/internal/domain"
)

// EventHandler receives client events. Callbacks run synchronously on the
// goroutine that caused them and should return quickly.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnConnectivityChange(ConnectivityEvent)
	OnActionQueued(ActionQueuedEvent)
	OnSyncSucceeded(SyncSucceededEvent)
	OnSyncFailed(SyncFailedEvent)
}

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// ConnectivityEvent is emitted when the tracked connectivity flips.
type ConnectivityEvent struct {
	Offline bool
}

// ActionQueuedEvent is emitted when an action is deferred.
type ActionQueuedEvent struct {
	Action  Action
	Pending int
}

// SyncSucceededEvent is emitted when a sync drains the queue.
type SyncSucceededEvent struct {
	Synced  int
	Message string
}

// SyncFailedEvent is emitted when a sync stops on a failed action.
type SyncFailedEvent struct {
	Remaining int
	Err       error
	Message   string
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only the events you need.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)         {}
func (BaseEventHandler) OnConnectivityChange(ConnectivityEvent) {}
func (BaseEventHandler) OnActionQueued(ActionQueuedEvent)       {}
func (BaseEventHandler) OnSyncSucceeded(SyncSucceededEvent)     {}
func (BaseEventHandler) OnSyncFailed(SyncFailedEvent)           {}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnConnectivityChange(current domain.Connectivity) {
	if e.handler == nil {
		return
	}
	e.handler.OnConnectivityChange(ConnectivityEvent{Offline: current == domain.Offline})
}

func (e *eventEmitterWrapper) OnActionQueued(a domain.Action, pending int) {
	if e.handler == nil {
		return
	}
	e.handler.OnActionQueued(ActionQueuedEvent{Action: a, Pending: pending})
}

func (e *eventEmitterWrapper) OnSyncSucceeded(synced int) {
	if e.handler == nil {
		return
	}
	e.handler.OnSyncSucceeded(SyncSucceededEvent{Synced: synced, Message: domain.SyncSucceededMessage})
}

func (e *eventEmitterWrapper) OnSyncFailed(remaining int, err error) {
	if e.handler == nil {
		return
	}
	e.handler.OnSyncFailed(SyncFailedEvent{
		Remaining: remaining,
		Err:       err,
		Message:   domain.SyncFailedMessage(remaining),
	})
}
