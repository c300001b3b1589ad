package app

import (
	"context"
	"sync"

	"github.com/bft-labs/actionq/internal/domain"
)

// Queue is the authoritative in-process list of pending actions.
// Insertion order is replay order. Every mutation is persisted through the
// QueueStore before the lock is released, so memory and storage never
// disagree beyond a single write.
type Queue struct {
	mu       sync.Mutex
	actions  []domain.Action
	store    *QueueStore
	restored bool
}

// NewQueue creates an empty queue backed by store.
func NewQueue(store *QueueStore) *Queue {
	return &Queue{store: store}
}

// Restore loads the queue persisted by a previous process. Only the first
// load reads storage; Enqueue and Clear perform it too if Restore has not
// run yet, so an early submission never overwrites stored actions. Stored
// actions go ahead of anything already in memory, and memory stays
// authoritative: unreadable storage never drops a live action.
// Returns the number of actions taken from storage.
func (q *Queue) Restore(ctx context.Context) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.restoreLocked(ctx)
}

func (q *Queue) restoreLocked(ctx context.Context) int {
	if q.restored {
		return 0
	}
	q.restored = true

	stored := q.store.Load(ctx)
	if len(stored) == 0 {
		return 0
	}
	live := make(map[string]bool, len(q.actions))
	for _, a := range q.actions {
		live[a.ID] = true
	}
	merged := make([]domain.Action, 0, len(stored)+len(q.actions))
	for _, a := range stored {
		if !live[a.ID] {
			merged = append(merged, a)
		}
	}
	n := len(merged)
	if len(q.actions) > 0 && n > 0 {
		q.actions = append(merged, q.actions...)
		q.store.Save(ctx, q.actions)
		return n
	}
	if len(q.actions) == 0 {
		q.actions = merged
	}
	return n
}

// Enqueue appends a to the end of the queue and persists it.
// Returns the new queue length.
func (q *Queue) Enqueue(ctx context.Context, a domain.Action) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.restoreLocked(ctx)
	q.actions = append(q.actions, a)
	q.store.Save(ctx, q.actions)
	return len(q.actions)
}

// PeekAll returns a snapshot of the queue in replay order.
func (q *Queue) PeekAll() []domain.Action {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.Action(nil), q.actions...)
}

// Front returns the oldest action without removing it.
func (q *Queue) Front() (domain.Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.actions) == 0 {
		return domain.Action{}, false
	}
	return q.actions[0], true
}

// DequeueFront removes and returns the oldest action.
func (q *Queue) DequeueFront(ctx context.Context) (domain.Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.actions) == 0 {
		return domain.Action{}, false
	}
	return q.popLocked(ctx), true
}

// dequeueIf removes the front only if it is still the action with id.
// The flush engine uses it so a concurrent Clear followed by a new Enqueue
// cannot make it drop an action it never executed.
func (q *Queue) dequeueIf(ctx context.Context, id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.actions) == 0 || q.actions[0].ID != id {
		return false
	}
	q.popLocked(ctx)
	return true
}

func (q *Queue) popLocked(ctx context.Context) domain.Action {
	a := q.actions[0]
	q.actions[0] = domain.Action{}
	q.actions = q.actions[1:]
	if len(q.actions) == 0 {
		q.actions = nil
		q.store.Clear(ctx)
	} else {
		q.store.Save(ctx, q.actions)
	}
	return a
}

// persist rewrites the current snapshot as-is.
func (q *Queue) persist(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.actions) == 0 {
		q.store.Clear(ctx)
		return
	}
	q.store.Save(ctx, q.actions)
}

// Clear drops every pending action and removes the persisted queue.
// Returns the number of dropped actions.
func (q *Queue) Clear(ctx context.Context) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.restoreLocked(ctx)
	n := len(q.actions)
	q.actions = nil
	q.store.Clear(ctx)
	return n
}

// Len returns the number of pending actions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

// IsEmpty reports whether no actions are pending.
func (q *Queue) IsEmpty() bool { return q.Len() == 0 }
