package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bft-labs/actionq/internal/domain"
	"github.com/bft-labs/actionq/internal/ports"
)

// Registry routes actions to the executor registered for their kind.
type Registry struct {
	mu        sync.RWMutex
	executors map[domain.Kind]ports.Executor
	fallback  ports.Executor
}

// NewRegistry creates a registry. fallback, if non-nil, handles every kind
// without a dedicated executor.
func NewRegistry(fallback ports.Executor) *Registry {
	return &Registry{
		executors: make(map[domain.Kind]ports.Executor),
		fallback:  fallback,
	}
}

// Register binds kind to exec, replacing any previous binding.
func (r *Registry) Register(kind domain.Kind, exec ports.Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[kind] = exec
}

// Lookup returns the executor for kind.
func (r *Registry) Lookup(kind domain.Kind) (ports.Executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.executors[kind]; ok {
		return e, true
	}
	if r.fallback != nil && kind.Known() {
		return r.fallback, true
	}
	return nil, false
}

// Execute runs a through its executor. Every failure comes back as an
// *domain.ExecError, including panics in the executor.
func (r *Registry) Execute(ctx context.Context, a domain.Action) (err error) {
	exec, ok := r.Lookup(a.Kind)
	if !ok {
		return &domain.ExecError{ActionID: a.ID, Kind: a.Kind, Err: domain.ErrUnknownKind}
	}
	defer func() {
		if p := recover(); p != nil {
			err = &domain.ExecError{ActionID: a.ID, Kind: a.Kind, Err: fmt.Errorf("executor panic: %v", p)}
		}
	}()
	if err := exec.Execute(ctx, a); err != nil {
		var ee *domain.ExecError
		if errors.As(err, &ee) {
			return err
		}
		return &domain.ExecError{ActionID: a.ID, Kind: a.Kind, Err: err}
	}
	return nil
}
