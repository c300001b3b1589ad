package ports

import (
	"context"

	"github.com/bft-labs/actionq/internal/domain"
)

// Executor replays a single action against the remote service.
// Failure is reported as a returned error; implementations must not panic.
type Executor interface {
	Execute(ctx context.Context, action domain.Action) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, action domain.Action) error

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, action domain.Action) error {
	return f(ctx, action)
}
