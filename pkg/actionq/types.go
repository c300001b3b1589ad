package actionq

import (
	"github.com/bft-labs/actionq/internal/app"
	"github.com/bft-labs/actionq/internal/domain"
	"github.com/bft-labs/actionq/internal/ports"
)

// Re-exported types so embedders never import internal packages.
type (
	// Action is a pending user intent.
	Action = domain.Action

	// Kind names a remote operation.
	Kind = domain.Kind

	// ExecError is a failed remote execution.
	ExecError = domain.ExecError

	// SubmitResult reports whether Submit executed or deferred the action.
	SubmitResult = app.SubmitResult

	// SyncResult is the outcome of a sync (flush) attempt.
	SyncResult = app.FlushResult

	// KVStore persists the pending queue.
	KVStore = ports.KVStore

	// Executor performs one action against the remote service.
	Executor = ports.Executor

	// ExecutorFunc adapts a function to Executor.
	ExecutorFunc = ports.ExecutorFunc

	// ConnectivityMonitor reports raw online/offline observations.
	ConnectivityMonitor = ports.ConnectivityMonitor

	// HTTPClient is the interface for making HTTP requests.
	// *http.Client satisfies this interface.
	HTTPClient = ports.HTTPClient

	// Logger is the interface for structured logging.
	Logger = ports.Logger
)

// Action kinds.
const (
	KindRegisterCourse   = domain.KindRegisterCourse
	KindDropCourse       = domain.KindDropCourse
	KindSubmitAssignment = domain.KindSubmitAssignment
)

// Errors returned by the client.
var (
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrUnknownKind     = domain.ErrUnknownKind
	ErrInvalidPayload  = domain.ErrInvalidPayload
)

// State is the lifecycle state of a Client.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

func convertState(s app.State) State {
	switch s {
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}
