package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the actionq domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("actionq: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("actionq: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("actionq: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("actionq: invalid configuration")

	// ErrUnknownKind is returned for an action kind with no registered spec or executor.
	ErrUnknownKind = errors.New("actionq: unknown action kind")

	// ErrInvalidPayload is returned when a payload does not satisfy its kind.
	ErrInvalidPayload = errors.New("actionq: invalid payload")

	// ErrOffline wraps failures where the remote service could not be reached.
	ErrOffline = errors.New("actionq: offline")
)

// ExecError is a failed remote execution of a single action.
type ExecError struct {
	ActionID   string
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *ExecError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("execute %s (%s): status %d: %v", e.Kind, e.ActionID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("execute %s (%s): %v", e.Kind, e.ActionID, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// User-facing sync messages.
const SyncSucceededMessage = "All pending actions synced successfully."

// SyncFailedMessage is shown when a flush stops with remaining actions queued.
func SyncFailedMessage(remaining int) string {
	if remaining == 1 {
		return "1 item failed to sync, will retry"
	}
	return fmt.Sprintf("%d items failed to sync, will retry", remaining)
}
