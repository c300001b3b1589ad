package ports

import "context"

// ConnectivityMonitor is a source of raw connectivity observations.
// Implementations may report the same state repeatedly; de-duplication into
// transitions is the caller's job.
type ConnectivityMonitor interface {
	// Run reports observations until ctx is done. It should report the
	// current state promptly after starting.
	Run(ctx context.Context, report func(online bool)) error
}
