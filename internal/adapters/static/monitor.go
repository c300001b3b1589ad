// Package static provides a connectivity monitor with a fixed answer.
package static

import "context"

// Monitor reports a single observation and then waits for cancellation.
// It backs embedded clients whose host already knows it is online, and
// tests that drive the tracker directly.
type Monitor struct {
	Online bool
}

// Run reports m.Online once and blocks until ctx is done.
func (m Monitor) Run(ctx context.Context, report func(online bool)) error {
	report(m.Online)
	<-ctx.Done()
	return nil
}
