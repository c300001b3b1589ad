// Package ports declares what internal/app needs from the outside world:
// somewhere to keep the queue ([KVStore]), a way to perform an action
// remotely ([Executor]), a source of connectivity observations
// ([ConnectivityMonitor]), a [Logger] and an [HTTPClient].
//
// Implementations live under internal/adapters. The app layer never imports
// them directly; pkg/actionq and cmd/actionq do the wiring.
package ports
