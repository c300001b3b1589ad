package actionq

import (
	"net/http"

	"github.com/bft-labs/actionq/pkg/log"
)

// Option configures optional behavior of a Client.
type Option func(*options)

type options struct {
	httpClient   HTTPClient
	logger       Logger
	eventHandler EventHandler
	store        KVStore
	fallback     Executor
	executors    map[Kind]Executor
	monitors     []ConnectivityMonitor
}

func defaultOptions(client *http.Client) options {
	return options{
		httpClient: client,
		logger:     log.NewNoopLogger(),
		executors:  make(map[Kind]Executor),
	}
}

// WithHTTPClient sets the client used for remote execution and probing.
// If not provided, a default client with the configured timeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventHandler sets a handler for client events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithStore replaces the file-backed queue store.
func WithStore(store KVStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithExecutor replaces the HTTP executor for every kind.
func WithExecutor(exec Executor) Option {
	return func(o *options) {
		o.fallback = exec
	}
}

// WithKindExecutor routes a single kind to exec.
func WithKindExecutor(kind Kind, exec Executor) Option {
	return func(o *options) {
		o.executors[kind] = exec
	}
}

// WithMonitor adds a connectivity monitor. With several monitors the client
// is online only while all of them report online. Supplying any monitor
// disables the ones derived from Config.
func WithMonitor(m ConnectivityMonitor) Option {
	return func(o *options) {
		o.monitors = append(o.monitors, m)
	}
}
