package actionq

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/bft-labs/actionq/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/actionq/internal/adapters/http"
	"github.com/bft-labs/actionq/internal/adapters/static"
	"github.com/bft-labs/actionq/internal/app"
	"github.com/bft-labs/actionq/internal/ports"
)

// Client queues user actions while offline and replays them in order once
// connectivity returns. Use New() to create one, then Start() to begin
// monitoring connectivity.
type Client struct {
	config    Config
	lifecycle *app.Lifecycle
	syncer    *app.Syncer
	logger    ports.Logger
}

// New creates a Client in StateStopped. Returns an error if configuration
// is invalid.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions(&http.Client{Timeout: cfg.HTTPTimeout})
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.ServiceURL == "" && o.fallback == nil {
		return nil, domainConfigError("service url is required")
	}

	logger := o.logger
	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	store := o.store
	if store == nil {
		store = fs.NewFileStore(cfg.StateDir)
	}

	fallback := o.fallback
	if fallback == nil {
		fallback = httpAdapter.NewExecutor(o.httpClient, httpAdapter.ExecutorConfig{
			ServiceURL: cfg.ServiceURL,
			AuthKey:    cfg.AuthKey,
			Hostname:   hostname(),
		}, ports.With(logger, ports.String("component", "executor")))
	}
	registry := app.NewRegistry(fallback)
	for kind, exec := range o.executors {
		registry.Register(kind, exec)
	}

	monitors := o.monitors
	if len(monitors) == 0 {
		monitors = configMonitors(cfg, o.httpClient, logger)
	}

	lifecycle := app.NewLifecycle(logger, emitter)
	queue := app.NewQueue(app.NewQueueStore(store, cfg.QueueKey, logger))
	conn := app.NewConnectivity(logger, emitter)
	flusher := app.NewFlusher(queue, registry, conn, logger, emitter)

	syncer := app.NewSyncer(app.SyncerConfig{
		Queue:        queue,
		Registry:     registry,
		Connectivity: conn,
		Flusher:      flusher,
		Monitor:      app.AllOnline(monitors...),
		Lifecycle:    lifecycle,
		Logger:       logger,
		Emitter:      emitter,
	})

	return &Client{
		config:    cfg,
		lifecycle: lifecycle,
		syncer:    syncer,
		logger:    logger,
	}, nil
}

func configMonitors(cfg Config, client ports.HTTPClient, logger ports.Logger) []ports.ConnectivityMonitor {
	var monitors []ports.ConnectivityMonitor
	if cfg.ProbeURL != "" {
		monitors = append(monitors, httpAdapter.NewProbe(client, httpAdapter.ProbeConfig{
			URL:         cfg.ProbeURL,
			Interval:    cfg.ProbeInterval,
			MaxInterval: cfg.ProbeMaxInterval,
			Timeout:     cfg.HTTPTimeout,
		}, ports.With(logger, ports.String("component", "probe"))))
	}
	if cfg.OfflineMarker != "" {
		monitors = append(monitors, fs.NewMarkerMonitor(cfg.OfflineMarker,
			ports.With(logger, ports.String("component", "marker"))))
	}
	if len(monitors) == 0 {
		monitors = append(monitors, static.Monitor{Online: true})
	}
	return monitors
}

// Start restores the persisted queue and begins monitoring connectivity in
// the background. The first online observation replays anything left from
// a previous run.
func (c *Client) Start(ctx context.Context) error {
	runCtx, err := c.lifecycle.Begin(ctx, "Start() called")
	if err != nil {
		return err
	}

	c.lifecycle.Go(func() {
		if err := c.lifecycle.TransitionTo(app.StateRunning, "syncer starting"); err != nil {
			// Stop() won the race.
			c.logger.Debug("start abandoned", ports.Err(err))
			return
		}
		if err := c.syncer.Run(runCtx); err != nil {
			c.logger.Error("syncer error", ports.Err(err))
			_ = c.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		}
	})
	return nil
}

// Stop cancels monitoring and waits up to ShutdownTimeout for the monitor
// loop and any in-flight sync. Returns nil on graceful shutdown and
// ErrShutdownTimeout if forced.
func (c *Client) Stop() error {
	if err := c.lifecycle.Halt("Stop() called"); err != nil {
		return err
	}
	return c.lifecycle.Drain(app.ShutdownTimeout)
}

// Status returns the current lifecycle state.
func (c *Client) Status() State {
	return convertState(c.lifecycle.State())
}

// IsOffline reports the tracked connectivity. A client that has not yet
// received an observation is offline.
func (c *Client) IsOffline() bool { return c.syncer.IsOffline() }

// Submit performs or defers a user action. See app.Syncer.Submit.
func (c *Client) Submit(ctx context.Context, kind Kind, payload json.RawMessage) (SubmitResult, error) {
	return c.syncer.Submit(ctx, kind, payload)
}

// Pending returns the queued actions in replay order.
func (c *Client) Pending() []Action { return c.syncer.Pending() }

// Retry is the user-triggered "retry sync". It replays the queue now and
// returns the outcome.
func (c *Client) Retry(ctx context.Context) SyncResult { return c.syncer.Retry(ctx) }

// Clear drops every pending action. Returns how many were dropped.
func (c *Client) Clear(ctx context.Context) int { return c.syncer.Clear(ctx) }

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
