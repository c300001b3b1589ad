package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/actionq/internal/api"
	"github.com/bft-labs/actionq/internal/cliconfig"
	"github.com/bft-labs/actionq/pkg/actionq"
	"github.com/bft-labs/actionq/pkg/log"
)

const longHelp = `actionq keeps user actions (course registration, drops, assignment
submissions) when the service is unreachable and replays them in order once
connectivity returns.

Running "actionq" starts the agent and its local control API. The other
commands talk to a running agent.`

var exampleUsage = strings.TrimSpace(`
  actionq --service-url https://api.example.edu --auth-key <api-key>
  actionq --store sqlite --offline-marker /tmp/actionq-offline
  actionq submit --kind register_course --payload '{"courseId":"CS101"}'
  actionq pending
  actionq sync
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "actionq:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "actionq",
		Short:         "Queue user actions while offline and replay them in order on reconnect",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Env overrides the file; flags override both (changed map).
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := log.New(log.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, logger)
		},
	}

	f := root.Flags()
	f.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.actionq/config.toml)")
	f.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for the persisted queue (default: $HOME/.actionq)")
	f.StringVar(&cfg.Store, "store", cfg.Store, "queue storage backend: file, memory, sqlite or postgres")
	f.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL connection string for --store=postgres")
	f.StringVar(&cfg.QueueKey, "queue-key", cfg.QueueKey, "storage key of the pending queue")
	f.StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "base URL of the remote service")
	f.StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "API key sent as a bearer token")
	f.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")
	f.BoolVar(&cfg.Probe, "probe", cfg.Probe, "poll a health endpoint to detect connectivity")
	f.StringVar(&cfg.ProbeURL, "probe-url", cfg.ProbeURL, "health endpoint (default: <service-url>/healthz)")
	f.DurationVar(&cfg.ProbeInterval, "probe-interval", cfg.ProbeInterval, "health poll interval while online")
	f.DurationVar(&cfg.ProbeMaxInterval, "probe-max-interval", cfg.ProbeMaxInterval, "maximum poll interval while offline")
	f.StringVar(&cfg.OfflineMarker, "offline-marker", cfg.OfflineMarker, "force offline mode while this file exists")
	f.StringVar(&cfg.Listen, "listen", cfg.Listen, "control API address")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	f.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "write JSON logs instead of console output")

	root.AddCommand(newClientCmds()...)
	return root
}

// run starts the client and the control API and blocks until a signal
// arrives or either of them fails.
func run(parent context.Context, cfg cliconfig.Config, logger *log.ZerologAdapter) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	logger.Info("configuration",
		log.String("store", cfg.Store),
		log.String("state_dir", cfg.StateDir),
		log.String("service_url", cfg.ServiceURL),
		log.String("probe_url", cfg.ProbeURL),
		log.String("offline_marker", cfg.OfflineMarker),
		log.String("listen", cfg.Listen),
		log.Bool("auth", cfg.AuthKey != ""),
	)

	client, err := actionq.New(actionq.Config{
		StateDir:         cfg.StateDir,
		QueueKey:         cfg.QueueKey,
		ServiceURL:       cfg.ServiceURL,
		AuthKey:          cfg.AuthKey,
		HTTPTimeout:      cfg.HTTPTimeout,
		ProbeURL:         cfg.ProbeURL,
		ProbeInterval:    cfg.ProbeInterval,
		ProbeMaxInterval: cfg.ProbeMaxInterval,
		OfflineMarker:    cfg.OfflineMarker,
	},
		actionq.WithLogger(logger),
		actionq.WithStore(store),
		actionq.WithEventHandler(&notifier{logger: logger}),
	)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("start client: %w", err)
	}

	srv := api.NewServer(api.Options{
		Address: cfg.Listen,
		Service: client,
		Logger:  log.With(logger, log.String("component", "api")),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("stopping")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Warn("control api shutdown", log.Err(err))
		}
		return client.Stop()
	})
	return g.Wait()
}

// notifier surfaces sync outcomes to the user through the log.
type notifier struct {
	actionq.BaseEventHandler
	logger log.Logger
}

func (n *notifier) OnConnectivityChange(e actionq.ConnectivityEvent) {
	if e.Offline {
		n.logger.Warn("offline: actions will be queued")
		return
	}
	n.logger.Info("online")
}

func (n *notifier) OnSyncSucceeded(e actionq.SyncSucceededEvent) {
	n.logger.Info(e.Message, log.Int("synced", e.Synced))
}

func (n *notifier) OnSyncFailed(e actionq.SyncFailedEvent) {
	n.logger.Warn(e.Message, log.Int("remaining", e.Remaining), log.Err(e.Err))
}
