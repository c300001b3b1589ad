package cliconfig

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "ACTIONQ_"

// ApplyEnvConfig applies configuration from environment variables (ACTIONQ_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(name string) string { return os.Getenv(EnvPrefix + name) }

	s.setString("state-dir", env("STATE_DIR"), &cfg.StateDir)
	s.setString("store", env("STORE"), &cfg.Store)
	s.setString("database-url", env("DATABASE_URL"), &cfg.DatabaseURL)
	s.setString("queue-key", env("QUEUE_KEY"), &cfg.QueueKey)
	s.setString("service-url", env("SERVICE_URL"), &cfg.ServiceURL)
	s.setString("auth-key", env("AUTH_KEY"), &cfg.AuthKey)
	s.setString("probe-url", env("PROBE_URL"), &cfg.ProbeURL)
	s.setString("offline-marker", env("OFFLINE_MARKER"), &cfg.OfflineMarker)
	s.setString("listen", env("LISTEN"), &cfg.Listen)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("timeout", env("HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("probe-interval", env("PROBE_INTERVAL"), &cfg.ProbeInterval); err != nil {
		return err
	}
	if err := s.setDuration("probe-max-interval", env("PROBE_MAX_INTERVAL"), &cfg.ProbeMaxInterval); err != nil {
		return err
	}

	if err := s.setBoolFromString("probe", env("PROBE"), &cfg.Probe); err != nil {
		return err
	}
	return s.setBoolFromString("log-json", env("LOG_JSON"), &cfg.LogJSON)
}
