package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	StateDir         string `toml:"state_dir"`
	Store            string `toml:"store"`
	DatabaseURL      string `toml:"database_url"`
	QueueKey         string `toml:"queue_key"`
	ServiceURL       string `toml:"service_url"`
	AuthKey          string `toml:"auth_key"`
	HTTPTimeout      string `toml:"http_timeout"`
	Probe            *bool  `toml:"probe"`
	ProbeURL         string `toml:"probe_url"`
	ProbeInterval    string `toml:"probe_interval"`
	ProbeMaxInterval string `toml:"probe_max_interval"`
	OfflineMarker    string `toml:"offline_marker"`
	Listen           string `toml:"listen"`
	LogLevel         string `toml:"log_level"`
	LogJSON          *bool  `toml:"log_json"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.actionq/config.toml, or "" without a home directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".actionq", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("store", fc.Store, &cfg.Store)
	s.setString("database-url", fc.DatabaseURL, &cfg.DatabaseURL)
	s.setString("queue-key", fc.QueueKey, &cfg.QueueKey)
	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)
	s.setString("probe-url", fc.ProbeURL, &cfg.ProbeURL)
	s.setString("offline-marker", fc.OfflineMarker, &cfg.OfflineMarker)
	s.setString("listen", fc.Listen, &cfg.Listen)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("probe-interval", fc.ProbeInterval, &cfg.ProbeInterval); err != nil {
		return err
	}
	if err := s.setDuration("probe-max-interval", fc.ProbeMaxInterval, &cfg.ProbeMaxInterval); err != nil {
		return err
	}

	s.setBool("probe", fc.Probe, &cfg.Probe)
	s.setBool("log-json", fc.LogJSON, &cfg.LogJSON)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
