package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bft-labs/actionq/internal/domain"
)

// Storage backends.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// DefaultListen is the default control API address.
const DefaultListen = "127.0.0.1:7420"

// Config holds CLI configuration for actionq.
type Config struct {
	StateDir    string
	Store       string
	DatabaseURL string
	QueueKey    string

	ServiceURL  string
	AuthKey     string
	HTTPTimeout time.Duration

	Probe            bool
	ProbeURL         string
	ProbeInterval    time.Duration
	ProbeMaxInterval time.Duration
	OfflineMarker    string

	Listen   string
	LogLevel string
	LogJSON  bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Store:            StoreFile,
		QueueKey:         "actionq.pending",
		HTTPTimeout:      15 * time.Second,
		Probe:            true,
		ProbeInterval:    5 * time.Second,
		ProbeMaxInterval: 60 * time.Second,
		Listen:           DefaultListen,
		LogLevel:         "info",
		StateDir:         "", // Derived from the home directory during Validate
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	c.ServiceURL = strings.TrimRight(c.ServiceURL, "/")
	if c.ServiceURL == "" {
		return invalid("service-url is required")
	}

	if c.StateDir == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return invalid("state-dir is required (no home directory)")
		}
		c.StateDir = filepath.Join(h, ".actionq")
	}

	switch c.Store {
	case StoreFile, StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return invalid("database-url is required for the postgres store")
		}
	default:
		return invalid(fmt.Sprintf("unknown store %q", c.Store))
	}

	if c.HTTPTimeout <= 0 {
		return invalid("timeout must be positive")
	}
	if c.ProbeInterval <= 0 {
		return invalid("probe interval must be positive")
	}
	if c.ProbeMaxInterval < c.ProbeInterval {
		return invalid("probe max interval must not be below probe interval")
	}

	if c.Probe && c.ProbeURL == "" {
		c.ProbeURL = c.ServiceURL + "/healthz"
	}
	if !c.Probe {
		c.ProbeURL = ""
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, msg)
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString accepts "true" and "1" as true, "false" and "0" as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	switch strings.ToLower(value) {
	case "true", "1":
		*dst = true
	case "false", "0":
		*dst = false
	default:
		return fmt.Errorf("parse %s: invalid boolean %q", flag, value)
	}
	return nil
}
