package actionq

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bft-labs/actionq/internal/app"
	"github.com/bft-labs/actionq/internal/domain"
)

// Default configuration values.
const (
	DefaultHTTPTimeout      = 15 * time.Second
	DefaultProbeInterval    = 5 * time.Second
	DefaultProbeMaxInterval = 60 * time.Second
	DefaultQueueKey         = app.DefaultQueueKey
)

// Config configures a Client.
type Config struct {
	// StateDir holds the file-backed queue. Defaults to ~/.actionq.
	StateDir string

	// QueueKey is the storage key of the pending queue.
	QueueKey string

	// ServiceURL is the base URL of the remote service. Required unless a
	// fallback executor is supplied with WithExecutor.
	ServiceURL string

	// AuthKey is sent as a bearer token when set.
	AuthKey string

	HTTPTimeout time.Duration

	// ProbeURL, when set, is polled to decide connectivity.
	ProbeURL         string
	ProbeInterval    time.Duration
	ProbeMaxInterval time.Duration

	// OfflineMarker, when set, forces offline mode while the file exists.
	OfflineMarker string
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.StateDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.StateDir = filepath.Join(home, ".actionq")
		} else {
			c.StateDir = ".actionq"
		}
	}
	if c.QueueKey == "" {
		c.QueueKey = DefaultQueueKey
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.ProbeInterval <= 0 {
		c.ProbeInterval = DefaultProbeInterval
	}
	if c.ProbeMaxInterval <= 0 {
		c.ProbeMaxInterval = DefaultProbeMaxInterval
	}
	c.ServiceURL = strings.TrimRight(c.ServiceURL, "/")
}

// Validate checks the configuration after SetDefaults.
func (c Config) Validate() error {
	if c.ProbeMaxInterval < c.ProbeInterval {
		return fmt.Errorf("%w: probe max interval %s is below interval %s",
			domain.ErrInvalidConfig, c.ProbeMaxInterval, c.ProbeInterval)
	}
	if c.ServiceURL != "" && !strings.HasPrefix(c.ServiceURL, "http://") && !strings.HasPrefix(c.ServiceURL, "https://") {
		return fmt.Errorf("%w: service url %q must be http(s)", domain.ErrInvalidConfig, c.ServiceURL)
	}
	return nil
}

func domainConfigError(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, msg)
}
