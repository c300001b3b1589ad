package cliconfig

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/bft-labs/actionq/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Store != StoreFile {
		t.Errorf("Store = %v, want %v", cfg.Store, StoreFile)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %v, want 15s", cfg.HTTPTimeout)
	}
	if cfg.ProbeInterval != 5*time.Second || cfg.ProbeMaxInterval != time.Minute {
		t.Errorf("probe intervals = %v/%v, want 5s/1m", cfg.ProbeInterval, cfg.ProbeMaxInterval)
	}
	if cfg.Listen != DefaultListen {
		t.Errorf("Listen = %v, want %v", cfg.Listen, DefaultListen)
	}
	if !cfg.Probe {
		t.Error("Probe = false, want true")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		cfg := DefaultConfig()
		cfg.ServiceURL = "https://api.example.edu"
		cfg.StateDir = "/state"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing service url", func(c *Config) { c.ServiceURL = "" }, true},
		{"unknown store", func(c *Config) { c.Store = "floppy" }, true},
		{"postgres without url", func(c *Config) { c.Store = StorePostgres }, true},
		{"postgres with url", func(c *Config) {
			c.Store = StorePostgres
			c.DatabaseURL = "postgres://db"
		}, false},
		{"memory store", func(c *Config) { c.Store = StoreMemory }, false},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }, true},
		{"zero probe interval", func(c *Config) { c.ProbeInterval = 0 }, true},
		{"max below interval", func(c *Config) { c.ProbeMaxInterval = time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_Validate_Derivations(t *testing.T) {
	t.Run("probe url from service url", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ServiceURL = "https://api.example.edu/"
		cfg.StateDir = "/state"

		if err := cfg.Validate(); err != nil {
			t.Fatal(err)
		}
		if cfg.ServiceURL != "https://api.example.edu" {
			t.Errorf("ServiceURL = %v, trailing slash not removed", cfg.ServiceURL)
		}
		if cfg.ProbeURL != "https://api.example.edu/healthz" {
			t.Errorf("ProbeURL = %v", cfg.ProbeURL)
		}
	})

	t.Run("probe disabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ServiceURL = "https://api.example.edu"
		cfg.StateDir = "/state"
		cfg.Probe = false
		cfg.ProbeURL = "https://elsewhere/up"

		if err := cfg.Validate(); err != nil {
			t.Fatal(err)
		}
		if cfg.ProbeURL != "" {
			t.Errorf("ProbeURL = %v, want empty", cfg.ProbeURL)
		}
	})

	t.Run("state dir from home", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		cfg := DefaultConfig()
		cfg.ServiceURL = "https://api.example.edu"

		if err := cfg.Validate(); err != nil {
			t.Fatal(err)
		}
		if cfg.StateDir != filepath.Join(home, ".actionq") {
			t.Errorf("StateDir = %v", cfg.StateDir)
		}
	})
}
