package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bft-labs/actionq/internal/ports"
)

// Default probe timings.
const (
	DefaultProbeInterval    = 5 * time.Second
	DefaultProbeMaxInterval = 60 * time.Second
	DefaultProbeTimeout     = 5 * time.Second
)

// ProbeConfig configures a Probe.
type ProbeConfig struct {
	URL         string
	Interval    time.Duration
	MaxInterval time.Duration
	Timeout     time.Duration
}

// Probe is a ports.ConnectivityMonitor that polls a health endpoint.
// A 2xx or 3xx response counts as online. While offline the poll interval
// backs off up to MaxInterval; it resets on the first success.
type Probe struct {
	client ports.HTTPClient
	cfg    ProbeConfig
	logger ports.Logger
}

// NewProbe creates a health probe.
func NewProbe(client ports.HTTPClient, cfg ProbeConfig, logger ports.Logger) *Probe {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultProbeInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = DefaultProbeMaxInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultProbeTimeout
	}
	return &Probe{client: client, cfg: cfg, logger: logger}
}

// Run polls until ctx is done.
func (p *Probe) Run(ctx context.Context, report func(online bool)) error {
	bo := newBackoff(p.cfg.Interval, p.cfg.MaxInterval)
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		online := p.check(ctx)
		if ctx.Err() != nil {
			return nil
		}
		report(online)

		wait := p.cfg.Interval
		if online {
			bo.Reset()
		} else {
			wait = bo.Next()
		}
		timer.Reset(wait)
	}
}

func (p *Probe) check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL, nil)
	if err != nil {
		p.logger.Warn("build probe request failed", ports.String("url", p.cfg.URL), ports.Err(err))
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("probe failed", ports.String("url", p.cfg.URL), ports.Err(err))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}
