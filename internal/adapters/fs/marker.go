package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/actionq/internal/ports"
)

// DefaultMarkerDebounce coalesces bursts of file events.
const DefaultMarkerDebounce = 100 * time.Millisecond

// MarkerMonitor is a ports.ConnectivityMonitor driven by a marker file:
// the client is offline while the file exists. It lets an operator or a
// test force offline mode with `touch`.
type MarkerMonitor struct {
	path     string
	debounce time.Duration
	logger   ports.Logger
}

// NewMarkerMonitor creates a monitor watching path.
func NewMarkerMonitor(path string, logger ports.Logger) *MarkerMonitor {
	return &MarkerMonitor{path: path, debounce: DefaultMarkerDebounce, logger: logger}
}

// Path returns the watched marker path.
func (m *MarkerMonitor) Path() string { return m.path }

// Run reports the current state, then one observation per settled burst of
// changes to the marker, until ctx is done.
func (m *MarkerMonitor) Run(ctx context.Context, report func(online bool)) error {
	dir := filepath.Dir(m.path)
	name := filepath.Base(m.path)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("marker: create dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("marker: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("marker: watch %s: %w", dir, err)
	}

	report(m.online())

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(m.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(m.debounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			report(m.online())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Warn("marker watcher error", ports.String("path", m.path), ports.Err(err))
		}
	}
}

func (m *MarkerMonitor) online() bool {
	_, err := os.Stat(m.path)
	return errors.Is(err, os.ErrNotExist)
}
