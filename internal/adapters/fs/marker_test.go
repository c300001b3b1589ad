package fs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/actionq/pkg/log"
)

type observations struct {
	mu  sync.Mutex
	got []bool
}

func (o *observations) add(online bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.got = append(o.got, online)
}

func (o *observations) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.got)
}

func (o *observations) last() (bool, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.got) == 0 {
		return false, false
	}
	return o.got[len(o.got)-1], true
}

func TestMarkerMonitor_FollowsMarkerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offline")
	m := NewMarkerMonitor(path, log.NewNoopLogger())
	m.debounce = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs := &observations{}
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, obs.add) }()

	isOnline := func(want bool) func() bool {
		return func() bool {
			got, ok := obs.last()
			return ok && got == want
		}
	}

	require.Eventually(t, isOnline(true), time.Second, time.Millisecond)

	require.NoError(t, os.WriteFile(path, nil, 0o600))
	require.Eventually(t, isOnline(false), 2*time.Second, time.Millisecond)

	require.NoError(t, os.Remove(path))
	require.Eventually(t, isOnline(true), 2*time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestMarkerMonitor_StartsOfflineWhenMarkerExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offline")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	m := NewMarkerMonitor(path, log.NewNoopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := make(chan bool, 1)
	go func() {
		_ = m.Run(ctx, func(online bool) {
			select {
			case first <- online:
			default:
			}
		})
	}()

	select {
	case online := <-first:
		assert.False(t, online)
	case <-time.After(time.Second):
		t.Fatal("no initial observation")
	}
}

func TestMarkerMonitor_BurstSettlesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offline")
	m := NewMarkerMonitor(path, log.NewNoopLogger())
	m.debounce = 150 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs := &observations{}
	go func() { _ = m.Run(ctx, obs.add) }()
	require.Eventually(t, func() bool { return obs.count() == 1 }, time.Second, time.Millisecond)

	// Toggle faster than the debounce window; the burst ends with the marker present.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, nil, 0o600))
		require.NoError(t, os.Remove(path))
	}
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	require.Eventually(t, func() bool {
		got, ok := obs.last()
		return ok && !got
	}, 2*time.Second, time.Millisecond)

	// No stale timer fire follows the settled report.
	settled := obs.count()
	time.Sleep(3 * m.debounce)
	assert.Equal(t, settled, obs.count())
	got, _ := obs.last()
	assert.False(t, got)
}
