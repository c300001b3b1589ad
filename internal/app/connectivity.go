package app

import (
	"context"
	"sort"
	"sync"

	"github.com/bft-labs/actionq/internal/domain"
	"github.com/bft-labs/actionq/internal/ports"
)

// Connectivity collapses raw monitor observations into transitions.
// It starts Offline so the first online observation is a transition.
type Connectivity struct {
	mu      sync.Mutex
	state   domain.Connectivity
	nextID  int
	subs    map[int]func(domain.Connectivity)
	logger  ports.Logger
	emitter ConnectivityEmitter
}

// ConnectivityEmitter is notified once per transition.
type ConnectivityEmitter interface {
	OnConnectivityChange(current domain.Connectivity)
}

// NewConnectivity creates a tracker in the Offline state.
func NewConnectivity(logger ports.Logger, emitter ConnectivityEmitter) *Connectivity {
	return &Connectivity{
		state:   domain.Offline,
		subs:    make(map[int]func(domain.Connectivity)),
		logger:  logger,
		emitter: emitter,
	}
}

// IsOffline reports the current state.
func (c *Connectivity) IsOffline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == domain.Offline
}

// State returns the current state.
func (c *Connectivity) State() domain.Connectivity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// reset returns to Offline without notifying anyone, so a restarted syncer
// treats its first online observation as a reconnect.
func (c *Connectivity) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = domain.Offline
}

// Report records an observation. Subscribers run only when the state changes,
// in subscription order, outside the tracker lock.
func (c *Connectivity) Report(online bool) {
	next := domain.ConnectivityOf(online)

	c.mu.Lock()
	prev := c.state
	if prev == next {
		c.mu.Unlock()
		return
	}
	c.state = next
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(domain.Connectivity), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.subs[id])
	}
	c.mu.Unlock()

	c.logger.Info("connectivity changed",
		ports.String("from", prev.String()),
		ports.String("to", next.String()),
	)
	if c.emitter != nil {
		c.emitter.OnConnectivityChange(next)
	}
	for _, fn := range fns {
		fn(next)
	}
}

// Subscribe registers fn for transitions. The returned func unsubscribes.
func (c *Connectivity) Subscribe(fn func(domain.Connectivity)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// AllOnline combines monitors: the result is online only while every child's
// most recent observation was online. A child that has not reported yet
// counts as offline.
func AllOnline(monitors ...ports.ConnectivityMonitor) ports.ConnectivityMonitor {
	if len(monitors) == 1 {
		return monitors[0]
	}
	return &allOnline{monitors: monitors}
}

type allOnline struct {
	monitors []ports.ConnectivityMonitor
}

func (m *allOnline) Run(ctx context.Context, report func(online bool)) error {
	var (
		mu    sync.Mutex
		state = make([]bool, len(m.monitors))
		wg    sync.WaitGroup
		errMu sync.Mutex
		first error
	)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for i, mon := range m.monitors {
		wg.Add(1)
		go func(i int, mon ports.ConnectivityMonitor) {
			defer wg.Done()
			err := mon.Run(ctx, func(online bool) {
				mu.Lock()
				state[i] = online
				all := true
				for _, s := range state {
					all = all && s
				}
				report(all)
				mu.Unlock()
			})
			if err != nil && ctx.Err() == nil {
				errMu.Lock()
				if first == nil {
					first = err
				}
				errMu.Unlock()
				cancel()
			}
		}(i, mon)
	}
	wg.Wait()
	return first
}
