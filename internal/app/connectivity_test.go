package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/actionq/internal/domain"
)

func TestConnectivity_StartsOffline(t *testing.T) {
	c := NewConnectivity(mockLogger{}, nil)

	if !c.IsOffline() {
		t.Error("IsOffline() = false, want true")
	}
	if c.State() != domain.Offline {
		t.Errorf("State() = %v, want offline", c.State())
	}
}

func TestConnectivity_NotifiesOnlyOnTransitions(t *testing.T) {
	rec := &syncRecorder{}
	c := NewConnectivity(mockLogger{}, rec)

	var got []domain.Connectivity
	c.Subscribe(func(s domain.Connectivity) { got = append(got, s) })

	for _, online := range []bool{false, true, true, true, false, false, true} {
		c.Report(online)
	}

	want := []domain.Connectivity{domain.Online, domain.Offline, domain.Online}
	if len(got) != len(want) {
		t.Fatalf("notifications = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification %d = %v, want %v", i, got[i], want[i])
		}
	}
	if len(rec.changes) != len(want) {
		t.Errorf("emitter saw %d changes, want %d", len(rec.changes), len(want))
	}
}

func TestConnectivity_SubscribersRunInOrder(t *testing.T) {
	c := NewConnectivity(mockLogger{}, nil)

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		c.Subscribe(func(domain.Connectivity) { order = append(order, i) })
	}
	c.Report(true)

	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want ascending", order)
		}
	}
}

func TestConnectivity_Unsubscribe(t *testing.T) {
	c := NewConnectivity(mockLogger{}, nil)

	calls := 0
	unsubscribe := c.Subscribe(func(domain.Connectivity) { calls++ })
	c.Report(true)
	unsubscribe()
	unsubscribe()
	c.Report(false)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestConnectivity_SubscriberMayReadState(t *testing.T) {
	c := NewConnectivity(mockLogger{}, nil)

	var sawOffline bool
	c.Subscribe(func(domain.Connectivity) { sawOffline = c.IsOffline() })
	c.Report(true)

	if sawOffline {
		t.Error("subscriber saw stale state")
	}
}

// chanMonitor forwards observations from a channel.
type chanMonitor struct {
	ch  chan bool
	err error
}

func (m *chanMonitor) Run(ctx context.Context, report func(bool)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case online, ok := <-m.ch:
			if !ok {
				return m.err
			}
			report(online)
		}
	}
}

func TestAllOnline(t *testing.T) {
	a := &chanMonitor{ch: make(chan bool)}
	b := &chanMonitor{ch: make(chan bool)}

	out := make(chan bool, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- AllOnline(a, b).Run(ctx, func(online bool) { out <- online })
	}()

	steps := []struct {
		mon  *chanMonitor
		obs  bool
		want bool
	}{
		{a, true, false}, // b has not reported yet
		{b, true, true},
		{b, false, false},
		{b, true, true},
		{a, false, false},
	}
	for i, s := range steps {
		s.mon.ch <- s.obs
		if got := <-out; got != s.want {
			t.Errorf("step %d: combined = %v, want %v", i, got, s.want)
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}

func TestAllOnline_FirstErrorStopsAll(t *testing.T) {
	boom := errors.New("boom")
	a := &chanMonitor{ch: make(chan bool), err: boom}
	b := &chanMonitor{ch: make(chan bool)}

	done := make(chan error, 1)
	go func() { done <- AllOnline(a, b).Run(context.Background(), func(bool) {}) }()
	close(a.ch)

	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Errorf("Run() = %v, want %v", err, boom)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after a monitor failed")
	}
}

func TestAllOnline_SingleMonitorIsReturnedAsIs(t *testing.T) {
	m := &chanMonitor{}
	if AllOnline(m) != m {
		t.Error("AllOnline() with one monitor should return it unchanged")
	}
}
