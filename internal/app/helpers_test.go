package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/actionq/internal/adapters/memory"
	"github.com/bft-labs/actionq/internal/domain"
	"github.com/bft-labs/actionq/internal/ports"
)

var errRemote = errors.New("remote unavailable")

// mockLogger discards everything.
type mockLogger struct{}

func (mockLogger) Debug(string, ...ports.Field) {}
func (mockLogger) Info(string, ...ports.Field)  {}
func (mockLogger) Warn(string, ...ports.Field)  {}
func (mockLogger) Error(string, ...ports.Field) {}

// recordingExecutor records executed action IDs in order. Actions whose ID
// is in fail are rejected, as is any call whose context is already done. When set, started receives each ID on entry and
// gate blocks each call until it receives.
type recordingExecutor struct {
	mu      sync.Mutex
	calls   []string
	fail    map[string]bool
	started chan string
	gate    chan struct{}
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{fail: make(map[string]bool)}
}

func (e *recordingExecutor) Execute(ctx context.Context, a domain.Action) error {
	if e.started != nil {
		e.started <- a.ID
	}
	if e.gate != nil {
		<-e.gate
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, a.ID)
	if e.fail[a.ID] {
		return errRemote
	}
	return nil
}

func (e *recordingExecutor) setFail(id string, fail bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fail[id] = fail
}

func (e *recordingExecutor) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

// failingKV fails every operation.
type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}
func (failingKV) Set(context.Context, string, string) error { return errors.New("disk full") }
func (failingKV) Remove(context.Context, string) error      { return errors.New("read-only") }

// countingLogger counts warnings.
type countingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (*countingLogger) Debug(string, ...ports.Field) {}
func (*countingLogger) Info(string, ...ports.Field)  {}
func (*countingLogger) Error(string, ...ports.Field) {}
func (l *countingLogger) Warn(msg string, _ ...ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *countingLogger) Warns() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warns)
}

// syncRecorder records sync and queue events.
type syncRecorder struct {
	mu        sync.Mutex
	succeeded []int
	failed    []int
	queued    []int
	changes   []domain.Connectivity
}

func (r *syncRecorder) OnSyncSucceeded(synced int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.succeeded = append(r.succeeded, synced)
}

func (r *syncRecorder) OnSyncFailed(remaining int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, remaining)
}

func (r *syncRecorder) OnActionQueued(a domain.Action, pending int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queued = append(r.queued, pending)
}

func (r *syncRecorder) OnConnectivityChange(c domain.Connectivity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *syncRecorder) snapshot() (succeeded, failed, queued []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.succeeded...), append([]int(nil), r.failed...), append([]int(nil), r.queued...)
}

func testAction(t *testing.T, course string) domain.Action {
	t.Helper()
	payload := json.RawMessage(fmt.Sprintf(`{"courseId":%q}`, course))
	a, err := domain.NewAction(domain.KindRegisterCourse, payload, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewAction: %v", err)
	}
	return a
}

func ids(actions []domain.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// harness wires the engine over an in-memory store.
type harness struct {
	kv       *memory.Store
	store    *QueueStore
	queue    *Queue
	exec     *recordingExecutor
	conn     *Connectivity
	flusher  *Flusher
	events   *syncRecorder
	registry *Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		kv:     memory.NewStore(),
		exec:   newRecordingExecutor(),
		events: &syncRecorder{},
	}
	h.store = NewQueueStore(h.kv, "", mockLogger{})
	h.queue = NewQueue(h.store)
	h.registry = NewRegistry(h.exec)
	h.conn = NewConnectivity(mockLogger{}, h.events)
	h.flusher = NewFlusher(h.queue, h.registry, h.conn, mockLogger{}, h.events)
	return h
}

func (h *harness) enqueue(t *testing.T, courses ...string) []domain.Action {
	t.Helper()
	out := make([]domain.Action, 0, len(courses))
	for _, c := range courses {
		a := testAction(t, c)
		h.queue.Enqueue(context.Background(), a)
		out = append(out, a)
	}
	return out
}

// persisted returns the IDs currently in the store, nil if the key is absent.
func (h *harness) persisted(t *testing.T) []string {
	t.Helper()
	if _, ok, _ := h.kv.Get(context.Background(), DefaultQueueKey); !ok {
		return nil
	}
	return ids(h.store.Load(context.Background()))
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
