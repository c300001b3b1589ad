package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bft-labs/actionq/internal/domain"
	"github.com/bft-labs/actionq/internal/ports"
)

// DefaultQueueKey is the key the pending queue is persisted under.
const DefaultQueueKey = "actionq.pending"

const queueFormatVersion = 1

// queueEnvelope is the persisted form of the queue.
type queueEnvelope struct {
	Version int             `json:"version"`
	Actions []domain.Action `json:"actions"`
}

// QueueStore persists the pending queue through a KVStore.
// Storage and parse failures are logged and swallowed: the in-memory queue
// stays authoritative for the current process.
type QueueStore struct {
	kv     ports.KVStore
	key    string
	logger ports.Logger
}

// NewQueueStore creates a store persisting under key (DefaultQueueKey if empty).
func NewQueueStore(kv ports.KVStore, key string, logger ports.Logger) *QueueStore {
	if key == "" {
		key = DefaultQueueKey
	}
	return &QueueStore{kv: kv, key: key, logger: logger}
}

// Key returns the storage key.
func (s *QueueStore) Key() string { return s.key }

// Load returns the persisted queue, or an empty queue when none is stored,
// the read fails, or the stored value is corrupt.
func (s *QueueStore) Load(ctx context.Context) []domain.Action {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("load pending queue failed", ports.String("key", s.key), ports.Err(err))
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	actions, err := decodeQueue(raw)
	if err != nil {
		s.logger.Warn("discarding corrupt pending queue", ports.String("key", s.key), ports.Err(err))
		return nil
	}
	return actions
}

// Save writes the full queue in one Set call.
func (s *QueueStore) Save(ctx context.Context, actions []domain.Action) {
	b, err := json.Marshal(queueEnvelope{Version: queueFormatVersion, Actions: actions})
	if err != nil {
		s.logger.Warn("encode pending queue failed", ports.Err(err))
		return
	}
	if err := s.kv.Set(ctx, s.key, string(b)); err != nil {
		s.logger.Warn("persist pending queue failed",
			ports.String("key", s.key),
			ports.Int("pending", len(actions)),
			ports.Err(err),
		)
	}
}

// Clear removes the persisted queue.
func (s *QueueStore) Clear(ctx context.Context) {
	if err := s.kv.Remove(ctx, s.key); err != nil {
		s.logger.Warn("clear pending queue failed", ports.String("key", s.key), ports.Err(err))
	}
}

func decodeQueue(raw string) ([]domain.Action, error) {
	var env queueEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, err
	}
	if env.Version != queueFormatVersion {
		return nil, fmt.Errorf("unsupported queue version %d", env.Version)
	}
	for i, a := range env.Actions {
		if a.Kind == "" {
			return nil, fmt.Errorf("action %d has no kind", i)
		}
	}
	return env.Actions, nil
}
