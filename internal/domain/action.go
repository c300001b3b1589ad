package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action is a pending user intent. While queued, its position in the queue is
// its identity; ID is carried so the remote service can deduplicate replays.
type Action struct {
	// ID is a UUIDv4 assigned when the action is created.
	ID string `json:"id"`

	// Kind selects the remote operation used to replay the action.
	Kind Kind `json:"kind"`

	// Payload is the kind-specific JSON object needed to replay the action.
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the time of the original intent (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// NewAction validates the payload against the kind and returns a new action
// stamped with a fresh ID and the given creation time.
func NewAction(kind Kind, payload json.RawMessage, createdAt time.Time) (Action, error) {
	if err := kind.Validate(payload); err != nil {
		return Action{}, err
	}
	return Action{
		ID:        uuid.NewString(),
		Kind:      kind,
		Payload:   append(json.RawMessage(nil), payload...),
		CreatedAt: createdAt.UTC(),
	}, nil
}

// Field returns a top-level payload field under the same rule Validate
// applies to required fields. Numbers keep their literal JSON text.
func (a Action) Field(name string) (string, bool) {
	obj, err := payloadObject(a.Payload)
	if err != nil {
		return "", false
	}
	return scalar(obj[name])
}

// QueuedFor renders how long ago the action was queued, e.g. "queued 3 minutes ago".
func (a Action) QueuedFor(now time.Time) string {
	d := now.Sub(a.CreatedAt)
	switch {
	case d < time.Minute:
		return "queued just now"
	case d < time.Hour:
		return "queued " + plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return "queued " + plural(int(d/time.Hour), "hour") + " ago"
	default:
		return "queued " + plural(int(d/(24*time.Hour)), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
