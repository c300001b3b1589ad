package api

import (
	"encoding/json"
	"time"
)

// StatusResponse is returned by GET /v1/status.
type StatusResponse struct {
	State   string `json:"state"`
	Offline bool   `json:"offline"`
	Pending int    `json:"pending"`
}

// PendingItem is one entry of GET /v1/pending.
type PendingItem struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	QueuedFor string          `json:"queued_for"`
}

// SubmitRequest is the body of POST /v1/actions.
type SubmitRequest struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// SubmitResponse is returned by POST /v1/actions.
type SubmitResponse struct {
	ID      string `json:"id"`
	Queued  bool   `json:"queued"`
	Pending int    `json:"pending,omitempty"`
}

// SyncResponse is returned by POST /v1/sync.
type SyncResponse struct {
	Synced    int    `json:"synced"`
	Remaining int    `json:"remaining"`
	Skipped   bool   `json:"skipped,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ClearResponse is returned by DELETE /v1/pending.
type ClearResponse struct {
	Cleared int `json:"cleared"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code,omitempty"`
}
