package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bft-labs/actionq/internal/ports"
)

// Client calls a running control API.
type Client struct {
	base string
	http ports.HTTPClient
}

// NewClient creates a client for the API at addr (host:port or URL).
func NewClient(addr string, httpClient ports.HTTPClient) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &Client{base: strings.TrimRight(addr, "/"), http: httpClient}
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Code int
	Body ErrorResponse
}

func (e *APIError) Error() string {
	if e.Body.StatusCode != 0 {
		return fmt.Sprintf("api: %d: %s (remote status %d)", e.Code, e.Body.Error, e.Body.StatusCode)
	}
	return fmt.Sprintf("api: %d: %s", e.Code, e.Body.Error)
}

// Status calls GET /v1/status.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var out StatusResponse
	err := c.do(ctx, http.MethodGet, "/v1/status", nil, &out)
	return out, err
}

// Pending calls GET /v1/pending.
func (c *Client) Pending(ctx context.Context) ([]PendingItem, error) {
	var out []PendingItem
	err := c.do(ctx, http.MethodGet, "/v1/pending", nil, &out)
	return out, err
}

// Submit calls POST /v1/actions.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error) {
	var out SubmitResponse
	err := c.do(ctx, http.MethodPost, "/v1/actions", req, &out)
	return out, err
}

// Sync calls POST /v1/sync.
func (c *Client) Sync(ctx context.Context) (SyncResponse, error) {
	var out SyncResponse
	err := c.do(ctx, http.MethodPost, "/v1/sync", nil, &out)
	return out, err
}

// Clear calls DELETE /v1/pending.
func (c *Client) Clear(ctx context.Context) (ClearResponse, error) {
	var out ClearResponse
	err := c.do(ctx, http.MethodDelete, "/v1/pending", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("api: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Code: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr.Body); err != nil || apiErr.Body.Error == "" {
			apiErr.Body.Error = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}
