package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/bft-labs/actionq/internal/domain"
	"github.com/bft-labs/actionq/internal/ports"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 512

// Route is the remote endpoint for one action kind. Path may contain
// {field} placeholders filled from the action payload.
type Route struct {
	Method string
	Path   string
}

// DefaultRoutes maps each known kind to its remote endpoint.
func DefaultRoutes() map[domain.Kind]Route {
	return map[domain.Kind]Route{
		domain.KindRegisterCourse:   {Method: http.MethodPost, Path: "/v1/courses/{courseId}/registrations"},
		domain.KindDropCourse:       {Method: http.MethodDelete, Path: "/v1/courses/{courseId}/registrations"},
		domain.KindSubmitAssignment: {Method: http.MethodPost, Path: "/v1/assignments/{assignmentId}/submissions"},
	}
}

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	ServiceURL string
	AuthKey    string
	Hostname   string

	// Routes defaults to DefaultRoutes.
	Routes map[domain.Kind]Route
}

// Executor implements ports.Executor against the remote HTTP service.
type Executor struct {
	client ports.HTTPClient
	cfg    ExecutorConfig
	logger ports.Logger
}

// NewExecutor creates an HTTP executor.
func NewExecutor(client ports.HTTPClient, cfg ExecutorConfig, logger ports.Logger) *Executor {
	if cfg.Routes == nil {
		cfg.Routes = DefaultRoutes()
	}
	cfg.ServiceURL = strings.TrimRight(cfg.ServiceURL, "/")
	return &Executor{client: client, cfg: cfg, logger: logger}
}

type requestBody struct {
	ID        string          `json:"id"`
	Kind      domain.Kind     `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Execute sends a to the service. Any non-2xx response is a failure.
func (e *Executor) Execute(ctx context.Context, a domain.Action) error {
	route, ok := e.cfg.Routes[a.Kind]
	if !ok {
		return &domain.ExecError{ActionID: a.ID, Kind: a.Kind, Err: domain.ErrUnknownKind}
	}
	path, err := expandPath(route.Path, a)
	if err != nil {
		return &domain.ExecError{ActionID: a.ID, Kind: a.Kind, Err: err}
	}

	body, err := json.Marshal(requestBody{
		ID:        a.ID,
		Kind:      a.Kind,
		Payload:   a.Payload,
		CreatedAt: a.CreatedAt,
	})
	if err != nil {
		return &domain.ExecError{ActionID: a.ID, Kind: a.Kind, Err: fmt.Errorf("marshal body: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, route.Method, e.cfg.ServiceURL+path, bytes.NewReader(body))
	if err != nil {
		return &domain.ExecError{ActionID: a.ID, Kind: a.Kind, Err: fmt.Errorf("create request: %w", err)}
	}

	if e.cfg.AuthKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.AuthKey)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", a.ID)
	req.Header.Set("X-Agent-Hostname", e.cfg.Hostname)
	req.Header.Set("X-Agent-OSArch", runtime.GOOS+"/"+runtime.GOARCH)

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", domain.ErrOffline, err)
		}
		return &domain.ExecError{ActionID: a.ID, Kind: a.Kind, Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.ExecError{
			ActionID:   a.ID,
			Kind:       a.Kind,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	e.logger.Debug("action delivered",
		ports.String("action_id", a.ID),
		ports.String("kind", a.Kind.String()),
		ports.Int("status", resp.StatusCode),
	)
	return nil
}

// expandPath replaces every {field} in path with the payload value.
func expandPath(path string, a domain.Action) (string, error) {
	var b strings.Builder
	for {
		start := strings.IndexByte(path, '{')
		if start < 0 {
			b.WriteString(path)
			return b.String(), nil
		}
		end := strings.IndexByte(path[start:], '}')
		if end < 0 {
			return "", fmt.Errorf("unterminated placeholder in %q", path)
		}
		name := path[start+1 : start+end]
		v, ok := a.Field(name)
		if !ok {
			return "", fmt.Errorf("%w: missing %s", domain.ErrInvalidPayload, name)
		}
		b.WriteString(path[:start])
		b.WriteString(url.PathEscape(v))
		path = path[start+end+1:]
	}
}
