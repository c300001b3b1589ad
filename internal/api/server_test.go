package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/actionq/internal/domain"
	"github.com/bft-labs/actionq/pkg/actionq"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeService is an in-memory Service.
type fakeService struct {
	offline   bool
	pending   []actionq.Action
	submitErr error
	retry     actionq.SyncResult
	submitted []actionq.Kind
}

func (f *fakeService) Status() actionq.State     { return actionq.StateRunning }
func (f *fakeService) IsOffline() bool           { return f.offline }
func (f *fakeService) Pending() []actionq.Action { return f.pending }

func (f *fakeService) Submit(ctx context.Context, kind actionq.Kind, payload json.RawMessage) (actionq.SubmitResult, error) {
	if err := kind.Validate(payload); err != nil {
		return actionq.SubmitResult{}, err
	}
	if f.submitErr != nil {
		return actionq.SubmitResult{}, f.submitErr
	}
	a, _ := domain.NewAction(kind, payload, testNow)
	f.submitted = append(f.submitted, kind)
	if f.offline {
		f.pending = append(f.pending, a)
		return actionq.SubmitResult{Action: a, Queued: true, Pending: len(f.pending)}, nil
	}
	return actionq.SubmitResult{Action: a}, nil
}

func (f *fakeService) Retry(ctx context.Context) actionq.SyncResult { return f.retry }

func (f *fakeService) Clear(ctx context.Context) int {
	n := len(f.pending)
	f.pending = nil
	return n
}

func newTestServer(svc Service) *Server {
	return NewServer(Options{Service: svc, DisableReqLogs: true, Now: func() time.Time { return testNow }})
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestStatus(t *testing.T) {
	svc := &fakeService{offline: true}
	svc.pending = []actionq.Action{{ID: "a"}, {ID: "b"}}

	rec := doRequest(t, newTestServer(svc), http.MethodGet, "/v1/status/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusResponse{State: "Running", Offline: true, Pending: 2}, decode[StatusResponse](t, rec))
}

func TestPending(t *testing.T) {
	svc := &fakeService{pending: []actionq.Action{{
		ID:        "a1",
		Kind:      actionq.KindRegisterCourse,
		Payload:   json.RawMessage(`{"courseId":"CS101"}`),
		CreatedAt: testNow.Add(-3 * time.Minute),
	}}}

	rec := doRequest(t, newTestServer(svc), http.MethodGet, "/v1/pending", "")

	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]PendingItem](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "a1", items[0].ID)
	assert.Equal(t, "register_course", items[0].Kind)
	assert.Equal(t, svc.pending[0].QueuedFor(testNow), items[0].QueuedFor)
	assert.JSONEq(t, `{"courseId":"CS101"}`, string(items[0].Payload))
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name     string
		svc      *fakeService
		body     string
		wantCode int
	}{
		{"queued while offline", &fakeService{offline: true}, `{"kind":"register_course","payload":{"courseId":"A"}}`, http.StatusAccepted},
		{"executed while online", &fakeService{}, `{"kind":"drop_course","payload":{"courseId":"A"}}`, http.StatusOK},
		{"unknown kind", &fakeService{}, `{"kind":"teleport","payload":{}}`, http.StatusBadRequest},
		{"missing field", &fakeService{}, `{"kind":"submit_assignment","payload":{"courseId":"A"}}`, http.StatusBadRequest},
		{"malformed body", &fakeService{}, `{"kind":`, http.StatusBadRequest},
		{
			"remote failure",
			&fakeService{submitErr: &domain.ExecError{ActionID: "x", Kind: domain.KindRegisterCourse, StatusCode: 409, Err: errors.New("full")}},
			`{"kind":"register_course","payload":{"courseId":"A"}}`,
			http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, newTestServer(tt.svc), http.MethodPost, "/v1/actions", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			switch tt.wantCode {
			case http.StatusAccepted:
				res := decode[SubmitResponse](t, rec)
				assert.True(t, res.Queued)
				assert.Equal(t, 1, res.Pending)
			case http.StatusOK:
				assert.False(t, decode[SubmitResponse](t, rec).Queued)
			case http.StatusBadGateway:
				assert.Equal(t, 409, decode[ErrorResponse](t, rec).StatusCode)
			default:
				assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
			}
		})
	}
}

func TestSync(t *testing.T) {
	svc := &fakeService{retry: actionq.SyncResult{Synced: 1, Remaining: 2, Err: errors.New("boom")}}

	rec := doRequest(t, newTestServer(svc), http.MethodPost, "/v1/sync", "")

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[SyncResponse](t, rec)
	assert.Equal(t, 1, res.Synced)
	assert.Equal(t, 2, res.Remaining)
	assert.Equal(t, "2 items failed to sync, will retry", res.Message)
	assert.Equal(t, "boom", res.Error)
}

func TestClear(t *testing.T) {
	svc := &fakeService{pending: []actionq.Action{{ID: "a"}}}

	rec := doRequest(t, newTestServer(svc), http.MethodDelete, "/v1/pending", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[ClearResponse](t, rec).Cleared)
	assert.Empty(t, svc.pending)
}

func TestNotFound(t *testing.T) {
	rec := doRequest(t, newTestServer(&fakeService{}), http.MethodGet, "/v1/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
}

func TestClient_AgainstServer(t *testing.T) {
	svc := &fakeService{offline: true}
	hs := httptest.NewServer(newTestServer(svc))
	defer hs.Close()

	ctx := context.Background()
	c := NewClient(strings.TrimPrefix(hs.URL, "http://"), hs.Client())

	sub, err := c.Submit(ctx, SubmitRequest{Kind: "register_course", Payload: json.RawMessage(`{"courseId":"A"}`)})
	require.NoError(t, err)
	assert.True(t, sub.Queued)

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Pending)

	items, err := c.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, sub.ID, items[0].ID)

	_, err = c.Submit(ctx, SubmitRequest{Kind: "teleport", Payload: json.RawMessage(`{}`)})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Code)

	cl, err := c.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cl.Cleared)

	_, err = c.Sync(ctx)
	require.NoError(t, err)
}
