package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bft-labs/actionq/pkg/actionq"
)

type handlers struct {
	svc Service
	now func() time.Time
}

func (h *handlers) status(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{
		State:   h.svc.Status().String(),
		Offline: h.svc.IsOffline(),
		Pending: len(h.svc.Pending()),
	})
}

func (h *handlers) pending(c echo.Context) error {
	now := h.now()
	actions := h.svc.Pending()
	items := make([]PendingItem, len(actions))
	for i, a := range actions {
		items[i] = PendingItem{
			ID:        a.ID,
			Kind:      a.Kind.String(),
			Payload:   a.Payload,
			CreatedAt: a.CreatedAt,
			QueuedFor: a.QueuedFor(now),
		}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *handlers) submit(c echo.Context) error {
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	res, err := h.svc.Submit(c.Request().Context(), actionq.Kind(req.Kind), req.Payload)
	if err != nil {
		return err
	}
	if res.Queued {
		return c.JSON(http.StatusAccepted, SubmitResponse{ID: res.Action.ID, Queued: true, Pending: res.Pending})
	}
	return c.JSON(http.StatusOK, SubmitResponse{ID: res.Action.ID})
}

func (h *handlers) sync(c echo.Context) error {
	res := h.svc.Retry(c.Request().Context())
	out := SyncResponse{
		Synced:    res.Synced,
		Remaining: res.Remaining,
		Skipped:   res.Skipped,
		Message:   res.Message(),
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) clear(c echo.Context) error {
	return c.JSON(http.StatusOK, ClearResponse{Cleared: h.svc.Clear(c.Request().Context())})
}
