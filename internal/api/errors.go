package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bft-labs/actionq/internal/domain"
	"github.com/bft-labs/actionq/internal/ports"
)

// newHTTPErrorHandler maps domain errors to status codes and renders every
// error as an ErrorResponse.
func newHTTPErrorHandler(logger ports.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			body = ErrorResponse{Error: http.StatusText(http.StatusInternalServerError)}
			he   *echo.HTTPError
			ee   *domain.ExecError
		)

		switch {
		case errors.As(err, &he):
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				body.Error = msg
			} else {
				body.Error = http.StatusText(code)
			}
		case errors.Is(err, domain.ErrUnknownKind), errors.Is(err, domain.ErrInvalidPayload):
			code = http.StatusBadRequest
			body.Error = err.Error()
		case errors.As(err, &ee):
			code = http.StatusBadGateway
			body.Error = err.Error()
			body.StatusCode = ee.StatusCode
		case errors.Is(err, domain.ErrNotRunning):
			code = http.StatusConflict
			body.Error = err.Error()
		default:
			logger.Error("api request failed",
				ports.String("uri", c.Request().RequestURI),
				ports.Err(err),
			)
		}

		if c.Response().Committed {
			return
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			logger.Warn("write error response failed", ports.Err(err))
		}
	}
}
