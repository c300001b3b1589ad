// Package api serves the local control API used by the CLI and by local
// front ends to submit actions and inspect the pending queue.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/bft-labs/actionq/internal/ports"
	"github.com/bft-labs/actionq/pkg/actionq"
	"github.com/bft-labs/actionq/pkg/log"
)

// DefaultAddress is the loopback address the API listens on.
const DefaultAddress = "127.0.0.1:7420"

// Service is the client surface the API exposes. *actionq.Client satisfies it.
type Service interface {
	Status() actionq.State
	IsOffline() bool
	Pending() []actionq.Action
	Submit(ctx context.Context, kind actionq.Kind, payload json.RawMessage) (actionq.SubmitResult, error)
	Retry(ctx context.Context) actionq.SyncResult
	Clear(ctx context.Context) int
}

var _ Service = (*actionq.Client)(nil)

// Options configures a Server.
type Options struct {
	Address        string
	DisableReqLogs bool
	Service        Service
	Logger         ports.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server is the control API.
type Server struct {
	opts Options
	app  *echo.Echo
}

// NewServer creates a server; call Start to listen.
func NewServer(opts Options) *Server {
	if opts.Address == "" {
		opts.Address = DefaultAddress
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	s := &Server{opts: opts, app: echo.New()}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.HidePort = true

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogMethod:  true,
			LogURI:     true,
			LogStatus:  true,
			LogLatency: true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				s.opts.Logger.Debug("api request",
					ports.String("method", v.Method),
					ports.String("uri", v.URI),
					ports.Int("status", v.Status),
					ports.Duration("latency", v.Latency),
				)
				return nil
			},
		}))
	}
	s.app.Use(middleware.Recover())

	s.app.HTTPErrorHandler = newHTTPErrorHandler(s.opts.Logger)

	v1 := s.app.Group("/v1")
	h := &handlers{svc: s.opts.Service, now: s.opts.Now}
	v1.GET("/status", h.status)
	v1.GET("/pending", h.pending)
	v1.DELETE("/pending", h.clear)
	v1.POST("/actions", h.submit)
	v1.POST("/sync", h.sync)
}

// Start listens until Stop is called. It returns nil after a clean Stop.
func (s *Server) Start() error {
	s.opts.Logger.Info("control api listening", ports.String("address", s.opts.Address))
	if err := s.app.Start(s.opts.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// ServeHTTP lets tests drive the router without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}
