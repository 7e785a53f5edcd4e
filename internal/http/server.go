// Package httpapp wires the JSON API around the validation runner and
// the optional run store.
package httpapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/specklesystems/speckle-automate-checker/internal/config"
	"github.com/specklesystems/speckle-automate-checker/internal/http/handlers"
	"github.com/specklesystems/speckle-automate-checker/internal/store"
)

// EchoServer is the HTTP server wrapper.
type EchoServer struct {
	h   *handlers.Handlers
	e   *echo.Echo
	srv *http.Server
}

// NewEchoServer creates a new HTTP server listening on cfg.HTTPAddr.
func NewEchoServer(cfg config.Config, st *store.Store, runner handlers.ValidationRunner) (*EchoServer, error) {
	h := &handlers.Handlers{Cfg: cfg, Store: st, Runner: runner}
	es := &EchoServer{h: h, e: echo.New()}
	es.e.HTTPErrorHandler = es.httpErrorHandler
	es.e.Use(es.requestID)
	es.registerRoutes()
	es.srv = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           es.e,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return es, nil
}

func (es *EchoServer) registerRoutes() {
	es.e.GET("/healthz", es.h.HandleHealthz)

	api := es.e.Group("/api")
	api.POST("/runs", es.h.HandleRunCreate)
	api.GET("/runs", es.h.HandleRunList)
	api.GET("/runs/:id", es.h.HandleRunShow)
	api.GET("/runs/:id/report", es.h.HandleRunReport)
	api.GET("/runs/:id/issues", es.h.HandleRunIssues)
	api.GET("/rules", es.h.HandleRules)
}

// requestID tags every request so error responses can reference a log line.
func (es *EchoServer) requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		id := c.Request().Header.Get(echo.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(handlers.ContextKeyRequestID, id)
		c.Response().Header().Set(echo.HeaderXRequestID, id)
		return next(c)
	}
}

// httpErrorHandler keeps error bodies generic: internal details go to the
// log, clients get a status line and a request reference.
func (es *EchoServer) httpErrorHandler(c *echo.Context, err error) {
	if r, _ := echo.UnwrapResponse(c.Response()); r != nil && r.Committed {
		return
	}

	status := httpStatusFromError(err)
	switch {
	case status == http.StatusNotFound:
		_ = c.String(http.StatusNotFound, "404 page not found")
	case status >= http.StatusInternalServerError:
		requestID, _ := c.Get(handlers.ContextKeyRequestID).(string)
		c.Logger().Error("http error",
			"request_id", requestID,
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
		msg := "Internal server error."
		if requestID != "" {
			msg = fmt.Sprintf("%s Reference: %s.", msg, requestID)
		}
		msg = fmt.Sprintf("%s Code: %s.", msg, handlers.InternalErrorCode)
		_ = c.String(status, msg)
	default:
		_ = c.String(status, http.StatusText(status))
	}
}

func httpStatusFromError(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	var sc echo.HTTPStatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

// Start serves on the configured address until Shutdown or listener failure.
func (es *EchoServer) Start() error {
	return es.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (es *EchoServer) Shutdown(ctx context.Context) error {
	return es.srv.Shutdown(ctx)
}
