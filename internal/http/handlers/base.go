// Package handlers contains the JSON API handler logic.
package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/specklesystems/speckle-automate-checker/internal/config"
	"github.com/specklesystems/speckle-automate-checker/internal/rules"
	"github.com/specklesystems/speckle-automate-checker/internal/runner"
	"github.com/specklesystems/speckle-automate-checker/internal/store"
)

const (
	// ContextKeyRequestID stores the request id (X-Request-ID) for logging and client error references.
	ContextKeyRequestID = "request_id"

	// InternalErrorCode is a stable error code safe to return to clients.
	InternalErrorCode = "INTERNAL_ERROR"
)

// ValidationRunner triggers validation passes and rule table loads.
type ValidationRunner interface {
	Run(context.Context) (*runner.Result, error)
	LoadRules(context.Context) (*rules.Set, error)
}

// Handlers groups all HTTP handlers and shared dependencies. Store is nil
// when persistence is not configured; history endpoints answer 503 then.
type Handlers struct {
	Cfg    config.Config
	Store  *store.Store
	Runner ValidationRunner
}

type apiError struct {
	Error string `json:"error"`
}

func (h *Handlers) storeUnavailable(c *echo.Context) error {
	return c.JSON(http.StatusServiceUnavailable, apiError{Error: "run persistence is not configured"})
}

// HandleHealthz returns a simple health check response.
func (h *Handlers) HandleHealthz(c *echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
