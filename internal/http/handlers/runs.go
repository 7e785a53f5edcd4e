package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/specklesystems/speckle-automate-checker/internal/rules/engine"
	"github.com/specklesystems/speckle-automate-checker/internal/runner"
	"github.com/specklesystems/speckle-automate-checker/internal/store"
)

const defaultRunListLimit = 50

type runCreatedResponse struct {
	ID     string         `json:"id,omitempty"`
	Report *engine.Report `json:"report"`
}

// HandleRunCreate triggers a validation run and returns its report. A run
// already in flight answers 409 instead of queueing a second one.
func (h *Handlers) HandleRunCreate(c *echo.Context) error {
	result, err := h.Runner.Run(c.Request().Context())
	switch {
	case errors.Is(err, runner.ErrRunInProgress):
		return c.JSON(http.StatusConflict, apiError{Error: err.Error()})
	case err != nil:
		return c.JSON(http.StatusBadGateway, apiError{Error: err.Error()})
	}

	resp := runCreatedResponse{Report: result.Report}
	if result.RunID != uuid.Nil {
		resp.ID = result.RunID.String()
	}
	return c.JSON(http.StatusCreated, resp)
}

// HandleRunList returns persisted runs, newest first.
func (h *Handlers) HandleRunList(c *echo.Context) error {
	if h.Store == nil {
		return h.storeUnavailable(c)
	}

	limit := defaultRunListLimit
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, apiError{Error: "limit must be a positive integer"})
		}
		limit = n
	}

	runs, err := h.Store.ListRuns(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []store.Run{}
	}
	return c.JSON(http.StatusOK, map[string]any{"runs": runs})
}

// HandleRunShow returns one persisted run with its summary.
func (h *Handlers) HandleRunShow(c *echo.Context) error {
	if h.Store == nil {
		return h.storeUnavailable(c)
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiError{Error: "invalid run id"})
	}

	run, err := h.Store.GetRun(c.Request().Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, apiError{Error: "run not found"})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, run)
}

// HandleRunReport returns the full report document of one persisted run.
func (h *Handlers) HandleRunReport(c *echo.Context) error {
	if h.Store == nil {
		return h.storeUnavailable(c)
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiError{Error: "invalid run id"})
	}

	run, err := h.Store.GetRun(c.Request().Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, apiError{Error: "run not found"})
	}
	if err != nil {
		return err
	}
	if len(run.Report) == 0 {
		return c.JSON(http.StatusNotFound, apiError{Error: "run has no report"})
	}
	return c.JSONBlob(http.StatusOK, run.Report)
}

// HandleRunIssues returns a run's issues in recorded order.
func (h *Handlers) HandleRunIssues(c *echo.Context) error {
	if h.Store == nil {
		return h.storeUnavailable(c)
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiError{Error: "invalid run id"})
	}

	ctx := c.Request().Context()
	if _, err := h.Store.GetRun(ctx, id); errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, apiError{Error: "run not found"})
	} else if err != nil {
		return err
	}

	issues, err := h.Store.ListIssues(ctx, id)
	if err != nil {
		return err
	}
	if issues == nil {
		issues = []engine.Issue{}
	}
	return c.JSON(http.StatusOK, map[string]any{"issues": issues})
}
