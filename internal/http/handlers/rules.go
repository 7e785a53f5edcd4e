package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/specklesystems/speckle-automate-checker/internal/rules"
)

type conditionResponse struct {
	Logic     string `json:"logic"`
	Property  string `json:"property"`
	Predicate string `json:"predicate"`
	Value     string `json:"value,omitempty"`
}

type ruleResponse struct {
	Number     int                 `json:"number"`
	Conditions []conditionResponse `json:"conditions"`
	Message    string              `json:"message"`
	Severity   rules.Severity      `json:"severity"`
}

type rulesResponse struct {
	Rules       []ruleResponse     `json:"rules"`
	Diagnostics []rules.Diagnostic `json:"diagnostics"`
}

// HandleRules loads the current rule table and returns the parsed rules
// with their diagnostics, without running them.
func (h *Handlers) HandleRules(c *echo.Context) error {
	set, err := h.Runner.LoadRules(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, apiError{Error: err.Error()})
	}

	resp := rulesResponse{
		Rules:       make([]ruleResponse, 0, len(set.Rules)),
		Diagnostics: set.Diagnostics,
	}
	if resp.Diagnostics == nil {
		resp.Diagnostics = []rules.Diagnostic{}
	}
	for _, rule := range set.Rules {
		conditions := make([]conditionResponse, 0, len(rule.Conditions))
		for _, cond := range rule.Conditions {
			conditions = append(conditions, conditionResponse{
				Logic:     string(cond.Logic),
				Property:  cond.Property,
				Predicate: cond.Predicate,
				Value:     cond.Value,
			})
		}
		resp.Rules = append(resp.Rules, ruleResponse{
			Number:     rule.Number,
			Conditions: conditions,
			Message:    rule.Message,
			Severity:   rule.Severity,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
