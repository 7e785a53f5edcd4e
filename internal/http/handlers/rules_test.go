package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/specklesystems/speckle-automate-checker/internal/rules"
)

func TestHandleRulesReturnsParsedRules(t *testing.T) {
	rows := []rules.Row{
		{Line: 2, RuleNumber: "1", Logic: "WHERE", Property: "category", Predicate: "equal to", Value: "Walls"},
		{Line: 3, Logic: "CHECK", Property: "height", Predicate: "greater than", Value: "100", Message: "Too short", Severity: "ERROR"},
		{Line: 4, RuleNumber: "2", Logic: "MAYBE", Property: "width", Predicate: "exists"},
	}
	set := rules.Parse(rows, rules.SeverityError)
	h := &Handlers{Runner: &fakeRunner{set: set}}

	c, rec := newTestContext(http.MethodGet, "/api/rules")
	if err := h.HandleRules(c); err != nil {
		t.Fatalf("HandleRules() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var payload struct {
		Rules []struct {
			Number     int    `json:"number"`
			Message    string `json:"message"`
			Severity   string `json:"severity"`
			Conditions []struct {
				Logic     string `json:"logic"`
				Predicate string `json:"predicate"`
			} `json:"conditions"`
		} `json:"rules"`
		Diagnostics []rules.Diagnostic `json:"diagnostics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	if len(payload.Rules) != 1 {
		t.Fatalf("rules = %+v, want exactly one", payload.Rules)
	}
	rule := payload.Rules[0]
	if rule.Number != 1 || rule.Message != "Too short" || rule.Severity != "ERROR" {
		t.Fatalf("rule = %+v", rule)
	}
	if len(rule.Conditions) != 2 || rule.Conditions[1].Logic != "CHECK" {
		t.Fatalf("conditions = %+v", rule.Conditions)
	}
	if len(payload.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %+v, want the bad logic row reported", payload.Diagnostics)
	}
}

func TestHandleRulesUpstreamFailure(t *testing.T) {
	h := &Handlers{Runner: &fakeRunner{err: errors.New("fetch rules: unreachable")}}

	c, rec := newTestContext(http.MethodGet, "/api/rules")
	if err := h.HandleRules(c); err != nil {
		t.Fatalf("HandleRules() error = %v", err)
	}
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
}
