package main

import (
	"testing"

	"github.com/specklesystems/speckle-automate-checker/internal/rules"
	"github.com/specklesystems/speckle-automate-checker/internal/rules/engine"
)

func TestParseFailOn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         string
		wantSev     rules.Severity
		wantEnabled bool
		wantErr     bool
	}{
		{name: "empty disables", raw: "", wantEnabled: false},
		{name: "off disables", raw: "off", wantEnabled: false},
		{name: "none disables", raw: "none", wantEnabled: false},
		{name: "error", raw: "error", wantSev: rules.SeverityError, wantEnabled: true},
		{name: "warning", raw: "warning", wantSev: rules.SeverityWarning, wantEnabled: true},
		{name: "warn alias", raw: "warn", wantSev: rules.SeverityWarning, wantEnabled: true},
		{name: "info uppercase", raw: "INFO", wantSev: rules.SeverityInfo, wantEnabled: true},
		{name: "unknown", raw: "fatal", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sev, enabled, err := parseFailOn(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseFailOn(%q) expected error", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFailOn(%q) error = %v", tc.raw, err)
			}
			if enabled != tc.wantEnabled {
				t.Fatalf("parseFailOn(%q) enabled = %v, want %v", tc.raw, enabled, tc.wantEnabled)
			}
			if enabled && sev != tc.wantSev {
				t.Fatalf("parseFailOn(%q) severity = %q, want %q", tc.raw, sev, tc.wantSev)
			}
		})
	}
}

func TestIssuesAtOrAbove(t *testing.T) {
	t.Parallel()

	summary := engine.Summary{Total: 6, Info: 1, Warning: 2, Error: 3}

	if got := issuesAtOrAbove(summary, rules.SeverityInfo); got != 6 {
		t.Fatalf("info threshold = %d, want 6", got)
	}
	if got := issuesAtOrAbove(summary, rules.SeverityWarning); got != 5 {
		t.Fatalf("warning threshold = %d, want 5", got)
	}
	if got := issuesAtOrAbove(summary, rules.SeverityError); got != 3 {
		t.Fatalf("error threshold = %d, want 3", got)
	}
	if got := issuesAtOrAbove(summary, rules.Severity("bogus")); got != 0 {
		t.Fatalf("unknown severity threshold = %d, want 0", got)
	}
}
