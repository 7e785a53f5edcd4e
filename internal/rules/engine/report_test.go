package engine

import (
	"testing"

	"github.com/specklesystems/speckle-automate-checker/internal/rules"
)

func sampleIssues() []Issue {
	return []Issue{
		{ObjectID: "wall-1", RuleNumber: 1, Category: "Walls", Message: "too thin", Severity: rules.SeverityError},
		{ObjectID: "wall-1", RuleNumber: 3, Category: "Walls", Message: "unnamed", Severity: rules.SeverityInfo},
		{ObjectID: "door-1", RuleNumber: 2, Category: "Doors", Message: "too low", Severity: rules.SeverityWarning},
		{ObjectID: "wall-2", RuleNumber: 1, Category: "Walls", Message: "too thin", Severity: rules.SeverityError},
	}
}

func TestAggregateGroupsByObject(t *testing.T) {
	report := Aggregate(sampleIssues(), rules.SeverityInfo)

	if got := report.Summary; got.Info != 1 || got.Warning != 1 || got.Error != 2 || got.Total != 4 {
		t.Fatalf("summary = %+v, want 1 info, 1 warning, 2 errors", got)
	}
	wantObjects := []string{"wall-1", "door-1", "wall-2"}
	if len(report.Objects) != len(wantObjects) {
		t.Fatalf("objects = %v, want %v", report.Objects, wantObjects)
	}
	for i, id := range wantObjects {
		if report.Objects[i] != id {
			t.Fatalf("objects = %v, want first-seen order %v", report.Objects, wantObjects)
		}
	}
	if got := report.Issues["wall-1"]; len(got) != 2 || got[0].RuleNumber != 1 || got[1].RuleNumber != 3 {
		t.Fatalf("wall-1 issues = %+v, want rule order preserved", got)
	}
}

func TestAggregateAppliesThreshold(t *testing.T) {
	report := Aggregate(sampleIssues(), rules.SeverityWarning)

	if report.Summary.Info != 0 {
		t.Fatalf("summary = %+v, info must be filtered out", report.Summary)
	}
	if report.Summary.Total != 3 {
		t.Fatalf("summary = %+v, want 3 remaining issues", report.Summary)
	}
	if got := report.Issues["wall-1"]; len(got) != 1 || got[0].Severity != rules.SeverityError {
		t.Fatalf("wall-1 issues = %+v, want only the error", got)
	}
}

func TestAggregateThresholdIsMonotonic(t *testing.T) {
	issues := sampleIssues()
	prev := len(issues) + 1
	for _, min := range []rules.Severity{rules.SeverityInfo, rules.SeverityWarning, rules.SeverityError} {
		total := Aggregate(issues, min).Summary.Total
		if total > prev {
			t.Fatalf("raising the threshold to %s grew the report from %d to %d issues", min, prev, total)
		}
		prev = total
	}
}

func TestAggregateEmptyRun(t *testing.T) {
	report := Aggregate(nil, rules.SeverityInfo)
	if report.Issues != nil || len(report.Objects) != 0 || report.Summary.Total != 0 {
		t.Fatalf("report = %+v, want empty", report)
	}
}
