package engine

import "github.com/specklesystems/speckle-automate-checker/internal/rules"

// Summary counts reported issues by severity.
type Summary struct {
	Info    int `json:"info"`
	Warning int `json:"warning"`
	Error   int `json:"error"`
	Total   int `json:"total"`
}

// Report is the aggregated outcome of one validation run. Issues are
// grouped per object in rule order; Objects preserves first-seen order
// for consumers that need it, since the map does not.
type Report struct {
	ObjectCount  int                `json:"object_count"`
	RuleCount    int                `json:"rule_count"`
	MinSeverity  rules.Severity     `json:"min_severity"`
	Objects      []string           `json:"objects,omitempty"`
	Issues       map[string][]Issue `json:"issues,omitempty"`
	Summary      Summary            `json:"summary"`
	SkippedRules []int              `json:"skipped_rules,omitempty"`
	Diagnostics  []rules.Diagnostic `json:"diagnostics,omitempty"`
}

// Aggregate filters issues below the minimum severity and groups the
// rest by object. An unknown minimum reports everything. Input order is
// preserved within each object, so two runs over the same evaluation
// output produce the same report.
func Aggregate(issues []Issue, minSeverity rules.Severity) *Report {
	report := &Report{
		MinSeverity: minSeverity,
		Issues:      map[string][]Issue{},
	}
	threshold := minSeverity.Rank()
	for _, issue := range issues {
		if issue.Severity.Rank() < threshold {
			continue
		}
		if _, seen := report.Issues[issue.ObjectID]; !seen {
			report.Objects = append(report.Objects, issue.ObjectID)
		}
		report.Issues[issue.ObjectID] = append(report.Issues[issue.ObjectID], issue)
		switch issue.Severity {
		case rules.SeverityInfo:
			report.Summary.Info++
		case rules.SeverityWarning:
			report.Summary.Warning++
		case rules.SeverityError:
			report.Summary.Error++
		}
		report.Summary.Total++
	}
	if len(report.Issues) == 0 {
		report.Issues = nil
	}
	return report
}
