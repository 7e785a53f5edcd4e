// Package rules defines the tabular rule language: rows, conditions,
// parsed rules, and the predicate vocabulary shared with the evaluator.
package rules

import "strings"

// Logic tags a condition's role inside a rule. WHERE and AND form a
// conjunctive filter chain; CHECK is the pass/fail gate applied to the
// objects that survive filtering.
type Logic string

const (
	LogicWhere Logic = "WHERE"
	LogicAnd   Logic = "AND"
	LogicCheck Logic = "CHECK"
)

// ParseLogic matches a logic tag case-insensitively.
func ParseLogic(raw string) (Logic, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "WHERE":
		return LogicWhere, true
	case "AND":
		return LogicAnd, true
	case "CHECK":
		return LogicCheck, true
	default:
		return "", false
	}
}

// Condition is one row of a rule: a property to resolve, a predicate from
// the closed vocabulary, and a raw reference operand. The operand stays a
// string here; each predicate parses it lazily at evaluation time.
type Condition struct {
	Logic     Logic
	Property  string
	Predicate string
	Value     string
}

// Rule is an immutable parsed rule group.
type Rule struct {
	Number     int
	Conditions []Condition
	Message    string
	Severity   Severity
}

// Split separates a rule's conditions into the filter chain and the final
// check. An explicit CHECK wins; otherwise the last AND is the check and
// everything before it filters. A rule with only WHERE conditions uses its
// first condition as the check, so matching objects always pass.
func (r *Rule) Split() (filters []Condition, check Condition) {
	for i, c := range r.Conditions {
		if c.Logic == LogicCheck {
			filters = append(filters, r.Conditions[:i]...)
			filters = append(filters, r.Conditions[i+1:]...)
			return filters, c
		}
	}

	lastAnd := -1
	for i, c := range r.Conditions {
		if c.Logic == LogicAnd {
			lastAnd = i
		}
	}
	if lastAnd >= 0 {
		return r.Conditions[:lastAnd], r.Conditions[lastAnd]
	}

	return r.Conditions, r.Conditions[0]
}

// Row is one line of the rule table in its fixed column order. Line is the
// 1-based position in the source text, kept for diagnostics.
type Row struct {
	Line       int
	RuleNumber string
	Logic      string
	Property   string
	Predicate  string
	Value      string
	Message    string
	Severity   string
}

// Blank reports whether every cell of the row is empty.
func (r Row) Blank() bool {
	return strings.TrimSpace(r.RuleNumber) == "" &&
		strings.TrimSpace(r.Logic) == "" &&
		strings.TrimSpace(r.Property) == "" &&
		strings.TrimSpace(r.Predicate) == "" &&
		strings.TrimSpace(r.Value) == "" &&
		strings.TrimSpace(r.Message) == "" &&
		strings.TrimSpace(r.Severity) == ""
}

// Diagnostic records a parse-level problem attributed to a row or rule
// group. Diagnostics never abort a run; the offending row or group is
// dropped and the remaining rules still execute.
type Diagnostic struct {
	Line       int    `json:"line,omitempty"`
	RuleNumber int    `json:"rule_number,omitempty"`
	Message    string `json:"message"`
}

// Set is the parsed rule table: rules in ascending number order plus the
// diagnostics collected while parsing.
type Set struct {
	Rules       []*Rule
	Diagnostics []Diagnostic
}

// Rule returns the rule with the given number, or nil.
func (s *Set) Rule(number int) *Rule {
	for _, r := range s.Rules {
		if r.Number == number {
			return r
		}
	}
	return nil
}
