package rules

import "strings"

// Severity ranks a finding. The order INFO < WARNING < ERROR drives the
// minimum-severity threshold applied at aggregation time.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Rank returns the ordinal used for threshold comparison. Unknown
// severities rank below INFO so they never pass a threshold.
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 0
	case SeverityWarning:
		return 1
	case SeverityError:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is one of the three known levels.
func (s Severity) Valid() bool {
	return s.Rank() >= 0
}

// ParseSeverity normalizes user-authored severity text. Matching is
// case-insensitive and accepts the WARN shorthand for WARNING.
func ParseSeverity(raw string) (Severity, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "INFO":
		return SeverityInfo, true
	case "WARNING", "WARN":
		return SeverityWarning, true
	case "ERROR":
		return SeverityError, true
	default:
		return "", false
	}
}
