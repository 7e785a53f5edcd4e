package engine

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/specklesystems/speckle-automate-checker/internal/rules"
)

// equalityTolerance absorbs unit-conversion noise in authored thresholds:
// numeric equality is |a-b| <= 1e-6, never ==.
const equalityTolerance = 1e-6

// Eval applies one predicate from the rule vocabulary to a resolved
// value. The reference operand arrives as the raw cell text and is parsed
// here per predicate. Coercion failures are predicate failures, never
// errors: a malformed object must not abort a run.
func Eval(v Value, predicate, reference string) bool {
	switch predicate {
	case rules.PredExists:
		return !v.Absent()
	case rules.PredEqual:
		return equalTo(v, reference)
	case rules.PredNotEqual:
		return !equalTo(v, reference)
	case rules.PredGreater:
		return compareNumeric(v, reference, func(a, b float64) bool { return a > b })
	case rules.PredLess:
		return compareNumeric(v, reference, func(a, b float64) bool { return a < b })
	case rules.PredInRange:
		return inRange(v, reference)
	case rules.PredInList:
		return inList(v, reference)
	case rules.PredContains:
		return contains(v, reference)
	case rules.PredNotContains:
		return !contains(v, reference)
	case rules.PredIsTrue:
		b, ok := v.boolForm()
		return ok && b
	case rules.PredIsFalse:
		b, ok := v.boolForm()
		return ok && !b
	case rules.PredIsLike:
		return isLike(v, reference)
	case rules.PredIdentical:
		return identical(v, reference)
	case rules.PredNotIdentical:
		return !identical(v, reference)
	default:
		return false
	}
}

func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func parseBoolRef(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	}
	return false, false
}

// equalTo compares loosely: booleans when both sides read as booleans,
// numbers within tolerance when both sides read as numbers, and exact
// case-sensitive strings otherwise. Absent never equals anything.
func equalTo(v Value, reference string) bool {
	if v.Absent() {
		return false
	}
	if vb, ok := v.boolStrict(); ok {
		if rb, ok := parseBoolRef(reference); ok {
			return vb == rb
		}
	}
	if vn, ok := v.Number(); ok {
		if rn, ok := parseNumber(reference); ok {
			return math.Abs(vn-rn) <= equalityTolerance
		}
	}
	return v.StringForm() == reference
}

// identical compares strictly: same type, exact value, no tolerance.
func identical(v Value, reference string) bool {
	switch v.Kind {
	case KindNumber:
		rn, ok := parseNumber(reference)
		return ok && v.Num == rn
	case KindBool:
		rb, ok := parseBoolRef(reference)
		return ok && v.Bool == rb
	case KindString:
		return v.Str == reference
	default:
		return false
	}
}

func compareNumeric(v Value, reference string, cmp func(a, b float64) bool) bool {
	vn, ok := v.Number()
	if !ok {
		return false
	}
	rn, ok := parseNumber(reference)
	if !ok {
		return false
	}
	return cmp(vn, rn)
}

// inRange expects "low,high" and tests inclusively at both ends.
func inRange(v Value, reference string) bool {
	vn, ok := v.Number()
	if !ok {
		return false
	}
	parts := strings.Split(reference, ",")
	if len(parts) != 2 {
		return false
	}
	low, okLow := parseNumber(parts[0])
	high, okHigh := parseNumber(parts[1])
	if !okLow || !okHigh {
		return false
	}
	return low <= vn && vn <= high
}

// inList splits the reference on commas and matches any entry
// fold-insensitively, so "w2" is found in "W1, W2, W3".
func inList(v Value, reference string) bool {
	if v.Absent() {
		return false
	}
	form := v.StringForm()
	for _, entry := range strings.Split(reference, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.EqualFold(entry, form) {
			return true
		}
	}
	return false
}

func contains(v Value, reference string) bool {
	if v.Absent() {
		return false
	}
	return strings.Contains(strings.ToLower(v.StringForm()), strings.ToLower(strings.TrimSpace(reference)))
}

// isLike anchors the authored pattern to the whole string: "W\d+" matches
// "W12" but not "XW12Y". Invalid patterns match nothing.
func isLike(v Value, reference string) bool {
	if v.Absent() {
		return false
	}
	re, err := regexp.Compile("^(?:" + reference + ")$")
	if err != nil {
		return false
	}
	return re.MatchString(v.StringForm())
}
