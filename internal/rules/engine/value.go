// Package engine evaluates parsed rules against flattened model objects:
// property resolution across schema shapes, predicate evaluation with
// coercion and tolerance, filter-then-check processing, and report
// aggregation.
package engine

import (
	"strconv"
	"strings"
)

// Kind discriminates a resolved property value.
type Kind int

const (
	KindAbsent Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "absent"
	}
}

// Value is the outcome of resolving one property against one object: a
// typed scalar plus the store path that matched, or an absent marker.
// Never partially resolved.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	Path string
}

// Absent reports whether resolution found nothing.
func (v Value) Absent() bool { return v.Kind == KindAbsent }

// Number returns the numeric form of the value. Non-numeric kinds fail
// rather than coerce: numeric predicates treat that as predicate failure.
func (v Value) Number() (float64, bool) {
	if v.Kind == KindNumber {
		return v.Num, true
	}
	return 0, false
}

// StringForm renders the scalar the way rule authors write reference
// values: numbers without trailing zeros, booleans as true/false.
func (v Value) StringForm() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// boolForm interprets the value as a boolean the way authoring tools
// write them: real booleans, yes/no and true/false strings, 1/0.
func (v Value) boolForm() (bool, bool) {
	switch v.Kind {
	case KindBool:
		return v.Bool, true
	case KindString:
		switch strings.ToLower(strings.TrimSpace(v.Str)) {
		case "yes", "true", "1":
			return true, true
		case "no", "false", "0":
			return false, true
		}
	case KindNumber:
		if v.Num == 1 {
			return true, true
		}
		if v.Num == 0 {
			return false, true
		}
	}
	return false, false
}

// boolStrict converts only unambiguous boolean spellings, used by the
// equality predicate so that "Yes" compares equal to true but arbitrary
// numbers do not.
func (v Value) boolStrict() (bool, bool) {
	switch v.Kind {
	case KindBool:
		return v.Bool, true
	case KindString:
		switch strings.ToLower(strings.TrimSpace(v.Str)) {
		case "yes", "true":
			return true, true
		case "no", "false":
			return false, true
		}
	}
	return false, false
}
