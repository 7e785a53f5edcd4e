package rules

import "strings"

// Canonical predicate names. This vocabulary is a stable public surface:
// extending it must not change the meaning of existing rule tables.
const (
	PredExists       = "exists"
	PredEqual        = "equal to"
	PredNotEqual     = "not equal to"
	PredGreater      = "greater than"
	PredLess         = "less than"
	PredInRange      = "in range"
	PredInList       = "in list"
	PredContains     = "contains"
	PredNotContains  = "does not contain"
	PredIsTrue       = "is true"
	PredIsFalse      = "is false"
	PredIsLike       = "is like"
	PredIdentical    = "identical"
	PredNotIdentical = "not identical"
)

var canonicalPredicates = map[string]bool{
	PredExists:       true,
	PredEqual:        true,
	PredNotEqual:     true,
	PredGreater:      true,
	PredLess:         true,
	PredInRange:      true,
	PredInList:       true,
	PredContains:     true,
	PredNotContains:  true,
	PredIsTrue:       true,
	PredIsFalse:      true,
	PredIsLike:       true,
	PredIdentical:    true,
	PredNotIdentical: true,
}

// predicateAliases maps legacy spellings found in older rule tables to
// their canonical names.
var predicateAliases = map[string]string{
	"equals":    PredEqual,
	"matches":   PredEqual,
	"not equal": PredNotEqual,
	"true":      PredIsTrue,
	"false":     PredIsFalse,
}

// CanonicalPredicate normalizes a predicate cell to its canonical name.
// The second return is false when the predicate is not in the vocabulary.
func CanonicalPredicate(raw string) (string, bool) {
	p := strings.ToLower(strings.TrimSpace(raw))
	if canonicalPredicates[p] {
		return p, true
	}
	if canon, ok := predicateAliases[p]; ok {
		return canon, true
	}
	return "", false
}
