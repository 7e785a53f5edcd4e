package engine

import (
	"testing"

	"github.com/specklesystems/speckle-automate-checker/internal/rules"
)

func num(n float64) Value { return Value{Kind: KindNumber, Num: n} }

func str(s string) Value { return Value{Kind: KindString, Str: s} }

func truth(b bool) Value { return Value{Kind: KindBool, Bool: b} }

func TestEvalPredicates(t *testing.T) {
	tests := []struct {
		name      string
		value     Value
		predicate string
		reference string
		want      bool
	}{
		{"exists present", str("x"), rules.PredExists, "", true},
		{"exists absent", Value{}, rules.PredExists, "", false},

		{"equal numbers", num(300), rules.PredEqual, "300", true},
		{"equal within tolerance", num(300.0000004), rules.PredEqual, "300", true},
		{"equal beyond tolerance", num(300.001), rules.PredEqual, "300", false},
		{"equal strings exact", str("Walls"), rules.PredEqual, "Walls", true},
		{"equal strings case mismatch", str("walls"), rules.PredEqual, "Walls", false},
		{"equal bool to yes", truth(true), rules.PredEqual, "yes", true},
		{"equal yes to true", str("Yes"), rules.PredEqual, "true", true},
		{"equal no to true", str("No"), rules.PredEqual, "true", false},
		{"equal absent", Value{}, rules.PredEqual, "anything", false},

		{"not equal absent", Value{}, rules.PredNotEqual, "anything", true},
		{"not equal mismatch", str("Doors"), rules.PredNotEqual, "Walls", true},

		{"greater than passes", num(250), rules.PredGreater, "200", true},
		{"greater than fails", num(150), rules.PredGreater, "200", false},
		{"greater than equal", num(200), rules.PredGreater, "200", false},
		{"greater than non-numeric value", str("thick"), rules.PredGreater, "200", false},
		{"greater than non-numeric reference", num(250), rules.PredGreater, "thin", false},
		{"less than passes", num(150), rules.PredLess, "200", true},
		{"less than absent", Value{}, rules.PredLess, "200", false},

		{"in range low boundary", num(2400), rules.PredInRange, "2400,4000", true},
		{"in range high boundary", num(4000), rules.PredInRange, "2400,4000", true},
		{"in range below", num(2399.999), rules.PredInRange, "2400,4000", false},
		{"in range above", num(4000.001), rules.PredInRange, "2400,4000", false},
		{"in range inside", num(3000), rules.PredInRange, "2400,4000", true},
		{"in range spaced bounds", num(3000), rules.PredInRange, " 2400 , 4000 ", true},
		{"in range malformed reference", num(3000), rules.PredInRange, "2400", false},
		{"in range non-numeric value", str("tall"), rules.PredInRange, "2400,4000", false},

		{"in list case-insensitive", str("w2"), rules.PredInList, "W1, W2, W3", true},
		{"in list miss", str("W4"), rules.PredInList, "W1, W2, W3", false},
		{"in list numeric form", num(300), rules.PredInList, "100, 300", true},
		{"in list absent", Value{}, rules.PredInList, "W1", false},

		{"contains substring", str("Fire Wall Type"), rules.PredContains, "wall", true},
		{"contains miss", str("Fire Wall Type"), rules.PredContains, "door", false},
		{"contains absent", Value{}, rules.PredContains, "wall", false},
		{"does not contain", str("Fire Wall Type"), rules.PredNotContains, "door", true},
		{"does not contain absent", Value{}, rules.PredNotContains, "door", true},

		{"is true bool", truth(true), rules.PredIsTrue, "", true},
		{"is true yes string", str("Yes"), rules.PredIsTrue, "", true},
		{"is true one", num(1), rules.PredIsTrue, "", true},
		{"is true arbitrary number", num(7), rules.PredIsTrue, "", false},
		{"is true arbitrary string", str("maybe"), rules.PredIsTrue, "", false},
		{"is true absent", Value{}, rules.PredIsTrue, "", false},
		{"is false bool", truth(false), rules.PredIsFalse, "", true},
		{"is false no string", str("No"), rules.PredIsFalse, "", true},
		{"is false zero", num(0), rules.PredIsFalse, "", true},
		{"is false absent", Value{}, rules.PredIsFalse, "", false},

		{"is like anchored match", str("W12"), rules.PredIsLike, `W\d+`, true},
		{"is like partial rejected", str("XW12Y"), rules.PredIsLike, `W\d+`, false},
		{"is like alternation", str("W2"), rules.PredIsLike, "W(1|2)", true},
		{"is like invalid pattern", str("W2"), rules.PredIsLike, "(", false},
		{"is like absent", Value{}, rules.PredIsLike, ".*", false},

		{"identical numbers", num(300), rules.PredIdentical, "300", true},
		{"identical rejects tolerance", num(300.0000004), rules.PredIdentical, "300", false},
		{"identical strings", str("Walls"), rules.PredIdentical, "Walls", true},
		{"identical case mismatch", str("walls"), rules.PredIdentical, "Walls", false},
		{"identical bool", truth(true), rules.PredIdentical, "true", true},
		{"identical absent", Value{}, rules.PredIdentical, "x", false},
		{"not identical", str("A"), rules.PredNotIdentical, "B", true},
		{"not identical absent", Value{}, rules.PredNotIdentical, "x", true},

		{"unknown predicate", str("x"), "resembles", "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Eval(tt.value, tt.predicate, tt.reference); got != tt.want {
				t.Fatalf("Eval(%+v, %q, %q) = %v, want %v", tt.value, tt.predicate, tt.reference, got, tt.want)
			}
		})
	}
}

func TestEqualAndNotEqualAreComplements(t *testing.T) {
	values := []Value{num(300), num(0), str("Walls"), str(""), truth(true), truth(false)}
	references := []string{"300", "Walls", "true", "no", "", "3.14"}
	for _, v := range values {
		for _, ref := range references {
			eq := Eval(v, rules.PredEqual, ref)
			ne := Eval(v, rules.PredNotEqual, ref)
			if eq == ne {
				t.Errorf("equal and not equal both %v for value %+v reference %q", eq, v, ref)
			}
		}
	}

	if Eval(Value{}, rules.PredEqual, "x") {
		t.Errorf("equal to should fail on absent values")
	}
	if !Eval(Value{}, rules.PredNotEqual, "x") {
		t.Errorf("not equal to should pass on absent values")
	}
}
