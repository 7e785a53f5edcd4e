package normalize

import "testing"

func TestKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "Fire Rating", want: "firerating"},
		{in: "fire_rating", want: "firerating"},
		{in: "  Is-External ", want: "isexternal"},
		{in: "WALL_ATTR_WIDTH_PARAM", want: "wallattrwidthparam"},
		{in: "", want: ""},
	}
	for _, tc := range cases {
		if got := Key(tc.in); got != tc.want {
			t.Fatalf("Key(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestEqualFoldTrimmed(t *testing.T) {
	if !EqualFoldTrimmed("  Width ", "width") {
		t.Fatal("expected fold-trimmed match")
	}
	if EqualFoldTrimmed("width", "height") {
		t.Fatal("unexpected match")
	}
}
