package value

import "testing"

func TestParseListBoundary(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		isNil    bool
		wantEmpty bool
		wantLen  int
	}{
		{name: "none keyword", raw: "none", wantLen: 0},
		{name: "nil input", isNil: true, wantEmpty: true},
		{name: "trailing empty element", raw: "a,b,,c", wantLen: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ParseList(tt.raw, tt.isNil)
			if tt.wantEmpty {
				if !v.IsEmpty() {
					t.Fatalf("expected Empty value for nil input")
				}
				return
			}
			items, err := v.AsList()
			if err != nil {
				t.Fatalf("AsList: %v", err)
			}
			if len(items) != tt.wantLen {
				t.Fatalf("got %d items %v, want %d", len(items), items, tt.wantLen)
			}
		})
	}
}

func TestAsBoolCaseInsensitive(t *testing.T) {
	for _, s := range []string{"true", "TRUE", "True", "false", "FALSE"} {
		v := OfString(s)
		if _, err := v.AsBool(); err != nil {
			t.Fatalf("AsBool(%q): %v", s, err)
		}
	}
	if _, err := OfString("maybe").AsBool(); err == nil {
		t.Fatalf("expected error converting %q to bool", "maybe")
	}
}

func TestGetOnEmptyFails(t *testing.T) {
	v := Empty("no default")
	if _, err := v.Get(); err == nil {
		t.Fatalf("expected error from Get on Empty")
	}
	var nse *NoSuchElementError
	if _, err := v.Get(); err != nil {
		if _, ok := err.(*NoSuchElementError); !ok {
			t.Fatalf("expected *NoSuchElementError, got %T", err)
		}
	}
	_ = nse
}

func TestDynamicMemoizes(t *testing.T) {
	calls := 0
	v := OfDynamic(func() (string, error) {
		calls++
		return "computed", nil
	})
	for i := 0; i < 3; i++ {
		s, err := v.Get()
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if s != "computed" {
			t.Fatalf("got %q", s)
		}
	}
	if calls != 1 {
		t.Fatalf("supplier called %d times, want 1", calls)
	}
}

func TestIsEqualDynamicPromotes(t *testing.T) {
	dyn := OfDynamic(func() (string, error) { return "true", nil })
	if !IsEqual(dyn, OfBool(true)) {
		t.Fatalf("expected dynamic(\"true\") == Bool(true)")
	}
	if !IsEqual(OfBool(true), dyn) {
		t.Fatalf("expected Bool(true) == dynamic(\"true\") (symmetric)")
	}
}

func TestIsEqualListIsSetEquality(t *testing.T) {
	a := OfList([]string{"x", "y"})
	b := OfList([]string{"y", "x"})
	if !IsEqual(a, b) {
		t.Fatalf("expected set-equal lists to be equal regardless of order")
	}
	c := OfList([]string{"x", "x"})
	if IsEqual(a, c) {
		t.Fatalf("expected lists of differing multiplicity to be unequal")
	}
}

func TestCompareEmptiesEqual(t *testing.T) {
	if Compare(Empty("a"), Empty("b")) != 0 {
		t.Fatalf("expected all Empty values to compare equal")
	}
}

func TestCompareMixedTypeFallsBackToString(t *testing.T) {
	// Mixed-type compare falls back to stringified comparison: "2" vs
	// "10" compares by byte, not numeric value, so "2" sorts after "10".
	if got := Compare(OfInt(2), OfString("10")); got <= 0 {
		t.Fatalf("Compare(2, \"10\") = %d, want > 0 (byte-wise \"2\" > \"10\")", got)
	}
}
