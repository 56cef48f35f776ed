package exprparser

import "testing"

func TestEvalContainsAndShortCircuit(t *testing.T) {
	tests := []struct {
		name string
		expr string
		vars map[string]string
		want bool
	}{
		{
			name: "contains true evaluates y",
			expr: "['a','b','c'] contains ${x} && ${y}",
			vars: map[string]string{"x": "b", "y": "true"},
			want: true,
		},
		{
			name: "contains false short-circuits unset y",
			expr: "['a','b','c'] contains ${x} && ${y}",
			vars: map[string]string{"x": "d"},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.expr, err)
			}
			got, err := EvalBool(node, tt.vars)
			if err != nil {
				t.Fatalf("EvalBool(%q): %v", tt.expr, err)
			}
			if got != tt.want {
				t.Fatalf("EvalBool(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvalUnsetVariableLiveArmFails(t *testing.T) {
	node, err := Parse("${missing} == 'x'")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := EvalBool(node, map[string]string{}); err == nil {
		t.Fatalf("expected UnsetVariableError for live-arm reference to missing var")
	} else if _, ok := err.(*UnsetVariableError); !ok {
		t.Fatalf("expected *UnsetVariableError, got %T: %v", err, err)
	}
}

func TestEvalBangNonBoolIsTypeError(t *testing.T) {
	node, err := Parse("!${x}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := EvalBool(node, map[string]string{"x": "notabool"}); err == nil {
		t.Fatalf("expected type error for !non-bool")
	} else if _, ok := err.(*TypeMismatchError); !ok {
		t.Fatalf("expected *TypeMismatchError, got %T", err)
	}
}

func TestParsePrecedence(t *testing.T) {
	// '!' binds tighter than '==', which binds tighter than '&&', which
	// binds tighter than '||'.
	node, err := Parse("!true == false && true || false")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, err := EvalBool(node, nil)
	if err != nil {
		t.Fatalf("EvalBool: %v", err)
	}
	// !true == false -> true == false is wrong; !true = false, false==false -> true
	// true && true -> true; true || false -> true
	if !got {
		t.Fatalf("expected true, got false")
	}
}

func TestChainedContainsIsParseError(t *testing.T) {
	if _, err := Parse("['a'] contains ${x} contains ${y}"); err == nil {
		t.Fatalf("expected parse error for chained contains")
	}
}

func TestPrintRoundTripRespectsIsolation(t *testing.T) {
	exprs := []string{
		"${a} == 'b' && ${c} == 'd'",
		"(${a} == 'b') && ${c}",
	}
	for _, src := range exprs {
		node, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		out := Print(node)
		node2, err := Parse(out)
		if err != nil {
			t.Fatalf("re-Parse(%q): %v", out, err)
		}
		out2 := Print(node2)
		if out != out2 {
			t.Fatalf("print not idempotent: %q != %q", out, out2)
		}
	}
}
