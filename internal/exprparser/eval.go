package exprparser

import (
	"fmt"

	"github.com/funvibe/archctl/internal/exprast"
	"github.com/funvibe/archctl/internal/value"
)

// UnsetVariableError is raised when a live (non-short-circuited) branch
// references a variable absent from the evaluation vars map, per spec
// §4.2/§7.
type UnsetVariableError struct {
	Name string
}

func (e *UnsetVariableError) Error() string {
	return fmt.Sprintf("Variable %s must be initialized", e.Name)
}

// TypeMismatchError reports an operator applied to an operand of the
// wrong kind, citing the offending literal slice per spec §4.2.
type TypeMismatchError struct {
	Op      string
	Slice   string
	Message string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("incorrect operand type for %s near %q: %s", e.Op, e.Slice, e.Message)
}

// evaluator folds an exprast tree against a fixed vars map by a type
// switch over node kinds (see eval), per spec §4.2's
// evaluate(Map<String,String>) contract.
type evaluator struct {
	vars map[string]string
}

// Evaluate walks node against vars and returns its resulting Value. The
// node must type-check to a consistent variant at every operator per
// the table in spec §4.2.
func Evaluate(node exprast.Node, vars map[string]string) (value.Value, error) {
	ev := &evaluator{vars: vars}
	return ev.eval(node)
}

// EvalBool is a convenience wrapper for guard evaluation: guards are
// always boolean-typed per spec §4.5.
func EvalBool(node exprast.Node, vars map[string]string) (bool, error) {
	v, err := Evaluate(node, vars)
	if err != nil {
		return false, err
	}
	return v.AsBool()
}

func (ev *evaluator) eval(n exprast.Node) (value.Value, error) {
	switch node := n.(type) {
	case *exprast.Literal:
		return ev.evalLiteral(node)
	case *exprast.Variable:
		return ev.evalVariable(node)
	case *exprast.Unary:
		return ev.evalUnary(node)
	case *exprast.Binary:
		return ev.evalBinary(node)
	default:
		return value.Value{}, fmt.Errorf("exprparser: unknown AST node %T", n)
	}
}

func (ev *evaluator) evalLiteral(n *exprast.Literal) (value.Value, error) {
	switch n.Kind {
	case exprast.LitString:
		return value.OfString(n.Str), nil
	case exprast.LitBool:
		return value.OfBool(n.Bool), nil
	case exprast.LitInt:
		return value.OfInt(n.Int), nil
	case exprast.LitList:
		return value.OfList(n.List), nil
	default:
		return value.Value{}, fmt.Errorf("exprparser: unknown literal kind %v", n.Kind)
	}
}

// evalVariable reads the raw source text for n.Name from vars and
// converts it with parseLiteralString (so "['a','b']" becomes a list
// literal). An unset variable is reported as
// UnsetVariableError; short-circuiting in evalBinary decides whether
// that error actually surfaces.
func (ev *evaluator) evalVariable(n *exprast.Variable) (value.Value, error) {
	raw, ok := ev.vars[n.Name]
	if !ok {
		return value.Value{}, &UnsetVariableError{Name: n.Name}
	}
	return parseLiteralString(raw), nil
}

// parseLiteralString converts a raw variable value for the type rules
// in spec §4.2's table: "true"/"false" (any case) become a Bool, a
// bracketed list of quoted strings becomes a List, and any other text,
// including digits and quoted text, stays a String with the raw text
// unchanged. Integer literals are not recognized here.
func parseLiteralString(raw string) value.Value {
	if b, err := value.ParseBoolString(raw); err == nil {
		return value.OfBool(b)
	}
	trimmed := raw
	for len(trimmed) > 0 && (trimmed[0] == ' ' || trimmed[0] == '\t') {
		trimmed = trimmed[1:]
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		p := New(raw)
		sub := p.parseAtom()
		if lit, ok := sub.(*exprast.Literal); ok && lit.Kind == exprast.LitList && len(p.errs) == 0 {
			return value.OfList(lit.List)
		}
	}
	return value.OfString(raw)
}

func (ev *evaluator) evalUnary(n *exprast.Unary) (value.Value, error) {
	child, err := ev.eval(n.Child)
	if err != nil {
		return value.Value{}, err
	}
	if child.Type() != value.KindBool {
		return value.Value{}, &TypeMismatchError{Op: "!", Slice: n.GetToken().Lexeme, Message: "operand must be boolean"}
	}
	b, _ := child.AsBool()
	return value.OfBool(!b), nil
}

func (ev *evaluator) evalBinary(n *exprast.Binary) (value.Value, error) {
	switch n.Op {
	case exprast.OpAnd:
		return ev.evalShortCircuit(n, false)
	case exprast.OpOr:
		return ev.evalShortCircuit(n, true)
	case exprast.OpEq, exprast.OpNotEq:
		return ev.evalComparison(n)
	case exprast.OpContains:
		return ev.evalContains(n)
	default:
		return value.Value{}, fmt.Errorf("exprparser: unknown binary operator %v", n.Op)
	}
}

// evalShortCircuit implements && (shortOn=false) and || (shortOn=true):
// if the left operand already decides the result, the right operand is
// never evaluated, so an UnsetVariableError in a dead right arm is
// suppressed — spec §4.2 "short-circuit &&/|| suppresses errors from
// the dead arm".
func (ev *evaluator) evalShortCircuit(n *exprast.Binary, shortOn bool) (value.Value, error) {
	left, err := ev.eval(n.Left)
	if err != nil {
		return value.Value{}, err
	}
	if left.Type() != value.KindBool {
		return value.Value{}, &TypeMismatchError{Op: n.Op.String(), Slice: n.GetToken().Lexeme, Message: "left operand must be boolean"}
	}
	lb, _ := left.AsBool()
	if lb == shortOn {
		return value.OfBool(shortOn), nil
	}
	right, err := ev.eval(n.Right)
	if err != nil {
		return value.Value{}, err
	}
	if right.Type() != value.KindBool {
		return value.Value{}, &TypeMismatchError{Op: n.Op.String(), Slice: n.GetToken().Lexeme, Message: "right operand must be boolean"}
	}
	rb, _ := right.AsBool()
	return value.OfBool(rb), nil
}

func (ev *evaluator) evalComparison(n *exprast.Binary) (value.Value, error) {
	left, err := ev.eval(n.Left)
	if err != nil {
		return value.Value{}, err
	}
	right, err := ev.eval(n.Right)
	if err != nil {
		return value.Value{}, err
	}
	if left.Type() != right.Type() {
		return value.Value{}, &TypeMismatchError{
			Op:      n.Op.String(),
			Slice:   n.GetToken().Lexeme,
			Message: fmt.Sprintf("operand types must match, got %s and %s", left.Type(), right.Type()),
		}
	}
	eq := value.IsEqual(left, right)
	if n.Op == exprast.OpNotEq {
		eq = !eq
	}
	return value.OfBool(eq), nil
}

func (ev *evaluator) evalContains(n *exprast.Binary) (value.Value, error) {
	left, err := ev.eval(n.Left)
	if err != nil {
		return value.Value{}, err
	}
	right, err := ev.eval(n.Right)
	if err != nil {
		return value.Value{}, err
	}
	if left.Type() != value.KindList {
		return value.Value{}, &TypeMismatchError{Op: "contains", Slice: n.GetToken().Lexeme, Message: "left operand must be a list"}
	}
	if right.Type() != value.KindString {
		return value.Value{}, &TypeMismatchError{Op: "contains", Slice: n.GetToken().Lexeme, Message: "right operand must be a string"}
	}
	items, _ := left.AsList()
	needle, _ := right.AsString()
	for _, it := range items {
		if it == needle {
			return value.OfBool(true), nil
		}
	}
	return value.OfBool(false), nil
}
