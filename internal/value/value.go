// Package value implements the tagged-union Value type shared by the
// expression language, the Context, and the input resolver.
//
// Grounded on github.com/funvibe/funxy/internal/typesystem/kinds.go's
// closed set of kinds ("the type of a type" there, "the type of a
// value" here), narrowed to a single struct tagged by Kind, with the
// per-variant behavior in switches over that tag.
package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies a Value's runtime variant.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindList
	KindDynamic
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindDynamic:
		return "dynamic"
	case KindEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// TypeError reports an illegal conversion or operation between Values.
type TypeError struct {
	Op      string
	From    Kind
	To      Kind
	Detail  string
}

func (e *TypeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("value: cannot %s %s as %s: %s", e.Op, e.From, e.To, e.Detail)
	}
	return fmt.Sprintf("value: cannot %s %s as %s", e.Op, e.From, e.To)
}

// NoSuchElementError is returned by Get on an Empty value.
type NoSuchElementError struct {
	Reason string
}

func (e *NoSuchElementError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("value: no such element: %s", e.Reason)
	}
	return "value: no such element"
}

// Supplier lazily produces the string backing a Dynamic value. It is
// called at most once; the result is memoized.
type Supplier func() (string, error)

// Value is the tagged union described in spec §3. The zero Value is not
// valid; use the constructors below.
type Value struct {
	kind    Kind
	str     string
	i       int64
	b       bool
	list    []string
	reason  string
	supply  Supplier
	resolved bool
	cached  string
	cacheErr error
}

func OfString(s string) Value { return Value{kind: KindString, str: s} }
func OfInt(i int64) Value     { return Value{kind: KindInt, i: i} }
func OfBool(b bool) Value     { return Value{kind: KindBool, b: b} }

// OfList copies in as a List value.
func OfList(items []string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// OfDynamic wraps a lazily-computed string. The supplier is invoked at
// most once across the lifetime of the Value (memoized on first Get).
func OfDynamic(supply Supplier) Value {
	// The memo lives in the closure so that copies of the Value (every
	// method has a value receiver) share one result.
	var done bool
	var s string
	var err error
	memo := func() (string, error) {
		if !done {
			s, err = supply()
			done = true
		}
		return s, err
	}
	return Value{kind: KindDynamic, supply: memo}
}

// Empty constructs an Empty value carrying a human-readable reason.
func Empty(reason string) Value { return Value{kind: KindEmpty, reason: reason} }

func (v Value) Type() Kind    { return v.kind }
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// force resolves a Dynamic value's backing string, memoizing the result.
func (v *Value) force() (string, error) {
	if v.kind != KindDynamic {
		return v.str, nil
	}
	if v.resolved {
		return v.cached, v.cacheErr
	}
	s, err := v.supply()
	v.resolved = true
	v.cached = s
	v.cacheErr = err
	return s, err
}

// Get returns the value's canonical string form, failing on Empty.
func (v Value) Get() (string, error) {
	switch v.kind {
	case KindEmpty:
		return "", &NoSuchElementError{Reason: v.reason}
	case KindDynamic:
		return v.force()
	case KindString:
		return v.str, nil
	case KindInt:
		return strconv.FormatInt(v.i, 10), nil
	case KindBool:
		return strconv.FormatBool(v.b), nil
	case KindList:
		return strings.Join(v.list, ","), nil
	}
	return "", &NoSuchElementError{}
}

// AsString is an alias of Get kept for call-site readability next to
// AsBool/AsInt/AsList.
func (v Value) AsString() (string, error) { return v.Get() }

func (v Value) AsBool() (bool, error) {
	switch v.kind {
	case KindBool:
		return v.b, nil
	case KindEmpty:
		return false, &NoSuchElementError{Reason: v.reason}
	case KindDynamic:
		s, err := v.force()
		if err != nil {
			return false, err
		}
		return ParseBoolString(s)
	case KindString:
		return ParseBoolString(v.str)
	default:
		return false, &TypeError{Op: "convert", From: v.kind, To: KindBool}
	}
}

func (v Value) AsInt() (int64, error) {
	switch v.kind {
	case KindInt:
		return v.i, nil
	case KindEmpty:
		return 0, &NoSuchElementError{Reason: v.reason}
	case KindDynamic:
		s, err := v.force()
		if err != nil {
			return 0, err
		}
		return parseIntString(s)
	case KindString:
		return parseIntString(v.str)
	default:
		return 0, &TypeError{Op: "convert", From: v.kind, To: KindInt}
	}
}

func (v Value) AsList() ([]string, error) {
	switch v.kind {
	case KindList:
		cp := make([]string, len(v.list))
		copy(cp, v.list)
		return cp, nil
	case KindEmpty:
		return nil, &NoSuchElementError{Reason: v.reason}
	case KindDynamic:
		s, err := v.force()
		if err != nil {
			return nil, err
		}
		return ParseListString(s)
	case KindString:
		return ParseListString(v.str)
	default:
		return nil, &TypeError{Op: "convert", From: v.kind, To: KindList}
	}
}

// OrElse returns v's string form, or def if v is Empty or fails to
// resolve.
func (v Value) OrElse(def string) string {
	s, err := v.Get()
	if err != nil {
		return def
	}
	return s
}

// OrElseGet is the lazy form of OrElse.
func (v Value) OrElseGet(def func() string) string {
	s, err := v.Get()
	if err != nil {
		return def()
	}
	return s
}

// OrElseThrow returns v's string form, or err if v is Empty.
func (v Value) OrElseThrow(err error) (string, error) {
	s, getErr := v.Get()
	if getErr != nil {
		return "", err
	}
	return s, nil
}

// Map re-wraps v's resolved string through fn, inferring the result
// variant from fn's output: "true"/"false" (any case) become Bool,
// anything else becomes String. A bracketed list is not turned into a
// List; it stays a String.
func (v Value) Map(fn func(string) string) (Value, error) {
	s, err := v.Get()
	if err != nil {
		return Value{}, err
	}
	out := fn(s)
	return inferLiteral(out), nil
}

func inferLiteral(s string) Value {
	if b, err := ParseBoolString(s); err == nil {
		return OfBool(b)
	}
	return OfString(s)
}

// ParseBoolString implements the case-insensitive true/false conversion
// contract from spec §3.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, &TypeError{Op: "parse", From: KindString, To: KindBool, Detail: s}
	}
}

func parseIntString(s string) (int64, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, &TypeError{Op: "parse", From: KindString, To: KindInt, Detail: s}
	}
	return i, nil
}

// ParseList implements the §3/§8 conversion contract:
//   - isNil -> Empty value (the caller must check IsEmpty)
//   - "none" (case-insensitive) -> an empty List
//   - "" and comma-splitting otherwise, including retaining empty
//     elements ("a,b,,c" -> 4 elements)
func ParseList(s string, isNil bool) Value {
	if isNil {
		return Empty("null input")
	}
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return Value{kind: KindList, list: []string{}}
	}
	items, _ := ParseListString(s)
	return OfList(items)
}

// ParseListString is the raw string->[]string half of ParseList,
// reused by AsList on String/Dynamic values.
func ParseListString(s string) ([]string, error) {
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return []string{}, nil
	}
	if s == "" {
		return []string{}, nil
	}
	return strings.Split(s, ","), nil
}

// Compare total-orders two Values per spec §4.1: empties compare equal,
// same-type values use natural order, mixed types fall back to
// stringified comparison.
func Compare(a, b Value) int {
	if a.kind == KindEmpty && b.kind == KindEmpty {
		return 0
	}
	if a.kind == b.kind {
		switch a.kind {
		case KindInt:
			switch {
			case a.i < b.i:
				return -1
			case a.i > b.i:
				return 1
			default:
				return 0
			}
		case KindBool:
			if a.b == b.b {
				return 0
			}
			if !a.b {
				return -1
			}
			return 1
		case KindList:
			return strings.Compare(strings.Join(a.list, ","), strings.Join(b.list, ","))
		}
	}
	as, _ := a.Get()
	bs, _ := b.Get()
	return strings.Compare(as, bs)
}

// IsEqual implements the looser equality from spec §4.1: Dynamic
// promotes to the other operand's type before comparing, List equality
// is set-equality of equal length, and Bool/Int require matching types.
func IsEqual(a, b Value) bool {
	if a.kind == KindDynamic && b.kind != KindDynamic {
		return isEqualPromoted(a, b)
	}
	if b.kind == KindDynamic && a.kind != KindDynamic {
		return isEqualPromoted(b, a)
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindEmpty:
		return true
	case KindString, KindDynamic:
		as, aerr := a.Get()
		bs, berr := b.Get()
		return aerr == nil && berr == nil && as == bs
	case KindInt:
		return a.i == b.i
	case KindBool:
		return a.b == b.b
	case KindList:
		return setEqual(a.list, b.list)
	}
	return false
}

// isEqualPromoted compares a Dynamic value dyn against typed, promoting
// dyn into typed's variant before comparing.
func isEqualPromoted(dyn, typed Value) bool {
	s, err := dyn.force()
	if err != nil {
		return false
	}
	switch typed.kind {
	case KindBool:
		b, err := ParseBoolString(s)
		return err == nil && b == typed.b
	case KindInt:
		i, err := parseIntString(s)
		return err == nil && i == typed.i
	case KindList:
		items, _ := ParseListString(s)
		return setEqual(items, typed.list)
	default:
		ts, _ := typed.Get()
		return s == ts
	}
}

func setEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	ca := make(map[string]int, len(a))
	for _, x := range a {
		ca[x]++
	}
	cb := make(map[string]int, len(b))
	for _, x := range b {
		cb[x]++
	}
	if len(ca) != len(cb) {
		return false
	}
	keys := make([]string, 0, len(ca))
	for k := range ca {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if ca[k] != cb[k] {
			return false
		}
	}
	return true
}

// String renders a debug form; it never fails, unlike Get.
func (v Value) String() string {
	s, err := v.Get()
	if err != nil {
		return fmt.Sprintf("<empty:%s>", v.reason)
	}
	return s
}
