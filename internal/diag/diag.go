// Package diag defines the error kinds and the Diagnostic envelope of
// spec §7. Grounded on
// github.com/funvibe/funxy/internal/typesystem/error.go, narrowed to a
// single Diagnostic struct implementing error whose KindOf field names
// the category, built through per-kind constructor functions.
package diag

import "fmt"

// Kind enumerates the §7 error categories.
type Kind string

const (
	KindLoadError             Kind = "LoadError"
	KindParseError             Kind = "ParseError"
	KindTypeError               Kind = "TypeError"
	KindUnsetVariable           Kind = "UnsetVariable"
	KindResolutionError         Kind = "ResolutionError"
	KindScriptReferenceError    Kind = "ScriptReferenceError"
	KindOutputError             Kind = "OutputError"
	KindCancelled               Kind = "Cancelled"
)

// Diagnostic is the structured error surfaced to the top-level driver
// (spec §7 "{kind, message, script?, line?, path?}").
type Diagnostic struct {
	KindOf  Kind
	Message string
	Script  string
	Line    int
	Path    string
	// SessionID correlates this diagnostic with the build that produced
	// it (see internal/session).
	SessionID string
}

func (d *Diagnostic) Error() string {
	loc := ""
	if d.Script != "" {
		loc = fmt.Sprintf(" (%s:%d)", d.Script, d.Line)
	}
	if d.Path != "" {
		loc += fmt.Sprintf(" [%s]", d.Path)
	}
	return fmt.Sprintf("%s: %s%s", d.KindOf, d.Message, loc)
}

// New builds a Diagnostic of the given kind.
func New(kind Kind, message, script string, line int, path string) *Diagnostic {
	return &Diagnostic{KindOf: kind, Message: message, Script: script, Line: line, Path: path}
}

// LoadError reports malformed XML, an invalid element, a missing
// required attribute, or an unknown element, fatal at load time.
func LoadError(message, script string, line int) *Diagnostic {
	return New(KindLoadError, message, script, line, "")
}

// ScriptReferenceError reports an unknown method, a missing invoke
// target file, or an invoke cycle.
func ScriptReferenceError(message, script string, line int, path string) *Diagnostic {
	return New(KindScriptReferenceError, message, script, line, path)
}

// ResolutionError reports a required input missing, an invalid choice,
// or a min/max violation.
func ResolutionError(message, path string) *Diagnostic {
	return New(KindResolutionError, message, "", 0, path)
}

// OutputError reports an unknown engine, an empty glob resolution when
// the block required at least one match, or an unknown transformation
// id.
func OutputError(message, script string, line int) *Diagnostic {
	return New(KindOutputError, message, script, line, "")
}

// Cancelled reports cooperative cancellation observed by the Walker.
func Cancelled() *Diagnostic {
	return New(KindCancelled, "build cancelled", "", 0, "")
}
