// Package diagnostics defines the coded, positioned diagnostics every static
// surface of the engine reports through: binder failures, analyzer findings,
// and fixture decoding errors. Runtime errors (MatchError and friends) live
// in the evaluator; tooling converts them with FromError when it needs to
// render everything uniformly.
package diagnostics

import (
	"fmt"

	"github.com/selva-lang/matchcore/internal/token"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Code identifies one diagnostic kind. The leading letter names the stage
// that reports it: B binder, A analyzer, F fixture, R runtime.
type Code string

const (
	ErrB001 Code = "B001" // duplicate binding in one pattern
	ErrB002 Code = "B002" // alternation alternatives bind different names
	ErrB003 Code = "B003" // alternation needs at least two alternatives
	ErrB004 Code = "B004" // range bounds invalid
	ErrB005 Code = "B005" // duplicate record pattern entry

	ErrA001 Code = "A001" // match may not be exhaustive
	ErrA002 Code = "A002" // unreachable clause
	ErrA003 Code = "A003" // unknown type
	ErrA004 Code = "A004" // property not statically readable
	ErrA005 Code = "A005" // unresolved qualified path

	ErrF001 Code = "F001" // malformed match document

	ErrR001 Code = "R001" // runtime failure surfaced by tooling
)

var templates = map[Code]string{
	ErrB001: "duplicate binding %q in pattern",
	ErrB002: "alternation alternatives bind different names: %s",
	ErrB003: "alternation needs at least two alternatives, got %d",
	ErrB004: "invalid range bounds: %s",
	ErrB005: "duplicate entry %q in record pattern",

	ErrA001: "match on %s may not be exhaustive: %s",
	ErrA002: "clause %d is unreachable: %s",
	ErrA003: "unknown type %q",
	ErrA004: "property %q is not statically readable on type %q",
	ErrA005: "unresolved qualified path %q",

	ErrF001: "malformed match document: %s",

	ErrR001: "runtime failure: %s",
}

var stages = map[byte]string{
	'B': "binder",
	'A': "analyzer",
	'F': "fixture",
	'R': "runtime",
}

type Diagnostic struct {
	Code     Code
	Severity Severity
	Pos      token.Pos
	Message  string
}

// New builds an error-severity diagnostic from the code's message template.
func New(code Code, pos token.Pos, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Severity: SeverityError,
		Pos:      pos,
		Message:  format(code, args...),
	}
}

// NewWarning builds a warning-severity diagnostic from the code's template.
func NewWarning(code Code, pos token.Pos, args ...interface{}) *Diagnostic {
	d := New(code, pos, args...)
	d.Severity = SeverityWarning
	return d
}

// FromError wraps an arbitrary error as a runtime diagnostic so tooling can
// render static and runtime findings through one path.
func FromError(err error, pos token.Pos) *Diagnostic {
	return New(ErrR001, pos, err.Error())
}

func format(code Code, args ...interface{}) string {
	tmpl, ok := templates[code]
	if !ok {
		return fmt.Sprint(args...)
	}
	return fmt.Sprintf(tmpl, args...)
}

// Stage names the reporting stage encoded in the diagnostic code.
func (d *Diagnostic) Stage() string {
	if len(d.Code) > 0 {
		if s, ok := stages[d.Code[0]]; ok {
			return s
		}
	}
	return "matchcore"
}

// Error renders the diagnostic in the standard form, so *Diagnostic can
// travel as an error value:
//
//	[analyzer] warning [A001]: match on Color may not be exhaustive: ... (line 4, column 3)
func (d *Diagnostic) Error() string {
	msg := fmt.Sprintf("[%s] %s [%s]: %s", d.Stage(), d.Severity, d.Code, d.Message)
	if d.Pos.IsValid() {
		msg += fmt.Sprintf(" (line %d, column %d)", d.Pos.Line, d.Pos.Column)
	}
	return msg
}

// HasErrors reports whether any diagnostic in the slice is error-severity.
func HasErrors(diags []*Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
