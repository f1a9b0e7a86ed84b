package ast

import (
	"fmt"
	"strings"

	"github.com/selva-lang/matchcore/internal/diagnostics"
	"github.com/selva-lang/matchcore/internal/token"
	"github.com/selva-lang/matchcore/internal/typesystem"
)

// The pattern kinds form a closed sum: matcher, binder, and checker each
// switch over every kind, and a new kind means extending all three.

// LiteralPattern matches a constant by value equality. Value holds nil,
// bool, int64, float64, string, or Symbol.
type LiteralPattern struct {
	Pos   token.Pos
	Value interface{}
}

func (p *LiteralPattern) patternNode()      {}
func (p *LiteralPattern) GetPos() token.Pos { return p.Pos }
func (p *LiteralPattern) String() string    { return FormatLiteral(p.Value) }

// TypePattern tests the value's runtime type against Type and binds Name on
// success. Name may be DiscardName for a pure type test.
type TypePattern struct {
	Pos  token.Pos
	Name string
	Type typesystem.Type
}

func (p *TypePattern) patternNode()      {}
func (p *TypePattern) GetPos() token.Pos { return p.Pos }
func (p *TypePattern) String() string    { return p.Name + ": " + p.Type.String() }

// RangePattern matches numbers within inclusive bounds.
type RangePattern struct {
	Pos  token.Pos
	Low  interface{}
	High interface{}
}

func (p *RangePattern) patternNode()      {}
func (p *RangePattern) GetPos() token.Pos { return p.Pos }
func (p *RangePattern) String() string {
	return FormatLiteral(p.Low) + ".." + FormatLiteral(p.High)
}

// NewRangePattern rejects non-numeric bounds and low > high.
func NewRangePattern(pos token.Pos, low, high interface{}) (*RangePattern, error) {
	lo, okLow := numericBound(low)
	hi, okHigh := numericBound(high)
	if !okLow || !okHigh {
		return nil, diagnostics.New(diagnostics.ErrB004, pos,
			fmt.Sprintf("bounds must be numeric, got %s..%s", FormatLiteral(low), FormatLiteral(high)))
	}
	if lo > hi {
		return nil, diagnostics.New(diagnostics.ErrB004, pos,
			fmt.Sprintf("low bound %s exceeds high bound %s", FormatLiteral(low), FormatLiteral(high)))
	}
	return &RangePattern{Pos: pos, Low: low, High: high}, nil
}

func numericBound(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// ListPattern destructures a list value: fixed element patterns, optionally
// followed by a rest marker accepting any remaining elements.
type ListPattern struct {
	Pos      token.Pos
	Elements []Pattern
	HasRest  bool
}

func (p *ListPattern) patternNode()      {}
func (p *ListPattern) GetPos() token.Pos { return p.Pos }
func (p *ListPattern) String() string {
	parts := make([]string, 0, len(p.Elements)+1)
	for _, e := range p.Elements {
		parts = append(parts, e.String())
	}
	if p.HasRest {
		parts = append(parts, "...")
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type RecordEntry struct {
	Name    string
	Pattern Pattern
}

// RecordPattern destructures a record value of the named type (or a subtype)
// by reading each entry's property in declared order.
type RecordPattern struct {
	Pos      token.Pos
	TypeName string
	Entries  []*RecordEntry
}

func (p *RecordPattern) patternNode()      {}
func (p *RecordPattern) GetPos() token.Pos { return p.Pos }
func (p *RecordPattern) String() string {
	parts := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		parts[i] = e.Name + ": " + e.Pattern.String()
	}
	return p.TypeName + "{" + strings.Join(parts, ", ") + "}"
}

// NewRecordPattern rejects duplicate entry names; entry order is preserved.
func NewRecordPattern(pos token.Pos, typeName string, entries []*RecordEntry) (*RecordPattern, error) {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.Name] {
			return nil, diagnostics.New(diagnostics.ErrB005, pos, e.Name)
		}
		seen[e.Name] = true
	}
	return &RecordPattern{Pos: pos, TypeName: typeName, Entries: entries}, nil
}

// IdentifierPattern matches anything and binds the whole value. DiscardName
// matches without binding.
type IdentifierPattern struct {
	Pos  token.Pos
	Name string
}

func (p *IdentifierPattern) patternNode()      {}
func (p *IdentifierPattern) GetPos() token.Pos { return p.Pos }
func (p *IdentifierPattern) String() string    { return p.Name }

// QualifiedPattern matches by equality against a named constant or enum
// member. It introduces no binding.
type QualifiedPattern struct {
	Pos  token.Pos
	Path []string
}

func (p *QualifiedPattern) patternNode()      {}
func (p *QualifiedPattern) GetPos() token.Pos { return p.Pos }
func (p *QualifiedPattern) String() string    { return strings.Join(p.Path, ".") }

// AlternationPattern matches when any alternative does, tried left to right.
type AlternationPattern struct {
	Pos          token.Pos
	Alternatives []Pattern
}

func (p *AlternationPattern) patternNode()      {}
func (p *AlternationPattern) GetPos() token.Pos { return p.Pos }
func (p *AlternationPattern) String() string {
	parts := make([]string, len(p.Alternatives))
	for i, a := range p.Alternatives {
		parts[i] = a.String()
	}
	return strings.Join(parts, " | ")
}

// NewAlternationPattern enforces the two alternation invariants: at least
// two alternatives, and every alternative binding exactly the same name set,
// so guards and bodies see one consistent scope no matter which alternative
// fired. A duplicate inside a single alternative surfaces as
// *DuplicateBindingError.
func NewAlternationPattern(pos token.Pos, alternatives []Pattern) (*AlternationPattern, error) {
	if len(alternatives) < 2 {
		return nil, diagnostics.New(diagnostics.ErrB003, pos, len(alternatives))
	}
	first, err := bindingPositions(alternatives[0])
	if err != nil {
		return nil, err
	}
	for _, alt := range alternatives[1:] {
		names, err := bindingPositions(alt)
		if err != nil {
			return nil, err
		}
		if detail := describeSetDiff(first, names); detail != "" {
			return nil, diagnostics.New(diagnostics.ErrB002, pos, detail)
		}
	}
	return &AlternationPattern{Pos: pos, Alternatives: alternatives}, nil
}

func describeSetDiff(want, got map[string]token.Pos) string {
	var missing, extra []string
	for name := range want {
		if _, ok := got[name]; !ok {
			missing = append(missing, name)
		}
	}
	for name := range got {
		if _, ok := want[name]; !ok {
			extra = append(extra, name)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return ""
	}
	sortNames(missing)
	sortNames(extra)
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing "+strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		parts = append(parts, "unexpected "+strings.Join(extra, ", "))
	}
	return strings.Join(parts, "; ")
}
