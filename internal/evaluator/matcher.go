package evaluator

import (
	"math"

	"github.com/selva-lang/matchcore/internal/ast"
	"github.com/selva-lang/matchcore/internal/typesystem"
)

// Bindings maps the names a pattern introduced to the values they
// captured during a successful match.
type Bindings map[string]Object

// Attempt matches value against pat. On success it returns the
// bindings the pattern introduced; on failure it returns nil. A value
// whose shape the pattern cannot accept is an ordinary failure, never
// a fault, and the value itself is never mutated.
func (e *Evaluator) Attempt(pat ast.Pattern, value Object) (Bindings, bool) {
	bound := Bindings{}
	if !e.matchPattern(pat, value, bound) {
		return nil, false
	}
	return bound, true
}

func (e *Evaluator) matchPattern(pat ast.Pattern, value Object, bound Bindings) bool {
	switch p := pat.(type) {
	case *ast.LiteralPattern:
		return Equals(value, FromLiteral(p.Value))

	case *ast.IdentifierPattern:
		if p.Name != ast.DiscardName {
			bound[p.Name] = value
		}
		return true

	case *ast.TypePattern:
		if !e.symbols.IsSubtype(value.RuntimeType(), p.Type) {
			return false
		}
		if p.Name != ast.DiscardName {
			bound[p.Name] = value
		}
		return true

	case *ast.RangePattern:
		return rangeContains(p, value)

	case *ast.ListPattern:
		list, ok := value.(*List)
		if !ok {
			return false
		}
		// Length is checked before any element is touched.
		if p.HasRest {
			if len(list.Elements) < len(p.Elements) {
				return false
			}
		} else if len(list.Elements) != len(p.Elements) {
			return false
		}
		for i, elem := range p.Elements {
			if !e.matchPattern(elem, list.Elements[i], bound) {
				return false
			}
		}
		return true

	case *ast.RecordPattern:
		rec, ok := value.(*RecordInstance)
		if !ok {
			return false
		}
		if !e.symbols.IsSubtype(rec.RuntimeType(), typesystem.TCon{Name: p.TypeName}) {
			return false
		}
		for _, entry := range p.Entries {
			field, ok := rec.Get(entry.Name)
			if !ok {
				return false
			}
			if !e.matchPattern(entry.Pattern, field, bound) {
				return false
			}
		}
		return true

	case *ast.QualifiedPattern:
		resolved, ok := e.symbols.ResolveQualified(p.Path)
		if !ok {
			return false
		}
		return Equals(value, FromConstant(resolved))

	case *ast.AlternationPattern:
		// Alternatives are tried left to right; the first hit wins and
		// only its bindings survive.
		for _, alt := range p.Alternatives {
			sub := Bindings{}
			if e.matchPattern(alt, value, sub) {
				for name, v := range sub {
					bound[name] = v
				}
				return true
			}
		}
		return false
	}
	return false
}

func rangeContains(p *ast.RangePattern, value Object) bool {
	switch v := value.(type) {
	case *Integer:
		lo, lok := p.Low.(int64)
		hi, hok := p.High.(int64)
		if lok && hok {
			return v.Value >= lo && v.Value <= hi
		}
		return boundAsFloat(p.Low) <= float64(v.Value) && float64(v.Value) <= boundAsFloat(p.High)
	case *Float:
		return boundAsFloat(p.Low) <= v.Value && v.Value <= boundAsFloat(p.High)
	}
	return false
}

func boundAsFloat(bound interface{}) float64 {
	switch b := bound.(type) {
	case int64:
		return float64(b)
	case float64:
		return b
	}
	// NewRangePattern only accepts numeric bounds; NaN never matches.
	return math.NaN()
}
