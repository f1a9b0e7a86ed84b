package analyzer

import (
	"fmt"
	"strings"

	"github.com/selva-lang/matchcore/internal/ast"
	"github.com/selva-lang/matchcore/internal/symbols"
	"github.com/selva-lang/matchcore/internal/typesystem"
)

// IsExhaustive reports whether the clause list provably covers every
// value of the scrutinee type. The analysis is conservative: a true
// result is a guarantee, a false result only means no proof was found,
// and the returned reasons say what is missing.
//
// Two proofs are recognized. Either some unguarded clause always
// matches the scrutinee type, or the scrutinee is an enum and the
// unguarded literal and qualified clauses together name every member.
// Guarded clauses never contribute: a guard can refuse at runtime no
// matter what its pattern covers.
func IsExhaustive(clauses []*ast.MatchClause, scrutinee typesystem.Type, table *symbols.SymbolTable) (bool, []string) {
	for _, clause := range clauses {
		if clause.Guard != nil {
			continue
		}
		if alwaysMatches(clause.Pattern, scrutinee, table) {
			return true, nil
		}
	}

	if con, ok := scrutinee.(typesystem.TCon); ok {
		if enum, found := table.Enum(con.Name); found {
			covered := make(map[string]bool)
			for _, clause := range clauses {
				if clause.Guard != nil {
					continue
				}
				collectEnumCoverage(clause.Pattern, enum, covered, table)
			}
			var uncovered []string
			for _, m := range enum.Members {
				if !covered[m.Name] {
					uncovered = append(uncovered, enum.Name+"."+m.Name)
				}
			}
			if len(uncovered) == 0 {
				return true, nil
			}
			return false, []string{fmt.Sprintf("uncovered members of %s: %s", enum.Name, strings.Join(uncovered, ", "))}
		}
	}

	return false, []string{fmt.Sprintf("no clause is guaranteed to match every %s value", scrutinee)}
}

// alwaysMatches reports whether the pattern accepts every possible
// value of type t. Literal, range and qualified patterns pick out
// single values or slices of infinite domains, so they never qualify.
func alwaysMatches(p ast.Pattern, t typesystem.Type, table *symbols.SymbolTable) bool {
	switch p := p.(type) {
	case *ast.IdentifierPattern:
		return true

	case *ast.TypePattern:
		return table.IsSubtype(t, p.Type)

	case *ast.ListPattern:
		if !p.HasRest || len(p.Elements) > 0 {
			return false
		}
		// [...] accepts any list, but only a list.
		_, isList := t.(typesystem.TList)
		return isList

	case *ast.RecordPattern:
		con, ok := t.(typesystem.TCon)
		if !ok || !table.IsSubtype(t, typesystem.TCon{Name: p.TypeName}) {
			return false
		}
		for _, entry := range p.Entries {
			fieldType, ok := table.FieldType(con.Name, entry.Name)
			if !ok || !alwaysMatches(entry.Pattern, fieldType, table) {
				return false
			}
		}
		return true

	case *ast.AlternationPattern:
		for _, alt := range p.Alternatives {
			if alwaysMatches(alt, t, table) {
				return true
			}
		}
		return false
	}
	return false
}

// collectEnumCoverage records which members of the enum the pattern is
// guaranteed to equal. Qualified paths name members directly; literals
// cover the members whose payload they equal; alternation spreads over
// its alternatives. Anything else proves nothing about the enum.
func collectEnumCoverage(p ast.Pattern, enum *symbols.EnumDecl, covered map[string]bool, table *symbols.SymbolTable) {
	switch p := p.(type) {
	case *ast.QualifiedPattern:
		resolved, ok := table.ResolveQualified(p.Path)
		if !ok {
			return
		}
		if ref, ok := resolved.(symbols.EnumRef); ok && ref.Enum == enum.Name {
			covered[ref.Member] = true
		}

	case *ast.LiteralPattern:
		for _, m := range enum.Members {
			if m.Value != nil && literalEq(m.Value, p.Value) {
				covered[m.Name] = true
			}
		}

	case *ast.AlternationPattern:
		for _, alt := range p.Alternatives {
			collectEnumCoverage(alt, enum, covered, table)
		}
	}
}

// literalEq compares two plain literal values the way runtime equality
// does: integers and floats by numeric value, the rest by identity.
func literalEq(a, b interface{}) bool {
	if ai, ok := a.(int64); ok {
		switch bv := b.(type) {
		case int64:
			return ai == bv
		case float64:
			return float64(ai) == bv
		}
		return false
	}
	if af, ok := a.(float64); ok {
		switch bv := b.(type) {
		case int64:
			return af == float64(bv)
		case float64:
			return af == bv
		}
		return false
	}
	return a == b
}
