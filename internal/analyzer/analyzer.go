// Package analyzer performs the static checks that run before any value
// is matched: binding validation over whole clause lists, reachability,
// reference resolution inside patterns, guards and bodies, and the
// conservative exhaustiveness proof.
//
// Analysis never stops at the first finding. Every check runs over every
// clause and the findings come back as one diagnostic list, deduplicated
// by position and code.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/selva-lang/matchcore/internal/ast"
	"github.com/selva-lang/matchcore/internal/diagnostics"
	"github.com/selva-lang/matchcore/internal/symbols"
	"github.com/selva-lang/matchcore/internal/token"
	"github.com/selva-lang/matchcore/internal/typesystem"
)

type Analyzer struct {
	symbolTable *symbols.SymbolTable
}

func New(table *symbols.SymbolTable) *Analyzer {
	return &Analyzer{symbolTable: table}
}

// AnalyzeMatch runs every static check over one match expression given
// the declared type of its scrutinee.
func (a *Analyzer) AnalyzeMatch(m *ast.MatchExpression, scrutinee typesystem.Type) []*diagnostics.Diagnostic {
	r := newReview()
	a.checkExpr(m.Scrutinee, r)
	a.reviewClauses(m.Pos, m.Clauses, scrutinee, true, r)
	return r.diags
}

// AnalyzeClauses checks a bare clause list against a declared scrutinee
// type. pos anchors findings that concern the list as a whole, such as
// the exhaustiveness warning.
func (a *Analyzer) AnalyzeClauses(pos token.Pos, clauses []*ast.MatchClause, scrutinee typesystem.Type) []*diagnostics.Diagnostic {
	r := newReview()
	a.reviewClauses(pos, clauses, scrutinee, true, r)
	return r.diags
}

// CheckExhaustiveness wraps IsExhaustive as a single warning diagnostic,
// nil when coverage is proven.
func (a *Analyzer) CheckExhaustiveness(pos token.Pos, clauses []*ast.MatchClause, scrutinee typesystem.Type) *diagnostics.Diagnostic {
	ok, reasons := IsExhaustive(clauses, scrutinee, a.symbolTable)
	if ok {
		return nil
	}
	return diagnostics.NewWarning(diagnostics.ErrA001, pos, scrutinee, strings.Join(reasons, "; "))
}

// review accumulates diagnostics, deduplicating repeats of the same
// code at the same position.
type review struct {
	seen  map[string]bool
	diags []*diagnostics.Diagnostic
}

func newReview() *review {
	return &review{seen: make(map[string]bool)}
}

func (r *review) add(d *diagnostics.Diagnostic) {
	key := fmt.Sprintf("%d:%d:%s", d.Pos.Line, d.Pos.Column, d.Code)
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	r.diags = append(r.diags, d)
}

// reviewClauses walks a clause list in order. Reachability is tracked
// across the walk: once an unguarded clause always matches, every later
// clause is dead. Coverage is only judged for the outermost clause list,
// where the scrutinee type is actually declared; nested matches keep
// the structural checks but skip the exhaustiveness warning.
func (a *Analyzer) reviewClauses(pos token.Pos, clauses []*ast.MatchClause, scrutinee typesystem.Type, withCoverage bool, r *review) {
	shadowedFrom := -1
	for i, clause := range clauses {
		if err := ast.ValidateClause(clause); err != nil {
			r.add(diagnostics.New(diagnostics.ErrB001, err.Pos, err.Name))
		}
		a.checkPattern(clause.Pattern, r)
		if clause.Guard != nil {
			a.checkExpr(clause.Guard, r)
		}
		a.checkExpr(clause.Body, r)

		if shadowedFrom >= 0 {
			r.add(diagnostics.NewWarning(diagnostics.ErrA002, clause.Pos, i+1,
				fmt.Sprintf("clause %d already matches every value", shadowedFrom+1)))
		} else if clause.Guard == nil && alwaysMatches(clause.Pattern, scrutinee, a.symbolTable) {
			shadowedFrom = i
		}
	}
	if withCoverage {
		if d := a.CheckExhaustiveness(pos, clauses, scrutinee); d != nil {
			r.add(d)
		}
	}
}

func (a *Analyzer) checkPattern(p ast.Pattern, r *review) {
	switch p := p.(type) {
	case *ast.TypePattern:
		a.checkTypeKnown(p.Type, p.Pos, r)

	case *ast.ListPattern:
		for _, el := range p.Elements {
			a.checkPattern(el, r)
		}

	case *ast.RecordPattern:
		known := true
		if _, ok := a.symbolTable.Record(p.TypeName); !ok {
			r.add(diagnostics.New(diagnostics.ErrA003, p.Pos, p.TypeName))
			known = false
		}
		for _, entry := range p.Entries {
			if known {
				if _, ok := a.symbolTable.FieldType(p.TypeName, entry.Name); !ok {
					r.add(diagnostics.New(diagnostics.ErrA004, p.Pos, entry.Name, p.TypeName))
				}
			}
			a.checkPattern(entry.Pattern, r)
		}

	case *ast.QualifiedPattern:
		if _, ok := a.symbolTable.ResolveQualified(p.Path); !ok {
			r.add(diagnostics.New(diagnostics.ErrA005, p.Pos, strings.Join(p.Path, ".")))
		}

	case *ast.AlternationPattern:
		for _, alt := range p.Alternatives {
			a.checkPattern(alt, r)
		}
	}
}

func (a *Analyzer) checkTypeKnown(t typesystem.Type, pos token.Pos, r *review) {
	switch tt := t.(type) {
	case typesystem.TCon:
		if _, ok := a.symbolTable.TypeByName(tt.Name); !ok {
			r.add(diagnostics.New(diagnostics.ErrA003, pos, tt.Name))
		}
	case typesystem.TList:
		a.checkTypeKnown(tt.Element, pos, r)
	}
}

func (a *Analyzer) checkExpr(expr ast.Expression, r *review) {
	switch e := expr.(type) {
	case *ast.QualifiedRef:
		if _, ok := a.symbolTable.ResolveQualified(e.Path); !ok {
			r.add(diagnostics.New(diagnostics.ErrA005, e.Pos, strings.Join(e.Path, ".")))
		}
	case *ast.ListLiteral:
		for _, el := range e.Elements {
			a.checkExpr(el, r)
		}
	case *ast.PrefixExpression:
		a.checkExpr(e.Right, r)
	case *ast.InfixExpression:
		a.checkExpr(e.Left, r)
		a.checkExpr(e.Right, r)
	case *ast.MemberExpression:
		a.checkExpr(e.Object, r)
	case *ast.CallExpression:
		for _, arg := range e.Args {
			a.checkExpr(arg, r)
		}
	case *ast.MatchExpression:
		a.checkExpr(e.Scrutinee, r)
		a.reviewClauses(e.Pos, e.Clauses, typesystem.Any, false, r)
	}
}
