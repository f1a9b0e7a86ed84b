// Package fixture decodes match documents: self-contained YAML files
// that declare types and constants, a set of named matches, and the
// cases to drive them with. The decoder builds real AST clauses and
// runtime values, reporting malformed structure as positioned F001
// diagnostics instead of failing on the first problem.
package fixture

import (
	"github.com/selva-lang/matchcore/internal/ast"
	"github.com/selva-lang/matchcore/internal/evaluator"
	"github.com/selva-lang/matchcore/internal/symbols"
	"github.com/selva-lang/matchcore/internal/token"
	"github.com/selva-lang/matchcore/internal/typesystem"
)

// Document is one decoded match document. Table carries every type and
// constant the document declared; Matches keep their file order.
type Document struct {
	Path    string
	Table   *symbols.SymbolTable
	Matches []*Match
}

// Match is a named clause list plus the cases that exercise it.
type Match struct {
	Name      string
	Pos       token.Pos
	Scrutinee typesystem.Type
	Clauses   []*ast.MatchClause
	Cases     []*Case
}

// Case feeds one value through the clauses. Either Want names the
// expected result, or WantMatchError expects clause exhaustion.
type Case struct {
	Pos            token.Pos
	Value          evaluator.Object
	Want           evaluator.Object
	WantMatchError bool
}

// Find returns the named match, if the document declares it.
func (d *Document) Find(name string) (*Match, bool) {
	for _, m := range d.Matches {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}
