package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/selva-lang/matchcore/internal/token"
)

// Node is anything the engine can be handed by a front end. Nodes are built
// once and never mutated afterwards; evaluation and analysis only read them.
type Node interface {
	GetPos() token.Pos
	String() string
}

type Expression interface {
	Node
	expressionNode()
}

type Pattern interface {
	Node
	patternNode()
}

// DiscardName is the identifier that matches without introducing a binding.
// It may repeat freely inside one pattern.
const DiscardName = "_"

// Symbol is the payload of a symbol literal. Symbols compare by name.
type Symbol string

// FormatLiteral renders a literal payload (nil, bool, int64, float64,
// string, Symbol) the way diagnostics and pattern printers show it.
func FormatLiteral(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return strconv.Quote(val)
	case Symbol:
		return ":" + string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

type Identifier struct {
	Pos  token.Pos
	Name string
}

func (i *Identifier) expressionNode()   {}
func (i *Identifier) GetPos() token.Pos { return i.Pos }
func (i *Identifier) String() string    { return i.Name }

type IntegerLiteral struct {
	Pos   token.Pos
	Value int64
}

func (l *IntegerLiteral) expressionNode()   {}
func (l *IntegerLiteral) GetPos() token.Pos { return l.Pos }
func (l *IntegerLiteral) String() string    { return strconv.FormatInt(l.Value, 10) }

type FloatLiteral struct {
	Pos   token.Pos
	Value float64
}

func (l *FloatLiteral) expressionNode()   {}
func (l *FloatLiteral) GetPos() token.Pos { return l.Pos }
func (l *FloatLiteral) String() string    { return strconv.FormatFloat(l.Value, 'g', -1, 64) }

type StringLiteral struct {
	Pos   token.Pos
	Value string
}

func (l *StringLiteral) expressionNode()   {}
func (l *StringLiteral) GetPos() token.Pos { return l.Pos }
func (l *StringLiteral) String() string    { return strconv.Quote(l.Value) }

type BooleanLiteral struct {
	Pos   token.Pos
	Value bool
}

func (l *BooleanLiteral) expressionNode()   {}
func (l *BooleanLiteral) GetPos() token.Pos { return l.Pos }
func (l *BooleanLiteral) String() string    { return strconv.FormatBool(l.Value) }

type NullLiteral struct {
	Pos token.Pos
}

func (l *NullLiteral) expressionNode()   {}
func (l *NullLiteral) GetPos() token.Pos { return l.Pos }
func (l *NullLiteral) String() string    { return "null" }

type SymbolLiteral struct {
	Pos  token.Pos
	Name string
}

func (l *SymbolLiteral) expressionNode()   {}
func (l *SymbolLiteral) GetPos() token.Pos { return l.Pos }
func (l *SymbolLiteral) String() string    { return ":" + l.Name }

type ListLiteral struct {
	Pos      token.Pos
	Elements []Expression
}

func (l *ListLiteral) expressionNode()   {}
func (l *ListLiteral) GetPos() token.Pos { return l.Pos }
func (l *ListLiteral) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// QualifiedRef is a dotted reference to an enum member or declared constant,
// e.g. Color.RED or Limits.MAX.
type QualifiedRef struct {
	Pos  token.Pos
	Path []string
}

func (q *QualifiedRef) expressionNode()   {}
func (q *QualifiedRef) GetPos() token.Pos { return q.Pos }
func (q *QualifiedRef) String() string    { return strings.Join(q.Path, ".") }

type PrefixExpression struct {
	Pos      token.Pos
	Operator string
	Right    Expression
}

func (e *PrefixExpression) expressionNode()   {}
func (e *PrefixExpression) GetPos() token.Pos { return e.Pos }
func (e *PrefixExpression) String() string {
	return "(" + e.Operator + e.Right.String() + ")"
}

type InfixExpression struct {
	Pos      token.Pos
	Operator string
	Left     Expression
	Right    Expression
}

func (e *InfixExpression) expressionNode()   {}
func (e *InfixExpression) GetPos() token.Pos { return e.Pos }
func (e *InfixExpression) String() string {
	return "(" + e.Left.String() + " " + e.Operator + " " + e.Right.String() + ")"
}

// MemberExpression reads a named property off a record value.
type MemberExpression struct {
	Pos      token.Pos
	Object   Expression
	Property string
}

func (e *MemberExpression) expressionNode()   {}
func (e *MemberExpression) GetPos() token.Pos { return e.Pos }
func (e *MemberExpression) String() string {
	return e.Object.String() + "." + e.Property
}

// CallExpression invokes a host builtin by name. The engine's expression
// surface has no user-defined functions; anything richer is the host's job.
type CallExpression struct {
	Pos      token.Pos
	Function string
	Args     []Expression
}

func (e *CallExpression) expressionNode()   {}
func (e *CallExpression) GetPos() token.Pos { return e.Pos }
func (e *CallExpression) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return e.Function + "(" + strings.Join(parts, ", ") + ")"
}

// MatchClause is one pattern plus optional guard plus body. Build clauses
// with NewMatchClause so duplicate-binding validation runs exactly once, at
// construction.
type MatchClause struct {
	Pos     token.Pos
	Pattern Pattern
	Guard   Expression
	Body    Expression
}

func (c *MatchClause) GetPos() token.Pos { return c.Pos }
func (c *MatchClause) String() string {
	s := c.Pattern.String()
	if c.Guard != nil {
		s += " if " + c.Guard.String()
	}
	return s + " => " + c.Body.String()
}

// NewMatchClause validates the pattern's bindings before the clause can ever
// be evaluated. The returned error is a *DuplicateBindingError when the
// pattern binds one name at two structural positions.
func NewMatchClause(pos token.Pos, pattern Pattern, guard Expression, body Expression) (*MatchClause, error) {
	if pattern == nil {
		return nil, fmt.Errorf("match clause needs a pattern")
	}
	if body == nil {
		return nil, fmt.Errorf("match clause needs a body")
	}
	clause := &MatchClause{Pos: pos, Pattern: pattern, Guard: guard, Body: body}
	if err := ValidateClause(clause); err != nil {
		return nil, err
	}
	return clause, nil
}

// MatchExpression is an expression itself, so matches nest inside clause
// bodies. Clause order is semantic: earlier clauses shadow later ones.
type MatchExpression struct {
	Pos       token.Pos
	Scrutinee Expression
	Clauses   []*MatchClause
}

func (m *MatchExpression) expressionNode()   {}
func (m *MatchExpression) GetPos() token.Pos { return m.Pos }
func (m *MatchExpression) String() string {
	parts := make([]string, len(m.Clauses))
	for i, c := range m.Clauses {
		parts[i] = c.String()
	}
	return "match " + m.Scrutinee.String() + " { " + strings.Join(parts, "; ") + " }"
}
