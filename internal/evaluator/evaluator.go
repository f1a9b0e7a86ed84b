// Package evaluator implements the runtime half of the engine: the
// value model, pattern matching against live values and the ordered
// clause evaluation of match expressions.
//
// Faults inside expressions travel as *Error objects so evaluation can
// unwind without panics. The public entry points EvalMatch and
// EvalClauses translate them into Go errors at the boundary: a
// *MatchError when every clause refused the scrutinee, a *RuntimeError
// for anything that went wrong while computing a scrutinee, guard or
// body.
package evaluator

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/selva-lang/matchcore/internal/ast"
	"github.com/selva-lang/matchcore/internal/symbols"
	"github.com/selva-lang/matchcore/internal/token"
)

type Evaluator struct {
	Out io.Writer

	symbols  *symbols.SymbolTable
	builtins map[string]*Builtin

	// evalDepth guards against runaway recursion through guards and
	// bodies that contain further match expressions.
	evalDepth int
}

func New(table *symbols.SymbolTable) *Evaluator {
	return &Evaluator{
		Out:      os.Stdout,
		symbols:  table,
		builtins: Builtins,
	}
}

// Symbols exposes the table the evaluator resolves qualified paths and
// subtype questions against.
func (e *Evaluator) Symbols() *symbols.SymbolTable { return e.symbols }

// Clone creates a copy for use in a goroutine. The symbol table and
// builtins are shared; the recursion counter is per clone, so each
// goroutine needs its own.
func (e *Evaluator) Clone() *Evaluator {
	return &Evaluator{
		Out:      e.Out,
		symbols:  e.symbols,
		builtins: e.builtins,
	}
}

const maxEvalDepth = 10000

func (e *Evaluator) Eval(node ast.Node, env *Environment) Object {
	e.evalDepth++
	if e.evalDepth > maxEvalDepth {
		e.evalDepth--
		return newError("maximum recursion depth exceeded")
	}
	defer func() { e.evalDepth-- }()

	obj := e.evalCore(node, env)
	if err, ok := obj.(*Error); ok {
		if !err.Pos.IsValid() && node != nil {
			err.Pos = node.GetPos()
		}
	}
	return obj
}

func (e *Evaluator) evalCore(node ast.Node, env *Environment) Object {
	switch node := node.(type) {
	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}
	case *ast.FloatLiteral:
		return &Float{Value: node.Value}
	case *ast.StringLiteral:
		return &String{Value: node.Value}
	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(node.Value)
	case *ast.NullLiteral:
		return NULL
	case *ast.SymbolLiteral:
		return &Symbol{Name: node.Name}
	case *ast.Identifier:
		return e.evalIdentifier(node, env)
	case *ast.QualifiedRef:
		resolved, ok := e.symbols.ResolveQualified(node.Path)
		if !ok {
			return newErrorWithPos(node.Pos, "unresolved reference: %s", strings.Join(node.Path, "."))
		}
		return FromConstant(resolved)
	case *ast.ListLiteral:
		elements := e.evalExpressions(node.Elements, env)
		if len(elements) == 1 && isError(elements[0]) {
			return elements[0]
		}
		return &List{Elements: elements}
	case *ast.PrefixExpression:
		right := e.Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return e.evalPrefixExpression(node.Operator, right)
	case *ast.InfixExpression:
		return e.evalInfixExpression(node, env)
	case *ast.MemberExpression:
		return e.evalMemberExpression(node, env)
	case *ast.CallExpression:
		return e.evalCallExpression(node, env)
	case *ast.MatchExpression:
		result, err := e.EvalMatch(node, env)
		if err != nil {
			return faultObject(err, node.Pos)
		}
		return result
	}
	if node == nil {
		return newError("cannot evaluate nil node")
	}
	return newError("unknown node type: %T", node)
}

func (e *Evaluator) evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(node.Name); ok {
		return val
	}
	if builtin, ok := e.builtins[node.Name]; ok {
		return builtin
	}
	return newErrorWithPos(node.Pos, "identifier not found: %s", node.Name)
}

func (e *Evaluator) evalExpressions(exprs []ast.Expression, env *Environment) []Object {
	result := make([]Object, 0, len(exprs))
	for _, expr := range exprs {
		evaluated := e.Eval(expr, env)
		if isError(evaluated) {
			return []Object{evaluated}
		}
		result = append(result, evaluated)
	}
	return result
}

// MatchError reports that a match expression exhausted its clauses
// without any of them accepting the scrutinee.
type MatchError struct {
	Pos      token.Pos
	Value    string
	TypeName string
}

func (m *MatchError) Error() string {
	return fmt.Sprintf("no clause matched value %s of type %s", m.Value, m.TypeName)
}

// RuntimeError is a fault raised while evaluating a scrutinee, guard
// or clause body. It is distinct from MatchError: a fault aborts the
// match, it does not mean the clauses were exhausted.
type RuntimeError struct {
	Message string
	Pos     token.Pos
}

func (r *RuntimeError) Error() string { return r.Message }

// EvalMatch evaluates a whole match expression: the scrutinee first,
// then its clauses in order against the resulting value.
func (e *Evaluator) EvalMatch(m *ast.MatchExpression, env *Environment) (Object, error) {
	if env == nil {
		env = NewEnvironment()
	}
	scrutinee := e.Eval(m.Scrutinee, env)
	if err, ok := scrutinee.(*Error); ok {
		return nil, &RuntimeError{Message: err.Message, Pos: err.Pos}
	}
	return e.evalClausesAt(m.Pos, m.Clauses, scrutinee, env)
}

// EvalClauses runs an already evaluated scrutinee value through a
// clause list. env provides the names guards and bodies may reference
// beyond the pattern's own bindings; nil means an empty scope.
func (e *Evaluator) EvalClauses(clauses []*ast.MatchClause, value Object, env *Environment) (Object, error) {
	return e.evalClausesAt(token.NoPos, clauses, value, env)
}

func (e *Evaluator) evalClausesAt(pos token.Pos, clauses []*ast.MatchClause, value Object, env *Environment) (Object, error) {
	if env == nil {
		env = NewEnvironment()
	}
	result, matched := e.evalClauses(clauses, value, env)
	if !matched {
		return nil, &MatchError{
			Pos:      pos,
			Value:    value.Inspect(),
			TypeName: value.RuntimeType().String(),
		}
	}
	if err, ok := result.(*Error); ok {
		return nil, &RuntimeError{Message: err.Message, Pos: err.Pos}
	}
	return result, nil
}

// evalClauses walks the clauses top to bottom. A clause is taken when
// its pattern accepts the value and its guard, if present, evaluates
// to true. A guard that yields false or a non-boolean discards the
// clause's bindings and moves on; once a clause is taken there is no
// backtracking into later clauses. The bool result reports whether any
// clause was taken.
func (e *Evaluator) evalClauses(clauses []*ast.MatchClause, value Object, env *Environment) (Object, bool) {
	for _, clause := range clauses {
		bound, ok := e.Attempt(clause.Pattern, value)
		if !ok {
			continue
		}
		clauseEnv := NewEnclosedEnvironment(env)
		for name, v := range bound {
			clauseEnv.Set(name, v)
		}
		if clause.Guard != nil {
			guard := e.Eval(clause.Guard, clauseEnv)
			if isError(guard) {
				return guard, true
			}
			b, isBool := guard.(*Boolean)
			if !isBool || !b.Value {
				continue
			}
		}
		return e.Eval(clause.Body, clauseEnv), true
	}
	return nil, false
}

func faultObject(err error, pos token.Pos) *Error {
	switch f := err.(type) {
	case *RuntimeError:
		return &Error{Message: f.Message, Pos: f.Pos}
	case *MatchError:
		return &Error{Message: f.Error(), Pos: f.Pos}
	}
	return &Error{Message: err.Error(), Pos: pos}
}
