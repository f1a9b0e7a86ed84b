package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/selva-lang/matchcore/internal/ast"
	"github.com/selva-lang/matchcore/internal/symbols"
	"github.com/selva-lang/matchcore/internal/token"
	"github.com/selva-lang/matchcore/internal/typesystem"
)

type ObjectType string

const (
	NULL_OBJ        = "NULL"
	BOOLEAN_OBJ     = "BOOLEAN"
	INTEGER_OBJ     = "INTEGER"
	FLOAT_OBJ       = "FLOAT"
	STRING_OBJ      = "STRING"
	SYMBOL_OBJ      = "SYMBOL"
	LIST_OBJ        = "LIST"
	RECORD_OBJ      = "RECORD"
	ENUM_MEMBER_OBJ = "ENUM_MEMBER"
	ERROR_OBJ       = "ERROR"
	BUILTIN_OBJ     = "BUILTIN"
)

// Object is the runtime representation of every value the engine can
// inspect. RuntimeType reports the most specific type a value inhabits;
// subtype questions go through the symbol table.
type Object interface {
	Type() ObjectType
	Inspect() string
	RuntimeType() typesystem.Type
}

type Null struct{}

func (n *Null) Type() ObjectType             { return NULL_OBJ }
func (n *Null) Inspect() string              { return "null" }
func (n *Null) RuntimeType() typesystem.Type { return typesystem.Null }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType             { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string              { return strconv.FormatBool(b.Value) }
func (b *Boolean) RuntimeType() typesystem.Type { return typesystem.Bool }

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType             { return INTEGER_OBJ }
func (i *Integer) Inspect() string              { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) RuntimeType() typesystem.Type { return typesystem.Int }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType             { return FLOAT_OBJ }
func (f *Float) Inspect() string              { return strconv.FormatFloat(f.Value, 'g', -1, 64) }
func (f *Float) RuntimeType() typesystem.Type { return typesystem.Float }

type String struct {
	Value string
}

func (s *String) Type() ObjectType             { return STRING_OBJ }
func (s *String) Inspect() string              { return strconv.Quote(s.Value) }
func (s *String) RuntimeType() typesystem.Type { return typesystem.String }

type Symbol struct {
	Name string
}

func (s *Symbol) Type() ObjectType             { return SYMBOL_OBJ }
func (s *Symbol) Inspect() string              { return ":" + s.Name }
func (s *Symbol) RuntimeType() typesystem.Type { return typesystem.Symbol }

type List struct {
	Elements []Object
}

func (l *List) Type() ObjectType { return LIST_OBJ }

func (l *List) Inspect() string {
	var out strings.Builder
	out.WriteString("[")
	for i, el := range l.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(el.Inspect())
	}
	out.WriteString("]")
	return out.String()
}

// RuntimeType is List[T] when every element inhabits the same type T,
// otherwise List[Any]. An empty list is List[Any].
func (l *List) RuntimeType() typesystem.Type {
	if len(l.Elements) == 0 {
		return typesystem.TList{Element: typesystem.Any}
	}
	elem := l.Elements[0].RuntimeType()
	for _, el := range l.Elements[1:] {
		if !elem.Equal(el.RuntimeType()) {
			return typesystem.TList{Element: typesystem.Any}
		}
	}
	return typesystem.TList{Element: elem}
}

// RecordField is one named property of a record instance. Fields keep
// their declaration order so Inspect output is stable.
type RecordField struct {
	Key   string
	Value Object
}

type RecordInstance struct {
	TypeName string
	Fields   []RecordField
}

func (r *RecordInstance) Type() ObjectType { return RECORD_OBJ }

func (r *RecordInstance) Inspect() string {
	var out strings.Builder
	out.WriteString(r.TypeName)
	out.WriteString("{")
	for i, f := range r.Fields {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(f.Key)
		out.WriteString(": ")
		out.WriteString(f.Value.Inspect())
	}
	out.WriteString("}")
	return out.String()
}

func (r *RecordInstance) RuntimeType() typesystem.Type {
	return typesystem.TCon{Name: r.TypeName}
}

// Get returns the value of the named field, reporting whether the
// instance carries it at all.
func (r *RecordInstance) Get(name string) (Object, bool) {
	for _, f := range r.Fields {
		if f.Key == name {
			return f.Value, true
		}
	}
	return nil, false
}

// EnumMember is the runtime value of an enum member that carries no
// payload. Members declared with a payload evaluate to the payload
// value itself and never appear as EnumMember objects.
type EnumMember struct {
	Enum string
	Name string
}

func (m *EnumMember) Type() ObjectType { return ENUM_MEMBER_OBJ }
func (m *EnumMember) Inspect() string  { return m.Enum + "." + m.Name }
func (m *EnumMember) RuntimeType() typesystem.Type {
	return typesystem.TCon{Name: m.Enum}
}

type BuiltinFunction func(e *Evaluator, args ...Object) Object

type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType             { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string              { return "builtin function " + b.Name }
func (b *Builtin) RuntimeType() typesystem.Type { return typesystem.Any }

type Error struct {
	Message string
	Pos     token.Pos
}

func (e *Error) Type() ObjectType             { return ERROR_OBJ }
func (e *Error) RuntimeType() typesystem.Type { return typesystem.Any }

func (e *Error) Inspect() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("ERROR: %s (line %d, column %d)", e.Message, e.Pos.Line, e.Pos.Column)
	}
	return "ERROR: " + e.Message
}

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

func newError(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

func newErrorWithPos(pos token.Pos, format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Pos: pos}
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

// FromLiteral lifts a plain Go literal into its runtime object. The
// accepted kinds mirror what literal patterns may carry: nil, bool,
// int64, float64, string and symbol names.
func FromLiteral(v interface{}) Object {
	switch val := v.(type) {
	case nil:
		return NULL
	case bool:
		return nativeBoolToBooleanObject(val)
	case int64:
		return &Integer{Value: val}
	case int:
		return &Integer{Value: int64(val)}
	case float64:
		return &Float{Value: val}
	case string:
		return &String{Value: val}
	case ast.Symbol:
		return &Symbol{Name: string(val)}
	case Object:
		return val
	default:
		return newError("unsupported literal of type %T", v)
	}
}

// FromConstant lifts a value resolved from the symbol table. Enum
// references become either the member's payload or an EnumMember
// object when the member carries none.
func FromConstant(v interface{}) Object {
	if ref, ok := v.(symbols.EnumRef); ok {
		if ref.Payload == nil {
			return &EnumMember{Enum: ref.Enum, Name: ref.Member}
		}
		return FromLiteral(ref.Payload)
	}
	return FromLiteral(v)
}
