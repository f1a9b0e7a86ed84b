package typesystem

// Type is the static type surface the engine consumes. There is no inference
// here: types arrive fully formed from declarations (or from a runtime
// value's RuntimeType) and are compared structurally. The subtype relation
// needs declared parent edges and therefore lives on symbols.SymbolTable.
type Type interface {
	String() string
	Equal(other Type) bool
}

// TCon is a named nominal type: a primitive, an enum, or a record.
type TCon struct {
	Name string
}

func (t TCon) String() string { return t.Name }

func (t TCon) Equal(other Type) bool {
	o, ok := other.(TCon)
	return ok && o.Name == t.Name
}

// TList is the type of homogeneous lists.
type TList struct {
	Element Type
}

func (t TList) String() string { return "List[" + t.Element.String() + "]" }

func (t TList) Equal(other Type) bool {
	o, ok := other.(TList)
	return ok && t.Element.Equal(o.Element)
}

// Built-in nominal types. Num is the common supertype of Int and Float; Any
// sits above everything, including lists.
var (
	Any    = TCon{Name: "Any"}
	Null   = TCon{Name: "Null"}
	Bool   = TCon{Name: "Bool"}
	Int    = TCon{Name: "Int"}
	Float  = TCon{Name: "Float"}
	Num    = TCon{Name: "Num"}
	String = TCon{Name: "String"}
	Symbol = TCon{Name: "Symbol"}
)

// Builtins enumerates the predeclared nominal types by name.
var Builtins = map[string]TCon{
	Any.Name:    Any,
	Null.Name:   Null,
	Bool.Name:   Bool,
	Int.Name:    Int,
	Float.Name:  Float,
	Num.Name:    Num,
	String.Name: String,
	Symbol.Name: Symbol,
}

// IsAny reports whether t is the universal top type.
func IsAny(t Type) bool {
	return Any.Equal(t)
}
