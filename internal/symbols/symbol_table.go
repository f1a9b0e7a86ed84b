package symbols

import (
	"fmt"
	"strings"
	"sync"

	"github.com/selva-lang/matchcore/internal/typesystem"
)

// EnumMember is one declared member of an enum. Value is the optional
// literal payload; members without a payload are opaque runtime values
// distinguishable only by enum and name.
type EnumMember struct {
	Name  string
	Value interface{}
}

type EnumDecl struct {
	Name    string
	Members []EnumMember
}

// Member finds a declared member by name.
func (d *EnumDecl) Member(name string) (EnumMember, bool) {
	for _, m := range d.Members {
		if m.Name == name {
			return m, true
		}
	}
	return EnumMember{}, false
}

type RecordField struct {
	Name string
	Type typesystem.Type
}

type RecordDecl struct {
	Name   string
	Parent string
	Fields []RecordField
}

// EnumRef is what ResolveQualified yields for an enum member: enough for the
// evaluator to build the runtime value and for the checker to track coverage.
type EnumRef struct {
	Enum    string
	Member  string
	Payload interface{}
}

// SymbolTable holds the types and constants a match program can reference.
// Population happens up front (declarations are ordered, parents first);
// reads may come from concurrent evaluations, hence the lock.
type SymbolTable struct {
	mu      sync.RWMutex
	enums   map[string]*EnumDecl
	records map[string]*RecordDecl
	consts  map[string]interface{}
	parents map[string]string
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		enums:   make(map[string]*EnumDecl),
		records: make(map[string]*RecordDecl),
		consts:  make(map[string]interface{}),
		parents: map[string]string{
			typesystem.Int.Name:   typesystem.Num.Name,
			typesystem.Float.Name: typesystem.Num.Name,
		},
	}
}

func (st *SymbolTable) DefineEnum(name string, members []EnumMember) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.checkFreshName(name); err != nil {
		return err
	}
	if len(members) == 0 {
		return fmt.Errorf("enum %s needs at least one member", name)
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if seen[m.Name] {
			return fmt.Errorf("enum %s declares member %s twice", name, m.Name)
		}
		seen[m.Name] = true
	}
	decl := &EnumDecl{Name: name, Members: make([]EnumMember, len(members))}
	copy(decl.Members, members)
	st.enums[name] = decl
	return nil
}

func (st *SymbolTable) DefineRecord(name, parent string, fields []RecordField) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.checkFreshName(name); err != nil {
		return err
	}
	if parent != "" {
		if _, ok := st.records[parent]; !ok {
			return fmt.Errorf("record %s extends undeclared record %s", name, parent)
		}
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			return fmt.Errorf("record %s declares field %s twice", name, f.Name)
		}
		seen[f.Name] = true
	}
	decl := &RecordDecl{Name: name, Parent: parent, Fields: make([]RecordField, len(fields))}
	copy(decl.Fields, fields)
	st.records[name] = decl
	if parent != "" {
		st.parents[name] = parent
	}
	return nil
}

func (st *SymbolTable) DefineConstant(path []string, value interface{}) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if len(path) == 0 {
		return fmt.Errorf("constant needs a non-empty path")
	}
	key := strings.Join(path, ".")
	if _, ok := st.consts[key]; ok {
		return fmt.Errorf("constant %s declared twice", key)
	}
	st.consts[key] = value
	return nil
}

func (st *SymbolTable) checkFreshName(name string) error {
	if name == "" {
		return fmt.Errorf("type needs a non-empty name")
	}
	if _, ok := typesystem.Builtins[name]; ok {
		return fmt.Errorf("cannot redeclare built-in type %s", name)
	}
	if _, ok := st.enums[name]; ok {
		return fmt.Errorf("type %s declared twice", name)
	}
	if _, ok := st.records[name]; ok {
		return fmt.Errorf("type %s declared twice", name)
	}
	return nil
}

func (st *SymbolTable) Enum(name string) (*EnumDecl, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	d, ok := st.enums[name]
	return d, ok
}

func (st *SymbolTable) Record(name string) (*RecordDecl, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	d, ok := st.records[name]
	return d, ok
}

// TypeByName resolves a type name to its nominal type: built-ins first, then
// declared enums and records.
func (st *SymbolTable) TypeByName(name string) (typesystem.Type, bool) {
	if t, ok := typesystem.Builtins[name]; ok {
		return t, true
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	if _, ok := st.enums[name]; ok {
		return typesystem.TCon{Name: name}, true
	}
	if _, ok := st.records[name]; ok {
		return typesystem.TCon{Name: name}, true
	}
	return nil, false
}

// ResolveQualified resolves a dotted path to an enum member or a declared
// constant. Two-segment paths try the enum namespace first.
func (st *SymbolTable) ResolveQualified(path []string) (interface{}, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	if len(path) == 2 {
		if decl, ok := st.enums[path[0]]; ok {
			if m, ok := decl.Member(path[1]); ok {
				return EnumRef{Enum: decl.Name, Member: m.Name, Payload: m.Value}, true
			}
			return nil, false
		}
	}
	v, ok := st.consts[strings.Join(path, ".")]
	return v, ok
}

// FieldType reports the declared type of a property, walking the record's
// parent chain. This is the "statically readable" rule the analyzer applies
// to record patterns.
func (st *SymbolTable) FieldType(typeName, field string) (typesystem.Type, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	for name := typeName; name != ""; {
		decl, ok := st.records[name]
		if !ok {
			return nil, false
		}
		for _, f := range decl.Fields {
			if f.Name == field {
				return f.Type, true
			}
		}
		name = decl.Parent
	}
	return nil, false
}

// IsSubtype reports sub <: super. The relation is reflexive, Any is the top
// type, Int and Float sit under Num, declared record parents chain upward,
// and lists are covariant in their element.
func (st *SymbolTable) IsSubtype(sub, super typesystem.Type) bool {
	if typesystem.IsAny(super) {
		return true
	}
	if sub.Equal(super) {
		return true
	}
	subCon, okSub := sub.(typesystem.TCon)
	superCon, okSuper := super.(typesystem.TCon)
	if okSub && okSuper {
		st.mu.RLock()
		defer st.mu.RUnlock()
		for name := subCon.Name; name != ""; name = st.parents[name] {
			if name == superCon.Name {
				return true
			}
		}
		return false
	}
	subList, okSub := sub.(typesystem.TList)
	superList, okSuper := super.(typesystem.TList)
	if okSub && okSuper {
		return st.IsSubtype(subList.Element, superList.Element)
	}
	return false
}
