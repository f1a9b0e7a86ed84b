package evaluator

import (
	"testing"

	"github.com/selva-lang/matchcore/internal/ast"
	"github.com/selva-lang/matchcore/internal/symbols"
	"github.com/selva-lang/matchcore/internal/typesystem"
)

func testSymbols(t *testing.T) *symbols.SymbolTable {
	t.Helper()
	st := symbols.NewSymbolTable()
	if err := st.DefineEnum("Color", []symbols.EnumMember{{Name: "RED"}, {Name: "GREEN"}, {Name: "BLUE"}}); err != nil {
		t.Fatalf("DefineEnum: %v", err)
	}
	if err := st.DefineEnum("Code", []symbols.EnumMember{{Name: "OK", Value: int64(0)}, {Name: "FAIL", Value: int64(1)}}); err != nil {
		t.Fatalf("DefineEnum: %v", err)
	}
	if err := st.DefineRecord("Point", "", []symbols.RecordField{
		{Name: "x", Type: typesystem.Int},
		{Name: "y", Type: typesystem.Int},
	}); err != nil {
		t.Fatalf("DefineRecord: %v", err)
	}
	if err := st.DefineRecord("Point3", "Point", []symbols.RecordField{
		{Name: "z", Type: typesystem.Int},
	}); err != nil {
		t.Fatalf("DefineRecord: %v", err)
	}
	if err := st.DefineConstant([]string{"Limits", "MAX"}, int64(100)); err != nil {
		t.Fatalf("DefineConstant: %v", err)
	}
	return st
}

func testEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	return New(testSymbols(t))
}

func intList(values ...int64) *List {
	elements := make([]Object, len(values))
	for i, v := range values {
		elements[i] = &Integer{Value: v}
	}
	return &List{Elements: elements}
}

func point(x, y int64) *RecordInstance {
	return &RecordInstance{TypeName: "Point", Fields: []RecordField{
		{Key: "x", Value: &Integer{Value: x}},
		{Key: "y", Value: &Integer{Value: y}},
	}}
}

func TestAttemptLiteral(t *testing.T) {
	e := testEvaluator(t)

	tests := []struct {
		name    string
		literal interface{}
		value   Object
		want    bool
	}{
		{"int equal", int64(1), &Integer{Value: 1}, true},
		{"int unequal", int64(1), &Integer{Value: 2}, false},
		{"int literal against float value", int64(1), &Float{Value: 1.0}, true},
		{"float literal against int value", float64(2), &Integer{Value: 2}, true},
		{"string equal", "one", &String{Value: "one"}, true},
		{"string against int", "1", &Integer{Value: 1}, false},
		{"bool", true, TRUE, true},
		{"null", nil, NULL, true},
		{"null against zero", nil, &Integer{Value: 0}, false},
		{"symbol", ast.Symbol("ok"), &Symbol{Name: "ok"}, true},
		{"symbol against string", ast.Symbol("ok"), &String{Value: "ok"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pat := &ast.LiteralPattern{Value: tt.literal}
			bound, ok := e.Attempt(pat, tt.value)
			if ok != tt.want {
				t.Errorf("Attempt(%s, %s) = %v, want %v", pat.String(), tt.value.Inspect(), ok, tt.want)
			}
			if ok && len(bound) != 0 {
				t.Errorf("literal pattern bound %d names, want none", len(bound))
			}
		})
	}
}

func TestAttemptIdentifier(t *testing.T) {
	e := testEvaluator(t)

	bound, ok := e.Attempt(&ast.IdentifierPattern{Name: "n"}, &Integer{Value: 7})
	if !ok {
		t.Fatalf("identifier pattern must match any value")
	}
	if got, ok := bound["n"]; !ok || !Equals(got, &Integer{Value: 7}) {
		t.Errorf("n bound to %v, want 7", got)
	}

	bound, ok = e.Attempt(&ast.IdentifierPattern{Name: ast.DiscardName}, &Integer{Value: 7})
	if !ok {
		t.Fatalf("discard must match any value")
	}
	if len(bound) != 0 {
		t.Errorf("discard bound %d names, want none", len(bound))
	}
}

func TestAttemptTypePattern(t *testing.T) {
	e := testEvaluator(t)

	tests := []struct {
		name  string
		typ   typesystem.Type
		value Object
		want  bool
	}{
		{"int is int", typesystem.Int, &Integer{Value: 3}, true},
		{"int is num", typesystem.Num, &Integer{Value: 3}, true},
		{"float is num", typesystem.Num, &Float{Value: 3.5}, true},
		{"int is any", typesystem.Any, &Integer{Value: 3}, true},
		{"string is not num", typesystem.Num, &String{Value: "3"}, false},
		{"float is not int", typesystem.Int, &Float{Value: 3.0}, false},
		{"point3 is point", typesystem.TCon{Name: "Point"}, &RecordInstance{TypeName: "Point3"}, true},
		{"point is not point3", typesystem.TCon{Name: "Point3"}, point(1, 2), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pat := &ast.TypePattern{Name: "v", Type: tt.typ}
			bound, ok := e.Attempt(pat, tt.value)
			if ok != tt.want {
				t.Fatalf("Attempt = %v, want %v", ok, tt.want)
			}
			if ok && !Equals(bound["v"], tt.value) {
				t.Errorf("v bound to %v, want the scrutinee", bound["v"])
			}
		})
	}
}

func TestAttemptRange(t *testing.T) {
	e := testEvaluator(t)

	tests := []struct {
		name   string
		lo, hi interface{}
		value  Object
		want   bool
	}{
		{"low bound inclusive", int64(1), int64(5), &Integer{Value: 1}, true},
		{"high bound inclusive", int64(1), int64(5), &Integer{Value: 5}, true},
		{"inside", int64(1), int64(5), &Integer{Value: 3}, true},
		{"below", int64(1), int64(5), &Integer{Value: 0}, false},
		{"above", int64(1), int64(5), &Integer{Value: 6}, false},
		{"float value in int bounds", int64(1), int64(5), &Float{Value: 2.5}, true},
		{"int value in float bounds", float64(0.5), float64(2.5), &Integer{Value: 2}, true},
		{"float bounds exclude", float64(0.5), float64(2.5), &Integer{Value: 3}, false},
		{"non-numeric value", int64(1), int64(5), &String{Value: "3"}, false},
		{"bool value", int64(0), int64(1), TRUE, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pat := &ast.RangePattern{Low: tt.lo, High: tt.hi}
			if _, ok := e.Attempt(pat, tt.value); ok != tt.want {
				t.Errorf("Attempt(%s, %s) = %v, want %v", pat.String(), tt.value.Inspect(), ok, tt.want)
			}
		})
	}
}

func TestAttemptList(t *testing.T) {
	e := testEvaluator(t)

	a := &ast.IdentifierPattern{Name: "a"}
	b := &ast.IdentifierPattern{Name: "b"}

	t.Run("exact arity binds in order", func(t *testing.T) {
		pat := &ast.ListPattern{Elements: []ast.Pattern{a, b}}
		bound, ok := e.Attempt(pat, intList(2, 5))
		if !ok {
			t.Fatalf("[a, b] must match [2, 5]")
		}
		if !Equals(bound["a"], &Integer{Value: 2}) || !Equals(bound["b"], &Integer{Value: 5}) {
			t.Errorf("bound a=%v b=%v, want a=2 b=5", bound["a"], bound["b"])
		}
	})

	t.Run("exact arity rejects longer value", func(t *testing.T) {
		pat := &ast.ListPattern{Elements: []ast.Pattern{a, b}}
		if _, ok := e.Attempt(pat, intList(2, 5, 9)); ok {
			t.Errorf("[a, b] must not match a three element list")
		}
	})

	t.Run("shorter value fails before any element is read", func(t *testing.T) {
		pat := &ast.ListPattern{Elements: []ast.Pattern{a, b, &ast.IdentifierPattern{Name: "c"}}}
		if _, ok := e.Attempt(pat, intList(1)); ok {
			t.Errorf("[a, b, c] must not match [1]")
		}
	})

	t.Run("rest accepts extra elements", func(t *testing.T) {
		pat := &ast.ListPattern{Elements: []ast.Pattern{a}, HasRest: true}
		bound, ok := e.Attempt(pat, intList(7, 8, 9))
		if !ok {
			t.Fatalf("[a, ...] must match [7, 8, 9]")
		}
		if !Equals(bound["a"], &Integer{Value: 7}) {
			t.Errorf("a bound to %v, want 7", bound["a"])
		}
	})

	t.Run("rest still requires the prefix", func(t *testing.T) {
		pat := &ast.ListPattern{Elements: []ast.Pattern{a, b}, HasRest: true}
		if _, ok := e.Attempt(pat, intList(1)); ok {
			t.Errorf("[a, b, ...] must not match [1]")
		}
	})

	t.Run("bare rest matches any list", func(t *testing.T) {
		pat := &ast.ListPattern{HasRest: true}
		if _, ok := e.Attempt(pat, intList()); !ok {
			t.Errorf("[...] must match []")
		}
		if _, ok := e.Attempt(pat, intList(1, 2, 3)); !ok {
			t.Errorf("[...] must match [1, 2, 3]")
		}
	})

	t.Run("empty pattern matches only empty list", func(t *testing.T) {
		pat := &ast.ListPattern{}
		if _, ok := e.Attempt(pat, intList()); !ok {
			t.Errorf("[] must match []")
		}
		if _, ok := e.Attempt(pat, intList(1)); ok {
			t.Errorf("[] must not match [1]")
		}
	})

	t.Run("non-list value fails", func(t *testing.T) {
		pat := &ast.ListPattern{Elements: []ast.Pattern{a}}
		if _, ok := e.Attempt(pat, &String{Value: "[1]"}); ok {
			t.Errorf("list pattern must not match a string")
		}
	})

	t.Run("nested patterns recurse", func(t *testing.T) {
		pat := &ast.ListPattern{Elements: []ast.Pattern{
			&ast.LiteralPattern{Value: int64(1)},
			&ast.ListPattern{Elements: []ast.Pattern{a}},
		}}
		value := &List{Elements: []Object{&Integer{Value: 1}, intList(2)}}
		bound, ok := e.Attempt(pat, value)
		if !ok {
			t.Fatalf("[1, [a]] must match [1, [2]]")
		}
		if !Equals(bound["a"], &Integer{Value: 2}) {
			t.Errorf("a bound to %v, want 2", bound["a"])
		}
	})
}

func TestAttemptRecord(t *testing.T) {
	e := testEvaluator(t)

	t.Run("entries bind by name", func(t *testing.T) {
		pat := &ast.RecordPattern{TypeName: "Point", Entries: []*ast.RecordEntry{
			{Name: "x", Pattern: &ast.IdentifierPattern{Name: "px"}},
			{Name: "y", Pattern: &ast.IdentifierPattern{Name: "py"}},
		}}
		bound, ok := e.Attempt(pat, point(3, 4))
		if !ok {
			t.Fatalf("Point{x: px, y: py} must match Point{x: 3, y: 4}")
		}
		if !Equals(bound["px"], &Integer{Value: 3}) || !Equals(bound["py"], &Integer{Value: 4}) {
			t.Errorf("bound px=%v py=%v, want 3 and 4", bound["px"], bound["py"])
		}
	})

	t.Run("subset of fields is enough", func(t *testing.T) {
		pat := &ast.RecordPattern{TypeName: "Point", Entries: []*ast.RecordEntry{
			{Name: "x", Pattern: &ast.LiteralPattern{Value: int64(3)}},
		}}
		if _, ok := e.Attempt(pat, point(3, 4)); !ok {
			t.Errorf("partial destructure must match")
		}
	})

	t.Run("entry pattern can refuse", func(t *testing.T) {
		pat := &ast.RecordPattern{TypeName: "Point", Entries: []*ast.RecordEntry{
			{Name: "x", Pattern: &ast.LiteralPattern{Value: int64(9)}},
		}}
		if _, ok := e.Attempt(pat, point(3, 4)); ok {
			t.Errorf("x: 9 must not match x=3")
		}
	})

	t.Run("subtype instance matches parent pattern", func(t *testing.T) {
		value := &RecordInstance{TypeName: "Point3", Fields: []RecordField{
			{Key: "x", Value: &Integer{Value: 1}},
			{Key: "y", Value: &Integer{Value: 2}},
			{Key: "z", Value: &Integer{Value: 3}},
		}}
		pat := &ast.RecordPattern{TypeName: "Point", Entries: []*ast.RecordEntry{
			{Name: "x", Pattern: &ast.IdentifierPattern{Name: "a"}},
		}}
		bound, ok := e.Attempt(pat, value)
		if !ok {
			t.Fatalf("Point pattern must accept a Point3 value")
		}
		if !Equals(bound["a"], &Integer{Value: 1}) {
			t.Errorf("a bound to %v, want 1", bound["a"])
		}
	})

	t.Run("parent instance does not match child pattern", func(t *testing.T) {
		pat := &ast.RecordPattern{TypeName: "Point3"}
		if _, ok := e.Attempt(pat, point(1, 2)); ok {
			t.Errorf("Point3 pattern must not accept a plain Point")
		}
	})

	t.Run("missing field is a failure, not a fault", func(t *testing.T) {
		value := &RecordInstance{TypeName: "Point", Fields: []RecordField{
			{Key: "x", Value: &Integer{Value: 1}},
		}}
		pat := &ast.RecordPattern{TypeName: "Point", Entries: []*ast.RecordEntry{
			{Name: "y", Pattern: &ast.IdentifierPattern{Name: "a"}},
		}}
		if _, ok := e.Attempt(pat, value); ok {
			t.Errorf("absent field must fail the match")
		}
	})

	t.Run("non-record value fails", func(t *testing.T) {
		pat := &ast.RecordPattern{TypeName: "Point"}
		if _, ok := e.Attempt(pat, &Integer{Value: 1}); ok {
			t.Errorf("record pattern must not match an integer")
		}
	})
}

func TestAttemptQualified(t *testing.T) {
	e := testEvaluator(t)

	t.Run("opaque enum member", func(t *testing.T) {
		pat := &ast.QualifiedPattern{Path: []string{"Color", "RED"}}
		if _, ok := e.Attempt(pat, &EnumMember{Enum: "Color", Name: "RED"}); !ok {
			t.Errorf("Color.RED must match its member value")
		}
		if _, ok := e.Attempt(pat, &EnumMember{Enum: "Color", Name: "BLUE"}); ok {
			t.Errorf("Color.RED must not match Color.BLUE")
		}
	})

	t.Run("payload member matches its payload", func(t *testing.T) {
		pat := &ast.QualifiedPattern{Path: []string{"Code", "FAIL"}}
		if _, ok := e.Attempt(pat, &Integer{Value: 1}); !ok {
			t.Errorf("Code.FAIL carries 1 and must match the integer 1")
		}
		if _, ok := e.Attempt(pat, &Integer{Value: 0}); ok {
			t.Errorf("Code.FAIL must not match 0")
		}
	})

	t.Run("constant", func(t *testing.T) {
		pat := &ast.QualifiedPattern{Path: []string{"Limits", "MAX"}}
		if _, ok := e.Attempt(pat, &Integer{Value: 100}); !ok {
			t.Errorf("Limits.MAX must match 100")
		}
	})

	t.Run("unresolved path is a failure", func(t *testing.T) {
		pat := &ast.QualifiedPattern{Path: []string{"Ghost", "VALUE"}}
		if _, ok := e.Attempt(pat, &Integer{Value: 1}); ok {
			t.Errorf("unresolved path must never match")
		}
	})
}

func TestAttemptAlternation(t *testing.T) {
	e := testEvaluator(t)

	t.Run("first hit wins", func(t *testing.T) {
		pat := &ast.AlternationPattern{Alternatives: []ast.Pattern{
			&ast.LiteralPattern{Value: int64(1)},
			&ast.LiteralPattern{Value: int64(2)},
			&ast.LiteralPattern{Value: int64(3)},
		}}
		for _, v := range []int64{1, 2, 3} {
			if _, ok := e.Attempt(pat, &Integer{Value: v}); !ok {
				t.Errorf("1 | 2 | 3 must match %d", v)
			}
		}
		if _, ok := e.Attempt(pat, &Integer{Value: 4}); ok {
			t.Errorf("1 | 2 | 3 must not match 4")
		}
	})

	t.Run("only the matching alternative binds", func(t *testing.T) {
		pat := &ast.AlternationPattern{Alternatives: []ast.Pattern{
			&ast.ListPattern{Elements: []ast.Pattern{
				&ast.LiteralPattern{Value: int64(0)},
				&ast.IdentifierPattern{Name: "n"},
			}},
			&ast.ListPattern{Elements: []ast.Pattern{
				&ast.IdentifierPattern{Name: "n"},
			}},
		}}
		bound, ok := e.Attempt(pat, intList(42))
		if !ok {
			t.Fatalf("second alternative must match [42]")
		}
		if !Equals(bound["n"], &Integer{Value: 42}) {
			t.Errorf("n bound to %v, want 42", bound["n"])
		}
	})

	t.Run("failed alternative leaves no bindings behind", func(t *testing.T) {
		// The first alternative binds a before refusing on the second
		// element; its partial bindings must not leak into the result.
		pat := &ast.AlternationPattern{Alternatives: []ast.Pattern{
			&ast.ListPattern{Elements: []ast.Pattern{
				&ast.IdentifierPattern{Name: "a"},
				&ast.LiteralPattern{Value: int64(99)},
				&ast.IdentifierPattern{Name: "b"},
			}},
			&ast.ListPattern{Elements: []ast.Pattern{
				&ast.IdentifierPattern{Name: "a"},
				&ast.IdentifierPattern{Name: "b"},
				&ast.IdentifierPattern{Name: "c"},
			}},
		}}
		bound, ok := e.Attempt(pat, intList(1, 2, 3))
		if !ok {
			t.Fatalf("second alternative must match [1, 2, 3]")
		}
		if len(bound) != 3 {
			t.Errorf("bound %d names %v, want exactly a, b, c", len(bound), bound)
		}
		if !Equals(bound["b"], &Integer{Value: 2}) {
			t.Errorf("b bound to %v, want 2 from the second alternative", bound["b"])
		}
	})
}
