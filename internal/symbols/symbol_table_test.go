package symbols

import (
	"testing"

	"github.com/selva-lang/matchcore/internal/typesystem"
)

func testTable(t *testing.T) *SymbolTable {
	t.Helper()
	st := NewSymbolTable()
	if err := st.DefineEnum("Color", []EnumMember{{Name: "RED"}, {Name: "GREEN"}, {Name: "BLUE"}}); err != nil {
		t.Fatalf("DefineEnum: %v", err)
	}
	if err := st.DefineEnum("Status", []EnumMember{{Name: "OK", Value: int64(0)}, {Name: "FAIL", Value: int64(1)}}); err != nil {
		t.Fatalf("DefineEnum: %v", err)
	}
	if err := st.DefineRecord("Point", "", []RecordField{
		{Name: "x", Type: typesystem.Int},
		{Name: "y", Type: typesystem.Int},
	}); err != nil {
		t.Fatalf("DefineRecord: %v", err)
	}
	if err := st.DefineRecord("Point3", "Point", []RecordField{
		{Name: "z", Type: typesystem.Int},
	}); err != nil {
		t.Fatalf("DefineRecord: %v", err)
	}
	if err := st.DefineConstant([]string{"Limits", "MAX"}, int64(100)); err != nil {
		t.Fatalf("DefineConstant: %v", err)
	}
	return st
}

func TestDefineRejectsBadDeclarations(t *testing.T) {
	st := testTable(t)

	if err := st.DefineEnum("Color", []EnumMember{{Name: "X"}}); err == nil {
		t.Errorf("redeclaring enum Color should fail")
	}
	if err := st.DefineEnum("Int", []EnumMember{{Name: "X"}}); err == nil {
		t.Errorf("shadowing built-in Int should fail")
	}
	if err := st.DefineEnum("Dup", []EnumMember{{Name: "A"}, {Name: "A"}}); err == nil {
		t.Errorf("duplicate member should fail")
	}
	if err := st.DefineRecord("Sub", "Missing", nil); err == nil {
		t.Errorf("undeclared parent should fail")
	}
	if err := st.DefineRecord("Bad", "", []RecordField{{Name: "a", Type: typesystem.Int}, {Name: "a", Type: typesystem.Int}}); err == nil {
		t.Errorf("duplicate field should fail")
	}
	if err := st.DefineConstant([]string{"Limits", "MAX"}, int64(1)); err == nil {
		t.Errorf("redeclaring constant should fail")
	}
}

func TestResolveQualified(t *testing.T) {
	st := testTable(t)

	v, ok := st.ResolveQualified([]string{"Color", "RED"})
	if !ok {
		t.Fatalf("Color.RED not resolved")
	}
	ref, ok := v.(EnumRef)
	if !ok || ref.Enum != "Color" || ref.Member != "RED" || ref.Payload != nil {
		t.Errorf("Color.RED = %#v, want opaque EnumRef", v)
	}

	v, ok = st.ResolveQualified([]string{"Status", "FAIL"})
	if !ok {
		t.Fatalf("Status.FAIL not resolved")
	}
	if ref := v.(EnumRef); ref.Payload != int64(1) {
		t.Errorf("Status.FAIL payload = %v, want 1", ref.Payload)
	}

	v, ok = st.ResolveQualified([]string{"Limits", "MAX"})
	if !ok || v != int64(100) {
		t.Errorf("Limits.MAX = %v, %v, want 100, true", v, ok)
	}

	if _, ok := st.ResolveQualified([]string{"Color", "MAGENTA"}); ok {
		t.Errorf("Color.MAGENTA should not resolve")
	}
	if _, ok := st.ResolveQualified([]string{"Nope"}); ok {
		t.Errorf("unknown single-segment path should not resolve")
	}
}

func TestFieldTypeWalksParents(t *testing.T) {
	st := testTable(t)

	tests := []struct {
		typeName, field string
		want            typesystem.Type
		ok              bool
	}{
		{"Point", "x", typesystem.Int, true},
		{"Point3", "z", typesystem.Int, true},
		{"Point3", "x", typesystem.Int, true},
		{"Point", "z", nil, false},
		{"Point", "nope", nil, false},
		{"Missing", "x", nil, false},
	}

	for _, tt := range tests {
		got, ok := st.FieldType(tt.typeName, tt.field)
		if ok != tt.ok {
			t.Errorf("FieldType(%s, %s) ok = %v, want %v", tt.typeName, tt.field, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("FieldType(%s, %s) = %s, want %s", tt.typeName, tt.field, got, tt.want)
		}
	}
}

func TestIsSubtype(t *testing.T) {
	st := testTable(t)

	point := typesystem.TCon{Name: "Point"}
	point3 := typesystem.TCon{Name: "Point3"}

	tests := []struct {
		name       string
		sub, super typesystem.Type
		want       bool
	}{
		{"reflexive", typesystem.Int, typesystem.Int, true},
		{"int num", typesystem.Int, typesystem.Num, true},
		{"float num", typesystem.Float, typesystem.Num, true},
		{"num not int", typesystem.Num, typesystem.Int, false},
		{"anything any", point3, typesystem.Any, true},
		{"list any", typesystem.TList{Element: typesystem.Int}, typesystem.Any, true},
		{"record parent", point3, point, true},
		{"record parent reversed", point, point3, false},
		{"list covariant", typesystem.TList{Element: typesystem.Int}, typesystem.TList{Element: typesystem.Num}, true},
		{"list not contravariant", typesystem.TList{Element: typesystem.Num}, typesystem.TList{Element: typesystem.Int}, false},
		{"unrelated", typesystem.String, typesystem.Num, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := st.IsSubtype(tt.sub, tt.super); got != tt.want {
				t.Errorf("IsSubtype(%s, %s) = %v, want %v", tt.sub, tt.super, got, tt.want)
			}
		})
	}
}
