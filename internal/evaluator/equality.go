package evaluator

// Equals reports whether two runtime values are equal. Integers and
// floats compare by numeric value, so 1 equals 1.0. Every other
// cross-kind comparison is false rather than an error. Lists and
// records compare structurally; enum members compare by enum and
// member name.
func Equals(a, b Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case *Null:
		_, ok := b.(*Null)
		return ok
	case *Boolean:
		bv, ok := b.(*Boolean)
		return ok && av.Value == bv.Value
	case *Integer:
		switch bv := b.(type) {
		case *Integer:
			return av.Value == bv.Value
		case *Float:
			return float64(av.Value) == bv.Value
		}
		return false
	case *Float:
		switch bv := b.(type) {
		case *Integer:
			return av.Value == float64(bv.Value)
		case *Float:
			return av.Value == bv.Value
		}
		return false
	case *String:
		bv, ok := b.(*String)
		return ok && av.Value == bv.Value
	case *Symbol:
		bv, ok := b.(*Symbol)
		return ok && av.Name == bv.Name
	case *List:
		bv, ok := b.(*List)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i, el := range av.Elements {
			if !Equals(el, bv.Elements[i]) {
				return false
			}
		}
		return true
	case *RecordInstance:
		bv, ok := b.(*RecordInstance)
		if !ok || av.TypeName != bv.TypeName || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for _, f := range av.Fields {
			other, ok := bv.Get(f.Key)
			if !ok || !Equals(f.Value, other) {
				return false
			}
		}
		return true
	case *EnumMember:
		bv, ok := b.(*EnumMember)
		return ok && av.Enum == bv.Enum && av.Name == bv.Name
	}
	return false
}
