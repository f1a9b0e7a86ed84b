package fixture

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/selva-lang/matchcore/internal/ast"
	"github.com/selva-lang/matchcore/internal/evaluator"
	"github.com/selva-lang/matchcore/internal/token"
)

// scalar decodes one scalar node into a literal payload. The accepted
// tags mirror what literal patterns may carry; !sym lifts a name into a
// symbol.
func (d *decoder) scalar(n *yaml.Node) (interface{}, bool) {
	if n.Kind != yaml.ScalarNode {
		d.errf(posOf(n), "expected a scalar")
		return nil, false
	}
	switch n.Tag {
	case "!!null":
		return nil, true
	case "!!bool":
		var v bool
		if err := n.Decode(&v); err != nil {
			d.errf(posOf(n), "%s", err)
			return nil, false
		}
		return v, true
	case "!!int":
		var v int64
		if err := n.Decode(&v); err != nil {
			d.errf(posOf(n), "%s", err)
			return nil, false
		}
		return v, true
	case "!!float":
		var v float64
		if err := n.Decode(&v); err != nil {
			d.errf(posOf(n), "%s", err)
			return nil, false
		}
		return v, true
	case "!!str":
		return n.Value, true
	case "!sym":
		return ast.Symbol(n.Value), true
	}
	d.errf(posOf(n), "unsupported scalar tag %s", n.Tag)
	return nil, false
}

func (d *decoder) stringAt(n *yaml.Node, key string) (string, bool) {
	if n.Kind != yaml.ScalarNode || n.Tag != "!!str" || n.Value == "" {
		d.errf(posOf(n), "%s must be a name", key)
		return "", false
	}
	return n.Value, true
}

func (d *decoder) mapKeys(n *yaml.Node) map[string]*yaml.Node {
	m := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		m[n.Content[i].Value] = n.Content[i+1]
	}
	return m
}

func (d *decoder) qualifiedPath(n *yaml.Node) ([]string, bool) {
	s, ok := d.stringAt(n, "path")
	if !ok {
		return nil, false
	}
	path := strings.Split(s, ".")
	if len(path) < 2 {
		d.errf(posOf(n), "path %q must be qualified, like Color.RED", s)
		return nil, false
	}
	for _, seg := range path {
		if seg == "" {
			d.errf(posOf(n), "path %q has an empty segment", s)
			return nil, false
		}
	}
	return path, true
}

// pattern decodes one pattern node. A scalar is a literal, except the
// bare discard name; every other form is a mapping dispatched on its
// distinguishing key.
func (d *decoder) pattern(n *yaml.Node) (ast.Pattern, bool) {
	pos := posOf(n)
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!str" && n.Value == ast.DiscardName {
			return &ast.IdentifierPattern{Pos: pos, Name: ast.DiscardName}, true
		}
		v, ok := d.scalar(n)
		if !ok {
			return nil, false
		}
		return &ast.LiteralPattern{Pos: pos, Value: v}, true
	case yaml.MappingNode:
		keys := d.mapKeys(n)
		switch {
		case keys["record"] != nil:
			return d.recordPattern(keys, pos)
		case keys["type"] != nil:
			return d.typePattern(keys, pos)
		case keys["range"] != nil:
			return d.rangePattern(keys["range"], pos)
		case keys["list"] != nil:
			return d.listPattern(keys, pos)
		case keys["path"] != nil:
			return d.pathPattern(keys["path"], pos)
		case keys["any"] != nil:
			return d.anyPattern(keys["any"], pos)
		case keys["bind"] != nil:
			name, ok := d.stringAt(keys["bind"], "bind")
			if !ok {
				return nil, false
			}
			return &ast.IdentifierPattern{Pos: pos, Name: name}, true
		}
	}
	d.errf(pos, "pattern form not recognized")
	return nil, false
}

func (d *decoder) typePattern(keys map[string]*yaml.Node, pos token.Pos) (ast.Pattern, bool) {
	name, ok := d.stringAt(keys["type"], "type")
	if !ok {
		return nil, false
	}
	bind := ast.DiscardName
	if b := keys["bind"]; b != nil {
		if bind, ok = d.stringAt(b, "bind"); !ok {
			return nil, false
		}
	}
	t, _ := d.resolveType(name)
	return &ast.TypePattern{Pos: pos, Name: bind, Type: t}, true
}

func (d *decoder) rangePattern(n *yaml.Node, pos token.Pos) (ast.Pattern, bool) {
	if n.Kind != yaml.SequenceNode || len(n.Content) != 2 {
		d.errf(posOf(n), "range takes exactly two bounds")
		return nil, false
	}
	low, ok := d.scalar(n.Content[0])
	if !ok {
		return nil, false
	}
	high, ok := d.scalar(n.Content[1])
	if !ok {
		return nil, false
	}
	p, err := ast.NewRangePattern(pos, low, high)
	if err != nil {
		d.addErr(err, pos)
		return nil, false
	}
	return p, true
}

func (d *decoder) listPattern(keys map[string]*yaml.Node, pos token.Pos) (ast.Pattern, bool) {
	seq := keys["list"]
	if seq.Kind != yaml.SequenceNode {
		d.errf(posOf(seq), "list takes a sequence of element patterns")
		return nil, false
	}
	elements := make([]ast.Pattern, 0, len(seq.Content))
	for _, el := range seq.Content {
		p, ok := d.pattern(el)
		if !ok {
			return nil, false
		}
		elements = append(elements, p)
	}
	rest := false
	if r := keys["rest"]; r != nil {
		if err := r.Decode(&rest); err != nil {
			d.errf(posOf(r), "rest must be a boolean")
			return nil, false
		}
	}
	return &ast.ListPattern{Pos: pos, Elements: elements, HasRest: rest}, true
}

func (d *decoder) recordPattern(keys map[string]*yaml.Node, pos token.Pos) (ast.Pattern, bool) {
	typeName, ok := d.stringAt(keys["record"], "record")
	if !ok {
		return nil, false
	}
	var entries []*ast.RecordEntry
	if seq := keys["entries"]; seq != nil {
		if seq.Kind != yaml.SequenceNode {
			d.errf(posOf(seq), "entries takes a sequence")
			return nil, false
		}
		for _, en := range seq.Content {
			entry, ok := d.recordEntry(en)
			if !ok {
				return nil, false
			}
			entries = append(entries, entry)
		}
	}
	p, err := ast.NewRecordPattern(pos, typeName, entries)
	if err != nil {
		d.addErr(err, pos)
		return nil, false
	}
	return p, true
}

// recordEntry reads the long {name, pattern} form or the one-key
// shorthand {x: <pattern>}. Both come off the mapping node's content
// directly, so document order survives into the pattern.
func (d *decoder) recordEntry(n *yaml.Node) (*ast.RecordEntry, bool) {
	if n.Kind != yaml.MappingNode || len(n.Content) < 2 {
		d.errf(posOf(n), "record entry must be a mapping")
		return nil, false
	}
	keys := d.mapKeys(n)
	if len(n.Content) == 4 && keys["name"] != nil && keys["pattern"] != nil {
		name, ok := d.stringAt(keys["name"], "name")
		if !ok {
			return nil, false
		}
		p, ok := d.pattern(keys["pattern"])
		if !ok {
			return nil, false
		}
		return &ast.RecordEntry{Name: name, Pattern: p}, true
	}
	if len(n.Content) == 2 {
		p, ok := d.pattern(n.Content[1])
		if !ok {
			return nil, false
		}
		return &ast.RecordEntry{Name: n.Content[0].Value, Pattern: p}, true
	}
	d.errf(posOf(n), "record entry must be {name, pattern} or one field-to-pattern key")
	return nil, false
}

func (d *decoder) pathPattern(n *yaml.Node, pos token.Pos) (ast.Pattern, bool) {
	path, ok := d.qualifiedPath(n)
	if !ok {
		return nil, false
	}
	return &ast.QualifiedPattern{Pos: pos, Path: path}, true
}

func (d *decoder) anyPattern(n *yaml.Node, pos token.Pos) (ast.Pattern, bool) {
	if n.Kind != yaml.SequenceNode {
		d.errf(posOf(n), "any takes a sequence of alternatives")
		return nil, false
	}
	alternatives := make([]ast.Pattern, 0, len(n.Content))
	for _, el := range n.Content {
		p, ok := d.pattern(el)
		if !ok {
			return nil, false
		}
		alternatives = append(alternatives, p)
	}
	p, err := ast.NewAlternationPattern(pos, alternatives)
	if err != nil {
		d.addErr(err, pos)
		return nil, false
	}
	return p, true
}

// value decodes a case's scrutinee or expected result straight to a
// runtime object. Values are data only; expressions are not allowed
// here.
func (d *decoder) value(n *yaml.Node) (evaluator.Object, bool) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!enum" {
			path := strings.Split(n.Value, ".")
			if len(path) != 2 || path[0] == "" || path[1] == "" {
				d.errf(posOf(n), "enum value %q must be Enum.MEMBER", n.Value)
				return nil, false
			}
			ref, ok := d.table.ResolveQualified(path)
			if !ok {
				d.errf(posOf(n), "unknown enum member %s", n.Value)
				return nil, false
			}
			return evaluator.FromConstant(ref), true
		}
		v, ok := d.scalar(n)
		if !ok {
			return nil, false
		}
		return evaluator.FromLiteral(v), true
	case yaml.SequenceNode:
		elements := make([]evaluator.Object, 0, len(n.Content))
		for _, el := range n.Content {
			v, ok := d.value(el)
			if !ok {
				return nil, false
			}
			elements = append(elements, v)
		}
		return &evaluator.List{Elements: elements}, true
	case yaml.MappingNode:
		return d.recordValue(n)
	}
	d.errf(posOf(n), "value form not recognized")
	return nil, false
}

// recordValue builds a record instance from {$record: T, field: value, ...}.
// The $record key must come first; the remaining keys become fields in
// document order.
func (d *decoder) recordValue(n *yaml.Node) (evaluator.Object, bool) {
	if len(n.Content) < 2 || n.Content[0].Value != "$record" {
		d.errf(posOf(n), "record value must lead with $record")
		return nil, false
	}
	typeName, ok := d.stringAt(n.Content[1], "$record")
	if !ok {
		return nil, false
	}
	rec := &evaluator.RecordInstance{TypeName: typeName}
	for i := 2; i+1 < len(n.Content); i += 2 {
		v, ok := d.value(n.Content[i+1])
		if !ok {
			return nil, false
		}
		rec.Fields = append(rec.Fields, evaluator.RecordField{Key: n.Content[i].Value, Value: v})
	}
	return rec, true
}

// expr decodes a guard or body expression. A scalar is a literal, a
// sequence is a list literal, and mappings dispatch on their form key.
// References must be explicit: a bare string is always a string
// literal, never an identifier.
func (d *decoder) expr(n *yaml.Node) (ast.Expression, bool) {
	pos := posOf(n)
	switch n.Kind {
	case yaml.ScalarNode:
		return d.scalarExpr(n)
	case yaml.SequenceNode:
		elements := make([]ast.Expression, 0, len(n.Content))
		for _, el := range n.Content {
			e, ok := d.expr(el)
			if !ok {
				return nil, false
			}
			elements = append(elements, e)
		}
		return &ast.ListLiteral{Pos: pos, Elements: elements}, true
	case yaml.MappingNode:
		keys := d.mapKeys(n)
		switch {
		case keys["ref"] != nil:
			name, ok := d.stringAt(keys["ref"], "ref")
			if !ok {
				return nil, false
			}
			return &ast.Identifier{Pos: pos, Name: name}, true
		case keys["path"] != nil:
			path, ok := d.qualifiedPath(keys["path"])
			if !ok {
				return nil, false
			}
			return &ast.QualifiedRef{Pos: pos, Path: path}, true
		case keys["op"] != nil:
			return d.opExpr(keys, pos)
		case keys["member"] != nil:
			return d.memberExpr(keys, pos)
		case keys["call"] != nil:
			return d.callExpr(keys, pos)
		case keys["match"] != nil:
			return d.matchExpr(keys["match"], pos)
		}
	}
	d.errf(pos, "expression form not recognized")
	return nil, false
}

func (d *decoder) scalarExpr(n *yaml.Node) (ast.Expression, bool) {
	pos := posOf(n)
	v, ok := d.scalar(n)
	if !ok {
		return nil, false
	}
	switch val := v.(type) {
	case nil:
		return &ast.NullLiteral{Pos: pos}, true
	case bool:
		return &ast.BooleanLiteral{Pos: pos, Value: val}, true
	case int64:
		return &ast.IntegerLiteral{Pos: pos, Value: val}, true
	case float64:
		return &ast.FloatLiteral{Pos: pos, Value: val}, true
	case string:
		return &ast.StringLiteral{Pos: pos, Value: val}, true
	case ast.Symbol:
		return &ast.SymbolLiteral{Pos: pos, Name: string(val)}, true
	}
	d.errf(pos, "expression form not recognized")
	return nil, false
}

func (d *decoder) opExpr(keys map[string]*yaml.Node, pos token.Pos) (ast.Expression, bool) {
	op, ok := d.stringAt(keys["op"], "op")
	if !ok {
		return nil, false
	}
	if operand := keys["operand"]; operand != nil {
		right, ok := d.expr(operand)
		if !ok {
			return nil, false
		}
		return &ast.PrefixExpression{Pos: pos, Operator: op, Right: right}, true
	}
	if keys["left"] == nil || keys["right"] == nil {
		d.errf(pos, "op %q needs left and right, or operand", op)
		return nil, false
	}
	left, ok := d.expr(keys["left"])
	if !ok {
		return nil, false
	}
	right, ok := d.expr(keys["right"])
	if !ok {
		return nil, false
	}
	return &ast.InfixExpression{Pos: pos, Operator: op, Left: left, Right: right}, true
}

func (d *decoder) memberExpr(keys map[string]*yaml.Node, pos token.Pos) (ast.Expression, bool) {
	property, ok := d.stringAt(keys["member"], "member")
	if !ok {
		return nil, false
	}
	of := keys["of"]
	if of == nil {
		d.errf(pos, "member needs an of expression")
		return nil, false
	}
	object, ok := d.expr(of)
	if !ok {
		return nil, false
	}
	return &ast.MemberExpression{Pos: pos, Object: object, Property: property}, true
}

func (d *decoder) callExpr(keys map[string]*yaml.Node, pos token.Pos) (ast.Expression, bool) {
	fn, ok := d.stringAt(keys["call"], "call")
	if !ok {
		return nil, false
	}
	var args []ast.Expression
	if seq := keys["args"]; seq != nil {
		if seq.Kind != yaml.SequenceNode {
			d.errf(posOf(seq), "args takes a sequence")
			return nil, false
		}
		for _, el := range seq.Content {
			e, ok := d.expr(el)
			if !ok {
				return nil, false
			}
			args = append(args, e)
		}
	}
	return &ast.CallExpression{Pos: pos, Function: fn, Args: args}, true
}

func (d *decoder) matchExpr(n *yaml.Node, pos token.Pos) (ast.Expression, bool) {
	var inner struct {
		On      yaml.Node    `yaml:"on"`
		Clauses []clauseDecl `yaml:"clauses"`
	}
	if err := n.Decode(&inner); err != nil {
		d.errf(posOf(n), "%s", err)
		return nil, false
	}
	if inner.On.IsZero() {
		d.errf(posOf(n), "nested match needs an on expression")
		return nil, false
	}
	scrutinee, ok := d.expr(&inner.On)
	if !ok {
		return nil, false
	}
	var clauses []*ast.MatchClause
	for i := range inner.Clauses {
		if c := d.clause(&inner.Clauses[i]); c != nil {
			clauses = append(clauses, c)
		}
	}
	if len(clauses) == 0 {
		d.errf(pos, "nested match has no clauses")
		return nil, false
	}
	return &ast.MatchExpression{Pos: pos, Scrutinee: scrutinee, Clauses: clauses}, true
}
