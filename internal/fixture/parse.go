package fixture

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/selva-lang/matchcore/internal/ast"
	"github.com/selva-lang/matchcore/internal/diagnostics"
	"github.com/selva-lang/matchcore/internal/symbols"
	"github.com/selva-lang/matchcore/internal/token"
	"github.com/selva-lang/matchcore/internal/typesystem"
)

// fileDoc mirrors the document layout. Pattern, guard, body, value and
// want stay raw yaml.Node values: their shape is polymorphic and the
// decoder walks them by hand to keep positions.
type fileDoc struct {
	Types   typesSection `yaml:"types"`
	Consts  []constDecl  `yaml:"consts"`
	Matches []matchDecl  `yaml:"matches"`
}

type typesSection struct {
	Enums   []enumDecl   `yaml:"enums"`
	Records []recordDecl `yaml:"records"`
}

type enumDecl struct {
	Name    string      `yaml:"name"`
	Members []yaml.Node `yaml:"members"`

	line, column int
}

func (e *enumDecl) UnmarshalYAML(node *yaml.Node) error {
	type plain enumDecl
	if err := node.Decode((*plain)(e)); err != nil {
		return err
	}
	e.line, e.column = node.Line, node.Column
	return nil
}

type recordDecl struct {
	Name   string      `yaml:"name"`
	Parent string      `yaml:"parent"`
	Fields []fieldDecl `yaml:"fields"`

	line, column int
}

func (r *recordDecl) UnmarshalYAML(node *yaml.Node) error {
	type plain recordDecl
	if err := node.Decode((*plain)(r)); err != nil {
		return err
	}
	r.line, r.column = node.Line, node.Column
	return nil
}

type fieldDecl struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type constDecl struct {
	Path  string    `yaml:"path"`
	Value yaml.Node `yaml:"value"`

	line, column int
}

func (c *constDecl) UnmarshalYAML(node *yaml.Node) error {
	type plain constDecl
	if err := node.Decode((*plain)(c)); err != nil {
		return err
	}
	c.line, c.column = node.Line, node.Column
	return nil
}

type matchDecl struct {
	Name      string       `yaml:"name"`
	Scrutinee string       `yaml:"scrutinee"`
	Clauses   []clauseDecl `yaml:"clauses"`
	Cases     []caseDecl   `yaml:"cases"`

	line, column int
}

func (m *matchDecl) UnmarshalYAML(node *yaml.Node) error {
	type plain matchDecl
	if err := node.Decode((*plain)(m)); err != nil {
		return err
	}
	m.line, m.column = node.Line, node.Column
	return nil
}

type clauseDecl struct {
	Pattern yaml.Node `yaml:"pattern"`
	Guard   yaml.Node `yaml:"guard"`
	Body    yaml.Node `yaml:"body"`

	line, column int
}

func (c *clauseDecl) UnmarshalYAML(node *yaml.Node) error {
	type plain clauseDecl
	if err := node.Decode((*plain)(c)); err != nil {
		return err
	}
	c.line, c.column = node.Line, node.Column
	return nil
}

type caseDecl struct {
	Value     yaml.Node `yaml:"value"`
	Want      yaml.Node `yaml:"want"`
	WantError string    `yaml:"want_error"`

	line, column int
}

func (c *caseDecl) UnmarshalYAML(node *yaml.Node) error {
	type plain caseDecl
	if err := node.Decode((*plain)(c)); err != nil {
		return err
	}
	c.line, c.column = node.Line, node.Column
	return nil
}

// Parse decodes a match document. The path only labels the result; the
// source is not read from disk here. Decoding pushes through as many
// declarations as it can, so the document comes back with whatever
// decoded cleanly alongside the diagnostics for the rest. A document
// that failed YAML parsing entirely comes back nil.
func Parse(source []byte, path string) (*Document, []*diagnostics.Diagnostic) {
	var f fileDoc
	if err := yaml.Unmarshal(source, &f); err != nil {
		return nil, []*diagnostics.Diagnostic{
			diagnostics.New(diagnostics.ErrF001, token.NoPos, err.Error()),
		}
	}

	d := &decoder{table: symbols.NewSymbolTable()}
	d.defineEnums(f.Types.Enums)
	d.defineRecords(f.Types.Records)
	d.defineConsts(f.Consts)

	doc := &Document{Path: path, Table: d.table}
	seen := make(map[string]bool)
	for i := range f.Matches {
		m := d.match(&f.Matches[i])
		if m == nil {
			continue
		}
		if seen[m.Name] {
			d.errf(m.Pos, "match %q is declared twice", m.Name)
			continue
		}
		seen[m.Name] = true
		doc.Matches = append(doc.Matches, m)
	}
	return doc, d.diags
}

type decoder struct {
	table *symbols.SymbolTable
	diags []*diagnostics.Diagnostic
}

func (d *decoder) errf(pos token.Pos, format string, args ...interface{}) {
	d.diags = append(d.diags, diagnostics.New(diagnostics.ErrF001, pos, fmt.Sprintf(format, args...)))
}

// addErr files an error raised by an AST constructor. Coded diagnostics
// and binder failures keep their own identity; anything else becomes a
// document error.
func (d *decoder) addErr(err error, pos token.Pos) {
	var diag *diagnostics.Diagnostic
	if errors.As(err, &diag) {
		d.diags = append(d.diags, diag)
		return
	}
	var dup *ast.DuplicateBindingError
	if errors.As(err, &dup) {
		p := dup.Pos
		if !p.IsValid() {
			p = pos
		}
		d.diags = append(d.diags, diagnostics.New(diagnostics.ErrB001, p, dup.Name))
		return
	}
	d.errf(pos, "%s", err)
}

func posOf(n *yaml.Node) token.Pos {
	return token.Pos{Line: n.Line, Column: n.Column}
}

func (d *decoder) defineEnums(decls []enumDecl) {
	for i := range decls {
		decl := &decls[i]
		pos := token.Pos{Line: decl.line, Column: decl.column}
		members := make([]symbols.EnumMember, 0, len(decl.Members))
		ok := true
		for j := range decl.Members {
			m, valid := d.enumMember(&decl.Members[j])
			if !valid {
				ok = false
				continue
			}
			members = append(members, m)
		}
		if !ok {
			continue
		}
		if err := d.table.DefineEnum(decl.Name, members); err != nil {
			d.errf(pos, "%s", err)
		}
	}
}

func (d *decoder) enumMember(n *yaml.Node) (symbols.EnumMember, bool) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag != "!!str" || n.Value == "" {
			d.errf(posOf(n), "enum member must be a name")
			return symbols.EnumMember{}, false
		}
		return symbols.EnumMember{Name: n.Value}, true
	case yaml.MappingNode:
		var m struct {
			Name  string    `yaml:"name"`
			Value yaml.Node `yaml:"value"`
		}
		if err := n.Decode(&m); err != nil {
			d.errf(posOf(n), "%s", err)
			return symbols.EnumMember{}, false
		}
		if m.Name == "" {
			d.errf(posOf(n), "enum member must be named")
			return symbols.EnumMember{}, false
		}
		if m.Value.IsZero() {
			return symbols.EnumMember{Name: m.Name}, true
		}
		payload, ok := d.scalar(&m.Value)
		if !ok {
			return symbols.EnumMember{}, false
		}
		return symbols.EnumMember{Name: m.Name, Value: payload}, true
	}
	d.errf(posOf(n), "enum member must be a name or a name/value mapping")
	return symbols.EnumMember{}, false
}

func (d *decoder) defineRecords(decls []recordDecl) {
	for i := range decls {
		decl := &decls[i]
		pos := token.Pos{Line: decl.line, Column: decl.column}
		fields := make([]symbols.RecordField, 0, len(decl.Fields))
		for _, f := range decl.Fields {
			fields = append(fields, symbols.RecordField{Name: f.Name, Type: d.parseType(f.Type, pos)})
		}
		if err := d.table.DefineRecord(decl.Name, decl.Parent, fields); err != nil {
			d.errf(pos, "%s", err)
		}
	}
}

func (d *decoder) defineConsts(decls []constDecl) {
	for i := range decls {
		decl := &decls[i]
		pos := token.Pos{Line: decl.line, Column: decl.column}
		path := strings.Split(decl.Path, ".")
		if len(path) < 2 || path[0] == "" || path[len(path)-1] == "" {
			d.errf(pos, "constant path %q must be qualified, like Limits.MAX", decl.Path)
			continue
		}
		value, ok := d.scalar(&decl.Value)
		if !ok {
			continue
		}
		if err := d.table.DefineConstant(path, value); err != nil {
			d.errf(pos, "%s", err)
		}
	}
}

// parseType resolves a declared type name, with List[T] nesting. An
// unknown name is a document error, but the name still flows on as an
// opaque type so dependent declarations keep decoding.
func (d *decoder) parseType(name string, pos token.Pos) typesystem.Type {
	t, ok := d.resolveType(name)
	if !ok {
		d.errf(pos, "unknown type %q", strings.TrimSpace(name))
	}
	return t
}

// resolveType is parseType without the diagnostic. Type names inside
// patterns come through here: the analyzer owns unknown-type findings
// for patterns, and an opaque type is enough for it to work with.
func (d *decoder) resolveType(name string) (typesystem.Type, bool) {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "List[") && strings.HasSuffix(name, "]") {
		inner, ok := d.resolveType(name[len("List[") : len(name)-1])
		return typesystem.TList{Element: inner}, ok
	}
	if t, ok := d.table.TypeByName(name); ok {
		return t, true
	}
	return typesystem.TCon{Name: name}, false
}

func (d *decoder) match(decl *matchDecl) *Match {
	pos := token.Pos{Line: decl.line, Column: decl.column}
	if decl.Name == "" {
		d.errf(pos, "match needs a name")
		return nil
	}
	if decl.Scrutinee == "" {
		d.errf(pos, "match %q needs a scrutinee type", decl.Name)
		return nil
	}
	m := &Match{
		Name:      decl.Name,
		Pos:       pos,
		Scrutinee: d.parseType(decl.Scrutinee, pos),
	}
	if len(decl.Clauses) == 0 {
		d.errf(pos, "match %q has no clauses", decl.Name)
		return nil
	}
	for i := range decl.Clauses {
		if clause := d.clause(&decl.Clauses[i]); clause != nil {
			m.Clauses = append(m.Clauses, clause)
		}
	}
	for i := range decl.Cases {
		if c := d.caseOf(&decl.Cases[i]); c != nil {
			m.Cases = append(m.Cases, c)
		}
	}
	return m
}

func (d *decoder) clause(decl *clauseDecl) *ast.MatchClause {
	pos := token.Pos{Line: decl.line, Column: decl.column}
	if decl.Pattern.IsZero() {
		d.errf(pos, "clause is missing a pattern")
		return nil
	}
	if decl.Body.IsZero() {
		d.errf(pos, "clause is missing a body")
		return nil
	}
	pattern, ok := d.pattern(&decl.Pattern)
	if !ok {
		return nil
	}
	body, ok := d.expr(&decl.Body)
	if !ok {
		return nil
	}
	var guard ast.Expression
	if !decl.Guard.IsZero() {
		if guard, ok = d.expr(&decl.Guard); !ok {
			return nil
		}
	}
	clause, err := ast.NewMatchClause(pos, pattern, guard, body)
	if err != nil {
		d.addErr(err, posOf(&decl.Pattern))
		return nil
	}
	return clause
}

func (d *decoder) caseOf(decl *caseDecl) *Case {
	pos := token.Pos{Line: decl.line, Column: decl.column}
	if decl.Value.IsZero() {
		d.errf(pos, "case is missing a value")
		return nil
	}
	value, ok := d.value(&decl.Value)
	if !ok {
		return nil
	}
	c := &Case{Pos: pos, Value: value}
	switch {
	case decl.WantError == "match":
		if !decl.Want.IsZero() {
			d.errf(pos, "case cannot expect both a result and a match error")
			return nil
		}
		c.WantMatchError = true
	case decl.WantError != "":
		d.errf(pos, "unknown want_error %q, only \"match\" is supported", decl.WantError)
		return nil
	case decl.Want.IsZero():
		d.errf(pos, "case needs either want or want_error")
		return nil
	default:
		if c.Want, ok = d.value(&decl.Want); !ok {
			return nil
		}
	}
	return c
}
