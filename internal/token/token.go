package token

import "fmt"

// Pos is a source position reported by whichever front end produced the AST
// (the Selva parser, or the fixture decoder for YAML documents). The engine
// never derives positions itself; it only carries them into diagnostics and
// runtime errors.
type Pos struct {
	Line   int
	Column int
}

// NoPos is the zero position, used for nodes built programmatically.
var NoPos = Pos{}

func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
