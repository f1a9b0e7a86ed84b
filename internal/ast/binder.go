package ast

import (
	"fmt"
	"sort"

	"github.com/selva-lang/matchcore/internal/token"
)

// DuplicateBindingError reports one identifier bound at two structural
// positions within a single pattern. It is detected at clause construction;
// a clause carrying this defect is never evaluatable.
type DuplicateBindingError struct {
	Name string
	Pos  token.Pos
}

func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf("duplicate binding %q in pattern", e.Name)
}

// BindingNames returns the names a pattern introduces, sorted. DiscardName
// never appears. Alternation alternatives contribute their shared set (the
// union, which equals each alternative's set for validly constructed
// alternations).
func BindingNames(p Pattern) []string {
	set := make(map[string]bool)
	collectNames(p, set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectNames(p Pattern, set map[string]bool) {
	switch pat := p.(type) {
	case *IdentifierPattern:
		if pat.Name != DiscardName {
			set[pat.Name] = true
		}
	case *TypePattern:
		if pat.Name != DiscardName {
			set[pat.Name] = true
		}
	case *ListPattern:
		for _, e := range pat.Elements {
			collectNames(e, set)
		}
	case *RecordPattern:
		for _, e := range pat.Entries {
			collectNames(e.Pattern, set)
		}
	case *AlternationPattern:
		for _, alt := range pat.Alternatives {
			collectNames(alt, set)
		}
	}
}

// ValidatePattern rejects a pattern that introduces the same name twice.
// Repetition across alternation alternatives is the one allowed form: the
// alternatives are parallel worlds and must in fact agree on the name set
// (NewAlternationPattern enforces that part). Runs once per clause, at
// construction, never during evaluation.
func ValidatePattern(p Pattern) *DuplicateBindingError {
	c := &bindingCollector{names: make(map[string]token.Pos)}
	return c.collect(p)
}

// ValidateClause applies ValidatePattern to the clause's pattern.
func ValidateClause(clause *MatchClause) *DuplicateBindingError {
	if clause == nil || clause.Pattern == nil {
		return nil
	}
	return ValidatePattern(clause.Pattern)
}

func bindingPositions(p Pattern) (map[string]token.Pos, *DuplicateBindingError) {
	c := &bindingCollector{names: make(map[string]token.Pos)}
	if err := c.collect(p); err != nil {
		return nil, err
	}
	return c.names, nil
}

type bindingCollector struct {
	names map[string]token.Pos
}

func (c *bindingCollector) add(name string, pos token.Pos) *DuplicateBindingError {
	if name == DiscardName {
		return nil
	}
	if _, ok := c.names[name]; ok {
		return &DuplicateBindingError{Name: name, Pos: pos}
	}
	c.names[name] = pos
	return nil
}

func (c *bindingCollector) collect(p Pattern) *DuplicateBindingError {
	switch pat := p.(type) {
	case *IdentifierPattern:
		return c.add(pat.Name, pat.Pos)
	case *TypePattern:
		return c.add(pat.Name, pat.Pos)
	case *ListPattern:
		for _, e := range pat.Elements {
			if err := c.collect(e); err != nil {
				return err
			}
		}
	case *RecordPattern:
		for _, e := range pat.Entries {
			if err := c.collect(e.Pattern); err != nil {
				return err
			}
		}
	case *AlternationPattern:
		// Alternatives repeat names legally among themselves; their union
		// still collides with bindings outside the alternation.
		union := make(map[string]token.Pos)
		for _, alt := range pat.Alternatives {
			sub := &bindingCollector{names: make(map[string]token.Pos)}
			if err := sub.collect(alt); err != nil {
				return err
			}
			for name, pos := range sub.names {
				if _, ok := union[name]; !ok {
					union[name] = pos
				}
			}
		}
		for _, name := range sortedKeys(union) {
			if err := c.add(name, union[name]); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]token.Pos) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortNames(names []string) {
	sort.Strings(names)
}
