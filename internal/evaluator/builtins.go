package evaluator

import (
	"fmt"
	"unicode/utf8"

	"github.com/selva-lang/matchcore/internal/config"
)

// Builtins are the host functions guards and bodies may call. The set
// is deliberately small: match semantics need predicates and
// inspection, not a standard library.
var Builtins = map[string]*Builtin{
	config.PrintFuncName: {
		Name: config.PrintFuncName,
		Fn: func(e *Evaluator, args ...Object) Object {
			for i, arg := range args {
				if i > 0 {
					_, _ = fmt.Fprint(e.Out, " ")
				}
				// Strings print raw, everything else via Inspect.
				if s, ok := arg.(*String); ok {
					_, _ = fmt.Fprint(e.Out, s.Value)
					continue
				}
				_, _ = fmt.Fprint(e.Out, arg.Inspect())
			}
			_, _ = fmt.Fprintln(e.Out)
			return NULL
		},
	},
	config.LenFuncName: {
		Name: config.LenFuncName,
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 1 {
				return newError("wrong number of arguments. got=%d, want=1", len(args))
			}
			switch arg := args[0].(type) {
			case *List:
				return &Integer{Value: int64(len(arg.Elements))}
			case *String:
				return &Integer{Value: int64(utf8.RuneCountInString(arg.Value))}
			}
			return newError("argument to len not supported, got %s", args[0].Type())
		},
	},
	config.TypeOfFuncName: {
		Name: config.TypeOfFuncName,
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 1 {
				return newError("wrong number of arguments. got=%d, want=1", len(args))
			}
			return &String{Value: args[0].RuntimeType().String()}
		},
	},
	config.AbsFuncName: {
		Name: config.AbsFuncName,
		Fn: func(e *Evaluator, args ...Object) Object {
			if len(args) != 1 {
				return newError("wrong number of arguments. got=%d, want=1", len(args))
			}
			switch arg := args[0].(type) {
			case *Integer:
				if arg.Value < 0 {
					return &Integer{Value: -arg.Value}
				}
				return arg
			case *Float:
				if arg.Value < 0 {
					return &Float{Value: -arg.Value}
				}
				return arg
			}
			return newError("argument to abs not supported, got %s", args[0].Type())
		},
	},
}
