package evaluator

import (
	"github.com/selva-lang/matchcore/internal/ast"
)

func (e *Evaluator) evalPrefixExpression(operator string, right Object) Object {
	switch operator {
	case "!":
		return e.evalBangOperatorExpression(right)
	case "-":
		if right.Type() == INTEGER_OBJ {
			value := right.(*Integer).Value
			return &Integer{Value: -value}
		} else if right.Type() == FLOAT_OBJ {
			value := right.(*Float).Value
			return &Float{Value: -value}
		}
		return newError("unknown operator: %s%s", operator, right.Type())
	default:
		return newError("unknown operator: %s%s", operator, right.Type())
	}
}

func (e *Evaluator) evalBangOperatorExpression(right Object) Object {
	if right.Type() == BOOLEAN_OBJ {
		return nativeBoolToBooleanObject(!right.(*Boolean).Value)
	}
	return newError("operator ! not supported for %s", right.Type())
}

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression, env *Environment) Object {
	// && and || short-circuit: the right operand only runs when the
	// left one did not already decide the result.
	if node.Operator == "&&" || node.Operator == "||" {
		left := e.Eval(node.Left, env)
		if isError(left) {
			return left
		}
		lb, ok := left.(*Boolean)
		if !ok {
			return newErrorWithPos(node.Pos, "unknown operator: %s %s ...", left.Type(), node.Operator)
		}
		if node.Operator == "&&" && !lb.Value {
			return FALSE
		}
		if node.Operator == "||" && lb.Value {
			return TRUE
		}
		right := e.Eval(node.Right, env)
		if isError(right) {
			return right
		}
		rb, ok := right.(*Boolean)
		if !ok {
			return newErrorWithPos(node.Pos, "unknown operator: %s %s %s", left.Type(), node.Operator, right.Type())
		}
		return nativeBoolToBooleanObject(rb.Value)
	}

	left := e.Eval(node.Left, env)
	if isError(left) {
		return left
	}
	right := e.Eval(node.Right, env)
	if isError(right) {
		return right
	}
	return e.applyInfixOperator(node.Operator, left, right)
}

func (e *Evaluator) applyInfixOperator(operator string, left, right Object) Object {
	switch operator {
	case "==":
		return nativeBoolToBooleanObject(Equals(left, right))
	case "!=":
		return nativeBoolToBooleanObject(!Equals(left, right))
	}

	switch {
	case left.Type() == INTEGER_OBJ && right.Type() == INTEGER_OBJ:
		return evalIntegerInfixExpression(operator, left.(*Integer), right.(*Integer))
	case isNumeric(left) && isNumeric(right):
		return evalFloatInfixExpression(operator, asFloat(left), asFloat(right))
	case left.Type() == STRING_OBJ && right.Type() == STRING_OBJ:
		return evalStringInfixExpression(operator, left.(*String), right.(*String))
	}
	return newError("unknown operator: %s %s %s", left.Type(), operator, right.Type())
}

func evalIntegerInfixExpression(operator string, left, right *Integer) Object {
	switch operator {
	case "+":
		return &Integer{Value: left.Value + right.Value}
	case "-":
		return &Integer{Value: left.Value - right.Value}
	case "*":
		return &Integer{Value: left.Value * right.Value}
	case "/":
		if right.Value == 0 {
			return newError("division by zero")
		}
		return &Integer{Value: left.Value / right.Value}
	case "%":
		if right.Value == 0 {
			return newError("division by zero")
		}
		return &Integer{Value: left.Value % right.Value}
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	}
	return newError("unknown operator: %s %s %s", left.Type(), operator, right.Type())
}

func evalFloatInfixExpression(operator string, left, right float64) Object {
	switch operator {
	case "+":
		return &Float{Value: left + right}
	case "-":
		return &Float{Value: left - right}
	case "*":
		return &Float{Value: left * right}
	case "/":
		if right == 0 {
			return newError("division by zero")
		}
		return &Float{Value: left / right}
	case "<":
		return nativeBoolToBooleanObject(left < right)
	case "<=":
		return nativeBoolToBooleanObject(left <= right)
	case ">":
		return nativeBoolToBooleanObject(left > right)
	case ">=":
		return nativeBoolToBooleanObject(left >= right)
	}
	return newError("unknown operator: FLOAT %s FLOAT", operator)
}

func evalStringInfixExpression(operator string, left, right *String) Object {
	switch operator {
	case "+":
		return &String{Value: left.Value + right.Value}
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	}
	return newError("unknown operator: %s %s %s", left.Type(), operator, right.Type())
}

func isNumeric(obj Object) bool {
	return obj.Type() == INTEGER_OBJ || obj.Type() == FLOAT_OBJ
}

func asFloat(obj Object) float64 {
	switch v := obj.(type) {
	case *Integer:
		return float64(v.Value)
	case *Float:
		return v.Value
	}
	return 0
}

func (e *Evaluator) evalMemberExpression(node *ast.MemberExpression, env *Environment) Object {
	obj := e.Eval(node.Object, env)
	if isError(obj) {
		return obj
	}
	rec, ok := obj.(*RecordInstance)
	if !ok {
		return newErrorWithPos(node.Pos, "no property %q on %s", node.Property, obj.Type())
	}
	field, ok := rec.Get(node.Property)
	if !ok {
		return newErrorWithPos(node.Pos, "record %s has no field %q", rec.TypeName, node.Property)
	}
	return field
}

func (e *Evaluator) evalCallExpression(node *ast.CallExpression, env *Environment) Object {
	builtin, ok := e.builtins[node.Function]
	if !ok {
		return newErrorWithPos(node.Pos, "unknown function: %s", node.Function)
	}
	args := e.evalExpressions(node.Args, env)
	if len(args) == 1 && isError(args[0]) {
		return args[0]
	}
	return builtin.Fn(e, args...)
}
