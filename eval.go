package twee

import "fmt"

// Eval walks an Expression tree against the VM's variable store, returning
// the Value it denotes. Logical Or/And short-circuit here, at evaluation
// time, not at parse time (§4.4, §8 scenario 4): the parser always builds a
// full binary node, and it is this function's job not to touch Right when
// short-circuiting applies.
func (vm *VM) Eval(e Expression) (Value, error) {
	switch e.Kind {
	case ExprInt:
		return Int(e.IntVal), nil
	case ExprBool:
		return Bool(e.BoolVal), nil
	case ExprString:
		return StringVal(e.StrVal), nil
	case ExprVariable:
		// Missing variable -> empty string, not an error (§4.4).
		if v, ok := vm.vars[e.VarName]; ok {
			return v, nil
		}
		return StringVal(""), nil
	case ExprFunctionCall:
		return vm.evalCall(e)
	case ExprUnary:
		return vm.evalUnary(e)
	case ExprBinary:
		return vm.evalBinary(e)
	}
	return Value{}, fmt.Errorf("unhandled expression kind %d", e.Kind)
}

func (vm *VM) evalCall(e Expression) (Value, error) {
	fn, ok := builtins[e.FuncName]
	if !ok {
		return Value{}, fmt.Errorf("unknown function %q", e.FuncName)
	}
	args := make([]Value, len(e.Args))
	for i, a := range e.Args {
		v, err := vm.Eval(a)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	return fn(vm, args)
}

func (vm *VM) evalUnary(e Expression) (Value, error) {
	operand, err := vm.Eval(*e.Operand)
	if err != nil {
		return Value{}, err
	}
	switch e.UnOp {
	case UnaryLogicalNot:
		return Bool(!operand.AsBool()), nil
	case UnaryNegate:
		return Int(-operand.AsInt()), nil
	}
	return Value{}, fmt.Errorf("unhandled unary operator %d", e.UnOp)
}

func (vm *VM) evalBinary(e Expression) (Value, error) {
	// Or/And short-circuit: the right side is only evaluated when it can
	// change the result.
	if e.BinOp == BinOr || e.BinOp == BinAnd {
		left, err := vm.Eval(*e.Left)
		if err != nil {
			return Value{}, err
		}
		lb := left.AsBool()
		if e.BinOp == BinOr && lb {
			return Bool(true), nil
		}
		if e.BinOp == BinAnd && !lb {
			return Bool(false), nil
		}
		right, err := vm.Eval(*e.Right)
		if err != nil {
			return Value{}, err
		}
		return Bool(right.AsBool()), nil
	}

	left, err := vm.Eval(*e.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := vm.Eval(*e.Right)
	if err != nil {
		return Value{}, err
	}

	switch e.BinOp {
	case BinEq:
		return Bool(valuesEqual(left, right)), nil
	case BinNotEq:
		return Bool(!valuesEqual(left, right)), nil
	case BinLt, BinGt, BinLe, BinGe:
		if left.Kind != ValInt || right.Kind != ValInt {
			return Value{}, fmt.Errorf("comparison requires int operands, got %s and %s", left.TypeName(), right.TypeName())
		}
		a, b := left.I, right.I
		switch e.BinOp {
		case BinLt:
			return Bool(a < b), nil
		case BinGt:
			return Bool(a > b), nil
		case BinLe:
			return Bool(a <= b), nil
		default:
			return Bool(a >= b), nil
		}
	case BinAdd, BinSub, BinMul, BinDiv, BinRem:
		a, b := left.AsInt(), right.AsInt()
		switch e.BinOp {
		case BinAdd:
			return Int(a + b), nil
		case BinSub:
			return Int(a - b), nil
		case BinMul:
			return Int(a * b), nil
		case BinDiv:
			if b == 0 {
				return Value{}, fmt.Errorf("division by zero")
			}
			return Int(a / b), nil
		default:
			if b == 0 {
				return Value{}, fmt.Errorf("division by zero")
			}
			return Int(a % b), nil
		}
	}
	return Value{}, fmt.Errorf("unhandled binary operator %d", e.BinOp)
}

// valuesEqual implements == / != for Eq/NotEq (§4.4, §7: "comparisons of
// mismatched types" is a documented error class for ordering operators, but
// equality itself must still answer something for any pair of values — two
// values of different kinds are simply unequal rather than a type error).
func valuesEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ValInt:
		return a.I == b.I
	case ValBool:
		return a.B == b.B
	case ValString:
		return a.S == b.S
	}
	return false
}
