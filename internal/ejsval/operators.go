package ejsval

import "math"

// defaultInvokeOperator implements the Helpers.InvokeOperator fallback
// for Object/Block: arithmetic and comparison over the primitive number
// representation, after CoerceOperands promotes mixed operands (§4.1).
// Subtypes such as Array (union/intersect/diff) or Path ("+") replace
// this entry entirely.
func defaultInvokeOperator(ejs *Dispatcher, lhs Var, op OperatorOp, rhs Var) (Var, error) {
	if op == OpLogicalNot {
		return NewPrimitive(lhs.Hdr().Type, !ToBool(ejs, lhs)), nil
	}

	l, r := lhs, rhs
	if rhs != nil {
		l, r = CoerceOperands(ejs, lhs, rhs)
	}

	if lp, ok := l.(*Primitive); ok {
		if s, ok := lp.Value.(string); ok {
			rs := ToStringValue(ejs, r)
			switch op {
			case OpAdd:
				return NewPrimitive(lp.Type, s+rs), nil
			case OpCmpEq, OpCmpStrictEq:
				return NewPrimitive(lp.Type, s == rs), nil
			case OpCmpNe, OpCmpStrictNe:
				return NewPrimitive(lp.Type, s != rs), nil
			case OpCmpLt:
				return NewPrimitive(lp.Type, s < rs), nil
			case OpCmpLe:
				return NewPrimitive(lp.Type, s <= rs), nil
			case OpCmpGt:
				return NewPrimitive(lp.Type, s > rs), nil
			case OpCmpGe:
				return NewPrimitive(lp.Type, s >= rs), nil
			}
			return nil, fnErr("TypeError: operator not defined for String")
		}
	}

	a := ToNumber(ejs, l)
	var b float64
	if r != nil {
		b = ToNumber(ejs, r)
	}
	t := lhs.Hdr().Type
	switch op {
	case OpAdd:
		return NewPrimitive(t, a+b), nil
	case OpSub:
		return NewPrimitive(t, a-b), nil
	case OpMul:
		return NewPrimitive(t, a*b), nil
	case OpDiv:
		if b == 0 {
			return NewPrimitive(t, math.NaN()), nil
		}
		return NewPrimitive(t, a/b), nil
	case OpMod:
		if b == 0 {
			return nil, fnErr("ArithmeticError: modulo by zero")
		}
		return NewPrimitive(t, math.Mod(a, b)), nil
	case OpNeg:
		return NewPrimitive(t, -a), nil
	case OpCmpEq, OpCmpStrictEq:
		return NewPrimitive(t, a == b), nil
	case OpCmpNe, OpCmpStrictNe:
		return NewPrimitive(t, a != b), nil
	case OpCmpLt:
		return NewPrimitive(t, a < b), nil
	case OpCmpLe:
		return NewPrimitive(t, a <= b), nil
	case OpCmpGt:
		return NewPrimitive(t, a > b), nil
	case OpCmpGe:
		return NewPrimitive(t, a >= b), nil
	case OpBitAnd:
		return NewPrimitive(t, float64(int64(a)&int64(b))), nil
	case OpBitOr:
		return NewPrimitive(t, float64(int64(a)|int64(b))), nil
	case OpBitXor:
		return NewPrimitive(t, float64(int64(a)^int64(b))), nil
	case OpBitNot:
		return NewPrimitive(t, float64(^int64(a))), nil
	case OpShl:
		return NewPrimitive(t, float64(int64(a)<<uint(int64(b)))), nil
	case OpShr:
		return NewPrimitive(t, float64(int64(a)>>uint(int64(b)))), nil
	}
	return nil, fnErr("TypeError: operator not defined")
}
