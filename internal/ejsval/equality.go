package ejsval

// StrictEqual requires identical type and bitwise-equal primitives, or
// pointer identity for reference types (§4.1).
func StrictEqual(a, b Var) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Hdr().Type != b.Hdr().Type {
		return false
	}
	if pa, ok := a.(*Primitive); ok {
		pb := b.(*Primitive)
		return pa.Value == pb.Value
	}
	return a == b
}

// Equal implements non-strict equality: cast-then-compare across common
// types (§4.1). Object identity equality (both operands the same
// pointer) always returns true first.
func Equal(ejs *Dispatcher, a, b Var) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	pa, aok := a.(*Primitive)
	pb, bok := b.(*Primitive)
	if aok && bok {
		_, aStr := pa.Value.(string)
		_, bStr := pb.Value.(string)
		if aStr || bStr {
			return ToStringValue(ejs, a) == ToStringValue(ejs, b)
		}
		return ToNumber(ejs, a) == ToNumber(ejs, b)
	}
	return a == b
}
