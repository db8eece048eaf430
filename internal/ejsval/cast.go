package ejsval

import (
	"strconv"
	"strings"
)

// Builtin primitive type names, used to recognize the handful of scalar
// types the value model itself knows how to cast between (§4.1). Object
// types beyond these are cast via their own Helpers.Cast override.
const (
	TypeNameBoolean = "Boolean"
	TypeNameNumber  = "Number"
	TypeNameString  = "String"
	TypeNameNull    = "Null"
	TypeNameVoid    = "Void"
)

// ToBool implements the Boolean(v) cast rule: non-zero/non-empty is true
// (§4.1).
func ToBool(ejs *Dispatcher, v Var) bool {
	switch p := v.(type) {
	case nil:
		return false
	case *Primitive:
		switch x := p.Value.(type) {
		case nil:
			return false
		case bool:
			return x
		case float64:
			return x != 0 && x == x // NaN is falsey
		case int64:
			return x != 0
		case string:
			return x != ""
		}
	}
	return true // objects/functions are truthy
}

// ToNumber implements the Number(v) cast rule: decimal and exponent
// parsing, with 0x/0 prefixes recognized for hex/octal (§4.1).
func ToNumber(ejs *Dispatcher, v Var) float64 {
	switch p := v.(type) {
	case nil:
		return nan()
	case *Primitive:
		switch x := p.Value.(type) {
		case nil:
			return nan()
		case bool:
			if x {
				return 1
			}
			return 0
		case float64:
			return x
		case int64:
			return float64(x)
		case string:
			return parseNumber(x)
		}
	}
	return nan()
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	neg := false
	t := s
	if strings.HasPrefix(t, "-") {
		neg = true
		t = t[1:]
	} else if strings.HasPrefix(t, "+") {
		t = t[1:]
	}
	var n float64
	var err error
	switch {
	case strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X"):
		var i int64
		i, err = strconv.ParseInt(t[2:], 16, 64)
		n = float64(i)
	case strings.HasPrefix(t, "0") && len(t) > 1 && isAllOctal(t[1:]):
		var i int64
		i, err = strconv.ParseInt(t[1:], 8, 64)
		n = float64(i)
	default:
		n, err = strconv.ParseFloat(t, 64)
	}
	if err != nil {
		return nan()
	}
	if neg {
		n = -n
	}
	return n
}

func isAllOctal(s string) bool {
	for _, c := range s {
		if c < '0' || c > '7' {
			return false
		}
	}
	return len(s) > 0
}

func nan() float64 { var z float64; return z / z }

// ToStringValue implements the String(v) cast rule (§4.1): objects defer
// to their own toString via Helpers.Cast; primitives format directly.
func ToStringValue(ejs *Dispatcher, v Var) string {
	switch p := v.(type) {
	case nil:
		return "null"
	case *Primitive:
		switch x := p.Value.(type) {
		case nil:
			return "undefined"
		case bool:
			if x {
				return "true"
			}
			return "false"
		case float64:
			return strconv.FormatFloat(x, 'g', -1, 64)
		case int64:
			return strconv.FormatInt(x, 10)
		case string:
			return x
		}
	}
	return "[object]"
}

// defaultCast implements the fallback Helpers.Cast used by Object/Block:
// cast to the same type is identity; casts to Boolean/Number/String use
// the coercion rules above; anything else is a TypeError (§4.1).
func defaultCast(ejs *Dispatcher, v Var, target *Type) (Var, error) {
	if v != nil && v.Hdr().Type == target {
		return v, nil
	}
	if target == nil {
		return v, nil
	}
	switch target.Name {
	case TypeNameBoolean:
		return NewPrimitive(target, ToBool(ejs, v)), nil
	case TypeNameNumber:
		return NewPrimitive(target, ToNumber(ejs, v)), nil
	case TypeNameString:
		return NewPrimitive(target, ToStringValue(ejs, v)), nil
	}
	return nil, fnErr("TypeError: no legal cast to %s", target.Name)
}

// CoerceOperands promotes (lhs, rhs) to a common representation before a
// cross-type operator runs, e.g. number + string -> string (§4.1).
func CoerceOperands(ejs *Dispatcher, lhs, rhs Var) (Var, Var) {
	lp, lok := lhs.(*Primitive)
	rp, rok := rhs.(*Primitive)
	if !lok || !rok {
		return lhs, rhs
	}
	_, lIsStr := lp.Value.(string)
	_, rIsStr := rp.Value.(string)
	if lIsStr || rIsStr {
		return NewPrimitive(lp.Type, ToStringValue(ejs, lhs)), NewPrimitive(lp.Type, ToStringValue(ejs, rhs))
	}
	return lhs, rhs
}
