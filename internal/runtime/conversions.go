package runtime

import (
	"math"
	"strconv"
	"strings"
)

// ToBoolean implements the ECMA truthiness rules.
func ToBoolean(v Value) bool {
	switch n := v.(type) {
	case *UndefinedValue, *NullValue:
		return false
	case *BooleanValue:
		return n.Value
	case *NumberValue:
		return n.Value != 0 && !math.IsNaN(n.Value)
	case *StringValue:
		return n.Value != ""
	case *BigIntValue:
		return n.Value.Sign() != 0
	}
	return true
}

// ToNumber converts per ECMA. Symbols and BigInts raise TypeError.
func ToNumber(cx *Context, v Value) (float64, error) {
	switch n := v.(type) {
	case *NumberValue:
		return n.Value, nil
	case *UndefinedValue:
		return math.NaN(), nil
	case *NullValue:
		return 0, nil
	case *BooleanValue:
		if n.Value {
			return 1, nil
		}
		return 0, nil
	case *StringValue:
		return stringToNumber(n.Value), nil
	case *BigIntValue:
		return 0, NewTypeError(cx, "cannot convert a BigInt to a number")
	case *SymbolValue:
		return 0, NewTypeError(cx, "cannot convert a Symbol to a number")
	case Scriptable:
		prim, err := ToPrimitive(cx, v, HintNumber)
		if err != nil {
			return 0, err
		}
		return ToNumber(cx, prim)
	}
	return math.NaN(), nil
}

// stringToNumber parses a string per the ECMA StringNumericLiteral
// grammar: empty/whitespace is 0, hex/octal/binary prefixes are honored,
// anything else unparseable is NaN.
func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if len(s) > 2 && s[0] == '0' {
		var base int
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	// ParseFloat also accepts forms the numeric string grammar does not:
	// "inf", "infinity" and "nan" in any case, and signed hex floats.
	if strings.ContainsAny(s, "iInNxXpP_") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// ToString converts per ECMA. Symbols raise TypeError.
func ToString(cx *Context, v Value) (string, error) {
	switch n := v.(type) {
	case *StringValue:
		return n.Value, nil
	case *SymbolValue:
		return "", NewTypeError(cx, "cannot convert a Symbol to a string")
	case Scriptable:
		prim, err := ToPrimitive(cx, v, HintString)
		if err != nil {
			return "", err
		}
		return ToString(cx, prim)
	}
	return v.ToDisplay(), nil
}

// Hint selects the preferred primitive type for ToPrimitive.
type Hint int

const (
	HintDefault Hint = iota
	HintNumber
	HintString
)

// ToPrimitive converts an object to a primitive, consulting
// Symbol.toPrimitive first and then valueOf/toString in hint order.
func ToPrimitive(cx *Context, v Value, hint Hint) (Value, error) {
	obj, ok := v.(Scriptable)
	if !ok {
		return v, nil
	}

	if fn, err := GetPropertySymbol(cx, obj, SymToPrimitive); err != nil {
		return nil, err
	} else if callable, ok := fn.(Callable); ok {
		name := "default"
		switch hint {
		case HintNumber:
			name = "number"
		case HintString:
			name = "string"
		}
		res, err := callable.Call(cx, obj, []Value{String(name)})
		if err != nil {
			return nil, err
		}
		if _, isObj := res.(Scriptable); isObj {
			return nil, NewTypeError(cx, "Symbol.toPrimitive returned an object")
		}
		return res, nil
	}

	methods := []string{"valueOf", "toString"}
	if hint == HintString {
		methods = []string{"toString", "valueOf"}
	}
	for _, name := range methods {
		m, err := GetProperty(cx, obj, name)
		if err != nil {
			return nil, err
		}
		callable, ok := m.(Callable)
		if !ok {
			continue
		}
		res, err := callable.Call(cx, obj, nil)
		if err != nil {
			return nil, err
		}
		if _, isObj := res.(Scriptable); !isObj {
			return res, nil
		}
	}
	return nil, NewTypeError(cx, "cannot convert object to primitive value")
}

// ToInt32 and ToUint32 implement the ECMA integer conversions used by the
// bitwise operators.
func ToInt32(cx *Context, v Value) (int32, error) {
	f, err := ToNumber(cx, v)
	if err != nil {
		return 0, err
	}
	return int32(toUint32(f)), nil
}

func ToUint32(cx *Context, v Value) (uint32, error) {
	f, err := ToNumber(cx, v)
	if err != nil {
		return 0, err
	}
	return toUint32(f), nil
}

func toUint32(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return uint32(int64(math.Trunc(f)))
}

// SameValueZero treats +0 and -0 as equal and NaN equal to itself. It is
// the key relation for Map and Set.
func SameValueZero(a, b Value) bool {
	switch x := a.(type) {
	case *UndefinedValue:
		_, ok := b.(*UndefinedValue)
		return ok
	case *NullValue:
		_, ok := b.(*NullValue)
		return ok
	case *BooleanValue:
		y, ok := b.(*BooleanValue)
		return ok && x.Value == y.Value
	case *NumberValue:
		y, ok := b.(*NumberValue)
		if !ok {
			return false
		}
		if math.IsNaN(x.Value) && math.IsNaN(y.Value) {
			return true
		}
		return x.Value == y.Value // +0 == -0 by IEEE comparison
	case *StringValue:
		y, ok := b.(*StringValue)
		return ok && x.Value == y.Value
	case *BigIntValue:
		y, ok := b.(*BigIntValue)
		return ok && x.Value.Cmp(y.Value) == 0
	}
	return a == b // symbols and objects compare by identity
}

// StrictEquals implements ===.
func StrictEquals(a, b Value) bool {
	if x, ok := a.(*NumberValue); ok {
		y, ok := b.(*NumberValue)
		return ok && x.Value == y.Value // NaN !== NaN, +0 === -0
	}
	return SameValueZero(a, b)
}

// LooseEquals implements ==.
func LooseEquals(cx *Context, a, b Value) (bool, error) {
	if sameType(a, b) {
		return StrictEquals(a, b), nil
	}
	switch {
	case IsNullish(a) && IsNullish(b):
		return true, nil
	case IsNullish(a) || IsNullish(b):
		return false, nil
	}

	// number == string, boolean == anything: compare numerically.
	switch x := a.(type) {
	case *NumberValue:
		if y, ok := b.(*StringValue); ok {
			return x.Value == stringToNumber(y.Value), nil
		}
	case *StringValue:
		if y, ok := b.(*NumberValue); ok {
			return stringToNumber(x.Value) == y.Value, nil
		}
	case *BooleanValue:
		n, err := ToNumber(cx, a)
		if err != nil {
			return false, err
		}
		return LooseEquals(cx, Number(n), b)
	case *BigIntValue:
		switch y := b.(type) {
		case *StringValue:
			other, ok := parseBigIntString(y.Value)
			if !ok {
				return false, nil
			}
			return x.Value.Cmp(other) == 0, nil
		case *NumberValue:
			if math.IsNaN(y.Value) || math.IsInf(y.Value, 0) || math.Trunc(y.Value) != y.Value {
				return false, nil
			}
			return x.Value.Cmp(bigFromFloat(y.Value)) == 0, nil
		}
	}
	if _, ok := b.(*BooleanValue); ok {
		n, err := ToNumber(cx, b)
		if err != nil {
			return false, err
		}
		return LooseEquals(cx, a, Number(n))
	}
	if _, ok := b.(*BigIntValue); ok {
		return LooseEquals(cx, b, a)
	}

	// object == primitive: convert the object.
	if obj, ok := a.(Scriptable); ok {
		prim, err := ToPrimitive(cx, obj, HintDefault)
		if err != nil {
			return false, err
		}
		return LooseEquals(cx, prim, b)
	}
	if obj, ok := b.(Scriptable); ok {
		prim, err := ToPrimitive(cx, obj, HintDefault)
		if err != nil {
			return false, err
		}
		return LooseEquals(cx, a, prim)
	}
	return false, nil
}

func sameType(a, b Value) bool {
	switch a.(type) {
	case *UndefinedValue:
		_, ok := b.(*UndefinedValue)
		return ok
	case *NullValue:
		_, ok := b.(*NullValue)
		return ok
	case *BooleanValue:
		_, ok := b.(*BooleanValue)
		return ok
	case *NumberValue:
		_, ok := b.(*NumberValue)
		return ok
	case *StringValue:
		_, ok := b.(*StringValue)
		return ok
	case *BigIntValue:
		_, ok := b.(*BigIntValue)
		return ok
	case *SymbolValue:
		_, ok := b.(*SymbolValue)
		return ok
	case Scriptable:
		_, ok := b.(Scriptable)
		return ok
	}
	return false
}
