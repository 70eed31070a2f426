// Package runtime defines the value universe, the object model, and the
// execution context shared by the evaluator, the builtins, and the host
// bridge.
package runtime

import (
	"math"
	"math/big"
	"strconv"
)

// Value is implemented by every runtime value. The variants are Undefined,
// Null, Boolean, Number, String, BigInt, Symbol, and Scriptable (objects).
type Value interface {
	// TypeOf returns the `typeof` result for the value.
	TypeOf() string
	// ToDisplay returns the value's default string rendering.
	ToDisplay() string
}

// UndefinedValue is the undefined singleton's type.
type UndefinedValue struct{}

// Undefined is the singleton undefined value.
var Undefined = &UndefinedValue{}

func (u *UndefinedValue) TypeOf() string    { return "undefined" }
func (u *UndefinedValue) ToDisplay() string { return "undefined" }

// NullValue is the null singleton's type.
type NullValue struct{}

// Null is the singleton null value.
var Null = &NullValue{}

func (n *NullValue) TypeOf() string    { return "object" }
func (n *NullValue) ToDisplay() string { return "null" }

// IsNullish reports whether v is null or undefined.
func IsNullish(v Value) bool {
	switch v.(type) {
	case *UndefinedValue, *NullValue:
		return true
	}
	return v == nil
}

// BooleanValue is a boolean.
type BooleanValue struct {
	Value bool
}

// True and False are the shared boolean instances.
var (
	True  = &BooleanValue{Value: true}
	False = &BooleanValue{Value: false}
)

// Bool returns the shared instance for b.
func Bool(b bool) *BooleanValue {
	if b {
		return True
	}
	return False
}

func (b *BooleanValue) TypeOf() string { return "boolean" }
func (b *BooleanValue) ToDisplay() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// NumberValue is an IEEE-754 double; -0 and NaN are representable.
// SameValueZero treats -0 as equal to +0 and NaN as equal to itself.
type NumberValue struct {
	Value float64
}

// Number wraps a float64.
func Number(f float64) *NumberValue { return &NumberValue{Value: f} }

func (n *NumberValue) TypeOf() string    { return "number" }
func (n *NumberValue) ToDisplay() string { return FormatNumber(n.Value) }

// FormatNumber renders a double the way script code sees it: NaN,
// ±Infinity, integers without a fraction, exponent notation beyond 1e21.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || (abs < 1e-6 && abs > 0) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		return fixExponent(s)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// fixExponent rewrites Go's "1e+21" style into the script "1e+21" form,
// stripping a leading zero in the exponent ("1e+05" → "1e+5").
func fixExponent(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == 'e' {
			mant, exp := s[:i], s[i+1:]
			sign := ""
			if len(exp) > 0 && (exp[0] == '+' || exp[0] == '-') {
				sign, exp = string(exp[0]), exp[1:]
			}
			for len(exp) > 1 && exp[0] == '0' {
				exp = exp[1:]
			}
			return mant + "e" + sign + exp
		}
	}
	return s
}

// StringValue is a string with UTF-16 code-unit semantics: Length and
// index-based operations address code units, not code points.
type StringValue struct {
	Value string

	// units caches the UTF-16 encoding, built on first use.
	units []uint16
}

// String wraps a Go string.
func String(s string) *StringValue { return &StringValue{Value: s} }

func (s *StringValue) TypeOf() string    { return "string" }
func (s *StringValue) ToDisplay() string { return s.Value }

// BigIntValue is an exact integer. Mixing BigInt and Number arithmetic is a
// TypeError, enforced by the evaluator.
type BigIntValue struct {
	Value *big.Int
}

// BigInt wraps a big.Int.
func BigInt(i *big.Int) *BigIntValue { return &BigIntValue{Value: i} }

func (b *BigIntValue) TypeOf() string    { return "bigint" }
func (b *BigIntValue) ToDisplay() string { return b.Value.String() }

// SymbolValue is an opaque identity. Two symbols are equal only when they
// are the same instance; the per-context registry interns symbols created
// through Symbol.for so registered symbols share an instance.
type SymbolValue struct {
	Description string

	// registryKey is non-empty for symbols interned via Symbol.for.
	registryKey string
}

// NewSymbol creates a fresh, unregistered symbol.
func NewSymbol(description string) *SymbolValue {
	return &SymbolValue{Description: description}
}

func (s *SymbolValue) TypeOf() string    { return "symbol" }
func (s *SymbolValue) ToDisplay() string { return "Symbol(" + s.Description + ")" }
