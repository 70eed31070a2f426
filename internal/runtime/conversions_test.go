package runtime

import (
	"math"
	"testing"
)

func TestToBoolean(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Undefined, false},
		{Null, false},
		{False, false},
		{Number(0), false},
		{Number(math.NaN()), false},
		{String(""), false},
		{True, true},
		{Number(1), true},
		{Number(math.Inf(-1)), true},
		{String("0"), true},
		{NewObject("Object", nil), true},
	}
	for _, tt := range tests {
		if got := ToBoolean(tt.v); got != tt.want {
			t.Errorf("ToBoolean(%s) = %v", tt.v.ToDisplay(), got)
		}
	}
}

func TestToNumberStrings(t *testing.T) {
	cx := NewContext()
	tests := []struct {
		s    string
		want float64
	}{
		{"", 0},
		{"  42  ", 42},
		{"3.25", 3.25},
		{"0x10", 16},
		{"0b101", 5},
		{"0o17", 15},
		{"-Infinity", math.Inf(-1)},
	}
	for _, tt := range tests {
		got, err := ToNumber(cx, String(tt.s))
		if err != nil {
			t.Fatalf("%q: %v", tt.s, err)
		}
		if got != tt.want {
			t.Errorf("ToNumber(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
	if got, _ := ToNumber(cx, String("12x")); !math.IsNaN(got) {
		t.Errorf("ToNumber(\"12x\") = %v, want NaN", got)
	}
}

func TestBigIntNumberMixing(t *testing.T) {
	cx := NewContext()
	b, _ := parseBigIntString("10")
	if _, err := ToNumber(cx, BigInt(b)); err == nil {
		t.Error("BigInt to number should raise TypeError")
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		f    float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-1.5, "-1.5"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{1e21, "1e+21"},
		{123456789, "123456789"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.f); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.f, got, tt.want)
		}
	}
}

func TestStrictEquals(t *testing.T) {
	if StrictEquals(Number(math.NaN()), Number(math.NaN())) {
		t.Error("NaN === NaN must be false")
	}
	if !StrictEquals(Number(0), Number(math.Copysign(0, -1))) {
		t.Error("+0 === -0 must be true")
	}
	if StrictEquals(Number(1), String("1")) {
		t.Error("cross-type strict equality must be false")
	}
	o := NewObject("Object", nil)
	if !StrictEquals(o, o) || StrictEquals(o, NewObject("Object", nil)) {
		t.Error("object identity wrong")
	}
}

func TestSameValueZero(t *testing.T) {
	if !SameValueZero(Number(math.NaN()), Number(math.NaN())) {
		t.Error("SameValueZero(NaN, NaN) must be true")
	}
	if !SameValueZero(Number(0), Number(math.Copysign(0, -1))) {
		t.Error("SameValueZero(+0, -0) must be true")
	}
}

func TestLooseEquals(t *testing.T) {
	cx := NewContext()
	check := func(a, b Value, want bool) {
		t.Helper()
		got, err := LooseEquals(cx, a, b)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("%s == %s: got %v", a.ToDisplay(), b.ToDisplay(), got)
		}
	}
	check(Null, Undefined, true)
	check(Null, Number(0), false)
	check(Number(1), String("1"), true)
	check(True, Number(1), true)
	check(String(""), Number(0), true)
}

func TestToPrimitiveValueOf(t *testing.T) {
	cx := NewContext()
	obj := NewObject("Object", nil)
	obj.SetOwn(cx, "valueOf", NewNativeFunction("valueOf", 0, nil,
		func(cx *Context, this Value, args []Value) (Value, error) {
			return Number(7), nil
		}))
	n, err := ToNumber(cx, obj)
	if err != nil {
		t.Fatal(err)
	}
	if n != 7 {
		t.Errorf("got %v", n)
	}
}

func TestToPrimitiveSymbolHook(t *testing.T) {
	cx := NewContext()
	obj := NewObject("Object", nil)
	hook := NewNativeFunction("", 1, nil, func(cx *Context, this Value, args []Value) (Value, error) {
		return String("hooked:" + Arg(args, 0).ToDisplay()), nil
	})
	obj.SetOwnSymbol(cx, SymToPrimitive, &Property{Value: hook})
	s, err := ToString(cx, obj)
	if err != nil {
		t.Fatal(err)
	}
	if s != "hooked:string" {
		t.Errorf("got %q", s)
	}
}

func TestSymbolIdentityAndRegistry(t *testing.T) {
	cx := NewContext()
	a := NewSymbol("x")
	b := NewSymbol("x")
	if StrictEquals(a, b) {
		t.Error("fresh symbols must be distinct")
	}
	r1 := cx.InternSymbol("k")
	r2 := cx.InternSymbol("k")
	if !StrictEquals(r1, r2) {
		t.Error("registered symbols with the same key must be identical")
	}
	if key, ok := cx.SymbolKeyFor(r1); !ok || key != "k" {
		t.Error("registry key lost")
	}
	if _, ok := cx.SymbolKeyFor(a); ok {
		t.Error("unregistered symbol must have no registry key")
	}
}

func TestScriptErrorRendering(t *testing.T) {
	cx := NewContext()
	cx.SetPosition("src", 4)
	err := NewTypeError(cx, "Cannot read property %q from null", "i")
	want := `TypeError: Cannot read property "i" from null (src#4)`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestStackRendering(t *testing.T) {
	cx := NewContext()
	cx.PushFrame("src", "outer", 1)
	cx.SetPosition("src", 2)
	cx.PushFrame("src", "inner", 3)
	cx.SetPosition("src", 5)
	err := NewTypeError(cx, "boom")
	out := err.RenderStack(0, "")
	want := "\tat inner (src:5)\n\tat outer (src:2)\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
	if got := err.RenderStack(1, ""); got != "\tat inner (src:5)\n" {
		t.Errorf("truncated stack got %q", got)
	}
}
