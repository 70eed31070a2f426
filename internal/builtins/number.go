package builtins

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

func nan() float64 { return math.NaN() }

func initNumber(cx *runtime.Context, realm *runtime.Realm, global runtime.Scriptable) {
	proto := runtime.NewObject("Number", realm.ObjectProto)
	realm.NumberProto = proto

	ctor := runtime.NewNativeFunction("Number", 1, realm.FunctionProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.Number(0), nil
			}
			f, err := runtime.ToNumber(cx, args[0])
			if err != nil {
				return nil, err
			}
			return runtime.Number(f), nil
		})
	ctor.DefineOwn(cx, "prototype", &runtime.Property{Value: proto})
	proto.DefineOwn(cx, "constructor", &runtime.Property{Value: ctor, Writable: true, Configurable: true})
	global.SetOwn(cx, "Number", ctor)

	consts := map[string]float64{
		"MAX_SAFE_INTEGER":  9007199254740991,
		"MIN_SAFE_INTEGER":  -9007199254740991,
		"MAX_VALUE":         math.MaxFloat64,
		"MIN_VALUE":         5e-324,
		"EPSILON":           2.220446049250313e-16,
		"POSITIVE_INFINITY": math.Inf(1),
		"NEGATIVE_INFINITY": math.Inf(-1),
		"NaN":               math.NaN(),
	}
	for name, v := range consts {
		ctor.DefineOwn(cx, name, &runtime.Property{Value: runtime.Number(v)})
	}

	fn(cx, realm, ctor, "isInteger", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		n, ok := runtime.Arg(args, 0).(*runtime.NumberValue)
		return runtime.Bool(ok && !math.IsNaN(n.Value) && !math.IsInf(n.Value, 0) && math.Trunc(n.Value) == n.Value), nil
	})

	fn(cx, realm, ctor, "isFinite", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		n, ok := runtime.Arg(args, 0).(*runtime.NumberValue)
		return runtime.Bool(ok && !math.IsNaN(n.Value) && !math.IsInf(n.Value, 0)), nil
	})

	fn(cx, realm, ctor, "isNaN", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		n, ok := runtime.Arg(args, 0).(*runtime.NumberValue)
		return runtime.Bool(ok && math.IsNaN(n.Value)), nil
	})

	fn(cx, realm, ctor, "parseFloat", 1, globalParseFloat)
	fn(cx, realm, ctor, "parseInt", 2, globalParseInt)

	numFn := func(name string, arity int, impl func(cx *runtime.Context, f float64, args []runtime.Value) (runtime.Value, error)) {
		fn(cx, realm, proto, name, arity, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			n, ok := this.(*runtime.NumberValue)
			if !ok {
				return nil, runtime.NewTypeError(cx, "Number.prototype.%s called on a non-number receiver", name)
			}
			return impl(cx, n.Value, args)
		})
	}

	numFn("toFixed", 1, func(cx *runtime.Context, f float64, args []runtime.Value) (runtime.Value, error) {
		d, err := runtime.ToNumber(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		if d < 0 || d > 100 {
			return nil, runtime.NewRangeError(cx, "toFixed digits out of range")
		}
		return runtime.String(strconv.FormatFloat(f, 'f', int(d), 64)), nil
	})

	numFn("toString", 1, func(cx *runtime.Context, f float64, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 || runtime.IsNullish(args[0]) {
			return runtime.String(runtime.FormatNumber(f)), nil
		}
		radix, err := runtime.ToNumber(cx, args[0])
		if err != nil {
			return nil, err
		}
		r := int(radix)
		if r < 2 || r > 36 {
			return nil, runtime.NewRangeError(cx, "toString radix must be between 2 and 36")
		}
		if r == 10 {
			return runtime.String(runtime.FormatNumber(f)), nil
		}
		return runtime.String(strconv.FormatInt(int64(f), r)), nil
	})

	numFn("toPrecision", 1, func(cx *runtime.Context, f float64, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 || runtime.IsNullish(args[0]) {
			return runtime.String(runtime.FormatNumber(f)), nil
		}
		p, err := runtime.ToNumber(cx, args[0])
		if err != nil {
			return nil, err
		}
		if p < 1 || p > 100 {
			return nil, runtime.NewRangeError(cx, "toPrecision argument out of range")
		}
		return runtime.String(strconv.FormatFloat(f, 'g', int(p), 64)), nil
	})

	numFn("valueOf", 0, func(cx *runtime.Context, f float64, args []runtime.Value) (runtime.Value, error) {
		return runtime.Number(f), nil
	})
}

func initBoolean(cx *runtime.Context, realm *runtime.Realm, global runtime.Scriptable) {
	proto := runtime.NewObject("Boolean", realm.ObjectProto)
	realm.BooleanProto = proto

	ctor := runtime.NewNativeFunction("Boolean", 1, realm.FunctionProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return runtime.Bool(runtime.ToBoolean(runtime.Arg(args, 0))), nil
		})
	ctor.DefineOwn(cx, "prototype", &runtime.Property{Value: proto})
	proto.DefineOwn(cx, "constructor", &runtime.Property{Value: ctor, Writable: true, Configurable: true})
	global.SetOwn(cx, "Boolean", ctor)

	fn(cx, realm, proto, "toString", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.String(this.ToDisplay()), nil
	})
	fn(cx, realm, proto, "valueOf", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return this, nil
	})
}

func initBigInt(cx *runtime.Context, realm *runtime.Realm, global runtime.Scriptable) {
	proto := runtime.NewObject("BigInt", realm.ObjectProto)
	realm.BigIntProto = proto

	ctor := runtime.NewNativeFunction("BigInt", 1, realm.FunctionProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			switch n := runtime.Arg(args, 0).(type) {
			case *runtime.BigIntValue:
				return n, nil
			case *runtime.NumberValue:
				if math.Trunc(n.Value) != n.Value || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
					return nil, runtime.NewRangeError(cx, "cannot convert %s to a BigInt", runtime.FormatNumber(n.Value))
				}
				bf := new(big.Float).SetFloat64(n.Value)
				i, _ := bf.Int(nil)
				return runtime.BigInt(i), nil
			case *runtime.StringValue:
				i, ok := runtime.ParseBigInt(strings.TrimSpace(n.Value))
				if !ok {
					return nil, runtime.NewSyntaxError(cx, "cannot convert %q to a BigInt", n.Value)
				}
				return runtime.BigInt(i), nil
			}
			return nil, runtime.NewTypeError(cx, "cannot convert %s to a BigInt", runtime.Arg(args, 0).TypeOf())
		})
	ctor.DefineOwn(cx, "prototype", &runtime.Property{Value: proto})
	proto.DefineOwn(cx, "constructor", &runtime.Property{Value: ctor, Writable: true, Configurable: true})
	global.SetOwn(cx, "BigInt", ctor)

	fn(cx, realm, proto, "toString", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.String(this.ToDisplay()), nil
	})
	fn(cx, realm, proto, "valueOf", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return this, nil
	})
}

func globalParseFloat(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	s, err := runtime.ToString(cx, runtime.Arg(args, 0))
	if err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)
	end := len(s)
	for end > 0 {
		if _, err := strconv.ParseFloat(s[:end], 64); err == nil {
			break
		}
		end--
	}
	if end == 0 {
		return runtime.Number(math.NaN()), nil
	}
	f, _ := strconv.ParseFloat(s[:end], 64)
	return runtime.Number(f), nil
}

func globalParseInt(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	s, err := runtime.ToString(cx, runtime.Arg(args, 0))
	if err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)
	radix := 0
	if len(args) > 1 && !runtime.IsNullish(args[1]) {
		f, err := runtime.ToNumber(cx, args[1])
		if err != nil {
			return nil, err
		}
		radix = int(f)
		if radix != 0 && (radix < 2 || radix > 36) {
			return runtime.Number(math.NaN()), nil
		}
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	if radix == 0 {
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			radix, s = 16, s[2:]
		} else {
			radix = 10
		}
	} else if radix == 16 {
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			s = s[2:]
		}
	}

	end := 0
	for end < len(s) {
		if _, err := strconv.ParseUint(s[:end+1], radix, 64); err != nil {
			break
		}
		end++
	}
	if end == 0 {
		return runtime.Number(math.NaN()), nil
	}
	v, _ := strconv.ParseUint(s[:end], radix, 64)
	f := float64(v)
	if neg {
		f = -f
	}
	return runtime.Number(f), nil
}
