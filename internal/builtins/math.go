package builtins

import (
	"math"
	"math/rand"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

func initMath(cx *runtime.Context, realm *runtime.Realm, global runtime.Scriptable) {
	m := runtime.NewObject("Math", realm.ObjectProto)
	global.SetOwn(cx, "Math", m)

	consts := map[string]float64{
		"PI":      math.Pi,
		"E":       math.E,
		"LN2":     math.Ln2,
		"LN10":    math.Log(10),
		"LOG2E":   1 / math.Ln2,
		"LOG10E":  1 / math.Log(10),
		"SQRT2":   math.Sqrt2,
		"SQRT1_2": math.Sqrt(0.5),
	}
	for name, v := range consts {
		m.DefineOwn(cx, name, &runtime.Property{Value: runtime.Number(v)})
	}

	unary := map[string]func(float64) float64{
		"abs":    math.Abs,
		"floor":  math.Floor,
		"ceil":   math.Ceil,
		"sqrt":   math.Sqrt,
		"cbrt":   math.Cbrt,
		"sin":    math.Sin,
		"cos":    math.Cos,
		"tan":    math.Tan,
		"asin":   math.Asin,
		"acos":   math.Acos,
		"atan":   math.Atan,
		"sinh":   math.Sinh,
		"cosh":   math.Cosh,
		"tanh":   math.Tanh,
		"log":    math.Log,
		"log2":   math.Log2,
		"log10":  math.Log10,
		"exp":    math.Exp,
		"trunc": math.Trunc,
		"sign": func(f float64) float64 {
			switch {
			case f > 0:
				return 1
			case f < 0:
				return -1
			}
			return f
		},
		"round":  func(f float64) float64 { return math.Floor(f + 0.5) },
		"fround": func(f float64) float64 { return float64(float32(f)) },
	}
	for name, impl := range unary {
		impl := impl
		fn(cx, realm, m, name, 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			f, err := runtime.ToNumber(cx, runtime.Arg(args, 0))
			if err != nil {
				return nil, err
			}
			return runtime.Number(impl(f)), nil
		})
	}

	fn(cx, realm, m, "pow", 2, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		a, err := runtime.ToNumber(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		b, err := runtime.ToNumber(cx, runtime.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		return runtime.Number(math.Pow(a, b)), nil
	})

	fn(cx, realm, m, "atan2", 2, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		y, err := runtime.ToNumber(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		x, err := runtime.ToNumber(cx, runtime.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		return runtime.Number(math.Atan2(y, x)), nil
	})

	fn(cx, realm, m, "hypot", 2, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		sum := 0.0
		for _, a := range args {
			f, err := runtime.ToNumber(cx, a)
			if err != nil {
				return nil, err
			}
			sum += f * f
		}
		return runtime.Number(math.Sqrt(sum)), nil
	})

	extreme := func(name string, better func(a, b float64) bool, empty float64) {
		fn(cx, realm, m, name, 2, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			out := empty
			for _, a := range args {
				f, err := runtime.ToNumber(cx, a)
				if err != nil {
					return nil, err
				}
				if math.IsNaN(f) {
					return runtime.Number(math.NaN()), nil
				}
				if better(f, out) {
					out = f
				}
			}
			return runtime.Number(out), nil
		})
	}
	extreme("max", func(a, b float64) bool { return a > b }, math.Inf(-1))
	extreme("min", func(a, b float64) bool { return a < b }, math.Inf(1))

	fn(cx, realm, m, "random", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.Number(rand.Float64()), nil
	})
}
