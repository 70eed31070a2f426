package builtins

import (
	"strings"
	"unicode/utf16"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

// thisString coerces a String.prototype receiver. Methods run against the
// primitive; a boxed receiver unwraps through ToString.
func thisString(cx *runtime.Context, this runtime.Value) (string, error) {
	if s, ok := this.(*runtime.StringValue); ok {
		return s.Value, nil
	}
	return runtime.ToString(cx, this)
}

// units16 converts to UTF-16 code units; string operations address code
// units, not code points.
func units16(s string) []uint16 { return utf16.Encode([]rune(s)) }

func fromUnits(u []uint16) string { return string(utf16.Decode(u)) }

func initString(cx *runtime.Context, realm *runtime.Realm, global runtime.Scriptable) {
	proto := runtime.NewObject("String", realm.ObjectProto)
	realm.StringProto = proto

	ctor := runtime.NewNativeFunction("String", 1, realm.FunctionProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			if len(args) == 0 {
				return runtime.String(""), nil
			}
			if sym, ok := args[0].(*runtime.SymbolValue); ok {
				return runtime.String(sym.ToDisplay()), nil
			}
			s, err := runtime.ToString(cx, args[0])
			if err != nil {
				return nil, err
			}
			return runtime.String(s), nil
		})
	ctor.DefineOwn(cx, "prototype", &runtime.Property{Value: proto})
	proto.DefineOwn(cx, "constructor", &runtime.Property{Value: ctor, Writable: true, Configurable: true})
	global.SetOwn(cx, "String", ctor)

	fn(cx, realm, ctor, "fromCharCode", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		units := make([]uint16, len(args))
		for i, a := range args {
			f, err := runtime.ToNumber(cx, a)
			if err != nil {
				return nil, err
			}
			units[i] = uint16(int64(f))
		}
		return runtime.String(fromUnits(units)), nil
	})

	strFn := func(name string, arity int, impl func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error)) {
		fn(cx, realm, proto, name, arity, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			s, err := thisString(cx, this)
			if err != nil {
				return nil, err
			}
			return impl(cx, s, args)
		})
	}

	strFn("charAt", 1, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		units := units16(s)
		i, err := relativeIndexNoClamp(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= len(units) {
			return runtime.String(""), nil
		}
		return runtime.String(fromUnits(units[i : i+1])), nil
	})

	strFn("charCodeAt", 1, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		units := units16(s)
		i, err := relativeIndexNoClamp(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= len(units) {
			return runtime.Number(nan()), nil
		}
		return runtime.Number(float64(units[i])), nil
	})

	strFn("codePointAt", 1, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		runes := []rune(s)
		i, err := relativeIndexNoClamp(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= len(runes) {
			return runtime.Undefined, nil
		}
		return runtime.Number(float64(runes[i])), nil
	})

	strFn("indexOf", 1, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		sub, err := runtime.ToString(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		return runtime.Number(float64(indexOfUnits(s, sub))), nil
	})

	strFn("lastIndexOf", 1, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		sub, err := runtime.ToString(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		byteIdx := strings.LastIndex(s, sub)
		if byteIdx < 0 {
			return runtime.Number(-1), nil
		}
		return runtime.Number(float64(len(units16(s[:byteIdx])))), nil
	})

	strFn("includes", 1, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		sub, err := runtime.ToString(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		return runtime.Bool(strings.Contains(s, sub)), nil
	})

	strFn("startsWith", 1, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		sub, err := runtime.ToString(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		return runtime.Bool(strings.HasPrefix(s, sub)), nil
	})

	strFn("endsWith", 1, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		sub, err := runtime.ToString(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		return runtime.Bool(strings.HasSuffix(s, sub)), nil
	})

	strFn("slice", 2, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		units := units16(s)
		start, end, err := sliceBounds(cx, args, len(units))
		if err != nil {
			return nil, err
		}
		return runtime.String(fromUnits(units[start:end])), nil
	})

	strFn("substring", 2, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		units := units16(s)
		start, end, err := sliceBounds(cx, args, len(units))
		if err != nil {
			return nil, err
		}
		if start > end {
			start, end = end, start
		}
		return runtime.String(fromUnits(units[start:end])), nil
	})

	strFn("toUpperCase", 0, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		return runtime.String(strings.ToUpper(s)), nil
	})

	strFn("toLowerCase", 0, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		return runtime.String(strings.ToLower(s)), nil
	})

	strFn("trim", 0, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		return runtime.String(strings.TrimSpace(s)), nil
	})

	strFn("trimStart", 0, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		return runtime.String(strings.TrimLeft(s, " \t\n\r\v\f")), nil
	})

	strFn("trimEnd", 0, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		return runtime.String(strings.TrimRight(s, " \t\n\r\v\f")), nil
	})

	strFn("split", 2, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		sep := runtime.Arg(args, 0)
		if runtime.IsNullish(sep) {
			return realm.NewRealmArray([]runtime.Value{runtime.String(s)}), nil
		}
		if re, ok := sep.(*runtime.RegExpObject); ok {
			parts := re.Re.Split(s, -1)
			els := make([]runtime.Value, len(parts))
			for i, p := range parts {
				els[i] = runtime.String(p)
			}
			return realm.NewRealmArray(els), nil
		}
		sepStr, err := runtime.ToString(cx, sep)
		if err != nil {
			return nil, err
		}
		var parts []string
		if sepStr == "" {
			for _, r := range s {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(s, sepStr)
		}
		els := make([]runtime.Value, len(parts))
		for i, p := range parts {
			els[i] = runtime.String(p)
		}
		return realm.NewRealmArray(els), nil
	})

	strFn("replace", 2, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		return stringReplace(cx, s, args, false)
	})

	strFn("replaceAll", 2, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		return stringReplace(cx, s, args, true)
	})

	strFn("repeat", 1, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		f, err := runtime.ToNumber(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		if f < 0 {
			return nil, runtime.NewRangeError(cx, "repeat count must be non-negative")
		}
		return runtime.String(strings.Repeat(s, int(f))), nil
	})

	strFn("padStart", 2, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		return stringPad(cx, s, args, true)
	})

	strFn("padEnd", 2, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		return stringPad(cx, s, args, false)
	})

	strFn("concat", 1, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		var sb strings.Builder
		sb.WriteString(s)
		for _, a := range args {
			part, err := runtime.ToString(cx, a)
			if err != nil {
				return nil, err
			}
			sb.WriteString(part)
		}
		return runtime.String(sb.String()), nil
	})

	strFn("match", 1, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		re, ok := runtime.Arg(args, 0).(*runtime.RegExpObject)
		if !ok {
			return nil, runtime.NewTypeError(cx, "match argument must be a RegExp")
		}
		if re.Global() {
			matches := re.Re.FindAllString(s, -1)
			if matches == nil {
				return runtime.Null, nil
			}
			els := make([]runtime.Value, len(matches))
			for i, m := range matches {
				els[i] = runtime.String(m)
			}
			return realm.NewRealmArray(els), nil
		}
		return regexpExecInto(cx, realm, re, s)
	})

	strFn("toString", 0, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		return runtime.String(s), nil
	})

	strFn("valueOf", 0, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		return runtime.String(s), nil
	})

	strFn("at", 1, func(cx *runtime.Context, s string, args []runtime.Value) (runtime.Value, error) {
		units := units16(s)
		i, err := relativeIndexNoClamp(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		if i < 0 {
			i += len(units)
		}
		if i < 0 || i >= len(units) {
			return runtime.Undefined, nil
		}
		return runtime.String(fromUnits(units[i : i+1])), nil
	})
}

// indexOfUnits returns the code-unit index of sub within s, or -1.
func indexOfUnits(s, sub string) int {
	byteIdx := strings.Index(s, sub)
	if byteIdx < 0 {
		return -1
	}
	return len(units16(s[:byteIdx]))
}

func relativeIndexNoClamp(cx *runtime.Context, v runtime.Value) (int, error) {
	if runtime.IsNullish(v) {
		return 0, nil
	}
	f, err := runtime.ToNumber(cx, v)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func stringReplace(cx *runtime.Context, s string, args []runtime.Value, all bool) (runtime.Value, error) {
	pattern := runtime.Arg(args, 0)
	replV := runtime.Arg(args, 1)
	repl, err := runtime.ToString(cx, replV)
	if err != nil {
		return nil, err
	}
	if re, ok := pattern.(*runtime.RegExpObject); ok {
		goRepl := strings.ReplaceAll(repl, "$&", "${0}")
		if all || re.Global() {
			return runtime.String(re.Re.ReplaceAllString(s, goRepl)), nil
		}
		done := false
		out := re.Re.ReplaceAllStringFunc(s, func(m string) string {
			if done {
				return m
			}
			done = true
			return repl
		})
		return runtime.String(out), nil
	}
	sub, err := runtime.ToString(cx, pattern)
	if err != nil {
		return nil, err
	}
	if all {
		return runtime.String(strings.ReplaceAll(s, sub, repl)), nil
	}
	return runtime.String(strings.Replace(s, sub, repl, 1)), nil
}

func stringPad(cx *runtime.Context, s string, args []runtime.Value, start bool) (runtime.Value, error) {
	f, err := runtime.ToNumber(cx, runtime.Arg(args, 0))
	if err != nil {
		return nil, err
	}
	target := int(f)
	pad := " "
	if len(args) > 1 && !runtime.IsNullish(args[1]) {
		pad, err = runtime.ToString(cx, args[1])
		if err != nil {
			return nil, err
		}
	}
	units := units16(s)
	if target <= len(units) || pad == "" {
		return runtime.String(s), nil
	}
	need := target - len(units)
	padUnits := units16(pad)
	var fill []uint16
	for len(fill) < need {
		fill = append(fill, padUnits...)
	}
	fill = fill[:need]
	if start {
		return runtime.String(fromUnits(fill) + s), nil
	}
	return runtime.String(s + fromUnits(fill)), nil
}
