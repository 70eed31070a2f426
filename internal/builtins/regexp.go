package builtins

import (
	"github.com/gigaherz/rhinogo/internal/runtime"
)

func initRegExp(cx *runtime.Context, realm *runtime.Realm, global runtime.Scriptable) {
	proto := runtime.NewObject("RegExp", realm.ObjectProto)
	realm.RegExpProto = proto

	construct := func(cx *runtime.Context, args []runtime.Value) (runtime.Value, error) {
		if re, ok := runtime.Arg(args, 0).(*runtime.RegExpObject); ok {
			return re, nil
		}
		source, err := runtime.ToString(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		flags := ""
		if len(args) > 1 && !runtime.IsNullish(args[1]) {
			flags, err = runtime.ToString(cx, args[1])
			if err != nil {
				return nil, err
			}
		}
		return runtime.NewRegExp(cx, proto, source, flags)
	}

	ctor := runtime.NewNativeFunction("RegExp", 2, realm.FunctionProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return construct(cx, args)
		})
	ctor.SetConstruct(construct)
	ctor.DefineOwn(cx, "prototype", &runtime.Property{Value: proto})
	proto.DefineOwn(cx, "constructor", &runtime.Property{Value: ctor, Writable: true, Configurable: true})
	global.SetOwn(cx, "RegExp", ctor)

	fn(cx, realm, proto, "test", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		re, ok := this.(*runtime.RegExpObject)
		if !ok {
			return nil, runtime.NewTypeError(cx, "RegExp.prototype.test called on a non-RegExp receiver")
		}
		s, err := runtime.ToString(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		return runtime.Bool(re.Re.MatchString(s)), nil
	})

	fn(cx, realm, proto, "exec", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		re, ok := this.(*runtime.RegExpObject)
		if !ok {
			return nil, runtime.NewTypeError(cx, "RegExp.prototype.exec called on a non-RegExp receiver")
		}
		s, err := runtime.ToString(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		return regexpExecInto(cx, realm, re, s)
	})

	fn(cx, realm, proto, "toString", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.String(this.ToDisplay()), nil
	})
}

// regexpExecInto runs one match against s, honoring lastIndex for global
// patterns, and builds the match-array result.
func regexpExecInto(cx *runtime.Context, realm *runtime.Realm, re *runtime.RegExpObject, s string) (runtime.Value, error) {
	start := 0
	if re.Global() {
		start = re.LastIndex
		if start > len(s) {
			re.LastIndex = 0
			return runtime.Null, nil
		}
	}
	loc := re.Re.FindStringSubmatchIndex(s[start:])
	if loc == nil {
		re.LastIndex = 0
		return runtime.Null, nil
	}
	if re.Global() {
		re.LastIndex = start + loc[1]
	}
	groups := len(loc) / 2
	els := make([]runtime.Value, groups)
	for i := 0; i < groups; i++ {
		if loc[2*i] < 0 {
			els[i] = runtime.Undefined
			continue
		}
		els[i] = runtime.String(s[start+loc[2*i] : start+loc[2*i+1]])
	}
	arr := realm.NewRealmArray(els)
	arr.SetOwn(cx, "index", runtime.Number(float64(start+loc[0])))
	arr.SetOwn(cx, "input", runtime.String(s))
	return arr, nil
}
