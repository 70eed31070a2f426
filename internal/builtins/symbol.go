package builtins

import (
	"github.com/gigaherz/rhinogo/internal/runtime"
)

func initSymbol(cx *runtime.Context, realm *runtime.Realm, global runtime.Scriptable) {
	proto := runtime.NewObject("Symbol", realm.ObjectProto)
	realm.SymbolProto = proto

	ctor := runtime.NewNativeFunction("Symbol", 1, realm.FunctionProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			desc := ""
			if len(args) > 0 && !runtime.IsNullish(args[0]) {
				s, err := runtime.ToString(cx, args[0])
				if err != nil {
					return nil, err
				}
				desc = s
			}
			return runtime.NewSymbol(desc), nil
		})
	ctor.DefineOwn(cx, "prototype", &runtime.Property{Value: proto})
	global.SetOwn(cx, "Symbol", ctor)

	wellKnown := map[string]*runtime.SymbolValue{
		"iterator":           runtime.SymIterator,
		"toPrimitive":        runtime.SymToPrimitive,
		"isConcatSpreadable": runtime.SymIsConcatSpreadable,
		"toStringTag":        runtime.SymToStringTag,
	}
	for name, sym := range wellKnown {
		ctor.DefineOwn(cx, name, &runtime.Property{Value: sym})
	}

	// Symbol.for interns through the per-context registry; Symbol.keyFor
	// recovers the key.
	fn(cx, realm, ctor, "for", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		key, err := runtime.ToString(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		return cx.InternSymbol(key), nil
	})

	fn(cx, realm, ctor, "keyFor", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		sym, ok := runtime.Arg(args, 0).(*runtime.SymbolValue)
		if !ok {
			return nil, runtime.NewTypeError(cx, "Symbol.keyFor argument is not a symbol")
		}
		if key, ok := cx.SymbolKeyFor(sym); ok {
			return runtime.String(key), nil
		}
		return runtime.Undefined, nil
	})

	fn(cx, realm, proto, "toString", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.String(this.ToDisplay()), nil
	})
}
