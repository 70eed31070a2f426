// Package builtins populates a root scope with the standard objects:
// Object, Array, Function, Math, JSON, Number, String, Boolean, Date,
// RegExp, the Error hierarchy, Map, Set, Symbol, and console.
package builtins

import (
	"math"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

// Init builds a fresh realm on the context and returns the global object.
func Init(cx *runtime.Context) runtime.Scriptable {
	realm := &runtime.Realm{ErrorProtos: make(map[string]runtime.Scriptable)}
	cx.Realm = realm

	// Bootstrap order: Object.prototype and Function.prototype exist
	// before anything that hangs off them.
	realm.ObjectProto = runtime.NewObject("Object", nil)
	realm.FunctionProto = runtime.NewObject("Function", realm.ObjectProto)
	global := runtime.NewObject("global", realm.ObjectProto)
	realm.Global = global

	initObject(cx, realm, global)
	initFunction(cx, realm, global)
	initArray(cx, realm, global)
	initString(cx, realm, global)
	initNumber(cx, realm, global)
	initBoolean(cx, realm, global)
	initBigInt(cx, realm, global)
	initSymbol(cx, realm, global)
	initErrors(cx, realm, global)
	initMath(cx, realm, global)
	initJSON(cx, realm, global)
	initMapSet(cx, realm, global)
	initDate(cx, realm, global)
	initRegExp(cx, realm, global)
	initConsole(cx, realm, global)
	initGlobalFunctions(cx, realm, global)

	global.SetOwn(cx, "globalThis", global)
	global.DefineOwn(cx, "undefined", &runtime.Property{Value: runtime.Undefined})
	global.DefineOwn(cx, "NaN", &runtime.Property{Value: runtime.Number(math.NaN())})
	global.DefineOwn(cx, "Infinity", &runtime.Property{Value: runtime.Number(math.Inf(1))})

	// Materialize ScriptErrors as proper Error instances for catch.
	cx.ErrorToValue = func(cx *runtime.Context, err *runtime.ScriptError) runtime.Value {
		proto, ok := realm.ErrorProtos[err.Kind.String()]
		if !ok {
			proto = realm.ErrorProto
		}
		return runtime.NewErrorObject(proto, err)
	}
	return global
}

// fn installs a native method on an object.
func fn(cx *runtime.Context, realm *runtime.Realm, obj runtime.Scriptable, name string, arity int, impl runtime.NativeFunc) *runtime.NativeFunction {
	f := runtime.NewNativeFunction(name, arity, realm.FunctionProto, impl)
	obj.DefineOwn(cx, name, &runtime.Property{Value: f, Writable: true, Configurable: true})
	return f
}

// thisObject coerces a method receiver to a Scriptable.
func thisObject(cx *runtime.Context, this runtime.Value, method string) (runtime.Scriptable, error) {
	obj, ok := this.(runtime.Scriptable)
	if !ok {
		return nil, runtime.NewTypeError(cx, "%s called on a non-object receiver", method)
	}
	return obj, nil
}
