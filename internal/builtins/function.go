package builtins

import (
	"github.com/gigaherz/rhinogo/internal/runtime"
)

func initFunction(cx *runtime.Context, realm *runtime.Realm, global runtime.Scriptable) {
	proto := realm.FunctionProto

	ctor := runtime.NewNativeFunction("Function", 0, proto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return nil, runtime.NewEvaluatorError(cx, "the Function constructor is not supported")
		})
	ctor.DefineOwn(cx, "prototype", &runtime.Property{Value: proto})
	proto.DefineOwn(cx, "constructor", &runtime.Property{Value: ctor, Writable: true, Configurable: true})
	global.SetOwn(cx, "Function", ctor)

	fn(cx, realm, proto, "call", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		callable, ok := this.(runtime.Callable)
		if !ok {
			return nil, runtime.NewTypeError(cx, "Function.prototype.call receiver is not callable")
		}
		receiver := runtime.Arg(args, 0)
		if len(args) > 1 {
			return callable.Call(cx, receiver, args[1:])
		}
		return callable.Call(cx, receiver, nil)
	})

	fn(cx, realm, proto, "apply", 2, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		callable, ok := this.(runtime.Callable)
		if !ok {
			return nil, runtime.NewTypeError(cx, "Function.prototype.apply receiver is not callable")
		}
		receiver := runtime.Arg(args, 0)
		var callArgs []runtime.Value
		if arr, ok := runtime.Arg(args, 1).(*runtime.ArrayObject); ok {
			for i := 0; i < arr.Len(); i++ {
				callArgs = append(callArgs, arr.At(i))
			}
		}
		return callable.Call(cx, receiver, callArgs)
	})

	fn(cx, realm, proto, "bind", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		callable, ok := this.(runtime.Callable)
		if !ok {
			return nil, runtime.NewTypeError(cx, "Function.prototype.bind receiver is not callable")
		}
		boundThis := runtime.Arg(args, 0)
		var boundArgs []runtime.Value
		if len(args) > 1 {
			boundArgs = append(boundArgs, args[1:]...)
		}
		return runtime.NewNativeFunction("bound", 0, realm.FunctionProto,
			func(cx *runtime.Context, _ runtime.Value, callArgs []runtime.Value) (runtime.Value, error) {
				all := append(append([]runtime.Value{}, boundArgs...), callArgs...)
				return callable.Call(cx, boundThis, all)
			}), nil
	})

	fn(cx, realm, proto, "toString", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.String(this.ToDisplay()), nil
	})
}
