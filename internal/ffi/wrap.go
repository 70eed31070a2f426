package ffi

import (
	"fmt"
	"iter"
	"math/big"
	"reflect"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

// Factory is the default WrapFactory: primitives map onto the script
// primitives, slices/arrays/maps/structs/funcs get reflective proxies, and
// wrappers for the same host object within the same context are memoized so
// identity survives round-trips.
type Factory struct {
	// Mapper customizes member naming; nil applies the standard
	// lower-first rule.
	Mapper NameMapper

	// ObjectProto, FuncProto, and ArrayProto, when set, are the realm
	// prototypes given to wrappers and to the script arrays the bridge
	// materializes, so bridged results carry the standard methods.
	ObjectProto runtime.Scriptable
	FuncProto   runtime.Scriptable
	ArrayProto  runtime.Scriptable
}

// newArray materializes a script array against the realm's
// Array.prototype.
func (f *Factory) newArray(els []runtime.Value) *runtime.ArrayObject {
	return runtime.NewArray(f.ArrayProto, els)
}

// Wrap implements runtime.WrapFactory.
func (f *Factory) Wrap(cx *runtime.Context, v any) (runtime.Value, error) {
	return f.wrap(cx, v)
}

// WrapGoValue wraps using the context's configured factory, falling back
// to a default one.
func WrapGoValue(cx *runtime.Context, v any) (runtime.Value, error) {
	if wf := cx.WrapFactory(); wf != nil {
		return wf.Wrap(cx, v)
	}
	return (&Factory{}).wrap(cx, v)
}

// identityKey builds a comparable cache key for reference-like host
// values. Value kinds (struct copies, primitives) are not cached.
func identityKey(rv reflect.Value) (any, bool) {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		if rv.IsNil() {
			return nil, false
		}
		type refKey struct {
			ptr uintptr
			typ reflect.Type
		}
		return refKey{ptr: rv.Pointer(), typ: rv.Type()}, true
	}
	return nil, false
}

func (f *Factory) wrap(cx *runtime.Context, v any) (runtime.Value, error) {
	switch n := v.(type) {
	case nil:
		return runtime.Null, nil
	case runtime.Value:
		return n, nil
	case bool:
		return runtime.Bool(n), nil
	case string:
		return runtime.String(n), nil
	case int:
		return runtime.Number(float64(n)), nil
	case int8:
		return runtime.Number(float64(n)), nil
	case int16:
		return runtime.Number(float64(n)), nil
	case int32:
		return runtime.Number(float64(n)), nil
	case int64:
		return runtime.Number(float64(n)), nil
	case uint:
		return runtime.Number(float64(n)), nil
	case uint8:
		return runtime.Number(float64(n)), nil
	case uint16:
		return runtime.Number(float64(n)), nil
	case uint32:
		return runtime.Number(float64(n)), nil
	case uint64:
		return runtime.Number(float64(n)), nil
	case float32:
		return runtime.Number(float64(n)), nil
	case float64:
		return runtime.Number(n), nil
	case *big.Int:
		return runtime.BigInt(n), nil
	case error:
		return runtime.String(n.Error()), nil
	case iter.Seq[any]:
		return f.wrapIterable(cx, n), nil
	}

	rv := reflect.ValueOf(v)
	key, cacheable := identityKey(rv)
	cacheable = cacheable && cx != nil
	if cacheable {
		if w, ok := cx.CachedWrapper(key); ok {
			return w, nil
		}
	}

	var wrapped runtime.Scriptable
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		wrapped = newHostSlice(f, rv)
	case reflect.Ptr:
		if rv.IsNil() {
			return runtime.Null, nil
		}
		if rv.Elem().Kind() == reflect.Slice {
			wrapped = newHostSlicePtr(f, rv)
		} else {
			wrapped = newHostObject(f, rv)
		}
	case reflect.Map:
		wrapped = newHostMap(f, rv)
	case reflect.Struct:
		wrapped = newHostObject(f, rv)
	case reflect.Func:
		wrapped = newHostFunc(f, "", rv)
	case reflect.Chan:
		return nil, runtime.NewTypeError(cx, "cannot wrap a host channel")
	default:
		return nil, runtime.NewTypeError(cx, "cannot wrap host value of type %T", v)
	}

	if cacheable {
		cx.CacheWrapper(key, wrapped)
	}
	return wrapped, nil
}

// callReflected invokes a resolved host function with coerced arguments,
// wrapping panics and trailing error returns as script-visible errors.
func callReflected(cx *runtime.Context, f *Factory, name string, fn reflect.Value, args []runtime.Value) (result runtime.Value, err error) {
	fnType := fn.Type()
	numIn := fnType.NumIn()

	var in []reflect.Value
	for i, arg := range args {
		var target reflect.Type
		switch {
		case fnType.IsVariadic() && i >= numIn-1:
			target = fnType.In(numIn - 1).Elem()
		case i < numIn:
			target = fnType.In(i)
		default:
			// Extra arguments beyond the parameter list are dropped,
			// matching script calling conventions.
			continue
		}
		gv, cerr := ScriptToGo(cx, arg, target)
		if cerr != nil {
			return nil, cerr
		}
		in = append(in, gv)
	}
	// Missing arguments become zero values.
	limit := numIn
	if fnType.IsVariadic() {
		limit = numIn - 1
	}
	for len(in) < limit {
		in = append(in, reflect.Zero(fnType.In(len(in))))
	}

	defer func() {
		if r := recover(); r != nil {
			if perr, ok := r.(error); ok {
				err = runtime.WrapHostError(cx, perr)
				return
			}
			err = runtime.WrapHostError(cx, fmt.Errorf("panic in host call %s: %v", name, r))
		}
	}()

	out := fn.Call(in)

	// A trailing error return becomes a Wrapped script error.
	if n := len(out); n > 0 && fnType.Out(n-1) == errorType {
		if !out[n-1].IsNil() {
			return nil, runtime.WrapHostError(cx, out[n-1].Interface().(error))
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return runtime.Undefined, nil
	case 1:
		return f.wrap(cx, out[0].Interface())
	default:
		// Multiple results surface as a script array.
		els := make([]runtime.Value, len(out))
		for i, o := range out {
			w, werr := f.wrap(cx, o.Interface())
			if werr != nil {
				return nil, werr
			}
			els[i] = w
		}
		return f.newArray(els), nil
	}
}

// newHostFunc wraps a Go func value (or a registered overload set) as a
// callable script function.
func newHostFunc(f *Factory, name string, fns ...reflect.Value) *runtime.NativeFunction {
	display := name
	if display == "" {
		display = "hostFunction"
	}
	arity := 0
	if len(fns) > 0 {
		arity = fns[0].Type().NumIn()
	}
	return runtime.NewNativeFunction(display, arity, f.FuncProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			fn := fns[0]
			if len(fns) > 1 {
				resolved, err := resolveFuncOverload(cx, display, fns, args)
				if err != nil {
					return nil, err
				}
				fn = resolved
			}
			return callReflected(cx, f, display, fn, args)
		})
}

// NewHostFunction exposes a Go function (or several, forming an overload
// set) to scripts under the given name.
func NewHostFunction(f *Factory, name string, fns ...any) (*runtime.NativeFunction, error) {
	if f == nil {
		f = &Factory{}
	}
	vals := make([]reflect.Value, len(fns))
	for i, fn := range fns {
		rv := reflect.ValueOf(fn)
		if rv.Kind() != reflect.Func {
			return nil, fmt.Errorf("NewHostFunction: %T is not a func", fn)
		}
		vals[i] = rv
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("NewHostFunction: no functions given")
	}
	return newHostFunc(f, name, vals...), nil
}
