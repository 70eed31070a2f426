package ffi

import (
	"math/big"
	"reflect"
	"unicode/utf16"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

// countUnits counts UTF-16 code units of a string.
func countUnits(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// ScriptToGo applies the resolved conversion: primitives unbox and widen,
// script arrays materialize element-wise into host slices, script functions
// become generated func adapters that dispatch back into the script.
func ScriptToGo(cx *runtime.Context, v runtime.Value, target reflect.Type) (reflect.Value, error) {
	if tw := cx.TypeWrappers().Find(v, target.String()); tw != nil {
		got, err := tw.Convert(cx, v, target.String())
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(got), nil
	}

	anyTarget := target.Kind() == reflect.Interface && target.NumMethod() == 0

	switch n := v.(type) {
	case *runtime.NullValue:
		switch target.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(target), nil
		}
	case *runtime.UndefinedValue:
		if target.Kind() == reflect.String {
			return reflect.ValueOf("undefined").Convert(target), nil
		}
		if anyTarget {
			return reflect.Zero(target), nil
		}
	case *runtime.BooleanValue:
		switch {
		case target.Kind() == reflect.Bool:
			return reflect.ValueOf(n.Value).Convert(target), nil
		case anyTarget:
			return reflect.ValueOf(n.Value), nil
		}
	case *runtime.NumberValue:
		switch {
		case isNumericKind(target.Kind()):
			return reflect.ValueOf(n.Value).Convert(target), nil
		case anyTarget:
			return reflect.ValueOf(n.Value), nil
		case target.Kind() == reflect.String:
			return reflect.ValueOf(runtime.FormatNumber(n.Value)).Convert(target), nil
		}
	case *runtime.BigIntValue:
		if target == reflect.TypeOf((*big.Int)(nil)) {
			return reflect.ValueOf(n.Value), nil
		}
		switch {
		case isNumericKind(target.Kind()):
			f, _ := new(big.Float).SetInt(n.Value).Float64()
			return reflect.ValueOf(f).Convert(target), nil
		case anyTarget:
			return reflect.ValueOf(n.Value), nil
		case target.Kind() == reflect.String:
			return reflect.ValueOf(n.Value.String()).Convert(target), nil
		}
	case *runtime.StringValue:
		switch {
		case target.Kind() == reflect.String:
			return reflect.ValueOf(n.Value).Convert(target), nil
		case target.Kind() == reflect.Int32 || target.Kind() == reflect.Uint16:
			runes := []rune(n.Value)
			if len(runes) > 0 {
				return reflect.ValueOf(runes[0]).Convert(target), nil
			}
		case isNumericKind(target.Kind()):
			f, err := runtime.ToNumber(cx, n)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(f).Convert(target), nil
		case anyTarget:
			return reflect.ValueOf(n.Value), nil
		}
	case *HostObject:
		hostType := n.value.Type()
		switch {
		case hostType.AssignableTo(target):
			return n.value, nil
		case hostType.Kind() == reflect.Ptr && hostType.Elem().AssignableTo(target):
			return n.value.Elem(), nil
		case target.Kind() == reflect.String:
			s, err := runtime.ToString(cx, n)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(s).Convert(target), nil
		case anyTarget:
			return reflect.ValueOf(n.value.Interface()), nil
		}
	case *HostSlice:
		if n.slice.Type().AssignableTo(target) {
			return n.slice, nil
		}
		if anyTarget {
			return reflect.ValueOf(n.slice.Interface()), nil
		}
	case *HostMap:
		if n.value.Type().AssignableTo(target) {
			return n.value, nil
		}
		if anyTarget {
			return reflect.ValueOf(n.value.Interface()), nil
		}
	case *runtime.ArrayObject:
		switch target.Kind() {
		case reflect.Slice:
			out := reflect.MakeSlice(target, n.Len(), n.Len())
			for i := 0; i < n.Len(); i++ {
				el, err := ScriptToGo(cx, n.At(i), target.Elem())
				if err != nil {
					return reflect.Value{}, err
				}
				out.Index(i).Set(el)
			}
			return out, nil
		case reflect.Array:
			if n.Len() != target.Len() {
				return reflect.Value{}, runtime.NewTypeError(cx, "array length %d does not fit host array of %d", n.Len(), target.Len())
			}
			out := reflect.New(target).Elem()
			for i := 0; i < n.Len(); i++ {
				el, err := ScriptToGo(cx, n.At(i), target.Elem())
				if err != nil {
					return reflect.Value{}, err
				}
				out.Index(i).Set(el)
			}
			return out, nil
		}
		if anyTarget {
			out := make([]any, n.Len())
			for i := 0; i < n.Len(); i++ {
				el, err := ScriptToGo(cx, n.At(i), anyType)
				if err != nil {
					return reflect.Value{}, err
				}
				out[i] = el.Interface()
			}
			return reflect.ValueOf(out), nil
		}
	}

	if fn, ok := v.(runtime.Callable); ok && target.Kind() == reflect.Func {
		return makeFuncAdapter(cx, fn, target), nil
	}

	if obj, ok := v.(runtime.Scriptable); ok {
		switch target.Kind() {
		case reflect.Map:
			if target.Key().Kind() == reflect.String {
				out := reflect.MakeMap(target)
				for _, key := range obj.OwnKeys(cx, true) {
					pv, err := runtime.GetProperty(cx, obj, key)
					if err != nil {
						return reflect.Value{}, err
					}
					gv, err := ScriptToGo(cx, pv, target.Elem())
					if err != nil {
						return reflect.Value{}, err
					}
					out.SetMapIndex(reflect.ValueOf(key).Convert(target.Key()), gv)
				}
				return out, nil
			}
		case reflect.String:
			s, err := runtime.ToString(cx, obj)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(s).Convert(target), nil
		case reflect.Interface:
			if anyTarget {
				return reflect.ValueOf(v), nil
			}
		}
	}

	return reflect.Value{}, runtime.NewTypeError(cx, "cannot convert %s to host type %s", v.TypeOf(), target)
}

var (
	anyType   = reflect.TypeOf((*any)(nil)).Elem()
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// makeFuncAdapter builds a host func whose body dispatches back into the
// script function. Arguments wrap into script values; the script result
// coerces back to the func's return type. A trailing error return receives
// errors thrown by the script.
func makeFuncAdapter(cx *runtime.Context, fn runtime.Callable, target reflect.Type) reflect.Value {
	return reflect.MakeFunc(target, func(in []reflect.Value) []reflect.Value {
		args := make([]runtime.Value, len(in))
		for i, gv := range in {
			wrapped, err := WrapGoValue(cx, gv.Interface())
			if err != nil {
				return adapterFailure(cx, target, err)
			}
			args[i] = wrapped
		}
		res, err := fn.Call(cx, runtime.Undefined, args)
		if err != nil {
			return adapterFailure(cx, target, err)
		}

		out := make([]reflect.Value, target.NumOut())
		for i := 0; i < target.NumOut(); i++ {
			ot := target.Out(i)
			if ot == errorType {
				out[i] = reflect.Zero(errorType)
				continue
			}
			gv, cerr := ScriptToGo(cx, res, ot)
			if cerr != nil {
				return adapterFailure(cx, target, cerr)
			}
			out[i] = gv
		}
		return out
	})
}

// adapterFailure reports a script error through the adapted func: via the
// trailing error return when there is one, by panicking otherwise (the
// bridge call site recovers and wraps).
func adapterFailure(cx *runtime.Context, target reflect.Type, err error) []reflect.Value {
	n := target.NumOut()
	if n > 0 && target.Out(n-1) == errorType {
		out := make([]reflect.Value, n)
		for i := 0; i < n-1; i++ {
			out[i] = reflect.Zero(target.Out(i))
		}
		out[n-1] = reflect.ValueOf(err)
		return out
	}
	panic(err)
}
