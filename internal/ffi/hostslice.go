package ffi

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

// HostSlice exposes a Go slice or array as an integer-indexed script
// object with `length` and the standard array method suite. Mutating
// methods work on slices, not arrays; only a wrapper made from a *[]T
// writes a resized slice back through the pointer so host callers observe
// it. Reads work on any slice or array.
type HostSlice struct {
	*runtime.BaseObject
	factory *Factory

	// slice is the current slice value; ptr, when valid, is the *[]T the
	// wrapper writes back through so host callers observe mutations.
	slice reflect.Value
	ptr   reflect.Value

	methods map[string]*runtime.NativeFunction
}

func newHostSlice(f *Factory, rv reflect.Value) *HostSlice {
	return &HostSlice{
		BaseObject: runtime.NewObject("JavaArray", f.ObjectProto),
		factory:    f,
		slice:      rv,
	}
}

func newHostSlicePtr(f *Factory, ptr reflect.Value) *HostSlice {
	h := newHostSlice(f, ptr.Elem())
	h.ptr = ptr
	return h
}

// Unwrap returns the underlying host slice.
func (h *HostSlice) Unwrap() any { return h.slice.Interface() }

func (h *HostSlice) ToDisplay() string {
	var sb strings.Builder
	for i := 0; i < h.slice.Len(); i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		if w, err := h.factory.wrap(nil, h.slice.Index(i).Interface()); err == nil {
			sb.WriteString(w.ToDisplay())
		}
	}
	return sb.String()
}

// store writes a (possibly re-allocated) slice back through the pointer.
func (h *HostSlice) store(s reflect.Value) error {
	h.slice = s
	if h.ptr.IsValid() {
		h.ptr.Elem().Set(s)
		return nil
	}
	return nil
}

func (h *HostSlice) mutable(cx *runtime.Context, op string) error {
	if h.slice.Kind() != reflect.Slice {
		return runtime.NewTypeError(cx, "%s is not supported on a host array", op)
	}
	return nil
}

func (h *HostSlice) GetOwn(cx *runtime.Context, key string) (*runtime.Property, bool) {
	if key == "length" {
		return &runtime.Property{Value: runtime.Number(float64(h.slice.Len()))}, true
	}
	if idx, ok := runtime.IsArrayIndex(key); ok {
		if int(idx) < h.slice.Len() {
			w, err := h.factory.wrap(cx, h.slice.Index(int(idx)).Interface())
			if err != nil {
				return nil, false
			}
			return &runtime.Property{Value: w, Writable: true, Enumerable: true}, true
		}
		return nil, false
	}
	if fn, ok := h.method(cx, key); ok {
		return &runtime.Property{Value: fn}, true
	}
	return h.BaseObject.GetOwn(cx, key)
}

func (h *HostSlice) SetOwn(cx *runtime.Context, key string, v runtime.Value) bool {
	if idx, ok := runtime.IsArrayIndex(key); ok {
		if int(idx) >= h.slice.Len() {
			return false
		}
		el := h.slice.Index(int(idx))
		if !el.CanSet() {
			return false
		}
		gv, err := ScriptToGo(cx, v, el.Type())
		if err != nil {
			return false
		}
		el.Set(gv)
		return true
	}
	return h.BaseObject.SetOwn(cx, key, v)
}

func (h *HostSlice) OwnKeys(cx *runtime.Context, enumOnly bool) []string {
	keys := make([]string, 0, h.slice.Len())
	for i := 0; i < h.slice.Len(); i++ {
		keys = append(keys, strconv.Itoa(i))
	}
	return append(keys, h.BaseObject.OwnKeys(cx, enumOnly)...)
}

// GetOwnSymbol exposes the iterator protocol so `for…of` works over host
// lists.
func (h *HostSlice) GetOwnSymbol(cx *runtime.Context, sym *runtime.SymbolValue) (*runtime.Property, bool) {
	if sym == runtime.SymIterator {
		fn := runtime.NewNativeFunction("[Symbol.iterator]", 0, h.factory.FuncProto,
			func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
				i := 0
				return newStepIterator(h.factory, func(cx *runtime.Context) (runtime.Value, bool, error) {
					if i >= h.slice.Len() {
						return nil, false, nil
					}
					w, err := h.factory.wrap(cx, h.slice.Index(i).Interface())
					i++
					if err != nil {
						return nil, false, err
					}
					return w, true, nil
				}), nil
			})
		return &runtime.Property{Value: fn}, true
	}
	return h.BaseObject.GetOwnSymbol(cx, sym)
}

func (h *HostSlice) method(cx *runtime.Context, name string) (*runtime.NativeFunction, bool) {
	if h.methods == nil {
		h.methods = make(map[string]*runtime.NativeFunction)
	}
	if fn, ok := h.methods[name]; ok {
		return fn, true
	}
	impl, ok := hostSliceMethods[name]
	if !ok {
		return nil, false
	}
	fn := runtime.NewNativeFunction(name, 0, h.factory.FuncProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return impl(cx, h, args)
		})
	h.methods[name] = fn
	return fn, true
}

type sliceMethod func(cx *runtime.Context, h *HostSlice, args []runtime.Value) (runtime.Value, error)

var hostSliceMethods map[string]sliceMethod

func init() {
	hostSliceMethods = map[string]sliceMethod{
		"push":          slicePush,
		"pop":           slicePop,
		"shift":         sliceShift,
		"unshift":       sliceUnshift,
		"concat":        sliceConcat,
		"join":          sliceJoin,
		"reverse":       sliceReverse,
		"indexOf":       sliceIndexOf,
		"includes":      sliceIncludes,
		"every":         makeSlicePredicate("every"),
		"some":          makeSlicePredicate("some"),
		"filter":        sliceFilter,
		"map":           sliceMap,
		"forEach":       sliceForEach,
		"reduce":        makeSliceReduce(false),
		"reduceRight":   makeSliceReduce(true),
		"find":          makeSliceFind(false, false),
		"findIndex":     makeSliceFind(false, true),
		"findLast":      makeSliceFind(true, false),
		"findLastIndex": makeSliceFind(true, true),
		// slice and splice are not implemented for host lists; the
		// original engine throws here and callers depend on that.
		"slice":  sliceNotImplemented("slice"),
		"splice": sliceNotImplemented("splice"),
	}
}

func sliceNotImplemented(name string) sliceMethod {
	return func(cx *runtime.Context, h *HostSlice, args []runtime.Value) (runtime.Value, error) {
		return nil, runtime.NewTypeError(cx, "%s is not implemented for host lists", name)
	}
}

func slicePush(cx *runtime.Context, h *HostSlice, args []runtime.Value) (runtime.Value, error) {
	if err := h.mutable(cx, "push"); err != nil {
		return nil, err
	}
	s := h.slice
	for _, a := range args {
		gv, err := ScriptToGo(cx, a, s.Type().Elem())
		if err != nil {
			return nil, err
		}
		s = reflect.Append(s, gv)
	}
	h.store(s)
	return runtime.Number(float64(s.Len())), nil
}

func slicePop(cx *runtime.Context, h *HostSlice, args []runtime.Value) (runtime.Value, error) {
	if err := h.mutable(cx, "pop"); err != nil {
		return nil, err
	}
	n := h.slice.Len()
	if n == 0 {
		return runtime.Undefined, nil
	}
	last, err := h.factory.wrap(cx, h.slice.Index(n-1).Interface())
	if err != nil {
		return nil, err
	}
	h.store(h.slice.Slice(0, n-1))
	return last, nil
}

func sliceShift(cx *runtime.Context, h *HostSlice, args []runtime.Value) (runtime.Value, error) {
	if err := h.mutable(cx, "shift"); err != nil {
		return nil, err
	}
	n := h.slice.Len()
	if n == 0 {
		return runtime.Undefined, nil
	}
	first, err := h.factory.wrap(cx, h.slice.Index(0).Interface())
	if err != nil {
		return nil, err
	}
	h.store(h.slice.Slice(1, n))
	return first, nil
}

func sliceUnshift(cx *runtime.Context, h *HostSlice, args []runtime.Value) (runtime.Value, error) {
	if err := h.mutable(cx, "unshift"); err != nil {
		return nil, err
	}
	out := reflect.MakeSlice(h.slice.Type(), 0, h.slice.Len()+len(args))
	for _, a := range args {
		gv, err := ScriptToGo(cx, a, h.slice.Type().Elem())
		if err != nil {
			return nil, err
		}
		out = reflect.Append(out, gv)
	}
	out = reflect.AppendSlice(out, h.slice)
	h.store(out)
	return runtime.Number(float64(out.Len())), nil
}

func sliceConcat(cx *runtime.Context, h *HostSlice, args []runtime.Value) (runtime.Value, error) {
	if h.slice.Kind() != reflect.Slice {
		return nil, runtime.NewTypeError(cx, "concat is not supported on a host array")
	}
	out := reflect.MakeSlice(h.slice.Type(), 0, h.slice.Len())
	out = reflect.AppendSlice(out, h.slice)
	for _, a := range args {
		switch n := a.(type) {
		case *HostSlice:
			out = reflect.AppendSlice(out, n.slice)
		case *runtime.ArrayObject:
			for i := 0; i < n.Len(); i++ {
				gv, err := ScriptToGo(cx, n.At(i), h.slice.Type().Elem())
				if err != nil {
					return nil, err
				}
				out = reflect.Append(out, gv)
			}
		default:
			gv, err := ScriptToGo(cx, a, h.slice.Type().Elem())
			if err != nil {
				return nil, err
			}
			out = reflect.Append(out, gv)
		}
	}
	return newHostSlice(h.factory, out), nil
}

func sliceJoin(cx *runtime.Context, h *HostSlice, args []runtime.Value) (runtime.Value, error) {
	sep := ","
	if len(args) > 0 && !runtime.IsNullish(args[0]) {
		s, err := runtime.ToString(cx, args[0])
		if err != nil {
			return nil, err
		}
		sep = s
	}
	var sb strings.Builder
	for i := 0; i < h.slice.Len(); i++ {
		if i > 0 {
			sb.WriteString(sep)
		}
		w, err := h.factory.wrap(cx, h.slice.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		s, err := runtime.ToString(cx, w)
		if err != nil {
			return nil, err
		}
		sb.WriteString(s)
	}
	return runtime.String(sb.String()), nil
}

func sliceReverse(cx *runtime.Context, h *HostSlice, args []runtime.Value) (runtime.Value, error) {
	if err := h.mutable(cx, "reverse"); err != nil {
		return nil, err
	}
	n := h.slice.Len()
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		a := h.slice.Index(i).Interface()
		b := h.slice.Index(j).Interface()
		h.slice.Index(i).Set(reflect.ValueOf(b))
		h.slice.Index(j).Set(reflect.ValueOf(a))
	}
	return h, nil
}

func sliceIndexOf(cx *runtime.Context, h *HostSlice, args []runtime.Value) (runtime.Value, error) {
	target := runtime.Arg(args, 0)
	for i := 0; i < h.slice.Len(); i++ {
		w, err := h.factory.wrap(cx, h.slice.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		if runtime.StrictEquals(w, target) {
			return runtime.Number(float64(i)), nil
		}
	}
	return runtime.Number(-1), nil
}

func sliceIncludes(cx *runtime.Context, h *HostSlice, args []runtime.Value) (runtime.Value, error) {
	idx, err := sliceIndexOf(cx, h, args)
	if err != nil {
		return nil, err
	}
	return runtime.Bool(idx.(*runtime.NumberValue).Value >= 0), nil
}

// callback invokes a script callback with (element, index, list).
func (h *HostSlice) callback(cx *runtime.Context, fn runtime.Value, i int) (runtime.Value, error) {
	callable, ok := fn.(runtime.Callable)
	if !ok {
		return nil, runtime.NewTypeError(cx, "callback is not a function")
	}
	el, err := h.factory.wrap(cx, h.slice.Index(i).Interface())
	if err != nil {
		return nil, err
	}
	return callable.Call(cx, runtime.Undefined, []runtime.Value{el, runtime.Number(float64(i)), h})
}

func makeSlicePredicate(name string) sliceMethod {
	every := name == "every"
	return func(cx *runtime.Context, h *HostSlice, args []runtime.Value) (runtime.Value, error) {
		for i := 0; i < h.slice.Len(); i++ {
			res, err := h.callback(cx, runtime.Arg(args, 0), i)
			if err != nil {
				return nil, err
			}
			if runtime.ToBoolean(res) != every {
				return runtime.Bool(!every), nil
			}
		}
		return runtime.Bool(every), nil
	}
}

func sliceFilter(cx *runtime.Context, h *HostSlice, args []runtime.Value) (runtime.Value, error) {
	out := reflect.MakeSlice(reflect.SliceOf(h.slice.Type().Elem()), 0, 0)
	for i := 0; i < h.slice.Len(); i++ {
		res, err := h.callback(cx, runtime.Arg(args, 0), i)
		if err != nil {
			return nil, err
		}
		if runtime.ToBoolean(res) {
			out = reflect.Append(out, h.slice.Index(i))
		}
	}
	return newHostSlice(h.factory, out), nil
}

func sliceMap(cx *runtime.Context, h *HostSlice, args []runtime.Value) (runtime.Value, error) {
	els := make([]runtime.Value, h.slice.Len())
	for i := 0; i < h.slice.Len(); i++ {
		res, err := h.callback(cx, runtime.Arg(args, 0), i)
		if err != nil {
			return nil, err
		}
		els[i] = res
	}
	return h.factory.newArray(els), nil
}

func sliceForEach(cx *runtime.Context, h *HostSlice, args []runtime.Value) (runtime.Value, error) {
	for i := 0; i < h.slice.Len(); i++ {
		if _, err := h.callback(cx, runtime.Arg(args, 0), i); err != nil {
			return nil, err
		}
	}
	return runtime.Undefined, nil
}

func makeSliceReduce(fromRight bool) sliceMethod {
	return func(cx *runtime.Context, h *HostSlice, args []runtime.Value) (runtime.Value, error) {
		callable, ok := runtime.Arg(args, 0).(runtime.Callable)
		if !ok {
			return nil, runtime.NewTypeError(cx, "callback is not a function")
		}
		n := h.slice.Len()
		indices := make([]int, n)
		for i := range indices {
			if fromRight {
				indices[i] = n - 1 - i
			} else {
				indices[i] = i
			}
		}
		var acc runtime.Value
		start := 0
		if len(args) > 1 {
			acc = args[1]
		} else {
			if n == 0 {
				return nil, runtime.NewTypeError(cx, "reduce of empty list with no initial value")
			}
			first, err := h.factory.wrap(cx, h.slice.Index(indices[0]).Interface())
			if err != nil {
				return nil, err
			}
			acc = first
			start = 1
		}
		for _, i := range indices[start:] {
			el, err := h.factory.wrap(cx, h.slice.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			acc, err = callable.Call(cx, runtime.Undefined, []runtime.Value{acc, el, runtime.Number(float64(i)), h})
			if err != nil {
				return nil, err
			}
		}
		return acc, nil
	}
}

func makeSliceFind(fromRight, wantIndex bool) sliceMethod {
	return func(cx *runtime.Context, h *HostSlice, args []runtime.Value) (runtime.Value, error) {
		n := h.slice.Len()
		for k := 0; k < n; k++ {
			i := k
			if fromRight {
				i = n - 1 - k
			}
			res, err := h.callback(cx, runtime.Arg(args, 0), i)
			if err != nil {
				return nil, err
			}
			if runtime.ToBoolean(res) {
				if wantIndex {
					return runtime.Number(float64(i)), nil
				}
				return h.factory.wrap(cx, h.slice.Index(i).Interface())
			}
		}
		if wantIndex {
			return runtime.Number(-1), nil
		}
		return runtime.Undefined, nil
	}
}
