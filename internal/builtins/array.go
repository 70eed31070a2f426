package builtins

import (
	"sort"
	"strings"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

// thisArray coerces the receiver of an Array.prototype method.
func thisArray(cx *runtime.Context, this runtime.Value, method string) (*runtime.ArrayObject, error) {
	arr, ok := this.(*runtime.ArrayObject)
	if !ok {
		return nil, runtime.NewTypeError(cx, "Array.prototype.%s called on a non-array receiver", method)
	}
	return arr, nil
}

// callbackArg extracts a function argument.
func callbackArg(cx *runtime.Context, args []runtime.Value, method string) (runtime.Callable, error) {
	callable, ok := runtime.Arg(args, 0).(runtime.Callable)
	if !ok {
		return nil, runtime.NewTypeError(cx, "%s: callback is not a function", method)
	}
	return callable, nil
}

func initArray(cx *runtime.Context, realm *runtime.Realm, global runtime.Scriptable) {
	proto := runtime.NewObject("Array", realm.ObjectProto)
	realm.ArrayProto = proto

	ctor := runtime.NewNativeFunction("Array", 1, realm.FunctionProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return arrayCtor(cx, realm, args)
		})
	ctor.SetConstruct(func(cx *runtime.Context, args []runtime.Value) (runtime.Value, error) {
		return arrayCtor(cx, realm, args)
	})
	ctor.DefineOwn(cx, "prototype", &runtime.Property{Value: proto})
	proto.DefineOwn(cx, "constructor", &runtime.Property{Value: ctor, Writable: true, Configurable: true})
	global.SetOwn(cx, "Array", ctor)

	fn(cx, realm, ctor, "isArray", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		_, ok := runtime.Arg(args, 0).(*runtime.ArrayObject)
		return runtime.Bool(ok), nil
	})

	fn(cx, realm, ctor, "of", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return realm.NewRealmArray(append([]runtime.Value{}, args...)), nil
	})

	fn(cx, realm, ctor, "from", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		src := runtime.Arg(args, 0)
		var els []runtime.Value
		switch n := src.(type) {
		case *runtime.ArrayObject:
			for i := 0; i < n.Len(); i++ {
				els = append(els, n.At(i))
			}
		case *runtime.StringValue:
			for _, r := range n.Value {
				els = append(els, runtime.String(string(r)))
			}
		case runtime.Scriptable:
			lv, err := runtime.GetProperty(cx, n, "length")
			if err != nil {
				return nil, err
			}
			length, err := runtime.ToNumber(cx, lv)
			if err != nil {
				return nil, err
			}
			for i := 0; i < int(length); i++ {
				v, err := runtime.GetProperty(cx, n, runtime.FormatNumber(float64(i)))
				if err != nil {
					return nil, err
				}
				els = append(els, v)
			}
		}
		return realm.NewRealmArray(els), nil
	})

	// Iteration protocol: arrays are the canonical iterable.
	iterFn := runtime.NewNativeFunction("[Symbol.iterator]", 0, realm.FunctionProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			arr, err := thisArray(cx, this, "[Symbol.iterator]")
			if err != nil {
				return nil, err
			}
			i := 0
			return newNativeIterator(cx, realm, func() (runtime.Value, bool) {
				if i >= arr.Len() {
					return nil, false
				}
				v := arr.At(i)
				i++
				return v, true
			}), nil
		})
	proto.SetOwnSymbol(cx, runtime.SymIterator, &runtime.Property{Value: iterFn})

	fn(cx, realm, proto, "push", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		arr, err := thisArray(cx, this, "push")
		if err != nil {
			return nil, err
		}
		arr.Append(args...)
		return runtime.Number(float64(arr.Len())), nil
	})

	fn(cx, realm, proto, "pop", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		arr, err := thisArray(cx, this, "pop")
		if err != nil {
			return nil, err
		}
		n := arr.Len()
		if n == 0 {
			return runtime.Undefined, nil
		}
		last := arr.At(n - 1)
		arr.SetElements(arr.Elements()[:n-1])
		return last, nil
	})

	fn(cx, realm, proto, "shift", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		arr, err := thisArray(cx, this, "shift")
		if err != nil {
			return nil, err
		}
		if arr.Len() == 0 {
			return runtime.Undefined, nil
		}
		first := arr.At(0)
		arr.SetElements(arr.Elements()[1:])
		return first, nil
	})

	fn(cx, realm, proto, "unshift", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		arr, err := thisArray(cx, this, "unshift")
		if err != nil {
			return nil, err
		}
		arr.SetElements(append(append([]runtime.Value{}, args...), arr.Elements()...))
		return runtime.Number(float64(arr.Len())), nil
	})

	fn(cx, realm, proto, "concat", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		arr, err := thisArray(cx, this, "concat")
		if err != nil {
			return nil, err
		}
		out := append([]runtime.Value{}, arr.Elements()...)
		for _, a := range args {
			out = appendConcat(cx, out, a)
		}
		return realm.NewRealmArray(out), nil
	})

	fn(cx, realm, proto, "join", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		arr, err := thisArray(cx, this, "join")
		if err != nil {
			return nil, err
		}
		sep := ","
		if len(args) > 0 && !runtime.IsNullish(args[0]) {
			sep, err = runtime.ToString(cx, args[0])
			if err != nil {
				return nil, err
			}
		}
		parts := make([]string, arr.Len())
		for i := 0; i < arr.Len(); i++ {
			el := arr.At(i)
			if runtime.IsNullish(el) {
				continue
			}
			s, err := runtime.ToString(cx, el)
			if err != nil {
				return nil, err
			}
			parts[i] = s
		}
		return runtime.String(strings.Join(parts, sep)), nil
	})

	fn(cx, realm, proto, "reverse", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		arr, err := thisArray(cx, this, "reverse")
		if err != nil {
			return nil, err
		}
		els := arr.Elements()
		for i, j := 0, len(els)-1; i < j; i, j = i+1, j-1 {
			els[i], els[j] = els[j], els[i]
		}
		return arr, nil
	})

	fn(cx, realm, proto, "slice", 2, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		arr, err := thisArray(cx, this, "slice")
		if err != nil {
			return nil, err
		}
		start, end, err := sliceBounds(cx, args, arr.Len())
		if err != nil {
			return nil, err
		}
		out := append([]runtime.Value{}, arr.Elements()[start:end]...)
		return realm.NewRealmArray(out), nil
	})

	fn(cx, realm, proto, "splice", 2, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		arr, err := thisArray(cx, this, "splice")
		if err != nil {
			return nil, err
		}
		n := arr.Len()
		start, err := relativeIndex(cx, runtime.Arg(args, 0), n)
		if err != nil {
			return nil, err
		}
		deleteCount := n - start
		if len(args) > 1 {
			f, err := runtime.ToNumber(cx, args[1])
			if err != nil {
				return nil, err
			}
			deleteCount = int(f)
		}
		if deleteCount < 0 {
			deleteCount = 0
		}
		if start+deleteCount > n {
			deleteCount = n - start
		}
		removed := append([]runtime.Value{}, arr.Elements()[start:start+deleteCount]...)
		var inserted []runtime.Value
		if len(args) > 2 {
			inserted = args[2:]
		}
		els := arr.Elements()
		out := append(append(append([]runtime.Value{}, els[:start]...), inserted...), els[start+deleteCount:]...)
		arr.SetElements(out)
		return realm.NewRealmArray(removed), nil
	})

	fn(cx, realm, proto, "indexOf", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		arr, err := thisArray(cx, this, "indexOf")
		if err != nil {
			return nil, err
		}
		for i := 0; i < arr.Len(); i++ {
			if runtime.StrictEquals(arr.At(i), runtime.Arg(args, 0)) {
				return runtime.Number(float64(i)), nil
			}
		}
		return runtime.Number(-1), nil
	})

	fn(cx, realm, proto, "lastIndexOf", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		arr, err := thisArray(cx, this, "lastIndexOf")
		if err != nil {
			return nil, err
		}
		for i := arr.Len() - 1; i >= 0; i-- {
			if runtime.StrictEquals(arr.At(i), runtime.Arg(args, 0)) {
				return runtime.Number(float64(i)), nil
			}
		}
		return runtime.Number(-1), nil
	})

	fn(cx, realm, proto, "includes", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		arr, err := thisArray(cx, this, "includes")
		if err != nil {
			return nil, err
		}
		for i := 0; i < arr.Len(); i++ {
			if runtime.SameValueZero(arr.At(i), runtime.Arg(args, 0)) {
				return runtime.True, nil
			}
		}
		return runtime.False, nil
	})

	each := func(name string, body func(cx *runtime.Context, realm *runtime.Realm, arr *runtime.ArrayObject, cb runtime.Callable, args []runtime.Value) (runtime.Value, error)) {
		fn(cx, realm, proto, name, 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			arr, err := thisArray(cx, this, name)
			if err != nil {
				return nil, err
			}
			cb, err := callbackArg(cx, args, name)
			if err != nil {
				return nil, err
			}
			return body(cx, realm, arr, cb, args)
		})
	}

	each("forEach", func(cx *runtime.Context, realm *runtime.Realm, arr *runtime.ArrayObject, cb runtime.Callable, args []runtime.Value) (runtime.Value, error) {
		for i := 0; i < arr.Len(); i++ {
			if _, err := cb.Call(cx, runtime.Undefined, []runtime.Value{arr.At(i), runtime.Number(float64(i)), arr}); err != nil {
				return nil, err
			}
		}
		return runtime.Undefined, nil
	})

	each("map", func(cx *runtime.Context, realm *runtime.Realm, arr *runtime.ArrayObject, cb runtime.Callable, args []runtime.Value) (runtime.Value, error) {
		out := make([]runtime.Value, arr.Len())
		for i := 0; i < arr.Len(); i++ {
			v, err := cb.Call(cx, runtime.Undefined, []runtime.Value{arr.At(i), runtime.Number(float64(i)), arr})
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return realm.NewRealmArray(out), nil
	})

	each("filter", func(cx *runtime.Context, realm *runtime.Realm, arr *runtime.ArrayObject, cb runtime.Callable, args []runtime.Value) (runtime.Value, error) {
		var out []runtime.Value
		for i := 0; i < arr.Len(); i++ {
			v, err := cb.Call(cx, runtime.Undefined, []runtime.Value{arr.At(i), runtime.Number(float64(i)), arr})
			if err != nil {
				return nil, err
			}
			if runtime.ToBoolean(v) {
				out = append(out, arr.At(i))
			}
		}
		return realm.NewRealmArray(out), nil
	})

	each("every", func(cx *runtime.Context, realm *runtime.Realm, arr *runtime.ArrayObject, cb runtime.Callable, args []runtime.Value) (runtime.Value, error) {
		for i := 0; i < arr.Len(); i++ {
			v, err := cb.Call(cx, runtime.Undefined, []runtime.Value{arr.At(i), runtime.Number(float64(i)), arr})
			if err != nil {
				return nil, err
			}
			if !runtime.ToBoolean(v) {
				return runtime.False, nil
			}
		}
		return runtime.True, nil
	})

	each("some", func(cx *runtime.Context, realm *runtime.Realm, arr *runtime.ArrayObject, cb runtime.Callable, args []runtime.Value) (runtime.Value, error) {
		for i := 0; i < arr.Len(); i++ {
			v, err := cb.Call(cx, runtime.Undefined, []runtime.Value{arr.At(i), runtime.Number(float64(i)), arr})
			if err != nil {
				return nil, err
			}
			if runtime.ToBoolean(v) {
				return runtime.True, nil
			}
		}
		return runtime.False, nil
	})

	finder := func(name string, fromRight, wantIndex bool) {
		each(name, func(cx *runtime.Context, realm *runtime.Realm, arr *runtime.ArrayObject, cb runtime.Callable, args []runtime.Value) (runtime.Value, error) {
			n := arr.Len()
			for k := 0; k < n; k++ {
				i := k
				if fromRight {
					i = n - 1 - k
				}
				v, err := cb.Call(cx, runtime.Undefined, []runtime.Value{arr.At(i), runtime.Number(float64(i)), arr})
				if err != nil {
					return nil, err
				}
				if runtime.ToBoolean(v) {
					if wantIndex {
						return runtime.Number(float64(i)), nil
					}
					return arr.At(i), nil
				}
			}
			if wantIndex {
				return runtime.Number(-1), nil
			}
			return runtime.Undefined, nil
		})
	}
	finder("find", false, false)
	finder("findIndex", false, true)
	finder("findLast", true, false)
	finder("findLastIndex", true, true)

	reducer := func(name string, fromRight bool) {
		each(name, func(cx *runtime.Context, realm *runtime.Realm, arr *runtime.ArrayObject, cb runtime.Callable, args []runtime.Value) (runtime.Value, error) {
			n := arr.Len()
			order := make([]int, n)
			for i := range order {
				if fromRight {
					order[i] = n - 1 - i
				} else {
					order[i] = i
				}
			}
			var acc runtime.Value
			start := 0
			if len(args) > 1 {
				acc = args[1]
			} else {
				if n == 0 {
					return nil, runtime.NewTypeError(cx, "reduce of empty array with no initial value")
				}
				acc = arr.At(order[0])
				start = 1
			}
			for _, i := range order[start:] {
				v, err := cb.Call(cx, runtime.Undefined, []runtime.Value{acc, arr.At(i), runtime.Number(float64(i)), arr})
				if err != nil {
					return nil, err
				}
				acc = v
			}
			return acc, nil
		})
	}
	reducer("reduce", false)
	reducer("reduceRight", true)

	fn(cx, realm, proto, "sort", 1, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		arr, err := thisArray(cx, this, "sort")
		if err != nil {
			return nil, err
		}
		cmp, _ := runtime.Arg(args, 0).(runtime.Callable)
		els := arr.Elements()
		var sortErr error
		sort.SliceStable(els, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			a, b := els[i], els[j]
			if a == nil || runtime.IsNullish(a) {
				return false
			}
			if b == nil || runtime.IsNullish(b) {
				return true
			}
			if cmp != nil {
				r, err := cmp.Call(cx, runtime.Undefined, []runtime.Value{a, b})
				if err != nil {
					sortErr = err
					return false
				}
				f, err := runtime.ToNumber(cx, r)
				if err != nil {
					sortErr = err
					return false
				}
				return f < 0
			}
			as, err := runtime.ToString(cx, a)
			if err != nil {
				sortErr = err
				return false
			}
			bs, err := runtime.ToString(cx, b)
			if err != nil {
				sortErr = err
				return false
			}
			return as < bs
		})
		if sortErr != nil {
			return nil, sortErr
		}
		return arr, nil
	})

	fn(cx, realm, proto, "flat", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		arr, err := thisArray(cx, this, "flat")
		if err != nil {
			return nil, err
		}
		var out []runtime.Value
		for i := 0; i < arr.Len(); i++ {
			if inner, ok := arr.At(i).(*runtime.ArrayObject); ok {
				out = append(out, inner.Elements()...)
			} else {
				out = append(out, arr.At(i))
			}
		}
		return realm.NewRealmArray(out), nil
	})

	fn(cx, realm, proto, "keys", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		arr, err := thisArray(cx, this, "keys")
		if err != nil {
			return nil, err
		}
		i := 0
		return newNativeIterator(cx, realm, func() (runtime.Value, bool) {
			if i >= arr.Len() {
				return nil, false
			}
			v := runtime.Number(float64(i))
			i++
			return v, true
		}), nil
	})

	fn(cx, realm, proto, "toString", 0, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		arr, err := thisArray(cx, this, "toString")
		if err != nil {
			return runtime.String(this.ToDisplay()), nil
		}
		parts := make([]string, arr.Len())
		for i := 0; i < arr.Len(); i++ {
			el := arr.At(i)
			if runtime.IsNullish(el) {
				continue
			}
			s, err := runtime.ToString(cx, el)
			if err != nil {
				return nil, err
			}
			parts[i] = s
		}
		return runtime.String(strings.Join(parts, ",")), nil
	})
}

func arrayCtor(cx *runtime.Context, realm *runtime.Realm, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 1 {
		if n, ok := args[0].(*runtime.NumberValue); ok {
			size := int(n.Value)
			if float64(size) != n.Value || size < 0 {
				return nil, runtime.NewRangeError(cx, "invalid array length")
			}
			return realm.NewRealmArray(make([]runtime.Value, size)), nil
		}
	}
	return realm.NewRealmArray(append([]runtime.Value{}, args...)), nil
}

// appendConcat honors Symbol.isConcatSpreadable: arrays spread by default,
// an object opting in spreads its indexed elements, everything else
// appends as-is.
func appendConcat(cx *runtime.Context, out []runtime.Value, v runtime.Value) []runtime.Value {
	if arr, ok := v.(*runtime.ArrayObject); ok {
		spread := true
		if p, found := arr.GetOwnSymbol(cx, runtime.SymIsConcatSpreadable); found && p.Value != nil {
			spread = runtime.ToBoolean(p.Value)
		}
		if spread {
			return append(out, arr.Elements()...)
		}
		return append(out, v)
	}
	if obj, ok := v.(runtime.Scriptable); ok {
		if p, found := obj.GetOwnSymbol(cx, runtime.SymIsConcatSpreadable); found && p.Value != nil && runtime.ToBoolean(p.Value) {
			lv, err := runtime.GetProperty(cx, obj, "length")
			if err == nil {
				if length, err := runtime.ToNumber(cx, lv); err == nil {
					for i := 0; i < int(length); i++ {
						el, err := runtime.GetProperty(cx, obj, runtime.FormatNumber(float64(i)))
						if err == nil {
							out = append(out, el)
						}
					}
					return out
				}
			}
		}
	}
	return append(out, v)
}

// sliceBounds resolves (start, end) arguments against a length.
func sliceBounds(cx *runtime.Context, args []runtime.Value, n int) (int, int, error) {
	start, err := relativeIndex(cx, runtime.Arg(args, 0), n)
	if err != nil {
		return 0, 0, err
	}
	end := n
	if len(args) > 1 && !runtime.IsNullish(args[1]) {
		end, err = relativeIndex(cx, args[1], n)
		if err != nil {
			return 0, 0, err
		}
	}
	if end < start {
		end = start
	}
	return start, end, nil
}

// relativeIndex resolves one possibly-negative index against a length.
func relativeIndex(cx *runtime.Context, v runtime.Value, n int) (int, error) {
	if runtime.IsNullish(v) {
		return 0, nil
	}
	f, err := runtime.ToNumber(cx, v)
	if err != nil {
		return 0, err
	}
	i := int(f)
	if i < 0 {
		i += n
	}
	if i < 0 {
		i = 0
	}
	if i > n {
		i = n
	}
	return i, nil
}

// newNativeIterator builds an iterator object over a Go step function,
// honoring the {value, done} contract.
func newNativeIterator(cx *runtime.Context, realm *runtime.Realm, step func() (runtime.Value, bool)) runtime.Scriptable {
	it := runtime.NewObject("Iterator", realm.ObjectProto)
	done := false
	next := runtime.NewNativeFunction("next", 0, realm.FunctionProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			res := realm.NewPlainObject()
			if !done {
				if v, ok := step(); ok {
					res.SetOwn(cx, "value", v)
					res.SetOwn(cx, "done", runtime.False)
					return res, nil
				}
				done = true
			}
			res.SetOwn(cx, "value", runtime.Undefined)
			res.SetOwn(cx, "done", runtime.True)
			return res, nil
		})
	it.SetOwn(cx, "next", next)
	ret := runtime.NewNativeFunction("return", 0, realm.FunctionProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			done = true
			res := realm.NewPlainObject()
			res.SetOwn(cx, "value", runtime.Arg(args, 0))
			res.SetOwn(cx, "done", runtime.True)
			return res, nil
		})
	it.SetOwn(cx, "return", ret)
	self := runtime.NewNativeFunction("[Symbol.iterator]", 0, realm.FunctionProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return it, nil
		})
	it.SetOwnSymbol(cx, runtime.SymIterator, &runtime.Property{Value: self})
	return it
}
