package ffi

import (
	"iter"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

// stepFunc produces the next element of a host iteration: (value, more,
// error).
type stepFunc func(cx *runtime.Context) (runtime.Value, bool, error)

// newStepIterator builds a script iterator object honoring the `next()`
// contract: each call returns `{value, done}`. It is the bridge between
// host hasNext/next-style iteration and the script protocol.
func newStepIterator(f *Factory, step stepFunc) runtime.Scriptable {
	it := runtime.NewObject("Iterator", f.ObjectProto)
	done := false
	next := runtime.NewNativeFunction("next", 0, f.FuncProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			result := runtime.NewObject("Object", f.ObjectProto)
			if !done {
				v, more, err := step(cx)
				if err != nil {
					return nil, err
				}
				if more {
					result.SetOwn(cx, "value", v)
					result.SetOwn(cx, "done", runtime.False)
					return result, nil
				}
				done = true
			}
			result.SetOwn(cx, "value", runtime.Undefined)
			result.SetOwn(cx, "done", runtime.True)
			return result, nil
		})
	it.SetOwn(nil, "next", next)

	// return() lets for…of close the iterator on abrupt exit.
	ret := runtime.NewNativeFunction("return", 0, f.FuncProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			done = true
			result := runtime.NewObject("Object", f.ObjectProto)
			result.SetOwn(cx, "value", runtime.Arg(args, 0))
			result.SetOwn(cx, "done", runtime.True)
			return result, nil
		})
	it.SetOwn(nil, "return", ret)

	// The iterator is itself iterable.
	self := runtime.NewNativeFunction("[Symbol.iterator]", 0, f.FuncProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return it, nil
		})
	it.SetOwnSymbol(nil, runtime.SymIterator, &runtime.Property{Value: self})
	return it
}

// wrapIterable exposes a host iter.Seq as a script iterable object: each
// Symbol.iterator call starts a fresh pass over the sequence.
func (f *Factory) wrapIterable(cx *runtime.Context, seq iter.Seq[any]) runtime.Scriptable {
	obj := runtime.NewObject("JavaIterable", f.ObjectProto)
	fn := runtime.NewNativeFunction("[Symbol.iterator]", 0, f.FuncProto,
		func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			next, stop := iter.Pull(seq)
			iterator := newStepIterator(f, func(cx *runtime.Context) (runtime.Value, bool, error) {
				v, ok := next()
				if !ok {
					stop()
					return nil, false, nil
				}
				w, err := f.wrap(cx, v)
				if err != nil {
					stop()
					return nil, false, err
				}
				return w, true, nil
			})
			return iterator, nil
		})
	obj.SetOwnSymbol(nil, runtime.SymIterator, &runtime.Property{Value: fn})
	return obj
}
