package interp

import (
	"github.com/gigaherz/rhinogo/internal/runtime"
	"github.com/gigaherz/rhinogo/pkg/ast"
)

// scriptIterator is an open iterator following the next() contract.
type scriptIterator struct {
	obj  runtime.Scriptable
	next runtime.Callable
}

// getIterator obtains the value's @@iterator and opens it.
func (ev *Evaluator) getIterator(v runtime.Value) (*scriptIterator, error) {
	obj, ok := v.(runtime.Scriptable)
	if !ok {
		return nil, runtime.NewTypeError(ev.cx, "%s is not iterable", v.TypeOf())
	}
	fnV, err := runtime.GetPropertySymbol(ev.cx, obj, runtime.SymIterator)
	if err != nil {
		return nil, err
	}
	fn, ok := fnV.(runtime.Callable)
	if !ok {
		return nil, runtime.NewTypeError(ev.cx, "%s is not iterable", v.TypeOf())
	}
	itV, err := fn.Call(ev.cx, obj, nil)
	if err != nil {
		return nil, err
	}
	itObj, ok := itV.(runtime.Scriptable)
	if !ok {
		return nil, runtime.NewTypeError(ev.cx, "iterator result is not an object")
	}
	nextV, err := runtime.GetProperty(ev.cx, itObj, "next")
	if err != nil {
		return nil, err
	}
	next, ok := nextV.(runtime.Callable)
	if !ok {
		return nil, runtime.NewTypeError(ev.cx, "iterator has no next method")
	}
	return &scriptIterator{obj: itObj, next: next}, nil
}

// step invokes next() and unpacks {value, done}.
func (it *scriptIterator) step(ev *Evaluator) (runtime.Value, bool, error) {
	res, err := it.next.Call(ev.cx, it.obj, nil)
	if err != nil {
		return nil, false, err
	}
	resObj, ok := res.(runtime.Scriptable)
	if !ok {
		return nil, false, runtime.NewTypeError(ev.cx, "iterator result is not an object")
	}
	doneV, err := runtime.GetProperty(ev.cx, resObj, "done")
	if err != nil {
		return nil, false, err
	}
	if runtime.ToBoolean(doneV) {
		return nil, true, nil
	}
	value, err := runtime.GetProperty(ev.cx, resObj, "value")
	if err != nil {
		return nil, false, err
	}
	return value, false, nil
}

// close calls return() on the iterator, if present, after an abrupt loop
// exit. Errors from return() are ignored in favor of the original abrupt
// completion.
func (it *scriptIterator) close(ev *Evaluator) {
	retV, err := runtime.GetProperty(ev.cx, it.obj, "return")
	if err != nil {
		return
	}
	if ret, ok := retV.(runtime.Callable); ok {
		_, _ = ret.Call(ev.cx, it.obj, nil)
	}
}

// iterate walks any iterable value, with fast paths for script arrays and
// strings so they work before a realm's prototypes are installed.
func (ev *Evaluator) iterate(v runtime.Value, fn func(runtime.Value) error) error {
	switch n := v.(type) {
	case *runtime.ArrayObject:
		for i := 0; i < n.Len(); i++ {
			if err := fn(n.At(i)); err != nil {
				return err
			}
		}
		return nil
	case *runtime.StringValue:
		for _, r := range n.Value {
			if err := fn(runtime.String(string(r))); err != nil {
				return err
			}
		}
		return nil
	}

	it, err := ev.getIterator(v)
	if err != nil {
		return err
	}
	for {
		value, done, err := it.step(ev)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := fn(value); err != nil {
			it.close(ev)
			return err
		}
	}
}

// execForInOf executes both for…in and for…of.
func (ev *Evaluator) execForInOf(n *ast.ForInStatement, env *runtime.Environment, cf *runtime.ControlFlow, label string) error {
	target, err := ev.eval(n.Right, env)
	if err != nil {
		return err
	}

	bindOne := func(v runtime.Value) (*runtime.Environment, error) {
		iterEnv := runtime.NewEnclosedEnvironment(env)
		if n.Scope != nil {
			ev.hoistScope(n.Scope, iterEnv)
		}
		switch left := n.Left.(type) {
		case *ast.VariableDeclaration:
			kind := runtime.BindVar
			switch left.Kind {
			case ast.DeclLet:
				kind = runtime.BindLet
			case ast.DeclConst:
				kind = runtime.BindConst
			}
			if err := ev.bindPattern(left.Declarators[0].Target, v, iterEnv, kind, true); err != nil {
				return nil, err
			}
		case ast.Pattern:
			if err := ev.bindPattern(left, v, iterEnv, 0, false); err != nil {
				return nil, err
			}
		}
		return iterEnv, nil
	}

	runBody := func(v runtime.Value) (stop bool, err error) {
		iterEnv, err := bindOne(v)
		if err != nil {
			return true, err
		}
		if _, err := ev.execStatement(n.Body, iterEnv, cf); err != nil {
			return true, err
		}
		if cf.IsActive() && absorbLoopSignal(cf, label) {
			return true, nil
		}
		return false, nil
	}

	if !n.Of {
		// for…in: own and inherited enumerable string keys, integer
		// indices first per object, each name visited once.
		if runtime.IsNullish(target) {
			return nil
		}
		obj, ok := target.(runtime.Scriptable)
		if !ok {
			return nil
		}
		seen := make(map[string]bool)
		for cur := obj; cur != nil; cur = cur.Prototype() {
			for _, key := range runtime.SortedOwnKeys(ev.cx, cur) {
				if seen[key] {
					continue
				}
				seen[key] = true
				stop, err := runBody(runtime.String(key))
				if err != nil || stop {
					return err
				}
			}
		}
		return nil
	}

	// for…of over script arrays and strings takes the fast path; other
	// iterables run the full protocol, including return() on abrupt exit.
	switch target.(type) {
	case *runtime.ArrayObject, *runtime.StringValue:
		var abort error
		stopIter := false
		err := ev.iterate(target, func(v runtime.Value) error {
			stop, err := runBody(v)
			if err != nil {
				abort = err
			}
			if stop {
				stopIter = true
				return errStopIteration
			}
			return nil
		})
		if abort != nil {
			return abort
		}
		if err != nil && !stopIter {
			return err
		}
		return nil
	}

	it, err := ev.getIterator(target)
	if err != nil {
		return err
	}
	for {
		value, done, err := it.step(ev)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		stop, err := runBody(value)
		if err != nil {
			it.close(ev)
			return err
		}
		if stop {
			// break / labeled break / return: close the iterator.
			it.close(ev)
			return nil
		}
	}
}

// errStopIteration is an internal sentinel for aborting the array/string
// fast path; it never escapes to script.
var errStopIteration = runtime.NewEvaluatorError(nil, "stop iteration")
