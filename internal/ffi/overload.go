package ffi

import (
	"math/big"
	"reflect"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

// Conversion weights, after the LiveConnect 3 ranking. The lowest total
// across a parameter list wins; conversionNone marks an impossible pair.
const (
	weightNontrivial = 0 // exact host-type match or a type-wrapper claim
	weightTrivial    = 1
	conversionNone   = -1
)

// sizeRank orders the numeric primitives for widening weight:
// double < float < long < int < short < char < byte.
func sizeRank(k reflect.Kind) int {
	switch k {
	case reflect.Float64:
		return 0
	case reflect.Float32:
		return 1
	case reflect.Int64, reflect.Uint64:
		return 2
	case reflect.Int, reflect.Int32, reflect.Uint, reflect.Uint32:
		return 3
	case reflect.Int16:
		return 4
	case reflect.Uint16:
		return 5
	case reflect.Int8, reflect.Uint8:
		return 6
	}
	return -1
}

func isNumericKind(k reflect.Kind) bool { return sizeRank(k) >= 0 }

// conversionWeight ranks converting the script value v to the Go target
// type. The per-context type-wrapper registry may short-circuit with a
// nontrivial match.
func conversionWeight(cx *runtime.Context, v runtime.Value, target reflect.Type) int {
	if tw := cx.TypeWrappers().Find(v, target.String()); tw != nil {
		return weightNontrivial
	}

	anyTarget := target.Kind() == reflect.Interface && target.NumMethod() == 0
	stringTarget := target.Kind() == reflect.String

	switch n := v.(type) {
	case *runtime.NullValue:
		// null satisfies any non-primitive parameter.
		switch target.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return weightTrivial
		}
		return conversionNone

	case *runtime.UndefinedValue:
		// undefined satisfies String and Object only.
		if stringTarget || anyTarget {
			return weightTrivial
		}
		return conversionNone

	case *runtime.BooleanValue:
		// A boolean only unboxes or widens to Object; it never converts
		// to a string parameter implicitly, so f(true) against an
		// int/string overload pair is a TypeError rather than a
		// surprising dispatch.
		switch {
		case target.Kind() == reflect.Bool:
			return 1
		case anyTarget:
			return 3
		}
		return conversionNone

	case *runtime.NumberValue:
		switch {
		case target.Kind() == reflect.Float64:
			return 1
		case isNumericKind(target.Kind()):
			return 1 + sizeRank(target.Kind())
		case stringTarget:
			return 9
		case anyTarget:
			return 10
		}
		return conversionNone

	case *runtime.BigIntValue:
		if target == reflect.TypeOf((*big.Int)(nil)) {
			return 1
		}
		switch {
		case isNumericKind(target.Kind()):
			return 2 + sizeRank(target.Kind())
		case stringTarget:
			return 9
		case anyTarget:
			return 10
		}
		return conversionNone

	case *runtime.StringValue:
		switch {
		case stringTarget:
			return 1
		case (target.Kind() == reflect.Int32 || target.Kind() == reflect.Uint16) && len(n.Value) > 0:
			// A one-character string widens to a char-like target.
			if countUnits(n.Value) == 1 {
				return 3
			}
			return conversionNone
		case isNumericKind(target.Kind()):
			return 4
		case anyTarget:
			return 2
		}
		return conversionNone

	case *HostObject:
		hostType := n.value.Type()
		switch {
		case hostType.AssignableTo(target):
			return weightNontrivial
		case hostType.Kind() == reflect.Ptr && hostType.Elem().AssignableTo(target):
			return weightNontrivial
		case stringTarget:
			return 2
		case anyTarget:
			return weightTrivial
		}
		return conversionNone

	case runtime.Scriptable:
		// Script object → host target: a function fits a func-typed
		// parameter best, a plain object fits aggregate targets, and
		// anything else is a last resort.
		_, callable := v.(runtime.Callable)
		switch {
		case target.Kind() == reflect.Func:
			if callable {
				return 1
			}
			return 12
		case target.Kind() == reflect.Slice || target.Kind() == reflect.Array:
			if _, ok := v.(*runtime.ArrayObject); ok {
				return 2
			}
			return 12
		case target.Kind() == reflect.Map || anyTarget:
			if callable {
				return 12
			}
			return 2
		case stringTarget:
			return 4
		}
		return conversionNone
	}
	return conversionNone
}

// candidateWeight sums per-argument weights for one overload candidate, or
// conversionNone when any argument cannot convert.
func candidateWeight(cx *runtime.Context, fnType reflect.Type, skipReceiver bool, args []runtime.Value) int {
	first := 0
	if skipReceiver {
		first = 1
	}
	numIn := fnType.NumIn() - first

	if fnType.IsVariadic() {
		if len(args) < numIn-1 {
			return conversionNone
		}
	} else if len(args) != numIn {
		return conversionNone
	}

	total := 0
	for i, arg := range args {
		var target reflect.Type
		if fnType.IsVariadic() && i >= numIn-1 {
			target = fnType.In(fnType.NumIn() - 1).Elem()
		} else {
			target = fnType.In(first + i)
		}
		w := conversionWeight(cx, arg, target)
		if w == conversionNone {
			return conversionNone
		}
		total += w
	}
	return total
}

// resolveOverload picks the lowest-weight candidate for the argument
// tuple. A tie between surviving candidates is an ambiguous-call
// TypeError; no viable candidate is a TypeError naming the method.
func resolveOverload(cx *runtime.Context, name string, methods []reflect.Method, skipReceiver bool, args []runtime.Value) (*reflect.Method, error) {
	best := conversionNone
	var winner *reflect.Method
	ambiguous := false

	for i := range methods {
		m := &methods[i]
		w := candidateWeight(cx, m.Type, skipReceiver, args)
		if w == conversionNone {
			continue
		}
		switch {
		case winner == nil || w < best:
			best, winner, ambiguous = w, m, false
		case w == best:
			ambiguous = true
		}
	}
	if winner == nil {
		return nil, runtime.NewTypeError(cx, "no applicable overload of %s for arguments (%s)", name, describeArgs(args))
	}
	if ambiguous {
		return nil, runtime.NewTypeError(cx, "ambiguous call to %s for arguments (%s)", name, describeArgs(args))
	}
	return winner, nil
}

func describeArgs(args []runtime.Value) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		s += a.TypeOf()
	}
	return s
}

// resolveFuncOverload is resolveOverload for plain func values (registered
// host functions), which carry no receiver.
func resolveFuncOverload(cx *runtime.Context, name string, fns []reflect.Value, args []runtime.Value) (reflect.Value, error) {
	best := conversionNone
	var winner reflect.Value
	found := false
	ambiguous := false

	for _, fn := range fns {
		w := candidateWeight(cx, fn.Type(), false, args)
		if w == conversionNone {
			continue
		}
		switch {
		case !found || w < best:
			best, winner, found, ambiguous = w, fn, true, false
		case w == best:
			ambiguous = true
		}
	}
	if !found {
		return reflect.Value{}, runtime.NewTypeError(cx, "no applicable overload of %s for arguments (%s)", name, describeArgs(args))
	}
	if ambiguous {
		return reflect.Value{}, runtime.NewTypeError(cx, "ambiguous call to %s for arguments (%s)", name, describeArgs(args))
	}
	return winner, nil
}
